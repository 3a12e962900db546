// Package zonecreds maps device addresses to SSH credentials. A zone is the
// second octet of a dotted-quad IPv4 address (10.9.5.10 is zone 9); zones let
// multi-site deployments use one credential pair per site with a global
// fallback.
package zonecreds

import (
	"os"
	"regexp"
	"strconv"

	"github.com/nextlevelbuilder/aosgate/internal/config"
)

var ipv4RE = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)\.(\d+)$`)

// Credential is a fully resolved username/secret pair. Zone is nil for the
// global credential. Secrets are never logged; String is deliberately not
// implemented.
type Credential struct {
	Username string
	Password string

	// KeyFile, when set, selects private-key auth; Passphrase decrypts it.
	KeyFile    string
	Passphrase string

	Zone *int
}

// ExtractZone returns the zone id for a dotted-quad IPv4 host. Hostnames and
// malformed or out-of-range addresses yield no zone.
func ExtractZone(host string) (int, bool) {
	m := ipv4RE.FindStringSubmatch(host)
	if m == nil {
		return 0, false
	}
	for _, part := range m[1:] {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 255 {
			return 0, false
		}
	}
	zone, _ := strconv.Atoi(m[2])
	return zone, true
}

// Resolver resolves credentials for hosts from the zone_auth config.
// Immutable after construction; safe for concurrent use.
type Resolver struct {
	global *config.CredentialConfig
	zones  map[int]config.CredentialConfig
}

// NewResolver builds a Resolver. A nil/empty config yields a resolver that
// always returns an empty list.
func NewResolver(cfg config.ZoneAuthConfig) *Resolver {
	return &Resolver{global: cfg.Global, zones: cfg.Zones}
}

// Resolve returns the ordered credential candidates for a host: the global
// credential first when configured and resolvable, then the zone-specific one.
// Entries whose username or password do not resolve are skipped, never an
// error.
func (r *Resolver) Resolve(host string) []Credential {
	if r == nil {
		return nil
	}

	var out []Credential

	if r.global != nil {
		if c, ok := resolve(*r.global); ok {
			out = append(out, c)
		}
	}

	if zone, ok := ExtractZone(host); ok {
		if spec, exists := r.zones[zone]; exists {
			if c, ok := resolve(spec); ok {
				z := zone
				c.Zone = &z
				out = append(out, c)
			}
		}
	}

	return out
}

// resolve materializes a credential spec, preferring env vars over literals.
// A credential resolves only when both username and secret are non-empty.
func resolve(spec config.CredentialConfig) (Credential, bool) {
	var c Credential

	if spec.UsernameEnv != "" {
		c.Username = os.Getenv(spec.UsernameEnv)
	}
	if c.Username == "" {
		c.Username = spec.Username
	}

	if spec.PasswordEnv != "" {
		c.Password = os.Getenv(spec.PasswordEnv)
	}
	if c.Password == "" {
		c.Password = spec.Password
	}

	if spec.KeyFile != "" {
		c.KeyFile = spec.KeyFile
		if spec.KeyPassphraseEnv != "" {
			c.Passphrase = os.Getenv(spec.KeyPassphraseEnv)
		}
		return c, c.Username != ""
	}

	return c, c.Username != "" && c.Password != ""
}

// FromConfig materializes a single credential spec outside zone resolution
// (inventory device auth, jump hosts).
func FromConfig(spec config.CredentialConfig) (Credential, bool) {
	return resolve(spec)
}

// Fallback returns the process-wide default credential from the
// AOS_DEVICE_USERNAME / AOS_DEVICE_PASSWORD env vars. These are the only
// hardcoded variable names in the service.
func Fallback() (Credential, bool) {
	u := os.Getenv("AOS_DEVICE_USERNAME")
	p := os.Getenv("AOS_DEVICE_PASSWORD")
	if u == "" || p == "" {
		return Credential{}, false
	}
	return Credential{Username: u, Password: p}, true
}
