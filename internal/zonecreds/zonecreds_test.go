package zonecreds

import (
	"testing"

	"github.com/nextlevelbuilder/aosgate/internal/config"
)

func TestExtractZone(t *testing.T) {
	cases := []struct {
		host string
		zone int
		ok   bool
	}{
		{"10.9.19.10", 9, true},
		{"10.0.0.1", 0, true},
		{"192.168.44.2", 168, true},
		{"switch-1.example.net", 0, false},
		{"10.9.19", 0, false},
		{"10.999.1.1", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		zone, ok := ExtractZone(tc.host)
		if ok != tc.ok || (ok && zone != tc.zone) {
			t.Errorf("ExtractZone(%q) = (%d, %v), want (%d, %v)", tc.host, zone, ok, tc.zone, tc.ok)
		}
	}
}

func TestResolveZoneCredential(t *testing.T) {
	t.Setenv("TEST_Z9_USER", "zone9-admin")
	t.Setenv("TEST_Z9_PASS", "zone9-pass")

	r := NewResolver(config.ZoneAuthConfig{
		Global: &config.CredentialConfig{Username: "global-admin", Password: "global-pass"},
		Zones: map[int]config.CredentialConfig{
			9: {UsernameEnv: "TEST_Z9_USER", PasswordEnv: "TEST_Z9_PASS"},
		},
	})

	creds := r.Resolve("10.9.19.10")
	if len(creds) != 2 {
		t.Fatalf("credentials = %d, want global + zone", len(creds))
	}
	if creds[0].Username != "global-admin" || creds[0].Zone != nil {
		t.Errorf("first candidate must be global: %+v", creds[0])
	}
	if creds[1].Username != "zone9-admin" || creds[1].Zone == nil || *creds[1].Zone != 9 {
		t.Errorf("second candidate must be zone 9: %+v", creds[1])
	}

	// Host outside any configured zone falls back to global only.
	if creds := r.Resolve("10.44.0.1"); len(creds) != 1 {
		t.Errorf("unzoned host credentials = %d, want 1", len(creds))
	}

	// Hostnames have no zone.
	if creds := r.Resolve("core-switch.example.net"); len(creds) != 1 {
		t.Errorf("hostname credentials = %d, want global only", len(creds))
	}
}

func TestResolveSkipsUnresolvableEntries(t *testing.T) {
	r := NewResolver(config.ZoneAuthConfig{
		Zones: map[int]config.CredentialConfig{
			9: {UsernameEnv: "TEST_UNSET_USER_VAR", PasswordEnv: "TEST_UNSET_PASS_VAR"},
		},
	})
	if creds := r.Resolve("10.9.19.10"); len(creds) != 0 {
		t.Errorf("unresolvable credential returned: %+v", creds)
	}
}

func TestNilResolver(t *testing.T) {
	var r *Resolver
	if creds := r.Resolve("10.9.19.10"); creds != nil {
		t.Errorf("nil resolver returned %+v", creds)
	}
}

func TestFromConfigKeyFile(t *testing.T) {
	t.Setenv("TEST_KEY_PASS", "phrase")
	cred, ok := FromConfig(config.CredentialConfig{
		Username:         "admin",
		KeyFile:          "/etc/aosgate/id_ed25519",
		KeyPassphraseEnv: "TEST_KEY_PASS",
	})
	if !ok {
		t.Fatalf("key credential did not resolve")
	}
	if cred.KeyFile != "/etc/aosgate/id_ed25519" || cred.Passphrase != "phrase" {
		t.Errorf("cred = %+v", cred)
	}

	// Key auth needs no password, but still needs a username.
	if _, ok := FromConfig(config.CredentialConfig{KeyFile: "/k"}); ok {
		t.Errorf("key credential without username resolved")
	}
}

func TestFallback(t *testing.T) {
	t.Setenv("AOS_DEVICE_USERNAME", "admin")
	t.Setenv("AOS_DEVICE_PASSWORD", "switch")
	cred, ok := Fallback()
	if !ok || cred.Username != "admin" || cred.Password != "switch" {
		t.Errorf("Fallback = (%+v, %v)", cred, ok)
	}

	t.Setenv("AOS_DEVICE_PASSWORD", "")
	if _, ok := Fallback(); ok {
		t.Errorf("Fallback resolved without password")
	}
}
