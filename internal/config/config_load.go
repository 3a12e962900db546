package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"
)

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			RateLimitRPM: 60,
		},
		SSH: SSHConfig{
			StrictHostKeyChecking:  true,
			ConnectTimeoutS:        10,
			BannerTimeoutS:         10,
			AuthTimeoutS:           10,
			DefaultCommandTimeoutS: 30,
			MaxOutputBytes:         200_000,
			KeepaliveS:             30,
		},
		Policy: PolicyConfig{
			AllowRegex: []string{
				`^show\s+.*$`,
				`^vrf\s+\S+\s+show\s+.*$`,
				`^ping\s+.*$`,
				`^traceroute\s+.*$`,
				`^write\s+terminal$`,
				`^lanpower\s+port\s+\d+/\d+/\d+\s+admin-state\s+(enable|disable)$`,
			},
			MaxCommandLength: 512,
			DenyMultiline:    true,
			StripANSI:        true,
			Redactions: []Redaction{
				{Pattern: `(?i)(password\s+)(\S+)`, Replacement: `$1***`},
				{Pattern: `(?i)(community\s+)(\S+)`, Replacement: `$1***`},
			},
		},
		Templates: TemplatesConfig{
			Ping:       "ping {destination}",
			Traceroute: "traceroute {destination}",
		},
		Backup: BackupConfig{
			Keep: 10,
		},
		Telemetry: TelemetryConfig{
			Protocol:    "http",
			ServiceName: "aosgate",
		},
	}
}

// Load reads config from a YAML file (JSON5 accepted for .json/.json5
// extensions), then overlays env vars. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".json5":
		if err := json5.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config.
// Env vars take precedence over file values.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	envStr("AOSGATE_HOST", &c.Server.Host)
	if v := os.Getenv("AOSGATE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			c.Server.Port = port
		}
	}
	envStr("AOSGATE_TOKEN", &c.Server.Token)
	if v := os.Getenv("AOSGATE_REQUIRE_CONTEXT"); v != "" {
		c.Server.RequireContext = v == "true" || v == "1"
	}
	if v := os.Getenv("AOSGATE_ALLOWED_IPS"); v != "" {
		c.Server.AllowedCIDRs = strings.Split(v, ",")
	}

	envStr("AOSGATE_KNOWN_HOSTS", &c.SSH.KnownHostsFile)
	envStr("AOSGATE_AUDIT_LOG", &c.AuditLog.Path)
	envStr("AOSGATE_BACKUP_DIR", &c.Backup.Dir)

	// Telemetry
	envStr("AOSGATE_TELEMETRY_ENDPOINT", &c.Telemetry.Endpoint)
	envStr("AOSGATE_TELEMETRY_PROTOCOL", &c.Telemetry.Protocol)
	envStr("AOSGATE_TELEMETRY_SERVICE_NAME", &c.Telemetry.ServiceName)
	if v := os.Getenv("AOSGATE_TELEMETRY_ENABLED"); v != "" {
		c.Telemetry.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("AOSGATE_TELEMETRY_INSECURE"); v != "" {
		c.Telemetry.Insecure = v == "true" || v == "1"
	}
}

// ResolvePath returns the config path from the flag value, the
// AOSGATE_CONFIG env var, or the default file name, in that order.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("AOSGATE_CONFIG"); v != "" {
		return v
	}
	return "config.yaml"
}

// Save writes the config to a YAML file. The server token is never written
// (env-only); callers should not inject secrets before saving.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// ExpandHome replaces leading ~ with the user home directory.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, _ := os.UserHomeDir()
	if len(path) > 1 && path[1] == '/' {
		return home + path[1:]
	}
	return home
}
