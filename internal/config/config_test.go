package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9090
  require_context: true
ssh:
  default_command_timeout_s: 15
command_policy:
  allow_regex:
    - '^show\s+.*$'
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if !cfg.Server.RequireContext {
		t.Errorf("require_context not applied")
	}
	if cfg.SSH.DefaultCommandTimeoutS != 15 {
		t.Errorf("command timeout = %d, want 15", cfg.SSH.DefaultCommandTimeoutS)
	}
	if len(cfg.Policy.AllowRegex) != 1 {
		t.Errorf("allow_regex = %v, want replaced by file", cfg.Policy.AllowRegex)
	}
}

func TestLoadJSON5(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	data := `{
	// comments are fine in json5
	server: { port: 9191 },
}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("port = %d, want 9191", cfg.Server.Port)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("AOSGATE_PORT", "7070")
	t.Setenv("AOSGATE_TOKEN", "env-token")
	t.Setenv("AOSGATE_ALLOWED_IPS", "10.0.0.0/8,192.168.1.1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, env must win over file", cfg.Server.Port)
	}
	if cfg.Server.Token != "env-token" {
		t.Errorf("token not taken from env")
	}
	if len(cfg.Server.AllowedCIDRs) != 2 {
		t.Errorf("allowed CIDRs = %v", cfg.Server.AllowedCIDRs)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"zero max command length", func(c *Config) { c.Policy.MaxCommandLength = 0 }},
		{"zone out of range", func(c *Config) {
			c.ZoneAuth.Zones = map[int]CredentialConfig{300: {}}
		}},
		{"duplicate device id", func(c *Config) {
			c.Inventory.Devices = []DeviceConfig{
				{ID: "sw1", Host: "10.0.0.1"},
				{ID: "sw1", Host: "10.0.0.2"},
			}
		}},
		{"unknown jump host", func(c *Config) {
			c.Inventory.Devices = []DeviceConfig{{ID: "sw1", Host: "10.0.0.1", Jump: "bastion"}}
		}},
		{"backup schedule without dir", func(c *Config) {
			c.Backup.Schedule = "0 3 * * *"
			c.Backup.Dir = ""
		}},
		{"bad telemetry protocol", func(c *Config) { c.Telemetry.Protocol = "udp" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate accepted %s", tc.name)
			}
		})
	}
}

func TestSaveNeverWritesToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Server.Token = "super-secret"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("empty config written")
	}
	if strings.Contains(string(data), "super-secret") {
		t.Errorf("token leaked into config file")
	}
}

func TestResolvePath(t *testing.T) {
	if got := ResolvePath("explicit.yaml"); got != "explicit.yaml" {
		t.Errorf("flag value ignored: %q", got)
	}
	t.Setenv("AOSGATE_CONFIG", "/etc/aosgate/config.yaml")
	if got := ResolvePath(""); got != "/etc/aosgate/config.yaml" {
		t.Errorf("env value ignored: %q", got)
	}
	t.Setenv("AOSGATE_CONFIG", "")
	if got := ResolvePath(""); got != "config.yaml" {
		t.Errorf("default = %q", got)
	}
}
