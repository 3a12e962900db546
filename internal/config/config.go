package config

import (
	"fmt"
)

// Config is the root configuration for the aosgate service.
// Secrets never live in the file: credential fields reference environment
// variable names and are resolved at use time.
type Config struct {
	Server    ServerConfig    `yaml:"server" json:"server"`
	SSH       SSHConfig       `yaml:"ssh" json:"ssh"`
	Policy    PolicyConfig    `yaml:"command_policy" json:"command_policy"`
	Templates TemplatesConfig `yaml:"templates" json:"templates"`
	ZoneAuth  ZoneAuthConfig  `yaml:"zone_auth" json:"zone_auth"`
	Inventory InventoryConfig `yaml:"inventory" json:"inventory"`
	AuditLog  AuditLogConfig  `yaml:"audit_log" json:"audit_log"`
	Backup    BackupConfig    `yaml:"backup" json:"backup"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
}

// ServerConfig controls the HTTP listener and transport-layer gating.
type ServerConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`

	// Token is the bearer token for all endpoints. Env-only (AOSGATE_TOKEN);
	// never serialized back to disk.
	Token string `yaml:"-" json:"-"`

	// AllowedCIDRs restricts client source addresses when non-empty.
	AllowedCIDRs []string `yaml:"allowed_cidrs" json:"allowed_cidrs"`

	// RateLimitRPM is the per-client-IP request budget per minute. 0 disables.
	RateLimitRPM int `yaml:"rate_limit_rpm" json:"rate_limit_rpm"`

	// RequireContext rejects tool calls whose request context has no subject.
	RequireContext bool `yaml:"require_context" json:"require_context"`
}

// SSHConfig holds connection and execution controls for device sessions.
type SSHConfig struct {
	StrictHostKeyChecking bool   `yaml:"strict_host_key_checking" json:"strict_host_key_checking"`
	KnownHostsFile        string `yaml:"known_hosts_file" json:"known_hosts_file"`

	ConnectTimeoutS int `yaml:"connect_timeout_s" json:"connect_timeout_s"`
	BannerTimeoutS  int `yaml:"banner_timeout_s" json:"banner_timeout_s"`
	AuthTimeoutS    int `yaml:"auth_timeout_s" json:"auth_timeout_s"`

	DefaultCommandTimeoutS int `yaml:"default_command_timeout_s" json:"default_command_timeout_s"`

	// MaxOutputBytes caps each of stdout and stderr; excess is discarded and
	// the result is marked truncated.
	MaxOutputBytes int `yaml:"max_output_bytes" json:"max_output_bytes"`

	// PreCommands run before the target command on each session (e.g. disable
	// paging). Their output is discarded.
	PreCommands []string `yaml:"pre_commands" json:"pre_commands"`

	KeepaliveS int `yaml:"keepalive_s" json:"keepalive_s"`
}

// PolicyConfig is the raw (uncompiled) command policy.
type PolicyConfig struct {
	AllowRegex []string `yaml:"allow_regex" json:"allow_regex"`
	DenyRegex  []string `yaml:"deny_regex" json:"deny_regex"`

	MaxCommandLength int  `yaml:"max_command_length" json:"max_command_length"`
	DenyMultiline    bool `yaml:"deny_multiline" json:"deny_multiline"`
	StripANSI        bool `yaml:"strip_ansi" json:"strip_ansi"`

	Redactions []Redaction `yaml:"redactions" json:"redactions"`
}

// Redaction rewrites sensitive substrings in device output.
type Redaction struct {
	Pattern     string `yaml:"pattern" json:"pattern"`
	Replacement string `yaml:"replacement" json:"replacement"`
}

// TemplatesConfig holds command templates for the typed diagnostic tools.
type TemplatesConfig struct {
	Ping       string `yaml:"ping" json:"ping"`
	Traceroute string `yaml:"traceroute" json:"traceroute"`
}

// CredentialConfig describes one credential source. Username and password may
// each come from an env var (preferred) or a literal value.
type CredentialConfig struct {
	UsernameEnv string `yaml:"username_env" json:"username_env"`
	Username    string `yaml:"username" json:"username"`
	PasswordEnv string `yaml:"password_env" json:"password_env"`
	Password    string `yaml:"password" json:"password"`

	KeyFile          string `yaml:"private_key_file" json:"private_key_file"`
	KeyPassphraseEnv string `yaml:"passphrase_env" json:"passphrase_env"`
}

// ZoneAuthConfig maps network zones (second IPv4 octet) to credentials.
type ZoneAuthConfig struct {
	Global *CredentialConfig        `yaml:"global" json:"global"`
	Zones  map[int]CredentialConfig `yaml:"zones" json:"zones"`
}

// Enabled reports whether any zone auth is configured.
func (z ZoneAuthConfig) Enabled() bool {
	return z.Global != nil || len(z.Zones) > 0
}

// DeviceConfig is a statically inventoried device.
type DeviceConfig struct {
	ID       string            `yaml:"id" json:"id"`
	Host     string            `yaml:"host" json:"host"`
	Port     int               `yaml:"port" json:"port"`
	Username string            `yaml:"username" json:"username"`
	Auth     *CredentialConfig `yaml:"auth" json:"auth"`
	Name     string            `yaml:"name" json:"name"`
	Tags     []string          `yaml:"tags" json:"tags"`
	Jump     string            `yaml:"jump" json:"jump"`
}

// JumpHostConfig is an SSH bastion. Unlike devices, jump hosts are always
// fully specified; nothing is defaulted.
type JumpHostConfig struct {
	Name     string           `yaml:"name" json:"name"`
	Host     string           `yaml:"host" json:"host"`
	Port     int              `yaml:"port" json:"port"`
	Username string           `yaml:"username" json:"username"`
	Auth     CredentialConfig `yaml:"auth" json:"auth"`
}

// DeviceDefaults apply to devices that omit username/auth.
type DeviceDefaults struct {
	UsernameEnv string            `yaml:"username_env" json:"username_env"`
	Username    string            `yaml:"username" json:"username"`
	Auth        *CredentialConfig `yaml:"auth" json:"auth"`
	Port        int               `yaml:"port" json:"port"`
	Jump        string            `yaml:"jump" json:"jump"`
}

// InventoryConfig is the optional static device inventory.
type InventoryConfig struct {
	DeviceDefaults *DeviceDefaults  `yaml:"device_defaults" json:"device_defaults"`
	JumpHosts      []JumpHostConfig `yaml:"jump_hosts" json:"jump_hosts"`
	Devices        []DeviceConfig   `yaml:"devices" json:"devices"`
}

// AuditLogConfig enables the sqlite invocation log when Path is set.
type AuditLogConfig struct {
	Path string `yaml:"path" json:"path"`
}

// BackupConfig schedules periodic configuration backups.
type BackupConfig struct {
	// Schedule is a cron expression; empty disables the scheduler.
	Schedule string `yaml:"schedule" json:"schedule"`
	Dir      string `yaml:"dir" json:"dir"`
	// Keep is the number of backups retained per device.
	Keep    int      `yaml:"keep" json:"keep"`
	Devices []string `yaml:"devices" json:"devices"`
}

// TelemetryConfig controls OTLP trace export.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	Endpoint    string `yaml:"endpoint" json:"endpoint"`
	Protocol    string `yaml:"protocol" json:"protocol"` // "http" or "grpc"
	ServiceName string `yaml:"service_name" json:"service_name"`
	Insecure    bool   `yaml:"insecure" json:"insecure"`
}

// Validate checks cross-field consistency that the YAML decoder cannot.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Policy.MaxCommandLength <= 0 {
		return fmt.Errorf("command_policy.max_command_length must be positive")
	}
	if c.SSH.MaxOutputBytes <= 0 {
		return fmt.Errorf("ssh.max_output_bytes must be positive")
	}
	for z := range c.ZoneAuth.Zones {
		if z < 0 || z > 255 {
			return fmt.Errorf("zone_auth.zones: zone id %d out of range 0-255", z)
		}
	}
	jumps := make(map[string]bool, len(c.Inventory.JumpHosts))
	for _, j := range c.Inventory.JumpHosts {
		if j.Name == "" || j.Host == "" || j.Username == "" {
			return fmt.Errorf("inventory.jump_hosts: name, host and username are required")
		}
		if jumps[j.Name] {
			return fmt.Errorf("inventory.jump_hosts: duplicate name %q", j.Name)
		}
		jumps[j.Name] = true
	}
	seen := make(map[string]bool, len(c.Inventory.Devices))
	for _, d := range c.Inventory.Devices {
		if d.ID == "" || d.Host == "" {
			return fmt.Errorf("inventory.devices: id and host are required")
		}
		if seen[d.ID] {
			return fmt.Errorf("inventory.devices: duplicate id %q", d.ID)
		}
		seen[d.ID] = true
		if d.Jump != "" && !jumps[d.Jump] {
			return fmt.Errorf("inventory.devices: device %q references unknown jump host %q", d.ID, d.Jump)
		}
	}
	if c.Backup.Schedule != "" && c.Backup.Dir == "" {
		return fmt.Errorf("backup.dir is required when backup.schedule is set")
	}
	switch c.Telemetry.Protocol {
	case "", "http", "grpc":
	default:
		return fmt.Errorf("telemetry.protocol must be http or grpc, got %q", c.Telemetry.Protocol)
	}
	return nil
}
