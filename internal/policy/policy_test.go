package policy

import (
	"strings"
	"testing"

	"github.com/nextlevelbuilder/aosgate/internal/config"
)

func compileDefault(t *testing.T) *Compiled {
	t.Helper()
	p, err := Compile(config.Default().Policy)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return p
}

func TestSanitizeAllowsReadCommands(t *testing.T) {
	p := compileDefault(t)
	for _, cmd := range []string{
		"show system",
		"show interfaces 1/1/24 status",
		"  show vlan  ", // trimmed
		"vrf mgmt show ip routes",
		"ping 10.9.19.1",
		"traceroute 10.9.19.1",
		"write terminal",
		"lanpower port 1/1/24 admin-state disable",
	} {
		got, err := p.Sanitize(cmd)
		if err != nil {
			t.Errorf("Sanitize(%q): %v", cmd, err)
			continue
		}
		if got != strings.TrimSpace(cmd) {
			t.Errorf("Sanitize(%q) = %q", cmd, got)
		}
	}
}

func TestSanitizeRejects(t *testing.T) {
	p := compileDefault(t)
	cases := []struct {
		name string
		cmd  string
	}{
		{"empty", "   "},
		{"not on allowlist", "reload from working no rollback-timeout"},
		{"shell escape", "rm -rf /"},
		{"write config", "write memory"},
		{"multiline", "show system\nreload"},
		{"carriage return", "show system\rreload"},
		{"control character", "show\x07system"},
		{"too long", "show " + strings.Repeat("a", 600)},
		{"prefix only", "showcase the problem"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := p.Sanitize(tc.cmd); err == nil {
				t.Errorf("Sanitize(%q) accepted", tc.cmd)
			}
		})
	}
}

func TestDenylistBeatsAllowlist(t *testing.T) {
	p, err := Compile(config.PolicyConfig{
		AllowRegex:       []string{`^show\s+.*$`},
		DenyRegex:        []string{`^show\s+configuration\s+snapshot`},
		MaxCommandLength: 512,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Sanitize("show system"); err != nil {
		t.Errorf("allowed command rejected: %v", err)
	}
	if _, err := p.Sanitize("show configuration snapshot"); err == nil {
		t.Errorf("denied command accepted")
	}
}

func TestCompileRejectsBadRegex(t *testing.T) {
	if _, err := Compile(config.PolicyConfig{AllowRegex: []string{"("}, MaxCommandLength: 512}); err == nil {
		t.Errorf("invalid allow regex accepted")
	}
	if _, err := Compile(config.PolicyConfig{DenyRegex: []string{"("}, MaxCommandLength: 512}); err == nil {
		t.Errorf("invalid deny regex accepted")
	}
}

func TestSanitizeOutputStripsANSI(t *testing.T) {
	p := compileDefault(t)
	out, _ := p.SanitizeOutput("\x1b[1;32mUP\x1b[0m and running")
	if out != "UP and running" {
		t.Errorf("out = %q", out)
	}
}

func TestSanitizeOutputRedacts(t *testing.T) {
	p := compileDefault(t)

	out, redacted := p.SanitizeOutput("user admin password s3cret read-write")
	if !redacted {
		t.Fatalf("redaction not reported")
	}
	if strings.Contains(out, "s3cret") {
		t.Errorf("secret survived: %q", out)
	}

	// Applying the rules to already-redacted text must be stable.
	again, _ := p.SanitizeOutput(out)
	if again != out {
		t.Errorf("redaction not idempotent: %q -> %q", out, again)
	}

	if _, redacted := p.SanitizeOutput("show system output with nothing secret"); redacted {
		t.Errorf("false positive redaction")
	}
}

func TestStoreSwap(t *testing.T) {
	open, err := Compile(config.PolicyConfig{AllowRegex: []string{`^show\s+.*$`}, MaxCommandLength: 512})
	if err != nil {
		t.Fatal(err)
	}
	closed, err := Compile(config.PolicyConfig{MaxCommandLength: 512})
	if err != nil {
		t.Fatal(err)
	}

	s := NewStore(open)
	if _, err := s.Sanitize("show system"); err != nil {
		t.Fatalf("initial policy rejected: %v", err)
	}
	s.Swap(closed)
	if _, err := s.Sanitize("show system"); err == nil {
		t.Errorf("swapped policy still allows")
	}
}
