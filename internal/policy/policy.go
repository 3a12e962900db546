// Package policy enforces the command allow/deny policy and sanitizes device
// output. It is the only barrier between a prompt-driven caller and the switch
// CLI: it fails closed (implicit deny) and is regex-only so the effective
// policy can be audited from configuration alone.
package policy

import (
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/nextlevelbuilder/aosgate/internal/config"
)

// ansiRE matches CSI escape sequences: ESC [ , parameter bytes 0x30-0x3F,
// intermediate bytes 0x20-0x2F, one final byte 0x40-0x7E.
var ansiRE = regexp.MustCompile(`\x1b\[[0-?]*[ -/]*[@-~]`)

type redaction struct {
	re   *regexp.Regexp
	repl string
}

// Compiled is the immutable, pre-compiled command policy. Built once per
// process (or config reload) and shared freely across requests.
type Compiled struct {
	allow []*regexp.Regexp
	deny  []*regexp.Regexp

	maxCommandLength int
	denyMultiline    bool
	stripANSI        bool

	redactions []redaction
}

// Compile builds a Compiled policy from raw config. Allow and deny patterns
// are anchored at the start of the command.
func Compile(cfg config.PolicyConfig) (*Compiled, error) {
	p := &Compiled{
		maxCommandLength: cfg.MaxCommandLength,
		denyMultiline:    cfg.DenyMultiline,
		stripANSI:        cfg.StripANSI,
	}

	for _, pat := range cfg.AllowRegex {
		re, err := regexp.Compile(`\A(?:` + pat + `)`)
		if err != nil {
			return nil, fmt.Errorf("allow regex %q: %w", pat, err)
		}
		p.allow = append(p.allow, re)
	}
	for _, pat := range cfg.DenyRegex {
		re, err := regexp.Compile(`\A(?:` + pat + `)`)
		if err != nil {
			return nil, fmt.Errorf("deny regex %q: %w", pat, err)
		}
		p.deny = append(p.deny, re)
	}
	for _, r := range cfg.Redactions {
		if r.Pattern == "" {
			continue
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("redaction regex %q: %w", r.Pattern, err)
		}
		repl := r.Replacement
		if repl == "" {
			repl = "***"
		}
		p.redactions = append(p.redactions, redaction{re: re, repl: repl})
	}

	return p, nil
}

// Sanitize trims and validates a command against the policy. The returned
// string is the canonical form actually sent to the device. Any error means
// the command must not run.
func (p *Compiled) Sanitize(command string) (string, error) {
	cmd := strings.TrimSpace(command)
	if cmd == "" {
		return "", fmt.Errorf("command must be a non-empty string")
	}

	if p.denyMultiline && strings.ContainsAny(cmd, "\n\r") {
		return "", fmt.Errorf("multiline commands are not allowed")
	}
	if len(cmd) > p.maxCommandLength {
		return "", fmt.Errorf("command too long (>%d)", p.maxCommandLength)
	}
	for _, ch := range cmd {
		if ch < 0x20 && ch != '\t' {
			return "", fmt.Errorf("control characters are not allowed")
		}
	}

	allowed := false
	for _, re := range p.allow {
		if re.MatchString(cmd) {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", fmt.Errorf("command rejected by allowlist policy")
	}
	for _, re := range p.deny {
		if re.MatchString(cmd) {
			return "", fmt.Errorf("command rejected by denylist policy")
		}
	}

	return cmd, nil
}

// SanitizeOutput strips ANSI escapes (when configured) and applies the
// redaction rules in order. The second return value reports whether any
// redaction rule changed the text.
func (p *Compiled) SanitizeOutput(text string) (string, bool) {
	out := text
	if p.stripANSI {
		out = ansiRE.ReplaceAllString(out, "")
	}

	redacted := false
	for _, r := range p.redactions {
		next := r.re.ReplaceAllString(out, r.repl)
		if next != out {
			redacted = true
			out = next
		}
	}
	return out, redacted
}

// Store holds the current compiled policy and supports atomic swap on config
// reload. In-flight requests keep the snapshot they started with.
type Store struct {
	cur atomic.Pointer[Compiled]
}

func NewStore(c *Compiled) *Store {
	s := &Store{}
	s.cur.Store(c)
	return s
}

// Swap replaces the active policy.
func (s *Store) Swap(c *Compiled) { s.cur.Store(c) }

func (s *Store) Sanitize(command string) (string, error) {
	return s.cur.Load().Sanitize(command)
}

func (s *Store) SanitizeOutput(text string) (string, bool) {
	return s.cur.Load().SanitizeOutput(text)
}
