package tools

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nextlevelbuilder/aosgate/internal/config"
	"github.com/nextlevelbuilder/aosgate/internal/inventory"
	"github.com/nextlevelbuilder/aosgate/internal/policy"
	"github.com/nextlevelbuilder/aosgate/internal/sshx"
	"github.com/nextlevelbuilder/aosgate/internal/zonecreds"
)

// Service bundles the process-wide collaborators every handler needs: the
// compiled command policy, the zone credential resolver, the SSH runner and
// the configuration. Constructed once at startup and threaded explicitly.
type Service struct {
	Config    *config.Config
	Policy    *policy.Store
	Resolver  *zonecreds.Resolver
	Runner    sshx.Runner
	Inventory *inventory.Index
	Registry  *Registry
	Audit     AuditRecorder
	Logger    *slog.Logger
}

func (svc *Service) logger() *slog.Logger {
	if svc.Logger != nil {
		return svc.Logger
	}
	return slog.Default()
}

// session tracks one handler invocation against one device: the transient
// device value, the exact commands sent in order, and the wall clock.
type session struct {
	svc      *Service
	device   sshx.Device
	commands []string
	redacted bool
	start    time.Time
}

// newSession builds the transient device for a handler call. Hosts that match
// a configured inventory entry inherit its port and jump host; everything
// else connects directly.
func (svc *Service) newSession(host string, port int) *session {
	device := sshx.Device{ID: host, Host: host, Port: 22}
	if svc.Inventory != nil {
		if known, ok := svc.Inventory.Lookup(host); ok {
			device = known
		}
	}
	if port > 0 {
		device.Port = port
	}
	return &session{svc: svc, device: device, start: time.Now()}
}

// run sanitizes the command, executes it and sanitizes both output streams.
// The command is recorded in the session's command list only once it passed
// the policy.
func (s *session) run(ctx context.Context, command string, timeout time.Duration) (sshx.CommandResult, error) {
	safe, err := s.svc.Policy.Sanitize(command)
	if err != nil {
		return sshx.CommandResult{}, invalidCommand(err)
	}

	ctx, span := tracer.Start(ctx, "ssh.command", trace.WithAttributes(
		attribute.String("device.host", s.device.Host),
	))
	defer span.End()

	s.commands = append(s.commands, safe)
	res, err := s.svc.Runner.Run(ctx, s.device, safe, sshx.RunOpts{Timeout: timeout})
	if err != nil {
		span.SetStatus(codes.Error, "ssh error")
		return sshx.CommandResult{}, sshError(err)
	}

	var redacted bool
	res.Stdout, redacted = s.svc.Policy.SanitizeOutput(res.Stdout)
	if redacted {
		s.redacted = true
	}
	res.Stderr, redacted = s.svc.Policy.SanitizeOutput(res.Stderr)
	if redacted {
		s.redacted = true
	}
	return res, nil
}

// runOptional executes an optional command: a failure is logged and swallowed
// and the caller omits the corresponding section.
func (s *session) runOptional(ctx context.Context, command string, timeout time.Duration) (sshx.CommandResult, bool) {
	res, err := s.run(ctx, command, timeout)
	if err != nil {
		s.svc.logger().Debug("tools.optional_command_failed",
			"host", s.device.Host, "command", command, "error", err)
		return sshx.CommandResult{}, false
	}
	return res, true
}

func (s *session) durationMS() int64 {
	return time.Since(s.start).Milliseconds()
}

func (s *session) commandTimeout() time.Duration {
	return time.Duration(s.svc.Config.SSH.DefaultCommandTimeoutS) * time.Second
}
