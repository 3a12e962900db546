package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nextlevelbuilder/aosgate/pkg/protocol"
)

func hostArgs(args map[string]any) (string, int, *Error) {
	host, err := requireString(args, "host")
	if err != nil {
		return "", 0, err
	}
	port, err := optionalInt(args, "port", 0)
	if err != nil {
		return "", 0, err
	}
	return host, port, nil
}

func textBlock(text string) protocol.ContentBlock {
	return protocol.ContentBlock{Type: "text", Text: text}
}

// cliReadonly implements aos.cli.readonly: run one policy-checked command and
// return its raw (sanitized) output.
func cliReadonly(ctx context.Context, svc *Service, args map[string]any) (*Output, error) {
	if err := checkKeys(args, "host", "port", "command", "timeout_s"); err != nil {
		return nil, err
	}
	host, port, err := hostArgs(args)
	if err != nil {
		return nil, err
	}
	command, err := requireString(args, "command")
	if err != nil {
		return nil, err
	}
	timeoutS, err := optionalInt(args, "timeout_s", svc.Config.SSH.DefaultCommandTimeoutS)
	if err != nil {
		return nil, err
	}

	s := svc.newSession(host, port)
	res, runErr := s.run(ctx, command, time.Duration(timeoutS)*time.Second)
	if runErr != nil {
		return nil, runErr
	}

	data := map[string]any{
		"host":              s.device.Host,
		"command":           s.commands[0],
		"stdout":            res.Stdout,
		"stderr":            res.Stderr,
		"exit_status":       res.ExitStatus,
		"truncated":         res.Truncated,
		"redacted":          s.redacted,
		"duration_ms":       s.durationMS(),
		"commands_executed": s.commands,
	}

	text := fmt.Sprintf("**Command output: %s**\n\n```\n%s\n```", s.device.Host, strings.TrimRight(res.Stdout, "\n"))
	if res.Truncated {
		text += "\n\n(output truncated)"
	}

	return &Output{
		Data:     data,
		Content:  []protocol.ContentBlock{textBlock(text)},
		Commands: s.commands,
	}, nil
}

// expandTemplate substitutes {destination} and optionally {count} in a
// configured diagnostic command template.
func expandTemplate(template, destination string, count int) (string, []string, *Error) {
	if !strings.Contains(template, "{destination}") {
		return "", nil, invalidRequest("command template missing {destination} placeholder")
	}
	cmd := strings.ReplaceAll(template, "{destination}", destination)

	var warnings []string
	if strings.Contains(cmd, "{count}") {
		if count <= 0 {
			count = 3
		}
		cmd = strings.ReplaceAll(cmd, "{count}", strconv.Itoa(count))
	} else if count > 0 {
		warnings = append(warnings, "count argument ignored: template has no {count} placeholder")
	}
	return cmd, warnings, nil
}

func diagPing(ctx context.Context, svc *Service, args map[string]any) (*Output, error) {
	if err := checkKeys(args, "host", "port", "destination", "count", "timeout_s"); err != nil {
		return nil, err
	}
	host, port, err := hostArgs(args)
	if err != nil {
		return nil, err
	}
	destination, err := requireString(args, "destination")
	if err != nil {
		return nil, err
	}
	count, err := optionalInt(args, "count", 0)
	if err != nil {
		return nil, err
	}
	timeoutS, err := optionalInt(args, "timeout_s", svc.Config.SSH.DefaultCommandTimeoutS)
	if err != nil {
		return nil, err
	}

	cmd, warnings, err := expandTemplate(svc.Config.Templates.Ping, destination, count)
	if err != nil {
		return nil, err
	}

	s := svc.newSession(host, port)
	res, runErr := s.run(ctx, cmd, time.Duration(timeoutS)*time.Second)
	if runErr != nil {
		return nil, runErr
	}

	data := map[string]any{
		"host":              s.device.Host,
		"destination":       destination,
		"stdout":            res.Stdout,
		"stderr":            res.Stderr,
		"exit_status":       res.ExitStatus,
		"truncated":         res.Truncated,
		"duration_ms":       s.durationMS(),
		"commands_executed": s.commands,
	}
	text := fmt.Sprintf("**Ping from %s to %s**\n\n```\n%s\n```", s.device.Host, destination, strings.TrimRight(res.Stdout, "\n"))

	return &Output{Data: data, Content: []protocol.ContentBlock{textBlock(text)}, Commands: s.commands, Warnings: warnings}, nil
}

func diagTraceroute(ctx context.Context, svc *Service, args map[string]any) (*Output, error) {
	if err := checkKeys(args, "host", "port", "destination", "timeout_s"); err != nil {
		return nil, err
	}
	host, port, err := hostArgs(args)
	if err != nil {
		return nil, err
	}
	destination, err := requireString(args, "destination")
	if err != nil {
		return nil, err
	}
	timeoutS, err := optionalInt(args, "timeout_s", 30)
	if err != nil {
		return nil, err
	}

	cmd, warnings, err := expandTemplate(svc.Config.Templates.Traceroute, destination, 0)
	if err != nil {
		return nil, err
	}

	s := svc.newSession(host, port)
	res, runErr := s.run(ctx, cmd, time.Duration(timeoutS)*time.Second)
	if runErr != nil {
		return nil, runErr
	}

	data := map[string]any{
		"host":              s.device.Host,
		"destination":       destination,
		"stdout":            res.Stdout,
		"stderr":            res.Stderr,
		"exit_status":       res.ExitStatus,
		"truncated":         res.Truncated,
		"duration_ms":       s.durationMS(),
		"commands_executed": s.commands,
	}
	text := fmt.Sprintf("**Traceroute from %s to %s**\n\n```\n%s\n```", s.device.Host, destination, strings.TrimRight(res.Stdout, "\n"))

	return &Output{Data: data, Content: []protocol.ContentBlock{textBlock(text)}, Commands: s.commands, Warnings: warnings}, nil
}

// backupTimeout is the floor for `write terminal`: full configurations are
// slow to stream on loaded switches.
const backupTimeout = 60 * time.Second

func configBackup(ctx context.Context, svc *Service, args map[string]any) (*Output, error) {
	if err := checkKeys(args, "host", "port", "timeout_s"); err != nil {
		return nil, err
	}
	host, port, err := hostArgs(args)
	if err != nil {
		return nil, err
	}
	timeoutS, err := optionalInt(args, "timeout_s", 0)
	if err != nil {
		return nil, err
	}
	timeout := backupTimeout
	if t := time.Duration(timeoutS) * time.Second; t > timeout {
		timeout = t
	}

	s := svc.newSession(host, port)
	res, runErr := s.run(ctx, "write terminal", timeout)
	if runErr != nil {
		return nil, runErr
	}

	now := time.Now().UTC().Format(time.RFC3339)
	data := map[string]any{
		"host":              s.device.Host,
		"config":            res.Stdout,
		"size_bytes":        len(res.Stdout),
		"timestamp":         now,
		"truncated":         res.Truncated,
		"duration_ms":       s.durationMS(),
		"commands_executed": s.commands,
	}

	text := fmt.Sprintf("**Configuration backup: %s**\n\nCaptured %d bytes at %s.", s.device.Host, len(res.Stdout), now)
	if res.Truncated {
		text += "\n\n(output truncated; increase max_output_bytes for a complete backup)"
	}

	return &Output{Data: data, Content: []protocol.ContentBlock{textBlock(text)}, Commands: s.commands}, nil
}
