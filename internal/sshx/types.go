// Package sshx executes CLI commands on OmniSwitch devices over SSH, directly
// or through a jump host. Each Run owns its connections end-to-end; the only
// shared mutable state is the known-hosts file, guarded by a process-wide
// lock.
package sshx

import (
	"context"
	"time"

	"github.com/nextlevelbuilder/aosgate/internal/zonecreds"
)

// Device identifies the target of a single Run. Request-scoped; never
// persisted.
type Device struct {
	ID   string
	Host string
	Port int

	// Username and Credential override resolver/default lookup when set.
	Username   string
	Credential *zonecreds.Credential

	// Jump names a configured jump host to tunnel through.
	Jump string
}

// Addr returns the dial address, defaulting the port to 22.
func (d Device) Addr() string {
	port := d.Port
	if port == 0 {
		port = 22
	}
	return joinHostPort(d.Host, port)
}

// JumpHost is an SSH bastion. Always fully specified.
type JumpHost struct {
	Name       string
	Host       string
	Port       int
	Username   string
	Credential zonecreds.Credential
}

// CommandResult is the outcome of one executed command. Stdout and stderr are
// each capped at max_output_bytes; overflow sets Truncated.
type CommandResult struct {
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	ExitStatus *int   `json:"exit_status"`
	DurationMS int64  `json:"duration_ms"`
	Truncated  bool   `json:"truncated"`
}

// RunOpts carries per-call execution options.
type RunOpts struct {
	// Timeout bounds the command execution; zero means the configured
	// default. Long-running backups pass an explicit higher value.
	Timeout time.Duration
}

// Runner is the execution interface the tool handlers depend on. Tests
// substitute a scripted fake.
type Runner interface {
	Run(ctx context.Context, device Device, command string, opts RunOpts) (CommandResult, error)
}
