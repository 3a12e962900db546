package sshx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/nextlevelbuilder/aosgate/internal/config"
	"github.com/nextlevelbuilder/aosgate/internal/zonecreds"
)

// Executor is the production Runner. Safe for concurrent use: every Run opens
// and closes its own connections.
type Executor struct {
	cfg      config.SSHConfig
	jumps    map[string]JumpHost
	resolver *zonecreds.Resolver
	hostKeys *hostKeyPolicy
}

// NewExecutor builds an Executor from config. Jump host credentials are
// resolved eagerly so misconfiguration surfaces at startup, not mid-request.
func NewExecutor(cfg config.SSHConfig, inv config.InventoryConfig, resolver *zonecreds.Resolver) (*Executor, error) {
	jumps := make(map[string]JumpHost, len(inv.JumpHosts))
	for _, j := range inv.JumpHosts {
		cred, ok := zonecreds.FromConfig(j.Auth)
		if !ok {
			return nil, fmt.Errorf("jump host %q: credentials do not resolve", j.Name)
		}
		port := j.Port
		if port == 0 {
			port = 22
		}
		jumps[j.Name] = JumpHost{
			Name:       j.Name,
			Host:       j.Host,
			Port:       port,
			Username:   j.Username,
			Credential: cred,
		}
	}

	hk, err := newHostKeyPolicy(cfg)
	if err != nil {
		return nil, err
	}

	return &Executor{cfg: cfg, jumps: jumps, resolver: resolver, hostKeys: hk}, nil
}

// Run executes one command on the device. The command must already be
// sanitized by the policy layer.
func (e *Executor) Run(ctx context.Context, device Device, command string, opts RunOpts) (CommandResult, error) {
	start := time.Now()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Duration(e.cfg.DefaultCommandTimeoutS) * time.Second
	}

	username, auth, err := e.resolveAuth(device)
	if err != nil {
		return CommandResult{}, err
	}

	var jumpClient *ssh.Client
	var client *ssh.Client
	defer func() {
		// Device session first, jump second, on every exit path.
		if client != nil {
			_ = client.Close()
		}
		if jumpClient != nil {
			_ = jumpClient.Close()
		}
	}()

	var conn net.Conn
	deviceAddr := device.Addr()

	if device.Jump != "" {
		jump, ok := e.jumps[device.Jump]
		if !ok {
			return CommandResult{}, fmt.Errorf("unknown jump host: %s", device.Jump)
		}
		jumpClient, err = e.connect(ctx, nil, joinHostPort(jump.Host, jump.Port), jump.Username, authMethods(jump.Credential))
		if err != nil {
			return CommandResult{}, fmt.Errorf("jump host %s: %w", jump.Name, err)
		}
		conn, err = jumpClient.DialContext(ctx, "tcp", deviceAddr)
		if err != nil {
			return CommandResult{}, fmt.Errorf("jump channel to %s: %w", deviceAddr, err)
		}
	}

	client, err = e.connect(ctx, conn, deviceAddr, username, auth)
	if err != nil {
		return CommandResult{}, err
	}

	stopKeepalive := e.startKeepalive(client)
	defer stopKeepalive()

	for _, pre := range e.cfg.PreCommands {
		pre = strings.TrimSpace(pre)
		if pre == "" {
			continue
		}
		// Pre-command output is discarded; failures are not fatal.
		if _, _, err := e.exec(ctx, client, pre, timeout); err != nil {
			slog.Debug("ssh.pre_command.failed", "host", device.Host, "error", err)
		}
	}

	res, truncated, err := e.exec(ctx, client, command, timeout)
	if err != nil {
		return CommandResult{}, err
	}
	res.Truncated = truncated
	res.DurationMS = time.Since(start).Milliseconds()
	return res, nil
}

// resolveAuth picks the username and auth methods for a device, in order:
// explicit device credential, zone resolver, process-wide env fallback.
func (e *Executor) resolveAuth(device Device) (string, []ssh.AuthMethod, error) {
	if device.Credential != nil {
		username := device.Username
		if username == "" {
			username = device.Credential.Username
		}
		if username == "" {
			return "", nil, fmt.Errorf("missing SSH username for device %q", device.Host)
		}
		return username, authMethods(*device.Credential), nil
	}

	if creds := e.resolver.Resolve(device.Host); len(creds) > 0 {
		c := creds[0]
		username := device.Username
		if username == "" {
			username = c.Username
		}
		return username, authMethods(c), nil
	}

	if c, ok := zonecreds.Fallback(); ok {
		username := device.Username
		if username == "" {
			username = c.Username
		}
		return username, authMethods(c), nil
	}

	return "", nil, fmt.Errorf("no SSH credentials resolve for device %q: configure zone_auth or export AOS_DEVICE_USERNAME/AOS_DEVICE_PASSWORD", device.Host)
}

// authMethods converts a resolved credential into ssh auth methods.
func authMethods(c zonecreds.Credential) []ssh.AuthMethod {
	if c.KeyFile != "" {
		return []ssh.AuthMethod{ssh.PublicKeysCallback(func() ([]ssh.Signer, error) {
			data, err := os.ReadFile(c.KeyFile)
			if err != nil {
				return nil, err
			}
			var signer ssh.Signer
			if c.Passphrase != "" {
				signer, err = ssh.ParsePrivateKeyWithPassphrase(data, []byte(c.Passphrase))
			} else {
				signer, err = ssh.ParsePrivateKey(data)
			}
			if err != nil {
				return nil, err
			}
			return []ssh.Signer{signer}, nil
		})}
	}
	return []ssh.AuthMethod{ssh.Password(c.Password)}
}

// connect opens an SSH client over a fresh TCP connection, or over the given
// conn when tunneling through a jump host. The connect timeout bounds the
// dial; the banner+auth timeouts bound the handshake.
func (e *Executor) connect(ctx context.Context, conn net.Conn, addr, username string, auth []ssh.AuthMethod) (*ssh.Client, error) {
	clientCfg := &ssh.ClientConfig{
		User:            username,
		Auth:            auth,
		HostKeyCallback: e.hostKeys.callback(),
		Timeout:         time.Duration(e.cfg.ConnectTimeoutS) * time.Second,
	}

	if conn == nil {
		d := net.Dialer{Timeout: clientCfg.Timeout}
		var err error
		conn, err = d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", addr, err)
		}
	}

	handshakeTimeout := time.Duration(e.cfg.BannerTimeoutS+e.cfg.AuthTimeoutS) * time.Second
	client, err := handshake(ctx, conn, addr, clientCfg, handshakeTimeout)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return client, nil
}

// handshake runs the SSH handshake with its own deadline. Jump-host channels
// do not support SetDeadline, so the timeout is enforced by closing the
// connection from a watchdog.
func handshake(ctx context.Context, conn net.Conn, addr string, cfg *ssh.ClientConfig, timeout time.Duration) (*ssh.Client, error) {
	type result struct {
		client *ssh.Client
		err    error
	}
	done := make(chan result, 1)

	go func() {
		c, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
		if err != nil {
			done <- result{nil, err}
			return
		}
		done <- result{ssh.NewClient(c, chans, reqs), nil}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("ssh handshake %s: %w", addr, r.err)
		}
		return r.client, nil
	case <-timer.C:
		_ = conn.Close()
		<-done
		return nil, fmt.Errorf("ssh handshake %s: timeout after %s", addr, timeout)
	case <-ctx.Done():
		_ = conn.Close()
		<-done
		return nil, fmt.Errorf("ssh handshake %s: %w", addr, ctx.Err())
	}
}

// startKeepalive sends transport keepalives at the configured interval until
// the returned stop func is called.
func (e *Executor) startKeepalive(client *ssh.Client) func() {
	if e.cfg.KeepaliveS <= 0 {
		return func() {}
	}
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Duration(e.cfg.KeepaliveS) * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_, _, _ = client.SendRequest("keepalive@openssh.com", true, nil)
			}
		}
	}()
	return func() { close(stop) }
}

// exec runs one command in a fresh session and reads both streams up to the
// output cap.
func (e *Executor) exec(ctx context.Context, client *ssh.Client, command string, timeout time.Duration) (CommandResult, bool, error) {
	sess, err := client.NewSession()
	if err != nil {
		return CommandResult{}, false, fmt.Errorf("open session: %w", err)
	}
	defer sess.Close()

	stdout, err := sess.StdoutPipe()
	if err != nil {
		return CommandResult{}, false, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := sess.StderrPipe()
	if err != nil {
		return CommandResult{}, false, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := sess.Start(command); err != nil {
		return CommandResult{}, false, fmt.Errorf("start command: %w", err)
	}

	limit := e.cfg.MaxOutputBytes

	type streamResult struct {
		text      string
		truncated bool
	}
	outCh := make(chan streamResult, 1)
	errCh := make(chan streamResult, 1)
	go func() { t, tr := readLimited(stdout, limit); outCh <- streamResult{t, tr} }()
	go func() { t, tr := readLimited(stderr, limit); errCh <- streamResult{t, tr} }()

	waitCh := make(chan error, 1)
	go func() { waitCh <- sess.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var waitErr error
	select {
	case waitErr = <-waitCh:
	case <-timer.C:
		_ = sess.Close()
		return CommandResult{}, false, fmt.Errorf("command timeout after %s", timeout)
	case <-ctx.Done():
		_ = sess.Close()
		return CommandResult{}, false, ctx.Err()
	}

	out := <-outCh
	errOut := <-errCh

	res := CommandResult{Stdout: out.text, Stderr: errOut.text}

	// Best-effort exit status; nil when the remote side did not report one.
	if waitErr == nil {
		zero := 0
		res.ExitStatus = &zero
	} else {
		var exitErr *ssh.ExitError
		if errors.As(waitErr, &exitErr) {
			status := exitErr.ExitStatus()
			res.ExitStatus = &status
		} else {
			var missing *ssh.ExitMissingError
			if !errors.As(waitErr, &missing) {
				return CommandResult{}, false, fmt.Errorf("command wait: %w", waitErr)
			}
		}
	}

	return res, out.truncated || errOut.truncated, nil
}

// readLimited reads up to limit+1 bytes; the extra byte detects truncation.
func readLimited(r io.Reader, limit int) (string, bool) {
	data, _ := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if len(data) > limit {
		return string(data[:limit]), true
	}
	return string(data), false
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
