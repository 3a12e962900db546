package sshx

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/ssh"
	xknownhosts "golang.org/x/crypto/ssh/knownhosts"

	"github.com/nextlevelbuilder/aosgate/internal/config"
)

// knownHostsMu serializes all read-modify-write cycles on the known-hosts
// file across the process.
var knownHostsMu sync.Mutex

// hostKeyPolicy implements the two host-key modes: strict (system known-hosts
// plus optional extra file, reject unknown) and learn (accept, then persist
// to the configured file).
type hostKeyPolicy struct {
	strict bool
	file   string
	verify ssh.HostKeyCallback
}

func newHostKeyPolicy(cfg config.SSHConfig) (*hostKeyPolicy, error) {
	p := &hostKeyPolicy{strict: cfg.StrictHostKeyChecking, file: config.ExpandHome(cfg.KnownHostsFile)}

	if !p.strict {
		return p, nil
	}

	var files []string
	for _, f := range systemKnownHostsFiles() {
		if _, err := os.Stat(f); err == nil {
			files = append(files, f)
		}
	}
	if p.file != "" {
		if _, err := os.Stat(p.file); err != nil {
			return nil, fmt.Errorf("known_hosts_file not found: %s", p.file)
		}
		files = append(files, p.file)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("strict host key checking enabled but no known_hosts files found")
	}

	verify, err := xknownhosts.New(files...)
	if err != nil {
		return nil, fmt.Errorf("load known_hosts: %w", err)
	}
	p.verify = verify
	return p, nil
}

func systemKnownHostsFiles() []string {
	var files []string
	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, filepath.Join(home, ".ssh", "known_hosts"))
	}
	files = append(files, "/etc/ssh/ssh_known_hosts")
	return files
}

func (p *hostKeyPolicy) callback() ssh.HostKeyCallback {
	if p.strict {
		return p.verify
	}
	// Learn mode: accept the key and persist it. A write failure is logged
	// but never fails the connection.
	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		if p.file == "" {
			return nil
		}
		if err := updateKnownHosts(p.file, hostname, key); err != nil {
			slog.Warn("ssh.known_hosts.update_failed", "file", p.file, "host", hostname, "error", err)
		}
		return nil
	}
}

// updateKnownHosts rewrites the known-hosts file with the entry for hostname
// replaced (or appended), preserving every other line and comment. The
// replacement is atomic: write to a temp file in the same directory, then
// rename over the original.
func updateKnownHosts(path, hostname string, key ssh.PublicKey) error {
	knownHostsMu.Lock()
	defer knownHostsMu.Unlock()

	normalized := xknownhosts.Normalize(hostname)
	newLine := xknownhosts.Line([]string{hostname}, key)

	var lines []string
	if data, err := os.ReadFile(path); err == nil {
		lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	} else if !os.IsNotExist(err) {
		return err
	}

	replaced := false
	out := make([]string, 0, len(lines)+1)
	for _, line := range lines {
		if line == "" {
			continue
		}
		if lineMatchesHost(line, normalized) {
			if !replaced {
				out = append(out, newLine)
				replaced = true
			}
			continue
		}
		out = append(out, line)
	}
	if !replaced {
		out = append(out, newLine)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".known_hosts-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(strings.Join(out, "\n") + "\n"); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// lineMatchesHost reports whether a known-hosts line's host field names the
// normalized host. Comments and hashed entries never match, so they are
// preserved verbatim.
func lineMatchesHost(line, normalized string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return false
	}
	fields := strings.Fields(trimmed)
	if len(fields) < 3 {
		return false
	}
	for _, h := range strings.Split(fields[0], ",") {
		if h == normalized {
			return true
		}
	}
	return false
}
