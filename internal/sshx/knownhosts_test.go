package sshx

import (
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"

	"github.com/nextlevelbuilder/aosgate/internal/config"
)

func testPublicKey(t *testing.T) ssh.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	key, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatal(err)
	}
	return key
}

func TestUpdateKnownHostsAppendsAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known_hosts")
	seed := "# managed by aosgate\nother.example.net ssh-ed25519 AAAAfakekeydata\n"
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}

	first := testPublicKey(t)
	if err := updateKnownHosts(path, "10.9.19.10", first); err != nil {
		t.Fatalf("append: %v", err)
	}

	second := testPublicKey(t)
	if err := updateKnownHosts(path, "10.9.19.10", second); err != nil {
		t.Fatalf("replace: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	if !strings.Contains(content, "# managed by aosgate") {
		t.Errorf("comment line lost")
	}
	if !strings.Contains(content, "other.example.net") {
		t.Errorf("unrelated entry lost")
	}

	count := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "10.9.19.10") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("entries for host = %d, want exactly 1 after replace", count)
	}

	// The surviving entry must be the newer key.
	newLine := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(second)))
	if !strings.Contains(content, newLine) {
		t.Errorf("newest key not persisted")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestUpdateKnownHostsCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "known_hosts")
	if err := updateKnownHosts(path, "10.9.19.10", testPublicKey(t)); err != nil {
		t.Fatalf("create: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "10.9.19.10") {
		t.Errorf("entry missing: %q", data)
	}
}

func TestStrictModeRequiresKnownHosts(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")
	_, err := newHostKeyPolicy(config.SSHConfig{
		StrictHostKeyChecking: true,
		KnownHostsFile:        missing,
	})
	if err == nil {
		t.Errorf("strict mode accepted a missing known_hosts file")
	}
}

func TestLearnModeNeverRejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known_hosts")
	p, err := newHostKeyPolicy(config.SSHConfig{KnownHostsFile: path})
	if err != nil {
		t.Fatalf("newHostKeyPolicy: %v", err)
	}

	cb := p.callback()
	if err := cb("10.9.19.10:22", nil, testPublicKey(t)); err != nil {
		t.Errorf("learn mode rejected: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("learned key not persisted: %v", err)
	}
}
