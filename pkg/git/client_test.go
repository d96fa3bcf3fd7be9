package git

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func newRepo(t *testing.T) *Client {
	t.Helper()
	requireGit(t)
	client := NewClient(t.TempDir(), nil)
	if err := client.Init(); err != nil {
		t.Fatalf("Failed to init: %v", err)
	}
	for _, kv := range [][2]string{{"user.email", "test@example.com"}, {"user.name", "Test"}, {"commit.gpgsign", "false"}} {
		if _, err := client.Run("config", kv[0], kv[1]); err != nil {
			t.Fatalf("Failed to configure repo: %v", err)
		}
	}
	return client
}

func TestClient_Lock(t *testing.T) {
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)

	unlock, err := client.Lock()
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}

	lockPath := filepath.Join(tmpDir, LockFile)
	if _, err := os.Stat(lockPath); os.IsNotExist(err) {
		t.Error("Lock file not created")
	}

	unlock()

	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Error("Lock file not removed after unlock")
	}
}

func TestClient_LockTimeout(t *testing.T) {
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)
	client.LockTimeout = 50 * time.Millisecond

	unlock, err := client.Lock()
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	defer unlock()

	if _, err := client.Lock(); !errors.Is(err, ErrLockTimeout) {
		t.Errorf("expected ErrLockTimeout, got %v", err)
	}
}

func TestClient_Init(t *testing.T) {
	client := newRepo(t)

	if _, err := os.Stat(filepath.Join(client.WorkDir, ".git")); os.IsNotExist(err) {
		t.Error(".git directory not created")
	}
}

func TestClient_AddCommitStatus(t *testing.T) {
	client := newRepo(t)

	page := filepath.Join(client.WorkDir, "index.html")
	if err := os.WriteFile(page, []byte("<h1>hi</h1>"), 0644); err != nil {
		t.Fatal(err)
	}

	changed, err := client.HasChanges("index.html")
	if err != nil {
		t.Fatalf("HasChanges failed: %v", err)
	}
	if !changed {
		t.Fatal("expected untracked file to count as a change")
	}

	if err := client.Add("index.html"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := client.Commit("Update site"); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	changed, err = client.HasChanges("index.html")
	if err != nil {
		t.Fatalf("HasChanges failed: %v", err)
	}
	if changed {
		t.Error("expected clean tree after commit")
	}

	log, err := client.Run("log", "--format=%s")
	if err != nil {
		t.Fatalf("log failed: %v", err)
	}
	if log != "Update site" {
		t.Errorf("unexpected log %q", log)
	}
}

func TestClient_PushToBareRemote(t *testing.T) {
	client := newRepo(t)

	remoteDir := t.TempDir()
	if out, err := exec.Command("git", "init", "--bare", remoteDir).CombinedOutput(); err != nil {
		t.Fatalf("bare init failed: %v\n%s", err, out)
	}
	if _, err := client.Run("remote", "add", "origin", remoteDir); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(client.WorkDir, "index.html"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := client.Add("index.html"); err != nil {
		t.Fatal(err)
	}
	if err := client.Commit("first"); err != nil {
		t.Fatal(err)
	}

	if err := client.Push("origin", "main"); err != nil {
		t.Fatalf("Push failed: %v", err)
	}

	out, err := exec.Command("git", "--git-dir", remoteDir, "log", "--format=%s", "main").CombinedOutput()
	if err != nil {
		t.Fatalf("remote log failed: %v\n%s", err, out)
	}
	if string(out) != "first\n" {
		t.Errorf("unexpected remote log %q", out)
	}
}
