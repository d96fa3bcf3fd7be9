// Package git drives the git binary for publishing the generated page.
package git

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// LockFile is the name of the lock file created in the work tree.
const LockFile = ".heycochrane.lock"

// ErrLockTimeout is returned when another publish holds the lock for too long.
var ErrLockTimeout = errors.New("timed out waiting for publish lock")

// Client wraps git command execution with a file-based lock for process safety.
type Client struct {
	WorkDir     string
	Logger      *slog.Logger
	LockTimeout time.Duration
	lockPath    string
}

// NewClient creates a new git client for the given working directory.
func NewClient(workDir string, logger *slog.Logger) *Client {
	return &Client{
		WorkDir:     workDir,
		Logger:      logger,
		LockTimeout: 30 * time.Second,
		lockPath:    LockFile,
	}
}

// Lock acquires the file-based lock, polling until it is free or
// LockTimeout elapses. The returned function releases it.
func (c *Client) Lock() (func(), error) {
	fullLockPath := filepath.Join(c.WorkDir, c.lockPath)
	deadline := time.Now().Add(c.LockTimeout)

	for {
		f, err := os.OpenFile(fullLockPath, os.O_CREATE|os.O_EXCL, 0666)
		if err == nil {
			f.Close()
			return func() {
				os.Remove(fullLockPath)
			}, nil
		}

		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}
		if c.LockTimeout > 0 && time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Run executes a raw git command in the working directory.
// It does NOT acquire the lock; callers manage that via Client.Lock().
func (c *Client) Run(args ...string) (string, error) {
	if c.Logger != nil {
		c.Logger.Debug("executing git", "args", args, "dir", c.WorkDir)
	}

	cmd := exec.Command("git", args...)
	cmd.Dir = c.WorkDir

	out, err := cmd.CombinedOutput()
	output := string(out)

	if err != nil {
		return output, fmt.Errorf("git %s failed: %w\nOutput: %s", args[0], err, output)
	}

	return strings.TrimSpace(output), nil
}

// Init initializes a new git repository. Re-running it is harmless.
func (c *Client) Init() error {
	_, err := c.Run("init")
	return err
}

// Add stages files.
func (c *Client) Add(files ...string) error {
	if len(files) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, files...)
	_, err := c.Run(args...)
	return err
}

// Commit records staged changes. With paths, only those paths are
// committed and anything else in the index stays staged.
func (c *Client) Commit(msg string, paths ...string) error {
	args := []string{"commit", "-m", msg}
	if len(paths) > 0 {
		args = append(append(args, "--"), paths...)
	}
	_, err := c.Run(args...)
	return err
}

// Push sends the current branch to remote. An empty branch pushes HEAD.
func (c *Client) Push(remote, branch string) error {
	if remote == "" {
		remote = "origin"
	}
	ref := "HEAD"
	if branch != "" {
		ref = "HEAD:" + branch
	}
	_, err := c.Run("push", remote, ref)
	return err
}

// Status returns the porcelain status of the repo, optionally limited to paths.
func (c *Client) Status(paths ...string) (string, error) {
	args := []string{"status", "--porcelain"}
	if len(paths) > 0 {
		args = append(append(args, "--"), paths...)
	}
	return c.Run(args...)
}

// HasChanges reports whether any of paths differ from HEAD, staged or not.
func (c *Client) HasChanges(paths ...string) (bool, error) {
	out, err := c.Status(paths...)
	if err != nil {
		return false, err
	}
	return out != "", nil
}
