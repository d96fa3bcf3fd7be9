package site

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henryaj/heycochrane/pkg/git"
)

type fakeRepo struct {
	changed  bool
	pushErr  error
	calls    []string
	locked   bool
	unlocked bool
}

func (r *fakeRepo) Lock() (func(), error) {
	r.locked = true
	return func() { r.unlocked = true }, nil
}

func (r *fakeRepo) Add(files ...string) error {
	r.calls = append(r.calls, "add")
	return nil
}

func (r *fakeRepo) HasChanges(paths ...string) (bool, error) {
	r.calls = append(r.calls, "status")
	return r.changed, nil
}

func (r *fakeRepo) Commit(msg string, paths ...string) error {
	r.calls = append(r.calls, "commit:"+msg+":"+strings.Join(paths, ","))
	return nil
}

func (r *fakeRepo) Push(remote, branch string) error {
	r.calls = append(r.calls, "push:"+remote+":"+branch)
	return r.pushErr
}

func TestPublish(t *testing.T) {
	repo := &fakeRepo{changed: true}

	committed, err := Publish(repo, "index.html", PublishOptions{Remote: "origin", Branch: "main"})
	require.NoError(t, err)
	assert.True(t, committed)
	assert.Equal(t, []string{"add", "status", "commit:" + DefaultCommitMessage + ":index.html", "push:origin:main"}, repo.calls)
	assert.True(t, repo.locked)
	assert.True(t, repo.unlocked)
}

func TestPublish_Unchanged(t *testing.T) {
	repo := &fakeRepo{changed: false}

	committed, err := Publish(repo, "index.html", PublishOptions{})
	require.NoError(t, err)
	assert.False(t, committed)
	assert.Equal(t, []string{"add", "status"}, repo.calls)
}

func TestPublish_NoPush(t *testing.T) {
	repo := &fakeRepo{changed: true}

	committed, err := Publish(repo, "index.html", PublishOptions{Message: "Add reviews", NoPush: true})
	require.NoError(t, err)
	assert.True(t, committed)
	assert.Equal(t, []string{"add", "status", "commit:Add reviews:index.html"}, repo.calls)
}

func TestPublish_PushFailure(t *testing.T) {
	repo := &fakeRepo{changed: true, pushErr: errors.New("remote rejected")}

	committed, err := Publish(repo, "index.html", PublishOptions{})
	assert.True(t, committed)
	assert.ErrorContains(t, err, "remote rejected")
	assert.True(t, repo.unlocked)
}

func TestPublish_GitRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	f := newFixture(t)
	client := git.NewClient(f.dir, nil)
	require.NoError(t, client.Init())
	for _, kv := range [][2]string{{"user.email", "test@example.com"}, {"user.name", "Test"}, {"commit.gpgsign", "false"}} {
		_, err := client.Run("config", kv[0], kv[1])
		require.NoError(t, err)
	}

	require.NoError(t, New().RenderAndSave(f.tmpl, f.data, f.output))

	committed, err := Publish(client, "index.html", PublishOptions{NoPush: true})
	require.NoError(t, err)
	assert.True(t, committed)

	// Rendering again produces identical output, so there is nothing to commit.
	require.NoError(t, New().RenderAndSave(f.tmpl, f.data, f.output))
	committed, err = Publish(client, "index.html", PublishOptions{NoPush: true})
	require.NoError(t, err)
	assert.False(t, committed)

	_, err = os.Stat(filepath.Join(f.dir, git.LockFile))
	assert.True(t, os.IsNotExist(err), "lock must be released")
}

func TestPublish_LeavesOtherStagedFiles(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	f := newFixture(t)
	client := git.NewClient(f.dir, nil)
	require.NoError(t, client.Init())
	for _, kv := range [][2]string{{"user.email", "test@example.com"}, {"user.name", "Test"}, {"commit.gpgsign", "false"}} {
		_, err := client.Run("config", kv[0], kv[1])
		require.NoError(t, err)
	}

	f.write(t, filepath.Join(f.dir, "draft.txt"), "work in progress")
	require.NoError(t, client.Add("draft.txt"))
	require.NoError(t, New().RenderAndSave(f.tmpl, f.data, f.output))

	committed, err := Publish(client, "index.html", PublishOptions{Message: "Publish page", NoPush: true})
	require.NoError(t, err)
	assert.True(t, committed)

	files, err := client.Run("show", "--name-only", "--format=", "HEAD")
	require.NoError(t, err)
	assert.Equal(t, "index.html", strings.TrimSpace(files))

	status, err := client.Status("draft.txt")
	require.NoError(t, err)
	assert.Equal(t, "A  draft.txt", strings.TrimSpace(status))
}
