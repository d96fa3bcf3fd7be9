package site

import (
	"fmt"
	"log/slog"
)

// Committer is the version-control surface Publish needs. *git.Client
// satisfies it.
type Committer interface {
	Lock() (func(), error)
	Add(files ...string) error
	HasChanges(paths ...string) (bool, error)
	Commit(msg string, paths ...string) error
	Push(remote, branch string) error
}

// PublishOptions controls how the rendered page is committed.
type PublishOptions struct {
	Message string
	Remote  string
	Branch  string
	NoPush  bool
	Logger  *slog.Logger
}

// DefaultCommitMessage is used when PublishOptions.Message is empty.
const DefaultCommitMessage = "Update site"

// Publish stages outputPath, commits it and pushes the commit. It reports
// false without committing when the output did not change.
func Publish(repo Committer, outputPath string, opts PublishOptions) (bool, error) {
	if opts.Message == "" {
		opts.Message = DefaultCommitMessage
	}

	unlock, err := repo.Lock()
	if err != nil {
		return false, err
	}
	defer unlock()

	if err := repo.Add(outputPath); err != nil {
		return false, fmt.Errorf("stage %s: %w", outputPath, err)
	}

	changed, err := repo.HasChanges(outputPath)
	if err != nil {
		return false, fmt.Errorf("status %s: %w", outputPath, err)
	}
	if !changed {
		if opts.Logger != nil {
			opts.Logger.Info("output unchanged, nothing to publish", "output", outputPath)
		}
		return false, nil
	}

	if err := repo.Commit(opts.Message, outputPath); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	if opts.Logger != nil {
		opts.Logger.Info("committed output", "output", outputPath, "message", opts.Message)
	}

	if opts.NoPush {
		return true, nil
	}
	if err := repo.Push(opts.Remote, opts.Branch); err != nil {
		return true, fmt.Errorf("push: %w", err)
	}
	if opts.Logger != nil {
		opts.Logger.Info("pushed", "remote", opts.Remote, "branch", opts.Branch)
	}
	return true, nil
}
