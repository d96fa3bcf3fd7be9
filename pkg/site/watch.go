package site

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last change before a rebuild.
const DefaultDebounce = 100 * time.Millisecond

// WatchConfig describes the inputs a Watcher rebuilds from.
type WatchConfig struct {
	TemplatePath string
	DataPath     string
	OutputPath   string
	// Patterns are extra doublestar globs (e.g. "partials/**/*.html") whose
	// changes also trigger a rebuild.
	Patterns []string
	Debounce time.Duration
	// OnRender is called after every rebuild with its result.
	OnRender func(error)
}

// Watcher re-runs the full pipeline whenever one of its inputs changes.
type Watcher struct {
	gen      *Generator
	cfg      WatchConfig
	logger   *slog.Logger
	fsw      *fsnotify.Watcher
	files    map[string]struct{}
	patterns []string
	done     chan struct{}
}

// NewWatcher creates a watcher for gen. Call Start to begin watching.
func NewWatcher(gen *Generator, cfg WatchConfig) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	return &Watcher{
		gen:    gen,
		cfg:    cfg,
		logger: gen.logger,
		files:  make(map[string]struct{}),
		done:   make(chan struct{}),
	}
}

// Start registers the watched directories and runs the event loop in the
// background until ctx is cancelled. Directories are registered before
// Start returns.
func (w *Watcher) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	tagsPath := w.gen.TagsPath(w.cfg.DataPath)
	var dirs []string
	for _, f := range []string{w.cfg.TemplatePath, w.cfg.DataPath, tagsPath} {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		w.files[filepath.ToSlash(abs)] = struct{}{}
		dir := filepath.Dir(abs)
		// The tags file is optional, and so is the directory holding it.
		if f == tagsPath && !isDir(dir) {
			if w.logger != nil {
				w.logger.Debug("tags directory missing, not watched", "dir", dir)
			}
			continue
		}
		dirs = append(dirs, dir)
	}
	for _, p := range w.cfg.Patterns {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		pattern := filepath.ToSlash(abs)
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid watch pattern %q", p)
		}
		w.patterns = append(w.patterns, pattern)
		patternDirs, err := globDirs(pattern)
		if err != nil {
			return err
		}
		dirs = append(dirs, patternDirs...)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	seen := make(map[string]struct{})
	for _, d := range dirs {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		if err := fsw.Add(d); err != nil {
			_ = fsw.Close()
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}
	w.fsw = fsw

	if w.logger != nil {
		w.logger.Info("watching for changes", "files", len(w.files), "patterns", w.patterns)
	}

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		if w.logger != nil {
			w.logger.Error("watcher stopped", "error", err)
		}
	}))
	return nil
}

// Done is closed when the event loop has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// globDirs returns the static base directory of pattern, and every directory
// below it when the pattern descends with "**".
func globDirs(pattern string) ([]string, error) {
	base, rest := doublestar.SplitPattern(pattern)
	root := filepath.FromSlash(base)
	if !strings.Contains(rest, "**") && !strings.Contains(rest, "/") {
		return []string{root}, nil
	}

	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return dirs, nil
}

func (w *Watcher) matches(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	path := filepath.ToSlash(abs)
	if _, ok := w.files[path]; ok {
		return true
	}
	for _, p := range w.patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) run(ctx context.Context) error {
	defer close(w.done)
	defer w.fsw.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if !w.matches(event.Name) {
				continue
			}
			if w.logger != nil {
				w.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.cfg.Debounce)
			fire = timer.C

		case <-fire:
			timer, fire = nil, nil
			w.rebuild()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if w.logger != nil {
				w.logger.Error("fsnotify error", "error", err)
			}
		}
	}
}

// rebuild runs the pipeline once. Failures are reported, never fatal.
func (w *Watcher) rebuild() {
	err := w.gen.RenderAndSave(w.cfg.TemplatePath, w.cfg.DataPath, w.cfg.OutputPath)
	if w.logger != nil {
		if err != nil {
			w.logger.Error("rebuild failed", "error", err)
		} else {
			w.logger.Debug("rebuild complete", "state", w.gen.State())
		}
	}
	if w.cfg.OnRender != nil {
		w.cfg.OnRender(err)
	}
}
