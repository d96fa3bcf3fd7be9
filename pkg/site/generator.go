// Package site drives the read, parse, render and write pipeline that
// produces the static page, plus the publish, watch and date enrichment
// workflows built on top of it.
package site

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/natefinch/atomic"

	"github.com/henryaj/heycochrane/pkg/core"
	"github.com/henryaj/heycochrane/pkg/records"
	"github.com/henryaj/heycochrane/pkg/render"
	"github.com/henryaj/heycochrane/pkg/tags"
)

// DefaultTagsFile is looked up next to the data file when no tags path is set.
const DefaultTagsFile = "tags.yml"

// Generator renders a data file through a template into one output file.
type Generator struct {
	logger   *slog.Logger
	tagsPath string
	store    *tags.Store
	renderer *render.Renderer

	mu    sync.Mutex
	state GeneratorState
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	store := tags.NewStore()
	renderOpts := []render.Option{render.WithLogger(o.logger)}
	if o.engine != nil {
		renderOpts = append(renderOpts, render.WithEngine(o.engine))
	}

	return &Generator{
		logger:   o.logger,
		tagsPath: o.tagsPath,
		store:    store,
		renderer: render.New(store, renderOpts...),
	}
}

// TagsPath returns the metadata file used for dataPath.
func (g *Generator) TagsPath(dataPath string) string {
	if g.tagsPath != "" {
		return g.tagsPath
	}
	return filepath.Join(filepath.Dir(dataPath), DefaultTagsFile)
}

// RenderAndSave reads the data and template files, renders them and writes
// the result to outputPath. The output is replaced atomically, so a failure
// at any stage leaves any previous output untouched. Stage errors are
// returned as the typed errors of package core.
func (g *Generator) RenderAndSave(templatePath, dataPath, outputPath string) error {
	n, err := g.renderAndSave(templatePath, dataPath, outputPath)
	g.record(outputPath, n, err)
	return err
}

func (g *Generator) renderAndSave(templatePath, dataPath, outputPath string) (int, error) {
	data, err := os.ReadFile(dataPath)
	if err != nil {
		return 0, &core.IOError{Op: "read", Path: dataPath, Err: err}
	}
	tmpl, err := os.ReadFile(templatePath)
	if err != nil {
		return 0, &core.IOError{Op: "read", Path: templatePath, Err: err}
	}

	recs, err := records.Unmarshal(data)
	if err != nil {
		var parseErr *core.ParseError
		if errors.As(err, &parseErr) && parseErr.Source == "" {
			parseErr.Source = dataPath
		}
		return 0, err
	}
	g.debug("parsed data file", "path", dataPath, "records", len(recs))

	if err := g.store.Load(g.TagsPath(dataPath)); err != nil {
		return len(recs), err
	}

	out, err := g.renderer.Render(filepath.Base(templatePath), string(tmpl), recs)
	if err != nil {
		return len(recs), err
	}

	if err := atomic.WriteFile(outputPath, strings.NewReader(out)); err != nil {
		return len(recs), &core.IOError{Op: "write", Path: outputPath, Err: err}
	}
	if g.logger != nil {
		g.logger.Info("page rendered", "output", outputPath, "records", len(recs), "bytes", len(out))
	}
	return len(recs), nil
}

func (g *Generator) record(outputPath string, records int, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state.Renders++
	g.state.LastRender = time.Now()
	g.state.Records = records
	g.state.Tags = g.store.Len()
	g.state.Output = outputPath
	g.state.LastError = ""
	if err != nil {
		g.state.Failures++
		g.state.LastError = err.Error()
	}
}

func (g *Generator) debug(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Debug(msg, args...)
	}
}
