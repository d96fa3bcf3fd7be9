package site

import (
	"log/slog"

	"github.com/henryaj/heycochrane/pkg/render"
)

// options holds the internal configuration for a Generator.
type options struct {
	logger   *slog.Logger
	tagsPath string
	engine   render.Engine
}

// Option defines a functional option for configuring a Generator.
type Option func(*options)

// WithLogger sets the logger for the generator.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTagsPath sets the tag metadata file. When empty, tags.yml next to the
// data file is used.
func WithTagsPath(path string) Option {
	return func(o *options) {
		o.tagsPath = path
	}
}

// WithEngine replaces the html/template engine.
func WithEngine(e render.Engine) Option {
	return func(o *options) {
		o.engine = e
	}
}
