package heycochrane

import (
	"log/slog"

	"github.com/henryaj/heycochrane/pkg/core"
	"github.com/henryaj/heycochrane/pkg/records"
	"github.com/henryaj/heycochrane/pkg/render"
	"github.com/henryaj/heycochrane/pkg/site"
)

// --- Types ---

// Record is a public alias for a single review summary.
type Record = core.Record

// TagInfo is a public alias for the display metadata of a tag.
type TagInfo = core.TagInfo

// --- Configuration ---

// Option defines a functional option for configuring the generator.
type Option = site.Option

// WithLogger sets the logger for the generator.
func WithLogger(logger *slog.Logger) Option {
	return site.WithLogger(logger)
}

// WithTagsPath sets the tag metadata file.
func WithTagsPath(path string) Option {
	return site.WithTagsPath(path)
}

// WithEngine replaces the template engine.
func WithEngine(e render.Engine) Option {
	return site.WithEngine(e)
}

// --- Factory ---

// New creates a page generator.
func New(opts ...Option) *site.Generator {
	return site.New(opts...)
}

// --- Operations ---

// Render reads the data file, renders the template and writes the output file.
func Render(templatePath, dataPath, outputPath string, opts ...Option) error {
	return site.New(opts...).RenderAndSave(templatePath, dataPath, outputPath)
}

// LoadRecords reads and validates a data file.
func LoadRecords(path string) ([]Record, error) {
	return records.Load(path)
}
