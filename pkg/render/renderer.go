package render

import (
	"errors"
	"html/template"
	"log/slog"

	"github.com/henryaj/heycochrane/pkg/core"
	"github.com/henryaj/heycochrane/pkg/serialize"
	"github.com/henryaj/heycochrane/pkg/tags"
)

// Binding names visible to templates.
const (
	BindingRecords        = "records"
	BindingRecordsJSON    = "records_serialized"
	BindingTagsMetadata   = "tags_metadata"
	BindingTagsMetadataJS = "tags_metadata_serialized"
)

// Renderer binds records and tag metadata into a template.
type Renderer struct {
	engine Engine
	tags   *tags.Store
	logger *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithEngine replaces the default html/template engine.
func WithEngine(e Engine) Option {
	return func(r *Renderer) {
		r.engine = e
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// New creates a Renderer reading tag metadata from store. A nil store is
// treated as an empty one.
func New(store *tags.Store, opts ...Option) *Renderer {
	if store == nil {
		store = tags.NewStore()
	}
	r := &Renderer{tags: store}
	for _, opt := range opts {
		opt(r)
	}
	if r.engine == nil {
		r.engine = NewHTMLEngine(Funcs(store))
	}
	return r
}

// Bindings builds the template namespace for records.
func (r *Renderer) Bindings(records []core.Record) (Bindings, error) {
	recordsJSON, err := serialize.Records(records)
	if err != nil {
		return nil, err
	}
	meta := r.tags.Lookup()
	metaJSON, err := serialize.Tags(meta)
	if err != nil {
		return nil, err
	}

	return Bindings{
		BindingRecords:        records,
		BindingRecordsJSON:    template.JS(recordsJSON),
		BindingTagsMetadata:   meta,
		BindingTagsMetadataJS: template.JS(metaJSON),
	}, nil
}

// Render expands text, identified by name in error messages, against the
// records. Every failure is a *core.RenderError.
func (r *Renderer) Render(name, text string, records []core.Record) (string, error) {
	bindings, err := r.Bindings(records)
	if err != nil {
		return "", &core.RenderError{Template: name, Err: err}
	}

	if r.logger != nil {
		r.logger.Debug("rendering template", "template", name, "records", len(records), "tags", r.tags.Len())
	}
	out, err := r.engine.Render(name, text, bindings)
	if err != nil {
		var renderErr *core.RenderError
		if errors.As(err, &renderErr) {
			return "", err
		}
		return "", &core.RenderError{Template: name, Err: err}
	}
	return out, nil
}
