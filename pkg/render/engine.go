// Package render expands a page template against the records and their
// serialized forms.
package render

import (
	"bytes"
	"html/template"

	"github.com/henryaj/heycochrane/pkg/core"
)

// Bindings is the variable namespace handed to a template.
type Bindings map[string]any

// Engine is the narrow templating capability the renderer depends on.
// Implementations must fail, rather than substitute blanks, when the
// template references a binding that does not exist.
type Engine interface {
	Render(name, text string, bindings Bindings) (string, error)
}

// HTMLEngine renders templates with html/template.
type HTMLEngine struct {
	funcs template.FuncMap
}

// NewHTMLEngine creates an engine exposing funcs to every template.
func NewHTMLEngine(funcs template.FuncMap) *HTMLEngine {
	return &HTMLEngine{funcs: funcs}
}

// Render parses text and executes it against bindings. Parse and execution
// failures are returned as *core.RenderError and no partial output is
// returned.
func (e *HTMLEngine) Render(name, text string, bindings Bindings) (string, error) {
	tmpl, err := template.New(name).
		Option("missingkey=error").
		Funcs(e.funcs).
		Parse(text)
	if err != nil {
		return "", &core.RenderError{Template: name, Err: err}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any(bindings)); err != nil {
		return "", &core.RenderError{Template: name, Err: err}
	}
	return buf.String(), nil
}
