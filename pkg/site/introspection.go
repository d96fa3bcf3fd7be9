package site

import (
	"time"

	"github.com/aretw0/introspection"
)

// GeneratorState exposes the outcome of past renders for observability.
type GeneratorState struct {
	Renders    int       `json:"renders"`
	Failures   int       `json:"failures"`
	Records    int       `json:"records"`
	Tags       int       `json:"tags"`
	Output     string    `json:"output"`
	LastRender time.Time `json:"last_render"`
	LastError  string    `json:"last_error,omitempty"`
}

// State implements introspection.Introspectable.
func (g *Generator) State() any {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// ComponentType implements introspection.Component.
func (g *Generator) ComponentType() string {
	return "generator"
}

var _ introspection.Introspectable = (*Generator)(nil)
var _ introspection.Component = (*Generator)(nil)
