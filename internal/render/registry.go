package render

import (
	"context"

	"miglens/internal/report"
)

// Renderer produces output documents from a finished report.
type Renderer interface {
	// Name returns the renderer identifier (e.g. "summary").
	Name() string
	// Render produces documents from the given report.
	Render(ctx context.Context, rep *report.Report) ([]report.Rendered, error)
}

// Registry holds registered renderers.
type Registry struct {
	renderers []Renderer
}

// NewRegistry creates a new renderer registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a renderer to the registry.
func (r *Registry) Register(rnd Renderer) {
	r.renderers = append(r.renderers, rnd)
}

// Get returns the renderer with the given name, or nil if not found.
func (r *Registry) Get(name string) Renderer {
	for _, rnd := range r.renderers {
		if rnd.Name() == name {
			return rnd
		}
	}
	return nil
}

// All returns all registered renderers.
func (r *Registry) All() []Renderer {
	return r.renderers
}
