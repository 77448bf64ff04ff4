package renderers

import (
	"context"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/facts"
)

// Renderer produces output artifacts from a snapshot.
type Renderer interface {
	// Name returns the renderer identifier (e.g. "markdown").
	Name() string
	// Render produces artifacts from the given snapshot.
	Render(ctx context.Context, snapshot *facts.Snapshot) ([]facts.Artifact, error)
}

// Registry keeps renderers in registration order. Registering a second
// renderer under an existing name replaces the first in place.
type Registry struct {
	renderers []Renderer
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(rnd Renderer) {
	for i, existing := range r.renderers {
		if existing.Name() == rnd.Name() {
			r.renderers[i] = rnd
			return
		}
	}
	r.renderers = append(r.renderers, rnd)
}

// Enabled returns the registered renderers whose names pass the filter.
func (r *Registry) Enabled(enabled func(name string) bool) []Renderer {
	var out []Renderer
	for _, rnd := range r.renderers {
		if enabled(rnd.Name()) {
			out = append(out, rnd)
		}
	}
	return out
}
