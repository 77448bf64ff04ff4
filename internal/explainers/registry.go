package explainers

import (
	"context"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/facts"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/model"
)

// Explainer analyzes facts and parsed documents and produces insights.
type Explainer interface {
	// Name returns the explainer identifier (e.g. "cycles", "doclint").
	Name() string
	// Explain analyzes the fact store and the documents of the same run.
	Explain(ctx context.Context, store *facts.Store, docs []model.Document) ([]facts.Insight, error)
}

// Registry keeps explainers in registration order. Registering a second
// explainer under an existing name replaces the first in place.
type Registry struct {
	explainers []Explainer
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(exp Explainer) {
	for i, existing := range r.explainers {
		if existing.Name() == exp.Name() {
			r.explainers[i] = exp
			return
		}
	}
	r.explainers = append(r.explainers, exp)
}

// Enabled returns the registered explainers whose names pass the filter.
func (r *Registry) Enabled(enabled func(name string) bool) []Explainer {
	var out []Explainer
	for _, exp := range r.explainers {
		if enabled(exp.Name()) {
			out = append(out, exp)
		}
	}
	return out
}
