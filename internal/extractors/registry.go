package extractors

import (
	"context"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/facts"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/model"
)

// Extraction is what an extractor produces for one run: indexed facts and
// the parsed documents they were derived from.
type Extraction struct {
	Facts     []facts.Fact
	Documents []model.Document
}

// Extractor parses the source files of one language.
type Extractor interface {
	// Name returns the extractor identifier (e.g. "java").
	Name() string
	// Detect reports whether the repository holds sources this extractor reads.
	Detect(repoPath string) (bool, error)
	// Extract parses the given repo-relative files.
	Extract(ctx context.Context, repoPath string, files []string) (*Extraction, error)
}

// Registry keeps extractors in registration order. Registering a second
// extractor under an existing name replaces the first in place.
type Registry struct {
	extractors []Extractor
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(ext Extractor) {
	for i, existing := range r.extractors {
		if existing.Name() == ext.Name() {
			r.extractors[i] = ext
			return
		}
	}
	r.extractors = append(r.extractors, ext)
}

// Enabled returns the registered extractors whose names pass the filter.
func (r *Registry) Enabled(enabled func(name string) bool) []Extractor {
	var out []Extractor
	for _, ext := range r.extractors {
		if enabled(ext.Name()) {
			out = append(out, ext)
		}
	}
	return out
}
