// Package modeldump writes the parsed documentation model as YAML so other
// tools can consume it without re-parsing the sources.
package modeldump

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/facts"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/model"
)

// FileName is the artifact written by the renderer.
const FileName = "model.yaml"

// Dump is the document written to model.yaml.
type Dump struct {
	Application *model.ApplicationDoc `yaml:"application"`
	Documents   []model.Document      `yaml:"documents"`
}

// ModelRenderer serializes the application roll-up and every document.
type ModelRenderer struct{}

// New creates a new ModelRenderer.
func New() *ModelRenderer {
	return &ModelRenderer{}
}

func (r *ModelRenderer) Name() string {
	return "model"
}

// Render produces model.yaml.
func (r *ModelRenderer) Render(ctx context.Context, snapshot *facts.Snapshot) ([]facts.Artifact, error) {
	out, err := yaml.Marshal(Dump{Application: snapshot.Application, Documents: snapshot.Documents})
	if err != nil {
		return nil, fmt.Errorf("marshaling model: %w", err)
	}
	return []facts.Artifact{{Name: FileName, Content: out, Type: "application/yaml"}}, nil
}
