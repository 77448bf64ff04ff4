package layers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/facts"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/model"
)

// LayerExplainer detects the layering style of a Java code base and
// reports imports that cross layers in the wrong direction.
type LayerExplainer struct{}

// New creates a new LayerExplainer.
func New() *LayerExplainer {
	return &LayerExplainer{}
}

func (e *LayerExplainer) Name() string {
	return "layers"
}

// layerDef defines how a layer is recognized from package name segments.
type layerDef struct {
	Name     string
	Patterns []string
	Level    int // Lower level = inner/domain, higher = outer/infra
}

var (
	// Controller / service / repository layering common in Spring and Jakarta EE code.
	tieredLayers = []layerDef{
		{Name: "model", Patterns: []string{"model", "models", "entity", "entities", "domain", "dto", "dtos"}, Level: 0},
		{Name: "repository", Patterns: []string{"repository", "repositories", "repo", "dao", "persistence"}, Level: 1},
		{Name: "service", Patterns: []string{"service", "services", "business"}, Level: 2},
		{Name: "controller", Patterns: []string{"controller", "controllers", "web", "rest", "api", "resource", "resources"}, Level: 3},
	}

	// Hexagonal / Clean Architecture layers
	hexagonalLayers = []layerDef{
		{Name: "domain", Patterns: []string{"domain", "core"}, Level: 0},
		{Name: "application", Patterns: []string{"application", "usecase", "usecases"}, Level: 1},
		{Name: "port", Patterns: []string{"port", "ports"}, Level: 1},
		{Name: "adapter", Patterns: []string{"adapter", "adapters", "infrastructure", "infra"}, Level: 2},
	}
)

// archPattern represents a detected architecture pattern with its confidence.
type archPattern struct {
	Name       string
	Confidence float64
	Layers     map[string]*layerDef
	Packages   map[string]string // package -> layer name
}

// Explain classifies packages into layers and reports violations.
func (e *LayerExplainer) Explain(ctx context.Context, store *facts.Store, _ []model.Document) ([]facts.Insight, error) {
	packages := store.ByKind(facts.KindModule)
	if len(packages) == 0 {
		return nil, nil
	}

	best := bestPattern(detectPatterns(packages))
	if best == nil {
		return nil, nil
	}

	names := make([]string, 0, len(best.Packages))
	for pkg := range best.Packages {
		names = append(names, pkg)
	}
	sort.Strings(names)
	evidence := make([]facts.Evidence, 0, len(names))
	for _, pkg := range names {
		evidence = append(evidence, facts.Evidence{
			Fact:   pkg,
			Detail: fmt.Sprintf("package %q maps to layer %q", pkg, best.Packages[pkg]),
		})
	}

	insights := []facts.Insight{{
		Title:       fmt.Sprintf("Architecture pattern: %s", best.Name),
		Description: fmt.Sprintf("Detected %s layering with %.0f%% confidence. Found %d layers with %d classified packages.", best.Name, best.Confidence*100, len(best.Layers), len(best.Packages)),
		Confidence:  best.Confidence,
		Evidence:    evidence,
		Actions: []string{
			"Ensure new code follows the detected layer structure",
			"Review cross-layer imports for violations",
		},
	}}
	return append(insights, detectViolations(store, best)...), nil
}

func detectPatterns(packages []facts.Fact) []*archPattern {
	var patterns []*archPattern

	for _, def := range []struct {
		name   string
		layers []layerDef
	}{
		{"tiered", tieredLayers},
		{"hexagonal", hexagonalLayers},
	} {
		pattern := &archPattern{
			Name:     def.name,
			Layers:   make(map[string]*layerDef),
			Packages: make(map[string]string),
		}

		matchCount := 0
		for _, pkg := range packages {
			for i, layer := range def.layers {
				if matchesLayer(pkg.Name, layer.Patterns) {
					pattern.Layers[layer.Name] = &def.layers[i]
					pattern.Packages[pkg.Name] = layer.Name
					matchCount++
					break
				}
			}
		}

		if matchCount == 0 {
			continue
		}
		coverage := float64(matchCount) / float64(len(packages))
		layerCoverage := float64(len(pattern.Layers)) / float64(len(def.layers))
		pattern.Confidence = min(coverage*0.6+layerCoverage*0.4, 1.0)

		// Minimum threshold
		if pattern.Confidence >= 0.2 && len(pattern.Layers) >= 2 {
			patterns = append(patterns, pattern)
		}
	}

	return patterns
}

func bestPattern(patterns []*archPattern) *archPattern {
	if len(patterns) == 0 {
		return nil
	}

	best := patterns[0]
	for _, p := range patterns[1:] {
		if p.Confidence > best.Confidence {
			best = p
		}
	}
	return best
}

// detectViolations reports imports from an inner layer into an outer one.
func detectViolations(store *facts.Store, pattern *archPattern) []facts.Insight {
	known := make(map[string]bool, len(pattern.Packages))
	for _, m := range store.ByKind(facts.KindModule) {
		known[m.Name] = true
	}

	var insights []facts.Insight
	for _, dep := range store.ByKind(facts.KindDependency) {
		source, _ := dep.Props["package"].(string)
		sourceLayer, ok := pattern.Packages[source]
		if !ok {
			continue
		}

		for _, rel := range dep.Relations {
			if rel.Kind != facts.RelImports {
				continue
			}
			target := facts.ResolvePackage(rel.Target, known)
			targetLayer, ok := pattern.Packages[target]
			if !ok {
				continue
			}

			sourceDef := pattern.Layers[sourceLayer]
			targetDef := pattern.Layers[targetLayer]
			if sourceDef.Level >= targetDef.Level {
				continue
			}
			insights = append(insights, facts.Insight{
				Title: fmt.Sprintf("Layer violation: %s -> %s", sourceLayer, targetLayer),
				Description: fmt.Sprintf(
					"Package %q (layer: %s, level %d) imports %s from package %q (layer: %s, level %d). "+
						"Inner layers should not depend on outer layers.",
					source, sourceLayer, sourceDef.Level,
					rel.Target, target, targetLayer, targetDef.Level,
				),
				Confidence: 0.8,
				Evidence: []facts.Evidence{
					{File: dep.File, Fact: dep.Name, Detail: fmt.Sprintf("import of %s", rel.Target)},
				},
				Actions: []string{
					"Introduce an interface in the inner layer",
					"Invert the dependency using dependency injection",
				},
			})
		}
	}

	return insights
}

// matchesLayer checks if any segment of a dotted package name is one of patterns.
func matchesLayer(pkg string, patterns []string) bool {
	for _, part := range strings.Split(strings.ToLower(pkg), ".") {
		for _, pattern := range patterns {
			if part == pattern {
				return true
			}
		}
	}
	return false
}
