package cycles

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/facts"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/model"
)

// CycleExplainer detects import cycles between Java packages using Tarjan's SCC algorithm.
type CycleExplainer struct{}

// New creates a new CycleExplainer.
func New() *CycleExplainer {
	return &CycleExplainer{}
}

func (e *CycleExplainer) Name() string {
	return "cycles"
}

// Explain builds a package graph from import facts and reports every cycle.
func (e *CycleExplainer) Explain(ctx context.Context, store *facts.Store, _ []model.Document) ([]facts.Insight, error) {
	graph, sites := buildDependencyGraph(store)

	var insights []facts.Insight
	for _, scc := range tarjanSCC(graph) {
		if len(scc) <= 1 {
			continue
		}
		sort.Strings(scc)
		members := make(map[string]bool, len(scc))
		for _, pkg := range scc {
			members[pkg] = true
		}

		cyclePath := strings.Join(scc, " -> ") + " -> " + scc[0]
		evidence := make([]facts.Evidence, 0, len(scc))
		for _, pkg := range scc {
			ev := facts.Evidence{
				Fact:   pkg,
				Detail: fmt.Sprintf("package %q is part of the cycle", pkg),
			}
			for _, target := range graph[pkg] {
				if members[target] {
					site := sites[edge{pkg, target}]
					ev.File = site
					ev.Detail = fmt.Sprintf("package %q imports %q (%s)", pkg, target, site)
					break
				}
			}
			evidence = append(evidence, ev)
		}

		insights = append(insights, facts.Insight{
			Title:       fmt.Sprintf("Cyclic package dependency detected (%d packages)", len(scc)),
			Description: fmt.Sprintf("The following packages import each other in a cycle: %s.", cyclePath),
			Confidence:  1.0,
			Evidence:    evidence,
			Actions: []string{
				"Introduce an interface in the lower-level package to break the cycle",
				"Move the shared types to a separate package",
			},
		})
	}

	return insights, nil
}

type edge struct{ from, to string }

// buildDependencyGraph maps each Java package to the packages of this
// repository it imports, and records one importing file per edge. Imports
// of packages outside the repository are dropped.
func buildDependencyGraph(store *facts.Store) (map[string][]string, map[edge]string) {
	graph := make(map[string][]string)
	sites := make(map[edge]string)

	packages := make(map[string]bool)
	for _, m := range store.ByKind(facts.KindModule) {
		packages[m.Name] = true
		if _, ok := graph[m.Name]; !ok {
			graph[m.Name] = nil
		}
	}

	for _, dep := range store.ByKind(facts.KindDependency) {
		source, _ := dep.Props["package"].(string)
		if source == "" {
			continue
		}
		for _, rel := range dep.Relations {
			if rel.Kind != facts.RelImports {
				continue
			}
			target := facts.ResolvePackage(rel.Target, packages)
			if target == "" || target == source {
				continue
			}
			e := edge{source, target}
			if _, seen := sites[e]; seen {
				continue
			}
			sites[e] = dep.File
			graph[source] = append(graph[source], target)
		}
	}

	return graph, sites
}

// tarjanSCC implements Tarjan's strongly connected components algorithm.
// Vertices are visited in name order so results are stable.
func tarjanSCC(graph map[string][]string) [][]string {
	var (
		index    int
		stack    []string
		onStack  = make(map[string]bool)
		indices  = make(map[string]int)
		lowlinks = make(map[string]int)
		sccs     [][]string
	)

	var strongConnect func(v string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlinks[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlinks[v] = min(lowlinks[v], lowlinks[w])
			} else if onStack[w] {
				lowlinks[v] = min(lowlinks[v], indices[w])
			}
		}

		// Root of an SCC
		if lowlinks[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	vertices := make([]string, 0, len(graph))
	for v := range graph {
		vertices = append(vertices, v)
	}
	sort.Strings(vertices)
	for _, v := range vertices {
		if _, visited := indices[v]; !visited {
			strongConnect(v)
		}
	}

	return sccs
}
