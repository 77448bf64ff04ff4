// Package summary renders a compact, token-budgeted overview of a Java
// project for readers that cannot take the full documentation tree.
package summary

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/facts"
)

// SummaryRenderer produces summary.md within a token budget.
type SummaryRenderer struct {
	maxTokens int
}

// New creates a new SummaryRenderer with the given token budget.
func New(maxTokens int) *SummaryRenderer {
	if maxTokens <= 0 {
		maxTokens = 4000
	}
	return &SummaryRenderer{maxTokens: maxTokens}
}

func (r *SummaryRenderer) Name() string {
	return "summary"
}

// section holds a rendered section with its display name.
type section struct {
	name    string
	content string
}

// Render produces the summary.md artifact using progressive summarization.
// Sections are ordered by priority; lower-priority sections are omitted first
// when the token budget is tight.
func (r *SummaryRenderer) Render(ctx context.Context, snapshot *facts.Snapshot) ([]facts.Artifact, error) {
	sections := []section{
		{"Overview", renderOverview(snapshot)},
		{"Package Map", renderPackageMap(snapshot)},
		{"Architecture Pattern", renderArchPattern(snapshot)},
		{"Type Hierarchy", renderHierarchy(snapshot)},
		{"Dependency Rules", renderDependencyRules(snapshot)},
		{"Critical Packages", renderCriticalPackages(snapshot)},
		{"Risk Zones", renderRiskZones(snapshot)},
		{"Documentation Gaps", renderDocGaps(snapshot)},
		{"Meta", renderMeta(snapshot)},
	}

	header := "# Project Summary\n\n"
	maxChars := r.maxTokens * 4 // rough estimate: 1 token ~= 4 chars
	remaining := maxChars - len(header)

	var sb strings.Builder
	sb.WriteString(header)

	for i, sec := range sections {
		if sec.content == "" {
			continue
		}
		if len(sec.content) <= remaining {
			sb.WriteString(sec.content)
			remaining -= len(sec.content)
			continue
		}
		if remaining > 200 {
			sb.WriteString(sec.content[:remaining-100])
			fmt.Fprintf(&sb, "\n\n---\n*[Truncated in: %s]*\n", sec.name)
			break
		}
		var omitted []string
		for _, s := range sections[i:] {
			if s.content != "" {
				omitted = append(omitted, s.name)
			}
		}
		fmt.Fprintf(&sb, "\n\n---\n*[Omitted: %s]*\n", strings.Join(omitted, ", "))
		break
	}

	return []facts.Artifact{
		{
			Name:    "summary.md",
			Content: []byte(sb.String()),
			Type:    "text/markdown",
		},
	}, nil
}

func renderOverview(snapshot *facts.Snapshot) string {
	app := snapshot.Application
	if app == nil {
		return ""
	}
	return fmt.Sprintf("## Overview\n\n%d files: %d classes, %d interfaces, %d enums in %d packages.\n\n",
		app.FileNum, app.ClassNum, app.InterfaceNum, app.EnumNum, len(app.Packages))
}

var typeKinds = map[string]bool{
	facts.SymbolClass:      true,
	facts.SymbolInterface:  true,
	facts.SymbolEnum:       true,
	facts.SymbolRecord:     true,
	facts.SymbolAnnotation: true,
}

func isType(f facts.Fact) bool {
	kind, _ := f.Props["symbol_kind"].(string)
	return f.Kind == facts.KindSymbol && typeKinds[kind]
}

func renderPackageMap(snapshot *facts.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("## Package Map\n\n")

	packages := filterByKind(snapshot.Facts, facts.KindModule)
	if len(packages) == 0 {
		sb.WriteString("_No packages detected._\n\n")
		return sb.String()
	}

	typeCounts := make(map[string]int)
	documented := make(map[string]int)
	for _, f := range snapshot.Facts {
		if !isType(f) {
			continue
		}
		pkg, _ := f.Props["package"].(string)
		typeCounts[pkg]++
		if d, _ := f.Props["documented"].(bool); d {
			documented[pkg]++
		}
	}

	sort.Slice(packages, func(i, j int) bool {
		return packages[i].Name < packages[j].Name
	})

	sb.WriteString("| Package | Directory | Types | Documented |\n")
	sb.WriteString("|---------|-----------|-------|------------|\n")
	for _, p := range packages {
		fmt.Fprintf(&sb, "| `%s` | `%s` | %d | %d |\n", p.Name, p.File, typeCounts[p.Name], documented[p.Name])
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderArchPattern(snapshot *facts.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("## Architecture Pattern\n\n")

	for _, insight := range snapshot.Insights {
		if !strings.HasPrefix(insight.Title, "Architecture pattern:") {
			continue
		}
		fmt.Fprintf(&sb, "**%s** (confidence: %.0f%%)\n\n", insight.Title, insight.Confidence*100)
		sb.WriteString(insight.Description + "\n\n")
		if len(insight.Evidence) > 0 {
			sb.WriteString("Layer mapping:\n")
			for _, ev := range insight.Evidence {
				fmt.Fprintf(&sb, "- %s\n", ev.Detail)
			}
			sb.WriteString("\n")
		}
		return sb.String()
	}

	sb.WriteString("_No specific architecture pattern detected._\n\n")
	return sb.String()
}

func renderHierarchy(snapshot *facts.Snapshot) string {
	var lines []string
	for _, f := range snapshot.Facts {
		if !isType(f) {
			continue
		}
		for _, rel := range f.Relations {
			if rel.Kind == facts.RelExtends || rel.Kind == facts.RelImplements {
				lines = append(lines, fmt.Sprintf("- `%s` %s `%s`", f.Name, rel.Kind, rel.Target))
			}
		}
	}
	if len(lines) == 0 {
		return ""
	}

	sort.Strings(lines)
	var sb strings.Builder
	sb.WriteString("## Type Hierarchy\n\n")
	for _, l := range lines {
		sb.WriteString(l + "\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

// packageEdges returns the distinct package-to-package imports.
func packageEdges(snapshot *facts.Snapshot) [][2]string {
	packages := make(map[string]bool)
	for _, f := range snapshot.Facts {
		if f.Kind == facts.KindModule {
			packages[f.Name] = true
		}
	}

	seen := make(map[[2]string]bool)
	var edges [][2]string
	for _, dep := range filterByKind(snapshot.Facts, facts.KindDependency) {
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
			e := [2]string{source, target}
			if !seen[e] {
				seen[e] = true
				edges = append(edges, e)
			}
		}
	}
	return edges
}

func renderDependencyRules(snapshot *facts.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("## Dependency Rules\n\n")

	var lines []string
	for _, e := range packageEdges(snapshot) {
		lines = append(lines, fmt.Sprintf("- `%s` -> `%s`", e[0], e[1]))
	}
	if len(lines) == 0 {
		sb.WriteString("_No internal package dependencies detected._\n\n")
		return sb.String()
	}

	sort.Strings(lines)
	for _, l := range lines {
		sb.WriteString(l + "\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderCriticalPackages(snapshot *facts.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("## Critical Packages\n\n")

	fanIn := make(map[string]int)
	fanOut := make(map[string]int)
	for _, e := range packageEdges(snapshot) {
		fanOut[e[0]]++
		fanIn[e[1]]++
	}

	type pkgScore struct {
		Name   string
		FanIn  int
		FanOut int
		Score  int
	}

	var scored []pkgScore
	for _, p := range filterByKind(snapshot.Facts, facts.KindModule) {
		s := pkgScore{Name: p.Name, FanIn: fanIn[p.Name], FanOut: fanOut[p.Name]}
		s.Score = s.FanIn + s.FanOut
		if s.Score > 0 {
			scored = append(scored, s)
		}
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Name < scored[j].Name
	})

	if len(scored) == 0 {
		sb.WriteString("_No cross-package dependencies detected._\n\n")
		return sb.String()
	}

	// Show top 10
	scored = scored[:min(len(scored), 10)]
	sb.WriteString("| Package | Fan-In | Fan-Out | Criticality |\n")
	sb.WriteString("|---------|--------|---------|-------------|\n")
	for _, s := range scored {
		criticality := "low"
		if s.Score >= 10 {
			criticality = "high"
		} else if s.Score >= 5 {
			criticality = "medium"
		}
		fmt.Fprintf(&sb, "| `%s` | %d | %d | %s |\n", s.Name, s.FanIn, s.FanOut, criticality)
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderRiskZones(snapshot *facts.Snapshot) string {
	var risks []string
	for _, insight := range snapshot.Insights {
		if strings.HasPrefix(insight.Title, "Cyclic package dependency") ||
			strings.HasPrefix(insight.Title, "Layer violation") {
			risks = append(risks, fmt.Sprintf("- **%s** (confidence: %.0f%%): %s",
				insight.Title, insight.Confidence*100, insight.Description))
		}
	}
	if len(risks) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("## Risk Zones\n\n")
	for _, risk := range risks {
		sb.WriteString(risk + "\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

var docGapTitles = map[string]bool{
	"Undocumented public types":   true,
	"Undocumented public methods": true,
	"Undocumented parameters":     true,
	"Missing @return":             true,
	"Parser diagnostics":          true,
}

func renderDocGaps(snapshot *facts.Snapshot) string {
	var sb strings.Builder
	for _, insight := range snapshot.Insights {
		if !docGapTitles[insight.Title] {
			continue
		}
		if sb.Len() == 0 {
			sb.WriteString("## Documentation Gaps\n\n")
		}
		fmt.Fprintf(&sb, "- **%s**: %s\n", insight.Title, insight.Description)
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderMeta(snapshot *facts.Snapshot) string {
	return fmt.Sprintf("---\n\n*Generated at %s in %s. %d documents, %d facts, %d insights.*\n",
		snapshot.Meta.GeneratedAt, snapshot.Meta.Duration,
		snapshot.Meta.DocumentCount, snapshot.Meta.FactCount, snapshot.Meta.InsightCount)
}

func filterByKind(ff []facts.Fact, kind string) []facts.Fact {
	var result []facts.Fact
	for _, f := range ff {
		if f.Kind == kind {
			result = append(result, f)
		}
	}
	return result
}
