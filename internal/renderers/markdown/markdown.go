// Package markdown renders parsed Java documents as a tree of Markdown pages:
// one page per type, an index per package and a project README.
package markdown

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/facts"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/model"
)

const mimeMarkdown = "text/markdown"

// MarkdownRenderer turns the documents of a snapshot into Markdown artifacts.
type MarkdownRenderer struct{}

// New creates a new MarkdownRenderer.
func New() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

func (r *MarkdownRenderer) Name() string {
	return "markdown"
}

// Render produces README.md, <package path>/index.md and
// <package path>/<Type>.md for every named type.
func (r *MarkdownRenderer) Render(ctx context.Context, snapshot *facts.Snapshot) ([]facts.Artifact, error) {
	docs := namedDocuments(snapshot.Documents)
	lint := snapshot.Meta.Lint

	var artifacts []facts.Artifact
	byPackage := make(map[string][]model.Document)
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		decl := doc.Object.Decl()
		byPackage[decl.Package] = append(byPackage[decl.Package], doc)
		artifacts = append(artifacts, facts.Artifact{
			Name:    TypePath(decl.Package, decl.Name),
			Content: []byte(RenderType(doc, lint)),
			Type:    mimeMarkdown,
		})
	}

	pkgs := make([]string, 0, len(byPackage))
	for pkg := range byPackage {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)
	for _, pkg := range pkgs {
		artifacts = append(artifacts, facts.Artifact{
			Name:    path.Join(PackagePath(pkg), "index.md"),
			Content: []byte(renderPackage(pkg, byPackage[pkg], snapshot.Application)),
			Type:    mimeMarkdown,
		})
	}

	artifacts = append(artifacts, facts.Artifact{
		Name:    "README.md",
		Content: []byte(renderReadme(snapshot, pkgs, byPackage)),
		Type:    mimeMarkdown,
	})
	return artifacts, nil
}

// PackagePath maps a Java package to its output directory. The default
// package maps to the output root.
func PackagePath(pkg string) string {
	if pkg == "" {
		return "."
	}
	return strings.ReplaceAll(pkg, ".", "/")
}

// TypePath returns the artifact name of a type's page.
func TypePath(pkg, name string) string {
	return path.Join(PackagePath(pkg), name+".md")
}

// namedDocuments drops documents without a type and orders the rest by
// package, then type name.
func namedDocuments(docs []model.Document) []model.Document {
	var out []model.Document
	for _, d := range docs {
		if d.Object != nil && d.Object.Decl().Name != "" {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Object.Decl(), out[j].Object.Decl()
		if a.Package != b.Package {
			return a.Package < b.Package
		}
		return a.Name < b.Name
	})
	return out
}

// RenderType renders the page of one type. With lint set, parser
// diagnostics are listed at the end of the page.
func RenderType(doc model.Document, lint bool) string {
	decl := doc.Object.Decl()
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s %s\n\n", kindTitle(doc.Kind), decl.Name)
	if decl.Signature != "" {
		fmt.Fprintf(&sb, "```java\n%s\n```\n\n", strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(decl.Signature), "{")))
	}
	if decl.Deprecated != "" {
		fmt.Fprintf(&sb, "> **Deprecated:** %s\n\n", decl.Deprecated)
	}
	if decl.Description != "" {
		sb.WriteString(decl.Description + "\n\n")
	}

	sb.WriteString("| | |\n|---|---|\n")
	pkg := decl.Package
	if pkg == "" {
		pkg = "(default package)"
	}
	fmt.Fprintf(&sb, "| Package | `%s` |\n", pkg)
	fmt.Fprintf(&sb, "| Source | `%s` line %d |\n", doc.Path, decl.Line)
	switch obj := doc.Object.(type) {
	case *model.Class:
		if obj.Parent != "" {
			fmt.Fprintf(&sb, "| Extends | `%s` |\n", cell(obj.Parent))
		}
		if len(obj.Interfaces) > 0 {
			fmt.Fprintf(&sb, "| Implements | %s |\n", codeList(obj.Interfaces))
		}
	case *model.Interface:
		if len(obj.Extends) > 0 {
			fmt.Fprintf(&sb, "| Extends | %s |\n", codeList(obj.Extends))
		}
	case *model.Enumeration:
		if len(obj.Interfaces) > 0 {
			fmt.Fprintf(&sb, "| Implements | %s |\n", codeList(obj.Interfaces))
		}
	}
	if decl.Author != "" {
		fmt.Fprintf(&sb, "| Author | %s |\n", cell(decl.Author))
	}
	if decl.Version != "" {
		fmt.Fprintf(&sb, "| Version | %s |\n", cell(decl.Version))
	}
	if decl.See != "" {
		fmt.Fprintf(&sb, "| See | %s |\n", cell(decl.See))
	}
	sb.WriteString("\n")

	if len(decl.Dependencies) > 0 {
		sb.WriteString("## Imports\n\n")
		for _, dep := range decl.Dependencies {
			fmt.Fprintf(&sb, "- `%s`\n", dep)
		}
		sb.WriteString("\n")
	}

	if enum, ok := doc.Object.(*model.Enumeration); ok && len(enum.Fields) > 0 {
		sb.WriteString("## Constants\n\n| Name | Ordinal |\n|---|---|\n")
		for _, f := range enum.Fields {
			fmt.Fprintf(&sb, "| `%s` | %s |\n", f.Name, f.Value)
		}
		sb.WriteString("\n")
	}

	if len(decl.Variables) > 0 {
		sb.WriteString("## Fields\n\n| Name | Type | Access | Modifiers | Line |\n|---|---|---|---|---|\n")
		for _, v := range decl.Variables {
			fmt.Fprintf(&sb, "| `%s` | `%s` | %s | %s | %d |\n",
				v.Name, cell(v.Type), v.Access, strings.Join(v.Modifiers, " "), v.Line)
		}
		sb.WriteString("\n")
	}

	if len(decl.Methods) > 0 {
		sb.WriteString("## Methods\n\n")
		for _, m := range decl.Methods {
			renderMethod(&sb, m)
		}
	}

	if decl.License != "" {
		sb.WriteString("## License\n\n")
		for _, line := range strings.Split(decl.License, "\n") {
			sb.WriteString(strings.TrimRight("> "+line, " ") + "\n")
		}
		sb.WriteString("\n")
	}

	if lint && len(doc.Diagnostics) > 0 {
		sb.WriteString("## Diagnostics\n\n")
		for _, d := range doc.Diagnostics {
			fmt.Fprintf(&sb, "- %s\n", d)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func renderMethod(sb *strings.Builder, m model.Method) {
	fmt.Fprintf(sb, "### %s\n\n", m.Name)
	if m.Signature != "" {
		sig := strings.TrimSpace(m.Signature)
		sig = strings.TrimSpace(strings.TrimSuffix(sig, "{"))
		fmt.Fprintf(sb, "```java\n%s\n```\n\n", sig)
	}
	if m.Deprecated != "" {
		fmt.Fprintf(sb, "> **Deprecated:** %s\n\n", m.Deprecated)
	}
	if m.Description != "" {
		sb.WriteString(m.Description + "\n\n")
	}

	if len(m.Parameters) > 0 {
		sb.WriteString("| Parameter | Type | Description |\n|---|---|---|\n")
		for _, p := range m.Parameters {
			fmt.Fprintf(sb, "| `%s` | `%s` | %s |\n", p.Name, cell(p.Type), cell(p.Description))
		}
		sb.WriteString("\n")
	}

	constructor := m.DeclaredReturnType == m.Name
	if !constructor && m.DeclaredReturnType != "" && m.DeclaredReturnType != "void" {
		if m.ReturnType != "" && m.ReturnType != m.DeclaredReturnType {
			fmt.Fprintf(sb, "**Returns:** `%s` %s\n\n", m.DeclaredReturnType, m.ReturnType)
		} else {
			fmt.Fprintf(sb, "**Returns:** `%s`\n\n", m.DeclaredReturnType)
		}
	}

	if len(m.Exceptions) > 0 {
		sb.WriteString("**Throws:**\n\n")
		for _, ex := range m.Exceptions {
			if ex.Description != "" {
				fmt.Fprintf(sb, "- `%s` %s\n", ex.Type, ex.Description)
			} else {
				fmt.Fprintf(sb, "- `%s`\n", ex.Type)
			}
		}
		sb.WriteString("\n")
	}
	if m.See != "" {
		fmt.Fprintf(sb, "**See:** %s\n\n", m.See)
	}
}

func renderPackage(pkg string, docs []model.Document, app *model.ApplicationDoc) string {
	var sb strings.Builder
	title := pkg
	if title == "" {
		title = "(default package)"
	}
	fmt.Fprintf(&sb, "# Package %s\n\n", title)
	if app != nil {
		if p := app.Package(pkg); p != nil {
			fmt.Fprintf(&sb, "Source directory: `%s`\n\n", p.Path)
		}
	}

	sb.WriteString("| Type | Kind | Summary |\n|---|---|---|\n")
	for _, doc := range docs {
		decl := doc.Object.Decl()
		fmt.Fprintf(&sb, "| [%s](%s.md) | %s | %s |\n", decl.Name, decl.Name, doc.Kind, cell(firstSentence(decl.Description)))
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderReadme(snapshot *facts.Snapshot, pkgs []string, byPackage map[string][]model.Document) string {
	var sb strings.Builder
	sb.WriteString("# API Documentation\n\n")

	if app := snapshot.Application; app != nil {
		sb.WriteString("| Files | Classes | Interfaces | Enums | Packages |\n|---|---|---|---|---|\n")
		fmt.Fprintf(&sb, "| %d | %d | %d | %d | %d |\n\n",
			app.FileNum, app.ClassNum, app.InterfaceNum, app.EnumNum, len(app.Packages))
	}

	if len(pkgs) == 0 {
		sb.WriteString("_No documented types found._\n")
		return sb.String()
	}

	sb.WriteString("## Packages\n\n")
	for _, pkg := range pkgs {
		title := pkg
		if title == "" {
			title = "(default package)"
		}
		n := len(byPackage[pkg])
		noun := "types"
		if n == 1 {
			noun = "type"
		}
		fmt.Fprintf(&sb, "- [%s](%s) (%d %s)\n", title, path.Join(PackagePath(pkg), "index.md"), n, noun)
	}
	sb.WriteString("\n")

	if m := snapshot.Meta; m.GeneratedAt != "" {
		fmt.Fprintf(&sb, "---\n\n*Generated at %s.*\n", m.GeneratedAt)
	}
	return sb.String()
}

func kindTitle(k model.Kind) string {
	switch k {
	case model.KindInterface:
		return "Interface"
	case model.KindEnumeration:
		return "Enum"
	default:
		return "Class"
	}
}

// firstSentence returns the description up to and including its first
// period followed by whitespace.
func firstSentence(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	return s
}

func codeList(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = "`" + cell(it) + "`"
	}
	return strings.Join(quoted, ", ")
}

// cell makes s safe inside a table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
