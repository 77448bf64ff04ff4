package server

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/facts"
)

// exploreModule describes the package named name. At depth 2 the members
// of every declared type are listed too.
func (s *Server) exploreModule(store *facts.Store, name string, depth int, sb *strings.Builder) bool {
	var module *facts.Fact
	for _, f := range store.ByName(name) {
		if f.Kind == facts.KindModule {
			module = &f
			break
		}
	}
	if module == nil {
		return false
	}

	fmt.Fprintf(sb, "# Package: %s\n\n", module.Name)
	fmt.Fprintf(sb, "Directory: `%s`  Files: %v\n\n", module.File, module.Props["files"])

	var types []string
	for _, r := range module.Relations {
		if r.Kind == facts.RelDeclares {
			types = append(types, r.Target)
		}
	}
	sort.Strings(types)

	fmt.Fprintf(sb, "## Types (%d)\n\n", len(types))
	sb.WriteString("| Type | Kind | File | Documented |\n|---|---|---|---|\n")
	for _, t := range types {
		f, ok := symbolFact(store, t)
		if !ok {
			fmt.Fprintf(sb, "| %s | | | |\n", t)
			continue
		}
		fmt.Fprintf(sb, "| %s | %v | %s:%d | %v |\n", t, f.Props["symbol_kind"], f.File, f.Line, f.Props["documented"])
	}
	sb.WriteString("\n")

	if depth >= 2 {
		sb.WriteString("## Members\n\n")
		for _, t := range types {
			members := membersOf(store, t)
			if len(members) == 0 {
				continue
			}
			fmt.Fprintf(sb, "### %s\n\n", t)
			for _, m := range members {
				fmt.Fprintf(sb, "- %s (%v, line %d)\n", m.Name, m.Props["symbol_kind"], m.Line)
			}
			sb.WriteString("\n")
		}
	}

	writePackageEdges(store, module.Name, sb)
	return true
}

// exploreModuleSubstring explores the single package whose name contains
// focus, or lists the candidates when several do.
func (s *Server) exploreModuleSubstring(store *facts.Store, focus string, depth int, sb *strings.Builder) bool {
	var matches []string
	for _, m := range store.Modules() {
		if strings.Contains(m.Name, focus) {
			matches = append(matches, m.Name)
		}
	}
	switch len(matches) {
	case 0:
		return false
	case 1:
		return s.exploreModule(store, matches[0], depth, sb)
	}

	sort.Strings(matches)
	fmt.Fprintf(sb, "Multiple packages matching %q:\n\n", focus)
	for _, m := range matches {
		fmt.Fprintf(sb, "- %s\n", m)
	}
	return true
}

// exploreFile lists what one source file declares and imports.
func (s *Server) exploreFile(store *facts.Store, file string, depth int, sb *strings.Builder) bool {
	ff := store.ByFile(file)
	if len(ff) == 0 {
		return false
	}

	fmt.Fprintf(sb, "# File: %s\n\n", file)

	var symbols, imports []facts.Fact
	for _, f := range ff {
		switch f.Kind {
		case facts.KindSymbol:
			if _, member := f.Props["owner"]; member && depth < 2 {
				continue
			}
			symbols = append(symbols, f)
		case facts.KindDependency:
			imports = append(imports, f)
		}
	}

	fmt.Fprintf(sb, "## Declarations (%d)\n\n", len(symbols))
	for _, f := range symbols {
		fmt.Fprintf(sb, "- %s (%v, line %d)\n", f.Name, f.Props["symbol_kind"], f.Line)
	}
	sb.WriteString("\n")

	if len(imports) > 0 {
		fmt.Fprintf(sb, "## Imports (%d)\n\n", len(imports))
		for _, f := range imports {
			for _, r := range f.Relations {
				if r.Kind == facts.RelImports {
					fmt.Fprintf(sb, "- %s\n", r.Target)
				}
			}
		}
		sb.WriteString("\n")
	}
	return true
}

// exploreSymbol describes the symbols named name, or containing it when no
// symbol has that exact name.
func (s *Server) exploreSymbol(store *facts.Store, name string, depth int, sb *strings.Builder) bool {
	var matches []facts.Fact
	for _, f := range store.ByName(name) {
		if f.Kind == facts.KindSymbol {
			matches = append(matches, f)
		}
	}
	if len(matches) == 0 {
		matches, _ = store.Query(facts.QueryOpts{Kind: facts.KindSymbol, Name: name, Limit: 10})
	}
	if len(matches) == 0 {
		return false
	}

	fmt.Fprintf(sb, "# Symbol: %s\n\n", name)
	for _, f := range matches {
		fmt.Fprintf(sb, "## %s (%v)\n\n", f.Name, f.Props["symbol_kind"])
		fmt.Fprintf(sb, "File: %s  Line: %d\n", f.File, f.Line)
		if sig, ok := f.Props["signature"].(string); ok && sig != "" {
			fmt.Fprintf(sb, "\n```java\n%s\n```\n", strings.TrimSpace(sig))
		}
		sb.WriteString("\n")

		if len(f.Relations) > 0 {
			sb.WriteString("### Relations\n\n")
			for _, r := range f.Relations {
				fmt.Fprintf(sb, "- %s %s\n", r.Kind, r.Target)
			}
			sb.WriteString("\n")
		}

		if refs := store.ReverseLookup(f.Name, ""); len(refs) > 0 {
			sb.WriteString("### Referenced By\n\n")
			for _, r := range refs {
				fmt.Fprintf(sb, "- %s (%s)\n", r.Name, r.Kind)
			}
			sb.WriteString("\n")
		}

		if depth >= 2 {
			if members := membersOf(store, f.Name); len(members) > 0 {
				fmt.Fprintf(sb, "### Members (%d)\n\n", len(members))
				for _, m := range members {
					fmt.Fprintf(sb, "- %s (%v, line %d)\n", m.Name, m.Props["symbol_kind"], m.Line)
				}
				sb.WriteString("\n")
			}
		}
	}
	return true
}

// exploreDirectory summarizes every fact whose file lies below dir.
func (s *Server) exploreDirectory(store *facts.Store, dir string, sb *strings.Builder) bool {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	if prefix == "/" {
		prefix = ""
	}

	ff, total := store.Query(facts.QueryOpts{FilePrefix: prefix, Limit: 500})
	if total == 0 {
		return false
	}

	files := make(map[string]bool)
	packages := make(map[string]bool)
	byKind := make(map[string]int)
	for _, f := range ff {
		byKind[f.Kind]++
		if f.Kind == facts.KindModule {
			packages[f.Name] = true
			continue
		}
		files[f.File] = true
		if pkg, ok := f.Props["package"].(string); ok && pkg != "" {
			packages[pkg] = true
		}
	}

	fmt.Fprintf(sb, "# Directory: %s\n\n", strings.TrimSuffix(dir, "/"))
	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(sb, "- Files: %d\n", len(files))
	for _, kind := range []string{facts.KindModule, facts.KindSymbol, facts.KindDependency} {
		if byKind[kind] > 0 {
			fmt.Fprintf(sb, "- %s facts: %d\n", capitalize(kind), byKind[kind])
		}
	}
	if total > len(ff) {
		fmt.Fprintf(sb, "- (counted the first %d of %d facts)\n", len(ff), total)
	}
	sb.WriteString("\n")

	if len(packages) > 0 {
		names := make([]string, 0, len(packages))
		for p := range packages {
			names = append(names, p)
		}
		sort.Strings(names)
		sb.WriteString("## Packages\n\n")
		for _, p := range names {
			fmt.Fprintf(sb, "- %s\n", p)
		}
		sb.WriteString("\n")
	}
	return true
}

// writePackageEdges lists the packages pkg imports and the ones importing it.
func writePackageEdges(store *facts.Store, pkg string, sb *strings.Builder) {
	g := store.Graph()
	if g == nil {
		return
	}

	var imports, importedBy []string
	for _, e := range g.Forward()[pkg] {
		if e.RelKind == facts.RelImports {
			imports = append(imports, e.Target)
		}
	}
	for _, e := range g.Reverse()[pkg] {
		if e.RelKind == facts.RelImports {
			importedBy = append(importedBy, e.Target)
		}
	}
	sort.Strings(imports)
	sort.Strings(importedBy)

	if len(imports) > 0 {
		fmt.Fprintf(sb, "## Imports (%d)\n\n", len(imports))
		for _, p := range imports {
			fmt.Fprintf(sb, "- %s\n", p)
		}
		sb.WriteString("\n")
	}
	if len(importedBy) > 0 {
		fmt.Fprintf(sb, "## Imported By (%d)\n\n", len(importedBy))
		for _, p := range importedBy {
			fmt.Fprintf(sb, "- %s\n", p)
		}
		sb.WriteString("\n")
	}
}

func symbolFact(store *facts.Store, name string) (facts.Fact, bool) {
	for _, f := range store.ByName(name) {
		if f.Kind == facts.KindSymbol {
			return f, true
		}
	}
	return facts.Fact{}, false
}

// membersOf returns the methods, fields and constants owned by a type.
func membersOf(store *facts.Store, owner string) []facts.Fact {
	members, _ := store.Query(facts.QueryOpts{
		Kind:      facts.KindSymbol,
		Prop:      "owner",
		PropValue: owner,
		Limit:     500,
	})
	return members
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
