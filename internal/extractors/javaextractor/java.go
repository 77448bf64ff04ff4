package javaextractor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/extractors"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/facts"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/model"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/parser"
)

var log = commonlog.GetLogger("jdmd.extractor.java")

const cacheCapacity = 4096

// JavaExtractor parses Java sources into documents and indexes them as facts.
type JavaExtractor struct {
	workers int
	lint    bool
	cache   *parseCache
}

// New creates a JavaExtractor that parses up to workers files at once.
// A non-positive workers value uses one worker per CPU.
func New(workers int, lint bool) *JavaExtractor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	e := &JavaExtractor{workers: workers, lint: lint}
	cache, err := newParseCache(cacheCapacity)
	if err != nil {
		log.Warningf("parse cache disabled: %v", err)
	} else {
		e.cache = cache
	}
	return e
}

func (e *JavaExtractor) Name() string {
	return "java"
}

// Close releases the parse cache.
func (e *JavaExtractor) Close() {
	if e.cache != nil {
		e.cache.close()
	}
}

// Detect returns true if the repository has a Maven or Gradle build file or
// contains at least one .java file.
func (e *JavaExtractor) Detect(repoPath string) (bool, error) {
	for _, name := range []string{"pom.xml", "build.gradle", "build.gradle.kts"} {
		if _, err := os.Stat(filepath.Join(repoPath, name)); err == nil {
			return true, nil
		}
	}

	found := false
	err := filepath.WalkDir(repoPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != repoPath && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if isJavaFile(p) {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// Extract parses the .java files among files and returns one document per
// parsed file together with the package, type, member and import facts.
// Files that cannot be read or parsed are logged and skipped.
func (e *JavaExtractor) Extract(ctx context.Context, repoPath string, files []string) (*extractors.Extraction, error) {
	var javaFiles []string
	for _, f := range files {
		if isJavaFile(f) {
			javaFiles = append(javaFiles, filepath.ToSlash(f))
		}
	}

	results := make([]*parsed, len(javaFiles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, rel := range javaFiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := e.parseFile(repoPath, rel)
			if err != nil {
				log.Errorf("%v", err)
				return nil
			}
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if e.cache != nil {
		log.Debugf("parse cache hits: %d", e.cache.hits())
	}

	out := &extractors.Extraction{}
	pkgs := newPackageIndex()
	for i, rel := range javaFiles {
		p := results[i]
		if p == nil {
			continue
		}
		doc := model.NewDocument(rel, p.result.Object, p.result.Diagnostics)
		out.Documents = append(out.Documents, doc)
		out.Facts = append(out.Facts, fileFacts(doc, p.nested, pkgs)...)
	}
	out.Facts = append(out.Facts, pkgs.facts()...)
	return out, nil
}

func (e *JavaExtractor) parseFile(repoPath, rel string) (*parsed, error) {
	src, err := os.ReadFile(filepath.Join(repoPath, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rel, err)
	}

	var key string
	if e.cache != nil {
		key = cacheKey(rel, src)
		if p, ok := e.cache.get(key); ok {
			return p, nil
		}
	}

	res, err := parser.Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rel, err)
	}
	res.Lint = e.lint
	for _, d := range res.Diagnostics {
		if e.lint {
			log.Warningf("%s:%s", rel, d)
		} else {
			log.Debugf("%s:%s", rel, d)
		}
	}

	nested, err := findNested(src)
	if err != nil {
		log.Warningf("%s: nested types skipped: %v", rel, err)
	}

	p := &parsed{result: res, nested: nested}
	if e.cache != nil {
		e.cache.set(key, p)
	}
	return p, nil
}

// fileFacts indexes one document. Types without a name only contribute
// their imports.
func fileFacts(doc model.Document, nested []NestedType, pkgs *packageIndex) []facts.Fact {
	decl := doc.Object.Decl()
	pkg := decl.Package
	pkgs.addFile(pkg, path.Dir(doc.Path))

	var out []facts.Fact
	owner := doc.Path
	if decl.Name != "" {
		qn := decl.QualifiedName()
		owner = qn
		pkgs.declare(pkg, qn)

		tf := typeFact(doc, decl)
		for _, n := range nested {
			name := qualify(pkg, n.Name)
			pkgs.declare(pkg, name)
			out = append(out, nestedFact(doc.Path, pkg, n))
			if n.Outer != "" && qualify(pkg, n.Outer) == qn {
				tf.Relations = append(tf.Relations, facts.Relation{Kind: facts.RelDeclares, Target: name})
			}
		}
		out = append(out, tf)
		out = append(out, memberFacts(doc, decl)...)
	}

	for _, dep := range decl.Dependencies {
		out = append(out, facts.Fact{
			Kind:      facts.KindDependency,
			Name:      owner + " -> " + dep,
			File:      doc.Path,
			Props:     map[string]any{"package": pkg},
			Relations: []facts.Relation{{Kind: facts.RelImports, Target: dep}},
		})
	}
	return out
}

func typeFact(doc model.Document, decl *model.Declaration) facts.Fact {
	f := facts.Fact{
		Kind: facts.KindSymbol,
		Name: decl.QualifiedName(),
		File: doc.Path,
		Line: decl.Line,
		Props: map[string]any{
			"symbol_kind": string(doc.Kind),
			"package":     decl.Package,
			"access":      decl.Access,
			"modifiers":   strings.Join(decl.Modifiers, " "),
			"signature":   decl.Signature,
			"documented":  decl.Description != "",
			"methods":     len(decl.Methods),
			"fields":      len(decl.Variables),
			"diagnostics": len(doc.Diagnostics),
		},
	}
	if decl.Deprecated != "" {
		f.Props["deprecated"] = decl.Deprecated
	}
	if decl.Author != "" {
		f.Props["author"] = decl.Author
	}

	resolve := func(name string) string {
		return resolveType(name, decl.Package, decl.Dependencies)
	}
	switch obj := doc.Object.(type) {
	case *model.Class:
		if obj.Parent != "" {
			f.Relations = append(f.Relations, facts.Relation{Kind: facts.RelExtends, Target: resolve(obj.Parent)})
		}
		for _, i := range obj.Interfaces {
			f.Relations = append(f.Relations, facts.Relation{Kind: facts.RelImplements, Target: resolve(i)})
		}
	case *model.Interface:
		for _, p := range obj.Extends {
			f.Relations = append(f.Relations, facts.Relation{Kind: facts.RelExtends, Target: resolve(p)})
		}
	case *model.Enumeration:
		for _, i := range obj.Interfaces {
			f.Relations = append(f.Relations, facts.Relation{Kind: facts.RelImplements, Target: resolve(i)})
		}
	}
	return f
}

func nestedFact(file, pkg string, n NestedType) facts.Fact {
	f := facts.Fact{
		Kind: facts.KindSymbol,
		Name: qualify(pkg, n.Name),
		File: file,
		Line: n.Line,
		Props: map[string]any{
			"symbol_kind": n.Kind,
			"package":     pkg,
			"documented":  false,
		},
	}
	if n.Outer != "" {
		f.Props["nested"] = true
		f.Props["outer"] = qualify(pkg, n.Outer)
	} else {
		f.Props["secondary"] = true
	}
	return f
}

// memberFacts indexes methods, fields and enum constants. Methods are named
// Type#name(ParamTypes) so overloads stay distinct.
func memberFacts(doc model.Document, decl *model.Declaration) []facts.Fact {
	qn := decl.QualifiedName()
	var out []facts.Fact

	for _, m := range decl.Methods {
		kind := facts.SymbolMethod
		if m.Name == decl.Name && m.DeclaredReturnType == m.Name {
			kind = facts.SymbolConstructor
		}
		types := make([]string, len(m.Parameters))
		for i, p := range m.Parameters {
			types[i] = p.Type
		}
		f := facts.Fact{
			Kind: facts.KindSymbol,
			Name: qn + "#" + m.Name + "(" + strings.Join(types, ",") + ")",
			File: doc.Path,
			Line: m.Line,
			Props: map[string]any{
				"symbol_kind": kind,
				"owner":       qn,
				"access":      m.Access,
				"modifiers":   strings.Join(m.Modifiers, " "),
				"signature":   m.Signature,
				"returns":     m.DeclaredReturnType,
				"params":      len(m.Parameters),
				"documented":  m.Description != "",
			},
		}
		if m.Deprecated != "" {
			f.Props["deprecated"] = m.Deprecated
		}
		for _, ex := range m.Exceptions {
			f.Relations = append(f.Relations, facts.Relation{
				Kind:   facts.RelThrows,
				Target: resolveType(ex.Type, decl.Package, decl.Dependencies),
			})
		}
		out = append(out, f)
	}

	for _, v := range decl.Variables {
		kind := facts.SymbolField
		if contains(v.Modifiers, "static") && contains(v.Modifiers, "final") {
			kind = facts.SymbolConstant
		}
		out = append(out, facts.Fact{
			Kind: facts.KindSymbol,
			Name: qn + "." + v.Name,
			File: doc.Path,
			Line: v.Line,
			Props: map[string]any{
				"symbol_kind": kind,
				"owner":       qn,
				"type":        v.Type,
				"access":      v.Access,
				"modifiers":   strings.Join(v.Modifiers, " "),
				"signature":   v.Signature,
			},
		})
	}

	if enum, ok := doc.Object.(*model.Enumeration); ok {
		for _, c := range enum.Fields {
			out = append(out, facts.Fact{
				Kind: facts.KindSymbol,
				Name: qn + "." + c.Name,
				File: doc.Path,
				Props: map[string]any{
					"symbol_kind": facts.SymbolEnumConstant,
					"owner":       qn,
					"value":       c.Value,
				},
			})
		}
	}
	return out
}

// resolveType qualifies a type reference against the file's imports, then
// its own package. Type arguments are dropped.
func resolveType(name, pkg string, imports []string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if strings.Contains(name, ".") {
		return name
	}
	for _, imp := range imports {
		if strings.HasSuffix(imp, "."+name) {
			return imp
		}
	}
	return qualify(pkg, name)
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

// packageIndex collects per-package module facts across files.
type packageIndex struct {
	dirs  map[string]string
	files map[string]int
	types map[string][]string
}

func newPackageIndex() *packageIndex {
	return &packageIndex{
		dirs:  make(map[string]string),
		files: make(map[string]int),
		types: make(map[string][]string),
	}
}

func (p *packageIndex) addFile(pkg, dir string) {
	if _, ok := p.dirs[pkg]; !ok {
		p.dirs[pkg] = dir
	}
	p.files[pkg]++
}

func (p *packageIndex) declare(pkg, typeName string) {
	p.types[pkg] = append(p.types[pkg], typeName)
}

// facts returns one module fact per named package, sorted by name. The
// default package has no module fact.
func (p *packageIndex) facts() []facts.Fact {
	names := make([]string, 0, len(p.dirs))
	for name := range p.dirs {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]facts.Fact, 0, len(names))
	for _, name := range names {
		f := facts.Fact{
			Kind: facts.KindModule,
			Name: name,
			File: p.dirs[name],
			Props: map[string]any{
				"language": "java",
				"files":    p.files[name],
				"types":    len(p.types[name]),
			},
		}
		for _, t := range p.types[name] {
			f.Relations = append(f.Relations, facts.Relation{Kind: facts.RelDeclares, Target: t})
		}
		out = append(out, f)
	}
	return out
}

func isJavaFile(p string) bool {
	return strings.HasSuffix(p, ".java")
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
