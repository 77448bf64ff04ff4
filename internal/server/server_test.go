package server

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/config"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/engine"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/facts"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/model"
)

func TestReadSourceWindow(t *testing.T) {
	// Create a 10-line temp file
	dir := t.TempDir()
	path := filepath.Join(dir, "Test.java")
	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, "line "+string(rune('0'+i)))
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name         string
		centerLine   int
		contextLines int
		wantStart    int
		wantEnd      int
	}{
		{"center middle", 5, 6, 2, 8},
		{"center at start", 1, 10, 1, 6},
		{"center at end", 10, 10, 5, 10},
		{"context larger than file", 5, 20, 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readSourceWindow(path, tt.centerLine, tt.contextLines)
			if err != nil {
				t.Fatalf("readSourceWindow: %v", err)
			}

			outputLines := strings.Split(strings.TrimRight(got, "\n"), "\n")
			if !strings.Contains(outputLines[0], "│") {
				t.Fatalf("expected line number format with │, got: %s", outputLines[0])
			}

			expectedCount := tt.wantEnd - tt.wantStart + 1
			if len(outputLines) != expectedCount {
				t.Errorf("got %d output lines, want %d (lines %d-%d)",
					len(outputLines), expectedCount, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestReadSourceWindow_SingleLineFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Single.java")
	if err := os.WriteFile(path, []byte("only line"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := readSourceWindow(path, 1, 30)
	if err != nil {
		t.Fatalf("readSourceWindow: %v", err)
	}

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 1 {
		t.Errorf("expected 1 line for single-line file, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "only line") {
		t.Errorf("expected output to contain 'only line', got: %s", lines[0])
	}
}

// --- test helpers ---

// newEngineWithSnapshot creates an engine with a fake snapshot pointing at the given repo path.
func newEngineWithSnapshot(repoPath string) *engine.Engine {
	cfg := config.Default()
	eng, _ := engine.New(cfg)
	eng.SetSnapshot(&facts.Snapshot{
		Meta: facts.SnapshotMeta{RepoPath: repoPath},
	})
	return eng
}

func populateTestStore() *facts.Store {
	store := facts.NewStore()
	store.Add(
		facts.Fact{Kind: facts.KindModule, Name: "com.shop.order", File: "src/com/shop/order",
			Props: map[string]any{"language": "java", "files": 2, "types": 2},
			Relations: []facts.Relation{
				{Kind: facts.RelDeclares, Target: "com.shop.order.OrderService"},
				{Kind: facts.RelDeclares, Target: "com.shop.order.BaseService"},
			}},
		facts.Fact{Kind: facts.KindSymbol, Name: "com.shop.order.OrderService", File: "src/com/shop/order/OrderService.java", Line: 8,
			Props: map[string]any{"symbol_kind": "class", "package": "com.shop.order", "documented": true,
				"signature": "public class OrderService extends BaseService {"},
			Relations: []facts.Relation{{Kind: facts.RelExtends, Target: "com.shop.order.BaseService"}}},
		facts.Fact{Kind: facts.KindSymbol, Name: "com.shop.order.OrderService#place(Order)", File: "src/com/shop/order/OrderService.java", Line: 14,
			Props: map[string]any{"symbol_kind": "method", "owner": "com.shop.order.OrderService"}},
		facts.Fact{Kind: facts.KindSymbol, Name: "com.shop.order.OrderService.repo", File: "src/com/shop/order/OrderService.java", Line: 10,
			Props: map[string]any{"symbol_kind": "field", "owner": "com.shop.order.OrderService"}},
		facts.Fact{Kind: facts.KindSymbol, Name: "com.shop.order.BaseService", File: "src/com/shop/order/BaseService.java", Line: 3,
			Props: map[string]any{"symbol_kind": "class", "package": "com.shop.order", "documented": false}},
		facts.Fact{Kind: facts.KindDependency, Name: "com.shop.order.OrderService -> com.shop.util.Strings", File: "src/com/shop/order/OrderService.java",
			Props:     map[string]any{"package": "com.shop.order"},
			Relations: []facts.Relation{{Kind: facts.RelImports, Target: "com.shop.util.Strings"}}},
		facts.Fact{Kind: facts.KindModule, Name: "com.shop.util", File: "src/com/shop/util",
			Props:     map[string]any{"language": "java", "files": 1, "types": 1},
			Relations: []facts.Relation{{Kind: facts.RelDeclares, Target: "com.shop.util.Strings"}}},
		facts.Fact{Kind: facts.KindSymbol, Name: "com.shop.util.Strings", File: "src/com/shop/util/Strings.java", Line: 5,
			Props: map[string]any{"symbol_kind": "class", "package": "com.shop.util", "documented": true}},
	)
	store.BuildGraph()
	return store
}

// --- explore helper tests ---

func TestExploreModule(t *testing.T) {
	store := populateTestStore()
	srv := &Server{}

	var sb strings.Builder
	if !srv.exploreModule(store, "com.shop.order", 1, &sb) {
		t.Fatal("exploreModule should find 'com.shop.order'")
	}

	output := sb.String()
	for _, want := range []string{
		"# Package: com.shop.order",
		"Directory: `src/com/shop/order`",
		"## Types (2)",
		"| com.shop.order.OrderService | class | src/com/shop/order/OrderService.java:8 | true |",
		"## Imports (1)\n\n- com.shop.util",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "## Members") {
		t.Error("depth 1 should not list members")
	}
}

func TestExploreModule_Depth2(t *testing.T) {
	store := populateTestStore()
	srv := &Server{}

	var sb strings.Builder
	if !srv.exploreModule(store, "com.shop.order", 2, &sb) {
		t.Fatal("exploreModule should find 'com.shop.order'")
	}

	output := sb.String()
	if !strings.Contains(output, "## Members") {
		t.Error("depth=2 should include Members section")
	}
	if !strings.Contains(output, "com.shop.order.OrderService#place(Order) (method, line 14)") {
		t.Errorf("depth=2 should list methods:\n%s", output)
	}
}

func TestExploreModule_ImportedBy(t *testing.T) {
	store := populateTestStore()
	srv := &Server{}

	var sb strings.Builder
	srv.exploreModule(store, "com.shop.util", 1, &sb)
	if !strings.Contains(sb.String(), "## Imported By (1)\n\n- com.shop.order") {
		t.Errorf("expected reverse import edge:\n%s", sb.String())
	}
}

func TestExploreModule_NotFound(t *testing.T) {
	store := populateTestStore()
	srv := &Server{}

	var sb strings.Builder
	if srv.exploreModule(store, "com.nonexistent", 1, &sb) {
		t.Error("exploreModule should return false for nonexistent package")
	}
	if srv.exploreModule(store, "com.shop.order.OrderService", 1, &sb) {
		t.Error("a type is not a package")
	}
}

func TestExploreFile(t *testing.T) {
	store := populateTestStore()
	srv := &Server{}

	var sb strings.Builder
	if !srv.exploreFile(store, "src/com/shop/order/OrderService.java", 1, &sb) {
		t.Fatal("exploreFile should find OrderService.java")
	}

	output := sb.String()
	if !strings.Contains(output, "# File: src/com/shop/order/OrderService.java") {
		t.Error("missing file header")
	}
	if !strings.Contains(output, "## Declarations (1)") {
		t.Errorf("depth 1 should only list the type:\n%s", output)
	}
	if !strings.Contains(output, "## Imports (1)\n\n- com.shop.util.Strings") {
		t.Errorf("missing imports:\n%s", output)
	}

	sb.Reset()
	srv.exploreFile(store, "src/com/shop/order/OrderService.java", 2, &sb)
	if !strings.Contains(sb.String(), "## Declarations (3)") {
		t.Errorf("depth 2 should list members:\n%s", sb.String())
	}
}

func TestExploreFile_NotFound(t *testing.T) {
	store := populateTestStore()
	srv := &Server{}

	var sb strings.Builder
	if srv.exploreFile(store, "Nonexistent.java", 1, &sb) {
		t.Error("exploreFile should return false for nonexistent file")
	}
}

func TestExploreSymbol(t *testing.T) {
	store := populateTestStore()
	srv := &Server{}

	var sb strings.Builder
	if !srv.exploreSymbol(store, "BaseService", 1, &sb) {
		t.Fatal("exploreSymbol should find 'BaseService'")
	}

	output := sb.String()
	if !strings.Contains(output, "# Symbol: BaseService") {
		t.Error("missing symbol header")
	}
	if !strings.Contains(output, "src/com/shop/order/BaseService.java") {
		t.Error("missing file reference")
	}
	if !strings.Contains(output, "Referenced By") {
		t.Error("missing Referenced By section")
	}
	if !strings.Contains(output, "- com.shop.order.OrderService (symbol)") {
		t.Errorf("missing subclass in Referenced By:\n%s", output)
	}
}

func TestExploreSymbol_ExactWithMembers(t *testing.T) {
	store := populateTestStore()
	srv := &Server{}

	var sb strings.Builder
	if !srv.exploreSymbol(store, "com.shop.order.OrderService", 2, &sb) {
		t.Fatal("exploreSymbol should find the exact name")
	}
	output := sb.String()
	if !strings.Contains(output, "```java\npublic class OrderService extends BaseService {\n```") {
		t.Errorf("missing signature:\n%s", output)
	}
	if !strings.Contains(output, "- extends com.shop.order.BaseService") {
		t.Error("missing relation")
	}
	if !strings.Contains(output, "### Members (2)") {
		t.Errorf("missing members:\n%s", output)
	}
}

func TestExploreSymbol_NotFound(t *testing.T) {
	store := populateTestStore()
	srv := &Server{}

	var sb strings.Builder
	if srv.exploreSymbol(store, "NonExistentSymbol", 1, &sb) {
		t.Error("exploreSymbol should return false for nonexistent symbol")
	}
}

func TestExploreDirectory(t *testing.T) {
	store := populateTestStore()
	srv := &Server{}

	var sb strings.Builder
	if !srv.exploreDirectory(store, "src/com/shop/", &sb) {
		t.Fatal("exploreDirectory should find 'src/com/shop'")
	}

	output := sb.String()
	for _, want := range []string{
		"# Directory: src/com/shop",
		"## Summary",
		"- Files: 3",
		"- Module facts: 2",
		"- Symbol facts: 5",
		"- Dependency facts: 1",
		"- com.shop.order\n- com.shop.util",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestExploreDirectory_NotFound(t *testing.T) {
	store := populateTestStore()
	srv := &Server{}

	var sb strings.Builder
	if srv.exploreDirectory(store, "nonexistent/dir", &sb) {
		t.Error("exploreDirectory should return false for nonexistent directory")
	}
}

func TestExploreModuleSubstring_SingleMatch(t *testing.T) {
	store := populateTestStore()
	srv := &Server{}

	var sb strings.Builder
	if !srv.exploreModuleSubstring(store, "util", 1, &sb) {
		t.Fatal("exploreModuleSubstring should find a package matching 'util'")
	}
	if !strings.Contains(sb.String(), "# Package: com.shop.util") {
		t.Errorf("expected full package exploration, got:\n%s", sb.String())
	}
}

func TestExploreModuleSubstring_MultipleMatches(t *testing.T) {
	store := populateTestStore()
	srv := &Server{}

	var sb strings.Builder
	if !srv.exploreModuleSubstring(store, "com.shop", 1, &sb) {
		t.Fatal("exploreModuleSubstring should find packages matching 'com.shop'")
	}

	output := sb.String()
	if !strings.Contains(output, "Multiple packages matching") {
		t.Errorf("expected disambiguation list, got:\n%s", output)
	}
	if !strings.Contains(output, "- com.shop.order\n- com.shop.util\n") {
		t.Errorf("expected both packages sorted:\n%s", output)
	}
}

func TestExploreModuleSubstring_NoMatch(t *testing.T) {
	store := populateTestStore()
	srv := &Server{}

	var sb strings.Builder
	if srv.exploreModuleSubstring(store, "nonexistent", 1, &sb) {
		t.Error("exploreModuleSubstring should return false for nonexistent")
	}
}

// --- normalizeToRelative tests ---

func TestNormalizeToRelative(t *testing.T) {
	srv := &Server{eng: newEngineWithSnapshot("/Users/me/shop")}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"absolute inside repo", "/Users/me/shop/src/com/shop", "src/com/shop"},
		{"repo root", "/Users/me/shop", ""},
		{"outside repo", "/Users/me/other/src", "/Users/me/other/src"},
		{"sibling with shared prefix", "/Users/me/shop2/src", "/Users/me/shop2/src"},
		{"already relative", "src/com", "src/com"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := srv.normalizeToRelative(tt.input); got != tt.want {
				t.Errorf("normalizeToRelative(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeToRelative_NoSnapshot(t *testing.T) {
	eng, _ := engine.New(config.Default())
	srv := &Server{eng: eng}
	if got := srv.normalizeToRelative("/abs/path"); got != "/abs/path" {
		t.Errorf("got %q, want the input unchanged", got)
	}
}

// --- show_type and parse_java ---

func pointDocument() model.Document {
	return model.NewDocument("src/com/example/Point.java", &model.Class{
		Declaration: model.Declaration{
			Name:        "Point",
			Package:     "com.example",
			Access:      "public",
			Description: "A point.",
			Line:        3,
		},
	}, nil)
}

func TestTypePage_FromDocuments(t *testing.T) {
	eng, _ := engine.New(config.Default())
	other := model.NewDocument("src/com/other/Point.java", &model.Class{
		Declaration: model.Declaration{Name: "Point", Package: "com.other", Line: 1},
	}, nil)
	eng.SetSnapshot(&facts.Snapshot{Documents: []model.Document{pointDocument(), other}})
	srv := &Server{eng: eng, cfg: config.Default()}

	page, err := srv.typePage("com.example.Point")
	if err != nil {
		t.Fatalf("typePage: %v", err)
	}
	if !strings.Contains(page, "# Class Point") || !strings.Contains(page, "A point.") {
		t.Errorf("unexpected page:\n%s", page)
	}

	if _, err := srv.typePage("Point"); err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("expected ambiguity error, got %v", err)
	}
	if _, err := srv.typePage("Missing"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestTypePage_FromWrittenPage(t *testing.T) {
	repo := t.TempDir()
	page := filepath.Join(repo, "docs", "com", "example", "Gone.md")
	if err := os.MkdirAll(filepath.Dir(page), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(page, []byte("# Class Gone\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	eng := newEngineWithSnapshot(repo)
	eng.Store().Add(facts.Fact{
		Kind:  facts.KindSymbol,
		Name:  "com.example.Gone",
		Props: map[string]any{"symbol_kind": "class", "package": "com.example"},
	})
	srv := &Server{eng: eng, cfg: config.Default()}

	got, err := srv.typePage("com.example.Gone")
	if err != nil {
		t.Fatalf("typePage: %v", err)
	}
	if got != "# Class Gone\n" {
		t.Errorf("page = %q", got)
	}
}

func TestTypePage_NoSnapshot(t *testing.T) {
	eng, _ := engine.New(config.Default())
	srv := &Server{eng: eng, cfg: config.Default()}
	if _, err := srv.typePage("Point"); err == nil {
		t.Error("expected error without snapshot")
	}
}

const pointSource = `package com.example;

/**
 * A point.
 */
public class Point {
}
`

func TestParseJava(t *testing.T) {
	repo := t.TempDir()
	if err := os.WriteFile(filepath.Join(repo, "Point.java"), []byte(pointSource), 0o644); err != nil {
		t.Fatal(err)
	}
	srv := &Server{eng: newEngineWithSnapshot(repo), cfg: config.Default()}

	out, err := srv.parseJava(parseJavaArgs{Source: pointSource})
	if err != nil {
		t.Fatalf("parseJava(source): %v", err)
	}
	for _, want := range []string{`"path": "<source>"`, `"kind": "class"`, `"name": "Point"`, `"package": "com.example"`} {
		if !strings.Contains(out, want) {
			t.Errorf("json output missing %s:\n%s", want, out)
		}
	}

	out, err = srv.parseJava(parseJavaArgs{Path: "Point.java", Format: "yaml"})
	if err != nil {
		t.Fatalf("parseJava(path): %v", err)
	}
	if !strings.Contains(out, "name: Point") || !strings.Contains(out, "description: A point.") {
		t.Errorf("yaml output:\n%s", out)
	}

	if _, err := srv.parseJava(parseJavaArgs{}); err == nil {
		t.Error("expected error without path or source")
	}
	if _, err := srv.parseJava(parseJavaArgs{Source: pointSource, Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := srv.parseJava(parseJavaArgs{Path: "Missing.java"}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNew_RegistersWithoutPanic(t *testing.T) {
	eng, _ := engine.New(config.Default())
	srv, err := New(eng, config.Default())
	if err != nil || srv == nil || srv.mcp == nil {
		t.Fatalf("New = %v, %v", srv, err)
	}
}

func TestCapitalize(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"module", "Module"},
		{"symbol", "Symbol"},
		{"", ""},
		{"A", "A"},
	}
	for _, tt := range tests {
		if got := capitalize(tt.input); got != tt.want {
			t.Errorf("capitalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestJSONResult(t *testing.T) {
	res := jsonResult(facts.PathResult{From: "com.a", To: "com.b"})
	if res.IsError {
		t.Fatalf("unexpected error result")
	}
	text := res.Content[0].(*mcp.TextContent).Text
	if !strings.Contains(text, `"from": "com.a"`) || !strings.Contains(text, `"found": false`) {
		t.Errorf("unexpected JSON:\n%s", text)
	}

	res = jsonResult(func() {})
	if !res.IsError {
		t.Error("expected an error result for an unmarshalable value")
	}
}
