package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tliron/commonlog"
	"gopkg.in/yaml.v3"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/config"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/engine"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/facts"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/model"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/parser"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/renderers/markdown"
)

var log = commonlog.GetLogger("jdmd.server")

// Version is reported to MCP clients. It is set by the command at startup.
var Version = "dev"

const noSnapshot = "No documentation generated yet. Run generate_docs first."

// Server wraps the MCP server and connects it to the documentation engine.
type Server struct {
	mcp *mcp.Server
	eng *engine.Engine
	cfg *config.Config
}

// New creates a new MCP server wired to the given engine.
func New(eng *engine.Engine, cfg *config.Config) (*Server, error) {
	s := &Server{
		eng: eng,
		cfg: cfg,
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "jdmd",
		Version: Version,
	}, nil)

	s.mcp = mcpServer
	s.registerResources()
	s.registerTools()

	return s, nil
}

// Run starts the MCP server on the stdio transport.
func (s *Server) Run(ctx context.Context) error {
	log.Infof("starting MCP server on stdio transport")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

type resourceDef struct {
	uri         string
	name        string
	description string
	mimeType    string
	artifact    string
}

var resources = []resourceDef{
	{"jdmd://docs/readme", "Documentation Index", "Project README linking every package page", "text/markdown", "README.md"},
	{"jdmd://docs/summary", "Project Summary", "Compact summary of packages, type hierarchy and documentation gaps", "text/markdown", "summary.md"},
	{"jdmd://snapshot/facts", "Facts", "All indexed packages, types, members and imports in JSONL format", "application/jsonl", engine.FactsFile},
	{"jdmd://snapshot/insights", "Insights", "Dependency cycles, layer violations and documentation gaps", "application/json", engine.InsightsFile},
	{"jdmd://snapshot/meta", "Snapshot Metadata", "Metadata about the last documentation run", "application/json", engine.MetaFile},
}

// registerResources adds one MCP resource per generated artifact.
func (s *Server) registerResources() {
	for _, r := range resources {
		r := r
		s.mcp.AddResource(&mcp.Resource{
			URI:         r.uri,
			Name:        r.name,
			Description: r.description,
			MIMEType:    r.mimeType,
		}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			content, err := s.eng.GetArtifact(r.artifact)
			if err != nil {
				return nil, fmt.Errorf("artifact unavailable: %w (run generate_docs first)", err)
			}
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{URI: req.Params.URI, Text: string(content), MIMEType: r.mimeType},
				},
			}, nil
		})
	}
}

// generateDocsArgs are the arguments for the generate_docs tool.
type generateDocsArgs struct {
	RepoPath string `json:"repo_path,omitempty" jsonschema:"Path to the Java project. Defaults to the configured repo path."`
}

// queryFactsArgs are the arguments for the query_facts tool.
type queryFactsArgs struct {
	Kind       string `json:"kind,omitempty" jsonschema:"Filter by fact kind: module, symbol or dependency"`
	File       string `json:"file,omitempty" jsonschema:"Filter by exact file path"`
	FilePrefix string `json:"file_prefix,omitempty" jsonschema:"Filter by file path prefix (e.g. src/main/java/com/example)"`
	Name       string `json:"name,omitempty" jsonschema:"Filter by name using substring match"`
	Relation   string `json:"relation,omitempty" jsonschema:"Filter by relation kind: declares, imports, implements, extends or throws"`
	Prop       string `json:"prop,omitempty" jsonschema:"Filter by property name (e.g. symbol_kind, documented, package)"`
	PropValue  string `json:"prop_value,omitempty" jsonschema:"Filter by property value (requires prop to be set)"`
	Offset     int    `json:"offset,omitempty" jsonschema:"Number of results to skip"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Maximum results (default 100, max 500)"`
}

// showTypeArgs are the arguments for the show_type tool.
type showTypeArgs struct {
	Name string `json:"name" jsonschema:"Simple or fully qualified type name, e.g. Point or com.example.Point"`
}

// showSymbolArgs are the arguments for the show_symbol tool.
type showSymbolArgs struct {
	Name         string `json:"name" jsonschema:"Symbol name to look up (substring match)"`
	ContextLines int    `json:"context_lines,omitempty" jsonschema:"Number of source lines to show around the symbol (default 30)"`
}

// parseJavaArgs are the arguments for the parse_java tool.
type parseJavaArgs struct {
	Path   string `json:"path,omitempty" jsonschema:"Java file to parse, absolute or relative to the repo"`
	Source string `json:"source,omitempty" jsonschema:"Java source text to parse instead of a file"`
	Format string `json:"format,omitempty" jsonschema:"Output format: json (default) or yaml"`
}

// traverseArgs are the arguments for the traverse tool.
type traverseArgs struct {
	Start     string   `json:"start" jsonschema:"Fact name to start from, e.g. com.example or com.example.Point"`
	Direction string   `json:"direction,omitempty" jsonschema:"forward (default) or reverse"`
	Relations []string `json:"relations,omitempty" jsonschema:"Relation kinds to follow (default all)"`
	MaxDepth  int      `json:"max_depth,omitempty" jsonschema:"Maximum depth (default 5, max 20)"`
	MaxNodes  int      `json:"max_nodes,omitempty" jsonschema:"Maximum nodes (default 100, max 500)"`
}

type findPathArgs struct {
	From      string   `json:"from" jsonschema:"Fact name to start from"`
	To        string   `json:"to" jsonschema:"Fact name to reach"`
	Relations []string `json:"relations,omitempty" jsonschema:"Relation kinds to follow (default all)"`
	MaxDepth  int      `json:"max_depth,omitempty" jsonschema:"Maximum path length (default 10, max 20)"`
}

type impactArgs struct {
	Target   string `json:"target" jsonschema:"Package or type whose dependents to list"`
	MaxDepth int    `json:"max_depth,omitempty" jsonschema:"Maximum distance (default 3, max 10)"`
	MaxNodes int    `json:"max_nodes,omitempty" jsonschema:"Maximum dependents (default 200, max 500)"`
}

// exploreArgs are the arguments for the explore tool.
type exploreArgs struct {
	Focus string `json:"focus" jsonschema:"Package, file, directory or symbol to explore"`
	Depth int    `json:"depth,omitempty" jsonschema:"1 lists members, 2 also lists their members (default 1)"`
}

// registerTools adds MCP tools for generation, lookup and querying.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "generate_docs",
		Description: "Parse every Java source file of a project, extract its documentation comments, write Markdown pages and index the declarations for querying.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args generateDocsArgs) (*mcp.CallToolResult, any, error) {
		repoPath := args.RepoPath
		if repoPath == "" {
			repoPath = s.cfg.Repo
		}

		absRepo, err := filepath.Abs(repoPath)
		if err != nil {
			return errorResult(fmt.Sprintf("invalid repo path: %v", err)), nil, nil
		}

		snapshot, err := s.eng.GenerateSnapshot(ctx, absRepo)
		if err != nil {
			return errorResult(fmt.Sprintf("generation failed: %v", err)), nil, nil
		}

		if err := s.eng.WriteArtifacts(absRepo); err != nil {
			log.Warningf("failed to write artifacts: %v", err)
		}

		summary := fmt.Sprintf(
			"Documentation generated.\n\n"+
				"- Repository: %s\n"+
				"- Output: %s\n"+
				"- Documents: %d\n"+
				"- Changed files: %d\n"+
				"- Facts: %d\n"+
				"- Insights: %d\n"+
				"- Artifacts: %d\n"+
				"- Duration: %s\n\n"+
				"Read jdmd://docs/readme for the index or use show_type to view a type.",
			snapshot.Meta.RepoPath,
			s.eng.OutputDir(absRepo),
			snapshot.Meta.DocumentCount,
			snapshot.Meta.ChangedFiles,
			snapshot.Meta.FactCount,
			snapshot.Meta.InsightCount,
			len(snapshot.Artifacts),
			snapshot.Meta.Duration,
		)
		return textResult(summary), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "query_facts",
		Description: "Query the indexed packages, types, members and imports by kind, file, name, relation or property. Returns matching facts as JSON.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args queryFactsArgs) (*mcp.CallToolResult, any, error) {
		store := s.eng.Store()
		if store.Count() == 0 {
			return errorResult(noSnapshot), nil, nil
		}

		results, total := store.Query(facts.QueryOpts{
			Kind:       args.Kind,
			File:       args.File,
			FilePrefix: s.normalizeToRelative(args.FilePrefix),
			Name:       args.Name,
			RelKind:    args.Relation,
			Prop:       args.Prop,
			PropValue:  args.PropValue,
			Offset:     args.Offset,
			Limit:      args.Limit,
		})

		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return errorResult(fmt.Sprintf("failed to marshal results: %v", err)), nil, nil
		}

		text := string(data)
		if len(results) < total {
			text += fmt.Sprintf("\n\n... (showing %d of %d results from offset %d, refine your query or page with offset)",
				len(results), total, args.Offset)
		}
		return textResult(text), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "show_type",
		Description: "Show the generated Markdown documentation of one Java type: description, fields, methods with parameters, return values and exceptions.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args showTypeArgs) (*mcp.CallToolResult, any, error) {
		if args.Name == "" {
			return errorResult("name is required"), nil, nil
		}
		page, err := s.typePage(args.Name)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return textResult(page), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "show_symbol",
		Description: "Show the source code around a declaration found in the index, with line numbers.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args showSymbolArgs) (*mcp.CallToolResult, any, error) {
		snapshot := s.eng.Snapshot()
		if snapshot == nil || s.eng.Store().Count() == 0 {
			return errorResult(noSnapshot), nil, nil
		}
		if args.Name == "" {
			return errorResult("name is required"), nil, nil
		}

		results, _ := s.eng.Store().Query(facts.QueryOpts{Kind: facts.KindSymbol, Name: args.Name, Limit: 5})
		if len(results) == 0 {
			return errorResult(fmt.Sprintf("No symbols matching %q", args.Name)), nil, nil
		}

		contextLines := args.ContextLines
		if contextLines <= 0 {
			contextLines = 30
		}

		var sb strings.Builder
		for i, fact := range results {
			if i > 0 {
				sb.WriteString("\n---\n\n")
			}
			fmt.Fprintf(&sb, "### %s\n", fact.Name)
			fmt.Fprintf(&sb, "File: %s  Line: %d\n", fact.File, fact.Line)
			if kind, ok := fact.Props["symbol_kind"].(string); ok {
				fmt.Fprintf(&sb, "Kind: %s\n", kind)
			}
			sb.WriteString("\n")

			source, err := readSourceWindow(s.eng.ResolveFactFile(&fact), fact.Line, contextLines)
			if err != nil {
				fmt.Fprintf(&sb, "_Could not read source: %v_\n", err)
				continue
			}
			fmt.Fprintf(&sb, "```java\n%s```\n", source)
		}
		return textResult(sb.String()), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "parse_java",
		Description: "Parse a single Java file or source snippet and return its documentation model: the declared type, its doc comment, members and parser diagnostics.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args parseJavaArgs) (*mcp.CallToolResult, any, error) {
		out, err := s.parseJava(args)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return textResult(out), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "traverse",
		Description: "Walk the relation graph from a package or type: declared members, imports, supertypes and thrown exceptions (forward) or their dependents (reverse).",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args traverseArgs) (*mcp.CallToolResult, any, error) {
		graph := s.eng.Store().Graph()
		if graph == nil {
			return errorResult(noSnapshot), nil, nil
		}
		if args.Start == "" {
			return errorResult("start is required"), nil, nil
		}
		direction := args.Direction
		if direction == "" {
			direction = "forward"
		}
		if direction != "forward" && direction != "reverse" {
			return errorResult(fmt.Sprintf("invalid direction %q: use forward or reverse", direction)), nil, nil
		}

		return jsonResult(graph.Traverse(args.Start, direction, args.Relations, nil, args.MaxDepth, args.MaxNodes)), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "find_path",
		Description: "Find the shortest relation path between two packages or types, e.g. how one package reaches another through imports.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args findPathArgs) (*mcp.CallToolResult, any, error) {
		graph := s.eng.Store().Graph()
		if graph == nil {
			return errorResult(noSnapshot), nil, nil
		}
		if args.From == "" || args.To == "" {
			return errorResult("from and to are required"), nil, nil
		}
		return jsonResult(graph.FindPath(args.From, args.To, args.Relations, args.MaxDepth)), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "impact",
		Description: "List the packages and types that transitively depend on a target, grouped by distance.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args impactArgs) (*mcp.CallToolResult, any, error) {
		graph := s.eng.Store().Graph()
		if graph == nil {
			return errorResult(noSnapshot), nil, nil
		}
		if args.Target == "" {
			return errorResult("target is required"), nil, nil
		}
		return jsonResult(graph.ImpactSet(args.Target, args.MaxDepth, args.MaxNodes)), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "explore",
		Description: "Summarize a package, source file, directory or symbol: what it declares, what it imports and who depends on it.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args exploreArgs) (*mcp.CallToolResult, any, error) {
		store := s.eng.Store()
		if store.Count() == 0 {
			return errorResult(noSnapshot), nil, nil
		}
		if args.Focus == "" {
			return errorResult("focus is required"), nil, nil
		}
		depth := args.Depth
		if depth <= 0 {
			depth = 1
		}

		focus := s.normalizeToRelative(args.Focus)
		var sb strings.Builder
		switch {
		case s.exploreModule(store, focus, depth, &sb):
		case s.exploreFile(store, focus, depth, &sb):
		case s.exploreSymbol(store, focus, depth, &sb):
		case s.exploreDirectory(store, focus, &sb):
		case s.exploreModuleSubstring(store, focus, depth, &sb):
		default:
			return errorResult(fmt.Sprintf("Nothing matches %q", args.Focus)), nil, nil
		}
		return textResult(sb.String()), nil, nil
	})
}

// typePage renders the page of a type from the in-memory documents. A
// snapshot restored from disk has no documents, so the page written by the
// last run is read back instead.
func (s *Server) typePage(name string) (string, error) {
	snapshot := s.eng.Snapshot()
	if snapshot == nil {
		return "", errors.New(noSnapshot)
	}

	var matches []model.Document
	for _, doc := range snapshot.Documents {
		decl := doc.Object.Decl()
		if decl.Name == "" {
			continue
		}
		if decl.QualifiedName() == name {
			return markdown.RenderType(doc, snapshot.Meta.Lint), nil
		}
		if decl.Name == name {
			matches = append(matches, doc)
		}
	}
	switch len(matches) {
	case 1:
		return markdown.RenderType(matches[0], snapshot.Meta.Lint), nil
	case 0:
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Object.Decl().QualifiedName()
		}
		return "", fmt.Errorf("%q is ambiguous, use one of: %s", name, strings.Join(names, ", "))
	}

	for _, f := range s.eng.Store().ByName(name) {
		pkg, _ := f.Props["package"].(string)
		simple := strings.TrimPrefix(name, pkg+".")
		if pkg == "" {
			simple = name
		}
		page := filepath.Join(s.eng.OutputDir(snapshot.Meta.RepoPath), filepath.FromSlash(markdown.TypePath(pkg, simple)))
		if data, err := os.ReadFile(page); err == nil {
			return string(data), nil
		}
	}
	return "", fmt.Errorf("no documented type named %q", name)
}

// parseJava runs the parser on a file or a source snippet and encodes the
// resulting document.
func (s *Server) parseJava(args parseJavaArgs) (string, error) {
	var (
		res  *parser.Result
		path = "<source>"
		err  error
	)
	switch {
	case args.Source != "":
		res, err = parser.Parse(args.Source)
	case args.Path != "":
		path = args.Path
		if !filepath.IsAbs(path) {
			repo := s.cfg.Repo
			if snap := s.eng.Snapshot(); snap != nil {
				repo = snap.Meta.RepoPath
			}
			path = filepath.Join(repo, filepath.FromSlash(path))
		}
		res, err = parser.ParseFile(path, s.cfg.Lint)
	default:
		return "", errors.New("either path or source is required")
	}
	if err != nil {
		return "", err
	}

	doc := model.NewDocument(filepath.ToSlash(path), res.Object, res.Diagnostics)
	var data []byte
	switch args.Format {
	case "", "json":
		data, err = json.MarshalIndent(doc, "", "  ")
	case "yaml":
		data, err = yaml.Marshal(doc)
	default:
		return "", fmt.Errorf("unknown format %q: use json or yaml", args.Format)
	}
	if err != nil {
		return "", fmt.Errorf("encoding document: %w", err)
	}
	return string(data), nil
}

// normalizeToRelative turns an absolute path inside the analyzed repo into
// a repo-relative slash path. Anything else is returned unchanged.
func (s *Server) normalizeToRelative(p string) string {
	if p == "" || !filepath.IsAbs(p) || s.eng == nil {
		return p
	}
	snapshot := s.eng.Snapshot()
	if snapshot == nil || snapshot.Meta.RepoPath == "" {
		return p
	}
	rel, err := filepath.Rel(snapshot.Meta.RepoPath, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}
	if rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

// readSourceWindow reads lines from a file centered around the given line number.
func readSourceWindow(absFile string, centerLine, contextLines int) (string, error) {
	data, err := os.ReadFile(absFile)
	if err != nil {
		return "", err
	}

	lines := strings.Split(string(data), "\n")
	startLine := centerLine - contextLines/2
	if startLine < 1 {
		startLine = 1
	}
	endLine := centerLine + contextLines/2
	if endLine > len(lines) {
		endLine = len(lines)
	}

	var sb strings.Builder
	for i := startLine; i <= endLine; i++ {
		fmt.Fprintf(&sb, "%4d│ %s\n", i, lines[i-1])
	}
	return sb.String(), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to marshal result: %v", err))
	}
	return textResult(string(data))
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
