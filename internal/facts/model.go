package facts

import "github.com/JoshBrudnak/Javadoc-To-Markdown/internal/model"

// Fact is one indexed statement about the analyzed Java sources: a package,
// a declared type or member, or an import.
type Fact struct {
	Kind      string         `json:"kind"`                // "module", "symbol" or "dependency"
	Name      string         `json:"name"`                // Qualified name, e.g. com.example.Point#move
	File      string         `json:"file,omitempty"`      // Source file relative to the repo root
	Line      int            `json:"line,omitempty"`      // Declaration line
	Props     map[string]any `json:"props,omitempty"`     // Kind-specific properties
	Relations []Relation     `json:"relations,omitempty"` // Edges to other facts
}

// Relation is a directed edge from the owning fact to Target.
type Relation struct {
	Kind   string `json:"kind"`
	Target string `json:"target"` // Target fact name
}

// Fact kinds.
const (
	KindModule     = "module"     // a Java package
	KindSymbol     = "symbol"     // a type, method, field or enum constant
	KindDependency = "dependency" // one import statement
)

// Relation kinds.
const (
	RelDeclares   = "declares"
	RelImports    = "imports"
	RelImplements = "implements"
	RelExtends    = "extends"
	RelThrows     = "throws"
)

// Values of the symbol_kind property.
const (
	SymbolClass        = "class"
	SymbolInterface    = "interface"
	SymbolEnum         = "enum"
	SymbolRecord       = "record"
	SymbolAnnotation   = "annotation"
	SymbolMethod       = "method"
	SymbolConstructor  = "constructor"
	SymbolField        = "field"
	SymbolConstant     = "constant"
	SymbolEnumConstant = "enum_constant"
)

// Insight is a finding produced by an explainer.
type Insight struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Confidence  float64    `json:"confidence"` // 0.0 - 1.0
	Evidence    []Evidence `json:"evidence"`
	Actions     []string   `json:"suggested_actions,omitempty"`
}

// Evidence points an insight at the files and symbols it is about.
type Evidence struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Symbol string `json:"symbol,omitempty"`
	Fact   string `json:"fact,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Artifact is a generated output file. Name may contain slashes; it is
// written relative to the output directory.
type Artifact struct {
	Name    string `json:"name"` // e.g. "com/example/Point.md"
	Content []byte `json:"-"`
	Type    string `json:"type"` // MIME type hint
}

// Snapshot is the complete result of one generation run.
type Snapshot struct {
	Meta        SnapshotMeta          `json:"meta"`
	Facts       []Fact                `json:"facts"`
	Insights    []Insight             `json:"insights"`
	Artifacts   []Artifact            `json:"artifacts"`
	Documents   []model.Document      `json:"-"`
	Application *model.ApplicationDoc `json:"application,omitempty"`
}

// SnapshotMeta describes a generation run.
type SnapshotMeta struct {
	ID            string     `json:"id"`
	RepoPath      string     `json:"repo_path"`
	GeneratedAt   string     `json:"generated_at"`
	Duration      string     `json:"duration"`
	Extractors    []string   `json:"extractors"`
	Explainers    []string   `json:"explainers"`
	Renderers     []string   `json:"renderers"`
	FileHashes    []FileHash `json:"file_hashes,omitempty"`
	ChangedFiles  int        `json:"changed_files"`
	DocumentCount int        `json:"document_count"`
	FactCount     int        `json:"fact_count"`
	InsightCount  int        `json:"insight_count"`
	Lint          bool       `json:"lint,omitempty"`
}

// FileHash records a source file's content hash so the next run can tell
// which files changed.
type FileHash struct {
	Path    string `json:"path"`
	Hash    string `json:"hash"`
	ModTime string `json:"mod_time"`
}
