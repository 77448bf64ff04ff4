package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/config"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/explainers"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/extractors"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/facts"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/model"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/renderers"
)

var log = commonlog.GetLogger("jdmd.engine")

// ErrNoSnapshot is returned when an operation needs a generated snapshot
// and none exists yet.
var ErrNoSnapshot = errors.New("no snapshot generated")

// Names of the files every run writes next to the renderer artifacts.
const (
	FactsFile    = "facts.jsonl"
	InsightsFile = "insights.json"
	MetaFile     = "snapshot.meta.json"
)

// Engine orchestrates the documentation pipeline.
type Engine struct {
	mu         sync.Mutex
	cfg        *config.Config
	ignore     *ignoreMatcher
	extractors *extractors.Registry
	explainers *explainers.Registry
	renderers  *renderers.Registry
	store      *facts.Store
	snapshot   *facts.Snapshot
	prevHashes map[string]string // file -> sha256 hash from previous run
}

// New creates a new Engine with the given config.
// Extractors, explainers, and renderers must be registered after creation.
func New(cfg *config.Config) (*Engine, error) {
	ignore, err := newIgnoreMatcher(cfg.Ignore)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:        cfg,
		ignore:     ignore,
		extractors: extractors.NewRegistry(),
		explainers: explainers.NewRegistry(),
		renderers:  renderers.NewRegistry(),
		store:      facts.NewStore(),
	}, nil
}

// RegisterExtractor adds an extractor to the engine.
func (e *Engine) RegisterExtractor(ext extractors.Extractor) {
	e.extractors.Register(ext)
}

// RegisterExplainer adds an explainer to the engine.
func (e *Engine) RegisterExplainer(exp explainers.Explainer) {
	e.explainers.Register(exp)
}

// RegisterRenderer adds a renderer to the engine.
func (e *Engine) RegisterRenderer(rnd renderers.Renderer) {
	e.renderers.Register(rnd)
}

// Store returns the fact store.
func (e *Engine) Store() *facts.Store {
	return e.store
}

// Snapshot returns the last generated snapshot, or nil.
func (e *Engine) Snapshot() *facts.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot
}

// SetSnapshot replaces the current snapshot, e.g. with one restored from disk.
func (e *Engine) SetSnapshot(s *facts.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snapshot = s
}

// Config returns the engine config.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// OutputDir returns the directory artifacts are written to for repoPath.
func (e *Engine) OutputDir(repoPath string) string {
	if filepath.IsAbs(e.cfg.Output.Dir) {
		return e.cfg.Output.Dir
	}
	return filepath.Join(repoPath, e.cfg.Output.Dir)
}

// ResolveFactFile returns the absolute path of the file a fact came from.
func (e *Engine) ResolveFactFile(f *facts.Fact) string {
	s := e.Snapshot()
	if s == nil || f.File == "" {
		return f.File
	}
	return filepath.Join(s.Meta.RepoPath, filepath.FromSlash(f.File))
}

// GenerateSnapshot runs the full pipeline: walk -> extract -> aggregate ->
// explain -> render. Concurrent calls are serialized.
func (e *Engine) GenerateSnapshot(ctx context.Context, repoPath string) (*facts.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	start := time.Now()

	if repoPath == "" {
		repoPath = e.cfg.Repo
	}

	absRepo, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("resolving repo path: %w", err)
	}

	e.loadPreviousHashes(absRepo)
	e.store.Clear()

	// 1. Walk repository and collect files
	files, err := e.walkRepo(absRepo)
	if err != nil {
		return nil, fmt.Errorf("walking repo: %w", err)
	}
	log.Infof("found %d files in %s", len(files), absRepo)

	// 2. Hash files and count the ones that changed since the last run
	currentHashes, changedFiles := e.filterChangedFiles(absRepo, files)
	log.Infof("%d of %d files changed since last run", len(changedFiles), len(files))

	// 3. Extract
	usedExtractors, docs, err := e.runExtractors(ctx, absRepo, files)
	if err != nil {
		return nil, fmt.Errorf("extraction: %w", err)
	}
	e.store.BuildGraph()
	log.Infof("extracted %d facts from %d documents using %d extractors", e.store.Count(), len(docs), len(usedExtractors))
	if g := e.store.Graph(); g != nil {
		log.Debugf("relation graph: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}

	// 4. Aggregate
	app := model.NewApplicationDoc()
	for _, doc := range docs {
		app.Add(doc)
	}
	app.Sort()

	// 5. Explain
	allInsights, usedExplainers, err := e.runExplainers(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("explanation: %w", err)
	}
	log.Infof("produced %d insights using %d explainers", len(allInsights), len(usedExplainers))

	fileHashes := make([]facts.FileHash, 0, len(currentHashes))
	for path, hash := range currentHashes {
		fileHashes = append(fileHashes, facts.FileHash{
			Path:    path,
			Hash:    hash,
			ModTime: fileModTime(filepath.Join(absRepo, path)),
		})
	}
	sort.Slice(fileHashes, func(i, j int) bool { return fileHashes[i].Path < fileHashes[j].Path })

	// 6. Build snapshot
	snapshot := &facts.Snapshot{
		Meta: facts.SnapshotMeta{
			ID:            uuid.New().String(),
			RepoPath:      absRepo,
			GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
			Extractors:    usedExtractors,
			Explainers:    usedExplainers,
			Renderers:     []string{},
			FileHashes:    fileHashes,
			ChangedFiles:  len(changedFiles),
			DocumentCount: len(docs),
			FactCount:     e.store.Count(),
			InsightCount:  len(allInsights),
			Lint:          e.cfg.Lint,
		},
		Facts:       e.store.All(),
		Insights:    allInsights,
		Documents:   docs,
		Application: app,
	}

	// 7. Render
	usedRenderers, err := e.runRenderers(ctx, snapshot)
	if err != nil {
		return nil, fmt.Errorf("rendering: %w", err)
	}
	snapshot.Meta.Renderers = usedRenderers
	snapshot.Meta.Duration = time.Since(start).String()
	log.Infof("produced %d artifacts using %d renderers", len(snapshot.Artifacts), len(usedRenderers))

	e.snapshot = snapshot
	log.Noticef("snapshot %s generated in %s", snapshot.Meta.ID, snapshot.Meta.Duration)
	return snapshot, nil
}

// walkRepo collects all files in the repo, applying ignore patterns. The
// output directory is always skipped.
func (e *Engine) walkRepo(repoPath string) ([]string, error) {
	outDir := e.OutputDir(repoPath)
	var files []string
	err := filepath.WalkDir(repoPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(repoPath, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		if e.excluded(outDir, path, relPath, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.IsDir() {
			files = append(files, filepath.ToSlash(relPath))
		}
		return nil
	})
	return files, err
}

// Excluded reports whether the walk of repoPath skips relPath: the output
// directory and anything matching an ignore pattern. Watch mode uses it to
// pick the directories it watches.
func (e *Engine) Excluded(repoPath, relPath string, isDir bool) bool {
	absRepo, err := filepath.Abs(repoPath)
	if err != nil {
		return false
	}
	return e.excluded(e.OutputDir(absRepo), filepath.Join(absRepo, filepath.FromSlash(relPath)), relPath, isDir)
}

func (e *Engine) excluded(outDir, absPath, relPath string, isDir bool) bool {
	if isDir && absPath == outDir {
		return true
	}
	return e.isIgnored(relPath, isDir)
}

// isIgnored checks whether a path matches any ignore pattern.
func (e *Engine) isIgnored(relPath string, isDir bool) bool {
	return e.ignore.match(relPath, isDir)
}

// runExtractors detects applicable extractors and runs them.
func (e *Engine) runExtractors(ctx context.Context, repoPath string, files []string) ([]string, []model.Document, error) {
	var usedNames []string
	var docs []model.Document

	for _, ext := range e.extractors.Enabled(e.cfg.IsExtractorEnabled) {
		detected, err := ext.Detect(repoPath)
		if err != nil {
			log.Errorf("extractor %s detect error: %v", ext.Name(), err)
			continue
		}
		if !detected {
			log.Infof("extractor %s: not detected", ext.Name())
			continue
		}

		log.Infof("running extractor: %s", ext.Name())
		extracted, err := ext.Extract(ctx, repoPath, files)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, err
			}
			log.Errorf("extractor %s error: %v", ext.Name(), err)
			continue
		}

		e.store.Add(extracted.Facts...)
		docs = append(docs, extracted.Documents...)
		usedNames = append(usedNames, ext.Name())
		log.Infof("extractor %s: emitted %d facts and %d documents", ext.Name(), len(extracted.Facts), len(extracted.Documents))
	}

	return usedNames, docs, nil
}

// runExplainers runs all enabled explainers.
func (e *Engine) runExplainers(ctx context.Context, docs []model.Document) ([]facts.Insight, []string, error) {
	var allInsights []facts.Insight
	var usedNames []string

	for _, exp := range e.explainers.Enabled(e.cfg.IsExplainerEnabled) {
		log.Infof("running explainer: %s", exp.Name())
		insights, err := exp.Explain(ctx, e.store, docs)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, err
			}
			log.Errorf("explainer %s error: %v", exp.Name(), err)
			continue
		}

		allInsights = append(allInsights, insights...)
		usedNames = append(usedNames, exp.Name())
		log.Infof("explainer %s: produced %d insights", exp.Name(), len(insights))
	}

	return allInsights, usedNames, nil
}

// runRenderers runs all enabled renderers.
func (e *Engine) runRenderers(ctx context.Context, snapshot *facts.Snapshot) ([]string, error) {
	var usedNames []string

	for _, rnd := range e.renderers.Enabled(e.cfg.IsRendererEnabled) {
		log.Infof("running renderer: %s", rnd.Name())
		artifacts, err := rnd.Render(ctx, snapshot)
		if err != nil {
			log.Errorf("renderer %s error: %v", rnd.Name(), err)
			continue
		}

		snapshot.Artifacts = append(snapshot.Artifacts, artifacts...)
		usedNames = append(usedNames, rnd.Name())
	}

	return usedNames, nil
}

// WriteArtifacts writes all snapshot artifacts to the output directory,
// including facts.jsonl, insights.json, and snapshot.meta.json. Artifact
// names containing slashes are written into subdirectories.
func (e *Engine) WriteArtifacts(repoPath string) error {
	snapshot := e.Snapshot()
	if snapshot == nil {
		return ErrNoSnapshot
	}

	outDir := e.OutputDir(repoPath)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	for _, a := range snapshot.Artifacts {
		path := filepath.Join(outDir, filepath.FromSlash(a.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating dir for %s: %w", a.Name, err)
		}
		if err := os.WriteFile(path, a.Content, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", a.Name, err)
		}
		log.Debugf("wrote %s (%d bytes)", path, len(a.Content))
	}

	factsPath := filepath.Join(outDir, FactsFile)
	if err := e.store.WriteJSONLFile(factsPath); err != nil {
		return fmt.Errorf("writing %s: %w", FactsFile, err)
	}

	insightsJSON, err := json.MarshalIndent(snapshot.Insights, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling insights: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, InsightsFile), insightsJSON, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", InsightsFile, err)
	}

	metaJSON, err := json.MarshalIndent(snapshot.Meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, MetaFile), metaJSON, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", MetaFile, err)
	}

	log.Infof("wrote %d artifacts to %s", len(snapshot.Artifacts)+3, outDir)
	return nil
}

// GetArtifact returns the content of a named artifact, or the generated JSONL/JSON files.
func (e *Engine) GetArtifact(name string) ([]byte, error) {
	snapshot := e.Snapshot()
	if snapshot == nil {
		return nil, ErrNoSnapshot
	}

	switch name {
	case FactsFile:
		var buf bytes.Buffer
		if err := e.store.WriteJSONL(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case InsightsFile:
		return json.MarshalIndent(snapshot.Insights, "", "  ")
	case MetaFile:
		return json.MarshalIndent(snapshot.Meta, "", "  ")
	default:
		for _, a := range snapshot.Artifacts {
			if a.Name == name {
				return a.Content, nil
			}
		}
		return nil, fmt.Errorf("artifact %q not found", name)
	}
}

// LoadPrevious restores facts and metadata written by an earlier run so a
// server can answer queries before the first generation. Documents are not
// persisted, so the restored snapshot has none.
func (e *Engine) LoadPrevious(repoPath string) error {
	absRepo, err := filepath.Abs(repoPath)
	if err != nil {
		return fmt.Errorf("resolving repo path: %w", err)
	}
	outDir := e.OutputDir(absRepo)

	data, err := os.ReadFile(filepath.Join(outDir, MetaFile))
	if err != nil {
		return fmt.Errorf("reading %s: %w", MetaFile, err)
	}
	var meta facts.SnapshotMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("parsing %s: %w", MetaFile, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.Clear()
	if err := e.store.ReadJSONLFile(filepath.Join(outDir, FactsFile)); err != nil {
		return err
	}
	e.store.BuildGraph()

	var insights []facts.Insight
	if data, err := os.ReadFile(filepath.Join(outDir, InsightsFile)); err == nil {
		if err := json.Unmarshal(data, &insights); err != nil {
			log.Warningf("ignoring unreadable %s: %v", InsightsFile, err)
		}
	}

	e.snapshot = &facts.Snapshot{Meta: meta, Facts: e.store.All(), Insights: insights}
	log.Infof("loaded %d facts from snapshot %s", e.store.Count(), meta.ID)
	return nil
}

// loadPreviousHashes reads file hashes from the previous snapshot.meta.json.
func (e *Engine) loadPreviousHashes(repoPath string) {
	data, err := os.ReadFile(filepath.Join(e.OutputDir(repoPath), MetaFile))
	if err != nil {
		e.prevHashes = nil
		return
	}

	var meta facts.SnapshotMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		e.prevHashes = nil
		return
	}

	e.prevHashes = make(map[string]string, len(meta.FileHashes))
	for _, fh := range meta.FileHashes {
		e.prevHashes[fh.Path] = fh.Hash
	}
	log.Debugf("loaded %d file hashes from previous snapshot", len(e.prevHashes))
}

// filterChangedFiles computes SHA-256 hashes for all files and returns
// the current hash map and the list of files that have changed since the previous run.
func (e *Engine) filterChangedFiles(repoPath string, files []string) (map[string]string, []string) {
	currentHashes := make(map[string]string, len(files))
	var changed []string

	for _, relFile := range files {
		data, err := os.ReadFile(filepath.Join(repoPath, filepath.FromSlash(relFile)))
		if err != nil {
			// Can't hash, treat as changed
			changed = append(changed, relFile)
			continue
		}

		h := sha256.Sum256(data)
		hash := hex.EncodeToString(h[:])
		currentHashes[relFile] = hash

		if prevHash, ok := e.prevHashes[relFile]; !ok || prevHash != hash {
			changed = append(changed, relFile)
		}
	}

	return currentHashes, changed
}

// fileModTime returns the modification time of a file as an RFC3339 string.
func fileModTime(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return info.ModTime().UTC().Format(time.RFC3339)
}
