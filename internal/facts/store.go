package facts

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

// Store holds the facts of the current snapshot, indexed by kind, file and
// name, and persists them as JSONL.
type Store struct {
	mu    sync.RWMutex
	facts []Fact

	byKind map[string][]int
	byFile map[string][]int
	byName map[string][]int

	graph *Graph
}

// NewStore creates an empty fact store.
func NewStore() *Store {
	return &Store{
		byKind: make(map[string][]int),
		byFile: make(map[string][]int),
		byName: make(map[string][]int),
	}
}

// Add appends facts and indexes them. Facts without a file or name are
// indexed by kind only.
func (s *Store) Add(ff ...Fact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range ff {
		idx := len(s.facts)
		s.facts = append(s.facts, f)
		s.byKind[f.Kind] = append(s.byKind[f.Kind], idx)
		if f.File != "" {
			s.byFile[f.File] = append(s.byFile[f.File], idx)
		}
		if f.Name != "" {
			s.byName[f.Name] = append(s.byName[f.Name], idx)
		}
	}
}

// All returns a copy of every fact in insertion order.
func (s *Store) All() []Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Fact, len(s.facts))
	copy(result, s.facts)
	return result
}

// Count returns the number of facts in the store.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.facts)
}

// ByKind returns all facts of the given kind.
func (s *Store) ByKind(kind string) []Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectByIndex(s.byKind[kind])
}

// ByFile returns all facts extracted from one source file.
func (s *Store) ByFile(file string) []Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectByIndex(s.byFile[file])
}

// ByName returns all facts with exactly the given name.
func (s *Store) ByName(name string) []Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectByIndex(s.byName[name])
}

// Files returns the sorted list of files that produced at least one fact.
func (s *Store) Files() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	files := make([]string, 0, len(s.byFile))
	for f := range s.byFile {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// QueryOpts filters a store query. Values inside one dimension are OR-ed;
// dimensions are AND-ed. Empty values match everything.
type QueryOpts struct {
	Kind       string
	Kinds      []string
	File       string
	FilePrefix string // e.g. "src/main/java/com/example"
	Name       string // substring match
	Names      []string
	RelKind    string
	Prop       string
	PropValue  string // requires Prop
	Offset     int
	Limit      int // 0 means 100; capped at 500
}

// Query returns the facts matching opts after offset and limit, and the
// number of matches before they were applied.
func (s *Store) Query(opts QueryOpts) ([]Fact, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kindSet := mergeIntoSet(opts.Kind, opts.Kinds)
	nameSet := mergeIntoSet("", opts.Names)

	var matched []Fact
	for _, f := range s.facts {
		if kindSet != nil {
			if _, ok := kindSet[f.Kind]; !ok {
				continue
			}
		}
		if opts.File != "" && f.File != opts.File {
			continue
		}
		if opts.FilePrefix != "" && !strings.HasPrefix(f.File, opts.FilePrefix) {
			continue
		}
		if opts.Name != "" || nameSet != nil {
			match := opts.Name != "" && strings.Contains(f.Name, opts.Name)
			if !match && nameSet != nil {
				_, match = nameSet[f.Name]
			}
			if !match {
				continue
			}
		}
		if opts.RelKind != "" && !hasRelation(f, opts.RelKind) {
			continue
		}
		if opts.Prop != "" {
			v, ok := f.Props[opts.Prop]
			if !ok {
				continue
			}
			if opts.PropValue != "" && fmt.Sprintf("%v", v) != opts.PropValue {
				continue
			}
		}
		matched = append(matched, f)
	}

	total := len(matched)
	if opts.Offset > 0 {
		if opts.Offset >= len(matched) {
			return nil, total
		}
		matched = matched[opts.Offset:]
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total
}

// ReverseLookup returns the facts with a relation pointing at target. An
// empty relKind matches every relation kind.
func (s *Store) ReverseLookup(target, relKind string) []Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []Fact
	for _, f := range s.facts {
		for _, r := range f.Relations {
			if r.Target == target && (relKind == "" || r.Kind == relKind) {
				result = append(result, f)
				break
			}
		}
	}
	return result
}

// Modules returns the package facts.
func (s *Store) Modules() []Fact {
	return s.ByKind(KindModule)
}

// Clear removes all facts and drops the graph.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reindex(nil)
}

func (s *Store) reindex(ff []Fact) {
	s.facts = ff
	s.byKind = make(map[string][]int)
	s.byFile = make(map[string][]int)
	s.byName = make(map[string][]int)
	s.graph = nil
	for idx, f := range ff {
		s.byKind[f.Kind] = append(s.byKind[f.Kind], idx)
		if f.File != "" {
			s.byFile[f.File] = append(s.byFile[f.File], idx)
		}
		if f.Name != "" {
			s.byName[f.Name] = append(s.byName[f.Name], idx)
		}
	}
}

// BuildGraph rebuilds the relation graph from the current facts.
func (s *Store) BuildGraph() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = NewGraph(s.facts)
}

// Graph returns the relation graph, or nil before BuildGraph.
func (s *Store) Graph() *Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph
}

// WriteJSONL writes one JSON object per fact.
func (s *Store) WriteJSONL(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	enc := json.NewEncoder(w)
	for _, f := range s.facts {
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("encoding fact %q: %w", f.Name, err)
		}
	}
	return nil
}

// WriteJSONLFile writes the store to path as JSONL.
func (s *Store) WriteJSONLFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	if err := s.WriteJSONL(bw); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadJSONL adds the facts read from r.
func (s *Store) ReadJSONL(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var f Fact
		if err := json.Unmarshal(line, &f); err != nil {
			return fmt.Errorf("decoding fact: %w", err)
		}
		s.Add(f)
	}
	return scanner.Err()
}

// ReadJSONLFile adds the facts stored in the JSONL file at path.
func (s *Store) ReadJSONLFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return s.ReadJSONL(f)
}

func (s *Store) collectByIndex(indices []int) []Fact {
	result := make([]Fact, 0, len(indices))
	for _, idx := range indices {
		if idx < len(s.facts) {
			result = append(result, s.facts[idx])
		}
	}
	return result
}

func hasRelation(f Fact, kind string) bool {
	for _, r := range f.Relations {
		if r.Kind == kind {
			return true
		}
	}
	return false
}

func mergeIntoSet(single string, multi []string) map[string]struct{} {
	set := make(map[string]struct{}, len(multi)+1)
	if single != "" {
		set[single] = struct{}{}
	}
	for _, v := range multi {
		if v != "" {
			set[v] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}
