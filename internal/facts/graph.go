package facts

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Graph is an adjacency-list index over fact relations. It is derived from
// a Store and rebuilt after every generation run.
type Graph struct {
	mu      sync.RWMutex
	forward map[string][]Edge // fact name -> outgoing edges
	reverse map[string][]Edge // fact name -> incoming edges
	facts   []Fact
	factIdx map[string]int // fact name -> first index in facts
}

// Edge is one side of a relation. For reverse edges Target holds the source.
type Edge struct {
	RelKind string
	Target  string
}

// TraversalResult is the output of a breadth-first traversal.
type TraversalResult struct {
	Nodes []TraversalNode `json:"nodes"`
	Edges []TraversalEdge `json:"edges"`
	Stats TraversalStats  `json:"stats"`
}

// TraversalNode is a node reached during traversal.
type TraversalNode struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	File  string `json:"file,omitempty"`
	Line  int    `json:"line,omitempty"`
	Depth int    `json:"depth"`
}

// TraversalEdge is an edge followed during traversal.
type TraversalEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Kind   string `json:"kind"`
}

// TraversalStats summarizes a traversal.
type TraversalStats struct {
	NodesVisited    int  `json:"nodes_visited"`
	EdgesTraversed  int  `json:"edges_traversed"`
	MaxDepthReached int  `json:"max_depth_reached"`
	Truncated       bool `json:"truncated"`
}

// ImpactResult lists what depends on a fact, bucketed by distance.
type ImpactResult struct {
	Target  string                  `json:"target"`
	ByDepth map[int][]TraversalNode `json:"by_depth"`
	Edges   []TraversalEdge         `json:"edges"`
	Summary string                  `json:"summary"`
	Stats   TraversalStats          `json:"stats"`
}

// PathResult is a shortest path between two facts.
type PathResult struct {
	From  string          `json:"from"`
	To    string          `json:"to"`
	Found bool            `json:"found"`
	Path  []TraversalNode `json:"path,omitempty"`
	Edges []TraversalEdge `json:"edges,omitempty"`
}

// NewGraph builds forward and reverse adjacency lists in one pass over the
// facts' relations.
//
// Import facts also produce an edge from the importing package to the
// package of the imported type, found by trimming trailing segments of the
// import until a known package matches ("com.example.util.Strings" resolves
// to "com.example.util"). Package-level traversal and cycle detection walk
// these edges.
func NewGraph(ff []Fact) *Graph {
	g := &Graph{
		forward: make(map[string][]Edge),
		reverse: make(map[string][]Edge),
		facts:   ff,
		factIdx: make(map[string]int, len(ff)),
	}

	packages := make(map[string]bool)
	for i, f := range ff {
		if f.Name != "" {
			if _, exists := g.factIdx[f.Name]; !exists {
				g.factIdx[f.Name] = i
			}
		}
		if f.Kind == KindModule {
			packages[f.Name] = true
		}
	}

	seen := make(map[string]bool)
	for _, f := range ff {
		for _, rel := range f.Relations {
			g.addEdge(f.Name, rel.Kind, rel.Target)
		}

		if f.Kind != KindDependency {
			continue
		}
		from, _ := f.Props["package"].(string)
		if !packages[from] {
			continue
		}
		for _, rel := range f.Relations {
			if rel.Kind != RelImports {
				continue
			}
			to := ResolvePackage(rel.Target, packages)
			key := from + "\x00" + to
			if to == "" || to == from || seen[key] {
				continue
			}
			seen[key] = true
			g.addEdge(from, RelImports, to)
		}
	}
	return g
}

// ResolvePackage returns the longest dotted prefix of name that is a known
// package, or "" when none is.
func ResolvePackage(name string, packages map[string]bool) string {
	cur := strings.TrimSuffix(name, ".*")
	for cur != "" {
		if packages[cur] {
			return cur
		}
		i := strings.LastIndex(cur, ".")
		if i < 0 {
			break
		}
		cur = cur[:i]
	}
	return ""
}

// Traverse walks the graph breadth-first from start. direction is "forward"
// or "reverse"; relKinds and nodeKinds filter edges and reported nodes (nil
// means all). maxDepth defaults to 5 (max 20) and maxNodes to 100 (max 500).
func (g *Graph) Traverse(start, direction string, relKinds, nodeKinds []string, maxDepth, maxNodes int) TraversalResult {
	g.mu.RLock()
	defer g.mu.RUnlock()

	maxDepth = clamp(maxDepth, 5, 20)
	maxNodes = clamp(maxNodes, 100, 500)

	adj := g.forward
	if direction == "reverse" {
		adj = g.reverse
	}
	relSet := toSet(relKinds)
	kindSet := toSet(nodeKinds)

	type queueItem struct {
		name  string
		depth int
	}

	var result TraversalResult
	visited := map[string]bool{start: true}
	queue := []queueItem{{name: start}}
	result.Nodes = append(result.Nodes, g.nodeFor(start, 0))

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		if item.depth >= maxDepth {
			continue
		}

		for _, e := range adj[item.name] {
			if relSet != nil {
				if _, ok := relSet[e.RelKind]; !ok {
					continue
				}
			}
			result.Stats.EdgesTraversed++
			edge := TraversalEdge{Source: item.name, Target: e.Target, Kind: e.RelKind}
			if direction == "reverse" {
				edge.Source, edge.Target = e.Target, item.name
			}
			result.Edges = append(result.Edges, edge)

			if visited[e.Target] {
				continue
			}
			visited[e.Target] = true

			depth := item.depth + 1
			if depth > result.Stats.MaxDepthReached {
				result.Stats.MaxDepthReached = depth
			}
			node := g.nodeFor(e.Target, depth)

			// filtered nodes are walked through but not reported
			if kindSet != nil {
				if _, ok := kindSet[node.Kind]; !ok {
					queue = append(queue, queueItem{name: e.Target, depth: depth})
					continue
				}
			}
			if len(result.Nodes) >= maxNodes {
				result.Stats.Truncated = true
				continue
			}
			result.Nodes = append(result.Nodes, node)
			queue = append(queue, queueItem{name: e.Target, depth: depth})
		}
	}

	result.Stats.NodesVisited = len(visited)
	return result
}

// FindPath returns the shortest forward path from one fact to another.
// maxDepth defaults to 10 (max 20).
func (g *Graph) FindPath(from, to string, relKinds []string, maxDepth int) PathResult {
	g.mu.RLock()
	defer g.mu.RUnlock()

	maxDepth = clamp(maxDepth, 10, 20)
	if from == to {
		return PathResult{From: from, To: to, Found: true, Path: []TraversalNode{g.nodeFor(from, 0)}}
	}

	relSet := toSet(relKinds)
	type queueItem struct {
		name  string
		depth int
	}

	visited := map[string]bool{from: true}
	parent := make(map[string]string)
	parentEdge := make(map[string]Edge)
	queue := []queueItem{{name: from}}

	found := false
	for len(queue) > 0 && !found {
		item := queue[0]
		queue = queue[1:]
		if item.depth >= maxDepth {
			continue
		}
		for _, e := range g.forward[item.name] {
			if relSet != nil {
				if _, ok := relSet[e.RelKind]; !ok {
					continue
				}
			}
			if visited[e.Target] {
				continue
			}
			visited[e.Target] = true
			parent[e.Target] = item.name
			parentEdge[e.Target] = e
			if e.Target == to {
				found = true
				break
			}
			queue = append(queue, queueItem{name: e.Target, depth: item.depth + 1})
		}
	}

	result := PathResult{From: from, To: to, Found: found}
	if !found {
		return result
	}

	path := []string{to}
	for cur := to; cur != from; {
		cur = parent[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	for i, name := range path {
		result.Path = append(result.Path, g.nodeFor(name, i))
		if i > 0 {
			result.Edges = append(result.Edges, TraversalEdge{
				Source: path[i-1],
				Target: name,
				Kind:   parentEdge[name].RelKind,
			})
		}
	}
	return result
}

// ImpactSet lists the facts that transitively depend on target, grouped by
// distance. maxDepth defaults to 3 (max 10).
func (g *Graph) ImpactSet(target string, maxDepth, maxNodes int) ImpactResult {
	maxDepth = clamp(maxDepth, 3, 10)
	maxNodes = clamp(maxNodes, 200, 500)

	rev := g.Traverse(target, "reverse", nil, nil, maxDepth, maxNodes)
	result := ImpactResult{
		Target:  target,
		ByDepth: make(map[int][]TraversalNode),
		Edges:   rev.Edges,
		Stats:   rev.Stats,
	}
	for _, n := range rev.Nodes {
		if n.Depth > 0 {
			result.ByDepth[n.Depth] = append(result.ByDepth[n.Depth], n)
		}
	}
	result.Summary = impactSummary(result.ByDepth)
	return result
}

// Forward returns the forward adjacency map.
func (g *Graph) Forward() map[string][]Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.forward
}

// Reverse returns the reverse adjacency map.
func (g *Graph) Reverse() map[string][]Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.reverse
}

// NodeCount returns the number of distinct named facts.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.factIdx)
}

// EdgeCount returns the number of forward edges.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	count := 0
	for _, edges := range g.forward {
		count += len(edges)
	}
	return count
}

func (g *Graph) addEdge(source, relKind, target string) {
	g.forward[source] = append(g.forward[source], Edge{RelKind: relKind, Target: target})
	g.reverse[target] = append(g.reverse[target], Edge{RelKind: relKind, Target: source})
}

func (g *Graph) nodeFor(name string, depth int) TraversalNode {
	node := TraversalNode{Name: name, Depth: depth}
	if idx, ok := g.factIdx[name]; ok && idx < len(g.facts) {
		f := g.facts[idx]
		node.Kind = f.Kind
		node.File = f.File
		node.Line = f.Line
	}
	return node
}

func impactSummary(byDepth map[int][]TraversalNode) string {
	if len(byDepth) == 0 {
		return "No dependents found."
	}

	depths := make([]int, 0, len(byDepth))
	total := 0
	for d, nodes := range byDepth {
		depths = append(depths, d)
		total += len(nodes)
	}
	sort.Ints(depths)

	parts := make([]string, 0, len(depths))
	for _, d := range depths {
		counts := make(map[string]int)
		for _, n := range byDepth[d] {
			k := n.Kind
			if k == "" {
				k = "unknown"
			}
			counts[k]++
		}
		kinds := make([]string, 0, len(counts))
		for k := range counts {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		var bits []string
		for _, k := range kinds {
			bits = append(bits, fmt.Sprintf("%d %s", counts[k], k))
		}
		parts = append(parts, fmt.Sprintf("depth %d: %s", d, strings.Join(bits, ", ")))
	}
	return fmt.Sprintf("%d total dependents; %s", total, strings.Join(parts, "; "))
}

func clamp(v, def, max int) int {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

func toSet(ss []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		if s != "" {
			set[s] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}
