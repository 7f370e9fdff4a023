package lockcheck

import (
	"go/token"
	"sort"
	"strconv"

	"golang.org/x/tools/go/ssa"
)

// classEdge records that an invocation of class To was found reachable,
// with its guard still live, from an invocation of class From. This is
// the Go analog of original_source's dependant_map edge and
// akerouanton-golintmu/lockorder.go's lockOrderEdge, rekeyed from struct
// field identity to LockClass (SPEC_FULL.md §4.4).
type classEdge struct {
	From, To  LockClass
	ParentPos token.Pos     // where the From invocation occurs
	ChildPos  token.Pos     // where the dependent (To) invocation occurs
	ChildFn   *ssa.Function // function containing the dependent invocation, for suppression lookups
}

// classPair is the (from, to) projection of a classEdge, used for
// cycle-rotation canonicalization.
type classPair struct {
	From, To LockClass
}

// depGraph is a directed graph over LockClass.
type depGraph struct {
	edges map[LockClass][]classEdge
}

func newDepGraph() *depGraph {
	return &depGraph{edges: make(map[LockClass][]classEdge)}
}

// addEdge adds e, deduplicating by (From, To, ChildPos).
func (g *depGraph) addEdge(e classEdge) {
	for _, existing := range g.edges[e.From] {
		if existing.To == e.To && existing.ChildPos == e.ChildPos {
			return
		}
	}
	g.edges[e.From] = append(g.edges[e.From], e)
}

// dependenciesContain reports whether target is reachable from start in
// the dependency graph. This is the memoized recursive query of
// original_source's dependancies_contain (pass.rs), used to satisfy I3
// independent of the graph-wide cycle enumeration below.
func (g *depGraph) dependenciesContain(start, target LockClass, visited map[LockClass]bool) bool {
	if visited[start] {
		return false
	}
	visited[start] = true
	for _, e := range g.edges[start] {
		if e.To == target {
			return true
		}
		if g.dependenciesContain(e.To, target, visited) {
			return true
		}
	}
	return false
}

// cycle is a sequence of edges forming a cycle in the dependency graph.
type cycle []classEdge

// detectCycles finds all cycles via DFS with white/gray/black coloring,
// adapted from akerouanton-golintmu/lockorder.go's detectCycles, rekeyed
// from mutexFieldKey to LockClass; same deterministic sorted-traversal
// and canonical-rotation dedup.
func (g *depGraph) detectCycles() []cycle {
	const (
		white = iota
		gray
		black
	)
	color := make(map[LockClass]int)
	parent := make(map[LockClass]classEdge)
	var cycles []cycle

	var dfs func(node LockClass)
	dfs = func(node LockClass) {
		color[node] = gray
		edges := append([]classEdge(nil), g.edges[node]...)
		sort.Slice(edges, func(i, j int) bool { return edges[i].To < edges[j].To })
		for _, edge := range edges {
			switch color[edge.To] {
			case white:
				parent[edge.To] = edge
				dfs(edge.To)
			case gray:
				if c := extractCycle(parent, edge); c != nil {
					cycles = append(cycles, c)
				}
			}
		}
		color[node] = black
	}

	nodes := make(map[LockClass]bool)
	for from, edges := range g.edges {
		nodes[from] = true
		for _, e := range edges {
			nodes[e.To] = true
		}
	}
	sortedNodes := make([]LockClass, 0, len(nodes))
	for n := range nodes {
		sortedNodes = append(sortedNodes, n)
	}
	sort.Slice(sortedNodes, func(i, j int) bool { return sortedNodes[i] < sortedNodes[j] })

	for _, n := range sortedNodes {
		if color[n] == white {
			dfs(n)
		}
	}
	return deduplicateCycles(cycles)
}

// extractCycle traces the parent map from the back-edge target back to
// the source, producing the cycle in acquisition order.
func extractCycle(parent map[LockClass]classEdge, backEdge classEdge) cycle {
	c := cycle{backEdge}
	current := backEdge.From
	visited := make(map[LockClass]bool)
	for current != backEdge.To {
		if visited[current] {
			return nil
		}
		visited[current] = true
		edge, ok := parent[current]
		if !ok {
			return nil
		}
		c = append(c, edge)
		current = edge.From
	}
	for i, j := 0, len(c)-1; i < j; i, j = i+1, j-1 {
		c[i], c[j] = c[j], c[i]
	}
	return c
}

// deduplicateCycles removes cycles that are rotations of one another.
func deduplicateCycles(cycles []cycle) []cycle {
	seen := make(map[string]bool)
	var result []cycle
	for _, c := range cycles {
		pairs := make([]classPair, len(c))
		for i, e := range c {
			pairs[i] = classPair{e.From, e.To}
		}
		minIdx := 0
		for i := 1; i < len(pairs); i++ {
			if pairLess(pairs[i], pairs[minIdx]) {
				minIdx = i
			}
		}
		key := ""
		for i := 0; i < len(pairs); i++ {
			p := pairs[(minIdx+i)%len(pairs)]
			key += classPairKey(p) + ";"
		}
		if !seen[key] {
			seen[key] = true
			result = append(result, c)
		}
	}
	return result
}

func pairLess(a, b classPair) bool {
	return classPairKey(a) < classPairKey(b)
}

func classPairKey(p classPair) string {
	return strconv.Itoa(int(p.From)) + "->" + strconv.Itoa(int(p.To))
}
