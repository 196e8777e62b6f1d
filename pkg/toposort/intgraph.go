package toposort

import (
	"slices"
	"sort"
)

// IntGraph is a directed graph over dense integer IDs. It keeps both the
// forward adjacency and the reverse (parent) adjacency so that incoming
// edges can be walked without scanning the whole graph.
type IntGraph struct {
	// children[u] lists v for every edge u -> v, in insertion order.
	children [][]int
	// parents[v] lists u for every edge u -> v, in insertion order.
	parents [][]int
	// inDegree[v] is len(parents[v]).
	inDegree []int
}

// NewIntGraph creates a new IntGraph.
func NewIntGraph() *IntGraph {
	return &IntGraph{}
}

// EnsureCapacity grows the graph so that IDs below n are valid.
func (g *IntGraph) EnsureCapacity(n int) {
	for len(g.children) < n {
		g.children = append(g.children, nil)
		g.parents = append(g.parents, nil)
		g.inDegree = append(g.inDegree, 0)
	}
}

// Len returns the number of node IDs tracked by the graph.
func (g *IntGraph) Len() int {
	return len(g.children)
}

// AddEdge adds a directed edge from u to v.
// Returns true if the edge was added, false if it already existed.
func (g *IntGraph) AddEdge(u, v int) bool {
	g.EnsureCapacity(max(u, v) + 1)

	if slices.Contains(g.children[u], v) {
		return false
	}

	g.children[u] = append(g.children[u], v)
	g.parents[v] = append(g.parents[v], u)
	g.inDegree[v]++

	return true
}

// Children returns the targets of u's outgoing edges.
func (g *IntGraph) Children(u int) []int {
	if u < 0 || u >= len(g.children) {
		return nil
	}

	return g.children[u]
}

// Parents returns the sources of v's incoming edges.
func (g *IntGraph) Parents(v int) []int {
	if v < 0 || v >= len(g.parents) {
		return nil
	}

	return g.parents[v]
}

// TopoSort performs topological sort using Kahn's algorithm.
// Returns sorted node IDs and false when a cycle prevents a full ordering.
// Among ready nodes the lowest ID goes first.
func (g *IntGraph) TopoSort() ([]int, bool) {
	n := len(g.children)
	if n == 0 {
		return []int{}, true
	}

	inDegree := slices.Clone(g.inDegree)

	queue := make([]int, 0)

	for i := range n {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	result := make([]int, 0, n)

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		result = append(result, u)

		for _, v := range g.children[u] {
			inDegree[v]--
			if inDegree[v] == 0 {
				insertSorted(&queue, v)
			}
		}
	}

	return result, len(result) == n
}

// FindCycle returns a cycle through start as start -> ... -> start, or an
// empty slice when start is not on a cycle.
func (g *IntGraph) FindCycle(start int) []int {
	if start < 0 || start >= len(g.children) {
		return []int{}
	}

	pathMap := map[int]int{start: -1}
	queue := []int{start}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		for _, v := range g.children[u] {
			if v == start {
				cycle := []int{start}

				for curr := u; curr != start && curr != -1; curr = pathMap[curr] {
					cycle = append(cycle, curr)
				}

				cycle = append(cycle, start)
				slices.Reverse(cycle)

				return cycle
			}

			if _, visited := pathMap[v]; !visited {
				pathMap[v] = u
				queue = append(queue, v)
			}
		}
	}

	return []int{}
}

// insertSorted inserts v into the sorted slice s.
func insertSorted(s *[]int, v int) {
	i := sort.SearchInts(*s, v)
	*s = slices.Insert(*s, i, v)
}
