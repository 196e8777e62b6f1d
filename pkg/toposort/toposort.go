// Package toposort provides a string-keyed directed graph with topological
// ordering, cycle lookup, parent/child queries and Graphviz output.
package toposort

import (
	"fmt"
	"slices"
	"strings"
)

// Graph represents a directed graph keyed by node name.
type Graph struct {
	symbols  *SymbolTable
	intGraph *IntGraph
}

// NewGraph initializes a new Graph.
func NewGraph() *Graph {
	return &Graph{
		symbols:  NewSymbolTable(),
		intGraph: NewIntGraph(),
	}
}

// AddNode inserts a new node into the graph.
// Returns false if the node already exists.
func (g *Graph) AddNode(name string) bool {
	if _, exists := g.symbols.Lookup(name); exists {
		return false
	}

	id := g.symbols.Intern(name)
	g.intGraph.EnsureCapacity(id + 1)

	return true
}

// HasNode reports whether name is a node of the graph.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.symbols.Lookup(name)

	return ok
}

// AddEdge inserts the link from "from" node to "to" node, adding both nodes
// when missing. Returns the in-degree of "to" afterwards.
func (g *Graph) AddEdge(from, to string) int {
	g.AddNode(from)
	g.AddNode(to)

	u, _ := g.symbols.Lookup(from)
	v, _ := g.symbols.Lookup(to)

	g.intGraph.AddEdge(u, v)

	return len(g.intGraph.Parents(v))
}

// Nodes returns every node name in insertion order.
func (g *Graph) Nodes() []string {
	names := make([]string, g.symbols.Len())

	for i := range names {
		names[i] = g.symbols.Resolve(i)
	}

	return names
}

// Toposort sorts the nodes in the graph in topological order.
// The boolean is false when a cycle prevents a complete order.
func (g *Graph) Toposort() ([]string, bool) {
	ids, ok := g.intGraph.TopoSort()

	return g.symbols.ResolveAll(ids), ok
}

// FindCycle returns the cycle in the graph which contains "seed" node, without
// repeating the seed at the end.
func (g *Graph) FindCycle(seed string) []string {
	id, exists := g.symbols.Lookup(seed)
	if !exists {
		return []string{}
	}

	cycleIDs := g.intGraph.FindCycle(id)

	if len(cycleIDs) > 1 && cycleIDs[0] == cycleIDs[len(cycleIDs)-1] {
		cycleIDs = cycleIDs[:len(cycleIDs)-1]
	}

	return g.symbols.ResolveAll(cycleIDs)
}

// FindParents returns the other ends of incoming edges, in the order the
// parent nodes were first added to the graph.
func (g *Graph) FindParents(to string) []string {
	id, exists := g.symbols.Lookup(to)
	if !exists {
		return []string{}
	}

	return g.symbols.ResolveAll(sortedIDs(g.intGraph.Parents(id)))
}

// FindChildren returns the other ends of outgoing edges, in the order the
// child nodes were first added to the graph.
func (g *Graph) FindChildren(from string) []string {
	id, exists := g.symbols.Lookup(from)
	if !exists {
		return []string{}
	}

	return g.symbols.ResolveAll(sortedIDs(g.intGraph.Children(id)))
}

// Serialize outputs the graph in Graphviz format. Node labels are prefixed
// with their index in sorted; nodes missing from sorted get -1.
func (g *Graph) Serialize(name string, sorted []string) string {
	node2index := map[string]int{}
	for index, node := range sorted {
		node2index[node] = index
	}

	label := func(node string) string {
		index, ok := node2index[node]
		if !ok {
			index = -1
		}

		return fmt.Sprintf("%d %s", index, node)
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "digraph %q {\n", name)

	for _, nodeFrom := range g.Nodes() {
		for _, nodeTo := range g.FindChildren(nodeFrom) {
			fmt.Fprintf(&sb, "  %q -> %q\n", label(nodeFrom), label(nodeTo))
		}
	}

	sb.WriteString("}")

	return sb.String()
}

func sortedIDs(ids []int) []int {
	out := slices.Clone(ids)
	slices.Sort(out)

	return out
}
