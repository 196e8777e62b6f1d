// Package graphview renders the import graph of a bundle as Graphviz DOT, an
// interactive HTML force graph or JSON, and reports cycles and external
// imports.
package graphview

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Sumatoshi-tech/amdshake/pkg/amd"
	"github.com/Sumatoshi-tech/amdshake/pkg/toposort"
	"github.com/Sumatoshi-tech/amdshake/pkg/treeshake"
)

// Format selects the graph rendering.
type Format string

// Supported formats.
const (
	FormatDOT  Format = "dot"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned for a format name outside Formats.
var ErrUnknownFormat = errors.New("unknown graph format")

// Formats lists the supported format names.
func Formats() []string {
	return []string{string(FormatDOT), string(FormatHTML), string(FormatJSON)}
}

// ParseFormat maps a case-insensitive name to a Format. Empty means DOT.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatDOT, "gv":
		return FormatDOT, nil
	case FormatHTML:
		return FormatHTML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, name, strings.Join(Formats(), ", "))
	}
}

// Node is one module of the graph.
type Node struct {
	Name string `json:"name"`
	// Imports counts the node's outgoing edges.
	Imports int `json:"imports"`
	// Dependents counts the modules importing the node.
	Dependents int  `json:"dependents"`
	External   bool `json:"external,omitempty"`
}

// Edge points from an importing module to its import.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// View is the analysed import graph of a bundle.
type View struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
	// Order lists the nodes importers first. It is partial when Cycles is
	// not empty.
	Order     []string   `json:"order"`
	Cycles    [][]string `json:"cycles"`
	Externals []string   `json:"externals"`

	graph *toposort.Graph
}

// Build analyses the import graph of reg.
func Build(reg *amd.Registry) View {
	graph := treeshake.ImportGraph(reg)

	externals := reg.Externals()
	if externals == nil {
		externals = []string{}
	}

	isExternal := make(map[string]bool, len(externals))
	for _, name := range externals {
		isExternal[name] = true
	}

	view := View{
		Nodes:     []Node{},
		Edges:     []Edge{},
		Cycles:    [][]string{},
		Externals: externals,
		graph:     graph,
	}

	onCycle := make(map[string]bool)

	for _, name := range graph.Nodes() {
		children := graph.FindChildren(name)

		view.Nodes = append(view.Nodes, Node{
			Name:       name,
			Imports:    len(children),
			Dependents: len(graph.FindParents(name)),
			External:   isExternal[name],
		})

		for _, child := range children {
			view.Edges = append(view.Edges, Edge{From: name, To: child})
		}

		if onCycle[name] {
			continue
		}

		cycle := graph.FindCycle(name)
		if len(cycle) == 0 {
			continue
		}

		for _, member := range cycle {
			onCycle[member] = true
		}

		view.Cycles = append(view.Cycles, cycle)
	}

	view.Order, _ = graph.Toposort()

	return view
}

// Write renders the graph of reg to w. title names the DOT digraph and the
// HTML page.
func Write(w io.Writer, reg *amd.Registry, format Format, title string) error {
	view := Build(reg)

	switch format {
	case FormatDOT, "":
		return view.WriteDOT(w, title)
	case FormatHTML:
		return view.WriteHTML(w, title)
	case FormatJSON:
		return view.WriteJSON(w)
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

// WriteDOT writes the graph in Graphviz format. Node labels carry their
// position in Order.
func (v View) WriteDOT(w io.Writer, title string) error {
	graph := v.graph
	if graph == nil {
		graph = toposort.NewGraph()
	}

	_, err := fmt.Fprintln(w, graph.Serialize(title, v.Order))
	if err != nil {
		return fmt.Errorf("write dot graph: %w", err)
	}

	return nil
}

// WriteJSON writes the view as indented JSON.
func (v View) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(v)
	if err != nil {
		return fmt.Errorf("encode json graph: %w", err)
	}

	return nil
}
