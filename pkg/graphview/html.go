package graphview

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	chartHeight    = "900px"
	baseSymbolSize = 10
	maxSymbolSize  = 40
	forceRepulsion = 120
	forceEdgeLen   = 60
	forceGravity   = 0.1
)

// Node categories of the HTML chart, in legend order.
const (
	categoryModule = iota
	categoryExternal
	categoryCycle
)

// WriteHTML writes a standalone HTML page with a force-directed chart of
// the graph. Externals and modules on a cycle get their own categories.
func (v View) WriteHTML(w io.Writer, title string) error {
	inCycle := make(map[string]bool)

	for _, cycle := range v.Cycles {
		for _, name := range cycle {
			inCycle[name] = true
		}
	}

	nodes := make([]opts.GraphNode, 0, len(v.Nodes))

	for _, node := range v.Nodes {
		category := categoryModule

		switch {
		case node.External:
			category = categoryExternal
		case inCycle[node.Name]:
			category = categoryCycle
		}

		nodes = append(nodes, opts.GraphNode{
			Name:       node.Name,
			Value:      float32(node.Dependents),
			Category:   category,
			SymbolSize: symbolSize(node.Dependents),
		})
	}

	links := make([]opts.GraphLink, 0, len(v.Edges))
	for _, edge := range v.Edges {
		links = append(links, opts.GraphLink{Source: edge.From, Target: edge.To})
	}

	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%d modules, %d externals, %d cycles", len(v.Nodes)-len(v.Externals), len(v.Externals), len(v.Cycles)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	graph.AddSeries("imports", nodes, links, charts.WithGraphChartOpts(opts.GraphChart{
		Layout:             "force",
		Roam:               opts.Bool(true),
		Draggable:          opts.Bool(true),
		FocusNodeAdjacency: opts.Bool(true),
		EdgeSymbol:         []string{"none", "arrow"},
		Force: &opts.GraphForce{
			Repulsion:  forceRepulsion,
			EdgeLength: forceEdgeLen,
			Gravity:    forceGravity,
		},
		Categories: []*opts.GraphCategory{
			{Name: "module"},
			{Name: "external"},
			{Name: "cycle"},
		},
	}))

	err := graph.Render(w)
	if err != nil {
		return fmt.Errorf("render html graph: %w", err)
	}

	return nil
}

func symbolSize(dependents int) int {
	size := baseSymbolSize + 2*dependents
	if size > maxSymbolSize {
		return maxSymbolSize
	}

	return size
}
