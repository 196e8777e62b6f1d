package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/amdshake/pkg/amd"
	"github.com/Sumatoshi-tech/amdshake/pkg/bundle"
	"github.com/Sumatoshi-tech/amdshake/pkg/graphview"
)

const defaultGraphTitle = "bundle"

type graphCommand struct {
	format string
	output string
}

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	gc := &graphCommand{}

	cmd := &cobra.Command{
		Use:   "graph [file|-]",
		Short: "Render the module import graph",
		Long: `Render the import graph of the bundle.

Formats:
  dot   Graphviz digraph, node labels prefixed with their import order
  html  interactive force-directed chart
  json  nodes, edges, import order, cycles and external imports`,
		Args: cobra.MaximumNArgs(1),
		RunE: gc.run,
	}

	cmd.Flags().StringVar(&gc.format, "format", string(graphview.FormatDOT),
		"graph format: "+strings.Join(graphview.Formats(), ", "))
	cmd.Flags().StringVarP(&gc.output, "output", "o", bundle.Stdio, "output file (- for stdout)")

	return cmd
}

func (gc *graphCommand) run(cmd *cobra.Command, args []string) error {
	format, err := graphview.ParseFormat(gc.format)
	if err != nil {
		return err
	}

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	sess, err := startSession(cmd, cfg)
	if err != nil {
		return err
	}
	defer sess.close()

	path := inputPath(args)

	return sess.red.Observe(cmd.Context(), "cli.graph", func(context.Context) error {
		text, readErr := bundle.Read(path, cmd.InOrStdin())
		if readErr != nil {
			return readErr
		}

		var buf bytes.Buffer

		writeErr := graphview.Write(&buf, amd.Extract(text), format, graphTitle(path))
		if writeErr != nil {
			return writeErr
		}

		return bundle.Write(gc.output, cmd.OutOrStdout(), buf.String(), false)
	})
}

func graphTitle(path string) string {
	if path == "" || path == bundle.Stdio {
		return defaultGraphTitle
	}

	return filepath.Base(path)
}
