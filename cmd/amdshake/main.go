// Package main provides the entry point for the amdshake CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/amdshake/cmd/amdshake/commands"
	"github.com/Sumatoshi-tech/amdshake/pkg/version"
)

func main() {
	version.Init()

	err := newRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "amdshake",
		Short: "amdshake - AMD bundle shrinker and tree shaker",
		Long: `amdshake post-processes bundles of AMD define() calls.

Commands:
  shrink     Rename modules to short unique names
  treeshake  Remove modules the kept entry points do not need
  graph      Render the module import graph
  mcp        Serve the passes as MCP tools on stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	commands.AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(commands.NewShrinkCommand())
	rootCmd.AddCommand(commands.NewTreeshakeCommand())
	rootCmd.AddCommand(commands.NewGraphCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "amdshake %s\n", version.String())
		},
	}
}
