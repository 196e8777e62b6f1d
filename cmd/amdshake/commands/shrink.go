package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/amdshake/pkg/bundle"
	"github.com/Sumatoshi-tech/amdshake/pkg/mangle"
	"github.com/Sumatoshi-tech/amdshake/pkg/report"
)

type shrinkCommand struct {
	outputFlags

	strategy   string
	provenance bool
}

// NewShrinkCommand creates the shrink command.
func NewShrinkCommand() *cobra.Command {
	sc := &shrinkCommand{}

	cmd := &cobra.Command{
		Use:   "shrink [file|-]",
		Short: "Rename modules to short unique names",
		Long: `Rename every module of the bundle to a shorter name that no other module
holds, rewriting all imports so the dependency graph is unchanged.

Strategies:
  shorten    keep the shortest unique suffix of the module path
  obfuscate  use a, b, ..., z, ba, bb, ...`,
		Args: cobra.MaximumNArgs(1),
		RunE: sc.run,
	}

	cmd.Flags().StringVar(&sc.strategy, "strategy", mangle.StrategyShorten,
		"renaming strategy: "+strings.Join(mangle.StrategyNames(), ", "))
	cmd.Flags().BoolVar(&sc.provenance, "provenance", false, "write a provenance comment ahead of every module")
	sc.register(cmd)

	return cmd
}

func (sc *shrinkCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	if !cmd.Flags().Changed("strategy") {
		sc.strategy = cfg.Shrink.Strategy
	}

	if !cmd.Flags().Changed("provenance") {
		sc.provenance = cfg.Shrink.Provenance
	}

	sess, err := startSession(cmd, cfg)
	if err != nil {
		return err
	}
	defer sess.close()

	return sess.red.Observe(cmd.Context(), "cli.shrink", func(ctx context.Context) error {
		text, readErr := bundle.Read(inputPath(args), cmd.InOrStdin())
		if readErr != nil {
			return readErr
		}

		result, shrinkErr := mangle.Shrink(ctx, text, mangle.ShrinkOptions{
			StrategyName:      sc.strategy,
			IncludeProvenance: sc.provenance,
			Logger:            sess.providers.Logger,
			Tracer:            sess.providers.Tracer,
		})
		if shrinkErr != nil {
			return shrinkErr
		}

		summary := report.FromShrink(result)
		sess.record(ctx, summary)

		return sc.finish(cmd, text, result.Output, summary)
	})
}
