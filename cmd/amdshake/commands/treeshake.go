package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/amdshake/pkg/bundle"
	"github.com/Sumatoshi-tech/amdshake/pkg/config"
	"github.com/Sumatoshi-tech/amdshake/pkg/manifest"
	"github.com/Sumatoshi-tech/amdshake/pkg/report"
	"github.com/Sumatoshi-tech/amdshake/pkg/treeshake"
)

type treeshakeCommand struct {
	outputFlags

	keep              []string
	remove            []string
	compare           string
	manifestPath      string
	noMergeDuplicates bool
	stripUseStrict    bool
	provenance        bool
}

// NewTreeshakeCommand creates the treeshake command.
func NewTreeshakeCommand() *cobra.Command {
	tc := &treeshakeCommand{}

	cmd := &cobra.Command{
		Use:   "treeshake [file|-]",
		Short: "Remove modules the kept entry points do not need",
		Long: `Remove every module that no kept module depends on.

Before the reachability sweep, modules carrying a provenance comment are
restored to their original names, modules with identical bodies are merged
and imports whose factory parameter is never used are pruned.

A manifest file may list keep and remove names and a compare bundle:
  {"keep": ["app/main"], "remove": ["app/debug"], "compare": "vendor.js"}`,
		Args: cobra.MaximumNArgs(1),
		RunE: tc.run,
	}

	cmd.Flags().StringSliceVarP(&tc.keep, "keep", "k", nil, "entry modules to keep with their dependencies")
	cmd.Flags().StringSliceVar(&tc.remove, "remove", nil, "modules never counted as used unless kept")
	cmd.Flags().StringVar(&tc.compare, "compare", "", "bundle already shipped; its modules are dropped unless kept")
	cmd.Flags().StringVar(&tc.manifestPath, "manifest", "", "JSON manifest with keep, remove and compare")
	cmd.Flags().BoolVar(&tc.noMergeDuplicates, "no-merge-duplicates", false, "keep modules with identical bodies separate")
	cmd.Flags().BoolVar(&tc.stripUseStrict, "strip-use-strict", false, "remove use strict directives from the output")
	cmd.Flags().BoolVar(&tc.provenance, "provenance", false, "write provenance comments ahead of renamed modules")
	tc.register(cmd)

	return cmd
}

func (tc *treeshakeCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	opts, err := tc.options(cmd, cfg)
	if err != nil {
		return err
	}

	sess, err := startSession(cmd, cfg)
	if err != nil {
		return err
	}
	defer sess.close()

	opts.Logger = sess.providers.Logger
	opts.Tracer = sess.providers.Tracer

	return sess.red.Observe(cmd.Context(), "cli.treeshake", func(ctx context.Context) error {
		text, readErr := bundle.Read(inputPath(args), cmd.InOrStdin())
		if readErr != nil {
			return readErr
		}

		result := treeshake.Treeshake(ctx, text, opts)

		summary := report.FromTreeshake(result)
		sess.record(ctx, summary)

		return tc.finish(cmd, text, result.Output, summary)
	})
}

// options merges config, manifest and flags into treeshake options. Flags
// replace config values; the manifest adds to both.
func (tc *treeshakeCommand) options(cmd *cobra.Command, cfg *config.Config) (treeshake.Options, error) {
	changed := cmd.Flags().Changed

	keep := cfg.Treeshake.Keep
	if changed("keep") {
		keep = tc.keep
	}

	remove := cfg.Treeshake.Remove
	if changed("remove") {
		remove = tc.remove
	}

	comparePath := cfg.Treeshake.Compare
	if changed("compare") {
		comparePath = tc.compare
	}

	manifestPath := cfg.Treeshake.Manifest
	if changed("manifest") {
		manifestPath = tc.manifestPath
	}

	if manifestPath != "" {
		m, err := manifest.Load(manifestPath)
		if err != nil {
			return treeshake.Options{}, err
		}

		m = m.Merge(keep, remove)
		keep, remove = m.Keep, m.Remove

		if comparePath == "" {
			comparePath = m.Compare
		}
	}

	opts := treeshake.NewOptions(keep...)
	opts.Remove = remove
	opts.MergeDuplicates = cfg.Treeshake.MergeDuplicates && !tc.noMergeDuplicates
	opts.StripUseStrict = cfg.Treeshake.StripUseStrict || tc.stripUseStrict
	opts.IncludeProvenance = cfg.Treeshake.Provenance || tc.provenance

	if comparePath != "" {
		text, err := bundle.Read(comparePath, nil)
		if err != nil {
			return treeshake.Options{}, err
		}

		opts.CompareAgainst = text
	}

	return opts, nil
}
