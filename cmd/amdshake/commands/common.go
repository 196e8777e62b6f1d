// Package commands implements the amdshake CLI subcommands.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/amdshake/pkg/bundle"
	"github.com/Sumatoshi-tech/amdshake/pkg/config"
	"github.com/Sumatoshi-tech/amdshake/pkg/observability"
	"github.com/Sumatoshi-tech/amdshake/pkg/report"
	"github.com/Sumatoshi-tech/amdshake/pkg/version"
)

// Global flag names.
const (
	flagConfig  = "config"
	flagVerbose = "verbose"
	flagQuiet   = "quiet"
	flagNoColor = "no-color"
)

// AddGlobalFlags registers the persistent flags shared by every subcommand.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String(flagConfig, "", "config file (default: .amdshake.yaml in CWD or $HOME)")
	cmd.PersistentFlags().BoolP(flagVerbose, "v", false, "verbose output")
	cmd.PersistentFlags().BoolP(flagQuiet, "q", false, "suppress output")
	cmd.PersistentFlags().Bool(flagNoColor, false, "disable colored output")
}

// flagBool reads a boolean flag that may be missing when the command runs
// without its root.
func flagBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false
	}

	return v
}

func flagString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}

	return v
}

// loadSettings loads the config file named by --config, or the default
// search path.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(flagString(cmd, flagConfig))
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// session bundles the observability handles of one CLI invocation.
type session struct {
	providers observability.Providers
	red       *observability.REDMetrics
	bundles   *observability.BundleMetrics
}

// startSession initializes observability for a CLI command. Logs go to the
// command's stderr.
func startSession(cmd *cobra.Command, cfg *config.Config) (*session, error) {
	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return nil, err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.ApplyEnv()
	obsCfg.Mode = observability.ModeCLI
	obsCfg.LogJSON = cfg.Logging.JSON
	obsCfg.LogWriter = cmd.ErrOrStderr()
	obsCfg.LogLevel = level

	switch {
	case flagBool(cmd, flagVerbose):
		obsCfg.LogLevel = slog.LevelDebug
	case flagBool(cmd, flagQuiet):
		obsCfg.LogLevel = slog.LevelError
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return nil, err
	}

	bundles, err := observability.NewBundleMetrics(providers.Meter)
	if err != nil {
		return nil, err
	}

	return &session{providers: providers, red: red, bundles: bundles}, nil
}

func (s *session) close() {
	err := s.providers.Shutdown(context.Background())
	if err != nil {
		s.providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

func (s *session) record(ctx context.Context, summary report.Summary) {
	s.bundles.RecordBundle(ctx, observability.BundleStats{
		Op:              summary.Operation,
		ModulesBefore:   summary.ModulesBefore,
		BytesBefore:     summary.BytesBefore,
		BytesAfter:      summary.BytesAfter,
		PrunedImports:   len(summary.Pruned),
		RemovedByReason: summary.RemovedByReason(),
	})
}

// outputFlags are the flags shared by the bundle-rewriting commands.
type outputFlags struct {
	output   string
	compress bool
	report   bool
	diff     bool
	format   string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", bundle.Stdio, "output file (- for stdout, .lz4 compresses)")
	cmd.Flags().BoolVar(&o.compress, "compress", false, "lz4-compress the output")
	cmd.Flags().BoolVar(&o.report, "report", false, "print a summary report")
	cmd.Flags().BoolVar(&o.diff, "diff", false, "print a line diff between input and output")
	cmd.Flags().StringVar(&o.format, "format", string(report.FormatText), "report format: text, json, yaml")
}

// sideWriter is where reports and diffs go: stderr when the bundle itself
// is written to stdout, stdout otherwise.
func (o *outputFlags) sideWriter(cmd *cobra.Command) io.Writer {
	if o.output == "" || o.output == bundle.Stdio {
		return cmd.ErrOrStderr()
	}

	return cmd.OutOrStdout()
}

// finish writes the rewritten bundle and the optional diff and report.
func (o *outputFlags) finish(cmd *cobra.Command, input, output string, summary report.Summary) error {
	format, err := report.ParseFormat(o.format)
	if err != nil {
		return err
	}

	err = bundle.Write(o.output, cmd.OutOrStdout(), output, o.compress)
	if err != nil {
		return err
	}

	if flagBool(cmd, flagQuiet) {
		return nil
	}

	side := o.sideWriter(cmd)
	colored := !flagBool(cmd, flagNoColor) && format == report.FormatText

	if o.diff {
		_, err = report.WriteDiff(side, input, output, colored)
		if err != nil {
			return err
		}
	}

	if o.report {
		return report.Write(side, summary, format, report.Options{Color: colored, Verbose: flagBool(cmd, flagVerbose)})
	}

	return nil
}

// inputPath returns the positional input argument, defaulting to stdin.
func inputPath(args []string) string {
	if len(args) == 0 {
		return bundle.Stdio
	}

	return args[0]
}
