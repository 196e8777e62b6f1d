package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/amdshake/pkg/config"
	"github.com/Sumatoshi-tech/amdshake/pkg/mcp"
	"github.com/Sumatoshi-tech/amdshake/pkg/observability"
	"github.com/Sumatoshi-tech/amdshake/pkg/version"
)

const (
	metricsPath           = "/metrics"
	metricsReadTimeout    = 5 * time.Second
	metricsShutdownWindow = 5 * time.Second
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var (
		debug       bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes the amdshake passes as tools that AI agents can
discover and invoke:
  - amd_shrink: rename modules to short unique names
  - amd_treeshake: remove modules the kept entry points do not need
  - amd_graph: describe the module import graph`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := loadSettings(cobraCmd)
			if err != nil {
				return err
			}

			maxBytes, err := cfg.MCP.MaxBytes()
			if err != nil {
				return err
			}

			providers, err := initMCPObservability(cfg, debug)
			if err != nil {
				return err
			}

			defer func() {
				shutdownErr := providers.Shutdown(context.Background())
				if shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			ctx := cobraCmd.Context()
			meter := providers.Meter

			if metricsAddr != "" {
				promMeter, stop, serveErr := serveMetrics(ctx, metricsAddr, providers)
				if serveErr != nil {
					return serveErr
				}
				defer stop()

				meter = promMeter
			}

			deps, err := mcpDeps(meter, providers, maxBytes)
			if err != nil {
				return err
			}

			return mcp.NewServer(deps).Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	return cmd
}

func initMCPObservability(cfg *config.Config, debug bool) (observability.Providers, error) {
	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return observability.Providers{}, err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.ApplyEnv()
	obsCfg.Mode = observability.ModeMCP
	obsCfg.LogJSON = true
	obsCfg.LogLevel = level

	if debug {
		obsCfg.LogLevel = slog.LevelDebug
		obsCfg.DebugTrace = true
	}

	return observability.Init(obsCfg)
}

func mcpDeps(meter metric.Meter, providers observability.Providers, maxBytes int64) (mcp.ServerDeps, error) {
	red, err := observability.NewREDMetrics(meter)
	if err != nil {
		return mcp.ServerDeps{}, err
	}

	bundles, err := observability.NewBundleMetrics(meter)
	if err != nil {
		return mcp.ServerDeps{}, err
	}

	return mcp.ServerDeps{
		Logger:         providers.Logger,
		Metrics:        red,
		BundleMetrics:  bundles,
		Tracer:         providers.Tracer,
		MaxBundleBytes: maxBytes,
	}, nil
}

// serveMetrics starts an HTTP server exposing /metrics on addr. It returns
// the meter whose instruments the endpoint serves and a stop function.
func serveMetrics(ctx context.Context, addr string, providers observability.Providers) (metric.Meter, func(), error) {
	handler, meter, err := observability.PrometheusHandler()
	if err != nil {
		return nil, nil, err
	}

	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, handler)

	srv := &http.Server{
		Handler:           observability.InstrumentHandler(providers.Tracer, metricsPath, mux),
		ReadHeaderTimeout: metricsReadTimeout,
	}

	go func() {
		serveErr := srv.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			providers.Logger.Error("metrics server failed", "error", serveErr)
		}
	}()

	providers.Logger.Info("serving metrics", "addr", listener.Addr().String(), "path", metricsPath)

	stop := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownWindow)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}

	return meter, stop, nil
}
