// Package mcp implements a Model Context Protocol server exposing the
// amdshake bundle passes as MCP tools over stdio transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/amdshake/pkg/observability"
	"github.com/Sumatoshi-tech/amdshake/pkg/version"
)

const (
	// serverName is the MCP server implementation name.
	serverName = "amdshake"

	toolCount = 3
)

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields use production defaults.
type ServerDeps struct {
	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics is an optional RED metrics recorder. Nil disables per-tool metrics.
	Metrics *observability.REDMetrics

	// BundleMetrics is an optional bundle statistics recorder. Nil disables it.
	BundleMetrics *observability.BundleMetrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil disables tracing.
	Tracer trace.Tracer

	// MaxBundleBytes caps the size of bundle inputs. Zero uses DefaultMaxBundleBytes.
	MaxBundleBytes int64
}

// Server wraps the MCP SDK server with the amdshake tool registrations.
type Server struct {
	inner    *mcpsdk.Server
	mu       sync.RWMutex
	tools    []string
	logger   *slog.Logger
	metrics  *observability.REDMetrics
	bundles  *observability.BundleMetrics
	tracer   trace.Tracer
	maxBytes int64
}

// NewServer creates a new MCP server with all amdshake tools registered.
func NewServer(deps ServerDeps) *Server {
	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		&mcpsdk.ServerOptions{},
	)

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxBytes := deps.MaxBundleBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBundleBytes
	}

	srv := &Server{
		inner:    inner,
		tools:    make([]string, 0, toolCount),
		logger:   logger,
		metrics:  deps.Metrics,
		bundles:  deps.BundleMetrics,
		tracer:   deps.Tracer,
		maxBytes: maxBytes,
	}

	srv.registerTools()

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the MCP server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	err := s.inner.Run(ctx, &mcpsdk.StdioTransport{})
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// RunWithTransport starts the MCP server on the given transport. It blocks
// until the context is canceled or the connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Server) registerTools() {
	addTool(s, ToolNameShrink, shrinkToolDescription, s.handleShrink)
	addTool(s, ToolNameTreeshake, treeshakeToolDescription, s.handleTreeshake)
	addTool(s, ToolNameGraph, graphToolDescription, s.handleGraph)
}

func addTool[In any](s *Server, name, description string, handler mcpsdk.ToolHandlerFor[In, ToolOutput]) {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{Name: name, Description: description}, instrument(s, name, handler))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

const (
	opPrefix       = "mcp."
	traceIDMetaKey = "trace_id"
)

// instrument runs handler inside a server span named after the tool, records
// RED metrics under the same operation name and logs the outcome. A sampled
// call gets its trace ID appended to the result content.
func instrument[In any](s *Server, name string, handler mcpsdk.ToolHandlerFor[In, ToolOutput]) mcpsdk.ToolHandlerFor[In, ToolOutput] {
	op := opPrefix + name

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input In) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx = observability.WithOperation(ctx, op)

		var span trace.Span
		if s.tracer != nil {
			ctx, span = s.tracer.Start(ctx, op,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attribute.String("mcp.tool", name)),
			)
			defer span.End()
		}

		done := s.metrics.TrackInflight(ctx, op)
		defer done()

		start := time.Now()
		result, output, err := handler(ctx, req, input)
		elapsed := time.Since(start)

		status := observability.StatusOK
		if err != nil || (result != nil && result.IsError) {
			status = observability.StatusError
		}

		s.metrics.RecordRequest(ctx, op, status, elapsed)
		s.logger.DebugContext(ctx, "tool call finished", "status", status, "duration", elapsed)

		if span != nil && span.SpanContext().IsSampled() && result != nil {
			result.Content = append(result.Content,
				&mcpsdk.TextContent{Text: fmt.Sprintf("%s=%s", traceIDMetaKey, span.SpanContext().TraceID().String())})
		}

		return result, output, err
	}
}

// Tool description constants.
const (
	shrinkToolDescription = "Rename every module of an AMD bundle to a shorter unique name " +
		"(strategy shorten or obfuscate) while keeping the import graph intact. " +
		"Returns the rewritten bundle and a summary of the renames."

	treeshakeToolDescription = "Remove every module of an AMD bundle that the kept entry modules " +
		"do not depend on, after merging aliases and duplicates and pruning unused imports. " +
		"Returns the reduced bundle and a summary of what was removed."

	graphToolDescription = "Describe the import graph of an AMD bundle: modules, edges, " +
		"import order, cycles and external imports."
)
