package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

const (
	logKeyTraceID = "trace_id"
	logKeySpanID  = "span_id"
	logKeyOp      = "op"
)

type operationKey struct{}

// WithOperation returns ctx tagged with the running operation, such as
// "cli.treeshake" or "mcp.amd_graph". Records logged under ctx carry it.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey{}, op)
}

// OperationFromContext returns the operation set by WithOperation.
func OperationFromContext(ctx context.Context) (string, bool) {
	op, ok := ctx.Value(operationKey{}).(string)

	return op, ok && op != ""
}

// ContextHandler is an [slog.Handler] stamping each record with the trace
// and span IDs and the operation found in the record's context. Process
// metadata (service, mode, env) is attached once, outside any group.
type ContextHandler struct {
	next slog.Handler
}

// NewContextHandler wraps next. Empty env is omitted.
func NewContextHandler(next slog.Handler, service, env string, mode AppMode) *ContextHandler {
	meta := []slog.Attr{slog.String("service", service), slog.String("mode", string(mode))}
	if env != "" {
		meta = append(meta, slog.String("env", env))
	}

	return &ContextHandler{next: next.WithAttrs(meta)}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	if op, ok := OperationFromContext(ctx); ok {
		record.AddAttrs(slog.String(logKeyOp, op))
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		record.AddAttrs(
			slog.String(logKeyTraceID, sc.TraceID().String()),
			slog.String(logKeySpanID, sc.SpanID().String()),
		)
	}

	err := h.next.Handle(ctx, record)
	if err != nil {
		return fmt.Errorf("context handler: %w", err)
	}

	return nil
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name)}
}
