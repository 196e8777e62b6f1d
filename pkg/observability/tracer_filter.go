package observability

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// passSpanPrefixes name the per-pass child spans of the treeshake and shrink
// operations. They are dropped unless verbose tracing is on.
var passSpanPrefixes = []string{
	"amdshake.treeshake.",
	"amdshake.shrink.",
}

// filteringTracerProvider wraps a real TracerProvider and replaces per-pass
// spans with no-op spans, keeping one span per operation.
type filteringTracerProvider struct {
	embedded.TracerProvider

	delegate trace.TracerProvider
	noop     trace.TracerProvider
}

// NewFilteringTracerProvider wraps delegate so that per-pass spans are
// replaced with no-op spans.
func NewFilteringTracerProvider(delegate trace.TracerProvider) trace.TracerProvider {
	return &filteringTracerProvider{
		delegate: delegate,
		noop:     nooptrace.NewTracerProvider(),
	}
}

// Tracer returns a tracer that suppresses per-pass spans.
func (f *filteringTracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	return &filteringTracer{
		delegate: f.delegate.Tracer(name, opts...),
		noop:     f.noop.Tracer(name, opts...),
	}
}

// filteringTracer returns noop spans for suppressed span names while
// delegating everything else.
type filteringTracer struct {
	embedded.Tracer

	delegate trace.Tracer
	noop     trace.Tracer
}

// Start creates a span, returning a noop span for per-pass names.
func (f *filteringTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if isPassSpan(name) {
		return f.noop.Start(ctx, name, opts...)
	}

	return f.delegate.Start(ctx, name, opts...)
}

func isPassSpan(name string) bool {
	for _, prefix := range passSpanPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}

	return false
}
