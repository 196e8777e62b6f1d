package observability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// DefaultMaxAttributeLen caps exported string attribute values. Module names
// fit comfortably; bundle text does not.
const DefaultMaxAttributeLen = 256

const truncatedMarker = "..."

// AttributePolicy decides which span attributes leave the process.
type AttributePolicy struct {
	// Prefixes lists the key prefixes that are exported.
	Prefixes []string
	// Keys lists exact keys that are exported.
	Keys []string
	// MaxValueLen truncates longer string values. Zero disables truncation.
	MaxValueLen int
}

// DefaultAttributePolicy exports the attributes the passes, the MCP tools
// and the HTTP middleware record.
func DefaultAttributePolicy() AttributePolicy {
	return AttributePolicy{
		Prefixes:    []string{"amdshake.", "treeshake.", "shrink.", "graph.", "mcp.", "http.", "error."},
		Keys:        []string{"error"},
		MaxValueLen: DefaultMaxAttributeLen,
	}
}

func (p AttributePolicy) allows(key string) bool {
	for _, k := range p.Keys {
		if k == key {
			return true
		}
	}

	for _, prefix := range p.Prefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}

	return false
}

// Apply returns the exported subset of attrs and the keys it dropped.
func (p AttributePolicy) Apply(attrs []attribute.KeyValue) ([]attribute.KeyValue, []string) {
	kept := make([]attribute.KeyValue, 0, len(attrs))

	var dropped []string

	for _, kv := range attrs {
		key := string(kv.Key)
		if !p.allows(key) {
			dropped = append(dropped, key)

			continue
		}

		if p.MaxValueLen > 0 && kv.Value.Type() == attribute.STRING {
			if value := kv.Value.AsString(); len(value) > p.MaxValueLen {
				kv = kv.Key.String(value[:p.MaxValueLen] + truncatedMarker)
			}
		}

		kept = append(kept, kv)
	}

	return kept, dropped
}

// attributeFilter is a SpanProcessor applying an AttributePolicy to every
// finished span before its delegate sees it.
type attributeFilter struct {
	delegate sdktrace.SpanProcessor
	policy   AttributePolicy
	logger   *slog.Logger
}

// NewAttributeFilter wraps delegate with policy. When logger is non-nil every
// dropped key is logged at debug level.
func NewAttributeFilter(delegate sdktrace.SpanProcessor, policy AttributePolicy, logger *slog.Logger) sdktrace.SpanProcessor {
	return &attributeFilter{delegate: delegate, policy: policy, logger: logger}
}

func (f *attributeFilter) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	f.delegate.OnStart(parent, s)
}

func (f *attributeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	attrs, dropped := f.policy.Apply(s.Attributes())

	if f.logger != nil {
		for _, key := range dropped {
			f.logger.Debug("span attribute dropped", "span", s.Name(), "key", key)
		}
	}

	f.delegate.OnEnd(&filteredSpan{ReadOnlySpan: s, attrs: attrs, dropped: len(dropped)})
}

func (f *attributeFilter) Shutdown(ctx context.Context) error {
	err := f.delegate.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter shutdown: %w", err)
	}

	return nil
}

func (f *attributeFilter) ForceFlush(ctx context.Context) error {
	err := f.delegate.ForceFlush(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter flush: %w", err)
	}

	return nil
}

type filteredSpan struct {
	sdktrace.ReadOnlySpan

	attrs   []attribute.KeyValue
	dropped int
}

func (s *filteredSpan) Attributes() []attribute.KeyValue {
	return s.attrs
}

func (s *filteredSpan) DroppedAttributes() int {
	return s.ReadOnlySpan.DroppedAttributes() + s.dropped
}
