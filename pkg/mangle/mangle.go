package mangle

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/amdshake/pkg/amd"
)

const tracerName = "amdshake.mangle"

// Mangle renames every module of reg with strategy, in registry order.
// Imports pointing outside the registry are reserved first so no module is
// renamed onto an external dependency. Each renamed record is stamped with
// its provenance.
func Mangle(reg *amd.Registry, strategy Strategy, logger *slog.Logger) []amd.Rename {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	reg.Reserve(reg.Externals()...)

	var renames []amd.Rename

	for _, name := range reg.Names() {
		candidate := strategy(reg, name)
		for candidate != name && reg.Taken(candidate) {
			candidate = strategy(reg, name)
		}

		if candidate == name {
			continue
		}

		logger.Debug("renaming module", "from", name, "to", candidate)

		reg.Rename(name, candidate, true)
		renames = append(renames, amd.Rename{From: name, To: candidate})
	}

	return renames
}

// ShrinkOptions configures a shrink run.
type ShrinkOptions struct {
	// Strategy overrides StrategyName when set.
	Strategy Strategy
	// StrategyName selects a built-in strategy. Empty means shorten.
	StrategyName string
	// IncludeProvenance writes a provenance comment ahead of every module.
	IncludeProvenance bool

	Logger *slog.Logger
	Tracer trace.Tracer
}

// Result is the outcome of a shrink run.
type Result struct {
	Output   string        `json:"-"        yaml:"-"`
	Registry *amd.Registry `json:"-"        yaml:"-"`
	Strategy string        `json:"strategy" yaml:"strategy"`
	Renamed  []amd.Rename  `json:"renamed"  yaml:"renamed"`

	Modules     int `json:"modules"      yaml:"modules"`
	BytesBefore int `json:"bytes_before" yaml:"bytes_before"`
	BytesAfter  int `json:"bytes_after"  yaml:"bytes_after"`
}

// Shrink parses text, renames every module and serializes the result. An
// unknown strategy name fails before anything is parsed.
func Shrink(ctx context.Context, text string, opts ShrinkOptions) (Result, error) {
	strategy, strategyName, err := resolveStrategy(opts)
	if err != nil {
		return Result{}, err
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	_, span := tracer.Start(ctx, "amdshake.shrink")
	defer span.End()

	reg := amd.Extract(text)
	renames := Mangle(reg, strategy, opts.Logger)
	output := amd.Serialize(reg, amd.SerializeOptions{IncludeProvenance: opts.IncludeProvenance})

	result := Result{
		Output:      output,
		Registry:    reg,
		Strategy:    strategyName,
		Renamed:     renames,
		Modules:     reg.Len(),
		BytesBefore: len(text),
		BytesAfter:  len(output),
	}

	span.SetAttributes(
		attribute.String("shrink.strategy", strategyName),
		attribute.Int("shrink.modules", result.Modules),
		attribute.Int("shrink.renamed", len(renames)),
		attribute.Int("shrink.bytes_before", result.BytesBefore),
		attribute.Int("shrink.bytes_after", result.BytesAfter),
	)

	return result, nil
}

func resolveStrategy(opts ShrinkOptions) (Strategy, string, error) {
	if opts.Strategy != nil {
		return opts.Strategy, "custom", nil
	}

	name := opts.StrategyName
	if name == "" {
		name = StrategyShorten
	}

	strategy, err := StrategyByName(name)
	if err != nil {
		return nil, "", err
	}

	return strategy, name, nil
}
