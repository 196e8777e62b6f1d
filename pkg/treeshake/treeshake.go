package treeshake

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/amdshake/pkg/amd"
	"github.com/Sumatoshi-tech/amdshake/pkg/levenshtein"
)

const tracerName = "amdshake.treeshake"

// SuggestDistance bounds how far a bundle module name may be from a missing
// keep name to be offered as a suggestion.
const SuggestDistance = 3

// MissingKeep is a keep name no module of the bundle carries.
type MissingKeep struct {
	Name       string `json:"name"                 yaml:"name"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// Options configures a treeshake run. Build it with NewOptions: the zero
// value turns duplicate merging off.
type Options struct {
	// Keep lists the entry modules. They and everything they depend on stay.
	Keep []string
	// Remove lists modules that never count as used unless also kept.
	Remove []string
	// CompareAgainst is the text of a bundle already shipped elsewhere. Its
	// modules are removed even when used, unless kept.
	CompareAgainst string
	// MergeDuplicates unifies modules with byte-identical bodies. On by
	// default.
	MergeDuplicates bool
	// StripUseStrict removes "use strict" directives from the output.
	StripUseStrict bool
	// IncludeProvenance writes provenance comments ahead of renamed modules
	// and an empty line ahead of the rest. Off by default.
	IncludeProvenance bool

	Logger *slog.Logger
	Tracer trace.Tracer
}

// NewOptions returns the default options for the given entry modules:
// duplicates are merged and no provenance comments are written.
func NewOptions(keep ...string) Options {
	return Options{
		Keep:            keep,
		MergeDuplicates: true,
	}
}

// Result is the outcome of a treeshake run.
type Result struct {
	Output   string         `json:"-"       yaml:"-"`
	Registry *amd.Registry  `json:"-"       yaml:"-"`
	Used     []string       `json:"used"    yaml:"used"`
	Removed  []Removal      `json:"removed" yaml:"removed"`
	Pruned   []PrunedImport `json:"pruned"  yaml:"pruned"`
	Renamed  []amd.Rename   `json:"renamed" yaml:"renamed"`
	Missing  []MissingKeep  `json:"missing" yaml:"missing"`

	ModulesBefore int `json:"modules_before" yaml:"modules_before"`
	ModulesAfter  int `json:"modules_after"  yaml:"modules_after"`
	BytesBefore   int `json:"bytes_before"   yaml:"bytes_before"`
	BytesAfter    int `json:"bytes_after"    yaml:"bytes_after"`
}

// Treeshake parses text, removes every module not needed by opts.Keep and
// returns the serialized survivors.
func Treeshake(ctx context.Context, text string, opts Options) Result {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	ctx, span := tracer.Start(ctx, "amdshake.treeshake")
	defer span.End()

	reg := amd.Extract(text)
	result := Run(ctx, reg, opts)

	output := amd.Serialize(reg, amd.SerializeOptions{IncludeProvenance: opts.IncludeProvenance})
	if opts.StripUseStrict {
		output = amd.StripUseStrict(output)
	}

	result.Output = output
	result.BytesBefore = len(text)
	result.BytesAfter = len(output)

	span.SetAttributes(
		attribute.Int("treeshake.modules_before", result.ModulesBefore),
		attribute.Int("treeshake.modules_after", result.ModulesAfter),
		attribute.Int("treeshake.bytes_before", result.BytesBefore),
		attribute.Int("treeshake.bytes_after", result.BytesAfter),
		attribute.Int("treeshake.pruned_imports", len(result.Pruned)),
	)

	return result
}

// Run applies alias resolution, import pruning, reachability and the sweep to
// reg in place. Output and byte counts of the returned result are left empty.
func Run(ctx context.Context, reg *amd.Registry, opts Options) Result {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	logger := loggerOrDiscard(opts.Logger)
	result := Result{Registry: reg, ModulesBefore: reg.Len()}

	_, aliasSpan := tracer.Start(ctx, "amdshake.treeshake.aliases")
	resolver := Resolve(reg, opts.MergeDuplicates, logger)
	aliasSpan.End()

	result.Renamed = resolver.Renames()
	result.Removed = append(result.Removed, resolver.Removals()...)

	_, pruneSpan := tracer.Start(ctx, "amdshake.treeshake.prune")
	result.Pruned = Prune(reg, logger)
	pruneSpan.End()

	keep := NewNameSet(opts.Keep...)
	result.Missing = MissingKeeps(reg, opts.Keep, logger)

	_, reachSpan := tracer.Start(ctx, "amdshake.treeshake.reachability")
	used := Reachability{Keep: keep, Remove: NewNameSet(opts.Remove...), Logger: logger}.Used(reg)
	result.Removed = append(result.Removed, Sweep(reg, used, keep, NewNameSet(amd.Names(opts.CompareAgainst)...), logger)...)
	reachSpan.End()

	result.Used = used.Sorted()
	result.ModulesAfter = reg.Len()

	logger.Info("treeshake complete",
		"modules_before", result.ModulesBefore,
		"modules_after", result.ModulesAfter,
		"pruned_imports", len(result.Pruned),
	)

	return result
}

// MissingKeeps lists the keep names reg does not define, each with the
// closest defined name when one is near enough.
func MissingKeeps(reg *amd.Registry, keep []string, logger *slog.Logger) []MissingKeep {
	logger = loggerOrDiscard(logger)
	names := reg.Names()
	lev := &levenshtein.Context{}

	var missing []MissingKeep

	seen := NewNameSet()

	for _, name := range keep {
		if reg.Has(name) || seen[name] {
			continue
		}

		seen[name] = true

		entry := MissingKeep{Name: name}
		if suggestion, ok := lev.Closest(name, names, SuggestDistance); ok {
			entry.Suggestion = suggestion
		}

		logger.Warn("kept module not in bundle", "module", name, "did_you_mean", entry.Suggestion)

		missing = append(missing, entry)
	}

	return missing
}
