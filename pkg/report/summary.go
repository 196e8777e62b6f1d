// Package report renders the outcome of a shrink or treeshake run as a text
// table, JSON or YAML, and produces line diffs between bundles.
package report

import (
	"github.com/Sumatoshi-tech/amdshake/pkg/amd"
	"github.com/Sumatoshi-tech/amdshake/pkg/mangle"
	"github.com/Sumatoshi-tech/amdshake/pkg/treeshake"
)

// Operation names.
const (
	OpShrink    = "shrink"
	OpTreeshake = "treeshake"
)

// Summary describes one processed bundle.
type Summary struct {
	Operation string `json:"operation"          yaml:"operation"`
	Strategy  string `json:"strategy,omitempty" yaml:"strategy,omitempty"`

	ModulesBefore int `json:"modules_before" yaml:"modules_before"`
	ModulesAfter  int `json:"modules_after"  yaml:"modules_after"`
	BytesBefore   int `json:"bytes_before"   yaml:"bytes_before"`
	BytesAfter    int `json:"bytes_after"    yaml:"bytes_after"`

	Used    []string                 `json:"used,omitempty"    yaml:"used,omitempty"`
	Removed []treeshake.Removal      `json:"removed,omitempty" yaml:"removed,omitempty"`
	Pruned  []treeshake.PrunedImport `json:"pruned,omitempty"  yaml:"pruned,omitempty"`
	Renamed []amd.Rename             `json:"renamed,omitempty" yaml:"renamed,omitempty"`
	Missing []treeshake.MissingKeep  `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// FromTreeshake builds a Summary from a treeshake result.
func FromTreeshake(result treeshake.Result) Summary {
	return Summary{
		Operation:     OpTreeshake,
		ModulesBefore: result.ModulesBefore,
		ModulesAfter:  result.ModulesAfter,
		BytesBefore:   result.BytesBefore,
		BytesAfter:    result.BytesAfter,
		Used:          result.Used,
		Removed:       result.Removed,
		Pruned:        result.Pruned,
		Renamed:       result.Renamed,
		Missing:       result.Missing,
	}
}

// FromShrink builds a Summary from a shrink result. Shrinking never drops a
// module, so the module count is the same on both sides.
func FromShrink(result mangle.Result) Summary {
	return Summary{
		Operation:     OpShrink,
		Strategy:      result.Strategy,
		ModulesBefore: result.Modules,
		ModulesAfter:  result.Modules,
		BytesBefore:   result.BytesBefore,
		BytesAfter:    result.BytesAfter,
		Renamed:       result.Renamed,
	}
}

// SavedBytes returns how many bytes the run removed. Negative when the
// output grew.
func (s Summary) SavedBytes() int {
	return s.BytesBefore - s.BytesAfter
}

// SavedPercent returns SavedBytes as a percentage of the input size.
func (s Summary) SavedPercent() float64 {
	if s.BytesBefore == 0 {
		return 0
	}

	return float64(s.SavedBytes()) * percent / float64(s.BytesBefore)
}

// RemovedByReason counts removed modules per reason.
func (s Summary) RemovedByReason() map[string]int {
	counts := make(map[string]int)
	for _, removal := range s.Removed {
		counts[string(removal.Reason)]++
	}

	return counts
}

const percent = 100
