// Package treeshake removes dead modules from an AMD bundle: it unifies
// aliased and duplicate modules, prunes unused factory arguments and drops
// every module that is not reachable from the keep set.
package treeshake

import (
	"log/slog"
	"slices"
)

// NameSet is a set of module names.
type NameSet map[string]bool

// NewNameSet builds a set from names.
func NewNameSet(names ...string) NameSet {
	set := make(NameSet, len(names))

	for _, name := range names {
		set[name] = true
	}

	return set
}

// Sorted returns the members in lexical order.
func (s NameSet) Sorted() []string {
	out := make([]string, 0, len(s))

	for name := range s {
		out = append(out, name)
	}

	slices.Sort(out)

	return out
}

// Reason explains why a module left the registry.
type Reason string

// Removal reasons.
const (
	// ReasonUnreachable marks a module no kept module depends on.
	ReasonUnreachable Reason = "unreachable"
	// ReasonCompare marks a module already shipped in the compare bundle.
	ReasonCompare Reason = "compare"
	// ReasonDuplicate marks a module whose body duplicates an earlier one.
	ReasonDuplicate Reason = "duplicate"
	// ReasonAlias marks a module displaced by another module's alias.
	ReasonAlias Reason = "alias"
)

// Removal describes one module dropped from the registry.
type Removal struct {
	Name       string `json:"name"                  yaml:"name"`
	Reason     Reason `json:"reason"                yaml:"reason"`
	ReplacedBy string `json:"replaced_by,omitempty" yaml:"replaced_by,omitempty"`
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return logger
}
