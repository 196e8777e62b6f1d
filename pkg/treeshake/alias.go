package treeshake

import (
	"log/slog"

	"github.com/Sumatoshi-tech/amdshake/pkg/amd"
)

// AliasResolver unifies records declared as aliases of another name and
// merges records whose bodies are byte-identical. Every replaced name is
// kept in a rename table (dropped name -> replacement).
type AliasResolver struct {
	logger   *slog.Logger
	table    map[string]string
	renames  []amd.Rename
	removals []Removal
}

// NewAliasResolver creates a resolver with an empty rename table.
func NewAliasResolver(logger *slog.Logger) *AliasResolver {
	return &AliasResolver{
		logger: loggerOrDiscard(logger),
		table:  make(map[string]string),
	}
}

// ResolveAliases moves every record carrying an Alias to the alias key. All
// records move at once: a record is only displaced when it stays under its
// own name, so nested paths such as util -> lib/util and
// lib/util -> app/lib/util both survive. Imports are rewritten one step
// along the same moves.
func (r *AliasResolver) ResolveAliases(reg *amd.Registry) {
	moves := make(map[string]string)

	for _, rec := range reg.Records() {
		alias := rec.Alias
		rec.Alias = ""

		if alias == "" || alias == rec.Name {
			continue
		}

		r.logger.Debug("replacing alias", "from", rec.Name, "to", alias)

		moves[rec.Name] = alias
		r.table[rec.Name] = alias
		r.renames = append(r.renames, amd.Rename{From: rec.Name, To: alias})
	}

	for _, d := range reg.Rebind(moves) {
		r.logger.Debug("alias displaced module", "module", d.Name, "replaced_by", d.By)
		r.removals = append(r.removals, Removal{Name: d.Name, Reason: ReasonAlias, ReplacedBy: d.By})
	}

	reg.MapImports(moves)
}

// MergeDuplicates deletes every record whose Content equals that of an
// earlier record in registry order and points its importers at the survivor.
func (r *AliasResolver) MergeDuplicates(reg *amd.Registry) {
	survivors := make(map[string]string, reg.Len())
	merged := make(map[string]string)

	for _, rec := range reg.Records() {
		survivor, dup := survivors[rec.Content]
		if !dup {
			survivors[rec.Content] = rec.Name

			continue
		}

		r.logger.Debug("duplicate content", "module", rec.Name, "replaced_by", survivor)

		merged[rec.Name] = survivor
		r.table[rec.Name] = survivor
		r.removals = append(r.removals, Removal{Name: rec.Name, Reason: ReasonDuplicate, ReplacedBy: survivor})
		reg.Delete(rec.Name)
	}

	reg.RewriteImports(merged)
}

// Table returns the accumulated rename table (dropped name -> replacement).
func (r *AliasResolver) Table() map[string]string {
	return r.table
}

// Renames returns the alias renames applied so far.
func (r *AliasResolver) Renames() []amd.Rename {
	return r.renames
}

// Removals returns the records dropped so far.
func (r *AliasResolver) Removals() []Removal {
	return r.removals
}

// Resolve runs alias unification and, when mergeDuplicates is set, duplicate
// merging on reg. It returns the resolver for inspection.
func Resolve(reg *amd.Registry, mergeDuplicates bool, logger *slog.Logger) *AliasResolver {
	resolver := NewAliasResolver(logger)
	resolver.ResolveAliases(reg)

	if mergeDuplicates {
		resolver.MergeDuplicates(reg)
	}

	return resolver
}
