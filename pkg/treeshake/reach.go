package treeshake

import (
	"log/slog"
	"strings"

	"github.com/Sumatoshi-tech/amdshake/pkg/amd"
	"github.com/Sumatoshi-tech/amdshake/pkg/toposort"
)

// Reachability decides which modules are used. A module is used when it is
// kept or when some module importing it is used. Keep is checked before
// Remove, so a name listed in both still counts as used.
type Reachability struct {
	Keep   NameSet
	Remove NameSet
	Logger *slog.Logger
}

// ImportGraph builds the dependency graph of reg: one node per record and an
// edge importer -> imported for every import, externals included.
func ImportGraph(reg *amd.Registry) *toposort.Graph {
	graph := toposort.NewGraph()

	for _, rec := range reg.Records() {
		graph.AddNode(rec.Name)

		for _, imp := range rec.Imports {
			graph.AddEdge(rec.Name, imp)
		}
	}

	return graph
}

// Used returns the used set for reg. Every kept name is in it, present in the
// registry or not. The set is monotone in Keep: adding a name never removes
// another name from the result.
func (r Reachability) Used(reg *amd.Registry) NameSet {
	search := &usageSearch{
		keep:   r.Keep,
		remove: r.Remove,
		graph:  ImportGraph(reg),
		used:   make(NameSet),
		logger: loggerOrDiscard(r.Logger),
	}

	for name := range r.Keep {
		search.used[name] = true
	}

	for _, name := range reg.Names() {
		if r.Remove[name] {
			continue
		}

		search.visited = make(NameSet)
		search.find(name, []string{name})
	}

	return search.used
}

// usageSearch walks importer edges backwards looking for a kept or already
// used module. Only positive answers are cached; visited is reset per query.
type usageSearch struct {
	keep    NameSet
	remove  NameSet
	graph   *toposort.Graph
	used    NameSet
	visited NameSet
	logger  *slog.Logger
}

func (s *usageSearch) find(name string, path []string) bool {
	if s.keep[name] || s.used[name] {
		s.used[name] = true

		return true
	}

	if s.remove[name] {
		return false
	}

	s.visited[name] = true

	for _, importer := range s.graph.FindParents(name) {
		if importer == name || s.visited[importer] {
			continue
		}

		if s.find(importer, append(path, importer)) {
			s.used[name] = true

			s.logger.Debug("module used", "module", name, "chain", strings.Join(path, " <= ")+" <= "+importer)

			return true
		}
	}

	return false
}

// Sweep deletes from reg every module that is not kept and is either unused
// or present in compare.
func Sweep(reg *amd.Registry, used, keep, compare NameSet, logger *slog.Logger) []Removal {
	logger = loggerOrDiscard(logger)

	var removed []Removal

	for _, name := range reg.Names() {
		if keep[name] {
			continue
		}

		var reason Reason

		switch {
		case compare[name]:
			reason = ReasonCompare
		case !used[name]:
			reason = ReasonUnreachable
		default:
			continue
		}

		logger.Debug("removing module", "module", name, "reason", string(reason))

		reg.Delete(name)
		removed = append(removed, Removal{Name: name, Reason: reason})
	}

	return removed
}
