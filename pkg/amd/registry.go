// Package amd provides the module registry shared by all bundle passes, plus
// extraction from and serialization back to AMD define(...) source text.
package amd

import (
	"slices"
)

// Record is a single define(...) call: a named module with an ordered import
// list and an opaque factory body.
type Record struct {
	// Name is the registry key of the module.
	Name string

	// Imports are module names in declaration order. Position i binds to the
	// factory's i-th formal parameter. Duplicates are allowed.
	Imports []string

	// Content is the body text starting at the factory.
	Content string

	// Alias is the name this record should be unified under, if any.
	Alias string

	// Provenance records a prior rename as "old=new". Empty when untouched.
	Provenance string
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	clone := *r
	clone.Imports = slices.Clone(r.Imports)

	return &clone
}

// Registry maps module names to records and remembers insertion order, which
// is the iteration order of every pass.
type Registry struct {
	records  map[string]*Record
	order    []string
	reserved map[string]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		records:  make(map[string]*Record),
		reserved: make(map[string]bool),
	}
}

// Add stores rec under rec.Name. A record already stored under that name is
// replaced in place and keeps its position.
func (reg *Registry) Add(rec *Record) {
	if _, exists := reg.records[rec.Name]; !exists {
		reg.order = append(reg.order, rec.Name)
	}

	reg.records[rec.Name] = rec
}

// Get returns the record stored under name.
func (reg *Registry) Get(name string) (*Record, bool) {
	rec, ok := reg.records[name]

	return rec, ok
}

// Has reports whether a record is stored under name.
func (reg *Registry) Has(name string) bool {
	_, ok := reg.records[name]

	return ok
}

// Len returns the number of records.
func (reg *Registry) Len() int {
	return len(reg.records)
}

// Delete removes the record stored under name. Imports referencing it are
// left alone and become external references.
func (reg *Registry) Delete(name string) {
	if _, ok := reg.records[name]; !ok {
		return
	}

	delete(reg.records, name)

	idx := slices.Index(reg.order, name)
	reg.order = slices.Delete(reg.order, idx, idx+1)
}

// Names returns the record names in insertion order.
func (reg *Registry) Names() []string {
	return slices.Clone(reg.order)
}

// Records returns the records in insertion order.
func (reg *Registry) Records() []*Record {
	out := make([]*Record, 0, len(reg.order))

	for _, name := range reg.order {
		out = append(out, reg.records[name])
	}

	return out
}

// Reserve marks names as unavailable for renaming even though no record is
// stored under them, e.g. imports that point outside the registry.
func (reg *Registry) Reserve(names ...string) {
	for _, name := range names {
		reg.reserved[name] = true
	}
}

// Taken reports whether name is a record key or a reserved name.
func (reg *Registry) Taken(name string) bool {
	return reg.Has(name) || reg.reserved[name]
}

// Externals returns the imported names that have no record in the registry,
// in first-reference order.
func (reg *Registry) Externals() []string {
	seen := make(map[string]bool)

	var out []string

	for _, rec := range reg.Records() {
		for _, imp := range rec.Imports {
			if reg.Has(imp) || seen[imp] {
				continue
			}

			seen[imp] = true
			out = append(out, imp)
		}
	}

	return out
}

// Rename moves the record stored under oldName to newName and rewrites every
// import equal to oldName. The record keeps its position. When stamp is set
// the record's Provenance becomes "oldName=newName". A record already stored
// under newName is replaced.
func (reg *Registry) Rename(oldName, newName string, stamp bool) {
	if oldName == newName {
		return
	}

	rec, ok := reg.records[oldName]
	if !ok {
		return
	}

	if _, clash := reg.records[newName]; clash {
		reg.Delete(newName)
	}

	delete(reg.records, oldName)
	reg.order[slices.Index(reg.order, oldName)] = newName
	reg.records[newName] = rec

	rec.Name = newName

	if stamp {
		rec.Provenance = oldName + provenanceSeparator + newName
	}

	for _, other := range reg.records {
		replaceAll(other.Imports, oldName, newName)
	}
}

// Displaced names a record dropped by Rebind and the record, by its name
// before the move, that took its key.
type Displaced struct {
	Name string
	By   string
}

// Rebind moves every record named by a key of moves to its target in one
// step, so swaps and chains (a->b, b->c) never collide with a record that is
// itself moving away. Imports and Provenance are left alone. Each record
// keeps its position. A record that stays put loses its key to a record
// moving onto it, and when several records move onto the same key the last
// one in registry order wins. Dropped records are returned in registry order.
func (reg *Registry) Rebind(moves map[string]string) []Displaced {
	winner := make(map[string]string, len(moves))

	for _, name := range reg.order {
		if target, ok := moves[name]; ok && target != name {
			winner[target] = name
		}
	}

	if len(winner) == 0 {
		return nil
	}

	var displaced []Displaced

	records := make(map[string]*Record, len(reg.records))
	order := make([]string, 0, len(reg.order))

	for _, name := range reg.order {
		rec := reg.records[name]

		target, moving := moves[name]
		if !moving || target == name {
			target = name
		}

		if by, claimed := winner[target]; claimed && by != name {
			displaced = append(displaced, Displaced{Name: name, By: by})

			continue
		}

		rec.Name = target
		records[target] = rec
		order = append(order, target)
	}

	reg.records = records
	reg.order = order

	return displaced
}

// MapImports replaces every import that is a key of table with its target
// in a single step, without following chains.
func (reg *Registry) MapImports(table map[string]string) {
	if len(table) == 0 {
		return
	}

	for _, rec := range reg.records {
		for i, imp := range rec.Imports {
			if target, ok := table[imp]; ok {
				rec.Imports[i] = target
			}
		}
	}
}

// RewriteImports replaces every import that is a key of table with its
// target, following chains (a->b, b->c rewrites a to c). Cyclic chains stop
// at the last name before the cycle closes. Running it twice is a no-op.
func (reg *Registry) RewriteImports(table map[string]string) {
	if len(table) == 0 {
		return
	}

	for _, rec := range reg.records {
		for i, imp := range rec.Imports {
			rec.Imports[i] = ResolveName(table, imp)
		}
	}
}

// ResolveName follows table from name until it reaches a name that is not a
// key, or until the chain would revisit a name.
func ResolveName(table map[string]string, name string) string {
	seen := map[string]bool{name: true}

	for {
		next, ok := table[name]
		if !ok || seen[next] {
			return name
		}

		seen[next] = true
		name = next
	}
}

// Clone returns a deep copy of the registry.
func (reg *Registry) Clone() *Registry {
	clone := NewRegistry()

	for _, rec := range reg.Records() {
		clone.Add(rec.Clone())
	}

	for name := range reg.reserved {
		clone.reserved[name] = true
	}

	return clone
}

func replaceAll(list []string, from, to string) {
	for i, item := range list {
		if item == from {
			list[i] = to
		}
	}
}

// Rename records one module name change.
type Rename struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to"   yaml:"to"`
}
