package toposort

// SymbolTable provides bidirectional mapping between node names and dense
// integer IDs. IDs are assigned in first-seen order.
type SymbolTable struct {
	strToID map[string]int
	idToStr []string
}

// NewSymbolTable creates a new SymbolTable.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		strToID: make(map[string]int),
		idToStr: make([]string, 0),
	}
}

// Intern returns the ID for name, assigning the next free ID when name is new.
func (table *SymbolTable) Intern(name string) int {
	if id, exists := table.strToID[name]; exists {
		return id
	}

	id := len(table.idToStr)
	table.idToStr = append(table.idToStr, name)
	table.strToID[name] = id

	return id
}

// Lookup returns the ID for name without interning it.
func (table *SymbolTable) Lookup(name string) (int, bool) {
	id, ok := table.strToID[name]

	return id, ok
}

// Resolve returns the name associated with id.
// Returns an empty string if the ID is invalid.
func (table *SymbolTable) Resolve(id int) string {
	if id < 0 || id >= len(table.idToStr) {
		return ""
	}

	return table.idToStr[id]
}

// ResolveAll maps a list of IDs to names.
func (table *SymbolTable) ResolveAll(ids []int) []string {
	names := make([]string, len(ids))

	for i, id := range ids {
		names[i] = table.Resolve(id)
	}

	return names
}

// Len returns the number of symbols in the table.
func (table *SymbolTable) Len() int {
	return len(table.idToStr)
}
