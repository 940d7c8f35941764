// Package keymap owns surrogate key allocation. One Map instance is
// the single source of truth for identity resolution within a run:
// dimension builders allocate through it and the fact builder resolves
// foreign keys against it.
package keymap

import "github.com/sells-group/warehouse-cli/internal/record"

// Map allocates integer surrogate keys per dimension, starting at 1
// and strictly increasing within a run. The mapping is a bijection per
// dimension: equal natural keys always yield the same surrogate key
// and a key is never reused. Not safe for concurrent use; the pipeline
// is a single-threaded batch run.
type Map struct {
	next map[string]int64
	keys map[string]map[record.NaturalKey]int64
}

// New creates an empty Map. Each run owns its own instance so tests
// and repeated in-process runs cannot cross-contaminate.
func New() *Map {
	return &Map{
		next: make(map[string]int64),
		keys: make(map[string]map[record.NaturalKey]int64),
	}
}

// Assign returns the surrogate key for a natural key within a
// dimension, allocating the next integer on first sight. Idempotent
// for repeated calls with the same key.
func (m *Map) Assign(dimension string, key record.NaturalKey) int64 {
	dim, ok := m.keys[dimension]
	if !ok {
		dim = make(map[record.NaturalKey]int64)
		m.keys[dimension] = dim
	}
	if sk, ok := dim[key]; ok {
		return sk
	}
	m.next[dimension]++
	sk := m.next[dimension]
	dim[key] = sk
	return sk
}

// Lookup returns the previously assigned surrogate key without
// allocating. Downstream components resolve foreign keys through this,
// never by re-deriving keys.
func (m *Map) Lookup(dimension string, key record.NaturalKey) (int64, bool) {
	sk, ok := m.keys[dimension][key]
	return sk, ok
}

// Size returns the number of natural keys assigned in a dimension.
func (m *Map) Size(dimension string) int {
	return len(m.keys[dimension])
}
