package observe

import (
	"maps"
	"slices"

	"gooze.dev/pkg/oracles/internal/assertion"
	m "gooze.dev/pkg/oracles/internal/model"
)

// Key addresses one entry of a trace.
type Key struct {
	Statement int
	Variable  int
}

// Trace holds the entries one observer collected over one execution.
type Trace struct {
	category  Category
	tolerance m.Tolerance
	entries   map[int]map[int]Entry
}

// NewTrace creates an empty trace.
func NewTrace(category Category, tol m.Tolerance) *Trace {
	return &Trace{
		category:  category,
		tolerance: tol,
		entries:   make(map[int]map[int]Entry),
	}
}

// Category returns the observer category that produced the trace.
func (t *Trace) Category() Category {
	return t.category
}

// Add records entry for ref at stmt, replacing any previous entry.
func (t *Trace) Add(stmt int, ref m.VariableRef, entry Entry) {
	byVar, ok := t.entries[stmt]
	if !ok {
		byVar = make(map[int]Entry)
		t.entries[stmt] = byVar
	}

	byVar[ref.Position] = entry
}

// Entry returns the entry recorded at key.
func (t *Trace) Entry(key Key) (Entry, bool) {
	e, ok := t.entries[key.Statement][key.Variable]
	return e, ok
}

// Len returns the number of entries.
func (t *Trace) Len() int {
	n := 0
	for _, byVar := range t.entries {
		n += len(byVar)
	}

	return n
}

// Keys returns the keys in statement then variable order.
func (t *Trace) Keys() []Key {
	keys := make([]Key, 0, t.Len())

	for _, stmt := range slices.Sorted(maps.Keys(t.entries)) {
		for _, pos := range slices.Sorted(maps.Keys(t.entries[stmt])) {
			keys = append(keys, Key{Statement: stmt, Variable: pos})
		}
	}

	return keys
}

// Differs reports whether any entry present in both traces disagrees.
func (t *Trace) Differs(other *Trace) bool {
	for stmt, byVar := range t.entries {
		for pos, entry := range byVar {
			if o, ok := other.entries[stmt][pos]; ok && entry.differs(o, t.tolerance) {
				return true
			}
		}
	}

	return false
}

// Assertions turns every entry into assertions.
func (t *Trace) Assertions(tc *m.TestCase) []assertion.Assertion {
	var out []assertion.Assertion

	for _, key := range t.Keys() {
		if tc.Statement(key.Statement) == nil {
			continue
		}

		out = append(out, t.entries[key.Statement][key.Variable].assertions(key.Statement)...)
	}

	return out
}

// AssertionsAgainst returns, for every key present in both traces whose
// entries disagree, assertions holding on t and failing on other.
func (t *Trace) AssertionsAgainst(tc *m.TestCase, other *Trace) []assertion.Assertion {
	var out []assertion.Assertion

	for _, key := range t.Keys() {
		if tc.Statement(key.Statement) == nil {
			continue
		}

		o, ok := other.entries[key.Statement][key.Variable]
		if !ok {
			continue
		}

		out = append(out, t.entries[key.Statement][key.Variable].assertionsAgainst(key.Statement, o, t.tolerance)...)
	}

	return out
}

// IsDetectedBy reports whether a's expectation disagrees with what the trace
// recorded for its statement and variable.
func (t *Trace) IsDetectedBy(a assertion.Assertion) bool {
	entry, ok := t.entries[a.Statement()][a.Source().Position]
	if !ok {
		return false
	}

	return entry.detects(a, t.tolerance)
}

// Clone returns a deep copy.
func (t *Trace) Clone() *Trace {
	c := NewTrace(t.category, t.tolerance)

	for stmt, byVar := range t.entries {
		cloned := make(map[int]Entry, len(byVar))
		for pos, entry := range byVar {
			cloned[pos] = entry.clone()
		}

		c.entries[stmt] = cloned
	}

	return c
}

// Clear removes every entry.
func (t *Trace) Clear() {
	t.entries = make(map[int]map[int]Entry)
}
