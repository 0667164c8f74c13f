// Package assertion implements the evaluable predicates attached to test
// statements as oracles.
package assertion

import (
	"errors"
	"fmt"
	"slices"

	m "gooze.dev/pkg/oracles/internal/model"
)

// ErrUnevaluable is returned when a referenced variable has no value in the
// evaluated scope.
var ErrUnevaluable = errors.New("assertion cannot be evaluated")

// Kind enumerates the assertion variants.
type Kind int

// Assertion kinds, one per variant.
const (
	KindPrimitive Kind = iota
	KindNull
	KindArrayEquals
	KindArrayLength
	KindField
	KindInspector
	KindEquals
	KindSame
	KindContains
	KindCompare
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindNull:
		return "null"
	case KindArrayEquals:
		return "array"
	case KindArrayLength:
		return "array_length"
	case KindField:
		return "field"
	case KindInspector:
		return "inspector"
	case KindEquals:
		return "equals"
	case KindSame:
		return "same"
	case KindContains:
		return "contains"
	case KindCompare:
		return "compare"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Assertion is a predicate over one or two variables of a test case.
type Assertion interface {
	m.Assertion

	Kind() Kind
	// Statement returns the position of the statement the assertion belongs to.
	Statement() int
	// Evaluate checks the assertion against scope. It fails with
	// ErrUnevaluable when a variable is unbound; operands of unexpected
	// dynamic types make the assertion hold.
	Evaluate(scope *m.Scope) (bool, error)
	// Copy rebinds the assertion onto tc with positions shifted by offset.
	Copy(tc *m.TestCase, offset int) Assertion

	AddKilled(ids ...int)
	Killed() []int
	Kills(id int) bool

	sealed()
}

type base struct {
	stmt   int
	source m.VariableRef
	killed map[int]struct{}
}

func newBase(stmt int, source m.VariableRef) base {
	return base{stmt: stmt, source: source}
}

func (b *base) Source() m.VariableRef {
	return b.source
}

func (b *base) Statement() int {
	return b.stmt
}

func (b *base) AddKilled(ids ...int) {
	if b.killed == nil {
		b.killed = make(map[int]struct{}, len(ids))
	}

	for _, id := range ids {
		b.killed[id] = struct{}{}
	}
}

func (b *base) Killed() []int {
	ids := make([]int, 0, len(b.killed))
	for id := range b.killed {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}

func (b *base) Kills(id int) bool {
	_, ok := b.killed[id]
	return ok
}

func (b *base) sealed() {}

func (b *base) rebase(tc *m.TestCase, offset int) base {
	c := base{
		stmt:   b.stmt + offset,
		source: rebind(tc, b.source, offset),
	}
	c.AddKilled(b.Killed()...)

	return c
}

func rebind(tc *m.TestCase, ref m.VariableRef, offset int) m.VariableRef {
	if !ref.Valid() {
		return m.NoVariable
	}

	v := tc.Variable(ref.Position + offset)
	if v.Type != ref.Type {
		return m.NoVariable
	}

	return v
}

func (b *base) value(scope *m.Scope) (any, error) {
	return lookup(scope, b.source)
}

func lookup(scope *m.Scope, ref m.VariableRef) (any, error) {
	v, err := scope.Get(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnevaluable, err)
	}

	return v, nil
}

func key(kind Kind, stmt int, source m.VariableRef, rest string) string {
	return fmt.Sprintf("%s@%d:%d:%s", kind, stmt, source.Position, rest)
}

// Sort orders assertions by statement, then kind, then key.
func Sort(assertions []Assertion) {
	slices.SortStableFunc(assertions, func(a, b Assertion) int {
		if a.Statement() != b.Statement() {
			return a.Statement() - b.Statement()
		}

		if a.Kind() != b.Kind() {
			return int(a.Kind()) - int(b.Kind())
		}

		switch {
		case a.Key() < b.Key():
			return -1
		case a.Key() > b.Key():
			return 1
		default:
			return 0
		}
	})
}

// Dedup keeps the first assertion of every key and merges the killed mutants
// of the dropped duplicates into it.
func Dedup(assertions []Assertion) []Assertion {
	index := make(map[string]Assertion, len(assertions))
	unique := make([]Assertion, 0, len(assertions))

	for _, a := range assertions {
		if existing, ok := index[a.Key()]; ok {
			existing.AddKilled(a.Killed()...)
			continue
		}

		index[a.Key()] = a
		unique = append(unique, a)
	}

	return unique
}
