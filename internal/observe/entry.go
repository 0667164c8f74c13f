package observe

import (
	"maps"
	"reflect"
	"slices"

	"gooze.dev/pkg/oracles/internal/assertion"
	"gooze.dev/pkg/oracles/internal/inspect"
	m "gooze.dev/pkg/oracles/internal/model"
)

// Entry is one observation about one variable at one statement.
type Entry interface {
	Variable() m.VariableRef
	// differs reports whether other records a different observation.
	differs(other Entry, tol m.Tolerance) bool
	// assertions turns the entry into assertions unconditionally.
	assertions(stmt int) []assertion.Assertion
	// assertionsAgainst returns assertions encoding this entry's values for
	// every observation other disagrees with.
	assertionsAgainst(stmt int, other Entry, tol m.Tolerance) []assertion.Assertion
	// detects reports whether a's expectation disagrees with this entry.
	detects(a assertion.Assertion, tol m.Tolerance) bool
	clone() Entry
}

// PrimitiveEntry records a boolean, number, string or enum value.
type PrimitiveEntry struct {
	Var   m.VariableRef
	Value any
	Delta float64
}

func (e *PrimitiveEntry) Variable() m.VariableRef { return e.Var }

func (e *PrimitiveEntry) differs(other Entry, tol m.Tolerance) bool {
	o, ok := other.(*PrimitiveEntry)
	return ok && !tol.Equal(e.Value, o.Value)
}

func (e *PrimitiveEntry) assertions(stmt int) []assertion.Assertion {
	return []assertion.Assertion{assertion.NewPrimitive(stmt, e.Var, e.Value, e.Delta)}
}

func (e *PrimitiveEntry) assertionsAgainst(stmt int, other Entry, tol m.Tolerance) []assertion.Assertion {
	if !e.differs(other, tol) {
		return nil
	}

	return e.assertions(stmt)
}

func (e *PrimitiveEntry) detects(a assertion.Assertion, tol m.Tolerance) bool {
	p, ok := a.(*assertion.Primitive)
	return ok && !tol.Equal(e.Value, p.Expected)
}

func (e *PrimitiveEntry) clone() Entry {
	c := *e
	return &c
}

// NullEntry records whether a variable is nil.
type NullEntry struct {
	Var   m.VariableRef
	IsNil bool
}

func (e *NullEntry) Variable() m.VariableRef { return e.Var }

func (e *NullEntry) differs(other Entry, _ m.Tolerance) bool {
	o, ok := other.(*NullEntry)
	return ok && e.IsNil != o.IsNil
}

func (e *NullEntry) assertions(stmt int) []assertion.Assertion {
	return []assertion.Assertion{assertion.NewNull(stmt, e.Var, e.IsNil)}
}

func (e *NullEntry) assertionsAgainst(stmt int, other Entry, tol m.Tolerance) []assertion.Assertion {
	if !e.differs(other, tol) {
		return nil
	}

	return e.assertions(stmt)
}

func (e *NullEntry) detects(a assertion.Assertion, _ m.Tolerance) bool {
	n, ok := a.(*assertion.Null)
	return ok && n.IsNil != e.IsNil
}

func (e *NullEntry) clone() Entry {
	c := *e
	return &c
}

// ArrayEntry records the elements of a slice or array.
type ArrayEntry struct {
	Var    m.VariableRef
	Type   reflect.Type
	Values []any
	Delta  float64
}

func (e *ArrayEntry) Variable() m.VariableRef { return e.Var }

func (e *ArrayEntry) differs(other Entry, tol m.Tolerance) bool {
	o, ok := other.(*ArrayEntry)
	return ok && !elementsEqual(e.Values, o.Values, tol)
}

func (e *ArrayEntry) assertions(stmt int) []assertion.Assertion {
	return []assertion.Assertion{assertion.NewArrayEquals(stmt, e.Var, e.Type, e.Values, e.Delta)}
}

func (e *ArrayEntry) assertionsAgainst(stmt int, other Entry, tol m.Tolerance) []assertion.Assertion {
	if !e.differs(other, tol) {
		return nil
	}

	return e.assertions(stmt)
}

func (e *ArrayEntry) detects(a assertion.Assertion, tol m.Tolerance) bool {
	arr, ok := a.(*assertion.ArrayEquals)
	return ok && !elementsEqual(e.Values, arr.Expected, tol)
}

func (e *ArrayEntry) clone() Entry {
	c := *e
	c.Values = slices.Clone(e.Values)

	return &c
}

func elementsEqual(a, b []any, tol m.Tolerance) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !tol.Equal(a[i], b[i]) {
			return false
		}
	}

	return true
}

// ArrayLengthEntry records the length of a slice or array.
type ArrayLengthEntry struct {
	Var    m.VariableRef
	Length int
}

func (e *ArrayLengthEntry) Variable() m.VariableRef { return e.Var }

func (e *ArrayLengthEntry) differs(other Entry, _ m.Tolerance) bool {
	o, ok := other.(*ArrayLengthEntry)
	return ok && e.Length != o.Length
}

func (e *ArrayLengthEntry) assertions(stmt int) []assertion.Assertion {
	return []assertion.Assertion{assertion.NewArrayLength(stmt, e.Var, e.Length)}
}

func (e *ArrayLengthEntry) assertionsAgainst(stmt int, other Entry, tol m.Tolerance) []assertion.Assertion {
	if !e.differs(other, tol) {
		return nil
	}

	return e.assertions(stmt)
}

func (e *ArrayLengthEntry) detects(a assertion.Assertion, _ m.Tolerance) bool {
	l, ok := a.(*assertion.ArrayLength)
	return ok && l.Length != e.Length
}

func (e *ArrayLengthEntry) clone() Entry {
	c := *e
	return &c
}

// FieldValue is the recorded value of one field.
type FieldValue struct {
	Field inspect.Field
	Value any
	Delta float64
}

// FieldEntry records the exported primitive fields of a struct value.
type FieldEntry struct {
	Var    m.VariableRef
	Values map[string]FieldValue
}

func (e *FieldEntry) Variable() m.VariableRef { return e.Var }

func (e *FieldEntry) differs(other Entry, tol m.Tolerance) bool {
	o, ok := other.(*FieldEntry)
	if !ok {
		return false
	}

	for name, fv := range e.Values {
		if ov, ok := o.Values[name]; ok && !tol.Equal(fv.Value, ov.Value) {
			return true
		}
	}

	return false
}

func (e *FieldEntry) assertions(stmt int) []assertion.Assertion {
	var out []assertion.Assertion
	for _, name := range slices.Sorted(maps.Keys(e.Values)) {
		fv := e.Values[name]
		out = append(out, assertion.NewField(stmt, e.Var, fv.Field, fv.Value, fv.Delta))
	}

	return out
}

func (e *FieldEntry) assertionsAgainst(stmt int, other Entry, tol m.Tolerance) []assertion.Assertion {
	o, ok := other.(*FieldEntry)
	if !ok {
		return nil
	}

	var out []assertion.Assertion

	for _, name := range slices.Sorted(maps.Keys(e.Values)) {
		fv := e.Values[name]
		if ov, ok := o.Values[name]; ok && !tol.Equal(fv.Value, ov.Value) {
			out = append(out, assertion.NewField(stmt, e.Var, fv.Field, fv.Value, fv.Delta))
		}
	}

	return out
}

func (e *FieldEntry) detects(a assertion.Assertion, tol m.Tolerance) bool {
	f, ok := a.(*assertion.Field)
	if !ok {
		return false
	}

	fv, ok := e.Values[f.Field.Key()]

	return ok && !tol.Equal(fv.Value, f.Expected)
}

func (e *FieldEntry) clone() Entry {
	return &FieldEntry{Var: e.Var, Values: maps.Clone(e.Values)}
}

// InspectorValue is the recorded result of one accessor.
type InspectorValue struct {
	Accessor inspect.Accessor
	Value    any
	Delta    float64
}

// InspectorEntry records accessor results of a value.
type InspectorEntry struct {
	Var    m.VariableRef
	Values map[string]InspectorValue
}

func (e *InspectorEntry) Variable() m.VariableRef { return e.Var }

func (e *InspectorEntry) differs(other Entry, tol m.Tolerance) bool {
	o, ok := other.(*InspectorEntry)
	if !ok {
		return false
	}

	for name, iv := range e.Values {
		if ov, ok := o.Values[name]; ok && !tol.Equal(iv.Value, ov.Value) {
			return true
		}
	}

	return false
}

func (e *InspectorEntry) assertions(stmt int) []assertion.Assertion {
	var out []assertion.Assertion
	for _, name := range slices.Sorted(maps.Keys(e.Values)) {
		iv := e.Values[name]
		out = append(out, assertion.NewInspector(stmt, e.Var, iv.Accessor, iv.Value, iv.Delta))
	}

	return out
}

func (e *InspectorEntry) assertionsAgainst(stmt int, other Entry, tol m.Tolerance) []assertion.Assertion {
	o, ok := other.(*InspectorEntry)
	if !ok {
		return nil
	}

	var out []assertion.Assertion

	for _, name := range slices.Sorted(maps.Keys(e.Values)) {
		iv := e.Values[name]
		if ov, ok := o.Values[name]; ok && !tol.Equal(iv.Value, ov.Value) {
			out = append(out, assertion.NewInspector(stmt, e.Var, iv.Accessor, iv.Value, iv.Delta))
		}
	}

	return out
}

func (e *InspectorEntry) detects(a assertion.Assertion, tol m.Tolerance) bool {
	i, ok := a.(*assertion.Inspector)
	if !ok {
		return false
	}

	iv, ok := e.Values[i.Accessor.Key()]

	return ok && !tol.Equal(iv.Value, i.Expected)
}

func (e *InspectorEntry) clone() Entry {
	return &InspectorEntry{Var: e.Var, Values: maps.Clone(e.Values)}
}

// Outcome is the result of comparing a variable with a second one: a bool
// for equals, same and contains, the comparison sign for compare.
type Outcome struct {
	Dest  m.VariableRef
	Value any
}

// PairEntry records comparisons of a variable against other variables,
// keyed by the position of the second variable.
type PairEntry struct {
	Kind     assertion.Kind
	Var      m.VariableRef
	Outcomes map[int]Outcome
}

func (e *PairEntry) Variable() m.VariableRef { return e.Var }

func (e *PairEntry) differs(other Entry, _ m.Tolerance) bool {
	o, ok := other.(*PairEntry)
	if !ok || o.Kind != e.Kind {
		return false
	}

	for pos, out := range e.Outcomes {
		if oo, ok := o.Outcomes[pos]; ok && oo.Value != out.Value {
			return true
		}
	}

	return false
}

func (e *PairEntry) assertions(stmt int) []assertion.Assertion {
	var out []assertion.Assertion
	for _, pos := range slices.Sorted(maps.Keys(e.Outcomes)) {
		out = append(out, e.assertion(stmt, e.Outcomes[pos]))
	}

	return out
}

func (e *PairEntry) assertionsAgainst(stmt int, other Entry, _ m.Tolerance) []assertion.Assertion {
	o, ok := other.(*PairEntry)
	if !ok || o.Kind != e.Kind {
		return nil
	}

	var out []assertion.Assertion

	for _, pos := range slices.Sorted(maps.Keys(e.Outcomes)) {
		outcome := e.Outcomes[pos]
		if oo, ok := o.Outcomes[pos]; ok && oo.Value != outcome.Value {
			out = append(out, e.assertion(stmt, outcome))
		}
	}

	return out
}

func (e *PairEntry) assertion(stmt int, o Outcome) assertion.Assertion {
	switch e.Kind {
	case assertion.KindEquals:
		return assertion.NewEquals(stmt, e.Var, o.Dest, o.Value.(bool))
	case assertion.KindSame:
		return assertion.NewSame(stmt, e.Var, o.Dest, o.Value.(bool))
	case assertion.KindContains:
		return assertion.NewContains(stmt, e.Var, o.Dest, o.Value.(bool))
	default:
		return assertion.NewCompare(stmt, e.Var, o.Dest, o.Value.(int))
	}
}

func (e *PairEntry) detects(a assertion.Assertion, _ m.Tolerance) bool {
	var (
		dest     m.VariableRef
		expected any
	)

	switch p := a.(type) {
	case *assertion.Equals:
		dest, expected = p.Dest(), p.Expected
	case *assertion.Same:
		dest, expected = p.Dest(), p.Expected
	case *assertion.Contains:
		dest, expected = p.Dest(), p.Expected
	case *assertion.Compare:
		dest, expected = p.Dest(), p.Sign
	default:
		return false
	}

	if a.Kind() != e.Kind {
		return false
	}

	out, ok := e.Outcomes[dest.Position]

	return ok && out.Value != expected
}

func (e *PairEntry) clone() Entry {
	return &PairEntry{Kind: e.Kind, Var: e.Var, Outcomes: maps.Clone(e.Outcomes)}
}
