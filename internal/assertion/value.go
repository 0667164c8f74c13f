package assertion

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"gooze.dev/pkg/oracles/internal/inspect"
	m "gooze.dev/pkg/oracles/internal/model"
)

// Primitive asserts the value of a boolean, number, string or enum variable.
type Primitive struct {
	base
	Expected any
	Delta    float64
}

// NewPrimitive creates a Primitive assertion on source at statement stmt.
func NewPrimitive(stmt int, source m.VariableRef, expected any, delta float64) *Primitive {
	return &Primitive{base: newBase(stmt, source), Expected: expected, Delta: delta}
}

func (a *Primitive) Kind() Kind  { return KindPrimitive }
func (a *Primitive) Valid() bool { return a.source.Valid() }

func (a *Primitive) Key() string {
	return key(KindPrimitive, a.stmt, a.source, fmt.Sprintf("%T=%v", a.Expected, a.Expected))
}

func (a *Primitive) Code() string {
	return renderEquality(a.Expected, a.source.Name(), a.Delta)
}

func (a *Primitive) Evaluate(scope *m.Scope) (bool, error) {
	v, err := a.value(scope)
	if err != nil {
		return false, err
	}

	return holds(scope.Tolerance, v, a.Expected), nil
}

func (a *Primitive) Copy(tc *m.TestCase, offset int) Assertion {
	return &Primitive{base: a.rebase(tc, offset), Expected: a.Expected, Delta: a.Delta}
}

// Null asserts whether a variable is nil.
type Null struct {
	base
	IsNil bool
}

// NewNull creates a Null assertion.
func NewNull(stmt int, source m.VariableRef, isNil bool) *Null {
	return &Null{base: newBase(stmt, source), IsNil: isNil}
}

func (a *Null) Kind() Kind  { return KindNull }
func (a *Null) Valid() bool { return a.source.Valid() }

func (a *Null) Key() string {
	return key(KindNull, a.stmt, a.source, fmt.Sprint(a.IsNil))
}

func (a *Null) Code() string {
	if a.IsNil {
		return fmt.Sprintf("assert.Nil(t, %s)", a.source.Name())
	}

	return fmt.Sprintf("assert.NotNil(t, %s)", a.source.Name())
}

func (a *Null) Evaluate(scope *m.Scope) (bool, error) {
	v, err := a.value(scope)
	if err != nil {
		return false, err
	}

	return m.IsNil(v) == a.IsNil, nil
}

func (a *Null) Copy(tc *m.TestCase, offset int) Assertion {
	return &Null{base: a.rebase(tc, offset), IsNil: a.IsNil}
}

// ArrayEquals asserts every element of a slice or array.
type ArrayEquals struct {
	base
	Type     reflect.Type
	Expected []any
	Delta    float64
}

// NewArrayEquals creates an ArrayEquals assertion. typ is the slice or
// array type used to render the expected literal.
func NewArrayEquals(stmt int, source m.VariableRef, typ reflect.Type, expected []any, delta float64) *ArrayEquals {
	return &ArrayEquals{
		base:     newBase(stmt, source),
		Type:     typ,
		Expected: append([]any(nil), expected...),
		Delta:    delta,
	}
}

func (a *ArrayEquals) Kind() Kind  { return KindArrayEquals }
func (a *ArrayEquals) Valid() bool { return a.source.Valid() }

func (a *ArrayEquals) Key() string {
	return key(KindArrayEquals, a.stmt, a.source, fmt.Sprintf("%#v", a.Expected))
}

func (a *ArrayEquals) Code() string {
	lit := elementsLiteral(a.Type, a.Expected)
	if a.Type != nil && m.IsFloat(a.Type.Elem()) {
		return fmt.Sprintf("assert.InDeltaSlice(t, %s, %s, %v)", lit, a.source.Name(), a.Delta)
	}

	return fmt.Sprintf("assert.Equal(t, %s, %s)", lit, a.source.Name())
}

func (a *ArrayEquals) Evaluate(scope *m.Scope) (bool, error) {
	v, err := a.value(scope)
	if err != nil {
		return false, err
	}

	elems, ok := inspect.Elements(v)
	if !ok {
		return true, nil
	}

	if len(elems) != len(a.Expected) {
		return false, nil
	}

	for i, elem := range elems {
		if !holds(scope.Tolerance, elem, a.Expected[i]) {
			return false, nil
		}
	}

	return true, nil
}

func (a *ArrayEquals) Copy(tc *m.TestCase, offset int) Assertion {
	return &ArrayEquals{base: a.rebase(tc, offset), Type: a.Type, Expected: a.Expected, Delta: a.Delta}
}

// ArrayLength asserts the length of a slice or array.
type ArrayLength struct {
	base
	Length int
}

// NewArrayLength creates an ArrayLength assertion.
func NewArrayLength(stmt int, source m.VariableRef, length int) *ArrayLength {
	return &ArrayLength{base: newBase(stmt, source), Length: length}
}

func (a *ArrayLength) Kind() Kind  { return KindArrayLength }
func (a *ArrayLength) Valid() bool { return a.source.Valid() }

func (a *ArrayLength) Key() string {
	return key(KindArrayLength, a.stmt, a.source, fmt.Sprint(a.Length))
}

func (a *ArrayLength) Code() string {
	return fmt.Sprintf("assert.Len(t, %s, %d)", a.source.Name(), a.Length)
}

func (a *ArrayLength) Evaluate(scope *m.Scope) (bool, error) {
	v, err := a.value(scope)
	if err != nil {
		return false, err
	}

	n, ok := inspect.Len(v)
	if !ok {
		return true, nil
	}

	return n == a.Length, nil
}

func (a *ArrayLength) Copy(tc *m.TestCase, offset int) Assertion {
	return &ArrayLength{base: a.rebase(tc, offset), Length: a.Length}
}

// Field asserts the value of an exported field.
type Field struct {
	base
	Field    inspect.Field
	Expected any
	Delta    float64
}

// NewField creates a Field assertion.
func NewField(stmt int, source m.VariableRef, field inspect.Field, expected any, delta float64) *Field {
	return &Field{base: newBase(stmt, source), Field: field, Expected: expected, Delta: delta}
}

func (a *Field) Kind() Kind  { return KindField }
func (a *Field) Valid() bool { return a.source.Valid() }

func (a *Field) Key() string {
	return key(KindField, a.stmt, a.source, fmt.Sprintf("%s=%v", a.Field.Key(), a.Expected))
}

func (a *Field) Code() string {
	return renderEquality(a.Expected, a.source.Name()+"."+a.Field.Name, a.Delta)
}

func (a *Field) Evaluate(scope *m.Scope) (bool, error) {
	v, err := a.value(scope)
	if err != nil {
		return false, err
	}

	actual, err := inspect.ReadField(v, a.Field.Name)
	if err != nil {
		return true, nil
	}

	return holds(scope.Tolerance, actual, a.Expected), nil
}

func (a *Field) Copy(tc *m.TestCase, offset int) Assertion {
	return &Field{base: a.rebase(tc, offset), Field: a.Field, Expected: a.Expected, Delta: a.Delta}
}

// Inspector asserts the result of an accessor call.
type Inspector struct {
	base
	Accessor inspect.Accessor
	Expected any
	Delta    float64
}

// NewInspector creates an Inspector assertion.
func NewInspector(stmt int, source m.VariableRef, accessor inspect.Accessor, expected any, delta float64) *Inspector {
	return &Inspector{base: newBase(stmt, source), Accessor: accessor, Expected: expected, Delta: delta}
}

func (a *Inspector) Kind() Kind  { return KindInspector }
func (a *Inspector) Valid() bool { return a.source.Valid() }

func (a *Inspector) Key() string {
	return key(KindInspector, a.stmt, a.source, fmt.Sprintf("%s()=%v", a.Accessor.Key(), a.Expected))
}

func (a *Inspector) Code() string {
	return renderEquality(a.Expected, a.source.Name()+"."+a.Accessor.Name+"()", a.Delta)
}

func (a *Inspector) Evaluate(scope *m.Scope) (bool, error) {
	v, err := a.value(scope)
	if err != nil {
		return false, err
	}

	actual, err := inspect.Call(v, a.Accessor)
	if errors.Is(err, inspect.ErrNotApplicable) {
		return true, nil
	}

	if err != nil {
		return false, err
	}

	return holds(scope.Tolerance, actual, a.Expected), nil
}

func (a *Inspector) Copy(tc *m.TestCase, offset int) Assertion {
	return &Inspector{base: a.rebase(tc, offset), Accessor: a.Accessor, Expected: a.Expected, Delta: a.Delta}
}

// holds compares actual with expected. Values of different dynamic types
// cannot disagree.
func holds(tol m.Tolerance, actual, expected any) bool {
	if actual == nil || expected == nil {
		return m.IsNil(actual) == m.IsNil(expected)
	}

	if reflect.TypeOf(actual) != reflect.TypeOf(expected) {
		return true
	}

	return tol.Equal(actual, expected)
}

func renderEquality(expected any, actual string, delta float64) string {
	switch v := expected.(type) {
	case nil:
		return fmt.Sprintf("assert.Nil(t, %s)", actual)
	case bool:
		if v {
			return fmt.Sprintf("assert.True(t, %s)", actual)
		}

		return fmt.Sprintf("assert.False(t, %s)", actual)
	}

	if m.IsFloat(reflect.TypeOf(expected)) {
		return fmt.Sprintf("assert.InDelta(t, %s, %s, %v)", m.Literal(expected), actual, delta)
	}

	return fmt.Sprintf("assert.Equal(t, %s, %s)", m.Literal(expected), actual)
}

func elementsLiteral(typ reflect.Type, elems []any) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = m.Literal(e)
	}

	name := "[]any"
	if typ != nil {
		name = typ.String()
	}

	return name + "{" + strings.Join(parts, ", ") + "}"
}
