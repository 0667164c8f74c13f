package assertion

import (
	"errors"
	"fmt"
	"reflect"

	"gooze.dev/pkg/oracles/internal/inspect"
	m "gooze.dev/pkg/oracles/internal/model"
)

type pair struct {
	base
	dest m.VariableRef
}

func newPair(stmt int, source, dest m.VariableRef) pair {
	return pair{base: newBase(stmt, source), dest: dest}
}

// Dest returns the second variable.
func (p *pair) Dest() m.VariableRef {
	return p.dest
}

func (p *pair) Valid() bool {
	return p.source.Valid() && p.dest.Valid()
}

func (p *pair) values(scope *m.Scope) (any, any, error) {
	a, err := lookup(scope, p.source)
	if err != nil {
		return nil, nil, err
	}

	b, err := lookup(scope, p.dest)
	if err != nil {
		return nil, nil, err
	}

	return a, b, nil
}

func (p *pair) repair(tc *m.TestCase, offset int) pair {
	return pair{base: p.rebase(tc, offset), dest: rebind(tc, p.dest, offset)}
}

func (p *pair) pairKey(kind Kind, outcome any) string {
	return key(kind, p.stmt, p.source, fmt.Sprintf("%d=%v", p.dest.Position, outcome))
}

// Equals asserts whether two variables are equal by value.
type Equals struct {
	pair
	Expected bool
}

// NewEquals creates an Equals assertion.
func NewEquals(stmt int, source, dest m.VariableRef, expected bool) *Equals {
	return &Equals{pair: newPair(stmt, source, dest), Expected: expected}
}

func (a *Equals) Kind() Kind  { return KindEquals }
func (a *Equals) Key() string { return a.pairKey(KindEquals, a.Expected) }

func (a *Equals) Code() string {
	if inspect.HasEqualMethod(a.source.Type) {
		return renderEquality(a.Expected, fmt.Sprintf("%s.Equal(%s)", a.source.Name(), a.dest.Name()), 0)
	}

	if a.Expected {
		return fmt.Sprintf("assert.Equal(t, %s, %s)", a.source.Name(), a.dest.Name())
	}

	return fmt.Sprintf("assert.NotEqual(t, %s, %s)", a.source.Name(), a.dest.Name())
}

func (a *Equals) Evaluate(scope *m.Scope) (bool, error) {
	x, y, err := a.values(scope)
	if err != nil {
		return false, err
	}

	if !inspect.Compatible(x, y) {
		return true, nil
	}

	equal, err := inspect.Equal(x, y, scope.Tolerance)
	if err != nil {
		return false, err
	}

	return equal == a.Expected, nil
}

func (a *Equals) Copy(tc *m.TestCase, offset int) Assertion {
	return &Equals{pair: a.repair(tc, offset), Expected: a.Expected}
}

// Same asserts whether two variables refer to the same object.
type Same struct {
	pair
	Expected bool
}

// NewSame creates a Same assertion.
func NewSame(stmt int, source, dest m.VariableRef, expected bool) *Same {
	return &Same{pair: newPair(stmt, source, dest), Expected: expected}
}

func (a *Same) Kind() Kind  { return KindSame }
func (a *Same) Key() string { return a.pairKey(KindSame, a.Expected) }

func (a *Same) Code() string {
	if a.Expected {
		return fmt.Sprintf("assert.Same(t, %s, %s)", a.source.Name(), a.dest.Name())
	}

	return fmt.Sprintf("assert.NotSame(t, %s, %s)", a.source.Name(), a.dest.Name())
}

func (a *Same) Evaluate(scope *m.Scope) (bool, error) {
	x, y, err := a.values(scope)
	if err != nil {
		return false, err
	}

	if !pointerLike(x) || !pointerLike(y) {
		return true, nil
	}

	return inspect.Same(x, y) == a.Expected, nil
}

func (a *Same) Copy(tc *m.TestCase, offset int) Assertion {
	return &Same{pair: a.repair(tc, offset), Expected: a.Expected}
}

func pointerLike(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Pointer
}

// Contains asserts whether the source container holds the element.
type Contains struct {
	pair
	Expected bool
}

// NewContains creates a Contains assertion on container for elem.
func NewContains(stmt int, container, elem m.VariableRef, expected bool) *Contains {
	return &Contains{pair: newPair(stmt, container, elem), Expected: expected}
}

func (a *Contains) Kind() Kind  { return KindContains }
func (a *Contains) Key() string { return a.pairKey(KindContains, a.Expected) }

func (a *Contains) Code() string {
	t := a.source.Type
	if t != nil && t.Kind() != reflect.Slice && t.Kind() != reflect.Array && t.Kind() != reflect.Map {
		return renderEquality(a.Expected, fmt.Sprintf("%s.Contains(%s)", a.source.Name(), a.dest.Name()), 0)
	}

	if a.Expected {
		return fmt.Sprintf("assert.Contains(t, %s, %s)", a.source.Name(), a.dest.Name())
	}

	return fmt.Sprintf("assert.NotContains(t, %s, %s)", a.source.Name(), a.dest.Name())
}

func (a *Contains) Evaluate(scope *m.Scope) (bool, error) {
	container, elem, err := a.values(scope)
	if err != nil {
		return false, err
	}

	found, err := inspect.Contains(container, elem, scope.Tolerance)
	if errors.Is(err, inspect.ErrNotApplicable) {
		return true, nil
	}

	if err != nil {
		return false, err
	}

	return found == a.Expected, nil
}

func (a *Contains) Copy(tc *m.TestCase, offset int) Assertion {
	return &Contains{pair: a.repair(tc, offset), Expected: a.Expected}
}

// Compare asserts the sign of source.Compare(dest).
type Compare struct {
	pair
	Sign int
}

// NewCompare creates a Compare assertion.
func NewCompare(stmt int, source, dest m.VariableRef, sign int) *Compare {
	return &Compare{pair: newPair(stmt, source, dest), Sign: sign}
}

func (a *Compare) Kind() Kind  { return KindCompare }
func (a *Compare) Key() string { return a.pairKey(KindCompare, a.Sign) }

func (a *Compare) Code() string {
	call := fmt.Sprintf("%s.Compare(%s)", a.source.Name(), a.dest.Name())

	switch {
	case a.Sign < 0:
		return fmt.Sprintf("assert.Negative(t, %s)", call)
	case a.Sign > 0:
		return fmt.Sprintf("assert.Positive(t, %s)", call)
	default:
		return fmt.Sprintf("assert.Zero(t, %s)", call)
	}
}

func (a *Compare) Evaluate(scope *m.Scope) (bool, error) {
	x, y, err := a.values(scope)
	if err != nil {
		return false, err
	}

	sign, err := inspect.Compare(x, y)
	if errors.Is(err, inspect.ErrNotApplicable) {
		return true, nil
	}

	if err != nil {
		return false, err
	}

	return sign == a.Sign, nil
}

func (a *Compare) Copy(tc *m.TestCase, offset int) Assertion {
	return &Compare{pair: a.repair(tc, offset), Sign: a.Sign}
}
