package model

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// TestCase is a linear sequence of statements addressed by position.
//
// The builder methods panic when asked to build a statement that could never
// execute (unknown method, non function value), the same way regexp.MustCompile
// does for a bad pattern.
type TestCase struct {
	Name       string
	statements []*Statement
}

// NewTestCase creates an empty test case.
func NewTestCase(name string) *TestCase {
	return &TestCase{Name: name}
}

// Size returns the number of statements.
func (tc *TestCase) Size() int {
	return len(tc.statements)
}

// Statement returns the statement at pos or nil.
func (tc *TestCase) Statement(pos int) *Statement {
	if pos < 0 || pos >= len(tc.statements) {
		return nil
	}

	return tc.statements[pos]
}

// Statements returns the statements in order.
func (tc *TestCase) Statements() []*Statement {
	return tc.statements
}

// Variable returns the value produced by the statement at pos.
func (tc *TestCase) Variable(pos int) VariableRef {
	st := tc.Statement(pos)
	if st == nil {
		return NoVariable
	}

	return st.ReturnValue()
}

// Dependencies returns every non void variable the statement at pos
// transitively reads, ordered by position.
func (tc *TestCase) Dependencies(pos int) []VariableRef {
	seen := make(map[int]bool)

	var walk func(int)
	walk = func(p int) {
		st := tc.Statement(p)
		if st == nil {
			return
		}

		for _, use := range st.Uses() {
			if seen[use.Position] {
				continue
			}

			seen[use.Position] = true
			walk(use.Position)
		}
	}
	walk(pos)

	deps := make([]VariableRef, 0, len(seen))

	for p := range seen {
		if v := tc.Variable(p); v.Valid() {
			deps = append(deps, v)
		}
	}

	sort.Slice(deps, func(i, j int) bool { return deps[i].Position < deps[j].Position })

	return deps
}

// UsedAsCallee reports whether the variable at pos is the receiver of a
// later method call or field read.
func (tc *TestCase) UsedAsCallee(pos int) bool {
	for _, st := range tc.statements[min(pos+1, len(tc.statements)):] {
		if (st.kind == KindMethod || st.kind == KindFieldRead) && st.callee.Position == pos {
			return true
		}
	}

	return false
}

// Assertions returns every attached assertion in statement order.
func (tc *TestCase) Assertions() []Assertion {
	var all []Assertion
	for _, st := range tc.statements {
		all = append(all, st.assertions...)
	}

	return all
}

// RemoveAssertions detaches all assertions of all statements.
func (tc *TestCase) RemoveAssertions() {
	for _, st := range tc.statements {
		st.RemoveAssertions()
	}
}

// Clone copies the statements. Attached assertions are shared with the
// original.
func (tc *TestCase) Clone() *TestCase {
	c := &TestCase{Name: tc.Name, statements: make([]*Statement, len(tc.statements))}
	for i, st := range tc.statements {
		c.statements[i] = st.clone()
	}

	return c
}

// Code renders the test body with its assertions.
func (tc *TestCase) Code() string {
	var b strings.Builder

	for _, st := range tc.statements {
		b.WriteString(st.Code())
		b.WriteByte('\n')

		for _, a := range st.assertions {
			b.WriteString(a.Code())
			b.WriteByte('\n')
		}
	}

	return b.String()
}

func (tc *TestCase) add(st *Statement) VariableRef {
	st.position = len(tc.statements)
	if st.callee == (VariableRef{}) {
		st.callee = NoVariable
	}

	tc.statements = append(tc.statements, st)

	return st.ReturnValue()
}

// Constant declares a literal.
func (tc *TestCase) Constant(v any) VariableRef {
	if v == nil {
		panic("model: untyped nil constant, use Nil")
	}

	return tc.add(&Statement{kind: KindConstant, ret: reflect.TypeOf(v), value: v})
}

// Nil declares a nil value of type t.
func (tc *TestCase) Nil(t reflect.Type) VariableRef {
	if !IsNillable(t) {
		panic(fmt.Sprintf("model: %s cannot be nil", t))
	}

	return tc.add(&Statement{kind: KindConstant, ret: t})
}

// Array allocates a slice of length elements of type elem.
func (tc *TestCase) Array(elem reflect.Type, length int) VariableRef {
	return tc.add(&Statement{kind: KindArrayAlloc, ret: reflect.SliceOf(elem), length: length})
}

// Assign stores value into target[index].
func (tc *TestCase) Assign(target VariableRef, index int, value VariableRef) {
	if !IsArray(target.Type) {
		panic(fmt.Sprintf("model: cannot index %s", target))
	}

	tc.add(&Statement{kind: KindAssignment, callee: target, args: []VariableRef{value}, index: index})
}

// Construct calls fn, a function creating a value under test, rendered as
// name in generated code.
func (tc *TestCase) Construct(name string, fn any, args ...VariableRef) VariableRef {
	return tc.call(KindConstructor, name, fn, args)
}

// Call calls the function fn, rendered as name in generated code.
func (tc *TestCase) Call(name string, fn any, args ...VariableRef) VariableRef {
	return tc.call(KindFunction, name, fn, args)
}

func (tc *TestCase) call(kind StatementKind, name string, fn any, args []VariableRef) VariableRef {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		panic(fmt.Sprintf("model: %s is not a function", name))
	}

	ret, returnsErr := resultType(rv.Type())

	return tc.add(&Statement{
		kind:       kind,
		ret:        ret,
		fn:         rv,
		member:     name,
		args:       args,
		returnsErr: returnsErr,
		callee:     NoVariable,
	})
}

// CallMethod calls method on callee.
func (tc *TestCase) CallMethod(callee VariableRef, method string, args ...VariableRef) VariableRef {
	if callee.Type == nil {
		panic(fmt.Sprintf("model: method %s called on void", method))
	}

	m, ok := callee.Type.MethodByName(method)
	if !ok {
		panic(fmt.Sprintf("model: type %s has no method %s", callee.Type, method))
	}

	ret, returnsErr := resultType(m.Type)

	return tc.add(&Statement{
		kind:       KindMethod,
		ret:        ret,
		callee:     callee,
		member:     method,
		args:       args,
		returnsErr: returnsErr,
	})
}

// ReadField reads the exported field of a struct or pointer to struct.
func (tc *TestCase) ReadField(source VariableRef, field string) VariableRef {
	t := source.Type
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("model: %s is not a struct", source))
	}

	f, ok := t.FieldByName(field)
	if !ok || !f.IsExported() {
		panic(fmt.Sprintf("model: type %s has no exported field %s", t, field))
	}

	return tc.add(&Statement{kind: KindFieldRead, ret: f.Type, callee: source, member: field})
}
