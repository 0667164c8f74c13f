package model

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// StatementKind classifies what a statement does.
type StatementKind int

const (
	// KindConstant declares a literal value.
	KindConstant StatementKind = iota
	// KindArrayAlloc allocates a slice of fixed length.
	KindArrayAlloc
	// KindAssignment stores a value into a slice element.
	KindAssignment
	// KindConstructor calls a function that creates a value under test.
	KindConstructor
	// KindFunction calls a plain function.
	KindFunction
	// KindMethod calls a method on a previously created value.
	KindMethod
	// KindFieldRead reads an exported struct field.
	KindFieldRead
)

func (k StatementKind) String() string {
	switch k {
	case KindConstant:
		return "constant"
	case KindArrayAlloc:
		return "array"
	case KindAssignment:
		return "assignment"
	case KindConstructor:
		return "constructor"
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindFieldRead:
		return "field"
	default:
		return fmt.Sprintf("StatementKind(%d)", int(k))
	}
}

// Assertion is what a statement needs to know about an attached assertion.
type Assertion interface {
	Source() VariableRef
	Code() string
	Valid() bool
	Key() string
}

var errNilReceiver = errors.New("nil receiver")

// Statement is one step of a test case.
type Statement struct {
	kind       StatementKind
	position   int
	ret        reflect.Type
	callee     VariableRef
	args       []VariableRef
	member     string
	value      any
	fn         reflect.Value
	index      int
	length     int
	returnsErr bool
	assertions []Assertion
}

// Kind returns the statement kind.
func (s *Statement) Kind() StatementKind {
	return s.kind
}

// Position returns the index of the statement in its test case.
func (s *Statement) Position() int {
	return s.position
}

// ReturnValue returns the variable produced by the statement.
func (s *Statement) ReturnValue() VariableRef {
	return VariableRef{Position: s.position, Type: s.ret}
}

// Callee returns the receiver of a method call, the source of a field read
// or the target of an assignment, or NoVariable.
func (s *Statement) Callee() VariableRef {
	return s.callee
}

// Args returns the arguments of the statement.
func (s *Statement) Args() []VariableRef {
	return slices.Clone(s.args)
}

// Member returns the called function, method or field name.
func (s *Statement) Member() string {
	return s.member
}

// Value returns the literal of a constant statement.
func (s *Statement) Value() any {
	return s.value
}

// Uses returns the variables the statement reads directly.
func (s *Statement) Uses() []VariableRef {
	uses := make([]VariableRef, 0, len(s.args)+1)
	if s.callee.Position >= 0 {
		uses = append(uses, s.callee)
	}

	return append(uses, s.args...)
}

// AddAssertion attaches a. Invalid assertions are ignored.
func (s *Statement) AddAssertion(a Assertion) bool {
	if a == nil || !a.Valid() {
		return false
	}

	for _, existing := range s.assertions {
		if existing.Key() == a.Key() {
			return false
		}
	}

	s.assertions = append(s.assertions, a)

	return true
}

// RemoveAssertion detaches the assertion with the same key as a.
func (s *Statement) RemoveAssertion(a Assertion) {
	s.assertions = slices.DeleteFunc(s.assertions, func(existing Assertion) bool {
		return existing.Key() == a.Key()
	})
}

// RemoveAssertions detaches every assertion.
func (s *Statement) RemoveAssertions() {
	s.assertions = nil
}

// Assertions returns the attached assertions.
func (s *Statement) Assertions() []Assertion {
	return slices.Clone(s.assertions)
}

// HasAssertions reports whether any assertion is attached.
func (s *Statement) HasAssertions() bool {
	return len(s.assertions) > 0
}

// Execute runs the statement against scope and returns the produced value.
func (s *Statement) Execute(scope *Scope) (any, error) {
	switch s.kind {
	case KindConstant:
		return s.value, nil
	case KindArrayAlloc:
		return reflect.MakeSlice(s.ret, s.length, s.length).Interface(), nil
	case KindAssignment:
		return nil, s.assign(scope)
	case KindConstructor, KindFunction:
		args, err := s.argValues(scope)
		if err != nil {
			return nil, err
		}

		return invoke(s.fn, args)
	case KindMethod:
		return s.callMethod(scope)
	case KindFieldRead:
		return s.readField(scope)
	default:
		return nil, fmt.Errorf("unknown statement kind %s", s.kind)
	}
}

func (s *Statement) argValues(scope *Scope) ([]any, error) {
	values := make([]any, len(s.args))

	for i, arg := range s.args {
		v, err := scope.Get(arg)
		if err != nil {
			return nil, err
		}

		values[i] = v
	}

	return values, nil
}

func (s *Statement) assign(scope *Scope) error {
	target, err := scope.Get(s.callee)
	if err != nil {
		return err
	}

	value, err := scope.Get(s.args[0])
	if err != nil {
		return err
	}

	rv := reflect.ValueOf(target)
	if !rv.IsValid() || rv.Kind() != reflect.Slice || rv.IsNil() {
		return fmt.Errorf("assign to %s: %w", s.callee.Name(), errNilReceiver)
	}

	if s.index < 0 || s.index >= rv.Len() {
		return fmt.Errorf("assign to %s: index %d out of range [0:%d]", s.callee.Name(), s.index, rv.Len())
	}

	elem, err := argValue(rv.Type().Elem(), value)
	if err != nil {
		return err
	}

	rv.Index(s.index).Set(elem)

	return nil
}

func (s *Statement) callMethod(scope *Scope) (any, error) {
	recv, err := scope.Get(s.callee)
	if err != nil {
		return nil, err
	}

	rv := reflect.ValueOf(recv)
	if !rv.IsValid() {
		return nil, fmt.Errorf("call %s on %s: %w", s.member, s.callee.Name(), errNilReceiver)
	}

	method := rv.MethodByName(s.member)
	if !method.IsValid() {
		return nil, fmt.Errorf("type %s has no method %s", rv.Type(), s.member)
	}

	args, err := s.argValues(scope)
	if err != nil {
		return nil, err
	}

	return invoke(method, args)
}

func (s *Statement) readField(scope *Scope) (any, error) {
	source, err := scope.Get(s.callee)
	if err != nil {
		return nil, err
	}

	rv := reflect.ValueOf(source)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("read %s.%s: %w", s.callee.Name(), s.member, errNilReceiver)
		}

		rv = rv.Elem()
	}

	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("read %s.%s: not a struct", s.callee.Name(), s.member)
	}

	field := rv.FieldByName(s.member)
	if !field.IsValid() {
		return nil, fmt.Errorf("type %s has no field %s", rv.Type(), s.member)
	}

	return field.Interface(), nil
}

// Code renders the statement as Go source.
func (s *Statement) Code() string {
	name := s.ReturnValue().Name()

	switch s.kind {
	case KindConstant:
		if s.value == nil {
			return fmt.Sprintf("var %s %s", name, s.ret)
		}

		return fmt.Sprintf("%s := %s", name, Literal(s.value))
	case KindArrayAlloc:
		return fmt.Sprintf("%s := make(%s, %d)", name, s.ret, s.length)
	case KindAssignment:
		return fmt.Sprintf("%s[%d] = %s", s.callee.Name(), s.index, s.args[0].Name())
	case KindFieldRead:
		return fmt.Sprintf("%s := %s.%s", name, s.callee.Name(), s.member)
	}

	call := s.member + "(" + joinNames(s.args) + ")"
	if s.kind == KindMethod {
		call = s.callee.Name() + "." + call
	}

	switch {
	case s.ret == nil && s.returnsErr:
		return fmt.Sprintf("require.NoError(t, %s)", call)
	case s.ret == nil:
		return call
	case s.returnsErr:
		return fmt.Sprintf("%s, err := %s\nrequire.NoError(t, err)", name, call)
	default:
		return fmt.Sprintf("%s := %s", name, call)
	}
}

func (s *Statement) clone() *Statement {
	c := *s
	c.args = slices.Clone(s.args)
	c.assertions = slices.Clone(s.assertions)

	return &c
}

func joinNames(refs []VariableRef) string {
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name()
	}

	return strings.Join(names, ", ")
}

// invoke calls fn with args. A trailing non-nil error result is returned as
// the error of the call; the first other result is the produced value.
func invoke(fn reflect.Value, args []any) (any, error) {
	ft := fn.Type()

	if (!ft.IsVariadic() && len(args) != ft.NumIn()) || (ft.IsVariadic() && len(args) < ft.NumIn()-1) {
		return nil, fmt.Errorf("call %s: want %d arguments, got %d", ft, ft.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))

	for i, arg := range args {
		var pt reflect.Type
		if ft.IsVariadic() && i >= ft.NumIn()-1 {
			pt = ft.In(ft.NumIn() - 1).Elem()
		} else {
			pt = ft.In(i)
		}

		v, err := argValue(pt, arg)
		if err != nil {
			return nil, fmt.Errorf("call %s: argument %d: %w", ft, i, err)
		}

		in[i] = v
	}

	out := fn.Call(in)
	if len(out) == 0 {
		return nil, nil
	}

	last := out[len(out)-1]
	if ft.Out(ft.NumOut()-1) == errorType {
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}

		out = out[:len(out)-1]
	}

	if len(out) == 0 {
		return nil, nil
	}

	return out[0].Interface(), nil
}

func argValue(param reflect.Type, arg any) (reflect.Value, error) {
	if arg == nil {
		if !IsNillable(param) {
			return reflect.Value{}, fmt.Errorf("nil is not a valid %s", param)
		}

		return reflect.Zero(param), nil
	}

	rv := reflect.ValueOf(arg)
	if rv.Type().AssignableTo(param) {
		return rv, nil
	}

	if rv.Type().ConvertibleTo(param) && ((IsPrimitive(param) && IsPrimitive(rv.Type())) || (IsString(param) && IsString(rv.Type()))) {
		return rv.Convert(param), nil
	}

	return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", rv.Type(), param)
}

// resultType returns the value type produced by calling a function of type
// ft, and whether the call also returns an error.
func resultType(ft reflect.Type) (reflect.Type, bool) {
	n := ft.NumOut()
	if n == 0 {
		return nil, false
	}

	returnsErr := ft.Out(n-1) == errorType
	if returnsErr {
		n--
	}

	if n == 0 {
		return nil, returnsErr
	}

	return ft.Out(0), returnsErr
}
