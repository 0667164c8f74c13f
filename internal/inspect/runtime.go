package inspect

import (
	"errors"
	"fmt"
	"reflect"

	m "gooze.dev/pkg/oracles/internal/model"
)

// ErrNotApplicable is returned when a helper does not apply to the dynamic
// type of its operands.
var ErrNotApplicable = errors.New("not applicable")

var (
	boolType = reflect.TypeFor[bool]()
	intType  = reflect.TypeFor[int]()
)

// Call invokes the accessor on v. A panic raised by the accessor is returned
// as an error.
func Call(v any, a Accessor) (result any, err error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, ErrNotApplicable
	}

	method := rv.MethodByName(a.Name)
	if !method.IsValid() {
		return nil, fmt.Errorf("%s has no accessor %s: %w", rv.Type(), a.Name, ErrNotApplicable)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("accessor %s panicked: %v", a.Key(), r)
		}
	}()

	return method.Call(nil)[0].Interface(), nil
}

// ReadField returns the value of the named field of a struct or pointer to
// struct.
func ReadField(v any, name string) (any, error) {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, ErrNotApplicable
		}

		rv = rv.Elem()
	}

	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return nil, ErrNotApplicable
	}

	field := rv.FieldByName(name)
	if !field.IsValid() || !field.CanInterface() {
		return nil, ErrNotApplicable
	}

	return field.Interface(), nil
}

// ElementType returns the concrete element type of a container type: slices
// and arrays, map keys, or the parameter of a Contains(T) bool method.
func ElementType(t reflect.Type) (reflect.Type, bool) {
	if t == nil {
		return nil, false
	}

	var elem reflect.Type

	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		elem = t.Elem()
	case reflect.Map:
		elem = t.Key()
	default:
		method, ok := t.MethodByName("Contains")
		if !ok || !isPredicate(method.Type, t.Kind() != reflect.Interface, boolType) {
			return nil, false
		}

		elem = method.Type.In(method.Type.NumIn() - 1)
	}

	if elem.Kind() == reflect.Interface {
		return nil, false
	}

	return elem, true
}

// Contains reports whether elem is a member of container.
func Contains(container, elem any, tol m.Tolerance) (found bool, err error) {
	rv := reflect.ValueOf(container)
	if !rv.IsValid() {
		return false, ErrNotApplicable
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			if tol.Equal(rv.Index(i).Interface(), elem) {
				return true, nil
			}
		}

		return false, nil
	case reflect.Map:
		if elem == nil {
			return false, ErrNotApplicable
		}

		key := reflect.ValueOf(elem)
		if !key.Type().AssignableTo(rv.Type().Key()) {
			return false, ErrNotApplicable
		}

		return rv.MapIndex(key).IsValid(), nil
	}

	method := rv.MethodByName("Contains")
	if !method.IsValid() || !isPredicate(method.Type(), false, boolType) {
		return false, ErrNotApplicable
	}

	arg, ok := assignable(method.Type().In(0), elem)
	if !ok {
		return false, ErrNotApplicable
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("contains panicked: %v", r)
		}
	}()

	return method.Call([]reflect.Value{arg})[0].Bool(), nil
}

// HasEqualMethod reports whether t declares Equal(T) bool.
func HasEqualMethod(t reflect.Type) bool {
	if t == nil {
		return false
	}

	method, ok := t.MethodByName("Equal")

	return ok && isPredicate(method.Type, t.Kind() != reflect.Interface, boolType)
}

// Equal compares a and b by value: through an Equal(T) bool method when a
// declares one, otherwise with the numeric equality of tol.
func Equal(a, b any, tol m.Tolerance) (equal bool, err error) {
	ra := reflect.ValueOf(a)
	if !ra.IsValid() || m.IsNil(a) {
		return m.IsNil(b), nil
	}

	method := ra.MethodByName("Equal")
	if !method.IsValid() || !isPredicate(method.Type(), false, boolType) {
		return tol.Equal(a, b), nil
	}

	arg, ok := assignable(method.Type().In(0), b)
	if !ok {
		return false, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("equal panicked: %v", r)
		}
	}()

	return method.Call([]reflect.Value{arg})[0].Bool(), nil
}

// Compatible reports whether the dynamic types of a and b can be compared:
// either is nil, or one is assignable to the other.
func Compatible(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta == nil || tb == nil {
		return true
	}

	return ta.AssignableTo(tb) || tb.AssignableTo(ta)
}

// Same reports whether a and b are the same object: identical pointers,
// maps, channels or functions, or slices sharing backing array and length.
func Same(a, b any) bool {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !ra.IsValid() || !rb.IsValid() || ra.Type() != rb.Type() {
		return false
	}

	switch ra.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	default:
		return false
	}
}

// HasIdentity reports whether values of t can be compared by identity:
// pointers other than wrappers, and interfaces holding them.
func HasIdentity(t reflect.Type) bool {
	if t == nil || m.IsWrapper(t) {
		return false
	}

	return t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface
}

// HasCompareMethod reports whether t declares Compare(T) int.
func HasCompareMethod(t reflect.Type) bool {
	if t == nil {
		return false
	}

	method, ok := t.MethodByName("Compare")

	return ok && isPredicate(method.Type, t.Kind() != reflect.Interface, intType)
}

// Compare returns the sign of a.Compare(b).
func Compare(a, b any) (sign int, err error) {
	ra := reflect.ValueOf(a)
	if !ra.IsValid() || m.IsNil(a) {
		return 0, ErrNotApplicable
	}

	method := ra.MethodByName("Compare")
	if !method.IsValid() || !isPredicate(method.Type(), false, intType) {
		return 0, ErrNotApplicable
	}

	arg, ok := assignable(method.Type().In(0), b)
	if !ok {
		return 0, ErrNotApplicable
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("compare panicked: %v", r)
		}
	}()

	switch c := method.Call([]reflect.Value{arg})[0].Int(); {
	case c < 0:
		return -1, nil
	case c > 0:
		return 1, nil
	default:
		return 0, nil
	}
}

// Len returns the length of a slice, array, map, string or channel.
func Len(v any) (int, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return 0, false
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String, reflect.Chan:
		return rv.Len(), true
	default:
		return 0, false
	}
}

// Elements returns the elements of a slice or array.
func Elements(v any) ([]any, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}

	elems := make([]any, rv.Len())
	for i := range elems {
		elems[i] = rv.Index(i).Interface()
	}

	return elems, true
}

// IsNil reports whether v is nil.
func IsNil(v any) bool {
	return m.IsNil(v)
}

// isPredicate reports whether ft takes exactly one argument besides the
// receiver and returns a single value of type result.
func isPredicate(ft reflect.Type, withReceiver bool, result reflect.Type) bool {
	in := 1
	if withReceiver {
		in = 2
	}

	return ft.NumIn() == in && ft.NumOut() == 1 && ft.Out(0) == result
}

func assignable(param reflect.Type, v any) (reflect.Value, bool) {
	if v == nil {
		if m.IsNillable(param) {
			return reflect.Zero(param), true
		}

		return reflect.Value{}, false
	}

	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(param) {
		return reflect.Value{}, false
	}

	return rv, true
}
