package model

import (
	"fmt"
	"go/token"
	"math"
	"reflect"
	"strconv"
	"strings"
)

var (
	stringerType = reflect.TypeFor[fmt.Stringer]()
	errorType    = reflect.TypeFor[error]()
)

// ErrorType is the reflect type of the error interface.
func ErrorType() reflect.Type {
	return errorType
}

// IsPrimitive reports whether t is a boolean or numeric kind.
func IsPrimitive(t reflect.Type) bool {
	if t == nil {
		return false
	}

	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// IsString reports whether t has string kind.
func IsString(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.String
}

// IsFloat reports whether t has a floating point kind.
func IsFloat(t reflect.Type) bool {
	return t != nil && (t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64)
}

// IsEnum reports whether t is a named integer type implementing fmt.Stringer.
func IsEnum(t reflect.Type) bool {
	if t == nil || t.Name() == "" || t.PkgPath() == "" {
		return false
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return false
	}

	return t.Implements(stringerType)
}

// IsReachableEnum reports whether t is an enum whose name is exported.
func IsReachableEnum(t reflect.Type) bool {
	return IsEnum(t) && token.IsExported(t.Name())
}

// IsWrapper reports whether t is a pointer to a primitive or string.
func IsWrapper(t reflect.Type) bool {
	if t == nil || t.Kind() != reflect.Pointer {
		return false
	}

	return IsPrimitive(t.Elem()) || IsString(t.Elem())
}

// IsNillable reports whether values of t can be nil.
func IsNillable(t reflect.Type) bool {
	if t == nil {
		return false
	}

	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return true
	default:
		return false
	}
}

// IsArray reports whether t is a slice or array.
func IsArray(t reflect.Type) bool {
	return t != nil && (t.Kind() == reflect.Slice || t.Kind() == reflect.Array)
}

// IsValueType reports whether t holds primitives, strings or enums.
func IsValueType(t reflect.Type) bool {
	return IsPrimitive(t) || IsString(t)
}

// IsNil reports whether v is nil, including typed nil pointers and slices.
func IsNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	if IsNillable(rv.Type()) {
		return rv.IsNil()
	}

	return false
}

// Literal renders v as a Go expression.
func Literal(v any) string {
	if v == nil {
		return "nil"
	}

	rv := reflect.ValueOf(v)
	t := rv.Type()

	switch t.Kind() {
	case reflect.Bool:
		return wrapType(t, "bool", strconv.FormatBool(rv.Bool()))
	case reflect.String:
		return wrapType(t, "string", strconv.Quote(rv.String()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return wrapType(t, "int", strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return wrapType(t, "", strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32:
		return wrapType(t, "", formatFloat(rv.Float(), 32))
	case reflect.Float64:
		return wrapType(t, "float64", formatFloat(rv.Float(), 64))
	case reflect.Slice, reflect.Array:
		elems := make([]string, rv.Len())
		for i := range elems {
			elems[i] = Literal(rv.Index(i).Interface())
		}

		return t.String() + "{" + strings.Join(elems, ", ") + "}"
	default:
		return fmt.Sprintf("%#v", v)
	}
}

// wrapType leaves literals of the default type untouched and converts the
// rest explicitly.
func wrapType(t reflect.Type, implicit, lit string) string {
	if t.PkgPath() == "" && t.Name() == implicit {
		return lit
	}

	return t.String() + "(" + lit + ")"
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "math.NaN()"
	case math.IsInf(f, 1):
		return "math.Inf(1)"
	case math.IsInf(f, -1):
		return "math.Inf(-1)"
	}

	s := strconv.FormatFloat(f, 'g', -1, bits)
	if strings.ContainsAny(s, ".e") {
		return s
	}

	return s + ".0"
}
