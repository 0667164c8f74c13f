package model

import (
	"math"
	"reflect"
)

// DefaultTolerance is used when no epsilon is configured.
var DefaultTolerance = Tolerance{Float32: 0.01, Float64: 0.01}

// Tolerance holds the epsilons used when comparing floating point values.
type Tolerance struct {
	Float32 float64
	Float64 float64
}

// Equal reports whether a and b are equal under the numeric equality rule:
// floating point values are equal when identical or within epsilon of each
// other, everything else uses value equality.
func (t Tolerance) Equal(a, b any) bool {
	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			return floatsEqual(x, y, t.Float64)
		}
	case float32:
		if y, ok := b.(float32); ok {
			return floatsEqual(float64(x), float64(y), t.Float32)
		}
	}

	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}

	switch ta.Kind() {
	case reflect.Float32:
		return floatsEqual(reflect.ValueOf(a).Float(), reflect.ValueOf(b).Float(), t.Float32)
	case reflect.Float64:
		return floatsEqual(reflect.ValueOf(a).Float(), reflect.ValueOf(b).Float(), t.Float64)
	}

	return reflect.DeepEqual(a, b)
}

// Delta returns the epsilon that applies to values of type typ, or zero for
// non floating point types.
func (t Tolerance) Delta(typ reflect.Type) float64 {
	if typ == nil {
		return 0
	}

	switch typ.Kind() {
	case reflect.Float32:
		return t.Float32
	case reflect.Float64:
		return t.Float64
	}

	return 0
}

func floatsEqual(a, b, delta float64) bool {
	if a == b {
		return true
	}

	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}

	return math.Abs(a-b) <= delta
}
