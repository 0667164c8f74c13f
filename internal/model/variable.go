// Package model defines the data structures shared by observers, assertions
// and the assertion generator: test cases, variables, scopes and mutants.
package model

import (
	"fmt"
	"reflect"
)

// VariableRef identifies the value produced by the statement at Position.
// Two references are interchangeable iff they name the same position with
// the same declared type.
type VariableRef struct {
	Position int
	Type     reflect.Type
}

// NoVariable is the invalid reference.
var NoVariable = VariableRef{Position: -1}

// Valid reports whether the reference points at a statement with a value.
func (v VariableRef) Valid() bool {
	return v.Position >= 0 && v.Type != nil
}

// IsVoid reports whether the referenced statement produces no value.
func (v VariableRef) IsVoid() bool {
	return v.Type == nil
}

// Equal compares position and declared type.
func (v VariableRef) Equal(other VariableRef) bool {
	return v.Position == other.Position && v.Type == other.Type
}

// Name renders the identifier used for the variable in generated code.
func (v VariableRef) Name() string {
	if v.Position < 0 {
		return "<nil>"
	}

	return fmt.Sprintf("v%d", v.Position)
}

// Shift returns the same reference moved by offset positions.
func (v VariableRef) Shift(offset int) VariableRef {
	if v.Position < 0 {
		return v
	}

	return VariableRef{Position: v.Position + offset, Type: v.Type}
}

func (v VariableRef) String() string {
	if v.Type == nil {
		return v.Name() + " void"
	}

	return v.Name() + " " + v.Type.String()
}
