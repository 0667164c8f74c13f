package model

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnreachable is returned when a variable has no binding in a scope,
// i.e. the statement that produces it did not run.
var ErrUnreachable = errors.New("variable unreachable in scope")

// Scope holds the runtime bindings of one test execution.
type Scope struct {
	values    map[int]any
	Tolerance Tolerance
}

// NewScope creates an empty scope evaluating numbers with tol.
func NewScope(tol Tolerance) *Scope {
	return &Scope{
		values:    make(map[int]any),
		Tolerance: tol,
	}
}

// Set binds the value of the statement at pos.
func (s *Scope) Set(pos int, value any) {
	s.values[pos] = value
}

// Lookup returns the binding at pos.
func (s *Scope) Lookup(pos int) (any, bool) {
	value, ok := s.values[pos]
	return value, ok
}

// Get returns the value of ref or ErrUnreachable.
func (s *Scope) Get(ref VariableRef) (any, error) {
	value, ok := s.values[ref.Position]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ref.Name(), ErrUnreachable)
	}

	return value, nil
}

// Positions returns the bound positions in ascending order.
func (s *Scope) Positions() []int {
	positions := make([]int, 0, len(s.values))
	for pos := range s.values {
		positions = append(positions, pos)
	}

	sort.Ints(positions)

	return positions
}

// Len returns the number of bindings.
func (s *Scope) Len() int {
	return len(s.values)
}
