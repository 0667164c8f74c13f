package execution

import (
	"maps"
	"slices"
	"time"

	m "gooze.dev/pkg/oracles/internal/model"
	"gooze.dev/pkg/oracles/internal/observe"
)

// Result describes one execution of a test case.
type Result struct {
	Mutant *m.Mutant
	// Timeout is set when the run exceeded the execution timeout.
	Timeout bool
	// Canceled is set when the run did not start because the context ended.
	Canceled bool
	// Exceptions maps statement positions to the error or panic raised.
	Exceptions map[int]error
	// Failures maps the keys of attached assertions that did not hold, or
	// could not be evaluated, to the reason.
	Failures map[string]error
	Touched  []int
	Traces   map[observe.Category]*observe.Trace
	// Scope holds the final bindings; nil after a timeout.
	Scope    *m.Scope
	Duration time.Duration
}

// HasException reports whether any statement raised.
func (r *Result) HasException() bool {
	return len(r.Exceptions) > 0
}

// ExceptionPositions returns the positions of raising statements in order.
func (r *Result) ExceptionPositions() []int {
	return slices.Sorted(maps.Keys(r.Exceptions))
}

// Trace returns the trace of category, or an empty trace.
func (r *Result) Trace(category observe.Category) *observe.Trace {
	if t, ok := r.Traces[category]; ok {
		return t
	}

	return observe.NewTrace(category, m.DefaultTolerance)
}

// SameExceptions reports whether r and other raised at the same positions.
func (r *Result) SameExceptions(other *Result) bool {
	return slices.Equal(r.ExceptionPositions(), other.ExceptionPositions())
}
