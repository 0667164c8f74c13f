// Package execution runs test cases against the program under test, with an
// optional mutant active, and collects the observers' traces.
package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"gooze.dev/pkg/oracles/internal/assertion"
	m "gooze.dev/pkg/oracles/internal/model"
	"gooze.dev/pkg/oracles/internal/observe"
)

// DefaultTimeout bounds a single test execution.
const DefaultTimeout = 3 * time.Second

var (
	// ErrPanic wraps a panic raised by a statement.
	ErrPanic = errors.New("statement panicked")
	// ErrAssertionFailed is recorded for attached assertions that did not hold.
	ErrAssertionFailed = errors.New("assertion failed")
)

// Environment executes test cases.
type Environment interface {
	Register(observers ...observe.Observer)
	Execute(ctx context.Context, tc *m.TestCase, mutant *m.Mutant) *Result
}

// Option configures an Executor.
type Option func(*Executor)

// WithTimeout sets the per execution timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithTolerance sets the numeric tolerance of execution scopes.
func WithTolerance(tol m.Tolerance) Option {
	return func(e *Executor) {
		e.tolerance = tol
	}
}

// Executor runs test cases in-process, one at a time.
type Executor struct {
	sw        *Switch
	timeout   time.Duration
	tolerance m.Tolerance

	mu        sync.Mutex
	observers []observe.Observer
}

var _ Environment = (*Executor)(nil)

// New creates an executor toggling mutants through sw.
func New(sw *Switch, opts ...Option) *Executor {
	e := &Executor{
		sw:        sw,
		timeout:   DefaultTimeout,
		tolerance: m.DefaultTolerance,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Register attaches observers to every following execution.
func (e *Executor) Register(observers ...observe.Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.observers = append(e.observers, observers...)
}

type outcome struct {
	exceptions map[int]error
	failures   map[string]error
}

// Execute runs tc with mutant active, or the original program when mutant
// is nil. A run exceeding the timeout is abandoned: its goroutine keeps
// running but no longer reaches the observers.
func (e *Executor) Execute(ctx context.Context, tc *m.TestCase, mutant *m.Mutant) *Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := &Result{Mutant: mutant}
	if err := ctx.Err(); err != nil {
		result.Canceled = true
		return result
	}

	runs := make([]uint64, len(e.observers))
	for i, o := range e.observers {
		runs[i] = o.Clear()
	}

	id := m.NoMutant
	if mutant != nil {
		id = mutant.ID
	}

	e.sw.resetTouched()
	release := e.sw.Activate(id)
	defer release()

	scope := m.NewScope(e.tolerance)
	abandoned := &atomic.Bool{}
	done := make(chan outcome, 1)
	start := time.Now()

	observers := slices.Clone(e.observers)

	go func() {
		done <- run(tc, scope, observers, runs, abandoned)
	}()

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		result.Exceptions = out.exceptions
		result.Failures = out.failures
		result.Scope = scope
	case <-timer.C:
		abandoned.Store(true)
		result.Timeout = true
		slog.Debug("Test execution timed out", "test", tc.Name, "mutant", id, "timeout", e.timeout)
	}

	result.Duration = time.Since(start)
	result.Touched = e.sw.Touched()
	result.Traces = make(map[observe.Category]*observe.Trace, len(e.observers))

	for _, o := range e.observers {
		result.Traces[o.Category()] = o.Trace()
	}

	return result
}

// run executes tc statement by statement. Observers are called with the run
// their Clear returned, so a run abandoned on timeout cannot leak entries
// into the traces of a later execution.
func run(tc *m.TestCase, scope *m.Scope, observers []observe.Observer, runs []uint64, abandoned *atomic.Bool) outcome {
	out := outcome{
		exceptions: make(map[int]error),
		failures:   make(map[string]error),
	}

	for _, st := range tc.Statements() {
		if abandoned.Load() {
			return out
		}

		value, err := execute(st, scope)
		if err == nil && !st.ReturnValue().IsVoid() {
			scope.Set(st.Position(), value)
		}

		if abandoned.Load() {
			return out
		}

		for i, o := range observers {
			o.AfterStatement(runs[i], tc, st, scope, err)
		}

		if err != nil {
			out.exceptions[st.Position()] = err
			return out
		}

		evaluate(st, scope, out.failures)
	}

	return out
}

func execute(st *m.Statement, scope *m.Scope) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	return st.Execute(scope)
}

// evaluate checks the assertions attached to st right after it ran.
func evaluate(st *m.Statement, scope *m.Scope, failures map[string]error) {
	for _, attached := range st.Assertions() {
		a, ok := attached.(assertion.Assertion)
		if !ok {
			continue
		}

		holds, err := safeEvaluate(a, scope)

		switch {
		case err != nil:
			failures[a.Key()] = err
		case !holds:
			failures[a.Key()] = fmt.Errorf("%w: %s", ErrAssertionFailed, a.Code())
		}
	}
}

func safeEvaluate(a assertion.Assertion, scope *m.Scope) (holds bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	return a.Evaluate(scope)
}
