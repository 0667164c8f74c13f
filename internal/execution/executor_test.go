package execution

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gooze.dev/pkg/oracles/internal/assertion"
	m "gooze.dev/pkg/oracles/internal/model"
	"gooze.dev/pkg/oracles/internal/observe"
)

type calc struct {
	sw *Switch
}

func (c *calc) Add(a, b int) int {
	if c.sw.Reached(1) {
		return a - b
	}

	return a + b
}

func (c *calc) Slow() int {
	if c.sw.Reached(2) {
		time.Sleep(100 * time.Millisecond)
	}

	return 1
}

func (c *calc) Div(a, b int) int {
	return a / b
}

func calcTest(sw *Switch, method string) *m.TestCase {
	tc := m.NewTestCase(method)
	c := tc.Construct("newCalc", func() *calc { return &calc{sw: sw} })
	x := tc.Constant(4)
	y := tc.Constant(0)

	switch method {
	case "Add", "Div":
		tc.CallMethod(c, method, x, y)
	default:
		tc.CallMethod(c, method)
	}

	return tc
}

func newExecutor(t *testing.T, sw *Switch, opts ...Option) *Executor {
	t.Helper()

	e := New(sw, opts...)

	o, err := observe.New(observe.CategoryPrimitive, observe.DefaultConfig())
	require.NoError(t, err)
	e.Register(o)

	return e
}

// stallingObserver holds the callback for statement stall until release is
// closed, then forwards it and closes passed.
type stallingObserver struct {
	observe.Observer

	stall   int
	release chan struct{}
	passed  chan struct{}
}

func (o *stallingObserver) AfterStatement(run uint64, tc *m.TestCase, st *m.Statement, scope *m.Scope, err error) {
	if st.Position() != o.stall {
		o.Observer.AfterStatement(run, tc, st, scope, err)
		return
	}

	<-o.release
	o.Observer.AfterStatement(run, tc, st, scope, err)
	close(o.passed)
}

func TestExecutor(t *testing.T) {
	t.Run("baseline run records traces and touched mutants", func(t *testing.T) {
		defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

		sw := NewSwitch()
		e := newExecutor(t, sw)

		result := e.Execute(context.Background(), calcTest(sw, "Add"), nil)
		require.False(t, result.Timeout)
		require.False(t, result.HasException())
		assert.Equal(t, []int{1}, result.Touched)

		entry, ok := result.Trace(observe.CategoryPrimitive).Entry(observe.Key{Statement: 3, Variable: 3})
		require.True(t, ok)
		assert.Equal(t, 4, entry.(*observe.PrimitiveEntry).Value)
		assert.Equal(t, m.NoMutant, sw.Active())
	})

	t.Run("active mutant changes the trace", func(t *testing.T) {
		sw := NewSwitch()
		e := newExecutor(t, sw)
		tc := m.NewTestCase("add")
		c := tc.Construct("newCalc", func() *calc { return &calc{sw: sw} })
		tc.CallMethod(c, "Add", tc.Constant(4), tc.Constant(1))

		baseline := e.Execute(context.Background(), tc, nil)
		mutant := e.Execute(context.Background(), tc, &m.Mutant{ID: 1})

		assert.True(t, baseline.Trace(observe.CategoryPrimitive).Differs(mutant.Trace(observe.CategoryPrimitive)))
		assert.Equal(t, m.NoMutant, sw.Active())
	})

	t.Run("panics are exceptions", func(t *testing.T) {
		sw := NewSwitch()
		e := newExecutor(t, sw)

		result := e.Execute(context.Background(), calcTest(sw, "Div"), nil)
		require.True(t, result.HasException())
		assert.Equal(t, []int{3}, result.ExceptionPositions())
		assert.ErrorIs(t, result.Exceptions[3], ErrPanic)
		assert.Zero(t, result.Trace(observe.CategoryPrimitive).Len())
	})

	t.Run("timeouts abandon the run", func(t *testing.T) {
		defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

		sw := NewSwitch()
		e := newExecutor(t, sw, WithTimeout(10*time.Millisecond))

		result := e.Execute(context.Background(), calcTest(sw, "Slow"), &m.Mutant{ID: 2})
		assert.True(t, result.Timeout)
		assert.Nil(t, result.Scope)
		assert.Equal(t, m.NoMutant, sw.Active())
	})

	t.Run("abandoned run does not write into later traces", func(t *testing.T) {
		sw := NewSwitch()
		e := New(sw, WithTimeout(10*time.Millisecond))

		inner, err := observe.New(observe.CategoryPrimitive, observe.DefaultConfig())
		require.NoError(t, err)

		stalling := &stallingObserver{Observer: inner, stall: 3, release: make(chan struct{}), passed: make(chan struct{})}
		e.Register(stalling)

		stale := e.Execute(context.Background(), calcTest(sw, "Add"), nil)
		require.True(t, stale.Timeout)

		next := m.NewTestCase("construct")
		next.Construct("newCalc", func() *calc { return &calc{sw: sw} })

		result := e.Execute(context.Background(), next, nil)
		require.False(t, result.Timeout)

		close(stalling.release)
		<-stalling.passed

		_, ok := inner.Trace().Entry(observe.Key{Statement: 3, Variable: 3})
		assert.False(t, ok)
	})

	t.Run("attached assertions are evaluated after their statement", func(t *testing.T) {
		sw := NewSwitch()
		e := newExecutor(t, sw)
		tc := m.NewTestCase("add")
		c := tc.Construct("newCalc", func() *calc { return &calc{sw: sw} })
		sum := tc.CallMethod(c, "Add", tc.Constant(4), tc.Constant(1))

		a := assertion.NewPrimitive(3, sum, 5, 0)
		require.True(t, tc.Statement(3).AddAssertion(a))

		baseline := e.Execute(context.Background(), tc, nil)
		assert.Empty(t, baseline.Failures)

		mutant := e.Execute(context.Background(), tc, &m.Mutant{ID: 1})
		require.Contains(t, mutant.Failures, a.Key())
		assert.ErrorIs(t, mutant.Failures[a.Key()], ErrAssertionFailed)
	})

	t.Run("canceled context skips the run", func(t *testing.T) {
		sw := NewSwitch()
		e := newExecutor(t, sw)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result := e.Execute(ctx, calcTest(sw, "Add"), nil)
		assert.True(t, result.Canceled)
		assert.Empty(t, sw.Touched())
	})
}

func TestSwitch(t *testing.T) {
	sw := NewSwitch()

	assert.False(t, sw.Reached(3))

	release := sw.Activate(3)
	assert.True(t, sw.Reached(3))
	assert.False(t, sw.Reached(4))
	release()

	assert.Equal(t, m.NoMutant, sw.Active())
	assert.Equal(t, []int{3, 4}, sw.Touched())

	sw.resetTouched()
	assert.Empty(t, sw.Touched())
}
