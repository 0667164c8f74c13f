package observe

import (
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gooze.dev/pkg/oracles/internal/assertion"
	m "gooze.dev/pkg/oracles/internal/model"
)

type bag struct {
	Items []string
	Count int
	label string
}

func newBag(label string) *bag {
	return &bag{label: label}
}

func (b *bag) Add(s string) int {
	b.Items = append(b.Items, s)
	b.Count++

	return b.Count
}

func (b *bag) Contains(s string) bool {
	for _, item := range b.Items {
		if item == s {
			return true
		}
	}

	return false
}

func (b *bag) Size() int { return len(b.Items) }

func (b *bag) Label() string { return b.label + "@1f2e3d" }

func (b *bag) Weight() float64 { return float64(b.Count) * 1.5 }

func (b *bag) Snapshot() []string { return append([]string(nil), b.Items...) }

func identity(x int) int { return x }

// run executes tc and feeds every observer, returning the final scope.
func run(t *testing.T, tc *m.TestCase, observers ...Observer) *m.Scope {
	t.Helper()

	scope := m.NewScope(m.DefaultTolerance)

	runs := make([]uint64, len(observers))
	for i, o := range observers {
		runs[i] = o.Clear()
	}

	for _, st := range tc.Statements() {
		v, err := st.Execute(scope)
		require.NoError(t, err)

		if !st.ReturnValue().IsVoid() {
			scope.Set(st.Position(), v)
		}

		for i, o := range observers {
			o.AfterStatement(runs[i], tc, st, scope, err)
		}
	}

	return scope
}

// bagTest builds: v0 := "a"; v1 := newBag(v0); v2 := v1.Add(v0); v3 := "b"; v4 := v1.Contains(v3); v5 := v1.Snapshot()
func bagTest() *m.TestCase {
	tc := m.NewTestCase("bag")
	a := tc.Constant("a")
	b := tc.Construct("newBag", newBag, a)
	tc.CallMethod(b, "Add", a)
	other := tc.Constant("b")
	tc.CallMethod(b, "Contains", other)
	tc.CallMethod(b, "Snapshot")

	return tc
}

func testObserver(t *testing.T, category Category) Observer {
	t.Helper()

	o, err := New(category, DefaultConfig())
	require.NoError(t, err)

	return o
}

func TestObservers(t *testing.T) {
	t.Run("primitive records return values and skips constants", func(t *testing.T) {
		o := testObserver(t, CategoryPrimitive)
		run(t, bagTest(), o)

		trace := o.Trace()
		e, ok := trace.Entry(Key{Statement: 2, Variable: 2})
		require.True(t, ok)
		assert.Equal(t, 1, e.(*PrimitiveEntry).Value)

		// the constant argument is visited as a dependency of the call
		e, ok = trace.Entry(Key{Statement: 2, Variable: 0})
		require.True(t, ok)
		assert.Equal(t, "a", e.(*PrimitiveEntry).Value)

		_, ok = trace.Entry(Key{Statement: 0, Variable: 0})
		assert.False(t, ok)
	})

	t.Run("null records nillable variables", func(t *testing.T) {
		o := testObserver(t, CategoryNull)
		run(t, bagTest(), o)

		e, ok := o.Trace().Entry(Key{Statement: 1, Variable: 1})
		require.True(t, ok)
		assert.False(t, e.(*NullEntry).IsNil)
	})

	t.Run("arrays", func(t *testing.T) {
		arr := testObserver(t, CategoryArray)
		length := testObserver(t, CategoryArrayLength)
		run(t, bagTest(), arr, length)

		e, ok := arr.Trace().Entry(Key{Statement: 5, Variable: 5})
		require.True(t, ok)
		assert.Equal(t, []any{"a"}, e.(*ArrayEntry).Values)

		e, ok = length.Trace().Entry(Key{Statement: 5, Variable: 5})
		require.True(t, ok)
		assert.Equal(t, 1, e.(*ArrayLengthEntry).Length)
	})

	t.Run("array bound", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxArrayLength = 0

		o, err := New(CategoryArray, cfg)
		require.NoError(t, err)
		run(t, bagTest(), o)

		_, ok := o.Trace().Entry(Key{Statement: 5, Variable: 5})
		assert.False(t, ok)
	})

	t.Run("fields", func(t *testing.T) {
		o := testObserver(t, CategoryField)
		run(t, bagTest(), o)

		e, ok := o.Trace().Entry(Key{Statement: 2, Variable: 1})
		require.True(t, ok)

		values := e.(*FieldEntry).Values
		require.Len(t, values, 1)
		assert.Equal(t, 1, values["observe.bag.Count"].Value)
	})

	t.Run("inspectors skip unstable strings", func(t *testing.T) {
		o := testObserver(t, CategoryInspector)
		run(t, bagTest(), o)

		e, ok := o.Trace().Entry(Key{Statement: 2, Variable: 1})
		require.True(t, ok)

		values := e.(*InspectorEntry).Values
		assert.Contains(t, values, "*observe.bag.Size")
		assert.Contains(t, values, "*observe.bag.Weight")
		assert.NotContains(t, values, "*observe.bag.Label")
	})

	t.Run("purity gate filters inspectors", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Purity = gate{"Size": true}

		o, err := New(CategoryInspector, cfg)
		require.NoError(t, err)
		run(t, bagTest(), o)

		e, ok := o.Trace().Entry(Key{Statement: 2, Variable: 1})
		require.True(t, ok)
		assert.Len(t, e.(*InspectorEntry).Values, 1)
	})

	t.Run("equals skips pairs of constants", func(t *testing.T) {
		tc := m.NewTestCase("equals")
		x := tc.Constant(1)
		tc.Constant(1)
		tc.Call("identity", identity, x)

		o := testObserver(t, CategoryEquals)
		run(t, tc, o)

		trace := o.Trace()
		e, ok := trace.Entry(Key{Statement: 2, Variable: 2})
		require.True(t, ok)
		assert.Equal(t, true, e.(*PairEntry).Outcomes[0].Value)
		assert.Equal(t, true, e.(*PairEntry).Outcomes[1].Value)

		e, ok = trace.Entry(Key{Statement: 2, Variable: 0})
		require.True(t, ok)
		assert.Contains(t, e.(*PairEntry).Outcomes, 2)
		assert.NotContains(t, e.(*PairEntry).Outcomes, 1)
	})

	t.Run("contains only looks at earlier candidates", func(t *testing.T) {
		o := testObserver(t, CategoryContains)
		run(t, bagTest(), o)

		e, ok := o.Trace().Entry(Key{Statement: 4, Variable: 1})
		require.True(t, ok)

		outcomes := e.(*PairEntry).Outcomes
		assert.Equal(t, true, outcomes[0].Value)
		assert.NotContains(t, outcomes, 3)
	})

	t.Run("same excludes primitives", func(t *testing.T) {
		o := testObserver(t, CategorySame)
		run(t, bagTest(), o)

		for _, key := range o.Trace().Keys() {
			assert.Equal(t, 1, key.Variable)
		}
	})

	t.Run("exceptions are not observed", func(t *testing.T) {
		o := testObserver(t, CategoryPrimitive)
		tc := bagTest()
		scope := m.NewScope(m.DefaultTolerance)
		o.AfterStatement(o.Clear(), tc, tc.Statement(2), scope, assert.AnError)
		assert.Zero(t, o.Trace().Len())
	})

	t.Run("clear empties the trace and snapshots are independent", func(t *testing.T) {
		o := testObserver(t, CategoryPrimitive)
		run(t, bagTest(), o)

		snapshot := o.Trace()
		o.Clear()
		assert.Zero(t, o.Trace().Len())
		assert.NotZero(t, snapshot.Len())
	})

	t.Run("calls from a previous run are ignored", func(t *testing.T) {
		o := testObserver(t, CategoryPrimitive)
		tc := bagTest()
		scope := run(t, tc, o)

		stale := o.Clear()
		current := o.Clear()

		o.AfterStatement(stale, tc, tc.Statement(4), scope, nil)
		assert.Zero(t, o.Trace().Len())

		o.AfterStatement(current, tc, tc.Statement(4), scope, nil)
		assert.NotZero(t, o.Trace().Len())
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := New(Category("bogus"), DefaultConfig())
		require.Error(t, err)
	})
}

type gate map[string]bool

func (g gate) IsPureMethod(_ reflect.Type, name string) bool { return g[name] }

func TestTraceDiffing(t *testing.T) {
	tol := m.Tolerance{Float32: 0.01, Float64: 0.01}
	tc := m.NewTestCase("diff")
	tc.Constant(0)
	tc.Constant(1)
	tc.Constant(2)
	v := m.VariableRef{Position: 2, Type: reflect.TypeFor[int]()}

	t.Run("primitive divergence yields one assertion", func(t *testing.T) {
		baseline := NewTrace(CategoryPrimitive, tol)
		baseline.Add(2, v, &PrimitiveEntry{Var: v, Value: 5})

		mutant := NewTrace(CategoryPrimitive, tol)
		mutant.Add(2, v, &PrimitiveEntry{Var: v, Value: 6})

		require.True(t, baseline.Differs(mutant))

		got := baseline.AssertionsAgainst(tc, mutant)
		require.Len(t, got, 1)

		p, ok := got[0].(*assertion.Primitive)
		require.True(t, ok)
		assert.Equal(t, 5, p.Expected)
		assert.True(t, mutant.IsDetectedBy(p))
		assert.False(t, baseline.IsDetectedBy(p))

		base := m.NewScope(tol)
		base.Set(2, 5)
		holds, err := p.Evaluate(base)
		require.NoError(t, err)
		assert.True(t, holds)

		mutated := m.NewScope(tol)
		mutated.Set(2, 6)
		holds, err = p.Evaluate(mutated)
		require.NoError(t, err)
		assert.False(t, holds)
	})

	t.Run("diffing against a clone yields nothing", func(t *testing.T) {
		baseline := NewTrace(CategoryPrimitive, tol)
		baseline.Add(2, v, &PrimitiveEntry{Var: v, Value: 5})

		clone := baseline.Clone()
		assert.False(t, baseline.Differs(clone))
		assert.Empty(t, baseline.AssertionsAgainst(tc, clone))
		assert.Empty(t, cmp.Diff(baseline.Keys(), clone.Keys()))
	})

	t.Run("divergence within epsilon is suppressed", func(t *testing.T) {
		f := m.VariableRef{Position: 2, Type: reflect.TypeFor[float64]()}

		baseline := NewTrace(CategoryPrimitive, tol)
		baseline.Add(2, f, &PrimitiveEntry{Var: f, Value: 1.0000001, Delta: 0.01})

		mutant := NewTrace(CategoryPrimitive, tol)
		mutant.Add(2, f, &PrimitiveEntry{Var: f, Value: 1.0000002, Delta: 0.01})

		assert.False(t, baseline.Differs(mutant))
		assert.Empty(t, baseline.AssertionsAgainst(tc, mutant))
	})

	t.Run("containment flips only for the changed element", func(t *testing.T) {
		c := m.VariableRef{Position: 2, Type: reflect.TypeFor[[]int]()}
		e1 := m.VariableRef{Position: 0, Type: reflect.TypeFor[int]()}
		e2 := m.VariableRef{Position: 1, Type: reflect.TypeFor[int]()}

		baseline := NewTrace(CategoryContains, tol)
		baseline.Add(2, c, &PairEntry{Kind: assertion.KindContains, Var: c, Outcomes: map[int]Outcome{
			0: {Dest: e1, Value: true},
			1: {Dest: e2, Value: false},
		}})

		mutant := NewTrace(CategoryContains, tol)
		mutant.Add(2, c, &PairEntry{Kind: assertion.KindContains, Var: c, Outcomes: map[int]Outcome{
			0: {Dest: e1, Value: false},
			1: {Dest: e2, Value: false},
		}})

		got := baseline.AssertionsAgainst(tc, mutant)
		require.Len(t, got, 1)

		contains, ok := got[0].(*assertion.Contains)
		require.True(t, ok)
		assert.Equal(t, c, contains.Source())
		assert.Equal(t, e1, contains.Dest())
		assert.True(t, contains.Expected)
		assert.True(t, mutant.IsDetectedBy(contains))
	})

	t.Run("pair entries align on the second variable", func(t *testing.T) {
		c := m.VariableRef{Position: 2, Type: reflect.TypeFor[*bag]()}
		e1 := m.VariableRef{Position: 0, Type: reflect.TypeFor[*bag]()}
		e2 := m.VariableRef{Position: 1, Type: reflect.TypeFor[*bag]()}

		baseline := NewTrace(CategoryEquals, tol)
		baseline.Add(2, c, &PairEntry{Kind: assertion.KindEquals, Var: c, Outcomes: map[int]Outcome{0: {Dest: e1, Value: true}}})

		mutant := NewTrace(CategoryEquals, tol)
		mutant.Add(2, c, &PairEntry{Kind: assertion.KindEquals, Var: c, Outcomes: map[int]Outcome{1: {Dest: e2, Value: false}}})

		assert.False(t, baseline.Differs(mutant))
		assert.Empty(t, baseline.AssertionsAgainst(tc, mutant))
	})

	t.Run("unconditional assertions cover every entry", func(t *testing.T) {
		trace := NewTrace(CategoryNull, tol)
		trace.Add(2, v, &NullEntry{Var: v, IsNil: false})
		trace.Add(1, v, &NullEntry{Var: v, IsNil: true})

		got := trace.Assertions(tc)
		require.Len(t, got, 2)
		assert.Equal(t, 1, got[0].Statement())
		assert.Equal(t, []Key{{1, 2}, {2, 2}}, trace.Keys())

		trace.Clear()
		assert.Zero(t, trace.Len())
	})
}
