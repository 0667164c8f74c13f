package assertion

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gooze.dev/pkg/oracles/internal/inspect"
	m "gooze.dev/pkg/oracles/internal/model"
)

type stack struct {
	Items []int
	Limit int
}

func newStack(limit int) *stack {
	return &stack{Limit: limit}
}

func (s *stack) Push(x int) { s.Items = append(s.Items, x) }
func (s *stack) Size() int { return len(s.Items) }
func (s *stack) Contains(x int) bool { return len(s.Items) > 0 && s.Items[0] == x }
func (s *stack) Equal(o *stack) bool { return o != nil && s.Size() == o.Size() }
func (s *stack) Compare(o *stack) int { return s.Size() - o.Size() }
func (s *stack) Snapshot() []int { return append([]int(nil), s.Items...) }
func (s *stack) Ratio() float64 { return float64(s.Size()) / float64(s.Limit) }

// fixture builds: v0 := 3; v1 := newStack(v0); v2 := 7; v1.Push(v2); v4 := v1.Size()
func fixture(t *testing.T) (*m.TestCase, *m.Scope) {
	t.Helper()

	tc := m.NewTestCase("stack")
	limit := tc.Constant(3)
	s := tc.Construct("newStack", newStack, limit)
	x := tc.Constant(7)
	tc.CallMethod(s, "Push", x)
	tc.CallMethod(s, "Size")

	scope := m.NewScope(m.DefaultTolerance)
	for _, st := range tc.Statements() {
		v, err := st.Execute(scope)
		require.NoError(t, err)

		if st.ReturnValue().Type != nil {
			scope.Set(st.Position(), v)
		}
	}

	return tc, scope
}

func TestPrimitive(t *testing.T) {
	tc, scope := fixture(t)
	size := tc.Variable(4)

	a := NewPrimitive(4, size, 1, 0)
	ok, err := a.Evaluate(scope)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "assert.Equal(t, 1, v4)", a.Code())
	assert.True(t, a.Valid())

	wrong := NewPrimitive(4, size, 2, 0)
	ok, err = wrong.Evaluate(scope)
	require.NoError(t, err)
	assert.False(t, ok)

	incompatible := NewPrimitive(4, size, "1", 0)
	ok, err = incompatible.Evaluate(scope)
	require.NoError(t, err)
	assert.True(t, ok)

	floats := NewPrimitive(0, m.VariableRef{Position: 0, Type: reflect.TypeFor[float64]()}, 1.5, 0.01)
	assert.Equal(t, "assert.InDelta(t, 1.5, v0, 0.01)", floats.Code())

	flag := NewPrimitive(0, m.VariableRef{Position: 0, Type: reflect.TypeFor[bool]()}, false, 0)
	assert.Equal(t, "assert.False(t, v0)", flag.Code())
}

func TestUnreachableVariables(t *testing.T) {
	tc, _ := fixture(t)
	empty := m.NewScope(m.DefaultTolerance)

	checks := []Assertion{
		NewPrimitive(4, tc.Variable(4), 1, 0),
		NewNull(1, tc.Variable(1), false),
		NewEquals(1, tc.Variable(1), tc.Variable(1), true),
		NewContains(1, tc.Variable(1), tc.Variable(2), true),
	}

	for _, a := range checks {
		_, err := a.Evaluate(empty)
		require.ErrorIs(t, err, ErrUnevaluable, a.Kind().String())
		require.ErrorIs(t, err, m.ErrUnreachable)
	}
}

func TestNullAndValidity(t *testing.T) {
	tc, scope := fixture(t)

	a := NewNull(1, tc.Variable(1), false)
	ok, err := a.Evaluate(scope)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "assert.NotNil(t, v1)", a.Code())

	invalid := NewNull(1, m.NoVariable, true)
	assert.False(t, invalid.Valid())
	assert.False(t, tc.Statement(1).AddAssertion(invalid))

	pair := NewEquals(1, tc.Variable(1), m.NoVariable, true)
	assert.False(t, pair.Valid())
}

func TestStructuralAssertions(t *testing.T) {
	tc, scope := fixture(t)
	s := tc.Variable(1)

	t.Run("field", func(t *testing.T) {
		field := inspect.Field{Type: reflect.TypeFor[stack](), Name: "Limit", FieldType: reflect.TypeFor[int]()}
		a := NewField(1, s, field, 3, 0)

		ok, err := a.Evaluate(scope)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "assert.Equal(t, 3, v1.Limit)", a.Code())
	})

	t.Run("inspector", func(t *testing.T) {
		accessor := inspect.Accessor{Type: reflect.TypeFor[*stack](), Name: "Ratio", Result: reflect.TypeFor[float64]()}
		a := NewInspector(3, s, accessor, 1.0/3.0, 0.01)

		ok, err := a.Evaluate(scope)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "assert.InDelta(t, 0.3333333333333333, v1.Ratio(), 0.01)", a.Code())
	})

	t.Run("contains through method", func(t *testing.T) {
		a := NewContains(3, s, tc.Variable(2), true)

		ok, err := a.Evaluate(scope)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "assert.True(t, v1.Contains(v2))", a.Code())

		missing := NewContains(3, s, tc.Variable(0), false)
		ok, err = missing.Evaluate(scope)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("equals and same", func(t *testing.T) {
		eq := NewEquals(1, s, s, true)
		ok, err := eq.Evaluate(scope)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "assert.True(t, v1.Equal(v1))", eq.Code())

		same := NewSame(1, s, s, true)
		ok, err = same.Evaluate(scope)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "assert.Same(t, v1, v1)", same.Code())
	})

	t.Run("compare", func(t *testing.T) {
		a := NewCompare(1, s, s, 0)
		ok, err := a.Evaluate(scope)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "assert.Zero(t, v1.Compare(v1))", a.Code())
	})

	t.Run("arrays", func(t *testing.T) {
		scope.Set(5, []int{7})
		ref := m.VariableRef{Position: 5, Type: reflect.TypeFor[[]int]()}

		eq := NewArrayEquals(5, ref, ref.Type, []any{7}, 0)
		ok, err := eq.Evaluate(scope)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "assert.Equal(t, []int{7}, v5)", eq.Code())

		length := NewArrayLength(5, ref, 2)
		ok, err = length.Evaluate(scope)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, "assert.Len(t, v5, 2)", length.Code())
	})
}

func TestEqualsHoldsForIncompatibleTypes(t *testing.T) {
	anyType := reflect.TypeFor[any]()
	source := m.VariableRef{Position: 0, Type: anyType}
	dest := m.VariableRef{Position: 1, Type: anyType}

	scope := m.NewScope(m.DefaultTolerance)
	scope.Set(0, 1)
	scope.Set(1, "x")

	for _, expected := range []bool{true, false} {
		ok, err := NewEquals(1, source, dest, expected).Evaluate(scope)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	scope.Set(1, 2)

	ok, err := NewEquals(1, source, dest, true).Evaluate(scope)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCopyAndKills(t *testing.T) {
	tc, _ := fixture(t)

	a := NewPrimitive(4, tc.Variable(4), 1, 0)
	a.AddKilled(3, 1, 3)
	assert.Equal(t, []int{1, 3}, a.Killed())
	assert.True(t, a.Kills(1))
	assert.False(t, a.Kills(2))

	clone := tc.Clone()
	c := a.Copy(clone, 0)
	assert.Equal(t, a.Key(), c.Key())
	assert.Equal(t, a.Killed(), c.Killed())
	assert.True(t, c.Valid())

	shifted := a.Copy(clone, 1)
	assert.False(t, shifted.Valid())
}

func TestDedupAndSort(t *testing.T) {
	tc, _ := fixture(t)
	v := tc.Variable(4)

	first := NewPrimitive(4, v, 1, 0)
	first.AddKilled(1)

	dup := NewPrimitive(4, v, 1, 0)
	dup.AddKilled(2)

	other := NewNull(1, tc.Variable(1), false)

	unique := Dedup([]Assertion{first, dup, other})
	require.Len(t, unique, 2)
	assert.Equal(t, []int{1, 2}, unique[0].Killed())

	Sort(unique)
	assert.Equal(t, KindNull, unique[0].Kind())
}
