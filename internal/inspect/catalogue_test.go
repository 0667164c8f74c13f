package inspect

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "gooze.dev/pkg/oracles/internal/model"
)

type Color int

const (
	Red Color = iota
	Green
)

func (c Color) String() string {
	if c == Red {
		return "red"
	}

	return "green"
}

type point struct {
	X, Y  int
	Name  string
	Tags  []string
	color Color
}

func (p *point) Sum() int { return p.X + p.Y }
func (p *point) Color() Color { return p.color }
func (p *point) String() string { return p.Name }
func (p *point) HashCode() int { return 42 }
func (p *point) Scale(n int) int { return p.X * n }
func (p *point) Pair() (int, int) { return p.X, p.Y }
func (p *point) Equal(o *point) bool { return o != nil && p.X == o.X && p.Y == o.Y }
func (p *point) Compare(o *point) int {
	return p.Sum() - o.Sum()
}
func (p *point) Boom() bool { panic("boom") }

type set struct {
	items map[int]bool
}

func (s *set) Contains(x int) bool { return s.items[x] }

func accessorNames(accessors []Accessor) []string {
	names := make([]string, len(accessors))
	for i, a := range accessors {
		names[i] = a.Name
	}

	return names
}

func TestCatalogue(t *testing.T) {
	t.Run("discovers accessors", func(t *testing.T) {
		c, err := NewCatalogue(8)
		require.NoError(t, err)

		got := accessorNames(c.Accessors(reflect.TypeFor[*point]()))
		assert.ElementsMatch(t, []string{"Sum", "Color", "Boom"}, got)
	})

	t.Run("honours extra deny list", func(t *testing.T) {
		c, err := NewCatalogue(8, "*inspect.point.Boom")
		require.NoError(t, err)

		got := accessorNames(c.Accessors(reflect.TypeFor[*point]()))
		assert.ElementsMatch(t, []string{"Sum", "Color"}, got)
	})

	t.Run("denies whole types", func(t *testing.T) {
		c, err := NewCatalogue(8)
		require.NoError(t, err)

		assert.Empty(t, c.Accessors(reflect.TypeFor[time.Time]()))
	})

	t.Run("caches per type", func(t *testing.T) {
		c, err := NewCatalogue(1)
		require.NoError(t, err)

		first := c.Accessors(reflect.TypeFor[*point]())
		second := c.Accessors(reflect.TypeFor[*point]())
		assert.Equal(t, first, second)
		assert.Equal(t, 1, c.accessors.Len())

		c.Accessors(reflect.TypeFor[*set]())
		assert.Equal(t, 1, c.accessors.Len())
	})

	t.Run("discovers primitive fields", func(t *testing.T) {
		c, err := NewCatalogue(0)
		require.NoError(t, err)

		fields := c.Fields(reflect.TypeFor[*point]())
		names := make([]string, len(fields))
		for i, f := range fields {
			names[i] = f.Name
		}

		assert.Equal(t, []string{"X", "Y", "Name"}, names)
		assert.Empty(t, c.Fields(reflect.TypeFor[int]()))
	})
}

func TestRuntimeHelpers(t *testing.T) {
	tol := m.DefaultTolerance
	p := &point{X: 1, Y: 2}
	q := &point{X: 1, Y: 2}

	t.Run("call recovers panics", func(t *testing.T) {
		v, err := Call(p, Accessor{Type: reflect.TypeFor[*point](), Name: "Sum"})
		require.NoError(t, err)
		assert.Equal(t, 3, v)

		_, err = Call(p, Accessor{Type: reflect.TypeFor[*point](), Name: "Boom"})
		require.Error(t, err)
	})

	t.Run("equal uses Equal method", func(t *testing.T) {
		eq, err := Equal(p, q, tol)
		require.NoError(t, err)
		assert.True(t, eq)
		assert.True(t, HasEqualMethod(reflect.TypeFor[*point]()))

		eq, err = Equal(1.0, 1.001, tol)
		require.NoError(t, err)
		assert.True(t, eq)
	})

	t.Run("compatible types", func(t *testing.T) {
		assert.True(t, Compatible(1, 2))
		assert.True(t, Compatible(nil, "x"))
		assert.True(t, Compatible(p, q))
		assert.False(t, Compatible(1, "x"))
		assert.False(t, Compatible(int32(1), int64(1)))
	})

	t.Run("same compares identity", func(t *testing.T) {
		assert.True(t, Same(p, p))
		assert.False(t, Same(p, q))

		s := []int{1, 2, 3}
		assert.True(t, Same(s, s))
		assert.False(t, Same(s, s[:2]))
		assert.False(t, HasIdentity(reflect.TypeFor[*int]()))
		assert.True(t, HasIdentity(reflect.TypeFor[*point]()))
	})

	t.Run("contains", func(t *testing.T) {
		found, err := Contains([]int{1, 2}, 2, tol)
		require.NoError(t, err)
		assert.True(t, found)

		found, err = Contains(map[string]int{"a": 1}, "b", tol)
		require.NoError(t, err)
		assert.False(t, found)

		found, err = Contains(&set{items: map[int]bool{3: true}}, 3, tol)
		require.NoError(t, err)
		assert.True(t, found)

		_, err = Contains(42, 1, tol)
		require.ErrorIs(t, err, ErrNotApplicable)

		elem, ok := ElementType(reflect.TypeFor[*set]())
		require.True(t, ok)
		assert.Equal(t, reflect.TypeFor[int](), elem)

		_, ok = ElementType(reflect.TypeFor[[]any]())
		assert.False(t, ok)
	})

	t.Run("compare returns sign", func(t *testing.T) {
		sign, err := Compare(p, &point{X: 5})
		require.NoError(t, err)
		assert.Equal(t, -1, sign)
		assert.True(t, HasCompareMethod(reflect.TypeFor[*point]()))
	})

	t.Run("len and elements", func(t *testing.T) {
		n, ok := Len([]string{"a"})
		assert.True(t, ok)
		assert.Equal(t, 1, n)

		_, ok = Len(3)
		assert.False(t, ok)

		elems, ok := Elements([2]int{4, 5})
		assert.True(t, ok)
		assert.Equal(t, []any{4, 5}, elems)
	})

	t.Run("read field", func(t *testing.T) {
		v, err := ReadField(p, "X")
		require.NoError(t, err)
		assert.Equal(t, 1, v)

		_, err = ReadField((*point)(nil), "X")
		require.ErrorIs(t, err, ErrNotApplicable)
	})
}
