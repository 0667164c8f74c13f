package purity

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(t, name string) MethodKey {
	return MethodKey{Type: t, Name: name}
}

type box struct{ n int }

func (b *box) Get() int { return b.n }

func newLattice() *Index {
	ix := NewIndex()

	ix.AddType("app.Shape")
	ix.AddType("app.Square", "app.Shape")
	ix.AddType("app.Circle", "app.Shape")
	ix.AddType("app.Wrapper", "app.Square")

	ix.AddMethod(key("app.Shape", "Area"), Facts{Interface: true})
	ix.AddMethod(key("app.Square", "Area"), Facts{HasBody: true, Calls: []Call{{Kind: StaticCall, Target: key("math", "Pow")}}})
	ix.AddMethod(key("app.Circle", "Area"), Facts{HasBody: true})
	ix.AddMethod(key("app.Square", "Grow"), Facts{HasBody: true, FieldWrites: true})
	ix.AddMethod(key("app.Square", "Twice"), Facts{HasBody: true, Calls: []Call{{Kind: VirtualCall, Target: key("app.Square", "Grow")}}})
	ix.AddMethod(key("app.Square", "Noise"), Facts{HasBody: true, Calls: []Call{{Kind: StaticCall, Target: key("math/rand", "Intn")}}})
	ix.AddMethod(key("app.Square", "Ping"), Facts{HasBody: true, Calls: []Call{{Kind: VirtualCall, Target: key("app.Square", "Pong")}}})
	ix.AddMethod(key("app.Square", "Pong"), Facts{HasBody: true, Calls: []Call{{Kind: VirtualCall, Target: key("app.Square", "Ping")}}})
	ix.AddMethod(key("app.Wrapper", "Area"), Facts{})

	return ix
}

func TestChecker(t *testing.T) {
	t.Run("method with pure body is pure", func(t *testing.T) {
		c := NewChecker(newLattice())
		assert.True(t, c.IsPure(key("app.Square", "Area")))
	})

	t.Run("field writes are impure", func(t *testing.T) {
		c := NewChecker(newLattice())
		assert.False(t, c.IsPure(key("app.Square", "Grow")))
	})

	t.Run("impure callee is impure", func(t *testing.T) {
		c := NewChecker(newLattice())
		assert.False(t, c.IsPure(key("app.Square", "Twice")))
	})

	t.Run("random sources are impure", func(t *testing.T) {
		c := NewChecker(newLattice())
		assert.False(t, c.IsPure(key("app.Square", "Noise")))
		assert.False(t, c.IsPure(key("math/rand.Rand", "Int")))
	})

	t.Run("recursion terminates", func(t *testing.T) {
		c := NewChecker(newLattice())
		assert.True(t, c.IsPure(key("app.Square", "Ping")))
	})

	t.Run("cycle through an impure method is impure in any query order", func(t *testing.T) {
		newCycle := func() *Index {
			ix := NewIndex()
			ix.AddType("app.Loop")
			ix.AddMethod(key("app.Loop", "A"), Facts{HasBody: true, Calls: []Call{
				{Kind: VirtualCall, Target: key("app.Loop", "B")},
				{Kind: VirtualCall, Target: key("app.Loop", "C")},
			}})
			ix.AddMethod(key("app.Loop", "B"), Facts{HasBody: true, Calls: []Call{{Kind: VirtualCall, Target: key("app.Loop", "A")}}})
			ix.AddMethod(key("app.Loop", "C"), Facts{HasBody: true, FieldWrites: true})

			return ix
		}

		c := NewChecker(newCycle())
		assert.False(t, c.IsPure(key("app.Loop", "A")))
		assert.False(t, c.IsPure(key("app.Loop", "B")))

		c = NewChecker(newCycle())
		assert.False(t, c.IsPure(key("app.Loop", "B")))
		assert.False(t, c.IsPure(key("app.Loop", "A")))
	})

	t.Run("pure cycle stays pure from every entry point", func(t *testing.T) {
		c := NewChecker(newLattice())
		assert.True(t, c.IsPure(key("app.Square", "Pong")))
		assert.True(t, c.IsPure(key("app.Square", "Ping")))
		assert.True(t, c.IsPure(key("app.Square", "Pong")))
	})

	t.Run("interface method is pure when implementors are", func(t *testing.T) {
		c := NewChecker(newLattice())
		assert.True(t, c.IsPure(key("app.Shape", "Area")))
	})

	t.Run("impure override taints the interface method", func(t *testing.T) {
		ix := newLattice()
		ix.AddMethod(key("app.Circle", "Area"), Facts{HasBody: true, FieldWrites: true})

		c := NewChecker(ix)
		assert.False(t, c.IsPure(key("app.Shape", "Area")))
	})

	t.Run("inherited method follows closest super type", func(t *testing.T) {
		c := NewChecker(newLattice())
		assert.True(t, c.IsPure(key("app.Wrapper", "Area")))
	})

	t.Run("inherited method of an impure super type is impure", func(t *testing.T) {
		ix := newLattice()
		ix.AddMethod(key("app.Square", "Area"), Facts{HasBody: true, FieldWrites: true})

		c := NewChecker(ix)
		assert.False(t, c.IsPure(key("app.Shape", "Area")))
		assert.False(t, c.IsPure(key("app.Wrapper", "Area")))
	})

	t.Run("unknown types default to impure", func(t *testing.T) {
		c := NewChecker(newLattice())
		assert.False(t, c.IsPure(key("other.Thing", "Get")))
		assert.False(t, c.IsPure(key("app.Circle", "Missing")))
	})

	t.Run("allow list wins", func(t *testing.T) {
		c := NewChecker(NewIndex(), WithAllowList("other.Thing.Get"))
		assert.True(t, c.IsPure(key("other.Thing", "Get")))
		assert.True(t, c.IsPure(key("strings", "ToUpper")))
	})

	t.Run("pure methods of a type", func(t *testing.T) {
		c := NewChecker(newLattice())

		pure := c.PureMethods("app.Square")
		assert.ElementsMatch(t, []MethodKey{
			key("app.Square", "Area"),
			key("app.Square", "Ping"),
			key("app.Square", "Pong"),
		}, pure)
	})

	t.Run("reflect types map to registered names", func(t *testing.T) {
		name := TypeName(reflect.TypeFor[*box]())
		assert.Equal(t, "gooze.dev/pkg/oracles/internal/purity.box", name)

		ix := NewIndex()
		ix.AddMethod(key(name, "Get"), Facts{HasBody: true})

		c := NewChecker(ix)
		assert.True(t, c.IsPureMethod(reflect.TypeFor[*box](), "Get"))

		var nilChecker *Checker
		assert.False(t, nilChecker.IsPureMethod(reflect.TypeFor[*box](), "Get"))
	})
}

func TestIndex(t *testing.T) {
	ix := newLattice()

	require.True(t, ix.HasType("app.Shape"))
	assert.Equal(t, []string{"app.Square", "app.Shape"}, ix.SuperTypes("app.Wrapper"))
	assert.Equal(t, []string{"app.Circle", "app.Square", "app.Wrapper"}, ix.SubTypes("app.Shape"))
	assert.Len(t, ix.DeclaredMembers("app.Square"), 6)
	assert.Equal(t, 9, ix.Len())
}
