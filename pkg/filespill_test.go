package pkg

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spilledReport struct {
	Test       string
	Assertions []string
	Killed     []int
	Score      float64
}

func newSpill[T any](t *testing.T, opts ...SpillOption) FileSpill[T] {
	t.Helper()

	spill, err := NewFileSpill[T](append([]SpillOption{WithDir(t.TempDir())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = spill.Close() })

	return spill
}

func TestFileSpill(t *testing.T) {
	t.Run("creates file in configured directory", func(t *testing.T) {
		dir := t.TempDir()
		spill, err := NewFileSpill[int](WithDir(dir))
		require.NoError(t, err)
		defer spill.Close()

		assert.Equal(t, dir, filepath.Dir(spill.Path()))
		assert.FileExists(t, spill.Path())
	})

	t.Run("append and get", func(t *testing.T) {
		spill := newSpill[string](t)

		require.NoError(t, spill.Append("first"))
		require.NoError(t, spill.Append("second"))

		first, err := spill.Get(0)
		require.NoError(t, err)
		assert.Equal(t, "first", first)

		second, err := spill.Get(1)
		require.NoError(t, err)
		assert.Equal(t, "second", second)

		missing, err := spill.Get(3)
		require.Error(t, err)
		assert.Empty(t, missing)
	})

	t.Run("append batch keeps order and length", func(t *testing.T) {
		spill := newSpill[int](t)
		assert.Equal(t, uint64(0), spill.Len())

		require.NoError(t, spill.AppendBatch([]int{3, 1, 2}))
		require.NoError(t, spill.Append(-4))
		assert.Equal(t, uint64(4), spill.Len())

		var got []int
		require.NoError(t, spill.Range(func(_ uint64, item int) error {
			got = append(got, item)
			return nil
		}))
		assert.Equal(t, []int{3, 1, 2, -4}, got)
	})

	t.Run("range decodes each item independently", func(t *testing.T) {
		spill := newSpill[spilledReport](t)

		require.NoError(t, spill.Append(spilledReport{Test: "a", Assertions: []string{"x", "y"}, Killed: []int{1}, Score: 0.5}))
		require.NoError(t, spill.Append(spilledReport{Test: "b"}))

		var got []spilledReport
		require.NoError(t, spill.Range(func(_ uint64, item spilledReport) error {
			got = append(got, item)
			return nil
		}))

		require.Len(t, got, 2)
		assert.Equal(t, []int{1}, got[0].Killed)
		assert.Empty(t, got[1].Assertions)
		assert.Empty(t, got[1].Killed)
	})

	t.Run("range stops on callback error", func(t *testing.T) {
		spill := newSpill[int](t)
		require.NoError(t, spill.AppendBatch([]int{1, 2, 3}))

		stop := errors.New("stop")
		visited := 0

		err := spill.Range(func(index uint64, _ int) error {
			visited++
			if index == 1 {
				return stop
			}

			return nil
		})

		require.ErrorIs(t, err, stop)
		assert.Equal(t, 2, visited)
	})

	t.Run("empty spill ranges over nothing", func(t *testing.T) {
		spill := newSpill[int](t)

		called := false
		require.NoError(t, spill.Range(func(uint64, int) error {
			called = true
			return nil
		}))
		assert.False(t, called)

		_, err := spill.Get(0)
		require.Error(t, err)
	})

	t.Run("float special values round trip", func(t *testing.T) {
		spill := newSpill[float64](t)
		require.NoError(t, spill.AppendBatch([]float64{math.Inf(1), math.Inf(-1), math.NaN()}))

		v, err := spill.Get(0)
		require.NoError(t, err)
		assert.True(t, math.IsInf(v, 1))

		v, err = spill.Get(2)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(v))
	})

	t.Run("close removes file and rejects further use", func(t *testing.T) {
		spill, err := NewFileSpill[int](WithDir(t.TempDir()))
		require.NoError(t, err)
		require.NoError(t, spill.Append(1))

		require.NoError(t, spill.Close())
		require.NoError(t, spill.Close())

		_, statErr := os.Stat(spill.Path())
		assert.True(t, os.IsNotExist(statErr))
		assert.ErrorIs(t, spill.Append(2), ErrSpillClosed)
		assert.ErrorIs(t, spill.Range(func(uint64, int) error { return nil }), ErrSpillClosed)
	})

	t.Run("keep leaves file after close", func(t *testing.T) {
		spill, err := NewFileSpill[int](WithDir(t.TempDir()), WithKeep())
		require.NoError(t, err)
		require.NoError(t, spill.Close())

		assert.FileExists(t, spill.Path())
	})
}
