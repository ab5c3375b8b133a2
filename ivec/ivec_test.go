package ivec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArith(t *testing.T) {
	a := New(2, 1, 2)
	b := New(2, 3, -1)
	assert.Equal(t, New(2, 4, 1), a.Add(b))
	assert.Equal(t, New(2, -2, 3), a.Sub(b))
	assert.Equal(t, New(2, 1, -1), a.Min(b))
	assert.Equal(t, New(2, 3, 2), a.Max(b))
	assert.Equal(t, New(2, 2, 4), a.Scale(2))
}

func TestDimMismatchPanics(t *testing.T) {
	a := New(2, 1, 1)
	b := New(3, 1, 1, 1)
	assert.Panics(t, func() { a.Add(b) })
}

func TestCoarsenRefineRoundtrip(t *testing.T) {
	a := New(3, 5, -5, 0)
	r := a.Refine(2)
	require.Equal(t, New(3, 10, -10, 0), r)
	assert.Equal(t, a, r.Coarsen(2))
}

func TestCoarsenNegativeFloors(t *testing.T) {
	// -5 coarsened by 2 must floor towards -infinity, i.e. -3, not -2,
	// so that grow-by-one-then-coarsen nests correctly at negative indices.
	a := New(1, -5)
	assert.Equal(t, New(1, -3), a.Coarsen(2))
}

func TestAllLEGE(t *testing.T) {
	a := New(2, 1, 1)
	b := New(2, 2, 2)
	assert.True(t, a.AllLE(b))
	assert.False(t, a.AllGE(b))
	assert.True(t, b.AllGE(a))
}

func TestIsZeroEqual(t *testing.T) {
	assert.True(t, Zero(3).IsZero())
	assert.True(t, New(3, 0, 0, 0).Equal(Zero(3)))
	assert.False(t, New(3, 1, 0, 0).Equal(Zero(3)))
}

func TestString(t *testing.T) {
	assert.Equal(t, "(1,2,3)", New(3, 1, 2, 3).String())
}
