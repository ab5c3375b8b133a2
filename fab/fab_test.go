package fab

import (
	"testing"

	"github.com/parallelmesh/amrx/box"
	"github.com/parallelmesh/amrx/distmap"
	"github.com/parallelmesh/amrx/ivec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b2d(xlo, ylo, xhi, yhi int) box.IndexBox {
	return box.New(ivec.New(2, xlo, ylo), ivec.New(2, xhi, yhi), box.CellType(2))
}

func TestFabSetGet(t *testing.T) {
	f := New[float64](b2d(0, 0, 2, 2), 2)
	f.Set(ivec.New(2, 1, 1), 0, 3.5)
	f.Set(ivec.New(2, 1, 1), 1, -1)
	assert.Equal(t, 3.5, f.At(ivec.New(2, 1, 1), 0))
	assert.Equal(t, float64(-1), f.At(ivec.New(2, 1, 1), 1))
	assert.Equal(t, int64(9), f.NumPts())
}

func TestFabCopyRegionFrom(t *testing.T) {
	src := New[float64](b2d(0, 0, 3, 3), 1)
	forEachIndex(src.Box, func(idx ivec.IntVect) { src.Set(idx, 0, float64(idx.V[0]*10+idx.V[1])) })

	dst := New[float64](b2d(10, 10, 13, 13), 1)
	sbox := b2d(1, 1, 2, 2)
	dbox := b2d(11, 11, 12, 12)
	require.NoError(t, dst.CopyRegionFrom(src, sbox, dbox, 0, 0, 1))

	assert.Equal(t, src.At(ivec.New(2, 1, 1), 0), dst.At(ivec.New(2, 11, 11), 0))
	assert.Equal(t, src.At(ivec.New(2, 2, 2), 0), dst.At(ivec.New(2, 12, 12), 0))
}

func TestFabAddRegionFrom(t *testing.T) {
	src := New[float64](b2d(0, 0, 1, 1), 1)
	src.SetAll(5)
	dst := New[float64](b2d(0, 0, 1, 1), 1)
	dst.SetAll(2)
	require.NoError(t, dst.AddRegionFrom(src, src.Box, dst.Box, 0, 0, 1))
	assert.Equal(t, float64(7), dst.At(ivec.New(2, 0, 0), 0))
}

func TestEBFlagFabDefaults(t *testing.T) {
	f := NewEBFlagFab(b2d(0, 0, 1, 1))
	assert.Equal(t, Regular, f.Flag([3]int{0, 0, 0}, 2))
	assert.Equal(t, 1.0, f.VolFrac([3]int{1, 1, 0}, 2))
	f.SetFlag([3]int{1, 1, 0}, 2, Covered)
	f.SetVolFrac([3]int{1, 1, 0}, 2, 0)
	assert.Equal(t, Covered, f.Flag([3]int{1, 1, 0}, 2))
	assert.Equal(t, 0.0, f.VolFrac([3]int{1, 1, 0}, 2))
}

func TestFabArrayLocalOwnership(t *testing.T) {
	ba := box.NewBoxArray(box.CellType(2), []box.IndexBox{
		b2d(0, 0, 3, 3),
		b2d(4, 0, 7, 3),
	})
	dm := distmap.RoundRobin(2, 2)
	fa, err := NewFabArray[float64](ba, dm, 1, ivec.New(2, 1, 1), DefaultFactory[float64]{}, 0)
	require.NoError(t, err)
	assert.True(t, fa.IsLocal(0))
	assert.False(t, fa.IsLocal(1))
	require.NotNil(t, fa.Local(0))
	assert.Equal(t, b2d(-1, -1, 4, 4), fa.Local(0).Box)

	var visited []int
	require.NoError(t, fa.ForEachLocal(func(i int, f *Fab[float64]) error {
		visited = append(visited, i)
		return nil
	}))
	assert.Equal(t, []int{0}, visited)
	fa.Release()
}

func TestFabArrayRejectsMismatchedLengths(t *testing.T) {
	ba := box.NewBoxArray(box.CellType(2), []box.IndexBox{b2d(0, 0, 1, 1)})
	dm := distmap.RoundRobin(3, 2)
	_, err := NewFabArray[float64](ba, dm, 1, ivec.Zero(2), DefaultFactory[float64]{}, 0)
	assert.Error(t, err)
}
