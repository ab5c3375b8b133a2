package comtag

import (
	"testing"

	"github.com/parallelmesh/amrx/box"
	"github.com/parallelmesh/amrx/distmap"
	"github.com/parallelmesh/amrx/fab"
	"github.com/parallelmesh/amrx/ivec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b2d(xlo, ylo, xhi, yhi int) box.IndexBox {
	return box.New(ivec.New(2, xlo, ylo), ivec.New(2, xhi, yhi), box.CellType(2))
}

func twoTileBA() *box.BoxArray {
	return box.NewBoxArray(box.CellType(2), []box.IndexBox{
		b2d(0, 0, 3, 3),
		b2d(4, 0, 7, 3),
	})
}

func TestBuildFBAbuttingTiles(t *testing.T) {
	ba := twoTileBA()
	dm := distmap.RoundRobin(2, 2) // tile 0 -> rank 0, tile 1 -> rank 1
	nghost := ivec.New(2, 1, 1)
	period := box.NonPeriodic(2)

	plan0 := BuildFB(ba, dm, nghost, period, false, false, 0)
	require.Len(t, plan0.LocTags, 0)
	require.Len(t, plan0.SndTags[1], 1)
	require.Len(t, plan0.RcvTags[1], 1)
	assert.True(t, plan0.ThreadsafeRcv)

	// rank 0 sends its x=3 column to tile 1's ghost column at x=3.
	snd := plan0.SndTags[1][0]
	assert.Equal(t, 0, snd.SrcIndex)
	assert.Equal(t, 1, snd.DstIndex)
}

func TestBuildFBSelfExclusion(t *testing.T) {
	ba := box.NewBoxArray(box.CellType(2), []box.IndexBox{b2d(0, 0, 3, 3)})
	dm := distmap.RoundRobin(1, 1)
	plan := BuildFB(ba, dm, ivec.New(2, 1, 1), box.NonPeriodic(2), false, false, 0)
	for _, tag := range plan.LocTags {
		assert.False(t, tag.SrcIndex == tag.DstIndex && tag.SBox.Equal(ba.Box(0)))
	}
}

func TestBuildFBPeriodicWrap(t *testing.T) {
	ba := box.NewBoxArray(box.CellType(2), []box.IndexBox{b2d(0, 0, 3, 3)})
	dm := distmap.RoundRobin(1, 1)
	period := box.NewPeriodicity(ivec.New(2, 4, 0)) // periodic in x only, period length 4
	plan := BuildFB(ba, dm, ivec.New(2, 1, 1), period, false, false, 0)
	// one periodic self-fill tag per x-ghost side (left ghost wraps from
	// the box's right column, right ghost wraps from its left column).
	require.Len(t, plan.LocTags, 2)
	for _, tag := range plan.LocTags {
		assert.Equal(t, 0, tag.SrcIndex)
		assert.Equal(t, 0, tag.DstIndex)
	}
}

func TestPlanCacheReturnsSamePointer(t *testing.T) {
	ba := twoTileBA()
	dm := distmap.RoundRobin(2, 2)
	period := box.NonPeriodic(2)
	nghost := ivec.New(2, 1, 1)
	p1 := GetFB(ba, dm, nghost, period, false, false, 0)
	p2 := GetFB(ba, dm, nghost, period, false, false, 0)
	assert.Same(t, p1, p2)
}

func TestPackUnpackRoundtrip(t *testing.T) {
	src := fab.New[float64](b2d(0, 0, 3, 3), 2)
	forEachIndex(src.Box, func(idx ivec.IntVect) {
		src.Set(idx, 0, float64(idx.V[0]))
		src.Set(idx, 1, float64(idx.V[1]))
	})
	sbox := b2d(1, 1, 2, 2)
	buf := PackRegion(nil, src, sbox, 0, 2)
	assert.EqualValues(t, RegionBytes[float64](sbox, 2), len(buf))

	dst := fab.New[float64](b2d(10, 10, 11, 11), 2)
	n := UnpackRegion(buf, dst, dst.Box, 0, 2)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, src.At(ivec.New(2, 1, 1), 0), dst.At(ivec.New(2, 10, 10), 0))
	assert.Equal(t, src.At(ivec.New(2, 2, 2), 1), dst.At(ivec.New(2, 11, 11), 1))
}

func TestAddUnpackRegion(t *testing.T) {
	src := fab.New[float64](b2d(0, 0, 1, 1), 1)
	src.SetAll(3)
	buf := PackRegion(nil, src, src.Box, 0, 1)
	dst := fab.New[float64](b2d(0, 0, 1, 1), 1)
	dst.SetAll(2)
	AddUnpackRegion(buf, dst, dst.Box, 0, 1)
	assert.Equal(t, float64(5), dst.At(ivec.New(2, 0, 0), 0))
}

func TestCompressPayloadRoundtrip(t *testing.T) {
	raw := make([]byte, 8<<10)
	for i := range raw {
		raw[i] = byte(i)
	}
	packed := CompressPayload(raw)
	out, err := DecompressPayload(packed)
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestSelectCompressionThresholds(t *testing.T) {
	assert.Equal(t, CompressNone, SelectCompression(100))
	assert.Equal(t, CompressSnappy, SelectCompression(5<<10))
	assert.Equal(t, CompressZstd, SelectCompression(300<<10))
}

func TestChecksumDeterministic(t *testing.T) {
	data := []byte("ghost cell payload")
	assert.Equal(t, Checksum(data), Checksum(data))
}
