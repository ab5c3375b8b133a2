package fluxreg

import (
	"testing"

	"github.com/parallelmesh/amrx/box"
	"github.com/parallelmesh/amrx/distmap"
	"github.com/parallelmesh/amrx/fab"
	"github.com/parallelmesh/amrx/ivec"
	"github.com/parallelmesh/amrx/xpdesc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b2d(xlo, ylo, xhi, yhi int) box.IndexBox {
	return box.New(ivec.New(2, xlo, ylo), ivec.New(2, xhi, yhi), box.CellType(2))
}

// buildTestRegister sets up a two-fine-box, two-coarse-box topology
// equivalent to spec.md §8's Scenario D: a coarse box ("right") borders a
// fine-covered region ("box0") along its low-x face. A second fine box
// ("box1") sits just across box0's low-x side purely to cancel that side
// as a genuine fine/fine interface, so box0 has exactly one coarse/fine
// face in dir 0 (its high-x side), matching FlashFluxRegister's "at most
// one fine face per direction" invariant. A second coarse box ("left")
// is fully covered by box0 and exercises the covered-box no-faces path.
func buildTestRegister(t *testing.T) *FlashFluxRegister[float64] {
	box0 := b2d(0, 0, 3, 7)
	box1 := b2d(-4, 0, -1, 7)
	fba := box.NewBoxArray(box.CellType(2), []box.IndexBox{box0, box1})

	left := b2d(0, 0, 1, 3)
	right := b2d(2, 0, 3, 3)
	cba := box.NewBoxArray(box.CellType(2), []box.IndexBox{left, right})

	fdm := distmap.RoundRobin(2, 1)
	cdm := distmap.RoundRobin(2, 1)

	reg, err := Define[float64](fba, cba, fdm, cdm, box.NonPeriodic(2), box.NonPeriodic(2), 2, 1, 0)
	require.NoError(t, err)
	return reg
}

func TestFlashFluxRegisterStoreCommunicateLoad(t *testing.T) {
	reg := buildTestRegister(t)

	// f(j) = j over the whole fine face, as in spec.md §8 Scenario D.
	fineFlux := fab.New[float64](box.New(ivec.New(2, 0, 0), ivec.New(2, 7, 7), box.FaceType(2, 0)), 1)
	for x := 0; x <= 7; x++ {
		for y := 0; y <= 7; y++ {
			fineFlux.Set(ivec.New(2, x, y), 0, float64(y))
		}
	}

	require.NoError(t, reg.Store(0, 0, fineFlux, 1.0))

	pd := &xpdesc.Single{}
	require.NoError(t, reg.Communicate(pd))

	dest := fab.New[float64](box.New(ivec.New(2, 2, 0), ivec.New(2, 2, 3), box.FaceType(2, 0)), 1)
	require.NoError(t, reg.Load(1, 0, dest, 1.0))

	for j := 0; j <= 3; j++ {
		want := float64(2*j) + 0.5
		assert.Equal(t, want, dest.At(ivec.New(2, 2, j), 0))
	}
}

func TestFlashFluxRegisterStoreScale(t *testing.T) {
	reg := buildTestRegister(t)

	fineFlux := fab.New[float64](box.New(ivec.New(2, 0, 0), ivec.New(2, 7, 7), box.FaceType(2, 0)), 1)
	for x := 0; x <= 7; x++ {
		for y := 0; y <= 7; y++ {
			fineFlux.Set(ivec.New(2, x, y), 0, float64(y))
		}
	}
	require.NoError(t, reg.Store(0, 0, fineFlux, 2.0))

	pd := &xpdesc.Single{}
	require.NoError(t, reg.Communicate(pd))

	dest := fab.New[float64](box.New(ivec.New(2, 2, 0), ivec.New(2, 2, 3), box.FaceType(2, 0)), 1)
	require.NoError(t, reg.Load(1, 0, dest, 1.0))

	// sf = scale/2^(D-1) = 2/2 = 1, so Store writes the unscaled sum
	// f(2j)+f(2j+1) = 4j+1 instead of the scale=1 case's average.
	for j := 0; j <= 3; j++ {
		want := float64(4*j + 1)
		assert.Equal(t, want, dest.At(ivec.New(2, 2, j), 0))
	}
}

func TestFlashFluxRegisterStoreUnownedIsNoop(t *testing.T) {
	reg := buildTestRegister(t)
	fineFlux := fab.New[float64](box.New(ivec.New(2, 0, 0), ivec.New(2, 7, 7), box.FaceType(2, 0)), 1)
	assert.NoError(t, reg.Store(99, 0, fineFlux, 1.0))
}

func TestFlashFluxRegisterLoadCoveredCoarseBoxIsNoop(t *testing.T) {
	reg := buildTestRegister(t)
	dest := fab.New[float64](box.New(ivec.New(2, 0, 0), ivec.New(2, 0, 3), box.FaceType(2, 0)), 1)
	// left (gi=0) is fully covered by fine and has no coarse/fine faces
	// at all; Load must leave dest untouched.
	require.NoError(t, reg.Load(0, 0, dest, 1.0))
	for j := 0; j <= 3; j++ {
		assert.Equal(t, float64(0), dest.At(ivec.New(2, 0, j), 0))
	}
}
