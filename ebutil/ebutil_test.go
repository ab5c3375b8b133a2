package ebutil

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

// TestSetCoveredScenarioE implements spec.md §8 Scenario E: valid cells
// hold {2,3,5,7}, the rank-global min is 2, and covered cells are
// overwritten to 2 while regular cells are unchanged.
func TestSetCoveredScenarioE(t *testing.T) {
	ba := box.NewBoxArray(box.CellType(2), []box.IndexBox{b2d(0, 0, 1, 1)})
	dm := distmap.RoundRobin(1, 1)
	mf, err := fab.NewFabArray[float64](ba, dm, 1, ivec.Zero(2), fab.DefaultFactory[float64]{}, 0)
	require.NoError(t, err)

	eb := NewEBData(mf)
	f := mf.Local(0)
	ef := eb.Local(0)

	// (0,0)=2 (0,1)=3 (1,0)=5 (1,1)=7, (1,1) is covered.
	f.Set(ivec.New(2, 0, 0), 0, 2)
	f.Set(ivec.New(2, 0, 1), 0, 3)
	f.Set(ivec.New(2, 1, 0), 0, 5)
	f.Set(ivec.New(2, 1, 1), 0, 7)
	ef.SetFlag([3]int{1, 1, 0}, 2, fab.Covered)

	require.NoError(t, SetCovered(mf, eb, 0, 1, &xpdesc.Single{}))

	assert.Equal(t, float64(2), f.At(ivec.New(2, 0, 0), 0))
	assert.Equal(t, float64(3), f.At(ivec.New(2, 0, 1), 0))
	assert.Equal(t, float64(5), f.At(ivec.New(2, 1, 0), 0))
	assert.Equal(t, float64(2), f.At(ivec.New(2, 1, 1), 0))
}

func TestSetVolumeFraction(t *testing.T) {
	domain := b2d(0, 0, 1, 1)
	ba := box.NewBoxArray(box.CellType(2), []box.IndexBox{domain})
	dm := distmap.RoundRobin(1, 1)
	mf, err := fab.NewFabArray[float64](ba, dm, 1, ivec.Zero(2), fab.DefaultFactory[float64]{}, 0)
	require.NoError(t, err)

	eb := NewEBData(mf)
	ef := eb.Local(0)
	ef.SetFlag([3]int{0, 0, 0}, 2, fab.Covered)
	ef.SetVolFrac([3]int{0, 0, 0}, 2, 0.0)
	ef.SetFlag([3]int{1, 0, 0}, 2, fab.SingleValued)
	ef.SetVolFrac([3]int{1, 0, 0}, 2, 0.25)
	// (0,1) and (1,1) stay the NewEBFlagFab default: Regular, volFrac 1.0.

	require.NoError(t, SetVolumeFraction(mf, eb, domain))

	f := mf.Local(0)
	assert.Equal(t, float64(0), f.At(ivec.New(2, 0, 0), 0))
	assert.Equal(t, float64(0.25), f.At(ivec.New(2, 1, 0), 0))
	assert.Equal(t, float64(1), f.At(ivec.New(2, 0, 1), 0))
	assert.Equal(t, float64(1), f.At(ivec.New(2, 1, 1), 0))
}

// buildAverageDownFixture sets up a single coarse cell [0,0] refined by 2
// into fine cells (0,0),(1,0),(0,1),(1,1), with (1,1) covered.
func buildAverageDownFixture(t *testing.T) (fine, crse, volFine, vfracFine *fab.FabArray[float64], eb *EBData) {
	fba := box.NewBoxArray(box.CellType(2), []box.IndexBox{b2d(0, 0, 1, 1)})
	cba := box.NewBoxArray(box.CellType(2), []box.IndexBox{b2d(0, 0, 0, 0)})
	fdm := distmap.RoundRobin(1, 1)
	cdm := distmap.RoundRobin(1, 1)

	var err error
	fine, err = fab.NewFabArray[float64](fba, fdm, 1, ivec.Zero(2), fab.DefaultFactory[float64]{}, 0)
	require.NoError(t, err)
	crse, err = fab.NewFabArray[float64](cba, cdm, 1, ivec.Zero(2), fab.DefaultFactory[float64]{}, 0)
	require.NoError(t, err)
	volFine, err = fab.NewFabArray[float64](fba, fdm, 1, ivec.Zero(2), fab.DefaultFactory[float64]{}, 0)
	require.NoError(t, err)
	vfracFine, err = fab.NewFabArray[float64](fba, fdm, 1, ivec.Zero(2), fab.DefaultFactory[float64]{}, 0)
	require.NoError(t, err)

	volFine.Local(0).SetAll(1.0)
	vfracFine.Local(0).SetAll(1.0)

	eb = NewEBData(fine)
	ef := eb.Local(0)
	ef.SetFlag([3]int{1, 1, 0}, 2, fab.Covered)
	vfracFine.Local(0).Set(ivec.New(2, 1, 1), 0, 0.0)

	ff := fine.Local(0)
	ff.Set(ivec.New(2, 0, 0), 0, 2)
	ff.Set(ivec.New(2, 1, 0), 0, 4)
	ff.Set(ivec.New(2, 0, 1), 0, 6)
	ff.Set(ivec.New(2, 1, 1), 0, 100) // covered, must not contribute

	return fine, crse, volFine, vfracFine, eb
}

func TestAverageDownSkipsCoveredChildren(t *testing.T) {
	fine, crse, volFine, vfracFine, eb := buildAverageDownFixture(t)
	require.NoError(t, AverageDown(fine, crse, volFine, vfracFine, eb, 0, 1, 2))

	// (2+4+6)/3 = 4, the covered child's 100 excluded from both sums.
	assert.Equal(t, float64(4), crse.Local(0).At(ivec.New(2, 0, 0), 0))
}

func TestAverageDownRejectsMultiValued(t *testing.T) {
	fine, crse, volFine, vfracFine, eb := buildAverageDownFixture(t)
	eb.Local(0).SetFlag([3]int{0, 0, 0}, 2, fab.MultiValued)

	err := AverageDown(fine, crse, volFine, vfracFine, eb, 0, 1, 2)
	assert.Error(t, err)
}
