package amrstat

import (
	"math"

	"github.com/parallelmesh/amrx/box"
	"github.com/parallelmesh/amrx/fab"
	"github.com/parallelmesh/amrx/ivec"
	"github.com/parallelmesh/amrx/xpdesc"
	"github.com/pkg/errors"
)

// Stats holds one component's rank-global reduction results over a
// FabArray's valid region.
type Stats struct {
	Min, Max       float64
	Sum            float64
	Count          int64
	Mean           float64
	VolWeightedAvg float64
}

// Compute returns one Stats per component in [scomp, scomp+ncomp) over
// mf's valid (non-ghost) region, reduced across every rank in pd. vol, if
// non-nil, must share mf's BoxArray/DistributionMap and supplies a
// per-cell volume weight for VolWeightedAvg; if nil every cell weighs 1
// and VolWeightedAvg equals Mean. Every rank must call Compute with the
// same ncomp, since each component's reduction is an unlabeled barrier
// call (xpdesc.ParallelDescriptor has no tagged collective) and ranks
// must therefore issue them in identical order.
func Compute[T fab.Numeric](mf *fab.FabArray[T], scomp, ncomp int, vol *fab.FabArray[T], pd xpdesc.ParallelDescriptor) ([]Stats, error) {
	if scomp < 0 || ncomp < 0 || scomp+ncomp > mf.NComp() {
		return nil, errors.Errorf("amrstat: component range [%d,%d) out of [0,%d)", scomp, scomp+ncomp, mf.NComp())
	}
	dim := mf.BoxArray().Kind().Dim
	ba := mf.BoxArray()

	localMin := make([]float64, ncomp)
	localMax := make([]float64, ncomp)
	localSum := make([]float64, ncomp)
	localWeightedSum := make([]float64, ncomp)
	var localWeight float64
	var localCount int64
	for c := range localMin {
		localMin[c] = math.Inf(1)
		localMax[c] = math.Inf(-1)
	}

	for _, i := range mf.LocalIndices() {
		f := mf.Local(i)
		valid := ba.Box(i)
		var vf *fab.Fab[T]
		if vol != nil {
			vf = vol.Local(i)
		}
		if err := forEachIndex(valid, dim, func(idx ivec.IntVect) error {
			w := 1.0
			if vf != nil {
				w = float64(vf.At(idx, 0))
			}
			localWeight += w
			localCount++
			for c := 0; c < ncomp; c++ {
				v := float64(f.At(idx, scomp+c))
				if v < localMin[c] {
					localMin[c] = v
				}
				if v > localMax[c] {
					localMax[c] = v
				}
				localSum[c] += v
				localWeightedSum[c] += v * w
			}
			return nil
		}); err != nil {
			return nil, err
		}
	}

	globalWeight := pd.ReduceRealSum(localWeight)
	globalCount := pd.ReduceRealSum(float64(localCount))

	out := make([]Stats, ncomp)
	for c := range out {
		min := pd.ReduceRealMin(localMin[c])
		max := pd.ReduceRealMax(localMax[c])
		sum := pd.ReduceRealSum(localSum[c])
		weightedSum := pd.ReduceRealSum(localWeightedSum[c])

		var mean, weightedAvg float64
		if globalCount > 0 {
			mean = sum / globalCount
		}
		if globalWeight > 0 {
			weightedAvg = weightedSum / globalWeight
		}
		out[c] = Stats{Min: min, Max: max, Sum: sum, Count: int64(globalCount), Mean: mean, VolWeightedAvg: weightedAvg}
	}
	return out, nil
}

// forEachIndex walks every index point of a D-dimensional box, fastest
// axis first; kept local rather than exported from fab, the same
// tradeoff comtag/fluxreg/ebutil make.
func forEachIndex(b box.IndexBox, dim int, fn func(ivec.IntVect) error) error {
	if b.Empty() {
		return nil
	}
	idx := b.Lo
	for {
		if err := fn(idx); err != nil {
			return err
		}
		d := 0
		for d < dim {
			idx.V[d]++
			if idx.V[d] <= b.Hi.V[d] {
				break
			}
			idx.V[d] = b.Lo.V[d]
			d++
		}
		if d == dim {
			return nil
		}
	}
}
