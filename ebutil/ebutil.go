package ebutil

import (
	"math"

	"github.com/parallelmesh/amrx/box"
	"github.com/parallelmesh/amrx/fab"
	"github.com/parallelmesh/amrx/ivec"
	"github.com/parallelmesh/amrx/xpdesc"
	"github.com/pkg/errors"
)

// EBData is the per-tile EB flag data GLOSSARY's "EB Factory" collaborator
// supplies alongside a FabArray: one fab.EBFlagFab per locally owned tile,
// covering the same (grown) box as the numeric Fab it accompanies.
type EBData struct {
	local map[int]*fab.EBFlagFab
}

// NewEBData allocates an all-Regular, volume-fraction-1 EBData matching
// fa's local tile shapes (including ghost cells). Callers mutate the
// returned flags/volume fractions in place to describe actual cut-cell
// geometry before calling SetCovered/SetVolumeFraction/AverageDown.
func NewEBData[T fab.Numeric](fa *fab.FabArray[T]) *EBData {
	d := &EBData{local: map[int]*fab.EBFlagFab{}}
	for _, i := range fa.LocalIndices() {
		d.local[i] = fab.NewEBFlagFab(fa.Local(i).Box)
	}
	return d
}

// Local returns the EB flag tile for global index i, or nil if i is not
// locally owned.
func (d *EBData) Local(i int) *fab.EBFlagFab { return d.local[i] }

// SetCovered implements spec.md §4.5's set_covered: components
// [icomp, icomp+ncomp) of mf's covered cells are replaced by the
// rank-global minimum of the same component over mf's non-covered cells.
func SetCovered[T fab.Numeric](mf *fab.FabArray[T], eb *EBData, icomp, ncomp int, pd xpdesc.ParallelDescriptor) error {
	if icomp < 0 || ncomp < 0 || icomp+ncomp > mf.NComp() {
		return errors.Errorf("ebutil: SetCovered component range [%d,%d) out of [0,%d)", icomp, icomp+ncomp, mf.NComp())
	}
	dim := mf.BoxArray().Kind().Dim

	mins := make([]float64, ncomp)
	for c := range mins {
		mins[c] = math.Inf(1)
	}
	for _, i := range mf.LocalIndices() {
		f := mf.Local(i)
		ef := eb.Local(i)
		if ef == nil {
			continue
		}
		if err := forEachIndex(f.Box, dim, func(idx ivec.IntVect) error {
			if ef.Flag(idx.V, dim) == fab.Covered {
				return nil
			}
			for c := 0; c < ncomp; c++ {
				v := float64(f.At(idx, icomp+c))
				if v < mins[c] {
					mins[c] = v
				}
			}
			return nil
		}); err != nil {
			return err
		}
	}

	for c := range mins {
		mins[c] = pd.ReduceRealMin(mins[c])
	}

	for _, i := range mf.LocalIndices() {
		f := mf.Local(i)
		ef := eb.Local(i)
		if ef == nil {
			continue
		}
		if err := forEachIndex(f.Box, dim, func(idx ivec.IntVect) error {
			if ef.Flag(idx.V, dim) != fab.Covered {
				return nil
			}
			for c := 0; c < ncomp; c++ {
				f.Set(idx, icomp+c, T(mins[c]))
			}
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

// SetVolumeFraction implements spec.md §4.5's set_volume_fraction: a
// 1-component FabArray filled to 1.0 in regular cells, 0.0 in covered
// cells, and the stored per-VoF volume fraction in cut cells, over each
// tile's grown region clipped to domain.
func SetVolumeFraction[T fab.Numeric](mf *fab.FabArray[T], eb *EBData, domain box.IndexBox) error {
	if mf.NComp() != 1 {
		return errors.Errorf("ebutil: SetVolumeFraction requires a 1-component FabArray, got %d", mf.NComp())
	}
	dim := domain.Lo.Dim
	for _, i := range mf.LocalIndices() {
		f := mf.Local(i)
		ef := eb.Local(i)
		if ef == nil {
			continue
		}
		region := f.Box.Intersect(domain)
		if err := forEachIndex(region, dim, func(idx ivec.IntVect) error {
			var v float64
			switch ef.Flag(idx.V, dim) {
			case fab.Regular:
				v = 1.0
			case fab.Covered:
				v = 0.0
			default:
				v = ef.VolFrac(idx.V, dim)
			}
			f.Set(idx, 0, T(v))
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

// AverageDown implements spec.md §4.5's average_down: for each coarse
// tile, average the ratio^dim fine children of every coarse cell,
// dispatching on the children's EB type. fine and crse must share the
// same local index set, with fine.Local(i).Box covering
// crse.Local(i).Box.Refine(ratio) (the common case of a fine FabArray
// built directly from the coarse BoxArray's refinement, before any
// redistribution) — a structural assumption this function does not
// itself verify. volFine/vfracFine are 1-component FabArrays over fine's
// layout holding per-cell volume and volume-fraction weights.
func AverageDown[T fab.Numeric](fine, crse *fab.FabArray[T], volFine, vfracFine *fab.FabArray[T], ebFine *EBData, scomp, ncomp, ratio int) error {
	dim := crse.BoxArray().Kind().Dim

	for _, ci := range crse.LocalIndices() {
		cf := crse.Local(ci)
		ff := fine.Local(ci)
		ef := ebFine.Local(ci)
		if ff == nil || ef == nil {
			continue
		}
		vf := volFine.Local(ci)
		vfrac := vfracFine.Local(ci)

		if err := forEachIndex(cf.Box, dim, func(cidx ivec.IntVect) error {
			children := childIndices(cidx, dim, ratio)

			for _, fc := range children {
				if ef.Flag(fc.V, dim) == fab.MultiValued {
					return errors.Errorf("ebutil: AverageDown: multi-valued EB cell at %v not supported", fc)
				}
			}

			for c := 0; c < ncomp; c++ {
				var num, den float64
				for _, fc := range children {
					if ef.Flag(fc.V, dim) == fab.Covered {
						continue
					}
					w := float64(vf.At(fc, 0)) * float64(vfrac.At(fc, 0))
					num += float64(ff.At(fc, scomp+c)) * w
					den += w
				}
				var avg float64
				if den > 0 {
					avg = num / den
				}
				cf.Set(cidx, scomp+c, T(avg))
			}
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

// childIndices enumerates the ratio^dim fine cells refining coarse cell
// cidx, in mixed-radix order (axis 0 fastest).
func childIndices(cidx ivec.IntVect, dim, ratio int) []ivec.IntVect {
	n := 1
	for i := 0; i < dim; i++ {
		n *= ratio
	}
	out := make([]ivec.IntVect, 0, n)
	digits := make([]int, dim)
	for {
		fc := cidx
		for d := 0; d < dim; d++ {
			fc.V[d] = cidx.V[d]*ratio + digits[d]
		}
		out = append(out, fc)

		d := 0
		for d < dim {
			digits[d]++
			if digits[d] < ratio {
				break
			}
			digits[d] = 0
			d++
		}
		if d == dim {
			break
		}
	}
	return out
}

// forEachIndex walks every index point of a D-dimensional box, fastest
// axis first; kept local rather than exported from fab, the same
// tradeoff comtag and fluxreg make.
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
