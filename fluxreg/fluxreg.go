package fluxreg

import (
	"github.com/parallelmesh/amrx/box"
	"github.com/parallelmesh/amrx/distmap"
	"github.com/parallelmesh/amrx/exchange"
	"github.com/parallelmesh/amrx/fab"
	"github.com/parallelmesh/amrx/ivec"
	"github.com/parallelmesh/amrx/xpdesc"
	"github.com/pkg/errors"
)

// faceRef is an (owning FabArray, local position) pair, the "arena+index"
// resolution spec.md §9 calls for in place of a raw pointer into a
// per-direction face FabArray: fine_map/crse_map in the original C++ hold
// FArrayBox* directly, which this module avoids since the referenced
// FabArray can be redefined independently of the register holding the
// reference.
type faceRef struct {
	valid bool
	pos   int
}

// FlashFluxRegister maintains, per direction, face-centered coarse-side
// fluxes that match the arithmetic average of the coincident fine-face
// fluxes, per spec.md §4.4. T is almost always float32/float64; the
// generic bound exists so the register can be used in integer-flux test
// harnesses without a second implementation.
type FlashFluxRegister[T fab.Numeric] struct {
	dim   int
	ncomp int
	ratio int

	fineGrids, crseGrids         *box.BoxArray
	fineDM, crseDM               *distmap.DistributionMap
	fineFluxes, crseFluxes       [ivec.MaxDim]*fab.FabArray[T]
	crsePeriod                   box.Periodicity
	myRank                       int

	// fineMap[gi][dir] resolves to a position in fineFluxes[dir]'s
	// BoxArray, valid only when this rank owns that face.
	fineMap map[int][ivec.MaxDim]faceRef
	// crseMap[gi][dir*2+side] resolves to a position in
	// crseFluxes[dir]'s BoxArray.
	crseMap map[int][2 * ivec.MaxDim]faceRef
}

// Define builds a FlashFluxRegister between a fine BoxArray/DistributionMap
// pair and a coarse one, per spec.md §4.4's construction steps. ratio must
// be 2 in every dimension; any other refinement ratio is a structural
// precondition violation the caller must not make.
func Define[T fab.Numeric](fba, cba *box.BoxArray, fdm, cdm *distmap.DistributionMap, finePeriod, crsePeriod box.Periodicity, ratio, ncomp, myRank int) (*FlashFluxRegister[T], error) {
	if ratio != 2 {
		return nil, errors.Errorf("fluxreg: refinement ratio %d != 2", ratio)
	}
	dim := fba.Kind().Dim
	if !fba.Kind().CellCentered() || !cba.Kind().CellCentered() {
		return nil, errors.Errorf("fluxreg: fine and coarse grids must be cell-centered")
	}

	r := &FlashFluxRegister[T]{
		dim: dim, ncomp: ncomp, ratio: ratio,
		fineGrids: fba, crseGrids: cba, fineDM: fdm, crseDM: cdm,
		crsePeriod: crsePeriod, myRank: myRank,
		fineMap: make(map[int][ivec.MaxDim]faceRef),
		crseMap: make(map[int][2 * ivec.MaxDim]faceRef),
	}

	fineBoxes, fineOwner, fineSrcGlobal := r.collectFineFaces(fba, fdm, finePeriod, ratio)
	for dir := 0; dir < dim; dir++ {
		if len(fineBoxes[dir]) == 0 {
			continue
		}
		ba := box.NewBoxArray(box.FaceType(dim, dir), fineBoxes[dir])
		dm, err := distmap.New(fineOwner[dir], fdm.NProcs())
		if err != nil {
			return nil, errors.Wrapf(err, "fluxreg: fine face DistributionMap for dir %d", dir)
		}
		fa, err := fab.NewFabArray[T](ba, dm, ncomp, ivec.Zero(dim), fab.DefaultFactory[T]{}, myRank)
		if err != nil {
			return nil, errors.Wrapf(err, "fluxreg: fine face FabArray for dir %d", dir)
		}
		r.fineFluxes[dir] = fa
		for pos, gi := range fineSrcGlobal[dir] {
			if fdm.Owner(gi) != myRank {
				continue
			}
			e := r.fineMap[gi]
			e[dir] = faceRef{valid: true, pos: pos}
			r.fineMap[gi] = e
		}
	}

	crseBoxes, crseOwner, crseSrcGlobal, crseOrient := r.collectCrseFaces(fba, cba, cdm, crsePeriod, ratio)
	for dir := 0; dir < dim; dir++ {
		if len(crseBoxes[dir]) == 0 {
			continue
		}
		ba := box.NewBoxArray(box.FaceType(dim, dir), crseBoxes[dir])
		dm, err := distmap.New(crseOwner[dir], cdm.NProcs())
		if err != nil {
			return nil, errors.Wrapf(err, "fluxreg: coarse face DistributionMap for dir %d", dir)
		}
		fa, err := fab.NewFabArray[T](ba, dm, ncomp, ivec.Zero(dim), fab.DefaultFactory[T]{}, myRank)
		if err != nil {
			return nil, errors.Wrapf(err, "fluxreg: coarse face FabArray for dir %d", dir)
		}
		r.crseFluxes[dir] = fa
		for pos, gi := range crseSrcGlobal[dir] {
			if cdm.Owner(gi) != myRank {
				continue
			}
			side := crseOrient[dir][pos]
			e := r.crseMap[gi]
			e[dir*2+int(side)] = faceRef{valid: true, pos: pos}
			r.crseMap[gi] = e
		}
	}

	return r, nil
}

// collectFineFaces implements spec.md §4.4 step 1: every face of every
// fine box that does not coincide, under any periodic shift, with a face
// of another fine box is a coarse/fine boundary face.
func (r *FlashFluxRegister[T]) collectFineFaces(fba *box.BoxArray, fdm *distmap.DistributionMap, period box.Periodicity, ratio int) (boxes [ivec.MaxDim][]box.IndexBox, owner [ivec.MaxDim][]int, srcGlobal [ivec.MaxDim][]int) {
	dim := fba.Kind().Dim
	shifts := period.ShiftIntVect()

	for i := 0; i < fba.Len(); i++ {
		bi := fba.Box(i)
		for _, o := range box.Orientations(dim) {
			face := box.BdryNode(bi, o.Dir, o.Side)
			if facesCoincide(fba, i, o.Dir, face, shifts) {
				continue
			}
			coarsened := face.Coarsen(ratio)
			boxes[o.Dir] = append(boxes[o.Dir], coarsened)
			owner[o.Dir] = append(owner[o.Dir], fdm.Owner(i))
			srcGlobal[o.Dir] = append(srcGlobal[o.Dir], i)
		}
	}
	return boxes, owner, srcGlobal
}

// facesCoincide reports whether face (a boundary face of fine box i along
// dir) exactly matches a face of any other fine box (or, under a nonzero
// periodic shift, box i itself), meaning it is a fine/fine interface
// rather than a coarse/fine one.
func facesCoincide(fba *box.BoxArray, i, dir int, face box.IndexBox, shifts []ivec.IntVect) bool {
	for _, shift := range shifts {
		for j := 0; j < fba.Len(); j++ {
			if j == i && shift.IsZero() {
				continue
			}
			bj := fba.Box(j)
			for _, side := range [2]box.Side{box.Lo, box.Hi} {
				neighbor := box.BdryNode(bj, dir, side).Translate(shift)
				if face.Equal(neighbor) {
					return true
				}
			}
		}
	}
	return false
}

// collectCrseFaces implements spec.md §4.4 step 2.
func (r *FlashFluxRegister[T]) collectCrseFaces(fba, cba *box.BoxArray, cdm *distmap.DistributionMap, period box.Periodicity, ratio int) (boxes [ivec.MaxDim][]box.IndexBox, owner [ivec.MaxDim][]int, srcGlobal [ivec.MaxDim][]int, orient [ivec.MaxDim][]box.Side) {
	dim := cba.Kind().Dim
	fbaCoarsened := fba.Coarsen(ratio)
	shifts := period.ShiftIntVect()

	for i := 0; i < cba.Len(); i++ {
		bi := cba.Box(i)
		grown := bi.GrowScalar(1)

		cellFaces := make(map[box.Orientation]box.IndexBox, 2*dim)
		for _, o := range box.Orientations(dim) {
			cellFaces[o] = box.AdjCell(bi, o.Dir, o.Side)
		}
		var crsefineFaces []box.Orientation

	shiftLoop:
		for _, shift := range shifts {
			if len(cellFaces) == 0 {
				break
			}
			q := grown.Translate(shift)
			for _, isect := range fbaCoarsened.Intersections(q, nil) {
				b := isect.Overlap.Translate(shift.Neg())
				if bi.Contains(b) {
					// coarse box fully covered by fine: no coarse/fine faces.
					cellFaces = map[box.Orientation]box.IndexBox{}
					crsefineFaces = nil
					break shiftLoop
				}
				for o, cf := range cellFaces {
					if cf.Contains(b) {
						crsefineFaces = append(crsefineFaces, o)
						delete(cellFaces, o)
						break
					}
				}
			}
		}

		for _, o := range crsefineFaces {
			faceBox := box.BdryNode(bi, o.Dir, o.Side)
			boxes[o.Dir] = append(boxes[o.Dir], faceBox)
			owner[o.Dir] = append(owner[o.Dir], cdm.Owner(i))
			srcGlobal[o.Dir] = append(srcGlobal[o.Dir], i)
			orient[o.Dir] = append(orient[o.Dir], o.Side)
		}
	}
	return boxes, owner, srcGlobal, orient
}

// Store writes the scaled average of fineFlux over each ratio^(D-1) fine
// cells per coarse face cell into this rank's fine-side storage for
// fineGlobalIndex's dir face, per spec.md §4.4. A no-op if this rank does
// not own that face.
func (r *FlashFluxRegister[T]) Store(fineGlobalIndex, dir int, fineFlux *fab.Fab[T], scale T) error {
	ref, ok := r.fineMap[fineGlobalIndex]
	if !ok || !ref[dir].valid {
		return nil
	}
	dest := r.fineFluxes[dir].Local(ref[dir].pos)

	nonDirAxes := make([]int, 0, r.dim-1)
	for k := 0; k < r.dim; k++ {
		if k != dir {
			nonDirAxes = append(nonDirAxes, k)
		}
	}
	count := 1 << len(nonDirAxes)
	sf := scale / T(count)

	return forEachFaceIndex(dest.Box, r.dim, func(idx ivec.IntVect) error {
		for n := 0; n < r.ncomp; n++ {
			var sum T
			for mask := 0; mask < count; mask++ {
				fineIdx := idx
				fineIdx.V[dir] = idx.V[dir] * r.ratio
				for bi, axis := range nonDirAxes {
					off := 0
					if mask&(1<<bi) != 0 {
						off = 1
					}
					fineIdx.V[axis] = idx.V[axis]*r.ratio + off
				}
				sum += fineFlux.At(fineIdx, n)
			}
			dest.Set(idx, n, sum*sf)
		}
		return nil
	})
}

// Communicate matches fine-averaged flux onto the coarse side's face
// storage, per spec.md §4.4 step "communicate".
func (r *FlashFluxRegister[T]) Communicate(pd xpdesc.ParallelDescriptor) error {
	for dir := 0; dir < r.dim; dir++ {
		if r.fineFluxes[dir] == nil || r.crseFluxes[dir] == nil {
			continue
		}
		if err := exchange.ParallelCopy(r.crseFluxes[dir], r.fineFluxes[dir], 0, 0, r.ncomp, ivec.Zero(r.dim), ivec.Zero(r.dim), r.crsePeriod, exchange.OpCopy, pd); err != nil {
			return errors.Wrapf(err, "fluxreg: Communicate dir %d", dir)
		}
	}
	return nil
}

// Load writes scale*stored_value into crseFlux on every coarse/fine face
// this rank owns for crseGlobalIndex's dir, low and high sides
// independently, per spec.md §4.4.
func (r *FlashFluxRegister[T]) Load(crseGlobalIndex, dir int, crseFlux *fab.Fab[T], scale T) error {
	ref, ok := r.crseMap[crseGlobalIndex]
	if !ok {
		return nil
	}
	for _, side := range [2]box.Side{box.Lo, box.Hi} {
		fr := ref[dir*2+int(side)]
		if !fr.valid {
			continue
		}
		src := r.crseFluxes[dir].Local(fr.pos)
		if err := forEachFaceIndex(src.Box, r.dim, func(idx ivec.IntVect) error {
			for n := 0; n < r.ncomp; n++ {
				crseFlux.Set(idx, n, src.At(idx, n)*scale)
			}
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

// forEachFaceIndex walks every index point of a D-dimensional box,
// fastest-varying first, mirroring fab's internal canonical order; kept
// local to avoid exporting fab's internal walker, same tradeoff comtag
// makes.
func forEachFaceIndex(b box.IndexBox, dim int, fn func(ivec.IntVect) error) error {
	idx := b.Lo
	if b.Empty() {
		return nil
	}
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
