package fab

import (
	"github.com/parallelmesh/amrx/box"
	"github.com/parallelmesh/amrx/ivec"
	"github.com/pkg/errors"
)

// Fab is a dense D+1-dimensional array of T: shape grown(Box, 0) ×
// NComp, stored row-major in a canonical dimension ordering with
// component as the slowest-varying index (spec.md §3's "shape =
// grown(box, nghost) × ncomp"). Box already reflects any ghost-cell
// growth the owning FabArray applies; Fab itself has no separate
// "valid vs ghost" notion beyond what Box's extent records.
//
// A Fab's lifetime is bound to its owning FabArray: nothing in this
// package hands out a Fab that outlives the slice backing it.
type Fab[T Numeric] struct {
	Box   box.IndexBox
	NComp int
	data  []T
}

// New allocates a zeroed Fab over b with ncomp components.
func New[T Numeric](b box.IndexBox, ncomp int) *Fab[T] {
	n := b.NumPts()
	return &Fab[T]{Box: b, NComp: ncomp, data: make([]T, n*int64(ncomp))}
}

// NumPts returns the number of index points in the Fab's box.
func (f *Fab[T]) NumPts() int64 { return f.Box.NumPts() }

// offset computes the flat data index for (idx, comp) in row-major
// order with the fastest-varying dimension first and comp slowest.
func (f *Fab[T]) offset(idx ivec.IntVect, comp int) int64 {
	l := f.Box.Length()
	var stride int64 = 1
	var off int64
	for d := 0; d < idx.Dim; d++ {
		off += int64(idx.V[d]-f.Box.Lo.V[d]) * stride
		stride *= int64(l.V[d])
	}
	return off + int64(comp)*stride
}

// At returns the value at idx, component comp. There is no explicit
// per-dimension bounds check: only the runtime's slice bounds check
// applies, so an idx or comp out of range panics when the computed flat
// offset falls outside the backing slice, and otherwise reads another
// cell's value.
func (f *Fab[T]) At(idx ivec.IntVect, comp int) T {
	return f.data[f.offset(idx, comp)]
}

// Set stores v at idx, component comp.
func (f *Fab[T]) Set(idx ivec.IntVect, comp int, v T) {
	f.data[f.offset(idx, comp)] = v
}

// Data returns the raw backing slice in canonical order, for bulk
// packing (comtag) or kernel code that wants to iterate without
// per-cell index arithmetic.
func (f *Fab[T]) Data() []T { return f.data }

// SetAll fills every component of every cell with v.
func (f *Fab[T]) SetAll(v T) {
	for i := range f.data {
		f.data[i] = v
	}
}

// CopyRegionFrom copies src's data over the region (sbox in src's index
// space, dbox in f's index space) for components [dstComp, dstComp+n),
// reading from src components [srcComp, srcComp+n). sbox and dbox must
// have equal cardinality (spec.md's CopyComTag invariant); CopyRegionFrom
// walks them in lockstep by translating sbox coordinates to dbox
// coordinates via a fixed per-dimension shift.
func (f *Fab[T]) CopyRegionFrom(src *Fab[T], sbox, dbox box.IndexBox, srcComp, dstComp, n int) error {
	if sbox.Length() != dbox.Length() {
		if !sbox.Empty() && !dbox.Empty() {
			return errors.Errorf("fab: CopyRegionFrom region cardinality mismatch: %v vs %v", sbox, dbox)
		}
	}
	if sbox.Empty() || dbox.Empty() {
		return nil
	}
	shift := dbox.Lo.Sub(sbox.Lo)
	forEachIndex(sbox, func(sidx ivec.IntVect) {
		didx := sidx.Add(shift)
		for c := 0; c < n; c++ {
			f.Set(didx, dstComp+c, src.At(sidx, srcComp+c))
		}
	})
	return nil
}

// AddRegionFrom is CopyRegionFrom's ADD-reduction variant (spec.md §4.3's
// COPY/ADD operator).
func (f *Fab[T]) AddRegionFrom(src *Fab[T], sbox, dbox box.IndexBox, srcComp, dstComp, n int) error {
	if sbox.Empty() || dbox.Empty() {
		return nil
	}
	shift := dbox.Lo.Sub(sbox.Lo)
	forEachIndex(sbox, func(sidx ivec.IntVect) {
		didx := sidx.Add(shift)
		for c := 0; c < n; c++ {
			f.Set(didx, dstComp+c, f.At(didx, dstComp+c)+src.At(sidx, srcComp+c))
		}
	})
	return nil
}

// forEachIndex visits every index point in b in canonical (fastest-first)
// order.
func forEachIndex(b box.IndexBox, fn func(ivec.IntVect)) {
	if b.Empty() {
		return
	}
	dim := b.Lo.Dim
	cur := b.Lo
	for {
		fn(cur)
		d := 0
		for d < dim {
			cur.V[d]++
			if cur.V[d] <= b.Hi.V[d] {
				break
			}
			cur.V[d] = b.Lo.V[d]
			d++
		}
		if d == dim {
			return
		}
	}
}
