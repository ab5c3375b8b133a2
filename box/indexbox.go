package box

import (
	"fmt"

	"github.com/parallelmesh/amrx/ivec"
)

// IndexBox is an inclusive integer box [Lo, Hi] in D dimensions, D in
// {1,2,3}, carrying a centering tag (spec.md §3's IndexBox). Lo and Hi are
// expressed directly in the box's own centering's index space: a
// node-centered box's Hi already includes the extra nodal layer, so
// callers never need to separately "convert" indices the way raw
// cell-index storage would require.
//
// lo <= hi componentwise is the normal case; empty boxes (some lo[i] >
// hi[i]) are allowed and propagate through every operation below, per
// spec.md's invariant.
type IndexBox struct {
	Lo, Hi ivec.IntVect
	Kind   IndexType
}

// New builds an IndexBox from inclusive bounds and a centering.
func New(lo, hi ivec.IntVect, kind IndexType) IndexBox {
	return IndexBox{Lo: lo, Hi: hi, Kind: kind}
}

// Empty reports whether the box is degenerate in some dimension.
func (b IndexBox) Empty() bool {
	for i := 0; i < b.Lo.Dim; i++ {
		if b.Lo.V[i] > b.Hi.V[i] {
			return true
		}
	}
	return false
}

// NumPts returns the number of index points covered by the box (0 if
// empty).
func (b IndexBox) NumPts() int64 {
	if b.Empty() {
		return 0
	}
	n := int64(1)
	for i := 0; i < b.Lo.Dim; i++ {
		n *= int64(b.Hi.V[i]-b.Lo.V[i]) + 1
	}
	return n
}

// Length returns Hi-Lo+1 componentwise (zero or negative in an empty
// dimension).
func (b IndexBox) Length() ivec.IntVect {
	var l ivec.IntVect
	l.Dim = b.Lo.Dim
	for i := 0; i < b.Lo.Dim; i++ {
		l.V[i] = b.Hi.V[i] - b.Lo.V[i] + 1
	}
	return l
}

// Intersect returns the intersection of b and o. The result carries b's
// centering; callers are responsible for only intersecting same-centering
// boxes (spec.md: "Packs/unpacks treat sbox and dbox as equal-cardinality",
// which requires matching centerings upstream).
func (b IndexBox) Intersect(o IndexBox) IndexBox {
	return IndexBox{Lo: b.Lo.Max(o.Lo), Hi: b.Hi.Min(o.Hi), Kind: b.Kind}
}

// Intersects reports whether b and o overlap.
func (b IndexBox) Intersects(o IndexBox) bool {
	return !b.Intersect(o).Empty()
}

// Contains reports whether o is entirely within b.
func (b IndexBox) Contains(o IndexBox) bool {
	if o.Empty() {
		return true
	}
	return o.Lo.AllGE(b.Lo) && o.Hi.AllLE(b.Hi)
}

// Grow returns b expanded by n on both sides of every dimension.
func (b IndexBox) Grow(n ivec.IntVect) IndexBox {
	return IndexBox{Lo: b.Lo.Sub(n), Hi: b.Hi.Add(n), Kind: b.Kind}
}

// GrowScalar grows by the same amount n in every dimension.
func (b IndexBox) GrowScalar(n int) IndexBox {
	return b.Grow(ivec.Uniform(b.Lo.Dim, n))
}

// GrowDir grows only along dimension dir, by n (may be negative to shrink).
func (b IndexBox) GrowDir(dir, n int) IndexBox {
	lo, hi := b.Lo, b.Hi
	lo.V[dir] -= n
	hi.V[dir] += n
	return IndexBox{Lo: lo, Hi: hi, Kind: b.Kind}
}

// Translate shifts b by shift.
func (b IndexBox) Translate(shift ivec.IntVect) IndexBox {
	return IndexBox{Lo: b.Lo.Add(shift), Hi: b.Hi.Add(shift), Kind: b.Kind}
}

// Refine scales lo/hi up by ratio (coarse index space -> fine index
// space).
func (b IndexBox) Refine(ratio int) IndexBox {
	return IndexBox{Lo: b.Lo.Refine(ratio), Hi: b.Hi.Refine(ratio), Kind: b.Kind}
}

// Coarsen scales lo/hi down by ratio (fine index space -> coarse index
// space), per spec.md's "coarsen by integer ratio". Coarsening a
// node-centered box divides the nodal Hi directly too; it does not
// reproduce AMReX's "coarsen keeps same number of nodes at a matching
// ratio" behavior. BoxArray.Coarsen calls this method on every box
// unchanged, so it does not either.
func (b IndexBox) Coarsen(ratio int) IndexBox {
	return IndexBox{Lo: b.Lo.Coarsen(ratio), Hi: b.Hi.Coarsen(ratio), Kind: b.Kind}
}

// Equal reports bitwise equality of bounds and centering.
func (b IndexBox) Equal(o IndexBox) bool {
	return b.Lo.Equal(o.Lo) && b.Hi.Equal(o.Hi) && b.Kind.Equal(o.Kind)
}

func (b IndexBox) String() string {
	return fmt.Sprintf("[%s,%s]", b.Lo, b.Hi)
}
