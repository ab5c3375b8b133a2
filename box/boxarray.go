package box

import (
	"sort"

	"github.com/biogo/store/interval"
	"github.com/parallelmesh/amrx/ivec"
)

// axisInterval adapts one IndexBox's extent along a single axis to
// biogo/store/interval.IntInterface so BoxArray can keep one
// interval.IntTree per axis; intersecting those D trees and then
// exact-testing the few surviving candidates gives the O(log N + k)
// query spec.md §3 asks for, instead of an O(N) scan of every box on
// every query.
type axisInterval struct {
	start, end int // half-open [start, end)
	id         uintptr
}

func (a axisInterval) Overlap(b interval.IntRange) bool {
	return a.start < b.End && b.Start < a.end
}
func (a axisInterval) ID() uintptr            { return a.id }
func (a axisInterval) Range() interval.IntRange { return interval.IntRange{Start: a.start, End: a.end} }
func (a axisInterval) String() string           { return "" }

// BoxArray is an ordered, possibly-overlapping sequence of IndexBoxes
// sharing one centering (spec.md §3). It is immutable after construction.
type BoxArray struct {
	kind  IndexType
	boxes []IndexBox
	trees [ivec.MaxDim]*interval.IntTree
}

// NewBoxArray builds a BoxArray over boxes, which must all share kind.
func NewBoxArray(kind IndexType, boxes []IndexBox) *BoxArray {
	ba := &BoxArray{kind: kind, boxes: append([]IndexBox(nil), boxes...)}
	for d := 0; d < kind.Dim; d++ {
		t := &interval.IntTree{}
		for i, b := range ba.boxes {
			if b.Empty() {
				continue
			}
			_ = t.Insert(axisInterval{start: b.Lo.V[d], end: b.Hi.V[d] + 1, id: uintptr(i)}, false)
		}
		t.AdjustRanges()
		ba.trees[d] = t
	}
	return ba
}

// Len returns the number of boxes.
func (ba *BoxArray) Len() int { return len(ba.boxes) }

// Kind returns the shared centering.
func (ba *BoxArray) Kind() IndexType { return ba.kind }

// Box returns the i'th box.
func (ba *BoxArray) Box(i int) IndexBox { return ba.boxes[i] }

// Boxes returns the underlying slice; callers must not mutate it.
func (ba *BoxArray) Boxes() []IndexBox { return ba.boxes }

// Isect is one (index, overlap-box) result from an intersection query.
type Isect struct {
	Index   int
	Overlap IndexBox
}

// Intersections returns every (index, overlap) pair where ba.Box(index)
// (grown by grow, if non-nil) overlaps q. The result order is the
// BoxArray's box order, matching the deterministic plan-construction
// requirement in spec.md §3 invariant (c).
func (ba *BoxArray) Intersections(q IndexBox, grow *ivec.IntVect) []Isect {
	if q.Empty() || len(ba.boxes) == 0 {
		return nil
	}
	var candidates map[uintptr]int
	for d := 0; d < ba.kind.Dim; d++ {
		qlo, qhi := q.Lo.V[d], q.Hi.V[d]
		// Each tree holds every box's un-grown extent, so growing a
		// candidate box by g and testing it against q is equivalent to
		// testing the box, un-grown, against q widened by g on both
		// ends: Overlap(b.Grow(g), q) == Overlap(b, q.Grow(g)). Widen
		// the query here rather than rebuilding a tree per grow amount.
		if grow != nil {
			g := grow.V[d]
			qlo -= g
			qhi += g
		}
		query := axisInterval{start: qlo, end: qhi + 1}
		hits := ba.trees[d].Get(query)
		this := make(map[uintptr]int, len(hits))
		for _, h := range hits {
			this[h.ID()] = int(h.ID())
		}
		if candidates == nil {
			candidates = this
		} else {
			for id := range candidates {
				if _, ok := this[id]; !ok {
					delete(candidates, id)
				}
			}
		}
		if len(candidates) == 0 {
			return nil
		}
	}
	ids := make([]int, 0, len(candidates))
	for _, idx := range candidates {
		ids = append(ids, idx)
	}
	sort.Ints(ids)

	var out []Isect
	for _, idx := range ids {
		b := ba.boxes[idx]
		if grow != nil {
			b = b.Grow(*grow)
		}
		ov := b.Intersect(q)
		if !ov.Empty() {
			out = append(out, Isect{Index: idx, Overlap: ov})
		}
	}
	return out
}

// Grow returns a new BoxArray with every box grown by n.
func (ba *BoxArray) Grow(n ivec.IntVect) *BoxArray {
	out := make([]IndexBox, len(ba.boxes))
	for i, b := range ba.boxes {
		out[i] = b.Grow(n)
	}
	return NewBoxArray(ba.kind, out)
}

// Refine returns a new BoxArray with every box refined by ratio.
func (ba *BoxArray) Refine(ratio int) *BoxArray {
	out := make([]IndexBox, len(ba.boxes))
	for i, b := range ba.boxes {
		out[i] = b.Refine(ratio)
	}
	return NewBoxArray(ba.kind, out)
}

// Coarsen returns a new BoxArray with every box coarsened by ratio.
func (ba *BoxArray) Coarsen(ratio int) *BoxArray {
	out := make([]IndexBox, len(ba.boxes))
	for i, b := range ba.boxes {
		out[i] = b.Coarsen(ratio)
	}
	return NewBoxArray(ba.kind, out)
}

// Convert returns a new BoxArray with the same Lo/Hi but a different
// centering tag, mirroring amrex::convert. It does not adjust Hi for the
// new centering's extra nodal layer; callers that need that should Grow
// the result by kind.NodeVect() where appropriate.
func (ba *BoxArray) Convert(kind IndexType) *BoxArray {
	out := make([]IndexBox, len(ba.boxes))
	for i, b := range ba.boxes {
		out[i] = IndexBox{Lo: b.Lo, Hi: b.Hi, Kind: kind}
	}
	return NewBoxArray(kind, out)
}
