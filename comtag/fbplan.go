package comtag

import (
	"github.com/parallelmesh/amrx/box"
	"github.com/parallelmesh/amrx/distmap"
	"github.com/parallelmesh/amrx/ivec"
)

// FBPlan is the fill-boundary communication schedule (spec.md §3/§4.1),
// keyed by (nghost, periodicity, cross, periodicityOnly) against one
// (BoxArray, DistributionMap) pair.
type FBPlan struct {
	LocTags       []CopyComTag
	SndTags       map[int][]CopyComTag
	RcvTags       map[int][]CopyComTag
	ThreadsafeRcv bool
}

// ghostSearchRegions returns the region(s) to query for destination box
// b's ghost cells. Cross stencils grow one axis at a time so the
// resulting search regions never include diagonal corners; non-cross
// stencils grow every axis at once (spec.md §4.1's "cross... subtract
// the diagonal corners").
func ghostSearchRegions(b box.IndexBox, nghost ivec.IntVect, cross bool) []box.IndexBox {
	if !cross {
		return []box.IndexBox{b.Grow(nghost)}
	}
	var regions []box.IndexBox
	for d := 0; d < b.Lo.Dim; d++ {
		if nghost.V[d] == 0 {
			continue
		}
		regions = append(regions, b.GrowDir(d, nghost.V[d]))
	}
	return regions
}

// BuildFB constructs the FBPlan for ba/dm with ghost width nghost,
// periodicity period, and the cross/periodicityOnly flags, from
// myRank's perspective (spec.md §4.1's FB construction algorithm).
func BuildFB(ba *box.BoxArray, dm *distmap.DistributionMap, nghost ivec.IntVect, period box.Periodicity, cross, periodicityOnly bool, myRank int) *FBPlan {
	plan := &FBPlan{SndTags: map[int][]CopyComTag{}, RcvTags: map[int][]CopyComTag{}}
	shifts := period.ShiftIntVect()

	for i := 0; i < ba.Len(); i++ {
		bi := ba.Box(i)
		dstRank := dm.Owner(i)
		for _, region := range ghostSearchRegions(bi, nghost, cross) {
			for _, s := range shifts {
				if periodicityOnly && s.IsZero() {
					continue
				}
				q := region.Translate(s)
				for _, hit := range ba.Intersections(q, nil) {
					j := hit.Index
					if j == i && s.IsZero() {
						// this is exactly bi itself: the part of grow(bi)
						// that lies in bi's own valid region, which FB
						// never needs to fill (spec.md's grow(BA[i],
						// nghost) \ BA[i]).
						continue
					}
					srcRank := dm.Owner(j)
					ov := hit.Overlap
					dbox := ov.Translate(s.Neg())
					tag := CopyComTag{SrcIndex: j, DstIndex: i, SBox: ov, DBox: dbox}
					switch {
					case dstRank == myRank && srcRank == myRank:
						plan.LocTags = append(plan.LocTags, tag)
					case srcRank == myRank && dstRank != myRank:
						plan.SndTags[dstRank] = append(plan.SndTags[dstRank], tag)
					case dstRank == myRank && srcRank != myRank:
						plan.RcvTags[srcRank] = append(plan.RcvTags[srcRank], tag)
					}
				}
			}
		}
	}

	plan.ThreadsafeRcv = true
	for _, tags := range plan.RcvTags {
		if !disjointDBoxes(tags) {
			plan.ThreadsafeRcv = false
			break
		}
	}
	return plan
}
