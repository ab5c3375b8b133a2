package comtag

import (
	"github.com/parallelmesh/amrx/box"
	"github.com/parallelmesh/amrx/distmap"
	"github.com/parallelmesh/amrx/ivec"
)

// CPCPlan is the parallel-copy communication schedule (spec.md §3/§4.1's
// CPC plan), derived from a destination FabArray's (BoxArray,
// DistributionMap) and a source FabArray's, plus (snghost, dnghost,
// periodicity).
type CPCPlan struct {
	LocTags       []CopyComTag
	SndTags       map[int][]CopyComTag
	RcvTags       map[int][]CopyComTag
	ThreadsafeRcv bool
}

// BuildCPC constructs the CPCPlan transferring from (srcBA, srcDM) grown
// by snghost into (dstBA, dstDM) grown by dnghost, wrapped by period,
// from myRank's perspective.
func BuildCPC(dstBA *box.BoxArray, dstDM *distmap.DistributionMap, srcBA *box.BoxArray, srcDM *distmap.DistributionMap, snghost, dnghost ivec.IntVect, period box.Periodicity, myRank int) *CPCPlan {
	plan := &CPCPlan{SndTags: map[int][]CopyComTag{}, RcvTags: map[int][]CopyComTag{}}
	shifts := period.ShiftIntVect()

	for i := 0; i < dstBA.Len(); i++ {
		region := dstBA.Box(i).Grow(dnghost)
		dstRank := dstDM.Owner(i)
		for _, s := range shifts {
			q := region.Translate(s)
			for _, hit := range srcBA.Intersections(q, &snghost) {
				j := hit.Index
				srcRank := srcDM.Owner(j)
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

	plan.ThreadsafeRcv = true
	for _, tags := range plan.RcvTags {
		if !disjointDBoxes(tags) {
			plan.ThreadsafeRcv = false
			break
		}
	}
	return plan
}
