package exchange

import (
	"github.com/grailbio/base/traverse"
	"github.com/parallelmesh/amrx/box"
	"github.com/parallelmesh/amrx/comtag"
	"github.com/parallelmesh/amrx/fab"
	"github.com/parallelmesh/amrx/ivec"
	"github.com/parallelmesh/amrx/xpdesc"
	"github.com/pkg/errors"
)

type pendingRecv struct {
	buf  []byte
	tags []comtag.CopyComTag
	req  xpdesc.Request
}

// FillBoundaryNowait initiates a ghost-cell exchange over components
// [scomp, scomp+ncomp) of fa, per spec.md §4.2. The returned Handle must
// be passed to Finish before fa's ghost cells are read.
func FillBoundaryNowait[T fab.Numeric](fa *fab.FabArray[T], pd xpdesc.ParallelDescriptor, nghost ivec.IntVect, period box.Periodicity, cross, periodicityOnly bool, scomp, ncomp int) (*Handle, error) {
	if periodicityOnly && !period.IsAnyPeriodic() {
		return noopHandle(), nil
	}
	if nghost.IsZero() && !periodicityOnly {
		return noopHandle(), nil
	}

	plan := comtag.GetFB(fa.BoxArray(), fa.DistMap(), nghost, period, cross, periodicityOnly, fa.MyRank())

	doLocal := func() error {
		return traverse.Each(len(plan.LocTags), func(i int) error {
			tag := plan.LocTags[i]
			dst, src := fa.Local(tag.DstIndex), fa.Local(tag.SrcIndex)
			return dst.CopyRegionFrom(src, tag.SBox, tag.DBox, scomp, scomp, ncomp)
		})
	}

	if pd.NProcs() == 1 {
		// Single-rank fast path (spec.md §4.2 step 2): SndTags/RcvTags
		// are necessarily empty when there is only one rank, so only
		// the local copies matter.
		if err := doLocal(); err != nil {
			return nil, err
		}
		return noopHandle(), nil
	}

	// Sequence number is consumed on every rank even when this rank's
	// slice of the plan is empty, to keep tags aligned across ranks
	// (spec.md §7's "empty work" error kind).
	seq := pd.SeqNum()

	recvs := make([]pendingRecv, 0, len(plan.RcvTags))
	for peer, tags := range plan.RcvTags {
		var nbytes int64
		for _, tg := range tags {
			nbytes += comtag.RegionBytes[T](tg.DBox, ncomp)
		}
		buf := make([]byte, nbytes)
		req, err := pd.Arecv(peer, seq, buf)
		if err != nil {
			return nil, errors.Wrapf(err, "exchange: FillBoundary Arecv from peer %d", peer)
		}
		recvs = append(recvs, pendingRecv{buf: buf, tags: tags, req: req})
	}

	sendReqs := make([]xpdesc.Request, 0, len(plan.SndTags))
	for peer, tags := range plan.SndTags {
		var buf []byte
		for _, tg := range tags {
			src := fa.Local(tg.SrcIndex)
			buf = comtag.PackRegion(buf, src, tg.SBox, scomp, ncomp)
		}
		req, err := pd.Asend(peer, seq, buf)
		if err != nil {
			return nil, errors.Wrapf(err, "exchange: FillBoundary Asend to peer %d", peer)
		}
		sendReqs = append(sendReqs, req)
	}

	// Local copies overlap with the in-flight sends/receives above.
	if err := doLocal(); err != nil {
		return nil, err
	}

	h := &Handle{
		finish: func() error {
			recvReqs := make([]xpdesc.Request, len(recvs))
			for i, r := range recvs {
				recvReqs[i] = r.req
			}
			if err := pd.Waitall(recvReqs); err != nil {
				return errors.Wrap(err, "exchange: FillBoundary Finish waiting on receives")
			}

			unpackOne := func(i int) error {
				off := 0
				pr := recvs[i]
				for _, tg := range pr.tags {
					dst := fa.Local(tg.DstIndex)
					n := comtag.UnpackRegion(pr.buf[off:], dst, tg.DBox, scomp, ncomp)
					off += n
				}
				return nil
			}
			if plan.ThreadsafeRcv {
				if err := traverse.Each(len(recvs), unpackOne); err != nil {
					return err
				}
			} else {
				for i := range recvs {
					if err := unpackOne(i); err != nil {
						return err
					}
				}
			}
			return pd.Waitall(sendReqs)
		},
	}
	return h, nil
}

// FillBoundary is FillBoundaryNowait followed immediately by Finish,
// equivalent to spec.md §4.2's combined call.
func FillBoundary[T fab.Numeric](fa *fab.FabArray[T], pd xpdesc.ParallelDescriptor, nghost ivec.IntVect, period box.Periodicity, cross, periodicityOnly bool, scomp, ncomp int) error {
	h, err := FillBoundaryNowait(fa, pd, nghost, period, cross, periodicityOnly, scomp, ncomp)
	if err != nil {
		return err
	}
	return h.Finish()
}
