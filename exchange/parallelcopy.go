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

// Op selects ParallelCopy's reduction operator (spec.md §4.3).
type Op int

const (
	// OpCopy overwrites the destination.
	OpCopy Op = iota
	// OpAdd accumulates onto the destination.
	OpAdd
)

// MaxComp bounds how many components ParallelCopy packs into a single
// message, capping peak buffer usage for wide FabArrays (spec.md §4.3's
// "For large ncomp the engine iterates in chunks of at most MaxComp
// components per message").
const MaxComp = 32

// ParallelCopy transfers components [scomp, scomp+ncomp) of src into
// [dcomp, dcomp+ncomp) of dst, applying op, per spec.md §4.3.
func ParallelCopy[T fab.Numeric](dst *fab.FabArray[T], src *fab.FabArray[T], scomp, dcomp, ncomp int, snghost, dnghost ivec.IntVect, period box.Periodicity, op Op, pd xpdesc.ParallelDescriptor) error {
	if fastPathEligible(dst, src, snghost, dnghost, period, op) {
		return parallelCopyFastPath(dst, src, scomp, dcomp, ncomp, op)
	}

	for off := 0; off < ncomp; off += MaxComp {
		n := ncomp - off
		if n > MaxComp {
			n = MaxComp
		}
		if err := parallelCopyChunk(dst, src, scomp+off, dcomp+off, n, snghost, dnghost, period, op, pd); err != nil {
			return err
		}
	}
	return nil
}

func fastPathEligible[T fab.Numeric](dst, src *fab.FabArray[T], snghost, dnghost ivec.IntVect, period box.Periodicity, op Op) bool {
	if dst.BoxArray() != src.BoxArray() || dst.DistMap() != src.DistMap() {
		return false
	}
	if !snghost.IsZero() || !dnghost.IsZero() {
		return false
	}
	if period.IsAnyPeriodic() {
		return false
	}
	return dst.BoxArray().Kind().CellCentered() || op == OpCopy
}

func parallelCopyFastPath[T fab.Numeric](dst, src *fab.FabArray[T], scomp, dcomp, ncomp int, op Op) error {
	idxs := dst.LocalIndices()
	return traverse.Each(len(idxs), func(k int) error {
		i := idxs[k]
		d, s := dst.Local(i), src.Local(i)
		if d == s {
			return nil // self-copy: same tile, nothing to do
		}
		if op == OpAdd {
			return d.AddRegionFrom(s, s.Box, d.Box, scomp, dcomp, ncomp)
		}
		return d.CopyRegionFrom(s, s.Box, d.Box, scomp, dcomp, ncomp)
	})
}

func parallelCopyChunk[T fab.Numeric](dst, src *fab.FabArray[T], scomp, dcomp, ncomp int, snghost, dnghost ivec.IntVect, period box.Periodicity, op Op, pd xpdesc.ParallelDescriptor) error {
	plan := comtag.GetCPC(dst.BoxArray(), dst.DistMap(), src.BoxArray(), src.DistMap(), snghost, dnghost, period, dst.MyRank())

	applyLocal := func(tag comtag.CopyComTag) error {
		d, s := dst.Local(tag.DstIndex), src.Local(tag.SrcIndex)
		if op == OpAdd {
			return d.AddRegionFrom(s, tag.SBox, tag.DBox, scomp, dcomp, ncomp)
		}
		return d.CopyRegionFrom(s, tag.SBox, tag.DBox, scomp, dcomp, ncomp)
	}

	doLocal := func() error {
		return traverse.Each(len(plan.LocTags), func(i int) error {
			return applyLocal(plan.LocTags[i])
		})
	}

	if pd.NProcs() == 1 {
		return doLocal()
	}

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
			return errors.Wrapf(err, "exchange: ParallelCopy Arecv from peer %d", peer)
		}
		recvs = append(recvs, pendingRecv{buf: buf, tags: tags, req: req})
	}

	sendReqs := make([]xpdesc.Request, 0, len(plan.SndTags))
	for peer, tags := range plan.SndTags {
		var buf []byte
		for _, tg := range tags {
			buf = comtag.PackRegion(buf, src.Local(tg.SrcIndex), tg.SBox, scomp, ncomp)
		}
		req, err := pd.Asend(peer, seq, buf)
		if err != nil {
			return errors.Wrapf(err, "exchange: ParallelCopy Asend to peer %d", peer)
		}
		sendReqs = append(sendReqs, req)
	}

	if err := doLocal(); err != nil {
		return err
	}

	recvReqs := make([]xpdesc.Request, len(recvs))
	for i, r := range recvs {
		recvReqs[i] = r.req
	}
	if err := pd.Waitall(recvReqs); err != nil {
		return errors.Wrap(err, "exchange: ParallelCopy waiting on receives")
	}

	unpackOne := func(i int) error {
		off := 0
		pr := recvs[i]
		for _, tg := range pr.tags {
			d := dst.Local(tg.DstIndex)
			var n int
			if op == OpAdd {
				n = comtag.AddUnpackRegion(pr.buf[off:], d, tg.DBox, dcomp, ncomp)
			} else {
				n = comtag.UnpackRegion(pr.buf[off:], d, tg.DBox, dcomp, ncomp)
			}
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
}
