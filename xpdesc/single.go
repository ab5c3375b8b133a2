package xpdesc

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// Single is the NProcs()==1 fast-path ParallelDescriptor: every box is
// local, so Asend/Arecv should never actually be called by a
// correctly-built plan (an FB/CPC plan over one rank has no SndTags or
// RcvTags). Asend and Arecv always return errors rather than silently
// completing, so a plan-construction bug that sends to "peer 0" surfaces
// immediately instead of masquerading as a successful no-op; Waitall
// errors only when handed requests, and Bcast only for a root other
// than 0.
type Single struct {
	seq int64
}

var _ ParallelDescriptor = (*Single)(nil)

func (s *Single) MyProc() int  { return 0 }
func (s *Single) NProcs() int  { return 1 }
func (s *Single) SeqNum() int  { return int(atomic.AddInt64(&s.seq, 1)) }

func (s *Single) Asend(peer, tag int, data []byte) (Request, error) {
	return nil, errors.Errorf("xpdesc: Single.Asend called (peer %d, tag %d) but NProcs()==1 has no peers", peer, tag)
}

func (s *Single) Arecv(peer, tag int, buf []byte) (Request, error) {
	return nil, errors.Errorf("xpdesc: Single.Arecv called (peer %d, tag %d) but NProcs()==1 has no peers", peer, tag)
}

func (s *Single) Waitall(reqs []Request) error {
	if len(reqs) != 0 {
		return errors.Errorf("xpdesc: Single.Waitall given %d outstanding requests, expected 0", len(reqs))
	}
	return nil
}

func (s *Single) ReduceRealMin(v float64) float64 { return v }
func (s *Single) ReduceRealMax(v float64) float64 { return v }
func (s *Single) ReduceRealSum(v float64) float64 { return v }

func (s *Single) Bcast(data []byte, root int) error {
	if root != 0 {
		return errors.Errorf("xpdesc: Single.Bcast root=%d, only rank 0 exists", root)
	}
	return nil
}
