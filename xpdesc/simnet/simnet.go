package simnet

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/parallelmesh/amrx/xpdesc"
	"github.com/pkg/errors"
)

type message struct {
	tag  int
	data []byte
}

// rankInbox holds messages addressed to one rank, bucketed by sender,
// so Arecv can find the one matching (peer, tag) without scanning
// traffic from every other peer.
type rankInbox struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending map[int][]message
}

// Network is a shared simulated fabric connecting nprocs Ranks. Build
// one Network and hand out Rank(i) to each simulated rank's goroutine.
type Network struct {
	nprocs int
	seq    int64

	ranks []*rankInbox

	reduceMu     sync.Mutex
	reduceCond   *sync.Cond
	reduceVals   []float64
	reduceCount  int
	reduceGen    int
	reduceResult float64

	bcastMu    sync.Mutex
	bcastCond  *sync.Cond
	bcastData  []byte
	bcastCount int
	bcastGen   int
}

// New builds a Network for nprocs simulated ranks.
func New(nprocs int) *Network {
	n := &Network{nprocs: nprocs, ranks: make([]*rankInbox, nprocs)}
	for i := range n.ranks {
		ib := &rankInbox{pending: map[int][]message{}}
		ib.cond = sync.NewCond(&ib.mu)
		n.ranks[i] = ib
	}
	n.reduceCond = sync.NewCond(&n.reduceMu)
	n.bcastCond = sync.NewCond(&n.bcastMu)
	return n
}

// Rank returns the ParallelDescriptor for simulated rank id.
func (n *Network) Rank(id int) *Rank { return &Rank{net: n, id: id} }

// Rank is one simulated process's ParallelDescriptor, backed by a
// shared Network.
type Rank struct {
	net *Network
	id  int
}

var _ xpdesc.ParallelDescriptor = (*Rank)(nil)

func (r *Rank) MyProc() int { return r.id }
func (r *Rank) NProcs() int { return r.net.nprocs }
func (r *Rank) SeqNum() int { return int(atomic.AddInt64(&r.net.seq, 1)) }

// sendRequest is already complete by the time Asend returns: the
// simulated transport copies data into the peer's inbox synchronously,
// since there is no real wire latency to overlap.
type sendRequest struct{}

// recvRequest defers its copy until Waitall, so a receive posted before
// its matching send still observes it once the send arrives.
type recvRequest struct {
	rank *Rank
	peer int
	tag  int
	buf  []byte
}

func (r *Rank) Asend(peer, tag int, data []byte) (xpdesc.Request, error) {
	if peer < 0 || peer >= r.net.nprocs {
		return nil, errors.Errorf("simnet: Asend to out-of-range peer %d", peer)
	}
	buf := append([]byte(nil), data...)
	dst := r.net.ranks[peer]
	dst.mu.Lock()
	dst.pending[r.id] = append(dst.pending[r.id], message{tag: tag, data: buf})
	dst.cond.Broadcast()
	dst.mu.Unlock()
	return sendRequest{}, nil
}

func (r *Rank) Arecv(peer, tag int, buf []byte) (xpdesc.Request, error) {
	if peer < 0 || peer >= r.net.nprocs {
		return nil, errors.Errorf("simnet: Arecv from out-of-range peer %d", peer)
	}
	return &recvRequest{rank: r, peer: peer, tag: tag, buf: buf}, nil
}

func (r *Rank) Waitall(reqs []xpdesc.Request) error {
	for _, req := range reqs {
		rr, ok := req.(*recvRequest)
		if !ok {
			continue // sendRequest, already complete
		}
		if err := rr.rank.resolve(rr); err != nil {
			return err
		}
	}
	return nil
}

// resolve blocks until a message matching (peer, tag) is in this rank's
// inbox, then copies it into the receive buffer.
func (r *Rank) resolve(rr *recvRequest) error {
	inbox := r.net.ranks[r.id]
	inbox.mu.Lock()
	defer inbox.mu.Unlock()
	for {
		list := inbox.pending[rr.peer]
		for i, m := range list {
			if m.tag != rr.tag {
				continue
			}
			if len(m.data) != len(rr.buf) {
				return errors.Errorf("simnet: size mismatch receiving tag %d from peer %d: got %d bytes, buffer is %d", rr.tag, rr.peer, len(m.data), len(rr.buf))
			}
			copy(rr.buf, m.data)
			inbox.pending[rr.peer] = append(list[:i:i], list[i+1:]...)
			return nil
		}
		inbox.cond.Wait()
	}
}

// reduce is a barrier: it blocks until every rank in the Network has
// called it, then every caller returns the same fold of op over every
// rank's v, starting from identity. ReduceRealMin/Max/Sum are thin
// wrappers since every rank always calls the same reduction kind within
// one barrier cycle, so reusing one set of generation-counted scratch
// state across reduction kinds is safe.
func (r *Rank) reduce(v float64, identity float64, op func(a, b float64) float64) float64 {
	net := r.net
	net.reduceMu.Lock()
	defer net.reduceMu.Unlock()
	if net.reduceVals == nil {
		net.reduceVals = make([]float64, net.nprocs)
		for i := range net.reduceVals {
			net.reduceVals[i] = identity
		}
	}
	gen := net.reduceGen
	net.reduceVals[r.id] = v
	net.reduceCount++
	if net.reduceCount == net.nprocs {
		acc := net.reduceVals[0]
		for _, x := range net.reduceVals[1:] {
			acc = op(acc, x)
		}
		net.reduceResult = acc
		net.reduceCount = 0
		net.reduceVals = nil
		net.reduceGen++
		net.reduceCond.Broadcast()
	} else {
		for net.reduceGen == gen {
			net.reduceCond.Wait()
		}
	}
	return net.reduceResult
}

// ReduceRealMin is a barrier: it blocks until every rank in the Network
// has called it, then every caller returns the same global minimum.
func (r *Rank) ReduceRealMin(v float64) float64 {
	return r.reduce(v, math.MaxFloat64, func(a, b float64) float64 {
		if b < a {
			return b
		}
		return a
	})
}

// ReduceRealMax is a barrier: it blocks until every rank in the Network
// has called it, then every caller returns the same global maximum.
func (r *Rank) ReduceRealMax(v float64) float64 {
	return r.reduce(v, -math.MaxFloat64, func(a, b float64) float64 {
		if b > a {
			return b
		}
		return a
	})
}

// ReduceRealSum is a barrier: it blocks until every rank in the Network
// has called it, then every caller returns the same global sum.
func (r *Rank) ReduceRealSum(v float64) float64 {
	return r.reduce(v, 0, func(a, b float64) float64 { return a + b })
}

// Bcast is a barrier: root's data is visible to every rank once every
// rank has called it.
func (r *Rank) Bcast(data []byte, root int) error {
	net := r.net
	net.bcastMu.Lock()
	defer net.bcastMu.Unlock()
	gen := net.bcastGen
	if r.id == root {
		net.bcastData = append([]byte(nil), data...)
	}
	net.bcastCount++
	if net.bcastCount == net.nprocs {
		net.bcastCount = 0
		net.bcastGen++
		net.bcastCond.Broadcast()
	} else {
		for net.bcastGen == gen {
			net.bcastCond.Wait()
		}
	}
	if r.id != root {
		if len(data) != len(net.bcastData) {
			return errors.Errorf("simnet: Bcast size mismatch: root sent %d bytes, receiver buffer is %d", len(net.bcastData), len(data))
		}
		copy(data, net.bcastData)
	}
	return nil
}
