package distmap

import (
	"sort"

	farm "github.com/dgryski/go-farm"
	"github.com/pkg/errors"
)

// DistributionMap is the total function BoxIndex -> Rank every FabArray
// carries alongside its BoxArray (spec.md §3). It must be deterministic
// across ranks: every rank that builds the same DistributionMap from the
// same inputs gets byte-identical Owner slices, since ranks never
// exchange the map itself.
type DistributionMap struct {
	owner   []int
	nprocs  int
}

// New wraps an explicit owner-per-box-index slice. It is the caller's
// responsibility to ensure every rank constructs this slice identically;
// New itself performs no communication.
func New(owner []int, nprocs int) (*DistributionMap, error) {
	if nprocs <= 0 {
		return nil, errors.Errorf("distmap: nprocs must be positive, got %d", nprocs)
	}
	for i, r := range owner {
		if r < 0 || r >= nprocs {
			return nil, errors.Errorf("distmap: owner[%d]=%d out of range [0,%d)", i, r, nprocs)
		}
	}
	return &DistributionMap{owner: append([]int(nil), owner...), nprocs: nprocs}, nil
}

// RoundRobin assigns box i to rank i%nprocs, AMReX's simplest strategy and
// the default when no cost model is available.
func RoundRobin(nboxes, nprocs int) *DistributionMap {
	owner := make([]int, nboxes)
	for i := range owner {
		owner[i] = i % nprocs
	}
	return &DistributionMap{owner: owner, nprocs: nprocs}
}

// Hash assigns box i to rank hash(keys[i]) % nprocs using FarmHash, giving
// a distribution that is deterministic across ranks without requiring a
// shared sequential counter, provided every rank is handed the same keys
// slice (e.g. a stable per-box identifier computed from its IndexBox
// bounds). Useful when boxes are discovered independently on each rank
// and must still agree on ownership without a round-trip.
func Hash(keys [][]byte, nprocs int) *DistributionMap {
	owner := make([]int, len(keys))
	for i, k := range keys {
		h := farm.Hash64(k)
		owner[i] = int(h % uint64(nprocs))
	}
	return &DistributionMap{owner: owner, nprocs: nprocs}
}

// weightedBox pairs a box index with an assignment cost (e.g. its point
// count), used by Knapsack.
type weightedBox struct {
	index int
	cost  int64
}

// Knapsack greedily balances boxes across ranks by descending cost,
// always handing the next-heaviest box to the currently-lightest rank
// (AMReX's SFC/knapsack load-balancing heuristic, simplified to the
// greedy variant: it is not optimal but is deterministic, O(n log n),
// and needs no communication once costs are known on every rank
// identically). costs must have the same length as the BoxArray and be
// identical on every rank for the result to be deterministic.
func Knapsack(costs []int64, nprocs int) (*DistributionMap, error) {
	if nprocs <= 0 {
		return nil, errors.Errorf("distmap: nprocs must be positive, got %d", nprocs)
	}
	boxes := make([]weightedBox, len(costs))
	for i, c := range costs {
		boxes[i] = weightedBox{index: i, cost: c}
	}
	sort.Slice(boxes, func(a, b int) bool {
		if boxes[a].cost != boxes[b].cost {
			return boxes[a].cost > boxes[b].cost
		}
		return boxes[a].index < boxes[b].index
	})

	load := make([]int64, nprocs)
	owner := make([]int, len(costs))
	for _, wb := range boxes {
		lightest := 0
		for r := 1; r < nprocs; r++ {
			if load[r] < load[lightest] {
				lightest = r
			}
		}
		owner[wb.index] = lightest
		load[lightest] += wb.cost
	}
	return &DistributionMap{owner: owner, nprocs: nprocs}, nil
}

// Len returns the number of box indices covered.
func (dm *DistributionMap) Len() int { return len(dm.owner) }

// NProcs returns the rank count this map was built for.
func (dm *DistributionMap) NProcs() int { return dm.nprocs }

// Owner returns the rank owning box index i.
func (dm *DistributionMap) Owner(i int) int { return dm.owner[i] }

// LocalIndices returns every box index owned by rank.
func (dm *DistributionMap) LocalIndices(rank int) []int {
	var out []int
	for i, r := range dm.owner {
		if r == rank {
			out = append(out, i)
		}
	}
	return out
}

// Equal reports whether two maps were built for the same rank count and
// assign the same owner to every index. The plan cache does not use it:
// its key holds the *DistributionMap pointer itself.
func (dm *DistributionMap) Equal(o *DistributionMap) bool {
	if dm.nprocs != o.nprocs || len(dm.owner) != len(o.owner) {
		return false
	}
	for i := range dm.owner {
		if dm.owner[i] != o.owner[i] {
			return false
		}
	}
	return true
}
