package fab

import (
	"github.com/grailbio/base/traverse"
	"github.com/parallelmesh/amrx/box"
	"github.com/parallelmesh/amrx/dbg"
	"github.com/parallelmesh/amrx/distmap"
	"github.com/parallelmesh/amrx/ivec"
	"github.com/pkg/errors"
)

// FabArray is the tuple (BoxArray, DistributionMap, ncomp, nghost,
// Factory) of spec.md §3: it owns a Fab for every index the
// DistributionMap assigns to myRank, and treats every other index's
// ghost region as derived state filled in by the exchange package.
//
// Structural fields (BA, DM, NComp, Nghost, Factory) are immutable after
// NewFabArray returns; only Fab contents change afterward.
type FabArray[T Numeric] struct {
	ba      *box.BoxArray
	dm      *distmap.DistributionMap
	ncomp   int
	nghost  ivec.IntVect
	factory Factory[T]
	myRank  int

	local map[int]*Fab[T] // keyed by global BoxArray index
}

// NewFabArray builds a FabArray over ba/dm with ncomp components and
// nghost ghost cells, allocating (via factory) one Fab for every index
// owned by myRank.
func NewFabArray[T Numeric](ba *box.BoxArray, dm *distmap.DistributionMap, ncomp int, nghost ivec.IntVect, factory Factory[T], myRank int) (*FabArray[T], error) {
	if ba.Len() != dm.Len() {
		return nil, errors.Errorf("fab: BoxArray has %d boxes but DistributionMap covers %d", ba.Len(), dm.Len())
	}
	fa := &FabArray[T]{ba: ba, dm: dm, ncomp: ncomp, nghost: nghost, factory: factory, myRank: myRank, local: map[int]*Fab[T]{}}
	for _, i := range dm.LocalIndices(myRank) {
		grown := ba.Box(i).Grow(nghost)
		fa.local[i] = factory.Alloc(grown, ncomp)
	}
	dbg.FabArrayCreated()
	return fa, nil
}

// BoxArray returns the structural BoxArray.
func (fa *FabArray[T]) BoxArray() *box.BoxArray { return fa.ba }

// DistMap returns the structural DistributionMap.
func (fa *FabArray[T]) DistMap() *distmap.DistributionMap { return fa.dm }

// NComp returns the component count.
func (fa *FabArray[T]) NComp() int { return fa.ncomp }

// Nghost returns the ghost-cell width.
func (fa *FabArray[T]) Nghost() ivec.IntVect { return fa.nghost }

// MyRank returns the owning rank this FabArray was constructed for.
func (fa *FabArray[T]) MyRank() int { return fa.myRank }

// IsLocal reports whether index i is owned by MyRank.
func (fa *FabArray[T]) IsLocal(i int) bool {
	_, ok := fa.local[i]
	return ok
}

// Local returns the Fab for locally-owned index i, or nil if i is not
// local.
func (fa *FabArray[T]) Local(i int) *Fab[T] { return fa.local[i] }

// LocalIndices returns every globally-owned index this rank holds, in
// BoxArray order.
func (fa *FabArray[T]) LocalIndices() []int {
	return fa.dm.LocalIndices(fa.myRank)
}

// ForEachLocal calls fn once per locally-owned index, in parallel across
// goroutines when the Factory advertises RunHost (spec.md §5's "parallel
// for over tile iterator positions"), or sequentially under RunDevice
// since this module has no actual device dispatch to offload to.
func (fa *FabArray[T]) ForEachLocal(fn func(index int, f *Fab[T]) error) error {
	idxs := fa.LocalIndices()
	if fa.factory.RunOn() != RunHost {
		for _, i := range idxs {
			if err := fn(i, fa.local[i]); err != nil {
				return err
			}
		}
		return nil
	}
	return traverse.Each(len(idxs), func(k int) error {
		i := idxs[k]
		return fn(i, fa.local[i])
	})
}

// Release drops this FabArray's Fabs and decrements the live-FabArray
// count tracked by debug builds (spec.md §9's finalize invariant).
func (fa *FabArray[T]) Release() {
	fa.local = nil
	dbg.FabArrayReleased()
}
