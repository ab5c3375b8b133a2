package xpdesc

import (
	"sync"

	"github.com/parallelmesh/amrx/dbg"
)

// Clearable is implemented by process-wide caches (comtag's plan cache)
// that Finalize must reset so a later Initialize starts clean.
type Clearable interface {
	Clear()
}

var (
	mu        sync.Mutex
	currentPD ParallelDescriptor
	arena     *Arena
	caches    []Clearable
)

// Initialize installs pd as the process-wide ParallelDescriptor and
// allocates the process-wide Arena, per spec.md §9's initialize/finalize
// lifecycle.
func Initialize(pd ParallelDescriptor) {
	mu.Lock()
	defer mu.Unlock()
	currentPD = pd
	arena = &Arena{}
}

// Finalize clears every registered cache and the process-wide
// descriptor/arena. In -tags amrx_debug builds it panics if any
// FabArray is still live, matching spec.md §9's "no FabArray outlives
// finalize" invariant.
func Finalize() {
	mu.Lock()
	defer mu.Unlock()
	dbg.AssertNoLiveFabArrays()
	for _, c := range caches {
		c.Clear()
	}
	currentPD = nil
	arena = nil
}

// RegisterCache adds c to the set Finalize clears. comtag's plan cache
// calls this once at package init.
func RegisterCache(c Clearable) {
	mu.Lock()
	defer mu.Unlock()
	caches = append(caches, c)
}

// Current returns the process-wide ParallelDescriptor installed by
// Initialize, or nil if uninitialized.
func Current() ParallelDescriptor {
	mu.Lock()
	defer mu.Unlock()
	return currentPD
}

// CurrentArena returns the process-wide Arena installed by Initialize,
// or nil if uninitialized.
func CurrentArena() *Arena {
	mu.Lock()
	defer mu.Unlock()
	return arena
}
