//go:build amrx_debug

package dbg

import "sync/atomic"

var liveFabArrays int64

// FabArrayCreated records that one more FabArray is live. Called from
// fab.NewFabArray.
func FabArrayCreated() { atomic.AddInt64(&liveFabArrays, 1) }

// FabArrayReleased records that one fewer FabArray is live. Called from
// FabArray.Release.
func FabArrayReleased() { atomic.AddInt64(&liveFabArrays, -1) }

// AssertNoLiveFabArrays panics if any FabArray has not been released,
// matching spec.md §9's "no FabArray outlives finalize" invariant. Only
// compiled into -tags amrx_debug builds; xpdesc.Finalize calls this
// unconditionally, and it is a no-op in release builds (see debug_off.go).
func AssertNoLiveFabArrays() {
	if n := atomic.LoadInt64(&liveFabArrays); n != 0 {
		panic("amrx: Finalize called with live FabArrays outstanding")
	}
}
