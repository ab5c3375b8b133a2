// Package dbg holds the debug-build-only assertions referenced by
// spec.md §9: a live-FabArray count checked at Finalize, and a place for
// other -tags amrx_debug-gated invariant checks the core packages call
// into without themselves depending on a build tag.
package dbg
