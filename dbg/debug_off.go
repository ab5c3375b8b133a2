//go:build !amrx_debug

package dbg

// FabArrayCreated is a no-op in release builds.
func FabArrayCreated() {}

// FabArrayReleased is a no-op in release builds.
func FabArrayReleased() {}

// AssertNoLiveFabArrays is a no-op in release builds.
func AssertNoLiveFabArrays() {}
