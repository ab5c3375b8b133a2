// Package xpdesc defines the collaborator interfaces the core
// (exchange, fluxreg) consumes to talk to the outside world: rank
// identity and async messaging (ParallelDescriptor) and aligned
// allocation (Arena). Two ParallelDescriptor implementations live here
// and in the simnet subpackage: Single for the NProcs()==1 fast path,
// and simnet for goroutine-simulated multi-rank tests.
package xpdesc
