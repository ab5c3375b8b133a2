// Package fluxreg implements FlashFluxRegister, the coarse/fine
// conservation fix-up mechanism: it stores face-averaged fine fluxes at
// every coarse/fine interface and, after a ParallelCopy-based
// communicate step, hands scaled values back to the caller for
// refluxing, per spec.md §4.4.
package fluxreg
