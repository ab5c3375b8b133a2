// Package amrstat computes rank-global summary statistics (min, max, sum,
// volume-weighted average) over a FabArray already resident in memory,
// per SPEC_FULL.md §3A. It supplements spec.md's explicitly out-of-scope
// AmrData plotfile statistics utilities with the reduction half only: no
// file I/O and no AmrData hierarchy, just a FabArray consumer.
package amrstat
