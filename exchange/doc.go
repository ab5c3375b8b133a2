// Package exchange implements the two-phase non-blocking halo-exchange
// engine (FillBoundary) and the parallel-copy engine (ParallelCopy)
// built on comtag's cached plans and xpdesc's ParallelDescriptor.
package exchange
