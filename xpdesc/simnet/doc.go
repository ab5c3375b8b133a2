// Package simnet is an in-process, goroutine-per-rank simulated network
// implementing xpdesc.ParallelDescriptor, standing in for a real MPI
// binding in tests and cmd/amrmesh-demo. It is explicitly not a general
// network transport: every Rank must live in the same process, and
// every collective call (ReduceRealMin, ReduceRealMax, ReduceRealSum,
// Bcast) requires every rank to call it, since there is no separate
// progress engine driving them.
package simnet
