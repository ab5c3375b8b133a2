// Package fab implements Fab, the dense numeric tile type, and FabArray,
// the distributed collection of Fabs indexed by a BoxArray and a
// DistributionMap that the rest of this module communicates over.
package fab
