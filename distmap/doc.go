// Package distmap implements DistributionMap, the total function from a
// BoxArray index to the owning rank that every FabArray carries alongside
// its BoxArray.
package distmap
