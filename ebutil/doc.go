// Package ebutil implements spec.md §4.5's embedded-boundary-aware
// reductions: replacing covered cells with a global minimum, materializing
// per-cell volume fractions into a plain numeric FabArray, and averaging a
// fine FabArray down onto a coarse one with EB-aware weights.
package ebutil
