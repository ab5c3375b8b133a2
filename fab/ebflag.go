package fab

import "github.com/parallelmesh/amrx/box"

// EBCellFlag tags one cell's relationship to an embedded-boundary cut
// (spec.md §4.5 / GLOSSARY's EB, VoF). It is an int8 enum rather than a
// richer struct because ebutil's reductions only ever need to branch on
// which of the four kinds a cell is.
type EBCellFlag int8

const (
	// Regular cells are entirely inside the fluid domain.
	Regular EBCellFlag = iota
	// Covered cells are entirely inside the embedded boundary.
	Covered
	// SingleValued cells are cut by the boundary into exactly one
	// fluid sub-region.
	SingleValued
	// MultiValued cells are cut into more than one disconnected fluid
	// sub-region (a VoF case); ebutil.AverageDown treats this as fatal,
	// per spec.md's "not supported (fatal)".
	MultiValued
)

func (f EBCellFlag) String() string {
	switch f {
	case Regular:
		return "regular"
	case Covered:
		return "covered"
	case SingleValued:
		return "single-valued"
	case MultiValued:
		return "multi-valued"
	default:
		return "unknown"
	}
}

// EBFlagFab is the per-cell flag tile accompanying a numeric Fab over
// the same box: one EBCellFlag and one volume fraction per cell.
type EBFlagFab struct {
	Box       box.IndexBox
	flags     []EBCellFlag
	volFrac   []float64
}

// NewEBFlagFab allocates an all-Regular, volume-fraction-1 flag tile
// over b.
func NewEBFlagFab(b box.IndexBox) *EBFlagFab {
	n := b.NumPts()
	f := &EBFlagFab{Box: b, flags: make([]EBCellFlag, n), volFrac: make([]float64, n)}
	for i := range f.volFrac {
		f.volFrac[i] = 1.0
	}
	return f
}

func (f *EBFlagFab) cellIndex(idx [3]int, dim int) int64 {
	l := f.Box.Length()
	var stride int64 = 1
	var off int64
	for d := 0; d < dim; d++ {
		off += int64(idx[d]-f.Box.Lo.V[d]) * stride
		stride *= int64(l.V[d])
	}
	return off
}

// Flag returns the cell kind at idx.
func (f *EBFlagFab) Flag(idx [3]int, dim int) EBCellFlag {
	return f.flags[f.cellIndex(idx, dim)]
}

// SetFlag sets the cell kind at idx.
func (f *EBFlagFab) SetFlag(idx [3]int, dim int, k EBCellFlag) {
	f.flags[f.cellIndex(idx, dim)] = k
}

// VolFrac returns the volume fraction stored at idx: 1.0 unless
// SetVolFrac changed it. SetFlag does not change it, so a cell flagged
// Covered still reports 1.0 until SetVolFrac sets it.
func (f *EBFlagFab) VolFrac(idx [3]int, dim int) float64 {
	return f.volFrac[f.cellIndex(idx, dim)]
}

// SetVolFrac sets the volume fraction at idx.
func (f *EBFlagFab) SetVolFrac(idx [3]int, dim int, v float64) {
	f.volFrac[f.cellIndex(idx, dim)] = v
}
