package box

import "github.com/parallelmesh/amrx/ivec"

// Periodicity describes which dimensions of a domain wrap around, and by
// how much (spec.md's "periodicity shifts"). Period[i]==0 means dimension i
// is not periodic.
type Periodicity struct {
	Dim    int
	Period ivec.IntVect // domain length per periodic dimension; 0 = non-periodic in that dim
}

// NonPeriodic returns the trivial (no wrap) periodicity for dim dimensions.
func NonPeriodic(dim int) Periodicity {
	return Periodicity{Dim: dim, Period: ivec.Zero(dim)}
}

// NewPeriodicity returns a periodicity with the given per-dimension domain
// lengths; a zero length means non-periodic in that dimension.
func NewPeriodicity(period ivec.IntVect) Periodicity {
	return Periodicity{Dim: period.Dim, Period: period}
}

// IsAnyPeriodic reports whether at least one dimension wraps.
func (p Periodicity) IsAnyPeriodic() bool {
	for i := 0; i < p.Dim; i++ {
		if p.Period.V[i] != 0 {
			return true
		}
	}
	return false
}

// IsPeriodic reports whether dimension dir wraps.
func (p Periodicity) IsPeriodic(dir int) bool { return p.Period.V[dir] != 0 }

// ShiftIntVect enumerates every periodic-image translation, including the
// zero shift, in deterministic order (zero shift first, then lexicographic
// over the remaining combinations). A cell covered by both a direct
// abutment and a periodic image sees only the direct one because the
// caller intersects against the unshifted BoxArray first, per spec.md
// §4.2's tie-break rule; ShiftIntVect itself makes no such distinction.
func (p Periodicity) ShiftIntVect() []ivec.IntVect {
	var axes [][]int
	for i := 0; i < p.Dim; i++ {
		if p.Period.V[i] == 0 {
			axes = append(axes, []int{0})
		} else {
			axes = append(axes, []int{0, -p.Period.V[i], p.Period.V[i]})
		}
	}
	shifts := []ivec.IntVect{ivec.Zero(p.Dim)}
	seen := map[ivec.IntVect]bool{ivec.Zero(p.Dim): true}
	var rec func(dim int, acc []int)
	rec = func(dim int, acc []int) {
		if dim == p.Dim {
			v := ivec.New(p.Dim, acc...)
			if !seen[v] {
				seen[v] = true
				shifts = append(shifts, v)
			}
			return
		}
		for _, s := range axes[dim] {
			rec(dim+1, append(acc, s))
		}
	}
	rec(0, make([]int, 0, p.Dim))
	return shifts
}
