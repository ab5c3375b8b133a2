package fab

// Numeric constrains the element type a Fab may hold. This module does
// not take the golang.org/x/exp/constraints dependency since this one
// local constraint covers every type the rest of the package needs.
type Numeric interface {
	~float64 | ~float32 | ~int64 | ~int32
}
