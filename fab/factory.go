package fab

import "github.com/parallelmesh/amrx/box"

// Factory constructs Fabs for a FabArray, standing in for spec.md §3's
// FabArray "Factory" field. RunOn reports the placement hint
// FabArray.ForEachLocal uses to pick between a host parallel-for and a
// sequential loop (the exchange package does not consult it)
// (spec.md §5's device/host distinction); this module never actually
// dispatches to a device, so both hints produce identical numeric
// results.
type Factory[T Numeric] interface {
	Alloc(b box.IndexBox, ncomp int) *Fab[T]
	RunOn() RunKind
}

// RunKind is the placement hint a Factory advertises.
type RunKind int

const (
	// RunHost parallelizes tile iteration across goroutines.
	RunHost RunKind = iota
	// RunDevice is a placeholder for a GPU launch path; this module
	// runs it sequentially on the host since it implements no actual
	// device dispatch.
	RunDevice
)

// DefaultFactory allocates plain host Fabs via fab.New and reports
// RunHost.
type DefaultFactory[T Numeric] struct{}

func (DefaultFactory[T]) Alloc(b box.IndexBox, ncomp int) *Fab[T] { return New[T](b, ncomp) }
func (DefaultFactory[T]) RunOn() RunKind                          { return RunHost }
