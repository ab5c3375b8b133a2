package box

import "github.com/parallelmesh/amrx/ivec"

// IndexType records, per dimension, whether a box's indices address cells
// (0) or nodes (1). A cell-centered box has every component 0; a
// node-centered box has every component 1; a face-in-direction-k box has a
// 1 only in component k ("face" centering, per spec.md's "node/cell
// centering types... or face-in-direction k").
type IndexType struct {
	Dim int
	Bit [ivec.MaxDim]uint8
}

// CellType returns the all-cell centering for the given dimension.
func CellType(dim int) IndexType { return IndexType{Dim: dim} }

// NodeType returns the all-node centering for the given dimension.
func NodeType(dim int) IndexType {
	it := IndexType{Dim: dim}
	for i := 0; i < dim; i++ {
		it.Bit[i] = 1
	}
	return it
}

// FaceType returns the centering for faces normal to direction dir: nodal
// in dir, cell-centered in every other direction.
func FaceType(dim, dir int) IndexType {
	it := IndexType{Dim: dim}
	it.Bit[dir] = 1
	return it
}

// CellCentered reports whether every component is cell-centered.
func (it IndexType) CellCentered() bool {
	for i := 0; i < it.Dim; i++ {
		if it.Bit[i] != 0 {
			return false
		}
	}
	return true
}

// NodeCentered reports whether every component is node-centered.
func (it IndexType) NodeCentered() bool {
	for i := 0; i < it.Dim; i++ {
		if it.Bit[i] == 0 {
			return false
		}
	}
	return true
}

// FaceDir returns the single nodal direction for a face-centered type and
// true, or (-1, false) if it is not a pure face centering (all-cell,
// all-node, or more than one nodal direction).
func (it IndexType) FaceDir() (int, bool) {
	dir, count := -1, 0
	for i := 0; i < it.Dim; i++ {
		if it.Bit[i] != 0 {
			dir = i
			count++
		}
	}
	if count == 1 {
		return dir, true
	}
	return -1, false
}

// NodeVect returns 1 in every nodal component and 0 elsewhere, i.e. the
// amount a cell-centered box's Hi must grow by to enumerate this
// centering's indices (AMReX's "type()" IntVect).
func (it IndexType) NodeVect() ivec.IntVect {
	var v ivec.IntVect
	v.Dim = it.Dim
	for i := 0; i < it.Dim; i++ {
		v.V[i] = int(it.Bit[i])
	}
	return v
}

func (it IndexType) Equal(o IndexType) bool {
	if it.Dim != o.Dim {
		return false
	}
	for i := 0; i < it.Dim; i++ {
		if it.Bit[i] != o.Bit[i] {
			return false
		}
	}
	return true
}
