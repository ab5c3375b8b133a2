package box

// Side selects the low or high boundary of a box along some direction.
type Side int

const (
	Lo Side = iota
	Hi
)

// Orientation names one of a box's 2*D boundary faces (spec.md §4.4's
// "Orientation(dir, side)").
type Orientation struct {
	Dir  int
	Side Side
}

// SurroundingNodes returns the all-dimensions node-centered box enclosing
// the same physical region as the cell-centered box b (AMReX's
// surroundingNodes): Lo is unchanged, Hi grows by one in every dimension.
func SurroundingNodes(b IndexBox) IndexBox {
	hi := b.Hi
	for i := 0; i < b.Lo.Dim; i++ {
		hi.V[i]++
	}
	return IndexBox{Lo: b.Lo, Hi: hi, Kind: NodeType(b.Lo.Dim)}
}

// BdryNode returns the single-layer, face-centered box (nodal in dir,
// cell-centered in every other dimension) at the low or high boundary of
// cell-centered box b along dir, per spec.md §4.4's coarse/fine face
// identification. The non-dir extents match b's cell extents unchanged.
func BdryNode(b IndexBox, dir int, side Side) IndexBox {
	lo, hi := b.Lo, b.Hi
	if side == Lo {
		hi.V[dir] = lo.V[dir]
	} else {
		lo.V[dir] = hi.V[dir] + 1
		hi.V[dir] = lo.V[dir]
	}
	return IndexBox{Lo: lo, Hi: hi, Kind: FaceType(b.Lo.Dim, dir)}
}

// AdjCell returns the single-cell-thick box immediately outside b along
// dir, on the low or high side, sharing b's centering.
func AdjCell(b IndexBox, dir int, side Side) IndexBox {
	lo, hi := b.Lo, b.Hi
	if side == Lo {
		lo.V[dir] = b.Lo.V[dir] - 1
		hi.V[dir] = lo.V[dir]
	} else {
		lo.V[dir] = b.Hi.V[dir] + 1
		hi.V[dir] = lo.V[dir]
	}
	return IndexBox{Lo: lo, Hi: hi, Kind: b.Kind}
}

// Orientations returns every one of dim's 2*dim (dir, side) pairs.
func Orientations(dim int) []Orientation {
	out := make([]Orientation, 0, 2*dim)
	for d := 0; d < dim; d++ {
		out = append(out, Orientation{Dir: d, Side: Lo}, Orientation{Dir: d, Side: Hi})
	}
	return out
}
