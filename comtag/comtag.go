package comtag

import "github.com/parallelmesh/amrx/box"

// CopyComTag is one (source -> destination) rectangular transfer
// descriptor (spec.md §3): the data in SrcIndex over region SBox must be
// written to DstIndex over region DBox. SBox and DBox always have equal
// cardinality so pack/unpack can walk them in lockstep.
type CopyComTag struct {
	SrcIndex int
	DstIndex int
	SBox     box.IndexBox
	DBox     box.IndexBox
}

// disjointDBoxes reports whether no two tags' DBox overlap, spec.md
// §4.1's threadsafe_rcv test.
func disjointDBoxes(tags []CopyComTag) bool {
	for i := 0; i < len(tags); i++ {
		for j := i + 1; j < len(tags); j++ {
			if tags[i].DBox.Intersects(tags[j].DBox) {
				return false
			}
		}
	}
	return true
}
