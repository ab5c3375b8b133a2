package box

import (
	"testing"

	"github.com/parallelmesh/amrx/ivec"
	"github.com/stretchr/testify/assert"
)

func TestBdryNode(t *testing.T) {
	b := New2D(0, 0, 3, 7)
	lo := BdryNode(b, 0, Lo)
	assert.Equal(t, ivec.New(2, 0, 0), lo.Lo)
	assert.Equal(t, ivec.New(2, 0, 7), lo.Hi)
	assert.Equal(t, FaceType(2, 0), lo.Kind)

	hi := BdryNode(b, 0, Hi)
	assert.Equal(t, ivec.New(2, 4, 0), hi.Lo)
	assert.Equal(t, ivec.New(2, 4, 7), hi.Hi)
}

func TestAdjCell(t *testing.T) {
	b := New2D(0, 0, 3, 7)
	lo := AdjCell(b, 0, Lo)
	assert.Equal(t, ivec.New(2, -1, 0), lo.Lo)
	assert.Equal(t, ivec.New(2, -1, 7), lo.Hi)
	assert.Equal(t, CellType(2), lo.Kind)

	hi := AdjCell(b, 0, Hi)
	assert.Equal(t, ivec.New(2, 4, 0), hi.Lo)
	assert.Equal(t, ivec.New(2, 4, 7), hi.Hi)
}

func TestSurroundingNodes(t *testing.T) {
	b := New2D(0, 0, 3, 7)
	n := SurroundingNodes(b)
	assert.Equal(t, ivec.New(2, 0, 0), n.Lo)
	assert.Equal(t, ivec.New(2, 4, 8), n.Hi)
	assert.Equal(t, NodeType(2), n.Kind)
}

func TestOrientations(t *testing.T) {
	os := Orientations(2)
	assert.Equal(t, []Orientation{
		{Dir: 0, Side: Lo}, {Dir: 0, Side: Hi},
		{Dir: 1, Side: Lo}, {Dir: 1, Side: Hi},
	}, os)
}
