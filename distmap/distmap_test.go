package distmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRobin(t *testing.T) {
	dm := RoundRobin(7, 3)
	require.Equal(t, 7, dm.Len())
	assert.Equal(t, []int{0, 3, 6}, dm.LocalIndices(0))
	assert.Equal(t, 0, dm.Owner(3))
}

func TestNewRejectsOutOfRange(t *testing.T) {
	_, err := New([]int{0, 1, 5}, 2)
	assert.Error(t, err)
}

func TestHashDeterministic(t *testing.T) {
	keys := [][]byte{[]byte("box0"), []byte("box1"), []byte("box2")}
	a := Hash(keys, 4)
	b := Hash(keys, 4)
	assert.True(t, a.Equal(b))
}

func TestKnapsackBalancesLoad(t *testing.T) {
	costs := []int64{10, 10, 10, 10, 1, 1}
	dm, err := Knapsack(costs, 2)
	require.NoError(t, err)
	var load [2]int64
	for i, c := range costs {
		load[dm.Owner(i)] += c
	}
	assert.InDelta(t, load[0], load[1], 10)
}

func TestEqual(t *testing.T) {
	a := RoundRobin(4, 2)
	b := RoundRobin(4, 2)
	assert.True(t, a.Equal(b))
	c := RoundRobin(4, 3)
	assert.False(t, a.Equal(c))
}
