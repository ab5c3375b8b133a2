package xpdesc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectCommDataType(t *testing.T) {
	assert.Equal(t, DataByte, SelectCommDataType(3))
	assert.Equal(t, DataU64, SelectCommDataType(8))
	assert.Equal(t, DataLull, SelectCommDataType(64))
	assert.Equal(t, 32, AlignofCommData(64))
}

func TestSingleSeqNumAdvances(t *testing.T) {
	s := &Single{}
	a := s.SeqNum()
	b := s.SeqNum()
	assert.Equal(t, a+1, b)
	assert.Equal(t, 0, s.MyProc())
	assert.Equal(t, 1, s.NProcs())
}

func TestSingleRejectsAsend(t *testing.T) {
	s := &Single{}
	_, err := s.Asend(0, 1, nil)
	assert.Error(t, err)
	assert.NoError(t, s.Waitall(nil))
}

func TestArenaAlignment(t *testing.T) {
	a := &Arena{Align: 64}
	buf := a.Alloc(100)
	require.Len(t, buf, 100)
	assert.Equal(t, uintptr(0), uintptr(unsafe.Pointer(&buf[0]))%64)
}

func TestLifecycleClearsCaches(t *testing.T) {
	cleared := false
	RegisterCache(clearableFunc(func() { cleared = true }))
	Initialize(&Single{})
	assert.NotNil(t, Current())
	Finalize()
	assert.True(t, cleared)
	assert.Nil(t, Current())
}

type clearableFunc func()

func (f clearableFunc) Clear() { f() }
