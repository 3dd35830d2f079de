package store

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/arsenal/slotalloc"
)

func TestGenerationDoesNotWrapAt32Bits(t *testing.T) {
	s, err := New[int](1)
	require.NoError(t, err)

	s.slots[0].generation = math.MaxUint32
	stale, ok := s.Acquire(1)
	require.True(t, ok)
	require.NoError(t, s.Release(stale, true))

	current, ok := s.Acquire(2)
	require.True(t, ok)
	require.Equal(t, uint64(math.MaxUint32)+1, current.generation)
	require.NoError(t, s.Check(current))

	require.ErrorIs(t, s.Check(stale), slotalloc.InvalidHandleError)
	// What the handle would have held had the generation wrapped
	err = s.Check(Handle{index: 0, generation: 0, store: s.id})
	require.ErrorIs(t, err, slotalloc.InvalidHandleError)
}
