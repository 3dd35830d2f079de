package slab_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/arsenal/slotalloc"
	"github.com/vkngwrapper/arsenal/slotalloc/slab"
	"github.com/vkngwrapper/arsenal/slotalloc/store"
	"golang.org/x/exp/slices"
	"pgregory.net/rapid"
)

type slabState struct {
	allocator *slab.Allocator[int]
	live      map[store.Handle]int
	freed     []store.Handle
	lastFreed store.Handle
	next      int
}

func (s *slabState) init(t *rapid.T) {
	capacity := rapid.IntRange(0, 8).Draw(t, "capacity")
	increment := rapid.IntRange(0, 3).Draw(t, "increment")

	var err error
	s.allocator, err = slab.New[int](nil, slab.CreateOptions[int]{
		CreateOptions: slotalloc.CreateOptions{
			InitialCapacity: capacity,
			GrowthIncrement: increment,
		},
	})
	require.NoError(t, err)
	s.live = map[store.Handle]int{}
}

func (s *slabState) Allocate(t *rapid.T) {
	s.next++
	h, err := s.allocator.Allocate(s.next)
	require.NoError(t, err)

	// The most recently freed slot is always reused first
	if !s.lastFreed.IsNil() {
		require.Equal(t, s.lastFreed.Index(), h.Index())
	}
	s.lastFreed = store.NoHandle

	_, duplicate := s.live[h]
	require.False(t, duplicate)
	s.live[h] = s.next
}

func (s *slabState) Deallocate(t *rapid.T) {
	if len(s.live) == 0 {
		t.Skip("nothing to deallocate")
	}

	handles := make([]store.Handle, 0, len(s.live))
	for h := range s.live {
		handles = append(handles, h)
	}
	slices.SortFunc(handles, func(a, b store.Handle) bool { return a.Index() < b.Index() })

	h := rapid.SampledFrom(handles).Draw(t, "handle")
	require.NoError(t, s.allocator.Deallocate(h))
	delete(s.live, h)
	s.freed = append(s.freed, h)
	s.lastFreed = h
}

func (s *slabState) DeallocateStale(t *rapid.T) {
	if len(s.freed) == 0 {
		t.Skip("nothing has been freed")
	}

	h := rapid.SampledFrom(s.freed).Draw(t, "stale")
	require.ErrorIs(t, s.allocator.Deallocate(h), slotalloc.InvalidHandleError)
}

func (s *slabState) Grow(t *rapid.T) {
	extra := rapid.IntRange(0, 5).Draw(t, "extra")
	require.NoError(t, s.allocator.Grow(s.allocator.Capacity()+extra))
}

func (s *slabState) Check(t *rapid.T) {
	require.NoError(t, s.allocator.Validate())
	require.Equal(t, len(s.live), s.allocator.Len())

	// Every handle survives any number of grows
	for h, expected := range s.live {
		value, err := s.allocator.Get(h)
		require.NoError(t, err)
		require.Equal(t, expected, value)
	}

	var indices []int
	iter := s.allocator.UsedBlocks()
	for iter.Next() {
		expected, ok := s.live[iter.Handle()]
		require.True(t, ok)
		require.Equal(t, expected, iter.Value())
		indices = append(indices, iter.Handle().Index())
	}
	require.NoError(t, iter.Err())
	require.Len(t, indices, len(s.live))
	require.True(t, slices.IsSorted(indices))
}

func TestSlabProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := slabState{}
		s.init(t)
		t.Repeat(rapid.StateMachineActions(&s))
	})
}
