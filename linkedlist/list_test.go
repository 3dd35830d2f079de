package linkedlist_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/arsenal/slotalloc"
	"github.com/vkngwrapper/arsenal/slotalloc/linkedlist"
)

func TestList(t *testing.T) {
	allocator := newLinkedList[int](t, 2)
	list := linkedlist.NewList(allocator)
	require.True(t, list.IsEmpty())

	_, err := list.PopFront()
	require.ErrorIs(t, err, slotalloc.EmptyChainError)

	for i := 1; i <= 3; i++ {
		require.NoError(t, list.PushFront(i))
	}
	require.NoError(t, list.PushFrontZero())

	length, err := list.Len()
	require.NoError(t, err)
	require.Equal(t, 4, length)

	values, err := list.Values()
	require.NoError(t, err)
	require.Equal(t, []int{0, 3, 2, 1}, values)

	value, err := list.PopFront()
	require.NoError(t, err)
	require.Equal(t, 0, value)

	view, err := list.Slice(1, 2)
	require.NoError(t, err)
	values, err = view.Values()
	require.NoError(t, err)
	require.Equal(t, []int{2, 1}, values)

	require.NoError(t, list.Resize(5))
	values, err = list.Values()
	require.NoError(t, err)
	require.Equal(t, []int{3, 2, 1, 0, 0}, values)

	require.NoError(t, list.Free())
	require.True(t, list.IsEmpty())
	require.Equal(t, 0, allocator.Len())

	values, err = list.Values()
	require.NoError(t, err)
	require.Empty(t, values)
}

func TestListsShareAllocator(t *testing.T) {
	allocator := newLinkedList[string](t, 4)
	first := linkedlist.NewList(allocator)
	second := linkedlist.NewList(allocator)

	require.NoError(t, first.PushFront("a"))
	require.NoError(t, second.PushFront("x"))
	require.NoError(t, first.PushFront("b"))
	require.NoError(t, second.PushFront("y"))

	values, err := first.Values()
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a"}, values)

	values, err = second.Values()
	require.NoError(t, err)
	require.Equal(t, []string{"y", "x"}, values)

	require.Equal(t, 2, allocator.ChainCount())
	require.NoError(t, allocator.Validate())
}
