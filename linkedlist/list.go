package linkedlist

import "github.com/vkngwrapper/arsenal/slotalloc/store"

// List tracks the head of a single chain so that callers don't have to thread the head handle through
// every call. Several Lists may share one Allocator.
type List[T any] struct {
	allocator *Allocator[T]
	head      store.Handle
}

// NewList creates an empty List whose nodes are allocated from allocator
func NewList[T any](allocator *Allocator[T]) *List[T] {
	return &List[T]{allocator: allocator}
}

// Head returns the handle of the first node, or store.NoHandle if the list is empty
func (l *List[T]) Head() store.Handle { return l.head }

// IsEmpty returns true if the list has no nodes
func (l *List[T]) IsEmpty() bool { return l.head.IsNil() }

// Len returns the number of nodes in the list
func (l *List[T]) Len() (int, error) {
	return l.allocator.ChainLen(l.head)
}

// PushFront adds value to the front of the list
func (l *List[T]) PushFront(value T) error {
	head, err := l.allocator.PushFront(l.head, value)
	if err != nil {
		return err
	}

	l.head = head
	return nil
}

// PushFrontZero adds the zero value of T to the front of the list
func (l *List[T]) PushFrontZero() error {
	head, err := l.allocator.PushFrontZero(l.head)
	if err != nil {
		return err
	}

	l.head = head
	return nil
}

// PopFront removes and returns the value at the front of the list. slotalloc.EmptyChainError is
// returned if the list is empty.
func (l *List[T]) PopFront() (T, error) {
	value, next, err := l.allocator.PopFront(l.head)
	if err != nil {
		return value, err
	}

	l.head = next
	return value, nil
}

// Slice returns a view over length values starting at start. See Allocator.Slice.
func (l *List[T]) Slice(start, length int) (SliceView[T], error) {
	return l.allocator.Slice(l.head, start, length)
}

// Resize grows or shrinks the list to length values. See Allocator.Resize.
func (l *List[T]) Resize(length int) error {
	head, err := l.allocator.Resize(l.head, length)
	if err != nil {
		return err
	}

	l.head = head
	return nil
}

// Values copies every value in the list into a new slice, front first
func (l *List[T]) Values() ([]T, error) {
	length, err := l.Len()
	if err != nil {
		return nil, err
	}

	view, err := l.Slice(0, length)
	if err != nil {
		return nil, err
	}
	return view.Values()
}

// Free releases every node in the list, leaving it empty
func (l *List[T]) Free() error {
	err := l.allocator.FreeChain(l.head)
	if err != nil {
		return err
	}

	l.head = store.NoHandle
	return nil
}
