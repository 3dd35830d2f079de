package linkedlist

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/vkngwrapper/arsenal/slotalloc"
	"github.com/vkngwrapper/arsenal/slotalloc/store"
)

// SliceView is a read/write window over a contiguous run of nodes in one chain. It does not own the
// nodes: freeing the chain or changing its structure (pushing, popping, resizing, freeing) after the
// view was created invalidates the view, and every access then fails with StaleSliceError. Writing
// values through the view or through the allocator does not invalidate it.
//
// Views are cheap to copy. The zero SliceView is a valid empty view.
type SliceView[T any] struct {
	allocator *Allocator[T]
	chain     uint64
	version   uint64
	handles   []store.Handle
}

// Slice returns a view over length nodes of the chain led by head, starting with the node start
// positions from the head. OutOfRangeError is returned if the chain has fewer than start+length
// nodes. A length of 0 always produces an empty view, as long as start is within the chain.
func (a *Allocator[T]) Slice(head store.Handle, start, length int) (SliceView[T], error) {
	if start < 0 || length < 0 {
		return SliceView[T]{}, cerrors.Wrapf(slotalloc.OutOfRangeError, "slice start %d and length %d must not be negative", start, length)
	}

	id, state, err := a.chainOf(head)
	if err != nil {
		return SliceView[T]{}, err
	}

	chainLength := 0
	var version uint64
	if state != nil {
		chainLength = state.length
		version = state.version
	}

	if start > chainLength || length > chainLength-start {
		return SliceView[T]{}, cerrors.Wrapf(slotalloc.OutOfRangeError, "slice of %d nodes from %d exceeds chain length %d", length, start, chainLength)
	}

	view := SliceView[T]{
		allocator: a,
		chain:     id,
		version:   version,
	}

	if length == 0 {
		return view, nil
	}

	h, err := a.nodeAt(head, start)
	if err != nil {
		return SliceView[T]{}, err
	}

	view.handles = make([]store.Handle, 0, length)
	for i := 0; i < length; i++ {
		n, err := a.store.GetMut(h)
		if err != nil {
			return SliceView[T]{}, err
		}

		view.handles = append(view.handles, h)
		h = n.next
	}

	return view, nil
}

// Len returns the number of nodes in the view
func (v SliceView[T]) Len() int { return len(v.handles) }

// IsEmpty returns true if the view has no nodes
func (v SliceView[T]) IsEmpty() bool { return len(v.handles) == 0 }

// Valid returns false if the chain this view was taken from has been structurally changed since
func (v SliceView[T]) Valid() bool {
	if v.chain == 0 {
		return true
	}

	state, ok := v.allocator.chains.Get(v.chain)
	return ok && state.version == v.version
}

func (v SliceView[T]) check(index int) error {
	if !v.Valid() {
		return cerrors.Wrapf(slotalloc.StaleSliceError, "chain %d", v.chain)
	}

	if index < 0 || index >= len(v.handles) {
		return cerrors.Wrapf(slotalloc.IndexOutOfBoundsError, "index %d is outside of a slice of length %d", index, len(v.handles))
	}

	return nil
}

// Handle returns the handle of the node at index within the view
func (v SliceView[T]) Handle(index int) (store.Handle, error) {
	err := v.check(index)
	if err != nil {
		return store.NoHandle, err
	}

	return v.handles[index], nil
}

// GetMut returns a pointer to the value at index within the view. The pointer must not be retained
// past the next operation that may grow the allocator.
func (v SliceView[T]) GetMut(index int) (*T, error) {
	err := v.check(index)
	if err != nil {
		return nil, err
	}

	n, err := v.allocator.store.GetMut(v.handles[index])
	if err != nil {
		return nil, err
	}

	return &n.value, nil
}

// Get returns a copy of the value at index within the view
func (v SliceView[T]) Get(index int) (T, error) {
	value, err := v.GetMut(index)
	if err != nil {
		var zero T
		return zero, err
	}

	return *value, nil
}

// Set replaces the value at index within the view
func (v SliceView[T]) Set(index int, value T) error {
	ptr, err := v.GetMut(index)
	if err != nil {
		return err
	}

	*ptr = value
	return nil
}

// Values copies every value in the view into a new slice
func (v SliceView[T]) Values() ([]T, error) {
	if !v.Valid() {
		return nil, cerrors.Wrapf(slotalloc.StaleSliceError, "chain %d", v.chain)
	}

	values := make([]T, 0, len(v.handles))
	for i := range v.handles {
		value, err := v.Get(i)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}

	return values, nil
}
