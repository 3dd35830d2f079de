package linkedlist

import "github.com/vkngwrapper/arsenal/slotalloc/store"

// Get returns a copy of the value held by node h. Unlike the chain operations, h may be any live node,
// not just a head.
func (a *Allocator[T]) Get(h store.Handle) (T, error) {
	n, err := a.store.Get(h)
	if err != nil {
		var zero T
		return zero, err
	}

	return n.value, nil
}

// Value returns a pointer to the value held by node h, for callers doing their own traversal with
// Next. The pointer must not be retained past the next operation that may grow the allocator. The
// node's link and free/occupied state cannot be reached through it.
func (a *Allocator[T]) Value(h store.Handle) (*T, error) {
	n, err := a.store.GetMut(h)
	if err != nil {
		return nil, err
	}

	return &n.value, nil
}

// SetValue replaces the value held by node h. This is not a structural change and does not invalidate
// slice views.
func (a *Allocator[T]) SetValue(h store.Handle, value T) error {
	n, err := a.store.GetMut(h)
	if err != nil {
		return err
	}

	n.value = value
	return nil
}

// Next returns the handle of the node after h, or store.NoHandle if h is the last node of its chain
func (a *Allocator[T]) Next(h store.Handle) (store.Handle, error) {
	n, err := a.store.GetMut(h)
	if err != nil {
		return store.NoHandle, err
	}

	return n.next, nil
}

// ValueUnchecked is Value without any validation of h. It panics if h's index is outside the store,
// and returns whatever the slot holds if h is stale, foreign, or free. Only use it where the caller
// has already established that h is a live node of this allocator.
func (a *Allocator[T]) ValueUnchecked(h store.Handle) *T {
	return &a.store.GetUnchecked(h).value
}

// NextUnchecked is Next without any validation of h, with the same caveats as ValueUnchecked
func (a *Allocator[T]) NextUnchecked(h store.Handle) store.Handle {
	return a.store.GetUnchecked(h).next
}
