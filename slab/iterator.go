package slab

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/vkngwrapper/arsenal/slotalloc"
	"github.com/vkngwrapper/arsenal/slotalloc/store"
)

// Iterator walks the allocated slots of a slab Allocator in ascending index order, skipping free
// slots. It is created by Allocator.UsedBlocks and can only be consumed once.
//
// Any number of iterators may be alive at once, as long as the allocator is not mutated while they
// are. Allocating, deallocating, clearing, or growing the allocator while an iterator is alive
// invalidates it: the next call to Next returns false and Err returns slotalloc.StaleIteratorError.
// Modifying values in place, through Pointer, GetMut, or Set, does not count as mutation.
type Iterator[T any] struct {
	store   *store.Store[T]
	version uint64
	next    int

	handle store.Handle
	value  *T
	err    error
}

// UsedBlocks returns an Iterator over every allocated slot
func (a *Allocator[T]) UsedBlocks() *Iterator[T] {
	return &Iterator[T]{
		store:   a.store,
		version: a.store.Version(),
	}
}

// Next advances to the next allocated slot and returns true, or returns false when there are no more
// slots or the iterator has been invalidated
func (it *Iterator[T]) Next() bool {
	it.handle = store.NoHandle
	it.value = nil

	if it.err != nil {
		return false
	}

	if it.store.Version() != it.version {
		it.err = cerrors.Wrapf(slotalloc.StaleIteratorError, "iterator was stopped at slot %d", it.next)
		return false
	}

	for it.next < it.store.Capacity() {
		index := it.next
		it.next++

		h, value, ok := it.store.At(index)
		if ok {
			it.handle = h
			it.value = value
			return true
		}
	}

	return false
}

// Handle returns the handle of the current slot
func (it *Iterator[T]) Handle() store.Handle { return it.handle }

// Value returns a copy of the value in the current slot. It may only be called after Next returns true.
func (it *Iterator[T]) Value() T { return *it.value }

// Pointer returns a pointer to the value in the current slot, or nil unless the last Next returned true
func (it *Iterator[T]) Pointer() *T { return it.value }

// Err returns slotalloc.StaleIteratorError if the iterator was invalidated, and nil otherwise
func (it *Iterator[T]) Err() error { return it.err }

// VisitUsedBlocks calls visit once for each allocated slot in ascending index order. visit must not
// allocate or deallocate. Iteration stops at the first error returned by visit, and that error is
// returned.
func (a *Allocator[T]) VisitUsedBlocks(visit func(h store.Handle, value *T) error) error {
	iter := a.UsedBlocks()
	for iter.Next() {
		err := visit(iter.Handle(), iter.Pointer())
		if err != nil {
			return err
		}
	}

	return iter.Err()
}
