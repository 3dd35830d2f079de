package slotalloc

import "github.com/cockroachdb/errors"

var (
	// CapacityError is returned when a requested capacity cannot be satisfied: a negative capacity,
	// a capacity above MaxCapacity, or an attempt to shrink a store
	CapacityError error = errors.New("requested capacity cannot be satisfied")
	// InvalidHandleError is returned when a handle was issued by a different store, points at a free slot,
	// or refers to a slot that has been deallocated since the handle was issued
	InvalidHandleError error = errors.New("handle does not refer to a live slot in this store")
	// StorageExhaustedError is returned from allocation methods when the store is full and could not
	// be grown
	StorageExhaustedError error = errors.New("storage exhausted")
	// EmptyChainError is returned when removing from a chain that has no nodes
	EmptyChainError error = errors.New("chain is empty")
	// OutOfRangeError is returned when a slice is requested beyond the end of a chain
	OutOfRangeError error = errors.New("range exceeds chain length")
	// IndexOutOfBoundsError is returned when a slice view is accessed outside of [0, Len())
	IndexOutOfBoundsError error = errors.New("index out of bounds")
	// StaleIteratorError is reported by an iterator whose allocator was mutated while it was alive
	StaleIteratorError error = errors.New("allocator was mutated during iteration")
	// StaleSliceError is returned when a slice view is used after its chain was structurally mutated
	StaleSliceError error = errors.New("chain was mutated after the slice was created")
)
