package store

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/arsenal/slotalloc"
)

const noSlot int = -1

type slot[T any] struct {
	value      T
	next       int
	generation uint64
	occupied   bool
}

// Store is a fixed-capacity array of slots, each of which is either occupied by a value or free. The
// free slots are threaded into a singly-linked list through the slots themselves, so acquiring and
// releasing a slot are both O(1). The capacity only changes when the owner calls GrowTo or GrowFor.
//
// Store is not safe for concurrent use. Pointers returned from GetMut and GetUnchecked point into the
// slot array and are only valid until the next grow; handles remain valid across grows.
type Store[T any] struct {
	id       uint32
	slots    []slot[T]
	freeHead int
	used     int
	version  uint64
}

// New creates a Store with capacity free slots. The free list runs in ascending index order, so the
// first slots acquired will be 0, 1, 2...
func New[T any](capacity int) (*Store[T], error) {
	err := slotalloc.CheckCapacity(capacity, "capacity")
	if err != nil {
		return nil, err
	}

	s := &Store[T]{
		id:       newStoreID(),
		slots:    make([]slot[T], capacity),
		freeHead: noSlot,
	}
	s.appendFreeRun(0, capacity)

	return s, nil
}

// appendFreeRun initializes the slots in [from, to) as free and attaches them, in index order, to the
// tail of the free list
func (s *Store[T]) appendFreeRun(from, to int) {
	if from >= to {
		return
	}

	for i := from; i < to-1; i++ {
		s.slots[i] = slot[T]{next: i + 1}
	}
	s.slots[to-1] = slot[T]{next: noSlot}

	if s.freeHead == noSlot {
		s.freeHead = from
		return
	}

	tail := s.freeHead
	for s.slots[tail].next != noSlot {
		tail = s.slots[tail].next
	}
	s.slots[tail].next = from
}

// ID returns the identity tag stamped into every handle issued by this store
func (s *Store[T]) ID() uint32 { return s.id }

// Capacity returns the total number of slots, occupied and free
func (s *Store[T]) Capacity() int { return len(s.slots) }

// Len returns the number of occupied slots
func (s *Store[T]) Len() int { return s.used }

// FreeCount returns the number of free slots
func (s *Store[T]) FreeCount() int { return len(s.slots) - s.used }

// FreeHead returns the index of the slot that will be handed out by the next Acquire, or false if
// the free list is empty
func (s *Store[T]) FreeHead() (int, bool) {
	return s.freeHead, s.freeHead != noSlot
}

// Version is bumped by every operation that changes which slots are occupied or how many slots
// exist. Readers that must not overlap with mutation can capture it and compare later.
func (s *Store[T]) Version() uint64 { return s.version }

func (s *Store[T]) lookup(h Handle) (*slot[T], error) {
	if h.store != s.id {
		if h.IsNil() {
			return nil, cerrors.Wrap(slotalloc.InvalidHandleError, "received NoHandle")
		}
		return nil, cerrors.Wrapf(slotalloc.InvalidHandleError, "handle %s was issued by store %d, not store %d", h, h.store, s.id)
	}

	if h.index < 0 || h.index >= len(s.slots) {
		return nil, cerrors.Wrapf(slotalloc.InvalidHandleError, "handle %s is outside of the %d slots in this store", h, len(s.slots))
	}

	sl := &s.slots[h.index]
	if !sl.occupied {
		return nil, cerrors.Wrapf(slotalloc.InvalidHandleError, "slot %d is free", h.index)
	}

	if sl.generation != h.generation {
		return nil, cerrors.Wrapf(slotalloc.InvalidHandleError, "slot %d has been freed and reused since handle %s was issued", h.index, h)
	}

	return sl, nil
}

// Check returns nil if h refers to an occupied slot in this store
func (s *Store[T]) Check(h Handle) error {
	_, err := s.lookup(h)
	return err
}

// Get returns a copy of the value in the slot h refers to
func (s *Store[T]) Get(h Handle) (T, error) {
	sl, err := s.lookup(h)
	if err != nil {
		var zero T
		return zero, err
	}

	return sl.value, nil
}

// GetMut returns a pointer to the value in the slot h refers to. The pointer is invalidated by the
// next GrowTo or GrowFor, which may move the slot array.
func (s *Store[T]) GetMut(h Handle) (*T, error) {
	sl, err := s.lookup(h)
	if err != nil {
		return nil, err
	}

	return &sl.value, nil
}

// Set replaces the value in the slot h refers to
func (s *Store[T]) Set(h Handle, value T) error {
	sl, err := s.lookup(h)
	if err != nil {
		return err
	}

	sl.value = value
	return nil
}

// GetUnchecked returns a pointer to the value at h's index without verifying the handle's store,
// generation, or that the slot is occupied. It panics if the index is outside the store. It is
// intended for hot paths where the caller has already established that h is live; used on anything
// else it returns whatever the slot currently holds.
func (s *Store[T]) GetUnchecked(h Handle) *T {
	return &s.slots[h.index].value
}

// Occupied returns true if the slot at index holds a value
func (s *Store[T]) Occupied(index int) bool {
	return index >= 0 && index < len(s.slots) && s.slots[index].occupied
}

// At returns a handle and value pointer for the slot at index, or false if the slot is free or the
// index is out of range. The pointer has the same lifetime as one returned from GetMut.
func (s *Store[T]) At(index int) (Handle, *T, bool) {
	if !s.Occupied(index) {
		return NoHandle, nil, false
	}

	sl := &s.slots[index]
	return Handle{index: index, generation: sl.generation, store: s.id}, &sl.value, true
}

// Acquire pops the head of the free list, stores value in it, and returns its handle. It returns false
// if there are no free slots; growing is left to the caller.
func (s *Store[T]) Acquire(value T) (Handle, bool) {
	if s.freeHead == noSlot {
		return NoHandle, false
	}

	index := s.freeHead
	sl := &s.slots[index]
	s.freeHead = sl.next

	sl.next = noSlot
	sl.occupied = true
	sl.value = value
	s.used++
	s.version++

	return Handle{index: index, generation: sl.generation, store: s.id}, true
}

// Release frees the slot h refers to and pushes it onto the head of the free list, so it will be the
// next slot acquired. When clear is true the slot's value is reset to the zero value so that anything
// it references can be collected.
func (s *Store[T]) Release(h Handle, clear bool) error {
	sl, err := s.lookup(h)
	if err != nil {
		return err
	}

	if clear {
		var zero T
		sl.value = zero
	}

	sl.occupied = false
	sl.generation++
	sl.next = s.freeHead
	s.freeHead = h.index
	s.used--
	s.version++

	return nil
}

// Reset frees every slot at once. Every outstanding handle becomes invalid and the free list is
// rebuilt in ascending index order.
func (s *Store[T]) Reset(clear bool) {
	for i := 0; i < len(s.slots); i++ {
		sl := &s.slots[i]
		if sl.occupied {
			sl.occupied = false
			sl.generation++
		}
		if clear {
			var zero T
			sl.value = zero
		}
		sl.next = i + 1
	}

	if len(s.slots) > 0 {
		s.slots[len(s.slots)-1].next = noSlot
		s.freeHead = 0
	} else {
		s.freeHead = noSlot
	}

	s.used = 0
	s.version++
}

// VisitFree calls visit with the index of each slot on the free list, starting from the head
func (s *Store[T]) VisitFree(visit func(index int) error) error {
	steps := 0
	for index := s.freeHead; index != noSlot; index = s.slots[index].next {
		if steps >= len(s.slots) {
			return errors.Errorf("the free list has more entries than the %d slots in the store", len(s.slots))
		}
		steps++

		err := visit(index)
		if err != nil {
			return err
		}
	}

	return nil
}

// VisitFreeRuns calls visit once for each maximal range of adjacent free slots, in index order
func (s *Store[T]) VisitFreeRuns(visit func(start, size int)) {
	start := noSlot
	for i := 0; i < len(s.slots); i++ {
		if s.slots[i].occupied {
			if start != noSlot {
				visit(start, i-start)
				start = noSlot
			}
		} else if start == noSlot {
			start = i
		}
	}

	if start != noSlot {
		visit(start, len(s.slots)-start)
	}
}

// Validate checks that the free list reaches exactly the set of free slots and that the occupied
// count is accurate. It walks every slot and so is expensive on large stores.
func (s *Store[T]) Validate() error {
	if s.used < 0 || s.used > len(s.slots) {
		return errors.Errorf("the store claims %d occupied slots but has a capacity of %d", s.used, len(s.slots))
	}

	onFreeList := make([]bool, len(s.slots))
	freeListCount := 0
	err := s.VisitFree(func(index int) error {
		if index < 0 || index >= len(s.slots) {
			return errors.Errorf("the free list contains index %d, outside of the %d slots in the store", index, len(s.slots))
		}
		if s.slots[index].occupied {
			return errors.Errorf("slot %d is in the free list but is occupied", index)
		}
		if onFreeList[index] {
			return errors.Errorf("slot %d appears in the free list more than once", index)
		}

		onFreeList[index] = true
		freeListCount++
		return nil
	})
	if err != nil {
		return err
	}

	occupiedCount := 0
	for i := 0; i < len(s.slots); i++ {
		if s.slots[i].occupied {
			occupiedCount++
			continue
		}

		if !onFreeList[i] {
			return errors.Errorf("slot %d is free but cannot be reached from the free list", i)
		}
	}

	if occupiedCount != s.used {
		return errors.Errorf("the store claims %d occupied slots, but %d slots are occupied", s.used, occupiedCount)
	}

	if freeListCount+occupiedCount != len(s.slots) {
		return errors.Errorf("the free list has %d entries and %d slots are occupied, but the store has %d slots", freeListCount, occupiedCount, len(s.slots))
	}

	return nil
}
