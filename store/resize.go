package store

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/vkngwrapper/arsenal/slotalloc"
	"golang.org/x/exp/slices"
)

// GrowTo enlarges the store to newCapacity slots. The new slots are free and are appended, in index
// order, to the tail of the free list, so slots that were already free are still handed out first.
//
// Every outstanding handle stays valid and keeps referring to the same value. Anything threaded through
// the values themselves by handle (such as the next links of a chain) is untouched. Pointers obtained
// from GetMut, GetUnchecked, or At are not: the slot array may have moved.
//
// CapacityError is returned if newCapacity is smaller than the current capacity or larger than
// slotalloc.CapacityCeiling.
func (s *Store[T]) GrowTo(newCapacity int) error {
	err := slotalloc.CheckCapacity(newCapacity, "newCapacity")
	if err != nil {
		return err
	}

	oldCapacity := len(s.slots)
	if newCapacity < oldCapacity {
		return cerrors.Wrapf(slotalloc.CapacityError, "cannot shrink a store from %d to %d slots", oldCapacity, newCapacity)
	}

	if newCapacity == oldCapacity {
		return nil
	}

	s.slots = slices.Grow(s.slots, newCapacity-oldCapacity)[:newCapacity]
	s.appendFreeRun(oldCapacity, newCapacity)
	s.version++

	return nil
}

// GrowFor grows the store so that it can hold at least needed slots, using slotalloc.NextCapacity to
// pick the new capacity from options. It returns the resulting capacity. StorageExhaustedError is
// returned if options do not allow the store to reach needed slots.
func (s *Store[T]) GrowFor(needed int, options slotalloc.CreateOptions) (int, error) {
	newCapacity, err := slotalloc.NextCapacity(len(s.slots), needed, options)
	if err != nil {
		return len(s.slots), err
	}

	err = s.GrowTo(newCapacity)
	if err != nil {
		return len(s.slots), cerrors.Mark(err, slotalloc.StorageExhaustedError)
	}

	return newCapacity, nil
}
