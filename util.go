package slotalloc

import (
	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Integer
}

// CheckCapacity returns CapacityError if number cannot be used as the slot count of a store
func CheckCapacity[T Number](number T, name string) error {
	if number < 0 || uint64(number) > uint64(CapacityCeiling) {
		return cerrors.Wrapf(CapacityError, "%s is %d", name, number)
	}
	return nil
}

// NextCapacity calculates the capacity a store of size current should grow to in order to hold at
// least needed slots. Growth doubles the capacity (starting from 1) unless options.GrowthIncrement
// is set, and the result is clamped to options.CapacityLimit(). StorageExhaustedError is returned if the
// options forbid growth or the clamped capacity still cannot hold needed slots, and CapacityError if
// needed is negative.
func NextCapacity(current, needed int, options CreateOptions) (int, error) {
	if needed < 0 {
		return current, cerrors.Wrapf(CapacityError, "%d slots are needed", needed)
	}

	if options.Flags&CreateFixedCapacity != 0 {
		return current, cerrors.Wrapf(StorageExhaustedError, "capacity is fixed at %d", current)
	}

	limit := options.CapacityLimit()
	if needed > limit {
		return current, cerrors.Wrapf(StorageExhaustedError, "%d slots are needed but capacity is limited to %d", needed, limit)
	}

	if needed <= current {
		return current, nil
	}

	var next int
	if options.GrowthIncrement > 0 {
		if current > limit-options.GrowthIncrement {
			next = limit
		} else {
			next = current + options.GrowthIncrement
		}
	} else if current < 1 {
		next = 1
	} else if current > limit/2 {
		next = limit
	} else {
		next = current * 2
	}

	if next < needed {
		next = needed
	}

	return next, nil
}
