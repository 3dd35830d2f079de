package slotalloc

import (
	"math"

	cerrors "github.com/cockroachdb/errors"
)

const (
	// CapacityCeiling is the largest number of slots any store may hold, regardless of options
	CapacityCeiling int = math.MaxInt32
	// defaultInitialCapacity is the capacity used when CreateOptions.InitialCapacity is left at 0
	defaultInitialCapacity int = 16
)

// CreateOptions contains optional settings shared by every allocator in this module. It is valid
// to leave all the fields blank.
type CreateOptions struct {
	// Flags indicates specific allocator behaviors to activate or deactivate
	Flags CreateFlags
	// InitialCapacity is the number of slots allocated up front. If 0, a small default is used; use
	// NoInitialCapacity to start with an empty store.
	InitialCapacity int
	// MaxCapacity caps growth. If 0, the store may grow up to CapacityCeiling.
	MaxCapacity int
	// GrowthIncrement is the number of slots added each time the store runs out. If 0, the capacity
	// is doubled instead.
	GrowthIncrement int
}

// NoInitialCapacity can be used as CreateOptions.InitialCapacity to create a store with no slots
const NoInitialCapacity int = -1

// Capacity returns the initial capacity that should be used for a store created with these options
func (o CreateOptions) Capacity() int {
	switch {
	case o.InitialCapacity == NoInitialCapacity:
		return 0
	case o.InitialCapacity == 0:
		if o.MaxCapacity > 0 && o.MaxCapacity < defaultInitialCapacity {
			return o.MaxCapacity
		}
		return defaultInitialCapacity
	}

	return o.InitialCapacity
}

// CapacityLimit returns the largest capacity a store created with these options may grow to
func (o CreateOptions) CapacityLimit() int {
	if o.MaxCapacity > 0 && o.MaxCapacity < CapacityCeiling {
		return o.MaxCapacity
	}

	return CapacityCeiling
}

// Validate returns an error if the options describe an impossible configuration
func (o CreateOptions) Validate() error {
	if o.InitialCapacity < NoInitialCapacity {
		return cerrors.Wrapf(CapacityError, "InitialCapacity is %d", o.InitialCapacity)
	}
	if o.MaxCapacity < 0 {
		return cerrors.Wrapf(CapacityError, "MaxCapacity is %d", o.MaxCapacity)
	}
	if o.GrowthIncrement < 0 {
		return cerrors.Wrapf(CapacityError, "GrowthIncrement is %d", o.GrowthIncrement)
	}

	err := CheckCapacity(o.Capacity(), "InitialCapacity")
	if err != nil {
		return err
	}

	if o.Capacity() > o.CapacityLimit() {
		return cerrors.Wrapf(CapacityError, "InitialCapacity %d is larger than MaxCapacity %d", o.Capacity(), o.CapacityLimit())
	}

	return nil
}
