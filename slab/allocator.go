package slab

import (
	"context"
	"fmt"

	cerrors "github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/arsenal/slotalloc"
	"github.com/vkngwrapper/arsenal/slotalloc/store"
	"golang.org/x/exp/slog"
)

// CreateOptions contains optional settings when creating a slab Allocator
type CreateOptions[T any] struct {
	slotalloc.CreateOptions

	// Teardown is called with the value in a slot just before the slot is freed, by Deallocate
	// and Clear. If nil, values are simply dropped.
	Teardown func(value *T)
	// Describe renders a value for PrintDetailedMap. If nil, values are printed with %+v.
	Describe func(value *T) string
}

// Allocator hands out uniform slots from a single store.Store. Allocation pops the free list and
// deallocation pushes onto it, so the most recently freed slot is always the next one allocated. When
// the free list is empty the store is grown according to CreateOptions, and existing handles remain
// valid across the grow.
//
// Allocator is not safe for concurrent use. See the slotalloc/guard package.
type Allocator[T any] struct {
	logger    *slog.Logger
	options   CreateOptions[T]
	store     *store.Store[T]
	growCount int
}

// New creates a new slab Allocator
//
// logger - Receives debug output for grows and errors for blocks that were never freed. If nil,
// slog.Default() is used.
//
// options - Optional parameters: it is valid to leave all the fields blank
func New[T any](logger *slog.Logger, options CreateOptions[T]) (*Allocator[T], error) {
	if logger == nil {
		logger = slog.Default()
	}

	err := options.Validate()
	if err != nil {
		return nil, err
	}

	backing, err := store.New[T](options.Capacity())
	if err != nil {
		return nil, err
	}

	return &Allocator[T]{
		logger:  logger,
		options: options,
		store:   backing,
	}, nil
}

// Capacity returns the number of slots in the backing store
func (a *Allocator[T]) Capacity() int { return a.store.Capacity() }

// Len returns the number of allocated slots
func (a *Allocator[T]) Len() int { return a.store.Len() }

// IsEmpty returns true if no slots are allocated
func (a *Allocator[T]) IsEmpty() bool { return a.store.Len() == 0 }

// Flags returns the CreateFlags this allocator was created with
func (a *Allocator[T]) Flags() slotalloc.CreateFlags { return a.options.Flags }

func (a *Allocator[T]) grow(needed int) error {
	oldCapacity := a.store.Capacity()
	newCapacity, err := a.store.GrowFor(needed, a.options.CreateOptions)
	if err != nil {
		a.logger.Warn("slab allocator could not grow",
			slog.Int("Capacity", oldCapacity),
			slog.Int("Needed", needed),
			slog.Any("error", err))
		return err
	}

	a.growCount++
	a.logger.Debug("Slab::grow", slog.Int("OldCapacity", oldCapacity), slog.Int("NewCapacity", newCapacity))
	return nil
}

// Allocate stores value in a free slot and returns its handle. If no slot is free, the store is grown
// once and the allocation retried. StorageExhaustedError is returned only if that grow fails.
func (a *Allocator[T]) Allocate(value T) (store.Handle, error) {
	h, ok := a.store.Acquire(value)
	if !ok {
		err := a.grow(a.store.Capacity() + 1)
		if err != nil {
			return store.NoHandle, err
		}

		h, ok = a.store.Acquire(value)
		if !ok {
			return store.NoHandle, cerrors.Wrapf(slotalloc.StorageExhaustedError, "no free slot after growing to %d slots", a.store.Capacity())
		}
	}

	slotalloc.DebugValidate(a)
	return h, nil
}

// AllocateZero allocates a slot holding the zero value of T
func (a *Allocator[T]) AllocateZero() (store.Handle, error) {
	var zero T
	return a.Allocate(zero)
}

// Deallocate runs the Teardown callback on the value h refers to, frees the slot, and places it at the
// head of the free list. InvalidHandleError is returned if h does not refer to an allocated slot in
// this allocator; in that case nothing is changed.
func (a *Allocator[T]) Deallocate(h store.Handle) error {
	value, err := a.store.GetMut(h)
	if err != nil {
		return err
	}

	if a.options.Teardown != nil {
		a.options.Teardown(value)
	}

	err = a.store.Release(h, a.options.Flags&slotalloc.CreateRetainFreedValues == 0)
	if err != nil {
		return err
	}

	slotalloc.DebugValidate(a)
	return nil
}

// Get returns a copy of the value h refers to
func (a *Allocator[T]) Get(h store.Handle) (T, error) {
	return a.store.Get(h)
}

// GetMut returns a pointer to the value h refers to. The pointer must not be retained past the next
// Allocate or Grow, either of which may move the backing store.
func (a *Allocator[T]) GetMut(h store.Handle) (*T, error) {
	return a.store.GetMut(h)
}

// Set replaces the value h refers to
func (a *Allocator[T]) Set(h store.Handle, value T) error {
	return a.store.Set(h, value)
}

// GetUnchecked returns a pointer to the value at h's index without validating h. See
// store.Store.GetUnchecked.
func (a *Allocator[T]) GetUnchecked(h store.Handle) *T {
	return a.store.GetUnchecked(h)
}

// Grow enlarges the backing store to newCapacity slots, regardless of GrowthIncrement. Every
// outstanding handle remains valid. CapacityError is returned if newCapacity is smaller than the
// current capacity or exceeds the allocator's MaxCapacity.
func (a *Allocator[T]) Grow(newCapacity int) error {
	if newCapacity > a.options.CapacityLimit() {
		return cerrors.Wrapf(slotalloc.CapacityError, "requested capacity %d exceeds the limit of %d", newCapacity, a.options.CapacityLimit())
	}

	oldCapacity := a.store.Capacity()
	err := a.store.GrowTo(newCapacity)
	if err != nil {
		return err
	}

	if newCapacity > oldCapacity {
		a.growCount++
		a.logger.Debug("Slab::Grow", slog.Int("OldCapacity", oldCapacity), slog.Int("NewCapacity", newCapacity))
	}

	slotalloc.DebugValidate(a)
	return nil
}

// Clear frees every allocated slot, running Teardown on each. All outstanding handles become invalid.
func (a *Allocator[T]) Clear() {
	if a.options.Teardown != nil {
		iter := a.UsedBlocks()
		for iter.Next() {
			a.options.Teardown(iter.Pointer())
		}
	}

	a.store.Reset(a.options.Flags&slotalloc.CreateRetainFreedValues == 0)
}

// Destroy releases the backing store. If any slots are still allocated, each one is logged at the
// error level and an error is returned, and the allocator is left intact. The allocator must not be
// used after a successful Destroy.
func (a *Allocator[T]) Destroy() error {
	if !a.IsEmpty() {
		// Log all remaining allocations
		err := a.VisitUsedBlocks(func(h store.Handle, value *T) error {
			a.logUnreleasedBlock(h, value)
			return nil
		})
		if err != nil {
			a.logger.LogAttrs(context.Background(),
				slog.LevelError,
				"[UNRELEASED SLOT] error while iterating unreleased slots",
				slog.Any("error", err))
		}

		return cerrors.Newf("%d slots were not freed before the destruction of this slab", a.Len())
	}

	a.store = nil
	return nil
}

func (a *Allocator[T]) logUnreleasedBlock(h store.Handle, value *T) {
	a.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED SLOT] unfreed slab block",
		slog.Int("index", h.Index()),
		slog.String("value", a.describe(value)),
	)
}

func (a *Allocator[T]) describe(value *T) string {
	if a.options.Describe != nil {
		return a.options.Describe(value)
	}
	return fmt.Sprintf("%+v", *value)
}

// Validate performs internal consistency checks on the backing store: every free slot must be
// reachable from the free list, and nothing on the free list may be allocated
func (a *Allocator[T]) Validate() error {
	return a.store.Validate()
}

// AddStatistics sums this allocator's slot counts into the provided slotalloc.Statistics
func (a *Allocator[T]) AddStatistics(stats *slotalloc.Statistics) {
	stats.StoreCount++
	stats.SlotCount += a.store.Capacity()
	stats.UsedCount += a.store.Len()
	stats.GrowCount += a.growCount
}

// AddDetailedStatistics sums this allocator's slot counts and free runs into the provided
// slotalloc.DetailedStatistics
func (a *Allocator[T]) AddDetailedStatistics(stats *slotalloc.DetailedStatistics) {
	a.AddStatistics(&stats.Statistics)
	a.store.VisitFreeRuns(func(start, size int) {
		stats.AddFreeRun(size)
	})
}

// PrintDetailedMap writes a json object describing every slot in this allocator
func (a *Allocator[T]) PrintDetailedMap(writer *jwriter.Writer) {
	objState := writer.Object()
	defer objState.End()

	objState.Name("Flags").String(a.options.Flags.String())
	objState.Name("GrowCount").Int(a.growCount)
	a.store.StoreJsonData(&objState)
	a.store.PrintSlots(&objState, a.options.Describe)
}
