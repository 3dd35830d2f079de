package linkedlist

import (
	"context"
	"fmt"

	cerrors "github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/arsenal/slotalloc"
	"github.com/vkngwrapper/arsenal/slotalloc/store"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

type node[T any] struct {
	value T
	next  store.Handle
	chain uint64
}

type chainState struct {
	head    store.Handle
	length  int
	version uint64
}

// CreateOptions contains optional settings when creating a linked-list Allocator
type CreateOptions[T any] struct {
	slotalloc.CreateOptions

	// Teardown is called with a node's value just before the node is freed by FreeChain, Resize,
	// or Clear. PopFront hands the value back to the caller instead and does not call it.
	Teardown func(value *T)
	// Describe renders a value for PrintDetailedMap. If nil, values are printed with %+v.
	Describe func(value *T) string
}

// Allocator builds chains of nodes inside a single store.Store. A chain is identified by the handle of
// its head node: pushing returns the new head, popping returns the next one, and store.NoHandle is the
// empty chain. Each node belongs to exactly one chain, and only the current head of a chain can be
// pushed onto or popped from.
//
// The allocator keeps a small table of live chains with their length and a version that is bumped by
// every structural change. SliceView uses the version to detect that it has gone stale.
//
// Allocator is not safe for concurrent use. See the slotalloc/guard package.
type Allocator[T any] struct {
	logger      *slog.Logger
	options     CreateOptions[T]
	store       *store.Store[node[T]]
	chains      *swiss.Map[uint64, *chainState]
	nextChainID uint64
	growCount   int
}

// New creates a new linked-list Allocator
//
// logger - Receives debug output for grows and errors for chains that were never freed. If nil,
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

	backing, err := store.New[node[T]](options.Capacity())
	if err != nil {
		return nil, err
	}

	return &Allocator[T]{
		logger:  logger,
		options: options,
		store:   backing,
		chains:  swiss.NewMap[uint64, *chainState](42),
	}, nil
}

// Capacity returns the number of node slots in the backing store
func (a *Allocator[T]) Capacity() int { return a.store.Capacity() }

// Len returns the number of nodes currently allocated across all chains
func (a *Allocator[T]) Len() int { return a.store.Len() }

// Flags returns the flags this allocator was created with
func (a *Allocator[T]) Flags() slotalloc.CreateFlags { return a.options.Flags }

// ChainCount returns the number of non-empty chains
func (a *Allocator[T]) ChainCount() int { return a.chains.Count() }

func (a *Allocator[T]) clearOnFree() bool {
	return a.options.Flags&slotalloc.CreateRetainFreedValues == 0
}

func (a *Allocator[T]) grow(needed int) error {
	oldCapacity := a.store.Capacity()
	newCapacity, err := a.store.GrowFor(needed, a.options.CreateOptions)
	if err != nil {
		a.logger.Warn("linked list allocator could not grow",
			slog.Int("Capacity", oldCapacity),
			slog.Int("Needed", needed),
			slog.Any("error", err))
		return err
	}

	a.growCount++
	a.logger.Debug("LinkedList::grow", slog.Int("OldCapacity", oldCapacity), slog.Int("NewCapacity", newCapacity))
	return nil
}

// reserve ensures that count more nodes can be acquired without growing
func (a *Allocator[T]) reserve(count int) error {
	if a.store.FreeCount() >= count {
		return nil
	}

	if count > a.options.CapacityLimit()-a.store.Len() {
		return cerrors.Wrapf(slotalloc.StorageExhaustedError, "%d more nodes are needed but %d of at most %d are in use", count, a.store.Len(), a.options.CapacityLimit())
	}

	return a.grow(a.store.Len() + count)
}

func (a *Allocator[T]) acquire(n node[T]) (store.Handle, error) {
	h, ok := a.store.Acquire(n)
	if ok {
		return h, nil
	}

	err := a.grow(a.store.Capacity() + 1)
	if err != nil {
		return store.NoHandle, err
	}

	h, ok = a.store.Acquire(n)
	if !ok {
		return store.NoHandle, cerrors.Wrapf(slotalloc.StorageExhaustedError, "no free node after growing to %d nodes", a.store.Capacity())
	}

	return h, nil
}

// release frees a single node, running Teardown when teardown is true
func (a *Allocator[T]) release(h store.Handle, teardown bool) error {
	if teardown && a.options.Teardown != nil {
		n, err := a.store.GetMut(h)
		if err != nil {
			return err
		}
		a.options.Teardown(&n.value)
	}

	return a.store.Release(h, a.clearOnFree())
}

// chainOf returns the table entry for the chain that head leads. A nil head is the empty chain and
// produces a nil state. InvalidHandleError is returned if head is not the current head of a chain.
func (a *Allocator[T]) chainOf(head store.Handle) (uint64, *chainState, error) {
	if head.IsNil() {
		return 0, nil, nil
	}

	n, err := a.store.GetMut(head)
	if err != nil {
		return 0, nil, err
	}

	state, ok := a.chains.Get(n.chain)
	if !ok {
		return 0, nil, cerrors.Wrapf(slotalloc.InvalidHandleError, "node %d belongs to unknown chain %d", head.Index(), n.chain)
	}

	if state.head != head {
		return 0, nil, cerrors.Wrapf(slotalloc.InvalidHandleError, "node %d is not the head of chain %d", head.Index(), n.chain)
	}

	return n.chain, state, nil
}

// Clear frees every node of every chain, running Teardown on each value. All outstanding handles and
// slice views become invalid.
func (a *Allocator[T]) Clear() {
	if a.options.Teardown != nil {
		for i := 0; i < a.store.Capacity(); i++ {
			_, n, ok := a.store.At(i)
			if ok {
				a.options.Teardown(&n.value)
			}
		}
	}

	a.store.Reset(a.clearOnFree())
	a.chains = swiss.NewMap[uint64, *chainState](42)
}

// Destroy releases the backing store. If any chains are still allocated, each one is logged at the
// error level and an error is returned, and the allocator is left intact. The allocator must not be
// used after a successful Destroy.
func (a *Allocator[T]) Destroy() error {
	if a.store.Len() > 0 {
		// Log all remaining chains
		a.chains.Iter(func(id uint64, state *chainState) bool {
			a.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED SLOT] unfreed chain",
				slog.Uint64("chain", id),
				slog.Int("head", state.head.Index()),
				slog.Int("length", state.length),
			)
			return false
		})

		return cerrors.Newf("%d nodes were not freed before the destruction of this linked list allocator", a.store.Len())
	}

	a.store = nil
	a.chains = nil
	return nil
}

// Validate performs internal consistency checks: the backing store's free list must be intact, every
// chain must be acyclic and have the length recorded for it, every node must be reachable from the
// head of the chain it claims to belong to, and no allocated node may be orphaned outside of a chain.
// This walks every node and so is expensive.
func (a *Allocator[T]) Validate() error {
	err := a.store.Validate()
	if err != nil {
		return err
	}

	total := 0
	a.chains.Iter(func(id uint64, state *chainState) bool {
		if state.length < 1 {
			err = errors.Errorf("chain %d is in the chain table but has length %d", id, state.length)
			return true
		}

		count := 0
		for h := state.head; !h.IsNil(); {
			if count >= state.length {
				err = errors.Errorf("chain %d has more nodes than its recorded length of %d", id, state.length)
				return true
			}

			n, lookupErr := a.store.Get(h)
			if lookupErr != nil {
				err = errors.Wrapf(lookupErr, "chain %d links to a dead node after %d nodes", id, count)
				return true
			}

			if n.chain != id {
				err = errors.Errorf("node %d is reachable from chain %d but claims to belong to chain %d", h.Index(), id, n.chain)
				return true
			}

			count++
			h = n.next
		}

		if count != state.length {
			err = errors.Errorf("chain %d has %d nodes, but its recorded length is %d", id, count, state.length)
			return true
		}

		total += count
		return false
	})
	if err != nil {
		return err
	}

	if total != a.store.Len() {
		return errors.Errorf("chains account for %d nodes, but %d nodes are allocated", total, a.store.Len())
	}

	return nil
}

// AddStatistics sums this allocator's node counts into the provided slotalloc.Statistics
func (a *Allocator[T]) AddStatistics(stats *slotalloc.Statistics) {
	stats.StoreCount++
	stats.SlotCount += a.store.Capacity()
	stats.UsedCount += a.store.Len()
	stats.GrowCount += a.growCount
}

// AddDetailedStatistics sums this allocator's node counts, free runs, and chain lengths into the
// provided slotalloc.DetailedStatistics
func (a *Allocator[T]) AddDetailedStatistics(stats *slotalloc.DetailedStatistics) {
	a.AddStatistics(&stats.Statistics)
	a.store.VisitFreeRuns(func(start, size int) {
		stats.AddFreeRun(size)
	})
	a.chains.Iter(func(id uint64, state *chainState) bool {
		stats.AddChain(state.length)
		return false
	})
}

func (a *Allocator[T]) describe(n *node[T]) string {
	var value string
	if a.options.Describe != nil {
		value = a.options.Describe(&n.value)
	} else {
		value = fmt.Sprintf("%+v", n.value)
	}

	if n.next.IsNil() {
		return value
	}
	return fmt.Sprintf("%s -> %d", value, n.next.Index())
}

// PrintDetailedMap writes a json object describing every chain and node slot in this allocator
func (a *Allocator[T]) PrintDetailedMap(writer *jwriter.Writer) {
	objState := writer.Object()
	defer objState.End()

	objState.Name("Flags").String(a.options.Flags.String())
	objState.Name("GrowCount").Int(a.growCount)
	a.store.StoreJsonData(&objState)

	ids := make([]uint64, 0, a.chains.Count())
	a.chains.Iter(func(id uint64, state *chainState) bool {
		ids = append(ids, id)
		return false
	})
	slices.Sort(ids)

	chainArray := objState.Name("Chains").Array()
	for _, id := range ids {
		state, _ := a.chains.Get(id)

		obj := chainArray.Object()
		obj.Name("Id").Int(int(id))
		obj.Name("Head").Int(state.head.Index())
		obj.Name("Length").Int(state.length)
		obj.End()
	}
	chainArray.End()

	a.store.PrintSlots(&objState, a.describe)
}
