package linkedlist

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/vkngwrapper/arsenal/slotalloc"
	"github.com/vkngwrapper/arsenal/slotalloc/store"
)

func (a *Allocator[T]) newChain() (uint64, *chainState) {
	a.nextChainID++
	return a.nextChainID, &chainState{}
}

// PushFront allocates a node holding value, links it in front of head, and returns the handle of the
// new head. Passing store.NoHandle as head starts a new one-node chain. The backing store is grown if
// it is full.
//
// InvalidHandleError is returned if head is neither store.NoHandle nor the current head of a chain.
func (a *Allocator[T]) PushFront(head store.Handle, value T) (store.Handle, error) {
	id, state, err := a.chainOf(head)
	if err != nil {
		return store.NoHandle, err
	}

	isNew := state == nil
	if isNew {
		id, state = a.newChain()
	}

	h, err := a.acquire(node[T]{value: value, next: head, chain: id})
	if err != nil {
		return store.NoHandle, err
	}

	state.head = h
	state.length++
	state.version++
	if isNew {
		a.chains.Put(id, state)
	}

	slotalloc.DebugValidate(a)
	return h, nil
}

// PushFrontZero is PushFront with the zero value of T
func (a *Allocator[T]) PushFrontZero(head store.Handle) (store.Handle, error) {
	var zero T
	return a.PushFront(head, zero)
}

// PopFront removes the head node of a chain, returning its value and the handle of the new head. The
// new head is store.NoHandle if the chain is now empty. The freed node is handed back to the backing
// store's free list; Teardown is not called, as the value is returned to the caller.
//
// EmptyChainError is returned if head is store.NoHandle, and InvalidHandleError if head is not the
// current head of a chain.
func (a *Allocator[T]) PopFront(head store.Handle) (T, store.Handle, error) {
	var zero T
	if head.IsNil() {
		return zero, store.NoHandle, slotalloc.EmptyChainError
	}

	id, state, err := a.chainOf(head)
	if err != nil {
		return zero, store.NoHandle, err
	}

	n, err := a.store.Get(head)
	if err != nil {
		return zero, store.NoHandle, err
	}

	err = a.release(head, false)
	if err != nil {
		return zero, store.NoHandle, err
	}

	state.head = n.next
	state.length--
	state.version++
	if state.length == 0 {
		a.chains.Delete(id)
	}

	slotalloc.DebugValidate(a)
	return n.value, n.next, nil
}

// ChainLen returns the number of nodes in the chain led by head. The empty chain has length 0.
func (a *Allocator[T]) ChainLen(head store.Handle) (int, error) {
	_, state, err := a.chainOf(head)
	if err != nil {
		return 0, err
	}

	if state == nil {
		return 0, nil
	}
	return state.length, nil
}

// AllocateChain allocates a chain of length nodes holding the zero value of T and returns its head.
// A length of 0 allocates nothing and returns store.NoHandle. Either every node is allocated or none
// are: the backing store is grown up front if needed.
func (a *Allocator[T]) AllocateChain(length int) (store.Handle, error) {
	if length < 0 {
		return store.NoHandle, cerrors.Wrapf(slotalloc.CapacityError, "chain length is %d", length)
	}

	if length == 0 {
		return store.NoHandle, nil
	}

	err := a.reserve(length)
	if err != nil {
		return store.NoHandle, err
	}

	head := store.NoHandle
	for i := 0; i < length; i++ {
		head, err = a.PushFrontZero(head)
		if err != nil {
			return store.NoHandle, err
		}
	}

	return head, nil
}

// AllocateChainFrom allocates a chain holding values, in order, so that values[0] is at the head. No
// values allocates nothing and returns store.NoHandle.
func (a *Allocator[T]) AllocateChainFrom(values ...T) (store.Handle, error) {
	if len(values) == 0 {
		return store.NoHandle, nil
	}

	err := a.reserve(len(values))
	if err != nil {
		return store.NoHandle, err
	}

	head := store.NoHandle
	for i := len(values) - 1; i >= 0; i-- {
		head, err = a.PushFront(head, values[i])
		if err != nil {
			return store.NoHandle, err
		}
	}

	return head, nil
}

// FreeChain frees every node of the chain led by head, running Teardown on each value. Freeing the
// empty chain is a no-op.
func (a *Allocator[T]) FreeChain(head store.Handle) error {
	id, state, err := a.chainOf(head)
	if err != nil || state == nil {
		return err
	}

	err = a.freeFrom(head)
	if err != nil {
		return err
	}

	state.version++
	a.chains.Delete(id)

	slotalloc.DebugValidate(a)
	return nil
}

// freeFrom frees h and every node after it
func (a *Allocator[T]) freeFrom(h store.Handle) error {
	for !h.IsNil() {
		n, err := a.store.Get(h)
		if err != nil {
			return err
		}

		err = a.release(h, true)
		if err != nil {
			return err
		}

		h = n.next
	}

	return nil
}

// nodeAt walks offset nodes along the chain starting at h
func (a *Allocator[T]) nodeAt(h store.Handle, offset int) (store.Handle, error) {
	for i := 0; i < offset; i++ {
		n, err := a.store.GetMut(h)
		if err != nil {
			return store.NoHandle, err
		}
		h = n.next
	}

	return h, nil
}

// Resize changes the number of nodes in the chain led by head to length and returns the chain's head,
// which only changes when the chain becomes empty or is created from empty. Growing appends nodes
// holding the zero value of T at the tail; shrinking frees nodes from the tail, running Teardown on
// each. Growing is all-or-nothing: the backing store is grown up front if needed.
func (a *Allocator[T]) Resize(head store.Handle, length int) (store.Handle, error) {
	if length < 0 {
		return head, cerrors.Wrapf(slotalloc.CapacityError, "chain length is %d", length)
	}

	id, state, err := a.chainOf(head)
	if err != nil {
		return head, err
	}

	if state == nil {
		return a.AllocateChain(length)
	}

	switch {
	case length == state.length:
		return head, nil
	case length == 0:
		return store.NoHandle, a.FreeChain(head)
	case length < state.length:
		tail, err := a.nodeAt(head, length-1)
		if err != nil {
			return head, err
		}

		tailNode, err := a.store.GetMut(tail)
		if err != nil {
			return head, err
		}
		rest := tailNode.next
		tailNode.next = store.NoHandle

		err = a.freeFrom(rest)
		if err != nil {
			return head, err
		}
	default:
		extra := length - state.length
		err = a.reserve(extra)
		if err != nil {
			return head, err
		}

		// Reserving may grow the store, so the tail is located afterwards
		tail, err := a.nodeAt(head, state.length-1)
		if err != nil {
			return head, err
		}

		extension := store.NoHandle
		for i := 0; i < extra; i++ {
			extension, err = a.acquire(node[T]{next: extension, chain: id})
			if err != nil {
				return head, err
			}
		}

		tailNode, err := a.store.GetMut(tail)
		if err != nil {
			return head, err
		}
		tailNode.next = extension
	}

	state.length = length
	state.version++

	slotalloc.DebugValidate(a)
	return head, nil
}
