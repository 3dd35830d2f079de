package store

import (
	"fmt"
	"sync/atomic"
)

var nextStoreID uint32

// Handle is an opaque reference to one slot of a Store. A Handle is only meaningful to the Store that
// issued it, and only until the slot it refers to is freed: each slot carries a generation that is
// bumped on release, so a handle to a freed slot stays invalid even after the slot is reused.
//
// Handles deliberately do not resolve themselves. All access goes through the issuing Store (or the
// allocator wrapping it), which checks the handle on every call.
type Handle struct {
	index      int
	generation uint64
	store      uint32
}

// NoHandle is the zero Handle. It never refers to a slot and is used to mark the end of a chain or
// an empty one.
var NoHandle Handle

// Index returns the slot position this handle refers to
func (h Handle) Index() int { return h.index }

// IsNil returns true if this handle is NoHandle
func (h Handle) IsNil() bool { return h.store == 0 }

func (h Handle) String() string {
	if h.IsNil() {
		return "NoHandle"
	}
	return fmt.Sprintf("%d:%d@%d", h.index, h.generation, h.store)
}

func newStoreID() uint32 {
	id := atomic.AddUint32(&nextStoreID, 1)
	if id == 0 {
		// Wrapped around; 0 is reserved for NoHandle
		id = atomic.AddUint32(&nextStoreID, 1)
	}
	return id
}
