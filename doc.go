// Package slotalloc contains the shared pieces of a family of index-based allocators: the error values
// they return, the options used to create them, growth arithmetic, and statistics.
//
// The allocators themselves live in subpackages. slotalloc/store is the backing store every allocator
// is built on: a fixed-capacity slice of slots with an intrusive free list threaded through the free
// ones. slotalloc/slab hands out uniform slots with O(1) reuse, and slotalloc/linkedlist builds chains
// of nodes that can be sliced.
//
// None of the allocators synchronize internally. A store has exactly one owner at a time, and callers
// that need to share one across goroutines should wrap it with slotalloc/guard or a mutex of their own.
package slotalloc
