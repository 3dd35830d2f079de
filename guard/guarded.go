// Package guard provides exclusive-access wrappers for the allocators in slotalloc. The allocators
// themselves never lock: an application that shares one between goroutines wraps it in a Guarded and
// routes every call through Read or Write.
package guard

// Guarded owns an allocator (or any other value) and hands it out to callbacks under a lock.
// Operations that only look at the allocator, such as lookups, iteration, and slicing, belong in Read.
// Anything that allocates, frees, pushes, pops, or grows belongs in Write. Writing through pointers
// obtained from GetMut also requires Write.
//
// Neither the value nor anything borrowed from it (pointers, iterators, slice views) may escape the
// callback.
type Guarded[A any] struct {
	mutex OptionalRWMutex
	value A
}

// New wraps value. If useMutex is false, Read and Write do not lock, which is useful for code that is
// written against Guarded but known to run on a single goroutine.
func New[A any](value A, useMutex bool) *Guarded[A] {
	return &Guarded[A]{
		mutex: OptionalRWMutex{UseMutex: useMutex},
		value: value,
	}
}

// Read calls read with shared access to the value and returns its error
func (g *Guarded[A]) Read(read func(value A) error) error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return read(g.value)
}

// Write calls write with exclusive access to the value and returns its error
func (g *Guarded[A]) Write(write func(value A) error) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	return write(g.value)
}

// TryWrite is Write, except that it returns false without calling write if the lock is held
func (g *Guarded[A]) TryWrite(write func(value A) error) (bool, error) {
	if !g.mutex.TryLock() {
		return false, nil
	}
	defer g.mutex.Unlock()

	return true, write(g.value)
}
