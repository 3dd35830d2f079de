package guard

import (
	"sync"
)

// OptionalMutex is a sync.Mutex that can be switched off. When UseMutex is false, every method returns
// immediately without touching Mutex.
type OptionalMutex struct {
	Mutex    sync.Mutex
	UseMutex bool
}

func (m *OptionalMutex) TryLock() bool {
	return !m.UseMutex || m.Mutex.TryLock()
}

func (m *OptionalMutex) Lock() {
	if !m.UseMutex {
		return
	}
	m.Mutex.Lock()
}

func (m *OptionalMutex) Unlock() {
	if !m.UseMutex {
		return
	}
	m.Mutex.Unlock()
}

// OptionalRWMutex is the sync.RWMutex counterpart of OptionalMutex
type OptionalRWMutex struct {
	Mutex    sync.RWMutex
	UseMutex bool
}

func (m *OptionalRWMutex) TryLock() bool {
	return !m.UseMutex || m.Mutex.TryLock()
}

func (m *OptionalRWMutex) TryRLock() bool {
	return !m.UseMutex || m.Mutex.TryRLock()
}

func (m *OptionalRWMutex) Lock() {
	if !m.UseMutex {
		return
	}
	m.Mutex.Lock()
}

func (m *OptionalRWMutex) Unlock() {
	if !m.UseMutex {
		return
	}
	m.Mutex.Unlock()
}

func (m *OptionalRWMutex) RLock() {
	if !m.UseMutex {
		return
	}
	m.Mutex.RLock()
}

func (m *OptionalRWMutex) RUnlock() {
	if !m.UseMutex {
		return
	}
	m.Mutex.RUnlock()
}
