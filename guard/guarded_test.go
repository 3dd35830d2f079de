package guard_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/arsenal/slotalloc"
	"github.com/vkngwrapper/arsenal/slotalloc/guard"
	"github.com/vkngwrapper/arsenal/slotalloc/linkedlist"
	"github.com/vkngwrapper/arsenal/slotalloc/slab"
	"github.com/vkngwrapper/arsenal/slotalloc/store"
)

func TestGuardedSlabConcurrentAllocate(t *testing.T) {
	allocator, err := slab.New[int](nil, slab.CreateOptions[int]{
		CreateOptions: slotalloc.CreateOptions{InitialCapacity: 1},
	})
	require.NoError(t, err)
	guarded := guard.New(allocator, true)

	const workers = 8
	const perWorker = 100

	var wg sync.WaitGroup
	handles := make([][]store.Handle, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()

			for i := 0; i < perWorker; i++ {
				_ = guarded.Write(func(a *slab.Allocator[int]) error {
					h, err := a.Allocate(w*perWorker + i)
					if err == nil {
						handles[w] = append(handles[w], h)
					}
					return err
				})

				_ = guarded.Read(func(a *slab.Allocator[int]) error {
					return a.VisitUsedBlocks(func(h store.Handle, value *int) error { return nil })
				})
			}
		}(w)
	}
	wg.Wait()

	err = guarded.Read(func(a *slab.Allocator[int]) error {
		require.Equal(t, workers*perWorker, a.Len())
		for w := range handles {
			require.Len(t, handles[w], perWorker)
			for i, h := range handles[w] {
				value, err := a.Get(h)
				require.NoError(t, err)
				require.Equal(t, w*perWorker+i, value)
			}
		}
		return a.Validate()
	})
	require.NoError(t, err)
}

func TestGuardedLinkedList(t *testing.T) {
	allocator, err := linkedlist.New[int](nil, linkedlist.CreateOptions[int]{})
	require.NoError(t, err)
	guarded := guard.New(allocator, true)

	var wg sync.WaitGroup
	heads := make([]store.Handle, 4)
	for w := range heads {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()

			for i := 0; i < 50; i++ {
				_ = guarded.Write(func(a *linkedlist.Allocator[int]) error {
					head, err := a.PushFront(heads[w], i)
					if err == nil {
						heads[w] = head
					}
					return err
				})
			}
		}(w)
	}
	wg.Wait()

	err = guarded.Read(func(a *linkedlist.Allocator[int]) error {
		require.Equal(t, 4, a.ChainCount())
		for _, head := range heads {
			view, err := a.Slice(head, 0, 50)
			require.NoError(t, err)
			front, err := view.Get(0)
			require.NoError(t, err)
			require.Equal(t, 49, front)
		}
		return a.Validate()
	})
	require.NoError(t, err)
}

func TestGuardedErrors(t *testing.T) {
	guarded := guard.New(3, false)

	err := guarded.Write(func(value int) error { return slotalloc.EmptyChainError })
	require.ErrorIs(t, err, slotalloc.EmptyChainError)

	err = guarded.Read(func(value int) error {
		require.Equal(t, 3, value)
		return nil
	})
	require.NoError(t, err)
}

func TestTryWrite(t *testing.T) {
	guarded := guard.New(0, true)

	err := guarded.Read(func(value int) error {
		ok, err := guarded.TryWrite(func(value int) error { return nil })
		require.False(t, ok)
		return err
	})
	require.NoError(t, err)

	ok, err := guarded.TryWrite(func(value int) error { return nil })
	require.True(t, ok)
	require.NoError(t, err)
}

func TestOptionalMutex(t *testing.T) {
	unlocked := guard.OptionalMutex{}
	unlocked.Lock()
	unlocked.Lock()
	require.True(t, unlocked.TryLock())
	unlocked.Unlock()

	// The inner mutex is never touched while disabled
	require.True(t, unlocked.Mutex.TryLock())
	unlocked.Mutex.Unlock()

	locked := guard.OptionalMutex{UseMutex: true}
	locked.Lock()
	require.False(t, locked.TryLock())
	locked.Unlock()
	require.True(t, locked.TryLock())
	locked.Unlock()
}

func TestOptionalRWMutex(t *testing.T) {
	unlocked := guard.OptionalRWMutex{}
	unlocked.RLock()
	require.True(t, unlocked.TryLock())
	require.True(t, unlocked.TryRLock())
	unlocked.Unlock()
	unlocked.RUnlock()
	unlocked.RUnlock()

	require.True(t, unlocked.Mutex.TryLock())
	unlocked.Mutex.Unlock()

	locked := guard.OptionalRWMutex{UseMutex: true}
	locked.RLock()
	require.False(t, locked.TryLock())
	require.True(t, locked.TryRLock())
	locked.RUnlock()
	locked.RUnlock()
	require.True(t, locked.TryLock())
	require.False(t, locked.TryRLock())
	locked.Unlock()
}
