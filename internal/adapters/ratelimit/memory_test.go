package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestMemoryStore_IncrementLockClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(MemoryStoreOptions{})

	_, ok, err := store.Get(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	for i := 1; i <= 3; i++ {
		n, incErr := store.Increment(ctx, "10.0.0.1")
		require.NoError(t, incErr)
		assert.Equal(t, i, n)
	}

	until := time.Date(2025, 1, 1, 12, 15, 0, 0, time.UTC)
	require.NoError(t, store.Lock(ctx, "10.0.0.1", until))

	rec, ok, err := store.Get(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, rec.Count)
	assert.True(t, rec.LockoutUntil.Equal(until))

	require.NoError(t, store.Clear(ctx, "10.0.0.1"))
	_, ok, err = store.Get(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	// clearing a missing key is fine
	require.NoError(t, store.Clear(ctx, "10.0.0.1"))
}

func TestMemoryStore_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(MemoryStoreOptions{})

	_, err := store.Increment(ctx, "a")
	require.NoError(t, err)
	n, err := store.Increment(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, store.Len())
}

func TestMemoryStore_IdleRecordsExpire(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(MemoryStoreOptions{IdleTTL: time.Hour, Now: c.Now})

	_, err := store.Increment(ctx, "k")
	require.NoError(t, err)

	c.Add(59 * time.Minute)
	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	c.Add(2 * time.Minute)
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := store.Increment(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryStore_ConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(MemoryStoreOptions{})

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Increment(ctx, "shared")
		}()
	}
	wg.Wait()

	rec, ok, err := store.Get(ctx, "shared")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 50, rec.Count)
}
