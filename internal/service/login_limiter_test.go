package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/halayachts/hala-api/internal/adapters/ratelimit"
	"github.com/halayachts/hala-api/internal/data"
	domainauth "github.com/halayachts/hala-api/internal/domain/auth"
	"github.com/halayachts/hala-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testClock() *data.FixedTimeProvider {
	return data.NewFixedTimeProvider(time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC))
}

func newTestLimiter(clock data.TimeProvider) *LoginLimiter {
	store := ratelimit.NewMemoryStore(ratelimit.MemoryStoreOptions{Now: clock.Now})
	return NewLoginLimiter(LoginLimiterOptions{
		Store:        store,
		Policy:       LoginPolicy{MaxAttempts: 5, Lockout: 15 * time.Minute},
		TimeProvider: clock,
	})
}

func TestLoginLimiter_LocksOnFailureReachingMax(t *testing.T) {
	ctx := context.Background()
	clock := testClock()
	l := newTestLimiter(clock)

	for i := 0; i < 4; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, ok, "attempt %d", i+1)
		require.NoError(t, l.RecordFailure(ctx, "1.2.3.4"))
	}

	ok, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, l.RecordFailure(ctx, "1.2.3.4"))

	ok, err = l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok, "fifth failure must lock the key")

	// other keys are unaffected
	ok, err = l.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginLimiter_LockoutElapses(t *testing.T) {
	ctx := context.Background()
	clock := testClock()
	l := newTestLimiter(clock)

	for i := 0; i < 5; i++ {
		require.NoError(t, l.RecordFailure(ctx, "k"))
	}

	clock.AddTime(14*time.Minute + 59*time.Second)
	ok, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	clock.AddTime(time.Second)
	ok, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	// the record was cleared, so a single failure does not re-lock
	require.NoError(t, l.RecordFailure(ctx, "k"))
	ok, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginLimiter_RecordSuccessResets(t *testing.T) {
	ctx := context.Background()
	l := newTestLimiter(testClock())

	for i := 0; i < 4; i++ {
		require.NoError(t, l.RecordFailure(ctx, "k"))
	}
	require.NoError(t, l.RecordSuccess(ctx, "k"))
	for i := 0; i < 4; i++ {
		require.NoError(t, l.RecordFailure(ctx, "k"))
	}
	ok, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginLimiter_CountAtMaxWithoutLockout(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockRateLimitStore(ctrl)
	clock := testClock()
	l := NewLoginLimiter(LoginLimiterOptions{Store: store, TimeProvider: clock})
	ctx := context.Background()

	store.EXPECT().Get(ctx, "k").Return(domainauth.AttemptRecord{Count: 5}, true, nil)
	store.EXPECT().Lock(ctx, "k", clock.Now().Add(DefaultLockoutDuration)).Return(nil)

	ok, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoginLimiter_StoreErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockRateLimitStore(ctrl)
	l := NewLoginLimiter(LoginLimiterOptions{Store: store, TimeProvider: testClock()})
	ctx := context.Background()
	boom := errors.New("redis down")

	store.EXPECT().Get(ctx, "k").Return(domainauth.AttemptRecord{}, false, boom)
	_, err := l.Allow(ctx, "k")
	require.ErrorIs(t, err, boom)

	store.EXPECT().Increment(ctx, "k").Return(0, boom)
	require.ErrorIs(t, l.RecordFailure(ctx, "k"), boom)

	store.EXPECT().Clear(ctx, "k").Return(boom)
	require.ErrorIs(t, l.RecordSuccess(ctx, "k"), boom)
}

func TestLoginLimiter_Defaults(t *testing.T) {
	l := NewLoginLimiter(LoginLimiterOptions{Store: ratelimit.NewMemoryStore(ratelimit.MemoryStoreOptions{})})
	assert.Equal(t, LoginPolicy{MaxAttempts: 5, Lockout: 15 * time.Minute}, l.Policy())

	assert.Panics(t, func() { NewLoginLimiter(LoginLimiterOptions{}) })
}

func TestLoginLimiter_AcquireSerializesPerKey(t *testing.T) {
	l := newTestLimiter(testClock())

	var inside, maxInside int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := l.Acquire("same")
			defer release()
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, l.heldKeys(), "lock entries must be released")
}

func TestLoginLimiter_ReleaseIsIdempotent(t *testing.T) {
	l := newTestLimiter(testClock())
	release := l.Acquire("k")
	release()
	release()
	assert.Equal(t, 0, l.heldKeys())

	// a fresh acquire still works
	l.Acquire("k")()
}
