package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/halayachts/hala-api/internal/data"
	"github.com/halayachts/hala-api/internal/ports"
)

const (
	// DefaultMaxLoginAttempts is the number of failures that triggers a lockout.
	DefaultMaxLoginAttempts = 5
	// DefaultLockoutDuration is how long a locked source key is refused.
	DefaultLockoutDuration = 15 * time.Minute
)

// LoginPolicy holds the throttling thresholds.
type LoginPolicy struct {
	MaxAttempts int
	Lockout     time.Duration
}

// LoginLimiterOptions groups dependencies for LoginLimiter.
type LoginLimiterOptions struct {
	Store        ports.RateLimitStore // Required
	Policy       LoginPolicy
	TimeProvider data.TimeProvider
}

// LoginLimiter throttles failed admin logins per source key.
// A key is locked out once it accumulates Policy.MaxAttempts failures; the
// failure that reaches the maximum starts the lockout window.
type LoginLimiter struct {
	store  ports.RateLimitStore
	policy LoginPolicy
	clock  data.TimeProvider

	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewLoginLimiter constructs a LoginLimiter.
func NewLoginLimiter(opts LoginLimiterOptions) *LoginLimiter {
	if opts.Store == nil {
		panic("RateLimitStore is required")
	}
	if opts.Policy.MaxAttempts < 1 {
		opts.Policy.MaxAttempts = DefaultMaxLoginAttempts
	}
	if opts.Policy.Lockout <= 0 {
		opts.Policy.Lockout = DefaultLockoutDuration
	}
	if opts.TimeProvider == nil {
		opts.TimeProvider = &data.RealTimeProvider{}
	}
	return &LoginLimiter{
		store:  opts.Store,
		policy: opts.Policy,
		clock:  opts.TimeProvider,
		locks:  make(map[string]*keyLock),
	}
}

// Policy returns the effective thresholds.
func (l *LoginLimiter) Policy() LoginPolicy { return l.policy }

// Acquire serializes callers on key until the returned release func is called.
// Entries are reference counted and dropped once no caller holds or waits on them.
func (l *LoginLimiter) Acquire(key string) (release func()) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			kl.mu.Unlock()
			l.mu.Lock()
			kl.refs--
			if kl.refs == 0 {
				delete(l.locks, key)
			}
			l.mu.Unlock()
		})
	}
}

// Allow reports whether key may attempt a login now.
// An elapsed lockout clears the record; a record already at the limit without a
// lockout (written under an older policy) is locked from now.
func (l *LoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	rec, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get attempts: %w", err)
	}
	if !ok {
		return true, nil
	}

	now := l.clock.Now()
	if rec.Locked(now) {
		return false, nil
	}
	if rec.LockoutElapsed(now) {
		if clearErr := l.store.Clear(ctx, key); clearErr != nil {
			return false, fmt.Errorf("clear elapsed lockout: %w", clearErr)
		}
		return true, nil
	}
	if rec.Count >= l.policy.MaxAttempts {
		if lockErr := l.store.Lock(ctx, key, now.Add(l.policy.Lockout)); lockErr != nil {
			return false, fmt.Errorf("lock: %w", lockErr)
		}
		return false, nil
	}
	return true, nil
}

// RecordFailure counts a failed attempt and starts the lockout when the limit is reached.
func (l *LoginLimiter) RecordFailure(ctx context.Context, key string) error {
	n, err := l.store.Increment(ctx, key)
	if err != nil {
		return fmt.Errorf("increment attempts: %w", err)
	}
	if n >= l.policy.MaxAttempts {
		if lockErr := l.store.Lock(ctx, key, l.clock.Now().Add(l.policy.Lockout)); lockErr != nil {
			return fmt.Errorf("lock: %w", lockErr)
		}
	}
	return nil
}

// RecordSuccess forgets every failure recorded for key.
func (l *LoginLimiter) RecordSuccess(ctx context.Context, key string) error {
	if err := l.store.Clear(ctx, key); err != nil {
		return fmt.Errorf("clear attempts: %w", err)
	}
	return nil
}

// heldKeys returns the number of keys with live lock entries.
func (l *LoginLimiter) heldKeys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
