package ratelimit

// Package ratelimit provides a process-local store for failed login attempts.

import (
	"context"
	"sync"
	"time"

	domainauth "github.com/halayachts/hala-api/internal/domain/auth"
	"github.com/halayachts/hala-api/internal/ports"
)

// DefaultIdleTTL bounds how long an untouched record is kept.
const DefaultIdleTTL = 24 * time.Hour

// pruneEvery is the number of writes between idle sweeps.
const pruneEvery = 256

type entry struct {
	rec     domainauth.AttemptRecord
	touched time.Time
}

// MemoryStore keeps attempt records in a mutex-guarded map.
// Limits are per process; use the Redis store to share them across instances.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	idleTTL time.Duration
	now     func() time.Time
	writes  int
}

var _ ports.RateLimitStore = (*MemoryStore)(nil)

// MemoryStoreOptions configures a MemoryStore.
type MemoryStoreOptions struct {
	// IdleTTL drops records not written for this long. Zero uses DefaultIdleTTL.
	IdleTTL time.Duration
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts MemoryStoreOptions) *MemoryStore {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &MemoryStore{
		entries: make(map[string]*entry),
		idleTTL: opts.IdleTTL,
		now:     opts.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (domainauth.AttemptRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return domainauth.AttemptRecord{}, false, nil
	}
	if s.now().Sub(e.touched) > s.idleTTL {
		delete(s.entries, key)
		return domainauth.AttemptRecord{}, false, nil
	}
	return e.rec, true, nil
}

func (s *MemoryStore) Increment(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.touch(key)
	e.rec.Count++
	return e.rec.Count, nil
}

func (s *MemoryStore) Lock(_ context.Context, key string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.touch(key)
	e.rec.LockoutUntil = until
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// touch returns the entry for key, creating it, and occasionally prunes idle entries.
// Callers must hold s.mu.
func (s *MemoryStore) touch(key string) *entry {
	now := s.now()
	s.writes++
	if s.writes%pruneEvery == 0 {
		for k, e := range s.entries {
			if now.Sub(e.touched) > s.idleTTL {
				delete(s.entries, k)
			}
		}
	}

	e, ok := s.entries[key]
	if !ok || now.Sub(e.touched) > s.idleTTL {
		e = &entry{}
		s.entries[key] = e
	}
	e.touched = now
	return e
}
