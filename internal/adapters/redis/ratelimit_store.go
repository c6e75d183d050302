package redis

// Package redis provides Redis-based adapters for the hala-api system.

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	domainauth "github.com/halayachts/hala-api/internal/domain/auth"
	"github.com/halayachts/hala-api/internal/ports"
	"github.com/redis/go-redis/v9"
)

const (
	fieldCount        = "count"
	fieldLockoutUntil = "lockout_until"

	defaultPrefix  = "ratelimit:login:"
	defaultIdleTTL = 24 * time.Hour
)

// RateLimitStore keeps login attempt records in one Redis hash per source key,
// so every API instance sees the same counters. Each write refreshes the key TTL,
// which bounds growth for keys that stop failing.
type RateLimitStore struct {
	client  redis.UniversalClient
	prefix  string
	idleTTL time.Duration
}

var _ ports.RateLimitStore = (*RateLimitStore)(nil)

// NewRateLimitStore creates a Redis-backed attempt store with the default prefix and TTL.
func NewRateLimitStore(client redis.UniversalClient) *RateLimitStore {
	return NewRateLimitStoreWithPrefix(client, defaultPrefix, defaultIdleTTL)
}

// NewRateLimitStoreWithPrefix creates a store with a custom key prefix and idle TTL.
func NewRateLimitStoreWithPrefix(client redis.UniversalClient, prefix string, idleTTL time.Duration) *RateLimitStore {
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	return &RateLimitStore{
		client:  client,
		prefix:  prefix,
		idleTTL: idleTTL,
	}
}

func (s *RateLimitStore) Get(ctx context.Context, key string) (domainauth.AttemptRecord, bool, error) {
	vals, err := s.client.HGetAll(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.AttemptRecord{}, false, nil
		}
		return domainauth.AttemptRecord{}, false, fmt.Errorf("redis hgetall: %w", err)
	}
	if len(vals) == 0 {
		return domainauth.AttemptRecord{}, false, nil
	}

	var rec domainauth.AttemptRecord
	if v, ok := vals[fieldCount]; ok {
		n, convErr := strconv.Atoi(v)
		if convErr != nil {
			return domainauth.AttemptRecord{}, false, fmt.Errorf("parse %s: %w", fieldCount, convErr)
		}
		rec.Count = n
	}
	if v, ok := vals[fieldLockoutUntil]; ok && v != "" && v != "0" {
		ms, convErr := strconv.ParseInt(v, 10, 64)
		if convErr != nil {
			return domainauth.AttemptRecord{}, false, fmt.Errorf("parse %s: %w", fieldLockoutUntil, convErr)
		}
		rec.LockoutUntil = time.UnixMilli(ms).UTC()
	}
	return rec, true, nil
}

func (s *RateLimitStore) Increment(ctx context.Context, key string) (int, error) {
	k := s.prefix + key
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.HIncrBy(ctx, k, fieldCount, 1)
		p.Expire(ctx, k, s.idleTTL)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis increment: %w", err)
	}
	return int(incr.Val()), nil
}

func (s *RateLimitStore) Lock(ctx context.Context, key string, until time.Time) error {
	k := s.prefix + key
	ttl := s.idleTTL
	if d := time.Until(until); d > ttl {
		ttl = d
	}
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, k, fieldLockoutUntil, until.UnixMilli())
		p.Expire(ctx, k, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis lock: %w", err)
	}
	return nil
}

func (s *RateLimitStore) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
