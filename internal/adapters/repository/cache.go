// Package repository implements the read-through recommendation cache.
//
// The cache is sharded by key hash so lookups for independent keys never
// contend on one lock, and identical concurrent requests coalesce onto a
// single computation instead of racing the collaborators twice.
package repository

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/matineehq/matinee/internal/domain/rank"
	"github.com/matineehq/matinee/pkg/metrics"
)

// Defaults for the cache.
const (
	defaultTTL        = 5 * time.Minute
	defaultShardCount = 8
)

// Cache provides read-through access to computed recommendation lists.
type Cache interface {
	// GetOrCompute returns the cached value for key, or runs compute and
	// caches its result. The bool reports whether the value came from
	// cache. Concurrent callers with the same key share one computation;
	// a failed computation is not cached.
	GetOrCompute(ctx context.Context, key string, compute func(context.Context) ([]rank.Recommendation, error)) ([]rank.Recommendation, bool, error)

	// Invalidate drops the entry for key, forcing the next lookup to
	// recompute.
	Invalidate(ctx context.Context, key string)

	// Len returns the number of live entries.
	Len() int
}

// entry is one cached or in-flight computation.
type entry struct {
	done      chan struct{} // closed when the computation finishes
	value     []rank.Recommendation
	err       error
	expiresAt time.Time
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// shardedCache implements Cache.
type shardedCache struct {
	shards []*shard
	ttl    time.Duration
	now    func() time.Time
}

// Option applies a configuration option to the cache.
type Option func(*shardedCache)

// WithTTL sets the entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *shardedCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithShardCount sets the number of shards.
func WithShardCount(n int) Option {
	return func(c *shardedCache) {
		if n > 0 {
			c.shards = make([]*shard, n)
		}
	}
}

// withClock overrides the time source, for tests.
func withClock(now func() time.Time) Option {
	return func(c *shardedCache) {
		c.now = now
	}
}

// New creates a sharded read-through cache.
func New(opts ...Option) Cache {
	c := &shardedCache{
		shards: make([]*shard, defaultShardCount),
		ttl:    defaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	for i := range c.shards {
		c.shards[i] = &shard{entries: make(map[string]*entry)}
	}
	return c
}

func (c *shardedCache) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return c.shards[h.Sum32()%uint32(len(c.shards))]
}

func (c *shardedCache) GetOrCompute(ctx context.Context, key string, compute func(context.Context) ([]rank.Recommendation, error)) ([]rank.Recommendation, bool, error) {
	s := c.shardFor(key)

	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		select {
		case <-e.done:
			// Finished entry: serve it unless expired.
			if e.err == nil && c.now().Before(e.expiresAt) {
				s.mu.Unlock()
				metrics.RecordCacheHit()
				return e.value, true, nil
			}
			metrics.RecordCacheEviction()
			delete(s.entries, key)
		default:
			// Someone is computing this key right now: join them.
			s.mu.Unlock()
			metrics.RecordCacheCoalesced()
			select {
			case <-e.done:
				if e.err != nil {
					return nil, false, e.err
				}
				return e.value, true, nil
			case <-ctx.Done():
				return nil, false, ctx.Err()
			}
		}
	}

	e := &entry{done: make(chan struct{})}
	s.entries[key] = e
	s.mu.Unlock()
	metrics.RecordCacheMiss()

	value, err := compute(ctx)
	e.value, e.err = value, err
	e.expiresAt = c.now().Add(c.ttl)
	close(e.done)

	if err != nil {
		// Do not serve failures to later callers.
		s.mu.Lock()
		if s.entries[key] == e {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false, err
	}
	return value, false, nil
}

func (c *shardedCache) Invalidate(_ context.Context, key string) {
	s := c.shardFor(key)
	s.mu.Lock()
	if _, ok := s.entries[key]; ok {
		delete(s.entries, key)
		metrics.RecordCacheEviction()
	}
	s.mu.Unlock()
}

func (c *shardedCache) Len() int {
	n := 0
	now := c.now()
	for _, s := range c.shards {
		s.mu.Lock()
		for _, e := range s.entries {
			select {
			case <-e.done:
				if e.err == nil && now.Before(e.expiresAt) {
					n++
				}
			default:
				n++
			}
		}
		s.mu.Unlock()
	}
	return n
}
