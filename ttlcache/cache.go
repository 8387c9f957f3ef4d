// Package ttlcache is an in-memory key/value cache whose entries expire a
// fixed time after they were written.
package ttlcache

import (
	"sync"
	"time"

	"github.com/coinforge/walletcore/async"
	"github.com/coinforge/walletcore/clock"
	"github.com/coinforge/walletcore/fn"
	"github.com/coinforge/walletcore/lnutils"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	clock clock.Clock
}

// WithClock sets the clock entries are expired against.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// Cache maps keys to values that expire ttl after they were stored. Expired
// entries are dropped lazily when they are looked at.
type Cache[K comparable, V any] struct {
	ttl   time.Duration
	clock clock.Clock

	mu      sync.Mutex
	entries map[K]entry[V]

	// inflight holds the pending load for each key being fetched through
	// GetOrLoad.
	inflight lnutils.SyncMap[K, async.Future[V]]
}

// New creates an empty cache with the given time to live.
func New[K comparable, V any](ttl time.Duration, opts ...Option) *Cache[K, V] {
	o := &options{clock: clock.NewDefaultClock()}
	for _, opt := range opts {
		opt(o)
	}

	return &Cache[K, V]{
		ttl:     ttl,
		clock:   o.clock,
		entries: make(map[K]entry[V]),
	}
}

// Put stores value under key with the cache's default time to live.
func (c *Cache[K, V]) Put(key K, value V) {
	c.PutWithTTL(key, value, c.ttl)
}

// PutWithTTL stores value under key for ttl.
func (c *Cache[K, V]) PutWithTTL(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:   value,
		expires: c.clock.Now().Add(ttl),
	}
}

// Get returns the value for key if it is present and has not expired.
func (c *Cache[K, V]) Get(key K) fn.Option[V] {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return fn.None[V]()
	}

	if !c.clock.Now().Before(e.expires) {
		log.Tracef("Entry %v expired at %v", key, e.expires)
		delete(c.entries, key)

		return fn.None[V]()
	}

	return fn.Some(e.value)
}

// Remove deletes key and reports whether a live entry was removed.
func (c *Cache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	delete(c.entries, key)

	return c.clock.Now().Before(e.expires)
}

// Len returns the number of live entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeExpiredLocked()

	return len(c.entries)
}

// RemoveExpired drops every expired entry and returns how many there were.
func (c *Cache[K, V]) RemoveExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.removeExpiredLocked()
}

func (c *Cache[K, V]) removeExpiredLocked() int {
	now := c.clock.Now()

	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
			removed++
		}
	}

	return removed
}

// Purge drops every entry.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	log.Debugf("Purging %d cache entries", len(c.entries))

	c.entries = make(map[K]entry[V])
}

// GetOrLoad returns the cached value for key, or runs loader on ctx to fetch
// it. Concurrent calls for the same missing key share a single load. A
// successful load is cached; a failed one is not.
func (c *Cache[K, V]) GetOrLoad(ctx async.ExecutionContext, key K,
	loader func(K) (V, error)) async.Future[V] {

	if v, err := c.Get(key).Value(); err == nil {
		return async.Successful(v)
	}

	p := async.NewPromise[V]()
	fut, loading := c.inflight.LoadOrStore(key, p.Future())
	if loading {
		log.Tracef("Joining in-flight load of %v", key)
		return fut
	}

	async.Async(ctx, func() (V, error) {
		return loader(key)
	}).OnComplete(async.ImmediateContext, func(result fn.Try[V]) {
		result.WhenSuccess(func(v V) {
			c.Put(key, v)
		})
		result.WhenFailure(func(err error) {
			log.Debugf("Loading %v failed: %v", key, err)
		})

		c.inflight.Delete(key)
		p.TryComplete(result)
	})

	return p.Future()
}
