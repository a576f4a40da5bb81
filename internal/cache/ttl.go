// internal/cache/ttl.go
//
// Tiny TTL key-value store used by the tenant registry.  No external deps;
// good for a few thousand entries.  The store is constructor-injected so
// callers control its lifetime and tests never depend on process state.
package cache

import (
	"sync"
	"time"
)

// TTL is a concurrency-safe map whose entries expire after a fixed
// duration.  Reads never block other reads; a racing insert-on-miss is
// last-write-wins, which is fine because both writers computed the same
// value for the same key.
type TTL[V any] struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]entry[V]
}

type entry[V any] struct {
	val       V
	fetchedAt time.Time
}

// NewTTL returns a store whose entries go stale ttl after insertion.
// Panics on ttl <= 0.
func NewTTL[V any](ttl time.Duration) *TTL[V] {
	if ttl <= 0 {
		panic("cache: ttl must be positive")
	}
	return &TTL[V]{ttl: ttl, m: make(map[string]entry[V], 16)}
}

// Get returns the live value for key.  Stale entries are reported as
// misses; they are removed lazily by Set or Delete, not by Get, so the
// read path stays lock-free among readers.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok || time.Since(e.fetchedAt) > c.ttl {
		var zero V
		return zero, false
	}
	return e.val, true
}

// Set inserts or overwrites the value for key, resetting its fetch time.
func (c *TTL[V]) Set(key string, val V) {
	c.mu.Lock()
	c.m[key] = entry[V]{val: val, fetchedAt: time.Now()}
	c.mu.Unlock()
}

// Delete evicts one key.  Safe to call for absent keys.
func (c *TTL[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

// Purge evicts every entry.
func (c *TTL[V]) Purge() {
	c.mu.Lock()
	c.m = make(map[string]entry[V], 16)
	c.mu.Unlock()
}

// Drain removes every entry, live or stale, invoking onEvict for each.
// Returns the number of entries removed.
func (c *TTL[V]) Drain(onEvict func(key string, val V)) int {
	c.mu.Lock()
	old := c.m
	c.m = make(map[string]entry[V], 16)
	c.mu.Unlock()

	if onEvict != nil {
		for k, e := range old {
			onEvict(k, e.val)
		}
	}
	return len(old)
}

// Len reports current size, stale entries included.
func (c *TTL[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// Sweep removes entries stale at the time of the call and invokes onEvict
// for each removed value.  Called by the registry's background evictor.
func (c *TTL[V]) Sweep(onEvict func(key string, val V)) int {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int
	for k, e := range c.m {
		if now.Sub(e.fetchedAt) > c.ttl {
			delete(c.m, k)
			if onEvict != nil {
				onEvict(k, e.val)
			}
			n++
		}
	}
	return n
}
