package oidc

import (
	"sync"
	"time"
)

// cacheTTL bounds how long discovery documents and JWKS responses are reused
// before the provider is asked again.
const cacheTTL = 60 * time.Second

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// ttlCache is a read-mostly expiring map shared by all requests. The mutex
// only guards the map itself; fetches happen outside it, so two concurrent
// misses for the same key may both hit the network and both store the same
// idempotent result (last writer wins). A failed fetch stores nothing, so a
// bad response never poisons the cache.
type ttlCache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry[V]
}

func newTTLCache[V any](ttl time.Duration, now func() time.Time) *ttlCache[V] {
	return &ttlCache[V]{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry[V]),
	}
}

// get returns the cached value for key if it has not expired. Expired entries
// are discarded on sight.
func (c *ttlCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !entry.expiresAt.After(c.now()) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return entry.value, true
}

func (c *ttlCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
}
