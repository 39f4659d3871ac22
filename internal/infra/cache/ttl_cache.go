// Package cache provides the in-process response cache used in front of the
// market data providers.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Config holds the cache limits. Every entry shares the same TTL.
type Config struct {
	// TTL is the lifetime of an entry in seconds, counted from its last Set
	TTL int64 `env:"TTL" default:"3600"` // 1h

	// MaxEntries bounds the number of entries; the least recently used entry is evicted first
	MaxEntries int `env:"MAX_ENTRIES" default:"1000"`
}

// TTLCache is a bounded, thread-safe key/value store with a single global TTL.
// Expired entries are dropped lazily on read and by the LRU's background sweep.
type TTLCache[V any] struct {
	lru *expirable.LRU[string, V]
	ttl time.Duration
}

// New creates a TTLCache from the given configuration. Non-positive limits
// fall back to one hour and 1000 entries.
func New[V any](cfg Config) *TTLCache[V] {
	ttl := time.Duration(cfg.TTL) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}

	size := cfg.MaxEntries
	if size <= 0 {
		size = 1000
	}

	return &TTLCache[V]{
		lru: expirable.NewLRU[string, V](size, nil, ttl),
		ttl: ttl,
	}
}

// Get returns the value stored under key if present and not expired.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

// Set stores value under key, replacing any previous value and restarting its TTL.
func (c *TTLCache[V]) Set(key string, value V) {
	c.lru.Add(key, value)
}

// Delete removes a single entry.
func (c *TTLCache[V]) Delete(key string) {
	c.lru.Remove(key)
}

// Clear evicts every entry.
func (c *TTLCache[V]) Clear() {
	c.lru.Purge()
}

// Len returns the number of entries currently held, including entries that
// have expired but were not swept yet.
func (c *TTLCache[V]) Len() int {
	return c.lru.Len()
}

// TTL returns the configured entry lifetime.
func (c *TTLCache[V]) TTL() time.Duration {
	return c.ttl
}
