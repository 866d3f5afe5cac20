package cache

import (
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Cache is a bounded read-through cache with least-recently-used eviction.
// Both Get and Insert refresh an entry's recency. Entries are value copies,
// so a single mutex per instance is enough; callers must never hold it
// across I/O, which the short method bodies guarantee.
//
// The cache has no TTL of its own. Expiry is a property of the upstream
// data; callers invalidate on every write that changes a cached field.
type Cache[K comparable, V any] struct {
	mu  sync.Mutex
	lru *simplelru.LRU[K, V]
}

// New builds a cache bounded to capacity entries. Capacity must be positive.
func New[K comparable, V any](capacity int) (*Cache[K, V], error) {
	lru, err := simplelru.NewLRU[K, V](capacity, nil)
	if err != nil {
		return nil, err
	}
	return &Cache[K, V]{lru: lru}, nil
}

// Get returns the cached value and refreshes its recency.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(key)
}

// Insert stores the value, evicting the least-recently-used entry when the
// cache is at capacity.
func (c *Cache[K, V]) Insert(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, value)
}

// Replace removes any existing entry before inserting, forcing a fresh LRU
// position for the key.
func (c *Cache[K, V]) Replace(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
	c.lru.Add(key, value)
}

// Remove evicts the key and returns the value it held, if any.
func (c *Cache[K, V]) Remove(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.lru.Peek(key)
	if ok {
		c.lru.Remove(key)
	}
	return value, ok
}

// Clear drops every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// Len reports the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
