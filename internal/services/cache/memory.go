// Package cache provides the in-process and document-backed TTL caches plus
// the content freshness policy that gates generation calls.
package cache

import (
	"sync"
	"time"
)

type memoryEntry[T any] struct {
	value     T
	cachedAt  time.Time
	expiresAt time.Time
}

// Memory is a mutex-guarded in-process TTL cache. Expired entries are
// treated as absent on read and overwritten on the next Set; there is no
// background eviction.
type Memory[T any] struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry[T]
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates a memory cache with the given default TTL
func NewMemory[T any](ttl time.Duration) *Memory[T] {
	return &Memory[T]{
		entries: make(map[string]memoryEntry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached value when present and unexpired
func (c *Memory[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || !c.now().Before(entry.expiresAt) {
		var zero T
		return zero, false
	}
	return entry.value, true
}

// Set stores a value under key with the cache's default TTL
func (c *Memory[T]) Set(key string, value T) {
	c.SetTTL(key, value, c.ttl)
}

// SetTTL stores a value under key with an explicit TTL
func (c *Memory[T]) SetTTL(key string, value T, ttl time.Duration) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry[T]{
		value:     value,
		cachedAt:  now,
		expiresAt: now.Add(ttl),
	}
}

// Invalidate removes a single entry
func (c *Memory[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries
func (c *Memory[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry[T])
}

// Len returns the number of stored entries, counting expired ones not yet
// overwritten.
func (c *Memory[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
