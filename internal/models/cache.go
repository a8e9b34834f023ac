package models

import (
	"encoding/json"
	"time"
)

// CacheEntry is a generic TTL-bound cache document. Data holds the cached
// payload as raw JSON so one collection serves every cache category.
// Expired entries are treated as absent, not deleted.
type CacheEntry struct {
	Key       string          `json:"key" badgerhold:"key"`
	Data      json.RawMessage `json:"data"`
	CachedAt  time.Time       `json:"cached_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Expired reports whether the entry's TTL has elapsed at the given time.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}
