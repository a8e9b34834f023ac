package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finlearn/internal/interfaces"
	"github.com/ternarybob/finlearn/internal/models"
)

// Store is the document-backed TTL cache over CacheStorage. Payloads are
// stored as JSON so one collection serves every cache category.
type Store struct {
	storage interfaces.CacheStorage
	logger  arbor.ILogger
	now     func() time.Time
}

// NewStore creates a document-backed cache
func NewStore(storage interfaces.CacheStorage, logger arbor.ILogger) *Store {
	return &Store{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// Get unmarshals the cached payload for key into out. Returns false for
// missing and expired entries; expired entries are left in place to be
// overwritten by the next Set.
func (s *Store) Get(ctx context.Context, key string, out interface{}) (bool, error) {
	entry, err := s.storage.Get(ctx, key)
	if errors.Is(err, interfaces.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if entry.Expired(s.now()) {
		s.logger.Debug().Str("key", key).Str("expired_at", entry.ExpiresAt.Format(time.RFC3339)).Msg("Cache entry expired")
		return false, nil
	}

	if err := json.Unmarshal(entry.Data, out); err != nil {
		// Corrupt payloads count as misses so the caller regenerates
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to decode cache entry, treating as miss")
		return false, nil
	}
	return true, nil
}

// CachedAt returns the storage time of an unexpired entry, or false
func (s *Store) CachedAt(ctx context.Context, key string) (time.Time, bool, error) {
	entry, err := s.storage.Get(ctx, key)
	if errors.Is(err, interfaces.ErrNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	if entry.Expired(s.now()) {
		return time.Time{}, false, nil
	}
	return entry.CachedAt, true, nil
}

// Set stores value under key with the given TTL
func (s *Store) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	now := s.now()
	return s.storage.Set(ctx, &models.CacheEntry{
		Key:       key,
		Data:      data,
		CachedAt:  now,
		ExpiresAt: now.Add(ttl),
	})
}

// Invalidate removes the entry for key
func (s *Store) Invalidate(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}
