package badger

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finlearn/internal/interfaces"
	"github.com/ternarybob/finlearn/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// CacheStorage implements the CacheStorage interface for Badger.
// All document-backed caches (topics, articles, research, trending news,
// summaries) share this collection, namespaced by key prefix.
type CacheStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCacheStorage creates a new CacheStorage instance
func NewCacheStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CacheStorage {
	return &CacheStorage{
		db:     db,
		logger: logger,
	}
}

func (s *CacheStorage) normalizeKey(key string) string {
	return "cache:" + strings.TrimSpace(key)
}

// Get retrieves a cache entry by key. Expiry is the caller's concern.
func (s *CacheStorage) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	var entry models.CacheEntry
	err := s.db.Store().Get(s.normalizeKey(key), &entry)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}
	return &entry, nil
}

// Set writes a cache entry, replacing any existing entry for the key
func (s *CacheStorage) Set(ctx context.Context, entry *models.CacheEntry) error {
	if err := s.db.Store().Upsert(s.normalizeKey(entry.Key), entry); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry. Deleting a missing key is not an error.
func (s *CacheStorage) Delete(ctx context.Context, key string) error {
	err := s.db.Store().Delete(s.normalizeKey(key), &models.CacheEntry{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}
