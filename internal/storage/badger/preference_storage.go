package badger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finlearn/internal/interfaces"
	"github.com/ternarybob/finlearn/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// PreferenceStorage implements the PreferenceStorage interface for Badger
type PreferenceStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewPreferenceStorage creates a new PreferenceStorage instance
func NewPreferenceStorage(db *BadgerDB, logger arbor.ILogger) interfaces.PreferenceStorage {
	return &PreferenceStorage{
		db:     db,
		logger: logger,
	}
}

func categoryKey(userID string) string {
	return "categories:" + strings.TrimSpace(userID)
}

func topicsKey(userID string) string {
	return "topics:" + strings.TrimSpace(userID)
}

// GetCategories retrieves a user's category selections
func (s *PreferenceStorage) GetCategories(ctx context.Context, userID string) (*models.SelectedCategories, error) {
	var sel models.SelectedCategories
	err := s.db.Store().Get(categoryKey(userID), &sel)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get selected categories: %w", err)
	}
	return &sel, nil
}

// SaveCategories creates a user's category selection document.
// Fails with ErrAlreadyExists when one already exists.
func (s *PreferenceStorage) SaveCategories(ctx context.Context, sel *models.SelectedCategories) error {
	now := time.Now()
	sel.CreatedAt = now
	sel.UpdatedAt = now

	err := s.db.Store().Insert(categoryKey(sel.UserID), sel)
	if err == badgerhold.ErrKeyExists {
		return interfaces.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to save selected categories: %w", err)
	}

	s.logger.Debug().Str("user_id", sel.UserID).Int("count", len(sel.Selections)).Msg("Saved selected categories")
	return nil
}

// UpdateCategories replaces an existing category selection document.
// Fails with ErrNotFound when the user has none.
func (s *PreferenceStorage) UpdateCategories(ctx context.Context, sel *models.SelectedCategories) error {
	var existing models.SelectedCategories
	err := s.db.Store().Get(categoryKey(sel.UserID), &existing)
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check selected categories: %w", err)
	}

	sel.CreatedAt = existing.CreatedAt
	sel.UpdatedAt = time.Now()

	if err := s.db.Store().Upsert(categoryKey(sel.UserID), sel); err != nil {
		return fmt.Errorf("failed to update selected categories: %w", err)
	}

	s.logger.Debug().Str("user_id", sel.UserID).Int("count", len(sel.Selections)).Msg("Updated selected categories")
	return nil
}

// GetTopics retrieves a user's topic selections
func (s *PreferenceStorage) GetTopics(ctx context.Context, userID string) (*models.SelectedTopics, error) {
	var sel models.SelectedTopics
	err := s.db.Store().Get(topicsKey(userID), &sel)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get selected topics: %w", err)
	}
	return &sel, nil
}

// SaveTopics creates a user's topic selection document
func (s *PreferenceStorage) SaveTopics(ctx context.Context, sel *models.SelectedTopics) error {
	now := time.Now()
	sel.CreatedAt = now
	sel.UpdatedAt = now

	err := s.db.Store().Insert(topicsKey(sel.UserID), sel)
	if err == badgerhold.ErrKeyExists {
		return interfaces.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to save selected topics: %w", err)
	}
	return nil
}

// UpdateTopics replaces an existing topic selection document
func (s *PreferenceStorage) UpdateTopics(ctx context.Context, sel *models.SelectedTopics) error {
	var existing models.SelectedTopics
	err := s.db.Store().Get(topicsKey(sel.UserID), &existing)
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check selected topics: %w", err)
	}

	sel.CreatedAt = existing.CreatedAt
	sel.UpdatedAt = time.Now()

	if err := s.db.Store().Upsert(topicsKey(sel.UserID), sel); err != nil {
		return fmt.Errorf("failed to update selected topics: %w", err)
	}
	return nil
}
