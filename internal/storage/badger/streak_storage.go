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

// StreakStorage implements the StreakStorage interface for Badger
type StreakStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewStreakStorage creates a new StreakStorage instance
func NewStreakStorage(db *BadgerDB, logger arbor.ILogger) interfaces.StreakStorage {
	return &StreakStorage{
		db:     db,
		logger: logger,
	}
}

func streakKey(userID string) string {
	return "streak:" + strings.TrimSpace(userID)
}

// Get retrieves a user's streak document. Users with no streak yet get a
// zero streak rather than ErrNotFound.
func (s *StreakStorage) Get(ctx context.Context, userID string) (*models.Streak, error) {
	var streak models.Streak
	err := s.db.Store().Get(streakKey(userID), &streak)
	if err == badgerhold.ErrNotFound {
		return &models.Streak{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}
	return &streak, nil
}

// Upsert writes a user's streak document
func (s *StreakStorage) Upsert(ctx context.Context, streak *models.Streak) error {
	streak.UpdatedAt = time.Now()
	if err := s.db.Store().Upsert(streakKey(streak.UserID), streak); err != nil {
		return fmt.Errorf("failed to upsert streak: %w", err)
	}
	return nil
}
