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

// ActivityStorage implements the ActivityStorage interface for Badger
type ActivityStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewActivityStorage creates a new ActivityStorage instance
func NewActivityStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ActivityStorage {
	return &ActivityStorage{
		db:     db,
		logger: logger,
	}
}

func timestampsKey(userID string) string {
	return "activity_ts:" + strings.TrimSpace(userID)
}

// Insert appends a new activity entry
func (s *ActivityStorage) Insert(ctx context.Context, entry *models.ActivityEntry) error {
	if err := s.db.Store().Insert(entry.ID, entry); err != nil {
		return fmt.Errorf("failed to insert activity entry: %w", err)
	}
	return nil
}

// Update rewrites an existing activity entry in place
func (s *ActivityStorage) Update(ctx context.Context, entry *models.ActivityEntry) error {
	if err := s.db.Store().Upsert(entry.ID, entry); err != nil {
		return fmt.Errorf("failed to update activity entry: %w", err)
	}
	return nil
}

// FindRecentTopicView returns the newest topic_view entry for the user and
// topic touched at or after since, or ErrNotFound. Matching on UpdatedAt
// keeps the dedup window sliding with each in-place refresh.
func (s *ActivityStorage) FindRecentTopicView(ctx context.Context, userID, topicID string, since time.Time) (*models.ActivityEntry, error) {
	var entries []models.ActivityEntry
	err := s.db.Store().Find(&entries, badgerhold.
		Where("UserID").Eq(userID).
		And("TopicID").Eq(topicID).
		And("Type").Eq(models.ActivityTopicView).
		And("UpdatedAt").Ge(since).
		SortBy("UpdatedAt").Reverse())
	if err != nil {
		return nil, fmt.Errorf("failed to query recent topic views: %w", err)
	}
	if len(entries) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return &entries[0], nil
}

// CountByTypeSince counts activity entries per type in [from, to)
func (s *ActivityStorage) CountByTypeSince(ctx context.Context, userID string, from, to time.Time) (map[string]int, error) {
	var entries []models.ActivityEntry
	err := s.db.Store().Find(&entries, badgerhold.
		Where("UserID").Eq(userID).
		And("CreatedAt").Ge(from).
		And("CreatedAt").Lt(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query activity entries: %w", err)
	}

	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.Type]++
	}
	return counts, nil
}

// EntriesForDay returns all entries for the user on the given local date
func (s *ActivityStorage) EntriesForDay(ctx context.Context, userID, date string) ([]models.ActivityEntry, error) {
	var entries []models.ActivityEntry
	err := s.db.Store().Find(&entries, badgerhold.
		Where("UserID").Eq(userID).
		And("Date").Eq(date).
		SortBy("CreatedAt"))
	if err != nil {
		return nil, fmt.Errorf("failed to query day log: %w", err)
	}
	return entries, nil
}

// GetTimestamps retrieves the user's activity timestamps
func (s *ActivityStorage) GetTimestamps(ctx context.Context, userID string) (*models.ActivityTimestamps, error) {
	var ts models.ActivityTimestamps
	err := s.db.Store().Get(timestampsKey(userID), &ts)
	if err == badgerhold.ErrNotFound {
		return &models.ActivityTimestamps{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity timestamps: %w", err)
	}
	return &ts, nil
}

// TouchRead records read activity at the given time
func (s *ActivityStorage) TouchRead(ctx context.Context, userID string, at time.Time) error {
	ts, err := s.GetTimestamps(ctx, userID)
	if err != nil {
		return err
	}
	ts.LastReadAt = at
	if err := s.db.Store().Upsert(timestampsKey(userID), ts); err != nil {
		return fmt.Errorf("failed to touch read timestamp: %w", err)
	}
	return nil
}

// TouchTooltip records tooltip activity at the given time
func (s *ActivityStorage) TouchTooltip(ctx context.Context, userID string, at time.Time) error {
	ts, err := s.GetTimestamps(ctx, userID)
	if err != nil {
		return err
	}
	ts.LastTooltipAt = at
	if err := s.db.Store().Upsert(timestampsKey(userID), ts); err != nil {
		return fmt.Errorf("failed to touch tooltip timestamp: %w", err)
	}
	return nil
}
