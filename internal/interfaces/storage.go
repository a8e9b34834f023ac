package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/finlearn/internal/models"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned by create operations when a document for the
// key already exists.
var ErrAlreadyExists = errors.New("already exists")

// StorageManager provides access to all storage interfaces
type StorageManager interface {
	PreferenceStorage() PreferenceStorage
	WatchlistStorage() WatchlistStorage
	ActivityStorage() ActivityStorage
	StreakStorage() StreakStorage
	CacheStorage() CacheStorage

	// Close closes the underlying database connection
	Close() error
}

// PreferenceStorage persists per-user category and topic selections
type PreferenceStorage interface {
	GetCategories(ctx context.Context, userID string) (*models.SelectedCategories, error)
	// SaveCategories creates the selection document. Returns ErrAlreadyExists
	// when the user already has one.
	SaveCategories(ctx context.Context, sel *models.SelectedCategories) error
	// UpdateCategories replaces an existing selection document. Returns
	// ErrNotFound when the user has none.
	UpdateCategories(ctx context.Context, sel *models.SelectedCategories) error

	GetTopics(ctx context.Context, userID string) (*models.SelectedTopics, error)
	SaveTopics(ctx context.Context, sel *models.SelectedTopics) error
	UpdateTopics(ctx context.Context, sel *models.SelectedTopics) error
}

// WatchlistStorage persists per-user watchlist documents
type WatchlistStorage interface {
	Get(ctx context.Context, userID string) (*models.Watchlist, error)
	// Upsert runs fn against the user's current watchlist (a fresh empty one
	// when absent) inside a transaction and persists the result. fn returning
	// an error aborts the write.
	Upsert(ctx context.Context, userID string, fn func(w *models.Watchlist) error) (*models.Watchlist, error)
}

// ActivityStorage persists the user learning activity log and activity timestamps
type ActivityStorage interface {
	Insert(ctx context.Context, entry *models.ActivityEntry) error
	Update(ctx context.Context, entry *models.ActivityEntry) error
	// FindRecentTopicView returns the newest topic_view entry for the user and
	// topic touched (UpdatedAt) at or after since, or ErrNotFound.
	FindRecentTopicView(ctx context.Context, userID, topicID string, since time.Time) (*models.ActivityEntry, error)
	// CountByTypeSince counts activity entries per type in [from, to).
	CountByTypeSince(ctx context.Context, userID string, from, to time.Time) (map[string]int, error)
	// EntriesForDay returns all entries for the user on the given local date.
	EntriesForDay(ctx context.Context, userID, date string) ([]models.ActivityEntry, error)

	GetTimestamps(ctx context.Context, userID string) (*models.ActivityTimestamps, error)
	TouchRead(ctx context.Context, userID string, at time.Time) error
	TouchTooltip(ctx context.Context, userID string, at time.Time) error
}

// StreakStorage persists per-user streak documents
type StreakStorage interface {
	Get(ctx context.Context, userID string) (*models.Streak, error)
	Upsert(ctx context.Context, streak *models.Streak) error
}

// CacheStorage persists generic TTL cache entries
type CacheStorage interface {
	Get(ctx context.Context, key string) (*models.CacheEntry, error)
	Set(ctx context.Context, entry *models.CacheEntry) error
	Delete(ctx context.Context, key string) error
}
