package badger

import (
	"context"
	"fmt"
	"strings"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finlearn/internal/interfaces"
	"github.com/ternarybob/finlearn/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// WatchlistStorage implements the WatchlistStorage interface for Badger
type WatchlistStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewWatchlistStorage creates a new WatchlistStorage instance
func NewWatchlistStorage(db *BadgerDB, logger arbor.ILogger) interfaces.WatchlistStorage {
	return &WatchlistStorage{
		db:     db,
		logger: logger,
	}
}

func watchlistKey(userID string) string {
	return "watchlist:" + strings.TrimSpace(userID)
}

// Get retrieves a user's watchlist. Users with no watchlist yet get an
// empty one rather than ErrNotFound.
func (s *WatchlistStorage) Get(ctx context.Context, userID string) (*models.Watchlist, error) {
	var w models.Watchlist
	err := s.db.Store().Get(watchlistKey(userID), &w)
	if err == badgerhold.ErrNotFound {
		return &models.Watchlist{UserID: userID, Items: []models.WatchlistItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}
	return &w, nil
}

// Upsert applies fn to the user's watchlist inside a transaction so that
// concurrent add/remove calls cannot interleave reads and writes.
func (s *WatchlistStorage) Upsert(ctx context.Context, userID string, fn func(w *models.Watchlist) error) (*models.Watchlist, error) {
	key := watchlistKey(userID)
	var result *models.Watchlist

	err := s.db.Store().Badger().Update(func(tx *badgerdb.Txn) error {
		var w models.Watchlist
		err := s.db.Store().TxGet(tx, key, &w)
		if err == badgerhold.ErrNotFound {
			w = models.Watchlist{UserID: userID, Items: []models.WatchlistItem{}}
		} else if err != nil {
			return fmt.Errorf("failed to read watchlist: %w", err)
		}

		if err := fn(&w); err != nil {
			return err
		}

		w.UpdatedAt = time.Now()
		if err := s.db.Store().TxUpsert(tx, key, &w); err != nil {
			return fmt.Errorf("failed to write watchlist: %w", err)
		}

		result = &w
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Str("user_id", userID).Int("items", len(result.Items)).Msg("Watchlist updated")
	return result, nil
}
