package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/finlearn/internal/common"
	"github.com/ternarybob/finlearn/internal/interfaces"
	"github.com/ternarybob/finlearn/internal/models"
)

func newTestDB(t *testing.T) *BadgerDB {
	t.Helper()
	db, err := NewBadgerDB(common.GetLogger(), &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestWatchlistUpsertDedup(t *testing.T) {
	db := newTestDB(t)
	storage := NewWatchlistStorage(db, common.GetLogger())
	ctx := context.Background()

	add := func(symbol, assetType, notes string) {
		_, err := storage.Upsert(ctx, "user-1", func(w *models.Watchlist) error {
			if i := w.Find(symbol, assetType); i >= 0 {
				w.Items[i].Notes = notes
				return nil
			}
			w.Items = append(w.Items, models.WatchlistItem{
				Symbol:    symbol,
				AssetType: assetType,
				Notes:     notes,
				AddedAt:   time.Now(),
			})
			return nil
		})
		require.NoError(t, err)
	}

	add("AAPL", models.AssetTypeStock, "first")
	add("BTC", models.AssetTypeCrypto, "")
	add("aapl", models.AssetTypeStock, "updated") // same asset, notes replaced

	w, err := storage.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, w.Items, 2)
	require.Equal(t, "updated", w.Items[0].Notes)
}

func TestWatchlistUpsertAborts(t *testing.T) {
	db := newTestDB(t)
	storage := NewWatchlistStorage(db, common.GetLogger())
	ctx := context.Background()

	boom := errors.New("validation failed")
	_, err := storage.Upsert(ctx, "user-1", func(w *models.Watchlist) error {
		w.Items = append(w.Items, models.WatchlistItem{Symbol: "AAPL"})
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Aborted transaction leaves nothing behind
	w, err := storage.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Empty(t, w.Items)
}

func TestPreferenceCreateConflictAndUpdate(t *testing.T) {
	db := newTestDB(t)
	storage := NewPreferenceStorage(db, common.GetLogger())
	ctx := context.Background()

	sel := &models.SelectedCategories{
		UserID: "user-1",
		Selections: []models.CategorySelection{
			{Category: "stocks", Level: models.LevelBeginner},
		},
	}

	// Update before create fails
	require.ErrorIs(t, storage.UpdateCategories(ctx, sel), interfaces.ErrNotFound)

	require.NoError(t, storage.SaveCategories(ctx, sel))

	// Second create conflicts
	require.ErrorIs(t, storage.SaveCategories(ctx, sel), interfaces.ErrAlreadyExists)

	sel.Selections = append(sel.Selections, models.CategorySelection{
		Category: "cryptocurrency",
		Level:    models.LevelIntermediate,
	})
	require.NoError(t, storage.UpdateCategories(ctx, sel))

	got, err := storage.GetCategories(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got.Selections, 2)
	require.Equal(t, models.LevelIntermediate, got.LevelFor("cryptocurrency"))
}

func TestActivityRecentTopicViewWindow(t *testing.T) {
	db := newTestDB(t)
	storage := NewActivityStorage(db, common.GetLogger())
	ctx := context.Background()
	now := time.Now()

	old := &models.ActivityEntry{
		ID:        "e-1",
		UserID:    "user-1",
		Type:      models.ActivityTopicView,
		TopicID:   "topic-1",
		CreatedAt: now.Add(-48 * time.Hour),
	}
	recent := &models.ActivityEntry{
		ID:        "e-2",
		UserID:    "user-1",
		Type:      models.ActivityTopicView,
		TopicID:   "topic-1",
		CreatedAt: now.Add(-2 * time.Hour),
	}
	require.NoError(t, storage.Insert(ctx, old))
	require.NoError(t, storage.Insert(ctx, recent))

	got, err := storage.FindRecentTopicView(ctx, "user-1", "topic-1", now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, "e-2", got.ID)

	// Other users and other topics do not match
	_, err = storage.FindRecentTopicView(ctx, "user-2", "topic-1", now.Add(-24*time.Hour))
	require.ErrorIs(t, err, interfaces.ErrNotFound)
	_, err = storage.FindRecentTopicView(ctx, "user-1", "topic-9", now.Add(-24*time.Hour))
	require.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestCacheStorageRoundTrip(t *testing.T) {
	db := newTestDB(t)
	storage := NewCacheStorage(db, common.GetLogger())
	ctx := context.Background()
	now := time.Now()

	entry := &models.CacheEntry{
		Key:       "topics:stocks:beginner",
		Data:      []byte(`{"topics":[]}`),
		CachedAt:  now,
		ExpiresAt: now.Add(24 * time.Hour),
	}
	require.NoError(t, storage.Set(ctx, entry))

	got, err := storage.Get(ctx, "topics:stocks:beginner")
	require.NoError(t, err)
	require.False(t, got.Expired(now.Add(23*time.Hour)))
	require.True(t, got.Expired(now.Add(25*time.Hour)))

	require.NoError(t, storage.Delete(ctx, "topics:stocks:beginner"))
	_, err = storage.Get(ctx, "topics:stocks:beginner")
	require.ErrorIs(t, err, interfaces.ErrNotFound)

	// Delete of a missing key is not an error
	require.NoError(t, storage.Delete(ctx, "never-existed"))
}
