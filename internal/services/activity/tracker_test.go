package activity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/finlearn/internal/common"
	"github.com/ternarybob/finlearn/internal/models"
	"github.com/ternarybob/finlearn/internal/storage/badger"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	logger := common.GetLogger()
	db, err := badger.NewBadgerDB(logger, &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewTracker(
		badger.NewActivityStorage(db, logger),
		badger.NewStreakStorage(db, logger),
		logger,
	)
}

func testTopic(id string) *models.Topic {
	return &models.Topic{
		ID:       id,
		Category: "stocks",
		Title:    "How dividends work",
		Level:    models.LevelBeginner,
	}
}

func TestTrackViewedTopicDedup(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tracker.TrackViewedTopic(ctx, "user-1", testTopic("topic-1")))
	require.NoError(t, tracker.TrackViewedTopic(ctx, "user-1", testTopic("topic-1")))
	require.NoError(t, tracker.TrackViewedTopic(ctx, "user-1", testTopic("topic-1")))

	streak, err := tracker.GetStreak(ctx, "user-1")
	require.NoError(t, err)
	// Repeat views of the same topic within the window count once
	require.Equal(t, 1, streak.TotalArticlesRead)
	require.Equal(t, 1, streak.CurrentStreak)

	// A different topic is a genuine new view
	require.NoError(t, tracker.TrackViewedTopic(ctx, "user-1", testTopic("topic-2")))
	streak, err = tracker.GetStreak(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, 2, streak.TotalArticlesRead)
}

func TestTrackViewedTopicOutsideWindowAppends(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	current := time.Now()
	tracker.now = func() time.Time { return current }

	require.NoError(t, tracker.TrackViewedTopic(ctx, "user-1", testTopic("topic-1")))

	current = current.Add(25 * time.Hour)
	require.NoError(t, tracker.TrackViewedTopic(ctx, "user-1", testTopic("topic-1")))

	streak, err := tracker.GetStreak(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, 2, streak.TotalArticlesRead)
}

func TestTrackViewedTopicNewDayReViewExtendsStreak(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	current := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC) // Monday
	tracker.now = func() time.Time { return current }

	require.NoError(t, tracker.TrackViewedTopic(ctx, "user-1", testTopic("topic-1")))

	// Tuesday morning, 23h later: inside the dedup window but a new day
	current = current.Add(23 * time.Hour)
	require.NoError(t, tracker.TrackViewedTopic(ctx, "user-1", testTopic("topic-1")))

	streak, err := tracker.GetStreak(ctx, "user-1")
	require.NoError(t, err)
	// The refreshed view extends the streak without recounting the article
	require.Equal(t, 2, streak.CurrentStreak)
	require.Equal(t, 1, streak.TotalArticlesRead)

	log, err := tracker.DayLog(ctx, "user-1", "2025-01-07")
	require.NoError(t, err)
	require.Len(t, log.Entries, 1)
}

func TestTopicViewDedupWindowSlides(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	current := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return current }

	require.NoError(t, tracker.TrackViewedTopic(ctx, "user-1", testTopic("topic-1")))

	// Each re-view lands within 24h of the previous touch, so the window
	// keeps sliding even though 46h have passed since the first view
	current = current.Add(23 * time.Hour)
	require.NoError(t, tracker.TrackViewedTopic(ctx, "user-1", testTopic("topic-1")))
	current = current.Add(23 * time.Hour)
	require.NoError(t, tracker.TrackViewedTopic(ctx, "user-1", testTopic("topic-1")))

	streak, err := tracker.GetStreak(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, 1, streak.TotalArticlesRead)
	require.Equal(t, 3, streak.CurrentStreak)
}

func TestStreakTransitions(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	current := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC) // Monday
	tracker.now = func() time.Time { return current }

	// First activity starts the streak
	require.NoError(t, tracker.UpdateStreak(ctx, "user-1", true))
	streak, _ := tracker.GetStreak(ctx, "user-1")
	require.Equal(t, 1, streak.CurrentStreak)

	// Same day is a no-op
	require.NoError(t, tracker.UpdateStreak(ctx, "user-1", false))
	streak, _ = tracker.GetStreak(ctx, "user-1")
	require.Equal(t, 1, streak.CurrentStreak)

	// Next day extends
	current = current.AddDate(0, 0, 1)
	require.NoError(t, tracker.UpdateStreak(ctx, "user-1", true))
	streak, _ = tracker.GetStreak(ctx, "user-1")
	require.Equal(t, 2, streak.CurrentStreak)
	require.Equal(t, 2, streak.LongestStreak)

	// A gap resets to one but the longest survives
	current = current.AddDate(0, 0, 3)
	require.NoError(t, tracker.UpdateStreak(ctx, "user-1", true))
	streak, _ = tracker.GetStreak(ctx, "user-1")
	require.Equal(t, 1, streak.CurrentStreak)
	require.Equal(t, 2, streak.LongestStreak)
	require.Equal(t, 3, streak.TotalArticlesRead)
}

func TestTooltipViewDoesNotDriveStreak(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tracker.LogTooltipView(ctx, "user-1", "dividend", "A payment to shareholders", "topic-1"))
	require.NoError(t, tracker.LogTooltipView(ctx, "user-1", "dividend", "A payment to shareholders", "topic-1"))

	streak, err := tracker.GetStreak(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, 0, streak.CurrentStreak)
	require.Equal(t, 0, streak.TotalArticlesRead)

	// But tooltip activity is visible to summary invalidation
	ts, err := tracker.activity.GetTimestamps(ctx, "user-1")
	require.NoError(t, err)
	require.False(t, ts.LastTooltipAt.IsZero())
	require.True(t, ts.LastReadAt.IsZero())
}

func TestUpdateStreakConcurrent(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tracker.UpdateStreak(ctx, "user-1", true)
		}()
	}
	wg.Wait()

	streak, err := tracker.GetStreak(ctx, "user-1")
	require.NoError(t, err)
	// Ten same-day updates leave the streak at one with every article counted
	require.Equal(t, 1, streak.CurrentStreak)
	require.Equal(t, 10, streak.TotalArticlesRead)
}

func TestDayLog(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	current := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return current }

	require.NoError(t, tracker.TrackViewedTopic(ctx, "user-1", testTopic("topic-1")))
	require.NoError(t, tracker.LogTooltipView(ctx, "user-1", "bond", "A loan to a company or government", ""))

	current = current.AddDate(0, 0, 1)
	require.NoError(t, tracker.TrackViewedTopic(ctx, "user-1", testTopic("topic-2")))

	log, err := tracker.DayLog(ctx, "user-1", "2025-01-06")
	require.NoError(t, err)
	require.Len(t, log.Entries, 2)
}
