// Package activity tracks user learning activity and maintains the
// consecutive-day streak.
package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finlearn/internal/common"
	"github.com/ternarybob/finlearn/internal/interfaces"
	"github.com/ternarybob/finlearn/internal/models"
)

const dateLayout = "2006-01-02"

// topicViewDedupWindow is how long a repeat view of the same topic counts as
// the same engagement. Repeat views update the existing log entry in place;
// the window slides with each refresh.
const topicViewDedupWindow = 24 * time.Hour

// Tracker records learning activity and maintains streaks
type Tracker struct {
	activity interfaces.ActivityStorage
	streaks  interfaces.StreakStorage
	logger   arbor.ILogger
	locks    *userLocks
	now      func() time.Time
}

// NewTracker creates a new activity tracker
func NewTracker(activity interfaces.ActivityStorage, streaks interfaces.StreakStorage, logger arbor.ILogger) *Tracker {
	return &Tracker{
		activity: activity,
		streaks:  streaks,
		logger:   logger,
		locks:    newUserLocks(),
		now:      time.Now,
	}
}

// TrackViewedTopic records that the user viewed a topic. A view of the same
// topic within the dedup window refreshes the existing entry's timestamp
// without appending a row; the first view of a new calendar day still drives
// the streak. A genuinely new view appends, advances the streak and counts
// toward the lifetime article total.
func (t *Tracker) TrackViewedTopic(ctx context.Context, userID string, topic *models.Topic) error {
	now := t.now()

	existing, err := t.activity.FindRecentTopicView(ctx, userID, topic.ID, now.Add(-topicViewDedupWindow))
	if err == nil {
		newDay := existing.Date != now.Format(dateLayout)
		existing.UpdatedAt = now
		existing.Date = now.Format(dateLayout)
		if err := t.activity.Update(ctx, existing); err != nil {
			return fmt.Errorf("failed to refresh topic view: %w", err)
		}
		t.logger.Debug().
			Str("user_id", userID).
			Str("topic_id", topic.ID).
			Msg("Duplicate topic view within window, entry refreshed")
		if newDay {
			if err := t.UpdateStreak(ctx, userID, false); err != nil {
				return err
			}
		}
		return t.touchRead(ctx, userID, now)
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return err
	}

	entry := &models.ActivityEntry{
		ID:        common.NewID(),
		UserID:    userID,
		Type:      models.ActivityTopicView,
		TopicID:   topic.ID,
		Category:  topic.Category,
		Title:     topic.Title,
		Level:     string(topic.Level),
		Date:      now.Format(dateLayout),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.activity.Insert(ctx, entry); err != nil {
		return fmt.Errorf("failed to log topic view: %w", err)
	}

	if err := t.UpdateStreak(ctx, userID, true); err != nil {
		return err
	}
	return t.touchRead(ctx, userID, now)
}

// LogTopicRead records a completed article read. Reads always append and
// always drive the streak.
func (t *Tracker) LogTopicRead(ctx context.Context, userID, topicID, title, level string) error {
	now := t.now()
	entry := &models.ActivityEntry{
		ID:        common.NewID(),
		UserID:    userID,
		Type:      models.ActivityTopicRead,
		TopicID:   topicID,
		Title:     title,
		Level:     level,
		Date:      now.Format(dateLayout),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.activity.Insert(ctx, entry); err != nil {
		return fmt.Errorf("failed to log topic read: %w", err)
	}

	if err := t.UpdateStreak(ctx, userID, true); err != nil {
		return err
	}
	return t.touchRead(ctx, userID, now)
}

// LogTooltipView records that the user opened a glossary tooltip. Tooltip
// views append without dedup and never drive the streak, but they do count
// as activity for summary invalidation.
func (t *Tracker) LogTooltipView(ctx context.Context, userID, word, tooltip, fromTopic string) error {
	now := t.now()
	entry := &models.ActivityEntry{
		ID:        common.NewID(),
		UserID:    userID,
		Type:      models.ActivityTooltipView,
		TopicID:   fromTopic,
		Word:      word,
		Tooltip:   tooltip,
		Date:      now.Format(dateLayout),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.activity.Insert(ctx, entry); err != nil {
		return fmt.Errorf("failed to log tooltip view: %w", err)
	}

	if err := t.activity.TouchTooltip(ctx, userID, now); err != nil {
		t.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to update tooltip timestamp")
	}
	return nil
}

// TrackNewsView records that the user opened a news article and drives the
// streak like a topic view.
func (t *Tracker) TrackNewsView(ctx context.Context, userID, newsID, title string) error {
	now := t.now()
	entry := &models.ActivityEntry{
		ID:        common.NewID(),
		UserID:    userID,
		Type:      models.ActivityNewsView,
		TopicID:   newsID,
		Title:     title,
		Date:      now.Format(dateLayout),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.activity.Insert(ctx, entry); err != nil {
		return fmt.Errorf("failed to log news view: %w", err)
	}

	if err := t.UpdateStreak(ctx, userID, false); err != nil {
		return err
	}
	return t.touchRead(ctx, userID, now)
}

// UpdateStreak advances the user's streak for activity today. The three
// transitions key off the date gap between last activity and today:
// same day is a no-op, yesterday extends, anything older resets to one.
// isArticleView additionally increments the lifetime article counter.
// Updates for one user are serialized.
func (t *Tracker) UpdateStreak(ctx context.Context, userID string, isArticleView bool) error {
	unlock := t.locks.lock(userID)
	defer unlock()

	streak, err := t.streaks.Get(ctx, userID)
	if err != nil {
		return err
	}

	now := t.now()
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)

	switch streak.LastActiveDate {
	case today:
		// Already counted today
	case yesterday:
		streak.CurrentStreak++
		streak.LastActiveDate = today
	default:
		streak.CurrentStreak = 1
		streak.LastActiveDate = today
	}

	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}
	if isArticleView {
		streak.TotalArticlesRead++
	}

	if err := t.streaks.Upsert(ctx, streak); err != nil {
		return err
	}

	t.logger.Debug().
		Str("user_id", userID).
		Int("current", streak.CurrentStreak).
		Int("longest", streak.LongestStreak).
		Msg("Streak updated")
	return nil
}

// GetStreak returns the user's streak document
func (t *Tracker) GetStreak(ctx context.Context, userID string) (*models.Streak, error) {
	return t.streaks.Get(ctx, userID)
}

// DayLog returns the user's activity log for one date ("2006-01-02")
func (t *Tracker) DayLog(ctx context.Context, userID, date string) (*models.DayLog, error) {
	entries, err := t.activity.EntriesForDay(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	return &models.DayLog{Date: date, Entries: entries}, nil
}

func (t *Tracker) touchRead(ctx context.Context, userID string, at time.Time) error {
	if err := t.activity.TouchRead(ctx, userID, at); err != nil {
		t.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to update read timestamp")
	}
	return nil
}
