package content

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finlearn/internal/interfaces"
	"github.com/ternarybob/finlearn/internal/models"
	"github.com/ternarybob/finlearn/internal/services/cache"
	"github.com/ternarybob/finlearn/internal/services/llm"
)

const summaryDateLayout = "2006-01-02"

// SummaryService builds periodic recaps of a user's learning activity with
// a short narrative from the LLM. Summaries cache for a few hours but are
// invalidated early when the user has been active since the summary was
// generated.
type SummaryService struct {
	llm      interfaces.LLMService
	store    *cache.Store
	activity interfaces.ActivityStorage
	streaks  interfaces.StreakStorage
	logger   arbor.ILogger
	ttl      time.Duration
	now      func() time.Time
}

func NewSummaryService(llmService interfaces.LLMService, store *cache.Store, activity interfaces.ActivityStorage, streaks interfaces.StreakStorage, logger arbor.ILogger, ttl time.Duration) *SummaryService {
	if ttl <= 0 {
		ttl = 4 * time.Hour
	}
	return &SummaryService{
		llm:      llmService,
		store:    store,
		activity: activity,
		streaks:  streaks,
		logger:   logger,
		ttl:      ttl,
		now:      time.Now,
	}
}

func summaryKey(userID, period, start, end string) string {
	return fmt.Sprintf("summary:%s:%s:%s:%s", userID, period, start, end)
}

// GetUserSummary returns the recap for the period. period is "week",
// "month", or "custom" with explicit start and end dates.
func (s *SummaryService) GetUserSummary(ctx context.Context, userID, period, startDate, endDate string, refresh bool) (*models.UserSummary, error) {
	start, end, err := s.resolveRange(period, startDate, endDate)
	if err != nil {
		return nil, err
	}
	startStr := start.Format(summaryDateLayout)
	endStr := end.Format(summaryDateLayout)
	key := summaryKey(userID, period, startStr, endStr)

	if !refresh {
		if summary := s.cachedSummary(ctx, key, userID); summary != nil {
			return summary, nil
		}
	}

	counts, err := s.activity.CountByTypeSince(ctx, userID, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to count activity: %w", err)
	}
	streak, err := s.streaks.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load streak: %w", err)
	}

	summary := &models.UserSummary{
		UserID:         userID,
		Period:         period,
		StartDate:      startStr,
		EndDate:        endStr,
		ArticlesRead:   counts[models.ActivityTopicRead] + counts[models.ActivityTopicView],
		TopicsViewed:   counts[models.ActivityTopicView],
		TooltipsViewed: counts[models.ActivityTooltipView],
		CurrentStreak:  streak.CurrentStreak,
		LongestStreak:  streak.LongestStreak,
		GeneratedAt:    s.now(),
	}

	if err := s.generateNarrative(ctx, summary); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("Summary narrative generation failed, serving counts only")
		summary.Fallback = true
		return summary, nil
	}

	if err := s.store.Set(ctx, key, summary, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache user summary")
	}
	return summary, nil
}

// cachedSummary returns the cached recap only while it is both within TTL
// and newer than the user's latest activity.
func (s *SummaryService) cachedSummary(ctx context.Context, key, userID string) *models.UserSummary {
	cachedAt, found, err := s.store.CachedAt(ctx, key)
	if err != nil || !found {
		return nil
	}

	timestamps, err := s.activity.GetTimestamps(ctx, userID)
	if err != nil {
		return nil
	}
	if !cache.SummaryIsFresh(cachedAt, timestamps.LastReadAt, timestamps.LastTooltipAt, s.now(), s.ttl) {
		return nil
	}

	var cached models.UserSummary
	if found, err := s.store.Get(ctx, key, &cached); err != nil || !found {
		return nil
	}
	return &cached
}

func (s *SummaryService) generateNarrative(ctx context.Context, summary *models.UserSummary) error {
	raw, err := s.llm.Generate(ctx, &interfaces.GenerationRequest{
		System: "You are an encouraging financial literacy coach.",
		Prompt: fmt.Sprintf("Write a short recap for a learner who read %d articles, viewed %d topics and %d tooltips between %s and %s. Current streak: %d days (longest %d).",
			summary.ArticlesRead, summary.TopicsViewed, summary.TooltipsViewed,
			summary.StartDate, summary.EndDate, summary.CurrentStreak, summary.LongestStreak),
		Schema: llm.SummarySchema(),
	})
	if err != nil {
		return err
	}

	var parsed struct {
		Summary       string `json:"summary"`
		Suggestion    string `json:"suggestion"`
		Encouragement string `json:"encouragement"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return fmt.Errorf("failed to parse summary response: %w", err)
	}
	if parsed.Summary == "" {
		return fmt.Errorf("summary response missing narrative")
	}

	narrative := parsed.Summary
	if parsed.Suggestion != "" {
		narrative += "\n\nNext up: " + parsed.Suggestion
	}
	if parsed.Encouragement != "" {
		narrative += "\n\n" + parsed.Encouragement
	}
	summary.Narrative = narrative
	return nil
}

func (s *SummaryService) resolveRange(period, startDate, endDate string) (time.Time, time.Time, error) {
	today := s.now().Truncate(24 * time.Hour)
	switch period {
	case "week", "":
		return today.AddDate(0, 0, -7), today, nil
	case "month":
		return today.AddDate(0, -1, 0), today, nil
	case "custom":
		start, err := time.Parse(summaryDateLayout, startDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q: %w", startDate, err)
		}
		end, err := time.Parse(summaryDateLayout, endDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q: %w", endDate, err)
		}
		if end.Before(start) {
			return time.Time{}, time.Time{}, fmt.Errorf("end_date precedes start_date")
		}
		return start, end, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("invalid period %q: must be week, month or custom", period)
	}
}
