package models

import "time"

// Activity entry types recorded in the learning activity log.
const (
	ActivityTopicView   = "topic_view"
	ActivityTopicRead   = "topic_read"
	ActivityTooltipView = "tooltip_view"
	ActivityNewsView    = "news_view"
)

// ActivityEntry is one row in the append-mostly user learning activity log.
// Topic views within a 24 hour window update the existing entry in place
// instead of appending.
type ActivityEntry struct {
	ID        string    `json:"id" badgerhold:"key"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	TopicID   string    `json:"topic_id,omitempty"`
	Category  string    `json:"category,omitempty"`
	Title     string    `json:"title,omitempty"`
	Level     string    `json:"expertise_level,omitempty"`
	Word      string    `json:"word,omitempty"`    // Tooltip term, for tooltip views
	Tooltip   string    `json:"tooltip,omitempty"` // Tooltip definition shown
	Date      string    `json:"date"`              // "2006-01-02", local day of the activity
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Streak tracks a user's consecutive-day learning streak.
type Streak struct {
	UserID            string    `json:"user_id" badgerhold:"key"`
	CurrentStreak     int       `json:"current_streak"`
	LongestStreak     int       `json:"longest_streak"`
	LastActiveDate    string    `json:"last_active_date"` // "2006-01-02"
	TotalArticlesRead int       `json:"total_articles_read"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ActivityTimestamps records the most recent read and tooltip activity per
// user. Summary caches compare against these to invalidate early when the
// user has been active since the summary was generated.
type ActivityTimestamps struct {
	UserID        string    `json:"user_id" badgerhold:"key"`
	LastReadAt    time.Time `json:"last_read_at"`
	LastTooltipAt time.Time `json:"last_tooltip_at"`
}

// UserSummary is a periodic recap of a user's learning activity.
type UserSummary struct {
	UserID         string    `json:"user_id"`
	Period         string    `json:"period"` // "week", "month", or "custom"
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	ArticlesRead   int       `json:"articles_read"`
	TopicsViewed   int       `json:"topics_viewed"`
	TooltipsViewed int       `json:"tooltips_viewed"`
	CurrentStreak  int       `json:"current_streak"`
	LongestStreak  int       `json:"longest_streak"`
	TopCategories  []string  `json:"top_categories,omitempty"`
	Narrative      string    `json:"narrative,omitempty"` // Generated recap text
	Fallback       bool      `json:"fallback,omitempty"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// DayLog is the reading activity for a single day.
type DayLog struct {
	Date    string          `json:"date"`
	Entries []ActivityEntry `json:"entries"`
}
