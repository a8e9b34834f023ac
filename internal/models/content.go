package models

import "time"

// ExpertiseLevel is the user's self-declared familiarity with a category.
type ExpertiseLevel string

const (
	LevelBeginner     ExpertiseLevel = "beginner"
	LevelIntermediate ExpertiseLevel = "intermediate"
	LevelAdvanced     ExpertiseLevel = "advanced"
)

// ValidLevel reports whether the given string is a known expertise level.
// Unknown values are treated as beginner by callers rather than rejected.
func ValidLevel(s string) bool {
	switch ExpertiseLevel(s) {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// NormalizeLevel maps arbitrary input to a valid expertise level,
// defaulting to beginner.
func NormalizeLevel(s string) ExpertiseLevel {
	if ValidLevel(s) {
		return ExpertiseLevel(s)
	}
	return LevelBeginner
}

// Topic is a single recommended learning topic for a category and level.
type Topic struct {
	ID          string         `json:"id"`
	Category    string         `json:"category"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Level       ExpertiseLevel `json:"expertise_level"`
	NewsContext string         `json:"news_context,omitempty"` // Headline that motivated the topic
	GeneratedAt time.Time      `json:"generated_at"`
}

// TopicList is the cached set of topics for one category and level.
type TopicList struct {
	Category string    `json:"category"`
	Level    string    `json:"expertise_level"`
	Topics   []Topic   `json:"topics"`
	CachedAt time.Time `json:"cached_at"`
}

// TopicRef locates a cached topic by its generated ID without scanning
// every category list.
type TopicRef struct {
	TopicID  string `json:"topic_id"`
	Category string `json:"category"`
	Level    string `json:"expertise_level"`
}

// Article is a generated educational article for a topic at a given level.
type Article struct {
	TopicID            string            `json:"topic_id"`
	Title              string            `json:"title"`
	Content            string            `json:"content"` // Markdown
	Level              ExpertiseLevel    `json:"expertise_level"`
	TooltipWords       map[string]string `json:"tooltip_words"` // term -> plain-language definition
	KeyTakeaways       []string          `json:"key_takeaways,omitempty"`
	ReadingTimeMinutes int               `json:"reading_time_minutes"`
	Fallback           bool              `json:"fallback,omitempty"` // True when generation failed and a placeholder was served
	GeneratedAt        time.Time         `json:"generated_at"`
}

// GlossaryTerm is one entry in the daily glossary.
type GlossaryTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Example    string `json:"example,omitempty"`
}

// Quote is the daily motivational quote.
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// NewsItem is one trending financial news entry.
type NewsItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Topic       string    `json:"topic"`
	Source      string    `json:"source,omitempty"`
	URL         string    `json:"url,omitempty"`
	Fallback    bool      `json:"fallback,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// TrendingNews is the whole-snapshot trending news cache for one level.
// The snapshot is replaced wholesale on refresh.
type TrendingNews struct {
	Level    string     `json:"expertise_level"`
	Items    []NewsItem `json:"items"`
	CachedAt time.Time  `json:"cached_at"`
}

// NewsArticle is a full article generated from a single trending news item.
type NewsArticle struct {
	NewsID             string            `json:"news_id"`
	Title              string            `json:"title"`
	Content            string            `json:"content"`
	Level              ExpertiseLevel    `json:"expertise_level"`
	TooltipWords       map[string]string `json:"tooltip_words"`
	ReadingTimeMinutes int               `json:"reading_time_minutes"`
	Fallback           bool              `json:"fallback,omitempty"`
	GeneratedAt        time.Time         `json:"generated_at"`
}
