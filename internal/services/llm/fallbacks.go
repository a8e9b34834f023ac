package llm

import (
	"fmt"
	"time"

	"github.com/ternarybob/finlearn/internal/common"
	"github.com/ternarybob/finlearn/internal/models"
)

// Fallback payloads served when a provider fails or returns unparseable
// output. Every generator endpoint returns a structurally valid payload of
// the expected shape instead of surfacing a 500; fallback payloads are
// flagged so clients can render them differently and callers skip caching
// them.

var fallbackTopicTitles = []string{
	"stocks",
	"bonds",
	"cryptocurrency",
	"personal finance",
	"market trends",
}

// FallbackGlossary returns exactly three placeholder glossary terms.
func FallbackGlossary() []models.GlossaryTerm {
	return []models.GlossaryTerm{
		{
			Term:       "Diversification",
			Definition: "Spreading investments across different assets to reduce risk.",
			Example:    "Holding a mix of stocks, bonds, and cash instead of a single stock.",
		},
		{
			Term:       "Compound Interest",
			Definition: "Interest earned on both the original amount and previously earned interest.",
			Example:    "Reinvested savings-account interest grows faster each year.",
		},
		{
			Term:       "Liquidity",
			Definition: "How quickly an asset can be converted to cash without losing value.",
			Example:    "A savings account is more liquid than a house.",
		},
	}
}

// FallbackQuote returns the default finance quote.
func FallbackQuote() models.Quote {
	return models.Quote{
		Text:   "The best investment you can make is in yourself.",
		Author: "Warren Buffett",
	}
}

// FallbackTopics returns placeholder topics for a category when generation
// fails entirely.
func FallbackTopics(category string, level models.ExpertiseLevel, now time.Time) []models.Topic {
	topics := make([]models.Topic, 0, len(fallbackTopicTitles))
	for _, title := range fallbackTopicTitles {
		topics = append(topics, models.Topic{
			ID:          common.NewID(),
			Category:    category,
			Title:       title,
			Description: fmt.Sprintf("An introduction to %s.", title),
			Level:       level,
			GeneratedAt: now,
		})
	}
	return topics
}

// FallbackArticle returns a placeholder article for a topic.
func FallbackArticle(topicID, title string, level models.ExpertiseLevel, now time.Time) *models.Article {
	if title == "" {
		title = "This Topic"
	}
	return &models.Article{
		TopicID: topicID,
		Title:   fmt.Sprintf("Unable to Load: %s", title),
		Content: "We couldn't generate this article right now. Please try again in a few minutes.\n\n" +
			"In the meantime, remember that consistent learning beats cramming: even a few minutes a day " +
			"builds durable financial knowledge.",
		Level: level,
		TooltipWords: map[string]string{
			"portfolio": "The collection of investments an individual or institution holds.",
		},
		KeyTakeaways:       []string{"Content generation is temporarily unavailable."},
		ReadingTimeMinutes: 1,
		Fallback:           true,
		GeneratedAt:        now,
	}
}

// PadTrendingNews tops up a trending news list to the requested length with
// placeholder items. Items beyond the limit are trimmed.
func PadTrendingNews(items []models.NewsItem, limit int, now time.Time) []models.NewsItem {
	if limit <= 0 {
		return items
	}
	if len(items) > limit {
		return items[:limit]
	}
	for i := len(items); i < limit; i++ {
		topic := fallbackTopicTitles[i%len(fallbackTopicTitles)]
		items = append(items, models.NewsItem{
			ID:          common.NewID(),
			Title:       fmt.Sprintf("What to know about %s today", topic),
			Summary:     fmt.Sprintf("Fresh coverage of %s is temporarily unavailable. Check back soon for current stories.", topic),
			Topic:       topic,
			Fallback:    true,
			PublishedAt: now,
		})
	}
	return items
}
