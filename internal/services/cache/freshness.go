package cache

import "time"

// Topic refresh windows. Market-sensitive categories go stale after a single
// day on trading days; everything else holds for two. No topic list survives
// past the hard ceiling regardless of category.
const (
	marketSensitiveMaxAge = 24 * time.Hour
	defaultMaxAge         = 48 * time.Hour
	hardMaxAge            = 72 * time.Hour
)

// marketSensitiveCategories change with market activity and need daily
// refresh while markets are trading.
var marketSensitiveCategories = map[string]bool{
	"stocks":         true,
	"cryptocurrency": true,
	"forex":          true,
	"commodities":    true,
}

// IsMarketSensitive reports whether a category's content tracks market movement
func IsMarketSensitive(category string) bool {
	return marketSensitiveCategories[category]
}

// ShouldRefreshTopics decides whether a cached topic list for the category
// needs regeneration. cachedAt is the zero value when nothing is cached.
// The decision is pure: both the cache time and the current time are inputs.
func ShouldRefreshTopics(category string, cachedAt, now time.Time) bool {
	if cachedAt.IsZero() {
		return true
	}

	age := now.Sub(cachedAt)
	if age > hardMaxAge {
		return true
	}

	if IsMarketSensitive(category) && isWeekday(now) {
		return age > marketSensitiveMaxAge
	}

	return age > defaultMaxAge
}

func isWeekday(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return true
}

// SummaryIsFresh decides whether a cached user summary can be served.
// Activity after the summary was generated invalidates it early, even
// inside the TTL window: the summary describes activity, so new activity
// makes it wrong.
func SummaryIsFresh(cachedAt, lastReadAt, lastTooltipAt, now time.Time, ttl time.Duration) bool {
	if cachedAt.IsZero() {
		return false
	}
	if now.Sub(cachedAt) > ttl {
		return false
	}
	if lastReadAt.After(cachedAt) || lastTooltipAt.After(cachedAt) {
		return false
	}
	return true
}
