package cache

import (
	"testing"
	"time"
)

// Helper to create a time easily
func mustTime(t *testing.T, layout, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(layout, value)
	if err != nil {
		t.Fatalf("failed to parse time %q: %v", value, err)
	}
	return parsed
}

func TestShouldRefreshTopics(t *testing.T) {
	// 2025-01-08 is a Wednesday, 2025-01-11 a Saturday
	tests := []struct {
		name     string
		category string
		cachedAt string
		now      string
		want     bool
	}{
		{"no cache", "stocks", "", "2025-01-08 12:00", true},
		{"market sensitive fresh same day", "stocks", "2025-01-08 06:00", "2025-01-08 12:00", false},
		{"market sensitive stale after one day on weekday", "stocks", "2025-01-07 06:00", "2025-01-08 12:00", true},
		{"market sensitive held over weekend", "stocks", "2025-01-10 06:00", "2025-01-11 12:00", false},
		{"crypto stale after one day on weekday", "cryptocurrency", "2025-01-07 06:00", "2025-01-08 12:00", true},
		{"forex stale after one day on weekday", "forex", "2025-01-07 06:00", "2025-01-08 12:00", true},
		{"commodities stale after one day on weekday", "commodities", "2025-01-07 06:00", "2025-01-08 12:00", true},
		{"general category fresh within two days", "personal_finance", "2025-01-07 06:00", "2025-01-08 12:00", false},
		{"general category stale after two days", "personal_finance", "2025-01-06 06:00", "2025-01-08 12:00", true},
		{"hard ceiling on weekend for market category", "stocks", "2025-01-08 06:00", "2025-01-12 12:00", true},
		{"hard ceiling for general category", "budgeting", "2025-01-05 06:00", "2025-01-08 12:00", true},
		{"general category held over weekend within two days", "budgeting", "2025-01-10 06:00", "2025-01-11 12:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cachedAt time.Time
			if tt.cachedAt != "" {
				cachedAt = mustTime(t, "2006-01-02 15:04", tt.cachedAt)
			}
			now := mustTime(t, "2006-01-02 15:04", tt.now)

			got := ShouldRefreshTopics(tt.category, cachedAt, now)
			if got != tt.want {
				t.Errorf("ShouldRefreshTopics(%q, %s, %s) = %v, want %v",
					tt.category, tt.cachedAt, tt.now, got, tt.want)
			}
		})
	}
}

func TestIsMarketSensitive(t *testing.T) {
	for _, category := range []string{"stocks", "cryptocurrency", "forex", "commodities"} {
		if !IsMarketSensitive(category) {
			t.Errorf("IsMarketSensitive(%q) = false, want true", category)
		}
	}
	for _, category := range []string{"personal_finance", "budgeting", "retirement", ""} {
		if IsMarketSensitive(category) {
			t.Errorf("IsMarketSensitive(%q) = true, want false", category)
		}
	}
}

func TestSummaryIsFresh(t *testing.T) {
	base := mustTime(t, "2006-01-02 15:04", "2025-01-08 12:00")
	ttl := 4 * time.Hour

	tests := []struct {
		name          string
		cachedAt      time.Time
		lastReadAt    time.Time
		lastTooltipAt time.Time
		now           time.Time
		want          bool
	}{
		{"no cache", time.Time{}, time.Time{}, time.Time{}, base, false},
		{"fresh no activity", base, base.Add(-time.Hour), base.Add(-time.Hour), base.Add(2 * time.Hour), true},
		{"ttl elapsed", base, time.Time{}, time.Time{}, base.Add(5 * time.Hour), false},
		{"read after caching invalidates", base, base.Add(time.Hour), time.Time{}, base.Add(2 * time.Hour), false},
		{"tooltip after caching invalidates", base, time.Time{}, base.Add(time.Minute), base.Add(2 * time.Hour), false},
		{"activity before caching is fine", base, base.Add(-time.Minute), base.Add(-time.Minute), base.Add(time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SummaryIsFresh(tt.cachedAt, tt.lastReadAt, tt.lastTooltipAt, tt.now, ttl)
			if got != tt.want {
				t.Errorf("SummaryIsFresh() = %v, want %v", got, tt.want)
			}
		})
	}
}
