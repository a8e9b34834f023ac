package llm

import (
	"testing"
	"time"

	"github.com/ternarybob/finlearn/internal/models"
)

func TestFallbackGlossaryAlwaysThreeTerms(t *testing.T) {
	terms := FallbackGlossary()
	if len(terms) != 3 {
		t.Fatalf("expected 3 glossary terms, got %d", len(terms))
	}
	for i, term := range terms {
		if term.Term == "" || term.Definition == "" {
			t.Errorf("term %d missing required fields: %+v", i, term)
		}
	}
}

func TestFallbackQuote(t *testing.T) {
	quote := FallbackQuote()
	if quote.Author != "Warren Buffett" {
		t.Errorf("unexpected author %q", quote.Author)
	}
	if quote.Text == "" {
		t.Error("quote text is empty")
	}
}

func TestFallbackArticleFlagged(t *testing.T) {
	article := FallbackArticle("topic-1", "Index Funds", models.LevelBeginner, time.Now())
	if !article.Fallback {
		t.Error("fallback article not flagged")
	}
	if article.Content == "" || len(article.TooltipWords) == 0 {
		t.Error("fallback article missing content or tooltip words")
	}
	if article.ReadingTimeMinutes < 1 {
		t.Errorf("reading time %d, want >= 1", article.ReadingTimeMinutes)
	}
}

func TestPadTrendingNews(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		existing int
		limit    int
		wantLen  int
		wantPads int
	}{
		{"empty padded to limit", 0, 5, 5, 5},
		{"partial padded", 3, 5, 5, 2},
		{"full untouched", 5, 5, 5, 0},
		{"over limit trimmed", 7, 5, 5, 0},
		{"zero limit passthrough", 2, 0, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]models.NewsItem, tt.existing)
			for i := range items {
				items[i] = models.NewsItem{Title: "real", PublishedAt: now}
			}

			got := PadTrendingNews(items, tt.limit, now)
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}

			pads := 0
			for _, item := range got {
				if item.Fallback {
					pads++
					if item.Title == "" || item.Summary == "" || item.Topic == "" {
						t.Errorf("padded item missing fields: %+v", item)
					}
				}
			}
			if pads != tt.wantPads {
				t.Errorf("fallback items = %d, want %d", pads, tt.wantPads)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose prefix", "Here is the result: {\"a\":1}", `{"a":1}`},
		{"array", "[1,2,3] trailing", `[1,2,3]`},
		{"no json", "nothing here", "nothing here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
