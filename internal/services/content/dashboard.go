package content

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finlearn/internal/common"
	"github.com/ternarybob/finlearn/internal/interfaces"
	"github.com/ternarybob/finlearn/internal/models"
	"github.com/ternarybob/finlearn/internal/services/cache"
	"github.com/ternarybob/finlearn/internal/services/llm"
)

// DashboardEssential is the combined payload for the home dashboard. Failed
// sections carry fallback content and an entry in Errors keyed by section.
type DashboardEssential struct {
	Glossary []models.GlossaryTerm `json:"glossary"`
	Quote    models.Quote          `json:"quote"`
	Streak   *models.Streak        `json:"streak,omitempty"`
	News     []models.NewsItem     `json:"news,omitempty"`
	Errors   map[string]string     `json:"errors,omitempty"`
}

// DashboardService assembles the home dashboard: daily glossary terms, a
// finance quote, the user's streak and a trending news strip, fetched
// concurrently. Glossary and quote live in process-local caches that the
// force-refresh path clears explicitly.
type DashboardService struct {
	llm           interfaces.LLMService
	news          *NewsService
	streaks       interfaces.StreakStorage
	prefs         interfaces.PreferenceStorage
	logger        arbor.ILogger
	glossaryCache *cache.Memory[[]models.GlossaryTerm]
	quoteCache    *cache.Memory[models.Quote]
	now           func() time.Time
}

func NewDashboardService(llmService interfaces.LLMService, news *NewsService, streaks interfaces.StreakStorage, prefs interfaces.PreferenceStorage, logger arbor.ILogger) *DashboardService {
	return &DashboardService{
		llm:           llmService,
		news:          news,
		streaks:       streaks,
		prefs:         prefs,
		logger:        logger,
		glossaryCache: cache.NewMemory[[]models.GlossaryTerm](24 * time.Hour),
		quoteCache:    cache.NewMemory[models.Quote](24 * time.Hour),
		now:           time.Now,
	}
}

// GetEssential assembles the dashboard payload. Each section is fetched
// concurrently; a failed section degrades to fallback content and is noted
// in Errors so the client can retry selectively.
func (s *DashboardService) GetEssential(ctx context.Context, userID string, refresh bool) (*DashboardEssential, error) {
	level, interests := s.userProfile(ctx, userID)

	results := common.GatherMap(ctx, map[string]func(context.Context) (interface{}, error){
		"glossary": func(ctx context.Context) (interface{}, error) {
			return s.GetGlossary(ctx, level, refresh)
		},
		"quote": func(ctx context.Context) (interface{}, error) {
			return s.GetQuote(ctx, refresh)
		},
		"streak": func(ctx context.Context) (interface{}, error) {
			return s.streaks.Get(ctx, userID)
		},
		"news": func(ctx context.Context) (interface{}, error) {
			snapshot, err := s.news.GetTrendingNews(ctx, level, interests, 3, false)
			if err != nil {
				return nil, err
			}
			return snapshot.Items, nil
		},
	})

	payload := &DashboardEssential{
		Glossary: llm.FallbackGlossary(),
		Quote:    llm.FallbackQuote(),
	}
	errs := map[string]string{}

	if result := results["glossary"]; result.Err == nil {
		payload.Glossary = result.Value.([]models.GlossaryTerm)
	} else {
		errs["glossary"] = result.Err.Error()
	}
	if result := results["quote"]; result.Err == nil {
		payload.Quote = result.Value.(models.Quote)
	} else {
		errs["quote"] = result.Err.Error()
	}
	if result := results["streak"]; result.Err == nil {
		payload.Streak = result.Value.(*models.Streak)
	} else {
		errs["streak"] = result.Err.Error()
	}
	if result := results["news"]; result.Err == nil {
		payload.News = result.Value.([]models.NewsItem)
	} else {
		errs["news"] = result.Err.Error()
	}

	if len(errs) > 0 {
		payload.Errors = errs
		s.logger.Warn().
			Str("user_id", userID).
			Int("failed_sections", len(errs)).
			Msg("Dashboard assembled with degraded sections")
	}
	return payload, nil
}

// GetGlossary returns three glossary terms for the level, from the daily
// cache unless refreshing. Always returns exactly three terms.
func (s *DashboardService) GetGlossary(ctx context.Context, level string, refresh bool) ([]models.GlossaryTerm, error) {
	cacheKey := "glossary:" + level
	if !refresh {
		if terms, ok := s.glossaryCache.Get(cacheKey); ok {
			return terms, nil
		}
	}

	raw, err := s.llm.Generate(ctx, &interfaces.GenerationRequest{
		System: "You are a financial education expert building a glossary.",
		Prompt: fmt.Sprintf("Pick 3 financial terms worth learning today for a %s-level learner. Define each with a concrete example.", level),
		Schema: llm.GlossarySchema(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("level", level).Msg("Glossary generation failed, serving fallback terms")
		return llm.FallbackGlossary(), nil
	}

	var parsed struct {
		Terms []models.GlossaryTerm `json:"terms"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || len(parsed.Terms) < 3 {
		s.logger.Warn().Err(err).Str("level", level).Msg("Glossary response unusable, serving fallback terms")
		return llm.FallbackGlossary(), nil
	}

	terms := parsed.Terms[:3]
	s.glossaryCache.Set(cacheKey, terms)
	return terms, nil
}

// GetQuote returns the daily finance quote.
func (s *DashboardService) GetQuote(ctx context.Context, refresh bool) (models.Quote, error) {
	if !refresh {
		if quote, ok := s.quoteCache.Get("quote"); ok {
			return quote, nil
		}
	}

	raw, err := s.llm.Generate(ctx, &interfaces.GenerationRequest{
		System: "You are a financial education expert.",
		Prompt: "Share one genuine, attributed quote about investing or personal finance.",
		Schema: llm.QuoteSchema(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Quote generation failed, serving fallback quote")
		return llm.FallbackQuote(), nil
	}

	var quote models.Quote
	if err := json.Unmarshal([]byte(raw), &quote); err != nil || quote.Text == "" {
		s.logger.Warn().Err(err).Msg("Quote response unusable, serving fallback quote")
		return llm.FallbackQuote(), nil
	}

	s.quoteCache.Set("quote", quote)
	return quote, nil
}

// ClearDailyCaches drops the in-process glossary and quote caches. Used by
// the explicit dashboard force-refresh path.
func (s *DashboardService) ClearDailyCaches() {
	s.glossaryCache.Clear()
	s.quoteCache.Clear()
}

// userProfile resolves the level and interest list used to personalize the
// dashboard, defaulting to beginner with no interests for unknown users.
func (s *DashboardService) userProfile(ctx context.Context, userID string) (string, []string) {
	selections, err := s.prefs.GetCategories(ctx, userID)
	if err != nil {
		return string(models.LevelBeginner), nil
	}
	level := string(models.LevelBeginner)
	if len(selections.Selections) > 0 {
		level = string(selections.Selections[0].Level)
	}
	return level, selections.Categories()
}
