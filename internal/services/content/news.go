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

const defaultNewsLimit = 5

// NewsService maintains the trending finance news snapshot per expertise
// level and expands individual items into full educational articles. The
// snapshot is one document per level, replaced wholesale on refresh.
type NewsService struct {
	llm            interfaces.LLMService
	store          *cache.Store
	logger         arbor.ILogger
	trendingTTL    time.Duration
	newsArticleTTL time.Duration
	retryPolicy    *common.RetryPolicy
	now            func() time.Time
}

// NewsOptions carries the cache TTLs for news data.
type NewsOptions struct {
	TrendingTTL    time.Duration
	NewsArticleTTL time.Duration
}

func NewNewsService(llmService interfaces.LLMService, store *cache.Store, logger arbor.ILogger, opts NewsOptions) *NewsService {
	if opts.TrendingTTL <= 0 {
		opts.TrendingTTL = 24 * time.Hour
	}
	if opts.NewsArticleTTL <= 0 {
		opts.NewsArticleTTL = 72 * time.Hour
	}
	retryPolicy := common.NewRetryPolicy()
	retryPolicy.MaxAttempts = 3
	return &NewsService{
		llm:            llmService,
		store:          store,
		logger:         logger,
		trendingTTL:    opts.TrendingTTL,
		newsArticleTTL: opts.NewsArticleTTL,
		retryPolicy:    retryPolicy,
		now:            time.Now,
	}
}

func trendingKey(level string) string {
	return "trending:" + level
}

func newsItemKey(newsID string) string {
	return "news_item:" + newsID
}

func newsArticleKey(newsID, level string) string {
	return fmt.Sprintf("news_article:%s:%s", newsID, level)
}

// GetTrendingNews returns the trending snapshot for a level, always padded
// or trimmed to the requested length. A failed refresh yields an all-fallback
// snapshot rather than an error, and fallback content is never cached.
func (s *NewsService) GetTrendingNews(ctx context.Context, level string, interests []string, limit int, refresh bool) (*models.TrendingNews, error) {
	if limit <= 0 {
		limit = defaultNewsLimit
	}
	key := trendingKey(level)

	if !refresh {
		var cached models.TrendingNews
		if found, err := s.store.Get(ctx, key, &cached); err == nil && found {
			cached.Items = llm.PadTrendingNews(cached.Items, limit, s.now())
			return &cached, nil
		}
	}

	items, err := common.Retry(ctx, s.retryPolicy, s.logger, "trending-news", func(ctx context.Context) ([]models.NewsItem, error) {
		return s.fetchTrendingNews(ctx, level, interests, limit)
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("level", level).Msg("Trending news refresh failed, serving fallback items")
		return &models.TrendingNews{
			Level:    level,
			Items:    llm.PadTrendingNews(nil, limit, s.now()),
			CachedAt: s.now(),
		}, nil
	}

	snapshot := &models.TrendingNews{
		Level:    level,
		Items:    items,
		CachedAt: s.now(),
	}
	if err := s.store.Set(ctx, key, snapshot, s.trendingTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache trending news")
	}
	for _, item := range items {
		if err := s.store.Set(ctx, newsItemKey(item.ID), item, s.newsArticleTTL); err != nil {
			s.logger.Warn().Err(err).Str("news_id", item.ID).Msg("Failed to index news item")
		}
	}

	result := *snapshot
	result.Items = llm.PadTrendingNews(result.Items, limit, s.now())
	return &result, nil
}

// GetNewsArticle expands a trending news item into a full educational
// article for the level. The item must still be indexed; expired items
// return ErrNotFound.
func (s *NewsService) GetNewsArticle(ctx context.Context, newsID, level string, refresh bool) (*models.NewsArticle, error) {
	key := newsArticleKey(newsID, level)

	if !refresh {
		var cached models.NewsArticle
		if found, err := s.store.Get(ctx, key, &cached); err == nil && found {
			return &cached, nil
		}
	}

	var item models.NewsItem
	found, err := s.store.Get(ctx, newsItemKey(newsID), &item)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, interfaces.ErrNotFound
	}

	article, err := s.generateNewsArticle(ctx, &item, level)
	if err != nil {
		s.logger.Warn().Err(err).Str("news_id", newsID).Msg("News article generation failed, serving fallback")
		fallback := llm.FallbackArticle(newsID, item.Title, models.NormalizeLevel(level), s.now())
		return &models.NewsArticle{
			NewsID:             newsID,
			Title:              fallback.Title,
			Content:            fallback.Content,
			Level:              fallback.Level,
			TooltipWords:       fallback.TooltipWords,
			ReadingTimeMinutes: fallback.ReadingTimeMinutes,
			Fallback:           true,
			GeneratedAt:        fallback.GeneratedAt,
		}, nil
	}

	if err := s.store.Set(ctx, key, article, s.newsArticleTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache news article")
	}
	return article, nil
}

func (s *NewsService) fetchTrendingNews(ctx context.Context, level string, interests []string, limit int) ([]models.NewsItem, error) {
	prompt := fmt.Sprintf("List the %d most significant financial news stories right now, summarized for a %s-level learner.", limit, level)
	if len(interests) > 0 {
		prompt += fmt.Sprintf(" Prioritize stories relevant to these interests: %v.", interests)
	}

	raw, err := s.llm.Generate(ctx, &interfaces.GenerationRequest{
		System: "You are a financial news editor who explains markets to learners.",
		Prompt: prompt,
		Schema: llm.TrendingNewsSchema(),
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Items []struct {
			Title   string `json:"title"`
			Summary string `json:"summary"`
			Topic   string `json:"topic"`
			Source  string `json:"source"`
			URL     string `json:"url"`
		} `json:"items"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse trending news response: %w", err)
	}
	if len(parsed.Items) == 0 {
		return nil, common.ErrEmptyResult
	}

	now := s.now()
	items := make([]models.NewsItem, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		items = append(items, models.NewsItem{
			ID:          common.NewID(),
			Title:       item.Title,
			Summary:     item.Summary,
			Topic:       item.Topic,
			Source:      item.Source,
			URL:         item.URL,
			PublishedAt: now,
		})
	}
	return items, nil
}

func (s *NewsService) generateNewsArticle(ctx context.Context, item *models.NewsItem, level string) (*models.NewsArticle, error) {
	prompt := fmt.Sprintf("Write an educational article for a %s-level learner explaining this news story and the financial concepts behind it.\n\nHeadline: %s\nSummary: %s",
		level, item.Title, item.Summary)
	prompt += "\n\nUse markdown. Define unfamiliar financial terms in tooltip_words."

	raw, err := s.llm.Generate(ctx, &interfaces.GenerationRequest{
		System: "You are a financial education expert who turns news into learning material.",
		Prompt: prompt,
		Schema: llm.NewsArticleSchema(),
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Title        string `json:"title"`
		Content      string `json:"content"`
		TooltipWords []struct {
			Word    string `json:"word"`
			Tooltip string `json:"tooltip"`
		} `json:"tooltip_words"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse news article response: %w", err)
	}
	if parsed.Content == "" {
		return nil, fmt.Errorf("news article response missing content")
	}

	tooltips := make(map[string]string, len(parsed.TooltipWords))
	for _, tw := range parsed.TooltipWords {
		if tw.Word != "" {
			tooltips[tw.Word] = tw.Tooltip
		}
	}

	return &models.NewsArticle{
		NewsID:             item.ID,
		Title:              parsed.Title,
		Content:            parsed.Content,
		Level:              models.NormalizeLevel(level),
		TooltipWords:       tooltips,
		ReadingTimeMinutes: ReadingTimeMinutes(parsed.Content),
		GeneratedAt:        s.now(),
	}, nil
}
