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

// ArticleService generates full learning articles per (topic, level) pair.
// Articles are expensive to produce, so they persist in the document cache
// for a week unless a refresh is forced.
type ArticleService struct {
	llm    interfaces.LLMService
	store  *cache.Store
	logger arbor.ILogger
	ttl    time.Duration
	now    func() time.Time
}

// StreamEvent is one NDJSON record of the streaming article endpoint.
type StreamEvent struct {
	Type    string          `json:"type"` // "metadata", "status", "article" or "complete"
	Message string          `json:"message,omitempty"`
	Topic   *models.Topic   `json:"topic,omitempty"`
	Article *models.Article `json:"article,omitempty"`
	Cached  bool            `json:"cached,omitempty"`
}

func NewArticleService(llmService interfaces.LLMService, store *cache.Store, logger arbor.ILogger, ttl time.Duration) *ArticleService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &ArticleService{
		llm:    llmService,
		store:  store,
		logger: logger,
		ttl:    ttl,
		now:    time.Now,
	}
}

func articleKey(topicID, level string) string {
	return fmt.Sprintf("article:%s:%s", topicID, level)
}

// GetArticle returns the cached article for the topic at the level,
// generating on miss. Generation failures produce a flagged placeholder
// article rather than an error; placeholders are never cached.
func (s *ArticleService) GetArticle(ctx context.Context, topic *models.Topic, level string, refresh bool) (*models.Article, error) {
	key := articleKey(topic.ID, level)

	if !refresh {
		var cached models.Article
		if found, err := s.store.Get(ctx, key, &cached); err == nil && found {
			return &cached, nil
		}
	}

	article, err := s.generateArticle(ctx, topic, level)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("topic_id", topic.ID).
			Str("level", level).
			Msg("Article generation failed, serving fallback")
		return llm.FallbackArticle(topic.ID, topic.Title, models.NormalizeLevel(level), s.now()), nil
	}

	if err := s.store.Set(ctx, key, article, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache article")
	}
	return article, nil
}

// StreamArticle emits the article generation lifecycle as a series of
// events: metadata for the topic, a status line, the article itself, and a
// completion marker. When the article is already cached the status phase is
// skipped.
func (s *ArticleService) StreamArticle(ctx context.Context, topic *models.Topic, level string, refresh bool, emit func(StreamEvent) error) error {
	if err := emit(StreamEvent{Type: "metadata", Topic: topic}); err != nil {
		return err
	}

	if !refresh {
		var cached models.Article
		if found, err := s.store.Get(ctx, articleKey(topic.ID, level), &cached); err == nil && found {
			if err := emit(StreamEvent{Type: "article", Article: &cached, Cached: true}); err != nil {
				return err
			}
			return emit(StreamEvent{Type: "complete"})
		}
	}

	if err := emit(StreamEvent{Type: "status", Message: "generating article"}); err != nil {
		return err
	}

	article, err := s.GetArticle(ctx, topic, level, refresh)
	if err != nil {
		return err
	}
	if err := emit(StreamEvent{Type: "article", Article: article}); err != nil {
		return err
	}
	return emit(StreamEvent{Type: "complete"})
}

func (s *ArticleService) generateArticle(ctx context.Context, topic *models.Topic, level string) (*models.Article, error) {
	prompt := fmt.Sprintf("Write an educational article about %q for a %s-level learner in the %s category.",
		topic.Title, level, topic.Category)
	if topic.Description != "" {
		prompt += " Topic summary: " + topic.Description
	}
	if topic.NewsContext != "" {
		prompt += " Current context: " + topic.NewsContext
	}
	prompt += " Use markdown. Identify financial terms a learner at this level may not know and define each in tooltip_words."

	raw, err := s.llm.Generate(ctx, &interfaces.GenerationRequest{
		System: "You are a financial education expert who writes clear, engaging learning material.",
		Prompt: prompt,
		Schema: llm.ArticleSchema(),
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
		KeyTakeaways []string `json:"key_takeaways"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse article response: %w", err)
	}
	if parsed.Content == "" {
		return nil, fmt.Errorf("article response missing content")
	}

	tooltips := make(map[string]string, len(parsed.TooltipWords))
	for _, tw := range parsed.TooltipWords {
		if tw.Word != "" {
			tooltips[tw.Word] = tw.Tooltip
		}
	}

	return &models.Article{
		TopicID:            topic.ID,
		Title:              parsed.Title,
		Content:            parsed.Content,
		Level:              models.NormalizeLevel(level),
		TooltipWords:       tooltips,
		KeyTakeaways:       parsed.KeyTakeaways,
		ReadingTimeMinutes: ReadingTimeMinutes(parsed.Content),
		GeneratedAt:        s.now(),
	}, nil
}
