package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finlearn/internal/common"
	"github.com/ternarybob/finlearn/internal/interfaces"
	"github.com/ternarybob/finlearn/internal/models"
	"github.com/ternarybob/finlearn/internal/services/cache"
	"github.com/ternarybob/finlearn/internal/services/llm"
)

// TopicService generates and caches daily learning topics per category and
// expertise level. Topic lists persist in the document cache so restarts
// don't trigger regeneration; a per-topic index document allows lookup by
// topic id without scanning category lists.
type TopicService struct {
	llm        interfaces.LLMService
	store      *cache.Store
	prefs      interfaces.PreferenceStorage
	logger     arbor.ILogger
	topicsTTL  time.Duration
	prefsCache *cache.Memory[*models.SelectedCategories]
	topicCache *cache.Memory[*models.Topic]
	now        func() time.Time
}

// maxTopicsTTL is the hard ceiling on topic list reuse. The staleness rules
// refresh earlier; nothing extends reuse past this.
const maxTopicsTTL = 72 * time.Hour

// TopicOptions carries the cache TTLs for topic data.
type TopicOptions struct {
	TopicsTTL      time.Duration // stored list TTL, clamped to maxTopicsTTL
	PreferencesTTL time.Duration
	TopicByIDTTL   time.Duration
}

func NewTopicService(llmService interfaces.LLMService, store *cache.Store, prefs interfaces.PreferenceStorage, logger arbor.ILogger, opts TopicOptions) *TopicService {
	if opts.TopicsTTL <= 0 || opts.TopicsTTL > maxTopicsTTL {
		opts.TopicsTTL = maxTopicsTTL
	}
	if opts.PreferencesTTL <= 0 {
		opts.PreferencesTTL = 5 * time.Minute
	}
	if opts.TopicByIDTTL <= 0 {
		opts.TopicByIDTTL = 30 * time.Minute
	}
	return &TopicService{
		llm:        llmService,
		store:      store,
		prefs:      prefs,
		logger:     logger,
		topicsTTL:  opts.TopicsTTL,
		prefsCache: cache.NewMemory[*models.SelectedCategories](opts.PreferencesTTL),
		topicCache: cache.NewMemory[*models.Topic](opts.TopicByIDTTL),
		now:        time.Now,
	}
}

func topicsKey(category, level string) string {
	return fmt.Sprintf("topics:%s:%s", strings.ToLower(category), level)
}

func topicIndexKey(topicID string) string {
	return "topic_index:" + topicID
}

// GetRecommendedTopics returns topic lists for the user's selected
// categories, or for one category when specified. Lists for multiple
// categories are generated concurrently.
func (s *TopicService) GetRecommendedTopics(ctx context.Context, userID, category string, refresh bool) ([]*models.TopicList, error) {
	selections, err := s.userSelections(ctx, userID)
	if err != nil {
		return nil, err
	}

	wanted := make([]models.CategorySelection, 0, len(selections.Selections))
	if category != "" {
		wanted = append(wanted, models.CategorySelection{Category: category, Level: selections.LevelFor(category)})
	} else {
		wanted = selections.Selections
	}
	if len(wanted) == 0 {
		return []*models.TopicList{}, nil
	}

	tasks := make([]func(context.Context) (*models.TopicList, error), 0, len(wanted))
	for _, sel := range wanted {
		sel := sel
		tasks = append(tasks, func(ctx context.Context) (*models.TopicList, error) {
			return s.TopicsForCategory(ctx, sel.Category, string(sel.Level), refresh)
		})
	}

	lists := make([]*models.TopicList, 0, len(wanted))
	for i, result := range common.GatherSlice(ctx, tasks) {
		if result.Err != nil {
			s.logger.Warn().
				Err(result.Err).
				Str("category", wanted[i].Category).
				Msg("Topic generation failed for category")
			continue
		}
		lists = append(lists, result.Value)
	}
	return lists, nil
}

// TopicsForCategory returns the cached topic list for a category, applying
// the market-sensitivity staleness rules before deciding to regenerate.
func (s *TopicService) TopicsForCategory(ctx context.Context, category, level string, refresh bool) (*models.TopicList, error) {
	key := topicsKey(category, level)

	if !refresh {
		var cached models.TopicList
		if found, err := s.store.Get(ctx, key, &cached); err == nil && found {
			if !cache.ShouldRefreshTopics(category, cached.CachedAt, s.now()) {
				return &cached, nil
			}
		}
	}

	list, err := s.generateTopics(ctx, category, level)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("category", category).
			Str("level", level).
			Msg("Topic generation failed, serving fallback topics")
		return &models.TopicList{
			Category: category,
			Level:    level,
			Topics:   llm.FallbackTopics(category, models.NormalizeLevel(level), s.now()),
			CachedAt: s.now(),
		}, nil
	}

	if err := s.store.Set(ctx, key, list, s.topicsTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache topic list")
	}
	for _, topic := range list.Topics {
		ref := models.TopicRef{TopicID: topic.ID, Category: category, Level: level}
		if err := s.store.Set(ctx, topicIndexKey(topic.ID), ref, s.topicsTTL); err != nil {
			s.logger.Warn().Err(err).Str("topic_id", topic.ID).Msg("Failed to index topic")
		}
	}
	return list, nil
}

// GetTopicByID resolves a topic through the index document written at
// generation time.
func (s *TopicService) GetTopicByID(ctx context.Context, topicID string) (*models.Topic, error) {
	if topic, ok := s.topicCache.Get(topicID); ok {
		return topic, nil
	}

	var ref models.TopicRef
	found, err := s.store.Get(ctx, topicIndexKey(topicID), &ref)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, interfaces.ErrNotFound
	}

	var list models.TopicList
	found, err = s.store.Get(ctx, topicsKey(ref.Category, ref.Level), &list)
	if err != nil {
		return nil, err
	}
	if found {
		for i := range list.Topics {
			if list.Topics[i].ID == topicID {
				s.topicCache.Set(topicID, &list.Topics[i])
				return &list.Topics[i], nil
			}
		}
	}
	return nil, interfaces.ErrNotFound
}

func (s *TopicService) generateTopics(ctx context.Context, category, level string) (*models.TopicList, error) {
	newsContext, err := s.llm.Generate(ctx, &interfaces.GenerationRequest{
		System: "You are a financial news analyst.",
		Prompt: fmt.Sprintf("Briefly list the 3 most significant current news developments in %s. One line each.", category),
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("category", category).Msg("News context fetch failed, generating topics without it")
		newsContext = ""
	}

	prompt := fmt.Sprintf("Generate 5 learning topics about %s for a %s-level learner.", category, level)
	if newsContext != "" {
		prompt += fmt.Sprintf(" Where relevant, tie topics to these current developments:\n%s", newsContext)
	}

	raw, err := s.llm.Generate(ctx, &interfaces.GenerationRequest{
		System: "You are a financial education expert creating a personalized curriculum.",
		Prompt: prompt,
		Schema: llm.TopicListSchema(),
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Topics []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			NewsContext string `json:"news_context"`
		} `json:"topics"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse topics response: %w", err)
	}
	if len(parsed.Topics) == 0 {
		return nil, common.ErrEmptyResult
	}

	now := s.now()
	topics := make([]models.Topic, 0, len(parsed.Topics))
	for _, t := range parsed.Topics {
		topics = append(topics, models.Topic{
			ID:          common.NewID(),
			Category:    category,
			Title:       t.Title,
			Description: t.Description,
			Level:       models.NormalizeLevel(level),
			NewsContext: t.NewsContext,
			GeneratedAt: now,
		})
	}

	return &models.TopicList{
		Category: category,
		Level:    level,
		Topics:   topics,
		CachedAt: now,
	}, nil
}

// userSelections reads the user's category selections through a short
// memory cache so hot request paths skip the document store.
func (s *TopicService) userSelections(ctx context.Context, userID string) (*models.SelectedCategories, error) {
	if sel, ok := s.prefsCache.Get(userID); ok {
		return sel, nil
	}
	sel, err := s.prefs.GetCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.prefsCache.Set(userID, sel)
	return sel, nil
}

// InvalidateUserSelections drops the memory-cached selections after a
// preferences write so the next read sees the new state.
func (s *TopicService) InvalidateUserSelections(userID string) {
	s.prefsCache.Invalidate(userID)
}
