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

// ResearchService produces narrative research reports for watchlist assets.
// Supporting data (live quote, related news, similar assets) is gathered
// concurrently; a failed lookup degrades that section instead of failing
// the report.
type ResearchService struct {
	llm        interfaces.LLMService
	marketData interfaces.MarketDataService
	store      *cache.Store
	logger     arbor.ILogger
	ttl        time.Duration
	now        func() time.Time
}

func NewResearchService(llmService interfaces.LLMService, marketData interfaces.MarketDataService, store *cache.Store, logger arbor.ILogger, ttl time.Duration) *ResearchService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ResearchService{
		llm:        llmService,
		marketData: marketData,
		store:      store,
		logger:     logger,
		ttl:        ttl,
		now:        time.Now,
	}
}

func researchKey(symbol, assetType, level string) string {
	return fmt.Sprintf("research:%s:%s:%s", strings.ToUpper(symbol), assetType, level)
}

// GetResearch returns the cached-or-generated research report for a symbol.
// includeComparison and includeNews control the optional sections; a cached
// report is reused regardless of which sections it carries.
func (s *ResearchService) GetResearch(ctx context.Context, symbol, assetType, level string, includeComparison, includeNews, refresh bool) (*models.ResearchReport, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	assetType = models.NormalizeAssetType(assetType)
	key := researchKey(symbol, assetType, level)

	if !refresh {
		var cached models.ResearchReport
		if found, err := s.store.Get(ctx, key, &cached); err == nil && found {
			return &cached, nil
		}
	}

	tasks := map[string]func(context.Context) (interface{}, error){
		"asset": func(ctx context.Context) (interface{}, error) {
			return s.marketData.GetAssetInfo(ctx, symbol, assetType)
		},
	}
	if includeNews {
		tasks["news"] = func(ctx context.Context) (interface{}, error) {
			return s.fetchAssetNews(ctx, symbol, level)
		}
	}
	if includeComparison {
		tasks["similar"] = func(ctx context.Context) (interface{}, error) {
			return s.marketData.GetSimilarAssets(ctx, symbol, assetType)
		}
	}

	gathered := common.GatherMap(ctx, tasks)

	report := &models.ResearchReport{
		Symbol:      symbol,
		AssetType:   assetType,
		Level:       models.NormalizeLevel(level),
		GeneratedAt: s.now(),
	}
	if result := gathered["asset"]; result.Err == nil {
		report.AssetData = result.Value.(*models.AssetInfo)
	} else {
		s.logger.Warn().Err(result.Err).Str("symbol", symbol).Msg("Asset data unavailable for research")
	}
	if result, ok := gathered["news"]; ok {
		if result.Err == nil {
			report.News = result.Value.([]models.NewsItem)
		} else {
			s.logger.Warn().Err(result.Err).Str("symbol", symbol).Msg("Asset news unavailable for research")
		}
	}
	if result, ok := gathered["similar"]; ok {
		if result.Err == nil {
			report.SimilarAssets = result.Value.([]models.SimilarAsset)
		} else {
			s.logger.Warn().Err(result.Err).Str("symbol", symbol).Msg("Similar assets unavailable for research")
		}
	}

	if err := s.generateNarrative(ctx, report, level); err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Research narrative generation failed, serving fallback")
		report.Overview = fmt.Sprintf("We couldn't generate a research report for %s right now. Please try again in a few minutes.", symbol)
		report.Fallback = true
		return report, nil
	}

	if err := s.store.Set(ctx, key, report, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache research report")
	}
	return report, nil
}

func (s *ResearchService) generateNarrative(ctx context.Context, report *models.ResearchReport, level string) error {
	prompt := fmt.Sprintf("Write a research overview of %s (%s) for a %s-level learner.", report.Symbol, report.AssetType, level)
	if report.AssetData != nil {
		prompt += fmt.Sprintf(" Current data: price %.2f %s, 24h change %.2f%%.",
			report.AssetData.Price, report.AssetData.Currency, report.AssetData.ChangePercent)
	}
	if len(report.News) > 0 {
		headlines := make([]string, 0, len(report.News))
		for _, item := range report.News {
			headlines = append(headlines, item.Title)
		}
		prompt += " Recent headlines: " + strings.Join(headlines, "; ") + "."
	}
	prompt += " Explain what the asset is, how it behaves, and what a learner should watch. Educational, not investment advice."

	raw, err := s.llm.Generate(ctx, &interfaces.GenerationRequest{
		System: "You are a financial research analyst writing for learners, not traders.",
		Prompt: prompt,
		Schema: llm.ResearchSchema(),
	})
	if err != nil {
		return err
	}

	var parsed struct {
		Overview   string `json:"overview"`
		KeyMetrics []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"key_metrics"`
		Risks         []string `json:"risks"`
		Opportunities []string `json:"opportunities"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return fmt.Errorf("failed to parse research response: %w", err)
	}
	if parsed.Overview == "" {
		return fmt.Errorf("research response missing overview")
	}

	report.Overview = parsed.Overview
	report.Risks = bulletList(parsed.Risks)
	report.Opportunities = bulletList(parsed.Opportunities)

	metrics := make([]string, 0, len(parsed.KeyMetrics))
	for _, m := range parsed.KeyMetrics {
		metrics = append(metrics, fmt.Sprintf("%s: %s", m.Name, m.Value))
	}
	report.KeyMetrics = bulletList(metrics)
	return nil
}

// fetchAssetNews asks the content LLM for recent stories about one symbol.
func (s *ResearchService) fetchAssetNews(ctx context.Context, symbol, level string) ([]models.NewsItem, error) {
	raw, err := s.llm.Generate(ctx, &interfaces.GenerationRequest{
		System: "You are a financial news editor.",
		Prompt: fmt.Sprintf("List the 3 most recent significant news stories about %s, summarized for a %s-level learner.", symbol, level),
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
		return nil, fmt.Errorf("failed to parse asset news response: %w", err)
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

func bulletList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
