package marketdata

import (
	"context"
	"encoding/json"
	"errors"
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

// Service resolves asset data through an ordered provider chain with
// short-lived memory caches. Crypto lookups start at CoinGecko, stocks at
// Yahoo; keyed providers (FMP, Alpha Vantage) join the chain only when
// configured. Similar-asset suggestions come from the LLM because no free
// provider offers them.
type Service struct {
	providers    []interfaces.MarketDataProvider
	llm          interfaces.LLMService
	logger       arbor.ILogger
	infoCache    *cache.Memory[*models.AssetInfo]
	searchCache  *cache.Memory[[]models.AssetSearchResult]
	similarCache *cache.Memory[[]models.SimilarAsset]
	retryPolicy  *common.RetryPolicy
}

// NewService builds the provider chain from configuration. infoTTL and
// searchTTL bound how long quotes and search results are reused.
func NewService(cfg *common.MarketDataConfig, llmService interfaces.LLMService, logger arbor.ILogger, infoTTL, searchTTL time.Duration) (*Service, error) {
	timeout, err := time.ParseDuration(cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid request timeout '%s': %w", cfg.RequestTimeout, err)
	}

	providers := []interfaces.MarketDataProvider{
		NewCoinGeckoProvider(timeout, logger),
		NewYahooProvider(timeout, logger),
	}
	if cfg.FMPAPIKey != "" {
		providers = append(providers, NewFMPProvider(cfg.FMPAPIKey, timeout, logger))
	}
	if cfg.AlphaVantageAPIKey != "" {
		providers = append(providers, NewAlphaVantageProvider(cfg.AlphaVantageAPIKey, timeout, logger))
	}

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	logger.Info().
		Str("providers", strings.Join(names, ",")).
		Dur("request_timeout", timeout).
		Msg("Market data service initialized")

	retryPolicy := common.NewRetryPolicy()
	retryPolicy.MaxAttempts = 3

	return &Service{
		providers:    providers,
		llm:          llmService,
		logger:       logger,
		infoCache:    cache.NewMemory[*models.AssetInfo](infoTTL),
		searchCache:  cache.NewMemory[[]models.AssetSearchResult](searchTTL),
		similarCache: cache.NewMemory[[]models.SimilarAsset](searchTTL),
		retryPolicy:  retryPolicy,
	}, nil
}

// NewServiceWithProviders builds a service over an explicit provider chain.
func NewServiceWithProviders(providers []interfaces.MarketDataProvider, llmService interfaces.LLMService, logger arbor.ILogger, infoTTL, searchTTL time.Duration) *Service {
	retryPolicy := common.NewRetryPolicy()
	retryPolicy.MaxAttempts = 3
	return &Service{
		providers:    providers,
		llm:          llmService,
		logger:       logger,
		infoCache:    cache.NewMemory[*models.AssetInfo](infoTTL),
		searchCache:  cache.NewMemory[[]models.AssetSearchResult](searchTTL),
		similarCache: cache.NewMemory[[]models.SimilarAsset](searchTTL),
		retryPolicy:  retryPolicy,
	}
}

// GetAssetInfo resolves a quote through the provider chain, serving from
// the memory cache while fresh.
func (s *Service) GetAssetInfo(ctx context.Context, symbol, assetType string) (*models.AssetInfo, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol cannot be empty")
	}
	assetType = models.NormalizeAssetType(assetType)

	cacheKey := symbol + ":" + assetType
	if info, ok := s.infoCache.Get(cacheKey); ok {
		return info, nil
	}

	var lastErr error
	for _, provider := range s.providers {
		info, err := provider.AssetInfo(ctx, symbol, assetType)
		if err == nil {
			s.infoCache.Set(cacheKey, info)
			return info, nil
		}
		if errors.Is(err, ErrUnsupportedAsset) {
			continue
		}
		lastErr = err
		s.logger.Debug().
			Err(err).
			Str("provider", provider.Name()).
			Str("symbol", symbol).
			Msg("Provider lookup failed, trying next in chain")
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	if lastErr == nil {
		lastErr = ErrAssetNotFound
	}
	return nil, fmt.Errorf("all providers failed for %s (%s): %w", symbol, assetType, lastErr)
}

// SearchAssets runs a cached search through the provider chain, returning
// the first provider's non-empty result set.
func (s *Service) SearchAssets(ctx context.Context, query, assetType string, limit int) ([]models.AssetSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if assetType != "" {
		assetType = models.NormalizeAssetType(assetType)
	}
	if limit <= 0 {
		limit = 10
	}

	cacheKey := fmt.Sprintf("%s:%s:%d", strings.ToLower(query), assetType, limit)
	if results, ok := s.searchCache.Get(cacheKey); ok {
		return results, nil
	}

	var lastErr error
	for _, provider := range s.providers {
		results, err := provider.Search(ctx, query, assetType, limit)
		if err == nil && len(results) > 0 {
			s.searchCache.Set(cacheKey, results)
			return results, nil
		}
		if err != nil && !errors.Is(err, ErrUnsupportedAsset) {
			lastErr = err
			s.logger.Debug().
				Err(err).
				Str("provider", provider.Name()).
				Str("query", query).
				Msg("Provider search failed, trying next in chain")
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("all providers failed for query %q: %w", query, lastErr)
	}
	return []models.AssetSearchResult{}, nil
}

// GetSimilarAssets asks the LLM for comparable assets, then fills in live
// prices from the provider chain when available.
func (s *Service) GetSimilarAssets(ctx context.Context, symbol, assetType string) ([]models.SimilarAsset, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	assetType = models.NormalizeAssetType(assetType)

	cacheKey := "similar:" + symbol + ":" + assetType
	if assets, ok := s.similarCache.Get(cacheKey); ok {
		return assets, nil
	}

	req := &interfaces.GenerationRequest{
		System: "You are a financial education expert helping learners compare investment options.",
		Prompt: fmt.Sprintf("Suggest up to 3 %s assets comparable to %s for someone learning about investing. "+
			"Explain in plain language why each is comparable.", assetType, symbol),
		Schema: llm.SimilarAssetsSchema(),
	}

	assets, err := common.Retry(ctx, s.retryPolicy, s.logger, "similar-assets", func(ctx context.Context) ([]models.SimilarAsset, error) {
		raw, err := s.llm.Generate(ctx, req)
		if err != nil {
			return nil, err
		}
		var parsed struct {
			Assets []models.SimilarAsset `json:"assets"`
		}
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse similar assets response: %w", err)
		}
		if len(parsed.Assets) == 0 {
			return nil, common.ErrEmptyResult
		}
		return parsed.Assets, nil
	})
	if err != nil {
		return nil, err
	}

	for i := range assets {
		info, err := s.GetAssetInfo(ctx, assets[i].Symbol, assetType)
		if err != nil {
			continue
		}
		assets[i].CurrentPrice = info.Price
	}

	s.similarCache.Set(cacheKey, assets)
	return assets, nil
}
