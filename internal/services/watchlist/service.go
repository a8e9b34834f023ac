package watchlist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finlearn/internal/common"
	"github.com/ternarybob/finlearn/internal/interfaces"
	"github.com/ternarybob/finlearn/internal/models"
)

// Service manages user watchlists and joins them with live market data.
// List documents are rewritten inside storage transactions so concurrent
// add/remove calls cannot lose items.
type Service struct {
	storage    interfaces.WatchlistStorage
	marketData interfaces.MarketDataService
	logger     arbor.ILogger
	now        func() time.Time
}

// AddResult is the confirmation payload for a watchlist add: the updated
// list plus the resolved snapshot of the asset that was added.
type AddResult struct {
	Watchlist *models.Watchlist `json:"watchlist"`
	Asset     *models.AssetInfo `json:"asset,omitempty"`
	Updated   bool              `json:"updated"` // true when an existing entry's notes were refreshed
}

func NewService(storage interfaces.WatchlistStorage, marketData interfaces.MarketDataService, logger arbor.ILogger) *Service {
	return &Service{
		storage:    storage,
		marketData: marketData,
		logger:     logger,
		now:        time.Now,
	}
}

// GetWatchlist returns the user's watchlist enriched with live quotes.
// Quotes are fetched concurrently; a failed lookup marks the item with an
// error instead of failing the list. When includeSimilar is set, similar
// assets are resolved per item as a dependent second wave.
func (s *Service) GetWatchlist(ctx context.Context, userID, assetTypeFilter string, includeSimilar bool) ([]models.EnrichedWatchlistItem, error) {
	list, err := s.storage.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}

	items := make([]models.WatchlistItem, 0, len(list.Items))
	for _, item := range list.Items {
		if assetTypeFilter != "" && item.AssetType != models.NormalizeAssetType(assetTypeFilter) {
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return []models.EnrichedWatchlistItem{}, nil
	}

	tasks := make([]func(context.Context) (models.EnrichedWatchlistItem, error), 0, len(items))
	for _, item := range items {
		item := item
		tasks = append(tasks, func(ctx context.Context) (models.EnrichedWatchlistItem, error) {
			enriched := models.EnrichedWatchlistItem{WatchlistItem: item}
			info, err := s.marketData.GetAssetInfo(ctx, item.Symbol, item.AssetType)
			if err != nil {
				enriched.Error = err.Error()
				return enriched, nil
			}
			enriched.Name = info.Name
			enriched.Price = info.Price
			enriched.Currency = info.Currency
			enriched.ChangePercent = info.ChangePercent

			if includeSimilar {
				similar, err := s.marketData.GetSimilarAssets(ctx, item.Symbol, item.AssetType)
				if err != nil {
					s.logger.Debug().Err(err).Str("symbol", item.Symbol).Msg("Similar assets unavailable for watchlist item")
				} else {
					enriched.SimilarAssets = similar
				}
			}
			return enriched, nil
		})
	}

	results := common.GatherSlice(ctx, tasks)
	enriched := make([]models.EnrichedWatchlistItem, len(items))
	for i, result := range results {
		if result.Err != nil {
			enriched[i] = models.EnrichedWatchlistItem{WatchlistItem: items[i], Error: result.Err.Error()}
			continue
		}
		enriched[i] = result.Value
	}
	return enriched, nil
}

// AddAsset adds a symbol to the user's watchlist. Duplicate (symbol, type)
// pairs update the existing entry's notes in place rather than appending.
// The symbol is resolved against market data first so obvious typos fail
// with a validation error, but an unreachable provider chain does not block
// the write.
func (s *Service) AddAsset(ctx context.Context, userID, symbol, assetType, notes string) (*AddResult, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol cannot be empty")
	}
	assetType = models.NormalizeAssetType(assetType)

	info, err := s.marketData.GetAssetInfo(ctx, symbol, assetType)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Could not resolve asset before watchlist add")
	}

	updated := false
	list, err := s.storage.Upsert(ctx, userID, func(w *models.Watchlist) error {
		if i := w.Find(symbol, assetType); i >= 0 {
			w.Items[i].Notes = notes
			updated = true
			return nil
		}
		w.Items = append(w.Items, models.WatchlistItem{
			Symbol:    symbol,
			AssetType: assetType,
			Notes:     notes,
			AddedAt:   s.now(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update watchlist: %w", err)
	}

	return &AddResult{Watchlist: list, Asset: info, Updated: updated}, nil
}

// RemoveAsset deletes a symbol from the user's watchlist. Returns
// ErrNotFound when the symbol is not on the list.
func (s *Service) RemoveAsset(ctx context.Context, userID, symbol, assetType string) (*models.Watchlist, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	assetType = models.NormalizeAssetType(assetType)

	list, err := s.storage.Upsert(ctx, userID, func(w *models.Watchlist) error {
		i := w.Find(symbol, assetType)
		if i < 0 {
			return interfaces.ErrNotFound
		}
		w.Items = append(w.Items[:i], w.Items[i+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Search proxies an asset search through the market data chain.
func (s *Service) Search(ctx context.Context, query, assetType string, limit int) ([]models.AssetSearchResult, error) {
	return s.marketData.SearchAssets(ctx, query, assetType, limit)
}
