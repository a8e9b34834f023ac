package watchlist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/finlearn/internal/common"
	"github.com/ternarybob/finlearn/internal/interfaces"
	"github.com/ternarybob/finlearn/internal/models"
	"github.com/ternarybob/finlearn/internal/storage/badger"
)

type stubMarketData struct {
	info    map[string]*models.AssetInfo
	similar []models.SimilarAsset
	err     error
}

func (m *stubMarketData) GetAssetInfo(ctx context.Context, symbol, assetType string) (*models.AssetInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	info, ok := m.info[symbol]
	if !ok {
		return nil, errors.New("unknown symbol")
	}
	return info, nil
}

func (m *stubMarketData) SearchAssets(ctx context.Context, query, assetType string, limit int) ([]models.AssetSearchResult, error) {
	return nil, m.err
}

func (m *stubMarketData) GetSimilarAssets(ctx context.Context, symbol, assetType string) ([]models.SimilarAsset, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.similar, nil
}

func newTestService(t *testing.T, market interfaces.MarketDataService) *Service {
	t.Helper()
	logger := common.GetLogger()
	db, err := badger.NewBadgerDB(logger, &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewService(badger.NewWatchlistStorage(db, logger), market, logger)
}

func TestAddAssetDedupAndRemove(t *testing.T) {
	market := &stubMarketData{info: map[string]*models.AssetInfo{
		"AAPL": {Symbol: "AAPL", Name: "Apple Inc.", Price: 210},
	}}
	svc := newTestService(t, market)
	ctx := context.Background()

	result, err := svc.AddAsset(ctx, "user-1", "aapl", "stock", "long term")
	require.NoError(t, err)
	require.False(t, result.Updated)
	require.Len(t, result.Watchlist.Items, 1)
	require.Equal(t, "AAPL", result.Watchlist.Items[0].Symbol)
	require.Equal(t, "Apple Inc.", result.Asset.Name)

	// Same symbol again updates notes in place.
	result, err = svc.AddAsset(ctx, "user-1", "AAPL", "stock", "revised")
	require.NoError(t, err)
	require.True(t, result.Updated)
	require.Len(t, result.Watchlist.Items, 1)
	require.Equal(t, "revised", result.Watchlist.Items[0].Notes)

	list, err := svc.RemoveAsset(ctx, "user-1", "AAPL", "stock")
	require.NoError(t, err)
	require.Empty(t, list.Items)

	_, err = svc.RemoveAsset(ctx, "user-1", "AAPL", "stock")
	require.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestAddAssetToleratesMarketOutage(t *testing.T) {
	svc := newTestService(t, &stubMarketData{err: errors.New("all providers down")})

	result, err := svc.AddAsset(context.Background(), "user-1", "BTC", "crypto", "")
	require.NoError(t, err)
	require.Nil(t, result.Asset)
	require.Len(t, result.Watchlist.Items, 1)
}

func TestGetWatchlistPartialEnrichment(t *testing.T) {
	market := &stubMarketData{info: map[string]*models.AssetInfo{
		"AAPL": {Symbol: "AAPL", Name: "Apple Inc.", Price: 210, Currency: "USD"},
	}}
	svc := newTestService(t, market)
	ctx := context.Background()

	_, err := svc.AddAsset(ctx, "user-1", "AAPL", "stock", "")
	require.NoError(t, err)
	_, err = svc.AddAsset(ctx, "user-1", "ZZZZ", "stock", "")
	require.NoError(t, err)

	enriched, err := svc.GetWatchlist(ctx, "user-1", "", false)
	require.NoError(t, err)
	require.Len(t, enriched, 2)

	bySymbol := map[string]models.EnrichedWatchlistItem{}
	for _, item := range enriched {
		bySymbol[item.Symbol] = item
	}
	require.Equal(t, "Apple Inc.", bySymbol["AAPL"].Name)
	require.Empty(t, bySymbol["AAPL"].Error)
	require.NotEmpty(t, bySymbol["ZZZZ"].Error)
}

func TestGetWatchlistSimilarSecondWave(t *testing.T) {
	market := &stubMarketData{
		info: map[string]*models.AssetInfo{
			"AAPL": {Symbol: "AAPL", Name: "Apple Inc.", Price: 210},
		},
		similar: []models.SimilarAsset{{Symbol: "MSFT", Name: "Microsoft", SimilarityReason: "Large-cap tech peer"}},
	}
	svc := newTestService(t, market)
	ctx := context.Background()

	_, err := svc.AddAsset(ctx, "user-1", "AAPL", "stock", "")
	require.NoError(t, err)

	enriched, err := svc.GetWatchlist(ctx, "user-1", "", true)
	require.NoError(t, err)
	require.Len(t, enriched, 1)
	require.Len(t, enriched[0].SimilarAssets, 1)
	require.Equal(t, "MSFT", enriched[0].SimilarAssets[0].Symbol)
}

func TestGetWatchlistFilterByAssetType(t *testing.T) {
	market := &stubMarketData{info: map[string]*models.AssetInfo{
		"AAPL": {Symbol: "AAPL"},
		"BTC":  {Symbol: "BTC"},
	}}
	svc := newTestService(t, market)
	ctx := context.Background()

	_, err := svc.AddAsset(ctx, "user-1", "AAPL", "stock", "")
	require.NoError(t, err)
	_, err = svc.AddAsset(ctx, "user-1", "BTC", "crypto", "")
	require.NoError(t, err)

	enriched, err := svc.GetWatchlist(ctx, "user-1", "crypto", false)
	require.NoError(t, err)
	require.Len(t, enriched, 1)
	require.Equal(t, "BTC", enriched[0].Symbol)
}
