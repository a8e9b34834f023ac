package interfaces

import (
	"context"

	"github.com/ternarybob/finlearn/internal/models"
)

// MarketDataProvider is one upstream asset data source. Providers are tried
// in order; an error moves the lookup to the next provider in the chain.
type MarketDataProvider interface {
	Name() string
	AssetInfo(ctx context.Context, symbol, assetType string) (*models.AssetInfo, error)
	Search(ctx context.Context, query, assetType string, limit int) ([]models.AssetSearchResult, error)
}

// MarketDataService is the resolved asset data surface used by watchlist and
// research services.
type MarketDataService interface {
	GetAssetInfo(ctx context.Context, symbol, assetType string) (*models.AssetInfo, error)
	SearchAssets(ctx context.Context, query, assetType string, limit int) ([]models.AssetSearchResult, error)
	GetSimilarAssets(ctx context.Context, symbol, assetType string) ([]models.SimilarAsset, error)
}
