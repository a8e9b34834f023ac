package models

import (
	"strings"
	"time"
)

// Asset types tracked in watchlists.
const (
	AssetTypeStock  = "stock"
	AssetTypeCrypto = "crypto"
)

// NormalizeAssetType maps arbitrary input to a supported asset type,
// defaulting to stock.
func NormalizeAssetType(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case AssetTypeCrypto, "cryptocurrency":
		return AssetTypeCrypto
	default:
		return AssetTypeStock
	}
}

// WatchlistItem is one tracked asset in a user's watchlist.
type WatchlistItem struct {
	Symbol    string    `json:"symbol"`
	AssetType string    `json:"asset_type"`
	Notes     string    `json:"notes,omitempty"`
	AddedAt   time.Time `json:"added_at"`
}

// Watchlist is a user's full watchlist document. One document per user;
// add/remove operations rewrite the Items slice inside a transaction.
type Watchlist struct {
	UserID    string          `json:"user_id" badgerhold:"key"`
	Items     []WatchlistItem `json:"assets"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Find returns the index of the item matching symbol and asset type, or -1.
// Matching is case-insensitive on symbol.
func (w *Watchlist) Find(symbol, assetType string) int {
	for i, item := range w.Items {
		if strings.EqualFold(item.Symbol, symbol) && item.AssetType == assetType {
			return i
		}
	}
	return -1
}

// EnrichedWatchlistItem is a watchlist item joined with live market data.
// Error carries a per-item failure without failing the whole list.
type EnrichedWatchlistItem struct {
	WatchlistItem
	Name          string         `json:"name,omitempty"`
	Price         float64        `json:"current_price,omitempty"`
	Currency      string         `json:"currency,omitempty"`
	ChangePercent float64        `json:"change_percent_24h,omitempty"`
	SimilarAssets []SimilarAsset `json:"similar_assets,omitempty"`
	Error         string         `json:"error,omitempty"`
}
