package models

import "time"

// AssetInfo is a normalized market data snapshot for one asset, regardless
// of which upstream provider produced it.
type AssetInfo struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	AssetType     string    `json:"asset_type"`
	Price         float64   `json:"current_price"`
	Currency      string    `json:"currency"`
	ChangePercent float64   `json:"change_percent_24h"`
	MarketCap     float64   `json:"market_cap,omitempty"`
	Volume        float64   `json:"volume_24h,omitempty"`
	High52Week    float64   `json:"high_52_week,omitempty"`
	Low52Week     float64   `json:"low_52_week,omitempty"`
	Provider      string    `json:"provider,omitempty"` // Which upstream answered
	FetchedAt     time.Time `json:"fetched_at"`
}

// AssetSearchResult is one normalized hit from an asset search.
type AssetSearchResult struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	AssetType string `json:"asset_type"`
	Exchange  string `json:"exchange,omitempty"`
}

// SimilarAsset describes an asset comparable to one the user is researching.
type SimilarAsset struct {
	Symbol           string   `json:"symbol"`
	Name             string   `json:"name"`
	CurrentPrice     float64  `json:"current_price,omitempty"`
	SimilarityReason string   `json:"similarity_reason"`
	ComparisonPoints []string `json:"comparison_points,omitempty"`
}

// ResearchReport is the personalized research payload for one asset.
type ResearchReport struct {
	Symbol        string         `json:"symbol"`
	AssetType     string         `json:"asset_type"`
	Level         ExpertiseLevel `json:"expertise_level"`
	Overview      string         `json:"overview"`
	KeyMetrics    string         `json:"key_metrics,omitempty"`
	Risks         string         `json:"risks,omitempty"`
	Opportunities string         `json:"opportunities,omitempty"`
	AssetData     *AssetInfo     `json:"asset_data,omitempty"`
	News          []NewsItem     `json:"news,omitempty"`
	SimilarAssets []SimilarAsset `json:"similar_assets,omitempty"`
	Fallback      bool           `json:"fallback,omitempty"`
	GeneratedAt   time.Time      `json:"generated_at"`
}
