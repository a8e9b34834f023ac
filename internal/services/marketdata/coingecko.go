package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finlearn/internal/models"
)

const coinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoProvider resolves cryptocurrency data from the free CoinGecko
// API. It is first in the chain for crypto assets and skips everything else.
type CoinGeckoProvider struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
}

type coinGeckoSearchResponse struct {
	Coins []struct {
		ID     string `json:"id"`
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
	} `json:"coins"`
}

type coinGeckoMarket struct {
	ID               string  `json:"id"`
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	CurrentPrice     float64 `json:"current_price"`
	MarketCap        float64 `json:"market_cap"`
	TotalVolume      float64 `json:"total_volume"`
	PriceChange24Pct float64 `json:"price_change_percentage_24h"`
	ATH              float64 `json:"ath"`
	ATL              float64 `json:"atl"`
}

func NewCoinGeckoProvider(timeout time.Duration, logger arbor.ILogger) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		baseURL:    coinGeckoBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (p *CoinGeckoProvider) Name() string { return "coingecko" }

func (p *CoinGeckoProvider) AssetInfo(ctx context.Context, symbol, assetType string) (*models.AssetInfo, error) {
	if assetType != models.AssetTypeCrypto {
		return nil, ErrUnsupportedAsset
	}

	coinID, err := p.resolveCoinID(ctx, symbol)
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/coins/markets?vs_currency=usd&ids=%s", p.baseURL, url.QueryEscape(coinID))
	var markets []coinGeckoMarket
	if err := getJSON(ctx, p.httpClient, reqURL, &markets); err != nil {
		return nil, fmt.Errorf("coingecko markets lookup failed: %w", err)
	}
	if len(markets) == 0 {
		return nil, ErrAssetNotFound
	}

	m := markets[0]
	return &models.AssetInfo{
		Symbol:        strings.ToUpper(m.Symbol),
		Name:          m.Name,
		AssetType:     models.AssetTypeCrypto,
		Price:         m.CurrentPrice,
		Currency:      "USD",
		ChangePercent: m.PriceChange24Pct,
		MarketCap:     m.MarketCap,
		Volume:        m.TotalVolume,
		High52Week:    m.ATH,
		Low52Week:     m.ATL,
		Provider:      p.Name(),
		FetchedAt:     time.Now(),
	}, nil
}

func (p *CoinGeckoProvider) Search(ctx context.Context, query, assetType string, limit int) ([]models.AssetSearchResult, error) {
	if assetType != "" && assetType != models.AssetTypeCrypto {
		return nil, ErrUnsupportedAsset
	}

	reqURL := fmt.Sprintf("%s/search?query=%s", p.baseURL, url.QueryEscape(query))
	var parsed coinGeckoSearchResponse
	if err := getJSON(ctx, p.httpClient, reqURL, &parsed); err != nil {
		return nil, fmt.Errorf("coingecko search failed: %w", err)
	}

	results := make([]models.AssetSearchResult, 0, len(parsed.Coins))
	for _, coin := range parsed.Coins {
		results = append(results, models.AssetSearchResult{
			Symbol:    strings.ToUpper(coin.Symbol),
			Name:      coin.Name,
			AssetType: models.AssetTypeCrypto,
		})
	}
	return clampResults(results, limit), nil
}

// resolveCoinID maps a ticker symbol to CoinGecko's internal coin id,
// preferring an exact symbol match over the first search hit.
func (p *CoinGeckoProvider) resolveCoinID(ctx context.Context, symbol string) (string, error) {
	reqURL := fmt.Sprintf("%s/search?query=%s", p.baseURL, url.QueryEscape(symbol))
	var parsed coinGeckoSearchResponse
	if err := getJSON(ctx, p.httpClient, reqURL, &parsed); err != nil {
		return "", fmt.Errorf("coingecko symbol resolution failed: %w", err)
	}
	if len(parsed.Coins) == 0 {
		return "", ErrAssetNotFound
	}

	lower := strings.ToLower(symbol)
	for _, coin := range parsed.Coins {
		if strings.ToLower(coin.Symbol) == lower {
			return coin.ID, nil
		}
	}
	return parsed.Coins[0].ID, nil
}
