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

const fmpBaseURL = "https://financialmodelingprep.com/api/v3"

// FMPProvider resolves stock data from Financial Modeling Prep. It requires
// an API key and only joins the chain when one is configured.
type FMPProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
}

type fmpQuote struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	ChangesPercentage float64 `json:"changesPercentage"`
	MarketCap         float64 `json:"marketCap"`
	Volume            float64 `json:"volume"`
	YearHigh          float64 `json:"yearHigh"`
	YearLow           float64 `json:"yearLow"`
}

type fmpSearchResult struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	ExchangeShort string `json:"exchangeShortName"`
}

func NewFMPProvider(apiKey string, timeout time.Duration, logger arbor.ILogger) *FMPProvider {
	return &FMPProvider{
		baseURL:    fmpBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (p *FMPProvider) Name() string { return "fmp" }

func (p *FMPProvider) AssetInfo(ctx context.Context, symbol, assetType string) (*models.AssetInfo, error) {
	if assetType != models.AssetTypeStock {
		return nil, ErrUnsupportedAsset
	}

	reqURL := fmt.Sprintf("%s/quote/%s?apikey=%s", p.baseURL, url.PathEscape(strings.ToUpper(symbol)), url.QueryEscape(p.apiKey))
	var quotes []fmpQuote
	if err := getJSON(ctx, p.httpClient, reqURL, &quotes); err != nil {
		return nil, fmt.Errorf("fmp quote lookup failed: %w", err)
	}
	if len(quotes) == 0 {
		return nil, ErrAssetNotFound
	}

	q := quotes[0]
	return &models.AssetInfo{
		Symbol:        strings.ToUpper(q.Symbol),
		Name:          q.Name,
		AssetType:     models.AssetTypeStock,
		Price:         q.Price,
		Currency:      "USD",
		ChangePercent: q.ChangesPercentage,
		MarketCap:     q.MarketCap,
		Volume:        q.Volume,
		High52Week:    q.YearHigh,
		Low52Week:     q.YearLow,
		Provider:      p.Name(),
		FetchedAt:     time.Now(),
	}, nil
}

func (p *FMPProvider) Search(ctx context.Context, query, assetType string, limit int) ([]models.AssetSearchResult, error) {
	if assetType == models.AssetTypeCrypto {
		return nil, ErrUnsupportedAsset
	}

	reqURL := fmt.Sprintf("%s/search?query=%s&limit=%d&apikey=%s", p.baseURL, url.QueryEscape(query), searchCount(limit), url.QueryEscape(p.apiKey))
	var parsed []fmpSearchResult
	if err := getJSON(ctx, p.httpClient, reqURL, &parsed); err != nil {
		return nil, fmt.Errorf("fmp search failed: %w", err)
	}

	results := make([]models.AssetSearchResult, 0, len(parsed))
	for _, item := range parsed {
		results = append(results, models.AssetSearchResult{
			Symbol:    strings.ToUpper(item.Symbol),
			Name:      item.Name,
			AssetType: models.AssetTypeStock,
			Exchange:  item.ExchangeShort,
		})
	}
	return clampResults(results, limit), nil
}
