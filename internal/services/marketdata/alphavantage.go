package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finlearn/internal/models"
)

const alphaVantageBaseURL = "https://www.alphavantage.co"

// AlphaVantageProvider is the last stock provider in the chain. Alpha
// Vantage returns quote fields as strings under numbered keys.
type AlphaVantageProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
}

type alphaVantageQuoteResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		High          string `json:"03. high"`
		Low           string `json:"04. low"`
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
	Note string `json:"Note"`
}

type alphaVantageSearchResponse struct {
	BestMatches []struct {
		Symbol string `json:"1. symbol"`
		Name   string `json:"2. name"`
		Region string `json:"4. region"`
	} `json:"bestMatches"`
	Note string `json:"Note"`
}

func NewAlphaVantageProvider(apiKey string, timeout time.Duration, logger arbor.ILogger) *AlphaVantageProvider {
	return &AlphaVantageProvider{
		baseURL:    alphaVantageBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (p *AlphaVantageProvider) Name() string { return "alphavantage" }

func (p *AlphaVantageProvider) AssetInfo(ctx context.Context, symbol, assetType string) (*models.AssetInfo, error) {
	if assetType != models.AssetTypeStock {
		return nil, ErrUnsupportedAsset
	}

	reqURL := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s",
		p.baseURL, url.QueryEscape(strings.ToUpper(symbol)), url.QueryEscape(p.apiKey))

	var parsed alphaVantageQuoteResponse
	if err := getJSON(ctx, p.httpClient, reqURL, &parsed); err != nil {
		return nil, fmt.Errorf("alphavantage quote lookup failed: %w", err)
	}
	if parsed.Note != "" {
		return nil, fmt.Errorf("alphavantage rate limited: %s", parsed.Note)
	}
	if parsed.GlobalQuote.Symbol == "" {
		return nil, ErrAssetNotFound
	}

	price := parseFloat(parsed.GlobalQuote.Price)
	if price == 0 {
		return nil, ErrAssetNotFound
	}

	return &models.AssetInfo{
		Symbol:        strings.ToUpper(parsed.GlobalQuote.Symbol),
		Name:          strings.ToUpper(parsed.GlobalQuote.Symbol),
		AssetType:     models.AssetTypeStock,
		Price:         price,
		Currency:      "USD",
		ChangePercent: parseFloat(strings.TrimSuffix(parsed.GlobalQuote.ChangePercent, "%")),
		Volume:        parseFloat(parsed.GlobalQuote.Volume),
		Provider:      p.Name(),
		FetchedAt:     time.Now(),
	}, nil
}

func (p *AlphaVantageProvider) Search(ctx context.Context, query, assetType string, limit int) ([]models.AssetSearchResult, error) {
	if assetType == models.AssetTypeCrypto {
		return nil, ErrUnsupportedAsset
	}

	reqURL := fmt.Sprintf("%s/query?function=SYMBOL_SEARCH&keywords=%s&apikey=%s",
		p.baseURL, url.QueryEscape(query), url.QueryEscape(p.apiKey))

	var parsed alphaVantageSearchResponse
	if err := getJSON(ctx, p.httpClient, reqURL, &parsed); err != nil {
		return nil, fmt.Errorf("alphavantage search failed: %w", err)
	}
	if parsed.Note != "" {
		return nil, fmt.Errorf("alphavantage rate limited: %s", parsed.Note)
	}

	results := make([]models.AssetSearchResult, 0, len(parsed.BestMatches))
	for _, match := range parsed.BestMatches {
		results = append(results, models.AssetSearchResult{
			Symbol:    strings.ToUpper(match.Symbol),
			Name:      match.Name,
			AssetType: models.AssetTypeStock,
			Exchange:  match.Region,
		})
	}
	return clampResults(results, limit), nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
