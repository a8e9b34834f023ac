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

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider resolves asset data from Yahoo Finance's unauthenticated
// chart and search endpoints. It covers both stocks and crypto; crypto
// tickers are queried with the "-USD" suffix Yahoo expects.
type YahooProvider struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol              string  `json:"symbol"`
				Currency            string  `json:"currency"`
				RegularMarketPrice  float64 `json:"regularMarketPrice"`
				PreviousClose       float64 `json:"chartPreviousClose"`
				FiftyTwoWeekHigh    float64 `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow     float64 `json:"fiftyTwoWeekLow"`
				RegularMarketVolume float64 `json:"regularMarketVolume"`
				LongName            string  `json:"longName"`
				ShortName           string  `json:"shortName"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type yahooSearchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		QuoteType string `json:"quoteType"`
		Exchange  string `json:"exchange"`
	} `json:"quotes"`
}

func NewYahooProvider(timeout time.Duration, logger arbor.ILogger) *YahooProvider {
	return &YahooProvider{
		baseURL:    yahooBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

// yahooSymbol maps our symbol/type pair to Yahoo's ticker form.
func yahooSymbol(symbol, assetType string) string {
	upper := strings.ToUpper(symbol)
	if assetType == models.AssetTypeCrypto && !strings.Contains(upper, "-") {
		return upper + "-USD"
	}
	return upper
}

func (p *YahooProvider) AssetInfo(ctx context.Context, symbol, assetType string) (*models.AssetInfo, error) {
	ticker := yahooSymbol(symbol, assetType)
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d", p.baseURL, url.PathEscape(ticker))

	var parsed yahooChartResponse
	if err := getJSON(ctx, p.httpClient, reqURL, &parsed); err != nil {
		return nil, fmt.Errorf("yahoo chart lookup failed: %w", err)
	}
	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart error (%s): %s: %w", parsed.Chart.Error.Code, parsed.Chart.Error.Description, ErrAssetNotFound)
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, ErrAssetNotFound
	}

	meta := parsed.Chart.Result[0].Meta
	name := meta.LongName
	if name == "" {
		name = meta.ShortName
	}

	var changePercent float64
	if meta.PreviousClose > 0 {
		changePercent = (meta.RegularMarketPrice - meta.PreviousClose) / meta.PreviousClose * 100
	}

	return &models.AssetInfo{
		Symbol:        strings.ToUpper(symbol),
		Name:          name,
		AssetType:     assetType,
		Price:         meta.RegularMarketPrice,
		Currency:      meta.Currency,
		ChangePercent: changePercent,
		Volume:        meta.RegularMarketVolume,
		High52Week:    meta.FiftyTwoWeekHigh,
		Low52Week:     meta.FiftyTwoWeekLow,
		Provider:      p.Name(),
		FetchedAt:     time.Now(),
	}, nil
}

func (p *YahooProvider) Search(ctx context.Context, query, assetType string, limit int) ([]models.AssetSearchResult, error) {
	reqURL := fmt.Sprintf("%s/v1/finance/search?q=%s&quotesCount=%d", p.baseURL, url.QueryEscape(query), searchCount(limit))

	var parsed yahooSearchResponse
	if err := getJSON(ctx, p.httpClient, reqURL, &parsed); err != nil {
		return nil, fmt.Errorf("yahoo search failed: %w", err)
	}

	results := make([]models.AssetSearchResult, 0, len(parsed.Quotes))
	for _, quote := range parsed.Quotes {
		resultType := models.AssetTypeStock
		if strings.EqualFold(quote.QuoteType, "CRYPTOCURRENCY") {
			resultType = models.AssetTypeCrypto
		}
		if assetType != "" && resultType != assetType {
			continue
		}

		name := quote.LongName
		if name == "" {
			name = quote.ShortName
		}
		results = append(results, models.AssetSearchResult{
			Symbol:    strings.TrimSuffix(strings.ToUpper(quote.Symbol), "-USD"),
			Name:      name,
			AssetType: resultType,
			Exchange:  quote.Exchange,
		})
	}
	return clampResults(results, limit), nil
}

func searchCount(limit int) int {
	if limit <= 0 || limit > 20 {
		return 10
	}
	return limit * 2
}
