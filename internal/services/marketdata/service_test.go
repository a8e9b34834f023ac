package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ternarybob/finlearn/internal/common"
	"github.com/ternarybob/finlearn/internal/interfaces"
	"github.com/ternarybob/finlearn/internal/models"
)

type fakeProvider struct {
	name    string
	info    *models.AssetInfo
	results []models.AssetSearchResult
	err     error
	calls   int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) AssetInfo(ctx context.Context, symbol, assetType string) (*models.AssetInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

func (f *fakeProvider) Search(ctx context.Context, query, assetType string, limit int) ([]models.AssetSearchResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Generate(ctx context.Context, req *interfaces.GenerationRequest) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) GetModelInfo() string { return "fake:test" }
func (f *fakeLLM) Close() error         { return nil }

func newTestService(providers []interfaces.MarketDataProvider, llmService interfaces.LLMService) *Service {
	return NewServiceWithProviders(providers, llmService, common.GetLogger(), 5*time.Minute, 10*time.Minute)
}

func TestGetAssetInfoFallsThroughChain(t *testing.T) {
	failing := &fakeProvider{name: "first", err: errors.New("upstream down")}
	working := &fakeProvider{
		name: "second",
		info: &models.AssetInfo{Symbol: "AAPL", Name: "Apple Inc.", Price: 210.5, AssetType: models.AssetTypeStock},
	}

	svc := newTestService([]interfaces.MarketDataProvider{failing, working}, &fakeLLM{})

	info, err := svc.GetAssetInfo(context.Background(), "aapl", "stock")
	if err != nil {
		t.Fatalf("GetAssetInfo failed: %v", err)
	}
	if info.Symbol != "AAPL" || info.Price != 210.5 {
		t.Errorf("unexpected info: %+v", info)
	}
	if failing.calls != 1 || working.calls != 1 {
		t.Errorf("calls = (%d, %d), want (1, 1)", failing.calls, working.calls)
	}
}

func TestGetAssetInfoSkipsUnsupportedProviders(t *testing.T) {
	cryptoOnly := &fakeProvider{name: "crypto-only", err: ErrUnsupportedAsset}
	working := &fakeProvider{
		name: "stocks",
		info: &models.AssetInfo{Symbol: "MSFT", Price: 400, AssetType: models.AssetTypeStock},
	}

	svc := newTestService([]interfaces.MarketDataProvider{cryptoOnly, working}, &fakeLLM{})

	info, err := svc.GetAssetInfo(context.Background(), "MSFT", "stock")
	if err != nil {
		t.Fatalf("GetAssetInfo failed: %v", err)
	}
	if info.Symbol != "MSFT" {
		t.Errorf("unexpected symbol %q", info.Symbol)
	}
}

func TestGetAssetInfoAllProvidersFail(t *testing.T) {
	down := &fakeProvider{name: "down", err: errors.New("timeout")}

	svc := newTestService([]interfaces.MarketDataProvider{down}, &fakeLLM{})

	if _, err := svc.GetAssetInfo(context.Background(), "AAPL", "stock"); err == nil {
		t.Fatal("expected error when all providers fail")
	}
}

func TestGetAssetInfoServesFromCache(t *testing.T) {
	provider := &fakeProvider{
		name: "only",
		info: &models.AssetInfo{Symbol: "BTC", Price: 60000, AssetType: models.AssetTypeCrypto},
	}

	svc := newTestService([]interfaces.MarketDataProvider{provider}, &fakeLLM{})

	for i := 0; i < 3; i++ {
		if _, err := svc.GetAssetInfo(context.Background(), "BTC", "crypto"); err != nil {
			t.Fatalf("GetAssetInfo failed: %v", err)
		}
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1 (cache should serve repeats)", provider.calls)
	}
}

func TestSearchAssetsReturnsFirstNonEmpty(t *testing.T) {
	empty := &fakeProvider{name: "empty"}
	full := &fakeProvider{
		name: "full",
		results: []models.AssetSearchResult{
			{Symbol: "TSLA", Name: "Tesla, Inc.", AssetType: models.AssetTypeStock},
		},
	}

	svc := newTestService([]interfaces.MarketDataProvider{empty, full}, &fakeLLM{})

	results, err := svc.SearchAssets(context.Background(), "tesla", "", 5)
	if err != nil {
		t.Fatalf("SearchAssets failed: %v", err)
	}
	if len(results) != 1 || results[0].Symbol != "TSLA" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestGetSimilarAssetsParsesAndEnriches(t *testing.T) {
	provider := &fakeProvider{
		name: "quotes",
		info: &models.AssetInfo{Symbol: "MSFT", Price: 400, AssetType: models.AssetTypeStock},
	}
	llmService := &fakeLLM{
		response: `{"assets":[{"symbol":"MSFT","name":"Microsoft","similarity_reason":"Large-cap tech peer"}]}`,
	}

	svc := newTestService([]interfaces.MarketDataProvider{provider}, llmService)

	assets, err := svc.GetSimilarAssets(context.Background(), "AAPL", "stock")
	if err != nil {
		t.Fatalf("GetSimilarAssets failed: %v", err)
	}
	if len(assets) != 1 {
		t.Fatalf("got %d assets, want 1", len(assets))
	}
	if assets[0].CurrentPrice != 400 {
		t.Errorf("similar asset price not enriched: %+v", assets[0])
	}
}

func TestGetSimilarAssetsLLMFailure(t *testing.T) {
	svc := newTestService(nil, &fakeLLM{err: errors.New("provider down")})
	svc.retryPolicy.MaxAttempts = 1

	if _, err := svc.GetSimilarAssets(context.Background(), "AAPL", "stock"); err == nil {
		t.Fatal("expected error when LLM fails")
	}
}
