package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ternarybob/finlearn/internal/common"
	"github.com/ternarybob/finlearn/internal/models"
	"github.com/ternarybob/finlearn/internal/services/watchlist"
)

type fakeWatchlistStorage struct {
	lists map[string]*models.Watchlist
}

func newFakeWatchlistStorage() *fakeWatchlistStorage {
	return &fakeWatchlistStorage{lists: make(map[string]*models.Watchlist)}
}

func (f *fakeWatchlistStorage) Get(ctx context.Context, userID string) (*models.Watchlist, error) {
	if list, ok := f.lists[userID]; ok {
		return list, nil
	}
	return &models.Watchlist{UserID: userID}, nil
}

func (f *fakeWatchlistStorage) Upsert(ctx context.Context, userID string, fn func(w *models.Watchlist) error) (*models.Watchlist, error) {
	list, _ := f.Get(ctx, userID)
	if err := fn(list); err != nil {
		return nil, err
	}
	f.lists[userID] = list
	return list, nil
}

type fakeMarketData struct{}

func (f *fakeMarketData) GetAssetInfo(ctx context.Context, symbol, assetType string) (*models.AssetInfo, error) {
	return &models.AssetInfo{Symbol: symbol, Name: "Test Asset", Price: 100, Currency: "USD"}, nil
}

func (f *fakeMarketData) SearchAssets(ctx context.Context, query, assetType string, limit int) ([]models.AssetSearchResult, error) {
	return nil, nil
}

func (f *fakeMarketData) GetSimilarAssets(ctx context.Context, symbol, assetType string) ([]models.SimilarAsset, error) {
	return nil, nil
}

func TestGetWatchlistEmptyStateMessage(t *testing.T) {
	logger := common.GetLogger()
	storage := newFakeWatchlistStorage()
	service := watchlist.NewService(storage, &fakeMarketData{}, logger)
	h := NewWatchlistHandler(service, nil, logger)

	r := httptest.NewRequest(http.MethodGet, "/api/watchlist?user_id=user-1", nil)
	w := httptest.NewRecorder()
	h.GetWatchlistHandler(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var payload struct {
		Assets  []models.EnrichedWatchlistItem `json:"assets"`
		Message string                         `json:"message"`
	}
	if err := json.NewDecoder(w.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Assets) != 0 {
		t.Errorf("assets = %v, want empty", payload.Assets)
	}
	if payload.Message == "" {
		t.Error("empty watchlist response carries no message")
	}

	// Once an asset exists the message disappears
	storage.lists["user-1"] = &models.Watchlist{
		UserID: "user-1",
		Items: []models.WatchlistItem{
			{Symbol: "AAPL", AssetType: models.AssetTypeStock, AddedAt: time.Now()},
		},
	}
	r = httptest.NewRequest(http.MethodGet, "/api/watchlist?user_id=user-1", nil)
	w = httptest.NewRecorder()
	h.GetWatchlistHandler(w, r)

	payload.Assets = nil
	payload.Message = ""
	if err := json.NewDecoder(w.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Assets) != 1 {
		t.Fatalf("assets = %d, want 1", len(payload.Assets))
	}
	if payload.Message != "" {
		t.Errorf("message = %q, want empty for populated watchlist", payload.Message)
	}
}
