package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finlearn/internal/services/content"
	"github.com/ternarybob/finlearn/internal/services/watchlist"
)

// WatchlistHandler serves the watchlist and asset research endpoints.
type WatchlistHandler struct {
	service  *watchlist.Service
	research *content.ResearchService
	logger   arbor.ILogger
}

func NewWatchlistHandler(service *watchlist.Service, research *content.ResearchService, logger arbor.ILogger) *WatchlistHandler {
	return &WatchlistHandler{
		service:  service,
		research: research,
		logger:   logger,
	}
}

// GetWatchlistHandler handles GET /api/watchlist
func (h *WatchlistHandler) GetWatchlistHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	items, err := h.service.GetWatchlist(r.Context(), userID,
		r.URL.Query().Get("asset_type"), QueryBool(r, "include_similar"))
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to load watchlist")
		WriteStorageError(w, err)
		return
	}
	payload := map[string]interface{}{"assets": items}
	if len(items) == 0 {
		payload["message"] = "Your watchlist is empty. Add stocks or crypto to track them here."
	}
	WriteJSON(w, http.StatusOK, payload)
}

type searchRequest struct {
	Query     string `json:"query" validate:"required,min=1,max=100"`
	AssetType string `json:"asset_type" validate:"omitempty,oneof=stock crypto cryptocurrency"`
	Limit     int    `json:"limit" validate:"omitempty,min=1,max=25"`
}

// SearchHandler handles POST /api/watchlist/search
func (h *WatchlistHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req searchRequest
	if !DecodeBody(w, r, &req) {
		return
	}

	results, err := h.service.Search(r.Context(), req.Query, req.AssetType, req.Limit)
	if err != nil {
		h.logger.Warn().Err(err).Str("query", req.Query).Msg("Asset search failed")
		WriteError(w, http.StatusBadGateway, "asset search unavailable")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

type addAssetRequest struct {
	Symbol    string `json:"symbol" validate:"required,min=1,max=20"`
	AssetType string `json:"asset_type" validate:"required,oneof=stock crypto cryptocurrency"`
	Notes     string `json:"notes" validate:"omitempty,max=500"`
}

// AddHandler handles POST /api/watchlist/add
func (h *WatchlistHandler) AddHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	var req addAssetRequest
	if !DecodeBody(w, r, &req) {
		return
	}

	result, err := h.service.AddAsset(r.Context(), userID, req.Symbol, req.AssetType, req.Notes)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Str("symbol", req.Symbol).Msg("Failed to add watchlist asset")
		WriteStorageError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// RemoveHandler handles DELETE /api/watchlist/remove
func (h *WatchlistHandler) RemoveHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	list, err := h.service.RemoveAsset(r.Context(), userID, symbol, r.URL.Query().Get("asset_type"))
	if err != nil {
		WriteStorageError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"watchlist": list})
}

// ResearchHandler handles GET /api/watchlist/research/{symbol}
func (h *WatchlistHandler) ResearchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	symbol := strings.TrimPrefix(r.URL.Path, "/api/watchlist/research/")
	if symbol == "" || strings.Contains(symbol, "/") {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	report, err := h.research.GetResearch(r.Context(), symbol,
		r.URL.Query().Get("asset_type"),
		r.URL.Query().Get("level"),
		QueryBool(r, "include_comparison"),
		QueryBool(r, "include_news"),
		QueryBool(r, "refresh"))
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Str("symbol", symbol).Msg("Research generation failed")
		WriteStorageError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}
