package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finlearn/internal/common"
	"github.com/ternarybob/finlearn/internal/services/activity"
	"github.com/ternarybob/finlearn/internal/services/content"
)

// DashboardHandler serves the home dashboard and trending news endpoints.
type DashboardHandler struct {
	dashboard *content.DashboardService
	news      *content.NewsService
	tracker   *activity.Tracker
	logger    arbor.ILogger
}

func NewDashboardHandler(dashboard *content.DashboardService, news *content.NewsService, tracker *activity.Tracker, logger arbor.ILogger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		news:      news,
		tracker:   tracker,
		logger:    logger,
	}
}

// EssentialHandler handles GET /api/dashboard/home/essential
func (h *DashboardHandler) EssentialHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	refresh := QueryBool(r, "refresh")
	if refresh {
		h.dashboard.ClearDailyCaches()
	}

	payload, err := h.dashboard.GetEssential(r.Context(), userID, refresh)
	if err != nil {
		WriteStorageError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, payload)
}

// HomeNewsHandler handles GET /api/dashboard/home/news
func (h *DashboardHandler) HomeNewsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if _, ok := RequireUserID(w, r); !ok {
		return
	}

	level := r.URL.Query().Get("level")
	if level == "" {
		level = "beginner"
	}

	snapshot, err := h.news.GetTrendingNews(r.Context(), level, nil,
		QueryInt(r, "limit", 0), QueryBool(r, "refresh"))
	if err != nil {
		WriteStorageError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, snapshot)
}

// NewsArticleHandler handles GET /api/dashboard/news/{news_id}
func (h *DashboardHandler) NewsArticleHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	newsID := strings.TrimPrefix(r.URL.Path, "/api/dashboard/news/")
	if newsID == "" || strings.Contains(newsID, "/") {
		WriteError(w, http.StatusBadRequest, "news_id is required")
		return
	}

	level := r.URL.Query().Get("level")
	if level == "" {
		level = "beginner"
	}

	article, err := h.news.GetNewsArticle(r.Context(), newsID, level, QueryBool(r, "refresh"))
	if err != nil {
		WriteStorageError(w, err)
		return
	}

	common.SafeGo(h.logger, "trackNewsView", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.tracker.TrackNewsView(ctx, userID, newsID, article.Title); err != nil {
			h.logger.Warn().Err(err).Str("user_id", userID).Str("news_id", newsID).Msg("Failed to record news view")
		}
	})

	WriteJSON(w, http.StatusOK, article)
}
