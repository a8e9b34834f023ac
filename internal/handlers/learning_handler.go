package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finlearn/internal/common"
	"github.com/ternarybob/finlearn/internal/models"
	"github.com/ternarybob/finlearn/internal/services/activity"
	"github.com/ternarybob/finlearn/internal/services/content"
)

// LearningHandler serves the personalized learning endpoints: recommended
// topics, generated articles, activity logging and reading summaries.
type LearningHandler struct {
	topics   *content.TopicService
	articles *content.ArticleService
	summary  *content.SummaryService
	tracker  *activity.Tracker
	logger   arbor.ILogger
}

func NewLearningHandler(topics *content.TopicService, articles *content.ArticleService, summary *content.SummaryService, tracker *activity.Tracker, logger arbor.ILogger) *LearningHandler {
	return &LearningHandler{
		topics:   topics,
		articles: articles,
		summary:  summary,
		tracker:  tracker,
		logger:   logger,
	}
}

// RecommendedTopicsHandler handles GET /api/learning/user/recommendedtopics
func (h *LearningHandler) RecommendedTopicsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	lists, err := h.topics.GetRecommendedTopics(r.Context(), userID,
		r.URL.Query().Get("category"), QueryBool(r, "refresh"))
	if err != nil {
		WriteStorageError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"recommendations": lists})
}

// ArticleHandler handles GET /api/learning/article/topic/{topic_id} and its
// /stream variant. Fetching an article counts as viewing the topic, logged
// in the background so the response doesn't wait on it.
func (h *LearningHandler) ArticleHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/learning/article/topic/")
	topicID := rest
	stream := false
	if strings.HasSuffix(rest, "/stream") {
		topicID = strings.TrimSuffix(rest, "/stream")
		stream = true
	}
	if topicID == "" || strings.Contains(topicID, "/") {
		WriteError(w, http.StatusBadRequest, "topic_id is required")
		return
	}

	topic, err := h.topics.GetTopicByID(r.Context(), topicID)
	if err != nil {
		WriteStorageError(w, err)
		return
	}

	level := r.URL.Query().Get("level")
	if level == "" {
		level = string(topic.Level)
	}
	refresh := QueryBool(r, "refresh")

	common.SafeGo(h.logger, "trackTopicView", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.tracker.TrackViewedTopic(ctx, userID, topic); err != nil {
			h.logger.Warn().Err(err).Str("user_id", userID).Str("topic_id", topic.ID).Msg("Failed to record topic view")
		}
	})

	if stream {
		h.streamArticle(w, r, topic, level, refresh)
		return
	}

	article, err := h.articles.GetArticle(r.Context(), topic, level, refresh)
	if err != nil {
		WriteStorageError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, article)
}

// streamArticle writes the generation lifecycle as NDJSON, flushing after
// every record so clients render progress as it happens.
func (h *LearningHandler) streamArticle(w http.ResponseWriter, r *http.Request, topic *models.Topic, level string, refresh bool) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	encoder := json.NewEncoder(w)

	err := h.articles.StreamArticle(r.Context(), topic, level, refresh, func(ev content.StreamEvent) error {
		if err := encoder.Encode(ev); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		// Headers are gone; emit a terminal error record instead.
		_ = encoder.Encode(content.StreamEvent{Type: "error", Message: err.Error()})
		if flusher != nil {
			flusher.Flush()
		}
	}
}

type tooltipViewRequest struct {
	UserID    string `json:"user_id" validate:"required,min=3,max=64,userid"`
	Word      string `json:"word" validate:"required,max=100"`
	Tooltip   string `json:"tooltip" validate:"omitempty,max=1000"`
	FromTopic string `json:"from_topic" validate:"omitempty,max=100"`
}

// TooltipViewHandler handles POST /api/learning/tooltip/view
func (h *LearningHandler) TooltipViewHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req tooltipViewRequest
	if !DecodeBody(w, r, &req) {
		return
	}

	if err := h.tracker.LogTooltipView(r.Context(), req.UserID, req.Word, req.Tooltip, req.FromTopic); err != nil {
		WriteStorageError(w, err)
		return
	}
	WriteSuccess(w, "tooltip view recorded")
}

type articleReadRequest struct {
	UserID  string `json:"user_id" validate:"required,min=3,max=64,userid"`
	TopicID string `json:"topic_id" validate:"required,max=100"`
	Title   string `json:"title" validate:"omitempty,max=300"`
	Level   string `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
}

// ArticleReadHandler handles POST /api/learning/article/read
func (h *LearningHandler) ArticleReadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req articleReadRequest
	if !DecodeBody(w, r, &req) {
		return
	}

	if err := h.tracker.LogTopicRead(r.Context(), req.UserID, req.TopicID, req.Title, req.Level); err != nil {
		WriteStorageError(w, err)
		return
	}
	WriteSuccess(w, "article read recorded")
}

// SummaryHandler handles GET /api/learning/summary
func (h *LearningHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	summary, err := h.summary.GetUserSummary(r.Context(), userID,
		r.URL.Query().Get("period"),
		r.URL.Query().Get("start_date"),
		r.URL.Query().Get("end_date"),
		QueryBool(r, "refresh"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

// DayLogHandler handles GET /api/learning/user/daylog
func (h *LearningHandler) DayLogHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	log, err := h.tracker.DayLog(r.Context(), userID, date)
	if err != nil {
		WriteStorageError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, log)
}

// StreakHandler handles GET /api/learning/user/streak
func (h *LearningHandler) StreakHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	streak, err := h.tracker.GetStreak(r.Context(), userID)
	if err != nil {
		WriteStorageError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, streak)
}
