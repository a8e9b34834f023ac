package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finlearn/internal/common"
	"github.com/ternarybob/finlearn/internal/interfaces"
	"github.com/ternarybob/finlearn/internal/services/scheduler"
	"gopkg.in/yaml.v3"
)

// SystemHandler serves health, version and API description endpoints.
type SystemHandler struct {
	llm       interfaces.LLMService
	scheduler *scheduler.Service
	logger    arbor.ILogger
	startedAt time.Time
}

func NewSystemHandler(llm interfaces.LLMService, sched *scheduler.Service, logger arbor.ILogger) *SystemHandler {
	return &SystemHandler{
		llm:       llm,
		scheduler: sched,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// HealthHandler handles GET /api/health
func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	payload := map[string]interface{}{
		"status":     "healthy",
		"uptime":     time.Since(h.startedAt).Round(time.Second).String(),
		"version":    common.Version,
		"model":      h.llm.GetModelInfo(),
		"goroutines": common.GetGoroutineCount(),
	}
	if h.scheduler != nil {
		running, lastRun, lastErr := h.scheduler.Status()
		schedStatus := map[string]interface{}{"running": running}
		if !lastRun.IsZero() {
			schedStatus["last_run"] = lastRun.Format(time.RFC3339)
		}
		if lastErr != "" {
			schedStatus["last_error"] = lastErr
		}
		payload["scheduler"] = schedStatus
	}
	WriteJSON(w, http.StatusOK, payload)
}

// VersionHandler handles GET /api/version
func (h *SystemHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.Version,
		"build":   common.Build,
		"commit":  common.GitCommit,
	})
}

type endpointDoc struct {
	Method      string `yaml:"method"`
	Path        string `yaml:"path"`
	Description string `yaml:"description"`
}

type apiDoc struct {
	Name      string        `yaml:"name"`
	Version   string        `yaml:"version"`
	Endpoints []endpointDoc `yaml:"endpoints"`
}

// SpecHandler handles GET /api/spec, returning a YAML description of the
// API surface.
func (h *SystemHandler) SpecHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	doc := apiDoc{
		Name:    "finlearn",
		Version: common.Version,
		Endpoints: []endpointDoc{
			{"GET", "/api/watchlist", "Enriched watchlist with live quotes"},
			{"POST", "/api/watchlist/search", "Search stocks and crypto"},
			{"POST", "/api/watchlist/add", "Add an asset to the watchlist"},
			{"DELETE", "/api/watchlist/remove", "Remove an asset from the watchlist"},
			{"GET", "/api/watchlist/research/{symbol}", "Narrative research report for an asset"},
			{"GET", "/api/learning/user/recommendedtopics", "Daily topics for selected categories"},
			{"GET", "/api/learning/article/topic/{topic_id}", "Generated article for a topic"},
			{"GET", "/api/learning/article/topic/{topic_id}/stream", "NDJSON streaming article generation"},
			{"POST", "/api/learning/article/read", "Record a completed article read"},
			{"POST", "/api/learning/tooltip/view", "Record a tooltip view"},
			{"GET", "/api/learning/summary", "Periodic learning recap"},
			{"GET", "/api/learning/user/daylog", "Activity log for one day"},
			{"GET", "/api/learning/user/streak", "Current reading streak"},
			{"GET", "/api/dashboard/home/essential", "Glossary, quote, streak and news strip"},
			{"GET", "/api/dashboard/home/news", "Trending finance news"},
			{"GET", "/api/dashboard/news/{news_id}", "Article generated from a news item"},
			{"GET", "/api/selectedcategories", "User category selections"},
			{"POST", "/api/selectedcategories", "Create category selections"},
			{"PUT", "/api/selectedcategories", "Replace category selections"},
			{"GET", "/api/selectedtopics", "User topic selections"},
			{"POST", "/api/selectedtopics", "Create topic selections"},
			{"PUT", "/api/selectedtopics", "Replace topic selections"},
			{"GET", "/api/health", "Service health"},
			{"GET", "/api/version", "Build information"},
		},
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
