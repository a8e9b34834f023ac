package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Watchlist
	mux.HandleFunc("/api/watchlist", s.app.WatchlistHandler.GetWatchlistHandler)
	mux.HandleFunc("/api/watchlist/search", s.app.WatchlistHandler.SearchHandler)
	mux.HandleFunc("/api/watchlist/add", s.app.WatchlistHandler.AddHandler)
	mux.HandleFunc("/api/watchlist/remove", s.app.WatchlistHandler.RemoveHandler)
	mux.HandleFunc("/api/watchlist/research/", s.app.WatchlistHandler.ResearchHandler) // GET /{symbol}

	// API routes - Learning
	mux.HandleFunc("/api/learning/user/recommendedtopics", s.app.LearningHandler.RecommendedTopicsHandler)
	mux.HandleFunc("/api/learning/user/daylog", s.app.LearningHandler.DayLogHandler)
	mux.HandleFunc("/api/learning/user/streak", s.app.LearningHandler.StreakHandler)
	mux.HandleFunc("/api/learning/article/topic/", s.app.LearningHandler.ArticleHandler) // GET /{topic_id}[/stream]
	mux.HandleFunc("/api/learning/article/read", s.app.LearningHandler.ArticleReadHandler)
	mux.HandleFunc("/api/learning/tooltip/view", s.app.LearningHandler.TooltipViewHandler)
	mux.HandleFunc("/api/learning/summary", s.app.LearningHandler.SummaryHandler)

	// API routes - Dashboard
	mux.HandleFunc("/api/dashboard/home/essential", s.app.DashboardHandler.EssentialHandler)
	mux.HandleFunc("/api/dashboard/home/news", s.app.DashboardHandler.HomeNewsHandler)
	mux.HandleFunc("/api/dashboard/news/", s.app.DashboardHandler.NewsArticleHandler) // GET /{news_id}

	// API routes - Preferences
	mux.HandleFunc("/api/selectedcategories", s.app.PreferencesHandler.SelectedCategoriesHandler)
	mux.HandleFunc("/api/selectedtopics", s.app.PreferencesHandler.SelectedTopicsHandler)

	// API routes - System
	mux.HandleFunc("/api/health", s.app.SystemHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.SystemHandler.VersionHandler)
	mux.HandleFunc("/api/spec", s.app.SystemHandler.SpecHandler)

	return mux
}
