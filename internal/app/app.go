package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finlearn/internal/common"
	"github.com/ternarybob/finlearn/internal/handlers"
	"github.com/ternarybob/finlearn/internal/interfaces"
	"github.com/ternarybob/finlearn/internal/services/activity"
	"github.com/ternarybob/finlearn/internal/services/cache"
	"github.com/ternarybob/finlearn/internal/services/content"
	"github.com/ternarybob/finlearn/internal/services/llm"
	"github.com/ternarybob/finlearn/internal/services/marketdata"
	"github.com/ternarybob/finlearn/internal/services/scheduler"
	"github.com/ternarybob/finlearn/internal/services/watchlist"
	badgerstore "github.com/ternarybob/finlearn/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Generation and data services
	LLMServices       *llm.Services
	MarketDataService interfaces.MarketDataService
	CacheStore        *cache.Store
	Tracker           *activity.Tracker
	TopicService      *content.TopicService
	ArticleService    *content.ArticleService
	NewsService       *content.NewsService
	ResearchService   *content.ResearchService
	SummaryService    *content.SummaryService
	DashboardService  *content.DashboardService
	WatchlistService  *watchlist.Service
	SchedulerService  *scheduler.Service

	// HTTP handlers
	WatchlistHandler   *handlers.WatchlistHandler
	LearningHandler    *handlers.LearningHandler
	DashboardHandler   *handlers.DashboardHandler
	PreferencesHandler *handlers.PreferencesHandler
	SystemHandler      *handlers.SystemHandler
}

// New creates the application with all services wired. Construction order:
// storage, LLM providers, market data, domain services, handlers.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	storageManager, err := badgerstore.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	a.StorageManager = storageManager

	llmServices, err := llm.NewServices(&cfg.LLM, logger)
	if err != nil {
		a.StorageManager.Close()
		return nil, fmt.Errorf("failed to initialize LLM services: %w", err)
	}
	a.LLMServices = llmServices

	marketDataService, err := marketdata.NewService(&cfg.MarketData, llmServices.Content, logger,
		common.DurationOr(cfg.Cache.AssetInfoTTL, 5*time.Minute),
		common.DurationOr(cfg.Cache.AssetSearchTTL, 10*time.Minute))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize market data service: %w", err)
	}
	a.MarketDataService = marketDataService

	a.CacheStore = cache.NewStore(a.StorageManager.CacheStorage(), logger)
	a.Tracker = activity.NewTracker(a.StorageManager.ActivityStorage(), a.StorageManager.StreakStorage(), logger)

	a.TopicService = content.NewTopicService(llmServices.Content, a.CacheStore,
		a.StorageManager.PreferenceStorage(), logger, content.TopicOptions{
			TopicsTTL:      common.DurationOr(cfg.Cache.TopicsTTL, 72*time.Hour),
			PreferencesTTL: common.DurationOr(cfg.Cache.PreferencesTTL, 5*time.Minute),
			TopicByIDTTL:   common.DurationOr(cfg.Cache.TopicByIDTTL, 30*time.Minute),
		})
	a.ArticleService = content.NewArticleService(llmServices.Content, a.CacheStore, logger,
		common.DurationOr(cfg.Cache.ArticlesTTL, 168*time.Hour))
	a.NewsService = content.NewNewsService(llmServices.Content, a.CacheStore, logger, content.NewsOptions{
		TrendingTTL:    common.DurationOr(cfg.Cache.TrendingTTL, 24*time.Hour),
		NewsArticleTTL: common.DurationOr(cfg.Cache.NewsArticleTTL, 72*time.Hour),
	})
	a.ResearchService = content.NewResearchService(llmServices.Research, a.MarketDataService,
		a.CacheStore, logger, common.DurationOr(cfg.Cache.ResearchTTL, 24*time.Hour))
	a.SummaryService = content.NewSummaryService(llmServices.Content, a.CacheStore,
		a.StorageManager.ActivityStorage(), a.StorageManager.StreakStorage(), logger,
		common.DurationOr(cfg.Cache.SummaryTTL, 4*time.Hour))
	a.DashboardService = content.NewDashboardService(llmServices.Content, a.NewsService,
		a.StorageManager.StreakStorage(), a.StorageManager.PreferenceStorage(), logger)
	a.WatchlistService = watchlist.NewService(a.StorageManager.WatchlistStorage(), a.MarketDataService, logger)

	if cfg.Scheduler.Enabled {
		a.SchedulerService = scheduler.NewService(a.NewsService, cfg.Scheduler.TrendingSchedule, logger)
	}

	a.WatchlistHandler = handlers.NewWatchlistHandler(a.WatchlistService, a.ResearchService, logger)
	a.LearningHandler = handlers.NewLearningHandler(a.TopicService, a.ArticleService, a.SummaryService, a.Tracker, logger)
	a.DashboardHandler = handlers.NewDashboardHandler(a.DashboardService, a.NewsService, a.Tracker, logger)
	a.PreferencesHandler = handlers.NewPreferencesHandler(a.StorageManager.PreferenceStorage(), a.TopicService, logger)
	a.SystemHandler = handlers.NewSystemHandler(llmServices.Content, a.SchedulerService, logger)

	logger.Info().Str("environment", cfg.Environment).Msg("Application initialized")
	return a, nil
}

// Start launches background components.
func (a *App) Start(ctx context.Context) error {
	if a.SchedulerService != nil {
		if err := a.SchedulerService.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}
	return nil
}

// Close shuts down background components and releases resources.
func (a *App) Close() {
	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}
	if a.LLMServices != nil {
		if err := a.LLMServices.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("LLM shutdown reported an error")
		}
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Storage shutdown reported an error")
		}
	}
}
