package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finlearn/internal/models"
	"github.com/ternarybob/finlearn/internal/services/content"
)

// Service pre-warms expensive caches on a cron schedule so the first
// morning request per level doesn't pay the generation cost. Currently one
// job: refreshing the trending news snapshot for every expertise level.
type Service struct {
	news     *content.NewsService
	cron     *cron.Cron
	logger   arbor.ILogger
	mu       sync.Mutex
	running  bool
	lastRun  time.Time
	lastErr  string
	schedule string
}

func NewService(news *content.NewsService, schedule string, logger arbor.ILogger) *Service {
	if schedule == "" {
		schedule = "0 6 * * *" // Default: daily at 06:00
	}
	return &Service{
		news:     news,
		cron:     cron.New(),
		logger:   logger,
		schedule: schedule,
	}
}

// Start registers the pre-warm job and starts the cron loop.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := s.cron.AddFunc(s.schedule, s.prewarmTrending); err != nil {
		return fmt.Errorf("invalid trending schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info().Str("schedule", s.schedule).Msg("Scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info().Msg("Scheduler stopped")
}

// Status reports the last pre-warm run for the health endpoint.
func (s *Service) Status() (running bool, lastRun time.Time, lastErr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running, s.lastRun, s.lastErr
}

func (s *Service) prewarmTrending() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	var firstErr error
	levels := []models.ExpertiseLevel{models.LevelBeginner, models.LevelIntermediate, models.LevelAdvanced}
	for _, level := range levels {
		if _, err := s.news.GetTrendingNews(ctx, string(level), nil, 0, true); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	s.mu.Lock()
	s.lastRun = time.Now()
	if firstErr != nil {
		s.lastErr = firstErr.Error()
	} else {
		s.lastErr = ""
	}
	s.mu.Unlock()

	if firstErr != nil {
		s.logger.Warn().Err(firstErr).Dur("duration", time.Since(start)).Msg("Trending news pre-warm completed with errors")
		return
	}
	s.logger.Info().Dur("duration", time.Since(start)).Msg("Trending news pre-warm completed")
}
