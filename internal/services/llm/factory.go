package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finlearn/internal/common"
	"github.com/ternarybob/finlearn/internal/interfaces"
)

// Services bundles the two provider roles. Content handles everyday
// generation (topics, articles, news); Research handles deep asset research.
// The two may share one underlying service when only one provider is
// configured.
type Services struct {
	Content  interfaces.LLMService
	Research interfaces.LLMService
}

// Close shuts down both providers, tolerating a shared instance.
func (s *Services) Close() error {
	var firstErr error
	if s.Content != nil {
		if err := s.Content.Close(); err != nil {
			firstErr = err
		}
	}
	if s.Research != nil && s.Research != s.Content {
		if err := s.Research.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewServices creates the configured LLM providers. The content provider is
// required; when the research provider cannot be initialized (typically a
// missing API key) research falls back to the content provider with a
// warning rather than failing startup.
func NewServices(cfg *common.LLMConfig, logger arbor.ILogger) (*Services, error) {
	logger.Info().
		Str("default_provider", string(cfg.DefaultProvider)).
		Str("research_provider", string(cfg.ResearchProvider)).
		Msg("Initializing LLM services")

	built := map[common.LLMProvider]interfaces.LLMService{}

	build := func(provider common.LLMProvider) (interfaces.LLMService, error) {
		if svc, ok := built[provider]; ok {
			return svc, nil
		}
		var (
			svc interfaces.LLMService
			err error
		)
		switch provider {
		case common.LLMProviderPerplexity:
			svc, err = NewPerplexityService(&cfg.Perplexity, logger)
		case common.LLMProviderClaude:
			svc, err = NewClaudeService(&cfg.Claude, logger)
		default:
			err = fmt.Errorf("unsupported LLM provider '%s': must be 'perplexity' or 'claude'", provider)
		}
		if err != nil {
			return nil, err
		}
		built[provider] = svc
		return svc, nil
	}

	content, err := build(cfg.DefaultProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create content provider: %w", err)
	}

	research, err := build(cfg.ResearchProvider)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("research_provider", string(cfg.ResearchProvider)).
			Msg("Research provider unavailable, falling back to content provider")
		research = content
	}

	return &Services{Content: content, Research: research}, nil
}
