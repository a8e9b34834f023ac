package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finlearn/internal/common"
	"github.com/ternarybob/finlearn/internal/interfaces"
	"golang.org/x/time/rate"
)

const defaultPerplexityBaseURL = "https://api.perplexity.ai"

// PerplexityService implements the LLMService interface against the
// Perplexity chat completions API. It is the default provider for everyday
// content generation (topics, articles, news) because of its speed and
// built-in web grounding.
type PerplexityService struct {
	config     *common.PerplexityConfig
	logger     arbor.ILogger
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string               `json:"model"`
	Messages       []chatMessage        `json:"messages"`
	Temperature    float32              `json:"temperature,omitempty"`
	MaxTokens      int                  `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormatParam `json:"response_format,omitempty"`
}

type responseFormatParam struct {
	Type       string           `json:"type"`
	JSONSchema jsonSchemaHolder `json:"json_schema"`
}

type jsonSchemaHolder struct {
	Schema map[string]interface{} `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewPerplexityService creates a Perplexity-backed LLM service
func NewPerplexityService(cfg *common.PerplexityConfig, logger arbor.ILogger) (*PerplexityService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Perplexity API key is required (set via PERPLEXITY_API_KEY, FINLEARN_PERPLEXITY_API_KEY, or llm.perplexity.api_key in config)")
	}

	if cfg.Model == "" {
		cfg.Model = "sonar"
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultPerplexityBaseURL
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", cfg.Timeout, err)
	}

	interval, err := time.ParseDuration(cfg.RateLimit)
	if err != nil || interval <= 0 {
		interval = time.Second
	}

	service := &PerplexityService{
		config:     cfg,
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		baseURL:    baseURL,
	}

	logger.Debug().
		Str("model", cfg.Model).
		Str("base_url", baseURL).
		Dur("timeout", timeout).
		Msg("Perplexity LLM service initialized successfully")

	return service, nil
}

// Generate produces a completion for the request. Structured requests use
// the API's json_schema response format, so the returned text is a JSON
// document matching the schema.
func (s *PerplexityService) Generate(ctx context.Context, req *interfaces.GenerationRequest) (string, error) {
	if req == nil || strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait failed: %w", err)
	}

	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	temperature := req.Temperature
	if temperature <= 0 {
		temperature = s.config.Temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.config.MaxTokens
	}

	body := chatRequest{
		Model:       s.config.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	if req.Schema != nil {
		body.ResponseFormat = &responseFormatParam{
			Type:       "json_schema",
			JSONSchema: jsonSchemaHolder{Schema: req.Schema},
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("Perplexity API call failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Perplexity API returned status %d: %s", resp.StatusCode, truncateBody(data))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse chat response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("Perplexity API error (%s): %s", parsed.Error.Type, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("no response generated from Perplexity API")
	}

	text := parsed.Choices[0].Message.Content
	if req.Schema != nil {
		text = extractJSON(text)
	}

	s.logger.Debug().
		Str("model", s.config.Model).
		Dur("duration", time.Since(start)).
		Int("response_length", len(text)).
		Bool("structured", req.Schema != nil).
		Msg("Perplexity completion generated")

	return text, nil
}

// GetModelInfo returns information about the active Perplexity model
func (s *PerplexityService) GetModelInfo() string {
	return fmt.Sprintf("perplexity:%s", s.config.Model)
}

// Close releases service resources
func (s *PerplexityService) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

func truncateBody(data []byte) string {
	const maxLen = 512
	text := strings.TrimSpace(string(data))
	if len(text) > maxLen {
		return text[:maxLen] + "..."
	}
	return text
}
