package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finlearn/internal/common"
	"github.com/ternarybob/finlearn/internal/interfaces"
)

// ClaudeService implements the LLMService interface using the Anthropic
// Claude API. It is the research-grade provider: slower and more expensive
// than Perplexity, used for deep asset research and as a fallback.
type ClaudeService struct {
	config    *common.ClaudeConfig
	logger    arbor.ILogger
	client    anthropic.Client
	timeout   time.Duration
	maxTokens int
}

// NewClaudeService creates a new Claude LLM service instance.
//
// The service initialization includes:
//  1. Validating the Anthropic API key
//  2. Setting default model name if not specified
//  3. Parsing timeout duration from configuration
//  4. Initializing the Claude client
//
// Parameters:
//   - claudeConfig: Claude configuration with API key and model settings
//   - logger: Structured logger for service operations
//
// Returns:
//   - *ClaudeService: Initialized service ready for use
//   - error: nil on success, error with details on failure
func NewClaudeService(claudeConfig *common.ClaudeConfig, logger arbor.ILogger) (*ClaudeService, error) {
	if claudeConfig.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required for Claude service (set via ANTHROPIC_API_KEY, FINLEARN_CLAUDE_API_KEY, or llm.claude.api_key in config)")
	}

	// Set default model name if not specified
	if claudeConfig.Model == "" {
		claudeConfig.Model = "claude-sonnet-4-20250514"
	}

	// Parse timeout duration
	timeout, err := time.ParseDuration(claudeConfig.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", claudeConfig.Timeout, err)
	}

	// Set default max tokens
	maxTokens := claudeConfig.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}

	client := anthropic.NewClient(
		option.WithAPIKey(claudeConfig.APIKey),
	)

	service := &ClaudeService{
		config:    claudeConfig,
		logger:    logger,
		client:    client,
		timeout:   timeout,
		maxTokens: maxTokens,
	}

	logger.Debug().
		Str("model", claudeConfig.Model).
		Dur("timeout", timeout).
		Float32("temperature", claudeConfig.Temperature).
		Int("max_tokens", maxTokens).
		Msg("Claude LLM service initialized successfully")

	return service, nil
}

// Generate produces a completion for the request. Claude has no native
// JSON-schema response mode, so structured requests embed the schema in the
// prompt and instruct the model to answer with JSON only.
func (s *ClaudeService) Generate(ctx context.Context, req *interfaces.GenerationRequest) (string, error) {
	if req == nil || strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := req.Prompt
	if req.Schema != nil {
		schemaJSON, err := json.Marshal(req.Schema)
		if err != nil {
			return "", fmt.Errorf("failed to marshal response schema: %w", err)
		}
		prompt = fmt.Sprintf("%s\n\nRespond with a single JSON object conforming to this JSON schema, with no surrounding text or markdown fences:\n%s", req.Prompt, schemaJSON)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: int64(s.maxTokensFor(req)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	temperature := req.Temperature
	if temperature <= 0 {
		temperature = s.config.Temperature
	}
	if temperature > 0 {
		params.Temperature = anthropic.Float(float64(temperature))
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}

	start := time.Now()
	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	// Extract text from response
	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from Claude API")
	}

	text := response.String()
	if req.Schema != nil {
		text = extractJSON(text)
	}

	s.logger.Debug().
		Str("model", s.config.Model).
		Dur("duration", time.Since(start)).
		Int("response_length", len(text)).
		Bool("structured", req.Schema != nil).
		Msg("Claude completion generated")

	return text, nil
}

func (s *ClaudeService) maxTokensFor(req *interfaces.GenerationRequest) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return s.maxTokens
}

// GetModelInfo returns information about the active Claude model
func (s *ClaudeService) GetModelInfo() string {
	return fmt.Sprintf("claude:%s", s.config.Model)
}

// Close releases service resources. The Claude client holds no persistent
// connections, so this is a no-op.
func (s *ClaudeService) Close() error {
	return nil
}

// extractJSON strips markdown fences and leading or trailing prose that
// models occasionally wrap around a structured response.
func extractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if fenced := strings.Index(trimmed, "```"); fenced >= 0 {
		trimmed = trimmed[fenced+3:]
		trimmed = strings.TrimPrefix(trimmed, "json")
		if end := strings.Index(trimmed, "```"); end >= 0 {
			trimmed = trimmed[:end]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.IndexAny(trimmed, "{[")
	if start < 0 {
		return trimmed
	}
	var end int
	if trimmed[start] == '{' {
		end = strings.LastIndex(trimmed, "}")
	} else {
		end = strings.LastIndex(trimmed, "]")
	}
	if end <= start {
		return trimmed
	}
	return trimmed[start : end+1]
}
