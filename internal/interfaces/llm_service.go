package interfaces

import "context"

// GenerationRequest is a provider-agnostic content generation request.
// When Schema is set, the provider must return JSON conforming to it.
type GenerationRequest struct {
	System      string
	Prompt      string
	Schema      map[string]interface{} // JSON schema for structured output, nil for free text
	Temperature float32
	MaxTokens   int
}

// LLMService defines the interface for AI content generation
type LLMService interface {
	// Generate returns the raw completion text for the request. Structured
	// requests return a JSON document matching the schema.
	Generate(ctx context.Context, req *GenerationRequest) (string, error)

	// GetModelInfo returns information about the active model
	GetModelInfo() string

	Close() error
}
