package llm

import (
	"context"

	"github.com/docsentry/docsentry/internal/types"
)

// Provider defines the interface every reasoning-service backend must
// implement. It provides a unified abstraction over LLM services
// (Anthropic Claude, OpenAI GPT, local models, etc.).
type Provider interface {
	// Name returns the provider name (e.g., "anthropic", "openai", "ollama")
	Name() string

	// Models returns information about all available models for this provider
	Models(ctx context.Context) ([]ModelInfo, error)

	// Complete sends a completion request and returns the full response.
	// This is a blocking call that waits for the entire response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Health checks the health status of the provider and its connectivity
	Health(ctx context.Context) types.HealthStatus
}

// ModelInfo contains metadata about a model.
type ModelInfo struct {
	// Name is the model identifier (e.g., "claude-sonnet-4-5", "gpt-4")
	Name string `json:"name"`

	// ContextWindow is the maximum number of tokens the model can process
	ContextWindow int `json:"context_window"`

	// Features lists the capabilities this model supports
	Features []string `json:"features"`

	// MaxOutput is the maximum number of tokens the model can generate
	MaxOutput int `json:"max_output"`
}

// SupportsFeature checks if the model supports a given feature
func (m ModelInfo) SupportsFeature(feature string) bool {
	for _, f := range m.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// ProviderConfig carries the provider-level settings used to construct a
// concrete Provider.
type ProviderConfig struct {
	APIKey       string  `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL      string  `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`
	DefaultModel string  `json:"default_model,omitempty" yaml:"default_model,omitempty" mapstructure:"default_model"`
	Temperature  float64 `json:"temperature,omitempty" yaml:"temperature,omitempty" mapstructure:"temperature"`
}
