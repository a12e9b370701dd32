package providers

import (
	"fmt"

	"github.com/docsentry/docsentry/internal/llm"
)

// NewProvider creates a reasoning-service provider based on the given name.
func NewProvider(name string, cfg llm.ProviderConfig) (llm.Provider, error) {
	switch name {
	case "anthropic":
		return NewAnthropicProvider(cfg)

	case "openai":
		return NewOpenAIProvider(cfg)

	case "ollama":
		return NewOllamaProvider(cfg)

	case "mock":
		return NewMockProvider([]string{"Mock response"}), nil

	default:
		return nil, llm.NewInvalidRequestError(fmt.Sprintf("unknown provider type: %s", name))
	}
}
