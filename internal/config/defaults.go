package config

import (
	"path/filepath"
	"time"
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{
			OutputDir:      "output",
			Rounds:         2,
			Timeout:        5 * time.Minute,
			PhraseTemplate: "{subject} security controls best practices compliance",
		},
		LLM: LLMConfig{
			DefaultProvider: "anthropic",
			Temperature:     0.1,
		},
		Docs: DocsConfig{
			Provider: "mcp",
			Endpoint: "http://localhost:8089/mcp",
		},
		Store: StoreConfig{
			IndexPath: filepath.Join("output", "runs.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled: false,
		},
	}
}
