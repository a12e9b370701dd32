// Package config defines and loads the analyzer configuration: YAML files
// with ${VAR} environment interpolation, defaults, and validation.
package config

import (
	"time"

	"github.com/docsentry/docsentry/internal/llm"
)

// Config is the root configuration for the analyzer.
type Config struct {
	Core    CoreConfig    `mapstructure:"core" yaml:"core" validate:"required"`
	LLM     LLMConfig     `mapstructure:"llm" yaml:"llm" validate:"required"`
	Docs    DocsConfig    `mapstructure:"docs" yaml:"docs"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing"`
}

// CoreConfig contains the pipeline-level settings.
type CoreConfig struct {
	OutputDir string        `mapstructure:"output_dir" yaml:"output_dir"`
	Rounds    int           `mapstructure:"rounds" yaml:"rounds" validate:"min=1,max=10"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"min=1s"`

	// PhraseTemplate builds the search phrase; {subject} is replaced with
	// the analysis subject.
	PhraseTemplate string `mapstructure:"phrase_template" yaml:"phrase_template"`

	// PersonaFile optionally overrides the built-in stage personas.
	PersonaFile string `mapstructure:"persona_file" yaml:"persona_file,omitempty"`
}

// LLMConfig contains reasoning-service configuration.
type LLMConfig struct {
	DefaultProvider string                        `mapstructure:"default_provider" yaml:"default_provider" validate:"required"`
	Model           string                        `mapstructure:"model" yaml:"model"`
	Temperature     float64                       `mapstructure:"temperature" yaml:"temperature" validate:"min=0,max=1"`
	MaxTokens       int                           `mapstructure:"max_tokens" yaml:"max_tokens" validate:"min=0"`
	Providers       map[string]llm.ProviderConfig `mapstructure:"providers" yaml:"providers"`
}

// DocsConfig selects the documentation tool provider.
type DocsConfig struct {
	// Provider is "mcp" or "static".
	Provider string `mapstructure:"provider" yaml:"provider" validate:"oneof=mcp static"`

	// Endpoint is the MCP server URL, required when Provider is "mcp".
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}

// StoreConfig contains persistence settings.
type StoreConfig struct {
	IndexPath string `mapstructure:"index_path" yaml:"index_path"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json text"`
}

// TracingConfig contains tracing configuration.
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}

// Provider returns the configuration block for the named provider, or a
// zero config when none is declared.
func (c LLMConfig) Provider(name string) llm.ProviderConfig {
	return c.Providers[name]
}
