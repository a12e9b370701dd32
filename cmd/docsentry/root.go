package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docsentry/docsentry/internal/config"
	"github.com/docsentry/docsentry/internal/docs"
	"github.com/docsentry/docsentry/internal/llm"
	"github.com/docsentry/docsentry/internal/llm/providers"
	"github.com/docsentry/docsentry/internal/observability"
	"github.com/docsentry/docsentry/internal/pipeline"
	"github.com/docsentry/docsentry/internal/stage"
	"github.com/docsentry/docsentry/internal/store"
)

var (
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docsentry",
	Short: "docsentry - documentation security controls analyzer",
	Long: `docsentry runs a staged analysis pipeline over product documentation,
extracting security and compliance controls into a validated CSV dataset.

Each analysis searches the documentation, selects the most relevant page,
reads it, structures the findings into a fixed schema, and validates the
result.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig runs before every command, loading configuration and building
// the logger. Commands that work without config skip it.
func loadConfig(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" || cmd.Name() == "help" {
		return nil
	}

	path := cfgFile
	if path == "" {
		path = os.Getenv("DOCSENTRY_CONFIG")
	}
	if path == "" {
		path = "docsentry.yaml"
	}

	loaded, err := config.NewLoader(config.NewValidator()).LoadWithDefaults(path)
	if err != nil {
		return err
	}
	cfg = loaded

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	logger = observability.NewLogger(os.Stderr, level, cfg.Logging.Format)

	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file path (default docsentry.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

// buildRegistry constructs every configured reasoning-service provider and
// registers it. A provider that fails to construct is skipped with a
// warning unless it is the default, which must be usable.
func buildRegistry() (llm.Registry, error) {
	registry := llm.NewRegistry()

	names := map[string]struct{}{cfg.LLM.DefaultProvider: {}}
	for name := range cfg.LLM.Providers {
		names[name] = struct{}{}
	}

	for name := range names {
		provider, err := providers.NewProvider(name, cfg.LLM.Provider(name))
		if err != nil {
			if name == cfg.LLM.DefaultProvider {
				return nil, err
			}
			logger.Warn("skipping provider", "provider", name, "error", err)
			continue
		}
		if err := registry.RegisterProvider(provider); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// buildProvider resolves the configured default reasoning-service provider
// through the registry.
func buildProvider() (llm.Provider, error) {
	registry, err := buildRegistry()
	if err != nil {
		return nil, err
	}
	return registry.GetProvider(cfg.LLM.DefaultProvider)
}

// buildDocs constructs the documentation tool provider. The returned
// cleanup function closes the MCP session when one was opened.
func buildDocs(ctx context.Context) (docs.Provider, func(), error) {
	switch cfg.Docs.Provider {
	case "static":
		return docs.NewStaticProvider(), func() {}, nil
	default:
		provider, session, err := docs.ConnectMCP(ctx, cfg.Docs.Endpoint)
		if err != nil {
			return nil, nil, err
		}
		return provider, func() { session.Close() }, nil
	}
}

// buildCoordinator wires the pipeline from configuration.
func buildCoordinator(ctx context.Context) (*pipeline.Coordinator, func(), error) {
	provider, err := buildProvider()
	if err != nil {
		return nil, nil, err
	}

	tools, cleanup, err := buildDocs(ctx)
	if err != nil {
		return nil, nil, err
	}

	registry := stage.NewRegistry()
	if cfg.Core.PersonaFile != "" {
		if err := registry.LoadFromYAML(cfg.Core.PersonaFile); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithTracer(observability.Tracer(cfg.Tracing.Enabled, "docsentry/pipeline")),
		pipeline.WithRegistry(registry),
		pipeline.WithRounds(cfg.Core.Rounds),
		pipeline.WithModel(cfg.LLM.Model),
		pipeline.WithTemperature(cfg.LLM.Temperature),
		pipeline.WithMaxTokens(cfg.LLM.MaxTokens),
	}
	if cfg.Core.PhraseTemplate != "" {
		opts = append(opts, pipeline.WithPhraseTemplate(cfg.Core.PhraseTemplate))
	}

	return pipeline.NewCoordinator(provider, tools, opts...), cleanup, nil
}

// openRunIndex opens the run index database, creating it if needed.
func openRunIndex() (*store.DB, *store.RunDAO, error) {
	db, err := store.Open(cfg.Store.IndexPath)
	if err != nil {
		return nil, nil, err
	}
	return db, store.NewRunDAO(db), nil
}

// outputDir returns the effective output directory, with the flag value
// overriding configuration.
func outputDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.Core.OutputDir
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
