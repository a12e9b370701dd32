package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show reasoning-service provider health",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	registry, err := buildRegistry()
	if err != nil {
		return err
	}

	printf(cmd, "Default provider: %s\n", cfg.LLM.DefaultProvider)
	printf(cmd, "Registered providers: %s\n", strings.Join(registry.ListProviders(), ", "))

	health := registry.Health(cmd.Context())
	printf(cmd, "Health: %s", health.State)
	if health.Message != "" {
		printf(cmd, " (%s)", health.Message)
	}
	printf(cmd, "\n")

	return nil
}
