package main

import (
	"github.com/spf13/cobra"

	"github.com/docsentry/docsentry/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printf(cmd, "%s\n", version.String())
	},
}
