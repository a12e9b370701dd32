package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/docsentry/docsentry/internal/report"
	"github.com/docsentry/docsentry/internal/store"
)

var (
	analyzeQuery  string
	analyzeOutput string
	analyzeSave   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <subject>",
	Short: "Analyze one subject's documentation for security controls",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeQuery, "query", "", "Override the search phrase")
	analyzeCmd.Flags().StringVar(&analyzeOutput, "output", "", "Output directory (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", true, "Write report and table artifacts")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	subject := args[0]

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Core.Timeout)
	defer cancel()

	coordinator, cleanup, err := buildCoordinator(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	db, dao, err := openRunIndex()
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := coordinator.AnalyzeWithPhrase(ctx, subject, analyzeQuery)
	if err != nil {
		if indexErr := dao.RecordFailure(ctx, subject, err.Error()); indexErr != nil {
			logger.Warn("failed to index run failure", "error", indexErr)
		}
		return err
	}

	if indexErr := dao.Record(ctx, run); indexErr != nil {
		logger.Warn("failed to index run", "error", indexErr)
	}

	printf(cmd, "Run %s complete: %d rows, valid=%t\n", run.ID, run.RowCount(), run.Validated())
	for _, issue := range run.Validation.Issues {
		printf(cmd, "  issue: %s\n", issue)
	}

	if !analyzeSave {
		return nil
	}

	artifacts, err := store.NewArtifactStore(outputDir(analyzeOutput))
	if err != nil {
		return err
	}

	path, err := artifacts.SaveAnalysis(subject, report.Analysis(run))
	if err != nil {
		return err
	}
	printf(cmd, "Analysis report: %s\n", path)

	if run.Table != "" {
		path, err = artifacts.SaveTable(subject, run.Table)
		if err != nil {
			return err
		}
		printf(cmd, "Controls table: %s\n", path)
	}

	return nil
}
