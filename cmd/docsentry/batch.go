package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/docsentry/docsentry/internal/batch"
	"github.com/docsentry/docsentry/internal/observability"
	"github.com/docsentry/docsentry/internal/report"
	"github.com/docsentry/docsentry/internal/store"
)

var (
	batchConcurrency int
	batchOutput      string
)

var batchCmd = &cobra.Command{
	Use:   "batch <subject>...",
	Short: "Analyze many subjects and build the master controls dataset",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 1, "How many subjects to analyze at once")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "Output directory (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
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

	agg := batch.NewAggregator(coordinator,
		batch.WithConcurrency(batchConcurrency),
		batch.WithLogger(logger),
		batch.WithTracer(observability.Tracer(cfg.Tracing.Enabled, "docsentry/batch")),
	)

	result, err := agg.RunMany(ctx, args)
	if err != nil {
		return err
	}

	for _, sr := range result.Results {
		if sr.Failed() {
			if indexErr := dao.RecordFailure(ctx, sr.Subject, sr.Error); indexErr != nil {
				logger.Warn("failed to index run failure", "error", indexErr)
			}
			continue
		}
		if indexErr := dao.Record(ctx, sr.Run); indexErr != nil {
			logger.Warn("failed to index run", "error", indexErr)
		}
	}

	printf(cmd, "Batch %s: %d subjects, %d successful, %d failed, %d rows\n",
		result.ID,
		result.Summary.TotalSubjects,
		result.Summary.Successful,
		result.Summary.Failed,
		result.Summary.TotalRows,
	)

	artifacts, err := store.NewArtifactStore(outputDir(batchOutput))
	if err != nil {
		return err
	}

	path, err := artifacts.SaveMaster(result.MasterCSV())
	if err != nil {
		return err
	}
	printf(cmd, "Master dataset: %s\n", path)

	for _, sr := range result.Results {
		if sr.Failed() {
			printf(cmd, "  %s: FAILED (%s)\n", sr.Subject, sr.Error)
			continue
		}
		if _, err := artifacts.SaveAnalysis(sr.Subject, report.Analysis(sr.Run)); err != nil {
			return err
		}
		if sr.Run.Table != "" {
			if _, err := artifacts.SaveTable(sr.Subject, sr.Run.Table); err != nil {
				return err
			}
		}
		printf(cmd, "  %s: %d rows, valid=%t\n", sr.Subject, sr.Run.RowCount(), sr.Run.Validated())
	}

	compliancePath, err := artifacts.SaveCompliance(report.Compliance(result))
	if err != nil {
		return err
	}
	printf(cmd, "Compliance report: %s\n", compliancePath)

	return nil
}
