// Package batch runs the analysis pipeline over many subjects and folds the
// per-subject tables into one master dataset with provenance.
package batch

import (
	"context"
	"encoding/csv"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/docsentry/docsentry/internal/pipeline"
	"github.com/docsentry/docsentry/internal/schema"
	"github.com/docsentry/docsentry/internal/types"
)

// SubjectColumn is the provenance column appended to every master dataset
// row, carrying the subject the row was extracted for.
const SubjectColumn = "awsService"

// Analyzer runs one pipeline analysis. *pipeline.Coordinator satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, subject string) (*pipeline.Run, error)
}

// SubjectResult is the outcome of one subject's run. A failed run carries
// its error marker and contributes zero rows to the master dataset.
type SubjectResult struct {
	Subject string        `json:"subject"`
	Run     *pipeline.Run `json:"run,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Failed reports whether the subject's run ended in an error.
func (r SubjectResult) Failed() bool {
	return r.Error != ""
}

// Included reports whether the subject's rows belong in the master dataset:
// the run must have completed and its table must have passed validation.
func (r SubjectResult) Included() bool {
	return !r.Failed() && r.Run != nil && r.Run.Validated()
}

// Summary aggregates the batch outcome. A subject counts as Successful only
// when its run completed and its table passed validation; error-marked runs
// and completed runs with invalid tables both count as Failed.
type Summary struct {
	TotalSubjects int `json:"total_subjects"`
	Successful    int `json:"successful"`
	Failed        int `json:"failed"`
	TotalRows     int `json:"total_rows"`
}

// Result is the outcome of a whole batch, in input subject order.
type Result struct {
	ID          types.ID        `json:"id"`
	Results     []SubjectResult `json:"results"`
	Summary     Summary         `json:"summary"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
}

// MasterCSV renders the master dataset: the canonical schema plus the
// provenance column, holding every row from every included subject. Rows
// from failed runs and from tables that failed validation are excluded.
func (r *Result) MasterCSV() string {
	var b strings.Builder
	w := csv.NewWriter(&b)

	w.Write(append(append([]string(nil), schema.RequiredColumns...), SubjectColumn))
	for _, sr := range r.Results {
		if !sr.Included() {
			continue
		}
		for _, rec := range sr.Run.Records() {
			w.Write(append(rec.Fields(), sr.Subject))
		}
	}
	w.Flush()

	return b.String()
}

// Aggregator fans subjects out to an Analyzer and collects the results.
type Aggregator struct {
	analyzer    Analyzer
	concurrency int
	logger      *slog.Logger
	tracer      trace.Tracer
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithConcurrency sets how many subjects run at once. The default is 1:
// subjects run sequentially in input order.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithTracer sets the tracer for batch spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(a *Aggregator) {
		if tracer != nil {
			a.tracer = tracer
		}
	}
}

// NewAggregator creates an aggregator over the given analyzer.
func NewAggregator(analyzer Analyzer, opts ...Option) *Aggregator {
	a := &Aggregator{
		analyzer:    analyzer,
		concurrency: 1,
		logger:      slog.Default(),
		tracer:      noop.NewTracerProvider().Tracer("docsentry/batch"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RunMany analyzes every subject and aggregates the outcomes. One subject's
// failure never aborts the batch: the failed subject is recorded with its
// error marker and the remaining subjects still run.
func (a *Aggregator) RunMany(ctx context.Context, subjects []string) (*Result, error) {
	if len(subjects) == 0 {
		return nil, types.NewError(types.BATCH_PARTIAL_FAILURE, "no subjects to analyze")
	}

	ctx, span := a.tracer.Start(ctx, "batch.run_many")
	defer span.End()

	result := &Result{
		ID:        types.NewID(),
		Results:   make([]SubjectResult, len(subjects)),
		StartedAt: time.Now().UTC(),
	}

	a.logger.Info("starting batch",
		"batch_id", result.ID.String(),
		"subjects", len(subjects),
		"concurrency", a.concurrency,
	)

	sem := make(chan struct{}, a.concurrency)
	var wg sync.WaitGroup
	for i, subject := range subjects {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, subject string) {
			defer wg.Done()
			defer func() { <-sem }()
			result.Results[i] = a.runOne(ctx, subject)
		}(i, subject)
	}
	wg.Wait()

	result.Summary = summarize(result.Results)
	result.CompletedAt = time.Now().UTC()

	a.logger.Info("batch complete",
		"batch_id", result.ID.String(),
		"successful", result.Summary.Successful,
		"failed", result.Summary.Failed,
		"rows", result.Summary.TotalRows,
	)
	return result, nil
}

func (a *Aggregator) runOne(ctx context.Context, subject string) SubjectResult {
	run, err := a.analyzer.Analyze(ctx, subject)
	if err != nil {
		a.logger.Error("subject analysis failed", "subject", subject, "error", err)
		return SubjectResult{Subject: subject, Run: run, Error: err.Error()}
	}
	if !run.Validated() {
		a.logger.Warn("subject table failed validation, excluded from master dataset",
			"subject", subject,
			"issues", len(run.Validation.Issues),
		)
	}
	return SubjectResult{Subject: subject, Run: run}
}

func summarize(results []SubjectResult) Summary {
	s := Summary{TotalSubjects: len(results)}
	for _, r := range results {
		if !r.Included() {
			s.Failed++
			continue
		}
		s.Successful++
		s.TotalRows += r.Run.RowCount()
	}
	return s
}
