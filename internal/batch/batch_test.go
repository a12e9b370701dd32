package batch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsentry/docsentry/internal/pipeline"
	"github.com/docsentry/docsentry/internal/schema"
	"github.com/docsentry/docsentry/internal/types"
)

// fakeAnalyzer returns canned runs per subject, recording call order.
type fakeAnalyzer struct {
	mu    sync.Mutex
	runs  map[string]*pipeline.Run
	errs  map[string]error
	calls []string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, subject string) (*pipeline.Run, error) {
	f.mu.Lock()
	f.calls = append(f.calls, subject)
	f.mu.Unlock()

	if err, ok := f.errs[subject]; ok {
		return nil, err
	}
	run, ok := f.runs[subject]
	if !ok {
		return nil, fmt.Errorf("no run scripted for %s", subject)
	}
	return run, nil
}

func validRun(subject string, ids ...string) *pipeline.Run {
	rows := []string{schema.Header}
	for _, id := range ids {
		rows = append(rows, fmt.Sprintf("%s,Control %s,High,Not specified,Not specified,Enable it,Not specified", id, id))
	}
	table := strings.Join(rows, "\n")

	return &pipeline.Run{
		ID:         types.NewID(),
		Subject:    subject,
		Table:      table,
		Validation: schema.Validate(table),
	}
}

func invalidRun(subject string) *pipeline.Run {
	table := schema.Header + "\n,Missing ID Control,High,a,b,c,d"
	return &pipeline.Run{
		ID:         types.NewID(),
		Subject:    subject,
		Table:      table,
		Validation: schema.Validate(table),
	}
}

func TestRunManyAggregates(t *testing.T) {
	fa := &fakeAnalyzer{
		runs: map[string]*pipeline.Run{
			"S3":  validRun("S3", "AWS-S3-001", "AWS-S3-002"),
			"EC2": validRun("EC2", "AWS-EC2-001"),
		},
	}
	agg := NewAggregator(fa)

	result, err := agg.RunMany(context.Background(), []string{"S3", "EC2"})
	require.NoError(t, err)

	assert.Equal(t, Summary{TotalSubjects: 2, Successful: 2, Failed: 0, TotalRows: 3}, result.Summary)
	assert.Equal(t, []string{"S3", "EC2"}, fa.calls, "sequential batches run in input order")

	master := result.MasterCSV()
	lines := strings.Split(strings.TrimSpace(master), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, schema.Header+","+SubjectColumn, lines[0])
	assert.Equal(t, "AWS-S3-001,Control AWS-S3-001,High,Not specified,Not specified,Enable it,Not specified,S3", lines[1])
	assert.True(t, strings.HasSuffix(lines[3], ",EC2"))
}

func TestRunManyFailedSubjectContributesNoRows(t *testing.T) {
	fa := &fakeAnalyzer{
		runs: map[string]*pipeline.Run{
			"S3": validRun("S3", "AWS-S3-001"),
		},
		errs: map[string]error{
			"BadService": types.NewRetryableError(types.SERVICE_UNAVAILABLE, "documentation search unavailable"),
		},
	}
	agg := NewAggregator(fa)

	result, err := agg.RunMany(context.Background(), []string{"S3", "BadService"})
	require.NoError(t, err, "one subject's failure does not abort the batch")

	assert.Equal(t, Summary{TotalSubjects: 2, Successful: 1, Failed: 1, TotalRows: 1}, result.Summary)

	require.Len(t, result.Results, 2)
	assert.False(t, result.Results[0].Failed())
	assert.True(t, result.Results[1].Failed())
	assert.Contains(t, result.Results[1].Error, "unavailable")

	master := result.MasterCSV()
	assert.Contains(t, master, "AWS-S3-001")
	assert.NotContains(t, master, "BadService")
}

func TestRunManyInvalidTableExcluded(t *testing.T) {
	fa := &fakeAnalyzer{
		runs: map[string]*pipeline.Run{
			"S3":  validRun("S3", "AWS-S3-001"),
			"SQS": invalidRun("SQS"),
		},
	}
	agg := NewAggregator(fa)

	result, err := agg.RunMany(context.Background(), []string{"S3", "SQS"})
	require.NoError(t, err)

	// A run whose table fails validation counts as failed even though it
	// completed, and its rows stay out of the master dataset.
	assert.Equal(t, Summary{TotalSubjects: 2, Successful: 1, Failed: 1, TotalRows: 1}, result.Summary)
	assert.False(t, result.Results[1].Failed(), "no error marker: the run itself completed")
	assert.False(t, result.Results[1].Included())
	assert.NotContains(t, result.MasterCSV(), "Missing ID Control")
}

func TestRunManyQuotesCommaFields(t *testing.T) {
	table := schema.Header + "\n" +
		`AWS-S3-001,"Encryption, at rest",High,Not specified,Not specified,Enable it,Not specified`
	run := &pipeline.Run{
		ID:         types.NewID(),
		Subject:    "S3",
		Table:      table,
		Validation: schema.Validate(table),
	}
	fa := &fakeAnalyzer{runs: map[string]*pipeline.Run{"S3": run}}

	result, err := NewAggregator(fa).RunMany(context.Background(), []string{"S3"})
	require.NoError(t, err)
	assert.Contains(t, result.MasterCSV(), `"Encryption, at rest"`)
}

func TestRunManyConcurrent(t *testing.T) {
	runs := make(map[string]*pipeline.Run)
	subjects := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		subject := fmt.Sprintf("svc-%d", i)
		subjects = append(subjects, subject)
		runs[subject] = validRun(subject, fmt.Sprintf("AWS-%d-001", i))
	}
	fa := &fakeAnalyzer{runs: runs}

	result, err := NewAggregator(fa, WithConcurrency(4)).RunMany(context.Background(), subjects)
	require.NoError(t, err)

	assert.Equal(t, 8, result.Summary.Successful)
	assert.Equal(t, 8, result.Summary.TotalRows)

	// Results stay in input order regardless of completion order.
	for i, sr := range result.Results {
		assert.Equal(t, subjects[i], sr.Subject)
	}
}

func TestRunManyEmptyInput(t *testing.T) {
	agg := NewAggregator(&fakeAnalyzer{})

	result, err := agg.RunMany(context.Background(), nil)
	require.Error(t, err)
	assert.Nil(t, result)
}
