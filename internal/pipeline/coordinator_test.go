package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsentry/docsentry/internal/docs"
	"github.com/docsentry/docsentry/internal/llm"
	"github.com/docsentry/docsentry/internal/llm/providers"
	"github.com/docsentry/docsentry/internal/schema"
	"github.com/docsentry/docsentry/internal/stage"
	"github.com/docsentry/docsentry/internal/types"
)

const s3URL = "https://docs.aws.amazon.com/s3/security-best-practices.html"

func s3Tools() *docs.StaticProvider {
	return docs.NewStaticProvider().
		WithResults("S3",
			docs.SearchResult{URL: s3URL, Description: "Security best practices for S3"},
			docs.SearchResult{URL: "https://docs.aws.amazon.com/s3/pricing.html", Description: "S3 pricing"},
		).
		WithPage(s3URL, "Enable server-side encryption for all buckets. Block public access.")
}

// stageResponses returns one well-formed contribution per stage. The mock
// provider cycles through them, so both rounds replay the same content.
func stageResponses() []string {
	return []string{
		`# DOCUMENTATION SEARCH RESULTS

## Search Query Used
S3 security controls best practices compliance

## Search Results
1. ` + s3URL + ` - Security best practices for S3

## Summary for URLSelectorAgent
Total results found: 2
Most relevant results appear to be related to: S3 security`,

		`# URL SELECTION ANALYSIS

## Available URLs Analysis
The first result covers security best practices directly.

## Selected URL
**URL:** ` + s3URL + `
**Reason:** Official security best practices documentation
**Expected Content:** Encryption and access controls`,

		`# SECURITY CONTROLS ANALYSIS

## Document Source
**URL:** ` + s3URL + `
**Document Title:** Security Best Practices

## Security Controls Identified

### Data Protection
Server-side encryption must be enabled for all buckets.

## Summary
Encryption at rest is the primary control for S3 buckets.`,

		"# CONTROLS TABLE\n\n## Structured Output\n```csv\n" +
			"controlId,controlName,severity,policies,awsConfig,implementation,relatedRequirements\n" +
			"AWS-S3-001,Server-Side Encryption,High,Not specified,s3-bucket-server-side-encryption-enabled,Enable SSE-S3 or SSE-KMS,PCI-DSS 3.4\n" +
			"```\n\n## Processing Notes\nAll controls structured.",

		"# TABLE VALIDATION\n\n## Validation Findings\nNo issues found\n\n## Final Table\n```csv\n" +
			"controlId,controlName,severity,policies,awsConfig,implementation,relatedRequirements\n" +
			"AWS-S3-001,Server-Side Encryption,High,Not specified,s3-bucket-server-side-encryption-enabled,Enable SSE-S3 or SSE-KMS,PCI-DSS 3.4\n" +
			"```",
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	mock := providers.NewMockProvider(stageResponses())
	c := NewCoordinator(mock, s3Tools())

	run, err := c.Analyze(context.Background(), "S3")
	require.NoError(t, err)
	require.NotNil(t, run)

	assert.False(t, run.ID.IsZero())
	assert.Equal(t, "S3", run.Subject)
	assert.Equal(t, "S3 security controls best practices compliance", run.SearchPhrase)

	// Two rounds over five stages, one reasoning call each.
	assert.Len(t, run.Turns, 10)
	assert.Equal(t, 10, mock.CallCount())

	assert.Contains(t, run.SearchResults, "# DOCUMENTATION SEARCH RESULTS")
	assert.Contains(t, run.URLAnalysis, "# URL SELECTION ANALYSIS")
	assert.Equal(t, s3URL, run.SelectedURL)
	assert.Contains(t, run.ControlsAnalysis, "# SECURITY CONTROLS ANALYSIS")

	assert.True(t, run.Validated())
	assert.Equal(t, 1, run.RowCount())
	assert.Contains(t, run.Table, "AWS-S3-001")

	records := run.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "AWS-S3-001", records[0].ControlID)
	assert.Equal(t, "High", records[0].Severity)

	assert.False(t, run.CompletedAt.Before(run.StartedAt))
}

func TestAnalyzeInjectsToolContext(t *testing.T) {
	mock := providers.NewMockProvider(stageResponses())
	c := NewCoordinator(mock, s3Tools())

	_, err := c.Analyze(context.Background(), "S3")
	require.NoError(t, err)

	calls := mock.Calls()
	require.Len(t, calls, 10)

	// The search stage's request carries the rendered search results.
	searchReq := calls[0].Request
	found := false
	for _, m := range searchReq.Messages {
		if m.Role == llm.RoleUser && strings.Contains(m.Content, "[tool result] search_documentation") {
			found = true
		}
	}
	assert.True(t, found, "search turn should see search results")

	// The read stage's request carries the retrieved document.
	readReq := calls[2].Request
	found = false
	for _, m := range readReq.Messages {
		if m.Role == llm.RoleUser && strings.Contains(m.Content, "[tool result] read_documentation content for "+s3URL) {
			found = true
		}
	}
	assert.True(t, found, "read turn should see document content")

	// Every turn carries its persona's instructions as the system prompt.
	assert.Contains(t, calls[0].Request.SystemPrompt, "DocumentSearchAgent")
	assert.Contains(t, calls[4].Request.SystemPrompt, "TableValidatorAgent")
}

func TestAnalyzeValidatorTableWins(t *testing.T) {
	responses := stageResponses()
	// The validator drops the processor's extra row; its table is the result.
	responses[4] = "# TABLE VALIDATION\n\n## Validation Findings\nDropped one unfixable row\n\n## Final Table\n```csv\n" +
		"controlId,controlName,severity,policies,awsConfig,implementation,relatedRequirements\n" +
		"AWS-S3-002,Block Public Access,Critical,Not specified,s3-account-level-public-access-blocks,Enable account-level BPA,CIS 2.1.5\n" +
		"```"

	mock := providers.NewMockProvider(responses)
	c := NewCoordinator(mock, s3Tools())

	run, err := c.Analyze(context.Background(), "S3")
	require.NoError(t, err)

	assert.Contains(t, run.Table, "AWS-S3-002")
	assert.NotContains(t, run.Table, "AWS-S3-001")
	assert.True(t, run.Validated())
}

func TestAnalyzeFallsBackToProcessorTable(t *testing.T) {
	responses := stageResponses()
	responses[4] = "# TABLE VALIDATION\n\n## Validation Findings\nNo issues found\n\nThe table is valid as produced."

	mock := providers.NewMockProvider(responses)
	c := NewCoordinator(mock, s3Tools())

	run, err := c.Analyze(context.Background(), "S3")
	require.NoError(t, err)

	assert.Contains(t, run.Table, "AWS-S3-001")
	assert.True(t, run.Validated())
}

func TestAnalyzeHeaderViolationDiscardsOutput(t *testing.T) {
	responses := stageResponses()
	// Wrong header on both table-producing stages: their outputs are not
	// trusted, so no table can be extracted.
	responses[3] = "## WRONG HEADER\n\n```csv\ncontrolId,controlName\nX,Y\n```"
	responses[4] = "## ALSO WRONG\n\nNothing to validate."

	mock := providers.NewMockProvider(responses)
	c := NewCoordinator(mock, s3Tools())

	run, err := c.Analyze(context.Background(), "S3")
	require.NoError(t, err, "header violations are not fatal")

	assert.Empty(t, run.Table)
	assert.False(t, run.Validated())
	require.NotEmpty(t, run.Validation.Issues)
	assert.Contains(t, run.Validation.Issues[0], "no tabular block")
	assert.Len(t, run.Turns, 10)

	// The report owns its column list; mutating it must not corrupt the
	// canonical schema.
	run.Validation.RequiredColumns[0] = "mutated"
	assert.Equal(t, "controlId", schema.RequiredColumns[0])
}

func TestAnalyzeProviderFailureIsFatal(t *testing.T) {
	mock := providers.NewMockProvider(stageResponses()).FailAfter(3)
	c := NewCoordinator(mock, s3Tools())

	run, err := c.Analyze(context.Background(), "S3")
	require.Error(t, err)

	var ae *types.AnalyzerError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, types.PIPELINE_RUN_FAILED, ae.Code)

	// The partial run reports how far the pipeline got.
	require.NotNil(t, run)
	assert.Len(t, run.Turns, 3)
	assert.False(t, run.CompletedAt.IsZero())
}

func TestAnalyzeSearchUnavailableIsFatal(t *testing.T) {
	tools := docs.NewStaticProvider().WithFailure("BadService")
	mock := providers.NewMockProvider(stageResponses())
	c := NewCoordinator(mock, tools)

	run, err := c.Analyze(context.Background(), "BadService")
	require.Error(t, err)

	var ae *types.AnalyzerError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, types.TOOL_SEARCH_FAILED, ae.Code)

	require.NotNil(t, run)
	assert.Empty(t, run.Turns, "no reasoning call happens when search is unreachable")
}

func TestAnalyzeEmptySubject(t *testing.T) {
	c := NewCoordinator(providers.NewMockProvider(nil), docs.NewStaticProvider())

	run, err := c.Analyze(context.Background(), "   ")
	require.Error(t, err)
	assert.Nil(t, run)
}

func TestAnalyzeWithExplicitPhrase(t *testing.T) {
	mock := providers.NewMockProvider(stageResponses())
	tools := docs.NewStaticProvider().
		WithResults("encryption", docs.SearchResult{URL: s3URL, Description: "Encryption guide"}).
		WithPage(s3URL, "content")
	c := NewCoordinator(mock, tools)

	run, err := c.AnalyzeWithPhrase(context.Background(), "S3", "S3 encryption requirements")
	require.NoError(t, err)
	assert.Equal(t, "S3 encryption requirements", run.SearchPhrase)
}

func TestAnalyzeCustomRounds(t *testing.T) {
	mock := providers.NewMockProvider(stageResponses())
	c := NewCoordinator(mock, s3Tools(), WithRounds(1))

	run, err := c.Analyze(context.Background(), "S3")
	require.NoError(t, err)
	assert.Len(t, run.Turns, 5)
	assert.True(t, run.Validated())
}

func TestAnalyzeCustomRegistry(t *testing.T) {
	reg := stage.NewRegistry()
	persona, err := reg.Get(stage.StageSearch)
	require.NoError(t, err)
	persona.Instructions = "Custom search instructions for the registry test."
	require.NoError(t, reg.Register(persona))

	mock := providers.NewMockProvider(stageResponses())
	c := NewCoordinator(mock, s3Tools(), WithRegistry(reg))

	_, err = c.Analyze(context.Background(), "S3")
	require.NoError(t, err)
	assert.Equal(t, "Custom search instructions for the registry test.", mock.Calls()[0].Request.SystemPrompt)
}

func TestSecuritySummary(t *testing.T) {
	mock := providers.NewMockProvider(stageResponses())
	c := NewCoordinator(mock, s3Tools())

	run, err := c.Analyze(context.Background(), "S3")
	require.NoError(t, err)

	assert.Equal(t, "Encryption at rest is the primary control for S3 buckets.", SecuritySummary(run))
	assert.Empty(t, SecuritySummary(nil))
}
