// Package report renders pipeline outcomes as markdown: a full analysis
// report per subject and a combined compliance report per batch.
package report

import (
	"fmt"
	"strings"

	"github.com/docsentry/docsentry/internal/batch"
	"github.com/docsentry/docsentry/internal/pipeline"
)

const fallback = "N/A"

// Analysis renders the full per-subject analysis report: the query, the
// selected source, every stage's attributed output, the validation outcome,
// and the complete transcript.
func Analysis(run *pipeline.Run) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s Security Controls Analysis\n\n", run.Subject)

	b.WriteString("## Search Query\n")
	b.WriteString(orFallback(run.SearchPhrase) + "\n\n")

	b.WriteString("## Selected Documentation URL\n")
	b.WriteString(orFallback(run.SelectedURL) + "\n\n---\n\n")

	b.WriteString("## Search Results\n")
	b.WriteString(orDefault(run.SearchResults, "No search results available") + "\n\n---\n\n")

	b.WriteString("## URL Selection Analysis\n")
	b.WriteString(orDefault(run.URLAnalysis, "No URL selection analysis available") + "\n\n---\n\n")

	b.WriteString("## Security Controls Extracted\n")
	b.WriteString(orDefault(run.ControlsAnalysis, "No security controls extracted") + "\n\n---\n\n")

	b.WriteString("## Table Validation\n")
	writeValidation(&b, run)
	b.WriteString("\n---\n\n")

	b.WriteString("## Full Agent Conversation\n```\n")
	if len(run.Turns) == 0 {
		b.WriteString("No conversation log available\n")
	}
	for _, turn := range run.Turns {
		fmt.Fprintf(&b, "%s:\n%s\n\n", turn.Speaker, turn.Text)
	}
	b.WriteString("```\n\n---\n*Analysis generated by docsentry*\n")

	return b.String()
}

func writeValidation(b *strings.Builder, run *pipeline.Run) {
	if run.Validation.IsValid {
		fmt.Fprintf(b, "**Status:** valid (%d rows)\n", run.Validation.RowCount)
	} else {
		fmt.Fprintf(b, "**Status:** invalid (%d rows)\n\nIssues:\n", run.Validation.RowCount)
		for _, issue := range run.Validation.Issues {
			fmt.Fprintf(b, "- %s\n", issue)
		}
	}
	if run.Table != "" {
		fmt.Fprintf(b, "\n```csv\n%s\n```\n", strings.TrimSpace(run.Table))
	}
}

// Compliance renders the combined report for a batch: one section per
// subject with its source and extracted controls, errors surfaced inline.
func Compliance(result *batch.Result) string {
	var b strings.Builder

	b.WriteString("# Security Controls Compliance Report\n\n")

	subjects := make([]string, 0, len(result.Results))
	for _, sr := range result.Results {
		subjects = append(subjects, sr.Subject)
	}
	fmt.Fprintf(&b, "**Subjects Analyzed:** %s\n\n", strings.Join(subjects, ", "))
	fmt.Fprintf(&b, "**Outcome:** %d successful, %d failed, %d rows\n\n---\n\n",
		result.Summary.Successful, result.Summary.Failed, result.Summary.TotalRows)

	for _, sr := range result.Results {
		fmt.Fprintf(&b, "## %s Security Controls\n\n", sr.Subject)

		if sr.Failed() {
			fmt.Fprintf(&b, "**Error:** %s\n\n---\n\n", sr.Error)
			continue
		}

		fmt.Fprintf(&b, "**Source:** %s\n\n", orFallback(sr.Run.SelectedURL))
		b.WriteString(orDefault(sr.Run.ControlsAnalysis, "No controls extracted") + "\n\n---\n\n")
	}

	return b.String()
}

func orFallback(s string) string {
	return orDefault(s, fallback)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
