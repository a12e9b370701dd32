package pipeline

import (
	"time"

	"github.com/docsentry/docsentry/internal/schema"
	"github.com/docsentry/docsentry/internal/stage"
	"github.com/docsentry/docsentry/internal/types"
)

// Turn is one stage's contribution to a run's transcript. Turns are appended
// by the coordinator in stage order and never mutated afterwards.
type Turn struct {
	Stage   stage.Stage `json:"stage"`
	Speaker string      `json:"speaker"`
	Text    string      `json:"text"`
}

// Run is one pipeline execution for one subject. It is created when an
// analysis begins and immutable once all turns complete; it holds no state
// across requests.
type Run struct {
	ID           types.ID `json:"id"`
	Subject      string   `json:"subject"`
	SearchPhrase string   `json:"search_phrase"`

	Turns []Turn `json:"turns"`

	// Terminal structured outputs, attributed during the post-run scan.
	SearchResults    string `json:"search_results"`
	URLAnalysis      string `json:"url_analysis"`
	SelectedURL      string `json:"selected_url"`
	ControlsAnalysis string `json:"controls_analysis"`

	// Table is the extracted tabular payload; Validation is its schema report.
	Table      string        `json:"table"`
	Validation schema.Report `json:"validation"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// RowCount returns the number of data rows in the extracted table.
func (r *Run) RowCount() int {
	return r.Validation.RowCount
}

// Validated reports whether the extracted table passed schema validation.
func (r *Run) Validated() bool {
	return r.Validation.IsValid
}

// Records returns the run's table parsed into typed control records.
func (r *Run) Records() []schema.ControlRecord {
	if r.Table == "" {
		return nil
	}
	return schema.Records(r.Table)
}
