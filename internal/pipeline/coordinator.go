// Package pipeline drives the five-stage documentation analysis loop: a
// fixed round-robin of stage personas over a shared transcript, followed by
// a post-run scan that attributes and validates the structured outputs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/docsentry/docsentry/internal/docs"
	"github.com/docsentry/docsentry/internal/extract"
	"github.com/docsentry/docsentry/internal/llm"
	"github.com/docsentry/docsentry/internal/schema"
	"github.com/docsentry/docsentry/internal/stage"
	"github.com/docsentry/docsentry/internal/types"
)

// DefaultPhraseTemplate builds the search phrase when the caller supplies
// none. {subject} is replaced with the analysis subject.
const DefaultPhraseTemplate = "{subject} security controls best practices compliance"

// DefaultRounds is how many times the stage sequence fires per run. Each
// stage contributes one turn per round, so the transcript budget is
// DefaultRounds * len(stage.Sequence()) turns.
const DefaultRounds = 2

// Coordinator executes analysis runs against a reasoning-service provider
// and a documentation tool provider. It is stateless across runs and safe
// for concurrent use.
type Coordinator struct {
	provider llm.Provider
	tools    docs.Provider
	personas stage.Registry

	model          string
	temperature    float64
	maxTokens      int
	rounds         int
	phraseTemplate string

	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer sets the tracer used for run and turn spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Coordinator) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithRegistry replaces the persona registry.
func WithRegistry(r stage.Registry) Option {
	return func(c *Coordinator) {
		if r != nil {
			c.personas = r
		}
	}
}

// WithRounds sets how many times the stage sequence fires per run.
func WithRounds(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.rounds = n
		}
	}
}

// WithModel sets the model requested from the provider.
func WithModel(model string) Option {
	return func(c *Coordinator) {
		c.model = model
	}
}

// WithTemperature sets the sampling temperature for every turn.
func WithTemperature(t float64) Option {
	return func(c *Coordinator) {
		c.temperature = t
	}
}

// WithMaxTokens caps the completion length per turn.
func WithMaxTokens(n int) Option {
	return func(c *Coordinator) {
		c.maxTokens = n
	}
}

// WithPhraseTemplate overrides the default search phrase template.
func WithPhraseTemplate(tmpl string) Option {
	return func(c *Coordinator) {
		if strings.Contains(tmpl, "{subject}") {
			c.phraseTemplate = tmpl
		}
	}
}

// NewCoordinator creates a coordinator over the given reasoning-service and
// documentation providers.
func NewCoordinator(provider llm.Provider, tools docs.Provider, opts ...Option) *Coordinator {
	c := &Coordinator{
		provider:       provider,
		tools:          tools,
		personas:       stage.NewRegistry(),
		temperature:    0.1,
		rounds:         DefaultRounds,
		phraseTemplate: DefaultPhraseTemplate,
		logger:         slog.Default(),
		tracer:         noop.NewTracerProvider().Tracer("docsentry/pipeline"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze runs the full pipeline for a subject using the default search
// phrase.
func (c *Coordinator) Analyze(ctx context.Context, subject string) (*Run, error) {
	return c.AnalyzeWithPhrase(ctx, subject, "")
}

// AnalyzeWithPhrase runs the full pipeline for a subject. An empty phrase
// falls back to the phrase template. The returned run is complete and
// immutable; on error the partial run is returned alongside the error so
// callers can report how far the pipeline got.
func (c *Coordinator) AnalyzeWithPhrase(ctx context.Context, subject, phrase string) (*Run, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, types.NewError(types.PIPELINE_RUN_FAILED, "subject must not be empty")
	}
	if phrase == "" {
		phrase = strings.ReplaceAll(c.phraseTemplate, "{subject}", subject)
	}

	run := &Run{
		ID:           types.NewID(),
		Subject:      subject,
		SearchPhrase: phrase,
		StartedAt:    time.Now().UTC(),
	}

	ctx, span := c.tracer.Start(ctx, "pipeline.analyze")
	defer span.End()

	c.logger.Info("starting analysis run",
		"run_id", run.ID.String(),
		"subject", subject,
		"search_phrase", phrase,
	)

	transcript := []llm.Message{
		llm.NewUserMessage(c.initialTask(subject, phrase)),
	}

	model := c.model
	if model == "" {
		model = c.defaultModel(ctx)
	}

	for round := 0; round < c.rounds; round++ {
		for _, st := range stage.Sequence() {
			persona, err := c.personas.Get(st)
			if err != nil {
				run.CompletedAt = time.Now().UTC()
				return run, types.WrapError(types.PIPELINE_RUN_FAILED, "persona lookup failed", err)
			}

			if round == 0 {
				injected, err := c.toolContext(ctx, st, phrase, run)
				if err != nil {
					run.CompletedAt = time.Now().UTC()
					return run, err
				}
				if injected != "" {
					transcript = append(transcript, llm.NewUserMessage(injected))
				}
			}

			text, err := c.turn(ctx, model, persona, transcript)
			if err != nil {
				run.CompletedAt = time.Now().UTC()
				return run, types.WrapError(types.PIPELINE_RUN_FAILED,
					fmt.Sprintf("completion failed at stage %s (round %d)", st, round+1), err)
			}

			transcript = append(transcript, llm.NewAssistantMessage(text).WithName(persona.Speaker))
			run.Turns = append(run.Turns, Turn{Stage: st, Speaker: persona.Speaker, Text: text})
		}
	}

	c.scan(run)
	run.CompletedAt = time.Now().UTC()

	c.logger.Info("analysis run complete",
		"run_id", run.ID.String(),
		"subject", subject,
		"turns", len(run.Turns),
		"rows", run.Validation.RowCount,
		"valid", run.Validation.IsValid,
	)
	return run, nil
}

// turn executes one stage's reasoning pass over the shared transcript.
func (c *Coordinator) turn(ctx context.Context, model string, persona stage.Persona, transcript []llm.Message) (string, error) {
	ctx, span := c.tracer.Start(ctx, "pipeline.turn")
	defer span.End()

	req := llm.CompletionRequest{
		Model:        model,
		Messages:     transcript,
		Temperature:  c.temperature,
		MaxTokens:    c.maxTokens,
		SystemPrompt: persona.Instructions,
	}

	resp, err := c.provider.Complete(ctx, req)
	if err != nil {
		return "", err
	}

	c.logger.Debug("stage turn complete",
		"stage", persona.Stage.String(),
		"speaker", persona.Speaker,
		"tokens", resp.Usage.TotalTokens,
	)
	return resp.Message.Content, nil
}

// toolContext performs the blocking tool call a stage depends on and renders
// it for injection into the transcript. Unreachable tool providers are fatal
// to the run; other tool failures are surfaced as error payloads for the
// persona to report.
func (c *Coordinator) toolContext(ctx context.Context, st stage.Stage, phrase string, run *Run) (string, error) {
	switch st {
	case stage.StageSearch:
		results, err := c.tools.Search(ctx, phrase)
		if unreachable(err) {
			return "", types.WrapError(types.TOOL_SEARCH_FAILED, "documentation search unavailable", err)
		}
		if err != nil {
			c.logger.Warn("documentation search failed", "subject", run.Subject, "error", err)
		}
		return docs.RenderSearchResults(results, err), nil

	case stage.StageRead:
		url, ok := c.selectedURL(run)
		if !ok {
			c.logger.Warn("no URL selected, reader receives no document", "subject", run.Subject)
			return "", nil
		}
		content, err := c.tools.Read(ctx, url)
		if unreachable(err) {
			return "", types.WrapError(types.TOOL_READ_FAILED, "documentation read unavailable", err)
		}
		if err != nil {
			c.logger.Warn("documentation read failed", "url", url, "error", err)
		}
		return docs.RenderDocument(url, content, err), nil

	default:
		return "", nil
	}
}

// selectedURL pulls the URL field out of the latest selection-stage turn.
func (c *Coordinator) selectedURL(run *Run) (string, bool) {
	for i := len(run.Turns) - 1; i >= 0; i-- {
		if run.Turns[i].Stage != stage.StageSelect {
			continue
		}
		if url, ok := extract.LabeledField(run.Turns[i].Text, "URL"); ok {
			return url, true
		}
	}
	return "", false
}

// scan performs the post-run attribution pass: for each stage it keeps the
// last turn carrying the right speaker label and required header, then
// extracts and validates the structured outputs. A missing or mislabeled
// contribution leaves that output empty; the run still completes.
func (c *Coordinator) scan(run *Run) {
	outputs := make(map[stage.Stage]string, len(stage.Sequence()))
	for _, st := range stage.Sequence() {
		persona, err := c.personas.Get(st)
		if err != nil {
			continue
		}
		for _, t := range run.Turns {
			if t.Speaker != persona.Speaker {
				continue
			}
			if !strings.Contains(t.Text, persona.RequiredHeader) {
				c.logger.Warn("stage output missing required header",
					"stage", st.String(),
					"speaker", t.Speaker,
				)
				continue
			}
			outputs[st] = t.Text
		}
	}

	run.SearchResults = outputs[stage.StageSearch]
	run.URLAnalysis = outputs[stage.StageSelect]
	run.ControlsAnalysis = outputs[stage.StageRead]
	if url, ok := extract.LabeledField(run.URLAnalysis, "URL"); ok {
		run.SelectedURL = url
	}

	// The validator's re-emitted table wins; the processor's raw table is
	// the fallback when the validator output is absent or unusable.
	table, ok := extract.TabularBlock(outputs[stage.StageValidate])
	if !ok {
		table, ok = extract.TabularBlock(outputs[stage.StageProcess])
	}
	if !ok {
		run.Validation = schema.Report{
			IsValid:         false,
			Issues:          []string{"no tabular block found in stage output"},
			RequiredColumns: append([]string(nil), schema.RequiredColumns...),
		}
		return
	}

	run.Table = table
	run.Validation = schema.Validate(table)
}

// initialTask is the opening transcript message: the subject, the phrase,
// and the stage duties in order.
func (c *Coordinator) initialTask(subject, phrase string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the documentation for %q and produce a validated security controls table.\n\n", subject)
	fmt.Fprintf(&b, "Search phrase: %s\n\nWorkflow:\n", phrase)
	for i, p := range c.personas.All() {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, p.Speaker, p.Duty)
	}
	return strings.TrimRight(b.String(), "\n")
}

// defaultModel picks the provider's first advertised model when no model
// was configured.
func (c *Coordinator) defaultModel(ctx context.Context) string {
	models, err := c.provider.Models(ctx)
	if err != nil || len(models) == 0 {
		return "default"
	}
	return models[0].Name
}

// SecuritySummary returns the Summary section of the reader stage's
// analysis, used for report generation.
func SecuritySummary(run *Run) string {
	if run == nil {
		return ""
	}
	summary, _ := extract.Section(run.ControlsAnalysis, "Summary")
	return summary
}

// unreachable reports whether a tool error means the provider itself is
// down, which is fatal to the affected run.
func unreachable(err error) bool {
	if err == nil {
		return false
	}
	var ae *types.AnalyzerError
	if errors.As(err, &ae) {
		return ae.Code == types.SERVICE_UNAVAILABLE
	}
	return false
}
