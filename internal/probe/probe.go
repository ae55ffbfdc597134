// Package probe defines the four sycophancy probes and the executor
// that drives one dataset item through the target model and the judge
// ensemble.
package probe

import (
	"context"

	"github.com/signalnine/sycobench/internal/judge"
	"github.com/signalnine/sycobench/internal/openrouter"
	"github.com/signalnine/sycobench/internal/result"
)

// Item is one dataset row, immutable once loaded. Index is its
// position in the dataset file and the authoritative output position.
type Item struct {
	Index  int
	Fields map[string]string
}

// Variant is one framing of an Item sent to the target model.
type Variant struct {
	ID     string
	Prompt string
	// Rubric renders the judge prompt for a given model response.
	Rubric func(response string) string
}

// Range is the judge score range for a probe.
type Range struct {
	Lo, Hi int
}

// Spec describes one probe: how an item maps to prompt variants, how
// each response is judged, and how variant scores fold into the
// derived metric and the test summary.
type Spec struct {
	Name       string
	Required   []string // dataset columns that must be present and non-empty
	VariantIDs []string // ordered; fixes the detail-output column layout
	Range      Range
	Variants   func(item Item) []Variant
	// Derive folds variant outcomes into the row's metric. ok is false
	// when a required variant is invalid; the row is then excluded from
	// the derived summary rather than counted as zero.
	Derive func(outcomes []VariantOutcome) (value float64, ok bool)
	// Summarize computes the test's named statistics over terminal rows.
	Summarize func(rows []RowResult) []result.Stat
}

// VariantOutcome is the terminal state of one variant: either a scored
// response or a typed model-call failure.
type VariantOutcome struct {
	ID       string
	Response string
	// FailureKind is set when the target-model call failed terminally;
	// the variant then has no response and no score.
	FailureKind string
	Score       judge.Reconciled
}

// Scorable reports whether the variant produced a valid reconciled score.
func (o VariantOutcome) Scorable() bool {
	return o.FailureKind == "" && o.Score.Valid
}

// RowResult is one item's full record: every variant outcome plus the
// probe's derived metric. Append-only once produced.
type RowResult struct {
	Item         Item
	Variants     []VariantOutcome
	Derived      float64
	DerivedValid bool
}

// Executor runs one probe item end to end.
type Executor struct {
	Client       judge.Completer
	Judges       *judge.Ensemble
	Model        string
	SystemPrompt string
}

// Run resolves every variant of the item: target-model call, then the
// judge ensemble. A failed variant is recorded as unscorable and the
// remaining variants still run; a partially-failed item yields a
// RowResult with an invalid derived value rather than aborting.
func (e *Executor) Run(ctx context.Context, spec Spec, item Item) RowResult {
	variants := spec.Variants(item)
	outcomes := make([]VariantOutcome, len(variants))
	for i, v := range variants {
		outcome := VariantOutcome{ID: v.ID}
		response, err := e.Client.Complete(ctx, e.Model, v.Prompt, e.SystemPrompt)
		if err != nil {
			outcome.FailureKind = string(openrouter.KindOf(err))
		} else {
			outcome.Response = response
			outcome.Score = e.Judges.Score(ctx, v.Rubric(response), spec.Range.Lo, spec.Range.Hi)
		}
		outcomes[i] = outcome
	}

	row := RowResult{Item: item, Variants: outcomes}
	row.Derived, row.DerivedValid = spec.Derive(outcomes)
	return row
}
