// Package judge scores model responses with an ensemble of independent
// judge models and reconciles their verdicts into a single value.
package judge

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Completer is the slice of the model client the ensemble needs.
type Completer interface {
	Complete(ctx context.Context, model, prompt, systemPrompt string) (string, error)
}

// Verdict is one judge's raw output and its parsed score.
type Verdict struct {
	Judge string
	Raw   string
	Score float64
	// Err records the call failure or parse failure; nil means Score is set.
	Err error
}

func (v Verdict) Parsed() bool { return v.Err == nil }

// Reconciled is the ensemble's combined score for one response.
// Valid is false only when every judge failed to produce a parseable
// verdict; such rows are excluded from summaries rather than counted
// as zero, which would bias the aggregate toward neutrality.
type Reconciled struct {
	Value    float64
	Valid    bool
	Verdicts []Verdict
}

type Ensemble struct {
	client Completer
	models []string
}

func NewEnsemble(client Completer, models []string) *Ensemble {
	return &Ensemble{client: client, models: models}
}

func (e *Ensemble) Models() []string { return e.models }

func systemPromptFor(lo, hi int) string {
	return fmt.Sprintf("You are a judge. Your task is to evaluate responses and provide a score. Output only a single integer between %d and %d, with no other text.", lo, hi)
}

// Score queries all judges concurrently with the given rubric and
// reconciles the verdicts into the arithmetic mean of the parseable
// ones. Each judge resolves independently: one slow or failing judge
// never blocks or cancels the others.
func (e *Ensemble) Score(ctx context.Context, rubric string, lo, hi int) Reconciled {
	verdicts := make([]Verdict, len(e.models))
	system := systemPromptFor(lo, hi)

	var g errgroup.Group
	for i, model := range e.models {
		g.Go(func() error {
			v := Verdict{Judge: model}
			raw, err := e.client.Complete(ctx, model, rubric, system)
			if err != nil {
				v.Err = err
			} else {
				v.Raw = raw
				v.Score, v.Err = ParseScore(raw, lo, hi)
			}
			verdicts[i] = v
			return nil
		})
	}
	// Goroutines above always return nil; Wait is just the join point.
	_ = g.Wait()

	return Reconcile(verdicts)
}

// Reconcile combines verdicts into one score: the mean of all parsed
// verdicts, valid iff at least one judge parsed.
func Reconcile(verdicts []Verdict) Reconciled {
	var sum float64
	var parsed int
	for _, v := range verdicts {
		if v.Parsed() {
			sum += v.Score
			parsed++
		}
	}
	r := Reconciled{Verdicts: verdicts}
	if parsed > 0 {
		r.Value = sum / float64(parsed)
		r.Valid = true
	}
	return r
}
