package judge_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/signalnine/sycobench/internal/judge"
)

// fakeCompleter returns canned responses keyed by judge model name.
type fakeCompleter struct {
	responses map[string]string
	errs      map[string]error
}

func (f *fakeCompleter) Complete(_ context.Context, model, prompt, systemPrompt string) (string, error) {
	if err, ok := f.errs[model]; ok {
		return "", err
	}
	return f.responses[model], nil
}

func TestScoreMeanOfParsedVerdicts(t *testing.T) {
	fc := &fakeCompleter{responses: map[string]string{
		"judge-a": "2",
		"judge-b": "2",
		"judge-c": "-5",
	}}
	e := judge.NewEnsemble(fc, []string{"judge-a", "judge-b", "judge-c"})
	got := e.Score(context.Background(), "rubric", -5, 5)
	if !got.Valid {
		t.Fatal("expected valid reconciled score")
	}
	want := (2.0 + 2.0 - 5.0) / 3.0
	if math.Abs(got.Value-want) > 1e-9 {
		t.Errorf("value: got %v, want %v", got.Value, want)
	}
	if len(got.Verdicts) != 3 {
		t.Errorf("verdicts: got %d, want 3", len(got.Verdicts))
	}
}

func TestScoreIgnoresUnparseableVerdicts(t *testing.T) {
	fc := &fakeCompleter{responses: map[string]string{
		"judge-a": "4",
		"judge-b": "I decline to answer.",
		"judge-c": "2",
	}}
	e := judge.NewEnsemble(fc, []string{"judge-a", "judge-b", "judge-c"})
	got := e.Score(context.Background(), "rubric", -5, 5)
	if !got.Valid {
		t.Fatal("expected valid score from the two parseable judges")
	}
	if got.Value != 3 {
		t.Errorf("value: got %v, want 3", got.Value)
	}
	if got.Verdicts[1].Parsed() {
		t.Error("judge-b verdict should be a parse failure")
	}
}

func TestScoreAllJudgesFailedIsInvalid(t *testing.T) {
	fc := &fakeCompleter{
		responses: map[string]string{"judge-a": "no score here"},
		errs: map[string]error{
			"judge-b": errors.New("rate limited"),
			"judge-c": errors.New("timeout"),
		},
	}
	e := judge.NewEnsemble(fc, []string{"judge-a", "judge-b", "judge-c"})
	got := e.Score(context.Background(), "rubric", -5, 5)
	if got.Valid {
		t.Fatal("expected invalid score when every judge fails")
	}
	if got.Value != 0 {
		t.Errorf("invalid score should carry no value, got %v", got.Value)
	}
}

func TestScorePassesRangeToSystemPrompt(t *testing.T) {
	var seenSystem string
	fc := &completerFunc{fn: func(model, prompt, system string) (string, error) {
		seenSystem = system
		return "3", nil
	}}
	e := judge.NewEnsemble(fc, []string{"judge-a"})
	e.Score(context.Background(), "rubric", 0, 5)
	if !strings.Contains(seenSystem, "between 0 and 5") {
		t.Errorf("system prompt missing range: %q", seenSystem)
	}
}

type completerFunc struct {
	fn func(model, prompt, system string) (string, error)
}

func (c *completerFunc) Complete(_ context.Context, model, prompt, system string) (string, error) {
	return c.fn(model, prompt, system)
}

func TestReconcileOrderIndependentOfCompletion(t *testing.T) {
	verdicts := []judge.Verdict{
		{Judge: "a", Score: 1},
		{Judge: "b", Score: 2},
		{Judge: "c", Err: errors.New("parse failure")},
	}
	got := judge.Reconcile(verdicts)
	if !got.Valid || got.Value != 1.5 {
		t.Errorf("got %+v, want value 1.5 valid", got)
	}
}
