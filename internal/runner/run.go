// Package runner schedules probe items under a bounded concurrency
// limit and persists row results incrementally in dataset order.
package runner

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/chainguard-dev/clog"
	"github.com/signalnine/sycobench/internal/dataset"
	"github.com/signalnine/sycobench/internal/probe"
	"github.com/signalnine/sycobench/internal/result"
)

type Options struct {
	Spec     probe.Spec
	Table    *dataset.Table
	Executor *probe.Executor
	// Concurrency bounds in-flight probe items; minimum 1.
	Concurrency int
	// DetailPath is the per-test CSV the run appends to.
	DetailPath string
}

// Execute runs every row of the table through the probe executor with
// at most Concurrency items in flight, appends each RowResult to the
// detail CSV in dataset order, and computes the test summary over the
// rows that reached a terminal state. Cancelling ctx stops scheduling
// new items; in-flight items resolve individually and the partial
// detail file and summary remain valid.
func Execute(ctx context.Context, opts Options) (result.TestSummary, error) {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	items := opts.Table.Rows
	log := clog.FromContext(ctx).With("test", opts.Spec.Name)

	writer, err := NewOrderedWriter(opts.DetailPath, headerFor(opts.Spec, opts.Table.Header))
	if err != nil {
		return result.TestSummary{}, err
	}
	defer writer.Close()

	resultCh := make(chan probe.RowResult, len(items))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	var done atomic.Int64

	scheduled := 0
	total := len(items)
	for i, fields := range items {
		if ctx.Err() != nil {
			log.Warnf("Stopping scheduling after %d/%d items: %v", scheduled, total, ctx.Err())
			break
		}
		sem <- struct{}{}
		scheduled++
		wg.Add(1)
		item := probe.Item{Index: i, Fields: fields}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			row := opts.Executor.Run(ctx, opts.Spec, item)
			log.With("item", item.Index+1).
				With("done", done.Add(1)).
				With("total", total).
				With("derived_valid", row.DerivedValid).
				Info("Item complete")
			resultCh <- row
		}()
	}
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	completed := make([]probe.RowResult, 0, scheduled)
	var writeErr error
	for row := range resultCh {
		completed = append(completed, row)
		if err := writer.Write(row.Item.Index, recordFor(opts.Spec, opts.Table.Header, row)); err != nil && writeErr == nil {
			writeErr = err
		}
	}
	if writeErr != nil {
		return result.TestSummary{}, writeErr
	}

	valid := 0
	for _, row := range completed {
		if row.DerivedValid {
			valid++
		}
	}
	summary := result.TestSummary{
		Test:      opts.Spec.Name,
		Rows:      len(completed),
		ValidRows: valid,
		Stats:     opts.Spec.Summarize(completed),
	}
	return summary, writer.Close()
}

// headerFor lays out the detail CSV: the dataset columns as authored,
// then per-variant response/verdicts/score/error columns, then the
// derived metric and its validity flag.
func headerFor(spec probe.Spec, datasetHeader []string) []string {
	header := append([]string{}, datasetHeader...)
	for _, id := range spec.VariantIDs {
		header = append(header,
			"response_"+id,
			"judge_scores_"+id,
			"score_"+id,
			"error_"+id,
		)
	}
	return append(header, "derived", "derived_valid")
}

func recordFor(spec probe.Spec, datasetHeader []string, row probe.RowResult) []string {
	record := make([]string, 0, len(datasetHeader)+4*len(row.Variants)+2)
	for _, col := range datasetHeader {
		record = append(record, row.Item.Fields[col])
	}
	for _, o := range row.Variants {
		record = append(record,
			o.Response,
			renderVerdicts(o),
			result.FormatScore(o.Score.Value, o.Score.Valid),
			o.FailureKind,
		)
	}
	return append(record,
		result.FormatScore(row.Derived, row.DerivedValid),
		strconv.FormatBool(row.DerivedValid),
	)
}

// renderVerdicts keeps each judge's individual score auditable in the
// detail output, with parse failures shown as n/a.
func renderVerdicts(o probe.VariantOutcome) string {
	if o.FailureKind != "" {
		return ""
	}
	parts := make([]string, len(o.Score.Verdicts))
	for i, v := range o.Score.Verdicts {
		if v.Parsed() {
			parts[i] = result.FormatScore(v.Score, true)
		} else {
			parts[i] = "n/a"
		}
	}
	return strings.Join(parts, ";")
}
