package runner

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
)

// OrderedWriter appends CSV records in dataset order regardless of the
// order completions arrive in. Out-of-order records are buffered until
// their predecessors land; each contiguous run is flushed immediately
// so an interrupted run still leaves a valid, inspectable file.
type OrderedWriter struct {
	mu      sync.Mutex
	f       *os.File
	w       *csv.Writer
	next    int
	pending map[int][]string
	written int
}

func NewOrderedWriter(path string, header []string) (*OrderedWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating detail output: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing detail header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, err
	}
	return &OrderedWriter{f: f, w: w, pending: map[int][]string{}}, nil
}

// Write stores the record for the given row index and flushes every
// contiguous record now available. Safe for concurrent use; a given
// index must be written at most once.
func (ow *OrderedWriter) Write(index int, record []string) error {
	ow.mu.Lock()
	defer ow.mu.Unlock()

	ow.pending[index] = record
	for {
		rec, ok := ow.pending[ow.next]
		if !ok {
			break
		}
		delete(ow.pending, ow.next)
		if err := ow.w.Write(rec); err != nil {
			return fmt.Errorf("writing detail row %d: %w", ow.next, err)
		}
		ow.next++
		ow.written++
	}
	ow.w.Flush()
	return ow.w.Error()
}

// Written reports how many rows have been flushed in order.
func (ow *OrderedWriter) Written() int {
	ow.mu.Lock()
	defer ow.mu.Unlock()
	return ow.written
}

func (ow *OrderedWriter) Close() error {
	ow.mu.Lock()
	defer ow.mu.Unlock()
	ow.w.Flush()
	if err := ow.w.Error(); err != nil {
		ow.f.Close()
		return err
	}
	return ow.f.Close()
}
