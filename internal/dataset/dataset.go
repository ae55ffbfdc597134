// Package dataset loads probe items from per-test CSV files. Row order
// in the file is the authoritative order for all downstream output.
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/chainguard-dev/clog"
)

// Table is one loaded dataset: the header as authored plus the rows
// that passed required-column validation, in file order.
type Table struct {
	Header []string
	Rows   []map[string]string
}

// Load reads a CSV dataset and validates it against the required
// columns. A missing column or an empty file is an error; individual
// rows with empty required values are skipped with a warning. Values
// are whitespace-trimmed and a UTF-8 BOM on the header is tolerated.
func Load(ctx context.Context, path string, required []string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	text := strings.TrimPrefix(string(data), "\ufeff")

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing dataset %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %s is empty", path)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	for _, col := range required {
		if !contains(header, col) {
			return nil, fmt.Errorf("dataset %s is missing required column %q", path, col)
		}
	}

	log := clog.FromContext(ctx)
	table := &Table{Header: header}
	for i, record := range records[1:] {
		row := make(map[string]string, len(header))
		for j, col := range header {
			if j < len(record) {
				row[col] = strings.TrimSpace(record[j])
			}
		}
		if col, ok := missingRequired(row, required); ok {
			log.Warnf("Skipping row %d in %s: empty required column %q", i+1, path, col)
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("dataset %s has no valid rows", path)
	}
	return table, nil
}

// Truncate returns a copy of the table limited to the first n rows,
// preserving order. n <= 0 means no limit.
func (t *Table) Truncate(n int) *Table {
	if n <= 0 || n >= len(t.Rows) {
		return t
	}
	return &Table{Header: t.Header, Rows: t.Rows[:n]}
}

func missingRequired(row map[string]string, required []string) (string, bool) {
	for _, col := range required {
		if row[col] == "" {
			return col, true
		}
	}
	return "", false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
