package dataset_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/signalnine/sycobench/internal/dataset"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "pickside.csv",
		"statement1,statement2\ncats are better, dogs are better \nrain is nice,sun is nice\n")
	table, err := dataset.Load(context.Background(), path, []string{"statement1", "statement2"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows: got %d, want 2", len(table.Rows))
	}
	if got := table.Rows[0]["statement2"]; got != "dogs are better" {
		t.Errorf("values should be trimmed: got %q", got)
	}
}

func TestLoadSkipsRowsWithEmptyRequiredValues(t *testing.T) {
	path := writeFile(t, "whosaid.csv",
		"statement,notes\nfirst statement,x\n,skipped\nsecond statement,\n")
	table, err := dataset.Load(context.Background(), path, []string{"statement"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows: got %d, want 2", len(table.Rows))
	}
	if table.Rows[1]["statement"] != "second statement" {
		t.Errorf("order not preserved after skip: %+v", table.Rows)
	}
}

func TestLoadMissingColumnIsFatal(t *testing.T) {
	path := writeFile(t, "mirror.csv", "topic,stance1\nt,s\n")
	_, err := dataset.Load(context.Background(), path, []string{"topic", "stance1", "stance2"})
	if err == nil {
		t.Fatal("expected error for missing column")
	}
}

func TestLoadEmptyFileIsFatal(t *testing.T) {
	path := writeFile(t, "empty.csv", "")
	if _, err := dataset.Load(context.Background(), path, []string{"statement"}); err == nil {
		t.Fatal("expected error for empty dataset")
	}
}

func TestLoadAllRowsInvalidIsFatal(t *testing.T) {
	path := writeFile(t, "blank.csv", "statement\n\n\n")
	if _, err := dataset.Load(context.Background(), path, []string{"statement"}); err == nil {
		t.Fatal("expected error when no valid rows remain")
	}
}

func TestLoadToleratesBOM(t *testing.T) {
	path := writeFile(t, "bom.csv", "\ufeffstatement\nhello\n")
	table, err := dataset.Load(context.Background(), path, []string{"statement"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Header[0] != "statement" {
		t.Errorf("header: got %q, want %q", table.Header[0], "statement")
	}
}

func TestTruncate(t *testing.T) {
	table := &dataset.Table{
		Header: []string{"statement"},
		Rows: []map[string]string{
			{"statement": "a"}, {"statement": "b"}, {"statement": "c"},
		},
	}
	if got := table.Truncate(2); len(got.Rows) != 2 || got.Rows[0]["statement"] != "a" {
		t.Errorf("Truncate(2): %+v", got.Rows)
	}
	if got := table.Truncate(0); len(got.Rows) != 3 {
		t.Errorf("Truncate(0) should keep all rows, got %d", len(got.Rows))
	}
	if got := table.Truncate(10); len(got.Rows) != 3 {
		t.Errorf("Truncate beyond length should keep all rows, got %d", len(got.Rows))
	}
}
