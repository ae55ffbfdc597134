package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/signalnine/sycobench/internal/result"
)

type Entry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Generate reads a run's master record and renders it in the requested
// format: "markdown", "json", or a plain aligned table.
func Generate(runDir, format string, w io.Writer) error {
	header, row, err := result.ReadMaster(result.MasterPath(runDir))
	if err != nil {
		return err
	}
	if len(row) < len(header) {
		return fmt.Errorf("master record has %d values for %d columns", len(row), len(header))
	}
	entries := make([]Entry, len(header))
	for i, name := range header {
		entries[i] = Entry{Name: name, Value: row[i]}
	}

	switch format {
	case "markdown":
		return writeMarkdown(entries, w)
	case "json":
		return writeJSON(entries, w)
	default:
		return writeTable(entries, w)
	}
}

func writeTable(entries []Entry, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tVALUE")
	fmt.Fprintln(tw, strings.Repeat("-", 40))
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\n", e.Name, e.Value)
	}
	return tw.Flush()
}

func writeMarkdown(entries []Entry, w io.Writer) error {
	fmt.Fprintln(w, "| Metric | Value |")
	fmt.Fprintln(w, "|---|---|")
	for _, e := range entries {
		fmt.Fprintf(w, "| %s | %s |\n", e.Name, e.Value)
	}
	return nil
}

func writeJSON(entries []Entry, w io.Writer) error {
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Name] = e.Value
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
