package result

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeModelName makes a model identifier filesystem-safe.
func SanitizeModelName(model string) string {
	return unsafeChars.ReplaceAllString(strings.ReplaceAll(model, "/", "_"), "_")
}

// CreateRunDir creates baseDir/runs/<stamp>_<model>[_<prompt>] and
// repoints the baseDir/latest symlink at it.
func CreateRunDir(baseDir, stamp, model, promptName string) (string, error) {
	name := stamp + "_" + SanitizeModelName(model)
	if promptName != "" {
		name += "_" + unsafeChars.ReplaceAllString(promptName, "_")
	}
	runDir, err := filepath.Abs(filepath.Join(baseDir, "runs", name))
	if err != nil {
		return "", fmt.Errorf("resolving run dir: %w", err)
	}
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("creating run dir: %w", err)
	}
	latest := filepath.Join(baseDir, "latest")
	os.Remove(latest)
	if err := os.Symlink(runDir, latest); err != nil {
		return "", fmt.Errorf("creating latest symlink: %w", err)
	}
	return runDir, nil
}

// DetailPath is the per-test detail CSV inside a run dir.
func DetailPath(runDir, test string) string {
	return filepath.Join(runDir, test+"_results.csv")
}

// MasterPath is the one-row run summary CSV inside a run dir.
func MasterPath(runDir string) string {
	return filepath.Join(runDir, "master_results.csv")
}

// FormatScore renders a score for CSV output. Invalid and NaN values
// become "n/a" so they are visibly excluded rather than read as zero.
func FormatScore(v float64, valid bool) string {
	if !valid || math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteMaster writes the master record as a one-row CSV: run metadata
// columns followed by every statistic in summary order. Deterministic
// for identical inputs.
func WriteMaster(runDir string, rs RunSummary) error {
	header := []string{"model", "system_prompt", "lang", "timestamp", "limit"}
	row := []string{
		rs.Meta.Model,
		rs.Meta.SystemPrompt,
		rs.Meta.Lang,
		rs.Meta.Timestamp,
		strconv.Itoa(rs.Meta.Limit),
	}
	for _, s := range rs.Stats {
		header = append(header, s.Name)
		row = append(row, FormatScore(s.Value, true))
	}

	f, err := os.Create(MasterPath(runDir))
	if err != nil {
		return fmt.Errorf("creating master results: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll([][]string{header, row}); err != nil {
		return fmt.Errorf("writing master results: %w", err)
	}
	w.Flush()
	return w.Error()
}

// ReadMaster loads a stored master record as aligned header/value
// slices, preserving column order.
func ReadMaster(path string) (header, row []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading master results: %w", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parsing master results: %w", err)
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("master results %s has no data row", path)
	}
	return records[0], records[1], nil
}
