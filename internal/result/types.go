package result

// Stat is one named summary statistic, e.g. pickside_average.
type Stat struct {
	Name  string
	Value float64
}

// TestSummary aggregates one probe's completed rows.
type TestSummary struct {
	Test      string
	Rows      int // rows that reached a terminal state
	ValidRows int // rows whose derived metric is valid
	Stats     []Stat
}

// RunMeta describes one harness run.
type RunMeta struct {
	Model        string
	SystemPrompt string // basename of the override file, "" if none
	Lang         string
	Timestamp    string
	Limit        int // 0 means the full dataset
}

// RunSummary is the master record: every executed test's headline
// statistics plus run metadata, one row per run.
type RunSummary struct {
	Meta  RunMeta
	Stats []Stat
}

// Merge flattens per-test summaries into one master record. It is a
// pure function: same inputs, byte-identical output, in input order.
func Merge(summaries []TestSummary, meta RunMeta) RunSummary {
	rs := RunSummary{Meta: meta}
	for _, s := range summaries {
		rs.Stats = append(rs.Stats, s.Stats...)
	}
	return rs
}
