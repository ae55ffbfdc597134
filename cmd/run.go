package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"github.com/signalnine/sycobench/internal/dataset"
	"github.com/signalnine/sycobench/internal/judge"
	"github.com/signalnine/sycobench/internal/openrouter"
	"github.com/signalnine/sycobench/internal/probe"
	"github.com/signalnine/sycobench/internal/report"
	"github.com/signalnine/sycobench/internal/result"
	"github.com/signalnine/sycobench/internal/runner"
)

var (
	flagModel    string
	flagTests    []string
	flagLimit    int
	flagParallel int
	flagSystem   string
	flagLang     string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a benchmark run against a target model",
		RunE:  runBenchmark,
	}
	cmd.Flags().StringVar(&flagModel, "model", "", "target model to benchmark (required unless set in config)")
	cmd.Flags().StringSliceVar(&flagTests, "test", nil, "run only the named tests (default: all)")
	cmd.Flags().IntVar(&flagLimit, "limit", 0, "cap dataset rows per test")
	cmd.Flags().IntVar(&flagParallel, "parallel", 0, "max concurrent items per test")
	cmd.Flags().StringVar(&flagSystem, "system", "", "file holding a system prompt for the target model")
	cmd.Flags().StringVar(&flagLang, "lang", "", "prompt language (en, es)")
	return cmd
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagModel != "" {
		cfg.Model = flagModel
	}
	if cfg.Model == "" {
		return fmt.Errorf("no target model: pass --model or set model in the config")
	}
	if flagLimit > 0 {
		cfg.Limit = flagLimit
	}
	if flagParallel > 0 {
		cfg.Concurrency = flagParallel
	}
	if flagSystem != "" {
		cfg.SystemPromptFile = flagSystem
	}
	if flagLang != "" {
		cfg.Lang = flagLang
	}

	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY is not set")
	}
	systemPrompt, err := cfg.SystemPrompt()
	if err != nil {
		return err
	}

	tests, err := selectTests(flagTests)
	if err != nil {
		return err
	}
	specs := make([]probe.Spec, 0, len(tests))
	for _, name := range tests {
		spec, err := probe.ByName(name, cfg.Lang)
		if err != nil {
			return err
		}
		specs = append(specs, spec)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Every dataset must load cleanly before the first API call goes
	// out, so a typo in one CSV cannot waste a half-finished run.
	tables := make(map[string]*dataset.Table, len(specs))
	for _, spec := range specs {
		table, err := dataset.Load(ctx, datasetPath(cfg.DatasetsDir, cfg.Lang, spec.Name), spec.Required)
		if err != nil {
			return err
		}
		tables[spec.Name] = table.Truncate(cfg.Limit)
	}

	stamp := time.Now().Format("20060102_150405")
	runDir, err := result.CreateRunDir(cfg.Results.Dir, stamp, cfg.Model, promptName(cfg.SystemPromptFile))
	if err != nil {
		return err
	}
	fmt.Printf("Run directory: %s\n", runDir)

	logFile, err := os.Create(filepath.Join(runDir, "run.log"))
	if err != nil {
		return fmt.Errorf("creating run log: %w", err)
	}
	defer logFile.Close()
	logger := clog.NewLogger(slog.New(slog.NewTextHandler(
		io.MultiWriter(os.Stderr, logFile), nil)))
	ctx = clog.WithLogger(ctx, logger)

	client := openrouter.New("", apiKey,
		openrouter.WithTimeout(cfg.Timeout()),
		openrouter.WithRetryPolicy(cfg.RetryPolicy()),
		openrouter.WithRequestsPerSecond(cfg.API.RequestsPerSecond),
	)
	executor := &probe.Executor{
		Client:       client,
		Judges:       judge.NewEnsemble(client, cfg.Judges),
		Model:        cfg.Model,
		SystemPrompt: systemPrompt,
	}

	var summaries []result.TestSummary
	for _, spec := range specs {
		if ctx.Err() != nil {
			logger.Warnf("Skipping remaining tests: %v", ctx.Err())
			break
		}
		table := tables[spec.Name]
		logger.With("test", spec.Name).With("items", len(table.Rows)).Info("Starting test")
		summary, err := runner.Execute(ctx, runner.Options{
			Spec:        spec,
			Table:       table,
			Executor:    executor,
			Concurrency: cfg.Concurrency,
			DetailPath:  result.DetailPath(runDir, spec.Name),
		})
		if err != nil {
			return err
		}
		logger.With("test", spec.Name).
			With("rows", summary.Rows).
			With("valid", summary.ValidRows).
			Info("Test complete")
		summaries = append(summaries, summary)
	}

	merged := result.Merge(summaries, result.RunMeta{
		Model:        cfg.Model,
		SystemPrompt: promptName(cfg.SystemPromptFile),
		Lang:         cfg.Lang,
		Timestamp:    time.Now().Format("2006-01-02 15:04:05"),
		Limit:        cfg.Limit,
	})
	if err := result.WriteMaster(runDir, merged); err != nil {
		return err
	}

	fmt.Println("\n--- Results ---")
	return report.Generate(runDir, "table", os.Stdout)
}

// selectTests resolves the --test selection against the known test
// names, defaulting to all of them in canonical order.
func selectTests(requested []string) ([]string, error) {
	all := probe.Names()
	if len(requested) == 0 {
		return all, nil
	}
	known := map[string]bool{}
	for _, name := range all {
		known[name] = true
	}
	seen := map[string]bool{}
	var tests []string
	for _, name := range requested {
		name = strings.TrimSpace(name)
		if !known[name] {
			return nil, fmt.Errorf("unknown test %q (available: %s)", name, strings.Join(all, ", "))
		}
		if !seen[name] {
			seen[name] = true
			tests = append(tests, name)
		}
	}
	return tests, nil
}

// datasetPath resolves a test's dataset per language, mirroring the
// datasets/<lang>/<test>.csv layout.
func datasetPath(dir, lang, test string) string {
	return filepath.Join(dir, lang, test+".csv")
}

// promptName is the run-dir suffix for a system prompt file: its base
// name without extension. Empty when no prompt is configured.
func promptName(path string) string {
	if path == "" {
		return ""
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
