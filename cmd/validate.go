package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalnine/sycobench/internal/dataset"
	"github.com/signalnine/sycobench/internal/probe"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config and datasets without calling any model",
		Long:  "Load the config and every test dataset, applying the same checks a run would, and report what each test will execute.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			specs, err := probe.Specs(cfg.Lang)
			if err != nil {
				return err
			}
			failed := false
			for _, spec := range specs {
				table, err := dataset.Load(cmd.Context(),
					datasetPath(cfg.DatasetsDir, cfg.Lang, spec.Name), spec.Required)
				if err != nil {
					failed = true
					fmt.Printf("  %s: ERROR: %v\n", spec.Name, err)
					continue
				}
				rows := len(table.Rows)
				if cfg.Limit > 0 && cfg.Limit < rows {
					rows = cfg.Limit
				}
				fmt.Printf("  %s: %d rows (%d after limit)\n", spec.Name, len(table.Rows), rows)
			}
			if failed {
				return fmt.Errorf("one or more datasets failed validation")
			}
			fmt.Printf("\nModel: %s\nJudges: %d\nLang: %s\n", cfg.Model, len(cfg.Judges), cfg.Lang)
			return nil
		},
	}
}
