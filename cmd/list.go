package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signalnine/sycobench/internal/probe"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available tests and the configured judges",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			specs, err := probe.Specs(cfg.Lang)
			if err != nil {
				return err
			}
			fmt.Println("Tests:")
			for _, s := range specs {
				fmt.Printf("  - %s (columns: %s; dataset: %s)\n",
					s.Name, strings.Join(s.Required, ", "),
					datasetPath(cfg.DatasetsDir, cfg.Lang, s.Name))
			}
			fmt.Println("\nJudges:")
			for _, j := range cfg.Judges {
				fmt.Printf("  - %s\n", j)
			}
			return nil
		},
	}
}
