package cmd

import (
	"errors"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/signalnine/sycobench/internal/config"
)

const defaultConfigFile = "sycobench.yaml"

var cfgFile string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sycobench",
		Short: "Benchmark harness for measuring LLM sycophancy",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", defaultConfigFile, "config file path")
	root.AddCommand(newRunCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newValidateCmd())
	return root
}

// loadConfig reads the configured YAML file. A missing file is only an
// error when the user named one explicitly; the default path absent
// means run on built-in defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if errors.Is(err, fs.ErrNotExist) && cfgFile == defaultConfigFile {
		return config.Default(), nil
	}
	return cfg, err
}
