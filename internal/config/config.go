// Package config loads the benchmark configuration. Every field has a
// usable default so the CLI runs without a config file; a YAML file
// overrides selectively.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/signalnine/sycobench/internal/retry"
)

type Config struct {
	Model       string   `yaml:"model"`
	Judges      []string `yaml:"judges"`
	Lang        string   `yaml:"lang"`
	DatasetsDir string   `yaml:"datasets_dir"`
	Results     Results  `yaml:"results"`
	Concurrency int      `yaml:"concurrency"`
	// Limit caps the dataset rows per test; 0 means no cap.
	Limit int `yaml:"limit"`
	// SystemPromptFile holds an optional persona prepended to every
	// target-model call.
	SystemPromptFile string `yaml:"system_prompt_file"`
	API              API    `yaml:"api"`
	Retry            Retry  `yaml:"retry"`
}

type Results struct {
	Dir string `yaml:"dir"`
}

type API struct {
	BaseURL           string  `yaml:"base_url"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type Retry struct {
	MaxRetries        int `yaml:"max_retries"`
	BaseBackoffMillis int `yaml:"base_backoff_ms"`
	MaxBackoffMillis  int `yaml:"max_backoff_ms"`
}

// DefaultJudges is the scoring ensemble used when the config names
// none. Three judges across vendors so one provider's bias or outage
// does not dominate.
var DefaultJudges = []string{
	"google/gemini-2.5-flash-preview",
	"openai/gpt-4o-mini",
	"meta-llama/llama-3.3-70b-instruct",
}

func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.Judges) == 0 {
		cfg.Judges = append([]string{}, DefaultJudges...)
	}
	if cfg.Lang == "" {
		cfg.Lang = "en"
	}
	if cfg.DatasetsDir == "" {
		cfg.DatasetsDir = "datasets"
	}
	if cfg.Results.Dir == "" {
		cfg.Results.Dir = "output"
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 4
	}
	if cfg.API.TimeoutSeconds == 0 {
		cfg.API.TimeoutSeconds = 30
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry.MaxRetries = 5
	}
	if cfg.Retry.BaseBackoffMillis == 0 {
		cfg.Retry.BaseBackoffMillis = 1000
	}
	if cfg.Retry.MaxBackoffMillis == 0 {
		cfg.Retry.MaxBackoffMillis = 32000
	}
}

func validate(cfg *Config) error {
	if cfg.Lang != "en" && cfg.Lang != "es" {
		return fmt.Errorf("lang must be en or es, got %q", cfg.Lang)
	}
	for i, j := range cfg.Judges {
		if j == "" {
			return fmt.Errorf("judge %d: model name is required", i)
		}
	}
	if cfg.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	if cfg.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	if cfg.API.TimeoutSeconds < 1 {
		return fmt.Errorf("api timeout must be at least 1 second")
	}
	if cfg.API.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative")
	}
	if cfg.Retry.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	return nil
}

// RetryPolicy converts the configured retry settings into the policy
// the API client consumes.
func (c *Config) RetryPolicy() retry.Config {
	policy := retry.DefaultConfig()
	policy.MaxRetries = c.Retry.MaxRetries
	policy.BaseBackoff = time.Duration(c.Retry.BaseBackoffMillis) * time.Millisecond
	policy.MaxBackoff = time.Duration(c.Retry.MaxBackoffMillis) * time.Millisecond
	return policy
}

// Timeout is the per-request HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// SystemPrompt reads the configured persona file. Empty path means no
// system prompt.
func (c *Config) SystemPrompt() (string, error) {
	if c.SystemPromptFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.SystemPromptFile)
	if err != nil {
		return "", fmt.Errorf("reading system prompt %s: %w", c.SystemPromptFile, err)
	}
	return string(data), nil
}
