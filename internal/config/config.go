package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the repository root.
const FileName = "jdmd.yaml"

// Config represents the jdmd.yaml configuration.
type Config struct {
	Repo       string       `yaml:"repo"`
	Ignore     []string     `yaml:"ignore"`
	Extractors []string     `yaml:"extractors"`
	Explainers []string     `yaml:"explainers"`
	Renderers  []string     `yaml:"renderers"`
	Lint       bool         `yaml:"lint"`
	Workers    int          `yaml:"workers"`
	Output     OutputConfig `yaml:"output"`
	Watch      WatchConfig  `yaml:"watch"`
}

// OutputConfig controls where and how output artifacts are generated.
type OutputConfig struct {
	Dir              string `yaml:"dir"`
	MaxSummaryTokens int    `yaml:"max_summary_tokens"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	DebounceMillis int `yaml:"debounce_ms"`
}

const (
	defaultOutputDir  = "docs"
	defaultMaxTokens  = 4000
	defaultDebounceMS = 500
)

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Repo: ".",
		Ignore: []string{
			".git/**",
			".idea/**",
			"target/**",
			"build/**",
			"out/**",
			"node_modules/**",
		},
		Extractors: []string{"java"},
		Explainers: []string{"cycles", "layers", "doclint"},
		Renderers:  []string{"markdown", "summary", "model"},
		Output: OutputConfig{
			Dir:              defaultOutputDir,
			MaxSummaryTokens: defaultMaxTokens,
		},
		Watch: WatchConfig{DebounceMillis: defaultDebounceMS},
	}
}

// Load reads a configuration file from the given path.
// Missing fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Ensure required defaults
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = defaultOutputDir
	}
	if cfg.Output.MaxSummaryTokens == 0 {
		cfg.Output.MaxSummaryTokens = defaultMaxTokens
	}
	if cfg.Watch.DebounceMillis == 0 {
		cfg.Watch.DebounceMillis = defaultDebounceMS
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to defaults when
// it does not.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate rejects values no run can use.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Output.MaxSummaryTokens < 0 {
		return fmt.Errorf("output.max_summary_tokens must not be negative, got %d", c.Output.MaxSummaryTokens)
	}
	if c.Watch.DebounceMillis < 0 {
		return fmt.Errorf("watch.debounce_ms must not be negative, got %d", c.Watch.DebounceMillis)
	}
	return nil
}

// IsExtractorEnabled returns true if the named extractor is enabled.
func (c *Config) IsExtractorEnabled(name string) bool {
	return contains(c.Extractors, name)
}

// IsExplainerEnabled returns true if the named explainer is enabled.
func (c *Config) IsExplainerEnabled(name string) bool {
	return contains(c.Explainers, name)
}

// IsRendererEnabled returns true if the named renderer is enabled.
func (c *Config) IsRendererEnabled(name string) bool {
	return contains(c.Renderers, name)
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
