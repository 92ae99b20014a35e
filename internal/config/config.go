package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ConfigFileName is the project configuration file looked up by default
const ConfigFileName = ".treerate.toml"

// EnvPrefix prefixes environment overrides, e.g. TREERATE_COST_MODEL=label_distance
const EnvPrefix = "TREERATE"

// Default settings
const (
	DefaultCostModel          = "unit"
	DefaultRootPolicy         = "first_key"
	DefaultSyntheticRootLabel = "root"
	DefaultInputFormat        = "auto"
	DefaultMissingHypothesis  = "empty"
	DefaultMaxDepth           = 1000
	DefaultOutputFormat       = "text"
	DefaultSortBy             = "name"
	DefaultMaxGoroutines      = 4
	DefaultTimeoutSeconds     = 300
)

// Config represents the main configuration structure
type Config struct {
	// Cost selects the edit cost model
	Cost CostConfig `mapstructure:"cost" toml:"cost" yaml:"cost"`

	// Tree controls how documents become trees
	Tree TreeConfig `mapstructure:"tree" toml:"tree" yaml:"tree"`

	// Input controls document discovery and decoding
	Input InputConfig `mapstructure:"input" toml:"input" yaml:"input"`

	// Output holds output formatting configuration
	Output OutputConfig `mapstructure:"output" toml:"output" yaml:"output"`

	// Performance bounds batch scoring
	Performance PerformanceConfig `mapstructure:"performance" toml:"performance" yaml:"performance"`
}

// CostConfig represents the [cost] section
type CostConfig struct {
	// Model is "unit" or "label_distance"
	Model string `mapstructure:"model" toml:"model" yaml:"model"`

	// CERWeighted scales relabel costs by the character error rate between labels
	CERWeighted bool `mapstructure:"cer_weighted" toml:"cer_weighted" yaml:"cer_weighted"`

	// Per-operation multipliers applied on top of the model
	InsertWeight float64 `mapstructure:"insert_weight" toml:"insert_weight" yaml:"insert_weight"`
	RemoveWeight float64 `mapstructure:"remove_weight" toml:"remove_weight" yaml:"remove_weight"`
	UpdateWeight float64 `mapstructure:"update_weight" toml:"update_weight" yaml:"update_weight"`
}

// TreeConfig represents the [tree] section
type TreeConfig struct {
	RootPolicy         string `mapstructure:"root_policy" toml:"root_policy" yaml:"root_policy"`
	SyntheticRootLabel string `mapstructure:"synthetic_root_label" toml:"synthetic_root_label" yaml:"synthetic_root_label"`
}

// InputConfig represents the [input] section
type InputConfig struct {
	Format            string   `mapstructure:"format" toml:"format" yaml:"format"`
	IncludePatterns   []string `mapstructure:"include_patterns" toml:"include_patterns" yaml:"include_patterns"`
	ExcludePatterns   []string `mapstructure:"exclude_patterns" toml:"exclude_patterns" yaml:"exclude_patterns"`
	Recursive         bool     `mapstructure:"recursive" toml:"recursive" yaml:"recursive"`
	MissingHypothesis string   `mapstructure:"missing_hypothesis" toml:"missing_hypothesis" yaml:"missing_hypothesis"`
	MaxDepth          int      `mapstructure:"max_depth" toml:"max_depth" yaml:"max_depth"`
}

// OutputConfig represents the [output] section
type OutputConfig struct {
	Format         string `mapstructure:"format" toml:"format" yaml:"format"`
	ShowOperations bool   `mapstructure:"show_operations" toml:"show_operations" yaml:"show_operations"`
	ShowTrees      bool   `mapstructure:"show_trees" toml:"show_trees" yaml:"show_trees"`
	SortBy         string `mapstructure:"sort_by" toml:"sort_by" yaml:"sort_by"`
	Directory      string `mapstructure:"directory" toml:"directory" yaml:"directory"`
}

// PerformanceConfig represents the [performance] section
type PerformanceConfig struct {
	MaxGoroutines  int `mapstructure:"max_goroutines" toml:"max_goroutines" yaml:"max_goroutines"`
	TimeoutSeconds int `mapstructure:"timeout_seconds" toml:"timeout_seconds" yaml:"timeout_seconds"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Cost: CostConfig{
			Model:        DefaultCostModel,
			CERWeighted:  false,
			InsertWeight: 1.0,
			RemoveWeight: 1.0,
			UpdateWeight: 1.0,
		},
		Tree: TreeConfig{
			RootPolicy:         DefaultRootPolicy,
			SyntheticRootLabel: DefaultSyntheticRootLabel,
		},
		Input: InputConfig{
			Format:            DefaultInputFormat,
			IncludePatterns:   []string{"**/*.json", "**/*.yaml", "**/*.yml"},
			ExcludePatterns:   []string{},
			Recursive:         true,
			MissingHypothesis: DefaultMissingHypothesis,
			MaxDepth:          DefaultMaxDepth,
		},
		Output: OutputConfig{
			Format:         DefaultOutputFormat,
			ShowOperations: false,
			ShowTrees:      false,
			SortBy:         DefaultSortBy,
		},
		Performance: PerformanceConfig{
			MaxGoroutines:  DefaultMaxGoroutines,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
	}
}

// LoadConfig loads configuration from file, then applies TREERATE_* environment overrides.
// An empty path searches for .treerate.toml from the working directory upwards; when
// nothing is found the defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			configPath = FindDefaultConfig(cwd)
		}
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if filepath.Ext(configPath) == "" {
			v.SetConfigType("toml")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults registers every key so environment overrides apply even without a file
func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("cost.model", defaults.Cost.Model)
	v.SetDefault("cost.cer_weighted", defaults.Cost.CERWeighted)
	v.SetDefault("cost.insert_weight", defaults.Cost.InsertWeight)
	v.SetDefault("cost.remove_weight", defaults.Cost.RemoveWeight)
	v.SetDefault("cost.update_weight", defaults.Cost.UpdateWeight)

	v.SetDefault("tree.root_policy", defaults.Tree.RootPolicy)
	v.SetDefault("tree.synthetic_root_label", defaults.Tree.SyntheticRootLabel)

	v.SetDefault("input.format", defaults.Input.Format)
	v.SetDefault("input.include_patterns", defaults.Input.IncludePatterns)
	v.SetDefault("input.exclude_patterns", defaults.Input.ExcludePatterns)
	v.SetDefault("input.recursive", defaults.Input.Recursive)
	v.SetDefault("input.missing_hypothesis", defaults.Input.MissingHypothesis)
	v.SetDefault("input.max_depth", defaults.Input.MaxDepth)

	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("output.show_operations", defaults.Output.ShowOperations)
	v.SetDefault("output.show_trees", defaults.Output.ShowTrees)
	v.SetDefault("output.sort_by", defaults.Output.SortBy)
	v.SetDefault("output.directory", defaults.Output.Directory)

	v.SetDefault("performance.max_goroutines", defaults.Performance.MaxGoroutines)
	v.SetDefault("performance.timeout_seconds", defaults.Performance.TimeoutSeconds)
}

// FindDefaultConfig looks for .treerate.toml in startDir and its parents, then in the home directory
func FindDefaultConfig(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err == nil {
		for {
			candidate := filepath.Join(dir, ConfigFileName)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	switch c.Cost.Model {
	case "unit", "label_distance":
	default:
		return fmt.Errorf("cost.model must be one of unit, label_distance, got %q", c.Cost.Model)
	}

	if c.Cost.InsertWeight < 0 || c.Cost.RemoveWeight < 0 || c.Cost.UpdateWeight < 0 {
		return fmt.Errorf("cost weights must be non-negative")
	}

	switch c.Tree.RootPolicy {
	case "first_key", "synthetic_root":
	default:
		return fmt.Errorf("tree.root_policy must be first_key or synthetic_root, got %q", c.Tree.RootPolicy)
	}

	switch c.Input.Format {
	case "auto", "json", "yaml":
	default:
		return fmt.Errorf("input.format must be one of auto, json, yaml, got %q", c.Input.Format)
	}

	switch c.Input.MissingHypothesis {
	case "empty", "skip":
	default:
		return fmt.Errorf("input.missing_hypothesis must be empty or skip, got %q", c.Input.MissingHypothesis)
	}

	if c.Input.MaxDepth < 1 {
		return fmt.Errorf("input.max_depth must be >= 1, got %d", c.Input.MaxDepth)
	}

	switch c.Output.Format {
	case "text", "json", "yaml", "csv":
	default:
		return fmt.Errorf("output.format must be one of text, json, yaml, csv, got %q", c.Output.Format)
	}

	switch c.Output.SortBy {
	case "name", "rate":
	default:
		return fmt.Errorf("output.sort_by must be name or rate, got %q", c.Output.SortBy)
	}

	if c.Performance.MaxGoroutines < 1 {
		return fmt.Errorf("performance.max_goroutines must be >= 1, got %d", c.Performance.MaxGoroutines)
	}

	if c.Performance.TimeoutSeconds < 0 {
		return fmt.Errorf("performance.timeout_seconds must be >= 0, got %d", c.Performance.TimeoutSeconds)
	}

	return nil
}
