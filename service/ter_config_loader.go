package service

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ludo-technologies/treerate/domain"
	"github.com/ludo-technologies/treerate/internal/config"
)

// TreeErrorRateConfigurationLoader implements the ConfigurationLoader interface.
// Values from the configuration file are overridden only by flags that were set
// explicitly on the command line.
type TreeErrorRateConfigurationLoader struct {
	flags *config.FlagTracker
}

// NewTreeErrorRateConfigurationLoader creates a loader that lets every override win
// only when its flag was recorded in flags; a nil tracker keeps the file values
func NewTreeErrorRateConfigurationLoader(flags *config.FlagTracker) *TreeErrorRateConfigurationLoader {
	if flags == nil {
		flags = config.NewFlagTracker()
	}
	return &TreeErrorRateConfigurationLoader{flags: flags}
}

// LoadConfig loads configuration from the specified path, or discovers .treerate.toml when empty
func (c *TreeErrorRateConfigurationLoader) LoadConfig(path string) (*domain.TreeErrorRateRequest, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	return ConfigToRequest(cfg), nil
}

// LoadDefaultConfig returns the built-in defaults
func (c *TreeErrorRateConfigurationLoader) LoadDefaultConfig() *domain.TreeErrorRateRequest {
	return ConfigToRequest(config.DefaultConfig())
}

// FindConfigFor looks for .treerate.toml starting at the directory of target
func (c *TreeErrorRateConfigurationLoader) FindConfigFor(target string) string {
	dir := target
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		dir = filepath.Dir(target)
	}
	return config.FindDefaultConfig(dir)
}

// MergeConfig merges CLI flags with configuration file, respecting explicit flags
func (c *TreeErrorRateConfigurationLoader) MergeConfig(base *domain.TreeErrorRateRequest, override *domain.TreeErrorRateRequest) *domain.TreeErrorRateRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	ft := c.flags
	merged := *base

	// Paths, writers and the config path always come from the command line
	merged.ReferencePath = override.ReferencePath
	merged.HypothesisPath = override.HypothesisPath
	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}
	if override.OutputPath != "" {
		merged.OutputPath = override.OutputPath
	}
	if override.OutputDir != "" {
		merged.OutputDir = override.OutputDir
	}
	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}
	merged.Verbose = override.Verbose || base.Verbose

	merged.OutputFormat = config.MergeAny(ft, merged.OutputFormat, override.OutputFormat, "json", "yaml", "csv", "text")
	merged.ShowOperations = config.Merge(ft, merged.ShowOperations, override.ShowOperations, "operations")
	merged.ShowTrees = config.Merge(ft, merged.ShowTrees, override.ShowTrees, "show-tree")
	merged.SortBy = config.Merge(ft, merged.SortBy, override.SortBy, "sort")

	merged.CostModel = config.Merge(ft, merged.CostModel, override.CostModel, "cost-model")
	merged.CERWeighted = config.Merge(ft, merged.CERWeighted, override.CERWeighted, "cer")
	merged.InsertWeight = config.Merge(ft, merged.InsertWeight, override.InsertWeight, "insert-weight")
	merged.RemoveWeight = config.Merge(ft, merged.RemoveWeight, override.RemoveWeight, "remove-weight")
	merged.UpdateWeight = config.Merge(ft, merged.UpdateWeight, override.UpdateWeight, "update-weight")

	merged.RootPolicy = config.Merge(ft, merged.RootPolicy, override.RootPolicy, "root-policy")
	merged.SyntheticRootLabel = config.Merge(ft, merged.SyntheticRootLabel, override.SyntheticRootLabel, "root-label")

	merged.InputFormat = config.Merge(ft, merged.InputFormat, override.InputFormat, "input-format")
	merged.Recursive = config.Merge(ft, merged.Recursive, override.Recursive, "recursive")
	merged.MissingHypothesis = config.Merge(ft, merged.MissingHypothesis, override.MissingHypothesis, "missing")
	merged.MaxDepth = config.Merge(ft, merged.MaxDepth, override.MaxDepth, "max-depth")
	if ft.WasSet("include") && len(override.IncludePatterns) > 0 {
		merged.IncludePatterns = override.IncludePatterns
	}
	if ft.WasSet("exclude") && len(override.ExcludePatterns) > 0 {
		merged.ExcludePatterns = override.ExcludePatterns
	}

	merged.MaxGoroutines = config.Merge(ft, merged.MaxGoroutines, override.MaxGoroutines, "max-goroutines")
	merged.Timeout = config.Merge(ft, merged.Timeout, override.Timeout, "timeout")

	return &merged
}

// ConfigToRequest converts internal config to a domain request
func ConfigToRequest(cfg *config.Config) *domain.TreeErrorRateRequest {
	var outputFormat domain.OutputFormat
	switch cfg.Output.Format {
	case "json":
		outputFormat = domain.OutputFormatJSON
	case "yaml":
		outputFormat = domain.OutputFormatYAML
	case "csv":
		outputFormat = domain.OutputFormatCSV
	default:
		outputFormat = domain.OutputFormatText
	}

	sortBy := domain.SortByName
	if cfg.Output.SortBy == string(domain.SortByRate) {
		sortBy = domain.SortByRate
	}

	return &domain.TreeErrorRateRequest{
		OutputFormat:   outputFormat,
		OutputWriter:   os.Stdout,
		OutputDir:      cfg.Output.Directory,
		ShowOperations: cfg.Output.ShowOperations,
		ShowTrees:      cfg.Output.ShowTrees,
		SortBy:         sortBy,

		CostModel:    domain.CostModelType(cfg.Cost.Model),
		CERWeighted:  cfg.Cost.CERWeighted,
		InsertWeight: cfg.Cost.InsertWeight,
		RemoveWeight: cfg.Cost.RemoveWeight,
		UpdateWeight: cfg.Cost.UpdateWeight,

		RootPolicy:         domain.RootPolicy(cfg.Tree.RootPolicy),
		SyntheticRootLabel: cfg.Tree.SyntheticRootLabel,

		InputFormat:       domain.InputFormat(cfg.Input.Format),
		Recursive:         cfg.Input.Recursive,
		IncludePatterns:   cfg.Input.IncludePatterns,
		ExcludePatterns:   cfg.Input.ExcludePatterns,
		MissingHypothesis: domain.MissingHypothesisPolicy(cfg.Input.MissingHypothesis),
		MaxDepth:          cfg.Input.MaxDepth,

		MaxGoroutines: cfg.Performance.MaxGoroutines,
		Timeout:       time.Duration(cfg.Performance.TimeoutSeconds) * time.Second,
	}
}
