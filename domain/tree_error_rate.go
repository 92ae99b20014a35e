package domain

import (
	"context"
	"io"
	"time"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatCSV  OutputFormat = "csv"
)

// SortCriteria represents the criteria for sorting pair results
type SortCriteria string

const (
	SortByName SortCriteria = "name"
	SortByRate SortCriteria = "rate" // Highest error rate first
)

// CostModelType selects the edit cost model
type CostModelType string

const (
	CostModelUnit          CostModelType = "unit"
	CostModelLabelDistance CostModelType = "label_distance"
)

// RootPolicy selects how the top level of a document becomes the tree root
type RootPolicy string

const (
	RootPolicyFirstKey      RootPolicy = "first_key"
	RootPolicySyntheticRoot RootPolicy = "synthetic_root"
)

// MissingHypothesisPolicy decides what happens to a reference without a hypothesis
type MissingHypothesisPolicy string

const (
	MissingHypothesisEmpty MissingHypothesisPolicy = "empty" // score against the empty tree
	MissingHypothesisSkip  MissingHypothesisPolicy = "skip"
)

// InputFormat is the document format of the inputs
type InputFormat string

const (
	InputFormatAuto InputFormat = "auto"
	InputFormatJSON InputFormat = "json"
	InputFormatYAML InputFormat = "yaml"
)

// TreeErrorRateRequest represents a request to score hypothesis documents against references
type TreeErrorRateRequest struct {
	// Reference and hypothesis: two files, or two directories paired by relative path
	ReferencePath  string
	HypothesisPath string

	// Output configuration
	OutputFormat   OutputFormat
	OutputWriter   io.Writer
	OutputPath     string // Write the report to this file instead of OutputWriter
	OutputDir      string // Write the report into this directory when OutputPath is empty
	ShowOperations bool
	ShowTrees      bool
	SortBy         SortCriteria

	// Cost model
	CostModel    CostModelType
	CERWeighted  bool
	InsertWeight float64
	RemoveWeight float64
	UpdateWeight float64

	// Tree building
	RootPolicy         RootPolicy
	SyntheticRootLabel string

	// Input
	InputFormat       InputFormat
	Recursive         bool
	IncludePatterns   []string
	ExcludePatterns   []string
	MissingHypothesis MissingHypothesisPolicy
	MaxDepth          int

	// Execution
	MaxGoroutines int
	Timeout       time.Duration
	Verbose       bool

	// Configuration
	ConfigPath string
}

// DocumentPair is a reference document and the hypothesis it is scored against
type DocumentPair struct {
	// Name identifies the pair, the path relative to the reference root for directories
	Name           string
	ReferencePath  string
	HypothesisPath string

	// HypothesisMissing is set when no hypothesis file exists for the reference
	HypothesisMissing bool
}

// InlinePair is a reference and hypothesis given as document text, or as values
// already decoded into maps, slices and scalars. A value takes precedence over text.
type InlinePair struct {
	Name       string
	Reference  string
	Hypothesis string

	ReferenceValue  any
	HypothesisValue any
}

// EditOperation is one step of the minimal edit script
type EditOperation struct {
	Kind       string  `json:"kind" yaml:"kind"`
	Reference  string  `json:"reference,omitempty" yaml:"reference,omitempty"`
	Hypothesis string  `json:"hypothesis,omitempty" yaml:"hypothesis,omitempty"`
	Cost       float64 `json:"cost" yaml:"cost"`
}

// PairResult is the score of one document pair
type PairResult struct {
	Name              string          `json:"name" yaml:"name"`
	ReferencePath     string          `json:"reference_path,omitempty" yaml:"reference_path,omitempty"`
	HypothesisPath    string          `json:"hypothesis_path,omitempty" yaml:"hypothesis_path,omitempty"`
	ReferenceNodes    int             `json:"reference_nodes" yaml:"reference_nodes"`
	HypothesisNodes   int             `json:"hypothesis_nodes" yaml:"hypothesis_nodes"`
	Distance          float64         `json:"distance" yaml:"distance"`
	ErrorRate         float64         `json:"error_rate" yaml:"error_rate"`
	HypothesisMissing bool            `json:"hypothesis_missing,omitempty" yaml:"hypothesis_missing,omitempty"`
	Skipped           bool            `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Operations        []EditOperation `json:"operations,omitempty" yaml:"operations,omitempty"`
	ReferenceTree     string          `json:"reference_tree,omitempty" yaml:"reference_tree,omitempty"`
	HypothesisTree    string          `json:"hypothesis_tree,omitempty" yaml:"hypothesis_tree,omitempty"`
	Error             string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the pair could not be scored
func (p PairResult) Failed() bool {
	return p.Error != ""
}

// Scored reports whether the pair carries a valid error rate
func (p PairResult) Scored() bool {
	return !p.Skipped && !p.Failed()
}

// TreeErrorRateSummary represents aggregate statistics over all scored pairs
type TreeErrorRateSummary struct {
	TotalPairs   int `json:"total_pairs" yaml:"total_pairs"`
	ScoredPairs  int `json:"scored_pairs" yaml:"scored_pairs"`
	FailedPairs  int `json:"failed_pairs" yaml:"failed_pairs"`
	SkippedPairs int `json:"skipped_pairs" yaml:"skipped_pairs"`
	PerfectPairs int `json:"perfect_pairs" yaml:"perfect_pairs"`

	TotalDistance       float64 `json:"total_distance" yaml:"total_distance"`
	TotalReferenceNodes int     `json:"total_reference_nodes" yaml:"total_reference_nodes"`

	// MacroErrorRate is the mean of the pair rates, MicroErrorRate the total
	// distance over the total number of reference nodes
	MacroErrorRate float64 `json:"macro_error_rate" yaml:"macro_error_rate"`
	MicroErrorRate float64 `json:"micro_error_rate" yaml:"micro_error_rate"`
	MinErrorRate   float64 `json:"min_error_rate" yaml:"min_error_rate"`
	MaxErrorRate   float64 `json:"max_error_rate" yaml:"max_error_rate"`
}

// TreeErrorRateResponse represents the complete scoring result
type TreeErrorRateResponse struct {
	Pairs   []PairResult         `json:"pairs" yaml:"pairs"`
	Summary TreeErrorRateSummary `json:"summary" yaml:"summary"`

	// Warnings and issues
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty" yaml:"errors,omitempty"`

	// Metadata
	CostModel   string      `json:"cost_model" yaml:"cost_model"`
	GeneratedAt string      `json:"generated_at" yaml:"generated_at"`
	Version     string      `json:"version" yaml:"version"`
	Config      interface{} `json:"config,omitempty" yaml:"config,omitempty"`
}

// TreeErrorRateService defines the core business logic for scoring documents
type TreeErrorRateService interface {
	// Score scores every pair and aggregates the results
	Score(ctx context.Context, pairs []DocumentPair, req TreeErrorRateRequest) (*TreeErrorRateResponse, error)

	// ScorePair scores a single pair; document errors are returned, not recorded
	ScorePair(ctx context.Context, pair DocumentPair, req TreeErrorRateRequest) (*PairResult, error)

	// ScoreInline scores documents given as text
	ScoreInline(ctx context.Context, pair InlinePair, req TreeErrorRateRequest) (*PairResult, error)
}

// DocumentCollector finds document pairs on disk
type DocumentCollector interface {
	// CollectPairs pairs two files, or the documents of two directories by relative path
	CollectPairs(referencePath, hypothesisPath string, recursive bool, includePatterns, excludePatterns []string) ([]DocumentPair, error)

	// ReadFile reads the content of a document
	ReadFile(path string) ([]byte, error)

	// FileExists checks if a path exists
	FileExists(path string) (bool, error)
}

// OutputFormatter defines the interface for formatting scoring results
type OutputFormatter interface {
	// Format formats the response according to the specified format
	Format(response *TreeErrorRateResponse, format OutputFormat) (string, error)

	// Write writes the formatted output to the writer
	Write(response *TreeErrorRateResponse, format OutputFormat, writer io.Writer) error
}

// ConfigurationLoader defines the interface for loading configuration
type ConfigurationLoader interface {
	// LoadConfig loads configuration from the specified path
	LoadConfig(path string) (*TreeErrorRateRequest, error)

	// LoadDefaultConfig loads the default configuration
	LoadDefaultConfig() *TreeErrorRateRequest

	// MergeConfig merges CLI flags with configuration file
	MergeConfig(base *TreeErrorRateRequest, override *TreeErrorRateRequest) *TreeErrorRateRequest
}
