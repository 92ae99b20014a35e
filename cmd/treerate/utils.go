package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ludo-technologies/treerate/app"
	"github.com/ludo-technologies/treerate/domain"
	"github.com/ludo-technologies/treerate/internal/config"
	"github.com/ludo-technologies/treerate/service"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// scoreOptions holds the flags shared by compare and batch
type scoreOptions struct {
	// Cost model
	cer          bool
	costModel    string
	insertWeight float64
	removeWeight float64
	updateWeight float64

	// Tree building
	rootPolicy  string
	rootLabel   string
	inputFormat string
	maxDepth    int

	// Output
	json       bool
	yaml       bool
	csv        bool
	outputPath string
	operations bool
	showTree   bool
	sortBy     string
	configPath string
}

func (o *scoreOptions) addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.BoolVar(&o.cer, "cer", false, "Scale relabel costs by the character error rate between labels")
	flags.StringVar(&o.costModel, "cost-model", config.DefaultCostModel, "Edit cost model (unit|label_distance)")
	flags.Float64Var(&o.insertWeight, "insert-weight", 1.0, "Multiplier for insert costs")
	flags.Float64Var(&o.removeWeight, "remove-weight", 1.0, "Multiplier for remove costs")
	flags.Float64Var(&o.updateWeight, "update-weight", 1.0, "Multiplier for relabel costs")

	flags.StringVar(&o.rootPolicy, "root-policy", config.DefaultRootPolicy, "Tree root (first_key|synthetic_root)")
	flags.StringVar(&o.rootLabel, "root-label", config.DefaultSyntheticRootLabel, "Label of the synthetic root node")
	flags.StringVar(&o.inputFormat, "input-format", config.DefaultInputFormat, "Document format (auto|json|yaml)")
	flags.IntVar(&o.maxDepth, "max-depth", config.DefaultMaxDepth, "Maximum document nesting depth")

	flags.BoolVar(&o.json, "json", false, "Output as JSON")
	flags.BoolVar(&o.yaml, "yaml", false, "Output as YAML")
	flags.BoolVar(&o.csv, "csv", false, "Output as CSV")
	flags.StringVar(&o.outputPath, "output", "", "Write the report to this file")
	flags.BoolVar(&o.operations, "operations", false, "Show the minimal edit script of every pair")
	flags.BoolVar(&o.showTree, "show-tree", false, "Show the trees built from the documents")
	flags.StringVar(&o.sortBy, "sort", config.DefaultSortBy, "Sort pairs by (name|rate)")
	flags.StringVarP(&o.configPath, "config", "c", "", "Configuration file path")
}

// outputFormat picks the format from the format flags; at most one may be set
func (o *scoreOptions) outputFormat() (domain.OutputFormat, error) {
	format := domain.OutputFormatText
	count := 0
	if o.json {
		format = domain.OutputFormatJSON
		count++
	}
	if o.yaml {
		format = domain.OutputFormatYAML
		count++
	}
	if o.csv {
		format = domain.OutputFormatCSV
		count++
	}
	if count > 1 {
		return "", fmt.Errorf("only one of --json, --yaml, --csv may be given")
	}
	return format, nil
}

// request builds the scoring request from flags and the two path arguments
func (o *scoreOptions) request(cmd *cobra.Command, reference, hypothesis string) (domain.TreeErrorRateRequest, error) {
	format, err := o.outputFormat()
	if err != nil {
		return domain.TreeErrorRateRequest{}, err
	}

	switch domain.SortCriteria(o.sortBy) {
	case domain.SortByName, domain.SortByRate:
	default:
		return domain.TreeErrorRateRequest{}, fmt.Errorf("unsupported sort criteria '%s'. Valid options: name, rate", o.sortBy)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")

	return domain.TreeErrorRateRequest{
		ReferencePath:  reference,
		HypothesisPath: hypothesis,

		OutputFormat:   format,
		OutputWriter:   cmd.OutOrStdout(),
		OutputPath:     o.outputPath,
		ShowOperations: o.operations,
		ShowTrees:      o.showTree,
		SortBy:         domain.SortCriteria(o.sortBy),

		CostModel:    domain.CostModelType(o.costModel),
		CERWeighted:  o.cer,
		InsertWeight: o.insertWeight,
		RemoveWeight: o.removeWeight,
		UpdateWeight: o.updateWeight,

		RootPolicy:         domain.RootPolicy(o.rootPolicy),
		SyntheticRootLabel: o.rootLabel,
		InputFormat:        domain.InputFormat(o.inputFormat),
		MaxDepth:           o.maxDepth,

		Verbose:    verbose,
		ConfigPath: o.configPath,
	}, nil
}

// newUseCase wires the scoring use case; only explicitly set flags override the config file
func newUseCase(cmd *cobra.Command, format domain.OutputFormat, progress domain.ProgressManager) (*app.TreeErrorRateUseCase, error) {
	formatter := service.NewTreeErrorRateFormatter()
	if format == domain.OutputFormatText && useColor(cmd.OutOrStdout()) {
		formatter = service.NewColorTreeErrorRateFormatter()
	}

	return app.NewTreeErrorRateUseCaseBuilder().
		WithService(service.NewTreeErrorRateServiceWithDeps(service.NewDocumentReader(), progress)).
		WithCollector(service.NewDocumentReader()).
		WithFormatter(formatter).
		WithConfigLoader(service.NewTreeErrorRateConfigurationLoader(config.NewFlagTrackerFromFlagSet(cmd.Flags()))).
		WithReportWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		Build()
}

// useColor reports whether w is a terminal that accepts ANSI colors
func useColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// checkResponse turns unscored pairs into a non-zero exit status after the report is out
func checkResponse(response *domain.TreeErrorRateResponse) error {
	if response == nil || response.Summary.FailedPairs == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d pairs could not be scored", response.Summary.FailedPairs, response.Summary.TotalPairs)
}

// explainError prints the error category and recovery hints to stderr and returns err
func explainError(cmd *cobra.Command, err error) error {
	categorizer := service.NewErrorCategorizer()
	categorized := categorizer.Categorize(err)
	if categorized == nil {
		return err
	}

	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "%s: %s\n", categorized.Category, categorized.Message)
	for _, suggestion := range categorizer.GetRecoverySuggestions(categorized.Category) {
		fmt.Fprintf(out, "  - %s\n", suggestion)
	}
	return err
}

func timeoutFromSeconds(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
