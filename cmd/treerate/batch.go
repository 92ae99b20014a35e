package main

import (
	"fmt"

	"github.com/ludo-technologies/treerate/domain"
	"github.com/ludo-technologies/treerate/internal/config"
	"github.com/ludo-technologies/treerate/service"
	"github.com/spf13/cobra"
)

// BatchCommand scores every reference document in a directory against its hypothesis
type BatchCommand struct {
	opts scoreOptions

	recursive       bool
	includePatterns []string
	excludePatterns []string
	missing         string
	maxGoroutines   int
	timeoutSeconds  int
	noProgress      bool
}

// NewBatchCommand creates a new batch command
func NewBatchCommand() *BatchCommand {
	return &BatchCommand{}
}

// CreateCobraCommand creates the cobra command for directory scoring
func (b *BatchCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch REFERENCE_DIR HYPOTHESIS_DIR",
		Short: "Score a directory of documents against references",
		Long: `Pair every JSON or YAML document under REFERENCE_DIR with the file at the
same relative path under HYPOTHESIS_DIR and score the pairs concurrently.

The summary reports the macro error rate (mean of the pair rates) and the
micro error rate (total distance over total reference nodes). A pair whose
hypothesis is missing is scored against the empty tree, or skipped with
--missing skip. Pairs that fail to parse are reported and make the command
exit with a non-zero status.

Examples:
  treerate batch gold/ predicted/
  treerate batch --sort rate --cer gold/ predicted/
  treerate batch --include "**/*.yaml" --exclude "drafts/**" gold/ predicted/
  treerate batch --csv --output scores.csv gold/ predicted/`,
		Args: cobra.ExactArgs(2),
		RunE: b.run,
	}

	b.opts.addFlags(cmd)

	defaults := config.DefaultConfig()
	cmd.Flags().BoolVar(&b.recursive, "recursive", defaults.Input.Recursive, "Descend into subdirectories")
	cmd.Flags().StringSliceVar(&b.includePatterns, "include", defaults.Input.IncludePatterns, "Include file patterns")
	cmd.Flags().StringSliceVar(&b.excludePatterns, "exclude", defaults.Input.ExcludePatterns, "Exclude file patterns")
	cmd.Flags().StringVar(&b.missing, "missing", defaults.Input.MissingHypothesis, "Missing hypothesis policy (empty|skip)")
	cmd.Flags().IntVar(&b.maxGoroutines, "max-goroutines", defaults.Performance.MaxGoroutines, "Pairs scored concurrently")
	cmd.Flags().IntVar(&b.timeoutSeconds, "timeout", defaults.Performance.TimeoutSeconds, "Timeout for the whole batch in seconds (0 = none)")
	cmd.Flags().BoolVar(&b.noProgress, "no-progress", false, "Hide the progress bar")

	return cmd
}

func (b *BatchCommand) run(cmd *cobra.Command, args []string) error {
	req, err := b.opts.request(cmd, args[0], args[1])
	if err != nil {
		return err
	}

	switch domain.MissingHypothesisPolicy(b.missing) {
	case domain.MissingHypothesisEmpty, domain.MissingHypothesisSkip:
	default:
		return fmt.Errorf("unsupported missing hypothesis policy '%s'. Valid options: empty, skip", b.missing)
	}

	req.Recursive = b.recursive
	req.IncludePatterns = b.includePatterns
	req.ExcludePatterns = b.excludePatterns
	req.MissingHypothesis = domain.MissingHypothesisPolicy(b.missing)
	req.MaxGoroutines = b.maxGoroutines
	req.Timeout = timeoutFromSeconds(b.timeoutSeconds)

	var progress domain.ProgressManager
	if !b.noProgress && !req.Verbose {
		pm := service.NewProgressManager()
		pm.SetWriter(cmd.ErrOrStderr())
		progress = pm
	}

	useCase, err := newUseCase(cmd, req.OutputFormat, progress)
	if err != nil {
		return fmt.Errorf("failed to create use case: %w", err)
	}

	response, err := useCase.Execute(cmd.Context(), req)
	if err != nil {
		return explainError(cmd, err)
	}
	return checkResponse(response)
}

// NewBatchCmd creates and returns the batch cobra command
func NewBatchCmd() *cobra.Command {
	return NewBatchCommand().CreateCobraCommand()
}
