package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CompareCommand scores one hypothesis document against one reference document
type CompareCommand struct {
	opts scoreOptions
}

// NewCompareCommand creates a new compare command
func NewCompareCommand() *CompareCommand {
	return &CompareCommand{}
}

// CreateCobraCommand creates the cobra command for a single comparison
func (c *CompareCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare REFERENCE HYPOTHESIS",
		Short: "Score one document against a reference",
		Long: `Compute the tree error rate of HYPOTHESIS against REFERENCE.

Both arguments are JSON or YAML files. When HYPOTHESIS is a directory, the file
with the same name as REFERENCE inside it is used. A missing hypothesis file is
scored as the empty tree.

By default only the first top-level key of each document forms the tree; use
--root-policy synthetic_root to keep every top-level key.

Examples:
  treerate compare gold.json predicted.json
  treerate compare --cer --operations gold.yaml predicted.yaml
  treerate compare --cost-model label_distance --json gold.json predicted.json`,
		Args: cobra.ExactArgs(2),
		RunE: c.run,
	}

	c.opts.addFlags(cmd)
	return cmd
}

func (c *CompareCommand) run(cmd *cobra.Command, args []string) error {
	req, err := c.opts.request(cmd, args[0], args[1])
	if err != nil {
		return err
	}

	useCase, err := newUseCase(cmd, req.OutputFormat, nil)
	if err != nil {
		return fmt.Errorf("failed to create use case: %w", err)
	}

	response, err := useCase.Execute(cmd.Context(), req)
	if err != nil {
		return explainError(cmd, err)
	}
	return checkResponse(response)
}

// NewCompareCmd creates and returns the compare cobra command
func NewCompareCmd() *cobra.Command {
	return NewCompareCommand().CreateCobraCommand()
}
