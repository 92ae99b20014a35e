package main

import (
	"os"

	"github.com/ludo-technologies/treerate/internal/version"
	"github.com/spf13/cobra"
)

// newRootCmd assembles the command tree; tests build a fresh one per case
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "treerate",
		Short: "Tree error rate for structured documents",
		Long: `treerate scores hypothesis documents against reference documents with the
tree error rate: the Zhang-Shasha tree edit distance between the two documents
divided by the number of nodes in the reference.

JSON and YAML documents become ordered labeled trees. Mapping keys become nodes,
list elements are attached to the enclosing key and scalars become leaves.

Features:
  • Unit, label-distance and weighted edit costs
  • Relabel costs scaled by the character error rate between labels (--cer)
  • Minimal edit scripts (--operations)
  • Concurrent scoring of whole directories`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewCompareCmd())
	rootCmd.AddCommand(NewBatchCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
