package commands

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the qoectl command tree.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qoectl",
		Short: "Score network scenarios with the QoE engine",
		Long: `qoectl runs the QoE scoring engine locally. It turns a set of RAN,
transport and core parameters into a composite QoE score, per-domain
impacts, user-facing performance metrics and optimization advice.

Quick start:
  qoectl parameters                      # Show accepted ranges and defaults
  qoectl calculate --sinr 8 --bler 12    # Score a degraded cell
  qoectl calculate -f scenario.json -o json
  qoectl impact --tx-power 45 --qci "QCI 1"  # What-if planning estimate`,
		SilenceUsage: true,
	}

	cmd.AddCommand(CalculateCommand())
	cmd.AddCommand(ParametersCommand())
	cmd.AddCommand(ImpactCommand())

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
