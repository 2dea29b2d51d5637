package commands

import (
	"fmt"
	"os"
	"strings"

	"netqoe/internal/core/domain"
	"netqoe/internal/core/services"

	"github.com/spf13/cobra"
)

// flagName turns a parameter name such as prb_utilization into prb-utilization.
func flagName(name domain.ParameterName) string {
	return strings.ReplaceAll(string(name), "_", "-")
}

func CalculateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Score one parameter set",
		Long: `Run the QoE engine on a parameter set. Only parameters given on the
command line (or in --file) are submitted; the engine fills the rest
with defaults and clamps out-of-range values.`,
		Example: `  qoectl calculate --sinr 25 --prb-utilization 40
  qoectl calculate -f cell.json --bler 2 -o json`,
		Args: cobra.NoArgs,
		RunE: runCalculate,
	}

	for _, spec := range services.ParameterTable() {
		cmd.Flags().Float64(flagName(spec.Name), spec.Default,
			fmt.Sprintf("%s (%s, %g to %g)", spec.Description, spec.Unit, spec.Min, spec.Max))
	}
	cmd.Flags().StringP("file", "f", "", "JSON file with a parameter object; flags override its values")
	addOutputFlag(cmd)

	return cmd
}

func runCalculate(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	params, err := collectParameters(cmd)
	if err != nil {
		return err
	}

	result := services.NewQoEEngine().Compute(params)
	if format == outputJSON {
		return printJSON(cmd.OutOrStdout(), result)
	}
	printResult(cmd.OutOrStdout(), result)
	return nil
}

// collectParameters merges the --file object with explicitly set flags.
func collectParameters(cmd *cobra.Command) (domain.Parameters, error) {
	params := domain.Parameters{}

	if path, _ := cmd.Flags().GetString("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read parameter file: %w", err)
		}
		fromFile, err := services.DecodeParameters(data)
		if err != nil {
			return nil, fmt.Errorf("invalid parameter file %s: %w", path, err)
		}
		for k, v := range fromFile {
			params[k] = v
		}
	}

	for _, spec := range services.ParameterTable() {
		name := flagName(spec.Name)
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, err := cmd.Flags().GetFloat64(name)
		if err != nil {
			return nil, err
		}
		params[spec.Name] = v
	}
	return params, nil
}
