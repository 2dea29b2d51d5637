package commands

import (
	"netqoe/internal/core/services"

	"github.com/spf13/cobra"
)

func ParametersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parameters",
		Short: "List accepted parameters",
		Long:  `List every parameter the engine accepts with its range, default and unit, followed by the domain weights.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}

			catalog := services.Catalog()
			if format == outputJSON {
				return printJSON(cmd.OutOrStdout(), catalog)
			}
			printCatalog(cmd.OutOrStdout(), catalog)
			return nil
		},
	}

	addOutputFlag(cmd)
	return cmd
}
