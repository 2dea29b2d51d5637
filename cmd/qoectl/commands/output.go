package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"netqoe/internal/core/domain"
	"netqoe/internal/core/services"

	"github.com/spf13/cobra"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", outputTable, "Output format: table or json")
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("output")
	switch format {
	case outputTable, outputJSON:
		return format, nil
	}
	return "", fmt.Errorf("unsupported output format %q (use table or json)", format)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult renders a QoE result as a set of aligned tables.
func printResult(w io.Writer, result domain.QoEResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "QoE score:\t%.1f\n", result.Score)
	fmt.Fprintf(tw, "Rating:\t%s\n", result.Rating)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "DOMAIN\tIMPACT")
	fmt.Fprintln(tw, "------\t------")
	for _, d := range services.DomainWeights() {
		fmt.Fprintf(tw, "%s\t%.1f\n", d.Domain, result.Impacts.Get(d.Domain))
	}
	fmt.Fprintln(tw)

	m := result.Metrics
	fmt.Fprintln(tw, "METRIC\tVALUE")
	fmt.Fprintln(tw, "------\t-----")
	fmt.Fprintf(tw, "Download\t%.1f Mbps\n", m.DownloadSpeed)
	fmt.Fprintf(tw, "Upload\t%.1f Mbps\n", m.UploadSpeed)
	fmt.Fprintf(tw, "Latency\t%.1f ms\n", m.Latency)
	fmt.Fprintf(tw, "Jitter\t%.1f ms\n", m.Jitter)
	fmt.Fprintf(tw, "Packet loss\t%.2f %%\n", m.PacketLoss)
	tw.Flush()

	fmt.Fprintln(w)
	if len(result.Recommendations) == 0 {
		fmt.Fprintln(w, "No recommendations.")
		return
	}

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDOMAIN\tSEVERITY\tIMPACT\tRECOMMENDATION")
	fmt.Fprintln(tw, "-\t------\t--------\t------\t--------------")
	for i, r := range result.Recommendations {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.0f%%\t%s\n", i, r.Domain, r.Severity, r.ImpactEstimate*100, r.Message)
	}
	tw.Flush()
}

// printCatalog renders the parameter table.
func printCatalog(w io.Writer, catalog services.ParameterCatalog) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "PARAMETER\tMIN\tMAX\tDEFAULT\tUNIT\tDESCRIPTION")
	fmt.Fprintln(tw, "---------\t---\t---\t-------\t----\t-----------")
	for _, p := range catalog.Parameters {
		fmt.Fprintf(tw, "%s\t%g\t%g\t%g\t%s\t%s\n", p.Name, p.Min, p.Max, p.Default, p.Unit, p.Description)
	}
	tw.Flush()

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "DOMAIN\tWEIGHT")
	for _, d := range catalog.Weights {
		fmt.Fprintf(tw, "%s\t%.2f\n", d.Domain, d.Weight)
	}
	tw.Flush()
}
