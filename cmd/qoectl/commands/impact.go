package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"netqoe/internal/core/domain"
	"netqoe/internal/core/services"

	"github.com/spf13/cobra"
)

func ImpactCommand() *cobra.Command {
	def := services.DefaultWhatIfInput()

	cmd := &cobra.Command{
		Use:   "impact",
		Short: "Estimate QoE for planning knobs",
		Long: `Estimate the QoE score and subscriber KPIs for a what-if planning
setup: radio transmit power, backhaul capacity, MME capacity and the
bearer QCI class, each with an optional degradation switch.`,
		Example: `  qoectl impact --tx-power 45 --qci "QCI 1" --strict-pcc
  qoectl impact --link-capacity 200 --high-jitter -o json`,
		Args: cobra.NoArgs,
		RunE: runImpact,
	}

	f := cmd.Flags()
	f.Float64("tx-power", def.TxPower, "Radio transmit power (dBm, 30 to 50)")
	f.Bool("high-interference", false, "Apply the high interference penalty")
	f.Float64("link-capacity", def.LinkCapacity, "Backhaul link capacity (Mbps, 100 to 10000)")
	f.Bool("high-jitter", false, "Apply the transport jitter penalty")
	f.Float64("mme-capacity", def.MMECapacity, "MME capacity (subscribers, 0 to 100000)")
	f.Bool("congestion", false, "Apply the core congestion penalty")
	f.String("qci", def.QCIClass, "Bearer class: "+strings.Join(services.QCIClasses(), ", "))
	f.Bool("strict-pcc", false, "Enforce strict policy and charging control")
	addOutputFlag(cmd)

	return cmd
}

func runImpact(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	var in domain.WhatIfInput
	in.TxPower, _ = f.GetFloat64("tx-power")
	in.HighInterference, _ = f.GetBool("high-interference")
	in.LinkCapacity, _ = f.GetFloat64("link-capacity")
	in.HighJitter, _ = f.GetBool("high-jitter")
	in.MMECapacity, _ = f.GetFloat64("mme-capacity")
	in.CoreCongestion, _ = f.GetBool("congestion")
	in.QCIClass, _ = f.GetString("qci")
	in.StrictPolicyControl, _ = f.GetBool("strict-pcc")

	result, err := services.EstimateWhatIf(in)
	if err != nil {
		return err
	}
	if format == outputJSON {
		return printJSON(cmd.OutOrStdout(), result)
	}
	printWhatIf(cmd.OutOrStdout(), result)
	return nil
}

func printWhatIf(w io.Writer, result domain.WhatIfResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "QoE score:\t%.1f\n", result.Score)
	fmt.Fprintf(tw, "Rating:\t%s\n", result.Rating)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "SEGMENT\tSCORE")
	fmt.Fprintln(tw, "-------\t-----")
	for _, bar := range result.DomainImpact {
		fmt.Fprintf(tw, "%s\t%.1f\n", bar.Name, bar.Score)
	}
	fmt.Fprintln(tw)

	k := result.KPIs
	fmt.Fprintln(tw, "KPI\tVALUE")
	fmt.Fprintln(tw, "---\t-----")
	fmt.Fprintf(tw, "Download\t%.1f Mbps\n", k.DownloadSpeed)
	fmt.Fprintf(tw, "Upload\t%.1f Mbps\n", k.UploadSpeed)
	fmt.Fprintf(tw, "Latency\t%.1f ms\n", k.Latency)
	fmt.Fprintf(tw, "Jitter\t%.1f ms\n", k.Jitter)
	fmt.Fprintf(tw, "Packet loss\t%.2f %%\n", k.PacketLoss)
	tw.Flush()
}
