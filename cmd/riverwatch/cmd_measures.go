package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newMeasuresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "measures <notation>",
		Short: "List the measures a station reports",
		Long: `List the measure kinds and units a station reports. Measure entries that do
not map onto a known kind are reported on stderr and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			station := a.openStation(cmd, args[0])
			if !station.GoodConstruction() {
				return failure{station.Err()}
			}

			for _, e := range station.Issues() {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped: %s\n", failure{e})
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tUNIT")
			for _, m := range station.Measures() {
				fmt.Fprintf(tw, "%s\t%s\n", m.Kind, m.Unit)
			}
			return tw.Flush()
		},
	}
}
