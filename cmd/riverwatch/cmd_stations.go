package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newStationsCmd() *cobra.Command {
	var river, town, label string

	cmd := &cobra.Command{
		Use:   "stations",
		Short: "List active monitoring stations",
		Long: `List the active stations, optionally narrowed by river, town and label.
Several stations can share one river/town/label combination; each is listed
with its notation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := appFrom(cmd).monitor(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NOTATION\tRIVER\tTOWN\tLABEL\tCATCHMENT")
			for _, s := range m.FindStations(river, town, label) {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.Notation, s.RiverName, s.Town, s.Label, s.CatchmentName)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&river, "river", "", "river name")
	cmd.Flags().StringVar(&town, "town", "", "town")
	cmd.Flags().StringVar(&label, "label", "", "station label")
	return cmd
}
