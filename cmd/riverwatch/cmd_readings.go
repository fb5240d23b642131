package main

import (
	"fmt"
	"math"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/riverwatch/riverwatch/internal/hydrology"
)

func newReadingsCmd() *cobra.Command {
	var since string

	cmd := &cobra.Command{
		Use:   "readings <notation> <kind>",
		Short: "Print a station's readings for one measure",
		Long: `Print the readings of one measure kind at a station, in the order the API
returns them. The kind is its display name, e.g. "flow" or "tidal level".
Readings start 24 hours ago unless --since is given. Missing values print as -.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)

			kind, err := hydrology.ParseMeasureKind(args[1]).Unpack()
			if err != nil {
				return failureOf(err)
			}

			start := hydrology.NewTimeWindow(time.Now()).Start
			if since != "" {
				start, err = time.Parse(time.RFC3339, since)
				if err != nil {
					return fmt.Errorf("--since: %w", err)
				}
			}

			station := a.openStation(cmd, args[0])
			ts, err := station.QueryMeasure(cmd.Context(), kind, start).Unpack()
			if err != nil {
				return failureOf(err)
			}

			unit, ok := station.Unit(kind)
			if !ok {
				unit = hydrology.Unknown
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s since %s (%d readings)\n",
				station.Reference(), kind, start.UTC().Format(hydrology.TimeFormat), ts.Len())

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "TIME\tVALUE (%s)\n", unit)
			for _, r := range ts.Readings {
				fmt.Fprintf(tw, "%s\t%s\n", r.Time.UTC().Format(time.RFC3339), formatValue(r.Value))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "start of the readings, RFC 3339 (default 24h ago)")
	return cmd
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
