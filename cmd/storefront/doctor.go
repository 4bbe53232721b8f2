package main

import (
	"fmt"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/app"
	"github.com/utafrali/storefront/pkg/health"
)

func newDoctorCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check storage and storefront connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report := app.Diagnose(cmd.Context(), c.cfg, c.log)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CHECK\tSTATUS\tLATENCY\tERROR")
			for _, name := range sortedChecks(report) {
				res := report.Checks[name]
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, res.Status, res.Latency.Round(time.Millisecond), res.Error)
			}
			fmt.Fprintf(tw, "overall\t%s\t\t\n", report.Status)
			if err := tw.Flush(); err != nil {
				return err
			}

			if report.Status == health.StatusDown {
				return fmt.Errorf("storefront client is not operational")
			}
			return nil
		},
	}
}

func sortedChecks(report health.Report) []string {
	names := make([]string, 0, len(report.Checks))
	for name := range report.Checks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
