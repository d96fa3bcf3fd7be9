package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/henryaj/heycochrane/pkg/crossref"
)

var dateWorkers int

var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "Add publication dates to records that lack one",
	Long: `Look up the publication date of every record without a date, via the
CrossRef API and then the Cochrane review page, and write the dates back into
the data file. Comments and field order in the data file are kept.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		workers := cfg.Dates.Workers
		if cmd.Flags().Changed("workers") {
			workers = dateWorkers
		}

		client := crossref.NewClient(
			crossref.WithBaseURL(cfg.Dates.CrossrefURL),
			crossref.WithCochraneURL(cfg.Dates.CochraneURL),
			crossref.WithTimeout(cfg.Dates.GetTimeout()),
			crossref.WithRateLimits(cfg.Dates.CrossrefRPS, cfg.Dates.CochraneRPS),
			crossref.WithLogger(slog.Default()),
		)

		report, err := newGenerator().AddDates(ctx, cfg.Data, client, workers)
		if err != nil {
			fatal("Failed to add dates", err)
		}
		fmt.Printf("%d records, %d without date: %d dates added, %d not found\n",
			report.Total, report.Missing, report.Updated, report.Failed)
	},
}

func init() {
	rootCmd.AddCommand(datesCmd)
	datesCmd.Flags().IntVar(&dateWorkers, "workers", 5, "Concurrent lookups")
}
