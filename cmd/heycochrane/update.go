package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/henryaj/heycochrane/pkg/core"
	"github.com/henryaj/heycochrane/pkg/discover"
	"github.com/henryaj/heycochrane/pkg/site"
	"github.com/henryaj/heycochrane/pkg/summarize"
)

var (
	updateDryRun     bool
	updateMaxReviews int
	updateModel      string
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Add summaries of newly published reviews",
	Long: `Find reviews published on the Cochrane Library feed (or the Cochrane news page
when the feed is empty), skip the ones already in the data file, draft a
question and answer for each new one with Gemini and append them to the data
file. The Gemini key is read from GEMINI_API_KEY.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		uc := cfg.Update
		opts := site.UpdateOptions{MaxReviews: uc.MaxReviews, DryRun: updateDryRun}
		if cmd.Flags().Changed("max-reviews") {
			opts.MaxReviews = updateMaxReviews
		}
		model := uc.Gemini.Model
		if updateModel != "" {
			model = updateModel
		}

		source := discover.NewClient(
			discover.WithRSSURL(uc.RSSURL),
			discover.WithNewsURL(uc.NewsURL),
			discover.WithCochraneURL(uc.CochraneURL),
			discover.WithTimeout(uc.GetTimeout()),
			discover.WithRateLimit(uc.RPS),
			discover.WithLogger(slog.Default()),
		)

		var sum site.Summarizer = dryRunSummarizer{}
		if !opts.DryRun {
			summarizer, err := newSummarizer(ctx, uc.Gemini.APIKey, model, uc.SummarizePrompt, uc.EnrichPrompt)
			if err != nil {
				fatal("Failed to set up summarizer", err)
			}
			sum = summarizer
		}

		report, err := newGenerator().Update(ctx, cfg.Data, source, sum, opts)
		if err != nil {
			fatal("Failed to update", err)
		}

		if opts.DryRun {
			fmt.Printf("%d reviews found, %d new:\n", report.Discovered, len(report.New))
			for _, c := range report.New {
				fmt.Printf("  %s  %s\n", c.CDNumber, c.Title)
			}
			return
		}
		fmt.Printf("%d reviews found, %d new: %d added, %d skipped\n",
			report.Discovered, len(report.New), len(report.Added), report.Skipped)
		for _, r := range report.Added {
			fmt.Printf("  %s\n", r.URL)
		}
	},
}

func newSummarizer(ctx context.Context, apiKey, model, summarizePath, enrichPath string) (*summarize.Summarizer, error) {
	gemini, err := summarize.NewGemini(ctx, apiKey,
		summarize.WithModel(model),
		summarize.WithGeminiLogger(slog.Default()),
	)
	if err != nil {
		return nil, err
	}

	summarizePrompt, err := readPrompt(summarizePath)
	if err != nil {
		return nil, err
	}
	enrichPrompt, err := readPrompt(enrichPath)
	if err != nil {
		return nil, err
	}
	return summarize.New(gemini,
		summarize.WithPrompts(summarizePrompt, enrichPrompt),
		summarize.WithLogger(slog.Default()),
	), nil
}

func readPrompt(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}
	return string(b), nil
}

// dryRunSummarizer stands in when --dry-run is set; Update never calls it.
type dryRunSummarizer struct{}

func (dryRunSummarizer) Summarize(ctx context.Context, url, summary string) (core.Record, error) {
	return core.Record{}, fmt.Errorf("dry run")
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().BoolVar(&updateDryRun, "dry-run", false, "List new reviews without drafting or writing anything")
	updateCmd.Flags().IntVar(&updateMaxReviews, "max-reviews", site.DefaultMaxReviews, "Maximum number of new reviews to draft")
	updateCmd.Flags().StringVar(&updateModel, "model", "", "Gemini model (default from config)")
}
