package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/natefinch/atomic"

	"github.com/henryaj/heycochrane/pkg/core"
	"github.com/henryaj/heycochrane/pkg/crossref"
	"github.com/henryaj/heycochrane/pkg/records"
)

const (
	// DefaultMaxReviews caps how many new reviews one Update drafts.
	DefaultMaxReviews = 10

	// UpdateComment marks the entries appended by Update.
	UpdateComment = "New reviews added by automation"
)

// ReviewSource finds published reviews and fetches their plain language
// summaries. *discover.Client satisfies it.
type ReviewSource interface {
	Discover(ctx context.Context) ([]core.Candidate, error)
	FetchSummary(ctx context.Context, c core.Candidate) (string, error)
}

// Summarizer drafts a record from a plain language summary.
// *summarize.Summarizer satisfies it.
type Summarizer interface {
	Summarize(ctx context.Context, url, summary string) (core.Record, error)
}

// UpdateOptions controls an Update run.
type UpdateOptions struct {
	// MaxReviews caps the new reviews drafted; zero means DefaultMaxReviews.
	MaxReviews int
	// DryRun lists the new reviews without summarizing or writing anything.
	DryRun bool
}

// UpdateReport describes what an Update found and did.
type UpdateReport struct {
	Discovered int
	// New lists the reviews not yet in the data file, capped at MaxReviews.
	New     []core.Candidate
	Added   []core.Record
	Skipped int
}

// Update appends summaries of newly published reviews to the data file.
// Reviews already present, matched by CD number, are left out. A review
// whose summary cannot be fetched or drafted is skipped. The file is
// validated before it replaces the original, so a bad draft never corrupts
// the data.
func (g *Generator) Update(ctx context.Context, dataPath string, src ReviewSource, sum Summarizer, opts UpdateOptions) (UpdateReport, error) {
	if opts.MaxReviews <= 0 {
		opts.MaxReviews = DefaultMaxReviews
	}

	data, err := os.ReadFile(dataPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return UpdateReport{}, &core.IOError{Op: "read", Path: dataPath, Err: err}
	}
	existing, err := records.Unmarshal(data)
	if err != nil {
		var parseErr *core.ParseError
		if errors.As(err, &parseErr) && parseErr.Source == "" {
			parseErr.Source = dataPath
		}
		return UpdateReport{}, err
	}
	known := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		if cd := crossref.ExtractCDNumber(r.URL); cd != "" {
			known[cd] = struct{}{}
		}
	}
	g.debug("existing reviews", "records", len(existing), "cd_numbers", len(known))

	found, err := src.Discover(ctx)
	if err != nil {
		return UpdateReport{}, fmt.Errorf("discover reviews: %w", err)
	}
	report := UpdateReport{Discovered: len(found)}
	for _, c := range found {
		if _, ok := known[c.CDNumber]; ok {
			continue
		}
		known[c.CDNumber] = struct{}{}
		report.New = append(report.New, c)
		if len(report.New) == opts.MaxReviews {
			break
		}
	}
	if g.logger != nil {
		g.logger.Info("discovered reviews", "found", report.Discovered, "new", len(report.New))
	}
	if opts.DryRun || len(report.New) == 0 {
		return report, nil
	}

	for _, c := range report.New {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		rec, err := g.draft(ctx, src, sum, c)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Skipped++
			if g.logger != nil {
				g.logger.Warn("skipping review", "cd", c.CDNumber, "error", err)
			}
			continue
		}
		report.Added = append(report.Added, rec)
		g.debug("drafted review", "cd", c.CDNumber, "question", rec.Question)
	}
	if len(report.Added) == 0 {
		return report, nil
	}

	out, err := records.Append(data, report.Added, UpdateComment)
	if err != nil {
		var parseErr *core.ParseError
		if errors.As(err, &parseErr) {
			parseErr.Source = dataPath
		}
		return report, err
	}
	if _, err := records.Unmarshal(out); err != nil {
		return report, fmt.Errorf("updated data does not validate: %w", err)
	}
	if err := atomic.WriteFile(dataPath, bytes.NewReader(out)); err != nil {
		return report, &core.IOError{Op: "write", Path: dataPath, Err: err}
	}
	if g.logger != nil {
		g.logger.Info("reviews appended", "path", dataPath, "added", len(report.Added), "skipped", report.Skipped)
	}
	return report, nil
}

func (g *Generator) draft(ctx context.Context, src ReviewSource, sum Summarizer, c core.Candidate) (core.Record, error) {
	summary, err := src.FetchSummary(ctx, c)
	if err != nil {
		return core.Record{}, fmt.Errorf("fetch summary: %w", err)
	}
	rec, err := sum.Summarize(ctx, c.URL, summary)
	if err != nil {
		return core.Record{}, err
	}
	if rec.URL == "" {
		rec.URL = c.URL
	}
	return rec, nil
}
