package site

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"

	"github.com/natefinch/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/henryaj/heycochrane/pkg/core"
	"github.com/henryaj/heycochrane/pkg/records"
)

// DefaultDateWorkers is the number of concurrent date lookups.
const DefaultDateWorkers = 5

// DateLookup resolves the publication date (YYYY-MM-DD) of a review URL.
type DateLookup interface {
	Lookup(ctx context.Context, url string) (string, error)
}

// DateReport summarizes an AddDates run.
type DateReport struct {
	Total   int
	Missing int
	Updated int
	Failed  int
}

// AddDates looks up a publication date for every record of dataPath that
// has none and writes the results back into the file. Lookup failures are
// counted, not returned; the file is rewritten only when at least one date
// was found.
func (g *Generator) AddDates(ctx context.Context, dataPath string, lookup DateLookup, workers int) (DateReport, error) {
	if workers <= 0 {
		workers = DefaultDateWorkers
	}

	data, err := os.ReadFile(dataPath)
	if err != nil {
		return DateReport{}, &core.IOError{Op: "read", Path: dataPath, Err: err}
	}
	recs, err := records.Unmarshal(data)
	if err != nil {
		var parseErr *core.ParseError
		if errors.As(err, &parseErr) && parseErr.Source == "" {
			parseErr.Source = dataPath
		}
		return DateReport{}, err
	}

	report := DateReport{Total: len(recs)}
	var pending []int
	for i, r := range recs {
		if r.Date == nil || *r.Date == "" {
			pending = append(pending, i)
		}
	}
	report.Missing = len(pending)
	if g.logger != nil {
		g.logger.Info("looking up publication dates", "records", report.Total, "missing", report.Missing)
	}
	if len(pending) == 0 {
		return report, nil
	}

	var (
		mu    sync.Mutex
		dates = make(map[int]string, len(pending))
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, idx := range pending {
		url := recs[idx].URL
		eg.Go(func() error {
			date, err := lookup.Lookup(egCtx, url)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				if g.logger != nil {
					g.logger.Warn("no date found", "entry", idx, "url", url, "error", err)
				}
			} else {
				dates[idx] = date
				report.Updated++
				g.debug("date found", "entry", idx, "date", date)
			}
			if done := report.Updated + report.Failed; done%50 == 0 && g.logger != nil {
				g.logger.Info("progress", "processed", done, "of", report.Missing, "updated", report.Updated, "failed", report.Failed)
			}
			return nil
		})
	}
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return report, err
	}

	if len(dates) == 0 {
		return report, nil
	}
	out, err := records.SetDates(data, dates)
	if err != nil {
		var parseErr *core.ParseError
		if errors.As(err, &parseErr) {
			parseErr.Source = dataPath
		}
		return report, err
	}
	if err := atomic.WriteFile(dataPath, bytes.NewReader(out)); err != nil {
		return report, &core.IOError{Op: "write", Path: dataPath, Err: err}
	}
	if g.logger != nil {
		g.logger.Info("dates written", "path", dataPath, "updated", report.Updated, "failed", report.Failed)
	}
	return report, nil
}
