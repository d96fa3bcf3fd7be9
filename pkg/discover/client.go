// Package discover finds Cochrane reviews published upstream and fetches
// their plain language summaries.
package discover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/henryaj/heycochrane/pkg/core"
	"github.com/henryaj/heycochrane/pkg/crossref"
)

const (
	DefaultRSSURL      = "https://www.cochranelibrary.com/cdsr/table-of-contents/rss.xml"
	DefaultNewsURL     = "https://www.cochrane.org/news"
	DefaultCochraneURL = crossref.DefaultCochraneURL
	DefaultTimeout     = 30 * time.Second
	DefaultRate        = 2

	// The review pages turn away clients that do not look like a browser.
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// ErrNoSummary is returned when no page yields a plain language summary.
var ErrNoSummary = errors.New("no plain language summary found")

// Client discovers reviews and fetches their summaries. It is safe for
// concurrent use.
type Client struct {
	rssURL      string
	newsURL     string
	cochraneURL string
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithRSSURL sets the table of contents feed
func WithRSSURL(u string) ClientOption {
	return func(c *Client) {
		c.rssURL = u
	}
}

// WithNewsURL sets the news page scraped when the feed is empty
func WithNewsURL(u string) ClientOption {
	return func(c *Client) {
		c.newsURL = u
	}
}

// WithCochraneURL sets the base URL of the review pages
func WithCochraneURL(u string) ClientOption {
	return func(c *Client) {
		c.cochraneURL = strings.TrimRight(u, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the request rate across all hosts
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new discovery client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		rssURL:      DefaultRSSURL,
		newsURL:     DefaultNewsURL,
		cochraneURL: DefaultCochraneURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRate), 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Discover lists reviews from the feed, falling back to the news page when
// the feed fails or lists nothing. Candidates are unique by CD number.
func (c *Client) Discover(ctx context.Context) ([]core.Candidate, error) {
	found, rssErr := c.FetchRSS(ctx)
	if rssErr == nil && len(found) > 0 {
		return found, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if rssErr != nil {
		c.warn("feed failed, scraping news page", "error", rssErr)
	} else {
		c.info("feed listed no reviews, scraping news page")
	}

	found, newsErr := c.ScrapeNews(ctx)
	if newsErr != nil {
		return nil, errors.Join(rssErr, newsErr)
	}
	return found, nil
}

// FetchRSS lists the reviews in the table of contents feed.
func (c *Client) FetchRSS(ctx context.Context) ([]core.Candidate, error) {
	body, err := c.get(ctx, c.rssURL)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	var out []core.Candidate
	for _, item := range feed.Items {
		cd := crossref.ExtractCDNumber(item.Link)
		if cd == "" {
			continue
		}
		out = append(out, core.Candidate{CDNumber: cd, URL: item.Link, Title: strings.TrimSpace(item.Title)})
	}
	out = unique(out)
	c.info("read feed", "url", c.rssURL, "reviews", len(out))
	return out, nil
}

// ScrapeNews lists the reviews linked from the news page.
func (c *Client) ScrapeNews(ctx context.Context) ([]core.Candidate, error) {
	body, err := c.get(ctx, c.newsURL)
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(c.newsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid news URL: %w", err)
	}

	links, err := reviewLinks(bytes.NewReader(body), base)
	if err != nil {
		return nil, err
	}
	out := unique(links)
	c.info("scraped news page", "url", c.newsURL, "reviews", len(out))
	return out, nil
}

// FetchSummary returns the plain language summary of a review, trying the
// cochrane.org page for its CD number before the candidate URL.
func (c *Client) FetchSummary(ctx context.Context, cand core.Candidate) (string, error) {
	var pages []string
	if cand.CDNumber != "" {
		pages = append(pages, c.cochraneURL+"/"+cand.CDNumber)
	}
	if cand.URL != "" {
		pages = append(pages, cand.URL)
	}

	for _, page := range pages {
		body, err := c.get(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			c.debug("review page unavailable", "url", page, "error", err)
			continue
		}
		text, err := PlainLanguageSummary(bytes.NewReader(body))
		if err == nil {
			return text, nil
		}
		c.debug("no summary on page", "url", page, "error", err)
	}
	return "", ErrNoSummary
}

// unique keeps the first candidate per CD number.
func unique(in []core.Candidate) []core.Candidate {
	seen := make(map[string]struct{}, len(in))
	out := make([]core.Candidate, 0, len(in))
	for _, cand := range in {
		if _, ok := seen[cand.CDNumber]; ok {
			continue
		}
		seen[cand.CDNumber] = struct{}{}
		out = append(out, cand)
	}
	return out
}

// APIError represents a non-200 response
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// get performs a rate-limited GET request and returns the body.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, URL: u}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Client) info(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
