// Package crossref resolves publication dates of Cochrane reviews, first
// through the CrossRef works API and then through the review page itself.
package crossref

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL     = "https://api.crossref.org"
	DefaultCochraneURL = "https://www.cochrane.org"
	DefaultTimeout     = 15 * time.Second
	UserAgent          = "HeyCochrane/1.0 (https://github.com/henryaj/heycochrane)"

	// Requests per second. CrossRef asks polite clients to stay low;
	// cochrane.org is a regular website.
	DefaultCrossrefRate = 10
	DefaultCochraneRate = 2
)

// ErrNoDate is returned when neither source yields a date.
var ErrNoDate = errors.New("no publication date found")

var (
	doiPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(10\.1002/14651858\.CD\d+(?:\.pub\d+)?)`),
		regexp.MustCompile(`doi/(10\.[^/]+/[^/]+)`),
	}
	cdPattern            = regexp.MustCompile(`(?i)(CD\d+)`)
	datePublishedPattern = regexp.MustCompile(`"datePublished"\s*:\s*"([^"]+)"`)
	isoDatePattern       = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
)

// Client looks up review dates. It is safe for concurrent use.
type Client struct {
	baseURL         string
	cochraneURL     string
	httpClient      *http.Client
	crossrefLimiter *rate.Limiter
	cochraneLimiter *rate.Limiter
	logger          *slog.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the CrossRef API base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithCochraneURL sets the base URL of the review pages
func WithCochraneURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.cochraneURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimits sets the request rates for CrossRef and Cochrane
func WithRateLimits(crossrefPerSecond, cochranePerSecond float64) ClientOption {
	return func(c *Client) {
		c.crossrefLimiter = rate.NewLimiter(rate.Limit(crossrefPerSecond), 1)
		c.cochraneLimiter = rate.NewLimiter(rate.Limit(cochranePerSecond), 1)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new date lookup client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		cochraneURL: DefaultCochraneURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		crossrefLimiter: rate.NewLimiter(rate.Limit(DefaultCrossrefRate), 1),
		cochraneLimiter: rate.NewLimiter(rate.Limit(DefaultCochraneRate), 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a non-200 response
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// ExtractDOI returns the DOI embedded in a review URL, or "".
func ExtractDOI(url string) string {
	for _, p := range doiPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}

// ExtractCDNumber returns the upper-cased Cochrane review number, or "".
func ExtractCDNumber(url string) string {
	if m := cdPattern.FindStringSubmatch(url); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

// Lookup returns the publication date of the review at url as YYYY-MM-DD.
func (c *Client) Lookup(ctx context.Context, url string) (string, error) {
	if doi := ExtractDOI(url); doi != "" {
		date, err := c.crossrefDate(ctx, doi)
		if err == nil {
			c.debug("date via crossref", "doi", doi, "date", date)
			return date, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.debug("crossref lookup failed", "doi", doi, "error", err)
	}

	if cd := ExtractCDNumber(url); cd != "" {
		date, err := c.cochraneDate(ctx, cd)
		if err == nil {
			c.debug("date via cochrane page", "cd", cd, "date", date)
			return date, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.debug("cochrane lookup failed", "cd", cd, "error", err)
	}

	return "", ErrNoDate
}

type dateField struct {
	DateParts [][]int `json:"date-parts"`
}

type worksResponse struct {
	Message struct {
		Published       *dateField `json:"published"`
		Issued          *dateField `json:"issued"`
		PublishedOnline *dateField `json:"published-online"`
		Created         *dateField `json:"created"`
	} `json:"message"`
}

func (c *Client) crossrefDate(ctx context.Context, doi string) (string, error) {
	body, err := c.get(ctx, c.crossrefLimiter, c.baseURL+"/works/"+doi)
	if err != nil {
		return "", err
	}

	var resp worksResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	m := resp.Message
	for _, field := range []*dateField{m.Published, m.Issued, m.PublishedOnline, m.Created} {
		if date, ok := formatDateParts(field); ok {
			return date, nil
		}
	}
	return "", ErrNoDate
}

// formatDateParts turns CrossRef date-parts ([[2013, 1, 31]]) into an ISO
// date, padding a missing month or day with 01.
func formatDateParts(f *dateField) (string, bool) {
	if f == nil || len(f.DateParts) == 0 {
		return "", false
	}
	parts := f.DateParts[0]
	if len(parts) == 0 || parts[0] <= 0 {
		return "", false
	}
	switch {
	case len(parts) >= 3:
		return fmt.Sprintf("%d-%02d-%02d", parts[0], parts[1], parts[2]), true
	case len(parts) == 2:
		return fmt.Sprintf("%d-%02d-01", parts[0], parts[1]), true
	default:
		return fmt.Sprintf("%d-01-01", parts[0]), true
	}
}

func (c *Client) cochraneDate(ctx context.Context, cd string) (string, error) {
	body, err := c.get(ctx, c.cochraneLimiter, c.cochraneURL+"/"+cd)
	if err != nil {
		return "", err
	}

	m := datePublishedPattern.FindSubmatch(body)
	if m == nil {
		return "", ErrNoDate
	}
	d := isoDatePattern.FindStringSubmatch(string(m[1]))
	if d == nil {
		return "", ErrNoDate
	}
	return fmt.Sprintf("%s-%s-%s", d[1], d[2], d[3]), nil
}

// get performs a rate-limited GET request and returns the body.
func (c *Client) get(ctx context.Context, limiter *rate.Limiter, url string) ([]byte, error) {
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
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
		return nil, &APIError{StatusCode: resp.StatusCode, URL: url}
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
