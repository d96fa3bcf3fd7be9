package discover

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henryaj/heycochrane/pkg/core"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Cochrane Database of Systematic Reviews</title>
    <item>
      <title>Zinc for the common cold</title>
      <link>https://www.cochranelibrary.com/cdsr/doi/10.1002/14651858.CD001364.pub5/full</link>
    </item>
    <item>
      <title>Editorial</title>
      <link>https://www.cochranelibrary.com/cdsr/editorial</link>
    </item>
    <item>
      <title>Zinc for the common cold (update)</title>
      <link>https://www.cochranelibrary.com/cdsr/doi/10.1002/14651858.CD001364.pub6/full</link>
    </item>
    <item>
      <title> Honey for cough </title>
      <link>https://www.cochranelibrary.com/cdsr/doi/10.1002/14651858.CD007094.pub5/full</link>
    </item>
  </channel>
</rss>`

const newsHTML = `<html><body>
<a href="/about">About</a>
<a href="/CD013412/exercise-for-back-pain">Exercise for <b>back pain</b></a>
<a href="https://www.cochrane.org/CD013412">Same review</a>
<a href="https://www.cochranelibrary.com/cdsr/doi/10.1002/14651858.CD010216.pub8/full">E-cigarettes</a>
</body></html>`

type site struct {
	feed   string
	news   string
	pages  map[string]string
	status int
}

func newTestServer(t *testing.T, s site) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/rss.xml", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		if s.status != 0 {
			w.WriteHeader(s.status)
			return
		}
		fmt.Fprint(w, s.feed)
	})
	mux.HandleFunc("/news", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, s.news)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		body, ok := s.pages[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(
		WithRSSURL(srv.URL+"/rss.xml"),
		WithNewsURL(srv.URL+"/news"),
		WithCochraneURL(srv.URL),
		WithRateLimit(1000),
	)
}

func TestDiscover_Feed(t *testing.T) {
	srv := newTestServer(t, site{feed: feedXML, news: newsHTML})

	got, err := newTestClient(srv).Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []core.Candidate{
		{CDNumber: "CD001364", URL: "https://www.cochranelibrary.com/cdsr/doi/10.1002/14651858.CD001364.pub5/full", Title: "Zinc for the common cold"},
		{CDNumber: "CD007094", URL: "https://www.cochranelibrary.com/cdsr/doi/10.1002/14651858.CD007094.pub5/full", Title: "Honey for cough"},
	}, got)
}

func TestDiscover_FallsBackToNews(t *testing.T) {
	tests := []struct {
		name string
		site site
	}{
		{"feed error", site{status: http.StatusServiceUnavailable, news: newsHTML}},
		{"empty feed", site{feed: `<rss version="2.0"><channel><title>x</title></channel></rss>`, news: newsHTML}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, tc.site)

			got, err := newTestClient(srv).Discover(context.Background())
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, core.Candidate{CDNumber: "CD013412", URL: srv.URL + "/CD013412/exercise-for-back-pain", Title: "Exercise for back pain"}, got[0])
			assert.Equal(t, "CD010216", got[1].CDNumber)
		})
	}
}

func TestDiscover_BothSourcesFail(t *testing.T) {
	srv := newTestServer(t, site{status: http.StatusInternalServerError})
	c := newTestClient(srv)
	c.newsURL = srv.URL + "/missing-news"

	_, err := c.Discover(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
}

func TestFetchSummary(t *testing.T) {
	srv := newTestServer(t, site{pages: map[string]string{
		"CD001364": `<html><body><div class="intro">Skip me</div>
<section class="abstract pls-section">  Zinc may shorten
colds by about <em>a day</em>. </section></body></html>`,
	}})

	got, err := newTestClient(srv).FetchSummary(context.Background(), core.Candidate{CDNumber: "CD001364"})
	require.NoError(t, err)
	assert.Equal(t, "Zinc may shorten colds by about a day.", got)
}

func TestFetchSummary_FallsBackToCandidateURL(t *testing.T) {
	srv := newTestServer(t, site{pages: map[string]string{
		"review/full": `<html><body><div id="pls"><p>From the review URL.</p></div></body></html>`,
	}})

	got, err := newTestClient(srv).FetchSummary(context.Background(), core.Candidate{CDNumber: "CD999999", URL: srv.URL + "/review/full"})
	require.NoError(t, err)
	assert.Equal(t, "From the review URL.", got)
}

func TestFetchSummary_NotFound(t *testing.T) {
	srv := newTestServer(t, site{})

	_, err := newTestClient(srv).FetchSummary(context.Background(), core.Candidate{CDNumber: "CD000001"})
	assert.ErrorIs(t, err, ErrNoSummary)
}

func TestPlainLanguageSummary(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{
			name: "data attribute",
			page: `<div data-section="pls">Short answer.</div>`,
			want: "Short answer.",
		},
		{
			name: "heading",
			page: `<article><h2>Abstract</h2><p>Technical.</p>
<h3>Plain Language Summary</h3><p>First part.</p><ul><li>Point</li></ul><h3>Authors</h3><p>Names.</p></article>`,
			want: "First part.\n\nPoint",
		},
		{
			name: "lead paragraphs",
			page: `<main><p>One.</p><p>Two.</p><div><p>Three.</p></div><p>Four.</p><p>Five.</p><p>Six.</p></main>`,
			want: "One.\n\nTwo.\n\nThree.\n\nFour.\n\nFive.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := PlainLanguageSummary(strings.NewReader(tc.page))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := PlainLanguageSummary(strings.NewReader(`<html><body><div>Nothing here</div></body></html>`))
	assert.ErrorIs(t, err, ErrNoSummary)
}
