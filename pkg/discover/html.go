package discover

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/henryaj/heycochrane/pkg/core"
	"github.com/henryaj/heycochrane/pkg/crossref"
)

// leadParagraphs is how many paragraphs of the article body stand in for a
// missing summary section.
const leadParagraphs = 5

// reviewLinks returns every link on the page that points at a review,
// resolved against base, in document order.
func reviewLinks(r io.Reader, base *url.URL) ([]core.Candidate, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	var out []core.Candidate
	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.DataAtom != atom.A {
			return true
		}
		href := attr(n, "href")
		cd := crossref.ExtractCDNumber(href)
		if cd == "" {
			return true
		}
		link, err := base.Parse(href)
		if err != nil {
			return true
		}
		out = append(out, core.Candidate{CDNumber: cd, URL: link.String(), Title: text(n)})
		return true
	})
	return out, nil
}

// PlainLanguageSummary extracts the plain language summary from a review
// page. It looks for a dedicated section first, then for a heading that
// names it, and finally falls back to the opening paragraphs of the article.
func PlainLanguageSummary(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	if n := find(doc, isSummarySection); n != nil {
		if s := text(n); s != "" {
			return s, nil
		}
	}

	var fromHeading string
	walk(doc, func(n *html.Node) bool {
		if fromHeading != "" {
			return false
		}
		if isHeading(n) && strings.Contains(strings.ToLower(text(n)), "plain language") {
			var parts []string
			for s := n.NextSibling; s != nil; s = s.NextSibling {
				if s.Type != html.ElementNode {
					continue
				}
				if isHeading(s) {
					break
				}
				if t := text(s); t != "" {
					parts = append(parts, t)
				}
			}
			fromHeading = strings.Join(parts, "\n\n")
		}
		return true
	})
	if fromHeading != "" {
		return fromHeading, nil
	}

	article := find(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && (n.DataAtom == atom.Article || n.DataAtom == atom.Main)
	})
	if article != nil {
		var paras []string
		walk(article, func(n *html.Node) bool {
			if len(paras) == leadParagraphs {
				return false
			}
			if n.Type == html.ElementNode && n.DataAtom == atom.P {
				if t := text(n); t != "" {
					paras = append(paras, t)
				}
				return false
			}
			return true
		})
		if len(paras) > 0 {
			return strings.Join(paras, "\n\n"), nil
		}
	}

	return "", ErrNoSummary
}

func isSummarySection(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if attr(n, "id") == "pls" || attr(n, "data-section") == "pls" {
		return true
	}
	for _, class := range strings.Fields(attr(n, "class")) {
		if class == "pls-section" || class == "plain-language-summary" {
			return true
		}
	}
	return false
}

func isHeading(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.H2, atom.H3, atom.H4:
		return true
	}
	return false
}

// walk visits n and its descendants depth first. Returning false from fn
// skips the children of the node.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	walk(n, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// text returns the visible text below n with whitespace collapsed.
func text(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(n *html.Node) bool {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return false
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		return true
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}
