// Package search discovers candidate pages by scanning a Google results
// page for outbound links. The markers are tied to Google's current
// markup; when that markup changes this breaks, by design, rather than
// guessing.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/gleamhunt/gleam-finder/internal/fetcher"
	"github.com/gleamhunt/gleam-finder/internal/scan"
)

const (
	resultOpen  = `"><a href="`
	resultClose = `"`

	// A matched href only counts as a result link when Google's
	// click-tracking attributes follow it; anything else is chrome.
	confirmMousedown = `" onmousedown="return rwt(`
	confirmDataVed   = `" data-ved="2a`
)

// BuildURL returns the query URL for one results page: pages referencing
// gleam.io published within the last hour, unfiltered, ten results per
// page.
func BuildURL(page int) string {
	return fmt.Sprintf(`https://www.google.com/search?q="gleam.io"&tbs=qdr:h&filter=0&start=%d`, page*10)
}

// ExtractResultLinks scans a results page and returns the outbound result
// URLs in first-found order. The scan advances past each found URL (not
// past the closing marker), so a link's own repeated markers are not
// re-matched; there is no other deduplication.
func ExtractResultLinks(body string) []string {
	var links []string
	c := scan.NewCursor(body)
	for {
		url, next, ok := c.Next(resultOpen, resultClose)
		if !ok {
			break
		}
		if rest := next.Rest(); strings.HasPrefix(rest, confirmMousedown) || strings.HasPrefix(rest, confirmDataVed) {
			links = append(links, url)
		}
		c = next
	}
	return links
}

// Searcher yields result-page links for one page of search results.
type Searcher interface {
	Search(ctx context.Context, page int) ([]string, error)
}

// Client performs the search over an injected transport.
type Client struct {
	fetcher fetcher.TextFetcher
}

func New(f fetcher.TextFetcher) *Client {
	return &Client{fetcher: f}
}

// Search loads one results page and extracts its links. A transport or
// decoding failure is returned as-is so callers can tell "could not look"
// apart from "nothing to find"; an empty slice means the latter.
func (c *Client) Search(ctx context.Context, page int) ([]string, error) {
	body, err := c.fetcher.FetchText(ctx, BuildURL(page))
	if err != nil {
		return nil, err
	}
	return ExtractResultLinks(body), nil
}
