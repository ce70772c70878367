// Package intermediary extracts gleam.io giveaway links from arbitrary
// third-party pages: video descriptions, blog posts, forum threads.
// Links are buried in whatever markup or inline JSON the page uses, so
// discovery scans for the bare scheme+host prefix and reads forward
// through a permissive character class instead of parsing the page.
package intermediary

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gleamhunt/gleam-finder/internal/fetcher"
	"github.com/gleamhunt/gleam-finder/internal/gleam"
	"github.com/gleamhunt/gleam-finder/internal/scan"
)

const gleamPrefix = "https://gleam.io/"

// maxPathLen caps the captured path. Surrounding noise (tracking params
// baked into slugs, minified JS) can otherwise run the capture arbitrarily
// long; anything a giveaway link needs fits well within the cap.
const maxPathLen = 20

func isPathByte(ch byte) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		return true
	case ch == '-', ch == '/', ch == '_':
		return true
	}
	return false
}

// capturePath reads the longest prefix of s made of path bytes, up to the
// cap.
func capturePath(s string) string {
	i := 0
	for i < len(s) && i < maxPathLen && isPathByte(s[i]) {
		i++
	}
	return s[:i]
}

// ExtractGleamLinks scans a page for gleam.io links and returns them as
// canonical giveaway URLs, deduplicated, in first-found order. Candidates
// whose path empties out or that match neither accepted URL shape are
// silently dropped; they are noise, not failures.
func ExtractGleamLinks(body string) []string {
	var raw []string
	c := scan.NewCursor(body)
	for {
		after, ok := c.Seek(gleamPrefix)
		if !ok {
			break
		}
		// Advance past the marker occurrence, not the captured path, so
		// overlapping links in repeated markup are all seen.
		c = after
		path := capturePath(after.Rest())
		if path == "" {
			continue
		}
		url := gleamPrefix + path
		if !contains(raw, url) {
			raw = append(raw, url)
		}
	}

	var links []string
	for _, u := range raw {
		match := gleam.ParseGiveawayURL(u)
		if match.Shape == gleam.ShapeUnrecognized {
			continue
		}
		canonical := gleam.CanonicalURL(match.ID)
		if !contains(links, canonical) {
			links = append(links, canonical)
		}
	}
	return links
}

func contains(list []string, s string) bool {
	for _, elem := range list {
		if elem == s {
			return true
		}
	}
	return false
}

// PageTitle extracts the page's <title> text, for labeling where a link
// was found. This is display metadata, not part of link discovery, so a
// DOM parse is fine here. Empty when the page has no usable title.
func PageTitle(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// Resolution is the outcome of resolving one intermediary page.
type Resolution struct {
	SourceURL string
	Title     string
	Links     []string
}

// Resolver turns an intermediary page URL into canonical giveaway links.
type Resolver interface {
	Resolve(ctx context.Context, url string) (*Resolution, error)
}

type Client struct {
	fetcher fetcher.TextFetcher
}

func New(f fetcher.TextFetcher) *Client {
	return &Client{fetcher: f}
}

// Resolve fetches the page and extracts its giveaway links. Transport and
// decoding failures are returned as-is; a page with no links resolves
// successfully with an empty Links slice.
func (c *Client) Resolve(ctx context.Context, url string) (*Resolution, error) {
	body, err := c.fetcher.FetchText(ctx, url)
	if err != nil {
		return nil, err
	}
	return &Resolution{
		SourceURL: url,
		Title:     PageTitle(body),
		Links:     ExtractGleamLinks(body),
	}, nil
}
