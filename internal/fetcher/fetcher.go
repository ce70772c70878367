// Package fetcher is the outbound transport the extraction pipeline
// consumes. The pipeline only ever needs "fetch(url) -> text or failure";
// everything about requests (headers, timeouts, politeness) lives here.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/gleamhunt/gleam-finder/internal/models"
)

// TextFetcher is the transport contract: one blocking request returning
// the body as text. Implementations map failures onto the two pipeline
// error kinds: ErrTimeout when the request could not complete, and
// ErrInvalidResponse when a response arrived but is unusable.
type TextFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

const userAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"

// Client is the plain net/http implementation. A shared rate limiter
// spaces requests out; gleam.io and google both throttle aggressive
// clients.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New returns a Client with the given per-request timeout. minInterval
// is the politeness gap between consecutive requests; zero disables the
// limiter.
func New(timeout, minInterval time.Duration) *Client {
	var limiter *rate.Limiter
	if minInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(minInterval), 1)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

func (c *Client) FetchText(ctx context.Context, url string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: %v", models.ErrTimeout, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: bad request for %s: %v", models.ErrInvalidResponse, url, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,text/plain")
	req.Header.Set("DNT", "1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Could not reach, timed out, connection reset: all transport
		// failures collapse into the timeout kind.
		return "", fmt.Errorf("%w: %s: %v", models.ErrTimeout, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s returned status %d", models.ErrInvalidResponse, url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading body of %s: %v", models.ErrTimeout, url, err)
	}
	if !utf8.Valid(body) {
		return "", fmt.Errorf("%w: body of %s is not text", models.ErrInvalidResponse, url)
	}
	return string(body), nil
}
