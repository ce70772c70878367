package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/gleamhunt/gleam-finder/internal/models"
)

// BrowserClient fetches pages through a headless browser. gleam.io sits
// behind JS challenges that sometimes reject plain HTTP clients; this
// implements the same TextFetcher contract at the cost of a Chrome
// dependency, and is selected by configuration.
type BrowserClient struct {
	timeout time.Duration
}

func NewBrowserClient(timeout time.Duration) *BrowserClient {
	return &BrowserClient{timeout: timeout}
}

func (b *BrowserClient) FetchText(ctx context.Context, url string) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, b.timeout)
	defer cancelRun()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", fmt.Errorf("%w: browser fetch of %s: %v", models.ErrTimeout, url, err)
		}
		return "", fmt.Errorf("%w: browser fetch of %s: %v", models.ErrInvalidResponse, url, err)
	}
	return html, nil
}
