package gleam

import (
	"context"
	"fmt"
	"time"

	"github.com/gleamhunt/gleam-finder/internal/fetcher"
	"github.com/gleamhunt/gleam-finder/internal/models"
)

// Client fetches and parses giveaway pages through an injected transport.
// All calls are synchronous and sequential; a caller wanting concurrency
// runs independent Clients (or independent calls) and must not share a
// Giveaway across them, since Update mutates in place.
type Client struct {
	fetcher fetcher.TextFetcher

	// Injected for tests. now stamps LastFetched; sleep implements the
	// FetchAll cooldown.
	now   func() time.Time
	sleep func(time.Duration)
}

func NewClient(f fetcher.TextFetcher) *Client {
	return &Client{
		fetcher: f,
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// Fetch loads and parses the giveaway referenced by url. The URL is
// canonicalized first; an unrecognized shape fails with ErrInvalidResponse
// before any network access. Transport failures surface as ErrTimeout,
// everything else the parser rejects as ErrInvalidResponse.
func (c *Client) Fetch(ctx context.Context, url string) (*models.Giveaway, error) {
	match := ParseGiveawayURL(url)
	if match.Shape == ShapeUnrecognized {
		return nil, fmt.Errorf("%w: not a giveaway URL: %s", models.ErrInvalidResponse, url)
	}

	body, err := c.fetcher.FetchText(ctx, CanonicalURL(match.ID))
	if err != nil {
		return nil, err
	}
	return Parse(match.ID, body, c.now())
}

// FetchAll fetches each URL in order, skipping (not aborting on) any
// individual failure, and returns the successful records only. When more
// than one URL is requested a fixed cooldown is slept after every attempt,
// success or not. There is no cancellation of the cooldown mid-batch
// beyond the context checks of the underlying fetches.
func (c *Client) FetchAll(ctx context.Context, urls []string, cooldown time.Duration) []*models.Giveaway {
	var giveaways []*models.Giveaway
	for _, url := range urls {
		if g, err := c.Fetch(ctx, url); err == nil {
			giveaways = append(giveaways, g)
		}
		if len(urls) > 1 {
			c.sleep(cooldown)
		}
	}
	return giveaways
}

// Update re-fetches g through its canonical URL and replaces the record in
// place on success. On failure the existing record is left untouched and
// the error is returned for the caller to report; the stale record stays
// usable. Notification bookkeeping survives the replacement since it is
// not sourced from the page.
func (c *Client) Update(ctx context.Context, g *models.Giveaway) error {
	fresh, err := c.Fetch(ctx, g.URL())
	if err != nil {
		return err
	}

	msgID, msgTime := g.DiscordMessageID, g.DiscordLastUpdatedTime
	*g = *fresh
	g.DiscordMessageID = msgID
	g.DiscordLastUpdatedTime = msgTime
	return nil
}
