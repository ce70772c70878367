package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/gleamhunt/gleam-finder/internal/models"
	"github.com/gleamhunt/gleam-finder/internal/util"
)

const (
	colorDefault    = 5793266  // #5865F2
	colorEndingSoon = 16711680 // #FF0000
	colorHighValue  = 16766720 // #FFD700

	endingSoonWindow = 24 * time.Hour

	// Discord truncates embed descriptions at 4096; keep ours readable.
	maxDescriptionLen = 1500

	maxSendAttempts = 3
)

// Extra is notification-only enrichment. It never feeds back into the
// stored record's parsed fields.
type Extra struct {
	Summary   string
	HighValue bool
}

type Client struct {
	webhookURL  string
	client      *http.Client
	rateLimiter *rate.Limiter
}

func New(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		// Discord webhooks tolerate roughly 30 requests/min.
		rateLimiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// Send posts a new giveaway notification and returns the message ID.
func (c *Client) Send(ctx context.Context, g models.Giveaway, extra Extra) (string, error) {
	if c.webhookURL == "" {
		return "", nil
	}
	return c.sendAndGetMessageID(ctx, formatGiveawayEmbed(g, extra))
}

// Update edits an existing notification in place. The caller decides when
// an update is warranted.
func (c *Client) Update(ctx context.Context, messageID string, g models.Giveaway, extra Extra) error {
	if c.webhookURL == "" || messageID == "" {
		return nil
	}
	return c.updateMessage(ctx, messageID, formatGiveawayEmbed(g, extra))
}

// Internal structures
type discordWebhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type discordEmbedFooter struct {
	Text string `json:"text,omitempty"`
}

type discordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	URL         string              `json:"url,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Footer      discordEmbedFooter  `json:"footer,omitempty"`
}

type discordMessageResponse struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

func formatGiveawayEmbed(g models.Giveaway, extra Extra) discordEmbed {
	description := extra.Summary
	if description == "" {
		description = g.Description
	}
	if len(description) > maxDescriptionLen {
		description = description[:maxDescriptionLen] + "…"
	}

	ends := time.Unix(g.EndDate, 0).UTC()
	fields := []discordEmbedField{
		{Name: "Ends", Value: ends.Format(time.RFC1123), Inline: true},
		{Name: "Max entries", Value: strconv.FormatInt(g.MaxEntries(), 10), Inline: true},
	}
	if g.EntryCount != nil {
		fields = append(fields, discordEmbedField{
			Name:   "Participants",
			Value:  strconv.FormatInt(*g.EntryCount, 10),
			Inline: true,
		})
	}

	return discordEmbed{
		Title:       g.Name,
		URL:         g.URL(),
		Description: description,
		Timestamp:   ends.Format(time.RFC3339),
		Color:       embedColor(g, extra, time.Now()),
		Fields:      fields,
		Footer:      discordEmbedFooter{Text: "gleam.io/" + g.GleamID},
	}
}

func embedColor(g models.Giveaway, extra Extra, now time.Time) int {
	if extra.HighValue {
		return colorHighValue
	}
	if remaining := time.Unix(g.EndDate, 0).Sub(now); remaining > 0 && remaining < endingSoonWindow {
		return colorEndingSoon
	}
	return colorDefault
}

func (c *Client) sendAndGetMessageID(ctx context.Context, embed discordEmbed) (string, error) {
	payload := discordWebhookPayload{Embeds: []discordEmbed{embed}}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	parsedURL, err := url.Parse(c.webhookURL)
	if err != nil {
		return "", err
	}
	q := parsedURL.Query()
	q.Set("wait", "true")
	parsedURL.RawQuery = q.Encode()

	var lastErr error
	for attempt := 0; attempt < maxSendAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", err
		}

		req, err := http.NewRequestWithContext(ctx, "POST", parsedURL.String(), bytes.NewBuffer(payloadBytes))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return "", err
		}

		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			var msgResponse discordMessageResponse
			if err := json.Unmarshal(bodyBytes, &msgResponse); err != nil {
				return "", err
			}
			return msgResponse.ID, nil
		}

		lastErr = fmt.Errorf("discord status: %s, body: %s", resp.Status, string(bodyBytes))
		backoff := retryBackoff(resp, attempt)
		if backoff == 0 {
			return "", lastErr
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}
	return "", lastErr
}

// retryBackoff returns how long to wait before retrying, or zero when the
// response should not be retried at all.
func retryBackoff(resp *http.Response, attempt int) time.Duration {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		if secs := util.SafeAtoi(resp.Header.Get("Retry-After")); secs > 0 {
			return time.Duration(secs) * time.Second
		}
		return time.Duration(1<<attempt) * time.Second
	case resp.StatusCode >= 500:
		return time.Duration(1<<attempt) * time.Second
	default:
		return 0
	}
}

func (c *Client) updateMessage(ctx context.Context, messageID string, embed discordEmbed) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	payload := discordWebhookPayload{Embeds: []discordEmbed{embed}, Content: ""}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	parsedBaseURL, err := url.Parse(c.webhookURL)
	if err != nil {
		return err
	}
	patchURL := fmt.Sprintf("%s://%s%s/messages/%s", parsedBaseURL.Scheme, parsedBaseURL.Host, parsedBaseURL.Path, messageID)

	req, err := http.NewRequestWithContext(ctx, "PATCH", patchURL, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	bodyBytes, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("discord update failed: %s, body: %s", resp.Status, string(bodyBytes))
}
