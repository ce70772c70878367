package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/gleamhunt/gleam-finder/internal/models"
)

const firestoreCollection = "giveaways"

type Client struct {
	client *firestore.Client
}

func New(ctx context.Context, projectID string) (*Client, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// GetGiveawayByID retrieves a stored giveaway by its gleam code. A missing
// document is (nil, nil), not an error.
func (c *Client) GetGiveawayByID(ctx context.Context, id string) (*models.Giveaway, error) {
	doc, err := c.client.Collection(firestoreCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get giveaway %s: %w", id, err)
	}
	if !doc.Exists() {
		return nil, nil
	}

	var g models.Giveaway
	if err := doc.DataTo(&g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal giveaway data: %w", err)
	}
	return &g, nil
}

// TryCreateGiveaway attempts to create a new giveaway document keyed by
// its gleam code. Create failing on an existing document is the dedup
// barrier between concurrent runs.
func (c *Client) TryCreateGiveaway(ctx context.Context, g models.Giveaway) error {
	_, err := c.client.Collection(firestoreCollection).Doc(g.GleamID).Create(ctx, g)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return models.ErrGiveawayExists
		}
		return err
	}
	return nil
}

// UpdateGiveaway overwrites the mutable fields of a stored giveaway.
func (c *Client) UpdateGiveaway(ctx context.Context, g models.Giveaway) error {
	_, err := c.client.Collection(firestoreCollection).Doc(g.GleamID).Update(ctx, []firestore.Update{
		{Path: "name", Value: g.Name},
		{Path: "description", Value: g.Description},
		{Path: "entryCount", Value: g.EntryCount},
		{Path: "entryMethods", Value: g.EntryMethods},
		{Path: "startDate", Value: g.StartDate},
		{Path: "endDate", Value: g.EndDate},
		{Path: "lastFetched", Value: g.LastFetched},
		{Path: "discordMessageID", Value: g.DiscordMessageID},
		{Path: "discordLastUpdatedTime", Value: g.DiscordLastUpdatedTime},
	})
	return err
}

// ListStale returns stored giveaways whose last fetch is older than
// cutoff, oldest first, for the refresh pass.
func (c *Client) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*models.Giveaway, error) {
	iter := c.client.Collection(firestoreCollection).
		Where("lastFetched", "<", cutoff.Unix()).
		OrderBy("lastFetched", firestore.Asc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var out []*models.Giveaway
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate stale giveaways: %w", err)
		}
		var g models.Giveaway
		if err := doc.DataTo(&g); err != nil {
			return nil, fmt.Errorf("failed to unmarshal giveaway data: %w", err)
		}
		out = append(out, &g)
	}
	return out, nil
}

// TrimEnded deletes giveaways that ended before cutoff.
func (c *Client) TrimEnded(ctx context.Context, cutoff time.Time) error {
	iter := c.client.Collection(firestoreCollection).
		Where("endDate", "<", cutoff.Unix()).
		Documents(ctx)
	defer iter.Stop()

	bulkWriter := c.client.BulkWriter(ctx)
	defer bulkWriter.End()

	deleted := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to iterate ended giveaways: %w", err)
		}
		if _, delErr := bulkWriter.Delete(doc.Ref); delErr != nil {
			slog.Warn("Failed to queue delete for ended giveaway", "id", doc.Ref.ID, "error", delErr)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		bulkWriter.Flush()
		slog.Info("Trimmed ended giveaways", "count", deleted)
	}
	return nil
}
