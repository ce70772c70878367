package processor

import (
	"context"
	"time"

	"github.com/gleamhunt/gleam-finder/internal/models"
	"github.com/gleamhunt/gleam-finder/internal/notifier"
)

// GiveawayStore abstracts the storage layer for giveaway records.
type GiveawayStore interface {
	GetGiveawayByID(ctx context.Context, id string) (*models.Giveaway, error)
	TryCreateGiveaway(ctx context.Context, g models.Giveaway) error
	UpdateGiveaway(ctx context.Context, g models.Giveaway) error
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*models.Giveaway, error)
	TrimEnded(ctx context.Context, cutoff time.Time) error
}

// GiveawayNotifier abstracts the notification layer.
type GiveawayNotifier interface {
	Send(ctx context.Context, g models.Giveaway, extra notifier.Extra) (string, error)
	Update(ctx context.Context, messageID string, g models.Giveaway, extra notifier.Extra) error
}

// GiveawayFetcher loads and refreshes giveaway records from gleam.io.
type GiveawayFetcher interface {
	FetchAll(ctx context.Context, urls []string, cooldown time.Duration) []*models.Giveaway
	Update(ctx context.Context, g *models.Giveaway) error
}

// GiveawayAnalyzer enriches a giveaway for notification. Implementations
// degrade to empty results when no backend is configured.
type GiveawayAnalyzer interface {
	AnalyzeGiveaway(ctx context.Context, g *models.Giveaway) (string, bool, error)
}
