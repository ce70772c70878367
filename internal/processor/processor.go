package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gleamhunt/gleam-finder/internal/config"
	"github.com/gleamhunt/gleam-finder/internal/gleam"
	"github.com/gleamhunt/gleam-finder/internal/intermediary"
	"github.com/gleamhunt/gleam-finder/internal/models"
	"github.com/gleamhunt/gleam-finder/internal/notifier"
	"github.com/gleamhunt/gleam-finder/internal/search"
	"github.com/gleamhunt/gleam-finder/internal/validator"
)

// staleBatchLimit caps how many records one run refreshes so a large
// backlog cannot starve discovery of new giveaways.
const staleBatchLimit = 50

type Processor interface {
	ProcessGiveaways(ctx context.Context) error
}

type GiveawayProcessor struct {
	searcher  search.Searcher
	resolver  intermediary.Resolver
	fetcher   GiveawayFetcher
	store     GiveawayStore
	notifier  GiveawayNotifier
	analyzer  GiveawayAnalyzer
	validator *validator.Validator
	config    *config.Config
}

func New(
	searcher search.Searcher,
	resolver intermediary.Resolver,
	fetcher GiveawayFetcher,
	store GiveawayStore,
	n GiveawayNotifier,
	analyzer GiveawayAnalyzer,
	cfg *config.Config,
) *GiveawayProcessor {
	return &GiveawayProcessor{
		searcher:  searcher,
		resolver:  resolver,
		fetcher:   fetcher,
		store:     store,
		notifier:  n,
		analyzer:  analyzer,
		validator: validator.New(),
		config:    cfg,
	}
}

// ProcessGiveaways runs one full pipeline pass: discover intermediary
// pages, resolve them to canonical giveaway URLs, fetch and store the new
// ones, refresh stale records, and trim ended giveaways.
func (p *GiveawayProcessor) ProcessGiveaways(ctx context.Context) error {
	var errorMessages []string

	pages := p.discoverPages(ctx)
	slog.Info("Discovered intermediary pages", "count", len(pages))

	links := p.resolveLinks(ctx, pages)
	slog.Info("Resolved giveaway links", "count", len(links))

	newURLs := p.filterKnown(ctx, links)

	var newCount int
	if len(newURLs) > 0 {
		slog.Info("Fetching new giveaways", "count", len(newURLs))
		for _, g := range p.fetcher.FetchAll(ctx, newURLs, p.config.FetchCooldown) {
			created, err := p.storeAndNotify(ctx, g)
			if err != nil {
				errorMessages = append(errorMessages, err.Error())
				continue
			}
			if created {
				newCount++
			}
		}
	}

	refreshed, refreshErrs := p.refreshStale(ctx)
	errorMessages = append(errorMessages, refreshErrs...)

	if err := p.store.TrimEnded(ctx, time.Now()); err != nil {
		slog.Warn("Failed to trim ended giveaways", "error", err)
	}

	slog.Info("Finished processing", "new", newCount, "refreshed", refreshed)
	if len(errorMessages) > 0 {
		return fmt.Errorf("processed with errors: %s", strings.Join(errorMessages, "; "))
	}
	return nil
}

// discoverPages collects intermediary page URLs across the configured
// number of search pages. A failed page is logged and skipped; the run
// continues with what the other pages produced.
func (p *GiveawayProcessor) discoverPages(ctx context.Context) []string {
	var pages []string
	seen := make(map[string]bool)
	for page := 0; page < p.config.SearchPages; page++ {
		links, err := p.searcher.Search(ctx, page)
		if err != nil {
			slog.Warn("Search page failed", "page", page, "error", err)
			continue
		}
		for _, link := range links {
			if !seen[link] {
				seen[link] = true
				pages = append(pages, link)
			}
		}
	}
	return pages
}

// resolveLinks resolves intermediary pages concurrently and returns the
// deduplicated canonical giveaway URLs. Individual page failures are
// logged and skipped.
func (p *GiveawayProcessor) resolveLinks(ctx context.Context, pages []string) []string {
	var mu sync.Mutex
	var links []string
	seen := make(map[string]bool)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.ResolveConcurrency)

	for _, page := range pages {
		g.Go(func() error {
			res, err := p.resolver.Resolve(gctx, page)
			if err != nil {
				slog.Warn("Failed to resolve intermediary page", "url", page, "error", err)
				return nil
			}
			if len(res.Links) == 0 {
				return nil
			}
			slog.Info("Resolved intermediary page", "url", page, "title", res.Title, "links", len(res.Links))

			mu.Lock()
			for _, link := range res.Links {
				if !seen[link] {
					seen[link] = true
					links = append(links, link)
				}
			}
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return links
}

// filterKnown drops URLs whose giveaway is already stored. A store read
// failure errs toward fetching; the Create barrier catches duplicates.
func (p *GiveawayProcessor) filterKnown(ctx context.Context, links []string) []string {
	var out []string
	for _, link := range links {
		match := gleam.ParseGiveawayURL(link)
		if match.Shape == gleam.ShapeUnrecognized {
			continue
		}
		existing, err := p.store.GetGiveawayByID(ctx, match.ID)
		if err != nil {
			slog.Warn("Failed to check giveaway existence, will fetch", "id", match.ID, "error", err)
			out = append(out, link)
			continue
		}
		if existing == nil {
			out = append(out, link)
		}
	}
	return out
}

// storeAndNotify validates and persists one fetched giveaway, then sends
// the notification. Returns whether a new record was created.
func (p *GiveawayProcessor) storeAndNotify(ctx context.Context, g *models.Giveaway) (bool, error) {
	if err := p.validator.ValidateStruct(g); err != nil {
		slog.Warn("Skipping invalid giveaway", "id", g.GleamID, "error", err)
		return false, nil
	}

	if err := p.store.TryCreateGiveaway(ctx, *g); err != nil {
		// Race with another instance: the record exists, nothing to do.
		if errors.Is(err, models.ErrGiveawayExists) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create giveaway %s: %v", g.GleamID, err)
	}
	slog.Info("New giveaway added", "id", g.GleamID, "name", g.Name)

	p.sendAndSaveMessageID(ctx, g)
	return true, nil
}

// sendAndSaveMessageID notifies and persists the resulting message ID so
// later refreshes can edit the message in place. Notification failures are
// logged, not fatal; the record is already stored.
func (p *GiveawayProcessor) sendAndSaveMessageID(ctx context.Context, g *models.Giveaway) {
	msgID, err := p.notifier.Send(ctx, *g, p.analyze(ctx, g))
	if err != nil {
		slog.Error("Error sending to Discord", "id", g.GleamID, "error", err)
		return
	}
	if msgID == "" {
		return
	}
	g.DiscordMessageID = msgID
	g.DiscordLastUpdatedTime = time.Now()
	if err := p.store.UpdateGiveaway(ctx, *g); err != nil {
		slog.Warn("Failed to save Discord message ID", "id", g.GleamID, "error", err)
	}
}

// refreshStale re-fetches records not touched within the refresh interval.
// A failed refresh leaves the stored record untouched.
func (p *GiveawayProcessor) refreshStale(ctx context.Context) (int, []string) {
	cutoff := time.Now().Add(-p.config.RefreshInterval)
	stale, err := p.store.ListStale(ctx, cutoff, staleBatchLimit)
	if err != nil {
		return 0, []string{fmt.Sprintf("failed to list stale giveaways: %v", err)}
	}

	var refreshed int
	var errorMessages []string
	for _, g := range stale {
		if err := p.fetcher.Update(ctx, g); err != nil {
			slog.Warn("Failed to refresh giveaway", "id", g.GleamID, "error", err)
			continue
		}

		if g.DiscordMessageID != "" {
			g.DiscordLastUpdatedTime = time.Now()
		}
		if err := p.store.UpdateGiveaway(ctx, *g); err != nil {
			errorMessages = append(errorMessages, fmt.Sprintf("failed to update giveaway %s: %v", g.GleamID, err))
			continue
		}
		refreshed++

		if g.DiscordMessageID != "" {
			if err := p.notifier.Update(ctx, g.DiscordMessageID, *g, p.analyze(ctx, g)); err != nil {
				slog.Warn("Discord update failed", "id", g.GleamID, "error", err)
			}
		}
	}
	return refreshed, errorMessages
}

func (p *GiveawayProcessor) analyze(ctx context.Context, g *models.Giveaway) notifier.Extra {
	if p.analyzer == nil {
		return notifier.Extra{}
	}
	summary, highValue, err := p.analyzer.AnalyzeGiveaway(ctx, g)
	if err != nil {
		slog.Warn("Giveaway analysis failed", "id", g.GleamID, "error", err)
		return notifier.Extra{}
	}
	return notifier.Extra{Summary: summary, HighValue: highValue}
}
