package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ProjectID          string
	DiscordWebhookURL  string
	Port               string
	SearchPages        int
	FetchCooldown      time.Duration
	RefreshInterval    time.Duration
	ResolveConcurrency int
	UseBrowserFetcher  bool
	GeminiAPIKey       string
	GeminiModel        string
}

func Load() (*Config, error) {
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT environment variable is required but not set")
	}

	discordWebhookURL := os.Getenv("DISCORD_WEBHOOK_URL")
	if discordWebhookURL == "" {
		slog.Warn("DISCORD_WEBHOOK_URL not set, Discord notifications will be skipped")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		slog.Info("Defaulting to port", "port", port)
	}

	searchPages := 4
	if v := os.Getenv("SEARCH_PAGES"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("invalid SEARCH_PAGES %q", v)
		}
		searchPages = parsed
	}

	fetchCooldown := 10 * time.Second
	if v := os.Getenv("FETCH_COOLDOWN"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FETCH_COOLDOWN %q: %w", v, err)
		}
		fetchCooldown = parsed
	}

	refreshInterval := time.Hour
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REFRESH_INTERVAL %q: %w", v, err)
		}
		refreshInterval = parsed
	}

	resolveConcurrency := 5
	if v := os.Getenv("RESOLVE_CONCURRENCY"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("invalid RESOLVE_CONCURRENCY %q", v)
		}
		resolveConcurrency = parsed
	}

	useBrowser := false
	if v := os.Getenv("USE_BROWSER_FETCHER"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid USE_BROWSER_FETCHER %q: %w", v, err)
		}
		useBrowser = parsed
	}

	geminiModel := os.Getenv("GEMINI_MODEL")
	if geminiModel == "" {
		geminiModel = "gemini-2.0-flash"
	}

	return &Config{
		ProjectID:          projectID,
		DiscordWebhookURL:  discordWebhookURL,
		Port:               port,
		SearchPages:        searchPages,
		FetchCooldown:      fetchCooldown,
		RefreshInterval:    refreshInterval,
		ResolveConcurrency: resolveConcurrency,
		UseBrowserFetcher:  useBrowser,
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        geminiModel,
	}, nil
}
