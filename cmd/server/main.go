package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gleamhunt/gleam-finder/internal/ai"
	"github.com/gleamhunt/gleam-finder/internal/config"
	"github.com/gleamhunt/gleam-finder/internal/fetcher"
	"github.com/gleamhunt/gleam-finder/internal/gleam"
	"github.com/gleamhunt/gleam-finder/internal/intermediary"
	"github.com/gleamhunt/gleam-finder/internal/notifier"
	"github.com/gleamhunt/gleam-finder/internal/processor"
	"github.com/gleamhunt/gleam-finder/internal/search"
	"github.com/gleamhunt/gleam-finder/internal/storage"
	"github.com/gleamhunt/gleam-finder/internal/util"
)

type Server struct {
	processor processor.Processor
}

func main() {
	slog.Info("Starting gleam finder server...")

	// Local development convenience; production uses real env vars.
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded environment from .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Critical error loading configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var store *storage.Client
	// Credential lookups can fail transiently right after a cold start.
	err = util.RetryWithBackoff(ctx, 2, func(attempt int) error {
		var initErr error
		store, initErr = storage.New(ctx, cfg.ProjectID)
		if initErr != nil {
			slog.Warn("Firestore init failed", "attempt", attempt, "error", initErr)
		}
		return initErr
	})
	if err != nil {
		slog.Error("Critical error initializing Firestore client", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	analyzer, err := ai.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		slog.Warn("Failed to initialize Gemini client, notifications will not be enriched", "error", err)
	}

	var transport fetcher.TextFetcher
	if cfg.UseBrowserFetcher {
		slog.Info("Using headless browser fetcher")
		transport = fetcher.NewBrowserClient(30 * time.Second)
	} else {
		transport = fetcher.New(10*time.Second, time.Second)
	}

	n := notifier.New(cfg.DiscordWebhookURL)
	p := processor.New(
		search.New(transport),
		intermediary.New(transport),
		gleam.NewClient(transport),
		store,
		n,
		analyzer,
		cfg,
	)

	srv := &Server{processor: p}

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.ProcessGiveawaysHandler)
	mux.HandleFunc("/process", srv.ProcessGiveawaysHandler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"status":"ok"}`)
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh
		slog.Info("Received signal, shutting down gracefully...", "signal", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
	}()

	slog.Info("Listening on port", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Failed to listen and serve", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped.")
}

func (s *Server) ProcessGiveawaysHandler(w http.ResponseWriter, r *http.Request) {
	// Run processing asynchronously so the HTTP response isn't blocked by
	// search cooldowns, Firestore, and Discord operations that may exceed
	// request timeouts.
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Panic in ProcessGiveaways", "panic", r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := s.processor.ProcessGiveaways(ctx); err != nil {
			slog.Error("Error processing giveaways", "error", err)
		}
	}()

	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintln(w, "Giveaway processing started.")
}
