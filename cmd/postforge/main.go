// Package main is the entry point for the PostForge API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"postforge/internal/ai"
	"postforge/internal/bridge"
	"postforge/internal/cache"
	"postforge/internal/config"
	"postforge/internal/database"
	"postforge/internal/handlers"
	"postforge/internal/jobs"
	"postforge/internal/mediagen"
	"postforge/internal/router"
	"postforge/internal/scrape"
	"postforge/internal/session"
	"postforge/internal/storage"
	"postforge/internal/store"
	"postforge/internal/worker"
)

func main() {
	// Structured logger — outputs JSON in production, text in development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// A missing .env is fine; the environment wins either way.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (Redis-compatible cache + session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Session store backed by Valkey. In non-development environments,
	// session cookies are marked Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// Data stores.
	userStore := store.NewUserStore(db)
	itemStore := store.NewContentItemStore(db)
	topicStore := store.NewTopicStore(db)
	platformStore := store.NewPlatformStore(db)
	brandStore := store.NewBrandStore(db)
	profileStore := store.NewBrandProfileStore(db)

	// S3-compatible object storage for generated media (optional — the
	// pipeline works without it, keeping webhook-hosted URLs as-is).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured — generated media stays on external URLs")
	}

	// AI provider registry with all configured providers.
	aiRegistry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"openai": {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
		"claude": {APIKey: cfg.ClaudeKey, Model: cfg.ClaudeModel, BaseURL: cfg.ClaudeBaseURL},
	})

	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
	)

	generator := ai.NewGenerator(aiRegistry)

	// Publish automation bridge and media generation webhook.
	bridgeClient := bridge.NewClient(cfg.PublishWebhookURL, cfg.PublishAPIKey, cfg.PublishTimeout)
	if !bridgeClient.Configured() {
		slog.Warn("publish webhook not configured — publishing disabled")
	}
	mediaClient := mediagen.NewClient(cfg.MediaWebhookURL, cfg.MediaTimeout)
	if !mediaClient.Configured() {
		slog.Info("media webhook not configured — stub mode active")
	}

	// Brand profiler: scrapes the brand website and distills a profile.
	scraper := scrape.New(0)
	profiler := jobs.NewProfiler(profileStore, scraper, generator, logger)

	// Dashboard stats cache.
	statsCache := cache.NewStatsCache(valkeyClient, cache.DefaultStatsTTL)

	api := handlers.NewAPI(handlers.Deps{
		Sessions:     sessionStore,
		Items:        itemStore,
		Topics:       topicStore,
		Platforms:    platformStore,
		Brands:       brandStore,
		Profiles:     profileStore,
		Users:        userStore,
		Generator:    generator,
		Registry:     aiRegistry,
		Bridge:       bridgeClient,
		Media:        mediaClient,
		Storage:      storageClient,
		Profiler:     profiler,
		Stats:        statsCache,
		DefaultBrand: cfg.DefaultBrandID,
	})

	// Set up the Chi router with all middleware and routes.
	r := router.New(sessionStore, api, secureCookies)

	// The due publisher pushes overdue SCHEDULED items through the bridge
	// in the background. It exits with the server context.
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	publisher := worker.NewPublisher(itemStore, bridgeClient, logger, cfg.PublisherInterval, cfg.PublisherBatch)
	go publisher.Run(workerCtx)

	// WriteTimeout must accommodate endpoints that wait on LLM or webhook
	// responses (typically 10-30s, up to 90s for a publish batch).
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	stopWorker()

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
