package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"github.com/lysyi3m/rss-desk/app/api"
	"github.com/lysyi3m/rss-desk/app/cfg"
	"github.com/lysyi3m/rss-desk/app/database"
	"github.com/lysyi3m/rss-desk/app/events"
	"github.com/lysyi3m/rss-desk/app/feed"
	"github.com/lysyi3m/rss-desk/app/tasks"
)

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if appConfig == nil {
		// Help was shown
		return
	}

	setupLogger(appConfig.Debug)

	if err := run(appConfig); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

func run(appConfig *cfg.Cfg) error {
	slog.Info("Starting RSS Desk server", "version", appConfig.Version)

	lock := flock.New(appConfig.DBPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return errors.New("another instance is already using " + appConfig.DBPath)
	}
	defer func() { _ = lock.Unlock() }()

	db, err := database.Open(appConfig.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database ready", "path", db.Path(), "schema_version", version, "dirty", dirty)

	feedRepo := database.NewFeedRepository(db)
	articleRepo := database.NewArticleRepository(db)
	listRepo := database.NewListRepository(db)

	seeded, err := feed.SeedFeeds(context.Background(), feedRepo, appConfig.SeedFile)
	if err != nil {
		slog.Warn("Feed seeding failed", "file", appConfig.SeedFile, "error", err)
	} else if seeded > 0 {
		slog.Info("Seeded feeds", "file", appConfig.SeedFile, "count", seeded)
	}

	bus := events.NewBus()
	if appConfig.AMQPURL != "" {
		forwarder, err := events.NewAMQPForwarder(appConfig.AMQPURL, appConfig.AMQPExchange)
		if err != nil {
			slog.Warn("Event forwarding disabled", "error", err)
		} else {
			forwarder.Attach(bus)
			defer forwarder.Close()
			slog.Info("Forwarding events to AMQP", "exchange", appConfig.AMQPExchange)
		}
	}

	// Timeouts are applied per request by the fetcher and logo resolver.
	httpClient := &http.Client{}

	fetcher := feed.NewFetcher(httpClient, feed.NewParser(), articleRepo, feed.FetcherConfig{
		Timeout:         appConfig.FetchTimeout,
		Retries:         appConfig.FetchRetries,
		TeaserMaxLength: appConfig.TeaserMaxLength,
		UserAgent:       appConfig.UserAgent,
	})
	logoResolver := feed.NewLogoResolver(httpClient, feed.LogoConfig{
		PageTimeout: appConfig.LogoPageTimeout,
		IconTimeout: appConfig.LogoIconTimeout,
		MaxBytes:    appConfig.LogoMaxBytes,
		UserAgent:   appConfig.UserAgent,
	})

	runner := tasks.NewRunner(feedRepo, fetcher, bus, tasks.NewStatusCell())
	refresher := tasks.NewLogoRefresher(feedRepo, logoResolver, bus)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := tasks.NewScheduler(runner, appConfig.FetchInterval)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	apiHandler := api.NewHandler(feedRepo, articleRepo, listRepo, runner, &tasks.Guard{},
		fetcher, logoResolver, refresher, bus, appConfig.KeepAliveInterval)
	server := api.NewServer(apiHandler, appConfig.APIAccessKey)

	// No WriteTimeout: the event stream stays open until the base context ends.
	httpServer := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           server,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appConfig.Port, "fetch_interval", appConfig.FetchInterval)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case serveErr = <-serverErrChan:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return serveErr
}
