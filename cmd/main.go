package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matineehq/matinee/internal/adapters/fetch"
	"github.com/matineehq/matinee/internal/adapters/http/api"
	"github.com/matineehq/matinee/internal/adapters/repository"
	"github.com/matineehq/matinee/internal/app"
	"github.com/matineehq/matinee/internal/config"
	"github.com/matineehq/matinee/internal/domain/availability"
	"github.com/matineehq/matinee/internal/domain/fit"
	"github.com/matineehq/matinee/internal/domain/group"
	"github.com/matineehq/matinee/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	fetchTimeout := time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	calendarTimeout := time.Duration(cfg.CalendarTimeoutSeconds) * time.Second

	// Collaborator clients.
	profiles := fetch.NewLetterboxdClient(
		fetch.WithLetterboxdBaseURL(cfg.LetterboxdBaseURL),
		fetch.WithLetterboxdTimeout(fetchTimeout),
	)
	cineville := fetch.NewCinevilleClient(
		fetch.WithCinevilleURL(cfg.CinevilleAPIURL),
		fetch.WithCinevilleTimeout(fetchTimeout),
	)
	var tmdb *fetch.TMDBClient
	if cfg.TMDBAPIKey != "" {
		tmdb = fetch.NewTMDBClient(cfg.TMDBAPIKey, fetch.WithTMDBTimeout(fetchTimeout))
	} else {
		log.Warn(ctx, "no tmdb_api_key configured; candidates will carry no genres, mood filtering disabled")
	}
	catalog := fetch.NewCatalogFetcher(cineville, tmdb)
	calendar := fetch.NewCalendarClient(
		cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.CalendarTokens,
		fetch.WithCalendarTimeout(calendarTimeout),
	)

	svc := app.New(profiles, calendar, catalog,
		app.WithLogger(log),
		app.WithCache(repository.New(
			repository.WithTTL(time.Duration(cfg.CacheTTLSeconds)*time.Second),
			repository.WithShardCount(cfg.CacheShards),
		)),
		app.WithIntersector(availability.New(
			availability.WithDayBounds(cfg.DayStartHour, cfg.DayEndHour),
		)),
		app.WithAggregator(group.New(
			group.WithFairnessPenalty(cfg.FairnessPenalty),
		)),
		app.WithMatcher(fit.New(
			fit.WithBuffer(time.Duration(cfg.BufferMinutes)*time.Minute),
			fit.WithDefaultRuntime(time.Duration(cfg.DefaultRuntimeMinutes)*time.Minute),
		)),
		app.WithFetchTimeouts(fetchTimeout, calendarTimeout),
		app.WithFetchConcurrency(cfg.FetchConcurrency),
		app.WithMaxResultsCap(cfg.MaxResultsCap),
	)

	apiServer := api.NewServer(svc, svc)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiServer.Router(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}
