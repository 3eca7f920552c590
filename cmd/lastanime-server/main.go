package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/himanshusaroha648/lastanime-backend/internal/adapters/httpapi"
	"github.com/himanshusaroha648/lastanime-backend/internal/adapters/memorybus"
	"github.com/himanshusaroha648/lastanime-backend/internal/adapters/sqlite"
	"github.com/himanshusaroha648/lastanime-backend/internal/app"
	"github.com/himanshusaroha648/lastanime-backend/internal/buildinfo"
	"github.com/himanshusaroha648/lastanime-backend/internal/config"
)

func main() {
	def := config.Default()
	addr := flag.String("addr", def.Addr, "Adresse d'écoute (ex: 127.0.0.1:8080)")
	dbPath := flag.String("db", def.DBPath, "Chemin SQLite (ex: lastanime.db)")
	homepage := flag.String("homepage", def.HomepageURL, "Page d'accueil du site source")
	flag.Parse()

	cfg := def
	cfg.Addr = *addr
	cfg.DBPath = *dbPath
	cfg.HomepageURL = *homepage

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", "lastanime-server").Logger()
	log.Logger = logger

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	homepageURL, err := url.Parse(cfg.HomepageURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid homepage url")
	}

	logger.Info().Interface("build", buildinfo.Current()).Str("db", cfg.DBPath).Str("homepage", cfg.HomepageURL).Msg("starting")

	ctx := context.Background()
	db, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open db")
	}
	defer func() { _ = db.Close() }()

	bus := memorybus.New()
	defer bus.Close()

	seriesRepo := sqlite.NewSeriesRepository(db.SQL)
	episodesRepo := sqlite.NewEpisodesRepository(db.SQL)
	latestRepo := sqlite.NewLatestRepository(db.SQL)

	pool := app.NewProxyPool(logger.With().Str("component", "proxy-pool").Logger(), cfg.Proxies)
	fetch := app.NewFetcher(logger.With().Str("component", "fetch").Logger(), pool, cfg.HomepageURL, cfg.HTTPTimeout, cfg.MaxRetries, cfg.RetryDelay)
	resolver := app.NewDetailResolver(logger.With().Str("component", "detail").Logger(), fetch)
	enrich := app.NewEnrichmentClient(logger.With().Str("component", "tmdb").Logger(), cfg.TMDBAPIKey)
	if enrich == nil {
		logger.Info().Msg("tmdb enrichment disabled (no api key)")
	}
	seriesSvc := app.NewSeriesService(logger.With().Str("component", "series").Logger(), seriesRepo, fetch, enrich, bus)

	scraper := app.NewScraper(logger.With().Str("component", "scraper").Logger(), fetch, resolver, seriesSvc, episodesRepo, latestRepo, bus, app.ScraperOptions{
		Homepage:     homepageURL,
		PollInterval: cfg.PollInterval,
		CardDelay:    cfg.CardDelay,
		LatestMax:    cfg.LatestMax,
	})

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Autostart {
		scraper.Start(shutdownCtx)
	}

	srv := httpapi.NewServer(logger, shutdownCtx, scraper, latestRepo, bus)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server crashed")
			stop()
		}
	}()

	<-shutdownCtx.Done()
	logger.Info().Msg("shutting down")

	scraper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
	logger.Info().Msg("bye")
}
