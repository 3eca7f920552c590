package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/himanshusaroha648/lastanime-backend/internal/domain"
	"github.com/himanshusaroha648/lastanime-backend/internal/ports"
)

type ScraperState string

const (
	ScraperIdle     ScraperState = "idle"
	ScraperRunning  ScraperState = "running"
	ScraperStopping ScraperState = "stopping"
)

var ErrCycleInFlight = errors.New("a cycle is already in flight")

// Scraper pilote la boucle de découverte: accueil -> cartes -> par carte
// inconnue, code -> résolution détail -> persistance -> fenêtre latest ->
// cache de dédup. Il possède son propre état d'exécution et son set de clés
// vues (durée de vie processus; la justesse du stockage n'en dépend pas).
type Scraper struct {
	logger   zerolog.Logger
	fetch    *Fetcher
	resolver *DetailResolver
	series   *SeriesService
	episodes ports.EpisodeRepository
	latest   ports.LatestRepository
	bus      ports.EventBus

	homepage     *url.URL
	pollInterval time.Duration
	cardDelay    time.Duration
	latestMax    int

	mu     sync.Mutex
	state  ScraperState
	stopCh chan struct{}
	seen   map[string]struct{}

	// cycleMu garantit qu'aucun cycle ne se chevauche (boucle + RunOnce).
	cycleMu sync.Mutex

	lastCycleAt    time.Time
	lastCycleCards int
	ingested       int
}

type ScraperOptions struct {
	Homepage     *url.URL
	PollInterval time.Duration
	CardDelay    time.Duration
	LatestMax    int
}

func NewScraper(logger zerolog.Logger, fetch *Fetcher, resolver *DetailResolver, series *SeriesService, episodes ports.EpisodeRepository, latest ports.LatestRepository, bus ports.EventBus, opts ScraperOptions) *Scraper {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Minute
	}
	if opts.LatestMax <= 0 {
		opts.LatestMax = 30
	}
	return &Scraper{
		logger:       logger,
		fetch:        fetch,
		resolver:     resolver,
		series:       series,
		episodes:     episodes,
		latest:       latest,
		bus:          bus,
		homepage:     opts.Homepage,
		pollInterval: opts.PollInterval,
		cardDelay:    opts.CardDelay,
		latestMax:    opts.LatestMax,
		state:        ScraperIdle,
		seen:         map[string]struct{}{},
	}
}

// Start passe Idle -> Running et lance immédiatement un premier cycle.
// No-op (avec warning) si déjà Running.
func (s *Scraper) Start(ctx context.Context) {
	s.mu.Lock()
	if s.state != ScraperIdle {
		s.mu.Unlock()
		s.logger.Warn().Str("state", string(s.state)).Msg("scraper already running")
		return
	}
	s.state = ScraperRunning
	stop := make(chan struct{})
	s.stopCh = stop
	s.mu.Unlock()

	s.logger.Info().Str("homepage", s.homepage.String()).Dur("poll_interval", s.pollInterval).Msg("scraper started")
	go s.loop(ctx, stop)
}

// Stop passe Running -> Stopping: l'attente inter-cycle en cours est annulée,
// la carte en vol termine son traitement. L'état redevient Idle quand la
// boucle rend la main.
func (s *Scraper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != ScraperRunning {
		return
	}
	s.state = ScraperStopping
	close(s.stopCh)
}

func (s *Scraper) State() ScraperState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

type ScraperStatus struct {
	State          ScraperState `json:"state"`
	SeenCount      int          `json:"seenCount"`
	Ingested       int          `json:"ingested"`
	LastCycleAt    time.Time    `json:"lastCycleAt"`
	LastCycleCards int          `json:"lastCycleCards"`
}

func (s *Scraper) Status() ScraperStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ScraperStatus{
		State:          s.state,
		SeenCount:      len(s.seen),
		Ingested:       s.ingested,
		LastCycleAt:    s.lastCycleAt,
		LastCycleCards: s.lastCycleCards,
	}
}

// Seen indique si une clé épisode est dans le cache de dédup du run courant.
func (s *Scraper) Seen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[key]
	return ok
}

// RunOnce exécute un cycle unique, pour un déclenchement manuel (API).
// Refuse si un cycle est déjà en vol.
func (s *Scraper) RunOnce(ctx context.Context) error {
	if !s.cycleMu.TryLock() {
		return ErrCycleInFlight
	}
	defer s.cycleMu.Unlock()
	s.runCycle(ctx, nil)
	return nil
}

func (s *Scraper) loop(ctx context.Context, stop <-chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.state = ScraperIdle
		s.mu.Unlock()
		s.logger.Info().Msg("scraper stopped")
	}()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		s.cycleMu.Lock()
		s.runCycle(ctx, stop)
		s.cycleMu.Unlock()

		// Délai inter-cycle mesuré depuis la fin du cycle, pas sur horloge.
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-time.After(s.pollInterval):
		}
	}
}

// runCycle traite une passe complète. Seul l'échec du fetch de l'accueil
// avorte le cycle; tout échec par carte est loggé et avalé.
func (s *Scraper) runCycle(ctx context.Context, stop <-chan struct{}) {
	cycleID := xid.New().String()
	logger := s.logger.With().Str("cycle", cycleID).Logger()
	started := time.Now().UTC()
	s.publishRaw("scrape.cycle.started", map[string]any{"cycle": cycleID})

	processed, failed := 0, 0
	defer func() {
		s.mu.Lock()
		s.lastCycleAt = started
		s.mu.Unlock()
		s.publishRaw("scrape.cycle.finished", map[string]any{
			"cycle":     cycleID,
			"processed": processed,
			"failed":    failed,
			"duration":  time.Since(started).String(),
		})
	}()

	html, err := s.fetch.FetchHTML(ctx, s.homepage.String())
	if err != nil {
		logger.Error().Err(err).Msg("homepage fetch failed, cycle aborted")
		return
	}

	cards := FilterEpisodes(ExtractCards(html, s.homepage.String()))
	s.mu.Lock()
	s.lastCycleCards = len(cards)
	s.mu.Unlock()
	logger.Info().Int("cards", len(cards)).Msg("homepage cards extracted")

	for i, card := range cards {
		if i > 0 {
			// Courte pause entre cartes pour ménager le site source.
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.cardDelay):
			}
		}
		if stopped(stop) || ctx.Err() != nil {
			logger.Info().Int("remaining", len(cards)-i).Msg("cycle interrupted")
			return
		}

		code, ok := ParseEpisodeCode(card.URL)
		if !ok {
			logger.Debug().Str("url", card.URL).Msg("card skipped, no episode code")
			continue
		}
		key := fmt.Sprintf("%s-%dx%d", slugFromEpisodeURL(card.URL), code.Season, code.Episode)
		if s.Seen(key) {
			continue
		}

		if err := s.processCard(ctx, logger, card, code); err != nil {
			// La carte n'est pas marquée vue: retentée naturellement au
			// prochain cycle.
			failed++
			logger.Warn().Err(err).Str("url", card.URL).Msg("card processing failed")
			continue
		}
		processed++
		s.markSeen(key)
	}

	logger.Info().Int("processed", processed).Int("failed", failed).Msg("cycle finished")
}

// processCard est la frontière d'erreur par carte: résolution détail,
// résolution série, upsert épisode, entrée latest + prune.
func (s *Scraper) processCard(ctx context.Context, logger zerolog.Logger, card EpisodeCard, code EpisodeCode) error {
	resolved, err := s.resolver.ResolveEpisode(ctx, card, code)
	if err != nil {
		return fmt.Errorf("resolve detail: %w", err)
	}

	series, err := s.series.Ensure(ctx, resolved.Series, resolved.SeriesURL)
	if err != nil {
		return fmt.Errorf("ensure series %q: %w", resolved.Series.Slug, err)
	}

	ep := resolved.Episode
	ep.SeriesSlug = series.Slug
	now := time.Now().UTC()
	ep.CreatedAt = now
	ep.UpdatedAt = now

	stored, err := s.episodes.Upsert(ctx, ep)
	if err != nil {
		return fmt.Errorf("upsert episode %s: %w", ep.Key(), err)
	}

	entry := domain.LatestEpisode{
		SeriesSlug:   series.Slug,
		SeriesTitle:  series.Title,
		Season:       stored.Season,
		Episode:      stored.Episode,
		EpisodeTitle: stored.Title,
		Thumbnail:    stored.Thumbnail,
		AddedAt:      now,
	}
	if err := s.latest.Add(ctx, entry); err != nil {
		return fmt.Errorf("add latest %s: %w", ep.Key(), err)
	}
	if removed, err := s.latest.Prune(ctx, s.latestMax); err != nil {
		return fmt.Errorf("prune latest: %w", err)
	} else if removed > 0 {
		s.publishRaw("latest.pruned", map[string]any{"removed": removed})
	}

	s.mu.Lock()
	s.ingested++
	s.mu.Unlock()

	s.publishRaw("episode.ingested", map[string]any{
		"seriesSlug": stored.SeriesSlug,
		"season":     stored.Season,
		"episode":    stored.Episode,
		"title":      stored.Title,
	})
	logger.Info().Str("key", stored.Key()).Str("series", series.Slug).Msg("episode ingested")
	return nil
}

func (s *Scraper) markSeen(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[key] = struct{}{}
}

func (s *Scraper) publishRaw(topic string, v any) {
	if s.bus == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.bus.Publish(topic, b)
}

func stopped(stop <-chan struct{}) bool {
	if stop == nil {
		return false
	}
	select {
	case <-stop:
		return true
	default:
		return false
	}
}
