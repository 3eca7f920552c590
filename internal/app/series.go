package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/himanshusaroha648/lastanime-backend/internal/domain"
	"github.com/himanshusaroha648/lastanime-backend/internal/ports"
)

var reYear = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// SeriesService résout une identité série contre le store. L'enrichissement
// (page série + TMDB) n'a lieu qu'une fois, à la première ingestion.
type SeriesService struct {
	logger zerolog.Logger
	repo   ports.SeriesRepository
	fetch  *Fetcher
	enrich *EnrichmentClient
	bus    ports.EventBus
}

func NewSeriesService(logger zerolog.Logger, repo ports.SeriesRepository, fetch *Fetcher, enrich *EnrichmentClient, bus ports.EventBus) *SeriesService {
	return &SeriesService{logger: logger, repo: repo, fetch: fetch, enrich: enrich, bus: bus}
}

// Ensure renvoie la série existante pour identity.Slug, ou la crée: fetch de
// la page série (best-effort), extraction des champs descriptifs, fusion TMDB
// optionnelle, puis upsert. Une série déjà connue est renvoyée telle quelle.
func (s *SeriesService) Ensure(ctx context.Context, identity SeriesIdentity, seriesURL string) (domain.Series, error) {
	existing, err := s.repo.GetBySlug(ctx, identity.Slug)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return domain.Series{}, err
	}

	now := time.Now().UTC()
	series := domain.Series{
		Slug:      identity.Slug,
		Title:     identity.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if seriesURL != "" {
		if html, err := s.fetch.FetchHTML(ctx, seriesURL); err == nil {
			applySeriesPage(&series, html, seriesURL)
		} else {
			// Best-effort: la série est créée même sans sa page.
			s.logger.Warn().Err(err).Str("slug", identity.Slug).Str("url", seriesURL).Msg("series page fetch failed")
		}
	}

	if enrichment, err := s.enrich.Lookup(ctx, SanitizeTitle(series.Title), "tv"); err == nil {
		mergeEnrichment(&series, enrichment)
	} else {
		s.logger.Warn().Err(err).Str("slug", identity.Slug).Msg("enrichment lookup failed")
	}

	created, err := s.repo.Upsert(ctx, series)
	if err != nil {
		return domain.Series{}, err
	}
	s.publish("series.created", created)
	s.logger.Info().Str("slug", created.Slug).Str("title", created.Title).Msg("series created")
	return created, nil
}

// applySeriesPage extrait les champs descriptifs de la page série avec les
// mêmes heuristiques goquery que le resolver de détail.
func applySeriesPage(series *domain.Series, html, pageURL string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return
	}

	if desc := strings.TrimSpace(doc.Find(`meta[property="og:description"]`).First().AttrOr("content", "")); desc != "" {
		series.Description = desc
	} else if desc := collapseSpaces(doc.Find(".description, .entry-content p, .synopsis").First().Text()); desc != "" {
		series.Description = desc
	}

	if poster := strings.TrimSpace(doc.Find(".poster img, .post-thumbnail img").First().AttrOr("src", "")); poster != "" {
		if u, err := base.Parse(poster); err == nil {
			series.Poster = u.String()
		}
	} else if og := strings.TrimSpace(doc.Find(`meta[property="og:image"]`).First().AttrOr("content", "")); og != "" {
		if u, err := base.Parse(og); err == nil {
			series.Poster = u.String()
		}
	}

	doc.Find(`a[href*="/genre/"]`).Each(func(_ int, a *goquery.Selection) {
		g := collapseSpaces(a.Text())
		if g == "" {
			return
		}
		for _, have := range series.Genres {
			if strings.EqualFold(have, g) {
				return
			}
		}
		series.Genres = append(series.Genres, g)
	})

	yearText := collapseSpaces(doc.Find(".year, .date, .aired").First().Text())
	if yearText == "" {
		yearText = collapseSpaces(doc.Find(".meta, .extra").First().Text())
	}
	if m := reYear.FindString(yearText); m != "" {
		if y, err := strconv.Atoi(m); err == nil {
			series.Year = y
		}
	}
}

// mergeEnrichment ne remplit que les champs encore vides; la page source
// reste prioritaire sur TMDB.
func mergeEnrichment(series *domain.Series, e *Enrichment) {
	if e == nil {
		return
	}
	series.TMDBID = e.TMDBID
	series.Rating = e.Rating
	series.Popularity = e.Popularity
	series.Backdrop = e.Backdrop
	if series.Description == "" {
		series.Description = e.Overview
	}
	if series.Poster == "" {
		series.Poster = e.Poster
	}
	if series.Year == 0 {
		series.Year = e.Year
	}
	if len(series.Genres) == 0 {
		series.Genres = e.Genres
	}
	if len(series.Studios) == 0 {
		series.Studios = e.Studios
	}
}

func (s *SeriesService) publish(topic string, series domain.Series) {
	if s.bus == nil {
		return
	}
	b, err := json.Marshal(map[string]any{
		"slug":  series.Slug,
		"title": series.Title,
	})
	if err != nil {
		return
	}
	s.bus.Publish(topic, b)
}
