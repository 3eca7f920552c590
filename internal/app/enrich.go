package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Enrichment porte les champs descriptifs optionnels fusionnés dans une
// série à sa première ingestion.
type Enrichment struct {
	TMDBID     int
	Overview   string
	Poster     string
	Backdrop   string
	Year       int
	Rating     float64
	Popularity float64
	Genres     []string
	Studios    []string
}

const (
	tmdbDefaultBaseURL = "https://api.themoviedb.org/3"
	tmdbImageBaseURL   = "https://image.tmdb.org/t/p/original"
	// Délai fixe avant chaque appel, pour rester sous la limite TMDB.
	tmdbCallDelay = 300 * time.Millisecond
)

// EnrichmentClient interroge TMDB (search puis detail). Un client nil est
// valide et signifie "pas d'enrichissement".
type EnrichmentClient struct {
	logger  zerolog.Logger
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

func NewEnrichmentClient(logger zerolog.Logger, apiKey string) *EnrichmentClient {
	if strings.TrimSpace(apiKey) == "" {
		return nil
	}
	return &EnrichmentClient{
		logger:  logger,
		apiKey:  apiKey,
		baseURL: tmdbDefaultBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Every(tmdbCallDelay), 1),
	}
}

// WithBaseURL pointe le client sur un autre serveur (tests).
func (c *EnrichmentClient) WithBaseURL(base string) *EnrichmentClient {
	if c != nil && strings.TrimSpace(base) != "" {
		c.baseURL = strings.TrimRight(base, "/")
	}
	return c
}

type tmdbSearchResponse struct {
	Results []struct {
		ID           int     `json:"id"`
		Overview     string  `json:"overview"`
		PosterPath   string  `json:"poster_path"`
		BackdropPath string  `json:"backdrop_path"`
		FirstAirDate string  `json:"first_air_date"`
		ReleaseDate  string  `json:"release_date"`
		VoteAverage  float64 `json:"vote_average"`
		Popularity   float64 `json:"popularity"`
	} `json:"results"`
}

type tmdbDetailResponse struct {
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
	ProductionCompanies []struct {
		Name string `json:"name"`
	} `json:"production_companies"`
}

// Lookup cherche title sur TMDB et renvoie les champs d'enrichissement, ou
// nil quand rien ne matche. contentType est "tv" ou "movie".
func (c *EnrichmentClient) Lookup(ctx context.Context, title, contentType string) (*Enrichment, error) {
	if c == nil {
		return nil, nil
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil
	}
	if contentType != "movie" {
		contentType = "tv"
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var search tmdbSearchResponse
	q := url.Values{"api_key": {c.apiKey}, "query": {title}}
	if err := c.getJSON(ctx, fmt.Sprintf("%s/search/%s?%s", c.baseURL, contentType, q.Encode()), &search); err != nil {
		return nil, err
	}
	if len(search.Results) == 0 {
		return nil, nil
	}
	best := search.Results[0]

	out := &Enrichment{
		TMDBID:     best.ID,
		Overview:   best.Overview,
		Rating:     best.VoteAverage,
		Popularity: best.Popularity,
	}
	if best.PosterPath != "" {
		out.Poster = tmdbImageBaseURL + best.PosterPath
	}
	if best.BackdropPath != "" {
		out.Backdrop = tmdbImageBaseURL + best.BackdropPath
	}
	date := best.FirstAirDate
	if date == "" {
		date = best.ReleaseDate
	}
	if len(date) >= 4 {
		if t, err := time.Parse("2006-01-02", date); err == nil {
			out.Year = t.Year()
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var detail tmdbDetailResponse
	dq := url.Values{"api_key": {c.apiKey}}
	if err := c.getJSON(ctx, fmt.Sprintf("%s/%s/%d?%s", c.baseURL, contentType, best.ID, dq.Encode()), &detail); err != nil {
		// La recherche a suffi; le détail est un bonus.
		c.logger.Warn().Err(err).Str("title", title).Msg("tmdb detail lookup failed")
		return out, nil
	}
	for _, g := range detail.Genres {
		if g.Name != "" {
			out.Genres = append(out.Genres, g.Name)
		}
	}
	for _, s := range detail.ProductionCompanies {
		if s.Name != "" {
			out.Studios = append(out.Studios, s.Name)
		}
	}
	return out, nil
}

func (c *EnrichmentClient) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb http status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
