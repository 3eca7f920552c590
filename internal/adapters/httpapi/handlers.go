package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/himanshusaroha648/lastanime-backend/internal/buildinfo"
	"github.com/himanshusaroha648/lastanime-backend/internal/httpjson"
)

const defaultRequestTimeout = 30 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, buildinfo.Current())
}

// handleLatest expose la fenêtre "derniers épisodes" pour le debug ops.
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	if s.latest == nil {
		httpjson.Write(w, http.StatusOK, []any{})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.latest.List(r.Context(), limit)
	if err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]latestEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, latestEntryDTO{
			SeriesSlug:   e.SeriesSlug,
			SeriesTitle:  e.SeriesTitle,
			Season:       e.Season,
			Episode:      e.Episode,
			EpisodeTitle: e.EpisodeTitle,
			Thumbnail:    e.Thumbnail,
			AddedAt:      e.AddedAt,
		})
	}
	httpjson.Write(w, http.StatusOK, out)
}

type latestEntryDTO struct {
	SeriesSlug   string    `json:"seriesSlug"`
	SeriesTitle  string    `json:"seriesTitle"`
	Season       int       `json:"season"`
	Episode      int       `json:"episode"`
	EpisodeTitle string    `json:"episodeTitle"`
	Thumbnail    string    `json:"thumbnail,omitempty"`
	AddedAt      time.Time `json:"addedAt"`
}

func accessLogFn(r *http.Request, status, size int, duration time.Duration) {
	logger := hlog.FromRequest(r)
	logger.Info().
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("http")
}
