package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/himanshusaroha648/lastanime-backend/internal/app"
	"github.com/himanshusaroha648/lastanime-backend/internal/ports"
)

// Server expose la surface d'administration du daemon: santé, version,
// événements, contrôle du scraper. L'API de lecture destinée aux clients
// finaux vit ailleurs.
type Server struct {
	logger  zerolog.Logger
	loopCtx context.Context
	scraper *app.Scraper
	latest  ports.LatestRepository
	bus     ports.EventBus
}

func NewServer(logger zerolog.Logger, loopCtx context.Context, scraper *app.Scraper, latest ports.LatestRepository, bus ports.EventBus) *Server {
	return &Server{logger: logger, loopCtx: loopCtx, scraper: scraper, latest: latest, bus: bus}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(defaultRequestTimeout))
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.RequestIDHandler("request_id", "Request-Id"))
	r.Use(hlog.RemoteAddrHandler("remote_ip"))
	r.Use(hlog.UserAgentHandler("user_agent"))
	r.Use(hlog.AccessHandler(accessLogFn))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)
		r.Get("/openapi.json", s.handleOpenAPI)
		r.Get("/events", s.handleEvents)
		r.Get("/latest", s.handleLatest)

		if s.scraper != nil {
			NewScraperHandler(s.loopCtx, s.scraper).Routes(r)
		}
	})

	return r
}
