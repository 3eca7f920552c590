package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/himanshusaroha648/lastanime-backend/internal/app"
	"github.com/himanshusaroha648/lastanime-backend/internal/httpjson"
)

type ScraperHandler struct {
	scraper *app.Scraper
	// loopCtx borne la vie de la boucle à celle du process, pas à celle de
	// la requête HTTP qui l'a démarrée.
	loopCtx context.Context
}

func NewScraperHandler(loopCtx context.Context, scraper *app.Scraper) *ScraperHandler {
	if loopCtx == nil {
		loopCtx = context.Background()
	}
	return &ScraperHandler{scraper: scraper, loopCtx: loopCtx}
}

func (h *ScraperHandler) Routes(r chi.Router) {
	r.Route("/scraper", func(r chi.Router) {
		r.Get("/", h.status)
		r.Post("/start", h.start)
		r.Post("/stop", h.stop)
		r.Post("/run", h.run)
	})
}

func (h *ScraperHandler) status(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, h.scraper.Status())
}

func (h *ScraperHandler) start(w http.ResponseWriter, r *http.Request) {
	h.scraper.Start(h.loopCtx)
	httpjson.Write(w, http.StatusOK, h.scraper.Status())
}

func (h *ScraperHandler) stop(w http.ResponseWriter, r *http.Request) {
	h.scraper.Stop()
	httpjson.Write(w, http.StatusOK, h.scraper.Status())
}

func (h *ScraperHandler) run(w http.ResponseWriter, r *http.Request) {
	if err := h.scraper.RunOnce(r.Context()); err != nil {
		if errors.Is(err, app.ErrCycleInFlight) {
			httpjson.WriteError(w, http.StatusConflict, err.Error())
			return
		}
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, h.scraper.Status())
}
