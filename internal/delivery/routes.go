package delivery

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// NewRouter wires the ops endpoints. requestsPerMinute caps each
// remote IP via httprate on top of the bot's own limiter.
func NewRouter(h *Handler, requestsPerMinute int) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	r.Use(httprate.LimitByIP(requestsPerMinute, time.Minute))

	r.Get("/ping", h.Ping)
	r.Get("/healthz", h.Healthz)
	r.Get("/stats", h.Stats)

	return r
}
