package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baechuer/community-events/internal/config"
	"github.com/baechuer/community-events/internal/transport/http/handlers"
	authmw "github.com/baechuer/community-events/internal/transport/http/middleware"
)

func New(
	h *handlers.EventsHandler,
	s *handlers.SessionHandler,
	auth *authmw.AuthMiddleware,
	z *handlers.HealthHandler,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	r.Use(authmw.RequestID)
	r.Use(authmw.SecurityHeaders)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(authmw.Metrics)
	r.Use(authmw.AccessLog)

	if cfg.RLEnabled {
		r.Use(httprate.Limit(
			cfg.RLLimit,
			cfg.RLWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
		))
	}

	r.Get("/healthz", z.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/session", s.SignIn)

		r.Group(func(r chi.Router) {
			r.Use(auth.Require)

			r.Get("/session", s.Me)
			r.Delete("/session", s.SignOut)

			r.Get("/events", h.List)
			r.Post("/events", h.Create)
			r.Get("/events/count", h.Count)
			r.Get("/events/count/stream", h.CountStream)
			r.Get("/events/{event_id}", h.Get)
			r.Delete("/events/{event_id}", h.Delete)
			r.Post("/events/{event_id}/comments", h.AddComment)
			r.Post("/events/{event_id}/attendees", h.ConfirmAttendance)
		})
	})

	return r
}
