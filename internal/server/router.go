package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/paperchat-ai/paperchat/internal/api/handlers"
	"github.com/paperchat-ai/paperchat/internal/api/middleware"
)

type RouterConfig struct {
	ChatHandler    *handlers.ChatHandler
	SessionHandler *handlers.SessionHandler
	IngestHandler  *handlers.IngestHandler
	HealthHandler  *handlers.HealthHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", cfg.HealthHandler.Health)

	r.Route("/chat", func(r chi.Router) {
		r.Post("/", cfg.ChatHandler.Ask)
		r.Post("/reset", cfg.ChatHandler.Reset)
	})

	r.Post("/ingest", cfg.IngestHandler.Ingest)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/{id}/history", cfg.SessionHandler.History)
		r.Delete("/{id}", cfg.SessionHandler.Delete)
	})

	return r
}
