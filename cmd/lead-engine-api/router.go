// Package main provides the API router setup.
package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/spherical-ai/spherical/libs/lead-engine/cmd/lead-engine-api/handlers"
	"github.com/spherical-ai/spherical/libs/lead-engine/cmd/lead-engine-api/middleware"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/observability"
)

// AppConfig holds router configuration.
type AppConfig struct {
	RequestTimeout time.Duration
	AllowedOrigins []string
	ServiceName    string
}

// DefaultAppConfig returns default configuration values.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		RequestTimeout: 60 * time.Second,
		AllowedOrigins: []string{"*"},
		ServiceName:    "lead-engine",
	}
}

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, responder handlers.Responder, cfg *AppConfig) http.Handler {
	if cfg == nil {
		cfg = DefaultAppConfig()
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

	health := []byte(`{"status":"healthy","service":"` + cfg.ServiceName + `"}`)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(health)
	})

	chatHandler := handlers.NewChatHandler(logger, responder)
	r.Get("/ready", chatHandler.Ready)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", chatHandler.Chat)
		r.Get("/stats", chatHandler.Stats)
	})

	return r
}
