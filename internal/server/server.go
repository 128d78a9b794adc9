// Package server exposes the insight engine over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Config holds the HTTP listener settings.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// WebAPI is the HTTP server.
type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server
	cfg    Config
}

// NewWebAPI builds the router and server.
func NewWebAPI(logger zerolog.Logger, cfg Config, h *Handler) *WebAPI {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(requestLogger(&logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Route("/api/v1/insights", func(r chi.Router) {
		r.Get("/anomalies", h.GetAnomalies)
		r.Get("/recommendations", h.GetRecommendations)
		r.Get("/findings", h.ListFindings)
	})

	return &WebAPI{
		router: router,
		logger: &logger,
		cfg:    cfg,
		server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the root handler.
func (w *WebAPI) Handler() http.Handler {
	return w.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (w *WebAPI) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		w.logger.Info().Msg("shutdown initiated")

		timeout := w.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		if err := w.server.Shutdown(shutdownCtx); err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			return w.server.Close()
		}
	}
	return nil
}
