// Package server exposes the analysis pipeline over a JSON HTTP API.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/kanda-lab/chatreport/internal/config"
)

// WebAPI is the HTTP front end over the analyzer and report store.
type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

// Config bundles what the API needs to run.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Analysis        AnalysisService
	Conversations   ConversationService
	Runtime         *config.Runtime
}

// NewWebAPI builds the router and handlers.
func NewWebAPI(logger zerolog.Logger, cfg Config) *WebAPI {
	h := NewHandler(cfg.Analysis, cfg.Conversations, cfg.Runtime)

	router := chi.NewRouter()
	router.Use(requestLogger(&logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/conversations", h.ListConversations)
		r.Post("/reports", h.CreateReport)
		r.Get("/reports", h.ListReports)
		r.Get("/reports/{id}", h.GetReport)
		r.Get("/config/ai", h.GetAIConfig)
		r.Put("/config/ai", h.UpdateAIConfig)
		r.Get("/config/chatlog", h.GetChatlogConfig)
		r.Put("/config/chatlog", h.UpdateChatlogConfig)
	})

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    cfg.Addr,
			Handler: router,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Router returns the underlying handler, mainly for tests.
func (w *WebAPI) Router() http.Handler {
	return w.router
}

// Start serves until an error occurs or a shutdown signal arrives.
func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		if err := w.server.Shutdown(ctx); err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			return w.server.Close()
		}
		return nil
	}
}

// requestLogger attaches a per-request zerolog logger to the context.
func requestLogger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			reqLogger := logger.With().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("remote_ip", req.RemoteAddr).
				Logger()

			ctx := reqLogger.WithContext(req.Context())
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}
