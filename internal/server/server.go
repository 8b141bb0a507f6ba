package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/gorilla/mux"

	"github.com/mixelka/gamebot/internal/metrics"
)

// UpdateProcessor handles a decoded Telegram update
type UpdateProcessor interface {
	ProcessUpdate(ctx context.Context, update *models.Update)
}

// UpdateJournal remembers which updates were already handled
type UpdateJournal interface {
	MarkUpdateProcessed(ctx context.Context, updateID, chatID int64) error
	Ready(ctx context.Context) error
}

// Server serves the webhook endpoint and operational routes
type Server struct {
	router          *mux.Router
	httpServer      *http.Server
	processor       UpdateProcessor
	journal         UpdateJournal
	metrics         *metrics.Metrics
	logger          *slog.Logger
	secret          string
	shutdownTimeout time.Duration
}

// Deps dependencies for creating a server
type Deps struct {
	Addr            string
	WebhookSecret   string
	ShutdownTimeout time.Duration
	Processor       UpdateProcessor
	Journal         UpdateJournal
	Metrics         *metrics.Metrics
	Logger          *slog.Logger
}

// New creates a new server
func New(deps Deps) *Server {
	s := &Server{
		router:          mux.NewRouter(),
		processor:       deps.Processor,
		journal:         deps.Journal,
		metrics:         deps.Metrics,
		logger:          deps.Logger.With("component", "http_server"),
		secret:          deps.WebhookSecret,
		shutdownTimeout: deps.ShutdownTimeout,
	}

	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:              deps.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// registerRoutes registers HTTP routes
func (s *Server) registerRoutes() {
	s.router.Use(s.requestLogger)

	s.router.HandleFunc("/webhook", s.handleWebhook).Methods(http.MethodPost)
	s.router.HandleFunc("/healthz", s.handleLiveness).Methods(http.MethodGet)
	s.router.HandleFunc("/readyz", s.handleReadiness).Methods(http.MethodGet)
	s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
}

// Handler returns the server's root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down http server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
