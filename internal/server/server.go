// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the recommendation pipeline and the meal log
// store as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pdiddy/feastfit/internal/recommend"
	"github.com/pdiddy/feastfit/pkg/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Side-channel headers carrying URL-encoded JSON for the coach endpoint.
const (
	HeaderLastSearch = "X-FeastFit-Last-Search"
	HeaderGuestLogs  = "X-FeastFit-Guest-Logs"
)

// LogStore persists meal logs. *meallog.Store implements it.
type LogStore interface {
	Insert(ctx context.Context, l types.MealLog) (types.MealLog, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]types.MealLog, error)
	ListByUserOn(ctx context.Context, userID string, day time.Time) ([]types.MealLog, error)
}

// Server routes API requests to the pipeline and the log store.
type Server struct {
	pipeline *recommend.Pipeline
	store    LogStore
	log      *zap.Logger
	router   *mux.Router
}

// New creates a Server. store may be nil, in which case the meal log
// endpoints report a configuration error and coaching uses guest logs only.
func New(p *recommend.Pipeline, store LogStore, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{pipeline: p, store: store, log: log, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/search-restaurants", s.handleSearch).Methods(http.MethodPost)
	api.HandleFunc("/refine-results", s.handleRefine).Methods(http.MethodPost)
	api.HandleFunc("/coach", s.handleCoach).Methods(http.MethodPost)
	api.HandleFunc("/log-meal", s.handleLogMeal).Methods(http.MethodPost)
	api.HandleFunc("/logs", s.handleLogs).Methods(http.MethodGet)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
}

// Handler returns the API wrapped in CORS and access logging.
func (s *Server) Handler() http.Handler {
	return s.accessLog(cors(s.router))
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully within cfg.ShutdownTimeout.
func (s *Server) Run(ctx context.Context, cfg types.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// ClientID identifies the caller for rate limiting: the first
// X-Forwarded-For entry, else the remote host, else "unknown".
func ClientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
