// Package health exposes the HTTP probe endpoint used by container runtimes.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"asu_schedule_bot/internal/logging"
)

const (
	storePingTimeout  = 2 * time.Second
	readHeaderTimeout = 2 * time.Second
)

// StoreChecker is the part of the store the probe needs.
type StoreChecker interface {
	Ping(ctx context.Context) error
}

// Server hosts GET /healthz.
type Server struct {
	server *http.Server
	logger *logrus.Entry
	store  StoreChecker
	driver string
}

type response struct {
	Status string `json:"status"`
	Driver string `json:"driver,omitempty"`
	Store  string `json:"store,omitempty"`
}

// NewServer constructs a health server listening on port. driver is echoed in
// the response to tell backends apart.
func NewServer(port int, store StoreChecker, driver string, logger *logrus.Entry) *Server {
	if logger == nil {
		logger = logging.Logger()
	}

	srv := &Server{
		logger: logger,
		store:  store,
		driver: driver,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return srv
}

// ListenAndServe blocks until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.WithFields(logging.Fields{
		"event": "health_listen",
		"addr":  s.server.Addr,
	}).Info("starting health server")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("health server listen: %w", err)
	}

	s.logger.WithField("event", "health_stopped").Info("health server stopped")
	return nil
}

// Shutdown gracefully stops the health server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}

	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	resp := response{Status: "ok", Driver: s.driver}
	code := http.StatusOK

	if err := s.pingStore(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Store = "error"
		code = http.StatusServiceUnavailable
		s.logger.WithFields(logging.Fields{
			"event":  "health_store_error",
			"driver": s.driver,
		}).WithError(err).Warn("store ping failed during health check")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.WithField("event", "health_write_error").WithError(err).Error("failed to encode health response")
	}
}

func (s *Server) pingStore(ctx context.Context) error {
	if s.store == nil {
		return errors.New("store checker is not configured")
	}

	pingCtx, cancel := context.WithTimeout(ctx, storePingTimeout)
	defer cancel()
	return s.store.Ping(pingCtx)
}
