// internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tamzrod/saj-telemetry/internal/status"
	"github.com/tamzrod/saj-telemetry/internal/store"
	"github.com/tamzrod/saj-telemetry/internal/writer"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

// Latest is the read side of the latest-value cache.
type Latest interface {
	Get(inverter string) (writer.Entry, bool)
	List() []writer.Entry
}

// History is the read side of the snapshot store.
type History interface {
	History(ctx context.Context, inverter string, limit int) ([]store.Record, error)
}

// Server exposes inverter state over HTTP.
type Server struct {
	server    *http.Server
	router    *mux.Router
	latest    Latest
	history   History // nil when storage is disabled
	gatherer  prometheus.Gatherer
	logger    zerolog.Logger
	startTime time.Time
}

// NewServer builds the router. history and gatherer may be nil.
func NewServer(listen string, latest Latest, history History, gatherer prometheus.Gatherer, log zerolog.Logger) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		latest:    latest,
		history:   history,
		gatherer:  gatherer,
		logger:    log.With().Str("component", "api").Logger(),
		startTime: time.Now(),
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/inverters", s.handleListInverters).Methods(http.MethodGet)
	api.HandleFunc("/inverters/{id}", s.handleGetInverter).Methods(http.MethodGet)
	api.HandleFunc("/inverters/{id}/history", s.handleHistory).Methods(http.MethodGet)

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens in the background.
func (s *Server) Start() {
	go func() {
		s.logger.Info().Str("listen", s.server.Addr).Msg("starting HTTP API server")

		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":        "ok",
		"uptime":        time.Since(s.startTime).Round(time.Second).String(),
		"inverterCount": len(s.latest.List()),
	}, http.StatusOK)
}

func (s *Server) handleListInverters(w http.ResponseWriter, _ *http.Request) {
	entries := s.latest.List()

	result := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		result = append(result, map[string]interface{}{
			"id":     e.Inverter,
			"at":     e.At,
			"online": e.Status.Online(),
			"health": e.Status.Health,
			"state":  status.HealthName(e.Status.Health),
		})
	}

	s.writeJSON(w, map[string]interface{}{
		"inverters": result,
		"count":     len(result),
	}, http.StatusOK)
}

func (s *Server) handleGetInverter(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	e, ok := s.latest.Get(id)
	if !ok {
		s.writeError(w, "inverter not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, e, http.StatusOK)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if s.history == nil {
		s.writeError(w, "history storage is disabled", http.StatusNotImplemented)
		return
	}
	if _, ok := s.latest.Get(id); !ok {
		s.writeError(w, "inverter not found", http.StatusNotFound)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	recs, err := s.history.History(r.Context(), id, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("inverter", id).Msg("history query failed")
		s.writeError(w, "history query failed", http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}

	s.writeJSON(w, map[string]interface{}{
		"inverter": id,
		"records":  recs,
		"count":    len(recs),
	}, http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, message string, statusCode int) {
	s.writeJSON(w, map[string]string{"error": message}, statusCode)
}
