// Package server exposes inventories and comparison results as a JSON
// API. The serve command keeps the server's state fresh; handlers only
// ever read it.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/modelparity/modelparity/pkg/catalog"
	"github.com/modelparity/modelparity/pkg/diff"
)

// Config holds configuration for the API server.
type Config struct {
	Addr   string
	Logger *slog.Logger
}

// Server serves comparison state over HTTP. Update replaces the state
// atomically, so a rebuild triggered by the watcher never tears a
// response.
type Server struct {
	addr   string
	logger *slog.Logger

	mu        sync.RWMutex
	left      *catalog.Inventory
	right     *catalog.Inventory
	report    *diff.Report
	updatedAt time.Time
}

// New creates a Server. State is empty until the first Update.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		addr:   cfg.Addr,
		logger: logger,
	}
}

// Update replaces the served inventories and report.
func (s *Server) Update(left, right *catalog.Inventory, rep *diff.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.left = left
	s.right = right
	s.report = rep
	s.updatedAt = time.Now().UTC()
}

// Routes returns the HTTP handler, separated from Serve so tests can
// drive it through httptest.
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/inventories/{side}", s.handleInventory)
		r.Get("/models/{side}/{key}", s.handleModel)
		r.Get("/comparison", s.handleComparison)
	})

	return r
}

// Serve starts the API server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting api server", "addr", s.addr)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down api server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// snapshot returns the current state under the read lock.
func (s *Server) snapshot() (left, right *catalog.Inventory, rep *diff.Report, at time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.left, s.right, s.report, s.updatedAt
}

func (s *Server) inventoryFor(side string) (*catalog.Inventory, bool) {
	left, right, _, _ := s.snapshot()
	switch side {
	case "left":
		return left, true
	case "right":
		return right, true
	default:
		return nil, false
	}
}

type healthResponse struct {
	Status     string    `json:"status"`
	LeftLabel  string    `json:"left_label,omitempty"`
	RightLabel string    `json:"right_label,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	left, right, _, at := s.snapshot()

	resp := healthResponse{Status: "ok", UpdatedAt: at}
	if left != nil {
		resp.LeftLabel = left.Label()
	}
	if right != nil {
		resp.RightLabel = right.Label()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	side := chi.URLParam(r, "side")
	inv, ok := s.inventoryFor(side)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("unknown side %q (valid: left, right)", side)})
		return
	}
	if inv == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no comparison loaded yet"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := inv.WriteSnapshot(w); err != nil {
		s.logger.Error("failed to write inventory", "side", side, "error", err)
	}
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	side := chi.URLParam(r, "side")
	key := chi.URLParam(r, "key")

	inv, ok := s.inventoryFor(side)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("unknown side %q (valid: left, right)", side)})
		return
	}
	if inv == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no comparison loaded yet"})
		return
	}

	m, ok := inv.Get(key)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("model not found: %s", key)})
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleComparison(w http.ResponseWriter, _ *http.Request) {
	_, _, rep, _ := s.snapshot()
	if rep == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no comparison loaded yet"})
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
