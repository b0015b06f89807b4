// Package server exposes a running app over HTTP so a headless game view
// can be resized, clicked and inspected.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/roach88/tetra/internal/app"
	"github.com/roach88/tetra/internal/input"
	"github.com/roach88/tetra/internal/ir"
)

// RequestTimeout bounds how long a request may wait for the UI loop.
const RequestTimeout = 5 * time.Second

// Service serves one app.
type Service struct {
	app    *app.App
	logger *slog.Logger
}

// New creates a Service. A nil logger means slog.Default().
func New(a *app.App, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{app: a, logger: logger}
}

// Router returns the HTTP handler.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	s.RegisterHTTP(r)
	return r
}

// RegisterHTTP mounts the routes on r.
func (s *Service) RegisterHTTP(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Get("/snapshot", s.handleSnapshot)
	r.Post("/viewport", s.handleViewport)
	r.Post("/click/{label}", s.handleClick)
	r.Post("/key/{code}", s.handleKey)
	r.Post("/pointer", s.handlePointer)
}

// ViewportRequest is the body of POST /viewport.
type ViewportRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// InputResponse reports how many handlers an input reached.
type InputResponse struct {
	Handlers int `json:"handlers"`
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"session": s.app.Actor.Session(),
		"version": ir.EngineVersion,
	})
}

func (s *Service) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap app.Snapshot
	if !s.do(w, r, func() error {
		snap = s.app.Snapshot()
		return nil
	}) {
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Service) handleViewport(w http.ResponseWriter, r *http.Request) {
	var req ViewportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !(ir.Size{Width: req.Width, Height: req.Height}).Valid() {
		http.Error(w, "width and height must be positive", http.StatusBadRequest)
		return
	}

	var snap app.Snapshot
	if !s.do(w, r, func() error {
		if err := s.app.Resize(req.Width, req.Height); err != nil {
			// Listener failures are logged; the viewport has still changed.
			s.logger.Warn("resize listeners failed", "error", err)
		}
		snap = s.app.Snapshot()
		return nil
	}) {
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Service) handleClick(w http.ResponseWriter, r *http.Request) {
	label, err := ir.ParseElementID(chi.URLParam(r, "label"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !s.do(w, r, func() error { return s.app.Click(label) }) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleKey(w http.ResponseWriter, r *http.Request) {
	key := input.ParseKey(chi.URLParam(r, "code"))
	var n int
	if !s.do(w, r, func() error {
		n = s.app.Key(key)
		return nil
	}) {
		return
	}
	s.writeJSON(w, http.StatusOK, InputResponse{Handlers: n})
}

func (s *Service) handlePointer(w http.ResponseWriter, r *http.Request) {
	var p input.Pointer
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	var n int
	if !s.do(w, r, func() error {
		n = s.app.Pointer(p)
		return nil
	}) {
		return
	}
	s.writeJSON(w, http.StatusOK, InputResponse{Handlers: n})
}

// do runs fn on the UI loop and writes an error response if it fails.
// Returns whether the handler should continue.
func (s *Service) do(w http.ResponseWriter, r *http.Request, fn func() error) bool {
	ctx, cancel := context.WithTimeout(r.Context(), RequestTimeout)
	defer cancel()

	err := s.app.Do(ctx, fn)
	switch {
	case err == nil:
		return true
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		s.logger.Warn("ui loop did not answer", "path", r.URL.Path, "error", err)
		http.Error(w, "ui loop unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, app.ErrNotStarted):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusNotFound)
	}
	return false
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response failed", "status", status, "error", err)
	}
}
