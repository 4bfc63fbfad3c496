// Package server exposes the lab over a small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/quimicai/surfacelab/internal/domain"
	"github.com/quimicai/surfacelab/internal/empirical"
	"github.com/quimicai/surfacelab/internal/inbox"
	"github.com/quimicai/surfacelab/internal/logger"
	"github.com/quimicai/surfacelab/internal/optim"
	"github.com/quimicai/surfacelab/internal/surface"
)

const maxBodyBytes = 1 << 20

type Options struct {
	Optimizer optim.Optimizer
	// Inbox may be nil, in which case the contact endpoint answers 503.
	Inbox *inbox.Store
	// ContactRate is contact submissions per second across all clients.
	ContactRate  float64
	ContactBurst int
}

type Server struct {
	mux       *http.ServeMux
	registry  *domain.Registry
	optimizer optim.Optimizer
	inbox     *inbox.Store
	limiter   *rate.Limiter
}

func New(reg *domain.Registry, opts Options) *Server {
	if opts.Optimizer == nil {
		opts.Optimizer = optim.NewPlaceholder(optim.DefaultLatency)
	}
	if opts.ContactRate <= 0 {
		opts.ContactRate = 1
	}
	if opts.ContactBurst <= 0 {
		opts.ContactBurst = 1
	}
	s := &Server{
		mux:       http.NewServeMux(),
		registry:  reg,
		optimizer: opts.Optimizer,
		inbox:     opts.Inbox,
		limiter:   rate.NewLimiter(rate.Limit(opts.ContactRate), opts.ContactBurst),
	}

	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("GET /v1/domains", s.handleListDomains)
	s.mux.HandleFunc("GET /v1/domains/{tag}", s.handleGetDomain)
	s.mux.HandleFunc("POST /v1/domains/{tag}/evaluate", s.handleEvaluate)
	s.mux.HandleFunc("POST /v1/domains/{tag}/smooth", s.handleSmooth)
	s.mux.HandleFunc("POST /v1/domains/{tag}/optimize", s.handleOptimize)
	s.mux.HandleFunc("POST /v1/contact", s.handleContact)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}

// writeGuidance answers an invalid selection with the user-facing message.
func (s *Server) writeGuidance(w http.ResponseWriter, guidance string) {
	s.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error":    "invalid selection",
		"guidance": guidance,
	})
}

// writeDomainError maps core errors onto HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownDomain):
		s.writeError(w, http.StatusNotFound, err.Error())
	case surface.IsGuidance(err):
		s.writeGuidance(w, surface.Guidance(err))
	case errors.Is(err, empirical.ErrInvalidSelection):
		s.writeGuidance(w, surface.SelectionGuidance)
	case errors.Is(err, domain.ErrUnknownMetric),
		errors.Is(err, surface.ErrUnknownParameter),
		errors.Is(err, surface.ErrRangeOutOfBounds),
		errors.Is(err, surface.ErrInvalidSampleCount),
		errors.Is(err, empirical.ErrUnknownColumn),
		errors.Is(err, optim.ErrInvalidWeight):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		logger.Error("request failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}
