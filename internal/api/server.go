// Package api exposes the HTTP interface for the metadata source.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookfetch/yes24-metadata/internal/metadata"
	"github.com/bookfetch/yes24-metadata/internal/metrics"
	"github.com/bookfetch/yes24-metadata/internal/source"
)

// Lookup is the subset of the source the handlers need.
type Lookup interface {
	Identify(ctx context.Context, req source.Request) ([]*metadata.Record, error)
	DownloadCover(ctx context.Context, req source.Request) ([]byte, error)
}

// Server wires HTTP handlers to the lookup source.
type Server struct {
	router chi.Router
	lookup Lookup
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(lookup Lookup, logger *zap.Logger) *Server {
	s := &Server{
		lookup: lookup,
		logger: logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/identify", s.identify)
		r.Get("/cover", s.cover)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type identifyResponse struct {
	Records []*metadata.Record `json:"records"`
}

func (s *Server) identify(w http.ResponseWriter, r *http.Request) {
	var req source.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	recs, err := s.lookup.Identify(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, source.ErrInsufficientMetadata):
			s.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			s.writeError(w, http.StatusRequestTimeout, err.Error())
		default:
			s.writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}
	if recs == nil {
		recs = []*metadata.Record{}
	}
	s.writeJSON(w, http.StatusOK, identifyResponse{Records: recs})
}

func (s *Server) cover(w http.ResponseWriter, r *http.Request) {
	req := source.Request{
		Title:       r.URL.Query().Get("title"),
		Identifiers: map[string]string{},
	}
	if author := r.URL.Query().Get("author"); author != "" {
		req.Authors = []string{author}
	}
	if isbn := r.URL.Query().Get("isbn"); isbn != "" {
		req.Identifiers[metadata.IDISBN] = isbn
	}
	if id := r.URL.Query().Get("yes24"); id != "" {
		req.Identifiers[metadata.IDYes24] = id
	}

	data, err := s.lookup.DownloadCover(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, source.ErrNoCover):
			s.writeError(w, http.StatusNotFound, "no cover found")
		case errors.Is(err, source.ErrInsufficientMetadata):
			s.writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("cover write failed", zap.Error(err))
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
