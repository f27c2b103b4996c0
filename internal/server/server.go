// Package server provides the HTTP REST API for the interview prep station.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shiyoungwoo/Resume-assistant/internal/logging"
	"github.com/shiyoungwoo/Resume-assistant/internal/media"
	"github.com/shiyoungwoo/Resume-assistant/internal/server/ratelimit"
	"github.com/shiyoungwoo/Resume-assistant/internal/station"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	station     *station.Station
	devices     *media.Devices
	rateLimiter *ratelimit.Limiter
	validator   *validator.Validate
	origins     []string
	logger      *zap.Logger
}

// Config holds server configuration
type Config struct {
	Port              int
	RateLimitRPS      float64
	RateLimitBurst    int
	RateLimitDisabled bool
	CORSOrigins       []string
	ShutdownTimeout   time.Duration
}

// New creates a server over the station. Device permission for a mock
// interview comes from each start request.
func New(cfg Config, st *station.Station, devices *media.Devices, logger *zap.Logger) *Server {
	s := &Server{
		station:     st,
		devices:     devices,
		rateLimiter: ratelimit.NewLimiter(ratelimit.NewConfig(!cfg.RateLimitDisabled, cfg.RateLimitRPS, cfg.RateLimitBurst)),
		validator:   validator.New(),
		origins:     cfg.CORSOrigins,
		logger:      logging.OrNop(logger),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Question bank
	mux.HandleFunc("PUT /context", s.handleSetContext)
	mux.HandleFunc("GET /questions", s.handleListQuestions)
	mux.HandleFunc("POST /questions/generate", s.handleGenerateQuestions)
	mux.HandleFunc("POST /questions/{id}/bookmark", s.handleToggleBookmark)
	mux.HandleFunc("PUT /questions/{id}/answer", s.handleSetAnswer)
	mux.HandleFunc("POST /questions/{id}/feedback", s.handleAnswerFeedback)

	// Mock interview
	mux.HandleFunc("GET /session", s.handleGetSession)
	mux.HandleFunc("POST /session/start", s.handleStartSession)
	mux.HandleFunc("POST /session/turn", s.handleSendTurn)
	mux.HandleFunc("POST /session/end", s.handleEndSession)
	mux.HandleFunc("POST /session/unlock", s.handleUnlockSession)

	// Navigation and points
	mux.HandleFunc("POST /tabs/{tab}", s.handleSelectTab)
	mux.HandleFunc("GET /points", s.handleGetPoints)
	mux.HandleFunc("POST /points/earn", s.handleEarnPoints)

	// Self introduction
	mux.HandleFunc("PUT /resume", s.handleSetResume)
	mux.HandleFunc("GET /intro", s.handleGetIntro)
	mux.HandleFunc("POST /intro", s.handleGenerateIntro)
	mux.HandleFunc("POST /intro/transfer", s.handleTransferScript)
	mux.HandleFunc("PUT /intro/draft", s.handleSetDraft)
	mux.HandleFunc("POST /intro/refine", s.handleRefineDraft)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // AI calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully and tears
// the station down.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := s.httpServer.Shutdown(shutdownCtx)
		s.rateLimiter.Stop()
		if closeErr := s.station.Close(shutdownCtx); closeErr != nil {
			s.logger.Warn("station teardown failed", zap.Error(closeErr))
		}
		if err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		s.logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}

// withCORS adds CORS headers for trusted origins
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (slices.Contains(s.origins, "*") || slices.Contains(s.origins, origin)) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr))
	})
}

// withRateLimit rejects clients that exceed their budget with 429.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := s.rateLimiter.Allow(extractClientID(r), r.Method, r.URL.Path)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		}
		if !info.Allowed {
			retry := int(info.RetryAfter.Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			s.logger.Warn("rate limit exceeded",
				zap.String("client", extractClientID(r)),
				zap.String("path", r.URL.Path))
			s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
				"error":       "rate_limit_exceeded",
				"retry_after": retry,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID returns the client IP from RemoteAddr.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status and writes it.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("request failed", zap.Int("status", status), zap.Error(err))
	}
	s.errorResponse(w, status, err.Error())
}

// decode reads a JSON body into dst and validates it. An empty body decodes
// to the zero value.
func (s *Server) decode(r *http.Request, dst any) error {
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return &ErrValidation{Field: "body", Message: "invalid JSON"}
		}
	}
	if err := s.validator.Struct(dst); err != nil {
		return requestValidationError(err)
	}
	return nil
}
