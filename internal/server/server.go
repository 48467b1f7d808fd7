// Package server exposes manifest rendering over HTTP.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/cameronsjo/shipwright/internal/manifest"
	"github.com/cameronsjo/shipwright/internal/ui"
)

const (
	// WarningHeader carries non-fatal render warnings, one per value.
	WarningHeader = "X-Shipwright-Warning"

	// RequestIDHeader carries the request ID assigned by the server.
	RequestIDHeader = "X-Request-ID"

	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = ":8080"

	// maxBodyBytes bounds recipe request bodies.
	maxBodyBytes = 1 << 20

	shutdownTimeout = 30 * time.Second
)

// Config holds server settings.
type Config struct {
	// Addr is the TCP listen address.
	Addr string

	// Token, when set, is required as a bearer token on every endpoint
	// except /health.
	Token string
}

// Server serves the render API.
type Server struct {
	config  Config
	server  *http.Server
	started time.Time
}

// New creates a server. It does not listen until Start or Serve.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	s := &Server{config: cfg, started: time.Now()}

	mux := http.NewServeMux()
	mux.HandleFunc("/render", s.handleRender)
	mux.HandleFunc("/steps", s.handleSteps)
	mux.HandleFunc("/health", s.handleHealth)

	var handler http.Handler = mux
	if cfg.Token != "" {
		handler = s.authMiddleware(handler)
	}

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.requestIDMiddleware(s.loggingMiddleware(handler)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Serve accepts connections on l until Shutdown.
func (s *Server) Serve(l net.Listener) error {
	auth := ""
	if s.config.Token != "" {
		auth = " (bearer auth required)"
	}
	ui.Info("HTTP server listening on %s%s", l.Addr(), auth)

	if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Addr, err)
	}
	return s.Serve(l)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run serves until ctx is cancelled or SIGTERM/SIGINT arrives, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case sig := <-sigCh:
		ui.Warning("Received signal %v, shutting down...", sig)
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	case <-ctx.Done():
		ui.Warning("Context cancelled, shutting down...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	ui.Success("Shutdown complete")
	return nil
}

// requestIDMiddleware tags every request and response with an ID, reusing
// a well-formed incoming one.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		ui.Info("HTTP %s %s %d %s [%s]",
			r.Method, r.URL.Path, wrapped.statusCode, time.Since(start), r.Header.Get(RequestIDHeader))
	})
}

// authMiddleware validates bearer token authentication.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Health endpoint is public for load balancer checks
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="shipwright"`)
			http.Error(w, "Authorization required", http.StatusUnauthorized)
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
			return
		}
		token := authHeader[len(bearerPrefix):]

		if subtle.ConstantTimeCompare([]byte(token), []byte(s.config.Token)) != 1 {
			ui.Warning("Auth failed from %s", r.RemoteAddr)
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// HealthStatus is the /health response body.
type HealthStatus struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// StepInfo describes one step in the /steps response.
type StepInfo struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Instruction string `json:"instruction"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, HealthStatus{
		Status: "healthy",
		Uptime: time.Since(s.started).Round(time.Second).String(),
	})
}

// handleSteps handles GET /steps.
func (s *Server) handleSteps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	steps := make([]StepInfo, 0, len(manifest.DefaultSteps))
	for _, step := range manifest.DefaultSteps {
		steps = append(steps, StepInfo{
			ID:          step.String(),
			Label:       step.Label(),
			Instruction: step.Instruction(),
		})
	}
	writeJSON(w, steps)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
