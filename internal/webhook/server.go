package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mattjoyce/whatsgw/internal/event"
)

// Server represents the webhook HTTP server.
type Server struct {
	config  Config
	handler EventHandler
	logger  *slog.Logger
	server  *http.Server
}

// New creates a new webhook server instance.
func New(config Config, handler EventHandler, logger *slog.Logger) *Server {
	// Apply defaults
	if config.MaxBodySize == 0 {
		config.MaxBodySize = DefaultMaxBodySize
	}
	if config.SignatureHeader == "" {
		config.SignatureHeader = DefaultSignatureHeader
	}
	if config.Path == "" {
		config.Path = DefaultPath
	}

	return &Server{
		config:  config,
		handler: handler,
		logger:  logger,
	}
}

// Start starts the webhook HTTP server (blocking).
func (s *Server) Start(ctx context.Context) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("webhook server starting",
		"listen", s.config.Listen,
		"path", s.config.Path,
		"signature_check", s.config.Secret != "",
	)

	// Run server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		s.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("webhook server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("webhook server error: %w", err)
	}
}

// setupRoutes configures the HTTP router.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	// Providers probe the endpoint with GET before registering it.
	r.Get(s.config.Path, s.handleProbe)
	r.Post(s.config.Path, s.handleEvent)
	r.MethodNotAllowed(s.handleMethodNotAllowed)

	return r
}

// loggingMiddleware logs HTTP requests (excludes sensitive payloads).
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// Log request (no body content for security)
		s.logger.Info("webhook request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// handleProbe answers liveness probes with a static acknowledgment.
func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, ProbeResponse{Status: "ok", Service: "whatsgw"})
}

// handleMethodNotAllowed rejects anything that is not GET or POST.
func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.respondError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}

// handleEvent handles incoming provider event POST requests.
//
// Pipeline: parse -> authenticate -> classify/forward -> acknowledge. Once a
// request passes the admission and signature gates, the provider always gets
// a 200: providers retry aggressively on non-2xx, and a retry storm over a
// transient internal fault is worse than losing one best-effort forward.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Enforce body size limit
	limitedReader := io.LimitReader(r.Body, s.config.MaxBodySize+1)
	rawBody, err := io.ReadAll(limitedReader)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to read request body")
		return
	}
	if int64(len(rawBody)) > s.config.MaxBodySize {
		s.respondError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	body, err := unwrapStringBody(rawBody)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var evt event.IncomingEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Verify HMAC signature when both secret and header are present.
	// The webhook secret is optional configuration: with either side absent,
	// verification is skipped and the event is processed.
	signature := r.Header.Get(s.config.SignatureHeader)
	if s.config.Secret != "" && signature != "" {
		if err := verifySignature(body, signature, s.config.Secret); err != nil {
			s.logger.Warn("webhook signature verification failed",
				"path", r.URL.Path,
				"request_id", middleware.GetReqID(ctx),
			)
			s.respondError(w, http.StatusUnauthorized, "Invalid signature")
			return
		}
	}

	if err := s.handler.Handle(ctx, evt); err != nil {
		s.logger.Error("event processing failed",
			"event", evt.Event,
			"error", err,
			"request_id", middleware.GetReqID(ctx),
		)
		s.respondJSON(w, http.StatusOK, ErrorAckResponse{
			Success:   false,
			Error:     err.Error(),
			Message:   "Error logged, webhook acknowledged",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	s.respondJSON(w, http.StatusOK, AckResponse{
		Success:    true,
		Event:      evt.Event,
		SessionID:  evt.SessionID,
		ReceivedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// unwrapStringBody unwraps a double-encoded payload. Some provider runtimes
// deliver the event as a JSON string containing the serialized object; the
// signature covers the inner document in that case.
func unwrapStringBody(body []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return body, nil
	}

	var inner string
	if err := json.Unmarshal(trimmed, &inner); err != nil {
		return nil, err
	}
	return []byte(inner), nil
}

// respondJSON sends a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message})
}
