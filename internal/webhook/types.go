package webhook

import (
	"context"
	"fmt"

	"github.com/mattjoyce/whatsgw/internal/config"
	"github.com/mattjoyce/whatsgw/internal/event"
)

// EventHandler defines the interface for processing a decoded provider event.
type EventHandler interface {
	Handle(ctx context.Context, evt event.IncomingEvent) error
}

// Config holds webhook server configuration.
type Config struct {
	// Listen is the address the server binds to.
	Listen string

	// Path is the URL path the provider posts events to.
	Path string

	// SignatureHeader is the HTTP header carrying the hex HMAC-SHA256 digest.
	SignatureHeader string

	// Secret is the shared HMAC secret. Empty disables verification.
	Secret string

	// MaxBodySize is the maximum allowed request body size in bytes (default: 1MB)
	MaxBodySize int64
}

// FromGlobalConfig converts the service configuration to webhook.Config,
// parsing the max body size.
func FromGlobalConfig(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("config is nil")
	}

	maxBodySize, err := config.ParseBodySize(cfg.Webhook.MaxBodySize)
	if err != nil {
		return Config{}, fmt.Errorf("invalid max_body_size %q: %w", cfg.Webhook.MaxBodySize, err)
	}

	return Config{
		Listen:          cfg.Listen,
		Path:            cfg.Webhook.Path,
		SignatureHeader: cfg.Webhook.SignatureHeader,
		Secret:          cfg.Webhook.Secret,
		MaxBodySize:     maxBodySize,
	}, nil
}

// AckResponse acknowledges a processed event.
type AckResponse struct {
	Success    bool   `json:"success"`
	Event      string `json:"event"`
	SessionID  string `json:"session_id,omitempty"`
	ReceivedAt string `json:"received_at"`
}

// ErrorAckResponse acknowledges an event whose processing failed. The 200
// status suppresses provider-side retries; the error is logged instead.
type ErrorAckResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the JSON body for early-exit errors (405/400/401/413/500).
type ErrorResponse struct {
	Error string `json:"error"`
}

// ProbeResponse answers provider liveness probes.
type ProbeResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Default values
const (
	DefaultMaxBodySize     = 1048576 // 1 MB
	DefaultSignatureHeader = "x-webhook-signature"
	DefaultPath            = "/webhook/whatsapp"
)
