package config

import "time"

// Config represents the complete whatsgw configuration.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Listen  string        `yaml:"listen"`
	Webhook WebhookConfig `yaml:"webhook"`
	Forward ForwardConfig `yaml:"forward"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name     string `yaml:"name"`
	LogLevel string `yaml:"log_level"`
}

// WebhookConfig defines the inbound webhook endpoint.
type WebhookConfig struct {
	// Path is the URL path the provider posts events to.
	Path string `yaml:"path"`

	// SignatureHeader is the HTTP header carrying the hex HMAC-SHA256 digest.
	SignatureHeader string `yaml:"signature_header"`

	// Secret is the shared HMAC secret. Empty disables verification.
	Secret string `yaml:"secret,omitempty"`

	// MaxBodySize is the maximum request body size (e.g. "1MB", "262144").
	MaxBodySize string `yaml:"max_body_size,omitempty"`
}

// ForwardConfig defines the downstream automation endpoints.
type ForwardConfig struct {
	// MessageURL receives normalized message_received events. Empty disables it.
	MessageURL string `yaml:"message_url,omitempty"`

	// AlertURL receives whatsapp_disconnected alerts. Empty disables it.
	AlertURL string `yaml:"alert_url,omitempty"`

	// Timeout bounds each outbound forward call (e.g. "10s").
	Timeout string `yaml:"timeout,omitempty"`
}

// Default values
const (
	DefaultMaxBodySize    = 1048576 // 1 MB
	DefaultForwardTimeout = 10 * time.Second
)

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:     "whatsgw",
			LogLevel: "info",
		},
		Listen: "127.0.0.1:8090",
		Webhook: WebhookConfig{
			Path:            "/webhook/whatsapp",
			SignatureHeader: "x-webhook-signature",
		},
		Forward: ForwardConfig{
			Timeout: "10s",
		},
	}
}
