package forward

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds a single outbound forward call.
const DefaultTimeout = 10 * time.Second

// Forwarder posts JSON payloads to downstream automation endpoints. Calls are
// best-effort: the client timeout is the only delivery guarantee, and callers
// are expected to log and swallow the returned error. This is a deliberate
// at-most-once trade-off, not an oversight.
type Forwarder struct {
	client *http.Client
	logger *slog.Logger
}

// New creates a Forwarder with the given per-call timeout.
func New(timeout time.Duration, logger *slog.Logger) *Forwarder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Forwarder{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Post sends payload as JSON to url. Each delivery gets a UUID carried in the
// X-Delivery-ID header and the logs, so downstream duplicates can be traced.
// Non-2xx responses are errors.
func (f *Forwarder) Post(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal forward payload: %w", err)
	}

	deliveryID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build forward request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Delivery-ID", deliveryID)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("forward request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("forward returned status %d", resp.StatusCode)
	}

	f.logger.Info("forward delivered",
		"delivery_id", deliveryID,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
