package event

import (
	"context"
	"log/slog"
	"time"
)

// Poster sends a JSON payload to a downstream automation endpoint.
type Poster interface {
	Post(ctx context.Context, url string, payload any) error
}

// Router classifies provider events and forwards the recognized subset to
// the configured downstream endpoints.
type Router struct {
	poster     Poster
	messageURL string
	alertURL   string
	logger     *slog.Logger
}

// NewRouter creates an event router.
func NewRouter(poster Poster, messageURL, alertURL string, logger *slog.Logger) *Router {
	return &Router{
		poster:     poster,
		messageURL: messageURL,
		alertURL:   alertURL,
		logger:     logger,
	}
}

// Handle dispatches a single provider event. Forward failures are absorbed
// here: the downstream is best-effort and must never affect the provider
// acknowledgment. The returned error is reserved for unexpected processing
// faults, which the caller acknowledges as success=false.
func (r *Router) Handle(ctx context.Context, evt IncomingEvent) error {
	switch evt.Event {
	case KindWebhookTest:
		r.logger.Info("test webhook received", "session_id", evt.SessionID)

	case KindMessagesReceived, KindMessagesPersonalReceived:
		msg := NormalizeMessage(evt.Data)
		r.logger.Info("message received",
			"from", msg.From,
			"type", msg.Message.Type,
			"session_id", evt.SessionID,
		)
		r.forward(ctx, r.messageURL, MessageForward{
			Event:             ForwardMessageReceived,
			NormalizedMessage: msg,
		})

	case KindMessageSent:
		r.logger.Debug("message sent acknowledged", "session_id", evt.SessionID)

	case KindReceiptUpdate:
		r.logger.Debug("receipt update acknowledged", "session_id", evt.SessionID)

	case KindSessionStatus:
		r.handleSessionStatus(ctx, evt)

	case KindQRCodeUpdated:
		r.logger.Info("qr code updated", "session_id", evt.SessionID)

	default:
		r.logger.Debug("unhandled event", "event", evt.Event)
	}

	return nil
}

// handleSessionStatus forwards a connectivity alert when the session dropped.
// Other statuses (connected, connecting, ...) are acknowledged silently.
func (r *Router) handleSessionStatus(ctx context.Context, evt IncomingEvent) {
	status := FirstString(evt.Data,
		[]string{"status"},
		[]string{"session", "status"},
	)

	if status != "disconnected" && status != "offline" {
		r.logger.Debug("session status acknowledged", "status", status, "session_id", evt.SessionID)
		return
	}

	sessionID := evt.SessionID
	if sessionID == "" {
		sessionID = StringAt(evt.Data, "session_id")
	}

	timestamp := string(evt.Timestamp)
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	r.logger.Warn("whatsapp session lost", "status", status, "session_id", sessionID)
	r.forward(ctx, r.alertURL, DisconnectAlert{
		Event:     ForwardWhatsAppDisconnected,
		SessionID: sessionID,
		Status:    status,
		Timestamp: timestamp,
	})
}

// forward posts a payload downstream, logging and swallowing failures.
// An unset URL disables the forward without error.
func (r *Router) forward(ctx context.Context, url string, payload any) {
	if url == "" {
		r.logger.Debug("forward skipped, no url configured")
		return
	}

	if err := r.poster.Post(ctx, url, payload); err != nil {
		r.logger.Warn("forward failed", "url", url, "error", err)
	}
}
