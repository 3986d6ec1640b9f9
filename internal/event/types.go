package event

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Recognized provider event kinds.
const (
	KindWebhookTest              = "webhook.test"
	KindMessagesReceived         = "messages.received"
	KindMessagesPersonalReceived = "messages-personal.received"
	KindMessageSent              = "message.sent"
	KindReceiptUpdate            = "message-receipt.update"
	KindSessionStatus            = "session.status"
	KindQRCodeUpdated            = "qrcode.updated"
)

// Normalized event names sent downstream.
const (
	ForwardMessageReceived      = "message_received"
	ForwardWhatsAppDisconnected = "whatsapp_disconnected"
)

// IncomingEvent is the deserialized provider request body.
type IncomingEvent struct {
	Event     string         `json:"event"`
	Data      map[string]any `json:"data"`
	Timestamp FlexString     `json:"timestamp,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
}

// FlexString decodes a JSON string or number into a string. Providers are
// inconsistent about timestamp types, so both must be accepted.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// NormalizedMessage is the downstream shape for received messages.
type NormalizedMessage struct {
	From    string         `json:"from"`
	To      string         `json:"to"`
	Message MessageBody    `json:"message"`
	Contact ContactInfo    `json:"contact"`
	RawData map[string]any `json:"raw_data"`
}

// MessageBody carries the message fields extracted from the provider payload.
type MessageBody struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
}

// ContactInfo identifies the sender.
type ContactInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// MessageForward is the outbound notification for received messages.
type MessageForward struct {
	Event string `json:"event"`
	NormalizedMessage
}

// DisconnectAlert is the outbound notification for lost sessions.
type DisconnectAlert struct {
	Event     string `json:"event"`
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// formatNumber renders numeric lookup results without a trailing mantissa.
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
