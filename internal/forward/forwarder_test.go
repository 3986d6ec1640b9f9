package forward

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestPost_DeliversJSON(t *testing.T) {
	type payload struct {
		Event string `json:"event"`
		From  string `json:"from"`
	}

	var gotBody []byte
	var gotContentType, gotDeliveryID string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotContentType = r.Header.Get("Content-Type")
		gotDeliveryID = r.Header.Get("X-Delivery-ID")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	f := New(5*time.Second, testLogger())
	if err := f.Post(context.Background(), ts.URL, payload{Event: "message_received", From: "123"}); err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %v, want application/json", gotContentType)
	}
	if _, err := uuid.Parse(gotDeliveryID); err != nil {
		t.Errorf("X-Delivery-ID = %q, want a UUID", gotDeliveryID)
	}

	var got payload
	if err := json.Unmarshal(gotBody, &got); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if got.Event != "message_received" || got.From != "123" {
		t.Errorf("body = %+v", got)
	}
}

func TestPost_UniqueDeliveryIDs(t *testing.T) {
	seen := make(map[string]bool)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen[r.Header.Get("X-Delivery-ID")] = true
	}))
	defer ts.Close()

	f := New(5*time.Second, testLogger())
	for i := 0; i < 3; i++ {
		if err := f.Post(context.Background(), ts.URL, map[string]string{"event": "x"}); err != nil {
			t.Fatalf("Post() error = %v", err)
		}
	}

	if len(seen) != 3 {
		t.Errorf("unique delivery ids = %d, want 3", len(seen))
	}
}

func TestPost_Non2xxIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	f := New(5*time.Second, testLogger())
	if err := f.Post(context.Background(), ts.URL, map[string]string{"event": "x"}); err == nil {
		t.Error("Post() should return an error for non-2xx responses")
	}
}

func TestPost_UnreachableHostIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close() // connection refused from here on

	f := New(time.Second, testLogger())
	if err := f.Post(context.Background(), url, map[string]string{"event": "x"}); err == nil {
		t.Error("Post() should return an error when the downstream is unreachable")
	}
}

func TestPost_UnmarshalablePayloadIsError(t *testing.T) {
	f := New(time.Second, testLogger())
	if err := f.Post(context.Background(), "http://127.0.0.1:0", map[string]any{"bad": make(chan int)}); err == nil {
		t.Error("Post() should return an error for unmarshalable payloads")
	}
}

func TestNew_DefaultTimeout(t *testing.T) {
	f := New(0, testLogger())
	if f.client.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", f.client.Timeout, DefaultTimeout)
	}
}
