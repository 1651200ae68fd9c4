package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func waitSettled(t *testing.T, h *Handle) error {
	t.Helper()
	select {
	case <-h.Done():
		return h.Err()
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for exchange to settle")
		return nil
	}
}

func TestHTTPStreamer_PostsJSONAndStreams(t *testing.T) {
	ticked := make(chan struct{}, 8)

	var gotMethod, gotContentType, gotAuth string
	var gotPayload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}

		flusher := w.(http.Flusher)
		fmt.Fprint(w, "He")
		flusher.Flush()
		// Wait until the client saw the first chunk before sending the rest.
		<-ticked
		fmt.Fprint(w, "llo!")
		flusher.Flush()
	}))
	defer server.Close()

	var mu sync.Mutex
	var snapshots []string

	s := NewHTTPStreamer(server.Client())
	h, err := s.Start(context.Background(), Request{
		URL:     server.URL,
		Headers: map[string]string{"Authorization": "Bearer test-token"},
		Payload: map[string]any{"chatInput": "hi"},
	}, func(snapshot string) error {
		mu.Lock()
		snapshots = append(snapshots, snapshot)
		mu.Unlock()
		select {
		case ticked <- struct{}{}:
		default:
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	if err := waitSettled(t, h); err != nil {
		t.Fatalf("Expected clean settle, got: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("Expected POST, got %q", gotMethod)
	}
	if gotContentType != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %q", gotContentType)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Expected Authorization header, got %q", gotAuth)
	}
	if gotPayload["chatInput"] != "hi" {
		t.Errorf("Expected chatInput 'hi', got %v", gotPayload["chatInput"])
	}

	mu.Lock()
	defer mu.Unlock()
	if len(snapshots) == 0 {
		t.Fatal("Expected at least one progress tick")
	}
	// Snapshots are cumulative: each one extends the previous.
	for i := 1; i < len(snapshots); i++ {
		if !strings.HasPrefix(snapshots[i], snapshots[i-1]) {
			t.Errorf("Snapshot %d does not extend its predecessor: %q -> %q", i, snapshots[i-1], snapshots[i])
		}
	}
	if final := snapshots[len(snapshots)-1]; final != "Hello!" {
		t.Errorf("Expected final snapshot 'Hello!', got %q", final)
	}
}

func TestHTTPStreamer_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "workflow not active", http.StatusInternalServerError)
	}))
	defer server.Close()

	s := NewHTTPStreamer(server.Client())
	h, err := s.Start(context.Background(), Request{URL: server.URL, Payload: map[string]any{}}, nil)
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	settleErr := waitSettled(t, h)
	if settleErr == nil {
		t.Fatal("Expected status error")
	}
	if !strings.Contains(settleErr.Error(), "status 500") {
		t.Errorf("Expected error to carry the status, got: %v", settleErr)
	}
	if !strings.Contains(settleErr.Error(), "workflow not active") {
		t.Errorf("Expected error to carry a body excerpt, got: %v", settleErr)
	}
}

func TestHTTPStreamer_CancelMidStream(t *testing.T) {
	ticked := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "partial")
		flusher.Flush()
		<-r.Context().Done()
	}))
	defer server.Close()

	var once sync.Once
	s := NewHTTPStreamer(server.Client())
	h, err := s.Start(context.Background(), Request{URL: server.URL, Payload: map[string]any{}}, func(snapshot string) error {
		once.Do(func() { close(ticked) })
		return nil
	})
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	<-ticked
	h.Cancel()

	settleErr := waitSettled(t, h)
	if !errors.Is(settleErr, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got: %v", settleErr)
	}
}

func TestHTTPStreamer_ProgressAbortsExchange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data")
		flusher.Flush()
		<-r.Context().Done()
	}))
	defer server.Close()

	abort := errors.New("updater rejected the payload")
	s := NewHTTPStreamer(server.Client())
	h, err := s.Start(context.Background(), Request{URL: server.URL, Payload: map[string]any{}}, func(snapshot string) error {
		return abort
	})
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	settleErr := waitSettled(t, h)
	if !errors.Is(settleErr, abort) {
		t.Fatalf("Expected progress error to settle the handle, got: %v", settleErr)
	}
}

func TestHTTPStreamer_RequiresURL(t *testing.T) {
	s := NewHTTPStreamer(nil)
	if _, err := s.Start(context.Background(), Request{Payload: map[string]any{}}, nil); err == nil {
		t.Fatal("Expected error for missing url")
	}
}

func TestHandle_SettleOnce(t *testing.T) {
	h := NewHandle(nil)
	h.Settle(errors.New("first"))
	h.Settle(errors.New("second"))

	if err := h.Err(); err == nil || err.Error() != "first" {
		t.Errorf("Expected first settle to win, got: %v", err)
	}
}
