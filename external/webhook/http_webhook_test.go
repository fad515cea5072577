package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/foxseedlab/tomodachin/internal/webhook"
)

func TestSendMatchEvent_EmptyWebhookURL(t *testing.T) {
	sender := NewHTTPSender("")
	if err := sender.SendMatchEvent(context.Background(), webhook.MatchEvent{Type: webhook.EventMatchCreated}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestSendMatchEvent_Success(t *testing.T) {
	var got webhook.MatchEvent

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type: %s", ct)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("failed to read body: %v", err)
		}
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	ev := webhook.MatchEvent{
		Type:       webhook.EventRecruitmentClosed,
		MatchID:    7,
		HostID:     "host-1",
		Activities: []string{"VALORANT"},
	}
	if err := sender.SendMatchEvent(context.Background(), ev); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got.Type != webhook.EventRecruitmentClosed || got.MatchID != 7 || got.HostID != "host-1" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestSendMatchEvent_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	if err := sender.SendMatchEvent(context.Background(), webhook.MatchEvent{Type: webhook.EventMatchDeleted}); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
