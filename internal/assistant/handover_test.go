package assistant

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestShouldHandover(t *testing.T) {
	tests := []struct {
		name        string
		userMessage string
		reply       string
		want        bool
	}{
		{"explicit human request", "I want to speak to a human", "Sure, let me check", true},
		{"pricing question", "What is the price?", "It is $197/month", false},
		{"portuguese person request", "Quero falar com uma pessoa", "Claro!", true},
		{"demo request", "quero uma demonstração", "Combinado", true},
		{"spanish closing intent", "quiero cerrar compra", "perfecto", true},
		{"reply suggests escalation", "ok", "Posso agendar uma chamada com o time", true},
		{"case insensitive", "CALL ME tomorrow", "ok", true},
		{"neutral exchange", "como funciona o método?", "Funciona em ciclos semanais.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldHandover(tt.userMessage, tt.reply); got != tt.want {
				t.Errorf("ShouldHandover(%q, %q) = %v, want %v", tt.userMessage, tt.reply, got, tt.want)
			}
		})
	}
}

func TestNotifierPostsPayload(t *testing.T) {
	var got HandoverPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chatwood/handover" {
			t.Errorf("path = %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("decoding payload: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, discardLogger())
	err := n.TriggerHandover(context.Background(), HandoverPayload{
		SessionID:      "s1",
		UserMessage:    "quero falar com uma pessoa",
		AssistantReply: "claro",
		Context:        NewContext("s1", "pt", nil),
	})
	if err != nil {
		t.Fatalf("TriggerHandover: %v", err)
	}
	if got.SessionID != "s1" || got.UserMessage != "quero falar com uma pessoa" {
		t.Errorf("payload = %+v", got)
	}
}

func TestNotifierReportsServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, discardLogger())
	if err := n.TriggerHandover(context.Background(), HandoverPayload{SessionID: "s1"}); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestNotifierWithoutIntakeOnlyLogs(t *testing.T) {
	n := NewNotifier("", discardLogger())
	if err := n.TriggerHandover(context.Background(), HandoverPayload{SessionID: "s1"}); err != nil {
		t.Fatalf("simulated handover should not fail: %v", err)
	}
}
