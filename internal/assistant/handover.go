package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"time"
)

// highIntentPatterns flag phrases that signal the visitor wants a
// human or is ready to close. Both the user message and the assistant
// reply are scanned so that replies suggesting escalation also count.
var highIntentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)falar com (uma )?pessoa`),
	regexp.MustCompile(`(?i)human`),
	regexp.MustCompile(`(?i)quero (uma )?demonstração`),
	regexp.MustCompile(`(?i)speak to (a )?human`),
	regexp.MustCompile(`(?i)call me`),
	regexp.MustCompile(`(?i)agendar (uma )?chamada`),
	regexp.MustCompile(`(?i)contactar`),
	regexp.MustCompile(`(?i)cerrar compra`),
}

// ShouldHandover reports whether the exchange shows high purchase or
// escalation intent.
func ShouldHandover(userMessage, assistantReply string) bool {
	combined := userMessage + "\n" + assistantReply
	for _, pattern := range highIntentPatterns {
		if pattern.MatchString(combined) {
			return true
		}
	}
	return false
}

// HandoverPayload is the record forwarded to the Chatwood intake when
// an exchange escalates.
type HandoverPayload struct {
	SessionID      string  `json:"sessionId"`
	UserMessage    string  `json:"userMessage"`
	AssistantReply string  `json:"assistantReply"`
	Context        Context `json:"context"`
}

// Notifier posts escalated exchanges to the Chatwood intake endpoint.
// Without an intake URL it only logs the payload, which keeps local
// setups working.
type Notifier struct {
	intakeURL string
	client    *http.Client
	logger    *slog.Logger
}

func NewNotifier(intakeURL string, logger *slog.Logger) *Notifier {
	return &Notifier{
		intakeURL: intakeURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
	}
}

func (n *Notifier) TriggerHandover(ctx context.Context, payload HandoverPayload) error {
	if n.intakeURL == "" {
		n.logger.Info("chatwood handover simulated",
			"session_id", payload.SessionID,
			"user_message", payload.UserMessage)
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding handover payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.intakeURL+"/chatwood/handover", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building handover request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting handover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("chatwood handover failed with status %d", resp.StatusCode)
	}
	return nil
}
