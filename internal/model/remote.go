package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// RemoteModel calls the server-side generation endpoint, which keeps
// provider keys off the client. Its contract is "always returns a
// displayable string": any failure is converted into the fallback
// apology instead of an error.
type RemoteModel struct {
	baseURL    string
	preference string
	client     *http.Client
	logger     *slog.Logger
}

var _ Generator = (*RemoteModel)(nil)

// NewRemoteModel creates a client for {base}/assistant/generate.
// preference names the desired upstream model, or "auto".
func NewRemoteModel(baseURL, preference string, logger *slog.Logger) *RemoteModel {
	if preference == "" {
		preference = "auto"
	}
	return &RemoteModel{
		baseURL:    baseURL,
		preference: preference,
		client:     &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

func (m *RemoteModel) Name() string {
	return m.preference
}

func (m *RemoteModel) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	text, err := m.post(ctx, prompt, opts)
	if err != nil {
		m.logger.Error("remote assistant generation failed", "error", err)
		return FallbackReply, nil
	}
	return text, nil
}

func (m *RemoteModel) post(ctx context.Context, prompt string, opts Options) (string, error) {
	body, err := json.Marshal(map[string]any{
		"prompt":          prompt,
		"modelPreference": m.preference,
		"max_tokens":      ClampMaxTokens(opts.MaxTokens),
		"locale":          opts.Locale,
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/assistant/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("assistant generate: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Text  string `json:"text"`
		Error string `json:"error"`
	}
	decodeErr := json.NewDecoder(resp.Body).Decode(&payload)

	// A fallback text in the body wins over the status code: the
	// server degrades with a displayable message on purpose.
	if payload.Text != "" {
		return payload.Text, nil
	}
	if decodeErr != nil {
		return "", fmt.Errorf("assistant generate: decode response: %w", decodeErr)
	}
	if payload.Error != "" {
		return "", fmt.Errorf("assistant generate: %s", payload.Error)
	}
	return "", fmt.Errorf("assistant generate: status %d with empty body", resp.StatusCode)
}
