package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// RemoteStore talks to the session memory service. The server retains
// the window; this client only moves messages over the wire.
type RemoteStore struct {
	baseURL string
	client  *http.Client
}

var _ Store = (*RemoteStore)(nil)

// NewRemoteStore creates a client for the memory service rooted at
// baseURL (no trailing slash).
func NewRemoteStore(baseURL string) *RemoteStore {
	return &RemoteStore{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *RemoteStore) sessionURL(sessionID string) string {
	return fmt.Sprintf("%s/assistant/memory/%s", s.baseURL, sessionID)
}

func (s *RemoteStore) Context(ctx context.Context, sessionID string) ([]Message, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.sessionURL(sessionID), nil)
	if err != nil {
		return nil, fmt.Errorf("build memory request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("load conversation memory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("load conversation memory: status %d", resp.StatusCode)
	}

	var payload struct {
		Messages []Message `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode conversation memory: %w", err)
	}
	return payload.Messages, nil
}

func (s *RemoteStore) Append(ctx context.Context, sessionID string, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sessionURL(sessionID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build memory request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("append conversation memory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("append conversation memory: status %d", resp.StatusCode)
	}
	return nil
}

func (s *RemoteStore) Clear(ctx context.Context, sessionID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.sessionURL(sessionID), nil)
	if err != nil {
		return fmt.Errorf("build memory request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("clear conversation memory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("clear conversation memory: status %d", resp.StatusCode)
	}
	return nil
}

// FallbackStore prefers the remote store and silently degrades to the
// local one on any remote failure. The fallback transition is logged
// so a remote outage stays diagnosable.
//
// After a failed remote append the histories of different processes
// can diverge; acceptable for a best-effort UX feature.
type FallbackStore struct {
	remote Store
	local  Store
	logger *slog.Logger
}

var _ Store = (*FallbackStore)(nil)

// NewFallbackStore wraps remote over local.
func NewFallbackStore(remote, local Store, logger *slog.Logger) *FallbackStore {
	return &FallbackStore{remote: remote, local: local, logger: logger}
}

func (s *FallbackStore) Context(ctx context.Context, sessionID string) ([]Message, error) {
	messages, err := s.remote.Context(ctx, sessionID)
	if err != nil {
		s.logger.Warn("falling back to local conversation memory", "session", sessionID, "error", err)
		return s.local.Context(ctx, sessionID)
	}
	return messages, nil
}

func (s *FallbackStore) Append(ctx context.Context, sessionID string, msg Message) error {
	if err := s.remote.Append(ctx, sessionID, msg); err != nil {
		s.logger.Warn("persisting memory remotely failed, storing locally", "session", sessionID, "error", err)
		return s.local.Append(ctx, sessionID, msg)
	}
	return nil
}

func (s *FallbackStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.remote.Clear(ctx, sessionID); err != nil {
		s.logger.Warn("clearing remote memory failed, clearing local cache instead", "session", sessionID, "error", err)
		return s.local.Clear(ctx, sessionID)
	}
	return nil
}
