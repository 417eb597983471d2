// Package memory provides bounded per-session conversation history.
//
// Two backends exist: an in-process store and a remote HTTP store. The
// remote store is always wrapped with a local fallback so that an
// outage degrades the assistant instead of breaking it.
package memory

import (
	"context"
	"sync"
	"time"
)

// DefaultWindow is the number of messages kept per session.
const DefaultWindow = 6

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation entry. Immutable once created.
type Message struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Store keeps the most recent messages of each session.
type Store interface {
	// Context returns the session history, oldest first. Unknown
	// sessions yield an empty slice.
	Context(ctx context.Context, sessionID string) ([]Message, error)

	// Append adds a message and trims the history to the window.
	Append(ctx context.Context, sessionID string, msg Message) error

	// Clear drops the whole session history.
	Clear(ctx context.Context, sessionID string) error
}

// LocalStore holds session histories in process memory. Safe for
// concurrent use. Contents are lost on restart.
type LocalStore struct {
	window int

	mu     sync.RWMutex
	buffer map[string][]Message
}

var _ Store = (*LocalStore)(nil)

// NewLocalStore creates an in-process store trimming each session to
// the last window messages.
func NewLocalStore(window int) *LocalStore {
	if window < 1 {
		window = DefaultWindow
	}
	return &LocalStore{
		window: window,
		buffer: make(map[string][]Message),
	}
}

func (s *LocalStore) Context(_ context.Context, sessionID string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.buffer[sessionID]
	out := make([]Message, len(history))
	copy(out, history)
	return out, nil
}

func (s *LocalStore) Append(_ context.Context, sessionID string, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.buffer[sessionID], msg)
	if len(history) > s.window {
		history = history[len(history)-s.window:]
	}
	s.buffer[sessionID] = history
	return nil
}

func (s *LocalStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.buffer, sessionID)
	return nil
}
