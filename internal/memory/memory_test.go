package memory

import (
	"context"
	"fmt"
	"testing"
)

func TestLocalStoreWindow(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(6)

	for i := 0; i < 7; i++ {
		msg := NewMessage(RoleUser, fmt.Sprintf("message %d", i))
		if err := store.Append(ctx, "s1", msg); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	history, err := store.Context(ctx, "s1")
	if err != nil {
		t.Fatalf("Context() error = %v", err)
	}
	if len(history) != 6 {
		t.Fatalf("got %d messages, want 6", len(history))
	}
	// Oldest entry dropped first.
	if history[0].Content != "message 1" {
		t.Errorf("oldest retained = %q, want %q", history[0].Content, "message 1")
	}
	if history[5].Content != "message 6" {
		t.Errorf("newest retained = %q, want %q", history[5].Content, "message 6")
	}
}

func TestLocalStoreUnknownSession(t *testing.T) {
	store := NewLocalStore(6)

	history, err := store.Context(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Context() error = %v", err)
	}
	if len(history) != 0 {
		t.Errorf("got %d messages for unknown session, want 0", len(history))
	}
}

func TestLocalStoreClear(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(6)

	_ = store.Append(ctx, "s1", NewMessage(RoleUser, "hello"))
	_ = store.Append(ctx, "s2", NewMessage(RoleUser, "other"))

	if err := store.Clear(ctx, "s1"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	h1, _ := store.Context(ctx, "s1")
	if len(h1) != 0 {
		t.Errorf("cleared session still has %d messages", len(h1))
	}
	h2, _ := store.Context(ctx, "s2")
	if len(h2) != 1 {
		t.Errorf("unrelated session affected by Clear, got %d messages", len(h2))
	}
}

func TestLocalStoreIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(6)
	_ = store.Append(ctx, "s1", NewMessage(RoleUser, "hello"))

	history, _ := store.Context(ctx, "s1")
	history[0].Content = "mutated"

	again, _ := store.Context(ctx, "s1")
	if again[0].Content != "hello" {
		t.Errorf("store leaked internal slice: %q", again[0].Content)
	}
}
