package onboarding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JimmyUA/menu-master/internal/docstore"
	"github.com/JimmyUA/menu-master/internal/llm"
	"github.com/JimmyUA/menu-master/internal/profile"
)

func newTestSession(id string) *Session {
	return &Session{
		ID:       id,
		Location: profile.Location{City: "Lisbon", Country: "Portugal"},
		Turns: []ChatTurn{
			{Role: llm.RoleAssistant, Text: "Welcome to Lisbon cooking!"},
			{Role: llm.RoleUser, Text: "We are two adults."},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(docstore.NewMemoryStore(), time.Hour)

	original := newTestSession("session-1")
	if err := store.Save(ctx, original); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	loaded, err := store.Get(ctx, "session-1")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}

	if loaded.ID != original.ID {
		t.Errorf("Expected session id '%s', got '%s'", original.ID, loaded.ID)
	}
	if loaded.Location.City != "Lisbon" {
		t.Errorf("Expected city 'Lisbon', got '%s'", loaded.Location.City)
	}
	if len(loaded.Turns) != len(original.Turns) {
		t.Fatalf("Expected %d turns, got %d", len(original.Turns), len(loaded.Turns))
	}
	for i := range original.Turns {
		if loaded.Turns[i].Role != original.Turns[i].Role {
			t.Errorf("Turn %d: expected role '%s', got '%s'", i, original.Turns[i].Role, loaded.Turns[i].Role)
		}
		if loaded.Turns[i].Text != original.Turns[i].Text {
			t.Errorf("Turn %d: expected text '%s', got '%s'", i, original.Turns[i].Text, loaded.Turns[i].Text)
		}
	}
}

func TestSessionStoreGetMissing(t *testing.T) {
	store := NewSessionStore(docstore.NewMemoryStore(), time.Hour)

	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStoreExpiry(t *testing.T) {
	ctx := context.Background()
	backing := docstore.NewMemoryStore()
	store := NewSessionStore(backing, time.Hour)

	if err := store.Save(ctx, newTestSession("session-2")); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	// Jump the store's clock past the TTL.
	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err := store.Get(ctx, "session-2")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Expected ErrSessionNotFound for expired session, got %v", err)
	}

	// The lazy expiry should have removed the record as well.
	if _, err := backing.Collection(sessionCollection).Get(ctx, "session-2"); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("Expected expired session to be deleted from the store, got %v", err)
	}
}

func TestSessionStoreDeleteIdempotent(t *testing.T) {
	store := NewSessionStore(docstore.NewMemoryStore(), time.Hour)

	if err := store.Delete(context.Background(), "never-existed"); err != nil {
		t.Errorf("Expected deleting a missing session to succeed, got %v", err)
	}
}

func TestSessionStorePurgeExpired(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(docstore.NewMemoryStore(), time.Hour)

	for _, id := range []string{"a", "b", "c"} {
		if err := store.Save(ctx, newTestSession(id)); err != nil {
			t.Fatalf("Failed to save session %s: %v", id, err)
		}
	}

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	removed, err := store.PurgeExpired(ctx, 2)
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 sessions purged with limit 2, got %d", removed)
	}

	removed, err = store.PurgeExpired(ctx, 100)
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 remaining session purged, got %d", removed)
	}
}
