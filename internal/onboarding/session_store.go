package onboarding

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/JimmyUA/menu-master/internal/docstore"
)

const sessionCollection = "onboarding_sessions"

// SessionStore provides durable session storage with TTL-based expiry.
//
// Concurrent Continue calls on the same session id are a known hazard: both
// may load the same prior state and the later save wins. No optimistic
// versioning is applied at save time.
type SessionStore struct {
	sessions docstore.Collection
	ttl      time.Duration

	now func() time.Time
}

// NewSessionStore creates a SessionStore over the given document store.
func NewSessionStore(store docstore.Store, ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: store.Collection(sessionCollection),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Save upserts a session by id, stamping UpdatedAt to now.
func (s *SessionStore) Save(ctx context.Context, session *Session) error {
	session.UpdatedAt = s.now().UTC()
	if err := s.sessions.Set(ctx, session.ID, session); err != nil {
		return fmt.Errorf("%w: saving session %s: %v", ErrStorage, session.ID, err)
	}
	return nil
}

// Get retrieves a session by id. Missing records, expired records and store
// read errors all surface as ErrSessionNotFound: losing a read degrades
// gracefully, and storage errors never reach the conversation flow from here.
func (s *SessionStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		log.Printf("discarding undecodable session %s: %v", id, err)
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	if s.now().Sub(session.UpdatedAt) > s.ttl {
		log.Printf("session expired: %s", id)
		if err := s.Delete(ctx, id); err != nil {
			log.Printf("failed to delete expired session %s: %v", id, err)
		}
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	return &session, nil
}

// Delete removes a session. Absence of the record is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: deleting session %s: %v", ErrStorage, id, err)
	}
	return nil
}

// PurgeExpired sweeps up to limit sessions past the TTL and returns the count
// removed. Best-effort maintenance path.
func (s *SessionStore) PurgeExpired(ctx context.Context, limit int) (int, error) {
	cutoff := s.now().UTC().Add(-s.ttl)
	ids, err := s.sessions.StaleIDs(ctx, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to find expired sessions: %w", err)
	}

	removed := 0
	for _, id := range ids {
		if err := s.sessions.Delete(ctx, id); err != nil {
			log.Printf("failed to purge session %s: %v", id, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Printf("purged %d expired sessions", removed)
	}
	return removed, nil
}
