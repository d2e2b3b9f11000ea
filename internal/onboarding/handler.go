package onboarding

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/JimmyUA/menu-master/internal/llm"
	"github.com/JimmyUA/menu-master/internal/profile"
)

// alreadyCollectedMessage is returned by Continue once a conversation is
// complete, without calling the model again.
const alreadyCollectedMessage = "We've already collected your preferences. Thank you!"

// Handler composes the session store, dialogue engine, completion detector
// and profile extractor into the public onboarding operations.
type Handler struct {
	sessions  *SessionStore
	dialogue  *DialogueEngine
	extractor *Extractor
	profiles  *profile.Repository
}

// NewHandler creates a Handler from its collaborators.
func NewHandler(sessions *SessionStore, dialogue *DialogueEngine, extractor *Extractor, profiles *profile.Repository) *Handler {
	return &Handler{
		sessions:  sessions,
		dialogue:  dialogue,
		extractor: extractor,
		profiles:  profiles,
	}
}

// Start creates a new session, records the opening assistant message and
// persists it. Returns the session id and the opening message.
func (h *Handler) Start(ctx context.Context, location profile.Location) (string, string, error) {
	session := &Session{
		ID:        uuid.NewString(),
		Location:  location,
		CreatedAt: time.Now().UTC(),
	}

	message := h.dialogue.Start(ctx, location)
	session.Turns = append(session.Turns, ChatTurn{Role: llm.RoleAssistant, Text: message})

	if err := h.sessions.Save(ctx, session); err != nil {
		return "", "", err
	}

	log.Printf("started onboarding session: %s", session.ID)
	return session.ID, message, nil
}

// Continue appends the user's message, generates the next assistant reply,
// re-evaluates completion and persists the session. Once a conversation is
// complete the call becomes an idempotent no-op returning a static message.
func (h *Handler) Continue(ctx context.Context, sessionID, userText string) (string, bool, error) {
	session, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", false, err
	}

	if session.Complete {
		return alreadyCollectedMessage, true, nil
	}

	session.Turns = append(session.Turns, ChatTurn{Role: llm.RoleUser, Text: userText})

	reply, err := h.dialogue.Reply(ctx, session.Turns)
	if err != nil {
		// Nothing was persisted: the session keeps its prior transcript
		// and the caller may retry the turn.
		return "", false, err
	}

	session.Turns = append(session.Turns, ChatTurn{Role: llm.RoleAssistant, Text: reply})
	session.Complete = IsComplete(session)

	if err := h.sessions.Save(ctx, session); err != nil {
		return "", false, err
	}
	return reply, session.Complete, nil
}

// Finalize extracts the structured profile from the conversation, persists
// it and deletes the session. Legal from any non-finalized state; a second
// call on the same session id fails with ErrSessionNotFound since the
// session is gone. Callers needing idempotence should check for an existing
// profile by user id first.
func (h *Handler) Finalize(ctx context.Context, userID, sessionID string) (*profile.Profile, error) {
	session, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	p := h.extractor.Extract(ctx, session.Turns, session.Location)
	p.UserID = userID

	if err := h.profiles.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := h.sessions.Delete(ctx, sessionID); err != nil {
		return nil, err
	}

	log.Printf("created profile for user: %s", userID)
	return p, nil
}

// History returns a read-only copy of the transcript.
func (h *Handler) History(ctx context.Context, sessionID string) ([]ChatTurn, error) {
	session, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	turns := make([]ChatTurn, len(session.Turns))
	copy(turns, session.Turns)
	return turns, nil
}
