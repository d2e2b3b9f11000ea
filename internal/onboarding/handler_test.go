package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/JimmyUA/menu-master/internal/docstore"
	"github.com/JimmyUA/menu-master/internal/llm"
	"github.com/JimmyUA/menu-master/internal/profile"
)

const extractionPayload = `{
	"household": {"adults": 2, "children": 1},
	"dietary_preferences": ["Mediterranean"],
	"allergies_dislikes": ["onions"],
	"meal_schedule": {
		"monday": {"breakfast": false, "lunch": false, "dinner": true},
		"saturday": {"breakfast": true, "lunch": true, "dinner": true}
	}
}`

// scriptedGenerator is a TextGenerator with canned responses. JSON requests
// are answered with the extraction payload, plain text requests with the
// cold-start message, and chat requests with replies in order.
type scriptedGenerator struct {
	coldStart    string
	coldStartErr error
	replies      []string
	chatErr      error
	chatCalls    int
}

func (g *scriptedGenerator) GenerateText(_ context.Context, _ string, opts llm.GenerateOptions) (string, error) {
	if opts.JSONResponse {
		return extractionPayload, nil
	}
	if g.coldStartErr != nil {
		return "", g.coldStartErr
	}
	return g.coldStart, nil
}

func (g *scriptedGenerator) GenerateChat(_ context.Context, _ []llm.Message, _ llm.GenerateOptions) (string, error) {
	if g.chatErr != nil {
		return "", g.chatErr
	}
	if g.chatCalls >= len(g.replies) {
		return "Anything else?", nil
	}
	reply := g.replies[g.chatCalls]
	g.chatCalls++
	return reply, nil
}

func newTestHandler(gen llm.TextGenerator) (*Handler, *profile.Repository, *SessionStore) {
	store := docstore.NewMemoryStore()
	sessions := NewSessionStore(store, time.Hour)
	profiles := profile.NewRepository(store)
	handler := NewHandler(sessions, NewDialogueEngine(gen), NewExtractor(gen, nil), profiles)
	return handler, profiles, sessions
}

func TestOnboardingFlow(t *testing.T) {
	ctx := context.Background()
	gen := &scriptedGenerator{
		coldStart: "Welcome from sunny Lisbon! How many people are in your household?",
		replies: []string{
			"Two adults and a child, got it. Any dietary preferences?",
			"Mediterranean, lovely. Anything you avoid?",
			"Great, you're all set! Thank you for sharing.",
		},
	}
	handler, profiles, _ := newTestHandler(gen)

	sessionID, opening, err := handler.Start(ctx, profile.Location{City: "Lisbon", Country: "Portugal"})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if sessionID == "" {
		t.Fatal("Expected a non-empty session id")
	}
	if !strings.Contains(opening, "Lisbon") {
		t.Errorf("Expected opening message to mention Lisbon, got '%s'", opening)
	}

	userMessages := []string{
		"We are two adults and one child.",
		"We love Mediterranean food.",
		"No onions please, and we only cook dinners plus full weekends.",
	}
	var isComplete bool
	for i, msg := range userMessages {
		var reply string
		reply, isComplete, err = handler.Continue(ctx, sessionID, msg)
		if err != nil {
			t.Fatalf("Continue %d failed: %v", i+1, err)
		}
		if reply != gen.replies[i] {
			t.Errorf("Continue %d: expected reply '%s', got '%s'", i+1, gen.replies[i], reply)
		}
	}
	if !isComplete {
		t.Error("Expected conversation to be complete after the 'all set' reply")
	}

	history, err := handler.History(ctx, sessionID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	// Opening + 3 user turns + 3 assistant replies.
	if len(history) != 7 {
		t.Errorf("Expected 7 turns in history, got %d", len(history))
	}

	created, err := handler.Finalize(ctx, "u1", sessionID)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if created.UserID != "u1" {
		t.Errorf("Expected user id 'u1', got '%s'", created.UserID)
	}
	if created.Household.Adults != 2 || created.Household.Children != 1 {
		t.Errorf("Expected household 2/1, got %d/%d", created.Household.Adults, created.Household.Children)
	}
	if !created.MealSchedule.Saturday.Breakfast {
		t.Error("Expected Saturday breakfast to be cooked at home")
	}
	if created.MealSchedule.Monday.Lunch {
		t.Error("Expected Monday lunch to stay not cooked at home")
	}

	// The profile is persisted and the session is gone.
	if _, err := profiles.Get(ctx, "u1"); err != nil {
		t.Errorf("Expected persisted profile for u1, got %v", err)
	}
	if _, err := handler.History(ctx, sessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected history after finalize to fail with ErrSessionNotFound, got %v", err)
	}
	if _, err := handler.Finalize(ctx, "u1", sessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected second finalize to fail with ErrSessionNotFound, got %v", err)
	}
}

func TestContinueOnCompleteSession(t *testing.T) {
	ctx := context.Background()
	gen := &scriptedGenerator{coldStart: "Welcome!"}
	handler, _, sessions := newTestHandler(gen)

	session := newTestSession("done-session")
	session.Complete = true
	if err := sessions.Save(ctx, session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}
	turnsBefore := len(session.Turns)

	reply, isComplete, err := handler.Continue(ctx, "done-session", "one more thing")
	if err != nil {
		t.Fatalf("Continue failed: %v", err)
	}
	if reply != alreadyCollectedMessage {
		t.Errorf("Expected the already-collected message, got '%s'", reply)
	}
	if !isComplete {
		t.Error("Expected is_complete to be true")
	}

	reloaded, err := sessions.Get(ctx, "done-session")
	if err != nil {
		t.Fatalf("Failed to reload session: %v", err)
	}
	if len(reloaded.Turns) != turnsBefore {
		t.Errorf("Expected no new turns on a complete session, got %d -> %d", turnsBefore, len(reloaded.Turns))
	}
	if gen.chatCalls != 0 {
		t.Errorf("Expected no model calls for a complete session, got %d", gen.chatCalls)
	}
}

func TestContinueGenerationFailure(t *testing.T) {
	ctx := context.Background()
	gen := &scriptedGenerator{
		coldStart: "Welcome!",
		chatErr:   fmt.Errorf("model unavailable"),
	}
	handler, _, sessions := newTestHandler(gen)

	sessionID, _, err := handler.Start(ctx, profile.Location{City: "Kyiv", Country: "Ukraine"})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	_, _, err = handler.Continue(ctx, sessionID, "hello?")
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("Expected ErrGeneration, got %v", err)
	}

	// The failed turn must not be persisted.
	reloaded, err := sessions.Get(ctx, sessionID)
	if err != nil {
		t.Fatalf("Failed to reload session: %v", err)
	}
	if len(reloaded.Turns) != 1 {
		t.Errorf("Expected only the opening turn to be persisted, got %d turns", len(reloaded.Turns))
	}
}

func TestContinueOnUnknownSession(t *testing.T) {
	handler, _, _ := newTestHandler(&scriptedGenerator{coldStart: "Welcome!"})

	_, _, err := handler.Continue(context.Background(), "missing", "hello")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestTurnsMonotonicallyIncrease(t *testing.T) {
	ctx := context.Background()
	gen := &scriptedGenerator{
		coldStart: "Welcome!",
		replies:   []string{"q1", "q2", "q3", "q4"},
	}
	handler, _, sessions := newTestHandler(gen)

	sessionID, _, err := handler.Start(ctx, profile.Location{City: "Rome", Country: "Italy"})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	previous := 0
	for i := 0; i < 4; i++ {
		if _, _, err := handler.Continue(ctx, sessionID, "answer"); err != nil {
			t.Fatalf("Continue %d failed: %v", i+1, err)
		}
		session, err := sessions.Get(ctx, sessionID)
		if err != nil {
			t.Fatalf("Failed to reload session: %v", err)
		}
		if len(session.Turns) < previous {
			t.Fatalf("Turn count shrank from %d to %d", previous, len(session.Turns))
		}
		previous = len(session.Turns)
	}

	session, err := sessions.Get(ctx, sessionID)
	if err != nil {
		t.Fatalf("Failed to reload session: %v", err)
	}
	if !session.Complete {
		t.Error("Expected hard cap to complete the session after 4 user turns")
	}
}

func TestStartWithColdStartFallback(t *testing.T) {
	ctx := context.Background()
	gen := &scriptedGenerator{coldStartErr: fmt.Errorf("model unavailable")}
	handler, _, _ := newTestHandler(gen)

	sessionID, opening, err := handler.Start(ctx, profile.Location{City: "Osaka", Country: "Japan"})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if sessionID == "" {
		t.Fatal("Expected a session id despite the generation failure")
	}
	if !strings.Contains(opening, "Osaka") {
		t.Errorf("Expected fallback message to mention the city, got '%s'", opening)
	}
}
