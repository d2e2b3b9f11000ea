// Package onboarding implements the conversational intake flow: a stateful,
// resumable dialogue that collects household and dietary preferences and is
// converted into a structured user profile when finalized.
package onboarding

import (
	"time"

	"github.com/JimmyUA/menu-master/internal/llm"
	"github.com/JimmyUA/menu-master/internal/profile"
)

// ChatTurn is a single utterance in a conversation transcript.
type ChatTurn struct {
	Role llm.Role `json:"role"`
	Text string   `json:"text"`
}

// Session tracks the state of one onboarding conversation. The transcript is
// append-only: turns are never reordered or mutated in place, and once
// Complete is set no further turns are appended.
type Session struct {
	ID        string           `json:"session_id"`
	Location  profile.Location `json:"location"`
	Turns     []ChatTurn       `json:"turns"`
	Complete  bool             `json:"is_complete"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// UserTurnCount returns the number of user turns in the transcript.
func (s *Session) UserTurnCount() int {
	count := 0
	for _, turn := range s.Turns {
		if turn.Role == llm.RoleUser {
			count++
		}
	}
	return count
}

// LastAssistantText returns the text of the most recent assistant turn, or
// "" if the assistant has not spoken yet.
func (s *Session) LastAssistantText() string {
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Role == llm.RoleAssistant {
			return s.Turns[i].Text
		}
	}
	return ""
}
