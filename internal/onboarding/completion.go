package onboarding

import "strings"

// completionPhrases are the closers the assistant is instructed to use once
// it has everything. The list and the turn thresholds below are observable
// behavior; changing them is a product decision, not a bug fix.
var completionPhrases = []string{
	"all set",
	"you're all set",
	"that's everything",
	"have everything i need",
	"got everything",
	"perfect!",
	"thank you for sharing",
}

const (
	// minUserTurnsForPhrase guards against the model closing too early.
	minUserTurnsForPhrase = 3
	// maxUserTurns is the hard cap: the conversation completes after this
	// many user turns even if no completion phrase ever appears.
	maxUserTurns = 4
)

// IsComplete decides whether enough information has been gathered to end the
// dialogue. Pure function of the transcript.
func IsComplete(session *Session) bool {
	userTurns := session.UserTurnCount()

	lastAssistant := strings.ToLower(session.LastAssistantText())
	if lastAssistant != "" && userTurns >= minUserTurnsForPhrase {
		for _, phrase := range completionPhrases {
			if strings.Contains(lastAssistant, phrase) {
				return true
			}
		}
	}

	return userTurns >= maxUserTurns
}
