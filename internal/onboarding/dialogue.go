package onboarding

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log"
	"text/template"

	"github.com/JimmyUA/menu-master/internal/llm"
	"github.com/JimmyUA/menu-master/internal/profile"
)

//go:embed system_instruction.md
var systemInstruction string

//go:embed cold_start_prompt.md
var coldStartPrompt string

const (
	dialogueTemperature = 0.7
	dialogueMaxTokens   = 256
)

// DialogueEngine drives one conversational turn. It is a pure
// request/response collaborator: it never touches stored session state.
type DialogueEngine struct {
	textGen llm.TextGenerator
}

// NewDialogueEngine creates a DialogueEngine using the given text generator.
func NewDialogueEngine(textGen llm.TextGenerator) *DialogueEngine {
	return &DialogueEngine{textGen: textGen}
}

// Start generates the location-aware opening message for a new conversation.
// If generation fails, a deterministic templated welcome referencing the
// user's city is returned instead so the flow never stalls.
func (e *DialogueEngine) Start(ctx context.Context, location profile.Location) string {
	prompt, err := buildColdStartPrompt(location)
	if err == nil {
		message, genErr := e.textGen.GenerateText(ctx, prompt, llm.GenerateOptions{
			Temperature:       dialogueTemperature,
			MaxOutputTokens:   dialogueMaxTokens,
			SystemInstruction: systemInstruction,
		})
		if genErr == nil {
			return message
		}
		err = genErr
	}

	log.Printf("cold-start generation failed, using fallback: %v", err)
	return fmt.Sprintf(
		"Hi! I see you're in %s. "+
			"I'd love to help personalize your meal planning experience. "+
			"First, could you tell me about your household - how many people will you be cooking for?",
		location.City,
	)
}

// Reply replays the full turn history (ending with the newest user turn) and
// returns the next assistant utterance. Failures surface as ErrGeneration: a
// stalled dialogue is preferable to a fabricated reply.
func (e *DialogueEngine) Reply(ctx context.Context, turns []ChatTurn) (string, error) {
	history := make([]llm.Message, 0, len(turns))
	for _, turn := range turns {
		history = append(history, llm.Message{Role: turn.Role, Content: turn.Text})
	}

	message, err := e.textGen.GenerateChat(ctx, history, llm.GenerateOptions{
		Temperature:       dialogueTemperature,
		MaxOutputTokens:   dialogueMaxTokens,
		SystemInstruction: systemInstruction,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return message, nil
}

func buildColdStartPrompt(location profile.Location) (string, error) {
	tmpl, err := template.New("cold_start").Parse(coldStartPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, location); err != nil {
		return "", err
	}
	return buf.String(), nil
}
