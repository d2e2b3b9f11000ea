package llm

import "context"

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single message in a chat exchange.
type Message struct {
	Role    Role
	Content string
}

// GenerateOptions controls a single generation request.
type GenerateOptions struct {
	Temperature     float32
	MaxOutputTokens int32

	// JSONResponse asks the model to return a JSON object.
	JSONResponse bool

	// SystemInstruction steers the model for the whole request.
	SystemInstruction string
}

// TextGenerator is an interface for generating text from a prompt or a
// conversation history.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	GenerateChat(ctx context.Context, history []Message, opts GenerateOptions) (string, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
