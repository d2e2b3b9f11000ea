package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/JimmyUA/menu-master/internal/config"
)

const geminiModel = "gemini-2.0-flash-001"

// geminiClient is a client for the Google Gemini API.
type geminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (TextGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiClient{client: client}, nil
}

// GenerateText sends a single prompt to the Gemini model and returns the
// generated text.
func (c *geminiClient) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	model := c.model(opts)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return textFromResponse(resp)
}

// GenerateChat replays the conversation history and returns the model's next
// message. The last entry of history must be a user message.
func (c *geminiClient) GenerateChat(ctx context.Context, history []Message, opts GenerateOptions) (string, error) {
	if len(history) == 0 {
		return "", fmt.Errorf("chat history is empty")
	}
	last := history[len(history)-1]
	if last.Role != RoleUser {
		return "", fmt.Errorf("last chat message must be from the user, got %q", last.Role)
	}

	model := c.model(opts)
	chat := model.StartChat()
	for _, msg := range history[:len(history)-1] {
		role := "user"
		if msg.Role == RoleAssistant {
			role = "model"
		}
		chat.History = append(chat.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	resp, err := chat.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		return "", fmt.Errorf("failed to generate chat response: %w", err)
	}
	return textFromResponse(resp)
}

// Close closes the underlying Gemini client.
func (c *geminiClient) Close() error {
	return c.client.Close()
}

func (c *geminiClient) model(opts GenerateOptions) *genai.GenerativeModel {
	model := c.client.GenerativeModel(geminiModel)
	model.SetTemperature(opts.Temperature)
	if opts.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(opts.MaxOutputTokens)
	}
	if opts.JSONResponse {
		model.ResponseMIMEType = "application/json"
	}
	if opts.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(opts.SystemInstruction)},
		}
	}
	// Permissive but not unrestricted: only block high-probability harm.
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockOnlyHigh},
	}
	return model
}

func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("generated content is not text")
	}
	return strings.TrimSpace(string(text)), nil
}
