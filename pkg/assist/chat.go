package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const supportInstruction = "You are a mental health support buddy for post-disaster victims. " +
	"Respond with empathy, validate their feelings, and suggest practical coping strategies " +
	"like breathing exercises or grounding techniques. Avoid generic responses and focus on " +
	"their specific disaster-related emotions."

// ErrChatUnavailable is returned when no chat backend is configured
var ErrChatUnavailable = errors.New("chat assistant is not configured")

// Responder answers a single chat message
type Responder interface {
	Reply(ctx context.Context, message string) (string, error)
}

// GenAIResponder answers through the Gemini API
type GenAIResponder struct {
	client *genai.Client
	model  string
}

// NewGenAIResponder creates a responder for model. An empty apiKey yields
// ErrChatUnavailable.
func NewGenAIResponder(ctx context.Context, apiKey, model string) (*GenAIResponder, error) {
	if apiKey == "" {
		return nil, ErrChatUnavailable
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIResponder{client: client, model: model}, nil
}

func (r *GenAIResponder) Reply(ctx context.Context, message string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(message, genai.RoleUser),
	}
	resp, err := r.client.Models.GenerateContent(ctx, r.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(supportInstruction, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}
