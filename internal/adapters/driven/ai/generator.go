package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driven"
)

// Ensure openAIGenerator implements GeneratorService
var _ driven.GeneratorService = (*openAIGenerator)(nil)

// openAIGenerator implements GeneratorService against any OpenAI-compatible
// chat completion endpoint (OpenAI, Groq)
type openAIGenerator struct {
	client *openai.Client
	model  string
}

func newOpenAIGenerator(apiKey, model, baseURL string) (driven.GeneratorService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("generator API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("generator model is required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	// The default client has no timeout; a stalled backend must fail, not hang
	config.HTTPClient = &http.Client{Timeout: 60 * time.Second}

	return &openAIGenerator{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

// Complete sends the prompt and returns the raw response text. When the
// request carries an image the user message becomes multi-part with the
// image attached as a base64 data URL, matching the vision API contract.
func (g *openAIGenerator) Complete(ctx context.Context, req driven.PromptRequest) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: req.System},
	}

	if len(req.Image) > 0 {
		encoded := base64.StdEncoding.EncodeToString(req.Image)
		messages = append(messages, openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: req.User},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL: "data:image/jpeg;base64," + encoded,
					},
				},
			},
		})
	} else {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: req.User,
		})
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        1,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// Model returns the model name being used
func (g *openAIGenerator) Model() string {
	return g.model
}

// Ping verifies the backend is reachable
func (g *openAIGenerator) Ping(ctx context.Context) error {
	_, err := g.client.ListModels(ctx)
	return err
}

// Close releases resources held by the backend client
func (g *openAIGenerator) Close() error {
	return nil
}
