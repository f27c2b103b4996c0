package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("no text in model response")

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent generates free text using the specified model tier
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON generates JSON content using the specified model tier.
	// Markdown code fences are stripped from the result.
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// StartChat opens a multi-turn conversation framed by systemInstruction.
	// The conversation history is held by the returned Chat, never by the caller.
	StartChat(systemInstruction string, tier ModelTier) (Chat, error)
	// Close releases any resources held by the client
	Close() error
}

// Chat is a stateful conversation with hidden history.
type Chat interface {
	SendMessage(ctx context.Context, text string) (string, error)
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini, "":
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

func (c *GeminiClient) model(tier ModelTier, temperature float32) (*genai.GenerativeModel, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}
	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	return model, nil
}

// GenerateContent generates text content using the specified model tier
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	model, err := c.model(tier, c.config.Temperature)
	if err != nil {
		return "", err
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(resp)
}

// GenerateJSON generates JSON content using the specified model tier
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	model, err := c.model(tier, c.config.Temperature)
	if err != nil {
		return "", err
	}
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// StartChat opens a Gemini chat session with a system instruction.
// No request is made until the first SendMessage.
func (c *GeminiClient) StartChat(systemInstruction string, tier ModelTier) (Chat, error) {
	model, err := c.model(tier, c.config.ChatTemperature)
	if err != nil {
		return nil, err
	}
	if systemInstruction != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemInstruction)},
		}
	}
	return &geminiChat{session: model.StartChat()}, nil
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

type geminiChat struct {
	session *genai.ChatSession
}

func (g *geminiChat) SendMessage(ctx context.Context, text string) (string, error) {
	resp, err := g.session.SendMessage(ctx, genai.Text(text))
	if err != nil {
		return "", fmt.Errorf("failed to send chat message: %w", err)
	}
	return extractTextFromResponse(resp)
}

// extractTextFromResponse joins the text parts of the first candidate
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response: %w", ErrEmptyResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response: %w", ErrEmptyResponse)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text parts in response: %w", ErrEmptyResponse)
	}
	return sb.String(), nil
}
