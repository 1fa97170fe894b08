package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIGenerator talks to OpenAI or any OpenAI-compatible endpoint such as Groq.
type OpenAIGenerator struct {
	client      *openai.Client
	provider    string
	model       string
	temperature float64
}

// NewOpenAIGenerator creates a chat-completions generator from cfg.
func NewOpenAIGenerator(cfg Config) (*OpenAIGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("model is required for openai-compatible provider")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}
	return &OpenAIGenerator{
		client:      &client,
		provider:    provider,
		model:       cfg.Model,
		temperature: cfg.temperature(),
	}, nil
}

// Complete sends prompt as the user turn after SystemPrompt.
func (g *OpenAIGenerator) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(g.temperature),
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", &ClientError{Provider: g.provider, Op: "chat completion", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &ClientError{Provider: g.provider, Op: "chat completion", Err: ErrEmptyResponse}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &ClientError{Provider: g.provider, Op: "chat completion", Err: ErrEmptyResponse}
	}
	return text, nil
}
