package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicGenerator uses the Messages API.
type AnthropicGenerator struct {
	client      *anthropic.Client
	model       string
	temperature float64
}

func NewAnthropicGenerator(cfg Config) (*AnthropicGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("model is required for anthropic")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	return &AnthropicGenerator{client: &client, model: cfg.Model, temperature: cfg.temperature()}, nil
}

func (g *AnthropicGenerator) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: int64(maxTokens),
		System:    []anthropic.TextBlockParam{{Text: SystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(g.temperature),
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", &ClientError{Provider: ProviderAnthropic, Op: "messages", Err: err}
	}

	var builder strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(builder.String())
	if text == "" {
		return "", &ClientError{Provider: ProviderAnthropic, Op: "messages", Err: ErrEmptyResponse}
	}
	return text, nil
}
