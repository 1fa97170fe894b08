// Package llm holds the language-model clients the answer engine prompts.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"resumerag/internal/domain"
	"resumerag/internal/logger"
)

// Providers understood by New.
const (
	ProviderGroq      = "groq"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

const (
	GroqBaseURL        = "https://api.groq.com/openai/v1"
	DefaultGroqModel   = "llama-3.1-8b-instant"
	DefaultTemperature = 0.3
	DefaultTimeout     = 30 * time.Second
)

// SystemPrompt is sent with every completion.
const SystemPrompt = "You are an intelligent assistant helping to fill job application forms. " +
	"Be concise and accurate. Only provide the exact value needed for the form field."

var (
	ErrNotConfigured = errors.New("generative client not configured: missing API key")
	ErrTimeout       = errors.New("generative client timed out")
	ErrEmptyResponse = errors.New("model returned empty response")
)

// ClientError wraps any failure of a model call.
type ClientError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ClientError) Unwrap() error { return e.Err }

// Config selects and configures a provider. Values are already resolved;
// nothing here reads the environment.
type Config struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	// Temperature is nil when unset; an explicit 0 is kept.
	Temperature *float64
}

func (c Config) temperature() float64 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}

func (c *Config) applyDefaults() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderGroq
	}
	if c.Provider == ProviderGroq {
		if c.BaseURL == "" {
			c.BaseURL = GroqBaseURL
		}
		if c.Model == "" {
			c.Model = DefaultGroqModel
		}
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Temperature == nil {
		t := DefaultTemperature
		c.Temperature = &t
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
}

// New builds the generator for cfg.Provider wrapped with the configured timeout.
// A missing API key is not fatal: the returned generator fails every call
// with ErrNotConfigured.
func New(ctx context.Context, cfg Config, log *zap.Logger) (domain.Generator, error) {
	cfg.applyDefaults()
	log = logger.OrNop(log)

	if strings.TrimSpace(cfg.APIKey) == "" {
		log.Warn("no API key configured; generative answers disabled", zap.String("provider", cfg.Provider))
		return NewUnavailable(cfg.Provider), nil
	}

	var (
		gen domain.Generator
		err error
	)
	switch cfg.Provider {
	case ProviderGroq, ProviderOpenAI:
		gen, err = NewOpenAIGenerator(cfg)
	case ProviderAnthropic:
		gen, err = NewAnthropicGenerator(cfg)
	case ProviderGemini:
		gen, err = NewGeminiGenerator(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	log.Info("generative client ready",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.Duration("timeout", cfg.Timeout),
	)
	return WithTimeout(gen, cfg.Provider, cfg.Timeout), nil
}

// Unavailable stands in when no credentials are configured.
type Unavailable struct {
	provider string
}

func NewUnavailable(provider string) *Unavailable { return &Unavailable{provider: provider} }

func (u *Unavailable) Complete(context.Context, string, int) (string, error) {
	return "", &ClientError{Provider: u.provider, Op: "complete", Err: ErrNotConfigured}
}
