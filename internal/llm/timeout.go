package llm

import (
	"context"
	"errors"
	"time"

	"resumerag/internal/domain"
)

type timeoutGenerator struct {
	next     domain.Generator
	provider string
	timeout  time.Duration
}

// WithTimeout bounds every Complete call of next. An expired deadline is
// reported as ErrTimeout.
func WithTimeout(next domain.Generator, provider string, timeout time.Duration) domain.Generator {
	if timeout <= 0 {
		return next
	}
	return &timeoutGenerator{next: next, provider: provider, timeout: timeout}
}

func (g *timeoutGenerator) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := g.next.Complete(ctx, prompt, maxTokens)
		done <- result{text, err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", &ClientError{Provider: g.provider, Op: "complete", Err: ErrTimeout}
		}
		return r.text, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", &ClientError{Provider: g.provider, Op: "complete", Err: ErrTimeout}
		}
		return "", &ClientError{Provider: g.provider, Op: "complete", Err: ctx.Err()}
	}
}
