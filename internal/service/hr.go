package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"resumerag/internal/domain"
	"resumerag/internal/logger"
)

const (
	hrMaxTokens  = 500
	confidenceHR = 0.85
)

// AnswerHRQuestion drafts a short personalised answer. It always generates,
// even when retrieval comes back empty.
func (e *Engine) AnswerHRQuestion(ctx context.Context, req domain.HRQuestionRequest) domain.HRAnswerResult {
	chunks, _ := e.snapshot(req.Question, e.opts.HRTopK)

	prompt := buildHRPrompt(formatContext(chunks), req.Question, req.JobContext)
	e.log.Debug("hr prompt",
		zap.Int("chunks", len(chunks)),
		zap.Int("prompt_len", len(prompt)),
		zap.String("prompt", logger.TruncateForLog(prompt, 300)),
	)

	answer, err := e.generator.Complete(ctx, prompt, hrMaxTokens)
	if err != nil {
		e.log.Warn("hr answer generation failed", zap.Error(err))
		return domain.HRAnswerResult{NeedsManual: true, Error: err.Error()}
	}

	return domain.HRAnswerResult{
		Answer:     strings.TrimSpace(answer),
		Confidence: confidenceHR,
	}
}
