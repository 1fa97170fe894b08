package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"resumerag/internal/domain"
	"resumerag/internal/logger"
)

const (
	autofillMaxTokens   = 200
	autofillMaxValueLen = 500
	needsManualToken    = "NEEDS_MANUAL"

	confidenceExact     = 1.0
	confidenceName      = 0.9
	confidenceGenerated = 0.8
)

// directField maps a label keyword to the extracted_info key it reads.
type directField struct {
	keyword    string
	confidence float64
	// excluded label words that disqualify the shortcut
	excluded []string
}

var directFields = []directField{
	{keyword: "email", confidence: confidenceExact},
	{keyword: "phone", confidence: confidenceExact},
	{keyword: "name", confidence: confidenceName, excluded: []string{"first", "last"}},
	{keyword: "linkedin", confidence: confidenceExact},
	{keyword: "github", confidence: confidenceExact},
}

// GetAutofillValue answers one form field. Model failures never escape: they
// come back as a NeedsManual result with a suggestion.
func (e *Engine) GetAutofillValue(ctx context.Context, req domain.AutofillRequest) domain.AutofillResult {
	req.FieldType = domain.NormalizeFieldType(string(req.FieldType))

	chunks, info := e.snapshot(req.FieldLabel+" "+req.Context, e.opts.AutofillTopK)
	if len(chunks) == 0 {
		return domain.AutofillResult{
			NeedsManual: true,
			Suggestion:  fmt.Sprintf("Could not find relevant information for '%s'", req.FieldLabel),
		}
	}

	if res, ok := matchDirectField(req.FieldLabel, info); ok {
		e.log.Debug("autofill from extracted info", zap.String("field", req.FieldLabel))
		return res
	}

	prompt := buildAutofillPrompt(formatContext(chunks), req)
	e.log.Debug("autofill prompt",
		zap.String("field", req.FieldLabel),
		zap.Int("prompt_len", len(prompt)),
		zap.String("prompt", logger.TruncateForLog(prompt, 300)),
	)

	response, err := e.generator.Complete(ctx, prompt, autofillMaxTokens)
	if err != nil {
		e.log.Warn("autofill generation failed", zap.String("field", req.FieldLabel), zap.Error(err))
		return domain.AutofillResult{
			NeedsManual: true,
			Suggestion:  "Error: " + err.Error(),
		}
	}

	value := strings.TrimSpace(response)
	if strings.Contains(strings.ToUpper(value), needsManualToken) || utf8.RuneCountInString(value) > autofillMaxValueLen {
		e.log.Info("autofill needs manual entry",
			zap.String("field", req.FieldLabel),
			zap.String("response", logger.TruncateForLog(value, 120)),
		)
		return domain.AutofillResult{
			NeedsManual: true,
			Suggestion:  fmt.Sprintf("Please fill '%s' manually - AI is unsure", req.FieldLabel),
		}
	}

	return domain.AutofillResult{
		Value:      value,
		Confidence: confidenceGenerated,
		Source:     domain.SourceLLMGenerated,
	}
}

func matchDirectField(label string, info map[string]string) (domain.AutofillResult, bool) {
	lower := strings.ToLower(label)
	for _, f := range directFields {
		if !strings.Contains(lower, f.keyword) || containsAny(lower, f.excluded) {
			continue
		}
		value, ok := info[f.keyword]
		if !ok {
			continue
		}
		return domain.AutofillResult{
			Value:      value,
			Confidence: f.confidence,
			Source:     domain.SourceDirectExtraction,
		}, true
	}
	return domain.AutofillResult{}, false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
