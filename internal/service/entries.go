package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"resumerag/internal/domain"
	"resumerag/internal/logger"
)

const entriesMaxTokens = 1000

// jsonArrayRe is greedy: it spans from the first '[' to the last ']'.
var jsonArrayRe = regexp.MustCompile(`(?s)\[.*\]`)

// GetMultiEntries asks the model to split a section into structured entries.
// Only ErrInvalidSection is returned; missing sections and unparseable model
// output both yield an empty slice.
func (e *Engine) GetMultiEntries(ctx context.Context, section string) ([]domain.Entry, error) {
	section = strings.ToLower(strings.TrimSpace(section))
	if !domain.IsMultiEntrySection(section) {
		return nil, ErrInvalidSection
	}

	content := e.sectionText(section)
	if strings.TrimSpace(content) == "" {
		return []domain.Entry{}, nil
	}

	response, err := e.generator.Complete(ctx, buildEntriesPrompt(section, content), entriesMaxTokens)
	if err != nil {
		e.log.Warn("multi-entry generation failed", zap.String("section", section), zap.Error(err))
		return []domain.Entry{}, nil
	}

	entries, err := parseEntries(response)
	if err != nil {
		e.log.Warn("multi-entry output discarded",
			zap.String("section", section),
			zap.String("response", logger.TruncateForLog(response, 200)),
			zap.Error(err),
		)
		return []domain.Entry{}, nil
	}
	return entries, nil
}

func parseEntries(response string) ([]domain.Entry, error) {
	match := jsonArrayRe.FindString(response)
	if match == "" {
		return nil, ErrMalformedModelOutput
	}
	var entries []domain.Entry
	if err := json.Unmarshal([]byte(match), &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
	}
	if entries == nil {
		entries = []domain.Entry{}
	}
	return entries, nil
}
