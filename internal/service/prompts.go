package service

import (
	_ "embed"
	"strings"

	"resumerag/internal/domain"
)

//go:embed prompts/autofill.md
var autofillPrompt string

//go:embed prompts/hr_answer.md
var hrAnswerPrompt string

//go:embed prompts/entries.md
var entriesPrompt string

const defaultJobContext = "General job application"

func renderPrompt(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.TrimSpace(strings.NewReplacer(pairs...).Replace(template))
}

func buildAutofillPrompt(context string, req domain.AutofillRequest) string {
	return renderPrompt(autofillPrompt, map[string]string{
		"CONTEXT":        context,
		"FIELD_LABEL":    req.FieldLabel,
		"FIELD_TYPE":     string(req.FieldType),
		"FIELD_CONTEXT":  req.Context,
		"EXISTING_VALUE": req.ExistingValue,
	})
}

func buildHRPrompt(context, question, jobContext string) string {
	if strings.TrimSpace(jobContext) == "" {
		jobContext = defaultJobContext
	}
	return renderPrompt(hrAnswerPrompt, map[string]string{
		"CONTEXT":     context,
		"JOB_CONTEXT": jobContext,
		"QUESTION":    question,
	})
}

func buildEntriesPrompt(section, content string) string {
	return renderPrompt(entriesPrompt, map[string]string{
		"SECTION": section,
		"CONTENT": content,
	})
}
