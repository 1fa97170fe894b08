package domain

import "strings"

// FieldType is the HTML input kind of a form field being autofilled.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldTel      FieldType = "tel"
	FieldURL      FieldType = "url"
	FieldDate     FieldType = "date"
	FieldNumber   FieldType = "number"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldRadio    FieldType = "radio"
)

var knownFieldTypes = map[FieldType]struct{}{
	FieldText: {}, FieldEmail: {}, FieldTel: {}, FieldURL: {}, FieldDate: {},
	FieldNumber: {}, FieldTextarea: {}, FieldSelect: {}, FieldCheckbox: {}, FieldRadio: {},
}

// NormalizeFieldType lowercases raw and clamps anything unknown to FieldText.
func NormalizeFieldType(raw string) FieldType {
	ft := FieldType(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := knownFieldTypes[ft]; ok {
		return ft
	}
	return FieldText
}

// Result sources.
const (
	SourceDirectExtraction = "direct_extraction"
	SourceLLMGenerated     = "llm_generated"
)

// AutofillRequest asks for the value of a single form field.
type AutofillRequest struct {
	FieldLabel    string    `json:"field_label"`
	FieldType     FieldType `json:"field_type"`
	Context       string    `json:"context"`
	ExistingValue string    `json:"existing_value"`
}

// AutofillResult is the answer for one form field.
type AutofillResult struct {
	Value       string  `json:"value"`
	Confidence  float64 `json:"confidence"`
	NeedsManual bool    `json:"needs_manual"`
	Source      string  `json:"source,omitempty"`
	Suggestion  string  `json:"suggestion,omitempty"`
}

// HRQuestionRequest is a free-text screening question.
type HRQuestionRequest struct {
	Question   string `json:"question"`
	JobContext string `json:"job_context"`
}

// HRAnswerResult is the generated answer to an HR question.
type HRAnswerResult struct {
	Answer      string  `json:"answer"`
	Confidence  float64 `json:"confidence"`
	NeedsManual bool    `json:"needs_manual"`
	Error       string  `json:"error,omitempty"`
}

// Entry is one structured item (a school, a job, a project) extracted by the model.
type Entry map[string]any

// Multi-entry sections.
const (
	SectionEducation  = "education"
	SectionExperience = "experience"
	SectionProjects   = "projects"
)

// IsMultiEntrySection reports whether section supports structured entry extraction.
func IsMultiEntrySection(section string) bool {
	switch section {
	case SectionEducation, SectionExperience, SectionProjects:
		return true
	}
	return false
}

// StructuredData is the read-only view of the indexed résumé.
type StructuredData struct {
	Sections      []string          `json:"sections"`
	ExtractedInfo map[string]string `json:"extracted_info"`
	ChunkCount    int               `json:"chunk_count"`
	Summary       string            `json:"summary,omitempty"`
}
