// Package parser turns an uploaded résumé file into a domain.ParsedDocument.
package parser

import (
	"path/filepath"

	"resumerag/internal/domain"
)

// Parse reads a pdf, docx or txt file and splits it into sections. The
// full text is appended as the raw_text section.
func Parse(filename string, data []byte) (*domain.ParsedDocument, error) {
	text, err := ExtractText(filepath.Ext(filename), data)
	if err != nil {
		return nil, err
	}
	return ParseText(text), nil
}

// ParseText builds a document from already extracted text.
func ParseText(text string) *domain.ParsedDocument {
	sections := SplitSections(text)
	sections = append(sections, domain.Section{Name: RawTextSection, Text: text})
	return &domain.ParsedDocument{
		Sections:      sections,
		ExtractedInfo: ExtractContactInfo(text),
	}
}
