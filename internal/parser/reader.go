package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

var ErrUnsupportedFormat = errors.New("unsupported file type")

// Supported extensions, without the dot.
var SupportedExtensions = []string{"pdf", "docx", "txt"}

// IsSupported reports whether ext (with or without the dot) can be read.
func IsSupported(ext string) bool {
	ext = normalizeExt(ext)
	for _, s := range SupportedExtensions {
		if s == ext {
			return true
		}
	}
	return false
}

// ExtractText returns the raw text of a résumé file.
func ExtractText(ext string, data []byte) (string, error) {
	switch normalizeExt(ext) {
	case "txt":
		return string(data), nil
	case "pdf":
		return extractPDFText(data)
	case "docx":
		return extractDocxText(data)
	default:
		return "", fmt.Errorf("%w: %q (use %s)", ErrUnsupportedFormat, ext, strings.Join(SupportedExtensions, ", "))
	}
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("error parsing PDF: %w", err)
	}
	var textBuilder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		textBuilder.WriteString(text)
	}
	return textBuilder.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("error parsing DOCX: %w", err)
	}
	defer doc.Close()
	text, err := docxPlainText(doc.Editable().GetContent())
	if err != nil {
		return "", fmt.Errorf("error parsing DOCX: %w", err)
	}
	return text, nil
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
