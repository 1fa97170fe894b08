package parser

import (
	"regexp"
	"strings"

	"resumerag/internal/domain"
)

const (
	generalSection = "general"
	// RawTextSection holds the whole extracted text.
	RawTextSection = "raw_text"
	maxHeadingLen  = 50
)

type sectionPattern struct {
	name string
	re   *regexp.Regexp
}

// Checked in order; the first match names the heading.
var sectionPatterns = []sectionPattern{
	{"personal", regexp.MustCompile(`(personal\s*(info|information|details)?|contact\s*(info|information|details)?)`)},
	{"education", regexp.MustCompile(`(education|academic|qualification|degree)`)},
	{"experience", regexp.MustCompile(`(experience|work\s*history|employment|professional\s*experience)`)},
	{"skills", regexp.MustCompile(`(skills|technical\s*skills|competencies|expertise)`)},
	{"projects", regexp.MustCompile(`(projects|portfolio|work\s*samples)`)},
	{"certifications", regexp.MustCompile(`(certifications?|certificates?|licenses?)`)},
	{"summary", regexp.MustCompile(`(summary|objective|profile|about\s*me)`)},
	{"achievements", regexp.MustCompile(`(achievements?|accomplishments?|awards?)`)},
	{"languages", regexp.MustCompile(`(languages?|linguistic)`)},
	{"interests", regexp.MustCompile(`(interests?|hobbies|activities)`)},
}

// SplitSections cuts text at heading lines. Text before the first heading
// goes to "general". A repeated heading replaces the earlier text in place.
func SplitSections(text string) []domain.Section {
	var (
		sections []domain.Section
		current  = generalSection
		content  []string
	)
	flush := func() {
		if len(content) == 0 {
			return
		}
		body := strings.TrimSpace(strings.Join(content, "\n"))
		for i := range sections {
			if sections[i].Name == current {
				sections[i].Text = body
				return
			}
		}
		sections = append(sections, domain.Section{Name: current, Text: body})
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if name, ok := headingName(trimmed); ok {
			flush()
			current = name
			content = nil
			continue
		}
		if trimmed != "" {
			content = append(content, line)
		}
	}
	flush()
	return sections
}

func headingName(line string) (string, bool) {
	if len(line) >= maxHeadingLen {
		return "", false
	}
	lower := strings.ToLower(line)
	for _, p := range sectionPatterns {
		if p.re.MatchString(lower) {
			return p.name, true
		}
	}
	return "", false
}
