package parser

import (
	"regexp"
	"strings"
)

// Keys of ExtractedInfo.
const (
	InfoEmail    = "email"
	InfoPhone    = "phone"
	InfoName     = "name"
	InfoLinkedIn = "linkedin"
	InfoGitHub   = "github"
)

var (
	emailRe    = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phoneRe    = regexp.MustCompile(`[\+]?[(]?[0-9]{1,3}[)]?[-\s\.]?[(]?[0-9]{1,4}[)]?[-\s\.]?[0-9]{1,4}[-\s\.]?[0-9]{1,9}`)
	linkedinRe = regexp.MustCompile(`linkedin\.com/in/([a-zA-Z0-9-]+)`)
	githubRe   = regexp.MustCompile(`github\.com/([a-zA-Z0-9-]+)`)
	notNameRe  = regexp.MustCompile(`@|http|www|\d{5,}`)

	nameStopwords = []string{"resume", "cv", "curriculum"}
)

const nameScanLines = 5

// ExtractContactInfo pulls email, phone, profile links and a best-guess name out of raw text.
func ExtractContactInfo(text string) map[string]string {
	info := make(map[string]string)

	if m := emailRe.FindString(text); m != "" {
		info[InfoEmail] = m
	}
	if m := phoneRe.FindString(text); m != "" {
		info[InfoPhone] = m
	}
	lower := strings.ToLower(text)
	if m := linkedinRe.FindString(lower); m != "" {
		info[InfoLinkedIn] = m
	}
	if m := githubRe.FindString(lower); m != "" {
		info[InfoGitHub] = m
	}
	if name, ok := guessName(text); ok {
		info[InfoName] = name
	}
	return info
}

// guessName takes the first short line near the top that looks like a person.
func guessName(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	if len(lines) > nameScanLines {
		lines = lines[:nameScanLines]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) <= 2 || len(line) >= 50 {
			continue
		}
		if notNameRe.MatchString(line) {
			continue
		}
		lower := strings.ToLower(line)
		skip := false
		for _, w := range nameStopwords {
			if strings.Contains(lower, w) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		return line, true
	}
	return "", false
}
