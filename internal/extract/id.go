package extract

import (
	"regexp"
	"strings"
)

var (
	useCaseIDRegex = regexp.MustCompile(`(?i)<ID:(.*?)>`)
	stepIDRegex    = regexp.MustCompile(`<Step (\w*)>`)
)

const noStepMarker = "<No Step>"

// ExtractUseCaseID finds the "<ID:x>" marker in an assistant reply. It returns
// the reply with all markers removed and the first id, empty if none.
func ExtractUseCaseID(message string) (string, string) {
	var id string
	if m := useCaseIDRegex.FindStringSubmatch(message); m != nil {
		id = strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(useCaseIDRegex.ReplaceAllString(message, "")), id
}

// ExtractUseCaseStepID finds the "<Step x>" marker in an assistant reply.
// "<No Step>" markers are removed without yielding an id.
func ExtractUseCaseStepID(message string) (string, string) {
	var id string
	if m := stepIDRegex.FindStringSubmatch(message); m != nil {
		id = m[1]
	}
	cleaned := stepIDRegex.ReplaceAllString(message, "")
	cleaned = strings.ReplaceAll(cleaned, noStepMarker, "")
	return strings.TrimSpace(cleaned), id
}
