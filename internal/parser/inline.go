package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/harrison/adl/internal/conditions"
	"github.com/harrison/adl/internal/models"
)

// endTag is the condition token produced by "</>"
const endTag = "/"

var (
	conditionsRegex = regexp.MustCompile(`<(.*?)>`)
	headerRegex     = regexp.MustCompile(`^\s*([^(\s]+)\s*(?:\(\s*(\d*)\s*\))?\s*$`)
	versionRegex    = regexp.MustCompile(`(?i)<!--\s*version\s*:\s*(.*?)\s*-->`)

	// Functions and references need look-around, which RE2 lacks.
	functionsRegex   = regexp2.MustCompile(`(?<=\s|^)@([0-9A-Za-z_\-]+?)\(\)`, regexp2.None)
	useCaseRefsRegex = regexp2.MustCompile(`(?<=\W|^)#([0-9A-Za-z_/\-]+)(?=[ .,]|$)`, regexp2.None)
)

// AsConditional turns one line of markup into a Conditional: conditions are
// stripped first, then function calls, then use case references. A "</>"
// tag marks the end of a conditional block.
func AsConditional(line string) models.Conditional {
	text, conds := ParseConditions(line)
	text, functions := ParseFunctions(text)
	text, refs := ParseUseCaseRefs(text)

	c := models.Conditional{
		Text:        text,
		Functions:   functions,
		UseCaseRefs: refs,
	}
	for _, token := range conds {
		if token == endTag {
			c.EndConditional = true
			continue
		}
		c.Conditions = append(c.Conditions, token)
	}
	return c
}

// ParseConditions removes every "<a, b>" group from text and returns the
// trimmed text with the comma separated tokens found in the groups.
func ParseConditions(text string) (string, []string) {
	var tokens []string
	for _, match := range conditionsRegex.FindAllStringSubmatch(text, -1) {
		for _, token := range strings.Split(match[1], ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			tokens = conditions.Union(tokens, []string{token})
		}
	}
	return strings.TrimSpace(conditionsRegex.ReplaceAllString(text, "")), tokens
}

// ParseFunctions replaces "@name()" calls with "name" and returns the names.
// A call must start the text or follow whitespace.
func ParseFunctions(text string) (string, []string) {
	var names []string
	var replacements [][2]string
	for _, m := range findAll(functionsRegex, text) {
		names = conditions.Union(names, []string{m[1]})
		replacements = append(replacements, [2]string{m[0], m[1]})
	}
	return applyReplacements(text, replacements), names
}

// ParseUseCaseRefs finds "#id" references and returns them with the path
// prefix dropped from the text ("#dir/id" becomes "#id"). The recorded
// reference keeps the full path.
func ParseUseCaseRefs(text string) (string, []string) {
	var refs []string
	var replacements [][2]string
	for _, m := range findAll(useCaseRefsRegex, text) {
		refs = conditions.Union(refs, []string{m[1]})
		id := m[1]
		if idx := strings.LastIndex(id, "/"); idx >= 0 {
			id = id[idx+1:]
		}
		replacements = append(replacements, [2]string{m[0], "#" + id})
	}
	return applyReplacements(text, replacements), refs
}

// ParseUseCaseHeader splits "id (n)" into the id and its execution limit.
// The limit is nil when absent or empty. Headers that do not fit the form
// are returned trimmed as the id.
func ParseUseCaseHeader(header string) (string, *int) {
	m := headerRegex.FindStringSubmatch(header)
	if m == nil {
		return strings.TrimSpace(header), nil
	}
	if m[2] == "" {
		return m[1], nil
	}
	limit, err := strconv.Atoi(m[2])
	if err != nil {
		return m[1], nil
	}
	return m[1], &limit
}

// extractVersion returns the first version marker of a document
func extractVersion(text string) string {
	if m := versionRegex.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// findAll returns the full match and first group of every match
func findAll(re *regexp2.Regexp, text string) [][2]string {
	var out [][2]string
	m, err := re.FindStringMatch(text)
	for err == nil && m != nil {
		out = append(out, [2]string{m.String(), m.GroupByNumber(1).String()})
		m, err = re.FindNextMatch(m)
	}
	return out
}

func applyReplacements(text string, replacements [][2]string) string {
	for _, r := range replacements {
		text = strings.TrimSpace(strings.ReplaceAll(text, r[0], r[1]))
	}
	return text
}
