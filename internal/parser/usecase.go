package parser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/harrison/adl/internal/models"
)

// section is the part of a use case that content lines are added to
type section int

const (
	sectionNone section = iota
	sectionSubStart
	sectionDescription
	sectionGoal
	sectionSolution
	sectionAlternativeSolution
	sectionFallbackSolution
	sectionSteps
	sectionExamples
	sectionContext
)

// sectionHeadings maps heading substrings to sections, in match order
var sectionHeadings = []struct {
	marker  string
	section section
}{
	{"# Goal", sectionGoal},
	{"# Description", sectionDescription},
	{"# Solution", sectionSolution},
	{"# Alternative", sectionAlternativeSolution},
	{"# Fallback", sectionFallbackSolution},
	{"# Step", sectionSteps},
	{"# Example", sectionExamples},
	{"# Context", sectionContext},
}

// ParseDocument parses a use case file that may start with a front-matter
// block. The "version" header is used when the body has no version marker.
func ParseDocument(text string) (*models.Document, error) {
	meta := ParseMetadata(text)
	useCases, err := ParseUseCases(meta.Content)
	if err != nil {
		return nil, err
	}

	if version, ok := meta.Meta["version"]; ok && extractVersion(meta.Content) == "" {
		for i := range useCases {
			useCases[i].Version = version
		}
	}

	return &models.Document{
		Meta:     meta.Meta,
		UseCases: useCases,
	}, nil
}

// ParseUseCases parses use case markup into use cases, in document order.
// Lines starting with "//" or "<!--" are comments. A *SyntaxError is
// returned for unknown section headings and empty categories.
func ParseUseCases(text string) ([]models.UseCase, error) {
	var useCases []models.UseCase
	var current *models.UseCase
	currentSection := sectionNone
	version := extractVersion(text)

	for i, raw := range strings.Split(text, "\n") {
		trimmed := strings.TrimLeftFunc(raw, unicode.IsSpace)
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "<!--") {
			continue
		}
		line := raw + "\n"

		if strings.HasPrefix(trimmed, "#") {
			switch {
			case strings.Contains(line, "# UseCase") || strings.Contains(line, "# Case"):
				if current != nil {
					useCases = append(useCases, *current)
				}
				current = newUseCase(line, version)
				currentSection = sectionNone
				if current.SubUseCase {
					currentSection = sectionSubStart
				}

			case strings.Contains(line, "# Category:"):
				_, value, _ := strings.Cut(line, ":")
				category := strings.TrimSpace(value)
				if category == "" {
					return nil, &SyntaxError{
						Line:    i + 1,
						Message: fmt.Sprintf("Missing category in: %s", strings.TrimSpace(line)),
						Err:     ErrMissingCategory,
					}
				}
				if current != nil {
					current.Category = category
				}

			default:
				next, ok := headingSection(line)
				if !ok {
					return nil, &SyntaxError{
						Line:    i + 1,
						Message: fmt.Sprintf("Unknown UseCase section: %s", strings.TrimSpace(line)),
						Err:     ErrUnknownSection,
					}
				}
				currentSection = next
			}
			continue
		}

		if strings.HasPrefix(trimmed, "----") {
			currentSection = sectionNone
		}

		if current != nil {
			appendLine(current, currentSection, line)
		}
	}

	if current != nil {
		useCases = append(useCases, *current)
	}
	return useCases, nil
}

func newUseCase(line, version string) *models.UseCase {
	header, conds := ParseConditions(line)
	if _, after, found := strings.Cut(header, ":"); found {
		header = after
	} else {
		// "### UseCase id" without the colon
		header = strings.TrimLeft(strings.TrimSpace(header), "# ")
		for _, keyword := range []string{"UseCase", "Case"} {
			if rest, ok := strings.CutPrefix(header, keyword); ok {
				header = rest
				break
			}
		}
	}
	id, limit := ParseUseCaseHeader(strings.TrimSpace(header))

	return &models.UseCase{
		ID:             id,
		ExecutionLimit: limit,
		Version:        version,
		Conditions:     conds,
		SubUseCase:     strings.Contains(line, "# Case"),
	}
}

func headingSection(line string) (section, bool) {
	for _, h := range sectionHeadings {
		if strings.Contains(line, h.marker) {
			return h.section, true
		}
	}
	return sectionNone, false
}

func appendLine(uc *models.UseCase, s section, line string) {
	switch s {
	case sectionDescription:
		uc.Description += line
	case sectionExamples:
		uc.Examples += line
	case sectionGoal:
		uc.Goal = append(uc.Goal, AsConditional(line))
	case sectionSolution, sectionSubStart:
		uc.Solution = append(uc.Solution, AsConditional(line))
	case sectionAlternativeSolution:
		uc.AlternativeSolution = append(uc.AlternativeSolution, AsConditional(line))
	case sectionFallbackSolution:
		uc.FallbackSolution = append(uc.FallbackSolution, AsConditional(line))
	case sectionSteps:
		uc.Steps = append(uc.Steps, AsConditional(line))
	case sectionContext:
		uc.Context = append(uc.Context, AsConditional(line))
	}
}
