package models

import (
	"strings"

	"github.com/harrison/adl/internal/conditions"
)

// UseCase represents one parsed use case block
type UseCase struct {
	ID                  string        `json:"id"`                       // Use case identifier
	ExecutionLimit      *int          `json:"executionLimit,omitempty"` // Optional limit from "id (n)" headers
	Version             string        `json:"version,omitempty"`        // Document-level version marker
	Description         string        `json:"description"`              // Raw description text
	Category            string        `json:"category,omitempty"`       // Category declared via "#### Category: x"
	Goal                []Conditional `json:"goal,omitempty"`
	Steps               []Conditional `json:"steps,omitempty"`
	Solution            []Conditional `json:"solution,omitempty"`
	AlternativeSolution []Conditional `json:"alternativeSolution,omitempty"`
	FallbackSolution    []Conditional `json:"fallbackSolution,omitempty"`
	Context             []Conditional `json:"context,omitempty"`
	Examples            string        `json:"examples,omitempty"`   // Raw example block, one example per line
	Conditions          []string      `json:"conditions,omitempty"` // Conditions from the header line
	SubUseCase          bool          `json:"subUseCase"`           // Declared with "### Case:"
}

// HasCategory reports whether a category was declared
func (u *UseCase) HasCategory() bool {
	return u.Category != ""
}

// Matches reports whether the use case header conditions are satisfied
func (u *UseCase) Matches(active []string) bool {
	return conditions.Matches(u.Conditions, active)
}

// ExtractReferences returns the ids of all use cases referenced from the
// steps and solutions, in first-seen order
func (u *UseCase) ExtractReferences() []string {
	var refs []string
	for _, section := range u.referenceSections() {
		for _, c := range section {
			refs = conditions.Union(refs, c.UseCaseRefs)
		}
	}
	return refs
}

// ExtractTools returns the names of all functions used in the steps and
// solutions, in first-seen order
func (u *UseCase) ExtractTools() []string {
	var tools []string
	for _, section := range u.referenceSections() {
		for _, c := range section {
			tools = conditions.Union(tools, c.Functions)
		}
	}
	return tools
}

func (u *UseCase) referenceSections() [][]Conditional {
	return [][]Conditional{u.Steps, u.Solution, u.AlternativeSolution, u.FallbackSolution}
}

// AllConditions returns every condition token declared in the use case:
// the header plus every conditional section
func (u *UseCase) AllConditions() []string {
	all := conditions.Union(u.Conditions)
	for _, section := range [][]Conditional{u.Goal, u.Steps, u.Solution, u.AlternativeSolution, u.FallbackSolution, u.Context} {
		for _, c := range section {
			all = conditions.Union(all, c.Conditions)
		}
	}
	return all
}

// Conditional is one line of templated text together with its visibility predicate
type Conditional struct {
	Text           string   `json:"text"`
	Conditions     []string `json:"conditions,omitempty"`
	Functions      []string `json:"functions,omitempty"`   // Names from "@name()" calls
	UseCaseRefs    []string `json:"useCaseRefs,omitempty"` // Ids from "#id" references
	EndConditional bool     `json:"endConditional,omitempty"`
}

// Matches reports whether the line is visible for the active conditions.
// A line without conditions is always visible.
func (c Conditional) Matches(active []string) bool {
	return conditions.Matches(c.Conditions, active)
}

// Append returns a copy of the conditional with text appended
func (c Conditional) Append(text string) Conditional {
	c.Text += text
	return c
}

// Document is a parsed use case file: its front-matter headers and use cases
type Document struct {
	Meta     map[string]string `json:"meta"`
	UseCases []UseCase        `json:"useCases"`
}

// IDs returns the ids of the given use cases in order
func IDs(useCases []UseCase) []string {
	ids := make([]string, 0, len(useCases))
	for _, uc := range useCases {
		ids = append(ids, uc.ID)
	}
	return ids
}

// FindUseCase returns the use case with the given id
func FindUseCase(useCases []UseCase, id string) (UseCase, bool) {
	for _, uc := range useCases {
		if uc.ID == id {
			return uc, true
		}
	}
	return UseCase{}, false
}

// RefID returns the id a "#dir/id" reference points to: its last path segment
func RefID(ref string) string {
	if idx := strings.LastIndex(ref, "/"); idx >= 0 {
		return ref[idx+1:]
	}
	return ref
}
