package validation

import (
	"fmt"
	"strings"

	"github.com/harrison/adl/internal/models"
)

// Validator checks a parsed document and returns a finding, or nil
type Validator interface {
	Validate(useCases []models.UseCase) *models.ValidationError
}

// ValidatorFunc adapts a function to Validator
type ValidatorFunc func(useCases []models.UseCase) *models.ValidationError

// Validate calls f
func (f ValidatorFunc) Validate(useCases []models.UseCase) *models.ValidationError {
	return f(useCases)
}

// DefaultValidators returns the document checks run by Validate
func DefaultValidators() []Validator {
	return []Validator{
		ValidatorFunc(UniqueUseCaseIDs),
		ValidatorFunc(UniqueExamples),
	}
}

// UniqueUseCaseIDs reports ids declared more than once, in first-seen order
func UniqueUseCaseIDs(useCases []models.UseCase) *models.ValidationError {
	counts := make(map[string]int)
	var order []string
	for _, uc := range useCases {
		if counts[uc.ID] == 0 {
			order = append(order, uc.ID)
		}
		counts[uc.ID]++
	}

	var duplicates []string
	for _, id := range order {
		if counts[id] > 1 {
			duplicates = append(duplicates, id)
		}
	}
	if len(duplicates) == 0 {
		return nil
	}
	return &models.ValidationError{
		Code:     models.CodeDuplicateIDs,
		UseCases: duplicates,
		Message:  fmt.Sprintf("Duplicate use case IDs found: %s", strings.Join(duplicates, ", ")),
	}
}

// UniqueExamples reports the first example line shared by two different
// use cases. Lines are compared trimmed; blank lines are ignored.
func UniqueExamples(useCases []models.UseCase) *models.ValidationError {
	owners := make(map[string]string)
	for _, uc := range useCases {
		for _, example := range strings.Split(uc.Examples, "\n") {
			trimmed := strings.TrimSpace(example)
			if trimmed == "" {
				continue
			}
			if owner, ok := owners[trimmed]; ok && owner != uc.ID {
				ids := []string{owner, uc.ID}
				return &models.ValidationError{
					Code:     models.CodeReusedExamples,
					UseCases: ids,
					Message:  fmt.Sprintf("The same examples were used in multiple use cases: %s", strings.Join(ids, ", ")),
				}
			}
			owners[trimmed] = uc.ID
		}
	}
	return nil
}
