// Package formatter renders parsed use cases back to canonical markup for a
// given set of active conditions.
package formatter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/harrison/adl/internal/conditions"
	"github.com/harrison/adl/internal/models"
)

const useCaseTerminator = "\n----\n\n"

// OutputOptions controls which optional sections are rendered
type OutputOptions struct {
	SkipSolution bool // Omit steps and solutions
	SkipExamples bool // Omit examples
}

// Hook post-processes one rendered use case block before it is terminated.
// all holds every known use case, including sub use cases. active is the
// condition set the block was rendered with: the caller's conditions plus the
// use case's step condition and the regex conditions matched by the input.
type Hook func(useCase models.UseCase, block string, all []models.UseCase, active []string) (string, error)

// CodeBlockProcessor rewrites fenced code blocks inside rendered section text
type CodeBlockProcessor interface {
	Process(text string) (string, error)
}

// Options configures Format. The zero value renders every unconditioned use
// case with its primary solution and all examples.
type Options struct {
	UseAlternatives []string           // Ids that render their alternative solution
	UseFallbacks    []string           // Ids that render their fallback solution
	Conditions      []string           // Active condition set
	ExampleLimit    int                // Maximum example lines per use case, <= 0 for no limit
	Output          OutputOptions      // Section toggles
	UsedUseCases    []string           // Usage history, one entry per previous use
	AllUseCases     []models.UseCase   // Corpus passed to Hook, defaults to the formatted use cases
	Input           string             // Current user input, scanned by regex conditions
	Hook            Hook               // Optional per use case post-processing
	Processor       CodeBlockProcessor // Optional code block processing
}

// Format renders the use cases that are visible for opts.Conditions.
// Sub use cases are never rendered at the top level.
func Format(useCases []models.UseCase, opts Options) (string, error) {
	all := opts.AllUseCases
	if all == nil {
		all = useCases
	}

	var sb strings.Builder
	for _, uc := range useCases {
		if uc.SubUseCase {
			continue
		}
		regexMatches := conditions.RegexMatches(uc.AllConditions(), opts.Input)
		if !uc.Matches(conditions.Union(opts.Conditions, regexMatches)) {
			continue
		}

		block, err := FormatUseCase(uc, opts, regexMatches)
		if err != nil {
			return "", err
		}
		if opts.Hook != nil {
			active := activeConditions(uc, opts, conditions.Union(
				regexMatches,
				conditions.RegexMatches(subCaseConditions(uc, all), opts.Input),
			))
			block, err = opts.Hook(uc, block, all, active)
			if err != nil {
				return "", fmt.Errorf("failed to process use case %s: %w", uc.ID, err)
			}
		}
		sb.WriteString(block)
		sb.WriteString(useCaseTerminator)
	}

	return strings.ReplaceAll(sb.String(), "\n\n\n", "\n\n"), nil
}

// FormatUseCase renders a single use case block without the terminator and
// without checking its header conditions. regexMatches are the regex
// conditions already matched against the user input.
func FormatUseCase(uc models.UseCase, opts Options, regexMatches []string) (string, error) {
	active := activeConditions(uc, opts, regexMatches)

	var sb strings.Builder
	fmt.Fprintf(&sb, "### UseCase: %s\n#### Description\n%s\n", uc.ID, uc.Description)

	sections := []struct {
		heading string
		lines   []models.Conditional
		render  bool
	}{
		{"#### Goal\n", uc.Goal, len(uc.Goal) > 0},
		{"#### Steps\n", uc.Steps, len(uc.Steps) > 0 && !opts.Output.SkipSolution},
		{"#### Solution\n", selectSolution(uc, opts), !opts.Output.SkipSolution},
		{"#### Context\n", uc.Context, len(uc.Context) > 0},
	}
	for _, s := range sections {
		if !s.render {
			continue
		}
		text, err := Output(s.lines, active, opts.Processor)
		if err != nil {
			return "", fmt.Errorf("failed to render use case %s: %w", uc.ID, err)
		}
		sb.WriteString(s.heading)
		sb.WriteString(text)
	}

	if uc.Examples != "" && !opts.Output.SkipExamples {
		sb.WriteString("#### Examples\n")
		examples := strings.Split(uc.Examples, "\n")
		if opts.ExampleLimit > 0 && len(examples) > opts.ExampleLimit {
			examples = examples[:opts.ExampleLimit]
		}
		for _, example := range examples {
			sb.WriteString(example)
			sb.WriteString("\n")
		}
	}

	return sb.String(), nil
}

// activeConditions is the condition set a use case is rendered with
func activeConditions(uc models.UseCase, opts Options, regexMatches []string) []string {
	return conditions.Union(
		opts.Conditions,
		[]string{conditions.Step(countUses(opts.UsedUseCases, uc.ID))},
		regexMatches,
	)
}

// subCaseConditions collects the conditions declared by the sub use cases
// uc references
func subCaseConditions(uc models.UseCase, all []models.UseCase) []string {
	var declared []string
	for _, ref := range uc.ExtractReferences() {
		if sub, ok := models.FindUseCase(all, models.RefID(ref)); ok && sub.SubUseCase {
			declared = conditions.Union(declared, sub.AllConditions())
		}
	}
	return declared
}

// selectSolution picks exactly one solution: fallback over alternative over primary
func selectSolution(uc models.UseCase, opts Options) []models.Conditional {
	useFallback := slices.Contains(opts.UseFallbacks, uc.ID) && len(uc.FallbackSolution) > 0
	useAlternative := slices.Contains(opts.UseAlternatives, uc.ID) && len(uc.AlternativeSolution) > 0

	switch {
	case useFallback:
		return uc.FallbackSolution
	case useAlternative:
		return uc.AlternativeSolution
	default:
		return uc.Solution
	}
}

func countUses(used []string, id string) int {
	n := 0
	for _, u := range used {
		if u == id {
			n++
		}
	}
	return n
}
