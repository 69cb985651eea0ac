// Package validation checks use case documents and reports problems
// instead of failing: syntax errors, duplicate ids, reused examples,
// unbalanced brackets and quotes, mixed indentation and, optionally,
// references no source can resolve. It also lists the tools and
// references a document uses.
package validation

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/harrison/adl/internal/conditions"
	"github.com/harrison/adl/internal/models"
	"github.com/harrison/adl/internal/parser"
	"github.com/harrison/adl/internal/resolver"
)

// Options configures Validate
type Options struct {
	// Validators run on successfully parsed documents; nil means DefaultValidators
	Validators []Validator
	// References, when set, is used to report references that resolve nowhere
	References resolver.Source
}

var (
	toolCallRegex    = regexp2.MustCompile(`(?<=\s|^)@([0-9A-Za-z_\-]+?)\(`, regexp2.Multiline)
	toolKeywordRegex = regexp2.MustCompile(`\b(?:tools|uses|use|tool)\b[:=]?\s*([A-Za-z0-9_.-]+)`, regexp2.IgnoreCase)
	useCaseRefRegex  = regexp2.MustCompile(`(?<=\W|^)#([0-9A-Za-z_/\-]+)(?=[ .,]|$)`, regexp2.Multiline)
	urlRegex         = regexp.MustCompile(`https?://[^\s'"<>]+`)
	filePathRegex    = regexp.MustCompile(`(?:[A-Za-z]:)?[\\/][\w\-./\\]+\.[a-zA-Z0-9]+`)
	refKeywordRegex  = regexp2.MustCompile(`\bref(?:erence)?s?\b[:=]?\s*([A-Za-z0-9_./:-]+)`, regexp2.IgnoreCase)
	indentedRegex    = regexp.MustCompile(`^ {2,}`)
)

// Validate checks a document. Lexical checks always run; if the document
// parses, the validators run on its use cases and tools and references are
// taken from them, otherwise they are scraped from the raw text.
func Validate(ctx context.Context, source, text string, opts Options) (models.ValidationResult, error) {
	result := models.ValidationResult{
		Source:       source,
		UseCases:     []models.UseCase{},
		Errors:       []models.ValidationError{},
		SyntaxErrors: CheckSyntax(text),
		UsedTools:    []string{},
		References:   []string{},
	}

	doc, err := parser.ParseDocument(text)
	if err != nil {
		issue := models.SyntaxIssue{Message: fmt.Sprintf("Parsing error: %s", err.Error())}
		var syntaxErr *parser.SyntaxError
		if errors.As(err, &syntaxErr) {
			line := syntaxErr.Line
			issue = models.SyntaxIssue{Line: &line, Message: fmt.Sprintf("Parsing error: %s", syntaxErr.Message)}
		}
		result.SyntaxErrors = append(result.SyntaxErrors, issue)
		result.Errors = append(result.Errors, models.ValidationError{
			Code:     models.CodeSyntaxError,
			UseCases: []string{},
			Message:  err.Error(),
		})
		result.UsedTools = sorted(extractToolsFromText(text))
		result.References = sorted(extractReferencesFromText(text))
		return result, nil
	}

	if doc.UseCases != nil {
		result.UseCases = doc.UseCases
	}
	result.UseCaseCount = len(doc.UseCases)

	validators := opts.Validators
	if validators == nil {
		validators = DefaultValidators()
	}
	for _, v := range validators {
		if finding := v.Validate(doc.UseCases); finding != nil {
			result.Errors = append(result.Errors, *finding)
		}
	}

	var tools, refs []string
	for i := range doc.UseCases {
		tools = conditions.Union(tools, doc.UseCases[i].ExtractTools())
		refs = conditions.Union(refs, doc.UseCases[i].ExtractReferences())
	}
	result.UsedTools = sorted(tools)
	result.References = sorted(refs)

	if opts.References != nil {
		resolved, err := resolver.Resolve(ctx, doc.UseCases, opts.References)
		if err != nil {
			return result, fmt.Errorf("failed to check references: %w", err)
		}
		if len(resolved.Unresolved) > 0 {
			result.Errors = append(result.Errors, models.ValidationError{
				Code:     models.CodeMissingRefs,
				UseCases: resolved.Unresolved,
				Message:  fmt.Sprintf("Referenced use cases not found: %s", strings.Join(resolved.Unresolved, ", ")),
			})
		}
	}

	return result, nil
}

var bracketPairs = map[rune]rune{'(': ')', '{': '}', '[': ']'}

type openBracket struct {
	char rune
	line int
}

// CheckSyntax runs the lexical checks: bracket balance across the whole
// text, quote balance per line and mixed tab/space indentation.
func CheckSyntax(text string) []models.SyntaxIssue {
	issues := []models.SyntaxIssue{}
	lines := strings.Split(text, "\n")

	var stack []openBracket
	for i, line := range lines {
		lineNum := i + 1
		for pos, char := range []rune(line) {
			if _, ok := bracketPairs[char]; ok {
				stack = append(stack, openBracket{char: char, line: lineNum})
				continue
			}
			if !isClosing(char) {
				continue
			}
			if len(stack) == 0 {
				issues = append(issues, lineIssue(lineNum, "Unmatched closing '%c' at position %d", char, pos+1))
				continue
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if bracketPairs[open.char] != char {
				issues = append(issues, lineIssue(lineNum, "Mismatched '%c' with '%c' at position %d", open.char, char, pos+1))
			}
		}
	}
	for _, open := range stack {
		issues = append(issues, lineIssue(open.line, "Unclosed '%c'", open.char))
	}

	for i, line := range lines {
		if strings.Count(line, "'")%2 != 0 {
			issues = append(issues, lineIssue(i+1, "Unclosed single quote"))
		}
		if strings.Count(line, `"`)%2 != 0 {
			issues = append(issues, lineIssue(i+1, "Unclosed double quote"))
		}
	}

	var hasTabs, hasSpaces bool
	for _, line := range lines {
		hasTabs = hasTabs || strings.HasPrefix(line, "\t")
		hasSpaces = hasSpaces || indentedRegex.MatchString(line)
	}
	if hasTabs && hasSpaces {
		issues = append(issues, models.SyntaxIssue{Message: "Mixed tabs and spaces for indentation"})
	}

	return issues
}

func isClosing(char rune) bool {
	for _, c := range bracketPairs {
		if c == char {
			return true
		}
	}
	return false
}

func lineIssue(line int, format string, args ...interface{}) models.SyntaxIssue {
	return models.SyntaxIssue{Line: &line, Message: fmt.Sprintf(format, args...)}
}

// extractToolsFromText scrapes tool names from text that failed to parse
func extractToolsFromText(text string) []string {
	tools := groupMatches(toolCallRegex, text)
	return conditions.Union(tools, groupMatches(toolKeywordRegex, text))
}

// extractReferencesFromText scrapes use case refs, URLs, file paths and
// "ref:" tokens from text that failed to parse
func extractReferencesFromText(text string) []string {
	refs := groupMatches(useCaseRefRegex, text)
	refs = conditions.Union(refs, urlRegex.FindAllString(text, -1))
	refs = conditions.Union(refs, filePathRegex.FindAllString(text, -1))
	return conditions.Union(refs, groupMatches(refKeywordRegex, text))
}

func groupMatches(re *regexp2.Regexp, text string) []string {
	var values []string
	m, err := re.FindStringMatch(text)
	for err == nil && m != nil {
		values = append(values, m.GroupByNumber(1).String())
		m, err = re.FindNextMatch(m)
	}
	return values
}

func sorted(values []string) []string {
	out := append([]string{}, values...)
	sort.Strings(out)
	return out
}
