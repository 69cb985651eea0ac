package models

import "time"

// Validation error codes
const (
	CodeSyntaxError    = "SYNTAX_ERROR"
	CodeDuplicateIDs   = "DUPLICATE_USE_CASE_IDS"
	CodeReusedExamples = "REUSED_EXAMPLES"
	CodeMissingRefs    = "MISSING_REFERENCES"
)

// ValidationError is a document level finding that names the use cases involved
type ValidationError struct {
	Code     string   `json:"code"`
	UseCases []string `json:"useCases"`
	Message  string   `json:"message"`
}

// SyntaxIssue is a lexical finding. Line is nil when it is not line specific.
type SyntaxIssue struct {
	Line    *int   `json:"line"`
	Message string `json:"message"`
}

// ValidationResult is the report for one document
type ValidationResult struct {
	Source       string            `json:"source,omitempty"`
	UseCases     []UseCase         `json:"useCases"`
	UseCaseCount int               `json:"useCaseCount"`
	Errors       []ValidationError `json:"errors"`
	SyntaxErrors []SyntaxIssue     `json:"syntaxErrors"`
	UsedTools    []string          `json:"usedTools"`
	References   []string          `json:"references"`
}

// Valid reports whether the document produced no findings
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0 && len(r.SyntaxErrors) == 0
}

// CompileSummary describes one compiler run
type CompileSummary struct {
	Files      int           `json:"files"`
	UseCases   int           `json:"useCases"`
	Resolved   int           `json:"resolved"`
	Rendered   int           `json:"rendered"`
	Unresolved []string      `json:"unresolved,omitempty"`
	Output     string        `json:"output,omitempty"`
	Duration   time.Duration `json:"duration"`
}
