package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSection is returned for a heading that names no known section
	ErrUnknownSection = errors.New("unknown use case section")

	// ErrMissingCategory is returned for a category heading without a value
	ErrMissingCategory = errors.New("missing category")

	// ErrNoUseCaseFiles is returned when the given paths hold no use case documents
	ErrNoUseCaseFiles = errors.New("no use case files found (*.md, *.markdown)")
)

// SyntaxError describes a structural problem in use case markup.
// It aborts parsing of the whole document.
type SyntaxError struct {
	Line    int    // 1-based line number in the parsed text
	Message string // Human readable message, e.g. "Unknown UseCase section: #### Foo"
	Err     error  // One of the sentinel errors above
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
