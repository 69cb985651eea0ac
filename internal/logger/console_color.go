package logger

import (
	"fmt"

	"github.com/fatih/color"
)

// colorScheme holds the colors used by summaries.
// Green: success, yellow: warnings, cyan: labels.
type colorScheme struct {
	header  *color.Color
	success *color.Color
	warn    *color.Color
	label   *color.Color
}

// newColorScheme returns the summary colors, all disabled when enabled is false
func newColorScheme(enabled bool) *colorScheme {
	scheme := &colorScheme{
		header:  color.New(color.Bold),
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
	}
	if !enabled {
		for _, c := range []*color.Color{scheme.header, scheme.success, scheme.warn, scheme.label} {
			c.DisableColor()
		}
	}
	return scheme
}

// metric formats "label: value" with a colored label
func (s *colorScheme) metric(label string, value interface{}) string {
	return fmt.Sprintf("%s: %v", s.label.Sprint(label), value)
}
