package display

import (
	"fmt"
	"io"
	"strings"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Items      []string // Affected ids or files (optional)
	ItemLabel  string   // Heading for Items, "Affected" by default
	Suggestion string   // Action to take (optional)
}

// Display writes the warning, in yellow on a terminal
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString("Warning: " + w.Title + "\n")
	if w.Message != "" {
		b.WriteString("    " + w.Message + "\n")
	}
	if len(w.Items) > 0 {
		label := w.ItemLabel
		if label == "" {
			label = "Affected"
		}
		fmt.Fprintf(&b, "    %s (%d):\n", label, len(w.Items))
		for i, item := range w.Items {
			fmt.Fprintf(&b, "      %d. %s\n", i+1, item)
		}
	}
	if w.Suggestion != "" {
		b.WriteString("    Suggestion: " + w.Suggestion + "\n")
	}

	paint(out, colorWarn...).Fprint(out, b.String())
}

// UnresolvedWarning reports references no source could resolve
func UnresolvedWarning(ids []string) Warning {
	items := make([]string, 0, len(ids))
	for _, id := range ids {
		items = append(items, "#"+id)
	}
	return Warning{
		Title:      "Unresolved use case references",
		Items:      items,
		ItemLabel:  "References",
		Suggestion: "pass --resolve <dir> or save the referenced documents to the store",
	}
}

// BaseFilesWarning reports base_ fragments skipped while scanning directories
func BaseFilesWarning(files []string) Warning {
	return Warning{
		Title:     "Skipped base_ fragment documents",
		Message:   "Fragments are only read when named explicitly or used to resolve references.",
		Items:     files,
		ItemLabel: "Files",
	}
}
