package formatter

import (
	"strings"

	"github.com/harrison/adl/internal/conditions"
	"github.com/harrison/adl/internal/models"
)

// Output renders a list of conditional lines for the active conditions.
//
// A line with conditions opens a group; lines are buffered while the group
// is open. A "</>" line closes the group and keeps the buffer only when the
// group matched. Each buffered line must also match on its own. The else
// token is added to active when no explicit group in the list matches.
func Output(lines []models.Conditional, active []string, processor CodeBlockProcessor) (string, error) {
	groups := make([][]string, 0, len(lines))
	for _, line := range lines {
		groups = append(groups, line.Conditions)
	}
	active = conditions.WithElse(groups, active)

	var out, buf strings.Builder
	var group []string

	for _, line := range lines {
		if len(line.Conditions) == 0 && line.EndConditional {
			if conditions.Matches(group, active) {
				out.WriteString(buf.String())
				if strings.TrimSpace(line.Text) != "" {
					out.WriteString(line.Text)
					out.WriteString("\n")
				}
			}
			buf.Reset()
			group = nil
			continue
		}

		if len(line.Conditions) > 0 {
			group = line.Conditions
			out.WriteString(buf.String())
			buf.Reset()
		}
		if line.Matches(active) {
			buf.WriteString(line.Text)
			buf.WriteString("\n")
		}
	}
	out.WriteString(buf.String())

	if processor == nil {
		return out.String(), nil
	}
	return processor.Process(out.String())
}
