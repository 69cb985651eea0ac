// Package extract pulls structured elements out of rendered use case text:
// flow options ("[yes] do this"), boxes, and the use case and step ids an
// assistant reply reports.
package extract

import (
	"regexp"
	"strings"

	"github.com/harrison/adl/internal/formatter"
	"github.com/harrison/adl/internal/models"
	"github.com/harrison/adl/internal/parser"
)

// flowOptionRegex rejects commands starting with "(" so markdown links never match
var flowOptionRegex = regexp.MustCompile(`^\[(.*?)\]\s*([^(]+)`)

// FlowOption is a "[option] command" line
type FlowOption struct {
	Option  string `json:"option"`
	Command string `json:"command"`
}

// FlowOptions is a text split into its flow options and the remaining lines
type FlowOptions struct {
	ContentWithoutOptions string       `json:"contentWithoutOptions"`
	Options               []FlowOption `json:"options"`
}

// ExtractFlowOption returns the flow option on line, or nil when the line
// has none or its command is blank.
func ExtractFlowOption(line string) *FlowOption {
	m := flowOptionRegex.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil || strings.TrimSpace(m[2]) == "" {
		return nil
	}
	return &FlowOption{Option: m[1], Command: m[2]}
}

// ExtractFlowOptions removes every flow option line from text. Other lines,
// blank ones included, are kept verbatim.
func ExtractFlowOptions(text string) FlowOptions {
	var options []FlowOption
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if opt := ExtractFlowOption(line); opt != nil {
			options = append(options, *opt)
			continue
		}
		kept = append(kept, line)
	}
	return FlowOptions{
		ContentWithoutOptions: strings.Join(kept, "\n"),
		Options:               options,
	}
}

// RemoveFlowOptions returns text without its flow option lines
func RemoveFlowOptions(text string) string {
	return ExtractFlowOptions(text).ContentWithoutOptions
}

// FlowOptionsFor renders a single use case for the active conditions and
// extracts its flow options. Sub use cases are rendered like regular ones.
func FlowOptionsFor(uc models.UseCase, active []string) (FlowOptions, error) {
	uc.SubUseCase = false
	text, err := formatter.Format([]models.UseCase{uc}, formatter.Options{Conditions: active})
	if err != nil {
		return FlowOptions{}, err
	}
	return ExtractFlowOptions(text), nil
}

// ReferencedUseCase returns the first use case referenced by the option's
// command, if it exists in all.
func (o FlowOption) ReferencedUseCase(all []models.UseCase) (models.UseCase, bool) {
	_, refs := parser.ParseUseCaseRefs(o.Command)
	if len(refs) == 0 {
		return models.UseCase{}, false
	}
	return models.FindUseCase(all, models.RefID(refs[0]))
}
