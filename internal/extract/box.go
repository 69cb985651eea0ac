package extract

import (
	"regexp"
	"strings"
)

var boxRegex = regexp.MustCompile(`^\[(.*?)\]\s*(.*)`)

// Box is the older "[option] command" form. Unlike FlowOption it does not
// guard against markdown links and the line is not trimmed.
type Box struct {
	Option  string `json:"option"`
	Command string `json:"command"`
}

// Boxes is a text split into its boxes and the remaining lines
type Boxes struct {
	CleanedContent string `json:"cleanedContent"`
	Boxes          []Box  `json:"boxes"`
}

// ExtractBox returns the box on line, or nil when there is none or its
// command is blank.
func ExtractBox(line string) *Box {
	m := boxRegex.FindStringSubmatch(line)
	if m == nil || strings.TrimSpace(m[2]) == "" {
		return nil
	}
	return &Box{Option: m[1], Command: m[2]}
}

// ExtractBoxes removes every box line from text
func ExtractBoxes(text string) Boxes {
	var boxes []Box
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if box := ExtractBox(line); box != nil {
			boxes = append(boxes, *box)
			continue
		}
		kept = append(kept, line)
	}
	return Boxes{CleanedContent: strings.Join(kept, "\n"), Boxes: boxes}
}
