package parser

import (
	"strings"
)

const frontMatterDelimiter = "---"

// MetadataResult holds the front-matter headers and the remaining body of a document
type MetadataResult struct {
	Meta    map[string]string
	Content string
}

// ParseMetadata separates "Key: Value" headers enclosed by "---" lines at the
// top of input from the body. Header lines without a colon, or with the colon
// in first position, are ignored. The returned content is trimmed.
func ParseMetadata(input string) MetadataResult {
	lines := strings.Split(input, "\n")
	meta := make(map[string]string)
	var content strings.Builder

	inHeader := len(lines) > 0 && strings.TrimSpace(lines[0]) == frontMatterDelimiter

	for i, line := range lines {
		if i == 0 && inHeader {
			continue
		}

		if inHeader {
			if strings.TrimSpace(line) == frontMatterDelimiter {
				inHeader = false
				continue
			}
			if idx := strings.Index(line, ":"); idx > 0 {
				meta[strings.TrimSpace(line[:idx])] = strings.TrimSpace(line[idx+1:])
			}
			continue
		}

		content.WriteString(line)
		content.WriteString("\n")
	}

	return MetadataResult{
		Meta:    meta,
		Content: strings.TrimSpace(content.String()),
	}
}
