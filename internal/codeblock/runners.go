package codeblock

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLRunner re-emits yaml blocks in canonical form: two-space indentation,
// no document markers. Invalid YAML is an error.
type YAMLRunner struct{}

// CanHandle accepts "yaml" and "yml" blocks
func (YAMLRunner) CanHandle(block Block) bool {
	lang := strings.ToLower(block.Language)
	return lang == "yaml" || lang == "yml"
}

// Run parses and re-encodes the block
func (YAMLRunner) Run(_ context.Context, block Block) (string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(block.Code), &node); err != nil {
		return "", fmt.Errorf("failed to parse yaml: %w", err)
	}
	if node.Kind == 0 {
		return fence + "yaml\n" + fence, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return "", fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode yaml: %w", err)
	}

	return fence + "yaml\n" + strings.TrimRight(buf.String(), "\n") + "\n" + fence, nil
}

// CommentRunner removes "comment" blocks, which hold notes for authors only
type CommentRunner struct{}

// CanHandle accepts "comment" blocks
func (CommentRunner) CanHandle(block Block) bool {
	return strings.EqualFold(block.Language, "comment")
}

// Run always yields the empty string
func (CommentRunner) Run(context.Context, Block) (string, error) {
	return "", nil
}

// DefaultRunners returns the runners enabled by "render.code_blocks"
func DefaultRunners() []Runner {
	return []Runner{YAMLRunner{}, CommentRunner{}}
}
