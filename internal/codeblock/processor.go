// Package codeblock replaces fenced code blocks in rendered use case text
// with the output of registered runners.
package codeblock

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const fence = "```"

// ErrExecution is wrapped by errors returned from a failing runner
var ErrExecution = errors.New("code block execution failed")

// Block is one fenced code block
type Block struct {
	Code     string
	Language string
}

// Runner executes or rewrites code blocks of the languages it handles
type Runner interface {
	CanHandle(block Block) bool
	Run(ctx context.Context, block Block) (string, error)
}

// Logger receives debug output about handled blocks
type Logger interface {
	LogDebug(message string)
}

// Processor hands fenced blocks to the first runner that can handle them.
// Blocks no runner handles, and unterminated blocks, are left unchanged.
type Processor struct {
	runners []Runner
	log     Logger
}

// NewProcessor creates a processor with the given runners, consulted in order.
// log may be nil.
func NewProcessor(log Logger, runners ...Runner) *Processor {
	return &Processor{runners: runners, log: log}
}

// Process implements the formatter's code block hook
func (p *Processor) Process(text string) (string, error) {
	return p.ProcessContext(context.Background(), text)
}

// ProcessContext replaces every handled block with its runner's output
func (p *Processor) ProcessContext(ctx context.Context, text string) (string, error) {
	blocks := extractBlocks(text)
	if len(blocks) == 0 {
		return text, nil
	}

	result := text
	for _, b := range blocks {
		runner := p.runnerFor(b.block)
		if runner == nil {
			p.debug(fmt.Sprintf("No runner for code block with language %q", b.block.Language))
			continue
		}

		output, err := runner.Run(ctx, b.block)
		if err != nil {
			return "", fmt.Errorf("%w: %s block: %v", ErrExecution, b.block.Language, err)
		}
		result = strings.Replace(result, b.original, output, 1)
		p.debug(fmt.Sprintf("Replaced %s code block", b.block.Language))
	}
	return result, nil
}

// CanHandleLanguage reports whether any runner accepts blocks of the language
func (p *Processor) CanHandleLanguage(language string) bool {
	return p.runnerFor(Block{Language: language}) != nil
}

func (p *Processor) debug(message string) {
	if p.log != nil {
		p.log.LogDebug(message)
	}
}

func (p *Processor) runnerFor(block Block) Runner {
	for _, r := range p.runners {
		if r.CanHandle(block) {
			return r
		}
	}
	return nil
}

type extractedBlock struct {
	original string
	block    Block
}

// extractBlocks finds fenced blocks line by line; fences may be indented
func extractBlocks(text string) []extractedBlock {
	var blocks []extractedBlock
	lines := strings.Split(text, "\n")

	for i := 0; i < len(lines); i++ {
		opening := strings.TrimLeft(lines[i], " \t")
		if !strings.HasPrefix(opening, fence) {
			continue
		}
		language := strings.TrimSpace(strings.TrimPrefix(opening, fence))

		end := i + 1
		for end < len(lines) && !strings.HasPrefix(strings.TrimLeft(lines[end], " \t"), fence) {
			end++
		}
		if end == len(lines) {
			break
		}

		blocks = append(blocks, extractedBlock{
			original: strings.Join(lines[i:end+1], "\n"),
			block: Block{
				Code:     strings.Join(lines[i+1:end], "\n"),
				Language: language,
			},
		})
		i = end
	}
	return blocks
}
