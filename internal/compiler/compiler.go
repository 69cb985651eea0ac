// Package compiler loads use case documents, resolves their references and
// renders the prompt for one set of active conditions and usage history.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harrison/adl/internal/conditions"
	"github.com/harrison/adl/internal/filelock"
	"github.com/harrison/adl/internal/formatter"
	"github.com/harrison/adl/internal/models"
	"github.com/harrison/adl/internal/parser"
	"github.com/harrison/adl/internal/render"
	"github.com/harrison/adl/internal/resolver"
	"github.com/harrison/adl/internal/store"
)

// Logger defines the interface for logging compiler progress and results.
type Logger interface {
	LogDebug(message string)
	LogUnresolved(ids []string)
	LogCompileSummary(summary models.CompileSummary)
}

// DocumentStore loads stored documents by name
type DocumentStore interface {
	Get(ctx context.Context, name string) (*store.Document, error)
}

// Options describes one compilation
type Options struct {
	Paths     []string // Files or directories holding use case documents
	Documents []string // Names of stored documents

	Conditions   []string
	Input        string   // Current user input for regex conditions
	Used         []string // Usage history, one entry per previous use
	Alternatives []string // Extra ids that render their alternative solution
	Fallbacks    []string // Extra ids that render their fallback solution

	FallbackLimit int // Uses before a fallback is selected, <= 0 disables
	ExampleLimit  int
	Output        formatter.OutputOptions

	HTML    bool   // Render the result to HTML
	OutPath string // Write the result here when set
}

// Result is the compiled prompt and its summary
type Result struct {
	Markup   string
	HTML     string
	UseCases []models.UseCase // Everything formatted, including resolved references
	Summary  models.CompileSummary
}

// Compiler turns use case documents into prompts
type Compiler struct {
	references resolver.Source
	documents  DocumentStore
	processor  formatter.CodeBlockProcessor
	renderer   *render.Renderer
	logger     Logger
}

// Option configures a Compiler
type Option func(*Compiler)

// WithReferences sets the source consulted for references the loaded
// documents do not define
func WithReferences(src resolver.Source) Option {
	return func(c *Compiler) { c.references = src }
}

// WithDocumentStore enables Options.Documents
func WithDocumentStore(ds DocumentStore) Option {
	return func(c *Compiler) { c.documents = ds }
}

// WithProcessor sets the code block processor applied to rendered sections
func WithProcessor(p formatter.CodeBlockProcessor) Option {
	return func(c *Compiler) { c.processor = p }
}

// New creates a Compiler. The logger parameter is optional and can be nil.
func New(logger Logger, opts ...Option) *Compiler {
	c := &Compiler{
		renderer: render.New(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile loads, resolves, formats and optionally renders and writes the
// prompt. Unresolved references are logged and reported, never fatal.
func (c *Compiler) Compile(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	useCases, files, err := c.load(ctx, opts)
	if err != nil {
		return nil, err
	}
	c.debug(fmt.Sprintf("Loaded %d use cases from %d documents", len(useCases), files))

	resolved, err := resolver.Resolve(ctx, useCases, c.references)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve references: %w", err)
	}
	if len(resolved.Unresolved) > 0 && c.logger != nil {
		c.logger.LogUnresolved(resolved.Unresolved)
	}

	alternatives, fallbacks := SelectSolutions(opts.Used, opts.FallbackLimit)
	formatOpts := formatter.Options{
		UseAlternatives: conditions.Union(alternatives, opts.Alternatives),
		UseFallbacks:    conditions.Union(fallbacks, opts.Fallbacks),
		Conditions:      opts.Conditions,
		ExampleLimit:    opts.ExampleLimit,
		Output:          opts.Output,
		UsedUseCases:    opts.Used,
		AllUseCases:     resolved.UseCases,
		Input:           opts.Input,
		Hook:            formatter.IncludeSubCases(c.processor),
		Processor:       c.processor,
	}

	markup, err := formatter.Format(resolved.UseCases, formatOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to format use cases: %w", err)
	}

	result := &Result{Markup: markup, UseCases: resolved.UseCases}

	outline, err := c.renderer.Outline(markup)
	if err != nil {
		return nil, err
	}
	rendered := 0
	for _, h := range outline {
		if !h.Sub {
			rendered++
		}
	}

	if opts.HTML {
		result.HTML, err = c.renderer.HTML(markup)
		if err != nil {
			return nil, err
		}
	}

	if opts.OutPath != "" {
		data := result.Markup
		if opts.HTML {
			data = result.HTML
		}
		if err := filelock.LockAndWrite(ctx, opts.OutPath, []byte(data)); err != nil {
			return nil, fmt.Errorf("failed to write output: %w", err)
		}
		c.debug(fmt.Sprintf("Wrote %s", opts.OutPath))
	}

	result.Summary = models.CompileSummary{
		Files:      files,
		UseCases:   len(useCases),
		Resolved:   resolved.Resolved,
		Rendered:   rendered,
		Unresolved: resolved.Unresolved,
		Output:     opts.OutPath,
		Duration:   time.Since(start),
	}
	if c.logger != nil {
		c.logger.LogCompileSummary(result.Summary)
	}
	return result, nil
}

// load parses the requested files and stored documents, files first
func (c *Compiler) load(ctx context.Context, opts Options) ([]models.UseCase, int, error) {
	if len(opts.Paths) == 0 && len(opts.Documents) == 0 {
		return nil, 0, fmt.Errorf("no documents to compile")
	}

	var useCases []models.UseCase
	files := 0

	if len(opts.Paths) > 0 {
		paths, err := parser.FilterUseCaseFiles(opts.Paths)
		if err != nil {
			return nil, 0, err
		}
		for _, path := range paths {
			c.debug(fmt.Sprintf("Parsing %s", path))
		}
		parsed, err := parser.ParseFiles(paths)
		if err != nil {
			return nil, 0, err
		}
		useCases = append(useCases, parsed...)
		files += len(paths)
	}

	if len(opts.Documents) > 0 && c.documents == nil {
		return nil, 0, errors.New("stored documents requested but no store is configured")
	}
	for _, name := range opts.Documents {
		doc, err := c.documents.Get(ctx, name)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to load stored document %s: %w", name, err)
		}
		parsed, err := parser.ParseDocument(doc.Content)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to parse stored document %s: %w", name, err)
		}
		useCases = append(useCases, parsed.UseCases...)
		files++
	}

	return useCases, files, nil
}

func (c *Compiler) debug(message string) {
	if c.logger != nil {
		c.logger.LogDebug(message)
	}
}
