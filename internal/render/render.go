// Package render turns compiled use case markup into HTML.
package render

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

var useCaseHeading = regexp.MustCompile(`^(UseCase|Case):\s*(\S+)`)

// Renderer converts markup with a shared goldmark instance
type Renderer struct {
	markdown goldmark.Markdown
}

// New creates a Renderer with GitHub flavoured extensions. Line breaks are
// kept since prompt lines are significant.
func New() *Renderer {
	return &Renderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// HTML renders markup to an HTML fragment
func (r *Renderer) HTML(markup string) (string, error) {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(markup), &buf); err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}
	return buf.String(), nil
}

// Heading is a use case heading found in markup
type Heading struct {
	ID    string
	Sub   bool // "Case:" heading appended for a sub use case
	Level int
}

// Outline returns the use case headings of markup in document order
func (r *Renderer) Outline(markup string) ([]Heading, error) {
	source := []byte(markup)
	doc := r.markdown.Parser().Parse(text.NewReader(source))

	var headings []Heading
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		m := useCaseHeading.FindStringSubmatch(extractText(heading, source))
		if m != nil {
			headings = append(headings, Heading{ID: m[2], Sub: m[1] == "Case", Level: heading.Level})
		}
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk markup: %w", err)
	}
	return headings, nil
}

// extractText concatenates the text segments below n
func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
			continue
		}
		buf.WriteString(extractText(c, source))
	}
	return buf.String()
}
