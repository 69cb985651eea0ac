package display

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
)

var (
	colorStep    = []color.Attribute{color.FgCyan}
	colorSuccess = []color.Attribute{color.FgGreen}
	colorWarn    = []color.Attribute{color.FgYellow}
)

// ProgressIndicator reports use case files as they are loaded
type ProgressIndicator struct {
	writer  io.Writer
	total   int
	current int
}

// NewProgressIndicator creates a new progress indicator
func NewProgressIndicator(w io.Writer, total int) *ProgressIndicator {
	return &ProgressIndicator{writer: w, total: total}
}

// Start displays the header message
func (p *ProgressIndicator) Start() {
	fmt.Fprintf(p.writer, "Loading use case files:\n")
}

// Step displays "[N/Total] basename"
func (p *ProgressIndicator) Step(filename string) {
	p.current++
	paint(p.writer, colorStep...).Fprintf(p.writer, "  [%d/%d] %s\n", p.current, p.total, filepath.Base(filename))
}

// Complete displays the final count
func (p *ProgressIndicator) Complete() {
	fmt.Fprintf(p.writer, "%s Loaded %d use case files\n", paint(p.writer, colorSuccess...).Sprint("✓"), p.current)
}

// DisplaySingleFile shows simple loading message for single file
func DisplaySingleFile(w io.Writer, filename string) {
	fmt.Fprintf(w, "Loading use cases from %s...\n", filename)
}
