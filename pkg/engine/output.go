package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

// Printer writes user-facing text wrapped to the terminal width. Paragraphs
// are separated by a blank line; wrapped lines get a hanging indent.
type Printer struct {
	w     io.Writer
	width int
}

// NewPrinter creates a printer. A width of zero or above DefaultWidth is
// capped to DefaultWidth.
func NewPrinter(w io.Writer, width int) *Printer {
	if width <= 0 || width > DefaultWidth {
		width = DefaultWidth
	}
	return &Printer{w: w, width: width}
}

// Width returns the wrap width.
func (p *Printer) Width() int { return p.width }

// Print writes text. Every line after the first is indented by hanging
// columns.
func (p *Printer) Print(text string, hanging int) {
	if text == "" {
		fmt.Fprintln(p.w)
		return
	}

	limit := p.width - hanging
	if limit < 20 {
		limit = 20
	}
	for idx, paragraph := range strings.Split(text, "\n") {
		if idx > 0 {
			fmt.Fprintln(p.w)
		}
		wrapped := wordwrap.String(paragraph, limit)
		first, rest, more := strings.Cut(wrapped, "\n")
		if idx > 0 {
			first = strings.Repeat(" ", hanging) + strings.TrimLeft(first, " ")
		}
		fmt.Fprintln(p.w, first)
		if more {
			fmt.Fprintln(p.w, indent.String(rest, uint(hanging)))
		}
	}
}

// Title writes a section heading.
func (p *Printer) Title(text string) {
	fmt.Fprintln(p.w, text)
}
