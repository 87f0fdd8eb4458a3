package source

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Renderer formats diagnostics as multi-line terminal blocks. Color is
// gated on the destination actually being a terminal — never turned on
// just because a renderer exists, so piping `limit -debug x.lm | less`
// doesn't emit escape codes into a file.
type Renderer struct {
	Out   io.Writer
	Color bool
}

// NewRenderer auto-detects color support for w the way a CLI tool should:
// only when w is an *os.File connected to a real terminal.
func NewRenderer(w io.Writer) *Renderer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Renderer{Out: w, Color: color}
}

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiBold   = "\x1b[1m"
	ansiDim    = "\x1b[2m"
	ansiCyan   = "\x1b[36m"
)

func (r *Renderer) paint(code, s string) string {
	if !r.Color || s == "" {
		return s
	}
	return code + s + ansiReset
}

// Render writes one diagnostic's full block: code/message header,
// file:line:col, an optional source snippet with a caret, hint,
// suggestion, and caused-by pointer.
func (r *Renderer) Render(d Diagnostic, fset *FileSet) {
	sev := "error"
	color := ansiRed
	if d.Severity == SeverityWarning {
		sev = "warning"
		color = ansiYellow
	}
	pos := Position{}
	if f := fset.Get(d.File); f != nil {
		pos = f.Position(d.Range.Start)
	}
	fmt.Fprintf(r.Out, "%s[%s] %s%s: %s\n",
		r.paint(ansiBold, sev), d.Code, r.paint(color, ""), "", d.Message)
	fmt.Fprintf(r.Out, "  %s %s:%d:%d\n", r.paint(ansiDim, "-->"), d.File, pos.Line, pos.Column)

	if f := fset.Get(d.File); f != nil {
		line := f.Line(pos.Line)
		if line != nil {
			fmt.Fprintf(r.Out, "   %s %s\n", r.paint(ansiDim, "|"), string(line))
			caretCol := pos.Column
			if caretCol < 1 {
				caretCol = 1
			}
			fmt.Fprintf(r.Out, "   %s %s%s\n", r.paint(ansiDim, "|"),
				strings.Repeat(" ", caretCol-1), r.paint(color, "^"))
		}
	}
	if d.Hint != "" {
		fmt.Fprintf(r.Out, "   = %s: %s\n", r.paint(ansiCyan, "hint"), d.Hint)
	}
	if d.Suggestion != "" {
		fmt.Fprintf(r.Out, "   = %s: %s\n", r.paint(ansiCyan, "suggestion"), d.Suggestion)
	}
	if d.CausedBy != nil {
		fmt.Fprintf(r.Out, "   = caused by: %s (%s)\n", d.CausedBy.Message, d.CausedBy.File)
	}
}

// RenderAll renders every diagnostic in diags, in order.
func (r *Renderer) RenderAll(diags []Diagnostic, fset *FileSet) {
	for _, d := range diags {
		r.Render(d, fset)
	}
}
