package diag

import (
	"fmt"
	"strings"

	"github.com/vito/juxt/pkg/syntax"
)

// Location resolves the start and end of d in source as 1-based positions.
func Location(source string, d Diagnostic) (start, end syntax.Position) {
	t := &syntax.Tree{Source: source}
	return t.Position(d.Range.Start), t.Position(d.Range.End)
}

// SourceError renders a diagnostic against the text it was found in.
type SourceError struct {
	Diagnostic
	Source string
	Color  bool
}

// NewSourceError pairs d with its source text.
func NewSourceError(d Diagnostic, source string, color bool) *SourceError {
	return &SourceError{Diagnostic: d, Source: source, Color: color}
}

func (e *SourceError) Unwrap() error {
	return e.Diagnostic
}

func (e *SourceError) Error() string {
	return e.Format()
}

// Format returns the diagnostic with a header, up to two lines of context on
// either side and a caret underline beneath the offending range.
func (e *SourceError) Format() string {
	lines := strings.Split(e.Source, "\n")
	start, end := Location(e.Source, e.Diagnostic)
	if e.Range.Start > len(e.Source) || start.Line < 1 || start.Line > len(lines) {
		return e.Diagnostic.String()
	}

	red, blue, bold, dim, reset := "\033[31m", "\033[34m", "\033[1m", "\033[2m", "\033[0m"
	if e.Severity == Warning {
		red = "\033[33m"
	}
	if !e.Color {
		red, blue, bold, dim, reset = "", "", "", "", ""
	}

	var result strings.Builder

	label := strings.ToUpper(e.Severity.String()[:1]) + e.Severity.String()[1:]
	fmt.Fprintf(&result, "%s%s%s:%s %s\n", bold, red, label, reset, e.Message)
	fmt.Fprintf(&result, "  %s%s--> %s:%d:%d%s\n", dim, blue, e.Filename, start.Line, start.Column, reset)
	fmt.Fprintf(&result, " %s%s |%s\n", dim, padLeft("", 3), reset)

	length := 1
	if end.Line == start.Line && end.Column > start.Column {
		length = end.Column - start.Column
	} else if end.Line > start.Line {
		length = max(1, len(lines[start.Line-1])-start.Column+1)
	}

	first := max(1, start.Line-2)
	last := min(len(lines), start.Line+2)
	for i := first; i <= last; i++ {
		num := padLeft(fmt.Sprintf("%d", i), 3)
		if i != start.Line {
			fmt.Fprintf(&result, " %s%s | %s%s\n", dim, num, lines[i-1], reset)
			continue
		}
		fmt.Fprintf(&result, " %s%s%s%s | %s%s\n", dim, blue, bold, num, reset, lines[i-1])
		padding := strings.Repeat(" ", 1+3+3+start.Column-1)
		fmt.Fprintf(&result, "%s%s%s%s%s\n", dim, padding, red, strings.Repeat("^", length), reset)
	}

	fmt.Fprintf(&result, " %s%s |%s\n", dim, padLeft("", 3), reset)
	return result.String()
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
