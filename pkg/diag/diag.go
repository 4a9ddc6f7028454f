// Package diag carries user-facing problems found while parsing and
// resolving: syntax errors, resolution failures and type mismatches. They
// are values, not Go errors; a List of them can be returned as an error
// when a caller needs one.
package diag

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vito/juxt/pkg/syntax"
)

// Severity ranks a diagnostic.
type Severity int

const (
	Error Severity = iota + 1
	Warning
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Diagnostic is one problem anchored at a byte range of a file.
type Diagnostic struct {
	Severity Severity
	Message  string
	Filename string
	Range    syntax.Range
}

// At returns a diagnostic covering node.
func At(sev Severity, node *syntax.Node, msg string) Diagnostic {
	d := Diagnostic{
		Severity: sev,
		Message:  msg,
		Range:    node.Range(),
	}
	if tree := node.Tree(); tree != nil {
		d.Filename = tree.Filename
	}
	return d
}

// Errorf returns an error diagnostic covering node.
func Errorf(node *syntax.Node, format string, args ...any) Diagnostic {
	return At(Error, node, fmt.Sprintf(format, args...))
}

func (d Diagnostic) Error() string {
	return d.Message
}

// String renders the diagnostic with its file and offset.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %s: %s", d.Filename, d.Range.Start, d.Severity, d.Message)
}

// Sink receives diagnostics as they are found.
type Sink interface {
	Report(Diagnostic)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Diagnostic)

func (f SinkFunc) Report(d Diagnostic) {
	f(d)
}

// Discard drops everything reported to it.
var Discard Sink = SinkFunc(func(Diagnostic) {})

// Collector is a Sink safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	diags []Diagnostic
}

var _ Sink = (*Collector)(nil)

// Report implements Sink.
func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	c.diags = append(c.diags, d)
	c.mu.Unlock()
}

// Add reports each diagnostic in ds.
func (c *Collector) Add(ds ...Diagnostic) {
	c.mu.Lock()
	c.diags = append(c.diags, ds...)
	c.mu.Unlock()
}

// Diagnostics returns everything reported so far, ordered by file and
// position.
func (c *Collector) Diagnostics() List {
	c.mu.Lock()
	out := make(List, len(c.diags))
	copy(out, c.diags)
	c.mu.Unlock()
	out.Sort()
	return out
}

// HasErrors reports whether an Error severity diagnostic was reported.
func (c *Collector) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Err returns the collected diagnostics as an error, or nil if none are
// errors.
func (c *Collector) Err() error {
	if !c.HasErrors() {
		return nil
	}
	return c.Diagnostics()
}

// List is an ordered set of diagnostics.
type List []Diagnostic

// Sort orders the list by file, then position. Reports at the same position
// keep their relative order.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		if l[i].Filename != l[j].Filename {
			return l[i].Filename < l[j].Filename
		}
		return l[i].Range.Start < l[j].Range.Start
	})
}

// Messages returns the message of each diagnostic.
func (l List) Messages() []string {
	msgs := make([]string, len(l))
	for i, d := range l {
		msgs[i] = d.Message
	}
	return msgs
}

// HasErrors reports whether any diagnostic is an error.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no diagnostics"
	case 1:
		return l[0].String()
	}
	lines := make([]string, len(l))
	for i, d := range l {
		lines[i] = d.String()
	}
	return fmt.Sprintf("%d diagnostics:\n%s", len(l), strings.Join(lines, "\n"))
}

func (l List) Unwrap() []error {
	errs := make([]error, len(l))
	for i, d := range l {
		errs[i] = d
	}
	return errs
}

// Syntax returns a diagnostic for every error element in tree.
func Syntax(tree *syntax.Tree) List {
	var out List
	for _, n := range tree.Errors() {
		out = append(out, At(Error, n, n.Message))
	}
	return out
}
