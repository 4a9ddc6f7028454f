package syntax

import (
	"fmt"
)

// Builder is a cursor over a token stream that records a log of open and
// closed markers. Every marker handed out by Mark must be closed exactly once
// with Done, Drop, Rollback, Fail or Collapse. The log is turned into a tree
// by Build once parsing finishes.
type Builder struct {
	src    string
	tokens []Token
	pos    int
	log    []production
}

type production struct {
	marker *Marker
	done   bool
}

type markerState int

const (
	markerOpen markerState = iota
	markerDone
	markerDropped
	markerRolledBack
)

func (s markerState) String() string {
	switch s {
	case markerOpen:
		return "open"
	case markerDone:
		return "done"
	case markerDropped:
		return "dropped"
	default:
		return "rolled back"
	}
}

// Marker is a checkpoint in the token stream that later becomes a tree
// element, or is discarded.
type Marker struct {
	b        *Builder
	start    int
	end      int
	kind     Kind
	state    markerState
	message  string
	collapse TokenKind
	isError  bool
	isLeaf   bool
}

// UnbalancedMarkerError signals misuse of the marker protocol: closing a
// marker that is not open, or closing it while markers started inside it are
// still open. It indicates a grammar bug rather than bad input.
type UnbalancedMarkerError struct {
	Message string
	Offset  int
}

func (e *UnbalancedMarkerError) Error() string {
	return fmt.Sprintf("unbalanced markers at offset %d: %s", e.Offset, e.Message)
}

// NewBuilder lexes src and positions the cursor on the first token.
func NewBuilder(src string) *Builder {
	return &Builder{src: src, tokens: Lex(src)}
}

// Source returns the text being parsed.
func (b *Builder) Source() string {
	return b.src
}

// TokenType returns the kind of the current token, or EOF.
func (b *Builder) TokenType() TokenKind {
	return b.LookAhead(0)
}

// TokenText returns the text of the current token.
func (b *Builder) TokenText() string {
	if b.pos < len(b.tokens) {
		return b.tokens[b.pos].Text
	}
	return ""
}

// LookAhead returns the kind of the token n positions after the cursor.
func (b *Builder) LookAhead(n int) TokenKind {
	if i := b.pos + n; i >= 0 && i < len(b.tokens) {
		return b.tokens[i].Kind
	}
	return EOF
}

// Adjacent reports whether the token n positions after the cursor follows
// the one before it with no whitespace in between.
func (b *Builder) Adjacent(n int) bool {
	i := b.pos + n
	if i <= 0 || i >= len(b.tokens) {
		return false
	}
	return b.tokens[i-1].End() == b.tokens[i].Offset
}

// EOF reports whether all tokens have been consumed.
func (b *Builder) EOF() bool {
	return b.pos >= len(b.tokens)
}

// Offset returns the source offset of the current token.
func (b *Builder) Offset() int {
	if b.pos < len(b.tokens) {
		return b.tokens[b.pos].Offset
	}
	return len(b.src)
}

// Advance moves past the current token.
func (b *Builder) Advance() {
	if b.pos < len(b.tokens) {
		b.pos++
	}
}

// Expect advances past the current token if it is of the given kind.
func (b *Builder) Expect(kind TokenKind) bool {
	if b.TokenType() == kind {
		b.Advance()
		return true
	}
	return false
}

// ExpectOrError is Expect, reporting msg at the cursor on a mismatch.
func (b *Builder) ExpectOrError(kind TokenKind, msg string) bool {
	if b.Expect(kind) {
		return true
	}
	b.Error(msg)
	return false
}

// Error records a zero-width error element at the cursor.
func (b *Builder) Error(msg string) {
	b.Mark().Fail(msg)
}

// Mark opens a new marker at the cursor.
func (b *Builder) Mark() *Marker {
	m := &Marker{b: b, start: b.pos}
	b.log = append(b.log, production{marker: m})
	return m
}

func (b *Builder) startIndex(m *Marker) int {
	for i := len(b.log) - 1; i >= 0; i-- {
		if b.log[i].marker == m && !b.log[i].done {
			return i
		}
	}
	panic(&UnbalancedMarkerError{
		Message: fmt.Sprintf("marker is %s, not open", m.state),
		Offset:  b.Offset(),
	})
}

func (b *Builder) requireOpen(m *Marker) int {
	if m.b != b || m.state != markerOpen {
		panic(&UnbalancedMarkerError{
			Message: fmt.Sprintf("marker is %s, not open", m.state),
			Offset:  b.Offset(),
		})
	}
	return b.startIndex(m)
}

func (b *Builder) close(m *Marker) {
	idx := b.requireOpen(m)
	for _, p := range b.log[idx+1:] {
		if !p.done && p.marker.state == markerOpen {
			panic(&UnbalancedMarkerError{
				Message: fmt.Sprintf("closing %s while an inner marker is still open", m.kind),
				Offset:  b.Offset(),
			})
		}
	}
	m.end = b.pos
	m.state = markerDone
	b.log = append(b.log, production{marker: m, done: true})
}

// Done closes the marker as an element of the given kind spanning every
// token consumed since it was opened.
func (m *Marker) Done(kind Kind) {
	m.kind = kind
	m.b.close(m)
}

// Fail closes the marker as an error element carrying msg.
func (m *Marker) Fail(msg string) {
	m.kind = ErrorElement
	m.isError = true
	m.message = msg
	m.b.close(m)
}

// Collapse closes the marker as a single token of the given kind whose text
// is everything consumed since it was opened.
func (m *Marker) Collapse(kind TokenKind) {
	m.isLeaf = true
	m.collapse = kind
	m.b.close(m)
}

// Drop discards the marker, keeping any tokens and elements inside it.
func (m *Marker) Drop() {
	idx := m.b.requireOpen(m)
	m.b.log = append(m.b.log[:idx], m.b.log[idx+1:]...)
	m.state = markerDropped
}

// Rollback discards the marker along with everything recorded after it and
// moves the cursor back to where the marker was opened.
func (m *Marker) Rollback() {
	b := m.b
	idx := b.requireOpen(m)
	for _, p := range b.log[idx:] {
		if !p.done {
			p.marker.state = markerRolledBack
		}
	}
	b.log = b.log[:idx]
	b.pos = m.start
}

// Precede opens a new marker starting at the same position as m, enclosing
// it. It is how a left operand is wrapped once an operator is seen.
func (m *Marker) Precede() *Marker {
	b := m.b
	var idx int
	if m.state == markerOpen {
		idx = b.startIndex(m)
	} else if m.state == markerDone {
		idx = -1
		for i, p := range b.log {
			if p.marker == m && !p.done {
				idx = i
				break
			}
		}
	}
	if m.state != markerOpen && m.state != markerDone || idx < 0 {
		panic(&UnbalancedMarkerError{
			Message: fmt.Sprintf("cannot precede a %s marker", m.state),
			Offset:  b.Offset(),
		})
	}
	n := &Marker{b: b, start: m.start}
	b.log = append(b.log, production{})
	copy(b.log[idx+1:], b.log[idx:])
	b.log[idx] = production{marker: n}
	return n
}

// Kind returns the kind the marker was closed with.
func (m *Marker) Kind() Kind {
	return m.kind
}

// Build turns the production log into a tree. It fails if any marker is
// still open.
func (b *Builder) Build(filename string) (*Tree, error) {
	for _, p := range b.log {
		if !p.done && p.marker.state == markerOpen {
			return nil, &UnbalancedMarkerError{
				Message: "marker left open at end of parse",
				Offset:  b.tokenOffset(p.marker.start),
			}
		}
	}

	tree := &Tree{Filename: filename, Source: b.src}
	root := &Node{Kind: Root, tree: tree, start: 0, end: len(b.src)}
	stack := []*Node{root}
	cursor := 0

	flush := func(upTo int) {
		top := stack[len(stack)-1]
		for ; cursor < upTo; cursor++ {
			tok := b.tokens[cursor]
			top.append(&Node{Token: &tok, tree: tree, start: tok.Offset, end: tok.End()})
		}
	}

	for _, p := range b.log {
		m := p.marker
		if m.isLeaf {
			if p.done {
				continue
			}
			flush(m.start)
			text := b.src[b.tokenOffset(m.start):b.tokenEnd(m.end)]
			tok := Token{Kind: m.collapse, Text: text, Offset: b.tokenOffset(m.start)}
			stack[len(stack)-1].append(&Node{Token: &tok, tree: tree, start: tok.Offset, end: tok.End()})
			cursor = m.end
			continue
		}
		if !p.done {
			flush(m.start)
			node := &Node{Kind: m.kind, Message: m.message, tree: tree}
			stack = append(stack, node)
			continue
		}
		flush(m.end)
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node.start = b.tokenOffset(m.start)
		node.end = b.tokenEnd(m.end)
		if node.end < node.start {
			node.end = node.start
		}
		stack[len(stack)-1].append(node)
	}
	flush(len(b.tokens))

	tree.Root = root
	return tree, nil
}

func (b *Builder) tokenOffset(i int) int {
	if i < len(b.tokens) {
		return b.tokens[i].Offset
	}
	return len(b.src)
}

// tokenEnd returns the offset just past the token before index i.
func (b *Builder) tokenEnd(i int) int {
	if i > 0 && i <= len(b.tokens) {
		return b.tokens[i-1].End()
	}
	return b.tokenOffset(i)
}
