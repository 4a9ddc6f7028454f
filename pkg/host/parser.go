// Package host implements the base grammar of the host language: files,
// classes and their members, statements, type references and the standard
// expression grammar. A dialect customizes it by implementing Grammar and
// wrapping a Parser with Extend; every production that recurses into
// expressions, statements, argument lists or parameter lists goes back
// through the outermost Grammar.
package host

import (
	"github.com/vito/juxt/pkg/syntax"
)

// Mode restricts what an expression production may accept.
type Mode uint

const (
	// ForbidLambda disables lambda recognition, e.g. inside a cast operand.
	ForbidLambda Mode = 1 << iota
)

// Grammar is the set of entry points a dialect may override.
type Grammar interface {
	ParseExpression(b *syntax.Builder, mode Mode) *syntax.Marker
	ParseArgumentList(b *syntax.Builder) *syntax.Marker
	ParseStatement(b *syntax.Builder) *syntax.Marker
	ParseParameterList(b *syntax.Builder) *syntax.Marker
}

// Level parses one expression production, returning nil without consuming
// input when nothing applicable starts at the cursor.
type Level func(b *syntax.Builder, mode Mode) *syntax.Marker

// Parser is the base grammar.
type Parser struct {
	top Grammar
}

var _ Grammar = (*Parser)(nil)

// New returns the base grammar on its own.
func New() *Parser {
	p := &Parser{}
	p.top = p
	return p
}

// Extend returns a copy of p whose recursive entry points are served by top.
func (p *Parser) Extend(top Grammar) *Parser {
	return &Parser{top: top}
}

// Top returns the outermost grammar.
func (p *Parser) Top() Grammar {
	return p.top
}

// ParseFile parses a compilation unit.
func (p *Parser) ParseFile(filename, src string) (*syntax.Tree, error) {
	return syntax.Run(filename, src, p.File)
}

// Expression parses src as a single expression using g.
func Expression(g Grammar, filename, src string) (*syntax.Tree, error) {
	return syntax.Run(filename, src, func(b *syntax.Builder) {
		if g.ParseExpression(b, 0) == nil {
			b.Error("expression expected")
		}
		trailing(b)
	})
}

// Statement parses src as a single statement using g.
func Statement(g Grammar, filename, src string) (*syntax.Tree, error) {
	return syntax.Run(filename, src, func(b *syntax.Builder) {
		if g.ParseStatement(b) == nil {
			b.Error("statement expected")
		}
		trailing(b)
	})
}

// Type parses src as a single type reference, e.g. `Map<String, T>[]`.
func (p *Parser) Type(filename, src string) (*syntax.Tree, error) {
	return syntax.Run(filename, src, func(b *syntax.Builder) {
		if p.ParseType(b, AllowWildcard|AllowEllipsis) == nil {
			b.Error("type expected")
		}
		trailing(b)
	})
}

func trailing(b *syntax.Builder) {
	if b.EOF() {
		return
	}
	m := b.Mark()
	for !b.EOF() {
		b.Advance()
	}
	m.Fail("unexpected tokens")
}

// skipTo wraps tokens up to (not including) any of the stop kinds in an
// error element. Nested parentheses are skipped as a unit.
func skipTo(b *syntax.Builder, msg string, stop ...syntax.TokenKind) {
	m := b.Mark()
	depth := 0
	for !b.EOF() {
		tok := b.TokenType()
		if depth == 0 && contains(stop, tok) {
			break
		}
		switch tok {
		case syntax.LParen:
			depth++
		case syntax.RParen:
			if depth > 0 {
				depth--
			}
		}
		b.Advance()
	}
	m.Fail(msg)
}

func contains(kinds []syntax.TokenKind, kind syntax.TokenKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
