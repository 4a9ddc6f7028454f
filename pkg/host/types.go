package host

import (
	"github.com/vito/juxt/pkg/syntax"
)

// TypeFlags widen what ParseType accepts.
type TypeFlags uint

const (
	AllowEllipsis TypeFlags = 1 << iota
	AllowWildcard
	AllowDiamond
)

// TypeInfo describes a parsed type reference.
type TypeInfo struct {
	Marker        *syntax.Marker
	Primitive     bool
	Parameterized bool
	Array         bool
}

// ParseType parses a type reference: a primitive or a qualified class name
// with optional type arguments, followed by array dimensions.
func (p *Parser) ParseType(b *syntax.Builder, flags TypeFlags) *TypeInfo {
	m := b.Mark()
	info := &TypeInfo{Marker: m}

	switch tok := b.TokenType(); {
	case tok.IsPrimitive():
		info.Primitive = true
		b.Advance()
	case tok == syntax.Ident:
		for {
			b.Advance()
			if b.TokenType() == syntax.Lt {
				info.Parameterized = true
				p.typeArguments(b, flags&AllowDiamond)
			}
			if b.TokenType() != syntax.Dot || b.LookAhead(1) != syntax.Ident {
				break
			}
			b.Advance()
		}
	case tok == syntax.Question && flags&AllowWildcard != 0:
		b.Advance()
		if b.TokenType() == syntax.KwExtends || b.TokenType() == syntax.KwSuper {
			b.Advance()
			if p.ParseType(b, 0) == nil {
				b.Error("type expected")
			}
		}
		m.Done(syntax.TypeElement)
		return info
	default:
		m.Rollback()
		return nil
	}

	if p.brackets(b) {
		info.Array = true
	}
	if flags&AllowEllipsis != 0 && b.Expect(syntax.Ellipsis) {
		info.Array = true
	}
	m.Done(syntax.TypeElement)
	return info
}

func (p *Parser) typeArguments(b *syntax.Builder, diamond TypeFlags) {
	list := b.Mark()
	b.Advance()
	if diamond != 0 && b.Expect(syntax.Gt) {
		list.Done(syntax.TypeArgumentList)
		return
	}
	for {
		if p.ParseType(b, AllowWildcard) == nil {
			b.Error("type expected")
			break
		}
		if !b.Expect(syntax.Comma) {
			break
		}
	}
	b.ExpectOrError(syntax.Gt, "'>' expected")
	list.Done(syntax.TypeArgumentList)
}

// GtTokenType returns the operator at the cursor, joining a run of adjacent
// '>' and '=' tokens into a single shift or comparison operator.
func GtTokenType(b *syntax.Builder) syntax.TokenKind {
	tok := b.TokenType()
	if tok != syntax.Gt {
		return tok
	}
	next := func(n int, kind syntax.TokenKind) bool {
		return b.LookAhead(n) == kind && b.Adjacent(n)
	}
	switch {
	case next(1, syntax.Gt) && next(2, syntax.Gt) && next(3, syntax.Eq):
		return syntax.UshrEq
	case next(1, syntax.Gt) && next(2, syntax.Gt):
		return syntax.Ushr
	case next(1, syntax.Gt) && next(2, syntax.Eq):
		return syntax.ShrEq
	case next(1, syntax.Gt):
		return syntax.Shr
	case next(1, syntax.Eq):
		return syntax.Ge
	}
	return syntax.Gt
}

// AdvanceGtToken consumes the operator returned by GtTokenType, collapsing
// joined tokens into one.
func AdvanceGtToken(b *syntax.Builder, kind syntax.TokenKind) {
	n := 1
	switch kind {
	case syntax.Ge, syntax.Shr:
		n = 2
	case syntax.Ushr, syntax.ShrEq:
		n = 3
	case syntax.UshrEq:
		n = 4
	}
	if n == 1 {
		b.Advance()
		return
	}
	m := b.Mark()
	for i := 0; i < n; i++ {
		b.Advance()
	}
	m.Collapse(kind)
}
