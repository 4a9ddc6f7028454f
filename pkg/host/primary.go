package host

import (
	"github.com/vito/juxt/pkg/syntax"
)

// PrimaryOver parses a primary expression followed by member selections,
// calls and array accesses. A leading '(' is handed to parens.
func (p *Parser) PrimaryOver(b *syntax.Builder, mode Mode, parens Level) *syntax.Marker {
	var start *syntax.Marker
	if b.TokenType() == syntax.LParen {
		start = parens(b, mode)
	} else {
		start = p.PrimaryStart(b, mode)
	}
	if start == nil {
		return nil
	}
	return p.Selectors(b, start)
}

// PrimaryStart parses every primary expression other than one starting
// with '('.
func (p *Parser) PrimaryStart(b *syntax.Builder, mode Mode) *syntax.Marker {
	tok := b.TokenType()
	switch {
	case tok.IsLiteral():
		m := b.Mark()
		b.Advance()
		m.Done(syntax.LiteralExpr)
		return m
	case tok == syntax.Ident:
		if b.LookAhead(1) == syntax.Arrow && mode&ForbidLambda == 0 {
			return p.identifierLambda(b)
		}
		m := b.Mark()
		b.Advance()
		m.Done(syntax.ReferenceExpr)
		return m
	case tok == syntax.KwThis:
		m := b.Mark()
		b.Advance()
		m.Done(syntax.ThisExpr)
		return m
	case tok == syntax.KwSuper:
		m := b.Mark()
		b.Advance()
		m.Done(syntax.SuperExpr)
		return m
	case tok == syntax.KwNew:
		return p.newExpression(b)
	}
	return nil
}

// Selectors extends expr with '.name', calls and '[index]'.
func (p *Parser) Selectors(b *syntax.Builder, expr *syntax.Marker) *syntax.Marker {
	for {
		switch b.TokenType() {
		case syntax.LParen:
			switch expr.Kind() {
			case syntax.ReferenceExpr, syntax.ThisExpr, syntax.SuperExpr:
			default:
				return expr
			}
			call := expr.Precede()
			p.top.ParseArgumentList(b)
			call.Done(syntax.MethodCallExpr)
			expr = call
		case syntax.Dot:
			ref := expr.Precede()
			b.Advance()
			if !b.ExpectOrError(syntax.Ident, "identifier expected") {
				ref.Done(syntax.ReferenceExpr)
				return ref
			}
			ref.Done(syntax.ReferenceExpr)
			expr = ref
		case syntax.LBracket:
			if b.LookAhead(1) == syntax.RBracket {
				return expr
			}
			access := expr.Precede()
			b.Advance()
			if p.top.ParseExpression(b, 0) == nil {
				b.Error("expression expected")
			}
			b.ExpectOrError(syntax.RBracket, "']' expected")
			access.Done(syntax.ArrayAccessExpr)
			expr = access
		default:
			return expr
		}
	}
}

func (p *Parser) newExpression(b *syntax.Builder) *syntax.Marker {
	m := b.Mark()
	b.Advance()
	if p.ParseType(b, AllowDiamond) == nil {
		b.Error("type expected")
		m.Done(syntax.NewExpr)
		return m
	}

	switch b.TokenType() {
	case syntax.LParen:
		p.top.ParseArgumentList(b)
	case syntax.LBracket:
		for b.TokenType() == syntax.LBracket {
			b.Advance()
			if b.TokenType() != syntax.RBracket && p.top.ParseExpression(b, 0) == nil {
				b.Error("expression expected")
			}
			b.ExpectOrError(syntax.RBracket, "']' expected")
		}
		if b.TokenType() == syntax.LBrace {
			p.ParseArrayInitializer(b)
		}
	case syntax.LBrace:
		p.ParseArrayInitializer(b)
	default:
		b.Error("'(' or '[' expected")
	}
	m.Done(syntax.NewExpr)
	return m
}

// ParseArrayInitializer parses '{' expr, ... '}'.
func (p *Parser) ParseArrayInitializer(b *syntax.Builder) *syntax.Marker {
	m := b.Mark()
	b.Advance()
	for b.TokenType() != syntax.RBrace && !b.EOF() {
		if b.TokenType() == syntax.LBrace {
			p.ParseArrayInitializer(b)
		} else if p.top.ParseExpression(b, 0) == nil {
			b.Error("expression expected")
			break
		}
		if !b.Expect(syntax.Comma) {
			break
		}
	}
	b.ExpectOrError(syntax.RBrace, "'}' expected")
	m.Done(syntax.ArrayInitExpr)
	return m
}

func (p *Parser) identifierLambda(b *syntax.Builder) *syntax.Marker {
	m := b.Mark()
	params := b.Mark()
	param := b.Mark()
	b.Advance()
	param.Done(syntax.Parameter)
	params.Done(syntax.ParameterList)
	b.Advance()
	p.lambdaBody(b)
	m.Done(syntax.LambdaExpr)
	return m
}

// ParseLambdaAfterParen speculatively parses a parenthesized lambda
// parameter list followed by '->' and a body. It returns nil, leaving the
// cursor untouched, when the tokens are not a lambda.
func (p *Parser) ParseLambdaAfterParen(b *syntax.Builder) *syntax.Marker {
	m := b.Mark()
	params := b.Mark()
	b.Advance()
	if !b.Expect(syntax.RParen) {
		for {
			param := b.Mark()
			if b.TokenType() == syntax.Ident && (b.LookAhead(1) == syntax.Comma || b.LookAhead(1) == syntax.RParen) {
				b.Advance()
			} else {
				p.ParseModifiers(b)
				if p.ParseType(b, AllowEllipsis) == nil || !b.Expect(syntax.Ident) {
					m.Rollback()
					return nil
				}
			}
			param.Done(syntax.Parameter)
			if !b.Expect(syntax.Comma) {
				break
			}
		}
		if !b.Expect(syntax.RParen) {
			m.Rollback()
			return nil
		}
	}
	params.Done(syntax.ParameterList)
	if !b.Expect(syntax.Arrow) {
		m.Rollback()
		return nil
	}
	p.lambdaBody(b)
	m.Done(syntax.LambdaExpr)
	return m
}

func (p *Parser) lambdaBody(b *syntax.Builder) {
	if b.TokenType() == syntax.LBrace {
		p.ParseCodeBlock(b)
		return
	}
	if p.top.ParseExpression(b, 0) == nil {
		b.Error("expression expected")
	}
}
