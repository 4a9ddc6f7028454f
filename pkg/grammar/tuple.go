package grammar

import (
	"github.com/vito/juxt/pkg/syntax"
)

// tupleOrExpression parses a comma-separated run of optionally labeled
// entries. With parens the cursor is on '(' and the result is a
// parenthesized expression when exactly one unlabeled entry was found with
// no comma, and a tuple otherwise (including the empty tuple). Without
// parens the result is a tuple only for several entries, a label or a comma;
// otherwise the lone expression is returned as is, or nil if there was none.
func (p *Parser) tupleOrExpression(b *syntax.Builder, parens bool) *syntax.Marker {
	m := b.Mark()
	if parens {
		b.Advance()
	}

	var (
		count   int
		labeled bool
		comma   bool
		missing bool
		last    *syntax.Marker
	)
	for {
		if parens && b.TokenType() == syntax.RParen {
			break
		}

		entry := b.Mark()
		isLabeled := false
		if b.TokenType() == syntax.Ident && b.LookAhead(1) == syntax.Colon {
			b.Advance()
			b.Advance()
			isLabeled = true
			labeled = true
			count++
			if p.ParseExpression(b, 0) == nil {
				b.Error("expression expected")
			}
		} else {
			last = p.ParseExpression(b, 0)
			if last == nil {
				entry.Drop()
				if parens || count > 0 {
					b.Error("expression expected")
					missing = true
				}
				break
			}
			count++
		}

		if isLabeled || count > 1 || b.TokenType() == syntax.Comma {
			entry.Done(syntax.TupleValueExpr)
			last = entry
		} else {
			entry.Drop()
		}

		if !b.Expect(syntax.Comma) {
			break
		}
		comma = true
	}

	tuple := count != 1 || labeled || comma
	if !parens {
		if count > 1 || labeled || comma {
			m.Done(syntax.TupleExpr)
			return m
		}
		m.Drop()
		return last
	}

	if !b.Expect(syntax.RParen) {
		if !missing {
			b.Error("')' expected")
		}
		p.recoverToParen(b)
	}
	if tuple {
		m.Done(syntax.TupleExpr)
	} else {
		m.Done(syntax.ParenExpr)
	}
	return m
}

// recoverToParen skips to the closing parenthesis, stopping early at a
// statement boundary.
func (p *Parser) recoverToParen(b *syntax.Builder) {
	switch b.TokenType() {
	case syntax.Semicolon, syntax.LBrace, syntax.RBrace, syntax.EOF:
		return
	}
	skipped := b.Mark()
	depth := 0
	for !b.EOF() {
		switch b.TokenType() {
		case syntax.Semicolon, syntax.LBrace, syntax.RBrace:
			skipped.Fail("unexpected tokens")
			return
		case syntax.LParen:
			depth++
		case syntax.RParen:
			if depth == 0 {
				skipped.Fail("unexpected tokens")
				b.Advance()
				return
			}
			depth--
		}
		b.Advance()
	}
	skipped.Fail("unexpected tokens")
}

// ParseArgumentList implements host.Grammar. When any argument is labeled
// the whole list, parentheses included, becomes a single tuple expression
// inside the expression list.
func (p *Parser) ParseArgumentList(b *syntax.Builder) *syntax.Marker {
	if !p.features.Tuples {
		return p.host.ParseArgumentList(b)
	}

	list := b.Mark()
	tuple := b.Mark()
	b.Advance()

	labeled := false
	first := true
	for {
		tok := b.TokenType()
		if first && endsArguments(tok) {
			break
		}
		if !first && !continuesArguments(tok) {
			break
		}

		hasError := false
		if !first {
			if tok == syntax.Comma {
				b.Advance()
			} else {
				hasError = true
				b.Error("',' or ')' expected")
				emptyExpression(b)
			}
		}
		first = false

		entry := b.Mark()
		isLabeled := false
		if b.TokenType() == syntax.Ident && b.LookAhead(1) == syntax.Colon {
			b.Advance()
			b.Advance()
			isLabeled = true
			labeled = true
		}
		arg := p.ParseExpression(b, 0)
		if arg == nil {
			if !hasError {
				b.Error("expression expected")
				emptyExpression(b)
			}
			if !continuesArguments(b.TokenType()) {
				if isLabeled {
					entry.Done(syntax.TupleValueExpr)
				} else {
					entry.Drop()
				}
				break
			}
			if b.TokenType() != syntax.Comma && !b.EOF() {
				b.Advance()
			}
		}

		if arg != nil && isLabeled {
			entry.Done(syntax.TupleValueExpr)
		} else {
			entry.Drop()
		}
	}

	closed := b.ExpectOrError(syntax.RParen, "')' expected")
	if labeled {
		tuple.Done(syntax.TupleExpr)
	} else {
		tuple.Drop()
	}
	if !closed {
		p.recoverToParen(b)
	}
	list.Done(syntax.ExpressionList)
	return list
}

func endsArguments(tok syntax.TokenKind) bool {
	switch tok {
	case syntax.RParen, syntax.RBrace, syntax.RBracket, syntax.EOF:
		return true
	}
	return false
}

func continuesArguments(tok syntax.TokenKind) bool {
	switch tok {
	case syntax.Ident, syntax.BadCharacter, syntax.Comma, syntax.IntLiteral, syntax.StringLiteral:
		return true
	}
	return false
}

func emptyExpression(b *syntax.Builder) {
	b.Mark().Done(syntax.EmptyExpr)
}
