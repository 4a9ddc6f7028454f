package host

import (
	"github.com/vito/juxt/pkg/syntax"
)

var binaryLevels = [][]syntax.TokenKind{
	{syntax.OrOr},
	{syntax.AndAnd},
	{syntax.Or},
	{syntax.Xor},
	{syntax.And},
	{syntax.EqEq, syntax.Ne},
	{syntax.Lt, syntax.Gt, syntax.Le, syntax.Ge},
	{syntax.Shl, syntax.Shr, syntax.Ushr},
	{syntax.Plus, syntax.Minus},
	{syntax.Star, syntax.Slash, syntax.Percent},
}

// RelationalOps is the operator set of the level that also hosts instanceof.
var RelationalOps = binaryLevels[6]

var assignmentOps = []syntax.TokenKind{
	syntax.Eq, syntax.PlusEq, syntax.MinusEq, syntax.StarEq, syntax.SlashEq, syntax.PercentEq,
	syntax.AndEq, syntax.OrEq, syntax.XorEq, syntax.ShlEq, syntax.ShrEq, syntax.UshrEq,
}

// ParseExpression implements Grammar with the standard operator ladder.
func (p *Parser) ParseExpression(b *syntax.Builder, mode Mode) *syntax.Marker {
	return p.AssignmentOver(b, mode, func(b *syntax.Builder, mode Mode) *syntax.Marker {
		return p.binary(b, mode, 0)
	})
}

func (p *Parser) binary(b *syntax.Builder, mode Mode, level int) *syntax.Marker {
	if level == len(binaryLevels) {
		return p.UnaryOver(b, mode, p.postfix)
	}
	operand := func(b *syntax.Builder, mode Mode) *syntax.Marker {
		return p.binary(b, mode, level+1)
	}
	lhs := operand(b, mode)
	if lhs == nil {
		return nil
	}
	for {
		tok := GtTokenType(b)
		if level == 6 && tok == syntax.KwInstanceof {
			lhs = p.InstanceOf(b, lhs)
			continue
		}
		if !contains(binaryLevels[level], tok) {
			return lhs
		}
		var ok bool
		lhs, ok = BinaryStep(b, lhs, tok, operand, mode)
		if !ok {
			return lhs
		}
	}
}

// BinaryStep consumes the operator tok and a right operand, wrapping lhs in
// a binary expression. It reports false when the right operand is missing.
func BinaryStep(b *syntax.Builder, lhs *syntax.Marker, tok syntax.TokenKind, operand Level, mode Mode) (*syntax.Marker, bool) {
	m := lhs.Precede()
	AdvanceGtToken(b, tok)
	rhs := operand(b, mode)
	if rhs == nil {
		b.Error("expression expected")
	}
	m.Done(syntax.BinaryExpr)
	return m, rhs != nil
}

// InstanceOf wraps lhs in an instanceof test against the following type.
func (p *Parser) InstanceOf(b *syntax.Builder, lhs *syntax.Marker) *syntax.Marker {
	m := lhs.Precede()
	b.Advance()
	if p.ParseType(b, 0) == nil {
		b.Error("type expected")
	}
	m.Done(syntax.InstanceOfExpr)
	return m
}

// AssignmentOver parses an optional assignment whose target is a
// conditional expression over operand.
func (p *Parser) AssignmentOver(b *syntax.Builder, mode Mode, operand Level) *syntax.Marker {
	lhs := p.ConditionalOver(b, mode, operand)
	if lhs == nil {
		return nil
	}
	tok := GtTokenType(b)
	if !contains(assignmentOps, tok) {
		return lhs
	}
	m := lhs.Precede()
	AdvanceGtToken(b, tok)
	if p.top.ParseExpression(b, mode) == nil {
		b.Error("expression expected")
	}
	m.Done(syntax.AssignmentExpr)
	return m
}

// ConditionalOver parses `cond ? a : b` where cond is produced by operand.
func (p *Parser) ConditionalOver(b *syntax.Builder, mode Mode, operand Level) *syntax.Marker {
	cond := operand(b, mode)
	if cond == nil || b.TokenType() != syntax.Question {
		return cond
	}
	m := cond.Precede()
	b.Advance()
	if p.top.ParseExpression(b, mode) == nil {
		b.Error("expression expected")
	}
	if !b.ExpectOrError(syntax.Colon, "':' expected") {
		m.Done(syntax.ConditionalExpr)
		return m
	}
	if p.ConditionalOver(b, mode, operand) == nil {
		b.Error("expression expected")
	}
	m.Done(syntax.ConditionalExpr)
	return m
}

// UnaryOver parses prefix operators and casts over postfix.
func (p *Parser) UnaryOver(b *syntax.Builder, mode Mode, postfix Level) *syntax.Marker {
	switch b.TokenType() {
	case syntax.Plus, syntax.Minus, syntax.PlusPlus, syntax.MinusMinus, syntax.Bang, syntax.Tilde:
		m := b.Mark()
		b.Advance()
		if p.UnaryOver(b, mode, postfix) == nil {
			b.Error("expression expected")
		}
		m.Done(syntax.PrefixExpr)
		return m
	case syntax.LParen:
		if cast := p.cast(b, mode, postfix); cast != nil {
			return cast
		}
	}
	return postfix(b, mode)
}

// cast speculatively parses `(Type) operand`, leaving the cursor untouched
// when the tokens are not a cast.
func (p *Parser) cast(b *syntax.Builder, mode Mode, postfix Level) *syntax.Marker {
	m := b.Mark()
	b.Advance()
	info := p.ParseType(b, 0)
	if info == nil || !b.Expect(syntax.RParen) {
		m.Rollback()
		return nil
	}
	switch b.TokenType() {
	case syntax.Plus, syntax.Minus, syntax.PlusPlus, syntax.MinusMinus:
		if !info.Primitive {
			m.Rollback()
			return nil
		}
	}
	if p.UnaryOver(b, mode|ForbidLambda, postfix) == nil {
		m.Rollback()
		return nil
	}
	m.Done(syntax.TypeCastExpr)
	return m
}

func (p *Parser) postfix(b *syntax.Builder, mode Mode) *syntax.Marker {
	return p.PostfixOver(b, mode, p.parenthesized)
}

// PostfixOver parses a primary expression, its selectors and trailing
// '++'/'--', delegating a leading '(' to parens.
func (p *Parser) PostfixOver(b *syntax.Builder, mode Mode, parens Level) *syntax.Marker {
	expr := p.PrimaryOver(b, mode, parens)
	if expr == nil {
		return nil
	}
	for b.TokenType() == syntax.PlusPlus || b.TokenType() == syntax.MinusMinus {
		m := expr.Precede()
		b.Advance()
		m.Done(syntax.PostfixExpr)
		expr = m
	}
	return expr
}

func (p *Parser) parenthesized(b *syntax.Builder, mode Mode) *syntax.Marker {
	if mode&ForbidLambda == 0 {
		if lambda := p.ParseLambdaAfterParen(b); lambda != nil {
			return lambda
		}
	}
	return p.Parenthesized(b)
}

// Parenthesized parses '(' expression ')'.
func (p *Parser) Parenthesized(b *syntax.Builder) *syntax.Marker {
	m := b.Mark()
	b.Advance()
	if p.top.ParseExpression(b, 0) == nil {
		b.Error("expression expected")
	} else {
		b.ExpectOrError(syntax.RParen, "')' expected")
	}
	m.Done(syntax.ParenExpr)
	return m
}

// ParseArgumentList implements Grammar: '(' expr, ... ')'.
func (p *Parser) ParseArgumentList(b *syntax.Builder) *syntax.Marker {
	list := b.Mark()
	b.Advance()
	if !b.Expect(syntax.RParen) {
		for {
			if p.top.ParseExpression(b, 0) == nil {
				empty := b.Mark()
				empty.Done(syntax.EmptyExpr)
				b.Error("expression expected")
			}
			if !b.Expect(syntax.Comma) {
				break
			}
		}
		b.ExpectOrError(syntax.RParen, "')' expected")
	}
	list.Done(syntax.ExpressionList)
	return list
}
