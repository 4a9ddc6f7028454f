package grammar

import (
	"github.com/vito/juxt/pkg/host"
	"github.com/vito/juxt/pkg/syntax"
)

type level struct {
	ops        []syntax.TokenKind
	binding    bool
	instanceOf bool
}

// levels is the binary operator ladder, loosest first. The binding level
// has no operator token and sits between additive and multiplicative.
var levels = []level{
	{ops: []syntax.TokenKind{syntax.OrOr}},
	{ops: []syntax.TokenKind{syntax.AndAnd}},
	{ops: []syntax.TokenKind{syntax.Or}},
	{ops: []syntax.TokenKind{syntax.Xor}},
	{ops: []syntax.TokenKind{syntax.And}},
	{ops: []syntax.TokenKind{syntax.EqEq, syntax.Ne}},
	{ops: host.RelationalOps, instanceOf: true},
	{ops: []syntax.TokenKind{syntax.Shl, syntax.Shr, syntax.Ushr}},
	{ops: []syntax.TokenKind{syntax.Plus, syntax.Minus}},
	{binding: true},
	{ops: []syntax.TokenKind{syntax.Star, syntax.Slash, syntax.Percent}},
}

const multiplicative = 10

// ParseExpression implements host.Grammar.
func (p *Parser) ParseExpression(b *syntax.Builder, mode host.Mode) *syntax.Marker {
	return p.host.AssignmentOver(b, mode, func(b *syntax.Builder, mode host.Mode) *syntax.Marker {
		return p.binary(b, mode, 0)
	})
}

func (p *Parser) operand(lvl int) host.Level {
	return func(b *syntax.Builder, mode host.Mode) *syntax.Marker {
		return p.binary(b, mode, lvl)
	}
}

func (p *Parser) binary(b *syntax.Builder, mode host.Mode, lvl int) *syntax.Marker {
	if lvl == len(levels) {
		return p.host.UnaryOver(b, mode, p.postfix)
	}
	if levels[lvl].binding && !p.features.Bindings {
		return p.binary(b, mode, lvl+1)
	}
	lhs := p.binary(b, mode, lvl+1)
	if lhs == nil {
		return nil
	}
	return p.binaryTail(b, mode, lhs, lvl)
}

// binaryTail folds operators of level lvl onto lhs. Chains always nest
// left-associatively as binary nodes.
func (p *Parser) binaryTail(b *syntax.Builder, mode host.Mode, lhs *syntax.Marker, lvl int) *syntax.Marker {
	l := levels[lvl]
	for {
		tok := host.GtTokenType(b)
		switch {
		case l.instanceOf && tok == syntax.KwInstanceof:
			lhs = p.host.InstanceOf(b, lhs)
		case l.binding:
			if !startsBindingOperand(tok) {
				return lhs
			}
			m := lhs.Precede()
			p.bindingOperand(b, mode)
			m.Done(syntax.BinaryExpr)
			lhs = m
		case containsKind(l.ops, tok):
			var ok bool
			lhs, ok = host.BinaryStep(b, lhs, tok, p.operand(lvl+1), mode)
			if !ok {
				return lhs
			}
		default:
			return lhs
		}
	}
}

func startsBindingOperand(tok syntax.TokenKind) bool {
	switch tok {
	case syntax.Ident, syntax.IntLiteral, syntax.LongLiteral, syntax.FloatLiteral,
		syntax.DoubleLiteral, syntax.CharLiteral, syntax.StringLiteral, syntax.LParen:
		return true
	}
	return false
}

// bindingOperand parses the right operand of a binding expression: a
// literal, a bare identifier or a parenthesized expression, followed by any
// multiplicative tail.
func (p *Parser) bindingOperand(b *syntax.Builder, mode host.Mode) *syntax.Marker {
	var expr *syntax.Marker
	switch b.TokenType() {
	case syntax.Ident:
		expr = b.Mark()
		b.Advance()
		expr.Done(syntax.ReferenceExpr)
	case syntax.LParen:
		expr = b.Mark()
		b.Advance()
		if p.ParseExpression(b, 0) == nil {
			b.Error("expression expected")
		} else {
			b.ExpectOrError(syntax.RParen, "')' expected")
		}
		expr.Done(syntax.ParenExpr)
	default:
		expr = b.Mark()
		b.Advance()
		expr.Done(syntax.LiteralExpr)
	}
	if containsKind(levels[multiplicative].ops, host.GtTokenType(b)) {
		return p.binaryTail(b, mode, expr, multiplicative)
	}
	return expr
}

func (p *Parser) postfix(b *syntax.Builder, mode host.Mode) *syntax.Marker {
	return p.host.PostfixOver(b, mode, p.parenthesized)
}

// parenthesized handles a '(' in primary position: a lambda parameter list
// if one parses, otherwise a tuple or a parenthesized expression.
func (p *Parser) parenthesized(b *syntax.Builder, mode host.Mode) *syntax.Marker {
	if mode&host.ForbidLambda == 0 {
		if lambda := p.host.ParseLambdaAfterParen(b); lambda != nil {
			return lambda
		}
	}
	if !p.features.Tuples {
		return p.host.Parenthesized(b)
	}
	return p.tupleOrExpression(b, true)
}

func containsKind(kinds []syntax.TokenKind, kind syntax.TokenKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
