package host

import (
	"github.com/vito/juxt/pkg/syntax"
)

// ParseStatement implements Grammar.
func (p *Parser) ParseStatement(b *syntax.Builder) *syntax.Marker {
	switch b.TokenType() {
	case syntax.RBrace, syntax.EOF:
		return nil
	case syntax.LBrace:
		m := b.Mark()
		p.ParseCodeBlock(b)
		m.Done(syntax.BlockStatement)
		return m
	case syntax.Semicolon:
		m := b.Mark()
		b.Advance()
		m.Done(syntax.EmptyStatement)
		return m
	case syntax.KwReturn:
		return p.ReturnStatement(b, p.top.ParseExpression)
	case syntax.KwIf:
		return p.ifStatement(b)
	case syntax.KwWhile:
		return p.whileStatement(b)
	case syntax.KwFor:
		return p.forStatement(b)
	}

	if decl := p.declarationStatement(b); decl != nil {
		return decl
	}

	m := b.Mark()
	if p.top.ParseExpression(b, 0) == nil {
		b.Advance()
		m.Fail("statement expected")
		return m
	}
	b.ExpectOrError(syntax.Semicolon, "';' expected")
	m.Done(syntax.ExpressionStatement)
	return m
}

// ParseCodeBlock parses '{' statements '}'.
func (p *Parser) ParseCodeBlock(b *syntax.Builder) *syntax.Marker {
	block := b.Mark()
	if !b.ExpectOrError(syntax.LBrace, "'{' expected") {
		block.Done(syntax.CodeBlock)
		return block
	}
	for b.TokenType() != syntax.RBrace && !b.EOF() {
		if p.top.ParseStatement(b) == nil {
			break
		}
	}
	b.ExpectOrError(syntax.RBrace, "'}' expected")
	block.Done(syntax.CodeBlock)
	return block
}

// ReturnStatement parses `return [value];`, using value for the returned
// expression.
func (p *Parser) ReturnStatement(b *syntax.Builder, value Level) *syntax.Marker {
	m := b.Mark()
	b.Advance()
	value(b, 0)
	b.ExpectOrError(syntax.Semicolon, "';' expected")
	m.Done(syntax.ReturnStatement)
	return m
}

func (p *Parser) declarationStatement(b *syntax.Builder) *syntax.Marker {
	m := b.Mark()
	if p.LocalVariable(b) == nil {
		m.Rollback()
		return nil
	}
	b.ExpectOrError(syntax.Semicolon, "';' expected")
	m.Done(syntax.DeclarationStatement)
	return m
}

// LocalVariable parses `[modifiers] Type name [= init]`, rolling back when
// the tokens do not look like a declaration.
func (p *Parser) LocalVariable(b *syntax.Builder) *syntax.Marker {
	local := b.Mark()
	p.ParseModifiers(b)
	if p.ParseType(b, 0) == nil || b.TokenType() != syntax.Ident {
		local.Rollback()
		return nil
	}
	switch b.LookAhead(1) {
	case syntax.Eq, syntax.Semicolon, syntax.Comma, syntax.LBracket, syntax.Colon:
	default:
		local.Rollback()
		return nil
	}
	b.Advance()
	p.brackets(b)
	if b.Expect(syntax.Eq) {
		p.variableInitializer(b)
	}
	local.Done(syntax.LocalVariable)
	return local
}

func (p *Parser) condition(b *syntax.Builder) {
	if !b.ExpectOrError(syntax.LParen, "'(' expected") {
		return
	}
	if p.top.ParseExpression(b, 0) == nil {
		b.Error("expression expected")
	}
	b.ExpectOrError(syntax.RParen, "')' expected")
}

func (p *Parser) body(b *syntax.Builder) {
	if p.top.ParseStatement(b) == nil {
		b.Error("statement expected")
	}
}

func (p *Parser) ifStatement(b *syntax.Builder) *syntax.Marker {
	m := b.Mark()
	b.Advance()
	p.condition(b)
	p.body(b)
	if b.Expect(syntax.KwElse) {
		p.body(b)
	}
	m.Done(syntax.IfStatement)
	return m
}

func (p *Parser) whileStatement(b *syntax.Builder) *syntax.Marker {
	m := b.Mark()
	b.Advance()
	p.condition(b)
	p.body(b)
	m.Done(syntax.WhileStatement)
	return m
}

func (p *Parser) forStatement(b *syntax.Builder) *syntax.Marker {
	m := b.Mark()
	b.Advance()
	if !b.ExpectOrError(syntax.LParen, "'(' expected") {
		m.Done(syntax.ForStatement)
		return m
	}

	if p.LocalVariable(b) != nil {
		if b.Expect(syntax.Colon) {
			if p.top.ParseExpression(b, 0) == nil {
				b.Error("expression expected")
			}
			b.ExpectOrError(syntax.RParen, "')' expected")
			p.body(b)
			m.Done(syntax.ForStatement)
			return m
		}
	} else {
		p.expressionRun(b)
	}
	b.ExpectOrError(syntax.Semicolon, "';' expected")
	if b.TokenType() != syntax.Semicolon {
		if p.top.ParseExpression(b, 0) == nil {
			b.Error("expression expected")
		}
	}
	b.ExpectOrError(syntax.Semicolon, "';' expected")
	if b.TokenType() != syntax.RParen {
		p.expressionRun(b)
	}
	b.ExpectOrError(syntax.RParen, "')' expected")
	p.body(b)
	m.Done(syntax.ForStatement)
	return m
}

func (p *Parser) expressionRun(b *syntax.Builder) {
	for p.top.ParseExpression(b, 0) != nil {
		if !b.Expect(syntax.Comma) {
			return
		}
	}
}
