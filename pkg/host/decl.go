package host

import (
	"github.com/vito/juxt/pkg/syntax"
)

// File parses a compilation unit: an optional package statement, imports
// and type declarations.
func (p *Parser) File(b *syntax.Builder) {
	file := b.Mark()

	if b.TokenType() == syntax.KwPackage {
		pkg := b.Mark()
		b.Advance()
		p.qualifiedName(b, false)
		b.ExpectOrError(syntax.Semicolon, "';' expected")
		pkg.Done(syntax.PackageStatement)
	}

	for b.TokenType() == syntax.KwImport {
		imp := b.Mark()
		b.Advance()
		b.Expect(syntax.KwStatic)
		p.qualifiedName(b, true)
		b.ExpectOrError(syntax.Semicolon, "';' expected")
		imp.Done(syntax.ImportStatement)
	}

	for !b.EOF() {
		if b.Expect(syntax.Semicolon) {
			continue
		}
		decl := b.Mark()
		p.ParseModifiers(b)
		switch b.TokenType() {
		case syntax.KwClass, syntax.KwInterface:
			p.classRest(b, decl)
		default:
			b.Advance()
			decl.Fail("class or interface expected")
		}
	}

	file.Done(syntax.File)
}

func (p *Parser) qualifiedName(b *syntax.Builder, star bool) {
	if !b.ExpectOrError(syntax.Ident, "identifier expected") {
		return
	}
	for b.TokenType() == syntax.Dot {
		switch b.LookAhead(1) {
		case syntax.Ident:
			b.Advance()
			b.Advance()
		case syntax.Star:
			if !star {
				return
			}
			b.Advance()
			b.Advance()
			return
		default:
			b.Advance()
			b.Error("identifier expected")
			return
		}
	}
}

// ParseModifiers parses modifiers and annotations. It always produces a
// Modifiers element, possibly empty.
func (p *Parser) ParseModifiers(b *syntax.Builder) *syntax.Marker {
	m := b.Mark()
	for {
		tok := b.TokenType()
		switch {
		case tok.IsModifier():
			b.Advance()
		case tok == syntax.At && b.LookAhead(1) == syntax.Ident:
			b.Advance()
			p.qualifiedName(b, false)
			if b.TokenType() == syntax.LParen {
				p.top.ParseArgumentList(b)
			}
		default:
			m.Done(syntax.Modifiers)
			return m
		}
	}
}

func (p *Parser) classRest(b *syntax.Builder, decl *syntax.Marker) {
	b.Advance()
	b.ExpectOrError(syntax.Ident, "identifier expected")
	if b.TokenType() == syntax.Lt {
		p.ParseTypeParameters(b)
	}
	if b.TokenType() == syntax.KwExtends {
		p.typeList(b, syntax.ExtendsList)
	}
	if b.TokenType() == syntax.KwImplements {
		p.typeList(b, syntax.ImplementsList)
	}
	p.classBody(b)
	decl.Done(syntax.Class)
}

func (p *Parser) typeList(b *syntax.Builder, kind syntax.Kind) {
	m := b.Mark()
	b.Advance()
	for {
		if p.ParseType(b, 0) == nil {
			b.Error("type expected")
			break
		}
		if !b.Expect(syntax.Comma) {
			break
		}
	}
	m.Done(kind)
}

func (p *Parser) classBody(b *syntax.Builder) {
	body := b.Mark()
	if !b.ExpectOrError(syntax.LBrace, "'{' expected") {
		body.Done(syntax.ClassBody)
		return
	}
	for !b.EOF() && b.TokenType() != syntax.RBrace {
		p.member(b)
	}
	b.ExpectOrError(syntax.RBrace, "'}' expected")
	body.Done(syntax.ClassBody)
}

func (p *Parser) member(b *syntax.Builder) {
	if b.Expect(syntax.Semicolon) {
		return
	}

	decl := b.Mark()
	p.ParseModifiers(b)

	switch b.TokenType() {
	case syntax.KwClass, syntax.KwInterface:
		p.classRest(b, decl)
		return
	case syntax.Lt:
		p.ParseTypeParameters(b)
	}

	if b.TokenType() == syntax.Ident && b.LookAhead(1) == syntax.LParen {
		// constructor
		b.Advance()
		p.methodRest(b, decl)
		return
	}

	if p.ParseType(b, 0) == nil {
		if b.TokenType() != syntax.RBrace {
			b.Advance()
		}
		decl.Fail("member declaration expected")
		return
	}

	if !b.ExpectOrError(syntax.Ident, "identifier expected") {
		decl.Done(syntax.Field)
		if b.TokenType() != syntax.RBrace {
			skipTo(b, "unexpected tokens", syntax.Semicolon, syntax.RBrace)
			b.Expect(syntax.Semicolon)
		}
		return
	}

	if b.TokenType() == syntax.LParen {
		p.methodRest(b, decl)
		return
	}

	p.brackets(b)
	if b.Expect(syntax.Eq) {
		p.variableInitializer(b)
	}
	b.ExpectOrError(syntax.Semicolon, "';' expected")
	decl.Done(syntax.Field)
}

func (p *Parser) methodRest(b *syntax.Builder, decl *syntax.Marker) {
	p.top.ParseParameterList(b)
	p.brackets(b)
	if b.TokenType() == syntax.KwThrows {
		p.typeList(b, syntax.ThrowsList)
	}
	if b.TokenType() == syntax.LBrace {
		p.ParseCodeBlock(b)
	} else {
		b.ExpectOrError(syntax.Semicolon, "'{' or ';' expected")
	}
	decl.Done(syntax.Method)
}

func (p *Parser) brackets(b *syntax.Builder) bool {
	found := false
	for b.TokenType() == syntax.LBracket && b.LookAhead(1) == syntax.RBracket {
		b.Advance()
		b.Advance()
		found = true
	}
	return found
}

func (p *Parser) variableInitializer(b *syntax.Builder) {
	if b.TokenType() == syntax.LBrace {
		p.ParseArrayInitializer(b)
		return
	}
	if p.top.ParseExpression(b, 0) == nil {
		b.Error("expression expected")
	}
}

// ParseTypeParameters parses a '<' ... '>' type parameter list.
func (p *Parser) ParseTypeParameters(b *syntax.Builder) *syntax.Marker {
	list := b.Mark()
	b.Advance()
	for {
		param := b.Mark()
		if !b.ExpectOrError(syntax.Ident, "identifier expected") {
			param.Drop()
			break
		}
		if b.Expect(syntax.KwExtends) {
			for {
				if p.ParseType(b, 0) == nil {
					b.Error("type expected")
					break
				}
				if !b.Expect(syntax.And) {
					break
				}
			}
		}
		param.Done(syntax.TypeParameter)
		if !b.Expect(syntax.Comma) {
			break
		}
	}
	b.ExpectOrError(syntax.Gt, "'>' expected")
	list.Done(syntax.TypeParameterList)
	return list
}

// ParameterList parses '(' param, ... ')' using param for each entry.
func (p *Parser) ParameterList(b *syntax.Builder, param func(*syntax.Builder) *syntax.Marker) *syntax.Marker {
	list := b.Mark()
	if !b.ExpectOrError(syntax.LParen, "'(' expected") {
		list.Done(syntax.ParameterList)
		return list
	}
	if !b.Expect(syntax.RParen) {
		for {
			if param(b) == nil {
				b.Error("parameter expected")
				break
			}
			if !b.Expect(syntax.Comma) {
				break
			}
		}
		if !b.Expect(syntax.RParen) {
			b.Error("',' or ')' expected")
			skipTo(b, "unexpected tokens", syntax.RParen, syntax.LBrace, syntax.Semicolon, syntax.RBrace)
			b.Expect(syntax.RParen)
		}
	}
	list.Done(syntax.ParameterList)
	return list
}

// ParseParameterList implements Grammar.
func (p *Parser) ParseParameterList(b *syntax.Builder) *syntax.Marker {
	return p.ParameterList(b, p.ParseParameter)
}

// ParseParameter parses `[modifiers] Type name`.
func (p *Parser) ParseParameter(b *syntax.Builder) *syntax.Marker {
	return p.ParameterWith(b, nil)
}

// ParameterWith parses a parameter, calling tail after its name so a
// dialect can accept more syntax there.
func (p *Parser) ParameterWith(b *syntax.Builder, tail func(*syntax.Builder)) *syntax.Marker {
	param := b.Mark()
	p.ParseModifiers(b)
	if p.ParseType(b, AllowEllipsis) == nil {
		param.Rollback()
		return nil
	}
	b.ExpectOrError(syntax.Ident, "identifier expected")
	p.brackets(b)
	if tail != nil {
		tail(b)
	}
	param.Done(syntax.Parameter)
	return param
}
