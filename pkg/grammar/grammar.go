// Package grammar extends the host grammar with tuple expressions, binding
// (juxtaposition) expressions, labeled call arguments and default-valued
// parameters. It wraps a host.Parser rather than replacing it: everything
// the dialect does not change is parsed by the host productions.
package grammar

import (
	"github.com/vito/juxt/pkg/host"
	"github.com/vito/juxt/pkg/syntax"
)

// Features toggles the dialect's constructs. A disabled construct falls
// back to the host production.
type Features struct {
	Tuples        bool
	Bindings      bool
	DefaultParams bool
}

// AllFeatures enables every construct.
func AllFeatures() Features {
	return Features{Tuples: true, Bindings: true, DefaultParams: true}
}

// Parser is the extended grammar.
type Parser struct {
	host     *host.Parser
	features Features
}

var _ host.Grammar = (*Parser)(nil)

// New wraps base with the dialect.
func New(base *host.Parser, features Features) *Parser {
	p := &Parser{features: features}
	p.host = base.Extend(p)
	return p
}

// Features returns the enabled constructs.
func (p *Parser) Features() Features {
	return p.features
}

// ParseFile parses a compilation unit.
func (p *Parser) ParseFile(filename, src string) (*syntax.Tree, error) {
	return p.host.ParseFile(filename, src)
}

// ParseStatement implements host.Grammar. Only return statements differ
// from the host: they may return a bare tuple.
func (p *Parser) ParseStatement(b *syntax.Builder) *syntax.Marker {
	if b.TokenType() == syntax.KwReturn && p.features.Tuples {
		return p.host.ReturnStatement(b, p.returnValue)
	}
	return p.host.ParseStatement(b)
}

func (p *Parser) returnValue(b *syntax.Builder, mode host.Mode) *syntax.Marker {
	return p.tupleOrExpression(b, false)
}

// ParseParameterList implements host.Grammar, accepting `Type name = expr`.
func (p *Parser) ParseParameterList(b *syntax.Builder) *syntax.Marker {
	if !p.features.DefaultParams {
		return p.host.ParseParameterList(b)
	}
	return p.host.ParameterList(b, p.parameter)
}

func (p *Parser) parameter(b *syntax.Builder) *syntax.Marker {
	return p.host.ParameterWith(b, func(b *syntax.Builder) {
		if b.Expect(syntax.Eq) && p.ParseExpression(b, 0) == nil {
			b.Error("expression expected")
		}
	})
}
