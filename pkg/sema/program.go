// Package sema builds a declaration model from parse trees and types the
// expressions in them. It knows nothing about bundles or tuples: those
// plug in through the TupleTyper and CallTyper hooks on a Typer.
package sema

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/vito/juxt/pkg/diag"
	"github.com/vito/juxt/pkg/syntax"
	"github.com/vito/juxt/pkg/types"
)

// File is one parsed compilation unit.
type File struct {
	Tree    *syntax.Tree
	Package string
	Classes []*types.Class
}

// Program is the classes declared by a set of files, plus the built-in
// classes and any declared later (tuple types, library owners).
type Program struct {
	files []*File

	mu       sync.RWMutex
	classes  map[string][]*types.Class
	all      []*types.Class
	reported map[*syntax.Node]bool
	diags    diag.List

	classOf  map[*syntax.Node]*types.Class
	methodOf map[*syntax.Node]*types.Method
	paramOf  map[*syntax.Node]*types.Param
	fieldOf  map[*syntax.Node]*types.Field
}

// Build declares every class in trees and resolves their members.
func Build(trees ...*syntax.Tree) (*Program, error) {
	p := &Program{
		classes:  map[string][]*types.Class{},
		reported: map[*syntax.Node]bool{},
		classOf:  map[*syntax.Node]*types.Class{},
		methodOf: map[*syntax.Node]*types.Method{},
		paramOf:  map[*syntax.Node]*types.Param{},
		fieldOf:  map[*syntax.Node]*types.Field{},
	}
	for _, c := range types.Builtins() {
		p.classes[c.Name] = append(p.classes[c.Name], c)
	}

	for _, tree := range trees {
		file := tree.Root.Child(syntax.File)
		if file == nil {
			return nil, errors.Errorf("%s: not a compilation unit", tree.Filename)
		}
		f := &File{Tree: tree, Package: packageName(file)}
		for _, decl := range file.Elements() {
			if decl.Kind != syntax.Class {
				continue
			}
			cls := p.declareClass(decl, f.Package, nil)
			f.Classes = append(f.Classes, cls)
			p.classes[cls.Name] = append(p.classes[cls.Name], cls)
		}
		p.files = append(p.files, f)
	}

	for _, cls := range p.all {
		p.resolveHeader(cls)
	}
	for _, cls := range p.all {
		p.resolveMembers(cls)
	}

	slog.Debug("built program", "files", len(p.files), "classes", len(p.all))
	return p, nil
}

func packageName(file *syntax.Node) string {
	stmt := file.Child(syntax.PackageStatement)
	if stmt == nil {
		return ""
	}
	var parts []string
	for _, c := range stmt.Children {
		if c.Is(syntax.Ident) {
			parts = append(parts, c.Token.Text)
		}
	}
	return strings.Join(parts, ".")
}

func hasModifier(decl *syntax.Node, kind syntax.TokenKind) bool {
	mods := decl.Child(syntax.Modifiers)
	return mods != nil && mods.ChildToken(kind) != nil
}

func (p *Program) declareClass(node *syntax.Node, pkg string, outer *types.Class) *types.Class {
	cls := &types.Class{
		Name:      node.Name(),
		Package:   pkg,
		Outer:     outer,
		Interface: node.ChildToken(syntax.KwInterface) != nil,
		Static:    hasModifier(node, syntax.KwStatic),
		Node:      node,
	}
	if params := node.Child(syntax.TypeParameterList); params != nil {
		for _, tp := range params.Elements() {
			if tp.Kind == syntax.TypeParameter {
				cls.TypeParams = append(cls.TypeParams, types.NewTypeVar(tp.Name()))
			}
		}
	}
	p.classOf[node] = cls
	p.all = append(p.all, cls)

	if body := node.Child(syntax.ClassBody); body != nil {
		for _, member := range body.Elements() {
			if member.Kind == syntax.Class {
				cls.Inner = append(cls.Inner, p.declareClass(member, pkg, cls))
			}
		}
	}
	return cls
}

func (p *Program) resolveHeader(cls *types.Class) {
	node := cls.Node
	if params := node.Child(syntax.TypeParameterList); params != nil {
		i := 0
		for _, tp := range params.Elements() {
			if tp.Kind != syntax.TypeParameter {
				continue
			}
			for _, bound := range tp.Elements() {
				if bound.Kind == syntax.TypeElement {
					if t := p.ResolveType(bound); t != nil {
						cls.TypeParams[i].Bounds = append(cls.TypeParams[i].Bounds, t)
					}
				}
			}
			i++
		}
	}

	supers := func(kind syntax.Kind) []*types.ClassType {
		var out []*types.ClassType
		list := node.Child(kind)
		if list == nil {
			return nil
		}
		for _, elem := range list.Elements() {
			if ct, ok := p.ResolveType(elem).(*types.ClassType); ok {
				out = append(out, ct)
			}
		}
		return out
	}
	extends := supers(syntax.ExtendsList)
	if cls.Interface {
		cls.Interfaces = extends
	} else {
		if len(extends) > 0 {
			cls.Super = extends[0]
		}
		cls.Interfaces = supers(syntax.ImplementsList)
	}
}

func (p *Program) resolveMembers(cls *types.Class) {
	body := cls.Node.Child(syntax.ClassBody)
	if body == nil {
		return
	}
	for _, member := range body.Elements() {
		switch member.Kind {
		case syntax.Field:
			f := &types.Field{
				Name:   member.Name(),
				Type:   p.declaredType(member),
				Static: hasModifier(member, syntax.KwStatic),
				Node:   member,
			}
			p.fieldOf[member] = f
			cls.Fields = append(cls.Fields, f)
		case syntax.Method:
			cls.AddMethod(p.declareMethod(cls, member))
		}
	}
}

func (p *Program) declareMethod(cls *types.Class, node *syntax.Node) *types.Method {
	m := &types.Method{
		Name:   node.Name(),
		Static: hasModifier(node, syntax.KwStatic),
		Node:   node,
	}
	typeElem := node.Child(syntax.TypeElement)
	if typeElem == nil {
		m.Ctor = true
		m.Name = cls.Name
	}

	var bounds [][]*syntax.Node
	if params := node.Child(syntax.TypeParameterList); params != nil {
		for _, tp := range params.Elements() {
			if tp.Kind == syntax.TypeParameter {
				m.TypeParams = append(m.TypeParams, types.NewTypeVar(tp.Name()))
				bounds = append(bounds, typeElements(tp))
			}
		}
	}
	// registered before resolving anything so the method's own type
	// parameters are in scope
	p.methodOf[node] = m
	for i, elems := range bounds {
		for _, elem := range elems {
			if t := p.ResolveType(elem); t != nil {
				m.TypeParams[i].Bounds = append(m.TypeParams[i].Bounds, t)
			}
		}
	}

	if typeElem != nil {
		m.Return = p.ResolveType(typeElem)
	}

	if list := node.Child(syntax.ParameterList); list != nil {
		for _, param := range list.Elements() {
			if param.Kind != syntax.Parameter {
				continue
			}
			pm := &types.Param{
				Name: param.Name(),
				Type: p.declaredType(param),
				Node: param,
			}
			if param.ChildToken(syntax.Eq) != nil {
				pm.Optional = true
				pm.Default = param.FirstExpression()
				if pm.Default != nil {
					pm.DefaultText = pm.Default.Text()
				}
			}
			if t := param.Child(syntax.TypeElement); t != nil && t.ChildToken(syntax.Ellipsis) != nil {
				m.Varargs = true
			}
			p.paramOf[param] = pm
			m.Params = append(m.Params, pm)
		}
	}
	return m
}

func typeElements(n *syntax.Node) []*syntax.Node {
	var out []*syntax.Node
	for _, c := range n.Elements() {
		if c.Kind == syntax.TypeElement {
			out = append(out, c)
		}
	}
	return out
}

// declaredType resolves the type of a field, parameter or local variable,
// including C-style brackets after the name.
func (p *Program) declaredType(decl *syntax.Node) types.Type {
	elem := decl.Child(syntax.TypeElement)
	if elem == nil {
		return nil
	}
	t := p.ResolveType(elem)
	if t == nil {
		return nil
	}
	for _, c := range decl.Children {
		if c.Is(syntax.LBracket) {
			t = &types.Array{Elem: t}
		}
	}
	return t
}

// Files returns the files the program was built from.
func (p *Program) Files() []*File {
	return p.files
}

// Classes returns every class declared in source, outer classes before
// their members.
func (p *Program) Classes() []*types.Class {
	return p.all
}

// ClassOf returns the class declared by a Class element.
func (p *Program) ClassOf(node *syntax.Node) *types.Class {
	return p.classOf[node]
}

// MethodOf returns the method or constructor declared by a Method element.
func (p *Program) MethodOf(node *syntax.Node) *types.Method {
	return p.methodOf[node]
}

// ParamOf returns the parameter declared by a Parameter element of a
// method.
func (p *Program) ParamOf(node *syntax.Node) *types.Param {
	return p.paramOf[node]
}

// FieldOf returns the field declared by a Field element.
func (p *Program) FieldOf(node *syntax.Node) *types.Field {
	return p.fieldOf[node]
}

// EnclosingClass returns the innermost class containing n.
func (p *Program) EnclosingClass(n *syntax.Node) *types.Class {
	if decl := n.Ancestor(syntax.Class); decl != nil {
		return p.classOf[decl]
	}
	return nil
}

// PackageOf returns the package of the file containing n.
func (p *Program) PackageOf(n *syntax.Node) string {
	for _, f := range p.files {
		if f.Tree == n.Tree() {
			return f.Package
		}
	}
	return ""
}

// Declare adds a top-level class, e.g. a synthesized tuple type or the
// owner of library bundles.
func (p *Program) Declare(cls *types.Class) {
	p.mu.Lock()
	p.classes[cls.Name] = append(p.classes[cls.Name], cls)
	p.mu.Unlock()
}

// Lookup finds a top-level class by simple name, preferring one in pkg.
func (p *Program) Lookup(pkg, name string) *types.Class {
	p.mu.RLock()
	defer p.mu.RUnlock()
	candidates := p.classes[name]
	for _, c := range candidates {
		if c.Outer == nil && c.Package == pkg {
			return c
		}
	}
	for _, c := range candidates {
		if c.Outer == nil {
			return c
		}
	}
	return nil
}

// LookupQualified finds a top-level class by package and name exactly.
func (p *Program) LookupQualified(pkg, name string) *types.Class {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, c := range p.classes[name] {
		if c.Outer == nil && c.Package == pkg {
			return c
		}
	}
	return nil
}

func (p *Program) report(node *syntax.Node, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reported[node] {
		return
	}
	p.reported[node] = true
	p.diags = append(p.diags, diag.At(diag.Error, node, msg))
}

// Diagnostics returns the problems found resolving declarations and type
// references, such as unknown type names.
func (p *Program) Diagnostics() diag.List {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(diag.List, len(p.diags))
	copy(out, p.diags)
	return out
}
