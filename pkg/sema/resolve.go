package sema

import (
	"fmt"
	"strings"

	"github.com/vito/juxt/pkg/syntax"
	"github.com/vito/juxt/pkg/types"
)

// ResolveType resolves a TypeElement in the scope it appears in: type
// parameters of enclosing methods and classes, member classes of enclosing
// classes, then top-level classes. An unknown name is reported and
// resolves to nil. `var` resolves to nil without a report.
func (p *Program) ResolveType(elem *syntax.Node) types.Type {
	return p.resolveType(elem, nil)
}

// ResolveTypeWith resolves elem like ResolveType, with vars in scope ahead
// of any declared type parameter. Type text parsed on its own, such as a
// bundle manifest's, has no declarations around it.
func (p *Program) ResolveTypeWith(elem *syntax.Node, vars []*types.TypeVar) types.Type {
	return p.resolveType(elem, vars)
}

func (p *Program) resolveType(elem *syntax.Node, vars []*types.TypeVar) types.Type {
	if elem == nil || elem.Kind != syntax.TypeElement || len(elem.Children) == 0 {
		return nil
	}

	first := elem.Children[0]
	if first.Is(syntax.Question) {
		w := &types.Wildcard{Super: elem.ChildToken(syntax.KwSuper) != nil}
		if bound := elem.Child(syntax.TypeElement); bound != nil {
			w.Bound = p.resolveType(bound, vars)
			if w.Bound == nil {
				return nil
			}
		}
		return w
	}

	var t types.Type
	if first.IsToken() && first.Token.Kind.IsPrimitive() {
		t = types.Primitive(first.Token.Text)
	} else {
		t = p.resolveClassRef(elem, vars)
		if t == nil {
			return nil
		}
	}

	for _, c := range elem.Children {
		if c.Is(syntax.LBracket) || c.Is(syntax.Ellipsis) {
			t = &types.Array{Elem: t}
		}
	}
	return t
}

func (p *Program) resolveClassRef(elem *syntax.Node, vars []*types.TypeVar) types.Type {
	var segments []string
	var args *syntax.Node
	for _, c := range elem.Children {
		switch {
		case c.Is(syntax.Ident):
			segments = append(segments, c.Token.Text)
			args = nil
		case c.Kind == syntax.TypeArgumentList && !c.IsToken():
			args = c
		}
	}
	if len(segments) == 0 {
		return nil
	}
	if len(segments) == 1 && segments[0] == "var" && args == nil {
		return nil
	}

	if len(segments) == 1 && args == nil {
		for _, tv := range vars {
			if tv.Var == segments[0] {
				return tv
			}
		}
		if tv := p.lookupTypeVar(elem, segments[0]); tv != nil {
			return tv
		}
	}

	cls := p.lookupClassPath(elem, segments)
	if cls == nil {
		p.report(elem, "Cannot resolve symbol '"+strings.Join(segments, ".")+"'")
		return nil
	}

	ct := &types.ClassType{Decl: cls}
	if args != nil {
		for _, arg := range args.Elements() {
			if arg.Kind != syntax.TypeElement {
				continue
			}
			t := p.resolveType(arg, vars)
			if t == nil {
				return cls.Raw()
			}
			ct.Args = append(ct.Args, t)
		}
		if len(ct.Args) > 0 && len(ct.Args) != len(cls.TypeParams) {
			p.report(args, fmt.Sprintf("Wrong number of type arguments: %d; required: %d", len(ct.Args), len(cls.TypeParams)))
			return cls.Raw()
		}
	}
	return ct
}

// IsDiamond reports whether a TypeElement ends in an empty `<>`.
func IsDiamond(elem *syntax.Node) bool {
	if elem == nil {
		return false
	}
	args := elem.Child(syntax.TypeArgumentList)
	return args != nil && len(args.Elements()) == 0
}

func (p *Program) lookupTypeVar(ctx *syntax.Node, name string) *types.TypeVar {
	for n := ctx.Parent; n != nil; n = n.Parent {
		var params []*types.TypeVar
		switch n.Kind {
		case syntax.Method:
			if m := p.methodOf[n]; m != nil {
				params = m.TypeParams
			}
		case syntax.Class:
			if c := p.classOf[n]; c != nil {
				params = c.TypeParams
			}
		}
		for _, tv := range params {
			if tv.Var == name {
				return tv
			}
		}
	}
	return nil
}

// TypeVarsInScope returns the type parameters that can be named at n:
// those of enclosing methods and classes, stopping at static boundaries.
func (p *Program) TypeVarsInScope(n *syntax.Node) types.TypeVarSet {
	set := types.NewTypeVarSet()
	hidden := false
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		switch cur.Kind {
		case syntax.Method:
			if m := p.methodOf[cur]; m != nil {
				for _, tv := range m.TypeParams {
					set.Add(tv)
				}
				hidden = m.Static
			}
		case syntax.Class:
			c := p.classOf[cur]
			if c == nil {
				continue
			}
			if !hidden {
				for _, tv := range c.TypeParams {
					set.Add(tv)
				}
			}
			hidden = c.Static
		}
	}
	return set
}

func (p *Program) lookupClassPath(ctx *syntax.Node, segments []string) *types.Class {
	cls := p.lookupClass(ctx, segments[0])
	rest := segments[1:]
	if cls == nil {
		for i := 1; i < len(segments); i++ {
			pkg := strings.Join(segments[:i], ".")
			if cls = p.LookupQualified(pkg, segments[i]); cls != nil {
				rest = segments[i+1:]
				break
			}
		}
	}
	for _, name := range rest {
		if cls == nil {
			return nil
		}
		cls = cls.InnerClass(name)
	}
	return cls
}

// lookupClass resolves a simple class name from ctx: the enclosing classes
// and their member classes first, then top-level classes.
func (p *Program) lookupClass(ctx *syntax.Node, name string) *types.Class {
	for n := ctx; n != nil; n = n.Parent {
		if n.Kind != syntax.Class || n.IsToken() {
			continue
		}
		cls := p.classOf[n]
		if cls == nil {
			continue
		}
		if cls.Name == name {
			return cls
		}
		if inner := cls.InnerClass(name); inner != nil {
			return inner
		}
	}
	return p.Lookup(p.PackageOf(ctx), name)
}
