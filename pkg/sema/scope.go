package sema

import (
	"context"
	"strings"

	"github.com/vito/juxt/pkg/syntax"
	"github.com/vito/juxt/pkg/types"
)

// variable finds the local variable, parameter or field called name that
// is visible at n and returns its type.
func (t *Typer) variable(ctx context.Context, n *syntax.Node, name string) (types.Type, bool) {
	for cur := n; cur.Parent != nil; cur = cur.Parent {
		parent := cur.Parent
		switch parent.Kind {
		case syntax.CodeBlock:
			var found *syntax.Node
			for _, stmt := range parent.Children {
				if stmt == cur {
					break
				}
				if stmt.Kind != syntax.DeclarationStatement || stmt.IsToken() {
					continue
				}
				if local := stmt.Child(syntax.LocalVariable); local != nil && local.Name() == name {
					found = local
				}
			}
			if found != nil {
				return t.localType(ctx, found), true
			}
		case syntax.ForStatement:
			if local := parent.Child(syntax.LocalVariable); local != nil && local != cur && local.Name() == name {
				return t.localType(ctx, local), true
			}
		case syntax.Method:
			if param := parameterNamed(parent, name); param != nil {
				if pm := t.prog.ParamOf(param); pm != nil {
					return pm.Type, true
				}
				return nil, true
			}
		case syntax.LambdaExpr:
			if param := parameterNamed(parent, name); param != nil {
				return t.prog.declaredType(param), true
			}
		case syntax.Class:
			cls := t.prog.ClassOf(parent)
			if cls == nil {
				continue
			}
			if f, typ := types.LookupField(cls.Type(), name); f != nil {
				return typ, true
			}
		}
	}
	return nil, false
}

func parameterNamed(decl *syntax.Node, name string) *syntax.Node {
	list := decl.Child(syntax.ParameterList)
	if list == nil {
		return nil
	}
	for _, param := range list.Elements() {
		if param.Kind == syntax.Parameter && param.Name() == name {
			return param
		}
	}
	return nil
}

// localType returns the declared type of a local variable. `var` takes the
// type of the initializer, or of the elements iterated by a for-each.
func (t *Typer) localType(ctx context.Context, local *syntax.Node) types.Type {
	if typ := t.prog.declaredType(local); typ != nil {
		return typ
	}
	if elem := local.Child(syntax.TypeElement); elem == nil || strings.TrimSpace(elem.Text()) != "var" {
		return nil
	}
	if init := local.FirstExpression(); init != nil {
		return t.TypeOf(ctx, init)
	}
	loop := local.Parent
	if loop == nil || loop.Kind != syntax.ForStatement || loop.ChildToken(syntax.Colon) == nil {
		return nil
	}
	return elementType(t.TypeOf(ctx, loop.FirstExpression()))
}

func elementType(iterable types.Type) types.Type {
	switch x := iterable.(type) {
	case *types.Array:
		return x.Elem
	case *types.ClassType:
		if sup := types.AsSuper(x, types.Builtin("Iterable")); sup != nil && len(sup.Args) == 1 {
			if w, ok := sup.Args[0].(*types.Wildcard); ok {
				return w.Upper()
			}
			return sup.Args[0]
		}
	}
	return nil
}

func (t *Typer) reference(ctx context.Context, n *syntax.Node) types.Type {
	name := n.Name()
	q := n.FirstExpression()
	if q == nil {
		typ, _ := t.variable(ctx, n, name)
		return typ
	}

	qt, cls := t.qualifier(ctx, q)
	if cls != nil {
		if f, typ := types.LookupField(cls.Raw(), name); f != nil && f.Static {
			return typ
		}
		return nil
	}
	switch x := qt.(type) {
	case *types.ClassType:
		_, typ := types.LookupField(x, name)
		return typ
	case *types.TypeVar:
		if ct, ok := types.Erasure(x).(*types.ClassType); ok {
			_, typ := types.LookupField(ct, name)
			return typ
		}
	case *types.Array:
		if name == "length" {
			return types.Int
		}
	}
	return nil
}

// qualifier types the expression before a '.', which may instead name a
// class, in which case the class is returned.
func (t *Typer) qualifier(ctx context.Context, q *syntax.Node) (types.Type, *types.Class) {
	if q.Kind != syntax.ReferenceExpr {
		return t.TypeOf(ctx, q), nil
	}
	if q.FirstExpression() == nil {
		if typ, ok := t.variable(ctx, q, q.Name()); ok {
			return typ, nil
		}
		return nil, t.prog.lookupClass(q, q.Name())
	}
	if typ := t.TypeOf(ctx, q); typ != nil {
		return typ, nil
	}
	var segments []string
	for _, leaf := range q.Leaves() {
		if leaf.Is(syntax.Ident) {
			segments = append(segments, leaf.Token.Text)
		}
	}
	return nil, t.prog.lookupClassPath(q, segments)
}
