package sema

import (
	"context"

	"github.com/vito/juxt/pkg/syntax"
	"github.com/vito/juxt/pkg/types"
)

// Callee describes what a method call or `new` expression invokes.
type Callee struct {
	// Receiver is the type the method was found on. For `new` it is the
	// class being created; with a diamond, referenced by its own type
	// parameters.
	Receiver *types.ClassType
	// Target is the method name, or "constructor".
	Target  string
	Methods []types.MethodRef
	Args    *syntax.Node
	Diamond bool
	// Static is set when the receiver is a class name rather than a value.
	Static bool
}

// Arguments returns the argument list of a call.
func Arguments(call *syntax.Node) *syntax.Node {
	return call.Child(syntax.ExpressionList)
}

// LabeledArguments returns the tuple holding a call's arguments when any
// of them is labeled. The tuple spans the whole list, parentheses
// included, which tells it apart from a tuple passed as an argument.
func LabeledArguments(call *syntax.Node) *syntax.Node {
	args := Arguments(call)
	if args == nil || len(args.Children) == 0 {
		return nil
	}
	if first := args.Children[0]; !first.IsToken() && first.Kind == syntax.TupleExpr {
		return first
	}
	return nil
}

// Callee resolves what call invokes.
func (t *Typer) Callee(ctx context.Context, call *syntax.Node) (*Callee, bool) {
	args := Arguments(call)
	if args == nil {
		return nil, false
	}
	switch call.Kind {
	case syntax.NewExpr:
		return t.constructorCallee(call, args)
	case syntax.MethodCallExpr:
		return t.methodCallee(ctx, call, args)
	}
	return nil, false
}

func (t *Typer) constructorCallee(call, args *syntax.Node) (*Callee, bool) {
	elem := call.Child(syntax.TypeElement)
	ct, ok := t.prog.ResolveType(elem).(*types.ClassType)
	if !ok {
		return nil, false
	}
	c := &Callee{
		Receiver: ct,
		Target:   "constructor",
		Args:     args,
		Diamond:  IsDiamond(elem),
	}
	if c.Diamond {
		c.Receiver = ct.Decl.Type()
	}
	c.Methods = types.Constructors(c.Receiver)
	return c, true
}

func (t *Typer) methodCallee(ctx context.Context, call, args *syntax.Node) (*Callee, bool) {
	ref := call.Child(syntax.ReferenceExpr)
	if ref == nil {
		return nil, false
	}
	name := ref.Name()
	c := &Callee{Target: name, Args: args}

	if q := ref.FirstExpression(); q != nil {
		qt, cls := t.qualifier(ctx, q)
		switch {
		case cls != nil:
			c.Receiver = cls.Raw()
			c.Static = true
		default:
			switch x := types.BoxType(qt).(type) {
			case *types.ClassType:
				c.Receiver = x
			case *types.TypeVar:
				c.Receiver, _ = types.Erasure(x).(*types.ClassType)
			}
		}
		if c.Receiver == nil {
			return nil, false
		}
		c.Methods = types.LookupMethods(c.Receiver, name)
		return c, true
	}

	inner := t.prog.EnclosingClass(call)
	for cls := inner; cls != nil; cls = cls.Outer {
		if methods := types.LookupMethods(cls.Type(), name); len(methods) > 0 {
			c.Receiver = cls.Type()
			c.Methods = methods
			return c, true
		}
	}
	if inner == nil {
		return nil, false
	}
	c.Receiver = inner.Type()
	return c, true
}

func (t *Typer) call(ctx context.Context, call *syntax.Node) types.Type {
	if call.Kind == syntax.NewExpr && Arguments(call) == nil {
		return t.arrayCreation(call)
	}

	callee, ok := t.Callee(ctx, call)
	if !ok {
		return nil
	}

	if LabeledArguments(call) == nil {
		var argTypes []types.Type
		for _, arg := range callee.Args.Expressions() {
			argTypes = append(argTypes, t.TypeOf(ctx, arg))
		}
		if ref, ok := callee.Applicable(argTypes); ok {
			return callee.Result(ref, argTypes)
		}
	}

	if t.Calls != nil {
		if typ, ok := t.Calls.CallType(ctx, call); ok {
			return typ
		}
	}
	return nil
}

func (t *Typer) arrayCreation(call *syntax.Node) types.Type {
	typ := t.prog.ResolveType(call.Child(syntax.TypeElement))
	if typ == nil {
		return nil
	}
	for _, c := range call.Children {
		if c.Is(syntax.LBracket) {
			typ = &types.Array{Elem: typ}
		}
	}
	return typ
}

// TypeParams returns the type parameters inferred when invoking ref: the
// method's own, plus the class's for a diamond constructor.
func (c *Callee) TypeParams(ref types.MethodRef) []*types.TypeVar {
	if ref.Ctor && c.Diamond {
		return append(append([]*types.TypeVar{}, c.Receiver.Decl.TypeParams...), ref.TypeParams...)
	}
	return ref.TypeParams
}

// Applicable picks the first candidate method that accepts arguments of
// the given types. Unknown argument types are accepted.
func (c *Callee) Applicable(argTypes []types.Type) (types.MethodRef, bool) {
	for _, ref := range c.Methods {
		if len(ref.Params) != len(argTypes) {
			continue
		}
		formals := formalTypes(ref)
		subs := types.Infer(c.TypeParams(ref), formals, argTypes)
		ok := true
		for i, formal := range formals {
			if !types.AssignableTo(argTypes[i], subs.Apply(formal)) {
				ok = false
				break
			}
		}
		if ok {
			return ref, true
		}
	}
	return types.MethodRef{}, false
}

func formalTypes(ref types.MethodRef) []types.Type {
	formals := make([]types.Type, len(ref.Params))
	for i := range ref.Params {
		formals[i] = ref.ParamType(i)
	}
	return formals
}

// Result returns the type of invoking ref with arguments of the given
// types: the instantiated return type of a method, or the created class
// for a constructor, with a diamond's arguments inferred.
func (c *Callee) Result(ref types.MethodRef, argTypes []types.Type) types.Type {
	subs := types.Infer(c.TypeParams(ref), formalTypes(ref), argTypes)
	if ref.Ctor {
		if !c.Diamond {
			return c.Receiver
		}
		return c.Receiver.Decl.Type().Subst(subs)
	}
	return subs.Apply(ref.ReturnType())
}
