package sema

import (
	"context"
	"sync"

	"github.com/vito/juxt/pkg/syntax"
	"github.com/vito/juxt/pkg/types"
)

// TupleTyper synthesizes the type of a tuple expression.
type TupleTyper interface {
	TupleType(ctx context.Context, tuple *syntax.Node) types.Type
}

// CallTyper types a call that ordinary overload resolution cannot, such as
// one with labeled arguments or omitted optional parameters. It returns
// false when it cannot either.
type CallTyper interface {
	CallType(ctx context.Context, call *syntax.Node) (types.Type, bool)
}

// Typer computes expression types. Results are memoized per node, and a
// Typer is safe for concurrent use once its hooks are set.
type Typer struct {
	Tuples TupleTyper
	Calls  CallTyper

	prog *Program

	mu    sync.Mutex
	cache map[*syntax.Node]types.Type
}

// NewTyper returns a typer over prog with no hooks.
func NewTyper(prog *Program) *Typer {
	return &Typer{
		prog:  prog,
		cache: map[*syntax.Node]types.Type{},
	}
}

// Program returns the program being typed.
func (t *Typer) Program() *Program {
	return t.prog
}

// TypeOf returns the type of expression n, or nil when it cannot be
// determined.
func (t *Typer) TypeOf(ctx context.Context, n *syntax.Node) types.Type {
	if n == nil || n.IsToken() {
		return nil
	}
	t.mu.Lock()
	typ, ok := t.cache[n]
	t.mu.Unlock()
	if ok {
		return typ
	}

	typ = t.typeOf(ctx, n)

	t.mu.Lock()
	t.cache[n] = typ
	t.mu.Unlock()
	return typ
}

func (t *Typer) typeOf(ctx context.Context, n *syntax.Node) types.Type {
	switch n.Kind {
	case syntax.LiteralExpr:
		return literalType(n.Children[0].Token.Kind)
	case syntax.ReferenceExpr:
		return t.reference(ctx, n)
	case syntax.ThisExpr:
		if cls := t.prog.EnclosingClass(n); cls != nil {
			return cls.Type()
		}
	case syntax.SuperExpr:
		if cls := t.prog.EnclosingClass(n); cls != nil {
			if cls.Super != nil {
				return cls.Super
			}
			return types.ObjectType()
		}
	case syntax.ParenExpr, syntax.TupleValueExpr, syntax.PostfixExpr, syntax.AssignmentExpr:
		return t.TypeOf(ctx, n.FirstExpression())
	case syntax.TupleExpr:
		if t.Tuples != nil {
			return t.Tuples.TupleType(ctx, n)
		}
	case syntax.BinaryExpr:
		return t.binary(ctx, n)
	case syntax.PrefixExpr:
		return t.prefix(ctx, n)
	case syntax.TypeCastExpr:
		return t.prog.ResolveType(n.Child(syntax.TypeElement))
	case syntax.ConditionalExpr:
		return t.conditional(ctx, n)
	case syntax.InstanceOfExpr:
		return types.Boolean
	case syntax.MethodCallExpr, syntax.NewExpr:
		return t.call(ctx, n)
	case syntax.ArrayAccessExpr:
		if arr, ok := t.TypeOf(ctx, n.FirstExpression()).(*types.Array); ok {
			return arr.Elem
		}
	}
	return nil
}

func literalType(kind syntax.TokenKind) types.Type {
	switch kind {
	case syntax.IntLiteral:
		return types.Int
	case syntax.LongLiteral:
		return types.Long
	case syntax.FloatLiteral:
		return types.Float
	case syntax.DoubleLiteral:
		return types.Double
	case syntax.CharLiteral:
		return types.Char
	case syntax.StringLiteral:
		return types.Builtin("String").Raw()
	case syntax.KwTrue, syntax.KwFalse:
		return types.Boolean
	case syntax.KwNull:
		return types.Null
	}
	return nil
}

func (t *Typer) binary(ctx context.Context, n *syntax.Node) types.Type {
	operands := n.Expressions()
	if len(operands) != 2 {
		return nil
	}
	l, r := t.TypeOf(ctx, operands[0]), t.TypeOf(ctx, operands[1])

	op := n.Operator()
	if op == nil {
		return t.binding(ctx, l, r)
	}
	if l == nil || r == nil {
		switch op.Token.Kind {
		case syntax.Lt, syntax.Gt, syntax.Le, syntax.Ge, syntax.EqEq, syntax.Ne, syntax.AndAnd, syntax.OrOr:
			return types.Boolean
		}
		return nil
	}

	switch op.Token.Kind {
	case syntax.Plus:
		if isString(l) || isString(r) {
			return types.Builtin("String").Raw()
		}
		return promoted(l, r)
	case syntax.Minus, syntax.Star, syntax.Slash, syntax.Percent:
		return promoted(l, r)
	case syntax.Shl, syntax.Shr, syntax.Ushr:
		return promoted(l, types.Int)
	case syntax.And, syntax.Or, syntax.Xor:
		if isBoolean(l) && isBoolean(r) {
			return types.Boolean
		}
		return promoted(l, r)
	case syntax.Lt, syntax.Gt, syntax.Le, syntax.Ge, syntax.EqEq, syntax.Ne, syntax.AndAnd, syntax.OrOr:
		return types.Boolean
	}
	return nil
}

// binding types a juxtaposition: numeric operands multiply, otherwise the
// left operand's postfixBind(right) or the right operand's
// prefixBind(left) gives the result.
func (t *Typer) binding(ctx context.Context, l, r types.Type) types.Type {
	if l == nil || r == nil {
		return nil
	}
	if p, ok := types.Promote(l, r); ok {
		return p
	}
	if ct, ok := types.BoxType(l).(*types.ClassType); ok {
		if typ := applicableReturn(types.LookupMethods(ct, "postfixBind"), r); typ != nil {
			return typ
		}
	}
	if ct, ok := types.BoxType(r).(*types.ClassType); ok {
		if typ := applicableReturn(types.LookupMethods(ct, "prefixBind"), l); typ != nil {
			return typ
		}
	}
	return nil
}

func applicableReturn(refs []types.MethodRef, arg types.Type) types.Type {
	for _, ref := range refs {
		if len(ref.Params) != 1 {
			continue
		}
		subs := types.Infer(ref.TypeParams, []types.Type{ref.ParamType(0)}, []types.Type{arg})
		if types.AssignableTo(arg, subs.Apply(ref.ParamType(0))) {
			return subs.Apply(ref.ReturnType())
		}
	}
	return nil
}

func promoted(l, r types.Type) types.Type {
	if p, ok := types.Promote(l, r); ok {
		return p
	}
	return nil
}

func isString(t types.Type) bool {
	ct, ok := t.(*types.ClassType)
	return ok && ct.Decl == types.Builtin("String")
}

func isBoolean(t types.Type) bool {
	if t.Eq(types.Boolean) {
		return true
	}
	ct, ok := t.(*types.ClassType)
	return ok && ct.Decl == types.Box(types.Boolean)
}

func (t *Typer) prefix(ctx context.Context, n *syntax.Node) types.Type {
	operand := t.TypeOf(ctx, n.FirstExpression())
	op := n.Operator()
	if op == nil || operand == nil {
		return nil
	}
	switch op.Token.Kind {
	case syntax.Bang:
		return types.Boolean
	case syntax.Plus, syntax.Minus, syntax.Tilde:
		return promoted(operand, types.Int)
	}
	return operand
}

func (t *Typer) conditional(ctx context.Context, n *syntax.Node) types.Type {
	exprs := n.Expressions()
	if len(exprs) != 3 {
		return nil
	}
	a, b := t.TypeOf(ctx, exprs[1]), t.TypeOf(ctx, exprs[2])
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.Eq(b):
		return a
	case a.Eq(types.Null):
		return types.BoxType(b)
	case b.Eq(types.Null):
		return types.BoxType(a)
	}
	if p, ok := types.Promote(a, b); ok {
		return p
	}
	if types.AssignableTo(a, b) {
		return b
	}
	if types.AssignableTo(b, a) {
		return a
	}
	return types.ObjectType()
}
