// Package namedargs resolves calls with labeled or omitted arguments
// against the parameter bundles of their target. A call matches the first
// bundle, in declaration order, that takes every argument given and has a
// value for every required parameter.
package namedargs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vito/juxt/pkg/bundles"
	"github.com/vito/juxt/pkg/diag"
	"github.com/vito/juxt/pkg/sema"
	"github.com/vito/juxt/pkg/syntax"
	"github.com/vito/juxt/pkg/tuples"
	"github.com/vito/juxt/pkg/types"
)

// Resolver matches calls against bundles.
type Resolver struct {
	Typer   *sema.Typer
	Bundles *bundles.Registry

	// TypeCheck makes Resolve report arguments not assignable to their
	// parameter.
	TypeCheck bool
}

var _ sema.CallTyper = (*Resolver)(nil)
var _ tuples.ArgumentsTyper = (*Resolver)(nil)

// New returns a resolver and installs it as the typer's call hook.
func New(typer *sema.Typer, reg *bundles.Registry) *Resolver {
	r := &Resolver{Typer: typer, Bundles: reg}
	typer.Calls = r
	return r
}

// Argument is one argument of the bundle constructor call a resolution
// stands for.
type Argument struct {
	Param *types.Param
	Text  string
	Type  types.Type
	// Entry is the call argument supplying the value, nil for the
	// placeholder, flags and defaults.
	Entry *tuples.Entry
}

// Resolution is a call matched to a bundle.
type Resolution struct {
	Call   *syntax.Node
	Callee *sema.Callee
	Bundle *bundles.Bundle
	Args   []Argument

	// Subs instantiates the bundle's type parameters.
	Subs types.Subs
	// Instantiation is the bundle constructor call equivalent to the
	// call's arguments, e.g. `new Box.$foo_a_opt$b<>((Box<String>)null, 1,
	// false, 0)`.
	Instantiation string
	// Type is the instantiated bundle type.
	Type types.Type
	// Result is the type of the call.
	Result types.Type
}

// arguments are the entries of a call's argument list and the node to
// anchor whole-list diagnostics on.
type arguments struct {
	anchor  *syntax.Node
	labeled bool
	entries []tuples.Entry
}

func argumentsOf(call *syntax.Node) (arguments, bool) {
	if tuple := sema.LabeledArguments(call); tuple != nil {
		return arguments{anchor: tuple, labeled: true, entries: tuples.Entries(tuple)}, true
	}
	list := sema.Arguments(call)
	if list == nil {
		return arguments{}, false
	}
	args := arguments{anchor: list}
	for _, expr := range list.Expressions() {
		args.entries = append(args.entries, tuples.Entry{Node: expr, Value: expr})
	}
	return args, true
}

// Resolve matches call against the bundles of its target. It returns nil
// and the problems found when no bundle matches; with TypeCheck set it may
// return both a resolution and argument type mismatches. The error is
// non-nil only when ctx is done.
func (r *Resolver) Resolve(ctx context.Context, call *syntax.Node) (*Resolution, diag.List, error) {
	args, ok := argumentsOf(call)
	if !ok {
		return nil, nil, nil
	}
	callee, ok := r.Typer.Callee(ctx, call)
	if !ok || callee.Receiver == nil {
		return nil, nil, nil
	}

	positional, named, diags := partition(args.entries)
	if len(diags) > 0 {
		return nil, diags, nil
	}

	candidates := r.Bundles.CandidatesFor(callee.Receiver.Decl, callee.Target)
	if len(candidates) == 0 {
		if !args.labeled {
			return nil, nil, nil
		}
		return nil, diag.List{unmatchedNamed(args.anchor, named.names)}, nil
	}

	var last *attempt
	for _, b := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if unknown := named.missingFrom(b); len(unknown) > 0 {
			slog.DebugContext(ctx, "candidate lacks named parameters", "bundle", b.String(), "names", unknown)
			continue
		}
		a := match(b, positional, named)
		if a.ok() {
			slog.DebugContext(ctx, "matched bundle", "call", call.Text(), "bundle", b.String())
			return r.resolved(ctx, call, callee, a)
		}
		slog.DebugContext(ctx, "candidate did not match", "bundle", b.String(), "missing", a.missing)
		last = a
	}

	if last == nil {
		return nil, diag.List{unmatchedNamed(args.anchor, minimalUnknown(candidates, named))}, nil
	}
	return nil, diag.List{last.problem(args.anchor, len(positional), candidates)}, nil
}

// CallType implements sema.CallTyper.
func (r *Resolver) CallType(ctx context.Context, call *syntax.Node) (types.Type, bool) {
	res, _, err := r.Resolve(ctx, call)
	if err != nil || res == nil {
		return nil, false
	}
	return res.Result, true
}

// ArgumentsType implements tuples.ArgumentsTyper: a labeled argument list
// has the type of the bundle it instantiates.
func (r *Resolver) ArgumentsType(ctx context.Context, call, tuple *syntax.Node) (types.Type, bool) {
	res, _, err := r.Resolve(ctx, call)
	if err != nil || res == nil {
		return nil, false
	}
	return res.Type, true
}

// Check resolves call as Resolve does, except that calls ordinary
// overload resolution accepts are left alone.
func (r *Resolver) Check(ctx context.Context, call *syntax.Node) (*Resolution, diag.List, error) {
	if sema.LabeledArguments(call) == nil {
		callee, ok := r.Typer.Callee(ctx, call)
		if !ok {
			return nil, nil, nil
		}
		var argTypes []types.Type
		for _, arg := range callee.Args.Expressions() {
			argTypes = append(argTypes, r.Typer.TypeOf(ctx, arg))
		}
		if _, ok := callee.Applicable(argTypes); ok {
			return nil, nil, nil
		}
	}
	return r.Resolve(ctx, call)
}

// namedArgs are labeled entries in source order.
type namedArgs struct {
	names   []string
	entries map[string]tuples.Entry
}

func (n namedArgs) missingFrom(b *bundles.Bundle) []string {
	var missing []string
	for _, name := range n.names {
		if b.Param(name) == nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// partition splits entries into positional and named ones. A positional
// entry after a named one is an error.
func partition(entries []tuples.Entry) ([]tuples.Entry, namedArgs, diag.List) {
	var positional []tuples.Entry
	named := namedArgs{entries: map[string]tuples.Entry{}}
	for _, e := range entries {
		if e.Label != "" {
			if _, dup := named.entries[e.Label]; !dup {
				named.names = append(named.names, e.Label)
			}
			named.entries[e.Label] = e
			continue
		}
		if len(named.names) > 0 {
			return nil, named, diag.List{diag.At(diag.Error, e.Node,
				"Positional arguments must appear before named arguments")}
		}
		positional = append(positional, e)
	}
	return positional, named, nil
}

func unmatchedNamed(anchor *syntax.Node, names []string) diag.Diagnostic {
	return diag.Errorf(anchor, "No matching parameters for named argument[s]: '%s'", strings.Join(names, "', '"))
}

// minimalUnknown returns the smallest set of named arguments some
// candidate has no parameter for.
func minimalUnknown(candidates []*bundles.Bundle, named namedArgs) []string {
	var best []string
	for _, b := range candidates {
		unknown := named.missingFrom(b)
		if best == nil || len(unknown) < len(best) {
			best = unknown
		}
	}
	return best
}

// attempt is the outcome of matching one candidate.
type attempt struct {
	bundle  *bundles.Bundle
	values  []*tuples.Entry
	missing string

	duplicate *tuples.Entry
	surplus   []tuples.Entry
	leftover  []string
}

func (a *attempt) ok() bool {
	return a.missing == "" && a.duplicate == nil && len(a.surplus) == 0 && len(a.leftover) == 0
}

// match walks b's parameters, taking positional arguments first and then
// named ones. values holds the entry given for each parameter, nil when
// an optional one is omitted.
func match(b *bundles.Bundle, positional []tuples.Entry, named namedArgs) *attempt {
	a := &attempt{bundle: b}
	remaining := map[string]tuples.Entry{}
	for name, e := range named.entries {
		remaining[name] = e
	}

	for _, p := range b.Params {
		var given *tuples.Entry
		if len(positional) > 0 {
			e := positional[0]
			positional = positional[1:]
			given = &e
			if dup, ok := remaining[p.Name]; ok && a.duplicate == nil {
				a.duplicate = &dup
			}
		} else if e, ok := remaining[p.Name]; ok {
			delete(remaining, p.Name)
			given = &e
		}
		if given == nil && !p.Optional {
			a.missing = p.Name
			return a
		}
		a.values = append(a.values, given)
	}

	a.surplus = positional
	for _, name := range named.names {
		if _, ok := remaining[name]; ok {
			a.leftover = append(a.leftover, name)
		}
	}
	return a
}

// problem describes why the attempt failed.
func (a *attempt) problem(anchor *syntax.Node, positional int, candidates []*bundles.Bundle) diag.Diagnostic {
	switch {
	case a.duplicate != nil:
		return diag.Errorf(a.duplicate.Node, "Argument '%s' is already provided positionally", a.duplicate.Label)
	case len(a.surplus) > 0:
		most := 0
		for _, b := range candidates {
			most = max(most, len(b.Params))
		}
		return diag.Errorf(a.surplus[0].Node, "Too many arguments: expected at most %d, found %d", most, positional)
	case len(a.leftover) > 0:
		return unmatchedNamed(anchor, a.leftover)
	}
	return diag.Errorf(anchor, "Missing required argument: %s", a.missing)
}

// resolved builds the resolution for a successful attempt.
func (r *Resolver) resolved(ctx context.Context, call *syntax.Node, callee *sema.Callee, a *attempt) (*Resolution, diag.List, error) {
	b := a.bundle
	res := &Resolution{Call: call, Callee: callee, Bundle: b}

	receiver := types.AsSuper(callee.Receiver, b.Owner)
	if b.Placeholder != nil {
		text := "(" + b.Owner.NestedName() + ")null"
		var typ types.Type
		if receiver != nil {
			text = "(" + receiver.Name() + ")null"
			typ = receiver
		}
		res.Args = append(res.Args, Argument{Param: b.Placeholder, Text: text, Type: typ})
	}

	for i, p := range b.Params {
		given := a.values[i]
		if p.Optional {
			flag := Argument{
				Param: &types.Param{Name: bundles.FlagName(p.Name), Type: types.Boolean},
				Text:  fmt.Sprint(given != nil),
				Type:  types.Boolean,
			}
			res.Args = append(res.Args, flag)
		}
		arg := Argument{Param: p, Entry: given}
		switch {
		case given != nil && given.Value != nil:
			arg.Text = given.Value.Text()
			arg.Type = r.Typer.TypeOf(ctx, given.Value)
		case given != nil:
			arg.Text = ""
		default:
			arg.Text = p.DefaultText
			if arg.Text == "" {
				arg.Text = bundles.ZeroValue(p.Type)
			}
		}
		res.Args = append(res.Args, arg)
	}

	// explicit type arguments on `new` fix the owner's parameters
	seed := types.NewSubs()
	if callee.Target == "constructor" && !callee.Diamond {
		seed = b.ReceiverSubs(callee.Receiver)
	}
	var free []*types.TypeVar
	for _, tv := range b.TypeParams {
		if _, ok := seed[tv]; !ok {
			free = append(free, tv)
		}
	}
	formals := make([]types.Type, len(res.Args))
	actuals := make([]types.Type, len(res.Args))
	for i, arg := range res.Args {
		formals[i] = seed.Apply(arg.Param.Type)
		actuals[i] = arg.Type
	}
	res.Subs = types.Infer(free, formals, actuals).Merge(seed)

	res.Type = b.Type().Subst(res.Subs)
	switch {
	case callee.Target != "constructor":
		res.Result = res.Subs.Apply(b.Returns)
	case callee.Diamond:
		res.Result = res.Subs.Apply(b.Returns)
	default:
		res.Result = callee.Receiver
	}

	texts := make([]string, len(res.Args))
	for i, arg := range res.Args {
		texts[i] = arg.Text
	}
	class := b.Owner.NestedName() + "." + b.Class.Name
	if len(b.TypeParams) > 0 {
		class += "<>"
	}
	res.Instantiation = "new " + class + "(" + strings.Join(texts, ", ") + ")"

	var diags diag.List
	if r.TypeCheck {
		diags = r.checkTypes(call, res)
	}
	return res, diags, nil
}

// checkTypes reports explicit arguments that cannot be assigned to their
// parameter once the bundle is instantiated.
func (r *Resolver) checkTypes(call *syntax.Node, res *Resolution) diag.List {
	scope := r.Typer.Program().TypeVarsInScope(call)
	var diags diag.List
	for _, arg := range res.Args {
		if arg.Entry == nil || arg.Entry.Value == nil || arg.Type == nil || arg.Param.Type == nil {
			continue
		}
		formal := types.Erase(res.Subs.Apply(arg.Param.Type), scope)
		actual := types.Erase(arg.Type, scope)
		if types.AssignableTo(actual, formal) {
			continue
		}
		diags = append(diags, diag.Errorf(arg.Entry.Value,
			"Incompatible types: '%s' cannot be converted to '%s'", arg.Type.Name(), formal.Name()))
	}
	return diags
}
