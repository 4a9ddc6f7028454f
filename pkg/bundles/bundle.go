// Package bundles synthesizes parameter bundles: one type per method or
// constructor with default parameters, whose constructor takes every
// argument of a call explicitly. A call with labeled or omitted arguments
// is resolved by matching it against the bundles of its target.
package bundles

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iancoleman/strcase"

	"github.com/vito/juxt/pkg/types"
)

const optPrefix = "opt$"

// Bundle is the parameter bundle of one method or constructor.
type Bundle struct {
	// Class is the synthesized type, a static member of Owner named by
	// Name.
	Class  *types.Class
	Owner  *types.Class
	Target string
	Method *types.Method

	// TypeParams are fresh copies of the owner's type parameters (unless
	// the target is static) followed by the method's own.
	TypeParams  []*types.TypeVar
	OwnerParams int

	// Placeholder is the leading enclosing-instance parameter, which
	// carries the receiver's type arguments. Constructors and static
	// methods have none.
	Placeholder *types.Param

	// Params are the target's parameters with types in terms of
	// TypeParams.
	Params  []*types.Param
	Returns types.Type
}

// Name encodes a bundle's class name: `$<target>_<p1>_..._opt$<pk>`.
func Name(target string, params []*types.Param) string {
	var sb strings.Builder
	sb.WriteString("$")
	sb.WriteString(target)
	for _, p := range params {
		sb.WriteString("_")
		if p.Optional {
			sb.WriteString(optPrefix)
		}
		sb.WriteString(p.Name)
	}
	return sb.String()
}

// FlagName names the boolean constructor parameter telling whether an
// optional parameter was given.
func FlagName(param string) string {
	return "$is" + strcase.ToCamel(param)
}

// PlaceholderName names the enclosing-instance parameter of a bundle owned
// by owner.
func PlaceholderName(owner string) string {
	r, size := utf8.DecodeRuneInString(owner)
	return "$" + string(unicode.ToLower(r)) + owner[size:]
}

// New synthesizes the bundle for m, declared by owner.
func New(owner *types.Class, m *types.Method) *Bundle {
	b := &Bundle{
		Owner:  owner,
		Target: m.Target(),
		Method: m,
	}

	var originals []*types.TypeVar
	if !m.Static {
		originals = append(originals, owner.TypeParams...)
	}
	b.OwnerParams = len(originals)
	originals = append(originals, m.TypeParams...)

	subs := types.NewSubs()
	for _, tv := range originals {
		fresh := types.NewTypeVar(tv.Var)
		subs[tv] = fresh
		b.TypeParams = append(b.TypeParams, fresh)
	}
	for i, tv := range originals {
		for _, bound := range tv.Bounds {
			b.TypeParams[i].Bounds = append(b.TypeParams[i].Bounds, subs.Apply(bound))
		}
	}

	ownerArgs := make([]types.Type, b.OwnerParams)
	for i := range ownerArgs {
		ownerArgs[i] = b.TypeParams[i]
	}

	if !m.Ctor && !m.Static {
		b.Placeholder = &types.Param{
			Name: PlaceholderName(owner.Name),
			Type: types.NewClassType(owner, ownerArgs...),
		}
	}

	for _, p := range m.Params {
		b.Params = append(b.Params, &types.Param{
			Name:        p.Name,
			Type:        subs.Apply(p.Type),
			Optional:    p.Optional,
			Default:     p.Default,
			DefaultText: p.DefaultText,
			Node:        p.Node,
		})
	}

	if m.Ctor {
		b.Returns = types.NewClassType(owner, ownerArgs...)
	} else {
		b.Returns = subs.Apply(m.Return)
	}

	b.Class = &types.Class{
		Name:       Name(b.Target, b.Params),
		Package:    owner.Package,
		Outer:      owner,
		Static:     true,
		TypeParams: b.TypeParams,
	}
	b.Class.AddMethod(&types.Method{
		Name:   b.Class.Name,
		Params: b.CtorParams(),
		Ctor:   true,
	})
	return b
}

// CtorParams returns the parameters of the bundle's constructor: the
// placeholder, then every parameter in order with each optional one
// preceded by its flag.
func (b *Bundle) CtorParams() []*types.Param {
	var params []*types.Param
	if b.Placeholder != nil {
		params = append(params, b.Placeholder)
	}
	for _, p := range b.Params {
		if p.Optional {
			params = append(params, &types.Param{Name: FlagName(p.Name), Type: types.Boolean})
		}
		params = append(params, p)
	}
	return params
}

// Type returns the bundle type parameterized by its own type parameters.
func (b *Bundle) Type() *types.ClassType {
	return b.Class.Type()
}

// Param returns the parameter called name, or nil.
func (b *Bundle) Param(name string) *types.Param {
	for _, p := range b.Params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Optional returns the names of the optional parameters.
func (b *Bundle) Optional() []string {
	var names []string
	for _, p := range b.Params {
		if p.Optional {
			names = append(names, p.Name)
		}
	}
	return names
}

// ReceiverSubs binds the bundle's copies of the owner's type parameters to
// the arguments receiver has for the owner, which may be one of its
// supertypes. A raw or unrelated receiver binds nothing.
func (b *Bundle) ReceiverSubs(receiver *types.ClassType) types.Subs {
	subs := types.NewSubs()
	if receiver == nil {
		return subs
	}
	sup := types.AsSuper(receiver, b.Owner)
	if sup == nil || len(sup.Args) != b.OwnerParams {
		return subs
	}
	for i, arg := range sup.Args {
		subs[b.TypeParams[i]] = arg
	}
	return subs
}

func (b *Bundle) String() string {
	return b.Class.NestedName()
}
