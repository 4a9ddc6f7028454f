// Package types is the nominal type model the checker works with:
// primitives, class types with type arguments, type variables, wildcards,
// arrays and the null type, along with substitutions over type variables.
package types

import (
	"fmt"
	"strings"
)

// Type represents all possible types
type Type interface {
	Substitutable
	// Name renders the type as it would be written in source.
	Name() string
	Eq(Type) bool
	fmt.Stringer
}

// Substitutable is any type that can have substitutions applied and knows
// its free type variables
type Substitutable interface {
	Apply(Subs) Type
	FreeTypeVar() TypeVarSet
}

// Primitive is a primitive value type, including void.
type Primitive string

const (
	Boolean Primitive = "boolean"
	Byte    Primitive = "byte"
	Char    Primitive = "char"
	Short   Primitive = "short"
	Int     Primitive = "int"
	Long    Primitive = "long"
	Float   Primitive = "float"
	Double  Primitive = "double"
	Void    Primitive = "void"
)

// Primitives lists every primitive type.
var Primitives = []Primitive{Boolean, Byte, Char, Short, Int, Long, Float, Double, Void}

func (p Primitive) Name() string {
	return string(p)
}

func (p Primitive) String() string {
	return string(p)
}

func (p Primitive) Apply(Subs) Type {
	return p
}

func (p Primitive) FreeTypeVar() TypeVarSet {
	return nil
}

func (p Primitive) Eq(other Type) bool {
	o, ok := other.(Primitive)
	return ok && o == p
}

// IsNumeric reports whether p takes part in numeric promotion.
func (p Primitive) IsNumeric() bool {
	return p != Boolean && p != Void
}

// IsIntegral reports whether p is an integer type.
func (p Primitive) IsIntegral() bool {
	switch p {
	case Byte, Char, Short, Int, Long:
		return true
	}
	return false
}

// NullType is the type of the null literal.
type NullType struct{}

// Null is the only NullType value.
var Null Type = NullType{}

func (NullType) Name() string {
	return "null"
}

func (NullType) String() string {
	return "null"
}

func (n NullType) Apply(Subs) Type {
	return n
}

func (NullType) FreeTypeVar() TypeVarSet {
	return nil
}

func (NullType) Eq(other Type) bool {
	_, ok := other.(NullType)
	return ok
}

// TypeVar is a declared type parameter. Identity is by pointer: two
// parameters named T on different declarations are different variables.
type TypeVar struct {
	Var    string
	Bounds []Type
}

// NewTypeVar returns an unbounded type variable.
func NewTypeVar(name string, bounds ...Type) *TypeVar {
	return &TypeVar{Var: name, Bounds: bounds}
}

// Bound returns the first declared upper bound, or nil when unbounded.
func (tv *TypeVar) Bound() Type {
	if len(tv.Bounds) == 0 {
		return nil
	}
	return tv.Bounds[0]
}

// UpperBounds returns the declared bounds, or Object when there are none.
func (tv *TypeVar) UpperBounds() []Type {
	if len(tv.Bounds) == 0 {
		return []Type{ObjectType()}
	}
	return tv.Bounds
}

func (tv *TypeVar) Name() string {
	return tv.Var
}

func (tv *TypeVar) String() string {
	return tv.Var
}

func (tv *TypeVar) Apply(subs Subs) Type {
	if t, ok := subs[tv]; ok {
		return t
	}
	return tv
}

func (tv *TypeVar) FreeTypeVar() TypeVarSet {
	return NewTypeVarSet(tv)
}

func (tv *TypeVar) Eq(other Type) bool {
	o, ok := other.(*TypeVar)
	return ok && o == tv
}

// ClassType is a reference to a class, with type arguments when the class
// is generic. A generic class referenced without arguments is raw.
type ClassType struct {
	Decl *Class
	Args []Type
}

// NewClassType returns a reference to decl with the given arguments.
func NewClassType(decl *Class, args ...Type) *ClassType {
	return &ClassType{Decl: decl, Args: args}
}

// IsRaw reports whether a generic class is referenced without arguments.
func (t *ClassType) IsRaw() bool {
	return len(t.Args) == 0 && len(t.Decl.TypeParams) > 0
}

// Subs maps the declaration's type parameters to the arguments. A raw
// type yields no mappings.
func (t *ClassType) Subs() Subs {
	subs := NewSubs()
	if len(t.Args) != len(t.Decl.TypeParams) {
		return subs
	}
	for i, tv := range t.Decl.TypeParams {
		subs[tv] = t.Args[i]
	}
	return subs
}

// Subst applies subs to the type arguments.
func (t *ClassType) Subst(subs Subs) *ClassType {
	if len(t.Args) == 0 || len(subs) == 0 {
		return t
	}
	args := make([]Type, len(t.Args))
	for i, arg := range t.Args {
		args[i] = arg.Apply(subs)
	}
	return &ClassType{Decl: t.Decl, Args: args}
}

func (t *ClassType) Apply(subs Subs) Type {
	return t.Subst(subs)
}

func (t *ClassType) FreeTypeVar() TypeVarSet {
	var set TypeVarSet
	for _, arg := range t.Args {
		set = set.Union(arg.FreeTypeVar())
	}
	return set
}

func (t *ClassType) Name() string {
	name := t.Decl.NestedName()
	if len(t.Args) == 0 {
		return name
	}
	args := make([]string, len(t.Args))
	for i, arg := range t.Args {
		args[i] = arg.Name()
	}
	return name + "<" + strings.Join(args, ", ") + ">"
}

func (t *ClassType) String() string {
	return t.Name()
}

func (t *ClassType) Eq(other Type) bool {
	o, ok := other.(*ClassType)
	if !ok || o.Decl != t.Decl || len(o.Args) != len(t.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Eq(o.Args[i]) {
			return false
		}
	}
	return true
}

// Wildcard is a type argument `?`, `? extends Bound` or `? super Bound`.
type Wildcard struct {
	Bound Type
	Super bool
}

// Upper returns the upper bound of the wildcard.
func (w *Wildcard) Upper() Type {
	if w.Bound == nil || w.Super {
		return ObjectType()
	}
	return w.Bound
}

func (w *Wildcard) Name() string {
	switch {
	case w.Bound == nil:
		return "?"
	case w.Super:
		return "? super " + w.Bound.Name()
	default:
		return "? extends " + w.Bound.Name()
	}
}

func (w *Wildcard) String() string {
	return w.Name()
}

func (w *Wildcard) Apply(subs Subs) Type {
	if w.Bound == nil {
		return w
	}
	bound := w.Bound.Apply(subs)
	if inner, ok := bound.(*Wildcard); ok {
		// ? extends (? extends X) is ? extends X
		if inner.Super != w.Super {
			return &Wildcard{}
		}
		return inner
	}
	return &Wildcard{Bound: bound, Super: w.Super}
}

func (w *Wildcard) FreeTypeVar() TypeVarSet {
	if w.Bound == nil {
		return nil
	}
	return w.Bound.FreeTypeVar()
}

func (w *Wildcard) Eq(other Type) bool {
	o, ok := other.(*Wildcard)
	if !ok || o.Super != w.Super {
		return false
	}
	if w.Bound == nil || o.Bound == nil {
		return w.Bound == nil && o.Bound == nil
	}
	return w.Bound.Eq(o.Bound)
}

// Array is an array of Elem.
type Array struct {
	Elem Type
}

func (a *Array) Name() string {
	return a.Elem.Name() + "[]"
}

func (a *Array) String() string {
	return a.Name()
}

func (a *Array) Apply(subs Subs) Type {
	elem := a.Elem.Apply(subs)
	if w, ok := elem.(*Wildcard); ok {
		elem = w.Upper()
	}
	return &Array{Elem: elem}
}

func (a *Array) FreeTypeVar() TypeVarSet {
	return a.Elem.FreeTypeVar()
}

func (a *Array) Eq(other Type) bool {
	o, ok := other.(*Array)
	return ok && a.Elem.Eq(o.Elem)
}

// IsReference reports whether t is a reference type.
func IsReference(t Type) bool {
	switch t.(type) {
	case Primitive:
		return false
	}
	return true
}
