package types

import (
	"strings"

	"github.com/vito/juxt/pkg/syntax"
)

// Class is a class or interface declaration, from source, from a bundle
// manifest or built in.
type Class struct {
	Name       string
	Package    string
	Outer      *Class
	Interface  bool
	Static     bool
	TypeParams []*TypeVar
	Super      *ClassType
	Interfaces []*ClassType
	Fields     []*Field
	Methods    []*Method
	Ctors      []*Method
	Inner      []*Class

	// Node is the declaring element, nil for classes without source.
	Node *syntax.Node
}

// Field is a field declaration.
type Field struct {
	Name   string
	Type   Type
	Static bool
	Node   *syntax.Node
}

// Method is a method or constructor declaration.
type Method struct {
	Name       string
	Owner      *Class
	TypeParams []*TypeVar
	Params     []*Param
	Return     Type
	Static     bool
	Ctor       bool
	Varargs    bool
	Node       *syntax.Node
}

// Param is a formal parameter. An optional parameter carries the text of
// its default value and, when declared in source, the default expression.
type Param struct {
	Name        string
	Type        Type
	Optional    bool
	Default     *syntax.Node
	DefaultText string
	Node        *syntax.Node
}

// NestedName returns the name qualified by enclosing classes.
func (c *Class) NestedName() string {
	if c.Outer != nil {
		return c.Outer.NestedName() + "." + c.Name
	}
	return c.Name
}

// QualifiedName returns the fully qualified name.
func (c *Class) QualifiedName() string {
	if c.Package == "" {
		return c.NestedName()
	}
	return c.Package + "." + c.NestedName()
}

// Type returns the class referenced with its own type parameters as
// arguments, i.e. the type of `this` inside it.
func (c *Class) Type() *ClassType {
	args := make([]Type, len(c.TypeParams))
	for i, tv := range c.TypeParams {
		args[i] = tv
	}
	return &ClassType{Decl: c, Args: args}
}

// Raw returns the class referenced without type arguments.
func (c *Class) Raw() *ClassType {
	return &ClassType{Decl: c}
}

// Supertypes returns the declared direct supertypes. Every class other than
// Object has at least Object.
func (c *Class) Supertypes() []*ClassType {
	var sups []*ClassType
	if c.Super != nil {
		sups = append(sups, c.Super)
	} else if c != Object {
		sups = append(sups, ObjectType())
	}
	return append(sups, c.Interfaces...)
}

// InnerClass returns the member class with the given name.
func (c *Class) InnerClass(name string) *Class {
	for _, inner := range c.Inner {
		if inner.Name == name {
			return inner
		}
	}
	return nil
}

// Field returns the field declared directly on c.
func (c *Class) Field(name string) *Field {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// AddMethod declares m on c.
func (c *Class) AddMethod(m *Method) {
	m.Owner = c
	if m.Ctor {
		c.Ctors = append(c.Ctors, m)
	} else {
		c.Methods = append(c.Methods, m)
	}
}

// HasDefaults reports whether any parameter is optional.
func (m *Method) HasDefaults() bool {
	for _, p := range m.Params {
		if p.Optional {
			return true
		}
	}
	return false
}

// Target names what a call to m targets: the method name, or
// "constructor".
func (m *Method) Target() string {
	if m.Ctor {
		return "constructor"
	}
	return m.Name
}

func (m *Method) String() string {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.Type.Name() + " " + p.Name
		if p.Optional {
			params[i] += " = " + p.DefaultText
		}
	}
	name := m.Name
	if m.Ctor {
		name = m.Owner.Name
	}
	return name + "(" + strings.Join(params, ", ") + ")"
}

// AsSuper returns the supertype of t whose declaration is target, with t's
// arguments substituted through, or nil when target is not a supertype. A
// raw type has only raw supertypes.
func AsSuper(t *ClassType, target *Class) *ClassType {
	return asSuper(t, target, map[*Class]bool{})
}

func asSuper(t *ClassType, target *Class, seen map[*Class]bool) *ClassType {
	if t.Decl == target {
		return t
	}
	if seen[t.Decl] {
		return nil
	}
	seen[t.Decl] = true

	raw := t.IsRaw()
	subs := t.Subs()
	for _, sup := range t.Decl.Supertypes() {
		next := sup.Subst(subs)
		if raw {
			next = sup.Decl.Raw()
		}
		if found := asSuper(next, target, seen); found != nil {
			return found
		}
	}
	return nil
}

// MethodRef is a method seen through a particular receiver type. Subs maps
// the declaring class's type parameters to the receiver's arguments.
type MethodRef struct {
	*Method
	Subs Subs
}

// LookupField finds a field on t or its supertypes, returning its type
// with t's arguments substituted.
func LookupField(t *ClassType, name string) (*Field, Type) {
	var found *Field
	var typ Type
	walkSupers(t, func(st *ClassType) bool {
		if f := st.Decl.Field(name); f != nil {
			found = f
			typ = memberType(st, f.Type)
			return false
		}
		return true
	})
	return found, typ
}

// LookupMethods returns every method named name visible on t, nearest
// declarations first.
func LookupMethods(t *ClassType, name string) []MethodRef {
	var refs []MethodRef
	walkSupers(t, func(st *ClassType) bool {
		for _, m := range st.Decl.Methods {
			if m.Name == name {
				refs = append(refs, MethodRef{Method: m, Subs: receiverSubs(st)})
			}
		}
		return true
	})
	return refs
}

// Constructors returns the constructors of t. A class with none declared
// has an implicit no-argument constructor.
func Constructors(t *ClassType) []MethodRef {
	ctors := t.Decl.Ctors
	if len(ctors) == 0 {
		ctors = []*Method{{Name: t.Decl.Name, Owner: t.Decl, Ctor: true}}
	}
	refs := make([]MethodRef, len(ctors))
	for i, m := range ctors {
		refs[i] = MethodRef{Method: m, Subs: receiverSubs(t)}
	}
	return refs
}

// ParamType returns the type of the i'th parameter seen through the
// receiver.
func (r MethodRef) ParamType(i int) Type {
	return r.Subs.Apply(r.Params[i].Type)
}

// ReturnType returns the return type seen through the receiver.
func (r MethodRef) ReturnType() Type {
	return r.Subs.Apply(r.Return)
}

func receiverSubs(t *ClassType) Subs {
	if t.IsRaw() {
		subs := NewSubs()
		for _, tv := range t.Decl.TypeParams {
			subs[tv] = Erasure(tv)
		}
		return subs
	}
	return t.Subs()
}

func memberType(owner *ClassType, t Type) Type {
	return receiverSubs(owner).Apply(t)
}

func walkSupers(t *ClassType, fn func(*ClassType) bool) {
	seen := map[*Class]bool{}
	queue := []*ClassType{t}
	for len(queue) > 0 {
		st := queue[0]
		queue = queue[1:]
		if seen[st.Decl] {
			continue
		}
		seen[st.Decl] = true
		if !fn(st) {
			return
		}
		raw := st.IsRaw()
		subs := st.Subs()
		for _, sup := range st.Decl.Supertypes() {
			if raw {
				queue = append(queue, sup.Decl.Raw())
			} else {
				queue = append(queue, sup.Subst(subs))
			}
		}
	}
}
