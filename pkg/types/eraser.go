package types

// Scope reports which type variables can still be named where an erased
// type will be used.
type Scope interface {
	InScope(*TypeVar) bool
}

// Eraser rewrites a type so that no type variable outside its scope
// remains. A variable becomes its erased upper bound; as the argument of a
// class type it becomes `? extends bound` instead. A bound that refers back
// to the variable being erased is replaced by its raw form, so recursive
// declarations like `T extends Comparable<T>` terminate.
type Eraser struct {
	scope    Scope
	stack    []Subs
	visiting TypeVarSet
}

// NewEraser returns an eraser for scope. A nil scope erases every variable.
func NewEraser(scope Scope) *Eraser {
	return &Eraser{scope: scope, visiting: NewTypeVarSet()}
}

// Erase is a shorthand for NewEraser(scope).Erase(t).
func Erase(t Type, scope Scope) Type {
	return NewEraser(scope).Erase(t)
}

// Erase returns t with out-of-scope type variables erased.
func (e *Eraser) Erase(t Type) Type {
	switch x := t.(type) {
	case *TypeVar:
		return e.typeVar(x)
	case *ClassType:
		return e.classType(x)
	case *Array:
		elem := e.Erase(x.Elem)
		if elem.Eq(x.Elem) {
			return x
		}
		return &Array{Elem: elem}
	case *Wildcard:
		if x.Bound == nil {
			return x
		}
		bound := e.Erase(x.Bound)
		if bound.Eq(x.Bound) {
			return x
		}
		if inner, ok := bound.(*Wildcard); ok {
			return inner
		}
		return &Wildcard{Bound: bound, Super: x.Super}
	}
	return t
}

func (e *Eraser) typeVar(tv *TypeVar) Type {
	if e.scope != nil && e.scope.InScope(tv) {
		return tv
	}

	var erased Type
	bound := tv.Bound()
	switch {
	case bound == nil:
		erased = ObjectType()
	case e.visiting.Contains(tv) || refersTo(bound, tv):
		erased = e.Erase(Erasure(bound))
	default:
		e.visiting.Add(tv)
		erased = e.Erase(bound)
		e.visiting.Remove(tv)
	}

	if len(e.stack) > 0 {
		e.stack[len(e.stack)-1][tv] = erased
	}
	return erased
}

func (e *Eraser) classType(t *ClassType) Type {
	if len(t.Args) == 0 {
		return t
	}

	e.stack = append(e.stack, NewSubs())
	args := make([]Type, len(t.Args))
	changed := false
	for i, arg := range t.Args {
		mapped := e.Erase(arg)
		if tv, ok := arg.(*TypeVar); ok && !mapped.Eq(arg) {
			e.stack[len(e.stack)-1][tv] = &Wildcard{Bound: mapped}
			mapped = e.stack[len(e.stack)-1].Apply(arg)
		}
		if !mapped.Eq(arg) {
			changed = true
		}
		args[i] = mapped
	}
	e.stack = e.stack[:len(e.stack)-1]

	if !changed {
		return t
	}
	return &ClassType{Decl: t.Decl, Args: args}
}

// refersTo reports whether t mentions tv anywhere, including inside
// wildcard bounds and array components.
func refersTo(t Type, tv *TypeVar) bool {
	return t.FreeTypeVar().Contains(tv)
}
