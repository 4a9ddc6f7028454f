package types

// Infer solves the type parameters params from the actual argument types
// of a call whose formal parameter types are formals. Parameters with no
// constraint resolve to their erased bound. A nil actual is unknown and
// contributes nothing.
func Infer(params []*TypeVar, formals, actuals []Type) Subs {
	vars := NewTypeVarSet(params...)
	subs := NewSubs()
	for i, formal := range formals {
		if i >= len(actuals) || actuals[i] == nil || formal == nil {
			continue
		}
		collect(vars, subs, formal, actuals[i])
	}
	for _, tv := range params {
		if _, ok := subs[tv]; !ok {
			subs[tv] = NewEraser(nil).Erase(tv)
		}
	}
	return subs
}

func collect(vars TypeVarSet, subs Subs, formal, actual Type) {
	if _, ok := actual.(NullType); ok {
		return
	}
	actual = BoxType(actual)

	switch f := formal.(type) {
	case *TypeVar:
		if !vars.Contains(f) {
			return
		}
		prev, ok := subs[f]
		if !ok || IsSubtype(prev, actual) {
			subs[f] = actual
		}
	case *ClassType:
		a, ok := actual.(*ClassType)
		if !ok {
			return
		}
		sup := AsSuper(a, f.Decl)
		if sup == nil || sup.IsRaw() || len(sup.Args) != len(f.Args) {
			return
		}
		for i := range f.Args {
			arg := sup.Args[i]
			if w, ok := arg.(*Wildcard); ok {
				arg = w.Upper()
			}
			collect(vars, subs, f.Args[i], arg)
		}
	case *Wildcard:
		if f.Bound != nil {
			collect(vars, subs, f.Bound, actual)
		}
	case *Array:
		if a, ok := actual.(*Array); ok {
			collect(vars, subs, f.Elem, a.Elem)
		}
	}
}
