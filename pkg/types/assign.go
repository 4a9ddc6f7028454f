package types

var widening = map[Primitive][]Primitive{
	Byte:  {Short, Int, Long, Float, Double},
	Short: {Int, Long, Float, Double},
	Char:  {Int, Long, Float, Double},
	Int:   {Long, Float, Double},
	Long:  {Float, Double},
	Float: {Double},
}

// Widens reports whether a value of type from converts to to by primitive
// widening.
func Widens(from, to Primitive) bool {
	if from == to {
		return true
	}
	for _, p := range widening[from] {
		if p == to {
			return true
		}
	}
	return false
}

// Promote returns the type of a binary numeric operation on a and b, or
// false if either is not numeric after unboxing.
func Promote(a, b Type) (Primitive, bool) {
	pa, ok := unboxed(a)
	if !ok {
		return "", false
	}
	pb, ok := unboxed(b)
	if !ok {
		return "", false
	}
	for _, p := range []Primitive{Double, Float, Long} {
		if pa == p || pb == p {
			return p, true
		}
	}
	return Int, true
}

func unboxed(t Type) (Primitive, bool) {
	switch x := t.(type) {
	case Primitive:
		return x, x.IsNumeric()
	case *ClassType:
		if p, ok := Unbox(x.Decl); ok {
			return p, p.IsNumeric()
		}
	}
	return "", false
}

// Erasure returns the raw form of t: class types lose their arguments and
// type variables become the erasure of their first bound.
func Erasure(t Type) Type {
	return erasure(t, nil)
}

func erasure(t Type, seen TypeVarSet) Type {
	switch x := t.(type) {
	case *ClassType:
		if len(x.Args) == 0 {
			return x
		}
		return x.Decl.Raw()
	case *TypeVar:
		bound := x.Bound()
		if bound == nil || seen.Contains(x) {
			return ObjectType()
		}
		return erasure(bound, seen.Union(NewTypeVarSet(x)))
	case *Array:
		return &Array{Elem: erasure(x.Elem, seen)}
	case *Wildcard:
		return erasure(x.Upper(), seen)
	}
	return t
}

// AssignableTo reports whether a value of type from may be assigned to a
// variable of type to, allowing primitive widening, boxing, unboxing and
// reference subtyping. A nil type is unknown and assignable either way.
func AssignableTo(from, to Type) bool {
	if from == nil || to == nil {
		return true
	}
	if from.Eq(to) {
		return true
	}

	if tp, ok := to.(Primitive); ok {
		if tp == Void {
			return false
		}
		switch f := from.(type) {
		case Primitive:
			return Widens(f, tp)
		case *ClassType:
			if p, ok := Unbox(f.Decl); ok {
				return Widens(p, tp)
			}
		}
		return false
	}

	switch f := from.(type) {
	case NullType:
		return true
	case Primitive:
		box := Box(f)
		if box == nil {
			return false
		}
		return IsSubtype(box.Raw(), to)
	}
	return IsSubtype(from, to)
}

// IsSubtype reports whether reference type from is a subtype of to.
func IsSubtype(from, to Type) bool {
	if from.Eq(to) {
		return true
	}
	if w, ok := from.(*Wildcard); ok {
		from = w.Upper()
	}
	if _, ok := from.(NullType); ok {
		return IsReference(to)
	}

	switch t := to.(type) {
	case *ClassType:
		if t.Decl == Object {
			return IsReference(from)
		}
		switch f := from.(type) {
		case *ClassType:
			sup := AsSuper(f, t.Decl)
			if sup == nil {
				return false
			}
			if t.IsRaw() || sup.IsRaw() {
				return true
			}
			if len(sup.Args) != len(t.Args) {
				return false
			}
			for i := range t.Args {
				if !containedBy(sup.Args[i], t.Args[i]) {
					return false
				}
			}
			return true
		case *TypeVar:
			return boundSubtype(f, to)
		}
		return false
	case *TypeVar:
		if f, ok := from.(*TypeVar); ok {
			return boundSubtype(f, to)
		}
		return false
	case *Array:
		f, ok := from.(*Array)
		if !ok {
			return false
		}
		if _, prim := t.Elem.(Primitive); prim {
			return f.Elem.Eq(t.Elem)
		}
		if _, prim := f.Elem.(Primitive); prim {
			return false
		}
		return IsSubtype(f.Elem, t.Elem)
	case *Wildcard:
		if t.Super && t.Bound != nil {
			return IsSubtype(from, t.Bound)
		}
		return false
	}
	return false
}

func boundSubtype(tv *TypeVar, to Type) bool {
	for _, b := range tv.Bounds {
		if b.Eq(tv) {
			continue
		}
		if IsSubtype(b, to) {
			return true
		}
	}
	return false
}

// containedBy reports whether type argument arg fits inside argument
// pattern to, e.g. Integer inside `? extends Number`.
func containedBy(arg, to Type) bool {
	w, ok := to.(*Wildcard)
	if !ok {
		return arg.Eq(to)
	}
	if w.Bound == nil {
		return true
	}
	if w.Super {
		lower := arg
		if aw, ok := arg.(*Wildcard); ok {
			if !aw.Super || aw.Bound == nil {
				return false
			}
			lower = aw.Bound
		}
		return IsSubtype(w.Bound, lower)
	}
	upper := arg
	if aw, ok := arg.(*Wildcard); ok {
		upper = aw.Upper()
	}
	return IsSubtype(upper, w.Bound)
}
