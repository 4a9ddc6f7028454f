package types

// Subs maps type variables to the types they stand for.
type Subs map[*TypeVar]Type

func NewSubs() Subs {
	return make(Subs)
}

// Apply replaces the variables of t bound in s.
func (s Subs) Apply(t Type) Type {
	if t == nil || len(s) == 0 {
		return t
	}
	return t.Apply(s)
}

// Merge binds every variable of other in s, overriding existing bindings,
// and returns s.
func (s Subs) Merge(other Subs) Subs {
	for tv, t := range other {
		s[tv] = t
	}
	return s
}
