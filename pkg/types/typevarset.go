package types

// TypeVarSet is a set of type variables.
type TypeVarSet map[*TypeVar]bool

func NewTypeVarSet(tvs ...*TypeVar) TypeVarSet {
	set := make(TypeVarSet, len(tvs))
	for _, tv := range tvs {
		set[tv] = true
	}
	return set
}

// Union returns a new set holding the members of both.
func (tvs TypeVarSet) Union(other TypeVarSet) TypeVarSet {
	result := make(TypeVarSet, len(tvs)+len(other))
	for tv := range tvs {
		result[tv] = true
	}
	for tv := range other {
		result[tv] = true
	}
	return result
}

func (tvs TypeVarSet) Contains(tv *TypeVar) bool { return tvs[tv] }

func (tvs TypeVarSet) Add(tv *TypeVar) { tvs[tv] = true }

func (tvs TypeVarSet) Remove(tv *TypeVar) { delete(tvs, tv) }

// InScope makes a set usable as the Scope of an Eraser.
func (tvs TypeVarSet) InScope(tv *TypeVar) bool { return tvs[tv] }
