package bundles

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vito/juxt/pkg/diag"
	"github.com/vito/juxt/pkg/sema"
	"github.com/vito/juxt/pkg/types"
)

// Registry holds the bundles of a program, keyed by owner. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	byOwner map[*types.Class][]*Bundle
	all     []*Bundle
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byOwner: map[*types.Class][]*Bundle{}}
}

// Synthesize returns a registry with a bundle for every method and
// constructor in prog that declares a default parameter.
func Synthesize(prog *sema.Program) *Registry {
	r := NewRegistry()
	for _, cls := range prog.Classes() {
		for _, m := range cls.Ctors {
			if m.HasDefaults() {
				r.Add(New(cls, m))
			}
		}
		for _, m := range cls.Methods {
			if m.HasDefaults() {
				r.Add(New(cls, m))
			}
		}
	}
	return r
}

// Add registers b after its owner's existing bundles.
func (r *Registry) Add(b *Bundle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byOwner[b.Owner] = append(r.byOwner[b.Owner], b)
	r.all = append(r.all, b)
	slog.Debug("registered bundle", "bundle", b.String())
}

// Bundles returns every bundle in registration order.
func (r *Registry) Bundles() []*Bundle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Bundle, len(r.all))
	copy(out, r.all)
	return out
}

// CandidatesFor returns the bundles for calls to target on owner in
// declaration order, followed by those inherited from superclasses.
// Constructors are not inherited.
func (r *Registry) CandidatesFor(owner *types.Class, target string) []*Bundle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Bundle
	seen := map[*types.Class]bool{}
	for cls := owner; cls != nil && !seen[cls]; {
		seen[cls] = true
		for _, b := range r.byOwner[cls] {
			if b.Target == target {
				out = append(out, b)
			}
		}
		if target == "constructor" || cls.Super == nil {
			break
		}
		cls = cls.Super.Decl
	}
	return out
}

// CheckDefaults reports default values that cannot be assigned to their
// parameter.
func (r *Registry) CheckDefaults(ctx context.Context, typer *sema.Typer) (diag.List, error) {
	var diags diag.List
	for _, b := range r.Bundles() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, p := range b.Method.Params {
			if !p.Optional || p.Default == nil || p.Type == nil {
				continue
			}
			typ := typer.TypeOf(ctx, p.Default)
			if typ == nil || types.AssignableTo(typ, p.Type) {
				continue
			}
			diags = append(diags, diag.Errorf(p.Default,
				"Incompatible types: '%s' cannot be converted to '%s'", typ.Name(), p.Type.Name()))
		}
	}
	return diags, nil
}
