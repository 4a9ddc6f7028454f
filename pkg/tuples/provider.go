package tuples

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/vito/juxt/pkg/sema"
	"github.com/vito/juxt/pkg/types"
)

// Provider declares one class per tuple shape into a program. Shapes are
// memoized by package, field names and field types, so equal tuples in a
// package share a type. It is safe for concurrent use.
type Provider struct {
	prog *sema.Program

	mu      sync.Mutex
	classes map[string]*types.Class
	names   map[string]bool
}

// NewProvider returns a provider declaring into prog.
func NewProvider(prog *sema.Program) *Provider {
	return &Provider{
		prog:    prog,
		classes: map[string]*types.Class{},
		names:   map[string]bool{},
	}
}

// MakeType returns the name of the class for the given shape in pkg,
// declaring it on first use. The class has one field per entry and a
// constructor taking them in order.
func (p *Provider) MakeType(pkg string, fields []Field) string {
	key := shapeKey(pkg, fields)

	p.mu.Lock()
	defer p.mu.Unlock()
	if cls, ok := p.classes[key]; ok {
		return cls.Name
	}

	base := fmt.Sprintf("tuple$%016x", xxhash.Sum64String(shapeText(pkg, fields)))
	name := base
	for n := 2; p.names[pkg+"."+name]; n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	p.names[pkg+"."+name] = true

	cls := &types.Class{Name: name, Package: pkg}
	ctor := &types.Method{Name: name, Ctor: true}
	for _, f := range fields {
		cls.Fields = append(cls.Fields, &types.Field{Name: f.Name, Type: f.Type})
		ctor.Params = append(ctor.Params, &types.Param{Name: f.Name, Type: f.Type})
	}
	cls.AddMethod(ctor)
	p.classes[key] = cls
	p.prog.Declare(cls)

	slog.Debug("declared tuple type", "package", pkg, "name", name, "fields", shapeText("", fields))
	return name
}

// Classes returns the declared tuple classes.
func (p *Provider) Classes() []*types.Class {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*types.Class, 0, len(p.classes))
	for _, cls := range p.classes {
		out = append(out, cls)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// shapeText renders a shape as `name: Type` pairs.
func shapeText(pkg string, fields []Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Name + ": " + f.Type.Name()
	}
	text := "(" + strings.Join(parts, ", ") + ")"
	if pkg != "" {
		text = pkg + " " + text
	}
	return text
}

// shapeKey is shapeText plus the identity of any type variable, which
// may share its name with others.
func shapeKey(pkg string, fields []Field) string {
	var sb strings.Builder
	sb.WriteString(shapeText(pkg, fields))
	for _, f := range fields {
		var vars []string
		for tv := range f.Type.FreeTypeVar() {
			vars = append(vars, fmt.Sprintf("%s@%p", tv.Var, tv))
		}
		sort.Strings(vars)
		sb.WriteString("|")
		sb.WriteString(strings.Join(vars, ","))
	}
	return sb.String()
}
