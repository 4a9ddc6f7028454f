package bundles

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vito/juxt/pkg/host"
	"github.com/vito/juxt/pkg/sema"
	"github.com/vito/juxt/pkg/types"
)

// Manifest declares bundles for library classes that have no source.
//
//	bundles:
//	  - owner: java.util.Map
//	    target: getOrDefault
//	    params:
//	      - {name: key, type: K}
//	      - {name: fallback, type: V, optional: true, default: "null"}
//	    returns: V
type Manifest struct {
	Path    string          `yaml:"-"`
	Bundles []ManifestEntry `yaml:"bundles"`
}

// ManifestEntry is one method or constructor. Owner is a simple or
// package-qualified class name; Target is a method name or "constructor".
type ManifestEntry struct {
	Owner      string          `yaml:"owner"`
	Target     string          `yaml:"target"`
	Static     bool            `yaml:"static"`
	TypeParams []string        `yaml:"type_params"`
	Params     []ManifestParam `yaml:"params"`
	Returns    string          `yaml:"returns"`
}

// ManifestParam is one parameter. Types are written in source syntax and
// may name the owner's and the entry's type parameters.
type ManifestParam struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Optional bool   `yaml:"optional"`
	Default  string `yaml:"default"`
}

// LoadManifest reads a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading bundle manifest")
	}
	m, err := ReadManifest(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	m.Path = path
	return m, nil
}

// ReadManifest decodes a manifest, rejecting unknown keys.
func ReadManifest(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var m Manifest
	if err := dec.Decode(&m); err != nil && err != io.EOF {
		return nil, err
	}
	for i, e := range m.Bundles {
		if e.Owner == "" || e.Target == "" {
			return nil, errors.Errorf("bundle %d: owner and target are required", i+1)
		}
		for _, p := range e.Params {
			if p.Name == "" || p.Type == "" {
				return nil, errors.Errorf("bundle %d (%s.%s): parameters need a name and a type", i+1, e.Owner, e.Target)
			}
		}
	}
	return &m, nil
}

// Declare adds a bundle to reg for every entry, resolving names against
// prog.
func (m *Manifest) Declare(prog *sema.Program, reg *Registry) error {
	for _, e := range m.Bundles {
		b, err := m.bundle(prog, e)
		if err != nil {
			return errors.Wrapf(err, "%s: %s.%s", m.filename(), e.Owner, e.Target)
		}
		reg.Add(b)
	}
	return nil
}

func (m *Manifest) filename() string {
	if m.Path == "" {
		return "<manifest>"
	}
	return m.Path
}

func (m *Manifest) bundle(prog *sema.Program, e ManifestEntry) (*Bundle, error) {
	owner := lookupOwner(prog, e.Owner)
	if owner == nil {
		return nil, errors.Errorf("unknown owner %q", e.Owner)
	}

	method := &types.Method{
		Name:   e.Target,
		Owner:  owner,
		Static: e.Static,
		Ctor:   e.Target == "constructor",
	}
	if method.Ctor {
		method.Name = owner.Name
	}
	for _, name := range e.TypeParams {
		method.TypeParams = append(method.TypeParams, types.NewTypeVar(name))
	}

	// the entry's own type parameters shadow the owner's
	scope := append([]*types.TypeVar{}, method.TypeParams...)
	if !e.Static {
		scope = append(scope, owner.TypeParams...)
	}

	for _, p := range e.Params {
		typ, err := m.resolve(prog, p.Type, scope)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %s", p.Name)
		}
		param := &types.Param{
			Name:        p.Name,
			Type:        typ,
			Optional:    p.Optional,
			DefaultText: p.Default,
		}
		if param.Optional && param.DefaultText == "" {
			param.DefaultText = ZeroValue(typ)
		}
		method.Params = append(method.Params, param)
	}

	if !method.Ctor {
		returns := e.Returns
		if returns == "" {
			returns = "void"
		}
		typ, err := m.resolve(prog, returns, scope)
		if err != nil {
			return nil, errors.Wrap(err, "return type")
		}
		method.Return = typ
	}

	if !method.HasDefaults() {
		return nil, errors.New("no optional parameters")
	}
	return New(owner, method), nil
}

func (m *Manifest) resolve(prog *sema.Program, text string, scope []*types.TypeVar) (types.Type, error) {
	tree, err := host.New().Type(m.filename(), text)
	if err != nil {
		return nil, err
	}
	if errs := tree.Errors(); len(errs) > 0 {
		return nil, errors.Errorf("type %q: %s", text, errs[0].Message)
	}
	typ := prog.ResolveTypeWith(tree.Top(), scope)
	if typ == nil {
		return nil, errors.Errorf("cannot resolve type %q", text)
	}
	return typ, nil
}

func lookupOwner(prog *sema.Program, name string) *types.Class {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return prog.LookupQualified(name[:i], name[i+1:])
	}
	return prog.Lookup("", name)
}

// ZeroValue returns the text of the value a field of type t starts with.
func ZeroValue(t types.Type) string {
	p, ok := t.(types.Primitive)
	if !ok {
		return "null"
	}
	switch p {
	case types.Boolean:
		return "false"
	case types.Char:
		return "'\\0'"
	case types.Long:
		return "0L"
	case types.Float:
		return "0f"
	case types.Double:
		return "0d"
	}
	return "0"
}
