package bundles

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vito/juxt/pkg/grammar"
	"github.com/vito/juxt/pkg/host"
	"github.com/vito/juxt/pkg/sema"
	"github.com/vito/juxt/pkg/types"
)

const source = `package demo;

class Box<T> {
  Box(T value, int size = 1) { }
  <R> R map(R seed, boolean deep = false) { return seed; }
  static int twice(int x, int times = 2) { return x; }
  int plain(int a) { return a; }
  int foo(int a, int b = 0) { return a + b; }
  int foo(String s, int b = "x") { return b; }
}

class Sub extends Box<String> {
  int foo(int a, int b, int c = a) { return a; }
}
`

func build(t *testing.T) (*sema.Program, *Registry) {
	t.Helper()
	tree, err := grammar.New(host.New(), grammar.AllFeatures()).ParseFile("Box.java", source)
	require.NoError(t, err)
	require.Empty(t, tree.Errors())
	prog, err := sema.Build(tree)
	require.NoError(t, err)
	require.Empty(t, prog.Diagnostics())
	return prog, Synthesize(prog)
}

func names(params []*types.Param) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Name
	}
	return out
}

func TestNames(t *testing.T) {
	params := []*types.Param{{Name: "a"}, {Name: "b", Optional: true}, {Name: "c", Optional: true}}
	require.Equal(t, "$foo_a_opt$b_opt$c", Name("foo", params))
	require.Equal(t, "$constructor", Name("constructor", nil))
	require.Equal(t, "$isFirstName", FlagName("firstName"))
	require.Equal(t, "$isB", FlagName("b"))
	require.Equal(t, "$hashMap", PlaceholderName("HashMap"))
	require.Equal(t, "$box", PlaceholderName("Box"))
}

func TestSynthesize(t *testing.T) {
	prog, reg := build(t)
	box := prog.Lookup("demo", "Box")

	var got []string
	for _, b := range reg.Bundles() {
		got = append(got, b.String())
	}
	require.Equal(t, []string{
		"Box.$constructor_value_opt$size",
		"Box.$map_seed_opt$deep",
		"Box.$twice_x_opt$times",
		"Box.$foo_a_opt$b",
		"Box.$foo_s_opt$b",
		"Sub.$foo_a_b_opt$c",
	}, got)

	t.Run("constructor", func(t *testing.T) {
		b := reg.CandidatesFor(box, "constructor")[0]
		require.Nil(t, b.Placeholder)
		require.Len(t, b.TypeParams, 1)
		require.NotSame(t, box.TypeParams[0], b.TypeParams[0])
		require.Equal(t, 1, b.OwnerParams)
		require.Equal(t, "Box<T>", b.Returns.Name())
		require.Same(t, b.TypeParams[0], b.Params[0].Type)
		require.Equal(t, []string{"value", "$isSize", "size"}, names(b.CtorParams()))
		require.Equal(t, []string{"size"}, b.Optional())
		require.Equal(t, "1", b.Param("size").DefaultText)

		require.Same(t, box, b.Class.Outer)
		require.True(t, b.Class.Static)
		require.Len(t, b.Class.Ctors, 1)
		require.Equal(t, []string{"value", "$isSize", "size"}, names(b.Class.Ctors[0].Params))
		require.Equal(t, "Box.$constructor_value_opt$size<T>", b.Type().Name())
	})

	t.Run("instance method", func(t *testing.T) {
		b := reg.CandidatesFor(box, "map")[0]
		require.NotNil(t, b.Placeholder)
		require.Equal(t, "$box", b.Placeholder.Name)
		require.Equal(t, "Box<T>", b.Placeholder.Type.Name())
		require.Equal(t, []string{"T", "R"}, []string{b.TypeParams[0].Var, b.TypeParams[1].Var})
		require.Same(t, b.TypeParams[1], b.Returns)
		require.Equal(t, []string{"$box", "seed", "$isDeep", "deep"}, names(b.CtorParams()))
		require.Equal(t, types.Boolean, b.CtorParams()[2].Type)
	})

	t.Run("static method", func(t *testing.T) {
		b := reg.CandidatesFor(box, "twice")[0]
		require.Nil(t, b.Placeholder)
		require.Empty(t, b.TypeParams)
		require.Equal(t, types.Int, b.Returns)
		require.Equal(t, []string{"x", "$isTimes", "times"}, names(b.CtorParams()))
	})
}

func TestReceiverSubs(t *testing.T) {
	prog, reg := build(t)
	box := prog.Lookup("demo", "Box")
	b := reg.CandidatesFor(box, "map")[0]

	str := types.Builtin("String").Raw()
	subs := b.ReceiverSubs(types.NewClassType(box, str))
	require.Equal(t, "Box<String>", subs.Apply(b.Placeholder.Type).Name())
	require.Empty(t, b.ReceiverSubs(box.Raw()))
	require.Empty(t, b.ReceiverSubs(nil))
}

func TestCandidatesFor(t *testing.T) {
	prog, reg := build(t)
	box := prog.Lookup("demo", "Box")
	sub := prog.Lookup("demo", "Sub")

	var got []string
	for _, b := range reg.CandidatesFor(sub, "foo") {
		got = append(got, b.String())
	}
	require.Equal(t, []string{"Sub.$foo_a_b_opt$c", "Box.$foo_a_opt$b", "Box.$foo_s_opt$b"}, got)

	require.Len(t, reg.CandidatesFor(box, "foo"), 2)
	require.Empty(t, reg.CandidatesFor(sub, "constructor"))
	require.Empty(t, reg.CandidatesFor(box, "plain"))
	require.Empty(t, reg.CandidatesFor(box, "missing"))
}

func TestCheckDefaults(t *testing.T) {
	prog, reg := build(t)

	diags, err := reg.CheckDefaults(context.Background(), sema.NewTyper(prog))
	require.NoError(t, err)
	require.Len(t, diags, 1)
	require.Equal(t, "Incompatible types: 'String' cannot be converted to 'int'", diags[0].Message)
	require.Equal(t, `"x"`, source[diags[0].Range.Start:diags[0].Range.End])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = reg.CheckDefaults(ctx, sema.NewTyper(prog))
	require.ErrorIs(t, err, context.Canceled)
}

const manifest = `bundles:
  - owner: java.util.Map
    target: getOrDefault
    params:
      - {name: key, type: K}
      - {name: fallback, type: V, optional: true, default: "null"}
    returns: V
  - owner: Integer
    target: parse
    static: true
    params:
      - {name: text, type: String}
      - {name: radix, type: int, optional: true}
    returns: int
  - owner: ArrayList
    target: constructor
    params:
      - {name: capacity, type: int, optional: true, default: "10"}
  - owner: List
    target: firstOr
    type_params: [R]
    params:
      - {name: fallback, type: "List<? extends R>", optional: true}
    returns: R
`

func TestManifest(t *testing.T) {
	prog, _ := build(t)
	reg := NewRegistry()

	m, err := ReadManifest(strings.NewReader(manifest))
	require.NoError(t, err)
	require.Len(t, m.Bundles, 4)
	require.NoError(t, m.Declare(prog, reg))

	mapClass := types.Builtin("Map")
	get := reg.CandidatesFor(mapClass, "getOrDefault")
	require.Len(t, get, 1)
	require.Equal(t, 2, get[0].OwnerParams)
	require.Equal(t, "Map<K, V>", get[0].Placeholder.Type.Name())
	require.Equal(t, "$getOrDefault_key_opt$fallback", get[0].Class.Name)
	require.Same(t, get[0].TypeParams[1], get[0].Returns)
	require.Equal(t, "null", get[0].Param("fallback").DefaultText)

	parse := reg.CandidatesFor(types.Box(types.Int), "parse")
	require.Len(t, parse, 1)
	require.Nil(t, parse[0].Placeholder)
	require.Equal(t, "0", parse[0].Param("radix").DefaultText)

	ctor := reg.CandidatesFor(types.Builtin("ArrayList"), "constructor")
	require.Len(t, ctor, 1)
	require.Equal(t, "ArrayList<E>", ctor[0].Returns.Name())

	first := reg.CandidatesFor(types.Builtin("List"), "firstOr")
	require.Len(t, first, 1)
	require.Equal(t, []string{"E", "R"}, []string{first[0].TypeParams[0].Var, first[0].TypeParams[1].Var})
	require.Equal(t, "List<? extends R>", first[0].Param("fallback").Type.Name())

	// library classes are left untouched
	require.Empty(t, mapClass.Inner)
}

func TestManifestErrors(t *testing.T) {
	prog, _ := build(t)

	for _, tt := range []struct {
		name     string
		yaml     string
		expected string
	}{
		{
			name:     "unknown key",
			yaml:     "bundles:\n  - owner: List\n    target: get\n    extra: 1\n",
			expected: "field extra not found",
		},
		{
			name:     "missing target",
			yaml:     "bundles:\n  - owner: List\n",
			expected: "owner and target are required",
		},
		{
			name:     "unknown owner",
			yaml:     "bundles:\n  - owner: Nope\n    target: get\n    params: [{name: a, type: int, optional: true}]\n",
			expected: `unknown owner "Nope"`,
		},
		{
			name:     "unknown type",
			yaml:     "bundles:\n  - owner: List\n    target: get\n    params: [{name: a, type: Nope, optional: true}]\n",
			expected: `cannot resolve type "Nope"`,
		},
		{
			name:     "malformed type",
			yaml:     "bundles:\n  - owner: List\n    target: get\n    params: [{name: a, type: \"List<\", optional: true}]\n",
			expected: `type "List<"`,
		},
		{
			name:     "nothing optional",
			yaml:     "bundles:\n  - owner: List\n    target: get\n    params: [{name: a, type: int}]\n",
			expected: "no optional parameters",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ReadManifest(strings.NewReader(tt.yaml))
			if err == nil {
				err = m.Declare(prog, NewRegistry())
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.expected)
		})
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.Equal(t, path, m.Path)

	require.NoError(t, os.WriteFile(path, []byte("bundles: [\n"), 0o644))
	_, err = LoadManifest(path)
	require.ErrorContains(t, err, "parsing "+path)

	_, err = LoadManifest(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestInheritedReceiverSubs(t *testing.T) {
	prog, reg := build(t)
	sub := prog.Lookup("demo", "Sub")
	b := reg.CandidatesFor(sub, "foo")[1]
	require.Equal(t, "Box.$foo_a_opt$b", b.String())

	subs := b.ReceiverSubs(sub.Raw())
	require.Equal(t, "Box<String>", subs.Apply(b.Placeholder.Type).Name())
}
