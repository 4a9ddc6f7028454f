package namedargs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vito/juxt/pkg/bundles"
	"github.com/vito/juxt/pkg/diag"
	"github.com/vito/juxt/pkg/grammar"
	"github.com/vito/juxt/pkg/host"
	"github.com/vito/juxt/pkg/sema"
	"github.com/vito/juxt/pkg/syntax"
	"github.com/vito/juxt/pkg/tuples"
	"github.com/vito/juxt/pkg/types"
)

const source = `package demo;

class Box<T> {
  Box(T value, int size = 1) { }
  int foo(int a, int b = 0) { return a + b; }
  int bar(int a, int c = 1) { return a; }
  int bar(int a, int b, int c = 1) { return a + b; }
  <R> R map(R seed, boolean deep = false) { return seed; }
  static int twice(int x, int times = 2) { return x * times; }
  int plain(int a) { return a; }

  void use(Box<String> s) {
    var named = foo(a: 1, b: 2);
    var omitted = s.foo(1);
    var swapped = s.foo(b: 2, a: 1);
    var surplus = s.foo(1, 2, 3);
    var late = s.foo(a: 1, 2);
    var missing = s.foo(b: 2);
    var unknown = s.foo(a: 1, z: 3);
    var dup = s.foo(1, a: 2);
    var first = s.bar(a: 1);
    var mapped = s.map(seed: "x");
    var created = new Box<>(value: "v");
    var explicit = new Box<String>(value: "v", size: 2);
    var stat = Box.twice(x: 3);
    var mistyped = s.foo(a: "no");
    var exact = s.foo(1, 2);
    var none = s.plain(a: 1);
  }
}
`

type fixture struct {
	tree     *syntax.Tree
	typer    *sema.Typer
	resolver *Resolver
}

func setup(t *testing.T) *fixture {
	t.Helper()
	tree, err := grammar.New(host.New(), grammar.AllFeatures()).ParseFile("Box.java", source)
	require.NoError(t, err)
	require.Empty(t, tree.Errors())
	prog, err := sema.Build(tree)
	require.NoError(t, err)
	require.Empty(t, prog.Diagnostics())
	typer := sema.NewTyper(prog)
	return &fixture{
		tree:     tree,
		typer:    typer,
		resolver: New(typer, bundles.Synthesize(prog)),
	}
}

func (f *fixture) call(t *testing.T, name string) *syntax.Node {
	t.Helper()
	var found *syntax.Node
	f.tree.Root.Walk(func(n *syntax.Node) bool {
		if found == nil && !n.IsToken() && n.Kind == syntax.LocalVariable && n.Name() == name {
			found = n.FirstExpression()
		}
		return found == nil
	})
	require.NotNil(t, found, "no local %q", name)
	return found
}

func (f *fixture) covered(d diag.Diagnostic) string {
	return f.tree.Source[d.Range.Start:d.Range.End]
}

func argTexts(res *Resolution) []string {
	out := make([]string, len(res.Args))
	for i, arg := range res.Args {
		out[i] = arg.Text
	}
	return out
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	for _, tt := range []struct {
		local         string
		bundle        string
		args          []string
		instantiation string
		result        string
	}{
		{
			local:         "named",
			bundle:        "Box.$foo_a_opt$b",
			args:          []string{"(Box<T>)null", "1", "true", "2"},
			instantiation: "new Box.$foo_a_opt$b<>((Box<T>)null, 1, true, 2)",
			result:        "int",
		},
		{
			local:         "omitted",
			bundle:        "Box.$foo_a_opt$b",
			args:          []string{"(Box<String>)null", "1", "false", "0"},
			instantiation: "new Box.$foo_a_opt$b<>((Box<String>)null, 1, false, 0)",
			result:        "int",
		},
		{
			local:         "swapped",
			bundle:        "Box.$foo_a_opt$b",
			args:          []string{"(Box<String>)null", "1", "true", "2"},
			instantiation: "new Box.$foo_a_opt$b<>((Box<String>)null, 1, true, 2)",
			result:        "int",
		},
		{
			local:         "first",
			bundle:        "Box.$bar_a_opt$c",
			args:          []string{"(Box<String>)null", "1", "false", "1"},
			instantiation: "new Box.$bar_a_opt$c<>((Box<String>)null, 1, false, 1)",
			result:        "int",
		},
		{
			local:         "mapped",
			bundle:        "Box.$map_seed_opt$deep",
			args:          []string{"(Box<String>)null", `"x"`, "false", "false"},
			instantiation: `new Box.$map_seed_opt$deep<>((Box<String>)null, "x", false, false)`,
			result:        "String",
		},
		{
			local:         "created",
			bundle:        "Box.$constructor_value_opt$size",
			args:          []string{`"v"`, "false", "1"},
			instantiation: `new Box.$constructor_value_opt$size<>("v", false, 1)`,
			result:        "Box<String>",
		},
		{
			local:         "explicit",
			bundle:        "Box.$constructor_value_opt$size",
			args:          []string{`"v"`, "true", "2"},
			instantiation: `new Box.$constructor_value_opt$size<>("v", true, 2)`,
			result:        "Box<String>",
		},
		{
			local:         "stat",
			bundle:        "Box.$twice_x_opt$times",
			args:          []string{"3", "false", "2"},
			instantiation: "new Box.$twice_x_opt$times(3, false, 2)",
			result:        "int",
		},
	} {
		t.Run(tt.local, func(t *testing.T) {
			res, diags, err := f.resolver.Resolve(ctx, f.call(t, tt.local))
			require.NoError(t, err)
			require.Empty(t, diags)
			require.NotNil(t, res)
			require.Equal(t, tt.bundle, res.Bundle.String())
			require.Equal(t, tt.args, argTexts(res))
			require.Equal(t, tt.instantiation, res.Instantiation)
			require.Equal(t, tt.result, res.Result.Name())
		})
	}
}

func TestResolveFailures(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	for _, tt := range []struct {
		local   string
		message string
		covered string
	}{
		{"surplus", "Too many arguments: expected at most 2, found 3", "3"},
		{"late", "Positional arguments must appear before named arguments", "2"},
		{"missing", "Missing required argument: a", "(b: 2)"},
		{"unknown", "No matching parameters for named argument[s]: 'z'", "(a: 1, z: 3)"},
		{"dup", "Argument 'a' is already provided positionally", "a: 2"},
		{"none", "No matching parameters for named argument[s]: 'a'", "(a: 1)"},
	} {
		t.Run(tt.local, func(t *testing.T) {
			res, diags, err := f.resolver.Resolve(ctx, f.call(t, tt.local))
			require.NoError(t, err)
			require.Nil(t, res)
			require.Len(t, diags, 1)
			require.Equal(t, tt.message, diags[0].Message)
			require.Equal(t, tt.covered, f.covered(diags[0]))
			require.Equal(t, "Box.java", diags[0].Filename)
		})
	}
}

func TestTypeCheck(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	call := f.call(t, "mistyped")

	res, diags, err := f.resolver.Resolve(ctx, call)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Empty(t, diags)

	f.resolver.TypeCheck = true
	res, diags, err = f.resolver.Check(ctx, call)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Len(t, diags, 1)
	require.Equal(t, "Incompatible types: 'String' cannot be converted to 'int'", diags[0].Message)
	require.Equal(t, `"no"`, f.covered(diags[0]))
}

func TestCheck(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.resolver.TypeCheck = true

	res, diags, err := f.resolver.Check(ctx, f.call(t, "exact"))
	require.NoError(t, err)
	require.Nil(t, res)
	require.Empty(t, diags)

	res, diags, err = f.resolver.Check(ctx, f.call(t, "omitted"))
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Empty(t, diags)

	res, diags, err = f.resolver.Check(ctx, f.call(t, "surplus"))
	require.NoError(t, err)
	require.Nil(t, res)
	require.Equal(t, []string{"Too many arguments: expected at most 2, found 3"}, diags.Messages())
}

func TestCallType(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	require.Equal(t, types.Int, f.typer.TypeOf(ctx, f.call(t, "omitted")))
	require.Equal(t, "String", f.typer.TypeOf(ctx, f.call(t, "mapped")).Name())
	require.Equal(t, "Box<String>", f.typer.TypeOf(ctx, f.call(t, "created")).Name())
	require.Equal(t, types.Int, f.typer.TypeOf(ctx, f.call(t, "exact")))
	require.Nil(t, f.typer.TypeOf(ctx, f.call(t, "surplus")))
	require.Nil(t, f.typer.TypeOf(ctx, f.call(t, "unknown")))
}

func TestArgumentsType(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	synth := tuples.NewSynthesizer(f.typer)
	synth.Arguments = f.resolver

	tuple := sema.LabeledArguments(f.call(t, "swapped"))
	require.NotNil(t, tuple)
	require.Equal(t, "Box.$foo_a_opt$b<String>", f.typer.TypeOf(ctx, tuple).Name())

	tuple = sema.LabeledArguments(f.call(t, "stat"))
	require.Equal(t, "Box.$twice_x_opt$times", f.typer.TypeOf(ctx, tuple).Name())

	require.Nil(t, f.typer.TypeOf(ctx, sema.LabeledArguments(f.call(t, "missing"))))
	require.Empty(t, synth.Provider.Classes())
}

func TestCancelled(t *testing.T) {
	f := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, diags, err := f.resolver.Resolve(ctx, f.call(t, "omitted"))
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, res)
	require.Empty(t, diags)
}

func TestNotACall(t *testing.T) {
	f := setup(t)
	tree, err := host.Expression(grammar.New(host.New(), grammar.AllFeatures()), "x.java", "(a: 1)")
	require.NoError(t, err)

	res, diags, err := f.resolver.Resolve(context.Background(), tree.Top())
	require.NoError(t, err)
	require.Nil(t, res)
	require.Empty(t, diags)
}
