package sema

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vito/juxt/pkg/grammar"
	"github.com/vito/juxt/pkg/host"
	"github.com/vito/juxt/pkg/syntax"
	"github.com/vito/juxt/pkg/types"
)

const boxSource = `package demo;

class Box<T extends Comparable<T>> {
  T value;
  Nope broken;
  Box(T value) { }
  T get() { return value; }
  <R> R map(R r) { return r; }
  static int twice(int x) { return x * 2; }
  int add(int a, int b = 10) { return a + b; }
}

class User {
  String name;
  int age = 3;
  String getName() { return name; }
  void run(String[] args) {
    var box = new Box<>(1);
    int n = 2;
    Box<String> s = null;
    var got = box.get();
    var mapped = box.map("x");
    var doubled = Box.twice(n);
    var scaled = n 3;
    var text = "a" + n;
    var wide = n > 2 ? 1 : 2L;
    var field = s.value;
    var mine = this.age;
    var len = getName().length();
    var cast = (Object) name;
    var count = args.length;
    var partial = s.add(1);
    var labeled = s.add(a: 1);
    var pair = (left: 1, right: 2);
    for (String arg : args) {
      var each = arg;
    }
  }
}
`

func build(t *testing.T, src string) (*Program, *syntax.Tree) {
	t.Helper()
	tree, err := grammar.New(host.New(), grammar.AllFeatures()).ParseFile("Box.java", src)
	require.NoError(t, err)
	require.Empty(t, tree.Errors())
	prog, err := Build(tree)
	require.NoError(t, err)
	return prog, tree
}

// initializer returns the initializer of the local variable called name.
func initializer(t *testing.T, tree *syntax.Tree, name string) *syntax.Node {
	t.Helper()
	var found *syntax.Node
	tree.Root.Walk(func(n *syntax.Node) bool {
		if found == nil && !n.IsToken() && n.Kind == syntax.LocalVariable && n.Name() == name {
			found = n.FirstExpression()
		}
		return found == nil
	})
	require.NotNil(t, found, "no local %q", name)
	return found
}

func typeName(typ types.Type) string {
	if typ == nil {
		return "<nil>"
	}
	return typ.Name()
}

func TestBuild(t *testing.T) {
	prog, _ := build(t, boxSource)

	require.Len(t, prog.Classes(), 2)
	box := prog.Lookup("demo", "Box")
	require.NotNil(t, box)
	require.Same(t, box, prog.LookupQualified("demo", "Box"))
	require.Nil(t, prog.LookupQualified("other", "Box"))

	require.Len(t, box.TypeParams, 1)
	require.Equal(t, "Comparable<T>", box.TypeParams[0].Bound().Name())
	require.Same(t, box.TypeParams[0], box.TypeParams[0].Bound().(*types.ClassType).Args[0])

	require.Len(t, box.Ctors, 1)
	require.Equal(t, "Box(T value)", box.Ctors[0].String())

	add := box.Methods[len(box.Methods)-1]
	require.Equal(t, "add", add.Name)
	require.True(t, add.HasDefaults())
	require.False(t, add.Params[0].Optional)
	require.True(t, add.Params[1].Optional)
	require.Equal(t, "10", add.Params[1].DefaultText)
	require.Equal(t, "add(int a, int b = 10)", add.String())

	twice := box.Methods[len(box.Methods)-2]
	require.True(t, twice.Static)

	mapMethod := box.Methods[len(box.Methods)-3]
	require.Len(t, mapMethod.TypeParams, 1)
	require.Same(t, mapMethod.TypeParams[0], mapMethod.Return)

	require.Nil(t, box.Field("broken").Type)
	require.Equal(t, "T", box.Field("value").Type.Name())
}

func TestUnknownTypes(t *testing.T) {
	prog, _ := build(t, boxSource)

	diags := prog.Diagnostics()
	require.Len(t, diags, 1)
	require.Equal(t, "Cannot resolve symbol 'Nope'", diags[0].Message)
	require.Equal(t, "Box.java", diags[0].Filename)
}

func TestWrongTypeArgumentCount(t *testing.T) {
	prog, _ := build(t, `class A { Map<String> m; List<String> ok; }`)

	diags := prog.Diagnostics()
	require.Len(t, diags, 1)
	require.Equal(t, "Wrong number of type arguments: 1; required: 2", diags[0].Message)

	a := prog.Lookup("", "A")
	require.True(t, a.Field("m").Type.(*types.ClassType).IsRaw())
	require.Equal(t, "List<String>", a.Field("ok").Type.Name())
}

func TestInnerClasses(t *testing.T) {
	prog, _ := build(t, `package p;
class Outer {
  static class Inner { }
  Inner a;
  Outer.Inner b;
  p.Outer.Inner c;
  int[] d;
  String e[];
}
`)
	require.Empty(t, prog.Diagnostics())
	outer := prog.Lookup("p", "Outer")
	inner := outer.InnerClass("Inner")
	require.NotNil(t, inner)
	require.True(t, inner.Static)
	require.Same(t, outer, inner.Outer)

	for _, name := range []string{"a", "b", "c"} {
		ct, ok := outer.Field(name).Type.(*types.ClassType)
		require.True(t, ok, name)
		require.Same(t, inner, ct.Decl, name)
	}
	require.Equal(t, "int[]", outer.Field("d").Type.Name())
	require.Equal(t, "String[]", outer.Field("e").Type.Name())
}

func TestTypeOf(t *testing.T) {
	ctx := context.Background()
	prog, tree := build(t, boxSource)
	typer := NewTyper(prog)

	for _, tt := range []struct {
		local    string
		expected string
	}{
		{"box", "Box<Integer>"},
		{"n", "int"},
		{"s", "null"},
		{"got", "Integer"},
		{"mapped", "String"},
		{"doubled", "int"},
		{"scaled", "int"},
		{"text", "String"},
		{"wide", "long"},
		{"field", "String"},
		{"mine", "int"},
		{"len", "int"},
		{"cast", "Object"},
		{"count", "int"},
		{"each", "String"},
		{"partial", "<nil>"},
		{"labeled", "<nil>"},
		{"pair", "<nil>"},
	} {
		t.Run(tt.local, func(t *testing.T) {
			require.Equal(t, tt.expected, typeName(typer.TypeOf(ctx, initializer(t, tree, tt.local))))
		})
	}
}

type stubTuples struct{}

func (stubTuples) TupleType(ctx context.Context, tuple *syntax.Node) types.Type {
	return types.Builtin("String").Raw()
}

type stubCalls struct {
	calls []string
}

func (s *stubCalls) CallType(ctx context.Context, call *syntax.Node) (types.Type, bool) {
	s.calls = append(s.calls, call.Text())
	return types.Long, true
}

func TestHooks(t *testing.T) {
	ctx := context.Background()
	prog, tree := build(t, boxSource)
	calls := &stubCalls{}
	typer := NewTyper(prog)
	typer.Tuples = stubTuples{}
	typer.Calls = calls

	require.Equal(t, "long", typeName(typer.TypeOf(ctx, initializer(t, tree, "partial"))))
	require.Equal(t, "long", typeName(typer.TypeOf(ctx, initializer(t, tree, "labeled"))))
	require.Equal(t, "String", typeName(typer.TypeOf(ctx, initializer(t, tree, "pair"))))

	// calls ordinary resolution handles never reach the hook
	require.Equal(t, "Integer", typeName(typer.TypeOf(ctx, initializer(t, tree, "got"))))

	// results are memoized
	typer.TypeOf(ctx, initializer(t, tree, "partial"))
	require.Equal(t, []string{"s.add(1)", "s.add(a: 1)"}, calls.calls)
}

func TestCallee(t *testing.T) {
	ctx := context.Background()
	prog, tree := build(t, boxSource)
	typer := NewTyper(prog)

	callee, ok := typer.Callee(ctx, initializer(t, tree, "box"))
	require.True(t, ok)
	require.Equal(t, "constructor", callee.Target)
	require.True(t, callee.Diamond)
	require.Equal(t, "Box<T>", callee.Receiver.Name())
	require.Len(t, callee.Methods, 1)
	require.Equal(t, []string{"T"}, varNames(callee.TypeParams(callee.Methods[0])))

	callee, ok = typer.Callee(ctx, initializer(t, tree, "doubled"))
	require.True(t, ok)
	require.True(t, callee.Static)
	require.Equal(t, "twice", callee.Target)

	labeled := initializer(t, tree, "labeled")
	callee, ok = typer.Callee(ctx, labeled)
	require.True(t, ok)
	require.False(t, callee.Static)
	require.Equal(t, "Box<String>", callee.Receiver.Name())
	require.Len(t, callee.Methods, 1)
	require.NotNil(t, LabeledArguments(labeled))
	require.Nil(t, LabeledArguments(initializer(t, tree, "partial")))

	_, ok = typer.Callee(ctx, initializer(t, tree, "count"))
	require.False(t, ok)
}

func varNames(tvs []*types.TypeVar) []string {
	names := make([]string, len(tvs))
	for i, tv := range tvs {
		names[i] = tv.Var
	}
	return names
}

func TestNotACompilationUnit(t *testing.T) {
	tree, err := host.Expression(host.New(), "expr.java", "1 + 2")
	require.NoError(t, err)
	_, err = Build(tree)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "expr.java"))
}

func TestTypeVarsInScope(t *testing.T) {
	prog, tree := build(t, `package demo;

class Box<T> {
  <R> R map(R r) { var a = r; return r; }
  static <S> S make(S s) { var b = s; return s; }
  static class Inner<U> {
    void f() { var c = 1; }
  }
  class Nested<V> {
    void g() { var d = 1; }
  }
}
`)

	for local, expected := range map[string][]string{
		"a": {"R", "T"},
		"b": {"S"},
		"c": {"U"},
		"d": {"T", "V"},
	} {
		t.Run(local, func(t *testing.T) {
			var names []string
			for tv := range prog.TypeVarsInScope(initializer(t, tree, local)) {
				names = append(names, tv.Var)
			}
			slices.Sort(names)
			require.Equal(t, expected, names)
		})
	}
}
