package grammar

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/dagger/testctx"
	"github.com/dagger/testctx/oteltest"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/vito/juxt/pkg/host"
	"github.com/vito/juxt/pkg/syntax"
)

func TestMain(m *testing.M) {
	os.Exit(oteltest.Main(m))
}

type GrammarSuite struct{}

func TestGrammar(tT *testing.T) {
	testctx.New(tT,
		oteltest.WithTracing[*testing.T](),
		oteltest.WithLogging[*testing.T](),
	).RunTests(GrammarSuite{})
}

// sexpr prints a node as a parenthesized list of its kind and children,
// with tokens as their text.
func sexpr(n *syntax.Node) string {
	if n.IsToken() {
		return n.Token.Text
	}
	parts := []string{n.Kind.String()}
	for _, c := range n.Children {
		parts = append(parts, sexpr(c))
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func parseExpr(t *testctx.T, p *Parser, src string) *syntax.Tree {
	tree, err := host.Expression(p, "test.java", src)
	require.NoError(t, err)
	return tree
}

func (GrammarSuite) TestExpressions(ctx context.Context, t *testctx.T) {
	p := New(host.New(), AllFeatures())

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "binding binds tighter than addition",
			input:    "a + 3 x",
			expected: "(BinaryExpr (ReferenceExpr a) + (BinaryExpr (LiteralExpr 3) (ReferenceExpr x)))",
		},
		{
			name:     "multiplicative tail belongs to the binding operand",
			input:    "3 x * y",
			expected: "(BinaryExpr (LiteralExpr 3) (BinaryExpr (ReferenceExpr x) * (ReferenceExpr y)))",
		},
		{
			name:     "binding chains nest to the left",
			input:    "a b c",
			expected: "(BinaryExpr (BinaryExpr (ReferenceExpr a) (ReferenceExpr b)) (ReferenceExpr c))",
		},
		{
			name:     "multiplication before binding on the left",
			input:    "2 * 3 x",
			expected: "(BinaryExpr (BinaryExpr (LiteralExpr 2) * (LiteralExpr 3)) (ReferenceExpr x))",
		},
		{
			name:     "parenthesized binding operand",
			input:    "3 (x + 1)",
			expected: "(BinaryExpr (LiteralExpr 3) (ParenExpr ( (BinaryExpr (ReferenceExpr x) + (LiteralExpr 1)) )))",
		},
		{
			name:     "binding on the right of assignment",
			input:    "a = b c",
			expected: "(AssignmentExpr (ReferenceExpr a) = (BinaryExpr (ReferenceExpr b) (ReferenceExpr c)))",
		},
		{
			name:     "single parenthesized value",
			input:    "(a)",
			expected: "(ParenExpr ( (ReferenceExpr a) ))",
		},
		{
			name:     "trailing comma makes a tuple",
			input:    "(a,)",
			expected: "(TupleExpr ( (TupleValueExpr (ReferenceExpr a)) , ))",
		},
		{
			name:     "single label makes a tuple",
			input:    "(a: 1)",
			expected: "(TupleExpr ( (TupleValueExpr a : (LiteralExpr 1)) ))",
		},
		{
			name:     "two values",
			input:    "(a, b)",
			expected: "(TupleExpr ( (TupleValueExpr (ReferenceExpr a)) , (TupleValueExpr (ReferenceExpr b)) ))",
		},
		{
			name:     "empty tuple",
			input:    "()",
			expected: "(TupleExpr ( ))",
		},
		{
			name:     "mixed labels",
			input:    "(1, x: 2, 3)",
			expected: "(TupleExpr ( (TupleValueExpr (LiteralExpr 1)) , (TupleValueExpr x : (LiteralExpr 2)) , (TupleValueExpr (LiteralExpr 3)) ))",
		},
		{
			name:     "lambda wins over tuple",
			input:    "(x) -> x",
			expected: "(LambdaExpr (ParameterList ( (Parameter x) )) -> (ReferenceExpr x))",
		},
		{
			name:     "lambda with two parameters",
			input:    "(a, b) -> a",
			expected: "(LambdaExpr (ParameterList ( (Parameter a) , (Parameter b) )) -> (ReferenceExpr a))",
		},
		{
			name:     "cast",
			input:    "(String) s",
			expected: "(TypeCastExpr ( (TypeElement String) ) (ReferenceExpr s))",
		},
		{
			name:     "parenthesized operand of subtraction is not a cast",
			input:    "(a) - 1",
			expected: "(BinaryExpr (ParenExpr ( (ReferenceExpr a) )) - (LiteralExpr 1))",
		},
		{
			name:     "shift operator joined from two tokens",
			input:    "x >> 2",
			expected: "(BinaryExpr (ReferenceExpr x) >> (LiteralExpr 2))",
		},
		{
			name:     "labeled call arguments",
			input:    "foo(a: 1, 2)",
			expected: "(MethodCallExpr (ReferenceExpr foo) (ExpressionList (TupleExpr ( (TupleValueExpr a : (LiteralExpr 1)) , (LiteralExpr 2) ))))",
		},
		{
			name:     "plain call arguments",
			input:    "foo(1, 2)",
			expected: "(MethodCallExpr (ReferenceExpr foo) (ExpressionList ( (LiteralExpr 1) , (LiteralExpr 2) )))",
		},
		{
			name:     "labeled constructor arguments",
			input:    "new Foo<>(a: 1)",
			expected: "(NewExpr new (TypeElement Foo (TypeArgumentList < >)) (ExpressionList (TupleExpr ( (TupleValueExpr a : (LiteralExpr 1)) ))))",
		},
		{
			name:     "qualified reference",
			input:    "a.b.c",
			expected: "(ReferenceExpr (ReferenceExpr (ReferenceExpr a) . b) . c)",
		},
		{
			name:     "instanceof",
			input:    "x instanceof Foo",
			expected: "(InstanceOfExpr (ReferenceExpr x) instanceof (TypeElement Foo))",
		},
		{
			name:     "conditional",
			input:    "c ? a : b",
			expected: "(ConditionalExpr (ReferenceExpr c) ? (ReferenceExpr a) : (ReferenceExpr b))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			tree := parseExpr(t, p, tt.input)
			require.Empty(t, tree.Errors())
			require.Equal(t, tt.expected, sexpr(tree.Top()))
		})
	}
}

func (GrammarSuite) TestReturnTuples(ctx context.Context, t *testctx.T) {
	p := New(host.New(), AllFeatures())

	tests := []struct {
		input    string
		expected string
	}{
		{
			input:    "return a, b;",
			expected: "(ReturnStatement return (TupleExpr (TupleValueExpr (ReferenceExpr a)) , (TupleValueExpr (ReferenceExpr b))) ;)",
		},
		{
			input:    "return x: 1;",
			expected: "(ReturnStatement return (TupleExpr (TupleValueExpr x : (LiteralExpr 1))) ;)",
		},
		{
			input:    "return a;",
			expected: "(ReturnStatement return (ReferenceExpr a) ;)",
		},
		{
			input:    "return;",
			expected: "(ReturnStatement return ;)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(ctx context.Context, t *testctx.T) {
			tree, err := host.Statement(p, "test.java", tt.input)
			require.NoError(t, err)
			require.Empty(t, tree.Errors())
			require.Equal(t, tt.expected, sexpr(tree.Top()))
		})
	}
}

func (GrammarSuite) TestDefaultParameters(ctx context.Context, t *testctx.T) {
	src := `class A {
  int foo(int a, int b = 0) { return a; }
}`

	t.Run("accepted by the dialect", func(ctx context.Context, t *testctx.T) {
		tree, err := New(host.New(), AllFeatures()).ParseFile("A.java", src)
		require.NoError(t, err)
		require.Empty(t, tree.Errors())

		var params []*syntax.Node
		tree.Root.Walk(func(n *syntax.Node) bool {
			if n.Kind == syntax.Parameter && !n.IsToken() {
				params = append(params, n)
			}
			return true
		})
		require.Len(t, params, 2)
		require.Equal(t, "(Parameter (Modifiers) (TypeElement int) a)", sexpr(params[0]))
		require.Equal(t, "(Parameter (Modifiers) (TypeElement int) b = (LiteralExpr 0))", sexpr(params[1]))
	})

	t.Run("rejected when disabled", func(ctx context.Context, t *testctx.T) {
		tree, err := New(host.New(), Features{Tuples: true}).ParseFile("A.java", src)
		require.NoError(t, err)
		require.NotEmpty(t, tree.Errors())
	})

	t.Run("missing default value", func(ctx context.Context, t *testctx.T) {
		tree, err := New(host.New(), AllFeatures()).ParseFile("A.java", `class A { void foo(int b = ) {} }`)
		require.NoError(t, err)
		errs := tree.Errors()
		require.NotEmpty(t, errs)
		require.Equal(t, "expression expected", errs[0].Message)
	})
}

func (GrammarSuite) TestSyntaxErrors(ctx context.Context, t *testctx.T) {
	p := New(host.New(), AllFeatures())

	tests := []struct {
		input string
		first string
	}{
		{"(a: )", "expression expected"},
		{"(a, b", "')' expected"},
		{"(a, , b)", "expression expected"},
		{"foo(a: 1 ;", "')' expected"},
		{"foo(a: )", "expression expected"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(ctx context.Context, t *testctx.T) {
			tree := parseExpr(t, p, tt.input)
			errs := tree.Errors()
			require.NotEmpty(t, errs)
			require.Equal(t, tt.first, errs[0].Message)
		})
	}
}

func (GrammarSuite) TestDisabledFeaturesFallBack(ctx context.Context, t *testctx.T) {
	p := New(host.New(), Features{})

	t.Run("no tuples", func(ctx context.Context, t *testctx.T) {
		require.NotEmpty(t, parseExpr(t, p, "(a, b)").Errors())
	})

	t.Run("no bindings", func(ctx context.Context, t *testctx.T) {
		require.NotEmpty(t, parseExpr(t, p, "3 x").Errors())
	})

	t.Run("ordinary expressions still parse", func(ctx context.Context, t *testctx.T) {
		tree := parseExpr(t, p, "a + b * (c)")
		require.Empty(t, tree.Errors())
		require.Equal(t,
			"(BinaryExpr (ReferenceExpr a) + (BinaryExpr (ReferenceExpr b) * (ParenExpr ( (ReferenceExpr c) ))))",
			sexpr(tree.Top()))
	})
}

func (GrammarSuite) TestMarkersStayBalanced(ctx context.Context, t *testctx.T) {
	p := New(host.New(), AllFeatures())

	inputs := []string{
		"(", ")", "(a:", "foo(,", "((a, b) c", "new", "a ? :", "(int) ",
		"x -> ", "(a, b) -> ", "(a: 1, 2", "foo(a: 1, b:", "3 (", "a b (c d",
		"new Foo<>(", "foo(a b, c: d e)", "(a)(b)(c: 1)", "x >>>= (y: 1)",
	}
	for _, input := range inputs {
		t.Run(input, func(ctx context.Context, t *testctx.T) {
			_, err := host.Expression(p, "test.java", input)
			require.NoError(t, err)
			_, err = host.Statement(p, "test.java", "return "+input)
			require.NoError(t, err)
		})
	}

	files := []string{
		"class { int f(int a = ) }",
		"class A { void f(int a = 1, ) { return a, ; } }",
		"class A<T extends Comparable<T>> { T f( { } }",
		"package p; import a.b.*; class A { int x = (a: ; }",
	}
	for _, src := range files {
		t.Run(src, func(ctx context.Context, t *testctx.T) {
			_, err := p.ParseFile("test.java", src)
			require.NoError(t, err)
		})
	}
}

func (GrammarSuite) TestRoundTrip(ctx context.Context, t *testctx.T) {
	p := New(host.New(), AllFeatures())

	inputs := []string{
		"a + 3 x",
		"3 x * y",
		"(a,   b: 2)",
		"(name: \"x\",\n age: 3)",
		"foo(a: 1, /* b */ b: 2 q)",
		"(a: (b, c), d: () )",
		"x >> 2 >= y",
	}
	for _, input := range inputs {
		t.Run(input, func(ctx context.Context, t *testctx.T) {
			first := parseExpr(t, p, input)
			require.Empty(t, first.Errors())

			again := parseExpr(t, p, syntax.Render(first.Root))
			require.Empty(t, again.Errors())
			require.Empty(t, cmp.Diff(sexpr(first.Root), sexpr(again.Root)))
		})
	}
}

func (GrammarSuite) TestFormat(ctx context.Context, t *testctx.T) {
	p := New(host.New(), AllFeatures())

	tree := parseExpr(t, p, "foo( a :1 ,b: 2 ) + ( x ,y )")
	require.Empty(t, tree.Errors())
	require.Equal(t, "foo(a: 1, b: 2) + (x, y)", syntax.Format(tree))
}
