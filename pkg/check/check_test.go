package check

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vito/juxt/pkg/grammar"
	"github.com/vito/juxt/pkg/project"
)

const box = `package demo;

class Box<T> {
  Box(T value, int size = 1) { }
  int foo(int a, int b = 0) { return a + b; }
  int bad(int a = "x") { return a; }

  void use(Box<String> s) {
    var ok = s.foo(a: 1);
    var omitted = s.foo(1);
    var surplus = s.foo(1, 2, 3);
    var exact = s.foo(1, 2);
    var pair = (name: "x", age: 3);
    var made = new Box<>(value: "v");
  }
}
`

const user = `package demo;

class User {
  void run(Box<String> s) {
    var missing = s.foo(b: 2);
    var mistyped = s.foo(a: "no");
    var same = (name: "y", age: 4);
  }
}
`

func options() Options {
	return Options{Features: grammar.AllFeatures(), Concurrency: 2, TypeCheck: true}
}

func TestCheck(t *testing.T) {
	ctx := context.Background()
	res, err := Check(ctx, options(),
		Source{Filename: "Box.java", Text: box},
		Source{Filename: "User.java", Text: user})
	require.NoError(t, err)
	require.Len(t, res.Trees, 2)

	require.Equal(t, []string{
		"Incompatible types: 'String' cannot be converted to 'int'",
		"Too many arguments: expected at most 2, found 3",
		"Missing required argument: a",
		"Incompatible types: 'String' cannot be converted to 'int'",
	}, res.Diagnostics.Messages())
	require.Equal(t, "Box.java", res.Diagnostics[0].Filename)
	require.Equal(t, "User.java", res.Diagnostics[3].Filename)
	require.True(t, res.Diagnostics.HasErrors())

	var resolved []string
	for _, r := range res.Resolutions {
		resolved = append(resolved, r.Call.Text())
	}
	require.Equal(t, []string{
		"s.foo(a: 1)",
		"s.foo(1)",
		`new Box<>(value: "v")`,
		`s.foo(a: "no")`,
	}, resolved)

	// equal shapes in one package share a type
	require.Len(t, res.Tuples.Provider.Classes(), 1)
	require.Equal(t, box, res.Source("Box.java"))
	require.Empty(t, res.Source("Nope.java"))
}

func TestCheckSyntaxErrors(t *testing.T) {
	res, err := Check(context.Background(), options(), Source{
		Filename: "Broken.java",
		Text:     "package demo;\nclass Broken {\n  void f() { var x = (a: ; }\n}\n",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Diagnostics)
	require.True(t, res.Diagnostics.HasErrors())
}

func TestCheckWithoutDefaultParams(t *testing.T) {
	opts := options()
	opts.Features.DefaultParams = false
	res, err := Check(context.Background(), opts, Source{
		Filename: "Box.java",
		Text:     "package demo;\nclass Box {\n  int foo(int a, int b = 0) { return a; }\n}\n",
	})
	require.NoError(t, err)
	require.Contains(t, res.Diagnostics.Messages(), "',' or ')' expected")
	require.Empty(t, res.Bundles.Bundles())
}

func TestCheckCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Check(ctx, options(), Source{Filename: "Box.java", Text: box})
	require.ErrorIs(t, err, context.Canceled)
}

func TestManifests(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "bundles.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(`bundles:
  - owner: Integer
    target: parse
    static: true
    params:
      - name: text
        type: String
      - name: radix
        type: int
        optional: true
        default: "10"
    returns: int
`), 0644))

	opts := options()
	opts.Manifests = []string{manifest}
	res, err := Check(context.Background(), opts, Source{
		Filename: "Use.java",
		Text:     "package demo;\nclass Use {\n  int f() { return Integer.parse(text: \"1\"); }\n}\n",
	})
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Resolutions, 1)
	require.Equal(t, `new Integer.$parse_text_opt$radix("1", false, 10)`, res.Resolutions[0].Instantiation)

	opts.Manifests = []string{filepath.Join(dir, "missing.yaml")}
	_, err = Check(context.Background(), opts)
	require.Error(t, err)
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "demo"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".hidden"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "demo", "Box.java"), []byte(box), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "demo", "User.java"), []byte(user), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "notes.txt"), []byte("hi"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden", "X.java"), []byte("nope"), 0644))

	files, err := Expand(dir)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "src", "demo", "Box.java"),
		filepath.Join(dir, "src", "demo", "User.java"),
	}, files)

	config := project.Default()
	config.Sources = []string{dir}
	res, err := Files(context.Background(), OptionsFrom(config), config.SourcePaths()...)
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 4)

	_, err = Expand(filepath.Join(dir, "nope"))
	require.Error(t, err)
}
