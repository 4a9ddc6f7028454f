// Package check runs the whole analysis over a set of source files: parse,
// declare, synthesize bundles, then resolve every call site and tuple.
package check

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vito/juxt/pkg/bundles"
	"github.com/vito/juxt/pkg/diag"
	"github.com/vito/juxt/pkg/grammar"
	"github.com/vito/juxt/pkg/host"
	"github.com/vito/juxt/pkg/namedargs"
	"github.com/vito/juxt/pkg/project"
	"github.com/vito/juxt/pkg/sema"
	"github.com/vito/juxt/pkg/syntax"
	"github.com/vito/juxt/pkg/tuples"
)

// Extension is the file extension of source files found in directories.
const Extension = ".java"

// Options configures a check.
type Options struct {
	Features grammar.Features
	// Manifests are external bundle manifest paths.
	Manifests []string
	// Concurrency is the most call sites resolved at once. Zero or less
	// means no limit.
	Concurrency int
	TypeCheck   bool
}

// OptionsFrom returns the options a project configuration describes.
func OptionsFrom(config *project.Config) Options {
	return Options{
		Features:    config.Features(),
		Manifests:   config.BundlePaths(),
		Concurrency: config.Check.Concurrency,
		TypeCheck:   config.Check.TypeCheck,
	}
}

// Source is one file to check.
type Source struct {
	Filename string
	Text     string
}

// Result is everything a check produced.
type Result struct {
	Trees    []*syntax.Tree
	Program  *sema.Program
	Bundles  *bundles.Registry
	Typer    *sema.Typer
	Tuples   *tuples.Synthesizer
	Resolver *namedargs.Resolver

	// Resolutions are the calls matched to a bundle, in source order.
	Resolutions []*namedargs.Resolution
	Diagnostics diag.List
}

// Source returns the text of the named file.
func (r *Result) Source(filename string) string {
	for _, tree := range r.Trees {
		if tree.Filename == filename {
			return tree.Source
		}
	}
	return ""
}

// Check analyzes sources. Problems in the sources are diagnostics in the
// result; the error is for faults, bad manifests and cancellation.
func Check(ctx context.Context, opts Options, sources ...Source) (*Result, error) {
	parser := grammar.New(host.New(), opts.Features)

	res := &Result{}
	var problems diag.Collector
	for _, src := range sources {
		tree, err := parser.ParseFile(src.Filename, src.Text)
		if err != nil {
			return nil, errors.Wrap(err, src.Filename)
		}
		res.Trees = append(res.Trees, tree)
		problems.Add(diag.Syntax(tree)...)
	}

	prog, err := sema.Build(res.Trees...)
	if err != nil {
		return nil, err
	}
	res.Program = prog
	problems.Add(prog.Diagnostics()...)

	if opts.Features.DefaultParams {
		res.Bundles = bundles.Synthesize(prog)
	} else {
		res.Bundles = bundles.NewRegistry()
	}
	for _, path := range opts.Manifests {
		manifest, err := bundles.LoadManifest(path)
		if err != nil {
			return nil, err
		}
		if err := manifest.Declare(prog, res.Bundles); err != nil {
			return nil, err
		}
	}

	res.Typer = sema.NewTyper(prog)
	res.Tuples = tuples.NewSynthesizer(res.Typer)
	res.Resolver = namedargs.New(res.Typer, res.Bundles)
	res.Resolver.TypeCheck = opts.TypeCheck
	res.Tuples.Arguments = res.Resolver

	defaults, err := res.Bundles.CheckDefaults(ctx, res.Typer)
	if err != nil {
		return nil, err
	}
	problems.Add(defaults...)

	calls, standalone := sites(res.Trees)
	slog.DebugContext(ctx, "resolving", "calls", len(calls), "tuples", len(standalone))

	resolutions := make([]*namedargs.Resolution, len(calls))
	eg, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		eg.SetLimit(opts.Concurrency)
	}
	for i, call := range calls {
		eg.Go(func() error {
			resolution, diags, err := res.Resolver.Check(gctx, call)
			if err != nil {
				return err
			}
			resolutions[i] = resolution
			problems.Add(diags...)
			return nil
		})
	}
	for _, tuple := range standalone {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res.Typer.TypeOf(gctx, tuple)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for _, resolution := range resolutions {
		if resolution != nil {
			res.Resolutions = append(res.Resolutions, resolution)
		}
	}
	res.Diagnostics = problems.Diagnostics()
	return res, nil
}

// sites returns the calls with an argument list and the standalone tuples
// of trees, in source order.
func sites(trees []*syntax.Tree) (calls, standalone []*syntax.Node) {
	for _, tree := range trees {
		tree.Root.Walk(func(n *syntax.Node) bool {
			if n.IsToken() {
				return false
			}
			switch n.Kind {
			case syntax.MethodCallExpr, syntax.NewExpr:
				if sema.Arguments(n) != nil {
					calls = append(calls, n)
				}
			case syntax.TupleExpr:
				if tuples.ArgumentsOf(n) == nil {
					standalone = append(standalone, n)
				}
			}
			return true
		})
	}
	return calls, standalone
}

// Files checks the given files, and the source files beneath any given
// directory.
func Files(ctx context.Context, opts Options, paths ...string) (*Result, error) {
	files, err := Expand(paths...)
	if err != nil {
		return nil, err
	}
	var sources []Source
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading source")
		}
		sources = append(sources, Source{Filename: path, Text: string(content)})
	}
	return Check(ctx, opts, sources...)
}

// Expand replaces each directory in paths with the source files beneath
// it, sorted.
func Expand(paths ...string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		var found []string
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && strings.HasPrefix(d.Name(), ".") && p != path {
				return filepath.SkipDir
			}
			if !d.IsDir() && filepath.Ext(p) == Extension {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
