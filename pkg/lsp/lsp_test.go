package lsp

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/stretchr/testify/require"

	"github.com/vito/juxt/pkg/grammar"
	"github.com/vito/juxt/pkg/host"
	"github.com/vito/juxt/pkg/syntax"
)

const broken = `package demo;

class Box<T> {
  int foo(int a, int b = 0) { return a + b; }

  void use(Box<String> s) {
    var x = s.foo(1, 2, 3);
  }
}
`

const fixed = `package demo;

class Box<T> {
  int foo(int a, int b = 0) { return a + b; }

  void use(Box<String> s) {
    var x = s.foo(1);
  }
}
`

const unformatted = `package demo;

class Box<T> {
  int foo(int a, int b = 0) { return a + b; }

  void use(Box<String> s) {
    var x = s.foo( a:1 ,b:2 );
  }
}
`

func start(t *testing.T) (*jrpc2.Client, <-chan PublishDiagnosticsParams) {
	t.Helper()
	ctx := context.Background()

	cch, sch := channel.Direct()
	handler := NewHandler(ctx)
	srv := jrpc2.NewServer(handler, &jrpc2.ServerOptions{AllowPush: true})
	handler.SetServer(srv)
	srv.Start(sch)

	notes := make(chan PublishDiagnosticsParams, 16)
	cli := jrpc2.NewClient(cch, &jrpc2.ClientOptions{
		OnNotify: func(req *jrpc2.Request) {
			if req.Method() != "textDocument/publishDiagnostics" {
				return
			}
			var params PublishDiagnosticsParams
			if err := req.UnmarshalParams(&params); err == nil {
				notes <- params
			}
		},
	})
	t.Cleanup(func() {
		cli.Close() //nolint:errcheck
		srv.Stop()
	})
	return cli, notes
}

func next(t *testing.T, notes <-chan PublishDiagnosticsParams) PublishDiagnosticsParams {
	t.Helper()
	select {
	case params := <-notes:
		return params
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for diagnostics")
	}
	return PublishDiagnosticsParams{}
}

func TestServer(t *testing.T) {
	ctx := context.Background()
	cli, notes := start(t)

	dir := t.TempDir()
	uri := toURI(filepath.Join(dir, "Box.java"))

	rsp, err := cli.Call(ctx, "initialize", InitializeParams{RootURI: toURI(dir)})
	require.NoError(t, err)
	var init InitializeResult
	require.NoError(t, rsp.UnmarshalResult(&init))
	require.Equal(t, TDSKFull, init.Capabilities.TextDocumentSync)
	require.True(t, init.Capabilities.HoverProvider)
	require.True(t, init.Capabilities.DocumentFormattingProvider)
	require.NoError(t, cli.Notify(ctx, "initialized", struct{}{}))

	require.NoError(t, cli.Notify(ctx, "textDocument/didOpen", DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{URI: uri, LanguageID: "java", Version: 1, Text: broken},
	}))
	published := next(t, notes)
	require.Equal(t, uri, published.URI)
	require.Equal(t, 1, published.Version)
	require.Equal(t, []Diagnostic{{
		Range: Range{
			Start: Position{Line: 6, Character: 24},
			End:   Position{Line: 6, Character: 25},
		},
		Severity: DSError,
		Source:   "juxt",
		Message:  "Too many arguments: expected at most 2, found 3",
	}}, published.Diagnostics)

	require.NoError(t, cli.Notify(ctx, "textDocument/didChange", DidChangeTextDocumentParams{
		TextDocument:   VersionedTextDocumentIdentifier{TextDocumentIdentifier: TextDocumentIdentifier{URI: uri}, Version: 2},
		ContentChanges: []TextDocumentContentChangeEvent{{Text: fixed}},
	}))
	published = next(t, notes)
	require.Equal(t, 2, published.Version)
	require.Empty(t, published.Diagnostics)

	rsp, err = cli.Call(ctx, "textDocument/hover", HoverParams{
		TextDocumentPositionParams: TextDocumentPositionParams{
			TextDocument: TextDocumentIdentifier{URI: uri},
			Position:     Position{Line: 6, Character: 15},
		},
	})
	require.NoError(t, err)
	var hover Hover
	require.NoError(t, rsp.UnmarshalResult(&hover))
	require.Equal(t, "markdown", hover.Contents.Kind)
	require.Contains(t, hover.Contents.Value, "```java\nint\n```")
	require.Contains(t, hover.Contents.Value, "new Box.$foo_a_opt$b<>((Box<String>)null, 1, false, 0)")
	require.Equal(t, &Range{
		Start: Position{Line: 6, Character: 12},
		End:   Position{Line: 6, Character: 20},
	}, hover.Range)

	require.NoError(t, cli.Notify(ctx, "textDocument/didSave", DidSaveTextDocumentParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
	}))
	published = next(t, notes)
	require.Empty(t, published.Diagnostics)

	require.NoError(t, cli.Notify(ctx, "textDocument/didClose", DidCloseTextDocumentParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
	}))
	published = next(t, notes)
	require.Equal(t, uri, published.URI)
	require.Empty(t, published.Diagnostics)

	_, err = cli.Call(ctx, "textDocument/completion", struct{}{})
	var rpcErr *jrpc2.Error
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, jrpc2.MethodNotFound, rpcErr.Code)

	_, err = cli.Call(ctx, "shutdown", nil)
	require.NoError(t, err)
}

func TestFormatting(t *testing.T) {
	ctx := context.Background()
	cli, notes := start(t)
	uri := toURI(filepath.Join(t.TempDir(), "Box.java"))

	require.NoError(t, cli.Notify(ctx, "textDocument/didOpen", DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{URI: uri, LanguageID: "java", Version: 1, Text: unformatted},
	}))
	next(t, notes)

	rsp, err := cli.Call(ctx, "textDocument/formatting", DocumentFormattingParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	var edits []TextEdit
	require.NoError(t, rsp.UnmarshalResult(&edits))
	require.Len(t, edits, 1)
	require.Equal(t, Position{}, edits[0].Range.Start)
	require.Equal(t, Position{Line: 9, Character: 0}, edits[0].Range.End)
	require.Contains(t, edits[0].NewText, "s.foo(a: 1, b: 2);")

	_, err = cli.Call(ctx, "textDocument/formatting", DocumentFormattingParams{
		TextDocument: TextDocumentIdentifier{URI: toURI("/nope/Missing.java")},
	})
	require.Error(t, err)
}

func TestURI(t *testing.T) {
	uri := toURI("/tmp/some dir/Box.java")
	require.Equal(t, DocumentURI("file:///tmp/some%20dir/Box.java"), uri)

	path, err := fromURI(uri)
	require.NoError(t, err)
	require.Equal(t, "/tmp/some dir/Box.java", path)

	_, err = fromURI("https://example.com/Box.java")
	require.Error(t, err)
}

func TestOffsetOf(t *testing.T) {
	text := "ab\ncde\n"
	require.Equal(t, 0, offsetOf(text, Position{}))
	require.Equal(t, 4, offsetOf(text, Position{Line: 1, Character: 1}))
	require.Equal(t, 7, offsetOf(text, Position{Line: 2}))
	require.Equal(t, -1, offsetOf(text, Position{Line: 5}))
}

func TestToRange(t *testing.T) {
	tree, err := grammar.New(host.New(), grammar.AllFeatures()).ParseFile("Box.java", broken)
	require.NoError(t, err)
	require.Equal(t, Range{
		Start: Position{Line: 2, Character: 0},
		End:   Position{Line: 2, Character: 5},
	}, toRange(tree, syntax.Range{Start: 15, End: 20}))
}
