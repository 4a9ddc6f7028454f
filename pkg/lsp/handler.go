// Package lsp is a language server reporting the checker's diagnostics.
package lsp

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"unicode"

	"github.com/creachadair/jrpc2"

	"github.com/vito/juxt/pkg/check"
	"github.com/vito/juxt/pkg/diag"
	"github.com/vito/juxt/pkg/project"
	"github.com/vito/juxt/pkg/syntax"
)

// Handler serves the language server methods. It implements jrpc2.Assigner.
type Handler struct {
	mu       sync.Mutex
	files    map[DocumentURI]*File
	srv      *jrpc2.Server
	rootPath string
}

var _ jrpc2.Assigner = (*Handler)(nil)

// NewHandler creates the handler for this language server.
func NewHandler(ctx context.Context) *Handler {
	return &Handler{
		files: make(map[DocumentURI]*File),
	}
}

// SetServer sets the server used to push notifications to the client.
func (h *Handler) SetServer(srv *jrpc2.Server) {
	h.srv = srv
}

// File is an open document.
type File struct {
	LanguageID  string
	Text        string
	Version     int
	Diagnostics []Diagnostic

	// Result is the latest check of the document, nil if it failed.
	Result *check.Result
}

// Assign implements jrpc2.Assigner.
func (h *Handler) Assign(ctx context.Context, method string) jrpc2.Handler {
	slog.DebugContext(ctx, "assign", "method", method)

	switch method {
	case "initialize":
		return h.handleInitialize
	case "initialized":
		return h.handleInitialized
	case "shutdown":
		return h.handleShutdown
	case "exit":
		return h.handleExit
	case "textDocument/didOpen":
		return h.handleTextDocumentDidOpen
	case "textDocument/didChange":
		return h.handleTextDocumentDidChange
	case "textDocument/didSave":
		return h.handleTextDocumentDidSave
	case "textDocument/didClose":
		return h.handleTextDocumentDidClose
	case "textDocument/formatting":
		return h.handleTextDocumentFormatting
	case "textDocument/hover":
		return h.handleTextDocumentHover
	}
	return nil
}

func isWindowsDrivePath(path string) bool {
	if len(path) < 4 {
		return false
	}
	return unicode.IsLetter(rune(path[0])) && path[1] == ':'
}

func isWindowsDriveURI(uri string) bool {
	if len(uri) < 4 {
		return false
	}
	return uri[0] == '/' && unicode.IsLetter(rune(uri[1])) && uri[2] == ':'
}

func fromURI(uri DocumentURI) (string, error) {
	u, err := url.ParseRequestURI(string(uri))
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("only file URIs are supported, got %v", u.Scheme)
	}
	if isWindowsDriveURI(u.Path) {
		u.Path = u.Path[1:]
	}
	return u.Path, nil
}

func toURI(path string) DocumentURI {
	if isWindowsDrivePath(path) {
		path = "/" + path
	}
	return DocumentURI((&url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(path),
	}).String())
}

func (h *Handler) file(uri DocumentURI) *File {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.files[uri]
}

func (h *Handler) openFile(uri DocumentURI, languageID string, version int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.files[uri] = &File{
		LanguageID: languageID,
		Version:    version,
	}
}

func (h *Handler) closeFile(uri DocumentURI) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.files, uri)
}

// updateFile replaces the text of an open document, checks it and
// publishes the result.
func (h *Handler) updateFile(ctx context.Context, uri DocumentURI, text string, version *int) error {
	h.mu.Lock()
	f, ok := h.files[uri]
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("document not found: %v", uri)
	}
	f.Text = text
	if version != nil {
		f.Version = *version
	}
	current := f.Version
	h.mu.Unlock()

	path, err := fromURI(uri)
	if err != nil {
		return fmt.Errorf("file path from URI: %w", err)
	}
	slog.DebugContext(ctx, "file updated", "path", path, "version", current)

	res, err := h.analyze(ctx, path)
	diagnostics := []Diagnostic{}
	if err != nil {
		slog.WarnContext(ctx, "check failed", "path", path, "error", err)
		diagnostics = append(diagnostics, Diagnostic{
			Range:    Range{End: Position{Character: 1}},
			Severity: DSError,
			Source:   "juxt",
			Message:  err.Error(),
		})
	} else {
		diagnostics = toDiagnostics(res, path)
	}

	h.mu.Lock()
	if f.Version != current {
		// a newer change is being checked
		h.mu.Unlock()
		return nil
	}
	f.Result = res
	f.Diagnostics = diagnostics
	h.mu.Unlock()

	h.publishDiagnostics(ctx, uri, current, diagnostics)
	return nil
}

// analyze checks every open document together with the sources of the
// project path belongs to, or else of the workspace root's project.
func (h *Handler) analyze(ctx context.Context, path string) (*check.Result, error) {
	config, err := project.Find(filepath.Dir(path))
	if err == nil && config.Path == "" {
		// outside any project; fall back to the workspace root's
		h.mu.Lock()
		root := h.rootPath
		h.mu.Unlock()
		if root != "" {
			config, err = project.Find(root)
		}
	}
	if err != nil {
		slog.WarnContext(ctx, "failed to load project config", "path", path, "error", err)
		config = project.Default()
	}

	var sources []check.Source
	open := map[string]bool{}
	h.mu.Lock()
	for uri, f := range h.files {
		p, err := fromURI(uri)
		if err != nil {
			continue
		}
		open[p] = true
		sources = append(sources, check.Source{Filename: p, Text: f.Text})
	}
	h.mu.Unlock()

	if len(config.Sources) > 0 {
		files, err := check.Expand(config.SourcePaths()...)
		if err != nil {
			slog.WarnContext(ctx, "failed to list project sources", "error", err)
		}
		for _, p := range files {
			if open[p] {
				continue
			}
			content, err := os.ReadFile(p)
			if err != nil {
				slog.WarnContext(ctx, "failed to read project source", "path", p, "error", err)
				continue
			}
			sources = append(sources, check.Source{Filename: p, Text: string(content)})
		}
	}

	return check.Check(ctx, check.OptionsFrom(config), sources...)
}

// toDiagnostics converts the diagnostics for path to LSP form.
func toDiagnostics(res *check.Result, path string) []Diagnostic {
	var tree *syntax.Tree
	for _, t := range res.Trees {
		if t.Filename == path {
			tree = t
		}
	}
	diagnostics := []Diagnostic{}
	if tree == nil {
		return diagnostics
	}
	for _, d := range res.Diagnostics {
		if d.Filename != path {
			continue
		}
		diagnostics = append(diagnostics, Diagnostic{
			Range:    toRange(tree, d.Range),
			Severity: severity(d.Severity),
			Source:   "juxt",
			Message:  d.Message,
		})
	}
	return diagnostics
}

func severity(s diag.Severity) DiagnosticSeverity {
	switch s {
	case diag.Warning:
		return DSWarning
	case diag.Info:
		return DSInformation
	}
	return DSError
}

// toRange converts a byte range to 0-based positions.
func toRange(tree *syntax.Tree, r syntax.Range) Range {
	start, end := tree.Position(r.Start), tree.Position(r.End)
	return Range{
		Start: Position{Line: start.Line - 1, Character: start.Column - 1},
		End:   Position{Line: end.Line - 1, Character: end.Column - 1},
	}
}

// offsetOf converts a 0-based position in text to a byte offset.
func offsetOf(text string, pos Position) int {
	line := 0
	for i := 0; i < len(text); i++ {
		if line == pos.Line {
			return min(i+pos.Character, len(text))
		}
		if text[i] == '\n' {
			line++
		}
	}
	if line == pos.Line {
		return len(text)
	}
	return -1
}

func (h *Handler) publishDiagnostics(ctx context.Context, uri DocumentURI, version int, diagnostics []Diagnostic) {
	if h.srv == nil {
		return
	}

	err := h.srv.Notify(ctx, "textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
		Version:     version,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish diagnostics", "error", err)
	}
}
