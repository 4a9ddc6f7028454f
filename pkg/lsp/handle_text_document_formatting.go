package lsp

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/creachadair/jrpc2"

	"github.com/vito/juxt/pkg/grammar"
	"github.com/vito/juxt/pkg/host"
	"github.com/vito/juxt/pkg/project"
	"github.com/vito/juxt/pkg/syntax"
)

func (h *Handler) handleTextDocumentFormatting(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params DocumentFormattingParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	h.mu.Lock()
	f, ok := h.files[params.TextDocument.URI]
	var text string
	if ok {
		text = f.Text
	}
	h.mu.Unlock()
	if !ok {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "document not found: %v", params.TextDocument.URI)
	}

	path, err := fromURI(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	config, err := project.Find(filepath.Dir(path))
	if err != nil {
		config = project.Default()
	}

	tree, err := grammar.New(host.New(), config.Features()).ParseFile(path, text)
	if err != nil || len(tree.Errors()) > 0 {
		// The parse errors are already shown as diagnostics
		slog.DebugContext(ctx, "not formatting", "path", path, "error", err)
		return []TextEdit{}, nil
	}

	formatted := syntax.Format(tree)
	if formatted == text {
		return []TextEdit{}, nil
	}

	// Replace the entire document
	return []TextEdit{
		{
			Range:   toRange(tree, syntax.Range{Start: 0, End: len(text)}),
			NewText: formatted,
		},
	}, nil
}
