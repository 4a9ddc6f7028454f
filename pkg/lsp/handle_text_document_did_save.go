package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
)

func (h *Handler) handleTextDocumentDidSave(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params DidSaveTextDocumentParams
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
		return nil, nil
	}
	if params.Text != nil {
		text = *params.Text
	}
	// saving may change project sources other documents depend on
	return nil, h.updateFile(ctx, params.TextDocument.URI, text, nil)
}
