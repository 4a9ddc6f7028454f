package lsp

import (
	"context"
	"log/slog"

	"github.com/creachadair/jrpc2"
)

func (h *Handler) handleShutdown(ctx context.Context, req *jrpc2.Request) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	slog.DebugContext(ctx, "shutting down", "open", len(h.files))
	h.files = make(map[DocumentURI]*File)
	return nil, nil
}

func (h *Handler) handleExit(ctx context.Context, req *jrpc2.Request) (any, error) {
	if h.srv != nil {
		go h.srv.Stop()
	}
	return nil, nil
}
