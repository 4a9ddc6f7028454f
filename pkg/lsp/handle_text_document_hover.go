package lsp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/creachadair/jrpc2"

	"github.com/vito/juxt/pkg/check"
	"github.com/vito/juxt/pkg/namedargs"
	"github.com/vito/juxt/pkg/syntax"
)

func (h *Handler) handleTextDocumentHover(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params HoverParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	h.mu.Lock()
	f, ok := h.files[params.TextDocument.URI]
	var (
		text   string
		result *check.Result
	)
	if ok {
		text = f.Text
		result = f.Result
	}
	h.mu.Unlock()
	if result == nil {
		return nil, nil
	}

	path, err := fromURI(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	var tree *syntax.Tree
	for _, t := range result.Trees {
		if t.Filename == path && t.Source == text {
			tree = t
		}
	}
	if tree == nil {
		return nil, nil
	}

	node := expressionAt(tree, offsetOf(text, params.Position))
	if node == nil {
		return nil, nil
	}

	var resolution *namedargs.Resolution
	for _, r := range result.Resolutions {
		if r.Call == node || (node.Parent == r.Call && node.Kind == syntax.ReferenceExpr) {
			resolution = r
			node = r.Call
		}
	}

	typ := result.Typer.TypeOf(ctx, node)
	if typ == nil && resolution == nil {
		return nil, nil
	}

	var value string
	if typ != nil {
		value = fmt.Sprintf("```java\n%s\n```", typ.Name())
	}
	if resolution != nil {
		if value != "" {
			value += "\n\n"
		}
		value += fmt.Sprintf("```java\n%s\n```", resolution.Instantiation)
	}

	slog.DebugContext(ctx, "hover result", "node", node.Kind, "value", value)

	rng := toRange(tree, node.Range())
	return Hover{
		Contents: MarkupContent{Kind: "markdown", Value: value},
		Range:    &rng,
	}, nil
}

// expressionAt returns the innermost expression covering offset.
func expressionAt(tree *syntax.Tree, offset int) *syntax.Node {
	if offset < 0 {
		return nil
	}
	for _, leaf := range tree.Root.Leaves() {
		r := leaf.Range()
		if offset < r.Start || offset >= r.End {
			continue
		}
		for n := leaf.Parent; n != nil; n = n.Parent {
			if n.Kind.IsExpression() {
				return n
			}
		}
		return nil
	}
	return nil
}
