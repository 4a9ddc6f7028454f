package syntax

import (
	"strings"
)

// Render re-serializes the tokens under n. Any run of whitespace or comments
// between two tokens becomes a single space; adjacent tokens stay adjacent.
func Render(n *Node) string {
	var sb strings.Builder
	var prev *Node
	for _, leaf := range n.Leaves() {
		if prev != nil && prev.end != leaf.start {
			sb.WriteByte(' ')
		}
		sb.WriteString(leaf.Token.Text)
		prev = leaf
	}
	return sb.String()
}

// Format returns the source of t with spacing inside tuples and argument
// lists normalized: no space inside parentheses or before ',' and ':', one
// space after them. Gaps holding newlines or comments are kept as written, as
// is everything outside those lists.
func Format(t *Tree) string {
	leaves := t.Root.Leaves()
	if len(leaves) == 0 {
		return t.Source
	}

	var sb strings.Builder
	sb.WriteString(t.Source[:leaves[0].start])
	for i, leaf := range leaves {
		if i > 0 {
			prev := leaves[i-1]
			gap := t.Source[prev.end:leaf.start]
			if strings.TrimLeft(gap, " \t") == "" {
				if normalized, ok := listGap(prev, leaf); ok {
					gap = normalized
				}
			}
			sb.WriteString(gap)
		}
		sb.WriteString(leaf.Token.Text)
	}
	sb.WriteString(t.Source[leaves[len(leaves)-1].end:])
	return sb.String()
}

func inList(leaf *Node) bool {
	switch leaf.Parent.Kind {
	case TupleExpr, TupleValueExpr, ExpressionList:
		return true
	}
	return false
}

func listGap(prev, next *Node) (string, bool) {
	switch {
	case inList(next) && (next.Is(RParen) || next.Is(Comma) || next.Is(Colon)):
		return "", true
	case inList(prev) && prev.Is(LParen):
		return "", true
	case inList(prev) && (prev.Is(Comma) || prev.Is(Colon)):
		return " ", true
	}
	return "", false
}
