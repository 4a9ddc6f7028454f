package syntax

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Range is a half-open byte range in a source file.
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes covered.
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains reports whether offset falls inside r.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Position is a 1-based line and column.
type Position struct {
	Line   int
	Column int
}

// Tree is the result of parsing one source file.
type Tree struct {
	Filename string
	Source   string
	Root     *Node

	lines []int
}

// Position converts a byte offset into a line and column.
func (t *Tree) Position(offset int) Position {
	if t.lines == nil {
		t.lines = append(t.lines, 0)
		for i := 0; i < len(t.Source); i++ {
			if t.Source[i] == '\n' {
				t.lines = append(t.lines, i+1)
			}
		}
	}
	line := sort.Search(len(t.lines), func(i int) bool { return t.lines[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return Position{Line: line + 1, Column: offset - t.lines[line] + 1}
}

// Errors returns every error element in the tree in source order.
func (t *Tree) Errors() []*Node {
	var errs []*Node
	t.Root.Walk(func(n *Node) bool {
		if n.Kind == ErrorElement && n.Token == nil {
			errs = append(errs, n)
		}
		return true
	})
	return errs
}

// Top returns the only element directly under the root, or nil.
func (t *Tree) Top() *Node {
	elems := t.Root.Elements()
	if len(elems) != 1 {
		return nil
	}
	return elems[0]
}

// Run parses src with fn and builds the tree. A marker protocol violation
// inside fn aborts the parse and is returned as an error with no tree.
func Run(filename, src string, fn func(*Builder)) (tree *Tree, err error) {
	b := NewBuilder(src)
	defer func() {
		if r := recover(); r != nil {
			unbalanced, ok := r.(*UnbalancedMarkerError)
			if !ok {
				panic(r)
			}
			tree, err = nil, errors.WithStack(unbalanced)
		}
	}()
	fn(b)
	return b.Build(filename)
}

// Node is either a token leaf or a composite element.
type Node struct {
	Kind     Kind
	Token    *Token
	Message  string
	Parent   *Node
	Children []*Node

	tree  *Tree
	start int
	end   int
}

func (n *Node) append(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Tree returns the tree the node belongs to.
func (n *Node) Tree() *Tree {
	return n.tree
}

// IsToken reports whether n is a token leaf.
func (n *Node) IsToken() bool {
	return n.Token != nil
}

// Is reports whether n is a token of the given kind.
func (n *Node) Is(kind TokenKind) bool {
	return n != nil && n.Token != nil && n.Token.Kind == kind
}

// Range returns the byte range covered by the node.
func (n *Node) Range() Range {
	return Range{Start: n.start, End: n.end}
}

// Text returns the source text covered by the node.
func (n *Node) Text() string {
	if n.Token != nil {
		return n.Token.Text
	}
	return n.tree.Source[n.start:n.end]
}

// Elements returns the composite children of n.
func (n *Node) Elements() []*Node {
	var elems []*Node
	for _, c := range n.Children {
		if c.Token == nil {
			elems = append(elems, c)
		}
	}
	return elems
}

// Expressions returns the expression children of n.
func (n *Node) Expressions() []*Node {
	var exprs []*Node
	for _, c := range n.Children {
		if c.Token == nil && c.Kind.IsExpression() {
			exprs = append(exprs, c)
		}
	}
	return exprs
}

// Child returns the first composite child of the given kind.
func (n *Node) Child(kind Kind) *Node {
	for _, c := range n.Children {
		if c.Token == nil && c.Kind == kind {
			return c
		}
	}
	return nil
}

// ChildToken returns the first token child of the given kind.
func (n *Node) ChildToken(kind TokenKind) *Node {
	for _, c := range n.Children {
		if c.Is(kind) {
			return c
		}
	}
	return nil
}

// FirstExpression returns the first expression child.
func (n *Node) FirstExpression() *Node {
	for _, c := range n.Children {
		if c.Token == nil && c.Kind.IsExpression() {
			return c
		}
	}
	return nil
}

// Ancestor returns the nearest ancestor of one of the given kinds.
func (n *Node) Ancestor(kinds ...Kind) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Token != nil {
			continue
		}
		for _, k := range kinds {
			if p.Kind == k {
				return p
			}
		}
	}
	return nil
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Leaves returns the token leaves under n in order.
func (n *Node) Leaves() []*Node {
	var leaves []*Node
	n.Walk(func(c *Node) bool {
		if c.Token != nil {
			leaves = append(leaves, c)
		}
		return true
	})
	return leaves
}

// Operator returns the operator token of a binary, prefix, postfix or
// assignment expression. A binding expression has none.
func (n *Node) Operator() *Node {
	if n.Token != nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Token != nil && c.Token.Kind != LParen && c.Token.Kind != RParen {
			return c
		}
	}
	return nil
}

// Name returns the identifier naming a reference, method call, class,
// method, field, parameter or local variable.
func (n *Node) Name() string {
	switch n.Kind {
	case ReferenceExpr:
		if id := lastToken(n, Ident); id != nil {
			return id.Token.Text
		}
	case MethodCallExpr:
		if ref := n.Child(ReferenceExpr); ref != nil {
			return ref.Name()
		}
	case Class, Method, Field, Parameter, LocalVariable, TypeParameter:
		if id := n.ChildToken(Ident); id != nil {
			return id.Token.Text
		}
	case TupleValueExpr:
		if n.ChildToken(Colon) != nil {
			if id := n.ChildToken(Ident); id != nil {
				return id.Token.Text
			}
		}
	}
	return ""
}

func lastToken(n *Node, kind TokenKind) *Node {
	for i := len(n.Children) - 1; i >= 0; i-- {
		if n.Children[i].Is(kind) {
			return n.Children[i]
		}
	}
	return nil
}

// Dump renders the tree structure under n, one element or token per line.
func Dump(n *Node) string {
	var sb strings.Builder
	dump(&sb, n, 0)
	return sb.String()
}

func dump(sb *strings.Builder, n *Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	switch {
	case n.Token != nil:
		sb.WriteString(n.Token.Kind.String())
		if n.Token.Kind == Ident || n.Token.Kind.IsLiteral() && !n.Token.Kind.IsKeyword() {
			sb.WriteString(" ")
			sb.WriteString(n.Token.Text)
		}
	case n.Kind == ErrorElement:
		sb.WriteString("ErrorElement: ")
		sb.WriteString(n.Message)
	default:
		sb.WriteString(n.Kind.String())
	}
	sb.WriteString("\n")
	for _, c := range n.Children {
		dump(sb, c, depth+1)
	}
}
