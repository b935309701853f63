// Package syntax produces the concrete parse tree brunhild consumes. Parsing
// is delegated to the tree-sitter C grammar; the result is copied into an
// owned, immutable Node tree so later stages never touch cgo memory.
package syntax

import "brunhild/internal/source"

// Node is one concrete parse tree node.
type Node struct {
	Kind     string
	Field    string // field name under the parent, "" when unnamed
	Named    bool
	Missing  bool // inserted by error recovery, has no source text
	Text     string
	Span     source.Span
	Children []*Node
}

func (n *Node) IsError() bool {
	return n != nil && n.Kind == "ERROR"
}

// Child returns the first child attached under field, or nil.
func (n *Node) Child(field string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ChildrenOf returns every child attached under field, in order.
func (n *Node) ChildrenOf(field string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

// NamedChildren drops anonymous tokens and comments.
func (n *Node) NamedChildren() []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Named && c.Kind != "comment" {
			out = append(out, c)
		}
	}
	return out
}

// HasToken reports whether an anonymous child with the given text exists.
func (n *Node) HasToken(tok string) bool {
	if n == nil {
		return false
	}
	for _, c := range n.Children {
		if !c.Named && c.Kind == tok {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants in pre-order without recursion. Returning
// false from visit skips the node's children.
func Walk(n *Node, visit func(*Node) bool) {
	if n == nil {
		return
	}
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(cur) {
			continue
		}
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
}
