package syntax

import (
	"context"
	"fmt"

	"brunhild/internal/source"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
)

// Tree is the parse result for one file.
type Tree struct {
	File string
	Root *Node
}

// Parser wraps a tree-sitter parser configured for the C grammar. A Parser is
// not safe for concurrent use; each run creates its own.
type Parser struct {
	ts *sitter.Parser
}

func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(c.GetLanguage())
	return &Parser{ts: p}
}

func (p *Parser) Close() {
	p.ts.Close()
}

// Parse builds the concrete tree for file. Syntax errors do not fail the
// parse; they surface as ERROR and missing nodes, see SyntaxErrors.
func (p *Parser) Parse(ctx context.Context, file source.File) (*Tree, error) {
	tree, err := p.ts.ParseCtx(ctx, nil, file.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", file.Name, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("failed to parse file %s: empty tree", file.Name)
	}
	return &Tree{File: file.Name, Root: convert(root, file)}, nil
}

// convert copies the tree-sitter tree with an explicit work list, so deeply
// nested input cannot exhaust the goroutine stack here.
func convert(root *sitter.Node, file source.File) *Node {
	type item struct {
		ts  *sitter.Node
		out *Node
	}

	top := copyNode(root, "", file)
	work := []item{{ts: root, out: top}}
	for len(work) > 0 {
		it := work[len(work)-1]
		work = work[:len(work)-1]

		count := int(it.ts.ChildCount())
		if count == 0 {
			continue
		}
		it.out.Children = make([]*Node, 0, count)
		for i := 0; i < count; i++ {
			child := it.ts.Child(i)
			if child == nil {
				continue
			}
			cn := copyNode(child, it.ts.FieldNameForChild(i), file)
			it.out.Children = append(it.out.Children, cn)
			work = append(work, item{ts: child, out: cn})
		}
	}
	return top
}

func copyNode(n *sitter.Node, field string, file source.File) *Node {
	out := &Node{
		Kind:    n.Type(),
		Field:   field,
		Named:   n.IsNamed(),
		Missing: n.IsMissing(),
		Span:    spanOf(n, file.Name),
	}
	if n.ChildCount() == 0 || keepsText(out.Kind) {
		out.Text = n.Content(file.Content)
	}
	return out
}

func keepsText(kind string) bool {
	switch kind {
	case "string_literal", "char_literal", "number_literal", "ERROR":
		return true
	}
	return false
}

func spanOf(n *sitter.Node, file string) source.Span {
	start, end := n.StartPoint(), n.EndPoint()
	return source.Span{
		File: file,
		Start: source.Pos{
			Offset: int(n.StartByte()),
			Line:   int(start.Row) + 1,
			Column: int(start.Column) + 1,
		},
		End: source.Pos{
			Offset: int(n.EndByte()),
			Line:   int(end.Row) + 1,
			Column: int(end.Column) + 1,
		},
	}
}
