package syntax

import (
	"context"
	"testing"

	"brunhild/internal/diag"
	"brunhild/internal/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *Tree {
	t.Helper()
	p := NewParser()
	defer p.Close()
	tree, err := p.Parse(context.Background(), source.File{Name: "t.sy", Content: []byte(src)})
	require.NoError(t, err)
	return tree
}

func TestParser_Parse(t *testing.T) {
	tree := parse(t, "int main() {\n  return 2 + 3 * 4;\n}\n")
	require.NotNil(t, tree.Root)
	assert.Equal(t, "translation_unit", tree.Root.Kind)

	decls := tree.Root.NamedChildren()
	require.Len(t, decls, 1)
	fn := decls[0]
	assert.Equal(t, "function_definition", fn.Kind)
	assert.Equal(t, 1, fn.Span.Start.Line)
	assert.Equal(t, "t.sy", fn.Span.File)

	t.Run("Fields", func(t *testing.T) {
		assert.Equal(t, "primitive_type", fn.Child("type").Kind)
		assert.Equal(t, "int", fn.Child("type").Text)
		body := fn.Child("body")
		require.NotNil(t, body)
		assert.Equal(t, "compound_statement", body.Kind)
	})

	t.Run("Binary shape", func(t *testing.T) {
		var bin *Node
		Walk(tree.Root, func(n *Node) bool {
			if bin == nil && n.Kind == "binary_expression" {
				bin = n
			}
			return true
		})
		require.NotNil(t, bin)
		assert.Equal(t, "2", bin.Child("left").Text)
		assert.Equal(t, "+", bin.Child("operator").Kind)
		assert.Equal(t, "binary_expression", bin.Child("right").Kind)
		assert.Equal(t, 2, bin.Span.Start.Line)
		assert.Equal(t, 10, bin.Span.Start.Column)
	})

	t.Run("No syntax errors", func(t *testing.T) {
		c := diag.NewCollector()
		assert.Equal(t, 0, SyntaxErrors(tree.Root, c))
		assert.False(t, c.HasErrors())
	})
}

func TestSyntaxErrors(t *testing.T) {
	tree := parse(t, "int main() {\n  int a = ;\n  return 0;\n}\n")
	c := diag.NewCollector()
	n := SyntaxErrors(tree.Root, c)
	assert.GreaterOrEqual(t, n, 1)
	require.True(t, c.HasErrors())
	for _, d := range c.Drain() {
		assert.Equal(t, diag.SyntaxError, d.Code)
		assert.Equal(t, diag.PhaseParse, d.Phase)
		assert.Contains(t, d.Message, "syntax error")
	}
}

func TestWalk_SkipsChildren(t *testing.T) {
	leaf := &Node{Kind: "identifier", Named: true}
	inner := &Node{Kind: "ERROR", Named: true, Children: []*Node{leaf}}
	root := &Node{Kind: "translation_unit", Named: true, Children: []*Node{inner}}

	var seen []string
	Walk(root, func(n *Node) bool {
		seen = append(seen, n.Kind)
		return !n.IsError()
	})
	assert.Equal(t, []string{"translation_unit", "ERROR"}, seen)
}

func TestFormatExpectedKind(t *testing.T) {
	assert.Equal(t, "';'", formatExpectedKind(";"))
	assert.Equal(t, "identifier", formatExpectedKind("identifier"))
	assert.Equal(t, "compound statement", formatExpectedKind("compound_statement"))
	assert.Equal(t, "token", formatExpectedKind(" "))
}
