package builder

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"brunhild/internal/ast"
	"brunhild/internal/diag"
	"brunhild/internal/source"
	"brunhild/internal/syntax"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, src string) (*ast.Program, *diag.Collector) {
	t.Helper()
	return buildWith(t, src, Options{})
}

func buildWith(t *testing.T, src string, opts Options) (*ast.Program, *diag.Collector) {
	t.Helper()
	p := syntax.NewParser()
	defer p.Close()
	tree, err := p.Parse(context.Background(), source.File{Name: "t.sy", Content: []byte(src)})
	require.NoError(t, err)
	c := diag.NewCollector()
	syntax.SyntaxErrors(tree.Root, c)
	return Build(tree, c, opts), c
}

func codes(c *diag.Collector) []diag.Code {
	var out []diag.Code
	for _, d := range c.Drain() {
		out = append(out, d.Code)
	}
	return out
}

func TestBuild_Declarations(t *testing.T) {
	prog, c := build(t, `
const int N = 4, M = N * 2;
float scale = 1.5;
int grid[N][3] = {{1, 2, 3}, {4}};

int sum(int a[], int n) {
	int i = 0, s = 0;
	while (i < n) {
		s = s + a[i];
		i += 1;
	}
	return s;
}

void noop(void) { ; }
`)
	require.False(t, c.HasErrors(), "%v", c.Drain())
	require.Len(t, prog.Decls, 6)

	t.Run("Split declarators", func(t *testing.T) {
		n := prog.Decls[0].(*ast.VarDecl)
		m := prog.Decls[1].(*ast.VarDecl)
		assert.Equal(t, "N", n.Name.Name)
		assert.True(t, n.Type.Const)
		assert.Equal(t, "M", m.Name.Name)
		assert.True(t, m.Type.Const)
		assert.Equal(t, "(N * 2)", ast.ExprString(m.Init))
	})

	t.Run("Float global", func(t *testing.T) {
		d := prog.Decls[2].(*ast.VarDecl)
		assert.Equal(t, ast.Float, d.Type.Basic)
		lit, ok := d.Init.(*ast.FloatLit)
		require.True(t, ok)
		assert.Equal(t, float32(1.5), lit.Value)
	})

	t.Run("Array dims in source order", func(t *testing.T) {
		d := prog.Decls[3].(*ast.VarDecl)
		require.Len(t, d.Type.Dims, 2)
		assert.Equal(t, "N", ast.ExprString(d.Type.Dims[0]))
		assert.Equal(t, "3", ast.ExprString(d.Type.Dims[1]))
		list, ok := d.Init.(*ast.InitList)
		require.True(t, ok)
		assert.Len(t, list.Elems, 2)
		assert.Equal(t, "{1, 2, 3}", ast.ExprString(list.Elems[0]))
	})

	t.Run("Function", func(t *testing.T) {
		fn := prog.Decls[4].(*ast.FuncDecl)
		assert.Equal(t, "sum", fn.Name.Name)
		assert.Equal(t, ast.Int, fn.Result.Basic)
		require.Len(t, fn.Params, 2)
		assert.Equal(t, "int[]", fn.Params[0].Type.String())
		assert.Equal(t, "n", fn.Params[1].Name.Name)
		require.Len(t, fn.Body.List, 4)

		loop, ok := fn.Body.List[2].(*ast.WhileStmt)
		require.True(t, ok)
		body := loop.Body.(*ast.BlockStmt)
		require.Len(t, body.List, 2)
		assign := body.List[1].(*ast.AssignStmt)
		assert.Equal(t, ast.OpAddAssign, assign.Op)
	})

	t.Run("Void parameter list", func(t *testing.T) {
		fn := prog.Decls[5].(*ast.FuncDecl)
		assert.Empty(t, fn.Params)
		assert.Equal(t, ast.Void, fn.Result.Basic)
		require.Len(t, fn.Body.List, 1)
		assert.IsType(t, &ast.EmptyStmt{}, fn.Body.List[0])
	})
}

func TestBuild_Expressions(t *testing.T) {
	prog, c := build(t, `int main() {
	int a = 2 + 3 * 4;
	int b = (a > 1) ? -a : !a;
	int h = 0x1F + 010 + 'A';
	float f = 0x1.8p1;
	putf("%d\n", a);
	return a == 14 && b != 0 || 0;
}`)
	require.False(t, c.HasErrors(), "%v", c.Drain())
	fn := prog.Decls[0].(*ast.FuncDecl)
	list := fn.Body.List

	assert.Equal(t, "(2 + (3 * 4))", ast.ExprString(list[0].(*ast.VarDecl).Init))
	assert.Equal(t, "((a > 1) ? -a : !a)", ast.ExprString(list[1].(*ast.VarDecl).Init))
	assert.Equal(t, "((31 + 8) + 65)", ast.ExprString(list[2].(*ast.VarDecl).Init))
	assert.Equal(t, float32(3), list[3].(*ast.VarDecl).Init.(*ast.FloatLit).Value)

	call := list[4].(*ast.ExprStmt).X.(*ast.CallExpr)
	assert.Equal(t, "putf", call.Fun.Name)
	require.Len(t, call.Args, 2)
	assert.Equal(t, "%d\n", call.Args[0].(*ast.StringLit).Value)

	ret := list[5].(*ast.ReturnStmt)
	assert.Equal(t, "(((a == 14) && (b != 0)) || 0)", ast.ExprString(ret.Result))
}

func TestBuild_IfElse(t *testing.T) {
	prog, c := build(t, `int f(int x) { if (x) return 1; else if (x < 0) return 2; return 3; }`)
	require.False(t, c.HasErrors(), "%v", c.Drain())
	fn := prog.Decls[0].(*ast.FuncDecl)
	s := fn.Body.List[0].(*ast.IfStmt)
	assert.IsType(t, &ast.ReturnStmt{}, s.Then)
	inner, ok := s.Else.(*ast.IfStmt)
	require.True(t, ok)
	assert.Nil(t, inner.Else)
}

func TestBuild_Unsupported(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"for loop", "int main() { int i; for (i = 0; i < 3; i = i + 1) {} return 0; }"},
		{"increment", "int main() { int i = 0; i++; return i; }"},
		{"pointer", "int main() { int *p; return 0; }"},
		{"bitwise", "int main() { return 1 << 2; }"},
		{"nested assignment", "int main() { int a; int b; a = b = 1; return a; }"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prog, c := build(t, tc.src)
			require.NotNil(t, prog)
			assert.Contains(t, codes(c), diag.UnsupportedConstruct)
			for _, d := range c.Drain() {
				assert.Equal(t, diag.PhaseParse, d.Phase)
			}
		})
	}
}

func TestBuild_SyntaxErrorsAreNotDoubleReported(t *testing.T) {
	prog, c := build(t, "int main() {\n  int a = ;\n  return 0;\n}\nint ok = 1;\n")
	require.True(t, c.HasErrors())
	for _, code := range codes(c) {
		assert.Equal(t, diag.SyntaxError, code)
	}
	var names []string
	for _, d := range prog.Decls {
		names = append(names, d.DeclName().Name)
	}
	assert.Contains(t, names, "ok")
}

func TestBuild_MaxDepth(t *testing.T) {
	expr := strings.Repeat("(", 40) + "1" + strings.Repeat(")", 40)
	src := "int main() { return " + strings.Repeat("1 + ", 60) + expr + "; }\nint after = 2;\n"

	prog, c := buildWith(t, src, Options{MaxDepth: 30})
	out := c.Drain()
	require.Len(t, out, 1)
	assert.Equal(t, diag.MalformedSyntax, out[0].Code)
	assert.Contains(t, out[0].Message, "nesting too deep")
	require.Len(t, prog.Decls, 2)
	assert.Equal(t, "after", prog.Decls[1].DeclName().Name)
}

func TestBuild_MalformedShape(t *testing.T) {
	span := source.Span{File: "t.sy", Start: source.Pos{Line: 1, Column: 1}}
	// binary_expression with no right operand, as a broken grammar could produce.
	bin := &syntax.Node{Kind: "binary_expression", Named: true, Span: span, Children: []*syntax.Node{
		{Kind: "number_literal", Named: true, Field: "left", Text: "1", Span: span},
		{Kind: "+", Field: "operator", Span: span},
	}}
	ret := &syntax.Node{Kind: "return_statement", Named: true, Span: span, Children: []*syntax.Node{bin}}
	body := &syntax.Node{Kind: "compound_statement", Named: true, Field: "body", Span: span, Children: []*syntax.Node{ret}}
	fn := &syntax.Node{Kind: "function_definition", Named: true, Span: span, Children: []*syntax.Node{
		{Kind: "primitive_type", Named: true, Field: "type", Text: "int", Span: span},
		{Kind: "function_declarator", Named: true, Field: "declarator", Span: span, Children: []*syntax.Node{
			{Kind: "identifier", Named: true, Field: "declarator", Text: "main", Span: span},
		}},
		body,
	}}
	tree := &syntax.Tree{File: "t.sy", Root: &syntax.Node{Kind: "translation_unit", Named: true, Span: span, Children: []*syntax.Node{fn}}}

	c := diag.NewCollector()
	prog := Build(tree, c, Options{})
	require.Len(t, prog.Decls, 1)
	out := c.Drain()
	require.Len(t, out, 1)
	assert.Equal(t, diag.MalformedSyntax, out[0].Code)

	r := prog.Decls[0].(*ast.FuncDecl).Body.List[0].(*ast.ReturnStmt)
	assert.IsType(t, &ast.BadExpr{}, r.Result)
}

func TestParseInt(t *testing.T) {
	cases := map[string]int32{
		"0":          0,
		"42":         42,
		"017":        15,
		"0xff":       255,
		"2147483648": -2147483648,
		"0xFFFFFFFF": -1,
		"10u":        10,
	}
	for raw, want := range cases {
		got, err := parseInt(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	_, err := parseInt("08")
	assert.ErrorIs(t, err, strconv.ErrSyntax)
	_, err = parseInt("0x100000000")
	assert.ErrorIs(t, err, strconv.ErrRange)
	_, err = parseInt("99999999999999999999")
	assert.ErrorIs(t, err, strconv.ErrRange)

	t.Run("out of range literal", func(t *testing.T) {
		prog, c := build(t, "int main() { return 4294967296; }")
		ds := c.Drain()
		require.Len(t, ds, 1)
		assert.Equal(t, diag.InvalidConstant, ds[0].Code)
		assert.Equal(t, "integer literal `4294967296` does not fit in 32 bits", ds[0].Message)

		r := prog.Decls[0].(*ast.FuncDecl).Body.List[0].(*ast.ReturnStmt)
		assert.IsType(t, &ast.BadExpr{}, r.Result)
	})
}
