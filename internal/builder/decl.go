package builder

import (
	"brunhild/internal/ast"
	"brunhild/internal/diag"
	"brunhild/internal/syntax"
)

func (b *builder) funcDecl(n *syntax.Node) *ast.FuncDecl {
	result, ok := b.basicType(n.Child("type"), n)
	if !ok {
		return nil
	}

	decl := n.Child("declarator")
	if decl == nil {
		b.malformed(n, "function definition without a declarator")
		return nil
	}
	if decl.Kind != "function_declarator" {
		b.unsupported(decl, describe(decl))
		return nil
	}
	name := decl.Child("declarator")
	if name == nil || name.Kind != "identifier" {
		b.malformed(decl, "function declarator without a name")
		return nil
	}

	fn := &ast.FuncDecl{
		Loc:    n.Span,
		Name:   b.ident(name),
		Result: ast.TypeSpec{Basic: result},
	}
	if params := decl.Child("parameters"); params != nil {
		fn.Params = b.params(params)
	}

	body := n.Child("body")
	if body == nil || body.Kind != "compound_statement" {
		b.malformed(n, "function `%s` has no body", fn.Name.Name)
		fn.Body = &ast.BlockStmt{Loc: n.Span}
		return fn
	}
	fn.Body = b.block(body)
	return fn
}

func (b *builder) params(list *syntax.Node) []*ast.Param {
	named := list.NamedChildren()
	var out []*ast.Param
	for _, p := range named {
		switch p.Kind {
		case "parameter_declaration":
		case "variadic_parameter":
			b.unsupported(p, "variadic parameters")
			continue
		case "ERROR":
			continue
		default:
			b.malformed(p, "unexpected %s in parameter list", p.Kind)
			continue
		}

		basic, ok := b.basicType(p.Child("type"), p)
		if !ok {
			continue
		}
		decl := p.Child("declarator")
		if decl == nil {
			// f(void)
			if basic == ast.Void && len(named) == 1 {
				return nil
			}
			b.malformed(p, "parameter without a name")
			continue
		}
		name, dims, ok := b.declarator(decl, true)
		if !ok {
			continue
		}
		if basic == ast.Void {
			b.report(diag.TypeMismatch, p.Span, "parameter `%s` cannot have type void", name.Text)
			continue
		}
		out = append(out, &ast.Param{
			Loc:  p.Span,
			Name: b.ident(name),
			Type: ast.TypeSpec{Basic: basic, Const: isConst(p), Dims: dims},
		})
	}
	return out
}

// varDecls splits a declaration into one VarDecl per declarator.
func (b *builder) varDecls(n *syntax.Node) []ast.Decl {
	for _, c := range n.Children {
		if c.Kind == "storage_class_specifier" {
			b.unsupported(c, "storage class `"+storageText(c)+"`")
			return nil
		}
	}
	basic, ok := b.basicType(n.Child("type"), n)
	if !ok {
		return nil
	}
	if basic == ast.Void {
		b.report(diag.TypeMismatch, n.Span, "variables cannot have type void")
		return nil
	}
	constant := isConst(n)

	declarators := n.ChildrenOf("declarator")
	if len(declarators) == 0 {
		b.malformed(n, "declaration without a declarator")
		return nil
	}

	var out []ast.Decl
	for _, d := range declarators {
		target, value := d, (*syntax.Node)(nil)
		if d.Kind == "init_declarator" {
			target = d.Child("declarator")
			value = d.Child("value")
			if target == nil {
				b.malformed(d, "initialized declarator without a name")
				continue
			}
		}
		if target.Kind == "function_declarator" {
			b.unsupported(target, "function declarations without a body")
			continue
		}
		name, dims, ok := b.declarator(target, false)
		if !ok {
			continue
		}
		vd := &ast.VarDecl{
			Loc:  d.Span,
			Name: b.ident(name),
			Type: ast.TypeSpec{Basic: basic, Const: constant, Dims: dims},
		}
		if value != nil {
			vd.Init = b.initializer(value)
		}
		out = append(out, vd)
	}
	return out
}

// declarator unwraps nested array declarators down to the identifier. Only a
// parameter may omit its first dimension.
func (b *builder) declarator(n *syntax.Node, param bool) (*syntax.Node, []ast.Expr, bool) {
	var sizes []*syntax.Node
	cur := n
	for cur != nil && cur.Kind == "array_declarator" {
		sizes = append(sizes, cur.Child("size"))
		cur = cur.Child("declarator")
	}
	if cur == nil {
		b.malformed(n, "declarator without a name")
		return nil, nil, false
	}
	if cur.Kind != "identifier" {
		b.unsupported(cur, describe(cur))
		return nil, nil, false
	}

	// sizes were collected outermost declarator first, which is the last dimension.
	dims := make([]ast.Expr, len(sizes))
	for i, s := range sizes {
		j := len(sizes) - 1 - i
		if s == nil {
			if j != 0 || !param {
				b.malformed(n, "array `%s` is missing a dimension", cur.Text)
				return nil, nil, false
			}
			continue
		}
		dims[j] = b.expr(s)
	}
	return cur, dims, true
}

func (b *builder) initializer(n *syntax.Node) ast.Expr {
	if n.Kind != "initializer_list" {
		return b.expr(n)
	}
	if !b.enter(n) {
		b.leave()
		return &ast.BadExpr{Loc: n.Span}
	}
	defer b.leave()

	list := &ast.InitList{Loc: n.Span}
	for _, c := range n.NamedChildren() {
		if c.Kind == "initializer_pair" {
			b.unsupported(c, "designated initializers")
			continue
		}
		list.Elems = append(list.Elems, b.initializer(c))
	}
	return list
}

func (b *builder) basicType(n *syntax.Node, owner *syntax.Node) (ast.BasicKind, bool) {
	if n == nil {
		b.malformed(owner, "declaration without a type")
		return ast.Invalid, false
	}
	if n.Kind == "primitive_type" {
		switch n.Text {
		case "int":
			return ast.Int, true
		case "float":
			return ast.Float, true
		case "void":
			return ast.Void, true
		}
	}
	if n.Kind == "sized_type_specifier" || n.Kind == "primitive_type" {
		b.unsupported(n, "type `"+typeText(n)+"`")
		return ast.Invalid, false
	}
	b.unsupported(n, describe(n))
	return ast.Invalid, false
}

func isConst(n *syntax.Node) bool {
	for _, c := range n.Children {
		if c.Kind != "type_qualifier" {
			continue
		}
		if c.Text == "const" || c.HasToken("const") {
			return true
		}
	}
	return false
}

func storageText(n *syntax.Node) string {
	if n.Text != "" {
		return n.Text
	}
	for _, c := range n.Children {
		if c.Text != "" {
			return c.Text
		}
	}
	return n.Kind
}

func typeText(n *syntax.Node) string {
	if n.Text != "" {
		return n.Text
	}
	out := ""
	syntax.Walk(n, func(c *syntax.Node) bool {
		if len(c.Children) == 0 && c.Text != "" {
			if out != "" {
				out += " "
			}
			out += c.Text
		}
		return true
	})
	return out
}
