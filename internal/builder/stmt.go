package builder

import (
	"brunhild/internal/ast"
	"brunhild/internal/syntax"
)

func (b *builder) block(n *syntax.Node) *ast.BlockStmt {
	blk := &ast.BlockStmt{Loc: n.Span}
	if !b.enter(n) {
		b.leave()
		return blk
	}
	defer b.leave()

	for _, c := range n.NamedChildren() {
		if c.Kind == "declaration" {
			for _, d := range b.varDecls(c) {
				blk.List = append(blk.List, d)
			}
			continue
		}
		if c.Kind == "function_definition" {
			b.unsupported(c, "nested function definitions")
			continue
		}
		if s := b.stmt(c); s != nil {
			blk.List = append(blk.List, s)
		}
	}
	return blk
}

// stmt returns nil only for nodes that carry no meaning.
func (b *builder) stmt(n *syntax.Node) ast.Stmt {
	if n.IsError() || n.Missing {
		return &ast.BadStmt{Loc: n.Span}
	}
	if !b.enter(n) {
		b.leave()
		return &ast.BadStmt{Loc: n.Span}
	}
	defer b.leave()

	switch n.Kind {
	case "compound_statement":
		return b.block(n)
	case "expression_statement":
		return b.exprStmt(n)
	case "if_statement":
		return b.ifStmt(n)
	case "while_statement":
		cond := b.condition(n)
		body := n.Child("body")
		if body == nil {
			b.malformed(n, "while statement without a body")
			return &ast.BadStmt{Loc: n.Span}
		}
		return &ast.WhileStmt{Loc: n.Span, Cond: cond, Body: b.stmt(body)}
	case "return_statement":
		ret := &ast.ReturnStmt{Loc: n.Span}
		if named := n.NamedChildren(); len(named) > 0 {
			ret.Result = b.expr(named[0])
		}
		return ret
	case "break_statement":
		return &ast.BreakStmt{Loc: n.Span}
	case "continue_statement":
		return &ast.ContinueStmt{Loc: n.Span}
	case "declaration":
		b.malformed(n, "declaration is not allowed here")
		return &ast.BadStmt{Loc: n.Span}
	default:
		b.unsupported(n, describe(n))
		return &ast.BadStmt{Loc: n.Span}
	}
}

func (b *builder) exprStmt(n *syntax.Node) ast.Stmt {
	named := n.NamedChildren()
	if len(named) == 0 {
		return &ast.EmptyStmt{Loc: n.Span}
	}
	x := named[0]
	if x.Kind != "assignment_expression" {
		return &ast.ExprStmt{Loc: n.Span, X: b.expr(x)}
	}

	left, right, opNode := x.Child("left"), x.Child("right"), x.Child("operator")
	if left == nil || right == nil || opNode == nil {
		b.malformed(x, "incomplete assignment")
		return &ast.BadStmt{Loc: n.Span}
	}
	op, ok := ast.LookupAssignOp(opNode.Kind)
	if !ok {
		b.unsupported(opNode, "assignment operator `"+opNode.Kind+"`")
		return &ast.BadStmt{Loc: n.Span}
	}
	return &ast.AssignStmt{Loc: n.Span, Op: op, LHS: b.expr(left), RHS: b.expr(right)}
}

func (b *builder) ifStmt(n *syntax.Node) ast.Stmt {
	cond := b.condition(n)
	then := n.Child("consequence")
	if then == nil {
		b.malformed(n, "if statement without a body")
		return &ast.BadStmt{Loc: n.Span}
	}
	s := &ast.IfStmt{Loc: n.Span, Cond: cond, Then: b.stmt(then)}

	alt := n.Child("alternative")
	if alt != nil && alt.Kind == "else_clause" {
		named := alt.NamedChildren()
		if len(named) == 0 {
			b.malformed(alt, "else without a body")
			return s
		}
		alt = named[0]
	}
	if alt != nil {
		s.Else = b.stmt(alt)
	}
	return s
}

func (b *builder) condition(n *syntax.Node) ast.Expr {
	cond := n.Child("condition")
	if cond == nil {
		b.malformed(n, "%s without a condition", describeStmt(n.Kind))
		return &ast.BadExpr{Loc: n.Span}
	}
	return b.expr(cond)
}

func describeStmt(kind string) string {
	switch kind {
	case "if_statement":
		return "if statement"
	case "while_statement":
		return "while statement"
	}
	return kind
}
