package builder

import (
	"brunhild/internal/ast"
	"brunhild/internal/syntax"
)

func (b *builder) expr(n *syntax.Node) ast.Expr {
	if n == nil {
		return &ast.BadExpr{}
	}
	if n.IsError() || n.Missing {
		return &ast.BadExpr{Loc: n.Span}
	}
	if !b.enter(n) {
		b.leave()
		return &ast.BadExpr{Loc: n.Span}
	}
	defer b.leave()

	switch n.Kind {
	case "identifier":
		return b.ident(n)
	case "number_literal":
		return b.number(n)
	case "char_literal":
		return b.char(n)
	case "string_literal", "concatenated_string":
		return b.str(n)
	case "parenthesized_expression":
		named := n.NamedChildren()
		if len(named) != 1 {
			b.malformed(n, "parenthesized expression must hold exactly one expression")
			return &ast.BadExpr{Loc: n.Span}
		}
		return b.expr(named[0])
	case "unary_expression":
		return b.unary(n)
	case "binary_expression":
		return b.binary(n)
	case "conditional_expression":
		cond, then, alt := n.Child("condition"), n.Child("consequence"), n.Child("alternative")
		if cond == nil || then == nil || alt == nil {
			b.malformed(n, "incomplete conditional expression")
			return &ast.BadExpr{Loc: n.Span}
		}
		return &ast.CondExpr{Loc: n.Span, Cond: b.expr(cond), Then: b.expr(then), Else: b.expr(alt)}
	case "call_expression":
		return b.call(n)
	case "subscript_expression":
		return b.index(n)
	case "assignment_expression":
		b.unsupported(n, "assignment used as a value")
		return &ast.BadExpr{Loc: n.Span}
	case "initializer_list":
		b.malformed(n, "initializer list is only allowed in a declaration")
		return &ast.BadExpr{Loc: n.Span}
	default:
		b.unsupported(n, describe(n))
		return &ast.BadExpr{Loc: n.Span}
	}
}

func (b *builder) unary(n *syntax.Node) ast.Expr {
	opNode, arg := n.Child("operator"), n.Child("argument")
	if opNode == nil || arg == nil {
		b.malformed(n, "incomplete unary expression")
		return &ast.BadExpr{Loc: n.Span}
	}
	op, ok := ast.LookupUnaryOp(opNode.Kind)
	if !ok {
		b.unsupported(opNode, "operator `"+opNode.Kind+"`")
		return &ast.BadExpr{Loc: n.Span}
	}
	return &ast.UnaryExpr{Loc: n.Span, Op: op, X: b.expr(arg)}
}

func (b *builder) binary(n *syntax.Node) ast.Expr {
	left, opNode, right := n.Child("left"), n.Child("operator"), n.Child("right")
	if left == nil || opNode == nil || right == nil {
		b.malformed(n, "incomplete binary expression")
		return &ast.BadExpr{Loc: n.Span}
	}
	op, ok := ast.LookupBinaryOp(opNode.Kind)
	if !ok {
		b.unsupported(opNode, "operator `"+opNode.Kind+"`")
		return &ast.BadExpr{Loc: n.Span}
	}
	return &ast.BinaryExpr{Loc: n.Span, Op: op, X: b.expr(left), Y: b.expr(right)}
}

func (b *builder) call(n *syntax.Node) ast.Expr {
	fn := n.Child("function")
	if fn == nil {
		b.malformed(n, "call without a callee")
		return &ast.BadExpr{Loc: n.Span}
	}
	if fn.Kind != "identifier" {
		b.unsupported(fn, "calls through expressions")
		return &ast.BadExpr{Loc: n.Span}
	}
	call := &ast.CallExpr{Loc: n.Span, Fun: b.ident(fn)}
	if args := n.Child("arguments"); args != nil {
		for _, a := range args.NamedChildren() {
			call.Args = append(call.Args, b.expr(a))
		}
	}
	return call
}

func (b *builder) index(n *syntax.Node) ast.Expr {
	arg := n.Child("argument")
	idx := n.Child("index")
	if idx == nil {
		// grammars that group indices under a list node
		if list := n.Child("indices"); list != nil {
			if named := list.NamedChildren(); len(named) == 1 {
				idx = named[0]
			}
		}
	}
	if arg == nil || idx == nil {
		b.malformed(n, "incomplete subscript expression")
		return &ast.BadExpr{Loc: n.Span}
	}
	return &ast.IndexExpr{Loc: n.Span, X: b.expr(arg), Index: b.expr(idx)}
}
