package checker

import (
	"fmt"

	"brunhild/internal/ast"
	"brunhild/internal/diag"
	"brunhild/internal/resolver"
	"brunhild/internal/types"
)

func (c *checker) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.VarDecl:
		c.varDecl(s)
	case *ast.BlockStmt:
		for _, inner := range s.List {
			c.stmt(inner)
		}
	case *ast.ExprStmt:
		c.expr(s.X)
	case *ast.AssignStmt:
		c.assign(s)
	case *ast.IfStmt:
		c.condition(s.Cond)
		c.stmt(s.Then)
		if s.Else != nil {
			c.stmt(s.Else)
		}
	case *ast.WhileStmt:
		c.condition(s.Cond)
		c.loops++
		c.stmt(s.Body)
		c.loops--
	case *ast.ReturnStmt:
		c.ret(s)
	case *ast.BreakStmt:
		if c.loops == 0 {
			c.errorf(diag.InvalidJump, s.Loc, "Trying to break outside of a loop")
		}
	case *ast.ContinueStmt:
		if c.loops == 0 {
			c.errorf(diag.InvalidJump, s.Loc, "Trying to continue outside of a loop")
		}
	case *ast.EmptyStmt, *ast.BadStmt:
	default:
		panic(fmt.Sprintf("checker: unexpected statement %T", s))
	}
}

func (c *checker) condition(e ast.Expr) {
	t := c.value(e)
	if !t.IsInvalid() && !t.IsScalar() {
		c.errorf(diag.TypeMismatch, e.Span(), "condition must be int or float, got %s", t)
	}
}

func (c *checker) ret(s *ast.ReturnStmt) {
	name := ""
	if c.fn != nil {
		name = c.fn.Name.Name
	}
	if c.result.Kind == types.KindVoid {
		if s.Result != nil {
			c.expr(s.Result)
			c.errorf(diag.MissingReturnValue, s.Loc, "void function `%s` cannot return a value", name)
		}
		return
	}
	if s.Result == nil {
		c.errorf(diag.MissingReturnValue, s.Loc, "Missing return value in function `%s`", name)
		return
	}
	c.coerce(c.value(s.Result), c.result, s.Result.Span())
}

func (c *checker) assign(s *ast.AssignStmt) {
	lt := c.lvalue(s.LHS)
	rt := c.value(s.RHS)
	if lt.IsInvalid() || rt.IsInvalid() {
		return
	}
	if op, ok := s.Op.Binary(); ok && op == ast.OpRem {
		if lt.Kind != types.KindInt || rt.Kind != types.KindInt {
			c.errorf(diag.TypeMismatch, s.Loc, "operator %% requires int operands, got %s and %s", lt, rt)
			return
		}
	}
	if !rt.IsScalar() {
		c.errorf(diag.TypeMismatch, s.RHS.Span(), "Cannot coerce %s to %s", rt, lt)
	}
}

// lvalue checks that e names a writable scalar and returns its type.
func (c *checker) lvalue(e ast.Expr) *types.Type {
	switch e := e.(type) {
	case *ast.Ident:
		t := c.expr(e)
		b, ok := c.res.Uses[e]
		if !ok {
			return types.Invalid
		}
		switch b.Kind {
		case resolver.Constant:
			c.errorf(diag.InvalidAssignment, e.Loc, "cannot assign to constant `%s`", e.Name)
			return types.Invalid
		case resolver.Function, resolver.Builtin:
			c.errorf(diag.InvalidAssignment, e.Loc, "cannot assign to function `%s`", e.Name)
			return types.Invalid
		}
		if t.Kind == types.KindArray {
			c.errorf(diag.InvalidAssignment, e.Loc, "cannot assign to array `%s`", e.Name)
			return types.Invalid
		}
		return t
	case *ast.IndexExpr:
		t := c.expr(e)
		root := rootIdent(e)
		if root != nil {
			if b, ok := c.res.Uses[root]; ok && b.Kind == resolver.Constant {
				c.errorf(diag.InvalidAssignment, e.Loc, "cannot assign to constant `%s`", root.Name)
				return types.Invalid
			}
		}
		if t.Kind == types.KindArray {
			c.errorf(diag.InvalidAssignment, e.Loc, "cannot assign to array `%s`", ast.ExprString(e))
			return types.Invalid
		}
		return t
	case *ast.BadExpr:
		return types.Invalid
	default:
		c.expr(e)
		c.errorf(diag.InvalidAssignment, e.Span(), "Trying to assign to a non-lvalue")
		return types.Invalid
	}
}

func rootIdent(e ast.Expr) *ast.Ident {
	for {
		switch x := e.(type) {
		case *ast.IndexExpr:
			e = x.X
		case *ast.Ident:
			return x
		default:
			return nil
		}
	}
}
