package checker

import (
	"fmt"

	"brunhild/internal/ast"
	"brunhild/internal/diag"
	"brunhild/internal/resolver"
	"brunhild/internal/types"
)

// value checks e where a value is required; void becomes an error.
func (c *checker) value(e ast.Expr) *types.Type {
	t := c.expr(e)
	if t.Kind == types.KindVoid {
		c.errorf(diag.TypeMismatch, e.Span(), "void value used in expression")
		return types.Invalid
	}
	if t.Kind == types.KindFunc {
		return types.Invalid
	}
	return t
}

func (c *checker) expr(e ast.Expr) *types.Type {
	t := c.exprType(e)
	c.info.Types[e] = t
	return t
}

func (c *checker) exprType(e ast.Expr) *types.Type {
	switch e := e.(type) {
	case *ast.IntLit:
		return types.Int
	case *ast.FloatLit:
		return types.Float
	case *ast.StringLit:
		return types.String
	case *ast.BadExpr:
		return types.Invalid
	case *ast.Ident:
		return c.ident(e)
	case *ast.UnaryExpr:
		t := c.value(e.X)
		if t.IsInvalid() {
			return types.Invalid
		}
		if !t.IsScalar() {
			c.errorf(diag.TypeMismatch, e.Loc, "operator %s is not defined for %s", e.Op, t)
			return types.Invalid
		}
		if e.Op == ast.OpNot {
			return types.Int
		}
		return t
	case *ast.BinaryExpr:
		return c.binary(e)
	case *ast.CondExpr:
		c.condition(e.Cond)
		a, b := c.value(e.Then), c.value(e.Else)
		switch {
		case a.IsInvalid() || b.IsInvalid():
			return types.Invalid
		case a.IsScalar() && b.IsScalar():
			return types.Promote(a, b)
		case types.Coercible(a, b) && types.Coercible(b, a):
			return a
		}
		c.errorf(diag.TypeMismatch, e.Loc, "branches of conditional have different types: %s and %s", a, b)
		return types.Invalid
	case *ast.CallExpr:
		return c.call(e)
	case *ast.IndexExpr:
		base := c.value(e.X)
		idx := c.value(e.Index)
		if !idx.IsInvalid() && idx.Kind != types.KindInt {
			c.errorf(diag.TypeMismatch, e.Index.Span(), "array index must be int, got %s", idx)
		}
		if base.IsInvalid() {
			return types.Invalid
		}
		if base.Kind != types.KindArray {
			c.errorf(diag.TypeMismatch, e.Loc, "cannot index a value of type %s", base)
			return types.Invalid
		}
		return base.Sub()
	case *ast.InitList:
		for _, el := range e.Elems {
			c.expr(el)
		}
		c.errorf(diag.TypeMismatch, e.Loc, "brace list is not an expression")
		return types.Invalid
	default:
		panic(fmt.Sprintf("checker: unexpected expression %T", e))
	}
}

func (c *checker) ident(id *ast.Ident) *types.Type {
	b, ok := c.res.Uses[id]
	if !ok {
		return types.Invalid
	}
	switch b.Kind {
	case resolver.Function:
		c.errorf(diag.TypeMismatch, id.Loc, "`%s` is a function, not a value", id.Name)
		return types.Invalid
	case resolver.Builtin:
		c.errorf(diag.TypeMismatch, id.Loc, "`%s` is a function, not a value", id.Name)
		return types.Invalid
	}
	if t, ok := c.info.Decls[b.Decl]; ok {
		return t
	}
	return types.Invalid
}

func (c *checker) binary(e *ast.BinaryExpr) *types.Type {
	x, y := c.value(e.X), c.value(e.Y)
	if x.IsInvalid() || y.IsInvalid() {
		return types.Invalid
	}
	if !x.IsScalar() || !y.IsScalar() {
		c.errorf(diag.TypeMismatch, e.Loc, "operator %s is not defined for %s and %s", e.Op, x, y)
		return types.Invalid
	}
	switch {
	case e.Op == ast.OpRem:
		if x.Kind != types.KindInt || y.Kind != types.KindInt {
			c.errorf(diag.TypeMismatch, e.Loc, "operator %% requires int operands, got %s and %s", x, y)
			return types.Invalid
		}
		return types.Int
	case e.Op.IsArithmetic():
		return types.Promote(x, y)
	default:
		return types.Int
	}
}

func (c *checker) call(e *ast.CallExpr) *types.Type {
	b, ok := c.res.Uses[e.Fun]
	if !ok {
		for _, a := range e.Args {
			c.expr(a)
		}
		return types.Invalid
	}

	var sig *types.Type
	switch b.Kind {
	case resolver.Builtin:
		sig = builtinType(b.Builtin)
	case resolver.Function:
		sig = c.funcType(b.Decl.(*ast.FuncDecl))
	default:
		for _, a := range e.Args {
			c.expr(a)
		}
		c.errorf(diag.TypeMismatch, e.Fun.Loc, "`%s` is not a function", e.Fun.Name)
		return types.Invalid
	}
	c.info.Types[e.Fun] = sig

	want, got := len(sig.Params), len(e.Args)
	if got != want && !(sig.Variadic && got > want) {
		c.errorf(diag.ArgumentCount, e.Loc, "Argument size mismatch: expected: %d, provided: %d", want, got)
	}
	for i, a := range e.Args {
		at := c.value(a)
		if i < want {
			c.coerce(at, sig.Params[i], a.Span())
			continue
		}
		if !at.IsInvalid() && !at.IsScalar() {
			c.errorf(diag.TypeMismatch, a.Span(), "cannot pass %s as a variadic argument", at)
		}
	}
	return sig.Result
}
