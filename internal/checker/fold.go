package checker

import (
	"brunhild/internal/ast"
	"brunhild/internal/resolver"
	"brunhild/internal/types"
)

// fold evaluates e at compile time. It succeeds only for literals, scalar
// constants and operators over them; division by zero does not fold.
func (c *checker) fold(e ast.Expr) (Const, bool) {
	switch e := e.(type) {
	case *ast.IntLit:
		return Const{Type: types.Int, Int: e.Value}, true
	case *ast.FloatLit:
		return Const{Type: types.Float, Float: e.Value}, true
	case *ast.Ident:
		b, ok := c.res.Uses[e]
		if !ok || b.Kind != resolver.Constant {
			return Const{}, false
		}
		return c.foldBinding(b)
	case *ast.UnaryExpr:
		x, ok := c.fold(e.X)
		if !ok {
			return Const{}, false
		}
		switch e.Op {
		case ast.OpPlus:
			return x, true
		case ast.OpNeg:
			if x.Type.Kind == types.KindFloat {
				return Const{Type: types.Float, Float: -x.Float}, true
			}
			return Const{Type: types.Int, Int: -x.Int}, true
		case ast.OpNot:
			if x.Type.Kind == types.KindFloat {
				return Const{Type: types.Int, Int: types.Bool(x.Float == 0)}, true
			}
			return Const{Type: types.Int, Int: types.Bool(x.Int == 0)}, true
		}
		return Const{}, false
	case *ast.BinaryExpr:
		x, ok := c.fold(e.X)
		if !ok {
			return Const{}, false
		}
		y, ok := c.fold(e.Y)
		if !ok {
			return Const{}, false
		}
		return foldBinary(e.Op, x, y)
	case *ast.CondExpr:
		cond, ok := c.fold(e.Cond)
		if !ok {
			return Const{}, false
		}
		a, ok := c.fold(e.Then)
		if !ok {
			return Const{}, false
		}
		b, ok := c.fold(e.Else)
		if !ok {
			return Const{}, false
		}
		taken := a
		if cond.AsFloat() == 0 {
			taken = b
		}
		if a.Type.Kind == types.KindFloat || b.Type.Kind == types.KindFloat {
			return Const{Type: types.Float, Float: taken.AsFloat()}, true
		}
		return taken, true
	}
	return Const{}, false
}

func foldBinary(op ast.BinaryOp, x, y Const) (Const, bool) {
	if x.Type.Kind == types.KindInt && y.Type.Kind == types.KindInt {
		v, err := types.IntBinary(op, x.Int, y.Int)
		if err != nil {
			return Const{}, false
		}
		return Const{Type: types.Int, Int: v}, true
	}
	if op.IsArithmetic() {
		v, err := types.FloatArith(op, x.AsFloat(), y.AsFloat())
		if err != nil {
			return Const{}, false
		}
		return Const{Type: types.Float, Float: v}, true
	}
	v, err := types.FloatCompare(op, x.AsFloat(), y.AsFloat())
	if err != nil {
		return Const{}, false
	}
	return Const{Type: types.Int, Int: v}, true
}

// foldBinding folds a scalar constant's initializer once and caches it.
func (c *checker) foldBinding(b *resolver.Binding) (Const, bool) {
	if b == nil {
		return Const{}, false
	}
	if v, ok := c.info.Consts[b]; ok {
		return v, true
	}
	d, ok := b.Decl.(*ast.VarDecl)
	if !ok || d.Init == nil || d.Type.IsArray() || c.folding[b] {
		return Const{}, false
	}
	c.folding[b] = true
	defer delete(c.folding, b)

	v, ok := c.fold(d.Init)
	if !ok {
		return Const{}, false
	}
	switch d.Type.Basic {
	case ast.Int:
		v = Const{Type: types.Int, Int: v.AsInt()}
	case ast.Float:
		v = Const{Type: types.Float, Float: v.AsFloat()}
	default:
		return Const{}, false
	}
	c.info.Consts[b] = v
	return v, true
}
