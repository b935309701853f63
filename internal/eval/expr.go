package eval

import (
	"context"
	"errors"
	"fmt"

	"brunhild/internal/ast"
	"brunhild/internal/resolver"
	"brunhild/internal/source"
	"brunhild/internal/types"
)

func (it *Interpreter) expr(ctx context.Context, e ast.Expr) (Value, error) {
	switch e := e.(type) {
	case *ast.IntLit:
		return Int(e.Value), nil
	case *ast.FloatLit:
		return Float(e.Value), nil
	case *ast.StringLit:
		return String(e.Value), nil

	case *ast.Ident:
		b, err := it.binding(e)
		if err != nil || b == nil {
			return Error{}, err
		}
		return it.load(e, b)

	case *ast.UnaryExpr:
		x, err := it.expr(ctx, e.X)
		if err != nil || isError(x) {
			return x, err
		}
		return unary(e.Op, x), nil

	case *ast.BinaryExpr:
		if e.Op.IsLogical() {
			return it.logical(ctx, e)
		}
		x, err := it.expr(ctx, e.X)
		if err != nil || isError(x) {
			return x, err
		}
		y, err := it.expr(ctx, e.Y)
		if err != nil {
			return nil, err
		}
		return it.arith(e.Op, x, y, e.Loc)

	case *ast.CondExpr:
		c, err := it.expr(ctx, e.Cond)
		if err != nil || isError(c) {
			return c, err
		}
		branch := e.Else
		if truthy(c) {
			branch = e.Then
		}
		v, err := it.expr(ctx, branch)
		if err != nil {
			return nil, err
		}
		if t, ok := it.exprs[e]; ok {
			v = coerce(v, t.Kind)
		}
		return v, nil

	case *ast.CallExpr:
		return it.call(ctx, e)

	case *ast.IndexExpr:
		arr, i, err := it.index(ctx, e)
		if err != nil || arr == nil {
			return Error{}, err
		}
		if len(arr.Dims) > 1 {
			return arr.Row(i), nil
		}
		return arr.Load(i), nil

	case *ast.BadExpr:
		return Error{}, nil
	}
	return nil, &InternalError{Span: e.Span(), Message: fmt.Sprintf("unexpected expression %T", e)}
}

func (it *Interpreter) load(id *ast.Ident, b *resolver.Binding) (Value, error) {
	switch b.Kind {
	case resolver.Function:
		fn, _ := b.Decl.(*ast.FuncDecl)
		return &Func{Decl: fn}, nil
	case resolver.Builtin:
		return &Func{Builtin: b.Builtin}, nil
	}
	if b.Global() {
		if v, ok := it.globals[b]; ok {
			return v, nil
		}
	} else if it.frame != nil {
		if v, ok := it.frame.vars[b]; ok {
			return v, nil
		}
	}
	return nil, &InternalError{Span: id.Loc, Message: fmt.Sprintf("`%s` has no storage", id.Name)}
}

func unary(op ast.UnaryOp, x Value) Value {
	switch op {
	case ast.OpNeg:
		if f, ok := x.(Float); ok {
			return -f
		}
		return -toInt(x)
	case ast.OpNot:
		return Int(types.Bool(!truthy(x)))
	}
	return x
}

func (it *Interpreter) logical(ctx context.Context, e *ast.BinaryExpr) (Value, error) {
	x, err := it.expr(ctx, e.X)
	if err != nil || isError(x) {
		return x, err
	}
	if truthy(x) == (e.Op == ast.OpOr) {
		return Int(types.Bool(e.Op == ast.OpOr)), nil
	}
	y, err := it.expr(ctx, e.Y)
	if err != nil || isError(y) {
		return y, err
	}
	return Int(types.Bool(truthy(y))), nil
}

// arith applies a non-logical binary operator. Mixed operands promote to
// float; integer division by zero is a fault.
func (it *Interpreter) arith(op ast.BinaryOp, x, y Value, span source.Span) (Value, error) {
	if isError(x) || isError(y) {
		return Error{}, nil
	}
	xi, xok := x.(Int)
	yi, yok := y.(Int)
	if xok && yok {
		v, err := types.IntBinary(op, int32(xi), int32(yi))
		if err != nil {
			return nil, &Fault{Span: span, Message: err.Error()}
		}
		return Int(v), nil
	}

	xf, yf := float32(toFloat(x)), float32(toFloat(y))
	if op.IsComparison() {
		v, err := types.FloatCompare(op, xf, yf)
		if err != nil {
			return nil, &Fault{Span: span, Message: err.Error()}
		}
		return Int(v), nil
	}
	v, err := types.FloatArith(op, xf, yf)
	if err != nil {
		return nil, &Fault{Span: span, Message: err.Error()}
	}
	return Float(v), nil
}

// index evaluates the array and subscript of e and bounds-checks them. A nil
// array means an operand was already an Error.
func (it *Interpreter) index(ctx context.Context, e *ast.IndexExpr) (*Array, int, error) {
	base, err := it.expr(ctx, e.X)
	if err != nil || isError(base) {
		return nil, 0, err
	}
	arr, ok := base.(*Array)
	if !ok {
		return nil, 0, &InternalError{Span: e.X.Span(), Message: fmt.Sprintf("cannot index %s", base.Kind())}
	}
	iv, err := it.expr(ctx, e.Index)
	if err != nil || isError(iv) {
		return nil, 0, err
	}
	i := int(toInt(iv))
	n := arr.Dims[0]
	if n < 0 {
		n = arr.Len() / max(types.Size(arr.Dims[1:]), 1)
	}
	if i < 0 || i >= n {
		return nil, 0, &Fault{Span: e.Loc, Message: fmt.Sprintf("index %d out of range [0, %d)", i, n)}
	}
	return arr, i, nil
}

// element resolves an assignable array cell to its flat view and offset.
func (it *Interpreter) element(ctx context.Context, e *ast.IndexExpr) (*Array, int, error) {
	arr, i, err := it.index(ctx, e)
	if err != nil {
		return nil, 0, err
	}
	if arr == nil {
		return nil, 0, errPoisoned
	}
	if len(arr.Dims) > 1 {
		return nil, 0, &InternalError{Span: e.Loc, Message: "cannot assign to an array row"}
	}
	return arr, i, nil
}

func (it *Interpreter) call(ctx context.Context, e *ast.CallExpr) (Value, error) {
	b, err := it.binding(e.Fun)
	if err != nil || b == nil {
		return Error{}, err
	}
	args := make([]Value, 0, len(e.Args))
	for _, a := range e.Args {
		v, err := it.expr(ctx, a)
		if err != nil {
			return nil, err
		}
		if isError(v) {
			return Error{}, nil
		}
		args = append(args, v)
	}

	switch b.Kind {
	case resolver.Builtin:
		return it.builtin(e, b.Builtin, args)
	case resolver.Function:
		if it.poisoned[b] {
			return Error{}, nil
		}
		fn, ok := b.Decl.(*ast.FuncDecl)
		if !ok {
			return nil, &InternalError{Span: e.Fun.Loc, Message: fmt.Sprintf("`%s` has no declaration", b.Name)}
		}
		v, err := it.invoke(ctx, fn, args, e.Loc)
		if errors.Is(err, errPoisoned) {
			return Error{}, nil
		}
		return v, err
	}
	return nil, &InternalError{Span: e.Fun.Loc, Message: fmt.Sprintf("`%s` is not callable", b.Name)}
}
