package eval

import (
	"context"
	"fmt"

	"brunhild/internal/ast"
	"brunhild/internal/resolver"
	"brunhild/internal/source"
	"brunhild/internal/types"
)

type flow int

const (
	flowNext flow = iota
	flowBreak
	flowContinue
	flowReturn
)

func (it *Interpreter) invoke(ctx context.Context, fn *ast.FuncDecl, args []Value, at source.Span) (Value, error) {
	if err := interrupted(ctx); err != nil {
		return nil, err
	}
	if it.depth >= it.opts.MaxCallDepth {
		return nil, &Fault{Span: at, Message: fmt.Sprintf("call depth limit exceeded (%d)", it.opts.MaxCallDepth)}
	}
	ft, err := it.declType(fn)
	if err != nil {
		return nil, err
	}

	fr := &frame{fn: fn, vars: make(map[*resolver.Binding]Value, len(fn.Params))}
	for i, p := range fn.Params {
		b := it.defs[p]
		if b == nil || i >= len(args) {
			return nil, &InternalError{Span: p.Loc, Message: fmt.Sprintf("parameter `%s` cannot be bound", p.Name.Name)}
		}
		pt, err := it.declType(p)
		if err != nil {
			return nil, err
		}
		fr.vars[b] = coerce(args[i], pt.Kind)
	}

	saved := it.frame
	it.frame = fr
	it.depth++
	defer func() {
		it.frame = saved
		it.depth--
	}()

	if fn.Body != nil {
		if _, err := it.block(ctx, fn.Body); err != nil {
			return nil, err
		}
	}

	if ft.Result.Kind == types.KindVoid {
		return Void{}, nil
	}
	if fr.ret == nil {
		return zero(ft.Result), nil
	}
	if isError(fr.ret) {
		return nil, errPoisoned
	}
	return coerce(fr.ret, ft.Result.Kind), nil
}

func (it *Interpreter) block(ctx context.Context, b *ast.BlockStmt) (flow, error) {
	for _, s := range b.List {
		f, err := it.stmt(ctx, s)
		if err != nil || f != flowNext {
			return f, err
		}
	}
	return flowNext, nil
}

func (it *Interpreter) stmt(ctx context.Context, s ast.Stmt) (flow, error) {
	if err := it.step(s.Span()); err != nil {
		return flowNext, err
	}

	switch s := s.(type) {
	case *ast.VarDecl:
		v, err := it.initVar(ctx, s)
		if err != nil {
			return flowNext, err
		}
		b := it.defs[s]
		if b == nil {
			return flowNext, &InternalError{Span: s.Loc, Message: fmt.Sprintf("declaration `%s` has no binding", s.Name.Name)}
		}
		it.frame.vars[b] = v
		return flowNext, nil

	case *ast.BlockStmt:
		return it.block(ctx, s)

	case *ast.ExprStmt:
		v, err := it.expr(ctx, s.X)
		if err != nil {
			return flowNext, err
		}
		if isError(v) {
			return flowNext, errPoisoned
		}
		return flowNext, nil

	case *ast.AssignStmt:
		return flowNext, it.assign(ctx, s)

	case *ast.IfStmt:
		ok, err := it.cond(ctx, s.Cond)
		if err != nil {
			return flowNext, err
		}
		if ok {
			return it.stmt(ctx, s.Then)
		}
		if s.Else != nil {
			return it.stmt(ctx, s.Else)
		}
		return flowNext, nil

	case *ast.WhileStmt:
		for {
			if err := interrupted(ctx); err != nil {
				return flowNext, err
			}
			ok, err := it.cond(ctx, s.Cond)
			if err != nil || !ok {
				return flowNext, err
			}
			f, err := it.stmt(ctx, s.Body)
			if err != nil {
				return flowNext, err
			}
			switch f {
			case flowBreak:
				return flowNext, nil
			case flowReturn:
				return flowReturn, nil
			}
			if err := it.step(s.Loc); err != nil {
				return flowNext, err
			}
		}

	case *ast.ReturnStmt:
		if s.Result != nil {
			v, err := it.expr(ctx, s.Result)
			if err != nil {
				return flowNext, err
			}
			it.frame.ret = v
		}
		return flowReturn, nil

	case *ast.BreakStmt:
		return flowBreak, nil

	case *ast.ContinueStmt:
		return flowContinue, nil

	case *ast.EmptyStmt:
		return flowNext, nil

	case *ast.BadStmt:
		return flowNext, errPoisoned
	}
	return flowNext, &InternalError{Span: s.Span(), Message: fmt.Sprintf("unexpected statement %T", s)}
}

func (it *Interpreter) cond(ctx context.Context, e ast.Expr) (bool, error) {
	v, err := it.expr(ctx, e)
	if err != nil {
		return false, err
	}
	if isError(v) {
		return false, errPoisoned
	}
	return truthy(v), nil
}

// initVar builds the initial value of a declaration. Missing initializers
// and unlisted array cells are zero.
func (it *Interpreter) initVar(ctx context.Context, d *ast.VarDecl) (Value, error) {
	t, err := it.declType(d)
	if err != nil {
		return nil, err
	}

	if t.Kind == types.KindArray {
		if types.Size(t.Dims) < 0 {
			return nil, &Fault{Span: d.Name.Loc, Message: fmt.Sprintf("array `%s` is too large", d.Name.Name)}
		}
		arr := NewArray(t.Elem, t.Dims)
		for _, slot := range it.inits[d] {
			v, err := it.expr(ctx, slot.Expr)
			if err != nil {
				return nil, err
			}
			if isError(v) {
				return nil, errPoisoned
			}
			arr.Store(slot.Offset, v)
		}
		return arr, nil
	}

	if d.Init == nil {
		return zero(t), nil
	}
	v, err := it.expr(ctx, d.Init)
	if err != nil {
		return nil, err
	}
	return coerce(v, t.Kind), nil
}

func (it *Interpreter) assign(ctx context.Context, s *ast.AssignStmt) error {
	switch lhs := s.LHS.(type) {
	case *ast.Ident:
		b, err := it.binding(lhs)
		if err != nil {
			return err
		}
		if b == nil {
			return errPoisoned
		}
		t, err := it.declType(b.Decl)
		if err != nil {
			return err
		}
		v, err := it.rhs(ctx, s, func() (Value, error) { return it.load(lhs, b) })
		if err != nil {
			return err
		}
		it.storeVar(b, coerce(v, t.Kind))
		return nil

	case *ast.IndexExpr:
		arr, i, err := it.element(ctx, lhs)
		if err != nil {
			return err
		}
		v, err := it.rhs(ctx, s, func() (Value, error) { return arr.Load(i), nil })
		if err != nil {
			return err
		}
		if isError(v) {
			return errPoisoned
		}
		it.setCell(arr, i, v)
		return nil
	}
	return &InternalError{Span: s.LHS.Span(), Message: "assignment target is not an lvalue"}
}

// rhs evaluates the stored value; compound operators read the target first.
func (it *Interpreter) rhs(ctx context.Context, s *ast.AssignStmt, current func() (Value, error)) (Value, error) {
	op, compound := s.Op.Binary()
	if !compound {
		return it.expr(ctx, s.RHS)
	}
	x, err := current()
	if err != nil {
		return nil, err
	}
	y, err := it.expr(ctx, s.RHS)
	if err != nil {
		return nil, err
	}
	return it.arith(op, x, y, s.Loc)
}

func (it *Interpreter) storeVar(b *resolver.Binding, v Value) {
	if b.Global() {
		it.setGlobal(b, v)
		return
	}
	it.frame.vars[b] = v
}
