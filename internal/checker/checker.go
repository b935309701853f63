// Package checker computes static types, folds constant expressions and
// reports type errors before anything is evaluated.
package checker

import (
	"fmt"

	"brunhild/internal/ast"
	"brunhild/internal/builtin"
	"brunhild/internal/diag"
	"brunhild/internal/resolver"
	"brunhild/internal/source"
	"brunhild/internal/types"
)

// Const is a folded scalar constant.
type Const struct {
	Type  *types.Type
	Int   int32
	Float float32
}

func (c Const) AsInt() int32 {
	if c.Type.Kind == types.KindFloat {
		return types.FloatToInt(c.Float)
	}
	return c.Int
}

func (c Const) AsFloat() float32 {
	if c.Type.Kind == types.KindFloat {
		return c.Float
	}
	return float32(c.Int)
}

type Stats struct {
	Expressions int
	Constants   int
	Functions   int
}

// Info is the output of Check.
type Info struct {
	// Types holds the static type of every checked expression.
	Types map[ast.Expr]*types.Type
	// Decls holds the declared type of VarDecl, Param and FuncDecl nodes.
	Decls map[ast.Node]*types.Type
	// Consts holds the folded value of scalar constants.
	Consts map[*resolver.Binding]Const
	// Inits holds the element layout of array initializers.
	Inits map[*ast.VarDecl][]types.Slot
	Stats Stats
}

type checker struct {
	res  *resolver.Info
	info *Info
	rep  diag.Reporter

	fn      *ast.FuncDecl
	result  *types.Type
	loops   int
	folding map[*resolver.Binding]bool
}

// Check type-checks prog using the bindings in res.
func Check(prog *ast.Program, res *resolver.Info, rep diag.Reporter) *Info {
	return CheckWith(prog, res, nil, rep)
}

// CheckWith checks prog on top of the types recorded by an earlier check, so
// sessions can refer to previously accepted declarations.
func CheckWith(prog *ast.Program, res *resolver.Info, prev *Info, rep diag.Reporter) *Info {
	c := &checker{
		res: res,
		info: &Info{
			Types:  make(map[ast.Expr]*types.Type),
			Decls:  make(map[ast.Node]*types.Type),
			Consts: make(map[*resolver.Binding]Const),
			Inits:  make(map[*ast.VarDecl][]types.Slot),
		},
		rep:     rep,
		folding: make(map[*resolver.Binding]bool),
	}
	if prev != nil {
		for k, v := range prev.Decls {
			c.info.Decls[k] = v
		}
		for k, v := range prev.Consts {
			c.info.Consts[k] = v
		}
		for k, v := range prev.Inits {
			c.info.Inits[k] = v
		}
	}

	for _, d := range prog.Decls {
		switch d := d.(type) {
		case *ast.VarDecl:
			c.varDecl(d)
		case *ast.FuncDecl:
			c.funcDecl(d)
		default:
			panic(fmt.Sprintf("checker: unexpected declaration %T", d))
		}
	}
	c.info.Stats.Expressions = len(c.info.Types)
	c.info.Stats.Constants = len(c.info.Consts)
	return c.info
}

func (c *checker) errorf(code diag.Code, span source.Span, format string, args ...any) {
	c.rep.Report(diag.Diagnostic{
		Severity: diag.SeverityError,
		Code:     code,
		Phase:    diag.PhaseCheck,
		Span:     span,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *checker) coerce(from, to *types.Type, span source.Span) {
	if !types.Coercible(from, to) {
		c.errorf(diag.TypeMismatch, span, "Cannot coerce %s to %s", from, to)
	}
}

func (c *checker) varDecl(d *ast.VarDecl) {
	t := c.declType(d.Type, false)
	c.info.Decls[d] = t

	if d.Init == nil {
		if d.Type.Const {
			c.errorf(diag.InvalidConstant, d.Name.Loc, "Constant `%s` is not initialized", d.Name.Name)
		}
		return
	}
	if t.IsInvalid() {
		c.expr(d.Init)
		return
	}

	if t.Kind == types.KindArray {
		list, ok := d.Init.(*ast.InitList)
		if !ok {
			c.value(d.Init)
			c.errorf(diag.TypeMismatch, d.Init.Span(), "array `%s` must be initialized with a brace list", d.Name.Name)
			return
		}
		c.arrayInit(d, list, t)
		return
	}

	if list, ok := d.Init.(*ast.InitList); ok {
		c.errorf(diag.TypeMismatch, list.Loc, "cannot initialize scalar `%s` with a brace list", d.Name.Name)
		return
	}
	c.coerce(c.value(d.Init), t, d.Init.Span())

	if d.Type.Const && !t.IsInvalid() {
		b := c.res.Defs[d]
		if _, ok := c.foldBinding(b); !ok {
			c.errorf(diag.InvalidConstant, d.Init.Span(), "initializer of constant `%s` is not a constant expression", d.Name.Name)
		}
	}
}

func (c *checker) arrayInit(d *ast.VarDecl, list *ast.InitList, t *types.Type) {
	if types.Size(t.Dims) < 0 {
		return
	}
	slots, err := types.Layout(list, t.Dims)
	if err != nil {
		le := err.(*types.LayoutError)
		c.errorf(diag.TypeMismatch, le.Span, "%s", le.Message)
		return
	}
	elem := t.ElemType()
	for _, s := range slots {
		et := c.value(s.Expr)
		if !et.IsInvalid() && !et.IsScalar() {
			c.errorf(diag.TypeMismatch, s.Expr.Span(), "Cannot coerce %s to %s", et, elem)
		}
	}
	c.info.Inits[d] = slots
}

// declType resolves a written type. Dimensions must fold to positive ints;
// only a parameter may leave its first dimension empty.
func (c *checker) declType(ts ast.TypeSpec, param bool) *types.Type {
	base := types.Basic(ts.Basic)
	if !ts.IsArray() {
		return base
	}
	dims := make([]int, len(ts.Dims))
	ok := true
	for i, e := range ts.Dims {
		if e == nil {
			dims[i] = -1
			if i != 0 || !param {
				ok = false
			}
			continue
		}
		c.value(e)
		v, folded := c.fold(e)
		switch {
		case !folded || v.Type.Kind != types.KindInt:
			c.errorf(diag.InvalidConstant, e.Span(), "array size must be a constant integer expression")
			ok = false
		case v.Int <= 0:
			c.errorf(diag.InvalidConstant, e.Span(), "array size must be positive, got %d", v.Int)
			ok = false
		default:
			dims[i] = int(v.Int)
		}
	}
	if !ok {
		return types.Invalid
	}
	fixed := dims
	if param {
		fixed = dims[1:]
	}
	if types.Size(fixed) < 0 {
		c.errorf(diag.InvalidConstant, ts.Dims[len(ts.Dims)-1].Span(), "array has more than %d elements", types.MaxCells)
		return types.Invalid
	}
	return types.Array(base.Kind, dims)
}

// funcType returns the signature of fn, computing it on first use so calls
// may precede the definition.
func (c *checker) funcType(fn *ast.FuncDecl) *types.Type {
	if t, ok := c.info.Decls[fn]; ok {
		return t
	}
	t := &types.Type{Kind: types.KindFunc, Result: types.Basic(fn.Result.Basic)}
	c.info.Decls[fn] = t
	for _, p := range fn.Params {
		pt := c.declType(p.Type, true)
		c.info.Decls[p] = pt
		t.Params = append(t.Params, pt)
	}
	return t
}

func builtinType(b *builtin.Builtin) *types.Type {
	t := &types.Type{Kind: types.KindFunc, Result: types.Basic(b.Result), Variadic: b.Variadic}
	for _, p := range b.Params {
		switch p {
		case builtin.Int:
			t.Params = append(t.Params, types.Int)
		case builtin.Float:
			t.Params = append(t.Params, types.Float)
		case builtin.IntArray:
			t.Params = append(t.Params, types.Array(types.KindInt, []int{-1}))
		case builtin.FloatArray:
			t.Params = append(t.Params, types.Array(types.KindFloat, []int{-1}))
		case builtin.String:
			t.Params = append(t.Params, types.String)
		}
	}
	return t
}

func (c *checker) funcDecl(fn *ast.FuncDecl) {
	sig := c.funcType(fn)
	c.info.Stats.Functions++
	c.fn, c.result, c.loops = fn, sig.Result, 0
	defer func() { c.fn, c.result = nil, nil }()

	if fn.Body != nil {
		for _, s := range fn.Body.List {
			c.stmt(s)
		}
	}
}
