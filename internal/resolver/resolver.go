// Package resolver binds every identifier reference to its declaration.
//
// Resolution is one depth-first, left-to-right pass. Global function names
// are hoisted; every other name is visible only after its declaration, and a
// variable's initializer is resolved before the variable itself is bound.
// Results live in side tables, the AST is never modified.
package resolver

import (
	"fmt"

	"brunhild/internal/ast"
	"brunhild/internal/builtin"
	"brunhild/internal/diag"
	"brunhild/internal/source"
)

type ResolveStats struct {
	References int
	Resolved   int
	Unresolved int
	Scopes     int
}

// Info is the output of Resolve.
type Info struct {
	Global *Scope
	// Uses binds each resolved reference to exactly one binding.
	Uses map[*ast.Ident]*Binding
	// Defs maps VarDecl, Param and FuncDecl nodes to the binding they introduce.
	Defs map[ast.Node]*Binding
	// Unresolved holds every reference that failed to resolve.
	Unresolved map[*ast.Ident]bool
	// Scopes maps Program, FuncDecl and nested BlockStmt nodes to their scope.
	Scopes map[ast.Node]*Scope
	Stats  ResolveStats
}

// Lookup returns the binding of a reference.
func (i *Info) Lookup(id *ast.Ident) (*Binding, bool) {
	b, ok := i.Uses[id]
	return b, ok
}

type resolver struct {
	info  *Info
	rep   diag.Reporter
	scope *Scope
}

func Resolve(prog *ast.Program, rep diag.Reporter) *Info {
	return ResolveIn(prog, nil, rep)
}

// ResolveIn resolves prog with base as the enclosing scope of its globals.
// Sessions use it to see declarations accepted from earlier inputs.
func ResolveIn(prog *ast.Program, base *Scope, rep diag.Reporter) *Info {
	global := base
	if global == nil {
		global = NewGlobalScope()
	} else {
		global = global.extend()
	}
	r := &resolver{
		info: &Info{
			Global:     global,
			Uses:       make(map[*ast.Ident]*Binding),
			Defs:       make(map[ast.Node]*Binding),
			Unresolved: make(map[*ast.Ident]bool),
			Scopes:     make(map[ast.Node]*Scope),
		},
		rep:   rep,
		scope: global,
	}
	r.info.Scopes[prog] = global
	r.program(prog)
	r.info.Stats.Scopes = len(r.info.Scopes)
	return r.info
}

// NewGlobalScope returns a global scope holding the runtime primitives.
func NewGlobalScope() *Scope {
	s := newScope(ScopeGlobal, nil, nil)
	for _, b := range builtin.All() {
		s.Define(&Binding{Name: b.Name, Kind: Builtin, Builtin: b})
	}
	return s
}

// extend copies a global scope so new definitions do not leak into it.
func (s *Scope) extend() *Scope {
	out := newScope(ScopeGlobal, nil, s.Node)
	for _, b := range s.order {
		out.names[b.Name] = b
		out.order = append(out.order, b)
	}
	return out
}

func (r *resolver) program(prog *ast.Program) {
	for _, d := range prog.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok {
			r.define(fn.Name, Function, fn)
		}
	}
	for _, d := range prog.Decls {
		switch d := d.(type) {
		case *ast.FuncDecl:
			r.funcDecl(d)
		case *ast.VarDecl:
			r.varDecl(d)
		default:
			panic(fmt.Sprintf("resolver: unexpected declaration %T", d))
		}
	}
}

func (r *resolver) define(name *ast.Ident, kind BindingKind, decl ast.Node) *Binding {
	b := &Binding{Name: name.Name, Kind: kind, Decl: decl}
	if _, ok := r.scope.Define(b); !ok {
		r.report(diag.DuplicateDeclaration, name.Loc, "The name `%s` is already defined elsewhere.", name.Name)
		b.Scope = r.scope
	}
	r.info.Defs[decl] = b
	return b
}

func (r *resolver) report(code diag.Code, span source.Span, format string, args ...any) {
	r.rep.Report(diag.Diagnostic{
		Severity: diag.SeverityError,
		Code:     code,
		Phase:    diag.PhaseResolve,
		Span:     span,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (r *resolver) push(kind ScopeKind, node ast.Node) {
	r.scope = newScope(kind, r.scope, node)
	r.info.Scopes[node] = r.scope
}

func (r *resolver) pop() {
	for _, b := range r.scope.order {
		if (b.Kind == Variable || b.Kind == Constant) && b.Uses == 0 {
			r.rep.Report(diag.Diagnostic{
				Severity: diag.SeverityWarning,
				Code:     diag.UnusedVariable,
				Phase:    diag.PhaseResolve,
				Span:     b.Span(),
				Message:  fmt.Sprintf("unused variable `%s`", b.Name),
			})
		}
	}
	r.scope = r.scope.Parent
}

func (r *resolver) funcDecl(fn *ast.FuncDecl) {
	r.push(ScopeFunction, fn)
	defer r.pop()

	for _, p := range fn.Params {
		r.dims(p.Type)
		r.define(p.Name, Parameter, p)
	}
	if fn.Body == nil {
		return
	}
	// The body's outermost block shares the function scope with the parameters.
	r.info.Scopes[fn.Body] = r.scope
	for _, s := range fn.Body.List {
		r.stmt(s)
	}
}

func (r *resolver) varDecl(d *ast.VarDecl) {
	r.dims(d.Type)
	if d.Init != nil {
		r.expr(d.Init)
	}
	kind := Variable
	if d.Type.Const {
		kind = Constant
	}
	r.define(d.Name, kind, d)
}

func (r *resolver) dims(t ast.TypeSpec) {
	for _, e := range t.Dims {
		if e != nil {
			r.expr(e)
		}
	}
}

func (r *resolver) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.VarDecl:
		r.varDecl(s)
	case *ast.BlockStmt:
		r.push(ScopeBlock, s)
		for _, inner := range s.List {
			r.stmt(inner)
		}
		r.pop()
	case *ast.ExprStmt:
		r.expr(s.X)
	case *ast.AssignStmt:
		r.expr(s.LHS)
		r.expr(s.RHS)
	case *ast.IfStmt:
		r.expr(s.Cond)
		r.stmt(s.Then)
		if s.Else != nil {
			r.stmt(s.Else)
		}
	case *ast.WhileStmt:
		r.expr(s.Cond)
		r.stmt(s.Body)
	case *ast.ReturnStmt:
		if s.Result != nil {
			r.expr(s.Result)
		}
	case *ast.BreakStmt, *ast.ContinueStmt, *ast.EmptyStmt, *ast.BadStmt:
	case *ast.FuncDecl:
		panic("resolver: function declaration inside a block")
	default:
		panic(fmt.Sprintf("resolver: unexpected statement %T", s))
	}
}

func (r *resolver) expr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Ident:
		r.ref(e)
	case *ast.IntLit, *ast.FloatLit, *ast.StringLit, *ast.BadExpr:
	case *ast.UnaryExpr:
		r.expr(e.X)
	case *ast.BinaryExpr:
		r.expr(e.X)
		r.expr(e.Y)
	case *ast.CondExpr:
		r.expr(e.Cond)
		r.expr(e.Then)
		r.expr(e.Else)
	case *ast.CallExpr:
		r.ref(e.Fun)
		for _, a := range e.Args {
			r.expr(a)
		}
	case *ast.IndexExpr:
		r.expr(e.X)
		r.expr(e.Index)
	case *ast.InitList:
		for _, el := range e.Elems {
			r.expr(el)
		}
	default:
		panic(fmt.Sprintf("resolver: unexpected expression %T", e))
	}
}

func (r *resolver) ref(id *ast.Ident) {
	r.info.Stats.References++
	b := r.scope.Lookup(id.Name)
	if b == nil {
		r.info.Stats.Unresolved++
		r.info.Unresolved[id] = true
		r.report(diag.UnresolvedReference, id.Loc, "The name `%s` was not found in scope.", id.Name)
		return
	}
	r.info.Stats.Resolved++
	b.Uses++
	r.info.Uses[id] = b
}
