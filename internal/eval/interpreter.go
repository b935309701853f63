// Package eval executes checked programs. Every top-level declaration is an
// independent unit: a fault in one unit never stops its siblings.
package eval

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"brunhild/internal/ast"
	"brunhild/internal/checker"
	"brunhild/internal/diag"
	"brunhild/internal/resolver"
	"brunhild/internal/source"
	"brunhild/internal/types"
)

const DefaultMaxCallDepth = 4096

type Options struct {
	// MaxCallDepth bounds nested user calls. Zero means DefaultMaxCallDepth.
	MaxCallDepth int
	// MaxSteps bounds the statements one unit may execute. Zero is unlimited.
	MaxSteps int64
	Stdin    io.Reader
	Stdout   io.Writer
	// Skip reports units that already carry static errors.
	Skip     func(ast.Decl) bool
	Reporter diag.Reporter
	Logger   *slog.Logger
}

// Fault is a runtime error. It aborts the unit that raised it.
type Fault struct {
	Span    source.Span
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s", f.Span, f.Message)
}

// InternalError means the earlier stages handed over an inconsistent tree.
// It aborts the whole run.
type InternalError struct {
	Span    source.Span
	Message string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error at %s: %s", e.Span, e.Message)
}

// errPoisoned unwinds a unit that consumed an Error value. The diagnostic
// was already reported where the Error came from.
var errPoisoned = errors.New("poisoned value")

type UnitStatus int

const (
	UnitOK UnitStatus = iota
	UnitFailed
	UnitSkipped
)

func (s UnitStatus) String() string {
	switch s {
	case UnitOK:
		return "ok"
	case UnitFailed:
		return "failed"
	case UnitSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

type UnitResult struct {
	Name   string
	Span   source.Span
	Status UnitStatus
	Value  Value
}

type Outcome struct {
	Units []UnitResult
	// Exit is main's result, or nil when main did not run to completion.
	Exit   Value
	Timers []Timer
	Steps  int64
}

type frame struct {
	fn   *ast.FuncDecl
	vars map[*resolver.Binding]Value
	ret  Value
}

// Interpreter evaluates one program. Extend lets a session feed it further
// programs that build on the globals already defined.
type Interpreter struct {
	prog *ast.Program
	opts Options

	uses       map[*ast.Ident]*resolver.Binding
	unresolved map[*ast.Ident]bool
	defs       map[ast.Node]*resolver.Binding
	decls      map[ast.Node]*types.Type
	exprs      map[ast.Expr]*types.Type
	inits      map[*ast.VarDecl][]types.Slot

	globals  map[*resolver.Binding]Value
	poisoned map[*resolver.Binding]bool
	undo     *undo

	host  *host
	frame *frame
	depth int
	steps int64
	total int64
}

func New(prog *ast.Program, res *resolver.Info, chk *checker.Info, opts Options) *Interpreter {
	if opts.MaxCallDepth <= 0 {
		opts.MaxCallDepth = DefaultMaxCallDepth
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	it := &Interpreter{
		opts:       opts,
		uses:       make(map[*ast.Ident]*resolver.Binding),
		unresolved: make(map[*ast.Ident]bool),
		defs:       make(map[ast.Node]*resolver.Binding),
		decls:      make(map[ast.Node]*types.Type),
		exprs:      make(map[ast.Expr]*types.Type),
		inits:      make(map[*ast.VarDecl][]types.Slot),
		globals:    make(map[*resolver.Binding]Value),
		poisoned:   make(map[*resolver.Binding]bool),
		host:       newHost(opts.Stdin, opts.Stdout),
	}
	it.Extend(prog, res, chk)
	return it
}

// Extend replaces the current program, keeping every global defined so far.
func (it *Interpreter) Extend(prog *ast.Program, res *resolver.Info, chk *checker.Info) {
	it.prog = prog
	for k, v := range res.Uses {
		it.uses[k] = v
	}
	for k := range res.Unresolved {
		it.unresolved[k] = true
	}
	for k, v := range res.Defs {
		it.defs[k] = v
	}
	for k, v := range chk.Decls {
		it.decls[k] = v
	}
	for k, v := range chk.Types {
		it.exprs[k] = v
	}
	for k, v := range chk.Inits {
		it.inits[k] = v
	}
}

// Run evaluates the units of the current program in source order, then main.
// Faults become diagnostics; cancellation and internal errors are returned.
func (it *Interpreter) Run(ctx context.Context) (*Outcome, error) {
	out := &Outcome{}
	defer it.host.flush()

	var main *ast.FuncDecl
	for _, d := range it.prog.Decls {
		res, err := it.unit(ctx, d)
		if err != nil {
			return nil, err
		}
		out.Units = append(out.Units, res)
		if fn, ok := d.(*ast.FuncDecl); ok && fn.Name.Name == "main" && res.Status == UnitOK {
			main = fn
		}
	}

	if main != nil {
		res := UnitResult{Name: "main()", Span: main.Loc}
		v, err := it.runMain(ctx, main)
		switch {
		case err == nil:
			res.Value = v
			out.Exit = v
		case it.absorb(err):
			res.Status = UnitFailed
			res.Value = Error{}
		default:
			return nil, err
		}
		out.Units = append(out.Units, res)
	}

	out.Timers = it.host.timers
	out.Steps = it.total
	return out, nil
}

func (it *Interpreter) unit(ctx context.Context, d ast.Decl) (UnitResult, error) {
	res := UnitResult{Name: d.DeclName().Name, Span: d.Span()}
	b := it.defs[d]
	if b == nil {
		return res, &InternalError{Span: d.Span(), Message: fmt.Sprintf("declaration `%s` has no binding", res.Name)}
	}

	if it.opts.Skip != nil && it.opts.Skip(d) {
		it.poison(b)
		res.Status = UnitSkipped
		res.Value = Error{}
		return res, nil
	}

	switch d := d.(type) {
	case *ast.FuncDecl:
		delete(it.poisoned, b)
		res.Value = &Func{Decl: d}
		return res, nil
	case *ast.VarDecl:
		it.steps = 0
		v, err := it.transact(func() (Value, error) { return it.initVar(ctx, d) })
		if err == nil {
			it.setGlobal(b, v)
			res.Value = v
			return res, nil
		}
		if !it.absorb(err) {
			return res, err
		}
		it.poison(b)
		res.Status = UnitFailed
		res.Value = Error{}
		return res, nil
	}
	return res, &InternalError{Span: d.Span(), Message: fmt.Sprintf("unexpected declaration %T", d)}
}

func (it *Interpreter) runMain(ctx context.Context, fn *ast.FuncDecl) (Value, error) {
	if len(fn.Params) > 0 {
		return nil, &Fault{Span: fn.Name.Loc, Message: "function `main` must not take parameters"}
	}
	it.steps = 0
	return it.invoke(ctx, fn, nil, fn.Name.Loc)
}

// Invoke calls a parameterless user function as its own unit. Faults are
// reported and yield an Error value; global writes made before the fault
// are reverted.
func (it *Interpreter) Invoke(ctx context.Context, fn *ast.FuncDecl) (Value, error) {
	it.steps = 0
	defer it.host.flush()
	v, err := it.transact(func() (Value, error) { return it.invoke(ctx, fn, nil, fn.Name.Loc) })
	return it.settle(v, err)
}

// EvalExpr evaluates e outside any function, as a REPL does.
func (it *Interpreter) EvalExpr(ctx context.Context, e ast.Expr) (Value, error) {
	it.steps = 0
	defer it.host.flush()
	saved := it.frame
	it.frame = &frame{vars: make(map[*resolver.Binding]Value)}
	defer func() { it.frame = saved }()
	v, err := it.transact(func() (Value, error) { return it.expr(ctx, e) })
	return it.settle(v, err)
}

func (it *Interpreter) settle(v Value, err error) (Value, error) {
	if err == nil {
		return v, nil
	}
	if it.absorb(err) {
		return Error{}, nil
	}
	return nil, err
}

// absorb reports unit-level failures and says whether evaluation may go on.
func (it *Interpreter) absorb(err error) bool {
	var f *Fault
	switch {
	case errors.As(err, &f):
		it.opts.Logger.Debug("runtime fault", "span", f.Span.String(), "message", f.Message)
		if it.opts.Reporter != nil {
			it.opts.Reporter.Report(diag.Diagnostic{
				Severity: diag.SeverityError,
				Code:     diag.RuntimeFault,
				Phase:    diag.PhaseEvaluate,
				Span:     f.Span,
				Message:  f.Message,
			})
		}
		return true
	case errors.Is(err, errPoisoned):
		return true
	}
	return false
}

func (it *Interpreter) poison(b *resolver.Binding) {
	if b.Kind == resolver.Function {
		it.poisoned[b] = true
		return
	}
	it.globals[b] = Error{}
}

// Global returns the current value of a global variable by name.
func (it *Interpreter) Global(b *resolver.Binding) (Value, bool) {
	v, ok := it.globals[b]
	return v, ok
}

func (it *Interpreter) step(span source.Span) error {
	it.steps++
	it.total++
	if it.opts.MaxSteps > 0 && it.steps > it.opts.MaxSteps {
		return &Fault{Span: span, Message: fmt.Sprintf("step limit exceeded (%d)", it.opts.MaxSteps)}
	}
	return nil
}

func interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("evaluation abandoned: %w", err)
	}
	return nil
}

func (it *Interpreter) binding(id *ast.Ident) (*resolver.Binding, error) {
	if b, ok := it.uses[id]; ok {
		return b, nil
	}
	if it.unresolved[id] {
		return nil, nil
	}
	return nil, &InternalError{Span: id.Loc, Message: fmt.Sprintf("identifier `%s` was never resolved", id.Name)}
}

func (it *Interpreter) declType(n ast.Node) (*types.Type, error) {
	t := it.decls[n]
	if t == nil || t.IsInvalid() {
		return nil, &InternalError{Span: n.Span(), Message: "declaration has no checked type"}
	}
	return t, nil
}

func newHostReader(r io.Reader) *bufio.Reader {
	if r == nil {
		return nil
	}
	if br, ok := r.(*bufio.Reader); ok {
		return br
	}
	return bufio.NewReader(r)
}
