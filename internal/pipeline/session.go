package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"brunhild/internal/ast"
	"brunhild/internal/builder"
	"brunhild/internal/checker"
	"brunhild/internal/diag"
	"brunhild/internal/eval"
	"brunhild/internal/resolver"
	"brunhild/internal/source"
	"brunhild/internal/syntax"
	"brunhild/internal/types"
)

const replFunc = "__repl__"

// Session is an interactive run. Declarations that pass every static check
// are kept; any other input runs once inside a synthetic function.
type Session struct {
	opts   Options
	scope  *resolver.Scope
	chk    *checker.Info
	it     *eval.Interpreter
	parser *syntax.Parser

	out     bytes.Buffer
	current *diag.Collector
	inputs  int
}

// Reply is the outcome of one session input.
type Reply struct {
	Diagnostics []diag.Diagnostic
	// Value is set when the input was a single non-void expression.
	Value   eval.Value
	Output  string
	Defined []string
}

func NewSession(opts Options) *Session {
	return &Session{
		opts:    opts,
		scope:   resolver.NewGlobalScope(),
		parser:  syntax.NewParser(),
		current: diag.NewCollector(),
	}
}

func (s *Session) Close() {
	s.parser.Close()
}

// Report forwards runtime diagnostics to the collector of the current input.
func (s *Session) Report(d diag.Diagnostic) {
	s.current.Report(d)
}

// Names lists the globals defined so far.
func (s *Session) Names() []string {
	var names []string
	for _, b := range s.scope.Bindings() {
		if b.Kind != resolver.Builtin {
			names = append(names, b.Name)
		}
	}
	return names
}

func (s *Session) Eval(ctx context.Context, input string) (*Reply, error) {
	if strings.TrimSpace(input) == "" {
		return &Reply{}, nil
	}
	s.inputs++
	s.out.Reset()
	s.current = diag.NewCollector()
	name := fmt.Sprintf("<repl:%d>", s.inputs)

	prog, err := s.build(ctx, name, input)
	if err != nil {
		return nil, err
	}
	if prog != nil {
		return s.declare(ctx, prog)
	}

	s.current = diag.NewCollector()
	body := strings.TrimSpace(input)
	if !strings.HasSuffix(body, ";") && !strings.HasSuffix(body, "}") {
		body += ";"
	}
	wrapped := "void " + replFunc + "() { " + body + "\n}"
	prog, err = s.build(ctx, name, wrapped)
	if err != nil {
		return nil, err
	}
	if prog == nil {
		return s.reply(nil), nil
	}
	return s.execute(ctx, prog)
}

// build parses and builds text, returning nil when that reported errors.
func (s *Session) build(ctx context.Context, name, text string) (*ast.Program, error) {
	tree, err := s.parser.Parse(ctx, source.File{Name: name, Content: []byte(text)})
	if err != nil {
		return nil, err
	}
	syntax.SyntaxErrors(tree.Root, s.current)
	prog := builder.Build(tree, s.current, builder.Options{MaxDepth: s.opts.MaxDepth})
	if s.current.HasErrors() || len(prog.Decls) == 0 {
		return nil, nil
	}
	return prog, nil
}

func (s *Session) analyze(prog *ast.Program) (*resolver.Info, *checker.Info, bool) {
	res := resolver.ResolveIn(prog, s.scope, s.current)
	chk := checker.CheckWith(prog, res, s.chk, s.current)
	return res, chk, !s.current.HasErrors()
}

func (s *Session) interpreter(prog *ast.Program, res *resolver.Info, chk *checker.Info) *eval.Interpreter {
	if s.it == nil {
		stdout := io.Writer(&s.out)
		if s.opts.Stdout != nil {
			stdout = io.MultiWriter(&s.out, s.opts.Stdout)
		}
		s.it = eval.New(prog, res, chk, eval.Options{
			MaxCallDepth: s.opts.MaxCallDepth,
			MaxSteps:     s.opts.MaxSteps,
			Stdin:        s.opts.Stdin,
			Stdout:       stdout,
			Reporter:     s,
			Logger:       s.opts.Logger,
		})
		return s.it
	}
	s.it.Extend(prog, res, chk)
	return s.it
}

func (s *Session) declare(ctx context.Context, prog *ast.Program) (*Reply, error) {
	res, chk, ok := s.analyze(prog)
	if !ok {
		return s.reply(nil), nil
	}
	s.scope = res.Global
	s.chk = chk

	if _, err := s.interpreter(prog, res, chk).Run(ctx); err != nil {
		return nil, err
	}
	r := s.reply(nil)
	for _, d := range prog.Decls {
		r.Defined = append(r.Defined, d.DeclName().Name)
	}
	return r, nil
}

func (s *Session) execute(ctx context.Context, prog *ast.Program) (*Reply, error) {
	res, chk, ok := s.analyze(prog)
	if !ok {
		return s.reply(nil), nil
	}
	fn, isFunc := prog.Decls[0].(*ast.FuncDecl)
	if !isFunc || len(prog.Decls) != 1 {
		return nil, fmt.Errorf("unexpected session wrapper shape")
	}
	it := s.interpreter(prog, res, chk)

	if len(fn.Body.List) == 1 {
		if es, ok := fn.Body.List[0].(*ast.ExprStmt); ok {
			if t := chk.Types[es.X]; t != nil && t.Kind != types.KindVoid {
				v, err := it.EvalExpr(ctx, es.X)
				if err != nil {
					return nil, err
				}
				return s.reply(v), nil
			}
		}
	}

	if _, err := it.Invoke(ctx, fn); err != nil {
		return nil, err
	}
	return s.reply(nil), nil
}

func (s *Session) reply(v eval.Value) *Reply {
	return &Reply{
		Diagnostics: s.current.Drain(),
		Value:       v,
		Output:      s.out.String(),
	}
}
