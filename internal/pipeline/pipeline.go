// Package pipeline drives a source file through every stage: parse, build,
// resolve, check and evaluate. Each run owns its collector, parser and
// interpreter, so runs never share state.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"time"

	"brunhild/internal/ast"
	"brunhild/internal/builder"
	"brunhild/internal/checker"
	"brunhild/internal/diag"
	"brunhild/internal/eval"
	"brunhild/internal/resolver"
	"brunhild/internal/source"
	"brunhild/internal/syntax"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	MaxDepth     int
	MaxCallDepth int
	MaxSteps     int64
	// CheckOnly stops after the static checker.
	CheckOnly bool
	Stdin     io.Reader
	// Stdout receives program output as it is flushed. Output is captured in
	// Result.Output either way.
	Stdout io.Writer
	Logger *slog.Logger
}

type Result struct {
	RunID       string
	File        string
	Diagnostics []diag.Diagnostic
	HasErrors   bool
	Units       []eval.UnitResult
	// Exit is main's result, nil when main is absent or failed.
	Exit     eval.Value
	Output   string
	Timers   []eval.Timer
	Duration time.Duration
	Report   *Report
	Program  *ast.Program
	// Err is set by RunFiles when this file's run could not be carried out.
	Err error
}

// ExitCode is main's int result, or 0 when there is none.
func (r *Result) ExitCode() int {
	if v, ok := r.Exit.(eval.Int); ok {
		return int(v)
	}
	return 0
}

// Run executes one file. User-facing problems land in Result.Diagnostics;
// the error is reserved for runs that could not be carried out.
func Run(ctx context.Context, src source.File, opts Options) (res *Result, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	runID := uuid.NewString()
	logger = logger.With("run", runID, "file", src.Name)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("run panicked", "panic", r, "stack", string(debug.Stack()))
			res, err = nil, fmt.Errorf("internal error while running %s: %v", src.Name, r)
		}
	}()

	started := time.Now()
	report := NewReport(runID, src.Name)
	c := diag.NewCollector()

	h := report.BeginStage("parse")
	p := syntax.NewParser()
	tree, err := p.Parse(ctx, src)
	p.Close()
	if err != nil {
		report.EndStage(h, "error", nil, nil, err)
		return nil, fmt.Errorf("parse stage failed: %w", err)
	}
	syntaxErrs := syntax.SyntaxErrors(tree.Root, c)
	report.EndStage(h, "ok", map[string]float64{"syntax_errors": float64(syntaxErrs)}, nil, nil)
	logger.Debug("stage done", "stage", "parse", "syntax_errors", syntaxErrs)

	h = report.BeginStage("build")
	prog := builder.Build(tree, c, builder.Options{MaxDepth: opts.MaxDepth})
	report.EndStage(h, "ok", map[string]float64{"decls": float64(len(prog.Decls))}, nil, nil)
	logger.Debug("stage done", "stage", "build", "decls", len(prog.Decls))

	h = report.BeginStage("resolve")
	info := resolver.Resolve(prog, c)
	report.EndStage(h, "ok", map[string]float64{
		"references": float64(info.Stats.References),
		"resolved":   float64(info.Stats.Resolved),
		"unresolved": float64(info.Stats.Unresolved),
		"scopes":     float64(info.Stats.Scopes),
	}, nil, nil)
	logger.Debug("stage done", "stage", "resolve", "resolved", info.Stats.Resolved, "unresolved", info.Stats.Unresolved)

	h = report.BeginStage("check")
	chk := checker.Check(prog, info, c)
	report.EndStage(h, "ok", map[string]float64{
		"expressions": float64(chk.Stats.Expressions),
		"constants":   float64(chk.Stats.Constants),
		"functions":   float64(chk.Stats.Functions),
	}, nil, nil)
	logger.Debug("stage done", "stage", "check", "expressions", chk.Stats.Expressions)

	res = &Result{RunID: runID, File: src.Name, Report: report, Program: prog}

	if !opts.CheckOnly {
		var output bytes.Buffer
		stdout := io.Writer(&output)
		if opts.Stdout != nil {
			stdout = io.MultiWriter(&output, opts.Stdout)
		}
		static := c.Drain()

		h = report.BeginStage("evaluate")
		it := eval.New(prog, info, chk, eval.Options{
			MaxCallDepth: opts.MaxCallDepth,
			MaxSteps:     opts.MaxSteps,
			Stdin:        opts.Stdin,
			Stdout:       stdout,
			Skip:         func(d ast.Decl) bool { return diag.Within(static, d.Span()) > 0 },
			Reporter:     c,
			Logger:       logger,
		})
		out, err := it.Run(ctx)
		if err != nil {
			report.EndStage(h, "error", nil, nil, err)
			return nil, fmt.Errorf("evaluation of %s failed: %w", src.Name, err)
		}
		report.EndStage(h, "ok", unitCounters(out), nil, nil)
		logger.Debug("stage done", "stage", "evaluate", "units", len(out.Units), "steps", out.Steps)

		res.Units = out.Units
		res.Exit = out.Exit
		res.Timers = out.Timers
		res.Output = output.String()
	}

	res.Diagnostics = c.Drain()
	res.HasErrors = c.HasErrors()
	res.Duration = time.Since(started)
	addSignals(report, res.Diagnostics)
	report.Finalize()
	return res, nil
}

// RunFile reads path and runs it.
func RunFile(ctx context.Context, path string, opts Options) (*Result, error) {
	src, err := source.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Run(ctx, src, opts)
}

// RunFiles runs each file in its own isolated run, at most jobs at a time.
// Results are returned in the order of paths. A run that fails leaves its
// error in Result.Err and does not stop the others. Program output is
// captured per run; opts.Stdout is ignored.
func RunFiles(ctx context.Context, paths []string, opts Options, jobs int) []*Result {
	results := make([]*Result, len(paths))
	var g errgroup.Group
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	opts.Stdout = nil
	if len(paths) > 1 {
		// A shared reader cannot be split between concurrent runs.
		opts.Stdin = nil
	}
	for i, path := range paths {
		g.Go(func() error {
			res, err := RunFile(ctx, path, opts)
			if err != nil {
				res = failedResult(path, err)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func failedResult(path string, err error) *Result {
	runID := uuid.NewString()
	report := NewReport(runID, path)
	h := report.BeginStage("load")
	report.EndStage(h, "error", nil, nil, err)
	report.Finalize()
	return &Result{RunID: runID, File: path, HasErrors: true, Report: report, Err: err}
}

func unitCounters(out *eval.Outcome) map[string]float64 {
	counters := map[string]float64{
		"units": float64(len(out.Units)),
		"steps": float64(out.Steps),
	}
	for _, u := range out.Units {
		counters[u.Status.String()]++
	}
	return counters
}

func addSignals(r *Report, ds []diag.Diagnostic) {
	type key struct {
		code  diag.Code
		phase diag.Phase
		sev   diag.Severity
	}
	counts := make(map[key]int)
	var order []key
	for _, d := range ds {
		k := key{d.Code, d.Phase, d.Severity}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}
	for _, k := range order {
		r.AddSignal(string(k.code), k.phase.String(), k.sev.String(),
			fmt.Sprintf("%d %s diagnostic(s)", counts[k], k.code), float64(counts[k]))
	}
}
