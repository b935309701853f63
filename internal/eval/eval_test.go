package eval

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"brunhild/internal/ast"
	"brunhild/internal/builder"
	"brunhild/internal/checker"
	"brunhild/internal/diag"
	"brunhild/internal/resolver"
	"brunhild/internal/source"
	"brunhild/internal/syntax"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type program struct {
	prog *ast.Program
	res  *resolver.Info
	chk  *checker.Info
	diag *diag.Collector
}

func compile(t *testing.T, src string) program {
	t.Helper()
	p := syntax.NewParser()
	defer p.Close()
	tree, err := p.Parse(context.Background(), source.File{Name: "t.sy", Content: []byte(src)})
	require.NoError(t, err)

	c := diag.NewCollector()
	syntax.SyntaxErrors(tree.Root, c)
	prog := builder.Build(tree, c, builder.Options{})
	res := resolver.Resolve(prog, c)
	chk := checker.Check(prog, res, c)
	return program{prog: prog, res: res, chk: chk, diag: c}
}

type execution struct {
	out     *Outcome
	stdout  string
	diags   []diag.Diagnostic
	runtime []diag.Diagnostic
}

func execute(t *testing.T, src string, opts Options) execution {
	t.Helper()
	p := compile(t, src)
	static := p.diag.Drain()
	if opts.Skip == nil {
		opts.Skip = func(d ast.Decl) bool { return diag.Within(static, d.Span()) > 0 }
	}
	var stdout bytes.Buffer
	opts.Stdout = &stdout
	opts.Reporter = p.diag

	out, err := New(p.prog, p.res, p.chk, opts).Run(context.Background())
	require.NoError(t, err)

	all := p.diag.Drain()
	var rt []diag.Diagnostic
	for _, d := range all {
		if d.Code == diag.RuntimeFault {
			rt = append(rt, d)
		}
	}
	return execution{out: out, stdout: stdout.String(), diags: all, runtime: rt}
}

func TestArithmetic(t *testing.T) {
	x := execute(t, `int a = 2 + 3 * 4;
int main() { putint(a); return a - 14; }`, Options{})

	assert.Empty(t, x.runtime)
	assert.Equal(t, "14", x.stdout)
	require.Len(t, x.out.Units, 3)
	assert.Equal(t, Int(14), x.out.Units[0].Value)
	assert.Equal(t, "main()", x.out.Units[2].Name)
	assert.Equal(t, Int(0), x.out.Exit)
}

func TestFaultIsolation(t *testing.T) {
	x := execute(t, `int a = 1 / 0;
int b = 7;
int c = a + 1;`, Options{})

	require.Len(t, x.runtime, 1)
	assert.Equal(t, "Division by zero", x.runtime[0].Message)
	assert.Equal(t, diag.PhaseEvaluate, x.runtime[0].Phase)
	assert.Equal(t, 1, x.runtime[0].Span.Start.Line)

	require.Len(t, x.out.Units, 3)
	assert.Equal(t, UnitFailed, x.out.Units[0].Status)
	assert.Equal(t, UnitOK, x.out.Units[1].Status)
	assert.Equal(t, Int(7), x.out.Units[1].Value)
	// A poisoned read fails silently.
	assert.Equal(t, UnitFailed, x.out.Units[2].Status)
	assert.Nil(t, x.out.Exit)
}

func TestUntakenBranches(t *testing.T) {
	x := execute(t, `int main() {
  if (0) { putint(1 / 0); } else { putint(2); }
  int z = 0;
  if (z != 0 && 10 / z > 1) putint(9);
  putint(1 || 1 / 0);
  return 0 ? 1 / 0 : 3;
}`, Options{})

	assert.Empty(t, x.runtime)
	assert.Equal(t, "21", x.stdout)
	assert.Equal(t, Int(3), x.out.Exit)
}

func TestNumericSemantics(t *testing.T) {
	x := execute(t, `int main() {
  int x = 2147483647;
  x = x + 1;
  putint(x); putch(32);
  putint(-2147483648 / -1); putch(32);
  putint(-7 / 2); putch(32);
  putint(-7 % 2); putch(32);
  int i = 3.9;
  putint(i); putch(32);
  float f = 7 / 2;
  putfloat(f); putch(32);
  putint(1.5 > 1);
  return 0;
}`, Options{})

	assert.Empty(t, x.runtime)
	assert.Equal(t, "-2147483648 -2147483648 -3 -1 3 0x1.8p+1 1", x.stdout)
}

func TestFloatDivisionByZero(t *testing.T) {
	x := execute(t, `int main() { float f = 1.0 / 0; return f > 1000000; }`, Options{})
	assert.Empty(t, x.runtime)
	assert.Equal(t, Int(1), x.out.Exit)
}

func TestRecursion(t *testing.T) {
	x := execute(t, `int fib(int n) {
  if (n < 2) return n;
  return fib(n - 1) + fib(n - 2);
}
int main() { return fib(20); }`, Options{})

	assert.Empty(t, x.runtime)
	assert.Equal(t, Int(6765), x.out.Exit)
}

func TestArraysAreShared(t *testing.T) {
	x := execute(t, `void set(int a[], int i, int v) { a[i] = v; }
int main() {
  int arr[3] = {1, 2, 3};
  set(arr, 1, 42);
  putint(arr[1]); putch(32);
  int m[2][3] = {};
  set(m[1], 2, 7);
  putint(m[1][2]); putch(32);
  putint(m[0][2]);
  return 0;
}`, Options{})

	assert.Empty(t, x.runtime)
	assert.Equal(t, "42 7 0", x.stdout)
}

func TestGlobalsDefaultToZero(t *testing.T) {
	x := execute(t, `int g;
float h[2];
int main() { return g + h[1]; }`, Options{})
	assert.Equal(t, Int(0), x.out.Exit)
}

func TestIndexOutOfRange(t *testing.T) {
	x := execute(t, `int main() { int a[2] = {1, 2}; int i = 2; return a[i]; }`, Options{})
	require.Len(t, x.runtime, 1)
	assert.Equal(t, "index 2 out of range [0, 2)", x.runtime[0].Message)
	assert.Nil(t, x.out.Exit)
}

func TestLimits(t *testing.T) {
	t.Run("call depth", func(t *testing.T) {
		x := execute(t, `int f(int n) { return f(n + 1); }
int main() { return f(0); }`, Options{MaxCallDepth: 100})
		require.Len(t, x.runtime, 1)
		assert.Equal(t, "call depth limit exceeded (100)", x.runtime[0].Message)
		assert.Nil(t, x.out.Exit)
	})

	t.Run("steps", func(t *testing.T) {
		x := execute(t, `int main() { while (1) {} return 0; }`, Options{MaxSteps: 1000})
		require.Len(t, x.runtime, 1)
		assert.Equal(t, "step limit exceeded (1000)", x.runtime[0].Message)
	})
}

func TestCancellation(t *testing.T) {
	p := compile(t, `int main() { while (1) {} return 0; }`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(p.prog, p.res, p.chk, Options{Reporter: p.diag}).Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStaticErrorsSkipUnit(t *testing.T) {
	src := `int a = 5;
int b = missing + 1;
int main() { return a; }`

	x := execute(t, src, Options{})
	require.Len(t, x.out.Units, 4)
	assert.Equal(t, UnitSkipped, x.out.Units[1].Status)
	assert.Equal(t, Int(5), x.out.Exit)

	t.Run("unresolved names evaluate silently", func(t *testing.T) {
		x := execute(t, src, Options{Skip: func(ast.Decl) bool { return false }})
		assert.Empty(t, x.runtime)
		assert.Equal(t, UnitFailed, x.out.Units[1].Status)
		errs, _ := diag.Tally(x.diags)
		assert.Equal(t, 1, errs)
	})
}

func TestInternalErrorAbortsRun(t *testing.T) {
	p := compile(t, `int a = 1;
int main() { return a; }`)
	for id := range p.res.Uses {
		if id.Name == "a" {
			delete(p.res.Uses, id)
		}
	}

	_, err := New(p.prog, p.res, p.chk, Options{Reporter: p.diag}).Run(context.Background())
	var ie *InternalError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Message, "`a`")
}

func TestInput(t *testing.T) {
	src := `int a[4];
int main() {
  int x = getint();
  int y = getint();
  int n = getarray(a);
  putint(x + y); putch(32);
  putarray(n, a);
  return getch();
}`

	x := execute(t, src, Options{Stdin: strings.NewReader("5 -3\n3 1 2 3")})
	assert.Empty(t, x.runtime)
	assert.Equal(t, "2 3: 1 2 3\n", x.stdout)
	assert.Equal(t, Int(-1), x.out.Exit)

	t.Run("end of input", func(t *testing.T) {
		x := execute(t, src, Options{Stdin: strings.NewReader("1")})
		require.Len(t, x.runtime, 1)
		assert.Equal(t, "getint: unexpected end of input", x.runtime[0].Message)
	})
}

func TestPutf(t *testing.T) {
	x := execute(t, `int main() { putf("%d-%c-%x %% %5.2f\n", 10, 65, 255, 1.5); return 0; }`, Options{})
	assert.Empty(t, x.runtime)
	assert.Equal(t, "10-A-ff %  1.50\n", x.stdout)
}

func TestTimers(t *testing.T) {
	x := execute(t, `int main() {
  starttime();
  stoptime();
  return 0;
}`, Options{})
	require.Len(t, x.out.Timers, 1)
	assert.Equal(t, 2, x.out.Timers[0].StartLine)
	assert.Equal(t, 3, x.out.Timers[0].StopLine)
}

func TestHexFloat(t *testing.T) {
	cases := map[float32]string{
		1.5: "0x1.8p+0",
		0:   "0x0p+0",
		-2:  "-0x1p+1",
		0.5: "0x1p-1",
		0.1: "0x1.99999ap-4",
	}
	for in, want := range cases {
		assert.Equal(t, want, hexFloat(in), "hexFloat(%v)", in)
	}
}

func TestEvalExpr(t *testing.T) {
	p := compile(t, `int g = 4;
int sq(int x) { return x * x; }
int main() { return sq(g); }`)
	it := New(p.prog, p.res, p.chk, Options{Reporter: p.diag})
	out, err := it.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Int(16), out.Exit)

	main := p.prog.Decls[2].(*ast.FuncDecl)
	ret := main.Body.List[0].(*ast.ReturnStmt)
	v, err := it.EvalExpr(context.Background(), ret.Result)
	require.NoError(t, err)
	assert.Equal(t, Int(16), v)

	t.Run("fault is reported", func(t *testing.T) {
		bad := &ast.BinaryExpr{Op: ast.OpDiv, X: &ast.IntLit{Value: 1}, Y: &ast.IntLit{Value: 0}}
		before := p.diag.Len()
		v, err := it.EvalExpr(context.Background(), bad)
		require.NoError(t, err)
		assert.Equal(t, Error{}, v)
		assert.Equal(t, before+1, p.diag.Len())
	})
}

func TestMixedConditional(t *testing.T) {
	x := execute(t, `int c = 1;
int main() {
  float f = (c ? 3 : 2.5) / 2;
  putfloat(f); putch(32);
  float inf = (c ? 1 : 0.5) / 0;
  putint(inf > 1000000);
  return (c ? 3 : 2.5) / 2 * 2;
}`, Options{})

	assert.Empty(t, x.runtime)
	assert.Equal(t, "0x1.8p+0 1", x.stdout)
	assert.Equal(t, Int(3), x.out.Exit)
}

func TestFailedUnitRestoresGlobals(t *testing.T) {
	x := execute(t, `int g = 7;
int arr[2] = {1, 2};
int f() { g = 99; arr[0] = 5; return 1 / 0; }
int bump() { g = g + 1; return g; }
int h = f();
int k = bump();
int main() { putint(arr[0]); return g; }`, Options{})

	require.Len(t, x.runtime, 1)
	assert.Equal(t, "Division by zero", x.runtime[0].Message)
	require.Len(t, x.out.Units, 7)
	assert.Equal(t, UnitFailed, x.out.Units[4].Status)
	assert.Equal(t, Int(8), x.out.Units[5].Value)
	assert.Equal(t, "1", x.stdout)
	assert.Equal(t, Int(8), x.out.Exit)

	t.Run("evaluated expression", func(t *testing.T) {
		p := compile(t, `int g = 7;
int f() { g = 99; return 1 / 0; }
int main() { return g; }
int call() { return f(); }`)
		it := New(p.prog, p.res, p.chk, Options{Reporter: p.diag})
		out, err := it.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Int(7), out.Exit)

		call := p.prog.Decls[3].(*ast.FuncDecl)
		v, err := it.EvalExpr(context.Background(), call.Body.List[0].(*ast.ReturnStmt).Result)
		require.NoError(t, err)
		assert.Equal(t, Error{}, v)

		b := p.res.Defs[p.prog.Decls[0]]
		g, ok := it.Global(b)
		require.True(t, ok)
		assert.Equal(t, Int(7), g)
	})
}

func TestOversizedArray(t *testing.T) {
	for _, src := range []string{
		"int a[2][65536][65536][65536][65536];\nint main() { a[0][0][0][0][0] = 1; return 0; }",
		"int a[2][65536][65536][65536][65536] = {{1}};\nint main() { return 0; }",
	} {
		x := execute(t, src, Options{})
		var found bool
		for _, d := range x.diags {
			if d.Code == diag.InvalidConstant {
				found = true
				assert.Equal(t, "array has more than 268435456 elements", d.Message)
			}
		}
		assert.True(t, found, "%v", x.diags)
		assert.Empty(t, x.runtime)
		assert.Equal(t, UnitSkipped, x.out.Units[0].Status)
	}
}
