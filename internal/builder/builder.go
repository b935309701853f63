// Package builder turns the concrete tree-sitter tree into the AST. It keeps
// only meaning-bearing nodes and never panics on an unexpected tree shape:
// such shapes become MalformedSyntax diagnostics and Bad nodes.
package builder

import (
	"fmt"

	"brunhild/internal/ast"
	"brunhild/internal/diag"
	"brunhild/internal/source"
	"brunhild/internal/syntax"
)

const DefaultMaxDepth = 1000

type Options struct {
	// MaxDepth bounds statement and expression nesting.
	MaxDepth int
}

type builder struct {
	file     string
	rep      diag.Reporter
	maxDepth int
	depth    int
	// tooDeep is set once the current top-level declaration hit MaxDepth.
	tooDeep bool
}

// Build converts tree into a Program. Diagnostics go to rep.
func Build(tree *syntax.Tree, rep diag.Reporter, opts Options) *ast.Program {
	b := &builder{file: tree.File, rep: rep, maxDepth: opts.MaxDepth}
	if b.maxDepth <= 0 {
		b.maxDepth = DefaultMaxDepth
	}

	prog := &ast.Program{File: tree.File}
	if tree.Root == nil {
		return prog
	}
	prog.Loc = tree.Root.Span

	for _, n := range tree.Root.NamedChildren() {
		b.tooDeep = false
		b.depth = 0
		switch n.Kind {
		case "function_definition":
			if fn := b.funcDecl(n); fn != nil {
				prog.Decls = append(prog.Decls, fn)
			}
		case "declaration":
			for _, d := range b.varDecls(n) {
				prog.Decls = append(prog.Decls, d)
			}
		case "ERROR":
			// reported by syntax.SyntaxErrors
		case "preproc_include", "preproc_def", "preproc_function_def", "preproc_call",
			"preproc_if", "preproc_ifdef":
			b.unsupported(n, "preprocessor directive")
		case "expression_statement", "compound_statement", "if_statement", "while_statement",
			"return_statement", "for_statement":
			b.unsupported(n, "statement outside of a function")
		default:
			b.unsupported(n, describe(n))
		}
	}
	return prog
}

func (b *builder) report(code diag.Code, span source.Span, format string, args ...any) {
	b.rep.Report(diag.Diagnostic{
		Severity: diag.SeverityError,
		Code:     code,
		Phase:    diag.PhaseParse,
		Span:     span,
		Message:  fmt.Sprintf(format, args...),
	})
}

// malformed reports a shape the builder cannot handle, unless the node is
// already covered by a syntax error.
func (b *builder) malformed(n *syntax.Node, format string, args ...any) {
	if recovered(n) {
		return
	}
	b.report(diag.MalformedSyntax, n.Span, format, args...)
}

func (b *builder) unsupported(n *syntax.Node, what string) {
	if recovered(n) {
		return
	}
	b.report(diag.UnsupportedConstruct, n.Span, "unsupported construct: %s", what)
}

// enter tracks nesting; it returns false once MaxDepth is exceeded and
// reports that once per top-level declaration. Each call needs a leave.
func (b *builder) enter(n *syntax.Node) bool {
	b.depth++
	if b.depth <= b.maxDepth {
		return true
	}
	if !b.tooDeep {
		b.tooDeep = true
		b.report(diag.MalformedSyntax, n.Span, "nesting too deep (limit %d)", b.maxDepth)
	}
	return false
}

func (b *builder) leave() {
	b.depth--
}

func (b *builder) ident(n *syntax.Node) *ast.Ident {
	return &ast.Ident{Loc: n.Span, Name: n.Text}
}

// recovered reports whether n or one of its direct children came out of
// tree-sitter error recovery.
func recovered(n *syntax.Node) bool {
	if n == nil {
		return false
	}
	if n.IsError() || n.Missing {
		return true
	}
	for _, c := range n.Children {
		if c.IsError() || c.Missing {
			return true
		}
	}
	return false
}

func describe(n *syntax.Node) string {
	switch n.Kind {
	case "for_statement":
		return "for loop"
	case "do_statement":
		return "do-while loop"
	case "switch_statement":
		return "switch statement"
	case "goto_statement", "labeled_statement":
		return "goto and labels"
	case "update_expression":
		return "increment and decrement operators"
	case "pointer_expression", "pointer_declarator", "abstract_pointer_declarator":
		return "pointers"
	case "cast_expression":
		return "casts"
	case "sizeof_expression":
		return "sizeof"
	case "field_expression", "struct_specifier", "union_specifier", "enum_specifier":
		return "structures and enumerations"
	case "comma_expression":
		return "comma operator"
	case "type_definition":
		return "typedef"
	}
	return fmt.Sprintf("`%s`", n.Kind)
}
