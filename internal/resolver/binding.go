package resolver

import (
	"brunhild/internal/ast"
	"brunhild/internal/builtin"
	"brunhild/internal/source"
)

type BindingKind int

const (
	Variable BindingKind = iota
	Constant
	Parameter
	Function
	Builtin
)

func (k BindingKind) String() string {
	switch k {
	case Variable:
		return "variable"
	case Constant:
		return "constant"
	case Parameter:
		return "parameter"
	case Function:
		return "function"
	case Builtin:
		return "builtin"
	default:
		return "unknown"
	}
}

// Binding ties a declared name to its declaration.
type Binding struct {
	Name string
	Kind BindingKind
	// Decl is the *ast.VarDecl, *ast.Param or *ast.FuncDecl; nil for builtins.
	Decl    ast.Node
	Builtin *builtin.Builtin
	Scope   *Scope
	// Uses counts resolved references.
	Uses int
}

func (b *Binding) Span() source.Span {
	switch d := b.Decl.(type) {
	case *ast.VarDecl:
		return d.Name.Loc
	case *ast.Param:
		return d.Name.Loc
	case *ast.FuncDecl:
		return d.Name.Loc
	}
	return source.Span{}
}

// Global reports whether the binding lives in the global scope.
func (b *Binding) Global() bool {
	return b.Scope != nil && b.Scope.IsGlobal()
}

func (b *Binding) IsCallable() bool {
	return b.Kind == Function || b.Kind == Builtin
}
