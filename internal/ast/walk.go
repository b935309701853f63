package ast

import "fmt"

// Inspect traverses the tree rooted at n in depth-first source order. If f
// returns false the children of that node are skipped. Recursion depth is
// bounded by the builder's nesting limit.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	switch n := n.(type) {
	case *Program:
		for _, d := range n.Decls {
			Inspect(d, f)
		}
	case *VarDecl:
		Inspect(n.Name, f)
		for _, d := range n.Type.Dims {
			if d != nil {
				Inspect(d, f)
			}
		}
		if n.Init != nil {
			Inspect(n.Init, f)
		}
	case *FuncDecl:
		Inspect(n.Name, f)
		for _, p := range n.Params {
			Inspect(p, f)
		}
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *Param:
		Inspect(n.Name, f)
		for _, d := range n.Type.Dims {
			if d != nil {
				Inspect(d, f)
			}
		}
	case *BlockStmt:
		for _, s := range n.List {
			Inspect(s, f)
		}
	case *ExprStmt:
		Inspect(n.X, f)
	case *AssignStmt:
		Inspect(n.LHS, f)
		Inspect(n.RHS, f)
	case *IfStmt:
		Inspect(n.Cond, f)
		Inspect(n.Then, f)
		if n.Else != nil {
			Inspect(n.Else, f)
		}
	case *WhileStmt:
		Inspect(n.Cond, f)
		Inspect(n.Body, f)
	case *ReturnStmt:
		if n.Result != nil {
			Inspect(n.Result, f)
		}
	case *UnaryExpr:
		Inspect(n.X, f)
	case *BinaryExpr:
		Inspect(n.X, f)
		Inspect(n.Y, f)
	case *CondExpr:
		Inspect(n.Cond, f)
		Inspect(n.Then, f)
		Inspect(n.Else, f)
	case *CallExpr:
		Inspect(n.Fun, f)
		for _, a := range n.Args {
			Inspect(a, f)
		}
	case *IndexExpr:
		Inspect(n.X, f)
		Inspect(n.Index, f)
	case *InitList:
		for _, e := range n.Elems {
			Inspect(e, f)
		}
	case *Ident, *IntLit, *FloatLit, *StringLit, *BadExpr,
		*BreakStmt, *ContinueStmt, *EmptyStmt, *BadStmt:
	default:
		panic(fmt.Sprintf("ast.Inspect: unexpected node %T", n))
	}
}
