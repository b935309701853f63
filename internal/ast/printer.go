package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ExprString renders an expression in fully parenthesized C form.
func ExprString(e Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

func writeExpr(b *strings.Builder, e Expr) {
	switch e := e.(type) {
	case *Ident:
		b.WriteString(e.Name)
	case *IntLit:
		b.WriteString(strconv.FormatInt(int64(e.Value), 10))
	case *FloatLit:
		b.WriteString(strconv.FormatFloat(float64(e.Value), 'g', -1, 32))
	case *StringLit:
		b.WriteString(strconv.Quote(e.Value))
	case *UnaryExpr:
		b.WriteString(e.Op.String())
		writeExpr(b, e.X)
	case *BinaryExpr:
		b.WriteString("(")
		writeExpr(b, e.X)
		b.WriteString(" " + e.Op.String() + " ")
		writeExpr(b, e.Y)
		b.WriteString(")")
	case *CondExpr:
		b.WriteString("(")
		writeExpr(b, e.Cond)
		b.WriteString(" ? ")
		writeExpr(b, e.Then)
		b.WriteString(" : ")
		writeExpr(b, e.Else)
		b.WriteString(")")
	case *CallExpr:
		b.WriteString(e.Fun.Name)
		b.WriteString("(")
		for i, a := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			writeExpr(b, a)
		}
		b.WriteString(")")
	case *IndexExpr:
		writeExpr(b, e.X)
		b.WriteString("[")
		writeExpr(b, e.Index)
		b.WriteString("]")
	case *InitList:
		b.WriteString("{")
		for i, el := range e.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			writeExpr(b, el)
		}
		b.WriteString("}")
	case *BadExpr:
		b.WriteString("<bad>")
	case nil:
		b.WriteString("<nil>")
	default:
		fmt.Fprintf(b, "<%T>", e)
	}
}

// Fprint writes an indented outline of n, one node per line.
func Fprint(w io.Writer, n Node) error {
	p := &printer{w: w}
	p.node(n, 0)
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(depth int, format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (p *printer) node(n Node, depth int) {
	switch n := n.(type) {
	case *Program:
		p.line(depth, "Program %s", n.File)
		for _, d := range n.Decls {
			p.node(d, depth+1)
		}
	case *FuncDecl:
		p.line(depth, "FuncDecl %s %s @%s", n.Result, n.Name.Name, n.Loc)
		for _, prm := range n.Params {
			p.line(depth+1, "Param %s %s", prm.Type, prm.Name.Name)
		}
		if n.Body != nil {
			p.node(n.Body, depth+1)
		}
	case *VarDecl:
		if n.Init != nil {
			p.line(depth, "VarDecl %s %s = %s", n.Type, n.Name.Name, ExprString(n.Init))
		} else {
			p.line(depth, "VarDecl %s %s", n.Type, n.Name.Name)
		}
	case *BlockStmt:
		p.line(depth, "Block")
		for _, s := range n.List {
			p.node(s, depth+1)
		}
	case *ExprStmt:
		p.line(depth, "Expr %s", ExprString(n.X))
	case *AssignStmt:
		p.line(depth, "Assign %s %s %s", ExprString(n.LHS), n.Op, ExprString(n.RHS))
	case *IfStmt:
		p.line(depth, "If %s", ExprString(n.Cond))
		p.node(n.Then, depth+1)
		if n.Else != nil {
			p.line(depth, "Else")
			p.node(n.Else, depth+1)
		}
	case *WhileStmt:
		p.line(depth, "While %s", ExprString(n.Cond))
		p.node(n.Body, depth+1)
	case *ReturnStmt:
		if n.Result == nil {
			p.line(depth, "Return")
		} else {
			p.line(depth, "Return %s", ExprString(n.Result))
		}
	case *BreakStmt:
		p.line(depth, "Break")
	case *ContinueStmt:
		p.line(depth, "Continue")
	case *EmptyStmt:
		p.line(depth, "Empty")
	case *BadStmt:
		p.line(depth, "Bad")
	case Expr:
		p.line(depth, "%s", ExprString(n))
	default:
		p.line(depth, "<%T>", n)
	}
}
