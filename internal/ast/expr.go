package ast

import "brunhild/internal/source"

type Ident struct {
	Loc  source.Span
	Name string
}

type IntLit struct {
	Loc   source.Span
	Value int32
	Raw   string
}

type FloatLit struct {
	Loc   source.Span
	Value float32
	Raw   string
}

type StringLit struct {
	Loc   source.Span
	Value string
}

type UnaryExpr struct {
	Loc source.Span
	Op  UnaryOp
	X   Expr
}

type BinaryExpr struct {
	Loc source.Span
	Op  BinaryOp
	X   Expr
	Y   Expr
}

// CondExpr is c ? a : b.
type CondExpr struct {
	Loc  source.Span
	Cond Expr
	Then Expr
	Else Expr
}

type CallExpr struct {
	Loc  source.Span
	Fun  *Ident
	Args []Expr
}

type IndexExpr struct {
	Loc   source.Span
	X     Expr
	Index Expr
}

// InitList is a brace initializer. Elements are expressions or nested lists.
type InitList struct {
	Loc   source.Span
	Elems []Expr
}

// BadExpr stands in for a subtree the builder could not translate.
type BadExpr struct {
	Loc source.Span
}

func (e *Ident) Span() source.Span      { return e.Loc }
func (e *IntLit) Span() source.Span     { return e.Loc }
func (e *FloatLit) Span() source.Span   { return e.Loc }
func (e *StringLit) Span() source.Span  { return e.Loc }
func (e *UnaryExpr) Span() source.Span  { return e.Loc }
func (e *BinaryExpr) Span() source.Span { return e.Loc }
func (e *CondExpr) Span() source.Span   { return e.Loc }
func (e *CallExpr) Span() source.Span   { return e.Loc }
func (e *IndexExpr) Span() source.Span  { return e.Loc }
func (e *InitList) Span() source.Span   { return e.Loc }
func (e *BadExpr) Span() source.Span    { return e.Loc }

func (*Ident) node()      {}
func (*IntLit) node()     {}
func (*FloatLit) node()   {}
func (*StringLit) node()  {}
func (*UnaryExpr) node()  {}
func (*BinaryExpr) node() {}
func (*CondExpr) node()   {}
func (*CallExpr) node()   {}
func (*IndexExpr) node()  {}
func (*InitList) node()   {}
func (*BadExpr) node()    {}

func (*Ident) exprNode()      {}
func (*IntLit) exprNode()     {}
func (*FloatLit) exprNode()   {}
func (*StringLit) exprNode()  {}
func (*UnaryExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}
func (*CondExpr) exprNode()   {}
func (*CallExpr) exprNode()   {}
func (*IndexExpr) exprNode()  {}
func (*InitList) exprNode()   {}
func (*BadExpr) exprNode()    {}
