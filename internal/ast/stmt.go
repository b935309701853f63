package ast

import "brunhild/internal/source"

type BlockStmt struct {
	Loc  source.Span
	List []Stmt
}

type ExprStmt struct {
	Loc source.Span
	X   Expr
}

// AssignStmt is lhs = rhs, or lhs op= rhs when Op is not OpAssign.
type AssignStmt struct {
	Loc source.Span
	Op  AssignOp
	LHS Expr
	RHS Expr
}

type IfStmt struct {
	Loc  source.Span
	Cond Expr
	Then Stmt
	Else Stmt // nil without an else branch
}

type WhileStmt struct {
	Loc  source.Span
	Cond Expr
	Body Stmt
}

type ReturnStmt struct {
	Loc    source.Span
	Result Expr // nil for a bare return
}

type BreakStmt struct {
	Loc source.Span
}

type ContinueStmt struct {
	Loc source.Span
}

type EmptyStmt struct {
	Loc source.Span
}

type BadStmt struct {
	Loc source.Span
}

func (s *BlockStmt) Span() source.Span    { return s.Loc }
func (s *ExprStmt) Span() source.Span     { return s.Loc }
func (s *AssignStmt) Span() source.Span   { return s.Loc }
func (s *IfStmt) Span() source.Span       { return s.Loc }
func (s *WhileStmt) Span() source.Span    { return s.Loc }
func (s *ReturnStmt) Span() source.Span   { return s.Loc }
func (s *BreakStmt) Span() source.Span    { return s.Loc }
func (s *ContinueStmt) Span() source.Span { return s.Loc }
func (s *EmptyStmt) Span() source.Span    { return s.Loc }
func (s *BadStmt) Span() source.Span      { return s.Loc }

func (*BlockStmt) node()    {}
func (*ExprStmt) node()     {}
func (*AssignStmt) node()   {}
func (*IfStmt) node()       {}
func (*WhileStmt) node()    {}
func (*ReturnStmt) node()   {}
func (*BreakStmt) node()    {}
func (*ContinueStmt) node() {}
func (*EmptyStmt) node()    {}
func (*BadStmt) node()      {}

func (*BlockStmt) stmtNode()    {}
func (*ExprStmt) stmtNode()     {}
func (*AssignStmt) stmtNode()   {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode()   {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*EmptyStmt) stmtNode()    {}
func (*BadStmt) stmtNode()      {}
