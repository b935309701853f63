// Package ast defines the immutable abstract syntax tree produced by the
// builder. Node kinds form a closed set: every interface carries an
// unexported marker method, so only this package can add kinds, and every
// type switch over them ends in a default case that reports an internal error.
package ast

import "brunhild/internal/source"

type Node interface {
	Span() source.Span
	node()
}

type Expr interface {
	Node
	exprNode()
}

type Stmt interface {
	Node
	stmtNode()
}

// Decl is a declaration. Declarations may also appear as block statements.
type Decl interface {
	Stmt
	DeclName() *Ident
	declNode()
}

// Program is the root of one file.
type Program struct {
	Loc   source.Span
	File  string
	Decls []Decl
}

func (p *Program) Span() source.Span { return p.Loc }
func (*Program) node()               {}

// VarDecl declares one variable or constant. A C declaration with several
// declarators becomes several VarDecls.
type VarDecl struct {
	Loc  source.Span
	Name *Ident
	Type TypeSpec
	Init Expr // nil when absent; *InitList for arrays
}

func (d *VarDecl) Span() source.Span { return d.Loc }
func (d *VarDecl) DeclName() *Ident  { return d.Name }
func (*VarDecl) node()               {}
func (*VarDecl) stmtNode()           {}
func (*VarDecl) declNode()           {}

// FuncDecl is a function definition.
type FuncDecl struct {
	Loc    source.Span
	Name   *Ident
	Result TypeSpec
	Params []*Param
	Body   *BlockStmt
}

func (d *FuncDecl) Span() source.Span { return d.Loc }
func (d *FuncDecl) DeclName() *Ident  { return d.Name }
func (*FuncDecl) node()               {}
func (*FuncDecl) stmtNode()           {}
func (*FuncDecl) declNode()           {}

type Param struct {
	Loc  source.Span
	Name *Ident
	Type TypeSpec
}

func (p *Param) Span() source.Span { return p.Loc }
func (*Param) node()               {}
