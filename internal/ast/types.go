package ast

import "strings"

type BasicKind int

const (
	Invalid BasicKind = iota
	Int
	Float
	Void
)

func (k BasicKind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Void:
		return "void"
	default:
		return "invalid"
	}
}

// TypeSpec is a declared type as written in source.
type TypeSpec struct {
	Basic BasicKind
	Const bool
	// Dims holds the dimension expressions of an array, outermost first. A nil
	// entry is an omitted dimension, allowed only first in a parameter.
	Dims []Expr
}

func (t TypeSpec) IsArray() bool {
	return len(t.Dims) > 0
}

func (t TypeSpec) String() string {
	var b strings.Builder
	if t.Const {
		b.WriteString("const ")
	}
	b.WriteString(t.Basic.String())
	for _, d := range t.Dims {
		if d == nil {
			b.WriteString("[]")
			continue
		}
		b.WriteString("[")
		b.WriteString(ExprString(d))
		b.WriteString("]")
	}
	return b.String()
}
