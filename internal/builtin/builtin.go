// Package builtin describes the runtime primitives every program can call.
// The table is immutable and shared by all runs.
package builtin

import "brunhild/internal/ast"

type ParamKind int

const (
	Int ParamKind = iota
	Float
	IntArray
	FloatArray
	String
)

func (k ParamKind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case IntArray:
		return "int[]"
	case FloatArray:
		return "float[]"
	case String:
		return "string"
	default:
		return "invalid"
	}
}

type Builtin struct {
	Name   string
	Params []ParamKind
	Result ast.BasicKind
	// Variadic functions accept any number of scalar arguments after Params.
	Variadic bool
}

var all = []*Builtin{
	{Name: "getint", Result: ast.Int},
	{Name: "getch", Result: ast.Int},
	{Name: "getfloat", Result: ast.Float},
	{Name: "getarray", Params: []ParamKind{IntArray}, Result: ast.Int},
	{Name: "getfarray", Params: []ParamKind{FloatArray}, Result: ast.Int},
	{Name: "putint", Params: []ParamKind{Int}, Result: ast.Void},
	{Name: "putch", Params: []ParamKind{Int}, Result: ast.Void},
	{Name: "putfloat", Params: []ParamKind{Float}, Result: ast.Void},
	{Name: "putarray", Params: []ParamKind{Int, IntArray}, Result: ast.Void},
	{Name: "putfarray", Params: []ParamKind{Int, FloatArray}, Result: ast.Void},
	{Name: "putf", Params: []ParamKind{String}, Result: ast.Void, Variadic: true},
	{Name: "starttime", Result: ast.Void},
	{Name: "stoptime", Result: ast.Void},
}

var byName = func() map[string]*Builtin {
	m := make(map[string]*Builtin, len(all))
	for _, b := range all {
		m[b.Name] = b
	}
	return m
}()

// All returns the primitives in declaration order.
func All() []*Builtin {
	out := make([]*Builtin, len(all))
	copy(out, all)
	return out
}

func Lookup(name string) (*Builtin, bool) {
	b, ok := byName[name]
	return b, ok
}
