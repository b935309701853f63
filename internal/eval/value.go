package eval

import (
	"strconv"
	"strings"

	"brunhild/internal/ast"
	"brunhild/internal/builtin"
	"brunhild/internal/types"
)

type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindArray
	KindString
	KindVoid
	KindFunc
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindVoid:
		return "void"
	case KindFunc:
		return "function"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Value is a runtime value. Scalars are held by value; arrays are views over
// storage shared by every binding that refers to them.
type Value interface {
	Kind() Kind
	String() string
	value()
}

type Int int32

type Float float32

type String string

type Void struct{}

// Error marks a value whose computation already failed. It propagates
// without producing further diagnostics.
type Error struct{}

// Func is a callable: a user function or a runtime primitive.
type Func struct {
	Decl    *ast.FuncDecl
	Builtin *builtin.Builtin
}

func (Int) Kind() Kind    { return KindInt }
func (Float) Kind() Kind  { return KindFloat }
func (*Array) Kind() Kind { return KindArray }
func (String) Kind() Kind { return KindString }
func (Void) Kind() Kind   { return KindVoid }
func (*Func) Kind() Kind  { return KindFunc }
func (Error) Kind() Kind  { return KindError }

func (Int) value()    {}
func (Float) value()  {}
func (*Array) value() {}
func (String) value() {}
func (Void) value()   {}
func (*Func) value()  {}
func (Error) value()  {}

func (v Int) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 32) }
func (v String) String() string {
	return strconv.Quote(string(v))
}
func (Void) String() string  { return "void" }
func (Error) String() string { return "<error>" }

func (f *Func) String() string {
	if f.Builtin != nil {
		return "<builtin " + f.Builtin.Name + ">"
	}
	return "<function " + f.Decl.Name.Name + ">"
}

// Array is a row-major view. Row views share storage with their parent.
type Array struct {
	Elem   types.Kind
	Dims   []int
	ints   []int32
	floats []float32
	// shared is set once the storage is reachable from a global.
	shared bool
}

func NewArray(elem types.Kind, dims []int) *Array {
	a := &Array{Elem: elem, Dims: append([]int(nil), dims...)}
	n := types.Size(dims)
	if elem == types.KindFloat {
		a.floats = make([]float32, n)
	} else {
		a.ints = make([]int32, n)
	}
	return a
}

// Len is the number of scalar cells the view covers.
func (a *Array) Len() int {
	if a.Elem == types.KindFloat {
		return len(a.floats)
	}
	return len(a.ints)
}

// Row returns the i-th sub-array of a multi-dimensional view.
func (a *Array) Row(i int) *Array {
	stride := types.Size(a.Dims[1:])
	out := &Array{Elem: a.Elem, Dims: a.Dims[1:], shared: a.shared}
	if a.Elem == types.KindFloat {
		out.floats = a.floats[i*stride : (i+1)*stride]
	} else {
		out.ints = a.ints[i*stride : (i+1)*stride]
	}
	return out
}

// Load reads cell i of the flat view.
func (a *Array) Load(i int) Value {
	if a.Elem == types.KindFloat {
		return Float(a.floats[i])
	}
	return Int(a.ints[i])
}

// Store writes scalar v to cell i, converting it to the element type.
func (a *Array) Store(i int, v Value) {
	if a.Elem == types.KindFloat {
		a.floats[i] = float32(toFloat(v))
		return
	}
	a.ints[i] = int32(toInt(v))
}

func (a *Array) String() string {
	var b strings.Builder
	b.WriteString("{")
	n := a.Len()
	limit := n
	if limit > 16 {
		limit = 16
	}
	for i := 0; i < limit; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.Load(i).String())
	}
	if limit < n {
		b.WriteString(", ...")
	}
	b.WriteString("}")
	return b.String()
}

func toInt(v Value) Int {
	switch v := v.(type) {
	case Int:
		return v
	case Float:
		return Int(types.FloatToInt(float32(v)))
	}
	return 0
}

func toFloat(v Value) Float {
	switch v := v.(type) {
	case Int:
		return Float(float32(v))
	case Float:
		return v
	}
	return 0
}

// coerce converts a scalar to the declared kind. Other values pass through.
func coerce(v Value, to types.Kind) Value {
	switch v.(type) {
	case Int, Float:
		switch to {
		case types.KindInt:
			return toInt(v)
		case types.KindFloat:
			return toFloat(v)
		}
	}
	return v
}

func zero(t *types.Type) Value {
	switch t.Kind {
	case types.KindInt:
		return Int(0)
	case types.KindFloat:
		return Float(0)
	case types.KindArray:
		return NewArray(t.Elem, t.Dims)
	case types.KindVoid:
		return Void{}
	}
	return Error{}
}

func truthy(v Value) bool {
	switch v := v.(type) {
	case Int:
		return v != 0
	case Float:
		return v != 0
	}
	return false
}

func isError(v Value) bool {
	_, ok := v.(Error)
	return ok
}
