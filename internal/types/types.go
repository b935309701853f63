// Package types holds the static types of the checker and the numeric
// semantics shared by constant folding and evaluation.
package types

import (
	"fmt"
	"strings"

	"brunhild/internal/ast"
)

type Kind int

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindVoid
	KindString
	KindArray
	KindFunc
)

// Type is a static type. Values are immutable once built.
type Type struct {
	Kind Kind
	// Elem is KindInt or KindFloat for arrays.
	Elem Kind
	// Dims are array dimensions; a leading -1 marks an unsized parameter dimension.
	Dims []int
	// Params, Result and Variadic describe functions.
	Params   []*Type
	Result   *Type
	Variadic bool
}

var (
	Invalid = &Type{Kind: KindInvalid}
	Int     = &Type{Kind: KindInt}
	Float   = &Type{Kind: KindFloat}
	Void    = &Type{Kind: KindVoid}
	String  = &Type{Kind: KindString}
)

func Basic(k ast.BasicKind) *Type {
	switch k {
	case ast.Int:
		return Int
	case ast.Float:
		return Float
	case ast.Void:
		return Void
	default:
		return Invalid
	}
}

func Array(elem Kind, dims []int) *Type {
	return &Type{Kind: KindArray, Elem: elem, Dims: dims}
}

func (t *Type) IsScalar() bool {
	return t.Kind == KindInt || t.Kind == KindFloat
}

func (t *Type) IsInvalid() bool {
	return t == nil || t.Kind == KindInvalid
}

// ElemType is the scalar type stored in an array.
func (t *Type) ElemType() *Type {
	if t.Elem == KindFloat {
		return Float
	}
	return Int
}

// Sub drops the outermost dimension of an array type.
func (t *Type) Sub() *Type {
	if len(t.Dims) <= 1 {
		return t.ElemType()
	}
	return Array(t.Elem, t.Dims[1:])
}

func (t *Type) String() string {
	if t == nil {
		return "invalid"
	}
	switch t.Kind {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindVoid:
		return "void"
	case KindString:
		return "string"
	case KindArray:
		var b strings.Builder
		if t.Elem == KindFloat {
			b.WriteString("float")
		} else {
			b.WriteString("int")
		}
		for _, d := range t.Dims {
			if d < 0 {
				b.WriteString("[]")
			} else {
				fmt.Fprintf(&b, "[%d]", d)
			}
		}
		return b.String()
	case KindFunc:
		parts := make([]string, 0, len(t.Params)+1)
		for _, p := range t.Params {
			parts = append(parts, p.String())
		}
		if t.Variadic {
			parts = append(parts, "...")
		}
		return fmt.Sprintf("%s(%s)", t.Result, strings.Join(parts, ", "))
	default:
		return "invalid"
	}
}

// Coercible reports whether a value of type from may be stored where to is
// expected: scalars convert freely, arrays must agree on element type and on
// every dimension except an unsized leading one.
func Coercible(from, to *Type) bool {
	if from.IsInvalid() || to.IsInvalid() {
		return true
	}
	if from.IsScalar() && to.IsScalar() {
		return true
	}
	if from.Kind == KindString && to.Kind == KindString {
		return true
	}
	if from.Kind != KindArray || to.Kind != KindArray {
		return false
	}
	if from.Elem != to.Elem || len(from.Dims) != len(to.Dims) {
		return false
	}
	for i := range to.Dims {
		if to.Dims[i] < 0 || from.Dims[i] < 0 {
			continue
		}
		if to.Dims[i] != from.Dims[i] {
			return false
		}
	}
	return true
}

// Promote returns the common type of two scalars.
func Promote(a, b *Type) *Type {
	if a.Kind == KindFloat || b.Kind == KindFloat {
		return Float
	}
	return Int
}

// MaxCells bounds the element count of any array.
const MaxCells = 1 << 28

// Size is the element count of fixed array dims, or -1 when a dimension is
// open or the count exceeds MaxCells.
func Size(dims []int) int {
	n := 1
	for _, d := range dims {
		if d < 0 || (d > 0 && n > MaxCells/d) {
			return -1
		}
		n *= d
	}
	return n
}
