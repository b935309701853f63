package types

import (
	"fmt"

	"brunhild/internal/ast"
	"brunhild/internal/source"
)

// Slot places one scalar initializer at a row-major offset.
type Slot struct {
	Offset int
	Expr   ast.Expr
}

type LayoutError struct {
	Span    source.Span
	Message string
}

func (e *LayoutError) Error() string {
	return e.Message
}

// Layout maps the leaves of a brace initializer onto an array of shape dims.
// Scalars fill the next element; a nested list starts at the next boundary
// of the sub-array one dimension down and fills only that sub-array.
func Layout(list *ast.InitList, dims []int) ([]Slot, error) {
	var out []Slot
	if err := layout(list, dims, 0, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func layout(list *ast.InitList, dims []int, base int, out *[]Slot) error {
	total := Size(dims)
	pos := 0
	for _, el := range list.Elems {
		if sub, ok := el.(*ast.InitList); ok {
			if len(dims) <= 1 {
				return &LayoutError{Span: sub.Loc, Message: "braces around scalar initializer"}
			}
			stride := Size(dims[1:])
			if rem := pos % stride; rem != 0 {
				pos += stride - rem
			}
			if pos >= total {
				return &LayoutError{Span: sub.Loc, Message: fmt.Sprintf("excess elements in initializer (array holds %d)", total)}
			}
			if err := layout(sub, dims[1:], base+pos, out); err != nil {
				return err
			}
			pos += stride
			continue
		}
		if pos >= total {
			return &LayoutError{Span: el.Span(), Message: fmt.Sprintf("excess elements in initializer (array holds %d)", total)}
		}
		*out = append(*out, Slot{Offset: base + pos, Expr: el})
		pos++
	}
	return nil
}
