package types

import (
	"errors"
	"math"

	"brunhild/internal/ast"
)

var (
	ErrDivideByZero = errors.New("Division by zero")
	ErrModuloByZero = errors.New("Modulo by zero")
	ErrFloatModulo  = errors.New("operator % requires int operands")
)

// IntBinary applies an arithmetic or comparison operator to int32 operands.
// Arithmetic wraps in two's complement; INT_MIN / -1 is INT_MIN.
func IntBinary(op ast.BinaryOp, x, y int32) (int32, error) {
	switch op {
	case ast.OpAdd:
		return x + y, nil
	case ast.OpSub:
		return x - y, nil
	case ast.OpMul:
		return x * y, nil
	case ast.OpDiv:
		if y == 0 {
			return 0, ErrDivideByZero
		}
		return x / y, nil
	case ast.OpRem:
		if y == 0 {
			return 0, ErrModuloByZero
		}
		return x % y, nil
	case ast.OpEq:
		return Bool(x == y), nil
	case ast.OpNe:
		return Bool(x != y), nil
	case ast.OpLt:
		return Bool(x < y), nil
	case ast.OpLe:
		return Bool(x <= y), nil
	case ast.OpGt:
		return Bool(x > y), nil
	case ast.OpGe:
		return Bool(x >= y), nil
	case ast.OpAnd:
		return Bool(x != 0 && y != 0), nil
	case ast.OpOr:
		return Bool(x != 0 || y != 0), nil
	}
	return 0, errors.New("unknown operator " + op.String())
}

// FloatArith applies + - * / to float32 operands. Division by zero follows
// IEEE-754.
func FloatArith(op ast.BinaryOp, x, y float32) (float32, error) {
	switch op {
	case ast.OpAdd:
		return x + y, nil
	case ast.OpSub:
		return x - y, nil
	case ast.OpMul:
		return x * y, nil
	case ast.OpDiv:
		return x / y, nil
	case ast.OpRem:
		return 0, ErrFloatModulo
	}
	return 0, errors.New("unknown operator " + op.String())
}

// FloatCompare applies a comparison or logical operator to float32 operands.
func FloatCompare(op ast.BinaryOp, x, y float32) (int32, error) {
	switch op {
	case ast.OpEq:
		return Bool(x == y), nil
	case ast.OpNe:
		return Bool(x != y), nil
	case ast.OpLt:
		return Bool(x < y), nil
	case ast.OpLe:
		return Bool(x <= y), nil
	case ast.OpGt:
		return Bool(x > y), nil
	case ast.OpGe:
		return Bool(x >= y), nil
	case ast.OpAnd:
		return Bool(x != 0 && y != 0), nil
	case ast.OpOr:
		return Bool(x != 0 || y != 0), nil
	}
	return 0, errors.New("unknown operator " + op.String())
}

// FloatToInt truncates toward zero, saturating at the int32 range. NaN is 0.
func FloatToInt(f float32) int32 {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int32(v)
}

func Bool(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
