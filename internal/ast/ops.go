package ast

type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

var binaryOpText = map[BinaryOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpRem: "%",
	OpEq: "==", OpNe: "!=", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=",
	OpAnd: "&&", OpOr: "||",
}

func (op BinaryOp) String() string {
	if s, ok := binaryOpText[op]; ok {
		return s
	}
	return "?"
}

// IsArithmetic covers + - * / %.
func (op BinaryOp) IsArithmetic() bool {
	return op <= OpRem
}

func (op BinaryOp) IsComparison() bool {
	return op >= OpEq && op <= OpGe
}

func (op BinaryOp) IsLogical() bool {
	return op == OpAnd || op == OpOr
}

// LookupBinaryOp maps operator text to its BinaryOp.
func LookupBinaryOp(text string) (BinaryOp, bool) {
	for op, s := range binaryOpText {
		if s == text {
			return op, true
		}
	}
	return 0, false
}

type UnaryOp int

const (
	OpPlus UnaryOp = iota
	OpNeg
	OpNot
)

func (op UnaryOp) String() string {
	switch op {
	case OpPlus:
		return "+"
	case OpNeg:
		return "-"
	case OpNot:
		return "!"
	default:
		return "?"
	}
}

func LookupUnaryOp(text string) (UnaryOp, bool) {
	switch text {
	case "+":
		return OpPlus, true
	case "-":
		return OpNeg, true
	case "!":
		return OpNot, true
	}
	return 0, false
}

// AssignOp is = or a compound assignment.
type AssignOp int

const (
	OpAssign AssignOp = iota
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
	OpRemAssign
)

func (op AssignOp) String() string {
	switch op {
	case OpAssign:
		return "="
	case OpAddAssign:
		return "+="
	case OpSubAssign:
		return "-="
	case OpMulAssign:
		return "*="
	case OpDivAssign:
		return "/="
	case OpRemAssign:
		return "%="
	default:
		return "?"
	}
}

// Binary returns the arithmetic operator a compound assignment applies.
func (op AssignOp) Binary() (BinaryOp, bool) {
	switch op {
	case OpAddAssign:
		return OpAdd, true
	case OpSubAssign:
		return OpSub, true
	case OpMulAssign:
		return OpMul, true
	case OpDivAssign:
		return OpDiv, true
	case OpRemAssign:
		return OpRem, true
	}
	return 0, false
}

func LookupAssignOp(text string) (AssignOp, bool) {
	for op := OpAssign; op <= OpRemAssign; op++ {
		if op.String() == text {
			return op, true
		}
	}
	return 0, false
}
