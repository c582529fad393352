package runtime

import "fmt"

// Op is a binary operator understood by the runtime.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpLess
	OpGreater
	OpEqual
	OpNotEqual
)

var opNames = [...]string{
	OpAdd:      "add",
	OpSub:      "sub",
	OpMul:      "mul",
	OpDiv:      "div",
	OpLess:     "less_than",
	OpGreater:  "greater_than",
	OpEqual:    "equal",
	OpNotEqual: "nequal",
}

var opSymbols = map[string]Op{
	"+":  OpAdd,
	"-":  OpSub,
	"*":  OpMul,
	"/":  OpDiv,
	"<":  OpLess,
	">":  OpGreater,
	"==": OpEqual,
	"!=": OpNotEqual,
}

// Ops lists every operator in declaration order.
var Ops = []Op{OpAdd, OpSub, OpMul, OpDiv, OpLess, OpGreater, OpEqual, OpNotEqual}

// String returns the suffix used in library function names.
func (op Op) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return fmt.Sprintf("Op(%d)", int(op))
	}
	return opNames[op]
}

// IsComparison reports whether op yields a 1/0 truth value.
func (op Op) IsComparison() bool {
	return op >= OpLess && op <= OpNotEqual
}

// ScalarFunc names the library function applying op to two ints.
func (op Op) ScalarFunc() string { return "int_" + op.String() }

// VectorFunc names the library function applying op to two vectors.
func (op Op) VectorFunc() string { return "vector_" + op.String() }

// OpFromSymbol maps a source operator such as "+" or "!=" to an Op.
func OpFromSymbol(symbol string) (Op, bool) {
	op, ok := opSymbols[symbol]
	return op, ok
}

// Arith applies an arithmetic operator. Division truncates toward zero and
// panics on a zero divisor like native integer division.
func Arith(op Op, a, b int32) int32 {
	switch op {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	case OpDiv:
		return a / b
	default:
		panic(fmt.Sprintf("runtime: %s is not an arithmetic operator", op))
	}
}

// Compare applies a comparison operator, returning 1 or 0.
func Compare(op Op, a, b int32) int32 {
	var r bool
	switch op {
	case OpLess:
		r = a < b
	case OpGreater:
		r = a > b
	case OpEqual:
		r = a == b
	case OpNotEqual:
		r = a != b
	default:
		panic(fmt.Sprintf("runtime: %s is not a comparison operator", op))
	}
	if r {
		return 1
	}
	return 0
}

// Apply dispatches to Arith or Compare.
func Apply(op Op, a, b int32) int32 {
	if op.IsComparison() {
		return Compare(op, a, b)
	}
	return Arith(op, a, b)
}
