// Package ir is the linear instruction stream produced by the code
// generator: typed locals, SSA-style values, basic blocks and calls into the
// runtime library.
package ir

import (
	"fmt"
	"strings"
)

// Type of a local or value.
type Type int

const (
	Void Type = iota
	Int
	Bool
	Vector
)

func (t Type) String() string {
	switch t {
	case Void:
		return "void"
	case Int:
		return "int"
	case Bool:
		return "bool"
	case Vector:
		return "vector"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Value names the result of an instruction. Values start at 1; NoValue
// marks instructions without a result.
type Value int

const NoValue Value = 0

// Local names a storage slot. Locals start at 1.
type Local int

// BlockID indexes Program.Blocks. The entry block is 0.
type BlockID int

// Opcode identifies an instruction.
type Opcode int

const (
	OpConst Opcode = iota
	OpLoad
	OpStore
	OpCall
	OpICmp
	OpBr
	OpCondBr
	OpReturn
)

var opcodeNames = [...]string{
	OpConst:  "const",
	OpLoad:   "load",
	OpStore:  "store",
	OpCall:   "call",
	OpICmp:   "icmp",
	OpBr:     "br",
	OpCondBr: "condbr",
	OpReturn: "ret",
}

func (op Opcode) String() string {
	if op < 0 || int(op) >= len(opcodeNames) {
		return fmt.Sprintf("op(%d)", int(op))
	}
	return opcodeNames[op]
}

// IsTerminator reports whether op ends a block.
func (op Opcode) IsTerminator() bool {
	return op == OpBr || op == OpCondBr || op == OpReturn
}

// Pred is an integer comparison predicate.
type Pred int

const (
	PredEQ Pred = iota
	PredNE
	PredSLT
	PredSGT
	PredSLE
	PredSGE
)

var predNames = [...]string{
	PredEQ:  "eq",
	PredNE:  "ne",
	PredSLT: "slt",
	PredSGT: "sgt",
	PredSLE: "sle",
	PredSGE: "sge",
}

func (p Pred) String() string {
	if p < 0 || int(p) >= len(predNames) {
		return fmt.Sprintf("pred(%d)", int(p))
	}
	return predNames[p]
}

// Eval applies the predicate.
func (p Pred) Eval(a, b int32) bool {
	switch p {
	case PredEQ:
		return a == b
	case PredNE:
		return a != b
	case PredSLT:
		return a < b
	case PredSGT:
		return a > b
	case PredSLE:
		return a <= b
	case PredSGE:
		return a >= b
	default:
		panic("ir: unknown predicate " + p.String())
	}
}

// Inst is one instruction. Which fields matter depends on Op.
type Inst struct {
	Op   Opcode
	Dst  Value // result, or NoValue
	Type Type  // type of Dst
	Args []Value

	Imm   int32   // OpConst
	Local Local   // OpLoad, OpStore
	Func  string  // OpCall
	Pred  Pred    // OpICmp
	Then  BlockID // OpBr target, OpCondBr true edge
	Else  BlockID // OpCondBr false edge

	Line int // source line, 0 if unknown
}

// Block is a basic block.
type Block struct {
	ID    BlockID
	Name  string
	Insts []Inst
}

// Terminated reports whether the block already ends in a terminator.
func (b *Block) Terminated() bool {
	return len(b.Insts) > 0 && b.Insts[len(b.Insts)-1].Op.IsTerminator()
}

// Program is a complete compiled program with a single entry point.
type Program struct {
	Locals []Type // Locals[l-1] is the type of Local l
	Values []Type // Values[v-1] is the type of Value v
	Blocks []*Block
}

// LocalType returns the type of l, or Void if l is out of range.
func (p *Program) LocalType(l Local) Type {
	if l < 1 || int(l) > len(p.Locals) {
		return Void
	}
	return p.Locals[l-1]
}

// ValueType returns the type of v, or Void if v is out of range.
func (p *Program) ValueType(v Value) Type {
	if v < 1 || int(v) > len(p.Values) {
		return Void
	}
	return p.Values[v-1]
}

// Calls counts call instructions per function name.
func (p *Program) Calls() map[string]int {
	counts := map[string]int{}
	for _, b := range p.Blocks {
		for _, inst := range b.Insts {
			if inst.Op == OpCall {
				counts[inst.Func]++
			}
		}
	}
	return counts
}

// String renders the program as text, one instruction per line.
func (p *Program) String() string {
	var sb strings.Builder
	for i, t := range p.Locals {
		fmt.Fprintf(&sb, "local %%l%d %s\n", i+1, t)
	}
	for _, b := range p.Blocks {
		fmt.Fprintf(&sb, "b%d %s:\n", b.ID, b.Name)
		for _, inst := range b.Insts {
			sb.WriteString("  ")
			sb.WriteString(inst.String())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func (inst Inst) String() string {
	var sb strings.Builder
	if inst.Dst != NoValue {
		fmt.Fprintf(&sb, "%%%d = ", inst.Dst)
	}
	sb.WriteString(inst.Op.String())
	switch inst.Op {
	case OpConst:
		fmt.Fprintf(&sb, " %d", inst.Imm)
	case OpLoad:
		fmt.Fprintf(&sb, " %%l%d", inst.Local)
	case OpStore:
		fmt.Fprintf(&sb, " %%l%d, %s", inst.Local, valueList(inst.Args))
	case OpCall:
		fmt.Fprintf(&sb, " %s(%s)", inst.Func, valueList(inst.Args))
	case OpICmp:
		fmt.Fprintf(&sb, " %s %s", inst.Pred, valueList(inst.Args))
	case OpBr:
		fmt.Fprintf(&sb, " b%d", inst.Then)
	case OpCondBr:
		fmt.Fprintf(&sb, " %s, b%d, b%d", valueList(inst.Args), inst.Then, inst.Else)
	}
	return sb.String()
}

func valueList(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%%%d", v)
	}
	return strings.Join(parts, ", ")
}
