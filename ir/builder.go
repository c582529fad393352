package ir

import "github.com/strager/vcalc/runtime"

// Emitter is everything the code generator needs from a backend.
type Emitter interface {
	AllocLocal(t Type) Local
	Load(l Local) Value
	Store(l Local, v Value)
	Const(x int32) Value
	Call(name string, args ...Value) Value
	ICmp(pred Pred, a, b Value) Value
	CondBr(cond Value, then, els BlockID)
	Br(target BlockID)
	Return()
	NewBlock(name string) BlockID
	SetBlock(b BlockID)
	// ForLoop runs body once per iv in [lo, hi) stepping by step. body
	// emits into the current block and may create blocks of its own.
	ForLoop(lo, hi, step Value, body func(iv Value))
	TypeOf(v Value) Type
	SetLine(line int)
	Finish() (*Program, error)
}

// Builder emits into an in-memory Program.
type Builder struct {
	prog *Program
	cur  BlockID
	line int
}

var _ Emitter = (*Builder)(nil)

// NewBuilder returns a builder positioned in an empty entry block.
func NewBuilder() *Builder {
	b := &Builder{prog: &Program{}}
	b.cur = b.NewBlock("entry")
	return b
}

func (b *Builder) AllocLocal(t Type) Local {
	b.prog.Locals = append(b.prog.Locals, t)
	return Local(len(b.prog.Locals))
}

func (b *Builder) Load(l Local) Value {
	return b.emit(Inst{Op: OpLoad, Local: l}, b.prog.LocalType(l))
}

func (b *Builder) Store(l Local, v Value) {
	b.emit(Inst{Op: OpStore, Local: l, Args: []Value{v}}, Void)
}

func (b *Builder) Const(x int32) Value {
	return b.emit(Inst{Op: OpConst, Imm: x}, Int)
}

// Call emits a call into the runtime library. The result type comes from
// the library signature; unknown functions are caught by Verify.
func (b *Builder) Call(name string, args ...Value) Value {
	result := Void
	if f, ok := runtime.Lookup(name); ok {
		result = TypeOfKind(f.Result)
	}
	return b.emit(Inst{Op: OpCall, Func: name, Args: args}, result)
}

func (b *Builder) ICmp(pred Pred, x, y Value) Value {
	return b.emit(Inst{Op: OpICmp, Pred: pred, Args: []Value{x, y}}, Bool)
}

func (b *Builder) CondBr(cond Value, then, els BlockID) {
	b.emit(Inst{Op: OpCondBr, Args: []Value{cond}, Then: then, Else: els}, Void)
}

func (b *Builder) Br(target BlockID) {
	b.emit(Inst{Op: OpBr, Then: target}, Void)
}

func (b *Builder) Return() {
	b.emit(Inst{Op: OpReturn}, Void)
}

func (b *Builder) NewBlock(name string) BlockID {
	id := BlockID(len(b.prog.Blocks))
	b.prog.Blocks = append(b.prog.Blocks, &Block{ID: id, Name: name})
	return id
}

func (b *Builder) SetBlock(id BlockID) {
	b.cur = id
}

// ForLoop lowers to a header/body/exit triple with the induction variable
// kept in its own local.
func (b *Builder) ForLoop(lo, hi, step Value, body func(iv Value)) {
	slot := b.AllocLocal(Int)
	b.Store(slot, lo)
	header := b.NewBlock("for.header")
	bodyBlock := b.NewBlock("for.body")
	exit := b.NewBlock("for.exit")
	b.Br(header)

	b.SetBlock(header)
	iv := b.Load(slot)
	b.CondBr(b.ICmp(PredSLT, iv, hi), bodyBlock, exit)

	b.SetBlock(bodyBlock)
	body(iv)
	b.Store(slot, b.Call("int_add", b.Load(slot), step))
	b.Br(header)

	b.SetBlock(exit)
}

func (b *Builder) TypeOf(v Value) Type {
	return b.prog.ValueType(v)
}

func (b *Builder) SetLine(line int) {
	b.line = line
}

// Finish verifies the program. The program is returned even when
// verification fails so callers can dump it.
func (b *Builder) Finish() (*Program, error) {
	return b.prog, Verify(b.prog)
}

func (b *Builder) emit(inst Inst, t Type) Value {
	if t != Void {
		b.prog.Values = append(b.prog.Values, t)
		inst.Dst = Value(len(b.prog.Values))
		inst.Type = t
	}
	inst.Line = b.line
	blk := b.prog.Blocks[b.cur]
	blk.Insts = append(blk.Insts, inst)
	return inst.Dst
}

// TypeOfKind maps a runtime kind to its instruction type.
func TypeOfKind(k runtime.Kind) Type {
	switch k {
	case runtime.KindInt:
		return Int
	case runtime.KindVector:
		return Vector
	default:
		return Void
	}
}
