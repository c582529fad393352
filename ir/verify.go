package ir

import (
	"github.com/pkg/errors"

	"github.com/strager/vcalc/runtime"
)

// VerifyError locates a verification failure.
type VerifyError struct {
	Block BlockID
	Line  int // source line of the offending instruction, if known
	Err   error
}

func (e *VerifyError) Error() string { return e.Err.Error() }

func (e *VerifyError) Unwrap() error { return e.Err }

// Verify checks block structure and the types flowing through every
// instruction. It reports the first problem found.
func Verify(p *Program) error {
	if len(p.Blocks) == 0 {
		return errors.New("program has no blocks")
	}
	for _, b := range p.Blocks {
		if err := verifyBlock(p, b); err != nil {
			err.Block = b.ID
			err.Err = errors.Wrapf(err.Err, "block b%d %s", b.ID, b.Name)
			return err
		}
	}
	return nil
}

func verifyBlock(p *Program, b *Block) *VerifyError {
	if !b.Terminated() {
		return &VerifyError{Err: errors.New("missing terminator")}
	}
	for i, inst := range b.Insts {
		if inst.Op.IsTerminator() && i != len(b.Insts)-1 {
			return &VerifyError{Line: inst.Line, Err: errors.Errorf("%s before end of block", inst.Op)}
		}
		if err := verifyInst(p, inst); err != nil {
			if inst.Line > 0 {
				err = errors.Wrapf(err, "line %d: %s", inst.Line, inst)
			} else {
				err = errors.Wrap(err, inst.String())
			}
			return &VerifyError{Line: inst.Line, Err: err}
		}
	}
	return nil
}

func verifyInst(p *Program, inst Inst) error {
	for _, arg := range inst.Args {
		if p.ValueType(arg) == Void {
			return errors.Errorf("use of undefined value %%%d", arg)
		}
	}
	switch inst.Op {
	case OpConst, OpReturn:
		return nil
	case OpLoad:
		if p.LocalType(inst.Local) == Void {
			return errors.Errorf("undefined local %%l%d", inst.Local)
		}
		return nil
	case OpStore:
		lt := p.LocalType(inst.Local)
		if lt == Void {
			return errors.Errorf("undefined local %%l%d", inst.Local)
		}
		if len(inst.Args) != 1 {
			return errors.Errorf("store takes 1 value, got %d", len(inst.Args))
		}
		if vt := p.ValueType(inst.Args[0]); vt != lt {
			return errors.Errorf("storing %s into %s local", vt, lt)
		}
		return nil
	case OpCall:
		return verifyCall(p, inst)
	case OpICmp:
		if len(inst.Args) != 2 {
			return errors.Errorf("icmp takes 2 values, got %d", len(inst.Args))
		}
		for i, arg := range inst.Args {
			if vt := p.ValueType(arg); vt != Int {
				return errors.Errorf("icmp operand %d is %s, want int", i+1, vt)
			}
		}
		return nil
	case OpBr:
		return verifyTarget(p, inst.Then)
	case OpCondBr:
		if len(inst.Args) != 1 {
			return errors.Errorf("condbr takes 1 value, got %d", len(inst.Args))
		}
		if vt := p.ValueType(inst.Args[0]); vt != Bool {
			return errors.Errorf("branch condition is %s, want bool", vt)
		}
		if err := verifyTarget(p, inst.Then); err != nil {
			return err
		}
		return verifyTarget(p, inst.Else)
	default:
		return errors.Errorf("unknown opcode %d", int(inst.Op))
	}
}

func verifyCall(p *Program, inst Inst) error {
	f, ok := runtime.Lookup(inst.Func)
	if !ok {
		return errors.Errorf("call to unknown function %q", inst.Func)
	}
	if len(inst.Args) != len(f.Params) {
		return errors.Errorf("%s takes %d arguments, got %d", f.Name, len(f.Params), len(inst.Args))
	}
	for i, arg := range inst.Args {
		want := TypeOfKind(f.Params[i])
		if got := p.ValueType(arg); got != want {
			return errors.Errorf("%s argument %d is %s, want %s", f.Name, i+1, got, want)
		}
	}
	return nil
}

func verifyTarget(p *Program, id BlockID) error {
	if id < 0 || int(id) >= len(p.Blocks) {
		return errors.Errorf("branch to missing block b%d", id)
	}
	return nil
}
