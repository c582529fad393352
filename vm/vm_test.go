package vm

import (
	"errors"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/strager/vcalc/ir"
)

func finish(t *testing.T, b *ir.Builder) *ir.Program {
	t.Helper()
	prog, err := b.Finish()
	be.Err(t, err, nil)
	return prog
}

func TestRunPrintsRange(t *testing.T) {
	b := ir.NewBuilder()
	v := b.Call("vector_range", b.Const(1), b.Const(4))
	b.Call("print_vector", v)
	b.Call("print_int", b.Call("vector_size", v))
	b.Return()

	var out strings.Builder
	err := Run(finish(t, b), Options{Out: &out})
	be.Err(t, err, nil)
	be.Equal(t, out.String(), "[1 2 3 4]\n4\n")
}

func TestRunForLoop(t *testing.T) {
	b := ir.NewBuilder()
	b.ForLoop(b.Const(0), b.Const(3), b.Const(1), func(iv ir.Value) {
		b.Call("print_int", iv)
	})
	b.Return()

	var out strings.Builder
	be.Err(t, Run(finish(t, b), Options{Out: &out}), nil)
	be.Equal(t, out.String(), "0\n1\n2\n")
}

func TestRunCondBr(t *testing.T) {
	b := ir.NewBuilder()
	then := b.NewBlock("then")
	merge := b.NewBlock("merge")
	b.CondBr(b.ICmp(ir.PredNE, b.Const(0), b.Const(0)), then, merge)
	b.SetBlock(then)
	b.Call("print_int", b.Const(1))
	b.Br(merge)
	b.SetBlock(merge)
	b.Call("print_int", b.Const(2))
	b.Return()

	var out strings.Builder
	be.Err(t, Run(finish(t, b), Options{Out: &out}), nil)
	be.Equal(t, out.String(), "2\n")
}

func TestRunVectorLocalsStartEmpty(t *testing.T) {
	b := ir.NewBuilder()
	v := b.AllocLocal(ir.Vector)
	b.Call("print_vector", b.Load(v))
	b.Return()

	var out strings.Builder
	be.Err(t, Run(finish(t, b), Options{Out: &out}), nil)
	be.Equal(t, out.String(), "[]\n")
}

func TestRunDivideByZeroTraps(t *testing.T) {
	b := ir.NewBuilder()
	b.SetLine(4)
	b.Call("print_int", b.Call("int_div", b.Const(1), b.Const(0)))
	b.Return()

	err := Run(finish(t, b), Options{})
	var trap *Trap
	be.True(t, errors.As(err, &trap))
	be.Equal(t, trap.Line, 4)
	be.True(t, strings.Contains(trap.Error(), "divide by zero"))
}

func TestRunStepLimit(t *testing.T) {
	b := ir.NewBuilder()
	loop := b.NewBlock("loop")
	b.Br(loop)
	b.SetBlock(loop)
	b.Br(loop)

	err := Run(finish(t, b), Options{MaxSteps: 100})
	var trap *Trap
	be.True(t, errors.As(err, &trap))
	be.Equal(t, trap.Msg, "step limit of 100 exceeded")
}
