// Package vm interprets an ir.Program against the runtime library.
package vm

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/strager/vcalc/ir"
	"github.com/strager/vcalc/runtime"
)

// DefaultMaxSteps bounds execution when Options.MaxSteps is zero.
const DefaultMaxSteps = 10_000_000

// Options configures a run.
type Options struct {
	Out      io.Writer
	MaxSteps int // negative for no limit
	Logger   *slog.Logger
}

// Trap is a runtime failure of a program that compiled successfully.
type Trap struct {
	Line int
	Msg  string
}

func (t *Trap) Error() string {
	if t.Line > 0 {
		return fmt.Sprintf("trap at line %d: %s", t.Line, t.Msg)
	}
	return "trap: " + t.Msg
}

type machine struct {
	prog   *ir.Program
	env    *runtime.Env
	values []runtime.Value
	locals []runtime.Value
	steps  int
	limit  int
	log    *slog.Logger
	line   int
}

// Run executes prog from its entry block until it returns.
func Run(prog *ir.Program, opts Options) (err error) {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.MaxSteps == 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m := &machine{
		prog:   prog,
		env:    &runtime.Env{Out: opts.Out},
		values: make([]runtime.Value, len(prog.Values)+1),
		locals: make([]runtime.Value, len(prog.Locals)+1),
		limit:  opts.MaxSteps,
		log:    opts.Logger,
	}
	for i, t := range prog.Locals {
		if t == ir.Vector {
			m.locals[i+1] = runtime.VectorValue(runtime.New(0))
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err = &Trap{Line: m.line, Msg: fmt.Sprint(r)}
		}
	}()
	return m.run()
}

func (m *machine) run() error {
	block := ir.BlockID(0)
	for {
		next, done, err := m.runBlock(m.prog.Blocks[block])
		if err != nil || done {
			return err
		}
		block = next
	}
}

func (m *machine) runBlock(b *ir.Block) (ir.BlockID, bool, error) {
	m.log.Debug("enter block", "block", b.ID, "name", b.Name)
	for _, inst := range b.Insts {
		m.steps++
		if m.limit > 0 && m.steps > m.limit {
			return 0, false, &Trap{Line: inst.Line, Msg: fmt.Sprintf("step limit of %d exceeded", m.limit)}
		}
		m.line = inst.Line
		switch inst.Op {
		case ir.OpConst:
			m.values[inst.Dst] = runtime.IntValue(inst.Imm)
		case ir.OpLoad:
			m.values[inst.Dst] = m.locals[inst.Local]
		case ir.OpStore:
			m.locals[inst.Local] = m.values[inst.Args[0]]
		case ir.OpICmp:
			a, c := m.values[inst.Args[0]].Int, m.values[inst.Args[1]].Int
			var r int32
			if inst.Pred.Eval(a, c) {
				r = 1
			}
			m.values[inst.Dst] = runtime.IntValue(r)
		case ir.OpCall:
			if err := m.call(inst); err != nil {
				return 0, false, err
			}
		case ir.OpBr:
			return inst.Then, false, nil
		case ir.OpCondBr:
			if m.values[inst.Args[0]].Int != 0 {
				return inst.Then, false, nil
			}
			return inst.Else, false, nil
		case ir.OpReturn:
			return 0, true, nil
		default:
			return 0, false, errors.Errorf("vm: unknown opcode %s", inst.Op)
		}
	}
	return 0, false, errors.Errorf("vm: block b%d fell through", b.ID)
}

func (m *machine) call(inst ir.Inst) error {
	f, ok := runtime.Lookup(inst.Func)
	if !ok {
		return errors.Errorf("vm: unknown function %q", inst.Func)
	}
	args := make([]runtime.Value, len(inst.Args))
	for i, a := range inst.Args {
		args[i] = m.values[a]
	}
	result, err := f.Impl(m.env, args)
	if err != nil {
		return errors.Wrapf(err, "line %d: %s", inst.Line, f.Name)
	}
	if inst.Dst != ir.NoValue {
		m.values[inst.Dst] = result
	}
	return nil
}
