package vcalc

import (
	"fmt"

	"github.com/strager/vcalc/ir"
	"github.com/strager/vcalc/runtime"
)

type generator struct {
	em    ir.Emitter
	st    *SymbolTable
	cfg   Config
	stack []ir.Value
}

func (g *generator) push(v ir.Value) {
	g.stack = append(g.stack, v)
}

func (g *generator) pop() ir.Value {
	if len(g.stack) == 0 {
		panic("codegen: value stack underflow")
	}
	v := g.stack[len(g.stack)-1]
	g.stack = g.stack[:len(g.stack)-1]
	return v
}

func irType(t Type) ir.Type {
	switch t {
	case TypeInt:
		return ir.Int
	case TypeVector:
		return ir.Vector
	default:
		panic(fmt.Sprintf("codegen: no storage for type %s", t))
	}
}

func (g *generator) at(n *Node) {
	g.cfg.trace("codegen", n)
	g.em.SetLine(n.Line)
}

func (g *generator) block(n *Node) {
	g.at(n)
	g.st.Reenter(n.Scope)
	for _, child := range n.Children {
		g.statement(child)
	}
	g.st.Exit()
}

func (g *generator) statement(n *Node) {
	switch n.Kind {
	case NodeBlock:
		g.block(n)

	case NodeDecl:
		g.at(n)
		sym := g.st.Symbol(n.Symbol)
		sym.Storage = g.em.AllocLocal(irType(sym.Type))
		if len(n.Children) == 3 {
			g.assign(sym, n.Children[2])
			return
		}
		if sym.Type == TypeVector {
			g.em.Store(sym.Storage, g.em.Call("vector_new", g.em.Const(0)))
		} else {
			g.em.Store(sym.Storage, g.em.Const(0))
		}

	case NodeAssign:
		g.at(n)
		g.assign(g.st.Symbol(n.Children[0].Symbol), n.Children[1])

	case NodeIf:
		g.at(n)
		then := g.em.NewBlock("if.then")
		merge := g.em.NewBlock("if.merge")
		g.em.CondBr(g.condition(n.Children[0]), then, merge)
		g.em.SetBlock(then)
		g.block(n.Children[1])
		g.em.Br(merge)
		g.em.SetBlock(merge)

	case NodeLoop:
		g.at(n)
		header := g.em.NewBlock("loop.header")
		body := g.em.NewBlock("loop.body")
		merge := g.em.NewBlock("loop.merge")
		g.em.Br(header)
		g.em.SetBlock(header)
		g.em.CondBr(g.condition(n.Children[0]), body, merge)
		g.em.SetBlock(body)
		g.block(n.Children[1])
		g.em.Br(header)
		g.em.SetBlock(merge)

	case NodePrint:
		g.at(n)
		operand := n.Children[0]
		g.expr(operand)
		if operand.Type == TypeVector {
			g.em.Call("print_vector", g.pop())
		} else {
			g.em.Call("print_int", g.pop())
		}

	default:
		panic(fmt.Sprintf("codegen: unexpected statement %s", n.Kind))
	}
}

func (g *generator) assign(sym *Symbol, value *Node) {
	local := sym.Storage
	g.expr(value)
	g.em.Store(local, g.pop())
}

// condition lowers an int expression to a nonzero test.
func (g *generator) condition(n *Node) ir.Value {
	g.expr(n)
	return g.em.ICmp(ir.PredNE, g.pop(), g.em.Const(0))
}

func (g *generator) expr(n *Node) {
	g.at(n)
	switch n.Kind {
	case NodeIdent:
		g.push(g.em.Load(g.st.Symbol(n.Symbol).Storage))

	case NodeInteger:
		g.push(g.em.Const(n.Integer))

	case NodeParen:
		g.expr(n.Children[0])

	case NodeBinary:
		op, ok := runtime.OpFromSymbol(n.Op)
		if !ok {
			panic(fmt.Sprintf("codegen: unknown operator %q", n.Op))
		}
		g.binary(op, n.Children[0], n.Children[1])

	case NodeRange:
		g.expr(n.Children[0])
		g.expr(n.Children[1])
		hi, lo := g.pop(), g.pop()
		g.push(g.em.Call("vector_range", lo, hi))

	case NodeIndex:
		g.expr(n.Children[0])
		g.expr(n.Children[1])
		idx, vec := g.pop(), g.pop()
		if n.Children[1].Type == TypeInt {
			g.push(g.em.Call("vector_index", vec, idx))
		} else {
			g.push(g.em.Call("vector_index_vector", vec, idx))
		}

	case NodeGenerator, NodeFilter:
		g.comprehension(n)

	default:
		panic(fmt.Sprintf("codegen: unexpected expression %s", n.Kind))
	}
}

// binary picks the primitive from the operands' static types. A scalar
// operand of a vector operation is promoted to the vector's size and the
// promoted copy is freed once used.
func (g *generator) binary(op runtime.Op, left, right *Node) {
	g.expr(left)
	g.expr(right)
	r, l := g.pop(), g.pop()

	switch {
	case left.Type == TypeInt && right.Type == TypeInt:
		g.push(g.em.Call(op.ScalarFunc(), l, r))
	case left.Type == TypeVector && right.Type == TypeInt:
		tmp := g.em.Call("int_to_vector", g.em.Call("vector_size", l), r)
		g.push(g.em.Call(op.VectorFunc(), l, tmp))
		g.em.Call("vector_free", tmp)
	case left.Type == TypeInt && right.Type == TypeVector:
		tmp := g.em.Call("int_to_vector", g.em.Call("vector_size", r), l)
		g.push(g.em.Call(op.VectorFunc(), tmp, r))
		g.em.Call("vector_free", tmp)
	case left.Type == TypeVector && right.Type == TypeVector:
		g.push(g.em.Call(op.VectorFunc(), l, r))
	default:
		panic(fmt.Sprintf("codegen: operands of %s typed %s and %s", op, left.Type, right.Type))
	}
}

// comprehension lowers a generator or filter to a counted loop over the
// source vector.
func (g *generator) comprehension(n *Node) {
	source, iter, body := n.Children[0], n.Children[1], n.Children[2]
	g.expr(source)
	src := g.pop()
	size := g.em.Call("vector_size", src)

	var result ir.Value
	if n.Kind == NodeGenerator {
		result = g.em.Call("vector_new", size)
	} else {
		result = g.em.Call("vector_reserve", size)
	}

	g.st.Reenter(iter.Scope)
	sym := g.st.Symbol(iter.Symbol)
	sym.Storage = g.em.AllocLocal(ir.Int)
	slot := sym.Storage

	g.em.ForLoop(g.em.Const(0), size, g.em.Const(1), func(iv ir.Value) {
		elem := g.em.Call("vector_index", src, iv)
		g.em.Store(slot, elem)
		g.expr(body)
		value := g.pop()
		g.at(n)
		if n.Kind == NodeGenerator {
			g.em.Call("vector_store", result, iv, value)
			return
		}
		keep := g.em.NewBlock("filter.keep")
		next := g.em.NewBlock("filter.next")
		g.em.CondBr(g.em.ICmp(ir.PredNE, value, g.em.Const(0)), keep, next)
		g.em.SetBlock(keep)
		g.em.Call("vector_append", result, elem)
		g.em.Br(next)
		g.em.SetBlock(next)
	})
	g.st.Exit()

	g.push(result)
}
