package vcalc

import (
	"fmt"

	"github.com/strager/vcalc/runtime"
)

type checker struct {
	st      *SymbolTable
	cfg     Config
	intType SymbolID // the global "int" symbol, for comprehension iterators
}

func (c *checker) block(n *Node) error {
	c.cfg.trace("typecheck", n)
	if c.st.Current() == 0 {
		c.st.Enter()
		c.intType = c.defineBuiltin("int", TypeInt)
		c.defineBuiltin("vector", TypeVector)
	} else {
		c.st.Enter()
	}
	n.Scope = c.st.Current()
	defer c.st.Exit()

	for _, child := range n.Children {
		if err := c.statement(child); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) defineBuiltin(name string, t Type) SymbolID {
	id, err := c.st.Define(Symbol{Name: name, Kind: SymbolBuiltinType, Type: t})
	if err != nil {
		panic(err)
	}
	return id
}

func (c *checker) statement(n *Node) error {
	switch n.Kind {
	case NodeBlock:
		return c.block(n)
	case NodeDecl:
		return c.decl(n)
	case NodeAssign:
		c.cfg.trace("typecheck", n)
		id, err := c.variable(n.Children[0])
		if err != nil {
			return err
		}
		return c.assignTo(id, n.Children[1], n.Line)
	case NodeIf, NodeLoop:
		c.cfg.trace("typecheck", n)
		t, err := c.expr(n.Children[0])
		if err != nil {
			return err
		}
		if t != TypeInt {
			return compileErrorf(TypeMismatch, n.Line, "condition must be int, got %s", t)
		}
		return c.block(n.Children[1])
	case NodePrint:
		c.cfg.trace("typecheck", n)
		_, err := c.expr(n.Children[0])
		return err
	default:
		panic(fmt.Sprintf("typecheck: unexpected statement %s", n.Kind))
	}
}

func (c *checker) decl(n *Node) error {
	c.cfg.trace("typecheck", n)
	name, typeName := n.Children[0], n.Children[1]

	typeID, ok := c.st.Resolve(typeName.String)
	if !ok || c.st.Symbol(typeID).Kind != SymbolBuiltinType {
		return compileErrorf(UnknownType, n.Line, "unknown type '%s'", typeName.String)
	}
	if _, exists := c.st.ResolveLocal(name.String); exists {
		return compileErrorf(DuplicateDeclaration, n.Line, "variable '%s' already declared", name.String)
	}

	id, err := c.st.Define(Symbol{
		Name:       name.String,
		Kind:       SymbolVariable,
		Type:       c.st.Symbol(typeID).Type,
		TypeSymbol: typeID,
	})
	if err != nil {
		return &CompileError{Kind: DuplicateDeclaration, Line: n.Line, Msg: err.Error(), Err: err}
	}
	n.Symbol = id
	name.Symbol = id

	// The variable is already in scope while its initializer is checked.
	if len(n.Children) == 3 {
		return c.assignTo(id, n.Children[2], n.Line)
	}
	return nil
}

func (c *checker) assignTo(id SymbolID, value *Node, line int) error {
	t, err := c.expr(value)
	if err != nil {
		return err
	}
	sym := c.st.Symbol(id)
	if t != sym.Type {
		return compileErrorf(TypeMismatch, line, "cannot assign %s to %s variable '%s'", t, sym.Type, sym.Name)
	}
	return nil
}

// variable resolves an identifier that must name a variable.
func (c *checker) variable(ident *Node) (SymbolID, error) {
	id, ok := c.st.Resolve(ident.String)
	if !ok {
		return 0, compileErrorf(UndefinedVariable, ident.Line, "undefined variable '%s'", ident.String)
	}
	if c.st.Symbol(id).Kind != SymbolVariable {
		return 0, compileErrorf(UndefinedVariable, ident.Line, "'%s' is a type, not a variable", ident.String)
	}
	ident.Symbol = id
	return id, nil
}

func (c *checker) expr(n *Node) (Type, error) {
	c.cfg.trace("typecheck", n)
	t, err := c.exprType(n)
	if err != nil {
		return TypeNone, err
	}
	n.Type = t
	return t, nil
}

func (c *checker) exprType(n *Node) (Type, error) {
	switch n.Kind {
	case NodeIdent:
		id, err := c.variable(n)
		if err != nil {
			return TypeNone, err
		}
		return c.st.Symbol(id).Type, nil

	case NodeInteger:
		return TypeInt, nil

	case NodeParen:
		return c.expr(n.Children[0])

	case NodeBinary:
		left, right, err := c.operands(n)
		if err != nil {
			return TypeNone, err
		}
		op, ok := runtime.OpFromSymbol(n.Op)
		if !ok {
			panic(fmt.Sprintf("typecheck: unknown operator %q", n.Op))
		}
		if op.IsComparison() {
			if left == TypeVector || right == TypeVector {
				return TypeVector, nil
			}
			return TypeInt, nil
		}
		if left == right {
			return left, nil
		}
		return TypeVector, nil

	case NodeRange:
		left, right, err := c.operands(n)
		if err != nil {
			return TypeNone, err
		}
		if left != TypeInt || right != TypeInt {
			return TypeNone, compileErrorf(TypeMismatch, n.Line, "range values must be int, got %s..%s", left, right)
		}
		return TypeVector, nil

	case NodeIndex:
		left, right, err := c.operands(n)
		if err != nil {
			return TypeNone, err
		}
		if left != TypeVector {
			return TypeNone, compileErrorf(TypeMismatch, n.Line, "indexed value must be a vector, got %s", left)
		}
		return right, nil

	case NodeGenerator, NodeFilter:
		source, iter, body := n.Children[0], n.Children[1], n.Children[2]
		t, err := c.expr(source)
		if err != nil {
			return TypeNone, err
		}
		if t != TypeVector {
			return TypeNone, compileErrorf(TypeMismatch, n.Line, "iterator source must be a vector, got %s", t)
		}

		c.st.Enter()
		defer c.st.Exit()
		id, err := c.st.Define(Symbol{
			Name:       iter.String,
			Kind:       SymbolVariable,
			Type:       TypeInt,
			TypeSymbol: c.intType,
		})
		if err != nil {
			panic(err)
		}
		iter.Symbol = id
		iter.Scope = c.st.Current()

		// The body may be a vector. Lowering rejects that case.
		if _, err := c.expr(body); err != nil {
			return TypeNone, err
		}
		return TypeVector, nil

	default:
		panic(fmt.Sprintf("typecheck: unexpected expression %s", n.Kind))
	}
}

func (c *checker) operands(n *Node) (Type, Type, error) {
	left, err := c.expr(n.Children[0])
	if err != nil {
		return TypeNone, TypeNone, err
	}
	right, err := c.expr(n.Children[1])
	if err != nil {
		return TypeNone, TypeNone, err
	}
	return left, right, nil
}
