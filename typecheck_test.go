package vcalc

import (
	"testing"

	"github.com/nalgeon/be"
)

func typecheckSource(t *testing.T, src string) (*Node, *AnnotatedAST, error) {
	t.Helper()
	root, err := ParseTree(src)
	be.Err(t, err, nil)
	annotated, err := Typecheck(root, Config{})
	return root, annotated, err
}

func TestTypecheckExpressionTypes(t *testing.T) {
	tests := []struct {
		expr     string
		expected Type
	}{
		{`5`, TypeInt},
		{`n`, TypeInt},
		{`v`, TypeVector},
		{`(paren v)`, TypeVector},
		{`(binary "+" n 1)`, TypeInt},
		{`(binary "+" v 1)`, TypeVector},
		{`(binary "-" 1 v)`, TypeVector},
		{`(binary "*" v v)`, TypeVector},
		{`(binary "<" n 1)`, TypeInt},
		{`(binary "==" v 1)`, TypeVector},
		{`(binary "!=" 1 v)`, TypeVector},
		{`(range 1 n)`, TypeVector},
		{`(idx v 0)`, TypeInt},
		{`(idx v v)`, TypeVector},
		{`(generator v i (binary "*" i i))`, TypeVector},
		{`(filter v i (binary ">" i 1))`, TypeVector},
	}

	for _, test := range tests {
		t.Run(test.expr, func(t *testing.T) {
			root, _, err := typecheckSource(t, `(block (decl n int 3) (decl v vector (range 1 3)) (print `+test.expr+`))`)
			be.Err(t, err, nil)
			expr := root.Children[2].Children[0]
			be.Equal(t, expr.Type, test.expected)
		})
	}
}

func TestTypecheckErrors(t *testing.T) {
	tests := []struct {
		src     string
		kind    ErrorKind
		message string
	}{
		{
			"(block (decl x float 1))",
			UnknownType, "error: line 1: unknown type 'float'",
		},
		{
			"(block (decl x int)\n(decl x vector))",
			DuplicateDeclaration, "error: line 2: variable 'x' already declared",
		},
		{
			"(block (print y))",
			UndefinedVariable, "error: line 1: undefined variable 'y'",
		},
		{
			"(block (assign y 1))",
			UndefinedVariable, "error: line 1: undefined variable 'y'",
		},
		{
			"(block (print int))",
			UndefinedVariable, "error: line 1: 'int' is a type, not a variable",
		},
		{
			"(block (decl x int (range 1 2)))",
			TypeMismatch, "error: line 1: cannot assign vector to int variable 'x'",
		},
		{
			"(block (decl v vector 1))",
			TypeMismatch, "error: line 1: cannot assign int to vector variable 'v'",
		},
		{
			"(block (decl v vector)\n(if v (block)))",
			TypeMismatch, "error: line 2: condition must be int, got vector",
		},
		{
			"(block (decl v vector) (loop v (block)))",
			TypeMismatch, "error: line 1: condition must be int, got vector",
		},
		{
			"(block (decl v vector) (print (range v 3)))",
			TypeMismatch, "error: line 1: range values must be int, got vector..int",
		},
		{
			"(block (print (idx 1 2)))",
			TypeMismatch, "error: line 1: indexed value must be a vector, got int",
		},
		{
			"(block (print (generator 3 i i)))",
			TypeMismatch, "error: line 1: iterator source must be a vector, got int",
		},
		{
			"(block (decl v vector) (print (filter v i j)))",
			UndefinedVariable, "error: line 1: undefined variable 'j'",
		},
	}

	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			_, _, err := typecheckSource(t, test.src)
			be.True(t, IsKind(err, test.kind))
			be.Equal(t, err.Error(), test.message)
		})
	}
}

func TestTypecheckShadowing(t *testing.T) {
	root, annotated, err := typecheckSource(t, `(block
  (decl x int 1)
  (block
    (decl x vector (range 1 2))
    (print x))
  (print x))`)
	be.Err(t, err, nil)

	inner := root.Children[1].Children[1].Children[0]
	outer := root.Children[2].Children[0]
	be.Equal(t, inner.Type, TypeVector)
	be.Equal(t, outer.Type, TypeInt)
	be.True(t, inner.Symbol != outer.Symbol)
	be.Equal(t, annotated.Symbols.Symbol(outer.Symbol).Scope, root.Scope)
}

func TestTypecheckBlockScopeEnds(t *testing.T) {
	_, _, err := typecheckSource(t, "(block\n(block (decl x int 1))\n(print x))")
	be.True(t, IsKind(err, UndefinedVariable))
	be.Equal(t, err.Error(), "error: line 3: undefined variable 'x'")
}

func TestTypecheckIteratorScope(t *testing.T) {
	root, annotated, err := typecheckSource(t, `(block
  (decl i vector (range 1 3))
  (print (generator i i (binary "+" i 1)))
  (print i))`)
	be.Err(t, err, nil)

	gen := root.Children[1].Children[0]
	source, iter, body := gen.Children[0], gen.Children[1], gen.Children[2]
	be.Equal(t, source.Type, TypeVector)
	be.Equal(t, body.Type, TypeInt)
	be.Equal(t, body.Children[0].Symbol, iter.Symbol)
	be.True(t, source.Symbol != iter.Symbol)

	st := annotated.Symbols
	be.Equal(t, st.Parent(iter.Scope), root.Scope)
	be.Equal(t, st.Symbol(iter.Symbol).Type, TypeInt)
	be.Equal(t, st.Symbol(st.Symbol(iter.Symbol).TypeSymbol).Name, "int")

	// The iterator is gone after the comprehension.
	be.Equal(t, root.Children[2].Children[0].Type, TypeVector)
}

func TestTypecheckInitializerSeesDeclaredVariable(t *testing.T) {
	root, _, err := typecheckSource(t, `(block (decl x int x))`)
	be.Err(t, err, nil)
	decl := root.Children[0]
	be.Equal(t, decl.Children[2].Symbol, decl.Symbol)
}

func TestTypecheckVariableNamedAfterType(t *testing.T) {
	// The built-in types share the outermost scope with its variables.
	_, _, err := typecheckSource(t, "(block (decl int vector))")
	be.True(t, IsKind(err, DuplicateDeclaration))

	// In a nested block a variable may take a type's name, hiding the type.
	_, _, err = typecheckSource(t, "(block (block (decl int vector) (print int)))")
	be.Err(t, err, nil)

	_, _, err = typecheckSource(t, "(block (block (decl int int 1)\n(decl y int 2)))")
	be.True(t, IsKind(err, UnknownType))
	be.Equal(t, err.Error(), "error: line 2: unknown type 'int'")
}

func TestTypecheckVectorComprehensionBody(t *testing.T) {
	root, _, err := typecheckSource(t, `(block (decl v vector (range 1 2)) (print (generator v i v)))`)
	be.Err(t, err, nil)
	gen := root.Children[1].Children[0]
	be.Equal(t, gen.Type, TypeVector)
	be.Equal(t, gen.Children[2].Type, TypeVector)
}

func TestTypecheckEveryExpressionTyped(t *testing.T) {
	root, _, err := typecheckSource(t, `(block
  (decl v vector (range 1 10))
  (decl n int (idx v 2))
  (if (binary "<" n 5) (block (assign v (binary "*" v n))))
  (loop n (block (assign n (binary "-" n 1))))
  (print (filter (generator v i (binary "/" i 2)) j (paren (binary "!=" j 0)))))`)
	be.Err(t, err, nil)

	Walk(root, func(n *Node) {
		if n.IsExpr() && n.Kind != NodeIdent {
			be.True(t, n.Type != TypeNone)
		}
		if !n.IsExpr() {
			be.Equal(t, n.Type, TypeNone)
		}
	})
}

func TestTypecheckIsIdempotent(t *testing.T) {
	root, err := ParseTree(`(block
  (decl v vector (range 1 3))
  (block (decl v int 2) (print v))
  (print (filter v i (binary ">" i 1))))`)
	be.Err(t, err, nil)

	_, err = Typecheck(root, Config{})
	be.Err(t, err, nil)
	first := ToTypedSExpr(root)
	var symbols []SymbolID
	Walk(root, func(n *Node) { symbols = append(symbols, n.Symbol) })

	_, err = Typecheck(root, Config{})
	be.Err(t, err, nil)
	be.Equal(t, ToTypedSExpr(root), first)
	var again []SymbolID
	Walk(root, func(n *Node) { again = append(again, n.Symbol) })
	be.Equal(t, again, symbols)
}

func TestTypecheckRejectsNonBlock(t *testing.T) {
	_, err := Typecheck(&Node{Kind: NodePrint}, Config{})
	be.True(t, IsKind(err, MalformedTree))
	_, err = Typecheck(nil, Config{})
	be.True(t, IsKind(err, MalformedTree))
}
