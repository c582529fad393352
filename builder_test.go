package vcalc

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestBuildASTRoundTrip(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			`(block (decl x int 5) (print x))`,
			`(block (decl (ident "x") (ident "int") (integer 5)) (print (ident "x")))`,
		},
		{
			`(block (decl (ident "v") (ident "vector") (range (integer 1) (integer 3))))`,
			`(block (decl (ident "v") (ident "vector") (range (integer 1) (integer 3))))`,
		},
		{
			`(block (print (binary "+" (paren (binary * 2 3)) 4)))`,
			`(block (print (binary "+" (paren (binary "*" (integer 2) (integer 3))) (integer 4))))`,
		},
		{
			`(block (print (index v 0)))`,
			`(block (print (idx (ident "v") (integer 0))))`,
		},
		{
			`(block (if x (block (assign x 0))) (loop x (block)))`,
			`(block (if (ident "x") (block (assign (ident "x") (integer 0)))) (loop (ident "x") (block)))`,
		},
		{
			`(block (print (generator v i (binary "==" i 2))) (print (filter v j j)))`,
			`(block (print (generator (ident "v") (ident "i") (binary "==" (ident "i") (integer 2)))) (print (filter (ident "v") (ident "j") (ident "j"))))`,
		},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			root, err := ParseTree(test.input)
			be.Err(t, err, nil)
			be.Equal(t, ToSExpr(root), test.expected)

			again, err := ParseTree(ToSExpr(root))
			be.Err(t, err, nil)
			be.Equal(t, ToSExpr(again), test.expected)
		})
	}
}

func TestBuildASTLines(t *testing.T) {
	root, err := ParseTree("(block\n  (decl x int 1)\n  (print\n    (binary \"+\" x\n      2)))")
	be.Err(t, err, nil)
	be.Equal(t, root.Line, 1)
	be.Equal(t, root.Children[0].Line, 2)

	print := root.Children[1]
	be.Equal(t, print.Line, 3)
	binary := print.Children[0]
	be.Equal(t, binary.Line, 4)
	// Atoms carry the line they were read from.
	be.Equal(t, binary.Children[1].Line, 5)
}

func TestBuildASTLineMeta(t *testing.T) {
	root, err := ParseTree(`(block (^{line: 12} print (^{line: 13} range 1 2)))`)
	be.Err(t, err, nil)
	be.Equal(t, root.Children[0].Line, 12)
	be.Equal(t, root.Children[0].Children[0].Line, 13)
}

func TestBuildASTErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{`(print 1)`, "error: line 1: program must be a block, got (print 1)"},
		{`(block (frob 1))`, "error: line 1: expected statement, got (frob 1)"},
		{`(block (print 1 2))`, "error: line 1: print takes 1 operands, got 2"},
		{`(block (decl x))`, "error: line 1: decl takes 2 to 3 operands, got 1"},
		{`(block (print (binary "%" 1 2)))`, `error: line 1: unknown operator "%"`},
		{`(block (print 99999999999))`, "error: line 1: integer 99999999999 does not fit in 32 bits"},
		{`(block (if 1 (print 2)))`, "error: line 1: if body must be a block, got (print 2)"},
		{`(block (decl 5 int))`, "error: line 1: expected identifier, got 5"},
		{`(block (print (range 1)))`, "error: line 1: range takes 2 operands, got 1"},
		{`(block (print "x"))`, `error: line 1: expected expression, got "x"`},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			_, err := ParseTree(test.input)
			be.True(t, IsKind(err, MalformedTree))
			be.Equal(t, err.Error(), test.message)
		})
	}
}

func TestParseTreeSyntaxError(t *testing.T) {
	_, err := ParseTree("(block\n(print 1)")
	be.True(t, IsKind(err, MalformedTree))
}
