// Package vcalc type checks and lowers VCalc programs.
//
// A program arrives as a parse tree (see BuildAST), is annotated in place by
// Typecheck and lowered to an ir.Program by Compile.
package vcalc

import (
	"strconv"
	"strings"
)

// NodeKind represents different types of AST nodes
type NodeKind string

const (
	NodeBlock     NodeKind = "NodeBlock"
	NodeIf        NodeKind = "NodeIf"
	NodeLoop      NodeKind = "NodeLoop"
	NodeDecl      NodeKind = "NodeDecl"
	NodeAssign    NodeKind = "NodeAssign"
	NodePrint     NodeKind = "NodePrint"
	NodeIdent     NodeKind = "NodeIdent"
	NodeInteger   NodeKind = "NodeInteger"
	NodeParen     NodeKind = "NodeParen"
	NodeBinary    NodeKind = "NodeBinary"
	NodeIndex     NodeKind = "NodeIndex"
	NodeRange     NodeKind = "NodeRange"
	NodeGenerator NodeKind = "NodeGenerator"
	NodeFilter    NodeKind = "NodeFilter"
)

// Type is the static type of an expression.
type Type int

const (
	TypeNone Type = iota
	TypeInt
	TypeVector
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeVector:
		return "vector"
	default:
		return "none"
	}
}

// Node represents a node in the Abstract Syntax Tree
type Node struct {
	Kind NodeKind
	Line int
	// NodeIdent:
	String string
	// NodeInteger:
	Integer int32
	// NodeBinary: "+", "-", "*", "/", "<", ">", "==", "!="
	Op string
	// NodeBlock: statements
	// NodeIf, NodeLoop: condition, body block
	// NodeDecl: name ident, type ident, optional initializer
	// NodeAssign: target ident, value
	// NodePrint, NodeParen: operand
	// NodeBinary, NodeIndex, NodeRange: left, right
	// NodeGenerator, NodeFilter: source, iterator ident, body
	Children []*Node

	// Set by Typecheck.
	Type   Type     // every expression
	Symbol SymbolID // NodeDecl, identifier uses, assignment targets, iterators
	Scope  ScopeID  // NodeBlock, comprehension iterators
}

// IsExpr reports whether the node produces a value.
func (n *Node) IsExpr() bool {
	switch n.Kind {
	case NodeIdent, NodeInteger, NodeParen, NodeBinary, NodeIndex,
		NodeRange, NodeGenerator, NodeFilter:
		return true
	default:
		return false
	}
}

// Walk calls fn for n and every descendant, parents first.
func Walk(n *Node, fn func(*Node)) {
	fn(n)
	for _, child := range n.Children {
		Walk(child, fn)
	}
}

// ToSExpr converts an AST node to s-expression string representation
func ToSExpr(node *Node) string {
	return toSExpr(node, false)
}

// ToTypedSExpr is ToSExpr with ^{type: ...} on every typed expression.
func ToTypedSExpr(node *Node) string {
	return toSExpr(node, true)
}

func toSExpr(node *Node, typed bool) string {
	var sb strings.Builder
	writeSExpr(&sb, node, typed)
	return sb.String()
}

func writeSExpr(sb *strings.Builder, node *Node, typed bool) {
	sb.WriteByte('(')
	if typed && node.Type != TypeNone {
		sb.WriteString("^{type: " + node.Type.String() + "} ")
	}
	switch node.Kind {
	case NodeIdent:
		sb.WriteString("ident " + strconv.Quote(node.String))
	case NodeInteger:
		sb.WriteString("integer " + strconv.Itoa(int(node.Integer)))
	case NodeBinary:
		sb.WriteString("binary " + strconv.Quote(node.Op))
	default:
		sb.WriteString(sexprHead(node.Kind))
	}
	for _, child := range node.Children {
		sb.WriteByte(' ')
		writeSExpr(sb, child, typed)
	}
	sb.WriteByte(')')
}

var sexprHeads = map[NodeKind]string{
	NodeBlock:     "block",
	NodeIf:        "if",
	NodeLoop:      "loop",
	NodeDecl:      "decl",
	NodeAssign:    "assign",
	NodePrint:     "print",
	NodeParen:     "paren",
	NodeIndex:     "idx",
	NodeRange:     "range",
	NodeGenerator: "generator",
	NodeFilter:    "filter",
}

func sexprHead(kind NodeKind) string {
	if head, ok := sexprHeads[kind]; ok {
		return head
	}
	return string(kind)
}
