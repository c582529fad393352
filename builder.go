package vcalc

import (
	"strconv"

	"github.com/strager/vcalc/runtime"
	"github.com/strager/vcalc/sexy"
)

// ParseTree parses parse-tree text and builds the AST from it.
func ParseTree(src string) (*Node, error) {
	tree, err := sexy.Parse(src)
	if err != nil {
		return nil, &CompileError{Kind: MalformedTree, Msg: err.Error(), Err: err}
	}
	return BuildAST(tree)
}

// BuildAST converts a parse tree into an AST. The root must be a block.
//
// Identifiers may be written (ident "x") or as a bare symbol x, and
// integers as (integer 5) or a bare 5. A ^{line: N} entry on a list
// overrides the line the list was read from; nodes without either inherit
// their parent's line.
func BuildAST(tree *sexy.Node) (*Node, error) {
	b := &astBuilder{}
	if tree.Head() != "block" {
		return nil, b.errorf(tree, 0, "program must be a block, got %s", tree)
	}
	return b.statement(tree, 0)
}

type astBuilder struct{}

func (b *astBuilder) errorf(tree *sexy.Node, parentLine int, format string, args ...any) error {
	return compileErrorf(MalformedTree, b.line(tree, parentLine), format, args...)
}

func (b *astBuilder) line(tree *sexy.Node, parentLine int) int {
	if meta, ok := tree.Meta("line"); ok && meta.Type == sexy.NodeInteger {
		if n, err := strconv.Atoi(meta.Text); err == nil {
			return n
		}
	}
	if tree.Line > 0 {
		return tree.Line
	}
	return parentLine
}

func (b *astBuilder) args(tree *sexy.Node, parentLine int, min, max int) ([]*sexy.Node, error) {
	args := tree.Items[1:]
	if len(args) < min || len(args) > max {
		if min == max {
			return nil, b.errorf(tree, parentLine, "%s takes %d operands, got %d", tree.Head(), min, len(args))
		}
		return nil, b.errorf(tree, parentLine, "%s takes %d to %d operands, got %d", tree.Head(), min, max, len(args))
	}
	return args, nil
}

func (b *astBuilder) statement(tree *sexy.Node, parentLine int) (*Node, error) {
	line := b.line(tree, parentLine)
	switch tree.Head() {
	case "block":
		node := &Node{Kind: NodeBlock, Line: line}
		for _, item := range tree.Items[1:] {
			stmt, err := b.statement(item, line)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, stmt)
		}
		return node, nil

	case "if", "loop":
		args, err := b.args(tree, parentLine, 2, 2)
		if err != nil {
			return nil, err
		}
		cond, err := b.expr(args[0], line)
		if err != nil {
			return nil, err
		}
		if args[1].Head() != "block" {
			return nil, b.errorf(args[1], line, "%s body must be a block, got %s", tree.Head(), args[1])
		}
		body, err := b.statement(args[1], line)
		if err != nil {
			return nil, err
		}
		kind := NodeIf
		if tree.Head() == "loop" {
			kind = NodeLoop
		}
		return &Node{Kind: kind, Line: line, Children: []*Node{cond, body}}, nil

	case "decl":
		args, err := b.args(tree, parentLine, 2, 3)
		if err != nil {
			return nil, err
		}
		name, err := b.ident(args[0], line)
		if err != nil {
			return nil, err
		}
		typ, err := b.ident(args[1], line)
		if err != nil {
			return nil, err
		}
		node := &Node{Kind: NodeDecl, Line: line, Children: []*Node{name, typ}}
		if len(args) == 3 {
			init, err := b.expr(args[2], line)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, init)
		}
		return node, nil

	case "assign":
		args, err := b.args(tree, parentLine, 2, 2)
		if err != nil {
			return nil, err
		}
		target, err := b.ident(args[0], line)
		if err != nil {
			return nil, err
		}
		value, err := b.expr(args[1], line)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: NodeAssign, Line: line, Children: []*Node{target, value}}, nil

	case "print":
		args, err := b.args(tree, parentLine, 1, 1)
		if err != nil {
			return nil, err
		}
		value, err := b.expr(args[0], line)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: NodePrint, Line: line, Children: []*Node{value}}, nil

	default:
		return nil, b.errorf(tree, parentLine, "expected statement, got %s", tree)
	}
}

func (b *astBuilder) ident(tree *sexy.Node, parentLine int) (*Node, error) {
	line := b.line(tree, parentLine)
	if tree.Type == sexy.NodeSymbol {
		return &Node{Kind: NodeIdent, Line: line, String: tree.Text}, nil
	}
	if tree.Head() == "ident" {
		args, err := b.args(tree, parentLine, 1, 1)
		if err != nil {
			return nil, err
		}
		if args[0].Type != sexy.NodeString && args[0].Type != sexy.NodeSymbol {
			return nil, b.errorf(tree, parentLine, "identifier name must be a string, got %s", args[0])
		}
		return &Node{Kind: NodeIdent, Line: line, String: args[0].Text}, nil
	}
	return nil, b.errorf(tree, parentLine, "expected identifier, got %s", tree)
}

func (b *astBuilder) integer(tree *sexy.Node, parentLine int) (*Node, error) {
	n, err := strconv.ParseInt(tree.Text, 10, 32)
	if err != nil {
		return nil, b.errorf(tree, parentLine, "integer %s does not fit in 32 bits", tree.Text)
	}
	return &Node{Kind: NodeInteger, Line: b.line(tree, parentLine), Integer: int32(n)}, nil
}

func (b *astBuilder) expr(tree *sexy.Node, parentLine int) (*Node, error) {
	line := b.line(tree, parentLine)
	switch tree.Type {
	case sexy.NodeInteger:
		return b.integer(tree, parentLine)
	case sexy.NodeSymbol:
		return b.ident(tree, parentLine)
	case sexy.NodeList:
	default:
		return nil, b.errorf(tree, parentLine, "expected expression, got %s", tree)
	}

	switch tree.Head() {
	case "ident":
		return b.ident(tree, parentLine)

	case "integer":
		args, err := b.args(tree, parentLine, 1, 1)
		if err != nil {
			return nil, err
		}
		if args[0].Type != sexy.NodeInteger {
			return nil, b.errorf(tree, parentLine, "expected integer literal, got %s", args[0])
		}
		node, err := b.integer(args[0], line)
		if err != nil {
			return nil, err
		}
		node.Line = line
		return node, nil

	case "paren":
		args, err := b.args(tree, parentLine, 1, 1)
		if err != nil {
			return nil, err
		}
		inner, err := b.expr(args[0], line)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: NodeParen, Line: line, Children: []*Node{inner}}, nil

	case "binary":
		args, err := b.args(tree, parentLine, 3, 3)
		if err != nil {
			return nil, err
		}
		if args[0].Type != sexy.NodeString && args[0].Type != sexy.NodeSymbol {
			return nil, b.errorf(tree, parentLine, "operator must be a string, got %s", args[0])
		}
		op := args[0].Text
		if _, ok := runtime.OpFromSymbol(op); !ok {
			return nil, b.errorf(tree, parentLine, "unknown operator %q", op)
		}
		children, err := b.exprs(args[1:], line)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: NodeBinary, Line: line, Op: op, Children: children}, nil

	case "range", "idx", "index":
		args, err := b.args(tree, parentLine, 2, 2)
		if err != nil {
			return nil, err
		}
		children, err := b.exprs(args, line)
		if err != nil {
			return nil, err
		}
		kind := NodeIndex
		if tree.Head() == "range" {
			kind = NodeRange
		}
		return &Node{Kind: kind, Line: line, Children: children}, nil

	case "generator", "filter":
		args, err := b.args(tree, parentLine, 3, 3)
		if err != nil {
			return nil, err
		}
		source, err := b.expr(args[0], line)
		if err != nil {
			return nil, err
		}
		iter, err := b.ident(args[1], line)
		if err != nil {
			return nil, err
		}
		body, err := b.expr(args[2], line)
		if err != nil {
			return nil, err
		}
		kind := NodeGenerator
		if tree.Head() == "filter" {
			kind = NodeFilter
		}
		return &Node{Kind: kind, Line: line, Children: []*Node{source, iter, body}}, nil

	default:
		return nil, b.errorf(tree, parentLine, "expected expression, got %s", tree)
	}
}

func (b *astBuilder) exprs(trees []*sexy.Node, parentLine int) ([]*Node, error) {
	nodes := make([]*Node, len(trees))
	for i, tree := range trees {
		node, err := b.expr(tree, parentLine)
		if err != nil {
			return nil, err
		}
		nodes[i] = node
	}
	return nodes, nil
}
