package vcalc

import (
	"errors"
	"io"
	"log/slog"

	"github.com/strager/vcalc/ir"
)

// Config controls a single compilation. The zero value is ready to use.
type Config struct {
	// Logger receives trace events. Nil discards them.
	Logger *slog.Logger
	// Trace logs every node visited by the checker and the generator.
	Trace bool
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (c Config) trace(pass string, n *Node) {
	if c.Trace {
		c.logger().Debug("visit", "pass", pass, "kind", n.Kind, "line", n.Line)
	}
}

// AnnotatedAST is a type checked program together with the scopes and
// symbols its annotations refer to.
type AnnotatedAST struct {
	Root    *Node
	Symbols *SymbolTable
}

// Typecheck resolves names and assigns a type to every expression of root,
// writing the annotations into the tree. It returns the first error found.
// Checking the same tree again yields the same annotations.
func Typecheck(root *Node, cfg Config) (*AnnotatedAST, error) {
	if root == nil || root.Kind != NodeBlock {
		return nil, compileErrorf(MalformedTree, 0, "program must be a block")
	}
	c := &checker{st: NewSymbolTable(), cfg: cfg}
	if err := c.block(root); err != nil {
		return nil, err
	}
	return &AnnotatedAST{Root: root, Symbols: c.st}, nil
}

// Compile type checks root and lowers it to an instruction stream.
func Compile(root *Node, cfg Config) (*ir.Program, error) {
	annotated, err := Typecheck(root, cfg)
	if err != nil {
		return nil, err
	}
	return Generate(annotated, ir.NewBuilder(), cfg)
}

// CompileSource parses parse-tree text and compiles it.
func CompileSource(src string, cfg Config) (*ir.Program, error) {
	root, err := ParseTree(src)
	if err != nil {
		return nil, err
	}
	return Compile(root, cfg)
}

// Generate lowers a type checked program through em. Verification
// failures reported by em.Finish become BackendFailure errors.
func Generate(annotated *AnnotatedAST, em ir.Emitter, cfg Config) (*ir.Program, error) {
	g := &generator{em: em, st: annotated.Symbols, cfg: cfg}
	g.block(annotated.Root)
	em.Return()
	prog, err := em.Finish()
	if err != nil {
		line := 0
		var verr *ir.VerifyError
		if errors.As(err, &verr) {
			line = verr.Line
		}
		return nil, &CompileError{Kind: BackendFailure, Line: line, Msg: err.Error(), Err: err}
	}
	return prog, nil
}
