package vcalc

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a CompileError.
type ErrorKind string

const (
	UnknownType          ErrorKind = "UnknownType"
	DuplicateDeclaration ErrorKind = "DuplicateDeclaration"
	UndefinedVariable    ErrorKind = "UndefinedVariable"
	TypeMismatch         ErrorKind = "TypeMismatch"
	BackendFailure       ErrorKind = "BackendFailure"
	MalformedTree        ErrorKind = "MalformedTree"
)

// CompileError is the error returned by BuildAST, Typecheck and Compile.
// Every CompileError stops compilation.
type CompileError struct {
	Kind ErrorKind
	Line int
	Msg  string
	Err  error // underlying cause, if any
}

func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("error: line %d: %s", e.Line, e.Msg)
	}
	return "error: " + e.Msg
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a CompileError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *CompileError
	return errors.As(err, &ce) && ce.Kind == kind
}

func compileErrorf(kind ErrorKind, line int, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Line: line, Msg: fmt.Sprintf(format, args...)}
}
