package runtime

import (
	"io"
	"sort"
)

// Kind is the runtime representation of a value.
type Kind int

const (
	KindVoid Kind = iota
	KindInt
	KindVector
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindInt:
		return "int"
	case KindVector:
		return "vector"
	default:
		return "unknown"
	}
}

// Value is an argument to or result of a library call.
type Value struct {
	Int int32
	Vec *Vector
}

// IntValue wraps an integer.
func IntValue(x int32) Value { return Value{Int: x} }

// VectorValue wraps a vector.
func VectorValue(v *Vector) Value { return Value{Vec: v} }

// Env is what library functions may touch besides their arguments.
type Env struct {
	Out io.Writer
}

// Func is one entry of the runtime library.
type Func struct {
	Name   string
	Params []Kind
	Result Kind
	Impl   func(env *Env, args []Value) (Value, error)
}

var library = map[string]*Func{}

func register(name string, result Kind, impl func(env *Env, args []Value) (Value, error), params ...Kind) {
	if _, dup := library[name]; dup {
		panic("runtime: duplicate library function " + name)
	}
	library[name] = &Func{Name: name, Params: params, Result: result, Impl: impl}
}

// Lookup finds a library function by its stable name.
func Lookup(name string) (*Func, bool) {
	f, ok := library[name]
	return f, ok
}

// Names lists every library function, sorted.
func Names() []string {
	names := make([]string, 0, len(library))
	for name := range library {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	for _, op := range Ops {
		op := op
		register(op.ScalarFunc(), KindInt, func(_ *Env, args []Value) (Value, error) {
			return IntValue(Apply(op, args[0].Int, args[1].Int)), nil
		}, KindInt, KindInt)
		register(op.VectorFunc(), KindVector, func(_ *Env, args []Value) (Value, error) {
			return VectorValue(VectorOp(op, args[0].Vec, args[1].Vec)), nil
		}, KindVector, KindVector)
	}

	register("int_to_vector", KindVector, func(_ *Env, args []Value) (Value, error) {
		return VectorValue(Promote(args[0].Int, args[1].Int)), nil
	}, KindInt, KindInt)
	register("vector_range", KindVector, func(_ *Env, args []Value) (Value, error) {
		return VectorValue(Range(args[0].Int, args[1].Int)), nil
	}, KindInt, KindInt)
	register("vector_index", KindInt, func(_ *Env, args []Value) (Value, error) {
		return IntValue(Index(args[0].Vec, args[1].Int)), nil
	}, KindVector, KindInt)
	register("vector_index_vector", KindVector, func(_ *Env, args []Value) (Value, error) {
		return VectorValue(Gather(args[0].Vec, args[1].Vec)), nil
	}, KindVector, KindVector)
	register("match_vector_size", KindVector, func(_ *Env, args []Value) (Value, error) {
		return VectorValue(MatchSize(args[0].Vec, args[1].Vec, args[2].Int)), nil
	}, KindVector, KindVector, KindInt)
	register("increase_vector_size", KindVector, func(_ *Env, args []Value) (Value, error) {
		return VectorValue(IncreaseSize(args[0].Vec, args[1].Int, args[2].Int)), nil
	}, KindVector, KindInt, KindInt)

	register("vector_size", KindInt, func(_ *Env, args []Value) (Value, error) {
		return IntValue(args[0].Vec.Size()), nil
	}, KindVector)
	register("vector_new", KindVector, func(_ *Env, args []Value) (Value, error) {
		return VectorValue(New(args[0].Int)), nil
	}, KindInt)
	register("vector_reserve", KindVector, func(_ *Env, args []Value) (Value, error) {
		return VectorValue(Reserve(args[0].Int)), nil
	}, KindInt)
	register("vector_store", KindVoid, func(_ *Env, args []Value) (Value, error) {
		Store(args[0].Vec, args[1].Int, args[2].Int)
		return Value{}, nil
	}, KindVector, KindInt, KindInt)
	register("vector_append", KindVoid, func(_ *Env, args []Value) (Value, error) {
		Append(args[0].Vec, args[1].Int)
		return Value{}, nil
	}, KindVector, KindInt)
	register("vector_free", KindVoid, func(_ *Env, args []Value) (Value, error) {
		Free(args[0].Vec)
		return Value{}, nil
	}, KindVector)

	register("print_int", KindVoid, func(env *Env, args []Value) (Value, error) {
		_, err := io.WriteString(env.Out, FormatInt(args[0].Int))
		return Value{}, err
	}, KindInt)
	register("print_vector", KindVoid, func(env *Env, args []Value) (Value, error) {
		_, err := io.WriteString(env.Out, FormatVector(args[0].Vec))
		return Value{}, err
	}, KindVector)
}
