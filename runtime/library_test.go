package runtime

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestLibraryHasEveryOperator(t *testing.T) {
	for _, op := range Ops {
		f, ok := Lookup(op.ScalarFunc())
		be.True(t, ok)
		be.Equal(t, f.Params, []Kind{KindInt, KindInt})
		be.Equal(t, f.Result, KindInt)

		f, ok = Lookup(op.VectorFunc())
		be.True(t, ok)
		be.Equal(t, f.Params, []Kind{KindVector, KindVector})
		be.Equal(t, f.Result, KindVector)
	}
}

func TestLibraryNames(t *testing.T) {
	names := Names()
	for _, want := range []string{
		"int_add", "int_nequal", "vector_add", "vector_less_than",
		"vector_index", "vector_index_vector", "vector_range",
		"match_vector_size", "increase_vector_size", "int_to_vector",
		"print_int", "print_vector",
	} {
		found := false
		for _, name := range names {
			if name == want {
				found = true
			}
		}
		be.True(t, found)
	}
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup("vector_sort")
	be.Equal(t, ok, false)
}

func TestLibraryCalls(t *testing.T) {
	var out strings.Builder
	env := &Env{Out: &out}
	call := func(name string, args ...Value) Value {
		f, ok := Lookup(name)
		be.True(t, ok)
		be.Equal(t, len(args), len(f.Params))
		v, err := f.Impl(env, args)
		be.Err(t, err, nil)
		return v
	}

	v := call("vector_range", IntValue(1), IntValue(4))
	be.Equal(t, v.Vec.Elements(), []int32{1, 2, 3, 4})

	be.Equal(t, call("vector_size", v).Int, int32(4))
	be.Equal(t, call("vector_index", v, IntValue(2)).Int, int32(3))
	be.Equal(t, call("int_less_than", IntValue(1), IntValue(2)).Int, int32(1))

	grown := call("match_vector_size", VectorValue(FromInts(1)), v, IntValue(1))
	be.Equal(t, grown.Vec.Elements(), []int32{1, 1, 1, 1})

	acc := call("vector_reserve", IntValue(2))
	call("vector_append", acc, IntValue(8))
	call("print_vector", acc)
	call("print_int", IntValue(-3))
	be.Equal(t, out.String(), "[8]\n-3\n")
}
