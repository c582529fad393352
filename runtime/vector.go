// Package runtime is the vector runtime model shared by every backend.
//
// A Vector is a logical size plus a backing buffer whose length is the
// allocated capacity. Capacity may exceed the size: filter comprehensions
// allocate for the worst case and report only the elements they kept.
package runtime

import (
	"strconv"
	"strings"
)

// Vector is a runtime-sized sequence of 32-bit integers.
type Vector struct {
	size int32
	data []int32
}

// New allocates a zero-filled vector of the given size.
func New(size int32) *Vector {
	if size < 0 {
		size = 0
	}
	return &Vector{size: size, data: make([]int32, size)}
}

// Reserve allocates an empty vector able to hold capacity elements.
func Reserve(capacity int32) *Vector {
	if capacity < 0 {
		capacity = 0
	}
	return &Vector{data: make([]int32, capacity)}
}

// FromInts builds a vector holding exactly the given elements.
func FromInts(elements ...int32) *Vector {
	v := New(int32(len(elements)))
	copy(v.data, elements)
	return v
}

// Size reports the logical size. A nil vector is empty.
func (v *Vector) Size() int32 {
	if v == nil {
		return 0
	}
	return v.size
}

// Cap reports the allocated capacity.
func (v *Vector) Cap() int32 {
	if v == nil {
		return 0
	}
	return int32(len(v.data))
}

// Elements returns a copy of the first Size() elements.
func (v *Vector) Elements() []int32 {
	out := make([]int32, v.Size())
	if v != nil {
		copy(out, v.data[:v.size])
	}
	return out
}

// Store writes x at position k. Writes outside [0, Size()) are dropped.
func Store(v *Vector, k int32, x int32) {
	if k < 0 || k >= v.Size() {
		return
	}
	v.data[k] = x
}

// Append writes x after the last element. The buffer is never reallocated;
// appending to a full vector is a bug in the caller.
func Append(v *Vector, x int32) {
	if v.size >= int32(len(v.data)) {
		panic("runtime: append past vector capacity")
	}
	v.data[v.size] = x
	v.size++
}

// Free releases the buffer. The vector reads as empty afterwards.
func Free(v *Vector) {
	if v == nil {
		return
	}
	v.size = 0
	v.data = nil
}

// Index returns element i, or 0 when i is out of bounds.
func Index(v *Vector, i int32) int32 {
	if i < 0 || i > v.Size()-1 {
		return 0
	}
	return v.data[i]
}

// Gather looks up every element of idx in domain.
func Gather(domain, idx *Vector) *Vector {
	out := New(idx.Size())
	for k := int32(0); k < out.size; k++ {
		out.data[k] = Index(domain, Index(idx, k))
	}
	return out
}

// Range returns lo, lo+1, ..., hi, or an empty vector when hi < lo.
func Range(lo, hi int32) *Vector {
	if hi < lo {
		return New(0)
	}
	out := New(hi - lo + 1)
	for k := int32(0); k < out.size; k++ {
		out.data[k] = lo + k
	}
	return out
}

// Promote returns size copies of value.
func Promote(size, value int32) *Vector {
	out := New(size)
	for k := range out.data {
		out.data[k] = value
	}
	return out
}

// IncreaseSize returns a copy of v grown to size with the tail set to pad.
// If v already has at least size elements the copy keeps all of them.
func IncreaseSize(v *Vector, size, pad int32) *Vector {
	if size < v.Size() {
		size = v.Size()
	}
	out := New(size)
	n := copy(out.data, v.data[:v.Size()])
	for k := n; k < len(out.data); k++ {
		out.data[k] = pad
	}
	return out
}

// MatchSize grows a to the size of b, padding with pad. When a is not
// shorter than b it is returned as is.
func MatchSize(a, b *Vector, pad int32) *Vector {
	if a.Size() < b.Size() {
		return IncreaseSize(a, b.Size(), pad)
	}
	return a
}

// Broadcast brings both operands to the larger size. A short left operand
// is padded with 0. A short right operand is padded with 1 for division and
// 0 otherwise, so padding never introduces a zero divisor.
func Broadcast(op Op, a, b *Vector) (*Vector, *Vector) {
	var pad int32
	if op == OpDiv {
		pad = 1
	}
	a = MatchSize(a, b, 0)
	b = MatchSize(b, a, pad)
	return a, b
}

// VectorOp broadcasts a and b then applies op element-wise into a fresh
// vector.
func VectorOp(op Op, a, b *Vector) *Vector {
	a, b = Broadcast(op, a, b)
	out := New(a.Size())
	for k := int32(0); k < out.size; k++ {
		out.data[k] = Apply(op, a.data[k], b.data[k])
	}
	return out
}

// ComprehensionKind selects map or filter behaviour.
type ComprehensionKind int

const (
	Generator ComprehensionKind = iota
	Filter
)

func (k ComprehensionKind) String() string {
	switch k {
	case Generator:
		return "generator"
	case Filter:
		return "filter"
	default:
		return "comprehension(" + strconv.Itoa(int(k)) + ")"
	}
}

// Comprehension evaluates iterate once per element of source.
//
// A Generator stores each result at the element's position. A Filter keeps
// the element itself whenever iterate returns nonzero; its buffer is sized
// for every element to pass, and Size reports how many did.
func Comprehension(kind ComprehensionKind, source *Vector, iterate func(int32) int32) *Vector {
	n := source.Size()
	switch kind {
	case Generator:
		out := New(n)
		for k := int32(0); k < n; k++ {
			Store(out, k, iterate(Index(source, k)))
		}
		return out
	case Filter:
		out := Reserve(n)
		for k := int32(0); k < n; k++ {
			x := Index(source, k)
			if iterate(x) != 0 {
				Append(out, x)
			}
		}
		return out
	default:
		panic("runtime: unknown comprehension kind " + kind.String())
	}
}

// FormatInt renders an integer the way print_int writes it.
func FormatInt(x int32) string {
	return strconv.FormatInt(int64(x), 10) + "\n"
}

// FormatVector renders a vector the way print_vector writes it:
// "[1 2 3]\n", or "[]\n" when empty.
func FormatVector(v *Vector) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for k := int32(0); k < v.Size(); k++ {
		if k > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.FormatInt(int64(v.data[k]), 10))
	}
	sb.WriteString("]\n")
	return sb.String()
}
