package graph

import (
	"fmt"
	"iter"
	"unsafe"
)

// MaxDegree is the largest neighbor count an Adjacency can hold. Road nodes
// observed in practice stay far below it; the one-byte length (and the
// one-byte neighbor count in the file format) depend on that.
const MaxDegree = 255

// Adjacency is a packed neighbor list: a pointer to an exactly-sized backing
// array and a one-byte length. It costs 16 bytes per node instead of the 24
// of a slice header, and it carries no spare capacity.
//
// Every growth reallocates to the new exact length. Construction is the only
// writer, so trading insertion speed for footprint is the intended policy.
//
// The zero value is an empty list with no allocation.
type Adjacency struct {
	ptr *Index
	n   uint8
}

// Len returns the number of stored neighbors.
func (a *Adjacency) Len() int { return int(a.n) }

// At returns the i-th neighbor. It panics if i is out of range.
func (a *Adjacency) At(i int) Index {
	if i < 0 || i >= int(a.n) {
		panic(fmt.Sprintf("graph: adjacency index %d out of range [0, %d)", i, a.n))
	}
	return a.Slice()[i]
}

// Push appends v.
func (a *Adjacency) Push(v Index) {
	a.grow(1)
	a.Slice()[a.n-1] = v
}

// PushPair appends v1 then v2 with a single reallocation.
func (a *Adjacency) PushPair(v1, v2 Index) {
	a.grow(2)
	s := a.Slice()
	s[a.n-2] = v1
	s[a.n-1] = v2
}

// Slice returns the neighbors as a slice aliasing the backing array.
// Callers must not modify it.
func (a *Adjacency) Slice() []Index {
	if a.n == 0 {
		return nil
	}
	return unsafe.Slice(a.ptr, a.n)
}

// All iterates the neighbors present when All was called.
func (a *Adjacency) All() iter.Seq[Index] {
	s := a.Slice()
	return func(yield func(Index) bool) {
		for _, v := range s {
			if !yield(v) {
				return
			}
		}
	}
}

func (a *Adjacency) grow(by int) {
	newLen := int(a.n) + by
	if newLen > MaxDegree {
		panic(fmt.Sprintf("graph: adjacency length %d exceeds MaxDegree %d", newLen, MaxDegree))
	}
	buf := make([]Index, newLen)
	copy(buf, a.Slice())
	a.ptr = &buf[0]
	a.n = uint8(newLen)
}

// adjacencyFrom builds an Adjacency holding exactly the values in s.
func adjacencyFrom(s []Index) Adjacency {
	if len(s) == 0 {
		return Adjacency{}
	}
	if len(s) > MaxDegree {
		panic(fmt.Sprintf("graph: adjacency length %d exceeds MaxDegree %d", len(s), MaxDegree))
	}
	buf := make([]Index, len(s))
	copy(buf, s)
	return Adjacency{ptr: &buf[0], n: uint8(len(s))}
}
