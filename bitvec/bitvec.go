// Package bitvec implements a fixed-width, MSB-first bit vector and the
// boolean/array operations the rest of the core is built from. No function
// in this file performs host wide arithmetic (+, -, *, /, %, <<, >>) on a
// data value — only boolean logic, slicing and concatenation. Loop counters
// and slice indices are ordinary host ints; that is bookkeeping, not data
// arithmetic.
package bitvec

import "github.com/rv32toy/rv32sim/faults"

const component = "bitvec"

// Vector is a fixed-width ordered sequence of bits, index 0 the most
// significant bit, index Width()-1 the least significant.
type Vector struct {
	bits []bool
}

// New returns a zero-valued vector of the given width.
func New(width int) Vector {
	if width <= 0 {
		panic(faults.New(component, faults.KindOutOfRange, "width %d must be positive", width))
	}
	return Vector{bits: make([]bool, width)}
}

// FromBits copies a slice of bools (MSB-first) into a new Vector.
func FromBits(bits []bool) Vector {
	cp := make([]bool, len(bits))
	copy(cp, bits)
	return Vector{bits: cp}
}

// Width reports the number of bits in the vector.
func (v Vector) Width() int {
	return len(v.bits)
}

// Get returns the bit at MSB-first index i.
func (v Vector) Get(i int) bool {
	if i < 0 || i >= len(v.bits) {
		panic(faults.New(component, faults.KindOutOfRange, "bit index %d out of range for width %d", i, len(v.bits)))
	}
	return v.bits[i]
}

// With returns a copy of v with bit i set to value.
func (v Vector) With(i int, value bool) Vector {
	if i < 0 || i >= len(v.bits) {
		panic(faults.New(component, faults.KindOutOfRange, "bit index %d out of range for width %d", i, len(v.bits)))
	}
	out := v.clone()
	out.bits[i] = value
	return out
}

func (v Vector) clone() Vector {
	cp := make([]bool, len(v.bits))
	copy(cp, v.bits)
	return Vector{bits: cp}
}

// Equal reports whether a and b have equal width and identical bits.
func Equal(a, b Vector) bool {
	if len(a.bits) != len(b.bits) {
		return false
	}
	for i := range a.bits {
		if a.bits[i] != b.bits[i] {
			return false
		}
	}
	return true
}

// IsZero reports whether every bit of v is zero.
func (v Vector) IsZero() bool {
	for _, b := range v.bits {
		if b {
			return false
		}
	}
	return true
}

// MSB returns the most significant bit.
func (v Vector) MSB() bool {
	return v.Get(0)
}

// LSB returns the least significant bit.
func (v Vector) LSB() bool {
	return v.Get(v.Width() - 1)
}

// Slice returns the half-open MSB-first range [lo, hi).
func (v Vector) Slice(lo, hi int) Vector {
	if lo < 0 || hi > len(v.bits) || lo > hi {
		panic(faults.New(component, faults.KindOutOfRange, "slice [%d:%d) out of range for width %d", lo, hi, len(v.bits)))
	}
	out := make([]bool, hi-lo)
	copy(out, v.bits[lo:hi])
	return Vector{bits: out}
}

// Concat concatenates vectors MSB-first: Concat(a, b) places a's bits
// before b's bits.
func Concat(parts ...Vector) Vector {
	total := 0
	for _, p := range parts {
		total += p.Width()
	}
	out := make([]bool, 0, total)
	for _, p := range parts {
		out = append(out, p.bits...)
	}
	return Vector{bits: out}
}

func requireSameWidth(a, b Vector) {
	if a.Width() != b.Width() {
		panic(faults.New(component, faults.KindWidthMismatch, "widths %d and %d differ", a.Width(), b.Width()))
	}
}

// And computes bitwise AND of two equal-width vectors.
func And(a, b Vector) Vector {
	requireSameWidth(a, b)
	out := make([]bool, a.Width())
	for i := range out {
		out[i] = a.bits[i] && b.bits[i]
	}
	return Vector{bits: out}
}

// Or computes bitwise OR of two equal-width vectors.
func Or(a, b Vector) Vector {
	requireSameWidth(a, b)
	out := make([]bool, a.Width())
	for i := range out {
		out[i] = a.bits[i] || b.bits[i]
	}
	return Vector{bits: out}
}

// Xor computes bitwise XOR of two equal-width vectors.
func Xor(a, b Vector) Vector {
	requireSameWidth(a, b)
	out := make([]bool, a.Width())
	for i := range out {
		out[i] = a.bits[i] != b.bits[i]
	}
	return Vector{bits: out}
}

// Nor computes bitwise NOR of two equal-width vectors.
func Nor(a, b Vector) Vector {
	requireSameWidth(a, b)
	out := make([]bool, a.Width())
	for i := range out {
		out[i] = !(a.bits[i] || b.bits[i])
	}
	return Vector{bits: out}
}

// Not computes bitwise complement.
func Not(a Vector) Vector {
	out := make([]bool, a.Width())
	for i := range out {
		out[i] = !a.bits[i]
	}
	return Vector{bits: out}
}

// SignExtend widens v to newWidth, replicating the MSB into the new
// high-order bits. newWidth must be >= v.Width().
func SignExtend(v Vector, newWidth int) Vector {
	if newWidth < v.Width() {
		panic(faults.New(component, faults.KindOutOfRange, "sign-extend target width %d smaller than source %d", newWidth, v.Width()))
	}
	if newWidth == v.Width() {
		return v.clone()
	}
	pad := make([]bool, newWidth-v.Width())
	fillBit := v.MSB()
	for i := range pad {
		pad[i] = fillBit
	}
	return Concat(Vector{bits: pad}, v)
}

// ZeroExtend widens v to newWidth, filling new high-order bits with zero.
func ZeroExtend(v Vector, newWidth int) Vector {
	if newWidth < v.Width() {
		panic(faults.New(component, faults.KindOutOfRange, "zero-extend target width %d smaller than source %d", newWidth, v.Width()))
	}
	if newWidth == v.Width() {
		return v.clone()
	}
	pad := make([]bool, newWidth-v.Width())
	return Concat(Vector{bits: pad}, v)
}

// Repeat returns a width-n vector with every bit equal to bit.
func Repeat(bit bool, n int) Vector {
	out := make([]bool, n)
	for i := range out {
		out[i] = bit
	}
	return Vector{bits: out}
}
