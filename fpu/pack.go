package fpu

import (
	"math"

	"github.com/rv32toy/rv32sim/bitvec"
)

// Pack converts a host float32 into its 32-bit bitvec encoding, using the
// host's memory-punning primitive. This is an explicit I/O boundary (no
// arithmetic is performed) and must never be called from inside the
// arithmetic pipeline itself.
func Pack(f float32) bitvec.Vector {
	bits := math.Float32bits(f)
	out := make([]bool, 32)
	for i := 0; i < 32; i++ {
		out[i] = (bits>>(31-i))&1 == 1
	}
	return bitvec.FromBits(out)
}

// Unpack32ToFloat converts a 32-bit bitvec encoding back into a host
// float32, the inverse I/O boundary of Pack.
func Unpack32ToFloat(v bitvec.Vector) float32 {
	var bits uint32
	for i := 0; i < 32; i++ {
		bits <<= 1
		if v.Get(i) {
			bits |= 1
		}
	}
	return math.Float32frombits(bits)
}
