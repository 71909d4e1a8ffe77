package fpu

import "github.com/rv32toy/rv32sim/bitvec"

// alignShift right-shifts a 24-bit significand by diff bits (diff >= 0),
// using only slice and concatenate, returning the shifted significand plus
// the guard, round and sticky bits that fall out of it. Diff is an
// exponent-difference bookkeeping value, a host int, not a data operand.
func alignShift(sig bitvec.Vector, diff int) (shifted bitvec.Vector, guard, round, sticky bool) {
	if diff <= 0 {
		return sig, false, false, false
	}
	if diff > 30 {
		return bitvec.New(sigWidth), false, false, !sig.IsZero()
	}

	padded := bitvec.Concat(bitvec.New(diff), sig) // width sigWidth+diff
	shifted = padded.Slice(0, sigWidth)
	lost := padded.Slice(sigWidth, sigWidth+diff) // width diff, the bits shifted out

	if diff >= 1 {
		guard = lost.Get(0)
	}
	if diff >= 2 {
		round = lost.Get(1)
	}
	if diff > 2 {
		sticky = anySet(lost.Slice(2, diff))
	}
	return
}

func anySet(v bitvec.Vector) bool {
	for i := 0; i < v.Width(); i++ {
		if v.Get(i) {
			return true
		}
	}
	return false
}

// leadingZeros counts how many MSB-first bits of v are zero before the
// first set bit (or v.Width() if v is entirely zero).
func leadingZeros(v bitvec.Vector) int {
	for i := 0; i < v.Width(); i++ {
		if v.Get(i) {
			return i
		}
	}
	return v.Width()
}

// shiftLeftFillZero shifts v left by n bits (dropping the top n bits,
// appending n zero bits at the low end), via slice+concat.
func shiftLeftFillZero(v bitvec.Vector, n int) bitvec.Vector {
	if n <= 0 {
		return v
	}
	if n >= v.Width() {
		return bitvec.New(v.Width())
	}
	return bitvec.Concat(v.Slice(n, v.Width()), bitvec.New(n))
}
