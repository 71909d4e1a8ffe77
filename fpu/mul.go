package fpu

import (
	"github.com/rv32toy/rv32sim/alu"
	"github.com/rv32toy/rv32sim/bitvec"
	"github.com/rv32toy/rv32sim/mdu"
)

// Mul computes a*b in IEEE-754 single precision, round-to-nearest-even.
// The 24x24-bit significand product is obtained by zero-extending each
// significand to 32 bits and reusing the shift-add multiplier, rather than
// hand-rolling a second multiply algorithm.
func Mul(a, b bitvec.Vector, rm RoundingMode) Result {
	ua, ub := Unpack(a), Unpack(b)
	sign := ua.Sign != ub.Sign

	if ua.Class == ClassNaN || ub.Class == ClassNaN {
		return Result{Value: quietNaN(), Flags: Flags{Invalid: true}}
	}
	if (ua.Class == ClassInfinity && ub.Class == ClassZero) || (ub.Class == ClassInfinity && ua.Class == ClassZero) {
		return Result{Value: quietNaN(), Flags: Flags{Invalid: true}}
	}
	if ua.Class == ClassInfinity || ub.Class == ClassInfinity {
		return Result{Value: infinity(sign)}
	}
	if ua.Class == ClassZero || ub.Class == ClassZero {
		return Result{Value: signedZero(sign)}
	}

	// Exponent arithmetic stays in full 32-bit width here (rather than the
	// usual 8-bit expAdd) because ea+eb can reach 510, overflowing an
	// 8-bit field before the bias subtraction brings it back into range.
	wideSum := expAdd32(ua.Exponent, ub.Exponent)
	wideUnbiased := alu.Execute(alu.OpSUB, wideSum.Value, bitvec.ZeroExtend(encodeSmallConst(bias, expWidth), 32))

	product := mdu.Multiply(mdu.MULHU, bitvec.ZeroExtend(ua.Significand, 32), bitvec.ZeroExtend(ub.Significand, 32))
	full48 := bitvec.Concat(product.Hi.Slice(16, 32), product.Lo) // the 48 significant bits of a 24x24 product

	// full48's bit 0 is set iff the significand product is in [2,4);
	// full48 occupies bits so that a product in [1,2) has its hidden '1' at
	// index 1, matching a 24+24=48-bit fixed point value scaled by 2^46.
	var sig bitvec.Vector
	var expAdjust bool
	if full48.Get(0) {
		sig = full48.Slice(0, sigWidth)
		expAdjust = true
	} else {
		sig = full48.Slice(1, sigWidth+1)
	}
	tail := boolIndex(!expAdjust)
	guard := full48.Get(sigWidth + tail)
	roundBit := full48.Get(sigWidth + 1 + tail)
	sticky := anySet(full48.Slice(sigWidth+2+tail, full48.Width()))

	wideExp := wideUnbiased.Value
	if expAdjust {
		wideExp = alu.Execute(alu.OpADD, wideExp, bitvec.New(32).With(31, true)).Value
	}

	rounded, carry, inexact := roundNearestEven(sig, guard, roundBit, sticky)
	if carry {
		rounded = bitvec.Concat(bitvec.New(1).With(0, true), rounded.Slice(0, sigWidth-1))
		wideExp = alu.Execute(alu.OpADD, wideExp, bitvec.New(32).With(31, true)).Value
	}

	return finishRepackWide(sign, wideExp, rounded, inexact)
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}
