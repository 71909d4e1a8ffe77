package fpu

import (
	"github.com/rv32toy/rv32sim/alu"
	"github.com/rv32toy/rv32sim/bitvec"
)

// Add computes a+b in IEEE-754 single precision, round-to-nearest-even.
func Add(a, b bitvec.Vector, rm RoundingMode) Result {
	return addUnpacked(Unpack(a), Unpack(b))
}

// Sub computes a-b by flipping b's sign and dispatching to Add, mirroring
// how the ALU derives SUB from ADD with an inverted operand.
func Sub(a, b bitvec.Vector, rm RoundingMode) Result {
	flipped := bitvec.Concat(boolVec(!b.Get(0)), b.Slice(1, 32))
	return addUnpacked(Unpack(a), Unpack(flipped))
}

func addUnpacked(ua, ub Unpacked) Result {
	if ua.Class == ClassNaN || ub.Class == ClassNaN {
		return Result{Value: quietNaN(), Flags: Flags{Invalid: true}}
	}
	if ua.Class == ClassInfinity && ub.Class == ClassInfinity {
		if ua.Sign != ub.Sign {
			return Result{Value: quietNaN(), Flags: Flags{Invalid: true}}
		}
		return Result{Value: infinity(ua.Sign)}
	}
	if ua.Class == ClassInfinity {
		return Result{Value: infinity(ua.Sign)}
	}
	if ub.Class == ClassInfinity {
		return Result{Value: infinity(ub.Sign)}
	}
	if ua.Class == ClassZero && ub.Class == ClassZero {
		return Result{Value: signedZero(ua.Sign && ub.Sign)}
	}
	if ua.Class == ClassZero {
		return Result{Value: Repack(ub.Sign, ub.Exponent, ub.Significand.Slice(1, sigWidth))}
	}
	if ub.Class == ClassZero {
		return Result{Value: Repack(ua.Sign, ua.Exponent, ua.Significand.Slice(1, sigWidth))}
	}

	diff, aGE := expCompare(ua.Exponent, ub.Exponent)
	diffN := toSmallInt(diff)

	big, small := ua, ub
	if !aGE {
		big, small = ub, ua
	}

	shiftedSmallSig, g, r, s := alignShift(small.Significand, diffN)
	resultExponent := big.Exponent

	if big.Sign == small.Sign {
		sumRes := alu.Execute(alu.OpADD, bitvec.ZeroExtend(big.Significand, 32), bitvec.ZeroExtend(shiftedSmallSig, 32))
		sum32 := sumRes.Value
		overflowed := sum32.Get(32 - (sigWidth + 1))

		var sig bitvec.Vector
		if overflowed {
			sig = sum32.Slice(32-(sigWidth+1), 31)
			shiftedOut := sum32.Get(31)
			g, r, s = shiftedOut, g, (r || s)
			newExp := expAdd32(resultExponent, bitvec.New(expWidth).With(expWidth-1, true))
			resultExponent = newExp.Value.Slice(24, 32)
		} else {
			sig = sum32.Slice(32-sigWidth, 32)
		}

		rounded, carry, inexact := roundNearestEven(sig, g, r, s)
		if carry {
			rounded = bitvec.Concat(bitvec.New(1).With(0, true), rounded.Slice(0, sigWidth-1))
			newExp := expAdd32(resultExponent, bitvec.New(expWidth).With(expWidth-1, true))
			resultExponent = newExp.Value.Slice(24, 32)
		}
		return finishRepack(big.Sign, resultExponent, rounded, inexact)
	}

	diffRes := alu.Execute(alu.OpSUB, bitvec.ZeroExtend(big.Significand, 32), bitvec.ZeroExtend(shiftedSmallSig, 32))
	resultSign := big.Sign
	mag32 := diffRes.Value
	if diffRes.N {
		mag32 = negateSig(mag32)
		resultSign = small.Sign
	}
	sig := mag32.Slice(32-sigWidth, 32)

	if sig.IsZero() {
		return Result{Value: signedZero(false)}
	}

	shift := leadingZeros(sig)
	if shift > 0 {
		sig = shiftLeftFillZero(sig, shift)
		expRes := expSub32(resultExponent, encodeSmallConst(shift, 32).Slice(24, 32))
		resultExponent = expRes.Value.Slice(24, 32)
		if shift >= 2 {
			r = false
			s = false
		} else if shift == 1 {
			r = g
			g = false
		}
	}

	rounded, carry, inexact := roundNearestEven(sig, g, r, s)
	if carry {
		rounded = bitvec.Concat(bitvec.New(1).With(0, true), rounded.Slice(0, sigWidth-1))
		newExp := expAdd32(resultExponent, bitvec.New(expWidth).With(expWidth-1, true))
		resultExponent = newExp.Value.Slice(24, 32)
	}
	return finishRepack(resultSign, resultExponent, rounded, inexact)
}

func finishRepack(sign bool, exponent, sig bitvec.Vector, inexact bool) Result {
	if allOnes(exponent) {
		return Result{Value: infinity(sign), Flags: Flags{Overflow: true, Inexact: true}}
	}
	frac := sig.Slice(1, sigWidth)
	return Result{Value: Repack(sign, exponent, frac), Flags: Flags{Inexact: inexact}}
}

// finishRepackWide is finishRepack's counterpart for pipelines (multiply)
// whose exponent arithmetic must stay in full 32-bit width until the very
// end: it resolves underflow (flush to zero) and overflow (to infinity)
// from the wide, possibly negative or >254, exponent before narrowing it
// to the 8-bit stored field.
func finishRepackWide(sign bool, wideExp, sig bitvec.Vector, inexact bool) Result {
	if wideExp.Get(0) {
		return Result{Value: signedZero(sign), Flags: Flags{Underflow: true, Inexact: true}}
	}
	cmp := alu.Execute(alu.OpSUB, wideExp, encodeSmallConst(255, 32))
	if !cmp.N {
		return Result{Value: infinity(sign), Flags: Flags{Overflow: true, Inexact: true}}
	}
	exponent := wideExp.Slice(24, 32)
	frac := sig.Slice(1, sigWidth)
	return Result{Value: Repack(sign, exponent, frac), Flags: Flags{Inexact: inexact}}
}
