package fpu

import (
	"math"
	"testing"

	"github.com/rv32toy/rv32sim/bitvec"
)

func hex32(v bitvec.Vector) string {
	return bitvec.FormatHex(v)
}

func TestPackUnpackRoundTrip(t *testing.T) {
	values := []float32{0, 1, -1, 1.5, 2.25, 3.75, 0.1, 0.2, 100000, -3.14159, 1e-10, 1e30}
	for _, f := range values {
		v := Pack(f)
		got := Unpack32ToFloat(v)
		if got != f {
			t.Errorf("round trip %v: got %v", f, got)
		}
	}
}

func TestAddExactNoRounding(t *testing.T) {
	a := Pack(1.5)
	b := Pack(2.25)
	res := Add(a, b, RNE)
	want := Pack(3.75)
	if !bitvec.Equal(res.Value, want) {
		t.Errorf("1.5+2.25 = %s, want %s", hex32(res.Value), hex32(want))
	}
}

func TestAddTiesToEvenMatchesHostOracle(t *testing.T) {
	a := Pack(0.1)
	b := Pack(0.2)
	res := Add(a, b, RNE)

	oracle := float32(0.1) + float32(0.2)
	want := Pack(oracle)
	if !bitvec.Equal(res.Value, want) {
		t.Errorf("0.1+0.2 = %s (%v), want %s (%v)",
			hex32(res.Value), Unpack32ToFloat(res.Value), hex32(want), oracle)
	}
}

func TestAddIdentityWithZero(t *testing.T) {
	a := Pack(7.5)
	res := Add(a, Pack(0), RNE)
	if !bitvec.Equal(res.Value, a) {
		t.Errorf("7.5+0 = %s, want %s", hex32(res.Value), hex32(a))
	}
}

func TestAddInfinityRules(t *testing.T) {
	posInf := Pack(float32(math.Inf(1)))
	negInf := Pack(float32(math.Inf(-1)))

	res := Add(posInf, Pack(5), RNE)
	if !bitvec.Equal(res.Value, posInf) {
		t.Errorf("inf+5 should stay +inf, got %s", hex32(res.Value))
	}

	res2 := Add(posInf, negInf, RNE)
	u := Unpack(res2.Value)
	if u.Class != ClassNaN {
		t.Errorf("inf + -inf should be NaN, got class %v", u.Class)
	}
	if !res2.Flags.Invalid {
		t.Errorf("inf + -inf should raise Invalid")
	}
}

func TestMulOverflowToInfinity(t *testing.T) {
	a := Pack(1e38)
	b := Pack(10)
	res := Mul(a, b, RNE)
	u := Unpack(res.Value)
	if u.Class != ClassInfinity || u.Sign {
		t.Errorf("1e38*10 should overflow to +inf, got %s", hex32(res.Value))
	}
	if !res.Flags.Overflow {
		t.Errorf("1e38*10 should raise Overflow")
	}
}

func TestMulSignRules(t *testing.T) {
	res := Mul(Pack(-2), Pack(3), RNE)
	want := Pack(-6)
	if !bitvec.Equal(res.Value, want) {
		t.Errorf("-2*3 = %s, want %s", hex32(res.Value), hex32(want))
	}

	res2 := Mul(Pack(-2), Pack(-3), RNE)
	want2 := Pack(6)
	if !bitvec.Equal(res2.Value, want2) {
		t.Errorf("-2*-3 = %s, want %s", hex32(res2.Value), hex32(want2))
	}
}

func TestMulByZero(t *testing.T) {
	res := Mul(Pack(123.5), Pack(0), RNE)
	u := Unpack(res.Value)
	if u.Class != ClassZero {
		t.Errorf("x*0 should be zero, got class %v", u.Class)
	}
}

func TestSubCancellationToZero(t *testing.T) {
	a := Pack(5)
	res := Sub(a, a, RNE)
	u := Unpack(res.Value)
	if u.Class != ClassZero {
		t.Errorf("x-x should be zero, got class %v value %s", u.Class, hex32(res.Value))
	}
}

func TestUnpackClassification(t *testing.T) {
	cases := []struct {
		f     float32
		class Class
	}{
		{0, ClassZero},
		{1.0, ClassNormal},
		{float32(math.Inf(1)), ClassInfinity},
	}
	for _, c := range cases {
		got := Unpack(Pack(c.f)).Class
		if got != c.class {
			t.Errorf("classify(%v) = %v, want %v", c.f, got, c.class)
		}
	}
}
