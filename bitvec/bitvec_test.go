package bitvec_test

import (
	"testing"

	"github.com/rv32toy/rv32sim/bitvec"
	"github.com/rv32toy/rv32sim/bitvec/bvtest"
)

func TestSliceConcatRoundTrip(t *testing.T) {
	v := bvtest.FromUint64(8, 0xB7)
	hi := v.Slice(0, 4)
	lo := v.Slice(4, 8)
	if got := bitvec.Concat(hi, lo); !bitvec.Equal(got, v) {
		t.Fatalf("concat(slice) = %v, want %v", got, v)
	}
}

func TestBitwiseOps(t *testing.T) {
	a := bvtest.FromUint64(4, 0b1100)
	b := bvtest.FromUint64(4, 0b1010)

	if got := bvtest.ToUint64(bitvec.And(a, b)); got != 0b1000 {
		t.Errorf("AND = %b, want 1000", got)
	}
	if got := bvtest.ToUint64(bitvec.Or(a, b)); got != 0b1110 {
		t.Errorf("OR = %b, want 1110", got)
	}
	if got := bvtest.ToUint64(bitvec.Xor(a, b)); got != 0b0110 {
		t.Errorf("XOR = %b, want 0110", got)
	}
	if got := bvtest.ToUint64(bitvec.Nor(a, b)); got != 0b0001 {
		t.Errorf("NOR = %b, want 0001", got)
	}
}

func TestWidthMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on width mismatch")
		}
	}()
	bitvec.And(bitvec.New(4), bitvec.New(8))
}

func TestSignExtend(t *testing.T) {
	neg := bvtest.FromUint64(8, 0xF0) // 11110000, MSB=1
	ext := bitvec.SignExtend(neg, 16)
	if got := bvtest.ToUint64(ext); got != 0xFFF0 {
		t.Errorf("sign extend = %#x, want 0xfff0", got)
	}

	pos := bvtest.FromUint64(8, 0x70) // 01110000, MSB=0
	ext2 := bitvec.SignExtend(pos, 16)
	if got := bvtest.ToUint64(ext2); got != 0x0070 {
		t.Errorf("sign extend = %#x, want 0x0070", got)
	}
}

func TestZeroExtend(t *testing.T) {
	v := bvtest.FromUint64(8, 0xF0)
	ext := bitvec.ZeroExtend(v, 16)
	if got := bvtest.ToUint64(ext); got != 0x00F0 {
		t.Errorf("zero extend = %#x, want 0x00f0", got)
	}
}

func TestOutOfRangeSlicePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on out-of-range slice")
		}
	}()
	v := bitvec.New(8)
	v.Slice(4, 9)
}

func TestIsZeroAndMSBLSB(t *testing.T) {
	z := bitvec.New(8)
	if !z.IsZero() {
		t.Error("new vector should be zero")
	}
	v := bvtest.FromUint64(8, 0x81)
	if !v.MSB() {
		t.Error("MSB should be set")
	}
	if !v.LSB() {
		t.Error("LSB should be set")
	}
}
