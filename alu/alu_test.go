package alu_test

import (
	"testing"

	"github.com/rv32toy/rv32sim/alu"
	"github.com/rv32toy/rv32sim/bitvec/bvtest"
)

func u32(v uint64) uint64 { return v & 0xFFFFFFFF }

func TestAddBoundaries(t *testing.T) {
	cases := []struct {
		name       string
		a, b       uint64
		op         alu.Op
		wantResult uint64
		n, z, c, v bool
	}{
		{"add max positive + 1", 0x7FFFFFFF, 0x00000001, alu.OpADD, 0x80000000, true, false, false, true},
		{"sub int min - 1", 0x80000000, 0x00000001, alu.OpSUB, 0x7FFFFFFF, false, false, true, true},
		{"add -1 + -1", 0xFFFFFFFF, 0xFFFFFFFF, alu.OpADD, 0xFFFFFFFE, true, false, true, false},
		{"add 13 + -13", 13, 0xFFFFFFF3, alu.OpADD, 0, false, true, true, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a := bvtest.FromUint64(32, c.a)
			b := bvtest.FromUint64(32, c.b)
			res := alu.Execute(c.op, a, b)
			if got := bvtest.ToUint64(res.Value); got != u32(c.wantResult) {
				t.Errorf("result = %#x, want %#x", got, c.wantResult)
			}
			if res.N != c.n || res.Z != c.z || res.C != c.c || res.V != c.v {
				t.Errorf("flags = {N:%v Z:%v C:%v V:%v}, want {N:%v Z:%v C:%v V:%v}",
					res.N, res.Z, res.C, res.V, c.n, c.z, c.c, c.v)
			}
		})
	}
}

func TestAddSubInverse(t *testing.T) {
	vals := []uint64{0, 1, 0xFFFFFFFF, 0x80000000, 0x7FFFFFFF, 0x12345678}
	bvals := []uint64{0, 1, 5, 0xDEADBEEF, 100}
	for _, av := range vals {
		for _, bv := range bvals {
			a := bvtest.FromUint64(32, av)
			b := bvtest.FromUint64(32, bv)
			sum := alu.Execute(alu.OpADD, a, b)
			back := alu.Execute(alu.OpSUB, sum.Value, b)
			if !equalU64(bvtest.ToUint64(back.Value), av) {
				t.Errorf("add-then-sub(%#x,%#x) = %#x, want %#x", av, bv, bvtest.ToUint64(back.Value), av)
			}
		}
	}
}

func equalU64(a, b uint64) bool { return (a & 0xFFFFFFFF) == (b & 0xFFFFFFFF) }

func TestLogicalOps(t *testing.T) {
	a := bvtest.FromUint64(32, 0xF0F0F0F0)
	b := bvtest.FromUint64(32, 0x0FF00FF0)

	if got := bvtest.ToUint64(alu.Execute(alu.OpAND, a, b).Value); got != 0x00F000F0 {
		t.Errorf("AND = %#x", got)
	}
	if got := bvtest.ToUint64(alu.Execute(alu.OpOR, a, b).Value); got != 0xFFF0FFF0 {
		t.Errorf("OR = %#x", got)
	}
	if got := bvtest.ToUint64(alu.Execute(alu.OpXOR, a, b).Value); got != 0xFF00FF00 {
		t.Errorf("XOR = %#x", got)
	}
	res := alu.Execute(alu.OpNOR, a, b)
	if res.C || res.V {
		t.Error("logical ops must not set C or V")
	}
}

func TestAdd32CarryChain(t *testing.T) {
	a := bvtest.FromUint64(32, 0xFFFFFFFF)
	b := bvtest.FromUint64(32, 0)
	sum, carry := alu.Add32(a, b, true)
	if !carry {
		t.Error("expected carry out")
	}
	if got := bvtest.ToUint64(sum); got != 0 {
		t.Errorf("sum = %#x, want 0", got)
	}
}
