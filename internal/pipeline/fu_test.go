package pipeline

import (
	"testing"

	"github.com/archsim/tomasulo/internal/trace"
)

func TestFUPoolClaimLowestIndexFirst(t *testing.T) {
	fu := NewFUPool(2, 4)

	a := &trace.Instruction{Index: 0}
	b := &trace.Instruction{Index: 1}
	c := &trace.Instruction{Index: 2}

	if !fu.Claim(a) {
		t.Fatalf("Claim(a) should succeed on empty pool")
	}
	if fu.Occupant(0) != a {
		t.Fatalf("a should occupy slot 0")
	}

	if !fu.Claim(b) {
		t.Fatalf("Claim(b) should succeed with one slot free")
	}
	if fu.Occupant(1) != b {
		t.Fatalf("b should occupy slot 1")
	}

	if fu.Claim(c) {
		t.Fatalf("Claim(c) should fail, pool is full")
	}

	fu.Free(0)
	if !fu.Claim(c) {
		t.Fatalf("Claim(c) should succeed after freeing slot 0")
	}
	if fu.Occupant(0) != c {
		t.Fatalf("c should occupy the freed slot 0")
	}
}
