package pipeline

import (
	"testing"

	"github.com/archsim/tomasulo/internal/trace"
)

func TestCDBSlotClaimOverwritesAndClear(t *testing.T) {
	var cdb CDBSlot

	if cdb.Occupied() {
		t.Fatalf("fresh CDB slot should not be Occupied()")
	}

	a := &trace.Instruction{Index: 0}
	cdb.Claim(a)
	if !cdb.Occupied() || cdb.Occupant() != a {
		t.Fatalf("CDB slot should be occupied by a")
	}

	// A same-cycle later completion overwrites the earlier broadcaster.
	b := &trace.Instruction{Index: 1}
	cdb.Claim(b)
	if cdb.Occupant() != b {
		t.Fatalf("CDB slot occupant = %v, want %v (overwrite policy)", cdb.Occupant(), b)
	}

	cdb.Clear()
	if cdb.Occupied() {
		t.Fatalf("CDB slot should be vacant after Clear()")
	}
}
