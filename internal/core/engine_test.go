package core

import (
	"testing"

	"github.com/archsim/tomasulo/internal/config"
	"github.com/archsim/tomasulo/internal/isa"
	"github.com/archsim/tomasulo/internal/trace"
)

const (
	opIntAdd   isa.Opcode = 1
	opFPAdd    isa.Opcode = 2
	opBranch   isa.Opcode = 3
	opTrapCall isa.Opcode = 4
)

func testOps() isa.Table {
	return isa.Table{
		opIntAdd:   isa.FlagIComp,
		opFPAdd:    isa.FlagFComp,
		opBranch:   isa.FlagCondCtrl,
		opTrapCall: isa.FlagTrap,
	}
}

// mustEngine loads insns into a chunk and returns both the engine and
// that chunk, since Load copies each instruction by value — tests must
// read timestamps back through the chunk, not the original slice.
func mustEngine(t *testing.T, cfg *config.Config, insns []trace.Instruction) (*Engine, *trace.Chunk) {
	t.Helper()
	head, err := trace.Load(insns, cfg.ChunkSize)
	if err != nil {
		t.Fatalf("trace.Load() error = %v", err)
	}
	e, err := NewEngine(cfg, testOps(), head)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e, head
}

func noRegs() ([3]int, [2]int) {
	return [3]int{isa.DNA, isa.DNA, isa.DNA}, [2]int{isa.DNA, isa.DNA}
}

func TestSingleIntAddNoDependencies(t *testing.T) {
	rin, rout := noRegs()
	insns := []trace.Instruction{{Op: opIntAdd, RIn: rin, ROut: rout}}

	e, head := mustEngine(t, config.DefaultConfig(), insns)
	total, err := e.Run(0)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	in := &head.Table[0]
	if in.DispatchCycle != 1 || in.IssueCycle != 2 || in.ExecuteCycle != 3 || in.CDBCycle != 7 {
		t.Fatalf("timestamps = dispatch:%d issue:%d execute:%d cdb:%d, want 1 2 3 7",
			in.DispatchCycle, in.IssueCycle, in.ExecuteCycle, in.CDBCycle)
	}
	if total != 9 {
		t.Fatalf("Run() total = %d, want 9", total)
	}
}

func TestTwoDependentIntOps(t *testing.T) {
	rinNone, rout0 := noRegs()
	rout0[0] = 0
	i1 := trace.Instruction{Op: opIntAdd, RIn: rinNone, ROut: rout0}

	rin1, rout1 := noRegs()
	rin1[0] = 0
	i2 := trace.Instruction{Op: opIntAdd, RIn: rin1, ROut: rout1}

	e, head := mustEngine(t, config.DefaultConfig(), []trace.Instruction{i1, i2})
	total, err := e.Run(0)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got1, got2 := &head.Table[0], &head.Table[1]

	if got1.CDBCycle != 7 {
		t.Fatalf("i1.CDBCycle = %d, want 7", got1.CDBCycle)
	}
	if got2.DispatchCycle != 2 || got2.IssueCycle != 3 {
		t.Fatalf("i2 dispatch/issue = %d/%d, want 2/3", got2.DispatchCycle, got2.IssueCycle)
	}
	if got2.ExecuteCycle != 9 {
		t.Fatalf("i2.ExecuteCycle = %d, want 9 (must wait a full cycle after its producer's Q tag clears)", got2.ExecuteCycle)
	}
	if got2.CDBCycle != 13 {
		t.Fatalf("i2.CDBCycle = %d, want 13", got2.CDBCycle)
	}
	if total != 15 {
		t.Fatalf("Run() total = %d, want 15", total)
	}
}

func TestStructuralHazardDelaysThirdAdd(t *testing.T) {
	var insns []trace.Instruction
	for i := 0; i < 3; i++ {
		rin, rout := noRegs()
		insns = append(insns, trace.Instruction{Op: opIntAdd, RIn: rin, ROut: rout})
	}

	cfg := config.DefaultConfig()
	e, head := mustEngine(t, cfg, insns)
	if _, err := e.Run(0); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	first, third := &head.Table[0], &head.Table[2]
	if first.ExecuteCycle == 0 || third.ExecuteCycle == 0 {
		t.Fatalf("both instructions should have executed: first=%d third=%d", first.ExecuteCycle, third.ExecuteCycle)
	}
	if diff := third.ExecuteCycle - first.ExecuteCycle; diff < cfg.LInt {
		t.Fatalf("third add executed only %d cycles after the first, want at least %d (one FU_INT latency)", diff, cfg.LInt)
	}
}

func TestFPAfterIntParallelismFPDominates(t *testing.T) {
	rin, rout := noRegs()
	intAdd := trace.Instruction{Op: opIntAdd, RIn: rin, ROut: rout}
	rin2, rout2 := noRegs()
	fpAdd := trace.Instruction{Op: opFPAdd, RIn: rin2, ROut: rout2}

	cfg := config.DefaultConfig()
	e, head := mustEngine(t, cfg, []trace.Instruction{intAdd, fpAdd})
	total, err := e.Run(0)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got0, got1 := &head.Table[0], &head.Table[1]
	if got0.CDBCycle == 0 || got1.CDBCycle == 0 {
		t.Fatalf("both instructions should have broadcast: int=%d fp=%d", got0.CDBCycle, got1.CDBCycle)
	}
	if got1.CDBCycle <= got0.CDBCycle {
		t.Fatalf("the FP op's latency (%d) should push its CDB cycle past the int op's (int cdb=%d, fp cdb=%d)",
			cfg.LFP, got0.CDBCycle, got1.CDBCycle)
	}
	if total != got1.CDBCycle+2 {
		t.Fatalf("Run() total = %d, want %d (driven by the slower FP pipeline)", total, got1.CDBCycle+2)
	}
}

func TestConditionalBranchVanishesAfterOneCycle(t *testing.T) {
	rin, rout := noRegs()
	branch := trace.Instruction{Op: opBranch, RIn: rin, ROut: rout}
	rin2, rout2 := noRegs()
	next := trace.Instruction{Op: opIntAdd, RIn: rin2, ROut: rout2}

	cfg := config.DefaultConfig()
	e, head := mustEngine(t, cfg, []trace.Instruction{branch, next})
	if _, err := e.Run(0); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	gotBranch, gotNext := &head.Table[0], &head.Table[1]
	if gotBranch.DispatchCycle != 1 {
		t.Fatalf("branch.DispatchCycle = %d, want 1", gotBranch.DispatchCycle)
	}
	if gotBranch.IssueCycle != 0 || gotBranch.ExecuteCycle != 0 || gotBranch.CDBCycle != 0 {
		t.Fatalf("a control transfer should never touch issue/execute/CDB, got issue:%d execute:%d cdb:%d",
			gotBranch.IssueCycle, gotBranch.ExecuteCycle, gotBranch.CDBCycle)
	}
	if gotNext.DispatchCycle != 2 {
		t.Fatalf("the instruction after the branch should dispatch at cycle 2, got %d", gotNext.DispatchCycle)
	}
}

func TestTrapInstructionIsInvisible(t *testing.T) {
	rin, rout := noRegs()
	trap := trace.Instruction{Op: opTrapCall, RIn: rin, ROut: rout}
	rin2, rout2 := noRegs()
	next := trace.Instruction{Op: opIntAdd, RIn: rin2, ROut: rout2}

	cfg := config.DefaultConfig()
	e, head := mustEngine(t, cfg, []trace.Instruction{trap, next})
	if _, err := e.Run(0); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	gotTrap, gotNext := &head.Table[0], &head.Table[1]
	if gotTrap.DispatchCycle != 0 {
		t.Fatalf("a trap should never receive a dispatch timestamp, got %d", gotTrap.DispatchCycle)
	}
	if gotNext.DispatchCycle != 1 {
		t.Fatalf("the instruction after a trap should take its dispatch slot, got DispatchCycle=%d, want 1", gotNext.DispatchCycle)
	}
}

func TestCDBContentionLaterScanOverwrites(t *testing.T) {
	rin, rout := noRegs()
	insns := []trace.Instruction{{Op: opIntAdd, RIn: rin, ROut: rout}}

	cfg := config.DefaultConfig()
	e, _ := mustEngine(t, cfg, insns)

	a := &trace.Instruction{Op: opIntAdd, Index: 100, RIn: rin, ROut: rout, IssueCycle: 1, ExecuteCycle: 1}
	b := &trace.Instruction{Op: opIntAdd, Index: 101, RIn: rin, ROut: rout, IssueCycle: 1, ExecuteCycle: 1}

	entryA := e.rsInt.Add(a)
	entryB := e.rsInt.Add(b)
	entryA.Ready, entryB.Ready = true, true
	if !e.fuInt.Claim(a) {
		t.Fatalf("expected a free FU slot for a")
	}
	if !e.fuInt.Claim(b) {
		t.Fatalf("expected a free FU slot for b")
	}
	entryA.HasFU, entryB.HasFU = true, true

	e.stepExecuteToCDB(a.ExecuteCycle + cfg.LInt)

	if !e.cdb.Occupied() {
		t.Fatalf("CDB should be occupied after two same-cycle completions")
	}
	if e.cdb.Occupant() != b {
		t.Fatalf("CDB occupant = instruction %d, want %d (the later-scanned completion overwrites the earlier one)",
			e.cdb.Occupant().Index, b.Index)
	}
}
