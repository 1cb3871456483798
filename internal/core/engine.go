// Package core is the Tomasulo scheduling engine: the five reverse-order
// stage handlers and the cycle-driven main loop that invokes them. It
// plays the role the teacher repo's internal/core.Processor played
// (orchestrator sitting on top of internal/pipeline's structural types),
// but single-threaded and lock-free: the scheduling algorithm itself has
// no independent units of work to fan out across goroutines, so the
// teacher's sync.RWMutex/atomic idiom is dropped here and kept one layer
// up, in internal/simulator, where independent traces really can run
// concurrently.
package core

import (
	"errors"
	"fmt"

	"github.com/archsim/tomasulo/internal/config"
	"github.com/archsim/tomasulo/internal/isa"
	"github.com/archsim/tomasulo/internal/pipeline"
	"github.com/archsim/tomasulo/internal/trace"
)

// ErrWatchdogExceeded is returned by Run when cfg.MaxCycles is reached
// before the pipeline drains. This watchdog is not part of the
// scheduling algorithm itself; it only guards against a misconfigured or
// genuinely diverging trace/oracle pair.
var ErrWatchdogExceeded = errors.New("core: cycle watchdog exceeded")

// Engine holds every table the scheduling algorithm is defined over:
// the instruction queue, both reservation-station pools, both
// functional-unit pools, the CDB slot, and the register map table.
type Engine struct {
	ops isa.Table

	cursor *trace.Cursor
	queue  *pipeline.InstrQueue

	rsInt *pipeline.RSPool
	rsFP  *pipeline.RSPool

	fuInt *pipeline.FUPool
	fuFP  *pipeline.FUPool

	cdb pipeline.CDBSlot

	mapTable *pipeline.MapTable

	cycle int
}

// NewEngine builds an Engine over a trace chunk chain, validating it
// against cfg's register width first.
func NewEngine(cfg *config.Config, ops isa.Table, head *trace.Chunk) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("core: nil configuration")
	}
	if head == nil {
		return nil, fmt.Errorf("core: nil trace")
	}
	if err := head.Validate(cfg.TotalRegs); err != nil {
		return nil, err
	}

	return &Engine{
		ops:      ops,
		cursor:   trace.NewCursor(head),
		queue:    pipeline.NewInstrQueue(cfg.IFQSize),
		rsInt:    pipeline.NewRSPool(cfg.RSInt),
		rsFP:     pipeline.NewRSPool(cfg.RSFP),
		fuInt:    pipeline.NewFUPool(cfg.FUInt, cfg.LInt),
		fuFP:     pipeline.NewFUPool(cfg.FUFP, cfg.LFP),
		mapTable: pipeline.NewMapTable(cfg.TotalRegs),
		cycle:    0,
	}, nil
}

// Cycle returns the engine's cycle count: zero before Run, and once Run
// has returned, the same total Run returned (one past the last cycle the
// engine processed).
func (e *Engine) Cycle() int { return e.cycle }

// Done reports whether the pipeline has nothing left to do: fetch is
// exhausted, the instruction queue is empty, both reservation-station
// pools are empty, and the CDB has nothing pending retirement.
//
// Checking the trace and the RS pools alone undercounts in-flight state:
// an instruction can be sitting in the IFQ (fetched but not yet
// dispatched) or freshly broadcasting on the CDB (completed but not yet
// retired) while both RS pools are empty. A single in-flight instruction
// with no dependencies only drains in exactly the cycle count the
// hand-traced timeline predicts if termination also waits for the queue
// to drain and the CDB to be vacated, so this implementation checks all
// four.
func (e *Engine) Done() bool {
	return e.cursor.Done() && e.queue.Len() == 0 && e.rsInt.Empty() && e.rsFP.Empty() && !e.cdb.Occupied()
}

// Run drives the engine to completion, invoking the five stage handlers
// in reverse pipeline order every cycle, and returns the total cycle
// count at drain. If maxCycles is positive and exceeded, it returns
// ErrWatchdogExceeded along with the cycle count at the point of abort.
func (e *Engine) Run(maxCycles int) (int, error) {
	cycle := 1
	for {
		e.stepCDBToRetire(cycle)
		e.stepExecuteToCDB(cycle)
		e.stepIssueToExecute(cycle)
		e.stepDispatchToIssue(cycle)
		e.stepFetchToDispatch(cycle)

		e.cycle = cycle
		cycle++

		if maxCycles > 0 && cycle > maxCycles {
			e.cycle = cycle
			return cycle, ErrWatchdogExceeded
		}
		if e.Done() {
			break
		}
	}
	e.cycle = cycle
	return cycle, nil
}

// stepCDBToRetire releases the bus and clears producer tags once a
// broadcast's cycle has passed.
func (e *Engine) stepCDBToRetire(cycle int) {
	if !e.cdb.Occupied() {
		return
	}
	broadcaster := e.cdb.Occupant()
	if broadcaster.CDBCycle == 0 || broadcaster.CDBCycle >= cycle {
		return
	}

	for _, r := range broadcaster.ROut {
		if r != isa.DNA {
			e.mapTable.Clear(r)
		}
	}

	for _, pool := range [2]*pipeline.RSPool{e.rsInt, e.rsFP} {
		for _, entry := range pool.InOrder() {
			for i := range entry.Insn.Q {
				if entry.Insn.Q[i] == broadcaster {
					entry.Insn.Q[i] = nil
				}
			}
		}
	}

	e.cdb.Clear()
}

// stepExecuteToCDB detects functional-unit completions and arbitrates
// for the CDB. Integer FUs are scanned before FP FUs; within a class,
// lower-indexed slots first.
func (e *Engine) stepExecuteToCDB(cycle int) {
	e.drainFUClass(e.fuInt, e.rsInt, cycle)
	e.drainFUClass(e.fuFP, e.rsFP, cycle)
}

func (e *Engine) drainFUClass(fu *pipeline.FUPool, rs *pipeline.RSPool, cycle int) {
	for slot := 0; slot < fu.Len(); slot++ {
		in := fu.Occupant(slot)
		if in == nil {
			continue
		}
		if in.ExecuteCycle+fu.Latency > cycle {
			continue
		}

		entry := findEntry(rs, in)
		if entry == nil {
			panic(fmt.Sprintf("core: FU occupant %d has no matching reservation-station entry", in.Index))
		}
		rs.Remove(entry)

		if e.ops.WritesCDB(in.Op) {
			in.CDBCycle = cycle
			e.cdb.Claim(in)
		}

		fu.Free(slot)
	}
}

func findEntry(pool *pipeline.RSPool, in *trace.Instruction) *pipeline.Entry {
	for _, e := range pool.InOrder() {
		if e.Insn == in {
			return e
		}
	}
	return nil
}

// stepIssueToExecute binds ready, unbound entries to free functional
// units, oldest program order first, then refreshes readiness for the
// next cycle.
//
// Binding must run before the readiness refresh: an entry whose last
// producer retires this same cycle (stepCDBToRetire runs first in the
// reverse-order sequence and clears its Q tag this cycle) only becomes
// visibly ready starting next cycle. Refreshing before binding would let
// it execute the very cycle it turned ready, one cycle too early — a
// dependent instruction would then execute a full cycle before its
// producer's tag has actually had a cycle to settle, so the FU bind must
// see last cycle's readiness, not this cycle's.
func (e *Engine) stepIssueToExecute(cycle int) {
	bindFUs(e.rsInt, e.fuInt, cycle)
	bindFUs(e.rsFP, e.fuFP, cycle)

	refreshReady(e.rsInt)
	refreshReady(e.rsFP)
}

func refreshReady(pool *pipeline.RSPool) {
	for _, entry := range pool.InOrder() {
		if entry.Ready {
			continue
		}
		ready := true
		for _, q := range entry.Insn.Q {
			if q != nil {
				ready = false
				break
			}
		}
		entry.Ready = ready
	}
}

func bindFUs(pool *pipeline.RSPool, fu *pipeline.FUPool, cycle int) {
	for _, entry := range pool.InOrder() {
		if entry.HasFU || !entry.Ready {
			continue
		}
		in := entry.Insn
		if in.IssueCycle == 0 || in.IssueCycle >= cycle || in.ExecuteCycle != 0 {
			continue
		}
		if !fu.Claim(in) {
			// No FU of this class free; stop scanning this pool this
			// cycle so older entries keep priority next cycle too.
			break
		}
		in.ExecuteCycle = cycle
		entry.HasFU = true
	}
}

// stepDispatchToIssue examines the instruction queue head and, if
// eligible, retires a control transfer or allocates a reservation
// station. Only the head may advance per cycle.
func (e *Engine) stepDispatchToIssue(cycle int) {
	head := e.queue.Head()
	if head == nil {
		return
	}
	if head.DispatchCycle >= cycle || head.IssueCycle != 0 {
		return
	}

	if e.ops.IsControl(head.Op) {
		e.queue.PopHead()
		return
	}

	var pool *pipeline.RSPool
	switch {
	case e.ops.UsesIntFU(head.Op):
		pool = e.rsInt
	case e.ops.UsesFPFU(head.Op):
		pool = e.rsFP
	default:
		return
	}

	if pool.Full() {
		return
	}

	entry := pool.Add(head)
	head.IssueCycle = cycle

	ready := true
	for i, r := range head.RIn {
		if r == isa.DNA {
			continue
		}
		if producer := e.mapTable.Get(r); producer != nil {
			head.Q[i] = producer
			ready = false
		}
	}
	entry.Ready = ready

	for _, r := range head.ROut {
		if r != isa.DNA {
			e.mapTable.Set(r, head)
		}
	}

	e.queue.PopHead()
}

// stepFetchToDispatch pulls the next non-trap instruction from the trace
// into the instruction queue, if there is room and the trace isn't
// exhausted.
func (e *Engine) stepFetchToDispatch(cycle int) {
	if e.queue.Full() || e.cursor.Done() {
		return
	}

	for {
		in, ok := e.cursor.Next()
		if !ok {
			return
		}
		if e.ops.IsTrap(in.Op) {
			continue
		}
		in.DispatchCycle = cycle
		e.queue.PushBack(in)
		return
	}
}
