package pipeline

import "github.com/archsim/tomasulo/internal/trace"

// FUPool is a fixed array of functional-unit slots for one class
// (integer or floating-point). Each slot is either empty or bound to the
// instruction currently executing in it.
type FUPool struct {
	slots   []*trace.Instruction
	Latency int
}

// NewFUPool returns an empty pool of the given slot count and per-class
// latency.
func NewFUPool(slots int, latency int) *FUPool {
	return &FUPool{slots: make([]*trace.Instruction, slots), Latency: latency}
}

// Len returns the number of functional-unit slots in this class.
func (p *FUPool) Len() int { return len(p.slots) }

// Occupant returns the instruction bound to slot i, or nil if free.
func (p *FUPool) Occupant(i int) *trace.Instruction { return p.slots[i] }

// Claim binds in to the first empty slot, scanning lowest-indexed first
// (the arbitration order §4.4 requires). Returns false if every slot is
// busy.
func (p *FUPool) Claim(in *trace.Instruction) bool {
	for i := range p.slots {
		if p.slots[i] == nil {
			p.slots[i] = in
			return true
		}
	}
	return false
}

// Free vacates slot i.
func (p *FUPool) Free(i int) {
	p.slots[i] = nil
}
