package pipeline

import "github.com/archsim/tomasulo/internal/trace"

// Entry is one reservation-station slot: the instruction it holds, plus
// the two flags Issue-to-Execute needs.
type Entry struct {
	Insn     *trace.Instruction
	Ready    bool
	HasFU    bool
	occupied bool
	seq      int
}

// RSPool is a fixed-capacity reservation-station pool. It is a fixed
// array of slots, each with an occupied flag and an insertion sequence
// number, rather than the source's singly linked list (see Design Notes):
// capacities are small (≤4), so Add takes the first free slot and InOrder
// sorts the occupied slots by sequence number, which gives the same
// in-order semantics without Add or Remove allocating.
type RSPool struct {
	slots   []Entry
	nextSeq int
}

// NewRSPool returns an empty pool with the given capacity.
func NewRSPool(capacity int) *RSPool {
	return &RSPool{slots: make([]Entry, capacity)}
}

// Full reports whether every slot is occupied.
func (p *RSPool) Full() bool {
	for i := range p.slots {
		if !p.slots[i].occupied {
			return false
		}
	}
	return true
}

// Empty reports whether no slot is occupied.
func (p *RSPool) Empty() bool {
	for i := range p.slots {
		if p.slots[i].occupied {
			return false
		}
	}
	return true
}

// Add occupies the first free slot with in and returns a pointer to its
// Entry. The caller must have checked Full first.
func (p *RSPool) Add(in *trace.Instruction) *Entry {
	for i := range p.slots {
		if !p.slots[i].occupied {
			p.slots[i] = Entry{Insn: in, occupied: true, seq: p.nextSeq}
			p.nextSeq++
			return &p.slots[i]
		}
	}
	panic("pipeline: RSPool.Add called on a full pool")
}

// Remove vacates e's slot.
func (p *RSPool) Remove(e *Entry) {
	*e = Entry{}
}

// InOrder returns every occupied entry, in program order (insertion
// order, which tracks program order because the engine only ever
// dispatches the instruction queue's head).
func (p *RSPool) InOrder() []*Entry {
	out := make([]*Entry, 0, len(p.slots))
	for i := range p.slots {
		if p.slots[i].occupied {
			out = append(out, &p.slots[i])
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].seq > out[j].seq; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
