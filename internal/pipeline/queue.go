package pipeline

import "github.com/archsim/tomasulo/internal/trace"

// InstrQueue is the bounded FIFO between fetch and dispatch. Only the
// head is ever eligible to advance; fetch appends at the tail.
type InstrQueue struct {
	entries  []*trace.Instruction
	capacity int
}

// NewInstrQueue returns an empty queue with the given capacity.
func NewInstrQueue(capacity int) *InstrQueue {
	return &InstrQueue{entries: make([]*trace.Instruction, 0, capacity), capacity: capacity}
}

// Len returns the number of instructions currently queued.
func (q *InstrQueue) Len() int { return len(q.entries) }

// Full reports whether the queue is at capacity.
func (q *InstrQueue) Full() bool { return len(q.entries) >= q.capacity }

// PushBack appends in to the queue tail. The caller must check Full first.
func (q *InstrQueue) PushBack(in *trace.Instruction) {
	q.entries = append(q.entries, in)
}

// Head returns the queue head without removing it, or nil if empty.
func (q *InstrQueue) Head() *trace.Instruction {
	if len(q.entries) == 0 {
		return nil
	}
	return q.entries[0]
}

// PopHead removes and returns the queue head.
func (q *InstrQueue) PopHead() *trace.Instruction {
	if len(q.entries) == 0 {
		return nil
	}
	head := q.entries[0]
	q.entries = q.entries[1:]
	return head
}
