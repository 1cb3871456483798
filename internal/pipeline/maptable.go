// Package pipeline holds the fixed-capacity structural primitives the
// Tomasulo engine is built from: the register map table, the instruction
// queue, the reservation-station pools, the functional-unit pools, and
// the CDB slot. None of these know about stage ordering — that belongs
// to internal/core; these are just the tables the stage handlers read
// and mutate.
package pipeline

import "github.com/archsim/tomasulo/internal/trace"

// MapTable tracks, for each architectural register, the in-flight
// instruction that will produce its next value. A nil entry means the
// register's current value is already available.
type MapTable struct {
	producers []*trace.Instruction
}

// NewMapTable allocates a map table with totalRegs entries, all initially
// unmapped.
func NewMapTable(totalRegs int) *MapTable {
	return &MapTable{producers: make([]*trace.Instruction, totalRegs)}
}

// Get returns the current producer of register r, or nil if r's value is
// already available.
func (m *MapTable) Get(r int) *trace.Instruction {
	return m.producers[r]
}

// Set overwrites the producer of register r. Dispatch calls this
// unconditionally for every output register of a newly-issued
// instruction, implementing WAW renaming: a later writer simply
// supersedes an earlier one's map-table entry.
func (m *MapTable) Set(r int, in *trace.Instruction) {
	m.producers[r] = in
}

// Clear unconditionally clears register r's map-table entry. Called at
// CDB retirement for each output register of the broadcasting
// instruction, matching the source's retire behavior literally: if a
// later WAW writer has already overwritten the entry, this still blanks
// it, rather than checking that it still belongs to the retiring
// instruction.
func (m *MapTable) Clear(r int) {
	m.producers[r] = nil
}
