// Package isa is the thin opcode-flags oracle the Tomasulo core consumes.
//
// The real instruction set decoder — opcode tables, operand field layout,
// the works — lives outside this module's scope (see the PURPOSE & SCOPE
// section of the design this package implements). All the scheduling core
// needs is a handful of per-opcode predicates, so that is all this
// package provides.
package isa

// Opcode is an opaque decoded operation identifier. The core never
// interprets its value beyond looking up its Flags.
type Opcode uint16

// DNA marks an absent register operand in an instruction's input/output
// slots.
const DNA int = -1

// Flags classifies an opcode along the axes the scheduler cares about.
// A real decoder would derive these from a much larger opcode table;
// here they are assigned directly per Opcode.
type Flags uint8

const (
	FlagUncondCtrl Flags = 1 << iota
	FlagCondCtrl
	FlagIComp
	FlagFComp
	FlagLoad
	FlagStore
	FlagTrap
)

// Table is a pure lookup from Opcode to Flags, populated by whatever
// decoder front-end produced the trace. The scheduling core is handed a
// Table and never mutates it.
type Table map[Opcode]Flags

func (t Table) flags(op Opcode) Flags {
	return t[op]
}

// IsUncondCtrl reports whether op is an unconditional control transfer
// (branch, jump, or call).
func (t Table) IsUncondCtrl(op Opcode) bool { return t.flags(op)&FlagUncondCtrl != 0 }

// IsCondCtrl reports whether op is a conditional branch.
func (t Table) IsCondCtrl(op Opcode) bool { return t.flags(op)&FlagCondCtrl != 0 }

// IsIComp reports whether op is an integer compute operation.
func (t Table) IsIComp(op Opcode) bool { return t.flags(op)&FlagIComp != 0 }

// IsFComp reports whether op is a floating-point compute operation.
func (t Table) IsFComp(op Opcode) bool { return t.flags(op)&FlagFComp != 0 }

// IsLoad reports whether op loads from memory.
func (t Table) IsLoad(op Opcode) bool { return t.flags(op)&FlagLoad != 0 }

// IsStore reports whether op stores to memory.
func (t Table) IsStore(op Opcode) bool { return t.flags(op)&FlagStore != 0 }

// IsTrap reports whether op is a trap/syscall instruction.
func (t Table) IsTrap(op Opcode) bool { return t.flags(op)&FlagTrap != 0 }

// IsControl reports whether op is any kind of control transfer.
func (t Table) IsControl(op Opcode) bool { return t.IsUncondCtrl(op) || t.IsCondCtrl(op) }

// UsesIntFU reports whether op occupies an integer functional unit.
func (t Table) UsesIntFU(op Opcode) bool {
	return t.IsIComp(op) || t.IsLoad(op) || t.IsStore(op)
}

// UsesFPFU reports whether op occupies a floating-point functional unit.
func (t Table) UsesFPFU(op Opcode) bool { return t.IsFComp(op) }

// WritesCDB reports whether op produces a result that broadcasts on the
// common data bus. Stores compute an address but never write back.
func (t Table) WritesCDB(op Opcode) bool {
	return t.IsIComp(op) || t.IsLoad(op) || t.IsFComp(op)
}
