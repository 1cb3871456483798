package pipeline

import "github.com/archsim/tomasulo/internal/trace"

// CDBSlot models the single shared common-data-bus broadcast channel.
type CDBSlot struct {
	occupant *trace.Instruction
}

// Occupied reports whether some instruction currently owns the bus.
func (c *CDBSlot) Occupied() bool { return c.occupant != nil }

// Occupant returns the instruction currently broadcasting, or nil.
func (c *CDBSlot) Occupant() *trace.Instruction { return c.occupant }

// Claim sets in as the current broadcaster, overwriting whatever was
// there before. Execute-to-CDB arbitration (§4.4) relies on this
// overwrite behavior for same-cycle completions — see DESIGN.md.
func (c *CDBSlot) Claim(in *trace.Instruction) { c.occupant = in }

// Clear vacates the bus.
func (c *CDBSlot) Clear() { c.occupant = nil }
