// Package trace models the pre-decoded linear instruction stream the
// Tomasulo core schedules. Loading a binary trace, an ELF image, or a
// live decoder's output is out of this module's scope — the core only
// needs the shape described here; LoadFile reads this repo's own JSON
// trace format.
package trace

import (
	"fmt"

	"github.com/archsim/tomasulo/internal/isa"
)

// Instruction is one entry of the decoded trace. Everything except Q and
// the four timestamp fields is written once by the loader and read-only
// afterwards; Q and the timestamp fields are written by the scheduling
// core as the instruction advances through the pipeline.
type Instruction struct {
	Op    isa.Opcode
	PC    uint64
	Index int // program order, assigned by the loader

	RIn  [3]int // input register ids, isa.DNA if absent
	ROut [2]int // output register ids, isa.DNA if absent

	// Q holds the producer of each input register at dispatch time, or
	// nil if the input was already available. Cleared to nil as each
	// producer retires from the CDB.
	Q [3]*Instruction

	DispatchCycle int
	IssueCycle    int
	ExecuteCycle  int
	CDBCycle      int
}

// String renders the four timestamps the way the original simulator's
// print_insn helper did, for -dump output.
func (in *Instruction) String() string {
	return fmt.Sprintf("#%04d pc=%#x op=%d  dispatch=%d issue=%d execute=%d cdb=%d",
		in.Index, in.PC, in.Op, in.DispatchCycle, in.IssueCycle, in.ExecuteCycle, in.CDBCycle)
}

// Chunk is one fixed-size segment of a (possibly multi-segment) trace.
// A real trace loader may stream chunks from disk lazily; Size reports
// how many of Table's slots are populated.
type Chunk struct {
	Table []Instruction
	Size  int
	Next  *Chunk
}

// Validate enforces the trace contract the core relies on: every chunk
// carries at least one instruction, and every register id is either
// isa.DNA or within [0, totalRegs).
func (c *Chunk) Validate(totalRegs int) error {
	for cur := c; cur != nil; cur = cur.Next {
		if cur.Size <= 0 {
			return fmt.Errorf("trace: chunk has non-positive size %d", cur.Size)
		}
		if cur.Size > len(cur.Table) {
			return fmt.Errorf("trace: chunk size %d exceeds table length %d", cur.Size, len(cur.Table))
		}
		for i := 0; i < cur.Size; i++ {
			in := &cur.Table[i]
			for _, r := range in.RIn {
				if r != isa.DNA && (r < 0 || r >= totalRegs) {
					return fmt.Errorf("trace: instruction %d has out-of-range input register %d", in.Index, r)
				}
			}
			for _, r := range in.ROut {
				if r != isa.DNA && (r < 0 || r >= totalRegs) {
					return fmt.Errorf("trace: instruction %d has out-of-range output register %d", in.Index, r)
				}
			}
		}
	}
	return nil
}

// Load builds a chunked trace from a flat instruction slice, stamping
// Index in program order. chunkSize bounds how many instructions each
// Chunk holds; a real loader might instead stream chunks sized to match
// a page or a decode buffer, but the chunking/walking contract is the
// same either way.
func Load(insts []Instruction, chunkSize int) (*Chunk, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("trace: chunkSize must be positive, got %d", chunkSize)
	}
	if len(insts) == 0 {
		return nil, fmt.Errorf("trace: empty instruction stream")
	}

	var head, tail *Chunk
	for offset := 0; offset < len(insts); offset += chunkSize {
		end := offset + chunkSize
		if end > len(insts) {
			end = len(insts)
		}

		chunk := &Chunk{
			Table: make([]Instruction, end-offset),
			Size:  end - offset,
		}
		for i := range chunk.Table {
			chunk.Table[i] = insts[offset+i]
			chunk.Table[i].Index = offset + i
		}

		if head == nil {
			head = chunk
		} else {
			tail.Next = chunk
		}
		tail = chunk
	}

	return head, nil
}

// Cursor walks a chunk chain one instruction at a time, transparently
// hopping to the next chunk when the current one is exhausted.
type Cursor struct {
	chunk *Chunk
	index int
}

// NewCursor returns a Cursor positioned at the first instruction of head.
func NewCursor(head *Chunk) *Cursor {
	return &Cursor{chunk: head, index: 0}
}

// Done reports whether the cursor has consumed the last instruction of
// the last chunk. It hops across exhausted intermediate chunks the same
// way Next would, without consuming an instruction.
func (c *Cursor) Done() bool {
	for c.chunk != nil && c.index >= c.chunk.Size && c.chunk.Next != nil {
		c.chunk = c.chunk.Next
		c.index = 0
	}
	return c.chunk == nil || (c.index >= c.chunk.Size && c.chunk.Next == nil)
}

// Next returns the next instruction in program order, advancing the
// cursor (and hopping chunks as needed), or reports ok=false once the
// trace is exhausted.
func (c *Cursor) Next() (in *Instruction, ok bool) {
	for c.chunk != nil && c.index >= c.chunk.Size {
		c.chunk = c.chunk.Next
		c.index = 0
	}
	if c.chunk == nil {
		return nil, false
	}

	in = &c.chunk.Table[c.index]
	c.index++
	return in, true
}
