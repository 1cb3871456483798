package trace

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/archsim/tomasulo/internal/isa"
)

// record is the on-disk shape of one trace entry. Binary trace loading
// (ELF images, a live decoder) is a separate concern this package
// doesn't take on; JSON is this repo's own stand-in boundary format,
// kept deliberately flat so a trace is easy to hand-write for a test or
// a worked example. An absent register operand must be written
// explicitly as -1 (isa.DNA); JSON's zero value would otherwise be
// indistinguishable from register 0.
type record struct {
	Op   uint16 `json:"op"`
	PC   uint64 `json:"pc"`
	RIn  [3]int `json:"rIn"`
	ROut [2]int `json:"rOut"`
}

// LoadFile reads a JSON array of trace records from path and chunks them
// the same way Load does.
func LoadFile(path string, chunkSize int) (*Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("trace: failed to read %s: %w", path, err)
	}

	var recs []record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("trace: failed to parse %s: %w", path, err)
	}

	insts := make([]Instruction, len(recs))
	for i, r := range recs {
		insts[i] = Instruction{
			Op:   isa.Opcode(r.Op),
			PC:   r.PC,
			RIn:  r.RIn,
			ROut: r.ROut,
		}
	}

	return Load(insts, chunkSize)
}
