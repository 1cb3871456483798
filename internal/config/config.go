// Package config loads the Tomasulo engine's tunables from YAML, the
// same way the teacher repo's internal/config package loads its
// processor-and-memory-hierarchy tunables — same library, same
// load/validate/default shape, different field set.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every engine tunable as a runtime-configurable field,
// plus the ambient knobs (trace path, watchdog, verbosity) a real CLI
// needs around the core.
type Config struct {
	ISA string `yaml:"isa"` // descriptive only; TotalRegs is set independently below

	IFQSize   int `yaml:"ifqSize"`
	RSInt     int `yaml:"rsInt"`
	RSFP      int `yaml:"rsFp"`
	FUInt     int `yaml:"fuInt"`
	FUFP      int `yaml:"fuFp"`
	LInt      int `yaml:"lInt"`
	LFP       int `yaml:"lFp"`
	TotalRegs int `yaml:"totalRegs"`

	TracePath string `yaml:"tracePath"`
	ChunkSize int    `yaml:"chunkSize"`

	// MaxCycles caps how many cycles Engine.Run will simulate before
	// aborting as a watchdog. Zero means no cap. This bound plays no part
	// in the scheduling algorithm itself — it exists only to stop a
	// misconfigured or genuinely diverging run from spinning forever.
	MaxCycles int `yaml:"maxCycles"`

	Verbose bool `yaml:"verbose"`
}

// LoadConfig reads and validates a YAML configuration file, teacher-style.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validateConfig checks whether the configuration describes a coherent
// Tomasulo engine.
func validateConfig(cfg *Config) error {
	if cfg.IFQSize <= 0 {
		return fmt.Errorf("ifqSize must be positive")
	}
	if cfg.RSInt <= 0 || cfg.RSFP <= 0 {
		return fmt.Errorf("rsInt and rsFp must be positive")
	}
	if cfg.FUInt <= 0 || cfg.FUFP <= 0 {
		return fmt.Errorf("fuInt and fuFp must be positive")
	}
	if cfg.LInt <= 0 || cfg.LFP <= 0 {
		return fmt.Errorf("lInt and lFp must be positive")
	}
	if cfg.TotalRegs <= 0 {
		return fmt.Errorf("totalRegs must be positive")
	}
	if cfg.ChunkSize <= 0 {
		return fmt.Errorf("chunkSize must be positive")
	}

	validISAs := map[string]bool{"RISC-V": true, "x86": true, "ARM": true, "MIPS": true, "Custom": true}
	if !validISAs[cfg.ISA] {
		return fmt.Errorf("unsupported ISA: %s", cfg.ISA)
	}

	return nil
}

// DefaultConfig returns the canonical Tomasulo engine tunables: a
// 10-entry instruction queue, 4 integer and 2 floating-point reservation
// stations, 2 integer and 1 floating-point functional units with
// latencies 4 and 9, and a 32-entry register file.
func DefaultConfig() *Config {
	return &Config{
		ISA: "RISC-V",

		IFQSize:   10,
		RSInt:     4,
		RSFP:      2,
		FUInt:     2,
		FUFP:      1,
		LInt:      4,
		LFP:       9,
		TotalRegs: 32,

		ChunkSize: 256,
		MaxCycles: 0,
	}
}
