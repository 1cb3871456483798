// Package simulator fans a batch of independent traces out across
// goroutines, one Engine per trace, and aggregates their outcomes. This
// plays the role the teacher's simulator.simulator played for a bank of
// cores (sync.WaitGroup over goroutines, an atomic "running" flag, a
// mutex-guarded Statistics snapshot) — generalized from "one goroutine
// per core" to "one goroutine per trace", since the scheduling core
// itself must stay single-threaded and has no internal concurrency
// boundary to exploit; this layer is where independent work units
// (traces instead of cores) actually run in parallel.
package simulator

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/archsim/tomasulo/internal/config"
	"github.com/archsim/tomasulo/internal/core"
	"github.com/archsim/tomasulo/internal/isa"
	"github.com/archsim/tomasulo/internal/trace"
)

// Job names one trace to run.
type Job struct {
	Name string
	Head *trace.Chunk
}

// Result is the outcome of one Job.
type Result struct {
	Name   string
	Cycles int
	Err    error
}

// Statistics aggregates every Result a batch produced.
type Statistics struct {
	TracesRun   int
	Failures    int
	TotalCycles int64
	MaxCycles   int
	MinCycles   int
}

// Simulator runs a batch of traces, each against its own single-threaded
// core.Engine, concurrently.
type Simulator struct {
	cfg *config.Config
	ops isa.Table

	running  atomic.Bool
	stopChan chan struct{}

	mu      sync.RWMutex
	results []Result
}

// New returns a Simulator sharing cfg and an opcode table across every
// Engine it spawns.
func New(cfg *config.Config, ops isa.Table) (*Simulator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("simulator: nil configuration")
	}
	return &Simulator{cfg: cfg, ops: ops, stopChan: make(chan struct{})}, nil
}

// ErrAlreadyRunning is returned by Run if called while a previous Run on
// the same Simulator is still in flight.
var ErrAlreadyRunning = errors.New("simulator: already running")

// Run drives jobs to completion concurrently, one goroutine and one
// Engine per job, and blocks until every job it launched finishes;
// Shutdown does not make it return sooner. A job already launched when
// Shutdown fires runs to completion — core.Engine deliberately has no
// mid-run cancellation point, since the scheduling algorithm has no safe
// point to suspend mid-cycle — only jobs not yet launched are skipped.
func (s *Simulator) Run(jobs []Job) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	var wg sync.WaitGroup
	for _, job := range jobs {
		select {
		case <-s.stopChan:
			s.record(Result{Name: job.Name, Err: errors.New("simulator: skipped, shutdown requested")})
			continue
		default:
		}

		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			e, err := core.NewEngine(s.cfg, s.ops, job.Head)
			if err != nil {
				s.record(Result{Name: job.Name, Err: err})
				return
			}
			cycles, err := e.Run(s.cfg.MaxCycles)
			s.record(Result{Name: job.Name, Cycles: cycles, Err: err})
		}(job)
	}
	wg.Wait()

	return nil
}

// Shutdown signals Run to stop launching new jobs. Jobs already running
// are left to finish.
func (s *Simulator) Shutdown() {
	if !s.running.Load() {
		return
	}
	close(s.stopChan)
}

func (s *Simulator) record(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
}

// Results returns a copy of every Result recorded so far.
func (s *Simulator) Results() []Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Result, len(s.results))
	copy(out, s.results)
	return out
}

// Statistics summarizes the Results recorded so far.
func (s *Simulator) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats Statistics
	for _, r := range s.results {
		stats.TracesRun++
		if r.Err != nil {
			stats.Failures++
			continue
		}
		stats.TotalCycles += int64(r.Cycles)
		if stats.MaxCycles == 0 || r.Cycles > stats.MaxCycles {
			stats.MaxCycles = r.Cycles
		}
		if stats.MinCycles == 0 || r.Cycles < stats.MinCycles {
			stats.MinCycles = r.Cycles
		}
	}
	return stats
}
