package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/archsim/tomasulo/internal/config"
	"github.com/archsim/tomasulo/internal/isa"
	"github.com/archsim/tomasulo/internal/simulator"
	"github.com/archsim/tomasulo/internal/trace"
)

// ops is the thin opcode table this CLI ships with. A real front-end
// would derive this from whatever decoder produced the trace; see
// internal/isa's package doc for why that decoder is out of scope here.
func ops() isa.Table {
	return isa.Table{
		0: isa.FlagIComp,
		1: isa.FlagFComp,
		2: isa.FlagLoad,
		3: isa.FlagStore,
		4: isa.FlagUncondCtrl,
		5: isa.FlagCondCtrl,
		6: isa.FlagTrap,
	}
}

func main() {
	configPath := flag.String("config", "configs/default.yaml", "Path to the configuration file")
	tracePath := flag.String("trace", "", "Path to a JSON trace file (defaults to the config file's tracePath)")
	cycleCap := flag.Int("cycles", 0, "Watchdog cycle cap; 0 keeps the config file's maxCycles (0 there means run to drain)")
	verbose := flag.Bool("v", false, "Enable verbose output (also enabled by the config file's verbose)")
	dump := flag.Bool("dump", false, "Print per-instruction stage cycles after the run")
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)
	logger.Println("Tomasulo Out-of-Order Scheduler")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration: %v", err)
	}
	if *cycleCap > 0 {
		cfg.MaxCycles = *cycleCap
	}

	// -v and -trace take precedence over the config file's Verbose and
	// TracePath when given explicitly; otherwise the config file's
	// values carry through, teacher-style.
	if !*verbose {
		*verbose = cfg.Verbose
	}
	if *tracePath == "" {
		*tracePath = cfg.TracePath
	}
	if *verbose {
		logger.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	}
	if *tracePath == "" {
		logger.Fatalf("missing required -trace flag (or tracePath in the config file)")
	}

	fmt.Println("\nConfiguration Summary:")
	fmt.Printf("  ISA: %s\n", cfg.ISA)
	fmt.Printf("  IFQ: %d  RS_INT: %d  RS_FP: %d\n", cfg.IFQSize, cfg.RSInt, cfg.RSFP)
	fmt.Printf("  FU_INT: %d (L=%d)  FU_FP: %d (L=%d)\n", cfg.FUInt, cfg.LInt, cfg.FUFP, cfg.LFP)
	fmt.Printf("  Registers: %d\n", cfg.TotalRegs)
	fmt.Printf("  Trace: %s\n", *tracePath)

	head, err := trace.LoadFile(*tracePath, cfg.ChunkSize)
	if err != nil {
		logger.Fatalf("failed to load trace: %v", err)
	}

	sim, err := simulator.New(cfg, ops())
	if err != nil {
		logger.Fatalf("failed to initialize simulator: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		logger.Printf("Running %s...", *tracePath)
		done <- sim.Run([]simulator.Job{{Name: *tracePath, Head: head}})
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Fatalf("simulation failed: %v", err)
		}
	case <-sigChan:
		logger.Println("received termination signal, shutting down...")
		sim.Shutdown()
		<-done
		logger.Println("simulation terminated early")
		return
	}

	stats := sim.Statistics()
	fmt.Println("\nSimulation Statistics:")
	fmt.Printf("  Traces Run: %d\n", stats.TracesRun)
	fmt.Printf("  Failures: %d\n", stats.Failures)
	fmt.Printf("  Total Cycles: %d\n", stats.TotalCycles)

	for _, r := range sim.Results() {
		if r.Err != nil {
			fmt.Printf("  %s: error: %v\n", r.Name, r.Err)
			continue
		}
		fmt.Printf("  %s: %d cycles\n", r.Name, r.Cycles)
	}

	if *dump {
		fmt.Println("\nInstruction Trace:")
		cur := trace.NewCursor(head)
		for {
			in, ok := cur.Next()
			if !ok {
				break
			}
			fmt.Println(in.String())
		}
	}
}
