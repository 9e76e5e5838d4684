// Package main provides a profiling wrapper for c8sim to identify
// performance bottlenecks.
package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/loader"
	"github.com/sarchlab/c8sim/timing/core"
)

type options struct {
	Timing     bool          `long:"timing" description:"Run through the timing model"`
	CPUProfile string        `long:"cpuprofile" description:"Write cpu profile to file"`
	MemProfile string        `long:"memprofile" description:"Write memory profile to file"`
	Duration   time.Duration `long:"duration" default:"30s" description:"Max duration to run"`
	Cycles     uint64        `long:"cycles" default:"1000000" description:"Ticks to execute"`

	Args struct {
		ROM string `positional-arg-name:"rom" required:"yes"`
	} `positional-args:"yes"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Start CPU profiling if requested
	if opts.CPUProfile != "" {
		f, err := os.Create(opts.CPUProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	prog, err := loader.Load(opts.Args.ROM)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded: %s (%d bytes)\n", opts.Args.ROM, len(prog.Data))

	go func() {
		time.Sleep(opts.Duration)
		fmt.Printf("\nTimeout reached after %v - stopping execution\n", opts.Duration)
		os.Exit(2)
	}()

	start := time.Now()

	var out emu.CycleOutcome
	var ticks uint64
	if opts.Timing {
		out, ticks = runTimingProfile(prog, opts.Cycles)
	} else {
		out, ticks = runEmulationProfile(prog, opts.Cycles)
	}

	elapsed := time.Since(start)

	// Write memory profile if requested
	if opts.MemProfile != "" {
		f, err := os.Create(opts.MemProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	fmt.Printf("\nProfiling Results:\n")
	if out.Err != nil && !errors.Is(out.Err, emu.ErrCycleLimit) {
		fmt.Printf("Halted: %v\n", out.Err)
	}
	fmt.Printf("Ticks executed: %d\n", ticks)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if ticks > 0 {
		fmt.Printf("Ticks/second: %.0f\n", float64(ticks)/elapsed.Seconds())
	}
}

// runEmulationProfile runs the program in functional emulation mode.
func runEmulationProfile(prog *loader.Program, cycles uint64) (emu.CycleOutcome, uint64) {
	emulator := emu.NewEmulator(emu.WithSeed(1))
	if err := emulator.LoadROM(prog.Data); err != nil {
		return emu.CycleOutcome{Err: err}, 0
	}

	out := emulator.RunCycles(cycles)
	return out, emulator.CycleCount()
}

// runTimingProfile runs the program through the latency and cache models.
func runTimingProfile(prog *loader.Program, cycles uint64) (emu.CycleOutcome, uint64) {
	c := core.NewCore(emu.NewEmulator(emu.WithSeed(1)))
	if err := c.LoadROM(prog.Data); err != nil {
		return emu.CycleOutcome{Err: err}, 0
	}

	out := c.RunCycles(cycles)
	stats := c.Stats()
	fmt.Printf("Simulated cycles: %d (CPI %.2f)\n", stats.Cycles, stats.CPI())

	return out, stats.Ticks
}
