// Package benchmarks provides timing benchmark infrastructure for c8sim
// calibration.
package benchmarks

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/timing/cache"
	"github.com/sarchlab/c8sim/timing/core"
	"github.com/sarchlab/c8sim/timing/latency"
)

// DefaultMaxTicks bounds a benchmark that never reaches its final loop.
const DefaultMaxTicks = 100000

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count from the timing model
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// Instructions is the number of executed instructions
	Instructions uint64 `json:"instructions"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// MemoryCycles is the part of SimulatedCycles spent in the caches
	MemoryCycles uint64 `json:"memory_cycles"`

	// FetchHits/Misses count fetch cache accesses
	FetchHits   uint64 `json:"fetch_hits"`
	FetchMisses uint64 `json:"fetch_misses"`

	// DataHits/Misses count data cache accesses
	DataHits   uint64 `json:"data_hits"`
	DataMisses uint64 `json:"data_misses"`

	// V0 is the value of V0 when the benchmark finished
	V0 uint8 `json:"v0"`

	// Finished is false if the benchmark hit MaxTicks or halted
	Finished bool `json:"finished"`

	// Error is the halt reason, if any
	Error string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Program is the CHIP-8 machine code to execute. It must end with a
	// jump to itself, which marks the end of the benchmark.
	Program []byte

	// ExpectedV0 is the expected value of V0 at the end (for validation)
	ExpectedV0 uint8
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Timing sets the instruction latencies. Nil uses the defaults.
	Timing *latency.TimingConfig

	// FetchCache and DataCache set the cache geometries. Nil uses the
	// defaults.
	FetchCache *cache.Config
	DataCache  *cache.Config

	// MaxTicks bounds each benchmark run
	MaxTicks uint64

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		MaxTicks: DefaultMaxTicks,
		Output:   os.Stdout,
		Verbose:  false,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.MaxTicks == 0 {
		config.MaxTicks = DefaultMaxTicks
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench)
		results = append(results, result)
	}

	return results
}

// runBenchmark executes a single benchmark.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
	}

	timing := h.config.Timing
	if timing == nil {
		timing = latency.DefaultTimingConfig()
	}

	opts := []core.Option{core.WithLatencyTable(latency.NewTableWithConfig(timing))}
	if h.config.FetchCache != nil {
		opts = append(opts, core.WithFetchCache(*h.config.FetchCache))
	}
	if h.config.DataCache != nil {
		opts = append(opts, core.WithDataCache(*h.config.DataCache))
	}

	e := emu.NewEmulator(emu.WithSeed(1))
	c := core.NewCore(e, opts...)
	if err := c.LoadROM(bench.Program); err != nil {
		result.Error = err.Error()
		return result
	}

	// The final instruction jumps to itself.
	end := uint16(emu.ProgramStart + len(bench.Program) - 2)

	start := time.Now()
	for ticks := uint64(0); ticks < h.config.MaxTicks; ticks++ {
		if e.RegFile().PC == end {
			result.Finished = true
			break
		}
		if out := c.Tick(); out.Err != nil {
			result.Error = out.Err.Error()
			break
		}
	}
	result.WallTime = time.Since(start)

	stats := c.Stats()
	result.SimulatedCycles = stats.Cycles
	result.Instructions = stats.Instructions
	result.CPI = stats.CPI()
	result.MemoryCycles = stats.MemoryCycles
	result.FetchHits = stats.FetchCache.Hits
	result.FetchMisses = stats.FetchCache.Misses
	result.DataHits = stats.DataCache.Hits
	result.DataMisses = stats.DataCache.Misses
	result.V0 = e.RegFile().ReadReg(0)

	return result
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== c8sim Timing Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Finished: %v (V0=%d)\n", r.Finished, r.V0)
		if r.Error != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  Error: %s\n", r.Error)
		}
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles: %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions:     %d\n", r.Instructions)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:              %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  Memory Cycles:    %d\n", r.MemoryCycles)

		if h.config.Verbose {
			_, _ = fmt.Fprintln(h.config.Output, "  --- Fetch Cache ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.FetchHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.FetchMisses)
			_, _ = fmt.Fprintln(h.config.Output, "  --- Data Cache ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.DataHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.DataMisses)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,memory_cycles,fetch_hits,fetch_misses,data_hits,data_misses,v0,finished")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%d,%d,%v\n",
			r.Name,
			r.SimulatedCycles,
			r.Instructions,
			r.CPI,
			r.MemoryCycles,
			r.FetchHits,
			r.FetchMisses,
			r.DataHits,
			r.DataMisses,
			r.V0,
			r.Finished,
		)
	}
}

// PrintJSON outputs benchmark results as an indented JSON array.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	enc := json.NewEncoder(h.config.Output)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// BuildProgram assembles opcodes into a big-endian byte slice.
func BuildProgram(opcodes ...uint16) []byte {
	program := make([]byte, 0, len(opcodes)*2)
	for _, op := range opcodes {
		program = binary.BigEndian.AppendUint16(program, op)
	}
	return program
}
