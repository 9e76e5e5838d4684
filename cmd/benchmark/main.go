// Command benchmark runs the c8sim timing benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	--csv            Output results in CSV format (default: human-readable)
//	--json           Output results in JSON format
//	--core           Run only the core benchmarks
//	--timing-config  Path to timing configuration JSON file
//
// Example:
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark --csv > results.csv
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/sarchlab/c8sim/benchmarks"
	"github.com/sarchlab/c8sim/timing/latency"
)

type options struct {
	CSV          bool   `long:"csv" description:"Output results in CSV format"`
	JSON         bool   `long:"json" description:"Output results in JSON format"`
	Core         bool   `long:"core" description:"Run only the core benchmarks"`
	TimingConfig string `long:"timing-config" description:"Path to timing configuration JSON file"`
	MaxTicks     uint64 `long:"max-ticks" default:"100000" description:"Tick limit per benchmark"`
	Verbose      bool   `short:"v" long:"verbose" description:"Print cache statistics"`
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

	config := benchmarks.DefaultConfig()
	config.Output = os.Stdout
	config.MaxTicks = opts.MaxTicks
	config.Verbose = opts.Verbose

	if opts.TimingConfig != "" {
		timing, err := latency.LoadConfig(opts.TimingConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading timing config: %v\n", err)
			os.Exit(1)
		}
		config.Timing = timing
	}

	harness := benchmarks.NewHarness(config)
	if opts.Core {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	results := harness.RunAll()

	switch {
	case opts.JSON:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
	case opts.CSV:
		harness.PrintCSV(results)
	default:
		fmt.Println("c8sim Timing Benchmark Harness")
		fmt.Println("==============================")
		fmt.Println("")
		harness.PrintResults(results)

		fmt.Println("=== Summary ===")
		fmt.Println("")
		fmt.Println("Expected characteristics:")
		fmt.Println("- dependency_chain: Sequential fetch, one miss per cache line")
		fmt.Println("- memory_sequential: One data miss, then hits")
		fmt.Println("- function_calls: Call/return overhead visible")
		fmt.Println("- draw_heavy: Sprite reads dominate memory cycles")
	}

	for _, r := range results {
		if !r.Finished {
			os.Exit(1)
		}
	}
}
