// Package main provides the entry point for c8sim.
// c8sim is a CHIP-8 emulator with a cycle-level timing model.
//
// For the full CLI, use: go run ./cmd/c8sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("c8sim - CHIP-8 emulator")
	fmt.Println("Timing model built on the Akita cache directory")
	fmt.Println("")
	fmt.Println("Usage: c8sim [options] <rom>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  --host           sdl, term or headless (default: sdl)")
	fmt.Println("  -n, --cycles     Ticks to run in headless mode")
	fmt.Println("  -s, --speed      Ticks per second")
	fmt.Println("  --timing-config  Path to timing configuration JSON file")
	fmt.Println("  --clock-config   Path to clock configuration JSON file")
	fmt.Println("  -v, --verbose    Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/c8sim --help' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/c8sim' instead.")
	}
}
