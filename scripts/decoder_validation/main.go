// Validate the decoder over the whole opcode space and measure decode
// allocations.
package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/sarchlab/c8sim/insts"
)

func main() {
	decoder := insts.NewDecoder()

	counts := map[insts.Op]int{}
	for op := 0; op <= 0xFFFF; op++ {
		inst := decoder.Decode(uint16(op))
		if inst.Raw != uint16(op) {
			fmt.Printf("opcode %04X decoded with Raw=%04X\n", op, inst.Raw)
			os.Exit(1)
		}
		counts[inst.Op]++
	}

	fmt.Printf("Decoder Coverage:\n")
	fmt.Printf("=================\n")
	for op := insts.OpUnknown; op <= insts.OpLDLoad; op++ {
		fmt.Printf("  %-4s (op %2d): %5d opcodes\n", op, op, counts[op])
	}

	// Warm up
	for i := 0; i < 1000; i++ {
		decoder.Decode(0x8124)
	}

	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 100000

	for i := 0; i < iterations; i++ {
		decoder.Decode(0x8124) // ADD V1, V2
		decoder.Decode(0xD015) // DRW V0, V1, 5
		decoder.Decode(0xF233) // LD B, V2
		decoder.Decode(0x1200) // JP 0x200
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	totalDecodes := iterations * 4
	allocations := m2.Mallocs - m1.Mallocs
	allocatedBytes := m2.TotalAlloc - m1.TotalAlloc

	fmt.Printf("\nDecoder Performance:\n")
	fmt.Printf("====================\n")
	fmt.Printf("Total decode operations: %d\n", totalDecodes)
	fmt.Printf("Time elapsed: %v\n", elapsed)
	fmt.Printf("Decodes per second: %.0f\n", float64(totalDecodes)/elapsed.Seconds())
	fmt.Printf("Allocations per decode: %.3f\n", float64(allocations)/float64(totalDecodes))
	fmt.Printf("Bytes per decode: %.1f\n", float64(allocatedBytes)/float64(totalDecodes))
}
