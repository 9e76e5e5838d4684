package benchmarks

// GetMicrobenchmarks returns the standard set of microbenchmarks. Each
// benchmark targets one part of the timing model.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		memorySequential(),
		functionCalls(),
		branchLoop(),
		drawHeavy(),
		bcdConversion(),
	}
}

// GetCoreBenchmarks returns a minimal set of benchmarks for quick validation.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		branchLoop(),
		memorySequential(),
		drawHeavy(),
	}
}

// 1. Arithmetic Sequential - ALU throughput with immediate adds
func arithmeticSequential() Benchmark {
	return Benchmark{
		Name:        "arithmetic_sequential",
		Description: "Immediate load and three adds - measures ALU latency",
		Program: BuildProgram(
			0x6001, // V0 = 1
			0x7001, // V0 += 1
			0x7001,
			0x7001,
			0x1208, // spin
		),
		ExpectedV0: 4,
	}
}

// 2. Dependency Chain - a long run of adds to one register
func dependencyChain() Benchmark {
	return Benchmark{
		Name:        "dependency_chain",
		Description: "20 dependent adds to V0 - fills the fetch cache sequentially",
		Program:     buildDependencyChain(20),
		ExpectedV0:  20,
	}
}

func buildDependencyChain(n int) []byte {
	opcodes := []uint16{0x6000}
	for i := 0; i < n; i++ {
		opcodes = append(opcodes, 0x7001)
	}
	spin := uint16(0x200 + 2*len(opcodes))
	opcodes = append(opcodes, 0x1000|spin)
	return BuildProgram(opcodes...)
}

// 3. Memory Sequential - register dump and reload through the data cache
func memorySequential() Benchmark {
	return Benchmark{
		Name:        "memory_sequential",
		Description: "FX55 then FX65 on the same line - data cache miss then hits",
		Program: BuildProgram(
			0xA300, // I = 0x300
			0x602A, // V0 = 42
			0x612B, // V1 = 43
			0xF155, // store V0-V1
			0x6000,
			0x6100,
			0xA300,
			0xF165, // load V0-V1
			0x1210, // spin
		),
		ExpectedV0: 42,
	}
}

// 4. Function Calls - CALL/RET overhead
func functionCalls() Benchmark {
	return Benchmark{
		Name:        "function_calls",
		Description: "5 calls to a one-instruction subroutine",
		Program: BuildProgram(
			0x6000,
			0x1208, // jump main
			0x7001, // inc: V0 += 1
			0x00EE,
			0x2204, // main: call inc
			0x2204,
			0x2204,
			0x2204,
			0x2204,
			0x1212, // spin
		),
		ExpectedV0: 5,
	}
}

// 5. Branch Loop - counted loop with a skip and a backward jump
func branchLoop() Benchmark {
	return Benchmark{
		Name:        "branch_loop",
		Description: "Count V0 to 10 with 3XNN and a backward jump",
		Program: BuildProgram(
			0x6000,
			0x7001, // loop: V0 += 1
			0x300A, // skip if V0 == 10
			0x1202, // jump loop
			0x1208, // spin
		),
		ExpectedV0: 10,
	}
}

// 6. Draw Heavy - sprite reads and screen clears
func drawHeavy() Benchmark {
	return Benchmark{
		Name:        "draw_heavy",
		Description: "Four 5-row draws of a font glyph and a clear",
		Program: BuildProgram(
			0x6000,
			0xF029, // I = glyph 0
			0xD005,
			0xD005,
			0xD005,
			0xD005,
			0x00E0,
			0x120E, // spin
		),
		ExpectedV0: 0,
	}
}

// 7. BCD Conversion - FX33 stores followed by a reload
func bcdConversion() Benchmark {
	return Benchmark{
		Name:        "bcd_conversion",
		Description: "FX33 of 123 then FX65 of the digits",
		Program: BuildProgram(
			0x607B, // V0 = 123
			0xA300,
			0xF033,
			0xF265, // V0-V2 = 1, 2, 3
			0x1208, // spin
		),
		ExpectedV0: 1,
	}
}
