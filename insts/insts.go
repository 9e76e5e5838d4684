// Package insts provides CHIP-8 instruction definitions and decoding.
//
// This package turns the 16-bit big-endian opcodes of a CHIP-8 program into
// structured instruction representations. It covers the original CHIP-8
// instruction set:
//   - Flow control: CLS, RET, JP, CALL, JP V0
//   - Conditional skips: SE, SNE, SKP, SKNP
//   - Register arithmetic and logic: LD, ADD, OR, AND, XOR, SUB, SHR, SUBN, SHL
//   - Index, timer, font and memory transfers from the 0xF group
//   - Sprite drawing (DRW) and random numbers (RND)
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x8124) // ADD V1, V2
//	fmt.Printf("Op: %v, X: %d, Y: %d\n", inst.Op, inst.X, inst.Y)
package insts
