// Package emu provides functional CHIP-8 emulation.
package emu

import "fmt"

// StackDepth is the number of return addresses the call stack holds.
const StackDepth = 16

// FlagReg is the index of VF, the carry, borrow and collision flag.
const FlagReg = 0xF

// RegFile represents the CHIP-8 register file.
// It contains the 16 general-purpose registers V0-VF, the index register,
// the program counter and the call stack.
type RegFile struct {
	// V holds general-purpose registers V0-VF. VF doubles as a flag.
	V [16]uint8

	// I is the index register. It is 16 bits wide and is not clamped to
	// the 12-bit address space.
	I uint16

	// PC is the program counter.
	PC uint16

	// SP is the number of return addresses on the stack.
	SP uint8

	// Stack holds return addresses. Stack[SP-1] is the top.
	Stack [StackDepth]uint16
}

// NewRegFile creates a register file in its power-on state.
func NewRegFile() *RegFile {
	r := &RegFile{}
	r.Reset()
	return r
}

// Reset restores the power-on state: PC at ProgramStart, everything else
// zero.
func (r *RegFile) Reset() {
	*r = RegFile{PC: ProgramStart}
}

// ReadReg reads Vx. Only the low nibble of x is used.
func (r *RegFile) ReadReg(x uint8) uint8 {
	return r.V[x&0xF]
}

// WriteReg writes Vx. Only the low nibble of x is used.
func (r *RegFile) WriteReg(x uint8, value uint8) {
	r.V[x&0xF] = value
}

// SetFlag writes 1 or 0 to VF.
func (r *RegFile) SetFlag(set bool) {
	if set {
		r.V[FlagReg] = 1
		return
	}
	r.V[FlagReg] = 0
}

// Push stores a return address on the stack.
func (r *RegFile) Push(addr uint16) error {
	if int(r.SP) >= StackDepth {
		return fmt.Errorf("%w: push 0x%03X with %d entries", ErrStackOverflow, addr, r.SP)
	}
	r.Stack[r.SP] = addr
	r.SP++
	return nil
}

// Pop removes and returns the most recent return address.
func (r *RegFile) Pop() (uint16, error) {
	if r.SP == 0 {
		return 0, ErrStackUnderflow
	}
	r.SP--
	return r.Stack[r.SP], nil
}
