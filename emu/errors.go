package emu

import (
	"errors"
	"fmt"
)

// Errors reported by the emulator. Callers match them with errors.Is; the
// emulator wraps them with the address, key or opcode that caused them.
var (
	// ErrROMTooLarge is returned when a ROM does not fit between 0x200 and
	// the end of memory.
	ErrROMTooLarge = errors.New("rom too large")

	// ErrAddressOutOfRange is returned for any memory access at or past
	// MemorySize. It halts the emulator.
	ErrAddressOutOfRange = errors.New("address out of range")

	// ErrInvalidKeyCode is returned for key codes above 0xF.
	ErrInvalidKeyCode = errors.New("invalid key code")

	// ErrUnknownOpcode is the sentinel wrapped by UnknownOpcodeError.
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrStackOverflow is returned when a CALL is made with all 16 stack
	// slots in use.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrStackUnderflow is returned when RET is executed on an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrHalted is returned by Tick once the emulator has halted.
	ErrHalted = errors.New("emulator halted")
)

// UnknownOpcodeError reports an opcode that matches no instruction.
type UnknownOpcodeError struct {
	Opcode uint16
	PC     uint16
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode 0x%04X at PC=0x%03X", e.Opcode, e.PC)
}

// Unwrap returns ErrUnknownOpcode.
func (e *UnknownOpcodeError) Unwrap() error {
	return ErrUnknownOpcode
}
