package emu

// InstructionSize is the size of every CHIP-8 instruction in bytes.
const InstructionSize = 2

// BranchUnit implements CHIP-8 jumps, subroutine calls and skips.
// Every method leaves PC pointing at the next instruction to execute.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// Next advances PC past the current instruction.
func (b *BranchUnit) Next() {
	b.regFile.PC += InstructionSize
}

// JP jumps to nnn.
func (b *BranchUnit) JP(nnn uint16) {
	b.regFile.PC = nnn
}

// JPV0 jumps to nnn + V0.
func (b *BranchUnit) JPV0(nnn uint16) {
	b.regFile.PC = nnn + uint16(b.regFile.ReadReg(0))
}

// CALL pushes the address of the calling instruction and jumps to nnn.
// RET resumes after it.
func (b *BranchUnit) CALL(nnn uint16) error {
	if err := b.regFile.Push(b.regFile.PC); err != nil {
		return err
	}
	b.regFile.PC = nnn
	return nil
}

// RET pops the calling instruction's address and continues after it.
func (b *BranchUnit) RET() error {
	addr, err := b.regFile.Pop()
	if err != nil {
		return err
	}
	b.regFile.PC = addr + InstructionSize
	return nil
}

// SkipIf skips the next instruction when cond holds and otherwise moves
// on to it.
func (b *BranchUnit) SkipIf(cond bool) {
	if cond {
		b.regFile.PC += 2 * InstructionSize
		return
	}
	b.regFile.PC += InstructionSize
}
