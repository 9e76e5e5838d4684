package emu

import "fmt"

// IndexLimit is the highest address I can point at in the 12-bit address
// space. FX1E reports carrying past it in VF.
const IndexLimit = 0xFFF

// LoadStoreUnit implements the CHIP-8 instructions that move data between
// registers, the index register and memory.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and memory.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		memory:  memory,
	}
}

// LDI performs I = nnn.
func (lsu *LoadStoreUnit) LDI(nnn uint16) {
	lsu.regFile.I = nnn
}

// ADDI performs I = I + Vx. VF = 1 when the sum passes IndexLimit; I itself
// is not clamped.
func (lsu *LoadStoreUnit) ADDI(x uint8) {
	sum := uint32(lsu.regFile.I) + uint32(lsu.regFile.ReadReg(x))

	lsu.regFile.I = uint16(sum)
	lsu.regFile.SetFlag(sum > IndexLimit)
}

// LDF points I at the font glyph for digit Vx: I = Vx * 5.
func (lsu *LoadStoreUnit) LDF(x uint8) {
	lsu.regFile.I = FontStart + uint16(lsu.regFile.ReadReg(x))*GlyphSize
}

// LDB stores the decimal digits of Vx at I, I+1 and I+2 (hundreds first).
func (lsu *LoadStoreUnit) LDB(x uint8) error {
	v := lsu.regFile.ReadReg(x)
	digits := [3]uint8{v / 100, (v / 10) % 10, v % 10}

	for i, d := range digits {
		addr, err := lsu.at(i)
		if err != nil {
			return err
		}
		if err := lsu.memory.Write8(addr, d); err != nil {
			return err
		}
	}
	return nil
}

// Store writes V0..Vx (inclusive) to memory starting at I, then advances I
// by x+1.
func (lsu *LoadStoreUnit) Store(x uint8) error {
	for i := uint8(0); i <= x; i++ {
		addr, err := lsu.at(int(i))
		if err != nil {
			return err
		}
		if err := lsu.memory.Write8(addr, lsu.regFile.ReadReg(i)); err != nil {
			return err
		}
	}
	lsu.regFile.I += uint16(x) + 1
	return nil
}

// Load reads V0..Vx (inclusive) from memory starting at I, then advances I
// by x+1.
func (lsu *LoadStoreUnit) Load(x uint8) error {
	for i := uint8(0); i <= x; i++ {
		addr, err := lsu.at(int(i))
		if err != nil {
			return err
		}
		v, err := lsu.memory.Read8(addr)
		if err != nil {
			return err
		}
		lsu.regFile.WriteReg(i, v)
	}
	lsu.regFile.I += uint16(x) + 1
	return nil
}

// SpriteRows reads the n sprite rows starting at I.
func (lsu *LoadStoreUnit) SpriteRows(n uint8) ([]byte, error) {
	rows := make([]byte, n)
	for i := range rows {
		addr, err := lsu.at(i)
		if err != nil {
			return nil, err
		}
		v, err := lsu.memory.Read8(addr)
		if err != nil {
			return nil, err
		}
		rows[i] = v
	}
	return rows, nil
}

// at returns I+offset, rejecting sums that would wrap the 16-bit index
// register back into low memory.
func (lsu *LoadStoreUnit) at(offset int) (uint16, error) {
	addr := int(lsu.regFile.I) + offset
	if addr >= MemorySize {
		return 0, fmt.Errorf("%w: 0x%04X", ErrAddressOutOfRange, addr)
	}
	return uint16(addr), nil
}
