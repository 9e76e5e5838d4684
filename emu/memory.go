package emu

import "fmt"

// Memory map constants.
const (
	// MemorySize is the size of the CHIP-8 address space in bytes.
	MemorySize = 4096

	// ProgramStart is the address programs are loaded at and start from.
	ProgramStart = 0x200

	// MaxROMSize is the largest ROM that fits between ProgramStart and the
	// end of memory.
	MaxROMSize = MemorySize - ProgramStart

	// FontStart is the address of the first font glyph.
	FontStart = 0x000

	// GlyphSize is the number of bytes (rows) per font glyph.
	GlyphSize = 5

	// FontSize is the size of the built-in font table: 16 glyphs.
	FontSize = 16 * GlyphSize
)

// Font is the built-in 4x5 hexadecimal glyph table, one glyph per digit
// 0-F, copied to FontStart at power-on.
var Font = [FontSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// AccessKind classifies a memory access.
type AccessKind uint8

// Access kinds.
const (
	AccessFetch AccessKind = iota // Opcode fetch
	AccessData                    // Instruction operand read or write
)

// Access describes a single memory access as seen by an observer.
type Access struct {
	Addr  uint16
	Size  int
	Write bool
	Kind  AccessKind
}

// AccessObserver is notified of every successful memory access.
type AccessObserver func(Access)

// Memory is the flat 4KB CHIP-8 address space. Every accessor is bounds
// checked and reports ErrAddressOutOfRange instead of touching memory past
// the end.
type Memory struct {
	data     [MemorySize]byte
	observer AccessObserver
}

// NewMemory creates a zeroed memory.
func NewMemory() *Memory {
	return &Memory{}
}

// SetObserver installs an observer for memory accesses. A nil observer
// disables observation.
func (m *Memory) SetObserver(observer AccessObserver) {
	m.observer = observer
}

// Reset zeroes the whole address space.
func (m *Memory) Reset() {
	m.data = [MemorySize]byte{}
}

// LoadFont copies a glyph table to FontStart. The table must be exactly
// FontSize bytes.
func (m *Memory) LoadFont(glyphs []byte) error {
	if len(glyphs) != FontSize {
		return fmt.Errorf("font table must be %d bytes, got %d", FontSize, len(glyphs))
	}
	copy(m.data[FontStart:], glyphs)
	return nil
}

// LoadROM copies a program to ProgramStart and zeroes the rest of program
// space.
func (m *Memory) LoadROM(rom []byte) error {
	if len(rom) > MaxROMSize {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrROMTooLarge, len(rom), MaxROMSize)
	}

	n := copy(m.data[ProgramStart:], rom)
	clear(m.data[ProgramStart+n:])
	return nil
}

// Read8 reads one byte.
func (m *Memory) Read8(addr uint16) (byte, error) {
	return m.read8(addr, AccessData)
}

// Write8 writes one byte.
func (m *Memory) Write8(addr uint16, value byte) error {
	if err := checkRange(addr, 1); err != nil {
		return err
	}
	m.data[addr] = value
	m.notify(Access{Addr: addr, Size: 1, Write: true, Kind: AccessData})
	return nil
}

// Read16 reads a big-endian 16-bit word, high byte at addr.
func (m *Memory) Read16(addr uint16) (uint16, error) {
	return m.read16(addr, AccessData)
}

// Fetch reads the opcode at addr. It differs from Read16 only in how the
// access is reported to the observer.
func (m *Memory) Fetch(addr uint16) (uint16, error) {
	return m.read16(addr, AccessFetch)
}

// Peek reads one byte without bounds errors or observation. Addresses past
// the end of memory read as zero. It is meant for hosts and models that
// inspect memory outside of instruction execution.
func (m *Memory) Peek(addr uint16) byte {
	if int(addr) >= MemorySize {
		return 0
	}
	return m.data[addr]
}

// Poke writes one byte without bounds errors or observation. Writes past
// the end of memory are dropped.
func (m *Memory) Poke(addr uint16, value byte) {
	if int(addr) < MemorySize {
		m.data[addr] = value
	}
}

func (m *Memory) read8(addr uint16, kind AccessKind) (byte, error) {
	if err := checkRange(addr, 1); err != nil {
		return 0, err
	}
	m.notify(Access{Addr: addr, Size: 1, Kind: kind})
	return m.data[addr], nil
}

func (m *Memory) read16(addr uint16, kind AccessKind) (uint16, error) {
	if err := checkRange(addr, 2); err != nil {
		return 0, err
	}
	m.notify(Access{Addr: addr, Size: 2, Kind: kind})
	return uint16(m.data[addr])<<8 | uint16(m.data[addr+1]), nil
}

func (m *Memory) notify(a Access) {
	if m.observer != nil {
		m.observer(a)
	}
}

// checkRange reports whether size bytes starting at addr lie in memory.
func checkRange(addr uint16, size int) error {
	if int(addr)+size > MemorySize {
		return fmt.Errorf("%w: 0x%04X", ErrAddressOutOfRange, addr)
	}
	return nil
}
