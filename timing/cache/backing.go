// Package cache provides a memory cache model using Akita cache components.
package cache

import (
	"github.com/sarchlab/c8sim/emu"
)

// MemoryBacking wraps emu.Memory as a BackingStore. It goes through Peek
// and Poke so that line fills and writebacks are not reported back to
// the memory observer that drives the cache.
type MemoryBacking struct {
	memory *emu.Memory
}

// NewMemoryBacking creates a new MemoryBacking adapter.
func NewMemoryBacking(memory *emu.Memory) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// Read fetches data from the backing memory.
func (m *MemoryBacking) Read(addr uint64, size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = m.memory.Peek(uint16(addr) + uint16(i))
	}
	return data
}

// Write stores data to the backing memory.
func (m *MemoryBacking) Write(addr uint64, data []byte) {
	for i, b := range data {
		m.memory.Poke(uint16(addr)+uint16(i), b)
	}
}
