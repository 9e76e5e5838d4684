// Package cache provides a memory cache model using Akita cache components.
package cache

import (
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int
	// Associativity (number of ways)
	Associativity int
	// BlockSize in bytes (cache line size)
	BlockSize int
	// HitLatency in cycles
	HitLatency uint64
	// MissLatency in cycles (includes memory access time)
	MissLatency uint64
}

// DefaultFetchConfig returns the default configuration for the opcode
// fetch cache: 256B, 2-way, 16B lines. CHIP-8 programs are small and
// loop-heavy, so a handful of lines covers most inner loops.
func DefaultFetchConfig() Config {
	return Config{
		Size:          256,
		Associativity: 2,
		BlockSize:     16,
		HitLatency:    1,
		MissLatency:   10,
	}
}

// DefaultDataConfig returns the default configuration for the data cache
// serving sprite rows, BCD and register block transfers: 128B, 2-way, 8B
// lines.
func DefaultDataConfig() Config {
	return Config{
		Size:          128,
		Associativity: 2,
		BlockSize:     8,
		HitLatency:    1,
		MissLatency:   10,
	}
}

// NumSets returns the number of sets the configuration describes.
func (c Config) NumSets() int {
	if c.Associativity <= 0 || c.BlockSize <= 0 {
		return 0
	}
	return c.Size / (c.Associativity * c.BlockSize)
}

// Validate checks that the geometry describes at least one full set.
func (c Config) Validate() error {
	if c.BlockSize <= 0 {
		return fmt.Errorf("block size must be > 0")
	}
	if c.Associativity <= 0 {
		return fmt.Errorf("associativity must be > 0")
	}
	if c.Size%(c.Associativity*c.BlockSize) != 0 || c.NumSets() == 0 {
		return fmt.Errorf("size %d is not a multiple of %d-way x %dB",
			c.Size, c.Associativity, c.BlockSize)
	}
	if c.HitLatency > c.MissLatency {
		return fmt.Errorf("hit latency must be <= miss latency")
	}
	return nil
}

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether the access was a cache hit.
	Hit bool
	// Latency is the number of cycles this access takes.
	Latency uint64
	// Data is the data read (for load operations), big-endian like
	// CHIP-8 opcodes.
	Data uint64
	// Evicted is true if a valid block was evicted.
	Evicted bool
	// EvictedAddr is the address of the evicted block (if Evicted is true).
	EvictedAddr uint64
}

// Cache represents a single cache level using Akita cache components.
type Cache struct {
	// Configuration
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	// Data storage - indexed by (setID * associativity + wayID)
	dataStore [][]byte

	// Statistics
	stats Statistics

	// Backing store interface (for fetching on miss and writeback)
	backing BackingStore
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads      uint64
	Writes     uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
}

// HitRate returns hits over all accesses, or 0 before any access.
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// BackingStore interface for the next level in the memory hierarchy.
type BackingStore interface {
	// Read fetches data from the backing store.
	Read(addr uint64, size int) []byte
	// Write stores data to the backing store.
	Write(addr uint64, data []byte)
}

// New creates a new cache with the given configuration. The configuration
// must pass Validate.
func New(config Config, backing BackingStore) *Cache {
	numSets := config.NumSets()
	totalBlocks := numSets * config.Associativity

	// Initialize data storage
	dataStore := make([][]byte, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.BlockSize)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

// blockIndex computes the index into dataStore for a block.
func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

func (c *Cache) blockAddr(addr uint64) uint64 {
	return (addr / uint64(c.config.BlockSize)) * uint64(c.config.BlockSize)
}

// Read performs a cache read operation. An access that straddles two
// lines is charged as two accesses, the worse latency winning.
func (c *Cache) Read(addr uint64, size int) AccessResult {
	if c.crossesLine(addr, size) {
		return c.split(addr, size, func(a uint64, n int) AccessResult {
			return c.Read(a, n)
		})
	}

	c.stats.Reads++

	block := c.directory.Lookup(0, c.blockAddr(addr))

	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block) // Update LRU

		offset := addr % uint64(c.config.BlockSize)
		blockData := c.dataStore[c.blockIndex(block)]

		return AccessResult{
			Hit:     true,
			Latency: c.config.HitLatency,
			Data:    extractData(blockData, offset, size),
		}
	}

	c.stats.Misses++
	return c.handleMiss(addr, size, false, 0)
}

// Write performs a cache write operation.
// Uses write-allocate policy: on miss, fetch the block first, then write.
func (c *Cache) Write(addr uint64, size int, data uint64) AccessResult {
	if c.crossesLine(addr, size) {
		// Split the value big-endian: high bytes go to the first line.
		return c.split(addr, size, func(a uint64, n int) AccessResult {
			shift := 8 * (int(addr) + size - int(a) - n)
			return c.Write(a, n, data>>shift)
		})
	}

	c.stats.Writes++

	block := c.directory.Lookup(0, c.blockAddr(addr))

	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block) // Update LRU

		offset := addr % uint64(c.config.BlockSize)
		blockData := c.dataStore[c.blockIndex(block)]
		storeData(blockData, offset, size, data)
		block.IsDirty = true

		return AccessResult{
			Hit:     true,
			Latency: c.config.HitLatency,
		}
	}

	// Cache miss - write-allocate: fetch block, then write
	c.stats.Misses++
	return c.handleMiss(addr, size, true, data)
}

func (c *Cache) crossesLine(addr uint64, size int) bool {
	offset := addr % uint64(c.config.BlockSize)
	return int(offset)+size > c.config.BlockSize
}

// split runs an access that crosses a line boundary as one access per line
// and merges the results.
func (c *Cache) split(addr uint64, size int, access func(uint64, int) AccessResult) AccessResult {
	first := int(c.blockAddr(addr) + uint64(c.config.BlockSize) - addr)

	a := access(addr, first)
	b := access(addr+uint64(first), size-first)

	merged := AccessResult{
		Hit:     a.Hit && b.Hit,
		Latency: max(a.Latency, b.Latency),
		Data:    a.Data<<(8*(size-first)) | b.Data,
		Evicted: a.Evicted || b.Evicted,
	}
	if b.Evicted {
		merged.EvictedAddr = b.EvictedAddr
	} else {
		merged.EvictedAddr = a.EvictedAddr
	}
	return merged
}

// handleMiss handles a cache miss by fetching from backing store.
func (c *Cache) handleMiss(addr uint64, size int, isWrite bool, writeData uint64) AccessResult {
	result := AccessResult{
		Hit:     false,
		Latency: c.config.MissLatency,
	}

	blockAddr := c.blockAddr(addr)

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return result
	}

	victimData := c.dataStore[c.blockIndex(victim)]

	if victim.IsValid {
		c.stats.Evictions++
		result.Evicted = true
		result.EvictedAddr = victim.Tag // Tag stores block-aligned address

		if victim.IsDirty && c.backing != nil {
			c.stats.Writebacks++
			c.backing.Write(victim.Tag, victimData)
		}
	}

	if c.backing != nil {
		copy(victimData, c.backing.Read(blockAddr, c.config.BlockSize))
	} else {
		clear(victimData)
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false

	offset := addr % uint64(c.config.BlockSize)
	if isWrite {
		storeData(victimData, offset, size, writeData)
		victim.IsDirty = true
	} else {
		result.Data = extractData(victimData, offset, size)
	}

	c.directory.Visit(victim) // Update LRU

	return result
}

// Contains reports whether the line holding addr is cached.
func (c *Cache) Contains(addr uint64) bool {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	return block != nil && block.IsValid
}

// Invalidate marks a cache line as invalid.
func (c *Cache) Invalidate(addr uint64) {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		block.IsValid = false
		block.IsDirty = false
	}
}

// Flush writes back all dirty blocks and invalidates them.
func (c *Cache) Flush() {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty && c.backing != nil {
				c.backing.Write(block.Tag, c.dataStore[c.blockIndex(block)])
				c.stats.Writebacks++
			}
			block.IsValid = false
			block.IsDirty = false
		}
	}
}

// Reset invalidates all cache lines without writeback.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}

// extractData extracts a big-endian value of the given size from a byte
// slice.
func extractData(data []byte, offset uint64, size int) uint64 {
	if data == nil || int(offset)+size > len(data) {
		return 0
	}

	var result uint64
	for i := 0; i < size; i++ {
		result = result<<8 | uint64(data[int(offset)+i])
	}
	return result
}

// storeData stores a big-endian value of the given size into a byte slice.
func storeData(data []byte, offset uint64, size int, value uint64) {
	if data == nil || int(offset)+size > len(data) {
		return
	}

	for i := 0; i < size; i++ {
		data[int(offset)+i] = byte(value >> (8 * (size - 1 - i)))
	}
}
