// Package core provides the timing model around the functional emulator.
// It drives an emu.Emulator frame by frame, charges each instruction its
// latency and routes memory accesses through fetch and data cache models.
package core

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/timing/cache"
	"github.com/sarchlab/c8sim/timing/clock"
	"github.com/sarchlab/c8sim/timing/latency"
)

// ErrStop may be returned by a FrameHandler to end Run without an error.
var ErrStop = errors.New("stop requested")

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of machine cycles charged.
	Cycles uint64
	// Ticks is the number of emulator ticks completed.
	Ticks uint64
	// Instructions is the number of instructions executed, unknown
	// opcodes included.
	Instructions uint64
	// WaitTicks is the number of ticks spent blocked on FX0A.
	WaitTicks uint64
	// UnknownOpcodes is the number of opcodes skipped as unknown.
	UnknownOpcodes uint64
	// MemoryCycles is the part of Cycles spent on memory accesses.
	MemoryCycles uint64
	// Loads and Stores count instructions that read or write data memory.
	Loads  uint64
	Stores uint64
	// Branches counts instructions that can change control flow.
	Branches uint64
	// Frames is the number of frames run by Run.
	Frames uint64
	// Redraws is the number of ticks that changed the display.
	Redraws uint64
	// Beeps is the number of beep events.
	Beeps uint64
	// ByClass counts executed instructions per timing class.
	ByClass [latency.NumClasses]uint64
	// FetchCache and DataCache are the cache model statistics.
	FetchCache cache.Statistics
	DataCache  cache.Statistics
}

// CPI returns cycles per instruction, or 0 before any instruction.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// FrameHandler is called after every frame with the merged outcome of the
// frame's ticks. Returning an error ends Run.
type FrameHandler func(out emu.CycleOutcome) error

// Core wraps an emulator with latency and cache models.
type Core struct {
	emulator *emu.Emulator
	latency  *latency.Table

	fetchConfig *cache.Config
	dataConfig  *cache.Config
	fetchCache  *cache.Cache
	dataCache   *cache.Cache

	logger *slog.Logger
	stats  Stats

	// memoryCycles accumulates access latencies during one tick.
	memoryCycles uint64
}

// Option is a functional option for configuring the Core.
type Option func(*Core)

// WithLatencyTable sets the instruction latency table.
func WithLatencyTable(table *latency.Table) Option {
	return func(c *Core) {
		c.latency = table
	}
}

// WithFetchCache overrides the fetch cache geometry.
func WithFetchCache(config cache.Config) Option {
	return func(c *Core) {
		c.fetchConfig = &config
	}
}

// WithDataCache overrides the data cache geometry.
func WithDataCache(config cache.Config) Option {
	return func(c *Core) {
		c.dataConfig = &config
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Core) {
		c.logger = logger
	}
}

// NewCore creates a Core around an emulator and installs itself as the
// emulator memory's access observer. Unless overridden, cache hit and miss
// latencies come from the latency table.
func NewCore(emulator *emu.Emulator, opts ...Option) *Core {
	c := &Core{
		emulator: emulator,
		latency:  latency.NewTable(),
		logger:   slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	timing := c.latency.Config()
	if c.fetchConfig == nil {
		config := cache.DefaultFetchConfig()
		config.HitLatency = timing.CacheHitLatency
		config.MissLatency = timing.MemoryLatency
		c.fetchConfig = &config
	}
	if c.dataConfig == nil {
		config := cache.DefaultDataConfig()
		config.HitLatency = timing.CacheHitLatency
		config.MissLatency = timing.MemoryLatency
		c.dataConfig = &config
	}

	backing := cache.NewMemoryBacking(emulator.Memory())
	c.fetchCache = cache.New(*c.fetchConfig, backing)
	c.dataCache = cache.New(*c.dataConfig, backing)

	emulator.Memory().SetObserver(c.observe)

	return c
}

// Emulator returns the wrapped emulator.
func (c *Core) Emulator() *emu.Emulator {
	return c.emulator
}

// FetchCache returns the opcode fetch cache model.
func (c *Core) FetchCache() *cache.Cache {
	return c.fetchCache
}

// DataCache returns the data cache model.
func (c *Core) DataCache() *cache.Cache {
	return c.dataCache
}

// LoadROM loads a program and clears the cache models. Programs must be
// loaded through the Core, not the emulator, so that no dirty line from
// the previous program is written back over the new one.
func (c *Core) LoadROM(rom []byte) error {
	if err := c.emulator.LoadROM(rom); err != nil {
		return err
	}
	c.resetCaches()
	c.stats = Stats{}
	return nil
}

// Reset resets the emulator, the cache models and the statistics.
func (c *Core) Reset() {
	c.emulator.Reset()
	c.resetCaches()
	c.stats = Stats{}
}

func (c *Core) resetCaches() {
	c.fetchCache.Reset()
	c.dataCache.Reset()
}

// observe charges a memory access to the matching cache model.
func (c *Core) observe(a emu.Access) {
	var result cache.AccessResult

	switch {
	case a.Kind == emu.AccessFetch:
		result = c.fetchCache.Read(uint64(a.Addr), a.Size)
	case a.Write:
		// The emulator has already written memory; mirror the new value so
		// the cached line stays identical to it.
		value := uint64(c.emulator.Memory().Peek(a.Addr))
		result = c.dataCache.Write(uint64(a.Addr), a.Size, value)
	default:
		result = c.dataCache.Read(uint64(a.Addr), a.Size)
	}

	c.memoryCycles += result.Latency
}

// Tick runs one emulator tick and charges it.
func (c *Core) Tick() emu.CycleOutcome {
	c.memoryCycles = 0

	out := c.emulator.Tick()
	if out.Err != nil {
		return out
	}

	c.stats.Ticks++
	if out.Instruction != nil {
		c.stats.Instructions++
		c.stats.ByClass[latency.Classify(out.Instruction)]++
		if c.latency.IsLoadOp(out.Instruction) {
			c.stats.Loads++
		}
		if c.latency.IsStoreOp(out.Instruction) {
			c.stats.Stores++
		}
		if c.latency.IsBranchOp(out.Instruction) {
			c.stats.Branches++
		}
		c.stats.Cycles += c.latency.GetLatency(out.Instruction)
	} else {
		c.stats.WaitTicks++
		c.stats.Cycles++
	}

	c.stats.Cycles += c.memoryCycles
	c.stats.MemoryCycles += c.memoryCycles

	if out.UnknownOpcode != nil {
		c.stats.UnknownOpcodes++
	}
	if out.Redraw {
		c.stats.Redraws++
	}
	if out.Beep {
		c.stats.Beeps++
	}

	return out
}

// RunCycles ticks up to n times and returns the merged outcome, stopping
// early at the first error.
func (c *Core) RunCycles(n uint64) emu.CycleOutcome {
	var merged emu.CycleOutcome
	for i := uint64(0); i < n; i++ {
		out := c.Tick()

		merged.Redraw = merged.Redraw || out.Redraw
		merged.Beep = merged.Beep || out.Beep
		if out.UnknownOpcode != nil {
			merged.UnknownOpcode = out.UnknownOpcode
		}
		merged.Instruction = out.Instruction
		merged.WaitingForKey = out.WaitingForKey

		if out.Err != nil {
			merged.Err = out.Err
			break
		}
	}
	return merged
}

// Run executes frames paced by clk until the context is done, the handler
// returns an error or the emulator fails. Each frame runs config's cycles
// per frame, read afresh every frame so handlers may change the speed, and
// then calls handle. A handler returning ErrStop ends Run with a nil error.
func (c *Core) Run(ctx context.Context, clk clock.Clock, config *clock.Config, handle FrameHandler) error {
	c.logger.Debug("run started",
		slog.Uint64("cycles_per_frame", config.CyclesPerFrame()),
		slog.Duration("frame", config.FrameDuration()))

	for {
		if err := clk.Wait(ctx); err != nil {
			return err
		}

		out := c.RunCycles(config.CyclesPerFrame())
		c.stats.Frames++

		if handle != nil {
			if err := handle(out); err != nil {
				if errors.Is(err, ErrStop) {
					c.logger.Debug("run stopped", slog.Uint64("frames", c.stats.Frames))
					return nil
				}
				return err
			}
		}

		if out.Err != nil {
			return out.Err
		}
	}
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	stats := c.stats
	stats.FetchCache = c.fetchCache.Stats()
	stats.DataCache = c.dataCache.Stats()
	return stats
}

// ResetStats clears the statistics without touching emulator state.
func (c *Core) ResetStats() {
	c.stats = Stats{}
	c.fetchCache.ResetStats()
	c.dataCache.ResetStats()
}
