package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds latency values for different instruction classes, in
// machine cycles. The defaults are rough estimates for an interpreter on
// a COSMAC VIP-class machine, where drawing dominates.
type TimingConfig struct {
	// ALULatency is the execution latency for register arithmetic and
	// immediate loads (6XNN, 7XNN, 8XYN). Default: 1 cycle.
	ALULatency uint64 `json:"alu_latency"`

	// BranchLatency is the latency for jumps and skips. Default: 1 cycle.
	BranchLatency uint64 `json:"branch_latency"`

	// CallLatency is the latency for CALL and RET, which also touch the
	// stack. Default: 2 cycles.
	CallLatency uint64 `json:"call_latency"`

	// LoadLatency is the latency per byte loaded from memory by FX65.
	// Default: 2 cycles.
	LoadLatency uint64 `json:"load_latency"`

	// StoreLatency is the latency per byte written by FX55 and FX33.
	// Default: 2 cycles.
	StoreLatency uint64 `json:"store_latency"`

	// DrawBaseLatency is the fixed cost of DXYN. Default: 4 cycles.
	DrawBaseLatency uint64 `json:"draw_base_latency"`

	// DrawRowLatency is the additional cost per sprite row drawn.
	// Default: 2 cycles.
	DrawRowLatency uint64 `json:"draw_row_latency"`

	// ClearLatency is the latency for clearing the screen. Default: 8
	// cycles.
	ClearLatency uint64 `json:"clear_latency"`

	// TimerLatency is the latency for reading or writing a timer.
	// Default: 1 cycle.
	TimerLatency uint64 `json:"timer_latency"`

	// KeyLatency is the latency for key skips and FX0A. Default: 1 cycle.
	KeyLatency uint64 `json:"key_latency"`

	// RandomLatency is the latency for CXNN. Default: 2 cycles.
	RandomLatency uint64 `json:"random_latency"`

	// CacheHitLatency is the cost of a memory access that hits in the
	// cache model. Default: 1 cycle.
	CacheHitLatency uint64 `json:"cache_hit_latency"`

	// MemoryLatency is the cost of a memory access that misses in the
	// cache model. Default: 10 cycles.
	MemoryLatency uint64 `json:"memory_latency"`
}

// DefaultTimingConfig returns a TimingConfig with the default values.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALULatency:      1,
		BranchLatency:   1,
		CallLatency:     2,
		LoadLatency:     2,
		StoreLatency:    2,
		DrawBaseLatency: 4,
		DrawRowLatency:  2,
		ClearLatency:    8,
		TimerLatency:    1,
		KeyLatency:      1,
		RandomLatency:   2,
		CacheHitLatency: 1,
		MemoryLatency:   10,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Fields missing from
// the file keep their defaults.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that the latency values are usable.
func (c *TimingConfig) Validate() error {
	if c.ALULatency == 0 {
		return fmt.Errorf("alu_latency must be > 0")
	}
	if c.BranchLatency == 0 {
		return fmt.Errorf("branch_latency must be > 0")
	}
	if c.CallLatency == 0 {
		return fmt.Errorf("call_latency must be > 0")
	}
	if c.LoadLatency == 0 {
		return fmt.Errorf("load_latency must be > 0")
	}
	if c.StoreLatency == 0 {
		return fmt.Errorf("store_latency must be > 0")
	}
	if c.DrawBaseLatency == 0 {
		return fmt.Errorf("draw_base_latency must be > 0")
	}
	if c.CacheHitLatency > c.MemoryLatency {
		return fmt.Errorf("cache_hit_latency must be <= memory_latency")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
