package clock

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config holds the pacing parameters of the emulation loop.
type Config struct {
	// CyclesPerSecond is the number of emulator ticks per second.
	// Timers decrement once per tick. Default: 60.
	CyclesPerSecond uint64 `json:"cycles_per_second"`

	// FramesPerSecond is the number of times per second the host polls
	// input and presents the display. Default: 60.
	FramesPerSecond uint64 `json:"frames_per_second"`
}

// DefaultConfig returns the default pacing: 60 ticks per second presented
// at 60 frames per second.
func DefaultConfig() *Config {
	return &Config{
		CyclesPerSecond: 60,
		FramesPerSecond: 60,
	}
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read clock config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse clock config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize clock config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write clock config file: %w", err)
	}

	return nil
}

// Validate checks that both rates are usable.
func (c *Config) Validate() error {
	if c.CyclesPerSecond == 0 {
		return fmt.Errorf("cycles_per_second must be > 0")
	}
	if c.FramesPerSecond == 0 {
		return fmt.Errorf("frames_per_second must be > 0")
	}
	if c.FramesPerSecond > 1000 {
		return fmt.Errorf("frames_per_second must be <= 1000")
	}
	return nil
}

// CyclesPerFrame returns how many ticks run between two frames, at least
// one.
func (c *Config) CyclesPerFrame() uint64 {
	return max(1, c.CyclesPerSecond/c.FramesPerSecond)
}

// FrameDuration returns the wall-clock time of one frame.
func (c *Config) FrameDuration() time.Duration {
	return time.Second / time.Duration(c.FramesPerSecond)
}
