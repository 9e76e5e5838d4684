// Package headless runs CHIP-8 programs without a window. It is used for
// scripted runs, regression checks and audio capture.
package headless

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/host/audio"
	"github.com/sarchlab/c8sim/timing/clock"
	"github.com/sarchlab/c8sim/timing/core"
)

// KeyEvent presses or releases a key once the emulator has completed
// Cycle ticks.
type KeyEvent struct {
	Cycle   uint64
	Key     uint8
	Pressed bool
}

// ParseScript parses a comma-separated key script. Each entry has the form
// CYCLE:KEY+ (press) or CYCLE:KEY- (release) with KEY in hex, for example
// "120:5+,130:5-".
func ParseScript(script string) ([]KeyEvent, error) {
	var events []KeyEvent
	if strings.TrimSpace(script) == "" {
		return nil, nil
	}

	for _, entry := range strings.Split(script, ",") {
		entry = strings.TrimSpace(entry)

		cycleText, keyText, ok := strings.Cut(entry, ":")
		if !ok || len(keyText) < 2 {
			return nil, fmt.Errorf("bad key event %q: want CYCLE:KEY+ or CYCLE:KEY-", entry)
		}

		cycle, err := strconv.ParseUint(cycleText, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad cycle in key event %q: %w", entry, err)
		}

		var pressed bool
		switch keyText[len(keyText)-1] {
		case '+':
			pressed = true
		case '-':
			pressed = false
		default:
			return nil, fmt.Errorf("bad key event %q: missing + or -", entry)
		}

		key, err := strconv.ParseUint(keyText[:len(keyText)-1], 16, 8)
		if err != nil || key >= emu.NumKeys {
			return nil, fmt.Errorf("%w in key event %q", emu.ErrInvalidKeyCode, entry)
		}

		events = append(events, KeyEvent{Cycle: cycle, Key: uint8(key), Pressed: pressed})
	}

	slices.SortStableFunc(events, func(a, b KeyEvent) int {
		switch {
		case a.Cycle < b.Cycle:
			return -1
		case a.Cycle > b.Cycle:
			return 1
		default:
			return 0
		}
	})
	return events, nil
}

// Options configure a headless run.
type Options struct {
	// Cycles is the number of ticks to run. It must be > 0.
	Cycles uint64

	// Clock paces the run. The default is clock.Free.
	Clock clock.Clock

	// ClockConfig sets cycles per frame. The default is
	// clock.DefaultConfig.
	ClockConfig *clock.Config

	// Script is a list of key events ordered by cycle.
	Script []KeyEvent

	// Recorder, if set, receives one audio frame per frame.
	Recorder *audio.Recorder

	// Output, if set, receives the final display.
	Output io.Writer

	// Logger receives progress messages. The default discards them.
	Logger *slog.Logger
}

// Result summarises a headless run.
type Result struct {
	// Cycles is the number of ticks completed.
	Cycles uint64
	// Beeps is the number of beep events.
	Beeps uint64
	// Display is the final frame buffer rendered as text.
	Display string
	// Stats are the timing statistics of the run.
	Stats core.Stats
}

// Run executes the program loaded in c for opts.Cycles ticks. The result
// is returned even when the emulator halts with an error.
func Run(ctx context.Context, c *core.Core, opts Options) (*Result, error) {
	if opts.Cycles == 0 {
		return nil, fmt.Errorf("cycle count must be > 0")
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.Free{}
	}
	config := opts.ClockConfig
	if config == nil {
		config = clock.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	e := c.Emulator()
	script := opts.Script
	start := e.CycleCount()

	applyDue := func() error {
		done := e.CycleCount() - start
		for len(script) > 0 && script[0].Cycle <= done {
			ev := script[0]
			script = script[1:]
			if err := e.SetKey(ev.Key, ev.Pressed); err != nil {
				return err
			}
			logger.Debug("key event",
				slog.Uint64("cycle", done),
				slog.Int("key", int(ev.Key)),
				slog.Bool("pressed", ev.Pressed))
		}
		return nil
	}

	if err := applyDue(); err != nil {
		return nil, err
	}

	// Frames are split so that no segment runs past opts.Cycles or past
	// the next scripted key event. Audio is still recorded once per full
	// frame of config's size.
	perFrame := config.CyclesPerFrame()
	frameConfig := *config
	var (
		frameTicks uint64
		frameBeep  bool
		lastDone   uint64
	)

	plan := func() {
		done := e.CycleCount() - start
		n := min(perFrame-frameTicks, opts.Cycles-done)
		if len(script) > 0 && script[0].Cycle > done {
			n = min(n, script[0].Cycle-done)
		}
		frameConfig.CyclesPerSecond = max(1, n) * frameConfig.FramesPerSecond
	}

	plan()
	err := c.Run(ctx, clk, &frameConfig, func(out emu.CycleOutcome) error {
		done := e.CycleCount() - start
		frameTicks += done - lastDone
		lastDone = done
		frameBeep = frameBeep || out.Beep

		if opts.Recorder != nil && (frameTicks >= perFrame || done >= opts.Cycles) {
			if err := opts.Recorder.Frame(frameBeep); err != nil {
				return err
			}
		}
		if frameTicks >= perFrame {
			frameTicks = 0
			frameBeep = false
		}

		if done >= opts.Cycles {
			return core.ErrStop
		}

		if err := applyDue(); err != nil {
			return err
		}
		plan()
		return nil
	})

	result := &Result{
		Cycles:  e.CycleCount() - start,
		Display: e.Display().String(),
		Stats:   c.Stats(),
	}
	result.Beeps = result.Stats.Beeps

	if opts.Output != nil {
		if _, werr := io.WriteString(opts.Output, result.Display); werr != nil && err == nil {
			err = werr
		}
	}

	if errors.Is(err, emu.ErrCycleLimit) {
		err = nil
	}

	logger.Info("headless run finished",
		slog.Uint64("cycles", result.Cycles),
		slog.Uint64("beeps", result.Beeps))

	return result, err
}
