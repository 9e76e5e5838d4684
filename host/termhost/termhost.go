// Package termhost runs CHIP-8 programs in a terminal using termbox.
//
// Two display rows share one character cell through half-block glyphs, so
// the 64x32 display needs a 64x16 terminal. Terminals report key presses
// but not releases; a pressed key is held for KeyHoldFrames frames after
// its last press or auto-repeat.
package termhost

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nsf/termbox-go"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/host/keymap"
	"github.com/sarchlab/c8sim/timing/clock"
	"github.com/sarchlab/c8sim/timing/core"
)

// KeyHoldFrames is how long a key stays pressed after a key event.
const KeyHoldFrames = 6

// Screen size in cells.
const (
	Width  = emu.DisplayWidth
	Height = emu.DisplayHeight / 2
)

type screen interface {
	SetCell(x, y int, ch rune, fg, bg termbox.Attribute)
	Clear(fg, bg termbox.Attribute) error
	Flush() error
}

type termboxScreen struct{}

func (termboxScreen) SetCell(x, y int, ch rune, fg, bg termbox.Attribute) {
	termbox.SetCell(x, y, ch, fg, bg)
}

func (termboxScreen) Clear(fg, bg termbox.Attribute) error {
	return termbox.Clear(fg, bg)
}

func (termboxScreen) Flush() error {
	return termbox.Flush()
}

// Host is the terminal front end.
type Host struct {
	core   *core.Core
	layout keymap.Layout
	config *clock.Config
	logger *slog.Logger
	bell   io.Writer
	screen screen

	frame     uint64
	heldUntil [emu.NumKeys]uint64
}

// Option is a functional option for configuring the Host.
type Option func(*Host)

// WithLayout sets the keyboard layout. The default is keymap.QWERTY.
func WithLayout(layout keymap.Layout) Option {
	return func(h *Host) {
		h.layout = layout
	}
}

// WithClockConfig sets the emulation speed.
func WithClockConfig(config *clock.Config) Option {
	return func(h *Host) {
		h.config = config
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// WithBell sets where the terminal bell is written on a beep. The default
// is standard output; nil disables the bell.
func WithBell(w io.Writer) Option {
	return func(h *Host) {
		h.bell = w
	}
}

// New creates a terminal host around a core with a program loaded.
func New(c *core.Core, opts ...Option) *Host {
	h := &Host{
		core:   c,
		layout: keymap.QWERTY(),
		config: clock.DefaultConfig(),
		logger: slog.New(slog.DiscardHandler),
		bell:   os.Stdout,
		screen: termboxScreen{},
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Run takes over the terminal and runs the program until Escape is
// pressed, the context is done or the emulator halts. F5 resets.
func (h *Host) Run(ctx context.Context) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("failed to initialise terminal: %w", err)
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc)

	events := make(chan termbox.Event, 16)
	done := make(chan struct{})
	defer close(done)
	defer termbox.Interrupt()

	go func() {
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	limiter := clock.NewLimiter(h.config)
	defer limiter.Stop()

	h.draw()

	return h.core.Run(ctx, limiter, h.config, func(out emu.CycleOutcome) error {
		if err := h.drain(events); err != nil {
			return err
		}
		return h.endFrame(out)
	})
}

func (h *Host) drain(events <-chan termbox.Event) error {
	for {
		select {
		case ev := <-events:
			if err := h.handleEvent(ev); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// handleEvent applies one terminal event. It returns core.ErrStop on
// Escape.
func (h *Host) handleEvent(ev termbox.Event) error {
	switch ev.Type {
	case termbox.EventError:
		return fmt.Errorf("terminal event: %w", ev.Err)

	case termbox.EventResize:
		h.draw()

	case termbox.EventKey:
		switch ev.Key {
		case termbox.KeyEsc:
			return core.ErrStop
		case termbox.KeyF5:
			h.logger.Info("reset")
			h.core.Reset()
			h.heldUntil = [emu.NumKeys]uint64{}
			h.draw()
			return nil
		}

		code, ok := h.layout.Lookup(ev.Ch)
		if !ok {
			return nil
		}
		if err := h.core.Emulator().SetKey(code, true); err != nil {
			return err
		}
		h.heldUntil[code] = h.frame + KeyHoldFrames
	}

	return nil
}

// endFrame releases expired keys and presents the frame's output.
func (h *Host) endFrame(out emu.CycleOutcome) error {
	h.frame++

	for code, until := range h.heldUntil {
		if until == 0 || until > h.frame {
			continue
		}
		h.heldUntil[code] = 0
		if err := h.core.Emulator().SetKey(uint8(code), false); err != nil {
			return err
		}
	}

	if out.Redraw {
		h.draw()
	}

	if out.Beep && h.bell != nil {
		if _, err := h.bell.Write([]byte{'\a'}); err != nil {
			h.logger.Warn("bell failed", slog.Any("err", err))
		}
	}

	return nil
}

// draw renders the display with one cell per two rows.
func (h *Host) draw() {
	display := h.core.Emulator().Display()

	if err := h.screen.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		h.logger.Warn("clear failed", slog.Any("err", err))
		return
	}

	for cy := 0; cy < Height; cy++ {
		for x := 0; x < Width; x++ {
			top := display.Pixel(x, 2*cy) != 0
			bottom := display.Pixel(x, 2*cy+1) != 0
			h.screen.SetCell(x, cy, glyph(top, bottom), termbox.ColorWhite, termbox.ColorDefault)
		}
	}

	if err := h.screen.Flush(); err != nil {
		h.logger.Warn("flush failed", slog.Any("err", err))
	}
}

func glyph(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	default:
		return ' '
	}
}
