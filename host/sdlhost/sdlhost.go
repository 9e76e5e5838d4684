// Package sdlhost runs CHIP-8 programs in an SDL window with sound.
package sdlhost

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/host/audio"
	"github.com/sarchlab/c8sim/host/keymap"
	"github.com/sarchlab/c8sim/timing/clock"
	"github.com/sarchlab/c8sim/timing/core"
)

// SDL calls must come from the main thread.
func init() {
	runtime.LockOSThread()
}

// DefaultScale is the window pixels per display pixel.
const DefaultScale = 10

// Host is the SDL front end.
type Host struct {
	core   *core.Core
	layout keymap.Layout
	config *clock.Config
	logger *slog.Logger
	beep   *audio.Beep
	scale  int32
	title  string

	renderer *sdl.Renderer
	device   sdl.AudioDeviceID
	sound    []byte
	beeping  bool
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

// WithBeep sets the sound played while the sound timer runs.
func WithBeep(beep *audio.Beep) Option {
	return func(h *Host) {
		h.beep = beep
	}
}

// WithScale sets the window pixels per display pixel.
func WithScale(scale int) Option {
	return func(h *Host) {
		h.scale = int32(scale)
	}
}

// WithTitle sets the window title.
func WithTitle(title string) Option {
	return func(h *Host) {
		h.title = title
	}
}

// New creates an SDL host around a core with a program loaded.
func New(c *core.Core, opts ...Option) *Host {
	h := &Host{
		core:   c,
		layout: keymap.QWERTY(),
		config: clock.DefaultConfig(),
		logger: slog.New(slog.DiscardHandler),
		beep:   audio.DefaultBeep(),
		scale:  DefaultScale,
		title:  "c8sim",
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.scale < 1 {
		h.scale = 1
	}

	return h
}

// Run opens the window and runs the program until the window is closed,
// Escape is pressed, the context is done or the emulator halts. F5
// resets.
func (h *Host) Run(ctx context.Context) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return fmt.Errorf("failed to initialise SDL: %w", err)
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow(h.title,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		emu.DisplayWidth*h.scale, emu.DisplayHeight*h.scale,
		sdl.WINDOW_SHOWN)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer window.Destroy()

	h.renderer, err = sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer h.renderer.Destroy()

	h.openAudio()
	if h.device != 0 {
		defer sdl.CloseAudioDevice(h.device)
	}

	limiter := clock.NewLimiter(h.config)
	defer limiter.Stop()

	h.draw()

	return h.core.Run(ctx, limiter, h.config, h.frame)
}

// openAudio opens a mono unsigned 8-bit device. A missing audio device is
// not fatal.
func (h *Host) openAudio() {
	want := &sdl.AudioSpec{
		Freq:     int32(h.beep.SampleRate),
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  512,
	}

	device, err := sdl.OpenAudioDevice("", false, want, nil, 0)
	if err != nil {
		h.logger.Warn("audio disabled", slog.Any("err", err))
		return
	}

	h.device = device
	h.sound = h.beep.U8()
	sdl.PauseAudioDevice(h.device, false)
}

func (h *Host) frame(out emu.CycleOutcome) error {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if err := h.handleEvent(event); err != nil {
			return err
		}
	}

	if out.Redraw {
		h.draw()
	}

	// Queue one tone when the sound timer starts.
	if out.Beep && !h.beeping && h.device != 0 {
		if err := sdl.QueueAudio(h.device, h.sound); err != nil {
			h.logger.Warn("queue audio failed", slog.Any("err", err))
		}
	}
	h.beeping = out.Beep

	return nil
}

func (h *Host) handleEvent(event sdl.Event) error {
	switch ev := event.(type) {
	case *sdl.QuitEvent:
		return core.ErrStop

	case *sdl.KeyboardEvent:
		return h.handleKey(ev.Keysym.Sym, ev.Type == sdl.KEYDOWN)
	}

	return nil
}

func (h *Host) handleKey(sym sdl.Keycode, down bool) error {
	switch sym {
	case sdl.K_ESCAPE:
		if down {
			return core.ErrStop
		}
		return nil
	case sdl.K_F5:
		if down {
			h.logger.Info("reset")
			h.core.Reset()
			h.draw()
		}
		return nil
	}

	code, ok := h.layout.Lookup(rune(sym))
	if !ok {
		return nil
	}

	return h.core.Emulator().SetKey(code, down)
}

func (h *Host) draw() {
	if err := h.renderer.SetDrawColor(0, 0, 0, 0xFF); err != nil {
		h.logger.Warn("draw failed", slog.Any("err", err))
		return
	}
	_ = h.renderer.Clear()

	_ = h.renderer.SetDrawColor(0xFF, 0xFF, 0xFF, 0xFF)
	for _, rect := range litRects(h.core.Emulator().Display(), h.scale) {
		_ = h.renderer.FillRect(&rect)
	}

	h.renderer.Present()
}

// litRects returns one window rectangle per lit pixel, merging runs of lit
// pixels within a row.
func litRects(display *emu.Display, scale int32) []sdl.Rect {
	var rects []sdl.Rect

	for y := 0; y < emu.DisplayHeight; y++ {
		for x := 0; x < emu.DisplayWidth; {
			if display.Pixel(x, y) == 0 {
				x++
				continue
			}

			start := x
			for x < emu.DisplayWidth && display.Pixel(x, y) != 0 {
				x++
			}

			rects = append(rects, sdl.Rect{
				X: int32(start) * scale,
				Y: int32(y) * scale,
				W: int32(x-start) * scale,
				H: scale,
			})
		}
	}

	return rects
}
