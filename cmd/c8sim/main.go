// Package main provides the entry point for c8sim.
// c8sim is a CHIP-8 emulator with a cycle-level timing model.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/jessevdk/go-flags"
	"github.com/retroenv/retrogolib/buildinfo"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/host/audio"
	"github.com/sarchlab/c8sim/host/headless"
	"github.com/sarchlab/c8sim/host/keymap"
	"github.com/sarchlab/c8sim/host/sdlhost"
	"github.com/sarchlab/c8sim/host/termhost"
	"github.com/sarchlab/c8sim/loader"
	"github.com/sarchlab/c8sim/timing/clock"
	"github.com/sarchlab/c8sim/timing/core"
	"github.com/sarchlab/c8sim/timing/latency"
)

var (
	version = "0.1.0"
	commit  = ""
	date    = ""
)

type options struct {
	Host         string `long:"host" choice:"sdl" choice:"term" choice:"headless" default:"sdl" description:"Front end to run the program in"`
	Cycles       uint64 `short:"n" long:"cycles" default:"600" description:"Ticks to run in headless mode"`
	Speed        uint64 `short:"s" long:"speed" description:"Ticks per second, overriding the clock config"`
	FPS          uint64 `long:"fps" description:"Frames per second, overriding the clock config"`
	ClockConfig  string `long:"clock-config" description:"Path to clock configuration JSON file"`
	TimingConfig string `long:"timing-config" description:"Path to timing configuration JSON file"`
	Keys         string `long:"keys" default:"x123qweasdzc4rfv" description:"Host keys for CHIP-8 keys 0 to F"`
	Script       string `long:"script" description:"Headless key events, e.g. 120:5+,130:5-"`
	WAV          string `long:"wav" description:"Record headless audio to a WAV file"`
	Beep         string `long:"beep" description:"WAV or MP3 file to play as the tone"`
	Scale        int    `long:"scale" default:"10" description:"Window pixels per display pixel"`
	Strict       bool   `long:"strict" description:"Halt on unknown opcodes"`
	Seed         uint64 `long:"seed" description:"Random seed, 0 seeds from the system"`
	StatsView    string `long:"statsview" description:"Serve runtime charts at this address, e.g. localhost:18066"`
	Verbose      bool   `short:"v" long:"verbose" description:"Verbose output"`
	Version      bool   `long:"version" description:"Print the version and exit"`

	Args struct {
		ROM string `positional-arg-name:"rom"`
	} `positional-args:"yes"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[options] <rom>"

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("c8sim %s\n", buildinfo.Version(version, commit, date))
		return
	}

	if opts.Args.ROM == "" {
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, &opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options, stdout, stderr io.Writer) error {
	logger := newLogger(stderr, opts.Verbose)

	prog, err := loader.Load(opts.Args.ROM)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	clockConfig, err := loadClockConfig(opts)
	if err != nil {
		return err
	}

	layout, err := keymap.Parse(opts.Keys)
	if err != nil {
		return err
	}

	c, err := newCore(opts, logger)
	if err != nil {
		return err
	}

	if err := c.LoadROM(prog.Data); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	if opts.Verbose {
		fmt.Fprintf(stderr, "Loaded: %s (%d bytes)\n", opts.Args.ROM, len(prog.Data))
	}

	if opts.StatsView != "" {
		launchStatsView(opts.StatsView, stderr)
	}

	beep, err := loadBeep(opts)
	if err != nil {
		return err
	}

	switch opts.Host {
	case "headless":
		return runHeadless(ctx, c, opts, clockConfig, beep, logger, stdout)
	case "term":
		return termhost.New(c,
			termhost.WithLayout(layout),
			termhost.WithClockConfig(clockConfig),
			termhost.WithLogger(logger),
		).Run(ctx)
	default:
		return sdlhost.New(c,
			sdlhost.WithLayout(layout),
			sdlhost.WithClockConfig(clockConfig),
			sdlhost.WithLogger(logger),
			sdlhost.WithBeep(beep),
			sdlhost.WithScale(opts.Scale),
			sdlhost.WithTitle("c8sim - "+prog.Name),
		).Run(ctx)
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func loadClockConfig(opts *options) (*clock.Config, error) {
	config := clock.DefaultConfig()
	if opts.ClockConfig != "" {
		var err error
		config, err = clock.LoadConfig(opts.ClockConfig)
		if err != nil {
			return nil, fmt.Errorf("loading clock config: %w", err)
		}
	}

	if opts.Speed != 0 {
		config.CyclesPerSecond = opts.Speed
	}
	if opts.FPS != 0 {
		config.FramesPerSecond = opts.FPS
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func newCore(opts *options, logger *slog.Logger) (*core.Core, error) {
	timingConfig := latency.DefaultTimingConfig()
	if opts.TimingConfig != "" {
		var err error
		timingConfig, err = latency.LoadConfig(opts.TimingConfig)
		if err != nil {
			return nil, fmt.Errorf("loading timing config: %w", err)
		}
	}

	emuOpts := []emu.EmulatorOption{
		emu.WithLogger(logger),
		emu.WithStrictDecoding(opts.Strict),
	}
	if opts.Seed != 0 {
		emuOpts = append(emuOpts, emu.WithSeed(opts.Seed))
	}

	return core.NewCore(emu.NewEmulator(emuOpts...),
		core.WithLatencyTable(latency.NewTableWithConfig(timingConfig)),
		core.WithLogger(logger),
	), nil
}

func loadBeep(opts *options) (*audio.Beep, error) {
	if opts.Beep == "" {
		return audio.DefaultBeep(), nil
	}

	beep, err := audio.LoadFile(opts.Beep)
	if err != nil {
		return nil, fmt.Errorf("loading beep: %w", err)
	}
	return beep, nil
}

func launchStatsView(addr string, w io.Writer) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(addr))
		statsview.New().Start()
	}()

	fmt.Fprintf(w, "stats server available at http://%s/debug/statsview\n", addr)
}

func runHeadless(
	ctx context.Context,
	c *core.Core,
	opts *options,
	clockConfig *clock.Config,
	beep *audio.Beep,
	logger *slog.Logger,
	stdout io.Writer,
) error {
	script, err := headless.ParseScript(opts.Script)
	if err != nil {
		return err
	}

	hopts := headless.Options{
		Cycles:      opts.Cycles,
		ClockConfig: clockConfig,
		Script:      script,
		Output:      stdout,
		Logger:      logger,
	}

	if opts.WAV != "" {
		f, err := os.Create(opts.WAV)
		if err != nil {
			return fmt.Errorf("creating %s: %w", opts.WAV, err)
		}
		defer func() { _ = f.Close() }()

		recorder := audio.NewRecorder(f, beep, int(clockConfig.FramesPerSecond))
		defer func() {
			if cerr := recorder.Close(); cerr != nil {
				logger.Error("closing recording", slog.Any("err", cerr))
			}
		}()
		hopts.Recorder = recorder
	}

	result, err := headless.Run(ctx, c, hopts)
	if result != nil {
		printStats(stdout, opts.Args.ROM, result)
	}
	return err
}

// printStats prints the timing report of a headless run.
func printStats(w io.Writer, programPath string, result *headless.Result) {
	stats := result.Stats

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Program: %s\n", programPath)
	fmt.Fprintf(w, "Ticks: %d\n", result.Cycles)
	fmt.Fprintf(w, "Instructions: %d\n", stats.Instructions)
	fmt.Fprintf(w, "Cycles: %d\n", stats.Cycles)
	fmt.Fprintf(w, "CPI: %.2f\n", stats.CPI())
	fmt.Fprintf(w, "Key wait ticks: %d\n", stats.WaitTicks)
	fmt.Fprintf(w, "Unknown opcodes: %d\n", stats.UnknownOpcodes)
	fmt.Fprintf(w, "Loads/stores: %d/%d\n", stats.Loads, stats.Stores)
	fmt.Fprintf(w, "Branches: %d\n", stats.Branches)
	fmt.Fprintf(w, "Redraws: %d\n", stats.Redraws)
	fmt.Fprintf(w, "Beeps: %d\n", result.Beeps)

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Instruction mix:\n")
	for class := latency.Class(0); int(class) < latency.NumClasses; class++ {
		if stats.ByClass[class] == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-8s %d\n", class.String()+":", stats.ByClass[class])
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Caches:\n")
	fmt.Fprintf(w, "  Fetch: %d hits, %d misses (%.1f%%)\n",
		stats.FetchCache.Hits, stats.FetchCache.Misses, 100*stats.FetchCache.HitRate())
	fmt.Fprintf(w, "  Data:  %d hits, %d misses (%.1f%%)\n",
		stats.DataCache.Hits, stats.DataCache.Misses, 100*stats.DataCache.HitRate())
}
