// Package emu provides functional CHIP-8 emulation.
package emu

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/sarchlab/c8sim/insts"
)

// ErrCycleLimit is returned by Tick once the limit set with WithMaxCycles
// has been reached.
var ErrCycleLimit = errors.New("max cycles reached")

// State is the execution state of the emulator.
type State uint8

// Emulator states.
const (
	// StateRunning fetches and executes one instruction per tick.
	StateRunning State = iota
	// StateWaitingForKey is entered by FX0A and left when a key is held.
	StateWaitingForKey
	// StateHalted is entered on an unrecoverable error.
	StateHalted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateWaitingForKey:
		return "waiting-for-key"
	case StateHalted:
		return "halted"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// CycleOutcome reports what happened during one tick.
type CycleOutcome struct {
	// Redraw is true if the display changed and should be presented.
	Redraw bool

	// Beep is true on the tick the sound timer reached 1.
	Beep bool

	// UnknownOpcode is set when the fetched opcode matched no instruction.
	// The instruction was skipped and execution continues.
	UnknownOpcode *UnknownOpcodeError

	// Instruction is the instruction executed this tick. It is nil on
	// ticks spent waiting for a key.
	Instruction *insts.Instruction

	// WaitingForKey is true if the emulator is blocked on FX0A after this
	// tick.
	WaitingForKey bool

	// Err is set if the tick failed. The emulator halts on every error
	// except ErrCycleLimit.
	Err error
}

// Emulator executes CHIP-8 programs one instruction per tick.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	display *Display
	keypad  *Keypad
	timers  *Timers
	decoder *insts.Decoder

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	rng    *rand.Rand
	logger *slog.Logger
	strict bool

	// Execution state
	state      State
	waitReg    uint8
	rom        []byte
	cycleCount uint64
	maxCycles  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithLogger sets the logger used for diagnostics. The default discards
// everything.
func WithLogger(logger *slog.Logger) EmulatorOption {
	return func(e *Emulator) {
		e.logger = logger
	}
}

// WithRand sets the random source used by CXNN.
func WithRand(rng *rand.Rand) EmulatorOption {
	return func(e *Emulator) {
		e.rng = rng
	}
}

// WithSeed seeds the random source used by CXNN, making runs repeatable.
func WithSeed(seed uint64) EmulatorOption {
	return func(e *Emulator) {
		e.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithStrictDecoding makes unknown opcodes halt the emulator instead of
// being skipped.
func WithStrictDecoding(strict bool) EmulatorOption {
	return func(e *Emulator) {
		e.strict = strict
	}
}

// WithMaxCycles sets the maximum number of ticks to execute.
// A value of 0 means no limit.
func WithMaxCycles(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxCycles = max
	}
}

// NewEmulator creates a new CHIP-8 emulator in its power-on state with the
// font loaded and no program.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	regFile := NewRegFile()
	memory := NewMemory()

	e := &Emulator{
		regFile: regFile,
		memory:  memory,
		display: NewDisplay(),
		keypad:  NewKeypad(),
		timers:  &Timers{},
		decoder: insts.NewDecoder(),
		logger:  slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	// Create execution units
	e.alu = NewALU(regFile)
	e.lsu = NewLoadStoreUnit(regFile, memory)
	e.branchUnit = NewBranchUnit(regFile)

	e.powerOn()

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// Display returns the emulator's frame buffer.
func (e *Emulator) Display() *Display {
	return e.display
}

// Keypad returns the emulator's input latch.
func (e *Emulator) Keypad() *Keypad {
	return e.keypad
}

// Timers returns the emulator's delay and sound timers.
func (e *Emulator) Timers() *Timers {
	return e.timers
}

// State returns the current execution state.
func (e *Emulator) State() State {
	return e.state
}

// CycleCount returns the number of ticks completed since power-on.
func (e *Emulator) CycleCount() uint64 {
	return e.cycleCount
}

// LoadROM resets the emulator and loads a program at ProgramStart. An
// oversized ROM is rejected before anything is changed.
func (e *Emulator) LoadROM(rom []byte) error {
	if len(rom) > MaxROMSize {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrROMTooLarge, len(rom), MaxROMSize)
	}

	e.rom = slices.Clone(rom)
	e.Reset()

	e.logger.Info("rom loaded", slog.Int("bytes", len(rom)))
	return nil
}

// Reset returns the emulator to its power-on state and reloads the last
// ROM passed to LoadROM, if any.
func (e *Emulator) Reset() {
	e.powerOn()
	if e.rom != nil {
		// Already size checked by LoadROM.
		_ = e.memory.LoadROM(e.rom)
	}
}

// SetKey records a key press or release from the host.
func (e *Emulator) SetKey(code uint8, pressed bool) error {
	return e.keypad.Set(code, pressed)
}

func (e *Emulator) powerOn() {
	e.memory.Reset()
	// Font is always FontSize bytes.
	_ = e.memory.LoadFont(Font[:])

	e.regFile.Reset()
	e.display.Reset()
	e.keypad.Reset()
	e.timers.Reset()

	e.state = StateRunning
	e.waitReg = 0
	e.cycleCount = 0
}

// Tick runs one cycle: resolve a pending key wait or execute one
// instruction, then decrement the timers.
func (e *Emulator) Tick() CycleOutcome {
	if e.state == StateHalted {
		return CycleOutcome{Err: ErrHalted}
	}

	if e.maxCycles > 0 && e.cycleCount >= e.maxCycles {
		return CycleOutcome{Err: ErrCycleLimit}
	}

	var out CycleOutcome

	if e.state == StateWaitingForKey {
		e.resolveKeyWait()
	} else if err := e.step(&out); err != nil {
		e.halt(err)
		out.Err = err
		return out
	}

	e.cycleCount++

	out.Beep = e.timers.Tick()
	out.Redraw = e.display.TakeRedraw()
	out.WaitingForKey = e.state == StateWaitingForKey

	return out
}

// RunCycles ticks up to n times and returns the merged outcome. It stops
// early at the first error.
func (e *Emulator) RunCycles(n uint64) CycleOutcome {
	var merged CycleOutcome
	for i := uint64(0); i < n; i++ {
		out := e.Tick()

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

// resolveKeyWait completes a pending FX0A once any key is held, storing the
// lowest held key.
func (e *Emulator) resolveKeyWait() {
	key, ok := e.keypad.FirstPressed()
	if !ok {
		return
	}

	e.regFile.WriteReg(e.waitReg, key)
	e.state = StateRunning
	e.branchUnit.Next()

	e.logger.Debug("key wait resolved",
		slog.Int("key", int(key)),
		slog.Int("register", int(e.waitReg)))
}

// step fetches, decodes and executes the instruction at PC.
func (e *Emulator) step(out *CycleOutcome) error {
	pc := e.regFile.PC

	// 1. Fetch
	opcode, err := e.memory.Fetch(pc)
	if err != nil {
		return fmt.Errorf("fetch at PC=0x%03X: %w", pc, err)
	}

	// 2. Decode
	inst := e.decoder.Decode(opcode)
	out.Instruction = inst

	if inst.Op == insts.OpUnknown {
		unknown := &UnknownOpcodeError{Opcode: opcode, PC: pc}
		if e.strict {
			return unknown
		}

		e.logger.Warn("unknown opcode skipped",
			slog.String("opcode", fmt.Sprintf("0x%04X", opcode)),
			slog.String("pc", fmt.Sprintf("0x%03X", pc)))

		out.UnknownOpcode = unknown
		e.branchUnit.Next()
		return nil
	}

	// 3. Execute
	if err := e.execute(inst); err != nil {
		return fmt.Errorf("%s (0x%04X) at PC=0x%03X: %w", inst.Op, opcode, pc, err)
	}

	return nil
}

// halt stops execution after an unrecoverable error.
func (e *Emulator) halt(err error) {
	e.state = StateHalted
	e.logger.Error("emulator halted",
		slog.String("pc", fmt.Sprintf("0x%03X", e.regFile.PC)),
		slog.Any("err", err))
}

// execute dispatches and executes a decoded instruction.
func (e *Emulator) execute(inst *insts.Instruction) error {
	v := e.regFile.ReadReg

	switch inst.Op {
	// Flow control updates PC itself.
	case insts.OpRET:
		return e.branchUnit.RET()
	case insts.OpJP:
		e.branchUnit.JP(inst.NNN)
		return nil
	case insts.OpCALL:
		return e.branchUnit.CALL(inst.NNN)
	case insts.OpJPV0:
		e.branchUnit.JPV0(inst.NNN)
		return nil
	case insts.OpSEImm:
		e.branchUnit.SkipIf(v(inst.X) == inst.NN)
		return nil
	case insts.OpSNEImm:
		e.branchUnit.SkipIf(v(inst.X) != inst.NN)
		return nil
	case insts.OpSEReg:
		e.branchUnit.SkipIf(v(inst.X) == v(inst.Y))
		return nil
	case insts.OpSNEReg:
		e.branchUnit.SkipIf(v(inst.X) != v(inst.Y))
		return nil
	case insts.OpSKP:
		e.branchUnit.SkipIf(e.keyHeld(v(inst.X)))
		return nil
	case insts.OpSKNP:
		e.branchUnit.SkipIf(!e.keyHeld(v(inst.X)))
		return nil
	case insts.OpLDVxK:
		// PC stays on FX0A until a key resolves the wait.
		e.state = StateWaitingForKey
		e.waitReg = inst.X
		e.logger.Debug("waiting for key", slog.Int("register", int(inst.X)))
		return nil

	// Everything below falls through to the PC increment.
	case insts.OpCLS:
		e.display.Clear()
	case insts.OpLDImm:
		e.alu.LDImm(inst.X, inst.NN)
	case insts.OpADDImm:
		e.alu.ADDImm(inst.X, inst.NN)
	case insts.OpLDReg:
		e.alu.LD(inst.X, inst.Y)
	case insts.OpOR:
		e.alu.OR(inst.X, inst.Y)
	case insts.OpAND:
		e.alu.AND(inst.X, inst.Y)
	case insts.OpXOR:
		e.alu.XOR(inst.X, inst.Y)
	case insts.OpADDReg:
		e.alu.ADD(inst.X, inst.Y)
	case insts.OpSUB:
		e.alu.SUB(inst.X, inst.Y)
	case insts.OpSHR:
		e.alu.SHR(inst.X)
	case insts.OpSUBN:
		e.alu.SUBN(inst.X, inst.Y)
	case insts.OpSHL:
		e.alu.SHL(inst.X)
	case insts.OpLDI:
		e.lsu.LDI(inst.NNN)
	case insts.OpRND:
		e.regFile.WriteReg(inst.X, uint8(e.rng.Uint32())&inst.NN)
	case insts.OpDRW:
		if err := e.draw(inst); err != nil {
			return err
		}
	case insts.OpLDVxDT:
		e.regFile.WriteReg(inst.X, e.timers.Delay)
	case insts.OpLDDTVx:
		e.timers.Delay = v(inst.X)
	case insts.OpLDSTVx:
		e.timers.Sound = v(inst.X)
	case insts.OpADDI:
		e.lsu.ADDI(inst.X)
	case insts.OpLDF:
		e.lsu.LDF(inst.X)
	case insts.OpLDB:
		if err := e.lsu.LDB(inst.X); err != nil {
			return err
		}
	case insts.OpLDStore:
		if err := e.lsu.Store(inst.X); err != nil {
			return err
		}
	case insts.OpLDLoad:
		if err := e.lsu.Load(inst.X); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unimplemented op %d", inst.Op)
	}

	e.branchUnit.Next()
	return nil
}

// draw executes DXYN: blit N rows from I at (Vx, Vy), VF = collision.
func (e *Emulator) draw(inst *insts.Instruction) error {
	rows, err := e.lsu.SpriteRows(inst.N)
	if err != nil {
		return err
	}

	x := e.regFile.ReadReg(inst.X)
	y := e.regFile.ReadReg(inst.Y)
	collision := e.display.BlitSprite(x, y, rows)
	e.regFile.SetFlag(collision)
	return nil
}

// keyHeld reads the key named by a register value. Values above 0xF name
// no key; they are reported and read as released.
func (e *Emulator) keyHeld(code uint8) bool {
	pressed, err := e.keypad.IsPressed(code)
	if err != nil {
		e.logger.Warn("key skip on invalid key code",
			slog.String("pc", fmt.Sprintf("0x%03X", e.regFile.PC)),
			slog.Any("err", err))
		return false
	}
	return pressed
}
