package headless_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/host/audio"
	"github.com/sarchlab/c8sim/host/headless"
	"github.com/sarchlab/c8sim/timing/clock"
	"github.com/sarchlab/c8sim/timing/core"
)

func program(opcodes ...uint16) []byte {
	rom := make([]byte, 0, 2*len(opcodes))
	for _, op := range opcodes {
		rom = append(rom, byte(op>>8), byte(op))
	}
	return rom
}

var _ = Describe("ParseScript", func() {
	It("should parse presses and releases in cycle order", func() {
		events, err := headless.ParseScript("130:5-, 120:a+")

		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(Equal([]headless.KeyEvent{
			{Cycle: 120, Key: 0xA, Pressed: true},
			{Cycle: 130, Key: 0x5, Pressed: false},
		}))
	})

	It("should accept an empty script", func() {
		events, err := headless.ParseScript("")

		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(BeEmpty())
	})

	DescribeTable("malformed scripts",
		func(script string) {
			_, err := headless.ParseScript(script)
			Expect(err).To(HaveOccurred())
		},
		Entry("missing colon", "1205+"),
		Entry("missing sign", "120:5"),
		Entry("bad cycle", "x:5+"),
		Entry("key out of range", "120:10+"),
	)
})

var _ = Describe("Run", func() {
	var c *core.Core

	BeforeEach(func() {
		c = core.NewCore(emu.NewEmulator(emu.WithSeed(3)))
	})

	It("should run exactly the requested cycles", func() {
		Expect(c.LoadROM(program(0x7001, 0x1200))).To(Succeed())

		result, err := headless.Run(context.Background(), c, headless.Options{
			Cycles:      25,
			ClockConfig: &clock.Config{CyclesPerSecond: 600, FramesPerSecond: 60},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Cycles).To(Equal(uint64(25)))
		Expect(result.Stats.Ticks).To(Equal(uint64(25)))
	})

	It("should stop inside the first frame when fewer cycles are asked for", func() {
		Expect(c.LoadROM(program(0x7001, 0x1200))).To(Succeed())

		result, err := headless.Run(context.Background(), c, headless.Options{
			Cycles:      5,
			ClockConfig: &clock.Config{CyclesPerSecond: 600, FramesPerSecond: 60},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Cycles).To(Equal(uint64(5)))
		Expect(c.Emulator().RegFile().ReadReg(0)).To(Equal(uint8(3)))
	})

	It("should apply scripted keys on their exact cycle", func() {
		// V0 = key; loop: V1 += 1; jump loop
		Expect(c.LoadROM(program(0xF00A, 0x7101, 0x1202))).To(Succeed())
		script, err := headless.ParseScript("3:7+")
		Expect(err).NotTo(HaveOccurred())

		_, err = headless.Run(context.Background(), c, headless.Options{
			Cycles:      20,
			ClockConfig: &clock.Config{CyclesPerSecond: 600, FramesPerSecond: 60},
			Script:      script,
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(c.Emulator().RegFile().ReadReg(0)).To(Equal(uint8(7)))
		// tick 4 ends the wait; ticks 5-20 alternate add and jump
		Expect(c.Emulator().RegFile().ReadReg(1)).To(Equal(uint8(8)))
	})

	It("should record one audio frame per full frame when frames are split", func() {
		Expect(c.LoadROM(program(0x1200))).To(Succeed())
		script, err := headless.ParseScript("3:1+,14:1-")
		Expect(err).NotTo(HaveOccurred())
		f, err := os.Create(filepath.Join(GinkgoT().TempDir(), "split.wav"))
		Expect(err).NotTo(HaveOccurred())
		rec := audio.NewRecorder(f, audio.DefaultBeep(), 60)

		result, err := headless.Run(context.Background(), c, headless.Options{
			Cycles:      25,
			ClockConfig: &clock.Config{CyclesPerSecond: 600, FramesPerSecond: 60},
			Script:      script,
			Recorder:    rec,
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Close()).To(Succeed())
		Expect(f.Close()).To(Succeed())
		Expect(result.Cycles).To(Equal(uint64(25)))
		Expect(rec.Frames()).To(Equal(uint64(3)))
	})

	It("should print the final display", func() {
		// I = glyph 0; draw at (0, 0); spin
		Expect(c.LoadROM(program(0xA000, 0xD005, 0x1204))).To(Succeed())
		var out strings.Builder

		result, err := headless.Run(context.Background(), c, headless.Options{
			Cycles: 5,
			Output: &out,
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(Equal(result.Display))
		Expect(strings.Split(result.Display, "\n")[0]).To(HavePrefix("####."))
	})

	It("should feed scripted keys to a key wait", func() {
		// V3 = key; spin
		Expect(c.LoadROM(program(0xF30A, 0x1202))).To(Succeed())
		script, err := headless.ParseScript("10:c+")
		Expect(err).NotTo(HaveOccurred())

		_, err = headless.Run(context.Background(), c, headless.Options{
			Cycles: 20,
			Script: script,
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(c.Emulator().RegFile().ReadReg(3)).To(Equal(uint8(0xC)))
	})

	It("should return the result with the halting error", func() {
		Expect(c.LoadROM(program(0x6101, 0x00EE))).To(Succeed())

		result, err := headless.Run(context.Background(), c, headless.Options{Cycles: 10})

		Expect(err).To(MatchError(emu.ErrStackUnderflow))
		Expect(result.Cycles).To(Equal(uint64(1)))
	})

	It("should treat the emulator cycle limit as the end of the run", func() {
		c = core.NewCore(emu.NewEmulator(emu.WithMaxCycles(4)))
		Expect(c.LoadROM(program(0x1200))).To(Succeed())

		result, err := headless.Run(context.Background(), c, headless.Options{Cycles: 10})

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Cycles).To(Equal(uint64(4)))
	})

	It("should record beeps", func() {
		// V1 = 4; ST = V1; spin
		Expect(c.LoadROM(program(0x6104, 0xF118, 0x1204))).To(Succeed())
		path := filepath.Join(GinkgoT().TempDir(), "beep.wav")
		f, err := os.Create(path)
		Expect(err).NotTo(HaveOccurred())
		rec := audio.NewRecorder(f, audio.DefaultBeep(), 60)

		result, err := headless.Run(context.Background(), c, headless.Options{
			Cycles:   10,
			Recorder: rec,
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Close()).To(Succeed())
		Expect(f.Close()).To(Succeed())
		Expect(result.Beeps).To(Equal(uint64(1)))
		Expect(rec.Frames()).To(Equal(uint64(10)))
	})

	It("should reject a zero cycle count", func() {
		_, err := headless.Run(context.Background(), c, headless.Options{})
		Expect(err).To(HaveOccurred())
	})
})
