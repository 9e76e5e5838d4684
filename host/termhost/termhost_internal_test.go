package termhost

import (
	"bytes"

	"github.com/nsf/termbox-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/timing/core"
)

type fakeScreen struct {
	cells   map[[2]int]rune
	flushes int
}

func (s *fakeScreen) SetCell(x, y int, ch rune, _, _ termbox.Attribute) {
	s.cells[[2]int{x, y}] = ch
}

func (s *fakeScreen) Clear(_, _ termbox.Attribute) error {
	s.cells = map[[2]int]rune{}
	return nil
}

func (s *fakeScreen) Flush() error {
	s.flushes++
	return nil
}

func pressed(e *emu.Emulator, code uint8) bool {
	held, err := e.Keypad().IsPressed(code)
	Expect(err).NotTo(HaveOccurred())
	return held
}

var _ = Describe("Host", func() {
	var (
		e    *emu.Emulator
		h    *Host
		scr  *fakeScreen
		bell *bytes.Buffer
	)

	BeforeEach(func() {
		e = emu.NewEmulator()
		c := core.NewCore(e)
		// I = glyph 0; draw at (0, 0); spin
		Expect(c.LoadROM([]byte{0xA0, 0x00, 0xD0, 0x05, 0x12, 0x04})).To(Succeed())

		bell = &bytes.Buffer{}
		scr = &fakeScreen{cells: map[[2]int]rune{}}
		h = New(c, WithBell(bell))
		h.screen = scr
	})

	It("should pack two display rows into one cell", func() {
		e.Display().BlitSprite(0, 0, []byte{0x80, 0x80, 0x80})

		h.draw()

		Expect(scr.cells[[2]int{0, 0}]).To(Equal('█'))
		Expect(scr.cells[[2]int{0, 1}]).To(Equal('▀'))
		Expect(scr.cells[[2]int{1, 0}]).To(Equal(' '))
		Expect(scr.cells).To(HaveLen(Width * Height))
		Expect(scr.flushes).To(Equal(1))
	})

	It("should press mapped keys and release them after the hold time", func() {
		Expect(h.handleEvent(termbox.Event{Type: termbox.EventKey, Ch: 'w'})).To(Succeed())
		Expect(pressed(e, 0x5)).To(BeTrue())

		for i := 0; i < KeyHoldFrames-1; i++ {
			Expect(h.endFrame(emu.CycleOutcome{})).To(Succeed())
		}
		Expect(pressed(e, 0x5)).To(BeTrue())

		Expect(h.endFrame(emu.CycleOutcome{})).To(Succeed())
		Expect(pressed(e, 0x5)).To(BeFalse())
	})

	It("should ignore unmapped keys", func() {
		Expect(h.handleEvent(termbox.Event{Type: termbox.EventKey, Ch: 'p'})).To(Succeed())

		_, ok := e.Keypad().FirstPressed()
		Expect(ok).To(BeFalse())
	})

	It("should stop on Escape", func() {
		err := h.handleEvent(termbox.Event{Type: termbox.EventKey, Key: termbox.KeyEsc})

		Expect(err).To(MatchError(core.ErrStop))
	})

	It("should reset on F5", func() {
		e.RegFile().PC = 0x300

		Expect(h.handleEvent(termbox.Event{Type: termbox.EventKey, Key: termbox.KeyF5})).To(Succeed())

		Expect(e.RegFile().PC).To(Equal(uint16(0x200)))
	})

	It("should redraw and ring the bell", func() {
		Expect(h.endFrame(emu.CycleOutcome{Redraw: true, Beep: true})).To(Succeed())

		Expect(scr.flushes).To(Equal(1))
		Expect(bell.String()).To(Equal("\a"))
	})
})
