package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c8sim/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("Operand extraction", func() {
		It("should split an opcode into its fields", func() {
			inst := decoder.Decode(0xD12F)

			Expect(inst.Raw).To(Equal(uint16(0xD12F)))
			Expect(inst.X).To(Equal(uint8(1)))
			Expect(inst.Y).To(Equal(uint8(2)))
			Expect(inst.N).To(Equal(uint8(0xF)))
			Expect(inst.NN).To(Equal(uint8(0x2F)))
			Expect(inst.NNN).To(Equal(uint16(0x12F)))
		})
	})

	Describe("System group", func() {
		It("should decode 00E0 as CLS", func() {
			inst := decoder.Decode(0x00E0)
			Expect(inst.Op).To(Equal(insts.OpCLS))
			Expect(inst.Format).To(Equal(insts.FormatNone))
		})

		It("should decode 00EE as RET", func() {
			inst := decoder.Decode(0x00EE)
			Expect(inst.Op).To(Equal(insts.OpRET))
		})

		It("should leave 0NNN machine-code calls unknown", func() {
			Expect(decoder.Decode(0x0123).Op).To(Equal(insts.OpUnknown))
			Expect(decoder.Decode(0x00E1).Op).To(Equal(insts.OpUnknown))
			Expect(decoder.Decode(0x0000).Op).To(Equal(insts.OpUnknown))
		})
	})

	Describe("Flow control", func() {
		It("should decode 1NNN as JP", func() {
			inst := decoder.Decode(0x1ABC)
			Expect(inst.Op).To(Equal(insts.OpJP))
			Expect(inst.Format).To(Equal(insts.FormatAddr))
			Expect(inst.NNN).To(Equal(uint16(0xABC)))
		})

		It("should decode 2NNN as CALL", func() {
			inst := decoder.Decode(0x2300)
			Expect(inst.Op).To(Equal(insts.OpCALL))
			Expect(inst.NNN).To(Equal(uint16(0x300)))
		})

		It("should decode BNNN as JP V0", func() {
			inst := decoder.Decode(0xB208)
			Expect(inst.Op).To(Equal(insts.OpJPV0))
			Expect(inst.NNN).To(Equal(uint16(0x208)))
		})
	})

	Describe("Skips", func() {
		DescribeTable("should decode skip instructions",
			func(opcode uint16, op insts.Op, format insts.Format) {
				inst := decoder.Decode(opcode)
				Expect(inst.Op).To(Equal(op))
				Expect(inst.Format).To(Equal(format))
			},
			Entry("3XNN", uint16(0x3A42), insts.OpSEImm, insts.FormatRegImm),
			Entry("4XNN", uint16(0x4A42), insts.OpSNEImm, insts.FormatRegImm),
			Entry("5XY0", uint16(0x5AB0), insts.OpSEReg, insts.FormatRegReg),
			Entry("9XY0", uint16(0x9AB0), insts.OpSNEReg, insts.FormatRegReg),
			Entry("EX9E", uint16(0xE39E), insts.OpSKP, insts.FormatReg),
			Entry("EXA1", uint16(0xE3A1), insts.OpSKNP, insts.FormatReg),
		)

		It("should reject register skips with a nonzero low nibble", func() {
			Expect(decoder.Decode(0x5AB1).Op).To(Equal(insts.OpUnknown))
			Expect(decoder.Decode(0x9ABF).Op).To(Equal(insts.OpUnknown))
		})

		It("should reject unassigned E group low bytes", func() {
			Expect(decoder.Decode(0xE39F).Op).To(Equal(insts.OpUnknown))
		})
	})

	Describe("Register arithmetic", func() {
		DescribeTable("should decode the 8XYN group by low nibble",
			func(opcode uint16, op insts.Op) {
				inst := decoder.Decode(opcode)
				Expect(inst.Op).To(Equal(op))
				Expect(inst.Format).To(Equal(insts.FormatRegReg))
				Expect(inst.X).To(Equal(uint8(1)))
				Expect(inst.Y).To(Equal(uint8(2)))
			},
			Entry("8XY0 LD", uint16(0x8120), insts.OpLDReg),
			Entry("8XY1 OR", uint16(0x8121), insts.OpOR),
			Entry("8XY2 AND", uint16(0x8122), insts.OpAND),
			Entry("8XY3 XOR", uint16(0x8123), insts.OpXOR),
			Entry("8XY4 ADD", uint16(0x8124), insts.OpADDReg),
			Entry("8XY5 SUB", uint16(0x8125), insts.OpSUB),
			Entry("8XY6 SHR", uint16(0x8126), insts.OpSHR),
			Entry("8XY7 SUBN", uint16(0x8127), insts.OpSUBN),
			Entry("8XYE SHL", uint16(0x812E), insts.OpSHL),
		)

		It("should leave unassigned 8XYN nibbles unknown", func() {
			for _, n := range []uint16{0x8, 0x9, 0xA, 0xB, 0xC, 0xD, 0xF} {
				Expect(decoder.Decode(0x8120 | n).Op).To(Equal(insts.OpUnknown))
			}
		})

		It("should decode 6XNN and 7XNN immediates", func() {
			ld := decoder.Decode(0x6A05)
			Expect(ld.Op).To(Equal(insts.OpLDImm))
			Expect(ld.X).To(Equal(uint8(0xA)))
			Expect(ld.NN).To(Equal(uint8(0x05)))

			add := decoder.Decode(0x7AFF)
			Expect(add.Op).To(Equal(insts.OpADDImm))
			Expect(add.NN).To(Equal(uint8(0xFF)))
		})
	})

	Describe("Index, random and draw", func() {
		It("should decode ANNN as LD I", func() {
			inst := decoder.Decode(0xA123)
			Expect(inst.Op).To(Equal(insts.OpLDI))
			Expect(inst.NNN).To(Equal(uint16(0x123)))
		})

		It("should decode CXNN as RND", func() {
			inst := decoder.Decode(0xC70F)
			Expect(inst.Op).To(Equal(insts.OpRND))
			Expect(inst.X).To(Equal(uint8(7)))
			Expect(inst.NN).To(Equal(uint8(0x0F)))
		})

		It("should decode DXYN as DRW", func() {
			inst := decoder.Decode(0xD015)
			Expect(inst.Op).To(Equal(insts.OpDRW))
			Expect(inst.Format).To(Equal(insts.FormatDraw))
			Expect(inst.N).To(Equal(uint8(5)))
		})
	})

	Describe("F group", func() {
		DescribeTable("should decode FXNN by low byte",
			func(opcode uint16, op insts.Op) {
				inst := decoder.Decode(opcode)
				Expect(inst.Op).To(Equal(op))
				Expect(inst.Format).To(Equal(insts.FormatReg))
				Expect(inst.X).To(Equal(uint8(0xA)))
			},
			Entry("FX07", uint16(0xFA07), insts.OpLDVxDT),
			Entry("FX0A", uint16(0xFA0A), insts.OpLDVxK),
			Entry("FX15", uint16(0xFA15), insts.OpLDDTVx),
			Entry("FX18", uint16(0xFA18), insts.OpLDSTVx),
			Entry("FX1E", uint16(0xFA1E), insts.OpADDI),
			Entry("FX29", uint16(0xFA29), insts.OpLDF),
			Entry("FX33", uint16(0xFA33), insts.OpLDB),
			Entry("FX55", uint16(0xFA55), insts.OpLDStore),
			Entry("FX65", uint16(0xFA65), insts.OpLDLoad),
		)

		It("should leave unassigned F group low bytes unknown", func() {
			inst := decoder.Decode(0xFA99)
			Expect(inst.Op).To(Equal(insts.OpUnknown))
			Expect(inst.Format).To(Equal(insts.FormatUnknown))
		})
	})
})
