package latency_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c8sim/insts"
	"github.com/sarchlab/c8sim/timing/latency"
)

var _ = Describe("Latency", func() {
	var (
		table   *latency.Table
		decoder *insts.Decoder
	)

	BeforeEach(func() {
		table = latency.NewTable()
		decoder = insts.NewDecoder()
	})

	Describe("Default Timing Values", func() {
		It("should have correct ALU latency", func() {
			Expect(table.Config().ALULatency).To(Equal(uint64(1)))
		})

		It("should have correct draw latencies", func() {
			config := table.Config()
			Expect(config.DrawBaseLatency).To(Equal(uint64(4)))
			Expect(config.DrawRowLatency).To(Equal(uint64(2)))
		})

		It("should have correct memory latencies", func() {
			config := table.Config()
			Expect(config.CacheHitLatency).To(Equal(uint64(1)))
			Expect(config.MemoryLatency).To(Equal(uint64(10)))
		})
	})

	DescribeTable("Classify",
		func(opcode uint16, class latency.Class) {
			Expect(latency.Classify(decoder.Decode(opcode))).To(Equal(class))
		},
		Entry("LD Vx, NN", uint16(0x6A05), latency.ClassALU),
		Entry("SUB", uint16(0x8125), latency.ClassALU),
		Entry("LD I", uint16(0xA123), latency.ClassALU),
		Entry("JP", uint16(0x1234), latency.ClassBranch),
		Entry("SE", uint16(0x3100), latency.ClassBranch),
		Entry("CALL", uint16(0x2300), latency.ClassCall),
		Entry("RET", uint16(0x00EE), latency.ClassCall),
		Entry("LD Vx, [I]", uint16(0xF365), latency.ClassLoad),
		Entry("LD [I], Vx", uint16(0xF355), latency.ClassStore),
		Entry("LD B", uint16(0xF333), latency.ClassStore),
		Entry("DRW", uint16(0xD125), latency.ClassDraw),
		Entry("CLS", uint16(0x00E0), latency.ClassClear),
		Entry("LD DT", uint16(0xF115), latency.ClassTimer),
		Entry("SKP", uint16(0xE19E), latency.ClassKey),
		Entry("LD Vx, K", uint16(0xF10A), latency.ClassKey),
		Entry("RND", uint16(0xC1FF), latency.ClassRandom),
		Entry("unknown", uint16(0xFFFF), latency.ClassOther),
	)

	Describe("Instruction Latencies", func() {
		It("should charge draws per row", func() {
			Expect(table.GetLatency(decoder.Decode(0xD120))).To(Equal(uint64(4)))
			Expect(table.GetLatency(decoder.Decode(0xD125))).To(Equal(uint64(14)))
			Expect(table.GetLatency(decoder.Decode(0xD12F))).To(Equal(uint64(34)))
		})

		It("should charge block loads and stores per register", func() {
			Expect(table.GetLatency(decoder.Decode(0xF065))).To(Equal(uint64(2)))
			Expect(table.GetLatency(decoder.Decode(0xF365))).To(Equal(uint64(8)))
			Expect(table.GetLatency(decoder.Decode(0xFF55))).To(Equal(uint64(32)))
		})

		It("should charge BCD for three stores", func() {
			Expect(table.GetLatency(decoder.Decode(0xF933))).To(Equal(uint64(6)))
		})

		It("should return 1 cycle for branches", func() {
			Expect(table.GetLatency(decoder.Decode(0x1200))).To(Equal(uint64(1)))
			Expect(table.GetLatency(decoder.Decode(0xB200))).To(Equal(uint64(1)))
		})

		It("should return 1 cycle for unknown opcodes", func() {
			Expect(table.GetLatency(decoder.Decode(0x0123))).To(Equal(uint64(1)))
		})
	})

	Describe("Instruction Type Detection", func() {
		It("should identify loads", func() {
			Expect(table.IsLoadOp(decoder.Decode(0xF365))).To(BeTrue())
			Expect(table.IsLoadOp(decoder.Decode(0xD125))).To(BeTrue())
			Expect(table.IsLoadOp(decoder.Decode(0xF355))).To(BeFalse())
		})

		It("should identify stores", func() {
			Expect(table.IsStoreOp(decoder.Decode(0xF355))).To(BeTrue())
			Expect(table.IsStoreOp(decoder.Decode(0xF333))).To(BeTrue())
			Expect(table.IsStoreOp(decoder.Decode(0x6000))).To(BeFalse())
		})

		It("should identify memory ops", func() {
			Expect(table.IsMemoryOp(decoder.Decode(0xF365))).To(BeTrue())
			Expect(table.IsMemoryOp(decoder.Decode(0x8124))).To(BeFalse())
		})

		It("should identify branches", func() {
			Expect(table.IsBranchOp(decoder.Decode(0x1200))).To(BeTrue())
			Expect(table.IsBranchOp(decoder.Decode(0x00EE))).To(BeTrue())
			Expect(table.IsBranchOp(decoder.Decode(0xE1A1))).To(BeTrue())
			Expect(table.IsBranchOp(decoder.Decode(0xF10A))).To(BeFalse())
			Expect(table.IsBranchOp(decoder.Decode(0x7101))).To(BeFalse())
		})
	})

	Describe("Nil Instruction Handling", func() {
		It("should return 1 for nil instruction", func() {
			Expect(table.GetLatency(nil)).To(Equal(uint64(1)))
		})

		It("should return false for nil instruction memory check", func() {
			Expect(table.IsMemoryOp(nil)).To(BeFalse())
			Expect(table.IsLoadOp(nil)).To(BeFalse())
			Expect(table.IsStoreOp(nil)).To(BeFalse())
			Expect(table.IsBranchOp(nil)).To(BeFalse())
		})
	})

	Describe("Custom Configuration", func() {
		It("should use custom config values", func() {
			config := latency.DefaultTimingConfig()
			config.ALULatency = 2
			config.BranchLatency = 3
			config.DrawBaseLatency = 10
			config.DrawRowLatency = 1
			customTable := latency.NewTableWithConfig(config)

			Expect(customTable.GetLatency(decoder.Decode(0x7101))).To(Equal(uint64(2)))
			Expect(customTable.GetLatency(decoder.Decode(0x1200))).To(Equal(uint64(3)))
			Expect(customTable.GetLatency(decoder.Decode(0xD125))).To(Equal(uint64(15)))
		})
	})

	Describe("Class names", func() {
		It("should name classes", func() {
			Expect(latency.ClassDraw.String()).To(Equal("draw"))
			Expect(latency.Class(200).String()).To(Equal("unknown"))
		})
	})
})

var _ = Describe("TimingConfig", func() {
	Describe("Default Config", func() {
		It("should create valid default config", func() {
			config := latency.DefaultTimingConfig()
			Expect(config.Validate()).To(Succeed())
		})
	})

	Describe("Validation", func() {
		It("should reject zero ALU latency", func() {
			config := latency.DefaultTimingConfig()
			config.ALULatency = 0
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject zero draw latency", func() {
			config := latency.DefaultTimingConfig()
			config.DrawBaseLatency = 0
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject zero store latency", func() {
			config := latency.DefaultTimingConfig()
			config.StoreLatency = 0
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject a cache hit slower than memory", func() {
			config := latency.DefaultTimingConfig()
			config.CacheHitLatency = 20
			config.MemoryLatency = 10
			Expect(config.Validate()).To(HaveOccurred())
		})
	})

	Describe("Clone", func() {
		It("should create independent copy", func() {
			original := latency.DefaultTimingConfig()
			clone := original.Clone()

			clone.ALULatency = 100

			Expect(original.ALULatency).To(Equal(uint64(1)))
			Expect(clone.ALULatency).To(Equal(uint64(100)))
		})
	})

	Describe("File Operations", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "latency-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should save and load config", func() {
			original := latency.DefaultTimingConfig()
			original.ALULatency = 5
			original.DrawRowLatency = 3

			path := filepath.Join(tempDir, "timing.json")
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.ALULatency).To(Equal(uint64(5)))
			Expect(loaded.DrawRowLatency).To(Equal(uint64(3)))
		})

		It("should keep defaults for missing fields", func() {
			path := filepath.Join(tempDir, "partial.json")
			Expect(os.WriteFile(path, []byte(`{"alu_latency": 7}`), 0644)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.ALULatency).To(Equal(uint64(7)))
			Expect(loaded.MemoryLatency).To(Equal(uint64(10)))
		})

		It("should return error for non-existent file", func() {
			_, err := latency.LoadConfig("/nonexistent/path/timing.json")
			Expect(err).To(HaveOccurred())
		})

		It("should return error for invalid JSON", func() {
			path := filepath.Join(tempDir, "invalid.json")
			err := os.WriteFile(path, []byte("not valid json"), 0644)
			Expect(err).NotTo(HaveOccurred())

			_, err = latency.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})
})
