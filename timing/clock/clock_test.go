package clock_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c8sim/timing/clock"
)

var _ = Describe("Config", func() {
	It("should default to 60 cycles at 60 frames per second", func() {
		config := clock.DefaultConfig()

		Expect(config.Validate()).To(Succeed())
		Expect(config.CyclesPerFrame()).To(Equal(uint64(1)))
		Expect(config.FrameDuration()).To(Equal(time.Second / 60))
	})

	It("should run several cycles per frame at higher speeds", func() {
		config := &clock.Config{CyclesPerSecond: 600, FramesPerSecond: 60}

		Expect(config.CyclesPerFrame()).To(Equal(uint64(10)))
	})

	It("should run at least one cycle per frame", func() {
		config := &clock.Config{CyclesPerSecond: 30, FramesPerSecond: 60}

		Expect(config.CyclesPerFrame()).To(Equal(uint64(1)))
	})

	It("should reject zero rates", func() {
		Expect((&clock.Config{CyclesPerSecond: 0, FramesPerSecond: 60}).Validate()).To(HaveOccurred())
		Expect((&clock.Config{CyclesPerSecond: 60, FramesPerSecond: 0}).Validate()).To(HaveOccurred())
	})

	Describe("File Operations", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "clock-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should save and load config", func() {
			path := filepath.Join(tempDir, "clock.json")
			original := &clock.Config{CyclesPerSecond: 500, FramesPerSecond: 50}
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := clock.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(original))
		})

		It("should return error for invalid JSON", func() {
			path := filepath.Join(tempDir, "invalid.json")
			Expect(os.WriteFile(path, []byte("{"), 0644)).To(Succeed())

			_, err := clock.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("Clock", func() {
	Describe("Free", func() {
		It("should never block", func() {
			Expect(clock.Free{}.Wait(context.Background())).To(Succeed())
		})

		It("should report a cancelled context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			Expect(clock.Free{}.Wait(ctx)).To(MatchError(context.Canceled))
		})
	})

	Describe("Limiter", func() {
		var l *clock.Limiter

		BeforeEach(func() {
			l = clock.NewLimiter(&clock.Config{CyclesPerSecond: 1000, FramesPerSecond: 1000})
		})

		AfterEach(func() {
			l.Stop()
		})

		It("should release frames", func() {
			start := time.Now()
			for i := 0; i < 3; i++ {
				Expect(l.Wait(context.Background())).To(Succeed())
			}
			Expect(time.Since(start)).To(BeNumerically(">=", time.Millisecond))
		})

		It("should stop waiting when the context is done", func() {
			slow := clock.NewLimiter(&clock.Config{CyclesPerSecond: 1, FramesPerSecond: 1})
			defer slow.Stop()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()

			Expect(slow.Wait(ctx)).To(MatchError(context.DeadlineExceeded))
		})
	})
})
