package audio_test

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c8sim/host/audio"
)

var _ = Describe("Beep", func() {
	It("should generate a square wave of the requested length", func() {
		beep := audio.SquareWave(8000, 1000, 10*time.Millisecond)

		Expect(beep.Samples).To(HaveLen(80))
		Expect(beep.Duration()).To(Equal(10 * time.Millisecond))
		// 4 samples high, 4 samples low
		Expect(beep.Samples[0]).To(Equal(int16(audio.ToneAmplitude)))
		Expect(beep.Samples[3]).To(Equal(int16(audio.ToneAmplitude)))
		Expect(beep.Samples[4]).To(Equal(int16(-audio.ToneAmplitude)))
	})

	It("should give an empty clip for a zero frequency", func() {
		beep := audio.SquareWave(8000, 0, 10*time.Millisecond)

		Expect(beep.Samples).To(BeEmpty())
		Expect(beep.Duration()).To(BeZero())
	})

	It("should build the default tone", func() {
		beep := audio.DefaultBeep()

		Expect(beep.SampleRate).To(Equal(audio.SampleRate))
		Expect(beep.Duration()).To(Equal(audio.ToneDuration))
	})

	It("should convert to unsigned 8-bit", func() {
		beep := &audio.Beep{SampleRate: 8000, Samples: []int16{-32768, 0, 32767}}

		Expect(beep.U8()).To(Equal([]byte{0, 128, 255}))
	})

	It("should resample", func() {
		beep := &audio.Beep{SampleRate: 4, Samples: []int16{1, 2, 3, 4}}

		up := beep.Resample(8)

		Expect(up.SampleRate).To(Equal(8))
		Expect(up.Samples).To(Equal([]int16{1, 1, 2, 2, 3, 3, 4, 4}))
		Expect(up.Duration()).To(Equal(beep.Duration()))
	})

	It("should reject garbage MP3 data", func() {
		_, err := audio.LoadMP3(bytes.NewReader(nil))
		Expect(err).To(HaveOccurred())
	})

	It("should reject garbage WAV data", func() {
		_, err := audio.LoadWAV(bytes.NewReader([]byte("not a wav file at all")))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Recorder", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "audio-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	It("should record beeps that load back as a WAV sample", func() {
		beep := audio.SquareWave(6000, 500, 25*time.Millisecond)
		path := filepath.Join(tempDir, "session.wav")

		f, err := os.Create(path)
		Expect(err).NotTo(HaveOccurred())

		// 100 samples per frame at 60fps; the 150-sample clip spans two
		// frames.
		rec := audio.NewRecorder(f, beep, 60)
		Expect(rec.Frame(true)).To(Succeed())
		Expect(rec.Frame(false)).To(Succeed())
		Expect(rec.Frame(false)).To(Succeed())
		Expect(rec.Close()).To(Succeed())
		Expect(f.Close()).To(Succeed())
		Expect(rec.Frames()).To(Equal(uint64(3)))

		loaded, err := audio.LoadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.SampleRate).To(Equal(6000))
		Expect(loaded.Samples).To(HaveLen(300))
		Expect(loaded.Samples[:150]).To(Equal(beep.Samples))
		Expect(loaded.Samples[150:]).To(HaveEach(int16(0)))
	})

	It("should reject unknown extensions", func() {
		path := filepath.Join(tempDir, "beep.ogg")
		Expect(os.WriteFile(path, []byte{1}, 0644)).To(Succeed())

		_, err := audio.LoadFile(path)
		Expect(err).To(MatchError(audio.ErrUnsupportedFormat))
	})
})
