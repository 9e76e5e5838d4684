// Package audio renders the CHIP-8 beep. A Beep is a short mono clip,
// either a generated square wave or a sample loaded from a WAV or MP3
// file, that hosts play each time the emulator reports a beep event.
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// Defaults for the generated tone.
const (
	SampleRate    = 44100
	ToneFrequency = 440
	ToneDuration  = 100 * time.Millisecond
	ToneAmplitude = 8000
)

// ErrUnsupportedFormat is returned by LoadFile for extensions other than
// .wav and .mp3.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Beep is a mono 16-bit clip.
type Beep struct {
	SampleRate int
	Samples    []int16
}

// SquareWave generates a square wave tone. A non-positive frequency or
// sample rate gives an empty clip.
func SquareWave(sampleRate, freq int, d time.Duration) *Beep {
	if freq <= 0 || sampleRate <= 0 {
		return &Beep{SampleRate: max(0, sampleRate)}
	}

	n := int(int64(sampleRate) * int64(d) / int64(time.Second))
	samples := make([]int16, n)

	halfPeriod := max(1, sampleRate/(2*freq))
	for i := range samples {
		if (i/halfPeriod)%2 == 0 {
			samples[i] = ToneAmplitude
		} else {
			samples[i] = -ToneAmplitude
		}
	}

	return &Beep{SampleRate: sampleRate, Samples: samples}
}

// DefaultBeep returns the default 440Hz tone.
func DefaultBeep() *Beep {
	return SquareWave(SampleRate, ToneFrequency, ToneDuration)
}

// LoadFile loads a beep sample, choosing the decoder by file extension.
func LoadFile(path string) (*Beep, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open beep sample: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return LoadWAV(f)
	case ".mp3":
		return LoadMP3(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadWAV decodes a PCM WAV stream. Only the first channel is kept.
func LoadWAV(r io.ReadSeeker) (*Beep, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("wav: not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}

	chans := max(1, int(dec.NumChans))
	depth := int(dec.BitDepth)

	samples := make([]int16, 0, len(buf.Data)/chans)
	for i := 0; i < len(buf.Data); i += chans {
		samples = append(samples, to16(buf.Data[i], depth))
	}

	return &Beep{SampleRate: int(dec.SampleRate), Samples: samples}, nil
}

// to16 scales a decoded PCM value to signed 16 bits. 8-bit WAV data is
// unsigned.
func to16(v, depth int) int16 {
	switch {
	case depth == 8:
		return int16((v - 128) << 8)
	case depth > 16:
		return int16(v >> (depth - 16))
	default:
		return int16(v << (16 - depth))
	}
}

// LoadMP3 decodes an MP3 stream. The decoder always produces 16-bit
// little-endian stereo; only the left channel is kept.
func LoadMP3(r io.Reader) (*Beep, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}

	samples := make([]int16, 0, len(pcm)/4)
	for i := 0; i+1 < len(pcm); i += 4 {
		samples = append(samples, int16(uint16(pcm[i])|uint16(pcm[i+1])<<8))
	}

	return &Beep{SampleRate: dec.SampleRate(), Samples: samples}, nil
}

// Duration returns the play time of the clip.
func (b *Beep) Duration() time.Duration {
	if b.SampleRate == 0 {
		return 0
	}
	return time.Duration(len(b.Samples)) * time.Second / time.Duration(b.SampleRate)
}

// Resample converts the clip to another sample rate by nearest-neighbour
// picking, which is plenty for a beep.
func (b *Beep) Resample(rate int) *Beep {
	if rate == b.SampleRate || b.SampleRate == 0 {
		return &Beep{SampleRate: rate, Samples: b.Samples}
	}

	n := int(int64(len(b.Samples)) * int64(rate) / int64(b.SampleRate))
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = b.Samples[int64(i)*int64(b.SampleRate)/int64(rate)]
	}
	return &Beep{SampleRate: rate, Samples: samples}
}

// U8 returns the clip as unsigned 8-bit samples, the format hosts queue to
// an audio device.
func (b *Beep) U8() []byte {
	out := make([]byte, len(b.Samples))
	for i, s := range b.Samples {
		out[i] = byte(int(s)>>8 + 128)
	}
	return out
}
