package audio

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Recorder writes the beeps of a session to a 16-bit mono WAV file, one
// frame of samples at a time. A beep event restarts the clip; frames with
// nothing playing are silent.
type Recorder struct {
	enc             *wav.Encoder
	beep            *Beep
	samplesPerFrame int
	playing         []int16
	buf             *goaudio.IntBuffer
	frames          uint64
}

// NewRecorder creates a Recorder writing to w at the clip's sample rate.
// The output is complete only after Close.
func NewRecorder(w io.WriteSeeker, beep *Beep, framesPerSecond int) *Recorder {
	spf := beep.SampleRate / max(1, framesPerSecond)

	return &Recorder{
		enc:             wav.NewEncoder(w, beep.SampleRate, 16, 1, 1),
		beep:            beep,
		samplesPerFrame: spf,
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 1, SampleRate: beep.SampleRate},
			Data:           make([]int, spf),
			SourceBitDepth: 16,
		},
	}
}

// Frame records one frame of audio. beep starts the clip from the top.
func (r *Recorder) Frame(beep bool) error {
	if beep {
		r.playing = r.beep.Samples
	}

	for i := range r.buf.Data {
		if i < len(r.playing) {
			r.buf.Data[i] = int(r.playing[i])
		} else {
			r.buf.Data[i] = 0
		}
	}
	r.playing = r.playing[min(len(r.playing), r.samplesPerFrame):]

	if err := r.enc.Write(r.buf); err != nil {
		return fmt.Errorf("failed to write audio frame: %w", err)
	}
	r.frames++
	return nil
}

// Frames returns the number of frames recorded.
func (r *Recorder) Frames() uint64 {
	return r.frames
}

// Close finishes the WAV header.
func (r *Recorder) Close() error {
	if err := r.enc.Close(); err != nil {
		return fmt.Errorf("failed to finish audio recording: %w", err)
	}
	return nil
}
