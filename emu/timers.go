package emu

// Timers holds the delay and sound countdown timers.
type Timers struct {
	Delay uint8
	Sound uint8
}

// Tick decrements each nonzero timer by one. It reports a beep when the
// sound timer reaches exactly 1 as a result of this decrement.
func (t *Timers) Tick() (beep bool) {
	if t.Delay > 0 {
		t.Delay--
	}
	if t.Sound > 0 {
		t.Sound--
		beep = t.Sound == 1
	}
	return beep
}

// Reset zeroes both timers.
func (t *Timers) Reset() {
	t.Delay = 0
	t.Sound = 0
}
