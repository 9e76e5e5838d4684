package emu

import (
	"fmt"
	"sync"
)

// NumKeys is the number of keys on the CHIP-8 hex keypad.
const NumKeys = 16

// Keypad latches the pressed state of the 16 CHIP-8 keys. Hosts write it
// from their event loop, possibly on another goroutine; the CPU only reads
// it.
type Keypad struct {
	mu   sync.Mutex
	keys [NumKeys]bool
}

// NewKeypad creates a keypad with all keys released.
func NewKeypad() *Keypad {
	return &Keypad{}
}

// Set records a key as pressed or released.
func (k *Keypad) Set(code uint8, pressed bool) error {
	if err := checkKey(code); err != nil {
		return err
	}

	k.mu.Lock()
	k.keys[code] = pressed
	k.mu.Unlock()
	return nil
}

// SetPressed records a key-down.
func (k *Keypad) SetPressed(code uint8) error {
	return k.Set(code, true)
}

// SetReleased records a key-up.
func (k *Keypad) SetReleased(code uint8) error {
	return k.Set(code, false)
}

// IsPressed reports whether a key is held.
func (k *Keypad) IsPressed(code uint8) (bool, error) {
	if err := checkKey(code); err != nil {
		return false, err
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	return k.keys[code], nil
}

// FirstPressed returns the lowest-numbered held key.
func (k *Keypad) FirstPressed() (uint8, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for code, pressed := range k.keys {
		if pressed {
			return uint8(code), true
		}
	}
	return 0, false
}

// Reset releases every key.
func (k *Keypad) Reset() {
	k.mu.Lock()
	k.keys = [NumKeys]bool{}
	k.mu.Unlock()
}

func checkKey(code uint8) error {
	if code >= NumKeys {
		return fmt.Errorf("%w: 0x%X", ErrInvalidKeyCode, code)
	}
	return nil
}
