// Package keymap maps host keyboard characters to CHIP-8 key codes.
//
// The default layout puts the 4x4 hex keypad on the left of a QWERTY
// keyboard:
//
//	1 2 3 C        1 2 3 4
//	4 5 6 D   <-   q w e r
//	7 8 9 E        a s d f
//	A 0 B F        z x c v
package keymap

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sarchlab/c8sim/emu"
)

// QWERTYKeys lists the host characters for CHIP-8 keys 0 through F.
const QWERTYKeys = "x123qweasdzc4rfv"

// Layout maps lower-case host characters to CHIP-8 key codes.
type Layout map[rune]uint8

// QWERTY returns the default layout.
func QWERTY() Layout {
	layout, err := Parse(QWERTYKeys)
	if err != nil {
		panic(err)
	}
	return layout
}

// Parse builds a layout from sixteen distinct characters, the i-th
// character selecting CHIP-8 key i.
func Parse(keys string) (Layout, error) {
	if n := utf8.RuneCountInString(keys); n != emu.NumKeys {
		return nil, fmt.Errorf("layout needs %d keys, got %d", emu.NumKeys, n)
	}

	layout := make(Layout, emu.NumKeys)
	code := uint8(0)
	for _, r := range strings.ToLower(keys) {
		if _, dup := layout[r]; dup {
			return nil, fmt.Errorf("key %q is mapped twice", r)
		}
		layout[r] = code
		code++
	}
	return layout, nil
}

// Lookup returns the CHIP-8 key for a host character, ignoring case.
func (l Layout) Lookup(r rune) (uint8, bool) {
	code, ok := l[unicode.ToLower(r)]
	return code, ok
}

// String returns the layout in the form accepted by Parse.
func (l Layout) String() string {
	var keys [emu.NumKeys]rune
	for r, code := range l {
		if int(code) < emu.NumKeys {
			keys[code] = r
		}
	}
	return string(keys[:])
}
