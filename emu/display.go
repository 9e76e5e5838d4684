package emu

import "strings"

// Display dimensions.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
	DisplaySize   = DisplayWidth * DisplayHeight
)

// Display is the 64x32 monochrome frame buffer. Cells are stored row-major
// at y*DisplayWidth+x and always hold 0 or 1.
type Display struct {
	pixels [DisplaySize]byte
	redraw bool
}

// NewDisplay creates a blank display.
func NewDisplay() *Display {
	return &Display{}
}

// Clear turns every pixel off and requests a redraw.
func (d *Display) Clear() {
	d.pixels = [DisplaySize]byte{}
	d.redraw = true
}

// BlitSprite XORs sprite rows onto the display with the top-left corner at
// (x, y). Bit 7 of each row is the leftmost pixel. Coordinates wrap around
// both edges. It returns true if any lit pixel was turned off.
func (d *Display) BlitSprite(x, y uint8, rows []byte) (collision bool) {
	for row, bits := range rows {
		py := (int(y) + row) % DisplayHeight
		for col := 0; col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := (int(x) + col) % DisplayWidth
			idx := py*DisplayWidth + px
			if d.pixels[idx] == 1 {
				collision = true
			}
			d.pixels[idx] ^= 1
		}
	}
	d.redraw = true
	return collision
}

// Pixel returns the pixel at (x, y), or 0 outside the display.
func (d *Display) Pixel(x, y int) byte {
	if x < 0 || x >= DisplayWidth || y < 0 || y >= DisplayHeight {
		return 0
	}
	return d.pixels[y*DisplayWidth+x]
}

// Pixels returns a copy of the frame buffer.
func (d *Display) Pixels() [DisplaySize]byte {
	return d.pixels
}

// NeedsRedraw reports whether the display changed since the last
// TakeRedraw.
func (d *Display) NeedsRedraw() bool {
	return d.redraw
}

// TakeRedraw returns the redraw flag and clears it.
func (d *Display) TakeRedraw() bool {
	r := d.redraw
	d.redraw = false
	return r
}

// Reset blanks the display without requesting a redraw.
func (d *Display) Reset() {
	d.pixels = [DisplaySize]byte{}
	d.redraw = false
}

// String renders the display as DisplayHeight lines of '#' (on) and '.'
// (off).
func (d *Display) String() string {
	var sb strings.Builder
	sb.Grow(DisplaySize + DisplayHeight)
	for y := 0; y < DisplayHeight; y++ {
		for x := 0; x < DisplayWidth; x++ {
			if d.pixels[y*DisplayWidth+x] != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
