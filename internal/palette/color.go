package palette

import "image/color"

const (
	RED_OFFSET   uint8 = 0x10
	GREEN_OFFSET uint8 = 0x08
	BLUE_OFFSET  uint8 = 0x0
)

// Color is one LED value. W is only used by RGBW strips.
type Color struct {
	R, G, B, W uint8
}

// Off is the cleared LED value.
var Off = Color{}

// NewColor unpacks a 0xRRGGBB value.
func NewColor(c uint32) Color {
	return Color{
		R: getcolor(c, RED_OFFSET),
		G: getcolor(c, GREEN_OFFSET),
		B: getcolor(c, BLUE_OFFSET),
	}
}

// Packed returns the 24 bit 0xRRGGBB value written to the strip.
func (c Color) Packed() uint32 {
	var v uint32
	v = setcolor(v, c.R, RED_OFFSET)
	v = setcolor(v, c.G, GREEN_OFFSET)
	v = setcolor(v, c.B, BLUE_OFFSET)
	return v
}

func (c Color) IsOff() bool {
	return c == Off
}

// Scale rescales each channel linearly against 0..255 with integer truncation.
func (c Color) Scale(brightness uint8) Color {
	return Color{
		R: scale(c.R, brightness),
		G: scale(c.G, brightness),
		B: scale(c.B, brightness),
		W: scale(c.W, brightness),
	}
}

// RGBW moves the common part of R, G and B onto the white channel.
func (c Color) RGBW() Color {
	w := c.R
	if c.G < w {
		w = c.G
	}
	if c.B < w {
		w = c.B
	}
	return Color{R: c.R - w, G: c.G - w, B: c.B - w, W: sat(c.W, w)}
}

func (c Color) NRGBA() color.NRGBA {
	r, g, b := c.R, c.G, c.B
	if c.W > 0 {
		r, g, b = sat(r, c.W), sat(g, c.W), sat(b, c.W)
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func scale(ch, brightness uint8) uint8 {
	return uint8(uint16(ch) * uint16(brightness) / 255)
}

func setcolor(c uint32, n uint8, off uint8) uint32 {
	var val uint32 = uint32(n) << off
	var mask uint32 = 0xFF << off
	return (c & (^mask)) | val
}

func getcolor(c uint32, off uint8) uint8 {
	var mask uint32 = 0xFF << off
	return uint8((c & (mask)) >> off)
}

func sat(a, b uint8) uint8 {
	s := uint16(a) + uint16(b)
	if s > 255 {
		return 255
	}
	return uint8(s)
}
