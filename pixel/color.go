package pixel

import "image/color"

// Models for the 16-bit color types.
var (
	CRGB15Model color.Model = color.ModelFunc(crgb15Model)
	CRGB16Model color.Model = color.ModelFunc(crgb16Model)
	CBGR15Model color.Model = color.ModelFunc(cbgr15Model)
	CBGR16Model color.Model = color.ModelFunc(cbgr16Model)
)

// expand5 and expand6 widen a component to 16 bits by duplicating the high bits
// in the low bits.
func expand5(v uint16) uint32 {
	v = v<<3 | v>>2
	return uint32(v | v<<8)
}

func expand6(v uint16) uint32 {
	v = v<<2 | v>>4
	return uint32(v | v<<8)
}

// CRGB15 represents a 15-bit 5-5-5 RGB color.
type CRGB15 struct {
	// CIgnore, 1, CRed, 5, CGreen, 5, CBlue, 5
	V uint16
}

func (c CRGB15) RGBA() (r, g, b, a uint32) {
	return expand5(c.V >> 10 & 0x1f), expand5(c.V >> 5 & 0x1f), expand5(c.V & 0x1f), 0xffff
}

func crgb15Model(c color.Color) color.Color {
	if _, ok := c.(CRGB15); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	r = (r & 0xF800) >> 1
	g = (g & 0xF800) >> 6
	b = (b & 0xF800) >> 11
	return CRGB15{uint16(r | g | b)}
}

// CRGB16 represents a 16-bit 5-6-5 RGB color.
type CRGB16 struct {
	// CRed, 5, CGreen, 6, CBlue, 5
	V uint16
}

func (c CRGB16) RGBA() (r, g, b, a uint32) {
	return expand5(c.V >> 11), expand6(c.V >> 5 & 0x3f), expand5(c.V & 0x1f), 0xffff
}

func crgb16Model(c color.Color) color.Color {
	if _, ok := c.(CRGB16); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	r = r & 0xF800
	g = (g & 0xFC00) >> 5
	b = (b & 0xF800) >> 11
	return CRGB16{uint16(r | g | b)}
}

// CBGR15 represents a 15-bit 5-5-5 BGR color.
type CBGR15 struct {
	// CIgnore, 1, CBlue, 5, CGreen, 5, CRed, 5
	V uint16
}

func (c CBGR15) RGBA() (r, g, b, a uint32) {
	return expand5(c.V & 0x1f), expand5(c.V >> 5 & 0x1f), expand5(c.V >> 10 & 0x1f), 0xffff
}

func cbgr15Model(c color.Color) color.Color {
	if _, ok := c.(CBGR15); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	b = (b & 0xF800) >> 1
	g = (g & 0xF800) >> 6
	r = (r & 0xF800) >> 11
	return CBGR15{uint16(r | g | b)}
}

// CBGR16 represents a 16-bit 5-6-5 BGR color.
type CBGR16 struct {
	// CBlue, 5, CGreen, 6, CRed, 5
	V uint16
}

func (c CBGR16) RGBA() (r, g, b, a uint32) {
	return expand5(c.V & 0x1f), expand6(c.V >> 5 & 0x3f), expand5(c.V >> 11), 0xffff
}

func cbgr16Model(c color.Color) color.Color {
	if _, ok := c.(CBGR16); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	b = b & 0xF800
	g = (g & 0xFC00) >> 5
	r = (r & 0xF800) >> 11
	return CBGR16{uint16(r | g | b)}
}
