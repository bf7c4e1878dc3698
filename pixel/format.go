package pixel

import (
	"fmt"
	"image/color"
)

// Format is a packed pixel layout. Pixels are stored row-major without padding.
type Format uint8

// Supported formats.
const (
	UnknownFormat Format = iota
	FormatCRGB15         // 15-bit 5-5-5 RGB
	FormatCRGB16         // 16-bit 5-6-5 RGB
	FormatCBGR15         // 15-bit 5-5-5 BGR
	FormatCBGR16         // 16-bit 5-6-5 BGR
)

func (f Format) String() string {
	switch f {
	case FormatCRGB15:
		return "CRGB15"
	case FormatCRGB16:
		return "CRGB16"
	case FormatCBGR15:
		return "CBGR15"
	case FormatCBGR16:
		return "CBGR16"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// BitsPerPixel is the number of significant bits in one pixel.
func (f Format) BitsPerPixel() int {
	switch f {
	case FormatCRGB15, FormatCBGR15:
		return 15
	case FormatCRGB16, FormatCBGR16:
		return 16
	default:
		return 0
	}
}

// BytesPerPixel is the storage size of one pixel, or 0 for unknown formats.
func (f Format) BytesPerPixel() int {
	return (f.BitsPerPixel() + 7) / 8
}

// Model is the color model of the format.
func (f Format) Model() color.Model {
	switch f {
	case FormatCRGB15:
		return CRGB15Model
	case FormatCRGB16:
		return CRGB16Model
	case FormatCBGR15:
		return CBGR15Model
	case FormatCBGR16:
		return CBGR16Model
	default:
		return nil
	}
}

// Encode packs c into a pixel word. Alpha is ignored, none of the formats
// carry it.
func (f Format) Encode(c color.Color) uint16 {
	switch f {
	case FormatCRGB15:
		return crgb15Model(c).(CRGB15).V
	case FormatCRGB16:
		return crgb16Model(c).(CRGB16).V
	case FormatCBGR15:
		return cbgr15Model(c).(CBGR15).V
	case FormatCBGR16:
		return cbgr16Model(c).(CBGR16).V
	default:
		return 0
	}
}

// Decode unpacks a pixel word.
func (f Format) Decode(v uint16) color.Color {
	switch f {
	case FormatCRGB15:
		return CRGB15{v & 0x7fff}
	case FormatCRGB16:
		return CRGB16{v}
	case FormatCBGR15:
		return CBGR15{v & 0x7fff}
	case FormatCBGR16:
		return CBGR16{v}
	default:
		return color.Transparent
	}
}

// FormatOf returns the format for a color model.
func FormatOf(m color.Model) Format {
	switch m {
	case CRGB15Model:
		return FormatCRGB15
	case CRGB16Model:
		return FormatCRGB16
	case CBGR15Model:
		return FormatCBGR15
	case CBGR16Model:
		return FormatCBGR16
	default:
		return UnknownFormat
	}
}
