package animation

import (
	"image/color"
	"time"

	"github.com/BeatGlow/compositor/pixel"
	"github.com/BeatGlow/compositor/resource"
)

// Config of an animation session.
type Config struct {
	// Width and Height of the layers in pixels.
	Width, Height int

	// Format of the layers.
	Format pixel.Format

	// Period between ticks.
	Period time.Duration

	// LineLength is the length of the spoke in pixels.
	LineLength int

	// TicksPerRevolution is the number of ticks for a full turn of the spoke.
	TicksPerRevolution int

	// KeyColor marks transparent foreground pixels.
	KeyColor color.Color

	// LineColor of the spoke.
	LineColor color.Color

	// Background is the resource id of the background image, empty for none.
	// It is not taken from DefaultConfig when empty.
	Background string

	// BackgroundColor fills the background before the image is drawn.
	BackgroundColor color.Color

	// FitBackground scales the background image to the layer width.
	FitBackground bool

	// Caption is drawn centered near the bottom of the background, if set.
	Caption      string
	CaptionColor color.Color
	CaptionSize  float64
}

// DefaultConfig is a 240x240 RGB565 session with a 100 pixel cyan spoke
// advancing every 100ms.
var DefaultConfig = Config{
	Width:              240,
	Height:             240,
	Format:             pixel.FormatCRGB16,
	Period:             100 * time.Millisecond,
	LineLength:         100,
	TicksPerRevolution: 60,
	KeyColor:           color.RGBA{B: 0xff, A: 0xff},
	LineColor:          color.RGBA{G: 0xff, B: 0xff, A: 0xff},
	Background:         resource.Background,
	BackgroundColor:    color.Black,
	CaptionColor:       color.White,
	CaptionSize:        18,
}

// withDefaults returns c with zero fields taken from DefaultConfig, except
// for the background and caption.
func (c Config) withDefaults() Config {
	if c.Width <= 0 {
		c.Width = DefaultConfig.Width
	}
	if c.Height <= 0 {
		c.Height = DefaultConfig.Height
	}
	if c.Format == pixel.UnknownFormat {
		c.Format = DefaultConfig.Format
	}
	if c.Period <= 0 {
		c.Period = DefaultConfig.Period
	}
	if c.LineLength <= 0 {
		c.LineLength = DefaultConfig.LineLength
	}
	if c.TicksPerRevolution <= 0 {
		c.TicksPerRevolution = DefaultConfig.TicksPerRevolution
	}
	if c.KeyColor == nil {
		c.KeyColor = DefaultConfig.KeyColor
	}
	if c.LineColor == nil {
		c.LineColor = DefaultConfig.LineColor
	}
	if c.BackgroundColor == nil {
		c.BackgroundColor = DefaultConfig.BackgroundColor
	}
	if c.CaptionColor == nil {
		c.CaptionColor = DefaultConfig.CaptionColor
	}
	if c.CaptionSize <= 0 {
		c.CaptionSize = DefaultConfig.CaptionSize
	}
	return c
}
